// Package errcode keeps a process-wide registry of sentinel errors with
// stable numeric codes, so the boundary adapters can report a code next
// to the message.
package errcode

import (
	"errors"
	"fmt"
	"sync"

	"storj.io/drpc/drpcerr"
)

var (
	Unexpected = RegisterErr(errors.New("unexpected"), 1)
)

var (
	mu      sync.RWMutex
	errsMap = make(map[uint64]error)
)

func RegisterErr(err error, code uint64) error {
	mu.Lock()
	defer mu.Unlock()
	if e, ok := errsMap[code]; ok {
		panic(fmt.Errorf("attempt to register error with existing code: %d; registered error: %v", code, e))
	}
	errWithCode := drpcerr.WithCode(err, code)
	errsMap[code] = errWithCode
	return errWithCode
}

// Code returns the code of the first registered error found in the chain, 0 if none.
func Code(err error) uint64 {
	return drpcerr.Code(err)
}

func Err(code uint64) error {
	mu.RLock()
	defer mu.RUnlock()
	err, ok := errsMap[code]
	if !ok {
		return drpcerr.WithCode(fmt.Errorf("unexpected error, code: %d", code), code)
	}
	return err
}

type ErrGroup int64

func (g ErrGroup) Register(err error, code uint64) error {
	return RegisterErr(err, uint64(g)+code)
}
