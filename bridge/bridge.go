// Package bridge is the JSON surface shared by the native and wasm adapters.
// Every exported function returns a JSON document: the result on success or
// {"error": ..., "code": ...} on failure. None of them panic.
package bridge

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/icidkit/icid/app/logger"
	"github.com/icidkit/icid/candid"
	"github.com/icidkit/icid/identity"
	"github.com/icidkit/icid/util/crypto"
	"github.com/icidkit/icid/util/debug"
	"github.com/icidkit/icid/util/errcode"
)

var log = logger.NewNamed("bridge")

// generatedWords is the length of phrases created for callers without one.
const generatedWords = 24

var generator = identity.New(identity.WithEntropySource(identity.NewRandomSource(rand.Reader, generatedWords)))

type errorResponse struct {
	Error    string    `json:"error"`
	Code     uint64    `json:"code"`
	Position *position `json:"position,omitempty"`
}

type position struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

type identityResponse struct {
	identity.Data
	// Mnemonic is only set when the phrase was generated by this call
	Mnemonic string `json:"mnemonic,omitempty"`
}

type principalResponse struct {
	PrincipalText string `json:"principal_text"`
}

// DeriveIdentityJSON derives the identity of phrase. A nil phrase means the
// caller has none: a fresh phrase is generated from crypto/rand and returned
// in the "mnemonic" field. An empty phrase is an error.
func DeriveIdentityJSON(alg int32, phrase *string) string {
	return Guard(func() (any, error) {
		a := crypto.Algorithm(alg)
		if !a.Valid() {
			return nil, fmt.Errorf("%w: %d", crypto.ErrUnsupportedAlgorithm, alg)
		}
		if phrase == nil {
			data, used, err := generator.Derive(a, "")
			if err != nil {
				return nil, err
			}
			return identityResponse{Data: data, Mnemonic: string(used)}, nil
		}
		data, err := identity.Derive(a, crypto.Mnemonic(*phrase))
		if err != nil {
			return nil, err
		}
		return identityResponse{Data: data}, nil
	})
}

// PrincipalFromPublicKeyJSON computes the principal of a base64 raw public key.
func PrincipalFromPublicKeyJSON(alg int32, publicKeyB64 string) string {
	return Guard(func() (any, error) {
		raw, err := crypto.DecodeBytesFromString(publicKeyB64)
		if err != nil {
			return nil, fmt.Errorf("%w: public key is not base64: %v", crypto.ErrInvalidKey, err)
		}
		text, err := identity.PrincipalFromPublicKey(crypto.Algorithm(alg), raw)
		if err != nil {
			return nil, err
		}
		return principalResponse{PrincipalText: text}, nil
	})
}

// ParseInterfaceJSON parses interface text. Syntax errors carry a "position".
func ParseInterfaceJSON(text string) string {
	return Guard(func() (any, error) {
		return candid.Parse(text)
	})
}

var (
	hookOnce sync.Once
	hook     atomic.Pointer[func(string)]
)

// InstallPanicHook routes recovered panics to report. Only the first call
// installs a hook; it reports whether this call did. Safe for concurrent use.
func InstallPanicHook(report func(msg string)) (installed bool) {
	hookOnce.Do(func() {
		hook.Store(&report)
		installed = true
	})
	return
}

func reportPanic(r any, stack []byte) {
	if h := hook.Load(); h != nil {
		(*h)(fmt.Sprintf("panic: %v\n%s", r, stack))
		return
	}
	log.Error("recovered panic", zap.String("panic", fmt.Sprint(r)), zap.String("stack", debug.Compact(stack)))
}

// Guard runs fn and encodes its outcome. A panic inside fn is reported
// through the panic hook and returned as an unexpected error.
func Guard(fn func() (any, error)) (out string) {
	defer func() {
		if r := recover(); r != nil {
			reportPanic(r, debug.Stack(false))
			out = encodeError(fmt.Errorf("%w: internal failure: %v", errcode.Unexpected, r))
		}
	}()
	res, err := fn()
	if err != nil {
		return encodeError(err)
	}
	data, err := json.Marshal(res)
	if err != nil {
		return encodeError(fmt.Errorf("%w: %v", crypto.ErrEncodingFailure, err))
	}
	return string(data)
}

func encodeError(err error) string {
	resp := errorResponse{Error: err.Error(), Code: errcode.Code(err)}
	if resp.Code == 0 {
		resp.Code = errcode.Code(errcode.Unexpected)
	}
	var se *candid.SyntaxError
	if errors.As(err, &se) {
		resp.Position = &position{Offset: se.Offset, Line: se.Line, Column: se.Column}
	}
	data, mErr := json.Marshal(resp)
	if mErr != nil {
		return `{"error":"encoding failure","code":1}`
	}
	return string(data)
}
