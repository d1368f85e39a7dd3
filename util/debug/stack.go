// Package debug captures goroutine stacks for panic reports.
package debug

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"runtime"
)

// Stack returns the current goroutine stack, or every goroutine when all is set.
func Stack(all bool) []byte {
	buf := make([]byte, 1024)
	for {
		n := runtime.Stack(buf, all)
		if n < len(buf) {
			return buf[:n]
		}
		buf = make([]byte, 2*len(buf))
	}
}

// Compact gzips stack and encodes it as base64 so it fits in a single log field.
func Compact(stack []byte) string {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, _ = gz.Write(stack)
	_ = gz.Close()
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// Expand reverses Compact.
func Expand(compact string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		return nil, err
	}
	rd, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer rd.Close()
	var out bytes.Buffer
	if _, err = out.ReadFrom(rd); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
