// Command libicid is built with -buildmode=c-shared. Every returned string is
// allocated with malloc and must be released with free_string exactly once.
package main

/*
#include <stdint.h>
#include <stdlib.h>
*/
import "C"

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/icidkit/icid/bridge"
)

func init() {
	bridge.InstallPanicHook(func(msg string) {
		_, _ = fmt.Fprintln(os.Stderr, msg)
	})
}

//export derive_identity
func derive_identity(algorithm C.int32_t, mnemonic *C.char) *C.char {
	var phrase *string
	if mnemonic != nil {
		s := C.GoString(mnemonic)
		phrase = &s
	}
	return C.CString(bridge.DeriveIdentityJSON(int32(algorithm), phrase))
}

//export principal_from_public_key
func principal_from_public_key(algorithm C.int32_t, publicKeyB64 *C.char) *C.char {
	if publicKeyB64 == nil {
		return C.CString(bridge.PrincipalFromPublicKeyJSON(int32(algorithm), ""))
	}
	return C.CString(bridge.PrincipalFromPublicKeyJSON(int32(algorithm), C.GoString(publicKeyB64)))
}

//export parse_interface
func parse_interface(text *C.char) *C.char {
	if text == nil {
		return C.CString(bridge.ParseInterfaceJSON(""))
	}
	return C.CString(bridge.ParseInterfaceJSON(C.GoString(text)))
}

//export free_string
func free_string(s *C.char) {
	if s != nil {
		C.free(unsafe.Pointer(s))
	}
}

func main() {}
