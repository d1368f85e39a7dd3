//go:build js && wasm

// Command icidwasm exposes the bridge on the JS global "icid". Every function
// returns a JSON string; panics are printed with console.error.
package main

import (
	"syscall/js"

	"github.com/icidkit/icid/bridge"
)

func main() {
	bridge.InstallPanicHook(func(msg string) {
		js.Global().Get("console").Call("error", msg)
	})

	api := js.Global().Get("Object").New()
	api.Set("deriveIdentity", js.FuncOf(func(this js.Value, args []js.Value) any {
		var phrase *string
		if len(args) > 1 && args[1].Type() == js.TypeString {
			s := args[1].String()
			phrase = &s
		}
		return bridge.DeriveIdentityJSON(int32(intArg(args, 0)), phrase)
	}))
	api.Set("principalFromPublicKey", js.FuncOf(func(this js.Value, args []js.Value) any {
		return bridge.PrincipalFromPublicKeyJSON(int32(intArg(args, 0)), stringArg(args, 1))
	}))
	api.Set("parseInterface", js.FuncOf(func(this js.Value, args []js.Value) any {
		return bridge.ParseInterfaceJSON(stringArg(args, 0))
	}))
	js.Global().Set("icid", api)

	select {}
}

func intArg(args []js.Value, i int) int {
	if i >= len(args) || args[i].Type() != js.TypeNumber {
		return -1
	}
	return args[i].Int()
}

func stringArg(args []js.Value, i int) string {
	if i >= len(args) || args[i].Type() != js.TypeString {
		return ""
	}
	return args[i].String()
}
