// Package main is the "random" script plugin (spec.md §8, example 4): a
// script-callable `rnd(n)` export the interpreter reaches via
// `random.rnd(n)`. It advertises no action/text/line/game kind — a module
// that is purely script-callable still passes through the host's register
// step, which
// leaves it out of every dispatch table except DispatchMethod's direct
// export lookup.
//
// Build with: GOOS=wasip1 GOARCH=wasm go build -o random.wasm ./plugins/random
//
//go:build wasip1

package main

import (
	"math/rand"

	"github.com/ayaka-run/ayaka/internal/pluginsdk"
	"github.com/ayaka-run/ayaka/internal/value"
	"github.com/ayaka-run/ayaka/internal/wireformat"
)

//go:wasmexport plugin_type
func pluginType(_, _ uint32) uint64 {
	return pluginsdk.HandleNoArgs(func() wireformat.PluginType {
		return wireformat.PluginType{}
	})
}

// rnd is called as `random.rnd(n)` (spec.md §8 example 4): the first
// argument bounds an exclusive random draw. A missing or non-numeric
// argument returns Unit rather than trapping — dispatch_method's contract
// leaves "what a bad call means" to the plugin, and an out-of-range script
// call is not the crash-worthy kind of failure the ABI reserves traps for.
//
//go:wasmexport rnd
func rnd(length, ptr uint32) uint64 {
	return pluginsdk.Handle(length, ptr, func(args []value.Raw) value.Raw {
		if len(args) == 0 || args[0].Type() != value.TypeNum {
			return value.Unit
		}
		n := args[0].GetNum()
		if n <= 0 {
			return value.Unit
		}
		return value.Num(rand.Int63n(n))
	})
}

func main() {}
