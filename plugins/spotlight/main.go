// Package main is the "spotlight" action plugin: it advertises the action
// kind and rewrites every cooked Action (spec.md §4.6 step 6's action
// pipeline), prefixing the speaker's name with a marker when a
// `spotlight` prop names them — a minimal, concrete stand-in for the class
// of rewriting plugins the action pipeline is built to support (censoring,
// theming, analytics).
//
// Build with: GOOS=wasip1 GOARCH=wasm go build -o spotlight.wasm ./plugins/spotlight
//
//go:build wasip1

package main

import (
	"github.com/ayaka-run/ayaka/internal/pluginsdk"
	"github.com/ayaka-run/ayaka/internal/wireformat"
)

//go:wasmexport plugin_type
func pluginType(_, _ uint32) uint64 {
	return pluginsdk.HandleNoArgs(func() wireformat.PluginType {
		return wireformat.PluginType{Action: true}
	})
}

//go:wasmexport process_action
func processAction(length, ptr uint32) uint64 {
	return pluginsdk.Handle(length, ptr, func(in wireformat.ActionProcessContext) wireformat.Action {
		out := in.Action
		spot := in.Props["spotlight"]
		if spot == "" || out.Character == nil || out.Character.Name != spot {
			return out
		}
		name := *out.Character
		name.Name = "* " + name.Name
		out.Character = &name
		return out
	})
}

func main() {}
