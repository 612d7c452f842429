// Package main is the "ruby" line plugin: it advertises the `ruby` line
// command (spec.md §4.6 step 7's line pipeline) and resolves a furigana
// annotation — `Other("ruby", [base, reading])` — into a replacement
// ActionLine, while also recording the last-annotated base word into the
// record's local scope so a later script expression can reference it via
// `Ctx(last_ruby)`.
//
// Build with: GOOS=wasip1 GOARCH=wasm go build -o ruby.wasm ./plugins/ruby
//
//go:build wasip1

package main

import (
	"github.com/ayaka-run/ayaka/internal/pluginsdk"
	"github.com/ayaka-run/ayaka/internal/value"
	"github.com/ayaka-run/ayaka/internal/wireformat"
)

// lineRequest mirrors pluginhost.DispatchLine's anonymous request struct.
type lineRequest struct {
	Args []string                      `msgpack:"args"`
	Ctx  wireformat.LineProcessContext `msgpack:"ctx"`
}

//go:wasmexport plugin_type
func pluginType(_, _ uint32) uint64 {
	return pluginsdk.HandleNoArgs(func() wireformat.PluginType {
		return wireformat.PluginType{Line: []string{"ruby"}}
	})
}

//go:wasmexport ruby
func ruby(length, ptr uint32) uint64 {
	return pluginsdk.Handle(length, ptr, func(req lineRequest) wireformat.LineProcessResult {
		if len(req.Args) < 2 {
			return wireformat.LineProcessResult{}
		}
		base, reading := req.Args[0], req.Args[1]
		return wireformat.LineProcessResult{
			Line: &wireformat.ActionLine{
				Kind:  wireformat.ActionLineChars,
				Chars: base + "(" + reading + ")",
			},
			Locals: map[string]value.Raw{"last_ruby": value.Str(base)},
		}
	})
}

func main() {}
