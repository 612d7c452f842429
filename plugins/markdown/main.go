// Package main is the "markdown" text plugin: it advertises the `em` and
// `strong` text commands (spec.md §4.3's text registration — exports named
// after the command itself, called with `{ args, ctx }`) and rewrites an
// `em`/`strong` command's arguments into the joined text wrapped in `_` or
// `*` markers, spliced back into the displayed line.
//
// Build with: GOOS=wasip1 GOARCH=wasm go build -o markdown.wasm ./plugins/markdown
//
//go:build wasip1

package main

import (
	"strings"

	"github.com/ayaka-run/ayaka/internal/pluginsdk"
	"github.com/ayaka-run/ayaka/internal/wireformat"
)

// textRequest mirrors pluginhost.DispatchText's anonymous request struct —
// the wire shape every text-command export receives.
type textRequest struct {
	Args []string                      `msgpack:"args"`
	Ctx  wireformat.TextProcessContext `msgpack:"ctx"`
}

//go:wasmexport plugin_type
func pluginType(_, _ uint32) uint64 {
	return pluginsdk.HandleNoArgs(func() wireformat.PluginType {
		return wireformat.PluginType{Text: []string{"em", "strong"}}
	})
}

//go:wasmexport em
func em(length, ptr uint32) uint64 {
	return pluginsdk.Handle(length, ptr, func(req textRequest) wireformat.TextProcessResult {
		return wireformat.TextProcessResult{Text: wrap(req.Args, "_")}
	})
}

//go:wasmexport strong
func strong(length, ptr uint32) uint64 {
	return pluginsdk.Handle(length, ptr, func(req textRequest) wireformat.TextProcessResult {
		return wireformat.TextProcessResult{Text: wrap(req.Args, "*")}
	})
}

func wrap(args []string, marker string) string {
	if len(args) == 0 {
		return ""
	}
	return marker + strings.Join(args, " ") + marker
}

func main() {}
