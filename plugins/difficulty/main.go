// Package main is the "difficulty" game plugin: it advertises the game
// kind and runs once at load (spec.md §4.6's `process_game` one-shot
// rewrite), filling in a `difficulty` prop with a default when the game
// config omits one — the load-time analogue of the action pipeline's
// per-step rewriting.
//
// Build with: GOOS=wasip1 GOARCH=wasm go build -o difficulty.wasm ./plugins/difficulty
//
//go:build wasip1

package main

import (
	"github.com/ayaka-run/ayaka/internal/pluginsdk"
	"github.com/ayaka-run/ayaka/internal/wireformat"
)

const defaultDifficulty = "normal"

//go:wasmexport plugin_type
func pluginType(_, _ uint32) uint64 {
	return pluginsdk.HandleNoArgs(func() wireformat.PluginType {
		return wireformat.PluginType{Game: true}
	})
}

//go:wasmexport process_game
func processGame(length, ptr uint32) uint64 {
	return pluginsdk.Handle(length, ptr, func(in wireformat.GameProcessContext) wireformat.Game {
		game := in.Game
		if game.Props == nil {
			game.Props = map[string]string{}
		}
		if _, ok := game.Props["difficulty"]; !ok {
			game.Props["difficulty"] = defaultDifficulty
		}
		return game
	})
}

func main() {}
