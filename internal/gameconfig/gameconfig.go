// Package gameconfig loads and validates a game's YAML configuration
// (spec.md §6), producing the wireformat.Game value the playback engine and
// game-kind plugins operate on. Grounded on reglet's
// internal/infrastructure/config/yaml_loader.go (os.OpenRoot path-traversal
// guard, goccy/go-yaml decoding) and internal/config/validation.go
// (jsonschema-based structural validation).
package gameconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/ayaka-run/ayaka/internal/value"
	"github.com/ayaka-run/ayaka/internal/wireformat"
)

// ConfigError wraps a game-config load or validation failure (spec.md §7
// configuration error kind). It always surfaces to the caller — open-game
// fails and no engine is installed.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("gameconfig: %s: %v", e.Path, e.Err)
}
func (e *ConfigError) Unwrap() error { return e.Err }

// Load reads and validates the game config YAML file at path. The file is
// opened through an os.Root on its containing directory; that root is
// closed when Load returns and is not used for any later file access.
func Load(path string) (*wireformat.Game, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("open game directory: %w", err)}
	}
	defer root.Close()

	file, err := root.Open(base)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("open game config: %w", err)}
	}
	defer file.Close()

	var raw yamlGame
	dec := yaml.NewDecoder(file)
	if err := dec.Decode(&raw); err != nil {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("decode YAML: %w", err)}
	}

	game := &wireformat.Game{
		Title:    raw.Title,
		Author:   raw.Author,
		BaseLang: raw.BaseLang,
		Plugins:  wireformat.PluginsConfig{Dir: raw.Plugins.Dir, Modules: raw.Plugins.Modules},
		Props:    raw.Props,
		Paras:    raw.Paras,
	}
	if raw.Res != nil {
		game.Res = make(map[string]map[string]value.Raw, len(raw.Res))
		for locale, entries := range raw.Res {
			converted := make(map[string]value.Raw, len(entries))
			for k, v := range entries {
				converted[k] = value.FromInterface(v)
			}
			game.Res[locale] = converted
		}
	}

	if err := Validate(game); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	return game, nil
}
