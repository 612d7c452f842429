// Package wireformat defines the MessagePack-tagged structs that cross the
// host↔plugin ABI boundary (spec.md §4.1, §4.3, §6). It is imported by both
// internal/abi (the codec) and internal/pluginhost (the dispatch calls), and
// is also the shape a plugin-side SDK (pluginsdk) encodes against — mirroring
// reglet's shared wireformat package, which the host and plugin sides both
// import for wire type parity.
package wireformat

import "github.com/ayaka-run/ayaka/internal/value"

// PluginType is the result of a module's `plugin_type()` export: the set of
// kinds it advertises (spec.md §4.3).
type PluginType struct {
	Action bool     `msgpack:"action"`
	Text   []string `msgpack:"text"`
	Line   []string `msgpack:"line"`
	Game   bool     `msgpack:"game"`
}

// Character names the speaker of an Action, if any.
type Character struct {
	Name string `msgpack:"name" json:"name"`
}

// ActionLineKind distinguishes the three shapes an ActionLine fragment takes.
type ActionLineKind int

const (
	ActionLineChars ActionLineKind = iota
	ActionLineBlock
	// ActionLineOther is a residual `Other(command, args)` node not
	// consumed by Chars/Block/Switch/Character handling during
	// linearization; the line pipeline (spec.md §4.6 step 7) resolves it
	// via dispatch_line and splices in (or drops) the result.
	ActionLineOther
)

// ActionLine is one linearized fragment of a cooked Action's displayed line:
// plain characters, a structurally preserved Block command (from an
// `Other("block", …)` node), or an unresolved Other command awaiting the
// line pipeline (see SPEC_FULL.md's decided open question on structural
// preservation).
type ActionLine struct {
	Kind    ActionLineKind `msgpack:"kind" json:"kind"`
	Chars   string         `msgpack:"chars,omitempty" json:"chars,omitempty"`
	Block   []string       `msgpack:"block,omitempty" json:"block,omitempty"`
	Command string         `msgpack:"command,omitempty" json:"command,omitempty"`
	Args    []string       `msgpack:"args,omitempty" json:"args,omitempty"`
}

// Switch is one selectable branch collected from an `Other("switch", …)`
// command: displayed text, an enabled flag, and the compiled guarded action
// expression, serialized as opaque bytes (the host holds the real AST
// in-process; plugins receive only an opaque handle to echo back via
// `switch(i)`).
type Switch struct {
	Text    string `msgpack:"text" json:"text"`
	Enabled bool   `msgpack:"enabled" json:"enabled"`
	Action  []byte `msgpack:"action" json:"action"`
}

// Action is the cooked unit of playback (GLOSSARY): lines, switches, and
// metadata, as rewritten by the action pipeline and handed to the front-end.
type Action struct {
	Line      []ActionLine         `msgpack:"line" json:"line"`
	Switches  []Switch             `msgpack:"switches" json:"switches"`
	Character *Character           `msgpack:"character,omitempty" json:"character,omitempty"`
	Vars      map[string]value.Raw `msgpack:"vars" json:"vars"`
}

// ActionProcessContext is the argument to `process_action`: the action as
// built so far, plus enough surrounding context for a rewriting plugin to
// make decisions.
type ActionProcessContext struct {
	Action  Action               `msgpack:"action"`
	Locale  string               `msgpack:"locale"`
	Props   map[string]string    `msgpack:"props"`
	Locals  map[string]value.Raw `msgpack:"locals"`
}

// TextProcessContext is the locale/props context passed to `dispatch_text`;
// the raw command arguments travel beside it in the request, not in it.
type TextProcessContext struct {
	Locale string            `msgpack:"locale"`
	Props  map[string]string `msgpack:"props"`
}

// TextProcessResult is a text command module's rewritten output: the
// replacement string spliced into the displayed line.
type TextProcessResult struct {
	Text string `msgpack:"text"`
}

// LineProcessContext is the locale/props context passed to `dispatch_line`,
// mirroring TextProcessContext; the raw command arguments travel beside it.
type LineProcessContext struct {
	Locale string            `msgpack:"locale"`
	Props  map[string]string `msgpack:"props"`
}

// LineProcessResult is a line command module's output: an optional
// replacement ActionLine fragment and any record-local writes to merge
// (spec.md §4.6 step 7).
type LineProcessResult struct {
	Line   *ActionLine          `msgpack:"line,omitempty"`
	Locals map[string]value.Raw `msgpack:"locals"`
}

// GameProcessContext is the argument to `process_game`: the full decoded
// game config, offered to game-kind modules for a one-shot rewrite at load.
type GameProcessContext struct {
	Game Game `msgpack:"game"`
}

// Paragraph is one scripted text cluster (spec.md §6).
type Paragraph struct {
	Tag   string   `msgpack:"tag" yaml:"tag"`
	Title string   `msgpack:"title,omitempty" yaml:"title,omitempty"`
	Texts []string `msgpack:"texts" yaml:"texts"`
	Next  string   `msgpack:"next,omitempty" yaml:"next,omitempty"`
}

// Game is the wire shape of a game's config, used both as the decoded form
// of the on-disk YAML (internal/gameconfig) and as the process_game payload
// — the plugin ABI and the on-disk config share one schema, per spec.md §6.
// Res holds value.Raw, which has no goccy/go-yaml custom-unmarshal hook;
// internal/gameconfig decodes YAML into an intermediate generic shape and
// converts via value.FromInterface rather than teaching this type to decode
// YAML directly.
type Game struct {
	Title    string                          `msgpack:"title"`
	Author   string                          `msgpack:"author,omitempty"`
	BaseLang string                          `msgpack:"base_lang"`
	Plugins  PluginsConfig                   `msgpack:"plugins"`
	Props    map[string]string               `msgpack:"props,omitempty"`
	Paras    map[string][]Paragraph          `msgpack:"paras"`
	Res      map[string]map[string]value.Raw `msgpack:"res,omitempty"`
}

// PluginsConfig names where to load modules from and, optionally, which
// ones in what order (spec.md §4.3 load-order rule).
type PluginsConfig struct {
	Dir     string   `msgpack:"dir" yaml:"dir"`
	Modules []string `msgpack:"modules,omitempty" yaml:"modules,omitempty"`
}

// LogRecord is a structured log entry a plugin emits through the `__log`
// import, msgpack-encoded in place of reglet's JSON-over-stdio convention
// (SPEC_FULL.md, "structured log records crossing the ABI").
type LogRecord struct {
	Level   string `msgpack:"level"`
	Target  string `msgpack:"target"`
	Message string `msgpack:"message"`
	Module  string `msgpack:"module,omitempty"`
	File    string `msgpack:"file,omitempty"`
	Line    uint32 `msgpack:"line,omitempty"`
}
