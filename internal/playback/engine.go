// Package playback implements the paragraph/action state machine of
// spec.md §4.6: it walks a game's paragraph graph, evaluates script text
// against the interpreter, and runs the plugin pipeline to cook Actions.
// Grounded on reglet's internal/engine request-handling style (an explicit
// struct holding the long-lived collaborators, methods with no hidden
// global state) and the original Rust runtime's ayaka-runtime/src/context.rs
// for the step algorithm itself.
package playback

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ayaka-run/ayaka/internal/ast"
	"github.com/ayaka-run/ayaka/internal/gameconfig"
	"github.com/ayaka-run/ayaka/internal/interp"
	"github.com/ayaka-run/ayaka/internal/locale"
	"github.com/ayaka-run/ayaka/internal/pluginhost"
	"github.com/ayaka-run/ayaka/internal/value"
	"github.com/ayaka-run/ayaka/internal/wasmengine"
	"github.com/ayaka-run/ayaka/internal/wireformat"
)

// Settings is the player-chosen state that affects text resolution.
type Settings struct {
	Locale string `json:"locale"`
}

// Engine is the playback engine of spec.md §4.6.
type Engine struct {
	runID    string
	game     *wireformat.Game
	host     *pluginhost.Host
	resolver *locale.Resolver
	log      *slog.Logger

	textCache    *lru.Cache[textCacheKey, *ast.Text]
	paraIndex    map[string]map[string]wireformat.Paragraph // locale -> tag -> paragraph
	reverseGraph map[string]string                          // tag -> predecessor tag, base-lang graph

	switchProgram    map[uint64]*ast.Program
	nextSwitchHandle uint64

	settings     Settings
	record       RawContext
	globalRecord value.Map
}

// Open performs spec.md §4.6's Context::open sequence: load the game config,
// create the WASM engine, load plugins, run any game-kind one-shot rewrite,
// and build the paragraph indices. onStatus, if non-nil, receives the
// progress events as they occur (LoadProfile, CreateRuntime, one
// PluginLoadStatus per loaded module).
func Open(ctx context.Context, configPath string, log *slog.Logger, onStatus func(OpenStatus)) (*Engine, error) {
	if log == nil {
		log = slog.Default()
	}
	notify := onStatus
	if notify == nil {
		notify = func(OpenStatus) {}
	}

	runID := uuid.NewString()

	notify(LoadProfileStatus{RunID: runID, Path: configPath})
	game, err := gameconfig.Load(configPath)
	if err != nil {
		return nil, err
	}

	notify(CreateRuntimeStatus{RunID: runID})
	wengine, err := wasmengine.NewEngine(ctx)
	if err != nil {
		return nil, fmt.Errorf("playback: create wasm engine: %w", err)
	}
	host := pluginhost.New(wengine, log)

	pluginDir := filepath.Join(filepath.Dir(configPath), game.Plugins.Dir)
	statusCh, errCh := host.Load(ctx, pluginDir, game.Plugins.Modules)
	for st := range statusCh {
		if lp, ok := st.(pluginhost.LoadPluginStatus); ok {
			notify(PluginLoadStatus{RunID: runID, Name: lp.Name, Index: lp.Index, Total: lp.Total})
		}
	}
	if err := <-errCh; err != nil {
		_ = host.Close(ctx)
		return nil, fmt.Errorf("playback: load plugins: %w", err)
	}

	for _, gm := range host.GameModules() {
		rewritten, err := host.ProcessGame(ctx, gm, wireformat.GameProcessContext{Game: *game})
		if err != nil {
			_ = host.Close(ctx)
			return nil, fmt.Errorf("playback: process_game %s: %w", gm, err)
		}
		*game = rewritten
	}

	keys := make([]string, 0, len(game.Paras))
	for k := range game.Paras {
		keys = append(keys, k)
	}

	e := &Engine{
		runID:         runID,
		game:          game,
		host:          host,
		resolver:      locale.NewResolver(game.BaseLang, keys),
		log:           log,
		textCache:     newTextCache(),
		switchProgram: make(map[uint64]*ast.Program),
		settings:      Settings{Locale: game.BaseLang},
	}
	e.buildParagraphIndices()
	return e, nil
}

// Close tears down the plugin host and its WASM engine.
func (e *Engine) Close(ctx context.Context) error {
	return e.host.Close(ctx)
}

func (e *Engine) buildParagraphIndices() {
	e.paraIndex = make(map[string]map[string]wireformat.Paragraph, len(e.game.Paras))
	for loc, paras := range e.game.Paras {
		m := make(map[string]wireformat.Paragraph, len(paras))
		for _, p := range paras {
			m[p.Tag] = p
		}
		e.paraIndex[loc] = m
	}

	// The reverse graph is cached from the base-language paragraph list at
	// open time (spec.md §4.6 "next_back_run"); when more than one
	// paragraph names the same `next`, the lexically-last one in the base
	// list wins, matching the plugin text/line last-registration-wins
	// convention elsewhere in this module.
	e.reverseGraph = make(map[string]string)
	for _, p := range e.game.Paras[e.game.BaseLang] {
		if p.Next != "" {
			e.reverseGraph[p.Next] = p.Tag
		}
	}
}

// startParagraph returns the first paragraph tag in the base-language
// paragraph list, spec.md §4.6's `starting_tag_in_base_lang`.
func (e *Engine) startParagraph() string {
	base := e.game.Paras[e.game.BaseLang]
	if len(base) == 0 {
		return ""
	}
	return base[0].Tag
}

// InitNew resets the record to a fresh run at the game's starting paragraph.
func (e *Engine) InitNew() {
	e.record = NewRawContext(e.startParagraph())
}

// InitContext restores a previously serialized record verbatim — no replay.
func (e *Engine) InitContext(rc RawContext) {
	if rc.Locals == nil {
		rc.Locals = value.NewMap()
	}
	e.record = rc
}

// SetSettings updates the current settings, invalidating the text cache if
// the locale changed (spec.md §4.6).
func (e *Engine) SetSettings(s Settings) {
	if s.Locale != e.settings.Locale {
		e.textCache.Purge()
	}
	e.settings = s
}

// Settings returns the current settings.
func (e *Engine) Settings() Settings { return e.settings }

// RunID returns the correlation id generated once by Open, attached to every
// progress event it emitted and to this Engine's plugin-call log lines.
func (e *Engine) RunID() string { return e.runID }

// Modules returns the loaded plugin modules' names and advertised kinds, in
// load order (the `ayaka plugins list` reference command).
func (e *Engine) Modules() []pluginhost.ModuleSummary {
	return e.host.Modules()
}

// ChooseLocale resolves the best-matching available locale for the given
// preference list (spec.md §6 `choose_locale([locale]) -> locale?`),
// honoring only the first non-empty preference — the resolver already
// collapses a single target to its best match via BCP-47 best-fit, so a
// full priority-weighted multi-tag match is unneeded. Reports false only
// when every preference is empty.
func (e *Engine) ChooseLocale(preferences []string) (string, bool) {
	for _, p := range preferences {
		if p == "" {
			continue
		}
		return e.resolver.Resolve(p), true
	}
	return "", false
}

// Info is the static descriptive metadata the `info` command (spec.md §6)
// reports about the opened game.
type Info struct {
	Title    string   `json:"title"`
	Author   string   `json:"author,omitempty"`
	BaseLang string   `json:"base_lang"`
	Locales  []string `json:"locales"`
}

// Info reports the opened game's title, author, base language, and the
// locales its paragraph table covers.
func (e *Engine) Info() Info {
	locales := make([]string, 0, len(e.game.Paras))
	for loc := range e.game.Paras {
		locales = append(locales, loc)
	}
	sort.Strings(locales)
	return Info{
		Title:    e.game.Title,
		Author:   e.game.Author,
		BaseLang: e.game.BaseLang,
		Locales:  locales,
	}
}

// SetGlobalRecord replaces the cross-run state.
func (e *Engine) SetGlobalRecord(g value.Map) { e.globalRecord = g }

// GlobalRecord returns the cross-run state.
func (e *Engine) GlobalRecord() value.Map { return e.globalRecord }

// Record returns the current playback position, for saving.
func (e *Engine) Record() RawContext { return e.record }

// CurrentRun returns the most recently produced action, if any.
func (e *Engine) CurrentRun() (*wireformat.Action, bool) {
	n := len(e.record.History)
	if n == 0 {
		return nil, false
	}
	return &e.record.History[n-1].Action, true
}

// CurrentVisited reports whether the current action's paragraph position
// occurs earlier in history too (spec.md §4.6 "visited").
func (e *Engine) CurrentVisited() bool {
	n := len(e.record.History)
	if n == 0 {
		return false
	}
	last := e.record.History[n-1]
	for i := 0; i < n-1; i++ {
		if e.record.History[i].Tag == last.Tag && e.record.History[i].Act == last.Act {
			return true
		}
	}
	return false
}

// History returns the recorded actions, reverse-chronological (spec.md §6).
func (e *Engine) History() []wireformat.Action {
	out := make([]wireformat.Action, len(e.record.History))
	n := len(e.record.History)
	for i, h := range e.record.History {
		out[n-1-i] = h.Action
	}
	return out
}

func (e *Engine) warnFunc() func(string, ...any) {
	return func(msg string, args ...any) {
		e.log.Warn(msg, args...)
	}
}

// NextRun implements spec.md §4.6's eight-step next_run algorithm. Returns
// (nil, false, nil) when the game has ended (no `next` from the final
// paragraph).
func (e *Engine) NextRun(ctx context.Context) (*wireformat.Action, bool, error) {
	for {
		tag := e.record.CurPara
		i := e.record.CurAct
		if tag == "" {
			return nil, false, nil
		}

		resolvedLocale := e.resolver.Resolve(e.settings.Locale)
		fb := locale.NewFallback(resolvedLocale, e.game.BaseLang, func(key string) (wireformat.Paragraph, bool) {
			p, ok := e.paraIndex[key][tag]
			return p, ok
		})

		text, textLocale, found := e.resolveText(fb, i, resolvedLocale)
		if !found {
			nextTag := ""
			if fb.Primary != nil && fb.Primary.Next != "" {
				nextTag = fb.Primary.Next
			} else if fb.Fallback != nil {
				nextTag = fb.Fallback.Next
			}
			if nextTag == "" {
				return nil, false, nil
			}
			e.record.CurPara = nextTag
			e.record.CurAct = 0
			continue
		}

		tx := e.parseCached(tag, textLocale, i, text)

		lines, switches, character := e.linearize(ctx, tx, resolvedLocale)
		action := wireformat.Action{
			Line:      lines,
			Switches:  switches,
			Character: character,
			Vars:      e.record.Locals.Clone(),
		}

		action = e.runActionPipeline(ctx, resolvedLocale, action)
		action = e.runLinePipeline(ctx, resolvedLocale, action)

		e.record.History = append(e.record.History, HistoryEntry{Action: action, Tag: tag, Act: i})
		e.record.CurAct = i + 1
		return &action, true, nil
	}
}

func (e *Engine) resolveText(fb locale.Fallback[wireformat.Paragraph], i int, resolvedLocale string) (text, textLocale string, found bool) {
	if fb.Primary != nil && i < len(fb.Primary.Texts) {
		return fb.Primary.Texts[i], resolvedLocale, true
	}
	if fb.Fallback != nil && i < len(fb.Fallback.Texts) {
		return fb.Fallback.Texts[i], e.game.BaseLang, true
	}
	return "", "", false
}

func (e *Engine) parseCached(tag, loc string, i int, text string) *ast.Text {
	key := textCacheKey{tag: tag, locale: loc, index: i}
	if tx, ok := e.textCache.Get(key); ok {
		return tx
	}
	tx := ast.ParseText(text)
	e.textCache.Add(key, tx)
	return tx
}

func (e *Engine) runActionPipeline(ctx context.Context, resolvedLocale string, action wireformat.Action) wireformat.Action {
	for _, modName := range e.host.ActionModules() {
		out, err := e.host.ProcessAction(ctx, modName, wireformat.ActionProcessContext{
			Action: action,
			Locale: resolvedLocale,
			Props:  e.game.Props,
			Locals: e.record.Locals,
		})
		if err != nil {
			e.log.Warn("process_action failed, skipping module for this action", "run_id", e.runID, "module", modName, "error", err)
			continue
		}
		action = out
	}
	return action
}

func (e *Engine) runLinePipeline(ctx context.Context, resolvedLocale string, action wireformat.Action) wireformat.Action {
	lctx := wireformat.LineProcessContext{Locale: resolvedLocale, Props: e.game.Props}
	out := make([]wireformat.ActionLine, 0, len(action.Line))
	for _, line := range action.Line {
		if line.Kind != wireformat.ActionLineOther {
			out = append(out, line)
			continue
		}
		result, err := e.host.DispatchLine(ctx, line.Command, line.Args, lctx)
		if err != nil {
			e.log.Warn("dispatch_line failed, dropping command", "run_id", e.runID, "command", line.Command, "error", err)
			continue
		}
		if result.Line != nil {
			out = append(out, *result.Line)
		}
		for k, v := range result.Locals {
			e.record.Locals[k] = v
		}
	}
	action.Line = out
	return action
}

// linearize walks a parsed Text, producing the cooked Action's pre-pipeline
// line fragments, switches, and speaking character. This fuses spec.md
// §4.6 steps 4 ("evaluate the Text") and 5 ("build the initial Action") into
// one pass, since both walk the same AST: plain text and Ctx interpolation
// accumulate into ActionLine::Chars runs, a Res command is resolved against
// the locale's resources and written into the same run, while
// Character/Block/Switch are preserved structurally. An Other command registered as a text module
// (spec.md §4.3 `text_modules`) is resolved inline via dispatch_text and
// spliced into the surrounding run; anything else is left as a residual
// ActionLineOther for the line pipeline (step 7).
func (e *Engine) linearize(ctx context.Context, tx *ast.Text, resolvedLocale string) ([]wireformat.ActionLine, []wireformat.Switch, *wireformat.Character) {
	var lines []wireformat.ActionLine
	var switches []wireformat.Switch
	var character *wireformat.Character
	var buf strings.Builder

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		lines = append(lines, wireformat.ActionLine{Kind: wireformat.ActionLineChars, Chars: buf.String()})
		buf.Reset()
	}

	for _, part := range tx.Parts {
		switch part.Kind {
		case ast.SubTextStr:
			buf.WriteString(part.Str)
		case ast.SubTextCmd:
			e.linearizeCommand(ctx, part.Cmd, resolvedLocale, &buf, flush, &lines, &switches, &character)
		}
	}
	flush()

	trimEnds(lines)
	return lines, switches, character
}

func (e *Engine) linearizeCommand(
	ctx context.Context,
	c ast.Command,
	resolvedLocale string,
	buf *strings.Builder,
	flush func(),
	lines *[]wireformat.ActionLine,
	switches *[]wireformat.Switch,
	character **wireformat.Character,
) {
	switch c.Kind {
	case ast.CmdCtx:
		name := ""
		if len(c.Args) > 0 {
			name = c.Args[0]
		}
		if v, ok := e.record.Locals[name]; ok {
			buf.WriteString(v.GetStr())
		} else {
			e.log.Warn("cannot find variable", "name", "$"+name)
		}
	case ast.CmdCharacter:
		*character = &wireformat.Character{Name: c.Name}
	case ast.CmdRes:
		buf.WriteString(e.resolveRes(resolvedLocale, c.Name).GetStr())
	case ast.CmdOther:
		switch {
		case c.Name == "block":
			flush()
			*lines = append(*lines, wireformat.ActionLine{Kind: wireformat.ActionLineBlock, Block: c.Args})
		case c.Name == "switch":
			text := ""
			if len(c.Args) > 0 {
				text = c.Args[0]
			}
			enabled := true
			if len(c.Args) > 1 {
				enabled = c.Args[1] != "false"
			}
			*switches = append(*switches, wireformat.Switch{
				Text:    text,
				Enabled: enabled,
				Action:  e.registerSwitch(c.Program),
			})
		default:
			if _, ok := e.host.TextModule(c.Name); ok {
				result, err := e.host.DispatchText(ctx, c.Name, c.Args, wireformat.TextProcessContext{
					Locale: resolvedLocale,
					Props:  e.game.Props,
				})
				if err != nil {
					e.log.Warn("dispatch_text failed", "run_id", e.runID, "command", c.Name, "error", err)
					return
				}
				buf.WriteString(result.Text)
				return
			}
			flush()
			*lines = append(*lines, wireformat.ActionLine{Kind: wireformat.ActionLineOther, Command: c.Name, Args: c.Args})
		}
	}
}

// resolveRes resolves a `Res(key)` command against the game's resource
// table with the same locale-fallback used for paragraphs (SPEC_FULL.md,
// "Supplemented features": Res commands are resolved directly by the
// playback engine rather than routed through the plugin pipeline).
func (e *Engine) resolveRes(resolvedLocale, key string) value.Raw {
	fb := locale.NewFallback(resolvedLocale, e.game.BaseLang, func(k string) (value.Raw, bool) {
		v, ok := e.game.Res[k][key]
		return v, ok
	})
	if fb.Primary != nil {
		return *fb.Primary
	}
	if fb.Fallback != nil {
		return *fb.Fallback
	}
	return value.Unit
}

func trimEnds(lines []wireformat.ActionLine) {
	if len(lines) == 0 {
		return
	}
	if lines[0].Kind == wireformat.ActionLineChars {
		lines[0].Chars = strings.TrimLeft(lines[0].Chars, " \t\r\n")
	}
	last := len(lines) - 1
	if lines[last].Kind == wireformat.ActionLineChars {
		lines[last].Chars = strings.TrimRight(lines[last].Chars, " \t\r\n")
	}
}

func (e *Engine) registerSwitch(prog *ast.Program) []byte {
	if prog == nil {
		prog = &ast.Program{}
	}
	idx := e.nextSwitchHandle
	e.nextSwitchHandle++
	e.switchProgram[idx] = prog
	handle := make([]byte, 8)
	binary.BigEndian.PutUint64(handle, idx)
	return handle
}

// NextBackRun pops the last history entry and rewinds the position,
// returning the popped action without re-running any plugin (spec.md §4.6:
// "history is authoritative").
func (e *Engine) NextBackRun() (*wireformat.Action, bool) {
	n := len(e.record.History)
	if n == 0 {
		return nil, false
	}
	entry := e.record.History[n-1]
	e.record.History = e.record.History[:n-1]

	if e.record.CurAct > 0 {
		e.record.CurAct--
	} else if prevTag, ok := e.reverseGraph[e.record.CurPara]; ok {
		e.record.CurPara = prevTag
		e.record.CurAct = len(e.game.Paras[e.game.BaseLang][e.indexOfTag(prevTag)].Texts)
		if e.record.CurAct > 0 {
			e.record.CurAct--
		}
	}
	return &entry.Action, true
}

func (e *Engine) indexOfTag(tag string) int {
	for i, p := range e.game.Paras[e.game.BaseLang] {
		if p.Tag == tag {
			return i
		}
	}
	return 0
}

// Call evaluates a switch's guarded action (spec.md §4.6 "call"), persisting
// any side effects into the record locals.
func (e *Engine) Call(ctx context.Context, handle []byte) (value.Raw, error) {
	if len(handle) != 8 {
		return value.Unit, &BadArgumentError{Message: "malformed switch handle"}
	}
	idx := binary.BigEndian.Uint64(handle)
	prog, ok := e.switchProgram[idx]
	if !ok {
		return value.Unit, &BadArgumentError{Message: fmt.Sprintf("unknown switch handle %d", idx)}
	}
	vt := interp.New(ctx, e.host, &e.record.Locals, e.warnFunc())
	return vt.EvalProgram(prog), nil
}
