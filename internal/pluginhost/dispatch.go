package pluginhost

import (
	"context"
	"fmt"

	"github.com/ayaka-run/ayaka/internal/abi"
	"github.com/ayaka-run/ayaka/internal/value"
	"github.com/ayaka-run/ayaka/internal/wasmengine"
	"github.com/ayaka-run/ayaka/internal/wireformat"
)

func exportCall(ctx context.Context, mod wasmengine.Module, moduleName, export string, args, result any) error {
	return abi.Export(ctx, mod, moduleName, export, args, result)
}

func (h *Host) module(name string) (*loadedModule, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.modules[name]
	return m, ok
}

// DispatchMethod calls an arbitrary script-callable export on module ns
// (spec.md §4.3 `dispatch_method`), satisfying internal/interp.MethodCaller.
func (h *Host) DispatchMethod(ctx context.Context, ns, name string, args []value.Raw) (value.Raw, error) {
	entry, ok := h.module(ns)
	if !ok {
		return value.Unit, fmt.Errorf("pluginhost: no module named %q", ns)
	}
	var result value.Raw
	if err := exportCall(ctx, entry.module, ns, name, args, &result); err != nil {
		return value.Unit, err
	}
	return result, nil
}

// ModuleSummary is a loaded plugin's name and advertised kinds, used for
// introspection (the `ayaka plugins list` reference command).
type ModuleSummary struct {
	Name string
	Kind wireformat.PluginType
}

// Modules returns every loaded module's name and advertised kind, in load
// order.
func (h *Host) Modules() []ModuleSummary {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]ModuleSummary, 0, len(h.order))
	for _, name := range h.order {
		out = append(out, ModuleSummary{Name: name, Kind: h.modules[name].kind})
	}
	return out
}

// ActionModules returns the action-kind modules in load order.
func (h *Host) ActionModules() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.actionModules))
	copy(out, h.actionModules)
	return out
}

// GameModules returns the game-kind modules in load order.
func (h *Host) GameModules() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.gameModules))
	copy(out, h.gameModules)
	return out
}

// TextModule returns the module registered for text command cmd, if any.
func (h *Host) TextModule(cmd string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.textModules[cmd]
	return m, ok
}

// LineModule returns the module registered for line command cmd, if any.
func (h *Host) LineModule(cmd string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.lineModules[cmd]
	return m, ok
}

// ProcessAction runs one module's `process_action` rewrite.
func (h *Host) ProcessAction(ctx context.Context, moduleName string, in wireformat.ActionProcessContext) (wireformat.Action, error) {
	entry, ok := h.module(moduleName)
	if !ok {
		return in.Action, fmt.Errorf("pluginhost: no module named %q", moduleName)
	}
	var out wireformat.Action
	if err := exportCall(ctx, entry.module, moduleName, "process_action", in, &out); err != nil {
		return in.Action, err
	}
	return out, nil
}

// DispatchText calls the module registered for a text command.
func (h *Host) DispatchText(ctx context.Context, cmd string, args []string, tctx wireformat.TextProcessContext) (wireformat.TextProcessResult, error) {
	moduleName, ok := h.TextModule(cmd)
	if !ok {
		return wireformat.TextProcessResult{}, fmt.Errorf("pluginhost: no text module for command %q", cmd)
	}
	entry, _ := h.module(moduleName)
	type req struct {
		Args []string                       `msgpack:"args"`
		Ctx  wireformat.TextProcessContext `msgpack:"ctx"`
	}
	var out wireformat.TextProcessResult
	if err := exportCall(ctx, entry.module, moduleName, cmd, req{Args: args, Ctx: tctx}, &out); err != nil {
		return wireformat.TextProcessResult{}, err
	}
	return out, nil
}

// DispatchLine calls the module registered for a line command.
func (h *Host) DispatchLine(ctx context.Context, cmd string, args []string, lctx wireformat.LineProcessContext) (wireformat.LineProcessResult, error) {
	moduleName, ok := h.LineModule(cmd)
	if !ok {
		return wireformat.LineProcessResult{}, fmt.Errorf("pluginhost: no line module for command %q", cmd)
	}
	entry, _ := h.module(moduleName)
	type req struct {
		Args []string                       `msgpack:"args"`
		Ctx  wireformat.LineProcessContext `msgpack:"ctx"`
	}
	var out wireformat.LineProcessResult
	if err := exportCall(ctx, entry.module, moduleName, cmd, req{Args: args, Ctx: lctx}, &out); err != nil {
		return wireformat.LineProcessResult{}, err
	}
	return out, nil
}

// ProcessGame runs one module's `process_game` one-shot config rewrite.
func (h *Host) ProcessGame(ctx context.Context, moduleName string, in wireformat.GameProcessContext) (wireformat.Game, error) {
	entry, ok := h.module(moduleName)
	if !ok {
		return in.Game, fmt.Errorf("pluginhost: no module named %q", moduleName)
	}
	var out wireformat.Game
	if err := exportCall(ctx, entry.module, moduleName, "process_game", in, &out); err != nil {
		return in.Game, err
	}
	return out, nil
}
