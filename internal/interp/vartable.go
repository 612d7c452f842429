// Package interp is the script interpreter (spec.md §4.4): it evaluates
// internal/ast trees against a two-scope variable table, coercing dynamic
// value types and deferring unknown function calls to plugins. Grounded on
// the original Rust runtime's ayaka-runtime/src/script.rs, rewritten as an
// explicit switch-based evaluator (idiomatic Go has no pattern-matching
// trait dispatch) in the style of reglet's internal/engine request handling.
package interp

import (
	"context"

	"github.com/ayaka-run/ayaka/internal/value"
)

// MethodCaller is the subset of the plugin host the interpreter depends on:
// dispatching a script-callable method by (namespace, name). Defined here,
// not in internal/pluginhost, so interp has no dependency on the WASM
// machinery; pluginhost.Host satisfies it without either package importing
// the other.
type MethodCaller interface {
	// HasModule reports whether a plugin module named ns is loaded.
	HasModule(ns string) bool
	// DispatchMethod calls ns's exported function name with args, per
	// spec.md §4.3 `dispatch_method`.
	DispatchMethod(ctx context.Context, ns, name string, args []value.Raw) (value.Raw, error)
}

// VarTable is the per-run evaluation context: the plugin host for Call
// dispatch, a borrowed pointer to the record locals, and an owned temp
// scope cleared at the start of every Program.
type VarTable struct {
	Ctx    context.Context
	Host   MethodCaller
	Locals *value.Map
	Vars   value.Map

	// Warn receives script-runtime diagnostics (missing variable, unknown
	// namespace, plugin-call failure, unimplemented operator) rather than
	// writing to a global logger directly, so callers can route them
	// through their own slog.Logger with whatever attributes fit the
	// current playback position. May be nil.
	Warn func(msg string, args ...any)
}

// New creates a VarTable over the given record locals, with a fresh empty
// temp scope.
func New(ctx context.Context, host MethodCaller, locals *value.Map, warn func(string, ...any)) *VarTable {
	return &VarTable{
		Ctx:    ctx,
		Host:   host,
		Locals: locals,
		Vars:   value.NewMap(),
		Warn:   warn,
	}
}

func (t *VarTable) warn(msg string, args ...any) {
	if t.Warn != nil {
		t.Warn(msg, args...)
	}
}
