// Package wasmengine adapts a WASM runtime to the narrow capability set the
// plugin host needs: compile a module, instantiate it with WASI and a `log`
// import, call a typed export, read/write linear memory (spec.md §4.2). The
// interface exists so internal/pluginhost never imports wazero directly,
// mirroring other_examples' wapc-go engine abstraction (its `Engine`/
// `NewRuntime` seam over multiple WASM backends) while reglet's
// internal/wasm/runtime.go and plugin.go supply the concrete instantiation,
// memory, and export-call patterns this package adapts.
package wasmengine

import (
	"context"
	"io"
)

// Memory is a module instance's linear memory.
type Memory interface {
	Read(offset, size uint32) ([]byte, bool)
	Write(offset uint32, data []byte) bool
}

// Func is a callable export or import.
type Func interface {
	Call(ctx context.Context, params ...uint64) ([]uint64, error)
}

// Module is an instantiated WASM module.
type Module interface {
	Name() string
	Memory() Memory
	ExportedFunction(name string) (Func, bool)
	Close(ctx context.Context) error
}

// LogFunc receives the raw msgpack-encoded payload a module passes to the
// `log.__log` import (spec.md §6).
type LogFunc func(ctx context.Context, data []byte)

// InstantiateConfig configures one module instantiation.
type InstantiateConfig struct {
	// Name is the module's registration name, used for wazero's internal
	// module namespace and for diagnostics.
	Name string
	// AssetDir, if non-empty, is preopened read-only at "/" inside the
	// module (spec.md §6: "a standard WASI surface with stdio inherited and
	// `/` preopened read-only").
	AssetDir string
	Stdout   io.Writer
	Stderr   io.Writer
	// OnLog is invoked for every `log.__log` call; nil discards log output.
	OnLog LogFunc
}

// CompiledModule is a parsed, not-yet-instantiated WASM module. Compiling is
// the expensive step (validation, codegen); Instantiate is cheap and may be
// called more than once for the same CompiledModule.
type CompiledModule interface {
	Instantiate(ctx context.Context, cfg InstantiateConfig) (Module, error)
	Close(ctx context.Context) error
}

// Engine compiles WASM bytecode into CompiledModules. One Engine owns the
// plugin host's entire WASM store (spec.md §5: "the WASM store is not
// thread-safe... confined to the engine's owning task").
type Engine interface {
	CompileModule(ctx context.Context, wasmBytes []byte) (CompiledModule, error)
	Close(ctx context.Context) error
}
