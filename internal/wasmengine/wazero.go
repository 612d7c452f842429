package wasmengine

import (
	"context"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// wazeroEngine is the production Engine, backed by tetratelabs/wazero (a
// pure-Go WASM runtime, no cgo — reglet's internal/wasm/runtime.go and
// plugin.go are grounded on the same library).
type wazeroEngine struct {
	runtime wazero.Runtime

	logMu    sync.Mutex
	logFuncs map[string]LogFunc
}

// NewEngine builds an Engine with WASI preview1 and the `log` import module
// instantiated once, ready to compile and run plugin modules. reglet's
// internal/wasm/runtime.go registers its host functions exactly once, in
// NewRuntimeWithCapabilities, against the runtime's shared module namespace
// — a host module name must be unique within a wazero.Runtime, so the `log`
// namespace is built here rather than once per plugin instantiation.
func NewEngine(ctx context.Context) (Engine, error) {
	rt := wazero.NewRuntime(ctx)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("wasmengine: instantiate wasi: %w", err)
	}
	e := &wazeroEngine{runtime: rt, logFuncs: make(map[string]LogFunc)}
	if err := e.buildLogModule(ctx); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("wasmengine: instantiate log import: %w", err)
	}
	return e, nil
}

// buildLogModule registers the `log` import namespace a plugin declares in
// its imports: __log(len, ptr) receives a msgpack-encoded LogRecord,
// __log_flush() is a no-op sync point (spec.md §6). Registered once for the
// whole runtime; the calling module's identity is recovered from the `mod
// api.Module` parameter wazero passes to every host function, so one shared
// registration loses no per-module information.
func (e *wazeroEngine) buildLogModule(ctx context.Context) error {
	builder := e.runtime.NewHostModuleBuilder("log")
	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, length, ptr uint32) {
			data, ok := mod.Memory().Read(ptr, length)
			if !ok {
				return
			}
			cp := make([]byte, len(data))
			copy(cp, data)
			e.dispatchLog(ctx, mod.Name(), cp)
		}).
		Export("__log")
	builder.NewFunctionBuilder().
		WithFunc(func(context.Context, api.Module) {}).
		Export("__log_flush")
	_, err := builder.Instantiate(ctx)
	return err
}

func (e *wazeroEngine) setLogFunc(name string, fn LogFunc) {
	e.logMu.Lock()
	defer e.logMu.Unlock()
	if fn == nil {
		delete(e.logFuncs, name)
		return
	}
	e.logFuncs[name] = fn
}

func (e *wazeroEngine) clearLogFunc(name string) {
	e.logMu.Lock()
	defer e.logMu.Unlock()
	delete(e.logFuncs, name)
}

func (e *wazeroEngine) dispatchLog(ctx context.Context, name string, data []byte) {
	e.logMu.Lock()
	fn := e.logFuncs[name]
	e.logMu.Unlock()
	if fn != nil {
		fn(ctx, data)
	}
}

func (e *wazeroEngine) CompileModule(ctx context.Context, wasmBytes []byte) (CompiledModule, error) {
	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("wasmengine: compile module: %w", err)
	}
	return &wazeroCompiledModule{engine: e, compiled: compiled}, nil
}

func (e *wazeroEngine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

type wazeroCompiledModule struct {
	engine   *wazeroEngine
	compiled wazero.CompiledModule
}

func (c *wazeroCompiledModule) Instantiate(ctx context.Context, cfg InstantiateConfig) (Module, error) {
	c.engine.setLogFunc(cfg.Name, cfg.OnLog)

	modCfg := wazero.NewModuleConfig().
		WithName(cfg.Name).
		WithStartFunctions("_initialize")
	if cfg.Stdout != nil {
		modCfg = modCfg.WithStdout(cfg.Stdout)
	}
	if cfg.Stderr != nil {
		modCfg = modCfg.WithStderr(cfg.Stderr)
	}
	if cfg.AssetDir != "" {
		fsConfig := wazero.NewFSConfig().WithReadOnlyDirMount(cfg.AssetDir, "/")
		modCfg = modCfg.WithFSConfig(fsConfig)
	}

	instance, err := c.engine.runtime.InstantiateModule(ctx, c.compiled, modCfg)
	if err != nil {
		c.engine.clearLogFunc(cfg.Name)
		return nil, fmt.Errorf("wasmengine: instantiate module %s: %w", cfg.Name, err)
	}
	return &wazeroModule{instance: instance, engine: c.engine}, nil
}

func (c *wazeroCompiledModule) Close(ctx context.Context) error {
	return c.compiled.Close(ctx)
}

type wazeroModule struct {
	instance api.Module
	engine   *wazeroEngine
}

func (m *wazeroModule) Name() string { return m.instance.Name() }

func (m *wazeroModule) Memory() Memory { return wazeroMemory{m.instance.Memory()} }

func (m *wazeroModule) ExportedFunction(name string) (Func, bool) {
	fn := m.instance.ExportedFunction(name)
	if fn == nil {
		return nil, false
	}
	return wazeroFunc{fn}, true
}

func (m *wazeroModule) Close(ctx context.Context) error {
	m.engine.clearLogFunc(m.instance.Name())
	return m.instance.Close(ctx)
}

type wazeroMemory struct {
	mem api.Memory
}

func (m wazeroMemory) Read(offset, size uint32) ([]byte, bool) { return m.mem.Read(offset, size) }
func (m wazeroMemory) Write(offset uint32, data []byte) bool   { return m.mem.Write(offset, data) }

type wazeroFunc struct {
	fn api.Function
}

func (f wazeroFunc) Call(ctx context.Context, params ...uint64) ([]uint64, error) {
	return f.fn.Call(ctx, params...)
}
