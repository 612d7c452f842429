package pluginhost

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ayaka-run/ayaka/internal/wasmengine"
	"github.com/ayaka-run/ayaka/internal/wireformat"
)

// maxConcurrentCompiles bounds how many plugin modules are compiled (the
// validation/codegen step) in parallel. Registration into the classification
// tables always happens afterward, strictly in load order, so override
// semantics (last-registration-wins) never depend on compile scheduling.
const maxConcurrentCompiles = 4

// Host is the loaded plugin host of spec.md §4.3: the classification tables
// built from each module's advertised PluginType, and the five dispatch
// methods. It confines the one underlying wasmengine.Engine to whichever
// goroutine calls its methods — spec.md §5 requires the store never be used
// concurrently from more than one task at a time, so Host performs no
// internal locking around plugin calls themselves, only around the maps
// built at load time.
type Host struct {
	engine wasmengine.Engine
	log    *slog.Logger

	mu            sync.Mutex
	modules       map[string]*loadedModule
	order         []string
	actionModules []string
	textModules   map[string]string
	lineModules   map[string]string
	gameModules   []string
}

type loadedModule struct {
	name   string
	kind   wireformat.PluginType
	module wasmengine.Module
}

// New constructs an empty Host over the given engine. Call Load to populate
// it from a plugin directory.
func New(engine wasmengine.Engine, log *slog.Logger) *Host {
	if log == nil {
		log = slog.Default()
	}
	return &Host{
		engine:      engine,
		log:         log,
		modules:     make(map[string]*loadedModule),
		textModules: make(map[string]string),
		lineModules: make(map[string]string),
	}
}

// Load loads plugin modules from dir, classifies them, and reports progress
// on the returned channel (closed when loading finishes or fails). names, if
// non-empty, is the explicit load order; missing files are silently skipped.
// An empty names list loads every `*.wasm` file lexically by filename
// (spec.md §4.3).
func (h *Host) Load(ctx context.Context, dir string, names []string) (<-chan LoadStatus, <-chan error) {
	statusCh := make(chan LoadStatus, 8)
	errCh := make(chan error, 1)

	go func() {
		defer close(statusCh)
		defer close(errCh)

		statusCh <- CreateEngineStatus{}

		paths, err := h.resolveLoadOrder(dir, names)
		if err != nil {
			errCh <- err
			return
		}

		compiled, err := h.compileAll(ctx, paths)
		if err != nil {
			errCh <- err
			return
		}

		for i, path := range paths {
			name := moduleName(path)
			entry, err := h.instantiateAndClassify(ctx, name, path, compiled[i])
			if err != nil {
				errCh <- err
				return
			}

			h.mu.Lock()
			h.register(entry)
			h.mu.Unlock()

			statusCh <- LoadPluginStatus{Name: name, Index: i + 1, Total: len(paths)}
		}
	}()

	return statusCh, errCh
}

func moduleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (h *Host) resolveLoadOrder(dir string, names []string) ([]string, error) {
	if len(names) == 0 {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, &LoadError{Path: dir, Err: err}
		}
		var paths []string
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".wasm") {
				continue
			}
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
		sort.Strings(paths)
		return paths, nil
	}

	var paths []string
	for _, n := range names {
		p := filepath.Join(dir, n)
		if !strings.HasSuffix(p, ".wasm") {
			p += ".wasm"
		}
		if _, err := os.Stat(p); err != nil {
			continue // missing files are silently skipped
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// compileAll compiles every module's bytecode with bounded concurrency.
// Compilation is pure (validation + codegen, no instantiation, no shared
// mutable state) so it is safe to parallelize; registration afterward is
// always sequential to preserve load-order override semantics.
func (h *Host) compileAll(ctx context.Context, paths []string) ([]wasmengine.CompiledModule, error) {
	compiled := make([]wasmengine.CompiledModule, len(paths))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentCompiles)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := checkABICompat(path); err != nil {
				return &LoadError{Path: path, Err: err}
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return &LoadError{Path: path, Err: err}
			}
			cm, err := h.engine.CompileModule(gCtx, data)
			if err != nil {
				return &LoadError{Path: path, Err: err}
			}
			compiled[i] = cm
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return compiled, nil
}

func (h *Host) instantiateAndClassify(ctx context.Context, name, path string, cm wasmengine.CompiledModule) (*loadedModule, error) {
	mod, err := cm.Instantiate(ctx, wasmengine.InstantiateConfig{
		Name:     name,
		AssetDir: filepath.Dir(path),
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		OnLog:    h.onPluginLog(name),
	})
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	var pt wireformat.PluginType
	if err := exportCall(ctx, mod, name, "plugin_type", nil, &pt); err != nil {
		_ = mod.Close(ctx)
		return nil, &LoadError{Path: path, Err: fmt.Errorf("plugin_type: %w", err)}
	}

	return &loadedModule{name: name, kind: pt, module: mod}, nil
}

// register indexes a freshly loaded module into the classification tables.
// Must be called with h.mu held.
func (h *Host) register(entry *loadedModule) {
	h.modules[entry.name] = entry
	h.order = append(h.order, entry.name)

	if entry.kind.Action {
		h.actionModules = append(h.actionModules, entry.name)
	}
	for _, cmd := range entry.kind.Text {
		if _, dup := h.textModules[cmd]; dup {
			h.log.Warn("text command already registered, overriding", "command", cmd, "module", entry.name)
		}
		h.textModules[cmd] = entry.name
	}
	for _, cmd := range entry.kind.Line {
		if _, dup := h.lineModules[cmd]; dup {
			h.log.Warn("line command already registered, overriding", "command", cmd, "module", entry.name)
		}
		h.lineModules[cmd] = entry.name
	}
	if entry.kind.Game {
		h.gameModules = append(h.gameModules, entry.name)
	}
}

func (h *Host) onPluginLog(moduleName string) wasmengine.LogFunc {
	return func(ctx context.Context, data []byte) {
		logPluginRecord(h.log, moduleName, data)
	}
}

// HasModule reports whether a module named ns has been loaded, satisfying
// internal/interp.MethodCaller.
func (h *Host) HasModule(ns string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.modules[ns]
	return ok
}

// Close tears down every loaded module and the underlying engine.
func (h *Host) Close(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	var firstErr error
	for _, m := range h.modules {
		if err := m.module.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := h.engine.Close(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
