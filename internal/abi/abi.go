// Package abi implements the host side of the plugin calling convention
// (spec.md §4.1): every export has the uniform signature `(u32 len, u32 ptr)
// -> u64`. Arguments are msgpack-encoded, written into a buffer the module
// allocates via `__abi_alloc`, and the packed 64-bit result is decoded as
// `(len: high 32, ptr: low 32)` — the inverse bit order of reglet's
// `packPtrLen`/`unpackPtrLen` (internal/wasm/hostfuncs/wireformat.go), which
// packs ptr high and len low; this package follows the specification's
// convention rather than the teacher's, since the two disagree and the
// specification is authoritative for wire semantics.
package abi

import (
	"context"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/ayaka-run/ayaka/internal/wasmengine"
)

const (
	exportAlloc = "__abi_alloc"
	exportFree  = "__abi_free"
)

// PackResult packs a result buffer's (ptr, len) into the §4.1 convention:
// result_len in the high 32 bits, result_ptr in the low 32 bits.
func PackResult(ptr, length uint32) uint64 {
	return uint64(length)<<32 | uint64(ptr)
}

// UnpackResult is the inverse of PackResult.
func UnpackResult(packed uint64) (ptr, length uint32) {
	length = uint32(packed >> 32)
	ptr = uint32(packed)
	return ptr, length
}

// CallError wraps a plugin-call failure (spec.md §7 plugin-call error kind):
// a trap, a missing required export, or a deserialization failure.
type CallError struct {
	Module string
	Export string
	Err    error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("abi: call %s.%s: %v", e.Module, e.Export, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// alloc asks the module to reserve n bytes and returns the pointer; the
// caller releases it with free (writeArg's callers, such as Export, do so
// on every exit path). alloc failures are always wrapped as CallError.
func alloc(ctx context.Context, mod wasmengine.Module, moduleName string, n uint32) (uint32, error) {
	fn, ok := mod.ExportedFunction(exportAlloc)
	if !ok {
		return 0, &CallError{Module: moduleName, Export: exportAlloc, Err: fmt.Errorf("missing required export")}
	}
	results, err := fn.Call(ctx, uint64(n))
	if err != nil {
		return 0, &CallError{Module: moduleName, Export: exportAlloc, Err: err}
	}
	return uint32(results[0]), nil
}

// free releases a buffer the host allocated inside the module. Errors are
// swallowed: free runs from defer on every exit path, including after a
// trap, and a failed free must never mask the call's real error (spec.md
// §4.1: "buffers are released on every exit path, including error paths").
func free(ctx context.Context, mod wasmengine.Module, ptr, length uint32) {
	fn, ok := mod.ExportedFunction(exportFree)
	if !ok {
		return
	}
	_, _ = fn.Call(ctx, uint64(ptr), uint64(length))
}

// writeArg allocates len(data) bytes inside the module, writes data into
// them, and returns the pointer. The returned buffer's release is the
// caller's responsibility (via free), honoring the scoped-acquisition /
// guaranteed-release invariant end to end.
func writeArg(ctx context.Context, mod wasmengine.Module, moduleName string, data []byte) (uint32, error) {
	ptr, err := alloc(ctx, mod, moduleName, uint32(len(data)))
	if err != nil {
		return 0, err
	}
	if len(data) > 0 && !mod.Memory().Write(ptr, data) {
		free(ctx, mod, ptr, uint32(len(data)))
		return 0, &CallError{Module: moduleName, Export: exportAlloc, Err: fmt.Errorf("write out of bounds at %d", ptr)}
	}
	return ptr, nil
}

// Export calls a module's export using the ABI calling convention: encode
// args as a msgpack tuple, allocate and write it into the module, call
// export(len, ptr), unpack the packed result, read and decode it, and
// release both the argument and result buffers on every exit path. result
// must be a pointer (e.g. *wireformat.Action) or nil to discard the return
// value.
func Export(ctx context.Context, mod wasmengine.Module, moduleName, export string, args any, result any) error {
	fn, ok := mod.ExportedFunction(export)
	if !ok {
		return &CallError{Module: moduleName, Export: export, Err: fmt.Errorf("missing export")}
	}

	argData, err := msgpack.Marshal(args)
	if err != nil {
		return &CallError{Module: moduleName, Export: export, Err: fmt.Errorf("encode arguments: %w", err)}
	}

	argPtr, err := writeArg(ctx, mod, moduleName, argData)
	if err != nil {
		return err
	}
	defer free(ctx, mod, argPtr, uint32(len(argData)))

	results, err := fn.Call(ctx, uint64(len(argData)), uint64(argPtr))
	if err != nil {
		return &CallError{Module: moduleName, Export: export, Err: fmt.Errorf("trap: %w", err)}
	}
	if len(results) == 0 {
		return &CallError{Module: moduleName, Export: export, Err: fmt.Errorf("no return value")}
	}

	resultPtr, resultLen := UnpackResult(results[0])
	if result == nil || resultLen == 0 {
		if resultLen > 0 {
			free(ctx, mod, resultPtr, resultLen)
		}
		return nil
	}
	defer free(ctx, mod, resultPtr, resultLen)

	data, ok := mod.Memory().Read(resultPtr, resultLen)
	if !ok {
		return &CallError{Module: moduleName, Export: export, Err: fmt.Errorf("read out of bounds at %d", resultPtr)}
	}
	if err := msgpack.Unmarshal(data, result); err != nil {
		return &CallError{Module: moduleName, Export: export, Err: fmt.Errorf("decode result: %w", err)}
	}
	return nil
}
