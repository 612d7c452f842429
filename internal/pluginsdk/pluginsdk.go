//go:build wasip1

// Package pluginsdk is the guest-side counterpart of internal/abi: helpers a
// plugin built for GOOS=wasip1 GOARCH=wasm links in to satisfy the host's
// calling convention (spec.md §4.1) without hand-rolling pointer arithmetic
// in every plugin's main package. Built on Go's native //go:wasmexport and
// //go:wasmimport directives rather than TinyGo's export pragmas, since the
// module's go.mod already targets a Go version with wasip1 reactor support —
// reglet has no guest-side counterpart to mirror here (it hosts WASM, it
// doesn't author it), so this package is grounded directly on
// internal/abi's already-established wire convention instead.
package pluginsdk

import (
	"unsafe"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/ayaka-run/ayaka/internal/wireformat"
)

// liveBuffers pins every buffer handed across the ABI boundary so Go's
// garbage collector never reclaims memory the host still holds a pointer
// into. Entries are added by Alloc (host writing an argument in) and by
// packValue (this module writing a result out), and removed by Free (the
// host releasing either one) — spec.md §4.1's "buffers are released on
// every exit path" applies symmetrically on the guest side.
var liveBuffers = map[uint32][]byte{}

// Alloc is the required `__abi_alloc` export: the host calls this to reserve
// space for an argument buffer before writing into it.
//
//go:wasmexport __abi_alloc
func Alloc(n uint32) uint32 {
	if n == 0 {
		return 0
	}
	buf := make([]byte, n)
	ptr := ptrOf(buf)
	liveBuffers[ptr] = buf
	return ptr
}

// Free is the required `__abi_free` export: the host calls this once it is
// done reading a buffer this module produced or that it wrote an argument
// into.
//
//go:wasmexport __abi_free
func Free(ptr, _ uint32) {
	delete(liveBuffers, ptr)
}

func ptrOf(buf []byte) uint32 {
	if len(buf) == 0 {
		return 0
	}
	return uint32(uintptr(unsafe.Pointer(&buf[0])))
}

// readMemory views this module's own linear memory at [ptr, ptr+length) as a
// byte slice. Safe because host and guest share one address space inside a
// single wazero module instance; the slice must not outlive the call that
// produced ptr, since a later Free may reuse or drop the backing array.
func readMemory(ptr, length uint32) []byte {
	if length == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), length)
}

// packResult packs a result buffer's (ptr, len) using internal/abi's
// convention: result_len in the high 32 bits, result_ptr in the low 32.
func packResult(ptr, length uint32) uint64 {
	return uint64(length)<<32 | uint64(ptr)
}

func packValue(v any) uint64 {
	data, err := msgpack.Marshal(v)
	if err != nil {
		panic(err)
	}
	if len(data) == 0 {
		return 0
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	ptr := ptrOf(buf)
	liveBuffers[ptr] = buf
	return packResult(ptr, uint32(len(buf)))
}

// Handle decodes a msgpack-encoded argument of type In from the host's
// buffer, runs fn, and packs the result for return from a `//go:wasmexport`
// function. Every export the host calls has the uniform signature
// `(length, ptr uint32) uint64` (spec.md §4.1); a plugin wires one thin
// wasmexport thunk per export and delegates the decode/encode work here:
//
//	//go:wasmexport process_action
//	func processAction(length, ptr uint32) uint64 {
//		return pluginsdk.Handle(length, ptr, func(in wireformat.ActionProcessContext) wireformat.Action {
//			...
//		})
//	}
//
// The ABI has no in-band error channel (spec.md §7 treats a plugin-call
// failure as a trap, a missing export, or a bad decode — never a
// successfully-returned error value), so a handler that cannot proceed
// should panic; an exported function that panics traps the call, which the
// host already handles as a CallError.
func Handle[In any, Out any](length, ptr uint32, fn func(In) Out) uint64 {
	var in In
	if err := msgpack.Unmarshal(readMemory(ptr, length), &in); err != nil {
		panic(err)
	}
	return packValue(fn(in))
}

// HandleNoArgs is Handle for exports the host calls with no meaningful
// argument payload, such as `plugin_type`.
func HandleNoArgs[Out any](fn func() Out) uint64 {
	return packValue(fn())
}

//go:wasmimport log __log
func hostLog(length, ptr uint32)

//go:wasmimport log __log_flush
func hostLogFlush()

// Log emits a structured log record through the host's `log` import. The
// underlying buffer is allocated from this module's own heap (not through
// Alloc/liveBuffers) since the host only reads it synchronously inside the
// call and never calls Free on it.
func Log(rec wireformat.LogRecord) {
	data, err := msgpack.Marshal(rec)
	if err != nil {
		return
	}
	if len(data) == 0 {
		return
	}
	hostLog(uint32(len(data)), ptrOf(data))
}

// LogFlush calls the host's `__log_flush` sync point.
func LogFlush() {
	hostLogFlush()
}
