package abi_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ayaka-run/ayaka/internal/abi"
	"github.com/ayaka-run/ayaka/internal/wasmengine"
)

func TestPackUnpackResult(t *testing.T) {
	ptr, length := abi.UnpackResult(abi.PackResult(0x1234, 0x99))
	assert.Equal(t, uint32(0x1234), ptr)
	assert.Equal(t, uint32(0x99), length)
}

// fakeMemory is a simple byte-slice-backed linear memory for testing.
type fakeMemory struct {
	buf []byte
}

func (m *fakeMemory) Read(offset, size uint32) ([]byte, bool) {
	if uint64(offset)+uint64(size) > uint64(len(m.buf)) {
		return nil, false
	}
	out := make([]byte, size)
	copy(out, m.buf[offset:offset+size])
	return out, true
}

func (m *fakeMemory) Write(offset uint32, data []byte) bool {
	if uint64(offset)+uint64(len(data)) > uint64(len(m.buf)) {
		return false
	}
	copy(m.buf[offset:], data)
	return true
}

type fakeFunc struct {
	call func(ctx context.Context, params ...uint64) ([]uint64, error)
}

func (f fakeFunc) Call(ctx context.Context, params ...uint64) ([]uint64, error) {
	return f.call(ctx, params...)
}

// fakeModule simulates a plugin exporting __abi_alloc/__abi_free plus one
// echo-style export that msgpack-decodes its argument tuple, re-encodes a
// result, and writes it back via the same bump allocator.
type fakeModule struct {
	mem      *fakeMemory
	next     uint32
	freed    []uint32
	exports  map[string]wasmengine.Func
}

func newFakeModule(echo func(args []byte) []byte) *fakeModule {
	m := &fakeModule{mem: &fakeMemory{buf: make([]byte, 65536)}, next: 8}
	m.exports = map[string]wasmengine.Func{
		"__abi_alloc": fakeFunc{func(_ context.Context, params ...uint64) ([]uint64, error) {
			n := uint32(params[0])
			ptr := m.next
			m.next += n
			return []uint64{uint64(ptr)}, nil
		}},
		"__abi_free": fakeFunc{func(_ context.Context, params ...uint64) ([]uint64, error) {
			m.freed = append(m.freed, uint32(params[0]))
			return nil, nil
		}},
		"do_echo": fakeFunc{func(_ context.Context, params ...uint64) ([]uint64, error) {
			length, ptr := uint32(params[0]), uint32(params[1])
			data, _ := m.mem.Read(ptr, length)
			out := echo(data)
			outPtr := m.next
			m.next += uint32(len(out))
			m.mem.Write(outPtr, out)
			return []uint64{abi.PackResult(outPtr, uint32(len(out)))}, nil
		}},
	}
	return m
}

func (m *fakeModule) Name() string          { return "fake" }
func (m *fakeModule) Memory() wasmengine.Memory { return m.mem }
func (m *fakeModule) ExportedFunction(name string) (wasmengine.Func, bool) {
	fn, ok := m.exports[name]
	return fn, ok
}
func (m *fakeModule) Close(context.Context) error { return nil }

func TestExportRoundTripsArgsAndResult(t *testing.T) {
	mod := newFakeModule(func(args []byte) []byte {
		var in []int
		require.NoError(t, msgpack.Unmarshal(args, &in))
		out, err := msgpack.Marshal([]int{in[0] * 2})
		require.NoError(t, err)
		return out
	})

	var result []int
	err := abi.Export(context.Background(), mod, "fake", "do_echo", []int{21}, &result)
	require.NoError(t, err)
	assert.Equal(t, []int{42}, result)

	// both the argument buffer and the result buffer must have been freed.
	assert.Len(t, mod.freed, 2)
}

func TestExportMissingExport(t *testing.T) {
	mod := newFakeModule(func(b []byte) []byte { return b })
	err := abi.Export(context.Background(), mod, "fake", "nonexistent", []int{1}, nil)
	require.Error(t, err)
	var callErr *abi.CallError
	assert.ErrorAs(t, err, &callErr)
}
