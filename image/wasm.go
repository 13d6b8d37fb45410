package image

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	ucodelayout "github.com/wippyai/ucode-layout"
	"github.com/wippyai/ucode-layout/errors"
)

const wasmPageSize = 65536

// WasmMemory is an image backed by a wasm linear memory.
type WasmMemory struct {
	mem api.Memory
	// limit caps End below the page-rounded memory size when limited is set.
	limit   uint64
	limited bool
}

// NewWasmMemory wraps a wazero memory.
func NewWasmMemory(mem api.Memory) *WasmMemory {
	return &WasmMemory{mem: mem}
}

// Read implements ucodelayout.Image.
func (m *WasmMemory) Read(addr, n uint64) ([]byte, error) {
	end := m.End()
	if addr >= end {
		return []byte{}, nil
	}
	if n > end-addr {
		n = end - addr
	}
	data, ok := m.mem.Read(uint32(addr), uint32(n))
	if !ok {
		return nil, errors.ShortRead(errors.PhaseImage, addr, 0, int(n))
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// End implements ucodelayout.Image.
func (m *WasmMemory) End() uint64 {
	if m.mem == nil {
		return 0
	}
	size := uint64(m.mem.Size())
	if m.limited && m.limit < size {
		return m.limit
	}
	return size
}

// Limit returns a view of the memory that ends at end.
func (m *WasmMemory) Limit(end uint64) *WasmMemory {
	return &WasmMemory{mem: m.mem, limit: end, limited: true}
}

var _ ucodelayout.Image = (*WasmMemory)(nil)

// WasmModule is an instantiated wasm module whose memory is used as an image.
type WasmModule struct {
	runtime wazero.Runtime
	module  api.Module
	memory  *WasmMemory
}

// LoadWasm compiles and instantiates wasmBytes and exposes its memory as an
// image. The module must define or export a memory and import nothing.
func LoadWasm(ctx context.Context, wasmBytes []byte) (*WasmModule, error) {
	rt := wazero.NewRuntime(ctx)

	compiled, err := rt.CompileModule(ctx, wasmBytes)
	if err != nil {
		rt.Close(ctx)
		return nil, errors.Wrap(errors.PhaseImage, errors.KindInvalidData, err, "compile wasm module")
	}

	// No start functions: the module is only a memory carrier.
	cfg := wazero.NewModuleConfig().WithName("").WithStartFunctions()
	mod, err := rt.InstantiateModule(ctx, compiled, cfg)
	if err != nil {
		rt.Close(ctx)
		return nil, errors.Wrap(errors.PhaseImage, errors.KindInvalidData, err, "instantiate wasm module")
	}

	mem := mod.Memory()
	if mem == nil {
		rt.Close(ctx)
		return nil, errors.InvalidData(errors.PhaseImage, nil, "wasm module has no memory")
	}

	return &WasmModule{runtime: rt, module: mod, memory: NewWasmMemory(mem)}, nil
}

// NewWasmImage places data at offset zero of a fresh wasm linear memory. The
// module's memory ends at the page-rounded size; use Memory().Limit to end
// the image at len(data).
func NewWasmImage(ctx context.Context, data []byte) (*WasmModule, error) {
	pages := (uint64(len(data)) + wasmPageSize - 1) / wasmPageSize
	if pages == 0 {
		pages = 1
	}
	if pages > 65535 {
		return nil, errors.InvalidInput(errors.PhaseImage, "image larger than a wasm memory")
	}

	m, err := LoadWasm(ctx, memoryModule(uint32(pages)))
	if err != nil {
		return nil, err
	}
	if !m.module.Memory().Write(0, data) {
		m.Close(ctx)
		return nil, errors.OutOfBounds(errors.PhaseImage, uint64(len(data)), m.memory.End())
	}
	return m, nil
}

// Memory returns the module's memory as an image.
func (m *WasmModule) Memory() *WasmMemory {
	return m.memory
}

// Close releases the wasm runtime.
func (m *WasmModule) Close(ctx context.Context) error {
	return m.runtime.Close(ctx)
}

// memoryModule encodes a module that defines and exports one memory of the
// given page count.
func memoryModule(pages uint32) []byte {
	mod := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	// memory section: one memory, min only
	memSec := []byte{0x01, 0x00}
	memSec = appendULEB128(memSec, pages)
	mod = append(mod, 0x05)
	mod = appendULEB128(mod, uint32(len(memSec)))
	mod = append(mod, memSec...)

	// export section: "memory" -> memory 0
	name := "memory"
	expSec := []byte{0x01}
	expSec = appendULEB128(expSec, uint32(len(name)))
	expSec = append(expSec, name...)
	expSec = append(expSec, 0x02, 0x00)
	mod = append(mod, 0x07)
	mod = appendULEB128(mod, uint32(len(expSec)))
	mod = append(mod, expSec...)

	return mod
}

func appendULEB128(b []byte, v uint32) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		b = append(b, c)
		if v == 0 {
			return b
		}
	}
}
