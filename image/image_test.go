package image

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestBytesRead(t *testing.T) {
	img := NewBytes([]byte{0, 1, 2, 3, 4, 5, 6, 7})

	tests := []struct {
		name string
		addr uint64
		n    uint64
		want []byte
	}{
		{"inside", 2, 3, []byte{2, 3, 4}},
		{"crosses end", 6, 10, []byte{6, 7}},
		{"at end", 8, 4, []byte{}},
		{"past end", 100, 4, []byte{}},
		{"zero length", 3, 0, []byte{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := img.Read(tc.addr, tc.n)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, tc.want) {
				t.Errorf("Read(%d, %d) = %v, want %v", tc.addr, tc.n, got, tc.want)
			}
		})
	}

	if img.End() != 8 {
		t.Errorf("End() = %d, want 8", img.End())
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fw.bin")
	if err := os.WriteFile(path, []byte{0xAA, 0xBB}, 0o600); err != nil {
		t.Fatal(err)
	}

	img, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if img.End() != 2 {
		t.Errorf("End() = %d", img.End())
	}

	if _, err := Open(filepath.Join(t.TempDir(), "missing.bin")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestAppendULEB128(t *testing.T) {
	tests := []struct {
		v    uint32
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{65535, []byte{0xff, 0xff, 0x03}},
	}
	for _, tc := range tests {
		if got := appendULEB128(nil, tc.v); !bytes.Equal(got, tc.want) {
			t.Errorf("appendULEB128(%d) = %x, want %x", tc.v, got, tc.want)
		}
	}
}

func TestWasmImage(t *testing.T) {
	ctx := context.Background()
	data := []byte{0x23, 0x20, 0x15, 0x06}

	m, err := NewWasmImage(ctx, data)
	if err != nil {
		t.Fatalf("NewWasmImage: %v", err)
	}
	defer m.Close(ctx)

	img := m.Memory()
	if img.End() != wasmPageSize {
		t.Errorf("End() = %d, want one page", img.End())
	}

	got, err := img.Read(0, 4)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Read = %x, want %x", got, data)
	}

	tail, err := img.Read(wasmPageSize-2, 16)
	if err != nil {
		t.Fatal(err)
	}
	if len(tail) != 2 {
		t.Errorf("read across end returned %d bytes, want 2", len(tail))
	}

	if past, _ := img.Read(wasmPageSize, 4); len(past) != 0 {
		t.Errorf("read past end returned %d bytes", len(past))
	}

	limited := img.Limit(uint64(len(data)))
	if limited.End() != uint64(len(data)) {
		t.Errorf("limited End() = %d", limited.End())
	}
	if got, _ := limited.Read(2, 16); !bytes.Equal(got, data[2:]) {
		t.Errorf("limited Read = %x", got)
	}
	if img.Limit(2*wasmPageSize).End() != wasmPageSize {
		t.Error("limit above memory size grew the image")
	}
	if img.Limit(0).End() != 0 {
		t.Error("zero limit did not empty the image")
	}
}

func TestLoadWasmRejectsGarbage(t *testing.T) {
	if _, err := LoadWasm(context.Background(), []byte("not wasm")); err == nil {
		t.Error("expected compile error")
	}
}
