package layout

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"
)

func TestGeometry(t *testing.T) {
	if RegionSize%MicroOpSize != 0 {
		t.Fatalf("region size 0x%x is not a multiple of %d", RegionSize, MicroOpSize)
	}
	if MicroOpCount != 0xD40 {
		t.Errorf("MicroOpCount = 0x%x, want 0xd40", MicroOpCount)
	}
	if HeaderSize+RandomSize+RegionSize != PatchSize {
		t.Errorf("header+random+region = 0x%x, want 0x%x", HeaderSize+RandomSize+RegionSize, PatchSize)
	}
	if HeaderSize+BodySize != PatchSize {
		t.Errorf("header+body = 0x%x, want 0x%x", HeaderSize+BodySize, PatchSize)
	}
	if RandomOffset != HeaderOffset+HeaderSize || RegionOffset != RandomOffset+RandomSize {
		t.Error("regions are not contiguous")
	}
}

func TestHeaderFieldsContiguous(t *testing.T) {
	next := uint64(0)
	for _, f := range HeaderFields {
		if f.Offset != next {
			t.Errorf("%s at 0x%x, want 0x%x", f.Name, f.Offset, next)
		}
		next = f.Offset + f.Width
	}
	if next != HeaderSize {
		t.Errorf("header fields end at 0x%x, want 0x%x", next, HeaderSize)
	}
}

func TestRegionsOrder(t *testing.T) {
	rs := Regions()
	want := []RegionID{RegionPatch, RegionHeader, RegionRandom, RegionMicrocode}
	if len(rs) != len(want) {
		t.Fatalf("got %d regions", len(rs))
	}
	for i, id := range want {
		if rs[i].ID != id {
			t.Errorf("regions[%d] = %s, want %s", i, rs[i].ID, id)
		}
	}

	// Only the container may overlap another region.
	for i := 1; i < len(rs); i++ {
		for j := i + 1; j < len(rs); j++ {
			a, b := rs[i], rs[j]
			if a.Offset < b.End() && b.Offset < a.End() {
				t.Errorf("%s overlaps %s", a.ID, b.ID)
			}
		}
	}
	if !rs[0].Overlay || rs[0].Offset != rs[1].Offset {
		t.Error("container must overlay the header at offset 0")
	}

	rs[0].Size = 1
	if Regions()[0].Size != PatchSize {
		t.Error("Regions must return a copy")
	}
}

func TestLookup(t *testing.T) {
	r, ok := Lookup(RegionMicrocode)
	if !ok || !r.Variable || r.Symbol != SymbolRegion {
		t.Errorf("Lookup(microcode) = %+v, %v", r, ok)
	}
	if _, ok := Lookup(RegionID(9)); ok {
		t.Error("Lookup of unknown id should fail")
	}
	if RegionID(9).String() != "region(9)" {
		t.Errorf("String() = %q", RegionID(9).String())
	}
}

func TestFloorRecords(t *testing.T) {
	tests := []struct{ in, want uint64 }{
		{0, 0}, {3, 0}, {4, 4}, {0x401, 0x400}, {0x3503, 0x3500},
	}
	for _, tc := range tests {
		if got := FloorRecords(tc.in); got != tc.want {
			t.Errorf("FloorRecords(0x%x) = 0x%x, want 0x%x", tc.in, got, tc.want)
		}
	}
}

func TestOpcodes(t *testing.T) {
	seen := map[string]bool{}
	for _, o := range Opcodes {
		if seen[o.Name] {
			t.Errorf("duplicate opcode name %s", o.Name)
		}
		seen[o.Name] = true
	}

	aliases := map[Opcode]Opcode{0x21: OpType5Read, 0x41: OpType7AluOr, 0x5F: OpType3Write}
	for _, o := range Opcodes {
		if !o.Alias {
			continue
		}
		if orig, ok := aliases[o.Value]; !ok || ^orig != o.Value {
			t.Errorf("alias %s = 0x%02x is not a complement of a real opcode", o.Name, o.Value)
		}
	}

	if !OpType3Write.Known() || OpUnknown.Known() || Opcode(0x21).Known() {
		t.Error("Known() misclassifies opcodes")
	}
	if Opcode(0x12).String() != "0x12" {
		t.Errorf("String() = %q", Opcode(0x12).String())
	}
	if OpTypeRegNop.String() != "AMD_ZEN_TYPE_REG_NOP" {
		t.Errorf("String() = %q", OpTypeRegNop.String())
	}
}

func TestDecodeHeader(t *testing.T) {
	data := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint16(data[0x00:], 0x2023)
	data[0x02] = 0x15
	data[0x03] = 0x06
	binary.LittleEndian.PutUint32(data[0x04:], 0x0a0011d5)
	binary.LittleEndian.PutUint16(data[0x18:], 0xa011)
	data[0x1F] = 0xAA

	h, err := DecodeHeader(data)
	if err != nil {
		t.Fatal(err)
	}
	checks := map[string]uint64{
		"Year":               0x2023,
		"Day":                0x15,
		"Month":              0x06,
		"UpdateRevision":     0x0a0011d5,
		"ProcessorSignature": 0xa011,
		"Reserved_1F":        0xAA,
	}
	for name, want := range checks {
		if got, ok := h.Get(name); !ok || got != want {
			t.Errorf("%s = 0x%x, want 0x%x", name, got, want)
		}
	}
	if h.Date() != "2023-06-15" {
		t.Errorf("Date() = %q", h.Date())
	}
	if !strings.Contains(h.String(), "UpdateRevision       0x0a0011d5") {
		t.Errorf("String() =\n%s", h)
	}

	if _, err := DecodeHeader(data[:HeaderSize-1]); err == nil {
		t.Error("short header should fail")
	}
}

func TestDecodeMicroOps(t *testing.T) {
	data := []byte{
		0xDE, 0x01, 0x34, 0x12,
		0xFF, 0x00, 0x00, 0x00,
		0xA0, // partial trailing record
	}
	ops := DecodeMicroOps(data)
	if len(ops) != 2 {
		t.Fatalf("got %d ops, want 2", len(ops))
	}
	if ops[0].Opcode != OpType5Read || ops[0].Flags != 1 || ops[0].Imm != 0x1234 {
		t.Errorf("ops[0] = %+v", ops[0])
	}

	op, err := DecodeMicroOp(data[4:])
	if err != nil || op.Opcode != OpTypeRegNop {
		t.Errorf("DecodeMicroOp = %+v, %v", op, err)
	}
	if _, err := DecodeMicroOp(data[8:]); err == nil {
		t.Error("partial record should fail")
	}
}

func TestFitsAt(t *testing.T) {
	tests := []struct {
		base uint64
		want bool
	}{
		{0, true},
		{0x1000, true},
		{math.MaxUint64 - PatchSize, true},
		{math.MaxUint64 - PatchSize + 1, false},
		{math.MaxUint64, false},
	}
	for _, tc := range tests {
		if got := FitsAt(tc.base); got != tc.want {
			t.Errorf("FitsAt(0x%x) = %v, want %v", tc.base, got, tc.want)
		}
	}
}
