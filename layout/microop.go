package layout

import (
	"encoding/binary"
	"fmt"
)

// MicroOp is one 4-byte record of the microcode region.
type MicroOp struct {
	Opcode Opcode
	Flags  uint8
	Imm    uint16
}

func (m MicroOp) String() string {
	return fmt.Sprintf("%-22s b1=0x%02x imm16=0x%04x", m.Opcode, m.Flags, m.Imm)
}

// DecodeMicroOp decodes one record from the first MicroOpSize bytes of b.
func DecodeMicroOp(b []byte) (MicroOp, error) {
	if len(b) < MicroOpSize {
		return MicroOp{}, fmt.Errorf("micro-op needs %d bytes, have %d", MicroOpSize, len(b))
	}
	return MicroOp{
		Opcode: Opcode(b[0]),
		Flags:  b[1],
		Imm:    binary.LittleEndian.Uint16(b[2:4]),
	}, nil
}

// DecodeMicroOps decodes every whole record in b. A trailing partial record
// is ignored.
func DecodeMicroOps(b []byte) []MicroOp {
	n := FloorRecords(uint64(len(b))) / MicroOpSize
	ops := make([]MicroOp, n)
	for i := range ops {
		off := i * MicroOpSize
		ops[i] = MicroOp{
			Opcode: Opcode(b[off]),
			Flags:  b[off+1],
			Imm:    binary.LittleEndian.Uint16(b[off+2 : off+4]),
		}
	}
	return ops
}
