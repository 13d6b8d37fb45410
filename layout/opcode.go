package layout

import "fmt"

// Opcode is the first byte of a micro-op record.
type Opcode uint8

const (
	OpUnknown    Opcode = 0x00
	OpType5Read  Opcode = 0xDE
	OpType7AluOr Opcode = 0xBE
	OpType3Write Opcode = 0xA0
	OpTypeRegNop Opcode = 0xFF
)

// OpcodeName pairs an enumeration member name with its value.
type OpcodeName struct {
	Name  string
	Value Opcode
	// Alias members are bitwise complements of real opcodes. Some renderers
	// print an unnamed value whose complement is named as "~NAME"; naming the
	// complement keeps output literal.
	Alias bool
}

// Opcodes is the AMD_Zen_Opcode enumeration in declaration order.
var Opcodes = []OpcodeName{
	{Name: "AMD_ZEN_UOP_UNKNOWN", Value: OpUnknown},
	{Name: "AMD_ZEN_TYPE5_READ", Value: OpType5Read},
	{Name: "AMD_ZEN_TYPE7_ALU_OR", Value: OpType7AluOr},
	{Name: "AMD_ZEN_TYPE3_WRITE", Value: OpType3Write},
	{Name: "AMD_ZEN_TYPE_REG_NOP", Value: OpTypeRegNop},

	{Name: "AMD_ZEN_UOP_21", Value: ^OpType5Read, Alias: true},
	{Name: "AMD_ZEN_UOP_41", Value: ^OpType7AluOr, Alias: true},
	{Name: "AMD_ZEN_UOP_5F", Value: ^OpType3Write, Alias: true},
}

// Known reports whether op is a named, non-alias opcode other than unknown.
func (op Opcode) Known() bool {
	if op == OpUnknown {
		return false
	}
	for _, o := range Opcodes {
		if o.Value == op && !o.Alias {
			return true
		}
	}
	return false
}

func (op Opcode) String() string {
	for _, o := range Opcodes {
		if o.Value == op {
			return o.Name
		}
	}
	return fmt.Sprintf("0x%02x", uint8(op))
}
