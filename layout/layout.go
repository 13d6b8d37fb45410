package layout

import "math"

// Patch geometry. All multi-byte fields are little-endian and every structure
// is byte-packed.
const (
	PatchSize = 0x3820

	HeaderOffset = 0x0000
	HeaderSize   = 0x0020

	RandomOffset    = 0x0020
	RandomSize      = 0x0300
	RandomBlockSize = 0x0100
	RandomBlocks    = RandomSize / RandomBlockSize

	RegionOffset = 0x0320
	RegionSize   = 0x3500

	BodySize = PatchSize - HeaderSize

	MicroOpSize  = 4
	MicroOpCount = RegionSize / MicroOpSize // 0xD40
)

// Registered type names.
const (
	TypeHeader  = "AMD_MC_Header"
	TypeRandom  = "AMD_MC_RandomBlocks"
	TypePatch   = "AMD_MC_Patch"
	TypeOpcode  = "AMD_Zen_Opcode"
	TypeMicroOp = "AMD_Zen_MicroOp"
	TypeRegion  = "AMD_Zen_MicrocodeRegion"

	// TypeRegionAuto names the one-off region type built for truncated
	// images. It is never registered.
	TypeRegionAuto = "AMD_Zen_MicrocodeRegion_auto"
	// TypePatchAuto names the one-off container built for truncated images.
	TypePatchAuto = "AMD_MC_Patch_auto"
)

// Symbol names attached to defined regions.
const (
	SymbolPatch  = "amd_mc_patch"
	SymbolHeader = "amd_mc_header"
	SymbolRandom = "amd_mc_random_blocks"
	SymbolRegion = "amd_ucode_region"

	CommentPatch = "AMD microcode patch container"
)

// Field names inside the composite types.
const (
	FieldOpcode = "opcode"
	FieldFlags  = "b1"
	FieldImm    = "imm16"
	FieldUops   = "uops"
	FieldHeader = "hdr"
	FieldBody   = "body"
)

// RandomBlockNames lists the random-block fields in order.
var RandomBlockNames = [RandomBlocks]string{"block1", "block2", "block3"}

// FloorRecords truncates n down to a whole number of micro-op records.
func FloorRecords(n uint64) uint64 {
	return n - n%MicroOpSize
}

// FitsAt reports whether a whole patch starting at base stays inside the
// 64-bit address space.
func FitsAt(base uint64) bool {
	return base <= math.MaxUint64-PatchSize
}
