// Package layout is the static model of an AMD Zen microcode patch.
//
// A patch is 0x3820 bytes:
//
//	0x0000  AMD_MC_Header            0x0020  scalar fields
//	0x0020  AMD_MC_RandomBlocks      0x0300  three 0x100 opaque blocks
//	0x0320  AMD_Zen_MicrocodeRegion  0x3500  0xD40 four-byte micro-ops
//
// AMD_MC_Patch is a coarse container over the whole blob: the header
// followed by 0x3800 opaque body bytes.
//
// Everything here is constant. The package holds no state and talks to no
// host; the engine package turns this model into host types and variables.
package layout
