// Package engine applies the AMD Zen microcode patch layout to a host.
//
// # Flow
//
// Apply(base) runs to completion on the caller's goroutine:
//
//  1. Registry.EnsureTypes registers the patch types unless AMD_MC_Patch
//     already exists. The opcode field is an enumeration when the host can
//     build one and a plain uint8 otherwise.
//  2. Up to one patch worth of bytes is read from base; fewer than 0x3820
//     bytes produces a single short_read warning.
//  3. Each region is cleared and defined in order: container, header,
//     random blocks, microcode region. The header follows the container at
//     the same address, so the header is the variable left at base.
//  4. The host is asked to re-run analysis.
//
// # Region Sizing
//
// The microcode region is typed as far as whole 4-byte records are readable
// from its start:
//
//	usable  = floor4(min(available, 0x3500))
//	records = usable / 4
//
// A full region uses the registered AMD_Zen_MicrocodeRegion. A short one gets
// a fresh AMD_Zen_MicrocodeRegion_auto built for that call only; it is never
// registered, so the namespace does not grow with each truncation length.
//
// The container is sized the same way over its opaque body. The header and
// random blocks are fixed and are skipped when not fully readable, so no
// variable ever extends past the image.
//
// # Errors
//
// Registration failures are fatal and nothing is defined. Everything else
// degrades: the report lists applied and skipped regions with diagnostics.
package engine
