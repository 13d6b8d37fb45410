package engine

import (
	"fmt"

	"github.com/wippyai/ucode-layout/layout"
)

// Sizing is the typed extent of the microcode region for one Apply call.
type Sizing struct {
	// Available is the number of bytes readable from the region start.
	Available uint64
	// Usable is Available capped at the nominal size and rounded down to
	// whole records.
	Usable  uint64
	Records uint64
}

// SizeRegion computes how much of the microcode region can be typed when
// available bytes are readable from its start.
func SizeRegion(available uint64) Sizing {
	usable := min(available, layout.RegionSize)
	usable = layout.FloorRecords(usable)
	return Sizing{
		Available: available,
		Usable:    usable,
		Records:   usable / layout.MicroOpSize,
	}
}

// Empty reports whether not even one whole record is available.
func (s Sizing) Empty() bool {
	return s.Records == 0
}

// Full reports whether the whole nominal region is available.
func (s Sizing) Full() bool {
	return s.Usable == layout.RegionSize
}

func (s Sizing) String() string {
	return fmt.Sprintf("available=0x%x usable=0x%x records=0x%x", s.Available, s.Usable, s.Records)
}
