package layout

import "fmt"

// RegionID identifies one typed region of a patch.
type RegionID uint8

const (
	RegionPatch RegionID = iota
	RegionHeader
	RegionRandom
	RegionMicrocode
)

var regionNames = [...]string{
	RegionPatch:     "patch",
	RegionHeader:    "header",
	RegionRandom:    "random_blocks",
	RegionMicrocode: "microcode",
}

func (r RegionID) String() string {
	if int(r) < len(regionNames) {
		return regionNames[r]
	}
	return fmt.Sprintf("region(%d)", uint8(r))
}

// Region is one offset-addressed span of a patch and the type that covers it.
type Region struct {
	Type    string
	Symbol  string
	Comment string
	Offset  uint64
	Size    uint64
	ID      RegionID
	// Variable marks the region whose typed length follows the bytes
	// actually available.
	Variable bool
	// Overlay marks the coarse container that shares its address with the
	// header and covers the rest of the patch opaquely.
	Overlay bool
}

// End returns the offset one past the region.
func (r Region) End() uint64 {
	return r.Offset + r.Size
}

func (r Region) String() string {
	return fmt.Sprintf("%-14s 0x%04x-0x%04x %-24s %s", r.ID, r.Offset, r.End(), r.Type, r.Symbol)
}

var regions = [...]Region{
	{
		ID:      RegionPatch,
		Type:    TypePatch,
		Symbol:  SymbolPatch,
		Comment: CommentPatch,
		Offset:  0,
		Size:    PatchSize,
		Overlay: true,
	},
	{
		ID:     RegionHeader,
		Type:   TypeHeader,
		Symbol: SymbolHeader,
		Offset: HeaderOffset,
		Size:   HeaderSize,
	},
	{
		ID:     RegionRandom,
		Type:   TypeRandom,
		Symbol: SymbolRandom,
		Offset: RandomOffset,
		Size:   RandomSize,
	},
	{
		ID:       RegionMicrocode,
		Type:     TypeRegion,
		Symbol:   SymbolRegion,
		Offset:   RegionOffset,
		Size:     RegionSize,
		Variable: true,
	},
}

// Regions returns the patch regions in application order. The container
// comes before the header so the header is the variable left at offset 0.
func Regions() []Region {
	out := make([]Region, len(regions))
	copy(out, regions[:])
	return out
}

// Lookup returns the region with the given id.
func Lookup(id RegionID) (Region, bool) {
	if int(id) >= len(regions) {
		return Region{}, false
	}
	return regions[id], true
}
