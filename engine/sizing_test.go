package engine

import (
	"testing"

	"github.com/wippyai/ucode-layout/layout"
)

func TestSizeRegion(t *testing.T) {
	tests := []struct {
		name      string
		available uint64
		usable    uint64
		records   uint64
		full      bool
	}{
		{"exact", layout.RegionSize, layout.RegionSize, layout.MicroOpCount, true},
		{"more than region", layout.RegionSize + 0x1000, layout.RegionSize, layout.MicroOpCount, true},
		{"huge", ^uint64(0), layout.RegionSize, layout.MicroOpCount, true},
		{"256 records", 0x400, 0x400, 256, false},
		{"partial trailing record", 0x403, 0x400, 256, false},
		{"one record", 4, 4, 1, false},
		{"less than a record", 3, 0, 0, false},
		{"zero", 0, 0, 0, false},
		{"one short of full", layout.RegionSize - 1, layout.RegionSize - 4, layout.MicroOpCount - 1, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := SizeRegion(tc.available)
			if s.Available != tc.available {
				t.Errorf("Available = 0x%x, want 0x%x", s.Available, tc.available)
			}
			if s.Usable != tc.usable {
				t.Errorf("Usable = 0x%x, want 0x%x", s.Usable, tc.usable)
			}
			if s.Records != tc.records {
				t.Errorf("Records = 0x%x, want 0x%x", s.Records, tc.records)
			}
			if s.Full() != tc.full {
				t.Errorf("Full = %v, want %v", s.Full(), tc.full)
			}
			if s.Empty() != (tc.records == 0) {
				t.Errorf("Empty = %v with %d records", s.Empty(), tc.records)
			}
		})
	}
}

func TestSizeRegionInvariants(t *testing.T) {
	for avail := uint64(0); avail <= layout.RegionSize+8; avail += 7 {
		s := SizeRegion(avail)
		if s.Usable%layout.MicroOpSize != 0 {
			t.Fatalf("avail 0x%x: usable 0x%x not a multiple of 4", avail, s.Usable)
		}
		if s.Usable > avail || s.Usable > layout.RegionSize {
			t.Fatalf("avail 0x%x: usable 0x%x exceeds bounds", avail, s.Usable)
		}
		if s.Records*layout.MicroOpSize != s.Usable {
			t.Fatalf("avail 0x%x: records 0x%x disagree with usable 0x%x", avail, s.Records, s.Usable)
		}
	}
}

func TestSizingString(t *testing.T) {
	got := SizeRegion(0x402).String()
	want := "available=0x402 usable=0x400 records=0x100"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
