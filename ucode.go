package ucodelayout

// Image is a readable byte image addressed from zero up to End.
type Image interface {
	// Read returns up to n bytes starting at addr. A read that crosses End
	// returns only the bytes before End; a read at or past End returns an
	// empty slice and no error.
	Read(addr, n uint64) ([]byte, error)
	// End returns the first address past the image.
	End() uint64
}

// Available returns how many bytes are readable from addr to the end of img.
func Available(img Image, addr uint64) uint64 {
	end := img.End()
	if addr >= end {
		return 0
	}
	return end - addr
}
