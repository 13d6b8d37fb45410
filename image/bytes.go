package image

import (
	"os"

	ucodelayout "github.com/wippyai/ucode-layout"
	"github.com/wippyai/ucode-layout/errors"
)

// Bytes is an image backed by a byte slice, addressed from zero.
type Bytes struct {
	data []byte
}

// NewBytes wraps data. The slice is not copied.
func NewBytes(data []byte) *Bytes {
	return &Bytes{data: data}
}

// Open reads a whole file into a Bytes image.
func Open(path string) (*Bytes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseImage, errors.KindNotFound, err, "read image "+path)
	}
	return NewBytes(data), nil
}

// Read implements ucodelayout.Image.
func (b *Bytes) Read(addr, n uint64) ([]byte, error) {
	end := uint64(len(b.data))
	if addr >= end {
		return []byte{}, nil
	}
	if n > end-addr {
		n = end - addr
	}
	return b.data[addr : addr+n], nil
}

// End implements ucodelayout.Image.
func (b *Bytes) End() uint64 {
	return uint64(len(b.data))
}

var _ ucodelayout.Image = (*Bytes)(nil)
