package host

import (
	"errors"
	"fmt"

	"github.com/wippyai/ucode-layout/types"
)

// Capabilities is the fixed contract the engine builds primitive types
// through. It hides how many call shapes a host has for each.
type Capabilities interface {
	// UInt builds an unsigned integer of width bytes.
	UInt(width uint64) (*types.Type, error)
	// Enum builds an enumeration or returns ErrUnsupported.
	Enum(name string, width uint64, members []types.EnumMember) (*types.Type, error)
}

type negotiated struct {
	ts TypeSystem
}

// Negotiate returns the Capabilities of ts.
func Negotiate(ts TypeSystem) Capabilities {
	return &negotiated{ts: ts}
}

func (n *negotiated) UInt(width uint64) (*types.Type, error) {
	ctors := n.ts.IntConstructors()
	if len(ctors) == 0 {
		return nil, fmt.Errorf("uint%d: %w", width*8, ErrUnsupported)
	}
	var errs []error
	for _, ctor := range ctors {
		t, err := ctor(width)
		if err == nil && t != nil {
			return t, nil
		}
		if err == nil {
			err = fmt.Errorf("constructor returned no type")
		}
		errs = append(errs, err)
	}
	return nil, fmt.Errorf("uint%d: %w", width*8, errors.Join(errs...))
}

func (n *negotiated) Enum(name string, width uint64, members []types.EnumMember) (*types.Type, error) {
	ctor, ok := n.ts.EnumConstructor()
	if !ok || ctor == nil {
		return nil, ErrUnsupported
	}
	t, err := ctor(name, width, members)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	if t == nil {
		return nil, ErrUnsupported
	}
	return t, nil
}
