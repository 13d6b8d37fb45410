package host

import (
	"errors"

	ucodelayout "github.com/wippyai/ucode-layout"
	"github.com/wippyai/ucode-layout/types"
)

// ErrUnsupported is returned by a capability the host does not offer.
var ErrUnsupported = errors.New("capability not supported by host")

// IntConstructor builds an unsigned integer type of the given byte width.
// Hosts expose one per call shape they support; the first that succeeds wins.
type IntConstructor func(width uint64) (*types.Type, error)

// EnumConstructor builds an enumeration type.
type EnumConstructor func(name string, width uint64, members []types.EnumMember) (*types.Type, error)

// TypeSystem is the host's type namespace and type constructors.
type TypeSystem interface {
	// LookupType returns the registered type with the given name.
	LookupType(name string) (*types.Type, bool)
	// DefineType registers t under name.
	DefineType(name string, t *types.Type) error
	// NamedType returns a reference to a registered type.
	NamedType(name string, t *types.Type) *types.Type
	// StructType builds a struct from an ordered field list.
	StructType(name string, fields []types.Field, packed bool) (*types.Type, error)
	// ArrayType builds a fixed-size array.
	ArrayType(elem *types.Type, count uint64) (*types.Type, error)
	// IntConstructors lists the integer constructors in probe order.
	IntConstructors() []IntConstructor
	// EnumConstructor returns the enumeration constructor, if any.
	EnumConstructor() (EnumConstructor, bool)
}

// Storage is the host's per-address variable, symbol and comment store over
// an image.
type Storage interface {
	ucodelayout.Image

	// DefineDataVar defines a typed variable at addr. Hosts may refuse to
	// overwrite an occupied address.
	DefineDataVar(addr uint64, t *types.Type) error
	// UndefineDataVar removes the variable at addr. Removing nothing is not
	// an error.
	UndefineDataVar(addr uint64) error
	// DefineSymbol attaches a label to addr.
	DefineSymbol(addr uint64, name string) error
	// SetComment attaches a comment to addr.
	SetComment(addr uint64, text string) error
	// UpdateAnalysis asks the host to re-run analysis.
	UpdateAnalysis() error
}

// Host is everything the layout engine needs from the platform.
type Host interface {
	TypeSystem
	Storage
}
