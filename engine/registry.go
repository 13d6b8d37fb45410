package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/ucode-layout/errors"
	"github.com/wippyai/ucode-layout/host"
	"github.com/wippyai/ucode-layout/layout"
	"github.com/wippyai/ucode-layout/types"
)

// State is whether the patch types exist in the host namespace.
type State uint8

const (
	StateAbsent State = iota
	StateRegistered
)

func (s State) String() string {
	if s == StateRegistered {
		return "registered"
	}
	return "absent"
}

// Registration describes one EnsureTypes call.
type Registration struct {
	// Built is set when this call constructed the types.
	Built bool
	// EnumFallback is set when the opcode field was downgraded to u8.
	EnumFallback bool
}

// Types are references to the registered patch types.
type Types struct {
	Patch   *types.Type
	Header  *types.Type
	Random  *types.Type
	Region  *types.Type
	MicroOp *types.Type
}

// Registry registers the patch types with a host type system exactly once.
type Registry struct {
	ts   host.TypeSystem
	caps host.Capabilities
}

// NewRegistry creates a registry over ts.
func NewRegistry(ts host.TypeSystem) *Registry {
	return &Registry{ts: ts, caps: host.Negotiate(ts)}
}

// State reports whether the container type is registered. The container is
// defined last, so its presence means every other type is present too.
func (r *Registry) State() State {
	if _, ok := r.ts.LookupType(layout.TypePatch); ok {
		return StateRegistered
	}
	return StateAbsent
}

// EnsureTypes registers the patch types unless the container already exists.
func (r *Registry) EnsureTypes() (Registration, error) {
	if r.State() == StateRegistered {
		return Registration{}, nil
	}

	var res Registration
	b := &builder{ts: r.ts, caps: r.caps}

	u8, err := b.uintType(1)
	if err != nil {
		return res, err
	}
	u16, err := b.uintType(2)
	if err != nil {
		return res, err
	}
	u32, err := b.uintType(4)
	if err != nil {
		return res, err
	}

	// A host may build the enum and still refuse to define it; either way
	// the opcode field falls back to u8.
	opcodeField := u8
	enumType, err := r.caps.Enum(layout.TypeOpcode, 1, opcodeMembers())
	if err == nil {
		var named *types.Type
		if named, err = b.define(layout.TypeOpcode, enumType, 1); err == nil {
			opcodeField = named
		}
	}
	if err == nil {
		Logger().Info("opcode enum created", zap.String("type", layout.TypeOpcode))
	} else {
		res.EnumFallback = true
		Logger().Warn("could not create opcode enum; opcode will be uint8",
			zap.String("type", layout.TypeOpcode),
			zap.Error(err))
	}

	uop, err := b.structure(layout.TypeMicroOp, layout.MicroOpSize, []types.Field{
		{Name: layout.FieldOpcode, Type: opcodeField},
		{Name: layout.FieldFlags, Type: u8},
		{Name: layout.FieldImm, Type: u16},
	})
	if err != nil {
		return res, err
	}

	uops, err := b.array(layout.TypeRegion, uop, layout.MicroOpCount)
	if err != nil {
		return res, err
	}
	if _, err := b.structure(layout.TypeRegion, layout.RegionSize, []types.Field{
		{Name: layout.FieldUops, Type: uops},
	}); err != nil {
		return res, err
	}

	widths := map[uint64]*types.Type{1: u8, 2: u16, 4: u32}
	hdrFields := make([]types.Field, len(layout.HeaderFields))
	for i, f := range layout.HeaderFields {
		hdrFields[i] = types.Field{Name: f.Name, Type: widths[f.Width]}
	}
	hdr, err := b.structure(layout.TypeHeader, layout.HeaderSize, hdrFields)
	if err != nil {
		return res, err
	}

	randFields := make([]types.Field, 0, layout.RandomBlocks)
	for _, name := range layout.RandomBlockNames {
		block, err := b.array(layout.TypeRandom, u8, layout.RandomBlockSize)
		if err != nil {
			return res, err
		}
		randFields = append(randFields, types.Field{Name: name, Type: block})
	}
	if _, err := b.structure(layout.TypeRandom, layout.RandomSize, randFields); err != nil {
		return res, err
	}

	body, err := b.array(layout.TypePatch, u8, layout.BodySize)
	if err != nil {
		return res, err
	}
	if _, err := b.structure(layout.TypePatch, layout.PatchSize, []types.Field{
		{Name: layout.FieldHeader, Type: hdr},
		{Name: layout.FieldBody, Type: body},
	}); err != nil {
		return res, err
	}

	res.Built = true
	Logger().Info("AMD microcode types defined", zap.Int("types", b.defined))
	return res, nil
}

// Lookup returns references to every registered patch type.
func (r *Registry) Lookup() (Types, error) {
	var out Types
	targets := []struct {
		dst  **types.Type
		name string
	}{
		{&out.Patch, layout.TypePatch},
		{&out.Header, layout.TypeHeader},
		{&out.Random, layout.TypeRandom},
		{&out.Region, layout.TypeRegion},
		{&out.MicroOp, layout.TypeMicroOp},
	}
	for _, tg := range targets {
		t, ok := r.ts.LookupType(tg.name)
		if !ok {
			return Types{}, errors.Registration(tg.name, fmt.Errorf("type missing after definition"))
		}
		*tg.dst = r.ts.NamedType(tg.name, t)
	}
	return out, nil
}

// OpcodeIsEnum reports whether the opcode enumeration is registered.
func (r *Registry) OpcodeIsEnum() bool {
	_, ok := r.ts.LookupType(layout.TypeOpcode)
	return ok
}

// RegionType returns the microcode region type for the given record count:
// the registered type for a full region, a one-off type otherwise.
func (r *Registry) RegionType(t Types, records uint64) (*types.Type, bool, error) {
	if records == layout.MicroOpCount {
		return t.Region, false, nil
	}
	uops, err := r.ts.ArrayType(t.MicroOp, records)
	if err != nil {
		return nil, true, errors.Registration(layout.TypeRegionAuto, err)
	}
	auto, err := r.ts.StructType(layout.TypeRegionAuto, []types.Field{
		{Name: layout.FieldUops, Type: uops},
	}, true)
	if err != nil {
		return nil, true, errors.Registration(layout.TypeRegionAuto, err)
	}
	return auto, true, nil
}

// PatchType returns the container type covering size readable bytes: the
// registered type for a whole patch, a one-off type with a shortened body
// otherwise. size must be at least HeaderSize.
func (r *Registry) PatchType(t Types, size uint64) (*types.Type, bool, error) {
	if size >= layout.PatchSize {
		return t.Patch, false, nil
	}
	if size < layout.HeaderSize {
		return nil, true, errors.InvalidInput(errors.PhaseSize,
			fmt.Sprintf("container needs at least 0x%x bytes, have 0x%x", layout.HeaderSize, size))
	}

	fields := []types.Field{{Name: layout.FieldHeader, Type: t.Header}}
	if bodyLen := size - layout.HeaderSize; bodyLen > 0 {
		u8, err := r.caps.UInt(1)
		if err != nil {
			return nil, true, errors.Registration("uint8_t", err)
		}
		body, err := r.ts.ArrayType(u8, bodyLen)
		if err != nil {
			return nil, true, errors.Registration(layout.TypePatchAuto, err)
		}
		fields = append(fields, types.Field{Name: layout.FieldBody, Type: body})
	}
	auto, err := r.ts.StructType(layout.TypePatchAuto, fields, true)
	if err != nil {
		return nil, true, errors.Registration(layout.TypePatchAuto, err)
	}
	return auto, true, nil
}

func opcodeMembers() []types.EnumMember {
	out := make([]types.EnumMember, len(layout.Opcodes))
	for i, o := range layout.Opcodes {
		out[i] = types.EnumMember{Name: o.Name, Value: uint64(o.Value), Alias: o.Alias}
	}
	return out
}

// builder constructs and defines types, reusing names left over from an
// earlier pass that failed before the container was defined.
type builder struct {
	ts      host.TypeSystem
	caps    host.Capabilities
	defined int
}

func (b *builder) uintType(width uint64) (*types.Type, error) {
	t, err := b.caps.UInt(width)
	if err != nil {
		return nil, errors.Registration(fmt.Sprintf("uint%d_t", width*8), err)
	}
	return t, nil
}

func (b *builder) array(owner string, elem *types.Type, count uint64) (*types.Type, error) {
	t, err := b.ts.ArrayType(elem, count)
	if err != nil {
		return nil, errors.Registration(owner, err)
	}
	return t, nil
}

func (b *builder) structure(name string, size uint64, fields []types.Field) (*types.Type, error) {
	t, err := b.ts.StructType(name, fields, true)
	if err != nil {
		return nil, errors.Registration(name, err)
	}
	return b.define(name, t, size)
}

// define registers t under name and returns a named reference to it. The
// built size must match the format exactly.
func (b *builder) define(name string, t *types.Type, size uint64) (*types.Type, error) {
	if t.Size() != size {
		return nil, errors.Registration(name,
			fmt.Errorf("built size 0x%x, format requires 0x%x", t.Size(), size))
	}
	if prev, ok := b.ts.LookupType(name); ok {
		debugf("reusing type %s from an earlier pass", name)
		return b.ts.NamedType(name, prev), nil
	}
	if err := b.ts.DefineType(name, t); err != nil {
		return nil, errors.Registration(name, err)
	}
	b.defined++
	return b.ts.NamedType(name, t), nil
}
