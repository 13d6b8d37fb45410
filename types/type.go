package types

import (
	"fmt"
	"strings"

	"github.com/wippyai/ucode-layout/errors"
)

// Type describes one structural type. Fields are populated per Kind.
type Type struct {
	Elem    *Type
	Name    string
	Members []EnumMember
	Fields  []Field
	Count   uint64
	Width   uint64
	size    uint64
	align   uint64
	Kind    Kind
	Packed  bool
}

// Field is one member of a struct. Offset is filled in by NewStruct.
type Field struct {
	Type   *Type
	Name   string
	Offset uint64
}

// EnumMember is one (name, value) pair of an enumeration.
type EnumMember struct {
	Name  string
	Value uint64
	// Alias marks members that exist only to keep a renderer from printing
	// complements of other members as "~NAME".
	Alias bool
}

// AlignTo rounds offset up to the next multiple of align.
func AlignTo(offset, align uint64) uint64 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

func validWidth(width uint64) bool {
	switch width {
	case 1, 2, 4, 8:
		return true
	}
	return false
}

// UInt returns an unsigned integer type of the given byte width.
func UInt(width uint64) (*Type, error) {
	if !validWidth(width) {
		return nil, errors.InvalidInput(errors.PhaseRegister, fmt.Sprintf("unsupported integer width %d", width))
	}
	return &Type{Kind: KindUInt, Width: width, size: width, align: width}, nil
}

// Enum returns an enumeration of the given byte width.
// Member names must be unique and every value must fit the width.
func Enum(name string, width uint64, members []EnumMember) (*Type, error) {
	if !validWidth(width) {
		return nil, errors.InvalidInput(errors.PhaseRegister, fmt.Sprintf("unsupported enum width %d", width))
	}
	if len(members) == 0 {
		return nil, errors.InvalidInput(errors.PhaseRegister, "enum has no members")
	}
	limit := uint64(1)<<(8*width) - 1
	if width == 8 {
		limit = ^uint64(0)
	}
	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		if _, dup := seen[m.Name]; dup {
			return nil, errors.New(errors.PhaseRegister, errors.KindInvalidInput).
				Type(name).
				Detail("duplicate enum member %q", m.Name).
				Build()
		}
		seen[m.Name] = struct{}{}
		if m.Value > limit {
			return nil, errors.New(errors.PhaseRegister, errors.KindInvalidInput).
				Type(name).
				Detail("enum member %q value 0x%x exceeds width %d", m.Name, m.Value, width).
				Build()
		}
	}
	ms := make([]EnumMember, len(members))
	copy(ms, members)
	return &Type{Kind: KindEnum, Name: name, Width: width, Members: ms, size: width, align: width}, nil
}

// NewStruct lays out fields in order. Packed structs carry no padding.
func NewStruct(name string, packed bool, fields []Field) (*Type, error) {
	if len(fields) == 0 {
		return nil, errors.New(errors.PhaseRegister, errors.KindInvalidInput).
			Type(name).
			Detail("struct has no fields").
			Build()
	}

	laid := make([]Field, len(fields))
	seen := make(map[string]struct{}, len(fields))
	maxAlign := uint64(1)
	offset := uint64(0)

	for i, f := range fields {
		if f.Type == nil {
			return nil, errors.New(errors.PhaseRegister, errors.KindInvalidInput).
				Type(name).
				Path(f.Name).
				Detail("field has no type").
				Build()
		}
		if _, dup := seen[f.Name]; dup {
			return nil, errors.New(errors.PhaseRegister, errors.KindInvalidInput).
				Type(name).
				Detail("duplicate field %q", f.Name).
				Build()
		}
		seen[f.Name] = struct{}{}

		if !packed {
			a := f.Type.Align()
			offset = AlignTo(offset, a)
			if a > maxAlign {
				maxAlign = a
			}
		}
		laid[i] = Field{Name: f.Name, Type: f.Type, Offset: offset}
		offset += f.Type.Size()
	}

	if !packed {
		offset = AlignTo(offset, maxAlign)
	}

	return &Type{
		Kind:   KindStruct,
		Name:   name,
		Fields: laid,
		Packed: packed,
		size:   offset,
		align:  maxAlign,
	}, nil
}

// Array returns a fixed-size array of count elements. The result is never
// cached; callers that need the same shape twice get two distinct values.
func Array(elem *Type, count uint64) (*Type, error) {
	if elem == nil {
		return nil, errors.InvalidInput(errors.PhaseRegister, "array element type is nil")
	}
	if count == 0 {
		return nil, errors.InvalidInput(errors.PhaseRegister, "array count must be positive")
	}
	return &Type{
		Kind:  KindArray,
		Elem:  elem,
		Count: count,
		size:  elem.Size() * count,
		align: elem.Align(),
	}, nil
}

// Named returns a reference to a registered type by name.
func Named(name string, target *Type) *Type {
	return &Type{Kind: KindNamed, Name: name, Elem: target}
}

// Size returns the byte size of the type.
func (t *Type) Size() uint64 {
	if t == nil {
		return 0
	}
	if t.Kind == KindNamed {
		return t.Elem.Size()
	}
	return t.size
}

// Align returns the natural alignment of the type.
func (t *Type) Align() uint64 {
	if t == nil {
		return 1
	}
	if t.Kind == KindNamed {
		return t.Elem.Align()
	}
	if t.align == 0 {
		return 1
	}
	return t.align
}

// Resolve follows named references to the underlying type.
func (t *Type) Resolve() *Type {
	for t != nil && t.Kind == KindNamed {
		t = t.Elem
	}
	return t
}

// Field returns the struct field with the given name.
func (t *Type) Field(name string) (Field, bool) {
	r := t.Resolve()
	if r == nil || r.Kind != KindStruct {
		return Field{}, false
	}
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Member returns the first non-alias enum member with the given value.
func (t *Type) Member(value uint64) (EnumMember, bool) {
	r := t.Resolve()
	if r == nil || r.Kind != KindEnum {
		return EnumMember{}, false
	}
	for _, m := range r.Members {
		if m.Value == value && !m.Alias {
			return m, true
		}
	}
	for _, m := range r.Members {
		if m.Value == value {
			return m, true
		}
	}
	return EnumMember{}, false
}

// String renders a C-like type reference, e.g. "uint16_t" or "AMD_Zen_MicroOp[0xd40]".
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindUInt:
		return fmt.Sprintf("uint%d_t", t.Width*8)
	case KindEnum:
		if t.Name != "" {
			return "enum " + t.Name
		}
		return fmt.Sprintf("enum:%d", t.Width)
	case KindStruct:
		if t.Name != "" {
			return "struct " + t.Name
		}
		return "struct"
	case KindArray:
		return fmt.Sprintf("%s[0x%x]", t.Elem, t.Count)
	case KindNamed:
		return t.Name
	default:
		return "unknown"
	}
}

// Decl renders the full declaration of a struct or enum. Other kinds render
// as their reference form.
func (t *Type) Decl() string {
	var b strings.Builder
	switch t.Kind {
	case KindStruct:
		b.WriteString("struct ")
		if t.Packed {
			b.WriteString("__packed ")
		}
		b.WriteString(t.Name)
		b.WriteString("\n{\n")
		for _, f := range t.Fields {
			if f.Type.Kind == KindArray {
				fmt.Fprintf(&b, "    /* 0x%04x */ %s %s[0x%x];\n", f.Offset, f.Type.Elem, f.Name, f.Type.Count)
			} else {
				fmt.Fprintf(&b, "    /* 0x%04x */ %s %s;\n", f.Offset, f.Type, f.Name)
			}
		}
		fmt.Fprintf(&b, "}; /* size 0x%x */", t.Size())
	case KindEnum:
		fmt.Fprintf(&b, "enum %s : uint%d_t\n{\n", t.Name, t.Width*8)
		for _, m := range t.Members {
			fmt.Fprintf(&b, "    %s = 0x%x,\n", m.Name, m.Value)
		}
		b.WriteString("};")
	default:
		b.WriteString(t.String())
	}
	return b.String()
}

// Equal reports whether a and b describe the same layout. Named references
// compare by name only.
func Equal(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindUInt:
		return a.Width == b.Width
	case KindEnum:
		if a.Name != b.Name || a.Width != b.Width || len(a.Members) != len(b.Members) {
			return false
		}
		for i := range a.Members {
			if a.Members[i] != b.Members[i] {
				return false
			}
		}
		return true
	case KindStruct:
		if a.Name != b.Name || a.Packed != b.Packed || len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			fa, fb := a.Fields[i], b.Fields[i]
			if fa.Name != fb.Name || fa.Offset != fb.Offset || !Equal(fa.Type, fb.Type) {
				return false
			}
		}
		return true
	case KindArray:
		return a.Count == b.Count && Equal(a.Elem, b.Elem)
	case KindNamed:
		return a.Name == b.Name
	}
	return false
}
