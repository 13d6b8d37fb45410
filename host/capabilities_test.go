package host

import (
	"errors"
	"testing"

	"github.com/wippyai/ucode-layout/types"
)

// fakeTypeSystem implements TypeSystem for testing
type fakeTypeSystem struct {
	ints  []IntConstructor
	enum  EnumConstructor
	calls int
}

func (f *fakeTypeSystem) LookupType(string) (*types.Type, bool) { return nil, false }
func (f *fakeTypeSystem) DefineType(string, *types.Type) error { return nil }
func (f *fakeTypeSystem) NamedType(n string, t *types.Type) *types.Type { return types.Named(n, t) }
func (f *fakeTypeSystem) StructType(n string, fs []types.Field, p bool) (*types.Type, error) {
	return types.NewStruct(n, p, fs)
}
func (f *fakeTypeSystem) ArrayType(e *types.Type, c uint64) (*types.Type, error) {
	return types.Array(e, c)
}
func (f *fakeTypeSystem) IntConstructors() []IntConstructor { return f.ints }
func (f *fakeTypeSystem) EnumConstructor() (EnumConstructor, bool) {
	return f.enum, f.enum != nil
}

func TestNegotiateUIntProbesShapes(t *testing.T) {
	fs := &fakeTypeSystem{}
	failing := func(uint64) (*types.Type, error) {
		fs.calls++
		return nil, errors.New("wrong call shape")
	}
	empty := func(uint64) (*types.Type, error) {
		fs.calls++
		return nil, nil
	}
	fs.ints = []IntConstructor{failing, empty, types.UInt}

	typ, err := Negotiate(fs).UInt(2)
	if err != nil {
		t.Fatalf("UInt: %v", err)
	}
	if typ.Kind != types.KindUInt || typ.Size() != 2 {
		t.Errorf("got %s", typ)
	}
	if fs.calls != 2 {
		t.Errorf("probed %d failing shapes, want 2", fs.calls)
	}
}

func TestNegotiateUIntAllFail(t *testing.T) {
	fs := &fakeTypeSystem{ints: []IntConstructor{
		func(uint64) (*types.Type, error) { return nil, errors.New("shape a") },
		func(uint64) (*types.Type, error) { return nil, errors.New("shape b") },
	}}

	_, err := Negotiate(fs).UInt(4)
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"uint32", "shape a", "shape b"} {
		if !contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}

	_, err = Negotiate(&fakeTypeSystem{}).UInt(1)
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("no constructors: err = %v, want ErrUnsupported", err)
	}
}

func TestNegotiateEnum(t *testing.T) {
	members := []types.EnumMember{{Name: "A", Value: 1}}

	t.Run("unsupported", func(t *testing.T) {
		_, err := Negotiate(&fakeTypeSystem{}).Enum("E", 1, members)
		if !errors.Is(err, ErrUnsupported) {
			t.Errorf("err = %v, want ErrUnsupported", err)
		}
	})

	t.Run("constructor fails", func(t *testing.T) {
		fs := &fakeTypeSystem{enum: func(string, uint64, []types.EnumMember) (*types.Type, error) {
			return nil, errors.New("append failed")
		}}
		_, err := Negotiate(fs).Enum("E", 1, members)
		if !errors.Is(err, ErrUnsupported) {
			t.Errorf("err = %v, want ErrUnsupported", err)
		}
	})

	t.Run("supported", func(t *testing.T) {
		fs := &fakeTypeSystem{enum: types.Enum}
		typ, err := Negotiate(fs).Enum("E", 1, members)
		if err != nil || typ.Kind != types.KindEnum {
			t.Errorf("Enum = %v, %v", typ, err)
		}
	})
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
