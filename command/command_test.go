package command

import (
	"strings"
	"testing"

	"github.com/wippyai/ucode-layout/engine"
	"github.com/wippyai/ucode-layout/host/memhost"
	"github.com/wippyai/ucode-layout/image"
	"github.com/wippyai/ucode-layout/layout"
)

func newEngine(size int) (*engine.Engine, *memhost.DB) {
	db := memhost.New(image.NewBytes(make([]byte, size)))
	return engine.New(db), db
}

func TestDefaultRegistry(t *testing.T) {
	r := Default()

	want := []string{ApplyAtCursor, ApplyAtZero, DefineTypes}
	got := r.Names()
	if len(got) != len(want) {
		t.Fatalf("names = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("name %d = %q, want %q", i, got[i], want[i])
		}
	}

	for _, name := range want {
		c, ok := r.Lookup(name)
		if !ok {
			t.Fatalf("%s missing", name)
		}
		if c.ForAddress != (name == ApplyAtCursor) {
			t.Errorf("%s ForAddress = %v", name, c.ForAddress)
		}
		if c.Description == "" {
			t.Errorf("%s has no description", name)
		}
	}
}

func TestRegister(t *testing.T) {
	noop := func(*engine.Engine, uint64) (*engine.Report, error) { return &engine.Report{}, nil }

	tests := []struct {
		name    string
		cmd     Command
		wantErr bool
	}{
		{"valid", Command{Name: "x", Handler: noop}, false},
		{"duplicate", Command{Name: "x", Handler: noop}, true},
		{"empty name", Command{Handler: noop}, true},
		{"nil handler", Command{Name: "y"}, true},
	}

	r := NewRegistry()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := r.Register(tc.cmd)
			if (err != nil) != tc.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestRunDefineTypes(t *testing.T) {
	e, db := newEngine(0)
	r := Default()

	rep, err := r.Run(DefineTypes, e, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !rep.Registered {
		t.Error("types not registered")
	}
	if len(db.Vars()) != 0 {
		t.Error("define types created variables")
	}

	rep, err = r.Run(DefineTypes, e, 0)
	if err != nil || rep.Registered {
		t.Errorf("second run = %+v, %v", rep, err)
	}
}

func TestRunApply(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
		addr uint64
		want uint64
	}{
		{"at zero ignores address", ApplyAtZero, 0x1234, 0},
		{"at cursor", ApplyAtCursor, layout.PatchSize, layout.PatchSize},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e, db := newEngine(2 * layout.PatchSize)
			rep, err := Default().Run(tc.cmd, e, tc.addr)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if rep.Base != tc.want {
				t.Errorf("base = 0x%x, want 0x%x", rep.Base, tc.want)
			}
			if v, ok := db.Var(tc.want + layout.RegionOffset); !ok || v.TypeName() != layout.TypeRegion {
				t.Errorf("region at 0x%x = %+v, %v", tc.want+layout.RegionOffset, v, ok)
			}
		})
	}
}

func TestRunUnknown(t *testing.T) {
	e, _ := newEngine(0)
	_, err := Default().Run("AMD Microcode\\Nope", e, 0)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %v", err)
	}
}
