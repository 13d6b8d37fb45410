package memhost

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	ucodelayout "github.com/wippyai/ucode-layout"
	"github.com/wippyai/ucode-layout/host"
	"github.com/wippyai/ucode-layout/types"
)

var (
	ErrTypeExists      = errors.New("type name already defined")
	ErrAddressOccupied = errors.New("address already holds a data variable")
	ErrOutsideImage    = errors.New("address outside image")
)

// Op names a journaled database mutation.
type Op string

const (
	OpDefineType  Op = "define_type"
	OpDefineVar   Op = "define_var"
	OpUndefineVar Op = "undefine_var"
	OpSymbol      Op = "symbol"
	OpComment     Op = "comment"
	OpAnalysis    Op = "analysis"
)

// Event is one journaled mutation.
type Event struct {
	Op   Op
	Name string
	Addr uint64
	Size uint64
}

func (e Event) String() string {
	switch e.Op {
	case OpDefineType:
		return fmt.Sprintf("%s %s", e.Op, e.Name)
	case OpAnalysis:
		return string(e.Op)
	default:
		return fmt.Sprintf("%s 0x%x %s", e.Op, e.Addr, e.Name)
	}
}

// Variable is a typed data variable with its annotations.
type Variable struct {
	Type    *types.Type
	Symbol  string
	Comment string
	Addr    uint64
}

// TypeName returns the name the variable's type is known by.
func (v Variable) TypeName() string {
	if v.Type == nil {
		return ""
	}
	if v.Type.Name != "" {
		return v.Type.Name
	}
	return v.Type.String()
}

// Options configures which capabilities the database offers.
type Options struct {
	// IntShapes overrides the integer constructors, in probe order.
	IntShapes []host.IntConstructor
	// DisableEnums makes the host report enumerations as unsupported.
	DisableEnums bool
}

// DB is an in-memory host database over an image: a type namespace plus
// per-address variables, symbols and comments.
type DB struct {
	img      ucodelayout.Image
	types    map[string]*types.Type
	vars     map[uint64]*types.Type
	symbols  map[uint64]string
	comments map[uint64]string
	opts     Options
	order    []string
	journal  []Event
	analysis int
	mu       sync.RWMutex
}

// New creates a database over img.
func New(img ucodelayout.Image, opts ...Options) *DB {
	db := &DB{
		img:      img,
		types:    make(map[string]*types.Type),
		vars:     make(map[uint64]*types.Type),
		symbols:  make(map[uint64]string),
		comments: make(map[uint64]string),
	}
	if len(opts) > 0 {
		db.opts = opts[0]
	}
	return db
}

// Read implements ucodelayout.Image.
func (db *DB) Read(addr, n uint64) ([]byte, error) {
	return db.img.Read(addr, n)
}

// End implements ucodelayout.Image.
func (db *DB) End() uint64 {
	return db.img.End()
}

// LookupType implements host.TypeSystem.
func (db *DB) LookupType(name string) (*types.Type, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	t, ok := db.types[name]
	return t, ok
}

// DefineType implements host.TypeSystem. Names are defined once.
func (db *DB) DefineType(name string, t *types.Type) error {
	if name == "" || t == nil {
		return fmt.Errorf("define type %q: empty name or type", name)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.types[name]; exists {
		return fmt.Errorf("define type %q: %w", name, ErrTypeExists)
	}
	db.types[name] = t
	db.order = append(db.order, name)
	db.journal = append(db.journal, Event{Op: OpDefineType, Name: name, Size: t.Size()})
	Logger().Debug("type defined", zap.String("name", name), zap.Uint64("size", t.Size()))
	return nil
}

// NamedType implements host.TypeSystem.
func (db *DB) NamedType(name string, t *types.Type) *types.Type {
	return types.Named(name, t)
}

// StructType implements host.TypeSystem.
func (db *DB) StructType(name string, fields []types.Field, packed bool) (*types.Type, error) {
	return types.NewStruct(name, packed, fields)
}

// ArrayType implements host.TypeSystem.
func (db *DB) ArrayType(elem *types.Type, count uint64) (*types.Type, error) {
	return types.Array(elem, count)
}

// IntConstructors implements host.TypeSystem.
func (db *DB) IntConstructors() []host.IntConstructor {
	if len(db.opts.IntShapes) > 0 {
		return db.opts.IntShapes
	}
	return []host.IntConstructor{types.UInt}
}

// EnumConstructor implements host.TypeSystem.
func (db *DB) EnumConstructor() (host.EnumConstructor, bool) {
	if db.opts.DisableEnums {
		return nil, false
	}
	return types.Enum, true
}

// DefineDataVar implements host.Storage. An occupied address is refused.
func (db *DB) DefineDataVar(addr uint64, t *types.Type) error {
	if t == nil {
		return fmt.Errorf("define data var at 0x%x: nil type", addr)
	}
	if addr >= db.img.End() {
		return fmt.Errorf("define data var at 0x%x: %w", addr, ErrOutsideImage)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if prev, ok := db.vars[addr]; ok {
		return fmt.Errorf("define data var at 0x%x (holds %s): %w", addr, prev, ErrAddressOccupied)
	}
	db.vars[addr] = t
	db.journal = append(db.journal, Event{Op: OpDefineVar, Addr: addr, Name: typeName(t), Size: t.Size()})
	Logger().Debug("data var defined",
		zap.Uint64("addr", addr),
		zap.String("type", typeName(t)),
		zap.Uint64("size", t.Size()))
	return nil
}

// UndefineDataVar implements host.Storage.
func (db *DB) UndefineDataVar(addr uint64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	t, ok := db.vars[addr]
	if !ok {
		return nil
	}
	delete(db.vars, addr)
	db.journal = append(db.journal, Event{Op: OpUndefineVar, Addr: addr, Name: typeName(t)})
	return nil
}

// DefineSymbol implements host.Storage. A new label replaces the old one.
func (db *DB) DefineSymbol(addr uint64, name string) error {
	if name == "" {
		return fmt.Errorf("define symbol at 0x%x: empty name", addr)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	db.symbols[addr] = name
	db.journal = append(db.journal, Event{Op: OpSymbol, Addr: addr, Name: name})
	return nil
}

// SetComment implements host.Storage.
func (db *DB) SetComment(addr uint64, text string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if text == "" {
		delete(db.comments, addr)
	} else {
		db.comments[addr] = text
	}
	db.journal = append(db.journal, Event{Op: OpComment, Addr: addr, Name: text})
	return nil
}

// UpdateAnalysis implements host.Storage.
func (db *DB) UpdateAnalysis() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.analysis++
	db.journal = append(db.journal, Event{Op: OpAnalysis})
	return nil
}

// Var returns the variable defined at addr.
func (db *DB) Var(addr uint64) (Variable, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	t, ok := db.vars[addr]
	if !ok {
		return Variable{}, false
	}
	return Variable{Addr: addr, Type: t, Symbol: db.symbols[addr], Comment: db.comments[addr]}, true
}

// Vars returns every variable in address order.
func (db *DB) Vars() []Variable {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make([]Variable, 0, len(db.vars))
	for addr, t := range db.vars {
		out = append(out, Variable{Addr: addr, Type: t, Symbol: db.symbols[addr], Comment: db.comments[addr]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Addr < out[j].Addr })
	return out
}

// VarAt returns the variable whose span covers addr.
func (db *DB) VarAt(addr uint64) (Variable, bool) {
	var best Variable
	found := false
	for _, v := range db.Vars() {
		if addr >= v.Addr && addr < v.Addr+v.Type.Size() {
			// Later starts are the more specific view.
			best, found = v, true
		}
	}
	return best, found
}

// Symbol returns the label at addr.
func (db *DB) Symbol(addr uint64) (string, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	s, ok := db.symbols[addr]
	return s, ok
}

// Comment returns the comment at addr.
func (db *DB) Comment(addr uint64) (string, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	c, ok := db.comments[addr]
	return c, ok
}

// TypeNames returns registered type names in definition order.
func (db *DB) TypeNames() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]string, len(db.order))
	copy(out, db.order)
	return out
}

// AnalysisRuns returns how many times analysis was requested.
func (db *DB) AnalysisRuns() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.analysis
}

// Journal returns a copy of every mutation so far.
func (db *DB) Journal() []Event {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]Event, len(db.journal))
	copy(out, db.journal)
	return out
}

// Count returns how many journaled events have the given op.
func (db *DB) Count(op Op) int {
	n := 0
	for _, e := range db.Journal() {
		if e.Op == op {
			n++
		}
	}
	return n
}

func typeName(t *types.Type) string {
	if t.Name != "" {
		return t.Name
	}
	return t.String()
}

var _ host.Host = (*DB)(nil)
