package memhost

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/wippyai/ucode-layout/errors"
	"github.com/wippyai/ucode-layout/types"
)

// Snapshot is the persisted form of a database. Types are recorded by name
// only; the caller rebuilds them before restoring variables.
type Snapshot struct {
	Types    []string    `toml:"types"`
	Vars     []VarRecord `toml:"vars"`
	Analysis int         `toml:"analysis"`
}

// VarRecord is one persisted variable.
type VarRecord struct {
	Addr    string `toml:"addr"`
	Type    string `toml:"type"`
	Size    uint64 `toml:"size"`
	Symbol  string `toml:"symbol,omitempty"`
	Comment string `toml:"comment,omitempty"`
}

// Resolver rebuilds the type of a persisted variable from its name and size.
type Resolver func(name string, size uint64) (*types.Type, error)

// Snapshot captures the current database state.
func (db *DB) Snapshot() Snapshot {
	vars := db.Vars()

	db.mu.RLock()
	defer db.mu.RUnlock()

	s := Snapshot{
		Types:    append([]string(nil), db.order...),
		Vars:     make([]VarRecord, 0, len(vars)),
		Analysis: db.analysis,
	}
	for _, v := range vars {
		s.Vars = append(s.Vars, VarRecord{
			Addr:    fmt.Sprintf("0x%x", v.Addr),
			Type:    v.TypeName(),
			Size:    v.Type.Size(),
			Symbol:  v.Symbol,
			Comment: v.Comment,
		})
	}
	// Symbols and comments on addresses without a variable are kept too.
	for addr, sym := range db.symbols {
		if _, ok := db.vars[addr]; !ok {
			s.Vars = append(s.Vars, VarRecord{Addr: fmt.Sprintf("0x%x", addr), Symbol: sym, Comment: db.comments[addr]})
		}
	}
	sort.SliceStable(s.Vars, func(i, j int) bool {
		return parseAddr(s.Vars[i].Addr) < parseAddr(s.Vars[j].Addr)
	})
	return s
}

// Save writes the database as TOML.
func (db *DB) Save(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(db.Snapshot()); err != nil {
		return errors.Wrap(errors.PhaseSession, errors.KindInvalidData, err, "encode session")
	}
	return nil
}

// Restore reads a TOML snapshot and redefines its variables, symbols and
// comments. Every type listed in the snapshot must already be registered.
func (db *DB) Restore(r io.Reader, resolve Resolver) error {
	var s Snapshot
	if _, err := toml.NewDecoder(r).Decode(&s); err != nil {
		return errors.ParseFailed(errors.PhaseSession, "session", err)
	}

	for _, name := range s.Types {
		if _, ok := db.LookupType(name); !ok {
			return errors.NotFound(errors.PhaseSession, "type", name)
		}
	}

	for _, v := range s.Vars {
		addr, err := strconv.ParseUint(v.Addr, 0, 64)
		if err != nil {
			return errors.ParseFailed(errors.PhaseSession, "address "+v.Addr, err)
		}
		if v.Type != "" {
			t, err := resolve(v.Type, v.Size)
			if err != nil {
				return errors.New(errors.PhaseSession, errors.KindNotFound).
					Type(v.Type).
					Address(addr).
					Cause(err).
					Build()
			}
			if err := db.UndefineDataVar(addr); err != nil {
				return err
			}
			if err := db.DefineDataVar(addr, t); err != nil {
				return errors.DefineFailed("session", addr, err)
			}
		}
		if v.Symbol != "" {
			if err := db.DefineSymbol(addr, v.Symbol); err != nil {
				return err
			}
		}
		if v.Comment != "" {
			if err := db.SetComment(addr, v.Comment); err != nil {
				return err
			}
		}
	}

	db.mu.Lock()
	db.analysis = s.Analysis
	db.mu.Unlock()
	return nil
}

func parseAddr(s string) uint64 {
	v, _ := strconv.ParseUint(s, 0, 64)
	return v
}
