package command

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/ucode-layout/engine"
	"github.com/wippyai/ucode-layout/errors"
)

// Command names as they appear in a host's plugin menu.
const (
	DefineTypes   = `AMD Microcode\Define types`
	ApplyAtZero   = `AMD Microcode\Apply layout at file start (0x0)`
	ApplyAtCursor = `AMD Microcode\Apply layout at cursor`
)

// Handler runs a command against an engine. addr is the cursor address for
// commands that take one.
type Handler func(e *engine.Engine, addr uint64) (*engine.Report, error)

// Command is a named, described handler.
type Command struct {
	Handler     Handler
	Name        string
	Description string
	// ForAddress marks commands that act on a cursor address.
	ForAddress bool
}

// Registry holds commands by name.
type Registry struct {
	cmds map[string]*Command
	mu   sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{cmds: make(map[string]*Command)}
}

// Default returns a registry holding the three microcode commands.
func Default() *Registry {
	r := NewRegistry()
	for _, c := range builtins() {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
	return r
}

func builtins() []Command {
	return []Command{
		{
			Name:        DefineTypes,
			Description: "Define AMD microcode structs (+ enum best-effort) in this database",
			Handler:     defineTypes,
		},
		{
			Name:        ApplyAtZero,
			Description: "Define types (if needed) and apply AMD microcode layout at 0",
			Handler: func(e *engine.Engine, _ uint64) (*engine.Report, error) {
				return e.Apply(0)
			},
		},
		{
			Name:        ApplyAtCursor,
			Description: "Define types (if needed) and apply AMD microcode layout at cursor address",
			ForAddress:  true,
			Handler: func(e *engine.Engine, addr uint64) (*engine.Report, error) {
				return e.Apply(addr)
			},
		},
	}
}

func defineTypes(e *engine.Engine, _ uint64) (*engine.Report, error) {
	rep := &engine.Report{}
	res, err := e.EnsureTypes()
	if err != nil {
		rep.Diagnostics = append(rep.Diagnostics, engine.Diagnostic{
			Severity: engine.SeverityError,
			Code:     engine.CodeRegistration,
			Message:  err.Error(),
		})
		return rep, err
	}
	rep.Registered = res.Built
	if res.EnumFallback {
		rep.Diagnostics = append(rep.Diagnostics, engine.Diagnostic{
			Severity: engine.SeverityInfo,
			Code:     engine.CodeEnumFallback,
			Message:  "opcode field registered as uint8",
		})
	}
	if !res.Built {
		Logger().Info("AMD microcode types already defined")
	}
	return rep, nil
}

// Register adds a command. Names are unique.
func (r *Registry) Register(c Command) error {
	if c.Name == "" {
		return errors.InvalidInput(errors.PhaseCommand, "command name cannot be empty")
	}
	if c.Handler == nil {
		return errors.InvalidInput(errors.PhaseCommand, fmt.Sprintf("command %q has no handler", c.Name))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cmds[c.Name]; exists {
		return errors.Conflict(errors.PhaseCommand, fmt.Sprintf("command %q already registered", c.Name))
	}
	r.cmds[c.Name] = &c
	return nil
}

// Lookup returns the command with the given name.
func (r *Registry) Lookup(name string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cmds[name]
	return c, ok
}

// Names returns every command name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.cmds))
	for name := range r.cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run invokes the named command. addr is ignored by commands that do not
// act on an address.
func (r *Registry) Run(name string, e *engine.Engine, addr uint64) (*engine.Report, error) {
	c, ok := r.Lookup(name)
	if !ok {
		return nil, errors.NotFound(errors.PhaseCommand, "command", name)
	}

	fields := []zap.Field{zap.String("command", name)}
	if c.ForAddress {
		fields = append(fields, zap.String("addr", fmt.Sprintf("0x%x", addr)))
	}
	Logger().Debug("running command", fields...)

	rep, err := c.Handler(e, addr)
	if err != nil {
		Logger().Error("command failed", append(fields, zap.Error(err))...)
	}
	return rep, err
}
