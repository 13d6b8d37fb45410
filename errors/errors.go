package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseRegister Phase = "register" // type registration
	PhaseSize     Phase = "size"     // region sizing
	PhaseApply    Phase = "apply"    // variable definition
	PhaseImage    Phase = "image"    // image loading and reads
	PhaseConfig   Phase = "config"   // configuration loading
	PhaseCommand  Phase = "command"  // command surface
	PhaseSession  Phase = "session"  // session snapshot
)

// Kind categorizes the error
type Kind string

const (
	KindRegistration Kind = "registration"
	KindUnsupported  Kind = "unsupported"
	KindOutOfBounds  Kind = "out_of_bounds"
	KindShortRead    Kind = "short_read"
	KindInvalidInput Kind = "invalid_input"
	KindInvalidData  Kind = "invalid_data"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindHost         Kind = "host"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	Type    string
	Region  string
	Detail  string
	Path    []string
	Address uint64
	HasAddr bool
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.HasAddr {
		fmt.Fprintf(&b, " @0x%x", e.Address)
	}

	if e.Type != "" || e.Region != "" {
		b.WriteString(": ")
		if e.Type != "" && e.Region != "" {
			b.WriteString("region ")
			b.WriteString(e.Region)
			b.WriteString(", type ")
			b.WriteString(e.Type)
		} else if e.Type != "" {
			b.WriteString("type ")
			b.WriteString(e.Type)
		} else {
			b.WriteString("region ")
			b.WriteString(e.Region)
		}
	}

	if e.Detail != "" {
		if e.Type != "" || e.Region != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Type sets the type name
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
	return b
}

// Region sets the region name
func (b *Builder) Region(r string) *Builder {
	b.err.Region = r
	return b
}

// Address sets the address the error refers to
func (b *Builder) Address(addr uint64) *Builder {
	b.err.Address = addr
	b.err.HasAddr = true
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Registration creates a registration failure naming the type that could not be built
func Registration(typeName string, cause error) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindRegistration,
		Type:   typeName,
		Detail: "cannot construct type",
		Cause:  cause,
	}
}

// Unsupported creates an unsupported capability error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// OutOfBounds creates an out of bounds error for an address past the image end
func OutOfBounds(phase Phase, addr, end uint64) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindOutOfBounds,
		Address: addr,
		HasAddr: true,
		Detail:  fmt.Sprintf("address 0x%x at or beyond image end 0x%x", addr, end),
		Value:   addr,
	}
}

// ShortRead creates a short read error
func ShortRead(phase Phase, addr uint64, got, want int) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindShortRead,
		Address: addr,
		HasAddr: true,
		Detail:  fmt.Sprintf("read %d of 0x%x bytes", got, want),
		Value:   got,
	}
}

// Conflict creates an error for an address or name that is already taken
func Conflict(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindConflict,
		Detail: detail,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// DefineFailed wraps a host failure while defining a region variable
func DefineFailed(region string, addr uint64, cause error) *Error {
	return &Error{
		Phase:   PhaseApply,
		Kind:    KindHost,
		Region:  region,
		Address: addr,
		HasAddr: true,
		Detail:  "define data variable",
		Cause:   cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(phase Phase, what string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}
