// Package host defines the boundary between the layout engine and the
// platform that owns types and addresses.
//
// A Host combines a TypeSystem (named type namespace and constructors) with
// Storage (an image plus per-address variables, symbols and comments).
// Hosts differ in which primitive constructors they offer; Negotiate wraps a
// TypeSystem in Capabilities so callers ask for "an unsigned integer of width
// w" or "an enumeration, if possible" without caring how the host spells it.
//
// The memhost subpackage is an in-memory implementation used by the CLI and
// by tests.
package host
