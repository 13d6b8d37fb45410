// Package memhost is an in-memory host database over an image.
//
// It keeps a type namespace and per-address data variables, symbols and
// comments, and journals every mutation. Like the disassembler databases it
// stands in for, it refuses to define a second variable at an occupied
// address and refuses to redefine a type name, so callers must clear before
// they define and must check before they register.
//
// A database can be saved to and restored from a TOML snapshot so that
// repeated runs operate on the same session.
package memhost
