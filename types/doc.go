// Package types is the host-neutral model of the structural types the layout
// engine registers: unsigned integers, enumerations, structs and fixed-size
// arrays, plus named references to registered types.
//
// Types are plain values. Constructors compute field offsets and sizes once;
// nothing is interned, so two calls to Array with the same element and count
// return distinct but Equal types.
//
// # Layout Rules
//
//   - UInt and Enum: size equals width (1, 2, 4 or 8 bytes), little-endian
//   - Struct: fields laid out in order; packed structs have no padding,
//     unpacked structs align each field to its natural alignment
//   - Array: element size times count
//   - Named: size and alignment of the referenced type
package types
