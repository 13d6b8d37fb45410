// Package image provides ucodelayout.Image backends.
//
// Bytes serves a file or buffer. WasmMemory serves the linear memory of a
// wazero module, either one loaded from a .wasm file or a scratch module
// built around a buffer by NewWasmImage. Both clamp reads at the image end
// so callers can ask for a whole patch and learn how much of it exists.
package image
