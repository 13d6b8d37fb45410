// Package ucodelayout types AMD Zen microcode patches inside a memory image.
//
// A patch is a fixed 0x3820-byte blob: a 0x20-byte header, three 0x100-byte
// random blocks, and a 0x3500-byte region of 4-byte micro-op records. The
// module describes that shape once and projects it onto an image that may be
// truncated, defining one typed variable per region in a host database.
//
// # Architecture Overview
//
//	ucodelayout/         Root package with the Image interface
//	├── layout/          Static layout model: regions, header fields, opcodes
//	├── types/           Host-neutral structural type model
//	├── host/            Host boundary: type system, storage, capabilities
//	│   └── memhost/     In-memory reference host with TOML session snapshots
//	├── engine/          Type registration, region sizing, idempotent apply
//	├── command/         Command surface: define types, apply at 0, apply at address
//	├── image/           Image backends: byte buffers and wazero linear memory
//	├── errors/          Structured error types
//	├── internal/config/ TOML configuration for the CLI
//	└── cmd/ucode/       CLI and terminal UI
//
// # Quick Start
//
//	img := image.NewBytes(data)
//	h := memhost.New(img)
//	eng := engine.New(h)
//
//	report, err := eng.Apply(0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, d := range report.Diagnostics {
//	    fmt.Println(d)
//	}
//
// # Truncated Images
//
// The microcode region is typed only as far as whole records are readable.
// A short region gets a one-off array type sized to what exists; it is never
// added to the host's type namespace. Fixed-size regions that are not fully
// readable are skipped rather than defined past the end of the image.
//
// # Thread Safety
//
// An Engine is meant for one caller at a time. The reference host serializes
// access to its database and may be shared.
package ucodelayout
