// Package spack compiles schemas of structs, tables, enums and unions into a
// deterministic binary layout, and reads and writes messages in that layout.
//
// Messages are zero-copy and append-only: every object is written once at the
// frontier of an arena, parents refer to children through 48-bit slots, and a
// reader decodes straight from the buffer with bounds and magic checks.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	spack/               Root package: Compile and CompileFile
//	├── spr/             Schema document parser and import loader
//	├── schema/          Schema model, kinds, positions and diagnostics
//	├── registry/        Namespace, nested naming and type binding
//	├── layout/          Layout engine: offsets, presence bits, defaults, magics
//	├── wire/            Reader, Writer arena and CopyIn
//	├── evolution/       Compatibility check between two schema revisions
//	├── magic/           Random table magic generation
//	├── config/          CLI configuration
//	├── errors/          Structured error types for debugging
//	└── cmd/spack/       validate, layout, magic, check and inspect commands
//
// # Quick Start
//
// Compile a schema and write a message:
//
//	s, err := spack.Compile("point.spr", `
//	    table Point @5A1D0C33 {
//	        x: I32;
//	        y: I32;
//	        label: Text;
//	    }`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	w := wire.NewWriter()
//	p := w.Construct(s.Table("Point"))
//	p.SetInt("x", 3)
//	p.SetInt("y", -4)
//	p.SetText("label", "origin")
//	msg := w.Finalize(p)
//
// and read it back:
//
//	in, err := wire.NewReader(msg).Root(s.Table("Point"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(in.Int("x"), in.Int("y")) // 3 -4
//
// # Schema Evolution
//
// Tables may grow across revisions: new members are appended, removed members
// become tombstones that keep their slot. A reader decoding a message written
// with a smaller table reads the missing members as their defaults. CopyIn
// re-encodes a message under another revision by matching members by name.
//
// # Thread Safety
//
// Compiled schemas and Readers are safe for concurrent use. A Writer must be
// used by a single goroutine.
//
// # Inplace Placement
//
// An inplace member stores its payload directly after its table instead of
// behind a pointer. The payload must be the very next allocation after the
// table; the writer panics with a KindMisuse error otherwise.
package spack
