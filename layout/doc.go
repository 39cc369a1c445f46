// Package layout computes the binary layout of a resolved schema.
//
// The annotator walks every struct, table and union once, left to right, and
// fills in the layout facts the wire runtime reads: member offsets and slot
// widths, presence and value bits, default blobs, union tags and table
// magics. It never stops at the first schema mistake; all problems are
// collected as diagnostics and the count is returned.
//
// # Layout Rules
//
//   - Scalars: declared width. Optional floats default to NaN and need no bit.
//   - Bool: one bit in a table, one byte in a struct. Not allowed in unions.
//   - Enum: one byte, default is the declared value's index or 255.
//   - Struct: the struct's own size and default blob, copied in place.
//   - Text, Bytes, List, Table: 6 byte slot holding a 48-bit offset.
//   - Union: 8 byte slot, u16 tag followed by 48 bits of payload reference.
//
// Presence bits for optional integers, Bool and struct members, and the value
// bits of table Bool members, share one rolling cursor in declaration order.
// A new presence byte is opened at the current end of the fixed block when no
// byte is open or the open one is full.
//
// # Usage
//
//	s, diags := registry.Resolve(files...)
//	a := layout.New()
//	if _, n := a.Annotate(s); n > 0 {
//		return a.Diagnostics()
//	}
package layout
