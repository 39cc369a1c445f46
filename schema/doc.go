// Package schema defines the schema model shared by the parser, the type
// registry, the layout engine and the wire runtime.
//
// A parsed document is a File holding declarations: Enum, Struct, Table and
// Union. The registry links them into a Schema and binds every member Type to
// its declaration. The layout engine then fills in the computed facts on each
// Member (Offset, Bytes, HasOffset/HasBit, Bit, Default) and on each aggregate
// (Bytes, Default). Consumers never recompute layout; they read these fields.
//
// Member.Kind reports the closed field kind (scalar, bool, enum, struct, table,
// union, list, text, bytes) that readers and writers dispatch on.
//
// Schema errors are collected as Diagnostics rather than returned one at a time.
package schema
