// Package errors provides structured error types for the spack schema compiler
// and wire runtime.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: member path, schema type name, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseAnnotate, errors.KindRange).
//		Path("Person", "age").
//		Type("U8").
//		Detail("value %d outside allowed range %d to %d", 300, 0, 255).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.BadMagic(path, got, want)
//	err := errors.OutOfBounds(errors.PhaseDecode, path, 120, 64)
//
// Decode faults are returned as values. Precondition, Misuse and Internal errors
// describe programming mistakes and are raised with panic by the wire runtime and
// the layout engine.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
