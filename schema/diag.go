package schema

import (
	"strings"

	"github.com/wippyai/spack/errors"
)

// Note is secondary location information attached to a diagnostic,
// e.g. "previously defined here".
type Note struct {
	Pos     Pos
	Message string
}

// Diagnostic is one schema error with its source position.
type Diagnostic struct {
	Err   *errors.Error
	Notes []Note
	Pos   Pos
}

func (d Diagnostic) Error() string {
	var b strings.Builder
	b.WriteString(d.Pos.String())
	b.WriteString(": ")
	b.WriteString(d.Err.Error())
	for _, n := range d.Notes {
		b.WriteString("\n\t")
		b.WriteString(n.Pos.String())
		b.WriteString(": ")
		b.WriteString(n.Message)
	}
	return b.String()
}

func (d Diagnostic) Unwrap() error {
	return d.Err
}

// Diagnostics accumulates schema errors so one pass can report all of them.
type Diagnostics []Diagnostic

// Add records a diagnostic and returns it for attaching notes.
func (ds *Diagnostics) Add(pos Pos, phase errors.Phase, kind errors.Kind, format string, args ...any) *Diagnostic {
	*ds = append(*ds, Diagnostic{
		Pos: pos,
		Err: errors.New(phase, kind).Detail(format, args...).Build(),
	})
	return &(*ds)[len(*ds)-1]
}

// Note attaches a secondary location to the diagnostic.
func (d *Diagnostic) Note(pos Pos, msg string) *Diagnostic {
	d.Notes = append(d.Notes, Note{Pos: pos, Message: msg})
	return d
}

func (ds Diagnostics) Error() string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = d.Error()
	}
	return strings.Join(parts, "\n")
}

// Err returns nil when there are no diagnostics.
func (ds Diagnostics) Err() error {
	if len(ds) == 0 {
		return nil
	}
	return ds
}

// Count returns the number of diagnostics of the given kind; an empty kind counts all.
func (ds Diagnostics) Count(kind errors.Kind) int {
	if kind == "" {
		return len(ds)
	}
	n := 0
	for _, d := range ds {
		if d.Err.Kind == kind {
			n++
		}
	}
	return n
}
