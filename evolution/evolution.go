// Package evolution checks that a schema revision can read messages written
// with an earlier one.
//
// Tables may only grow: members are appended, never reordered, and a member
// that is no longer wanted becomes a Removed tombstone that keeps its slot.
// Structs are frozen. Unions and enums may only append members or values.
// Check walks two annotated schemas and reports every deviation.
package evolution

import (
	"fmt"
	"strings"

	"github.com/wippyai/spack/errors"
	"github.com/wippyai/spack/schema"
)

// Severity grades an Issue.
type Severity uint8

const (
	// Warning marks changes that keep the wire format readable but change
	// meaning, such as a new default or a renamed member.
	Warning Severity = iota
	// Breaking marks changes that make old messages misread or rejected.
	Breaking
)

func (s Severity) String() string {
	if s == Breaking {
		return "breaking"
	}
	return "warning"
}

// Issue is one incompatibility between two revisions.
type Issue struct {
	Decl     string
	Member   string
	Message  string
	Severity Severity
}

func (i Issue) String() string {
	where := i.Decl
	if i.Member != "" {
		where += "." + i.Member
	}
	return fmt.Sprintf("%s: %s: %s", i.Severity, where, i.Message)
}

type checker struct {
	issues []Issue
}

func (c *checker) add(sev Severity, decl, member, format string, args ...any) {
	c.issues = append(c.issues, Issue{
		Decl:     decl,
		Member:   member,
		Message:  fmt.Sprintf(format, args...),
		Severity: sev,
	})
}

// Check compares every declaration of old with the declaration of the same
// name in next. Declarations only present in next are new and always
// compatible.
func Check(old, next *schema.Schema) []Issue {
	c := &checker{}
	for _, d := range old.Decls {
		nd := next.Lookup(d.DeclName())
		if nd == nil {
			if e, ok := d.(*schema.Enum); ok && e.Removed {
				continue
			}
			c.add(Breaking, d.DeclName(), "", "%s was removed", d.DeclKind())
			continue
		}
		if nd.DeclKind() != d.DeclKind() {
			c.add(Breaking, d.DeclName(), "", "changed from %s to %s", d.DeclKind(), nd.DeclKind())
			continue
		}
		switch v := d.(type) {
		case *schema.Table:
			c.table(v, nd.(*schema.Table))
		case *schema.Struct:
			c.structure(v, nd.(*schema.Struct))
		case *schema.Union:
			c.union(v, nd.(*schema.Union))
		case *schema.Enum:
			c.enum(v, nd.(*schema.Enum))
		}
	}
	return c.issues
}

func (c *checker) table(old, next *schema.Table) {
	if old.Magic != next.Magic {
		c.add(Breaking, old.Name, "", "magic changed from @%08X to @%08X", old.Magic, next.Magic)
	}
	if next.Bytes < old.Bytes {
		c.add(Breaking, old.Name, "", "size shrinks from %d to %d bytes", old.Bytes, next.Bytes)
	}
	if len(next.Members) < len(old.Members) {
		for _, m := range old.Members[len(next.Members):] {
			if !m.Removed {
				c.add(Breaking, old.Name, m.Name, "member was deleted; mark it Removed to keep its slot")
			}
		}
	}
	for i, om := range old.Members {
		if i >= len(next.Members) {
			break
		}
		c.member(old.Name, om, next.Members[i], true)
	}
}

// member compares the i-th member of two revisions of one aggregate.
func (c *checker) member(decl string, om, nm *schema.Member, table bool) {
	switch {
	case om.Removed && nm.Removed:
		return
	case om.Removed:
		c.add(Breaking, decl, nm.Name, "reuses the slot of a removed member")
		return
	case nm.Removed:
		return
	}

	if om.Name != nm.Name {
		c.add(Warning, decl, om.Name, "renamed to %s; copies between revisions match members by name", nm.Name)
	}
	if om.Kind() != nm.Kind() {
		c.add(Breaking, decl, om.Name, "kind changed from %s to %s", om.Kind(), nm.Kind())
		return
	}
	if om.Offset != nm.Offset || om.Bytes != nm.Bytes {
		c.add(Breaking, decl, om.Name, "moved from %d+%d to %d+%d", om.Offset, om.Bytes, nm.Offset, nm.Bytes)
	}
	if om.IsList() && om.Type.Kind != nm.Type.Kind {
		c.add(Breaking, decl, om.Name, "element kind changed from %s to %s", om.Type.Kind, nm.Type.Kind)
	}
	if om.Type.Kind == schema.KindScalar && om.Type.Scalar != nm.Type.Scalar {
		c.add(Breaking, decl, om.Name, "type changed from %s to %s", om.Type.Scalar, nm.Type.Scalar)
	}
	if table {
		if om.Inplace() != nm.Inplace() || om.Direct() != nm.Direct() || om.Optional() != nm.Optional() {
			c.add(Breaking, decl, om.Name, "modifiers changed from %q to %q", modifiers(om), modifiers(nm))
		}
		if om.HasOffset != nm.HasOffset || om.HasBit != nm.HasBit || om.Bit != nm.Bit {
			c.add(Breaking, decl, om.Name, "presence or value bit moved")
		}
	}
	if om.Bytes == nm.Bytes && string(om.Default) != string(nm.Default) && om.Type.Kind != schema.KindStruct {
		c.add(Warning, decl, om.Name, "default changed")
	}
	if od, nd := om.Type.Decl(), nm.Type.Decl(); od != nil && nd != nil && od.DeclName() != nd.DeclName() {
		c.add(Warning, decl, om.Name, "type changed from %s to %s", od.DeclName(), nd.DeclName())
	}
}

func (c *checker) structure(old, next *schema.Struct) {
	if old.Bytes != next.Bytes {
		c.add(Breaking, old.Name, "", "size changed from %d to %d bytes; structs cannot grow", old.Bytes, next.Bytes)
	}
	if len(old.Members) != len(next.Members) {
		c.add(Breaking, old.Name, "", "member count changed from %d to %d", len(old.Members), len(next.Members))
	}
	for i, om := range old.Members {
		if i >= len(next.Members) {
			break
		}
		c.member(old.Name, om, next.Members[i], false)
	}
}

func (c *checker) union(old, next *schema.Union) {
	if old.Inplace != next.Inplace {
		c.add(Breaking, old.Name, "", "placement changed")
	}
	for i, om := range old.Members {
		if i >= len(next.Members) {
			if !om.Removed {
				c.add(Breaking, old.Name, om.Name, "variant was deleted; mark it Removed to keep its tag")
			}
			continue
		}
		nm := next.Members[i]
		if !om.Removed && !nm.Removed && om.Name != nm.Name {
			c.add(Breaking, old.Name, om.Name, "tag %d now selects %s", om.Index, nm.Name)
			continue
		}
		c.member(old.Name, om, nm, false)
	}
}

func (c *checker) enum(old, next *schema.Enum) {
	if old.Removed || next.Removed {
		return
	}
	if len(next.Values) < len(old.Values) {
		c.add(Breaking, old.Name, "", "values removed: %d before, %d now", len(old.Values), len(next.Values))
	}
	for i, v := range old.Values {
		if i >= len(next.Values) {
			break
		}
		if nv := next.Values[i]; nv.Name != v.Name {
			c.add(Breaking, old.Name, v.Name, "value %d is now %s", i, nv.Name)
		}
	}
}

func modifiers(m *schema.Member) string {
	var parts []string
	for _, mod := range []schema.Modifier{schema.ModOptional, schema.ModList, schema.ModInplace, schema.ModDirect} {
		if m.Mods&mod != 0 {
			parts = append(parts, mod.String())
		}
	}
	return strings.Join(parts, " ")
}

// Err folds issues into a single error. Warnings count only when strict is
// set. It returns nil when nothing counts.
func Err(issues []Issue, strict bool) error {
	var lines []string
	for _, i := range issues {
		if i.Severity == Breaking || strict {
			lines = append(lines, i.String())
		}
	}
	if len(lines) == 0 {
		return nil
	}
	return errors.New(errors.PhaseCheck, errors.KindIncompatible).
		Value(len(lines)).
		Detail("%d incompatible changes:\n%s", len(lines), strings.Join(lines, "\n")).
		Build()
}

// Count returns the number of issues with the given severity.
func Count(issues []Issue, sev Severity) int {
	n := 0
	for _, i := range issues {
		if i.Severity == sev {
			n++
		}
	}
	return n
}
