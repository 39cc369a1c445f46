package layout

import (
	"github.com/wippyai/spack/errors"
	"github.com/wippyai/spack/schema"
)

// scope is the per-aggregate symbol table of member names and the accessor
// names derived from them.
type scope struct {
	owner map[string]*schema.Member
}

func newScope() *scope {
	return &scope{owner: make(map[string]*schema.Member)}
}

// accessors lists the names a member occupies in its aggregate.
func accessors(m *schema.Member, union bool) []string {
	u := schema.UCamel(m.Name)
	names := []string{m.Name}
	if union {
		names = append(names, "is"+u)
		if m.Kind() == schema.KindTable || m.Kind() == schema.KindList {
			names = append(names, "add"+u)
		}
		return names
	}
	if m.Optional() {
		names = append(names, "has"+u, "get"+u)
	} else if m.Kind().IsPointer() || m.Kind() == schema.KindUnion {
		names = append(names, "has"+u)
	}
	switch m.Kind() {
	case schema.KindTable, schema.KindList, schema.KindUnion:
		names = append(names, "add"+u)
	}
	return names
}

// declare validates m's name and records its accessors.
func (a *Annotator) declare(sc *scope, m *schema.Member, union bool) {
	if m.Removed {
		return
	}
	switch {
	case !schema.IsLowerCamel(m.Name):
		a.diags.Add(m.Pos, errors.PhaseAnnotate, errors.KindInvalidName,
			"member name %q must be lowerCamelCase without underscores", m.Name)
	case schema.IsKeyword(m.Name):
		a.diags.Add(m.Pos, errors.PhaseAnnotate, errors.KindInvalidName,
			"member name %q is a reserved keyword", m.Name)
	}

	for _, n := range accessors(m, union) {
		if prev, ok := sc.owner[n]; ok && prev != m {
			a.diags.Add(m.Pos, errors.PhaseAnnotate, errors.KindConflict,
				"name conflict %q", n).
				Note(prev.Pos, "conflicts with this")
			return
		}
		sc.owner[n] = m
	}
}
