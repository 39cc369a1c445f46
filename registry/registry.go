// Package registry builds the schema-wide namespace from parsed files.
//
// Resolve registers every top-level and nested declaration, names anonymous
// nested declarations after their enclosing aggregate and field, binds named
// type references and rejects recursive struct containment. Problems are
// accumulated as diagnostics; the returned Schema is usable by the layout
// engine only when no diagnostics were reported.
package registry

import (
	"go.uber.org/zap"

	"github.com/wippyai/spack/errors"
	"github.com/wippyai/spack/schema"
)

type resolver struct {
	s     *schema.Schema
	diags schema.Diagnostics
}

// Resolve links the files into one Schema.
func Resolve(files ...*schema.File) (*schema.Schema, schema.Diagnostics) {
	r := &resolver{s: schema.New()}

	for _, f := range files {
		r.s.Files = append(r.s.Files, f)
		for _, d := range f.Decls {
			r.register(d, f.Namespace)
		}
	}

	for _, d := range r.s.Decls {
		for _, m := range members(d) {
			r.bind(d, m)
		}
	}

	r.checkRecursion()

	Logger().Debug("resolved schema",
		zap.Int("files", len(files)),
		zap.Int("decls", len(r.s.Decls)),
		zap.Int("diagnostics", len(r.diags)))

	return r.s, r.diags
}

func (r *resolver) register(d schema.Decl, ns string) {
	name := d.DeclName()
	switch {
	case !schema.IsUpperCamel(name):
		r.diags.Add(d.DeclPos(), errors.PhaseResolve, errors.KindInvalidName,
			"type name %q must be UpperCamelCase without underscores", name)
	case schema.IsKeyword(name):
		r.diags.Add(d.DeclPos(), errors.PhaseResolve, errors.KindInvalidName,
			"type name %q is a reserved keyword", name)
	}

	setNamespace(d, ns)
	if prev, ok := r.s.Register(d); !ok {
		r.diags.Add(d.DeclPos(), errors.PhaseResolve, errors.KindDuplicate,
			"duplicate name %q", name).
			Note(prev.DeclPos(), "previously defined here")
	}

	for _, m := range members(d) {
		nested := m.Type.Nested()
		if nested == nil {
			continue
		}
		setName(nested, name+schema.UCamel(m.Name))
		r.register(nested, ns)
	}
}

// bind resolves a named type reference on member m of d.
func (r *resolver) bind(d schema.Decl, m *schema.Member) {
	t := &m.Type
	if t.Kind != schema.KindInvalid || t.Name == "" {
		return
	}
	target := r.s.Lookup(t.Name)
	if target == nil {
		r.diags.Add(t.Pos, errors.PhaseResolve, errors.KindUnknownType,
			"unknown type %q in %s.%s", t.Name, d.DeclName(), m.Name)
		return
	}
	switch v := target.(type) {
	case *schema.Enum:
		if v.Removed {
			r.diags.Add(t.Pos, errors.PhaseResolve, errors.KindUnknownType,
				"enum %q is removed", t.Name).
				Note(v.Pos, "removed here")
			return
		}
		t.Kind, t.Enum = schema.KindEnum, v
	case *schema.Struct:
		t.Kind, t.Struct = schema.KindStruct, v
	case *schema.Table:
		t.Kind, t.Table = schema.KindTable, v
	case *schema.Union:
		t.Kind, t.Union = schema.KindUnion, v
	}
}

// checkRecursion reports structs that contain themselves by value.
func (r *resolver) checkRecursion() {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[*schema.Struct]int)

	var visit func(s *schema.Struct)
	visit = func(s *schema.Struct) {
		state[s] = visiting
		for _, m := range s.Members {
			child := m.Type.Struct
			if m.Type.Kind != schema.KindStruct || child == nil {
				continue
			}
			switch state[child] {
			case visiting:
				r.diags.Add(m.Pos, errors.PhaseResolve, errors.KindInvalidData,
					"recursive struct %s in %s.%s", child.Name, s.Name, m.Name)
				// Cut the cycle so later passes terminate.
				m.Type.Kind, m.Type.Struct = schema.KindInvalid, nil
			case unvisited:
				visit(child)
			}
		}
		state[s] = done
	}

	for _, d := range r.s.Decls {
		if s, ok := d.(*schema.Struct); ok && state[s] == unvisited {
			visit(s)
		}
	}
}

func members(d schema.Decl) []*schema.Member {
	switch v := d.(type) {
	case *schema.Struct:
		return v.Members
	case *schema.Table:
		return v.Members
	case *schema.Union:
		return v.Members
	}
	return nil
}

func setName(d schema.Decl, name string) {
	switch v := d.(type) {
	case *schema.Enum:
		v.Name = name
	case *schema.Struct:
		v.Name = name
	case *schema.Table:
		v.Name = name
	case *schema.Union:
		v.Name = name
	}
}

func setNamespace(d schema.Decl, ns string) {
	switch v := d.(type) {
	case *schema.Enum:
		v.Namespace = ns
	case *schema.Struct:
		v.Namespace = ns
	case *schema.Table:
		v.Namespace = ns
	case *schema.Union:
		v.Namespace = ns
	}
}
