package layout

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/spack/errors"
	"github.com/wippyai/spack/schema"
)

const (
	pointerBytes = 6
	unionBytes   = 8
	maxUnionTags = 1<<16 - 1
)

type state uint8

const (
	pending state = iota
	active
	done
)

// Annotator assigns layout facts to a resolved schema. An Annotator is not
// safe for concurrent use; create one per schema.
type Annotator struct {
	s       *schema.Schema
	diags   schema.Diagnostics
	structs map[*schema.Struct]state
	tables  map[*schema.Table]state
	unions  map[*schema.Union]state
	enums   map[*schema.Enum]state
}

func New() *Annotator {
	return &Annotator{
		structs: make(map[*schema.Struct]state),
		tables:  make(map[*schema.Table]state),
		unions:  make(map[*schema.Union]state),
		enums:   make(map[*schema.Enum]state),
	}
}

// Annotate lays out s in place with a fresh Annotator and returns the number
// of schema errors found.
func Annotate(s *schema.Schema) (*schema.Schema, int) {
	return New().Annotate(s)
}

// Annotate lays out every declaration of s in place. It returns s and the
// number of diagnostics; a non-zero count means the schema is invalid.
//
// A default blob whose length disagrees with the computed size is an engine
// bug and panics with a KindInternal error.
func (a *Annotator) Annotate(s *schema.Schema) (*schema.Schema, int) {
	a.s = s

	for _, d := range s.Decls {
		switch v := d.(type) {
		case *schema.Enum:
			a.enum(v)
		case *schema.Struct:
			a.structure(v)
		case *schema.Table:
			if !v.Direct {
				a.table(v, false)
			}
		case *schema.Union:
			if !v.Direct {
				a.union(v, false)
			}
		}
	}

	// Nested declarations are reached through their enclosing member; this
	// only catches ones whose parent was skipped.
	for _, d := range s.Decls {
		switch v := d.(type) {
		case *schema.Table:
			a.table(v, false)
		case *schema.Union:
			a.union(v, false)
		}
	}

	Logger().Debug("annotated schema",
		zap.Int("decls", len(s.Decls)),
		zap.Int("errors", len(a.diags)))

	return s, len(a.diags)
}

// Diagnostics returns everything reported so far.
func (a *Annotator) Diagnostics() schema.Diagnostics {
	return a.diags
}

func (a *Annotator) enum(e *schema.Enum) {
	if a.enums[e] != pending {
		return
	}
	a.enums[e] = done
	if e.Removed {
		return
	}

	seen := make(map[string]schema.Pos)
	for _, v := range e.Values {
		if prev, ok := seen[v.Name]; ok {
			a.diags.Add(v.Pos, errors.PhaseAnnotate, errors.KindDuplicate,
				"duplicate enum value %q in %s", v.Name, e.Name).
				Note(prev, "previously defined here")
			continue
		}
		seen[v.Name] = v.Pos
	}
	if len(e.Values) > maxEnumValues {
		a.diags.Add(e.Pos, errors.PhaseAnnotate, errors.KindRange,
			"enum %s has %d values, at most %d are allowed", e.Name, len(e.Values), maxEnumValues)
	}
}

func (a *Annotator) structure(st *schema.Struct) {
	if a.structs[st] != pending {
		return
	}
	a.structs[st] = active

	sc := newScope()
	bytes := 0
	var def []byte

	for _, m := range st.Members {
		resetMember(m)
		a.declare(sc, m, false)
		a.forbidModifiers(m, "structs", schema.ModOptional, schema.ModInplace, schema.ModList, schema.ModDirect)
		a.checkValue(m, "structs")

		var size int
		var mdef []byte
		switch m.Type.Kind {
		case schema.KindScalar:
			size = m.Type.Scalar.Width()
			mdef = make([]byte, size)
		case schema.KindBool:
			size = 1
			mdef = []byte{0}
		case schema.KindEnum:
			a.enum(m.Type.Enum)
			size = 1
			mdef = []byte{enumAbsent}
		case schema.KindStruct:
			child := m.Type.Struct
			a.structure(child)
			size = child.Bytes
			mdef = child.Default
		case schema.KindInvalid:
			// unbound or cut by the registry
			continue
		default:
			a.diags.Add(m.Type.Pos, errors.PhaseAnnotate, errors.KindUnsupported,
				"%s members are not allowed in structs", m.Type.Kind)
			continue
		}

		m.Offset = bytes
		m.Bytes = size
		m.Default = mdef
		def = append(def, mdef...)
		bytes += size
	}

	st.Bytes = bytes
	st.Default = def
	a.structs[st] = done
	selfCheck(st.Name, st.Default, st.Bytes)

	Logger().Debug("annotated struct", zap.String("struct", st.Name), zap.Int("bytes", st.Bytes))
}

// presence is the rolling bit cursor shared by presence and Bool value bits.
type presence struct {
	offset int
	bit    int
}

// next hands out the next bit, opening a byte at the end of the block when
// needed.
func (p *presence) next(bytes *int, def *[]byte) (int, int) {
	if p.bit == 8 {
		p.offset = *bytes
		p.bit = 0
		*bytes++
		*def = append(*def, 0)
	}
	b := p.bit
	p.bit++
	return p.offset, b
}

// table lays out t. inplace marks tables that only exist as the payload of an
// inplace member, which need no magic.
func (a *Annotator) table(t *schema.Table, inplace bool) {
	if a.tables[t] != pending {
		return
	}
	a.tables[t] = active
	t.Inplace = inplace
	a.magic(t, inplace)

	sc := newScope()
	bits := presence{bit: 8}
	bytes := 0
	var def []byte
	var inplaceMember *schema.Member

	for _, m := range t.Members {
		resetMember(m)
		a.declare(sc, m, false)

		kind := m.Type.Kind
		list := m.IsList()

		if m.Direct() {
			switch {
			case !list:
				a.diags.Add(m.PosOf(schema.ModDirect), errors.PhaseAnnotate, errors.KindModifier,
					"direct is only allowed on lists")
			case kind != schema.KindTable:
				a.diags.Add(m.PosOf(schema.ModDirect), errors.PhaseAnnotate, errors.KindModifier,
					"direct is only allowed on lists of tables")
			}
		}
		if m.Inplace() {
			if !list && !kind.IsPointer() && kind != schema.KindUnion {
				a.diags.Add(m.PosOf(schema.ModInplace), errors.PhaseAnnotate, errors.KindModifier,
					"%s members may not be inplace", kind)
			} else if inplaceMember != nil {
				a.diags.Add(m.PosOf(schema.ModInplace), errors.PhaseAnnotate, errors.KindModifier,
					"only one inplace member is allowed per table").
					Note(inplaceMember.PosOf(schema.ModInplace), "previously defined here")
			} else {
				inplaceMember = m
			}
		}
		if m.Optional() && (list || kind.IsPointer() || kind == schema.KindUnion) {
			a.diags.Add(m.PosOf(schema.ModOptional), errors.PhaseAnnotate, errors.KindModifier,
				"optional is redundant on %s members", m.Kind())
		}
		valueOK := a.checkValue(m, "")

		a.nested(m, m.Inplace() && !list)

		if list {
			m.Offset, m.Bytes = bytes, pointerBytes
			m.Default = make([]byte, pointerBytes)
			def = append(def, m.Default...)
			bytes += pointerBytes
			continue
		}

		var mdef []byte
		switch kind {
		case schema.KindScalar:
			if m.Optional() && !m.Type.Scalar.Float() {
				m.HasOffset, m.HasBit = bits.next(&bytes, &def)
			}
			if valueOK {
				mdef = a.scalarDefault(m)
			} else {
				mdef = make([]byte, m.Type.Scalar.Width())
			}

		case schema.KindBool:
			if m.Optional() {
				m.HasOffset, m.HasBit = bits.next(&bytes, &def)
			}
			m.Offset, m.Bit = bits.next(&bytes, &def)
			m.Bytes = 0
			m.Default = nil
			continue

		case schema.KindEnum:
			if valueOK {
				mdef = a.enumDefault(m)
			} else {
				mdef = []byte{enumAbsent}
			}

		case schema.KindStruct:
			if m.Optional() {
				m.HasOffset, m.HasBit = bits.next(&bytes, &def)
			}
			mdef = append([]byte(nil), m.Type.Struct.Default...)

		case schema.KindText, schema.KindBytes, schema.KindTable:
			mdef = make([]byte, pointerBytes)

		case schema.KindUnion:
			mdef = make([]byte, unionBytes)

		default:
			continue
		}

		m.Offset = bytes
		m.Bytes = len(mdef)
		m.Default = mdef
		def = append(def, mdef...)
		bytes += len(mdef)
	}

	t.Bytes = bytes
	t.Default = def
	a.tables[t] = done
	selfCheck(t.Name, t.Default, t.Bytes)

	Logger().Debug("annotated table",
		zap.String("table", t.Name),
		zap.Int("bytes", t.Bytes),
		zap.Uint32("magic", t.Magic),
		zap.Bool("inplace", inplace))
}

func (a *Annotator) union(u *schema.Union, inplace bool) {
	if a.unions[u] != pending {
		return
	}
	a.unions[u] = active
	u.Inplace = inplace

	sc := newScope()
	if len(u.Members) > maxUnionTags {
		a.diags.Add(u.Pos, errors.PhaseAnnotate, errors.KindRange,
			"union %s has %d members, at most %d are allowed", u.Name, len(u.Members), maxUnionTags)
	}

	for i, m := range u.Members {
		resetMember(m)
		m.Index = i + 1
		a.declare(sc, m, true)
		a.forbidModifiers(m, "unions", schema.ModOptional, schema.ModInplace)
		a.checkValue(m, "unions")

		kind := m.Type.Kind
		if m.Direct() && (!m.IsList() || kind != schema.KindTable) {
			a.diags.Add(m.PosOf(schema.ModDirect), errors.PhaseAnnotate, errors.KindModifier,
				"direct is only allowed on lists of tables")
		}

		if !m.IsList() {
			switch kind {
			case schema.KindTable, schema.KindText, schema.KindBytes:
			case schema.KindBool:
				a.diags.Add(m.Type.Pos, errors.PhaseAnnotate, errors.KindUnsupported,
					"Bool members are not allowed in unions")
				continue
			case schema.KindInvalid:
				continue
			default:
				a.diags.Add(m.Type.Pos, errors.PhaseAnnotate, errors.KindUnsupported,
					"%s members are not allowed in unions", kind)
				continue
			}
		}

		a.nested(m, inplace && !m.IsList())
		m.Bytes = pointerBytes
	}

	a.unions[u] = done
	Logger().Debug("annotated union", zap.String("union", u.Name), zap.Int("members", len(u.Members)))
}

// nested annotates the declaration m refers to before m is sized. inplace is
// the placement context handed to nested tables and unions.
func (a *Annotator) nested(m *schema.Member, inplace bool) {
	switch m.Type.Kind {
	case schema.KindEnum:
		a.enum(m.Type.Enum)
	case schema.KindStruct:
		a.structure(m.Type.Struct)
	case schema.KindTable:
		if m.Type.Table.Direct {
			a.table(m.Type.Table, inplace)
		} else {
			a.table(m.Type.Table, false)
		}
	case schema.KindUnion:
		if m.Type.Union.Direct {
			a.union(m.Type.Union, inplace)
		} else {
			a.union(m.Type.Union, false)
		}
	}
}

func (a *Annotator) magic(t *schema.Table, inplace bool) {
	if t.MagicText == "" {
		if !inplace {
			a.diags.Add(t.Pos, errors.PhaseAnnotate, errors.KindInvalidValue,
				"table %s needs a magic", t.Name)
		}
		return
	}
	v, ok := parseMagic(t.MagicText)
	if !ok {
		a.diags.Add(t.MagicPos, errors.PhaseAnnotate, errors.KindRange,
			"magic %s out of range, must be in [1, 2^32)", t.MagicText)
		return
	}
	t.Magic = v
	if prev := a.s.ClaimMagic(t); prev != nil {
		a.diags.Add(t.MagicPos, errors.PhaseAnnotate, errors.KindDuplicate,
			"duplicate magic %s on %s", t.MagicText, t.Name).
			Note(prev.MagicPos, "previously used by "+prev.Name)
	}
}

func (a *Annotator) forbidModifiers(m *schema.Member, ctx string, mods ...schema.Modifier) {
	for _, mod := range mods {
		if m.Mods&mod != 0 {
			a.diags.Add(m.PosOf(mod), errors.PhaseAnnotate, errors.KindModifier,
				"%s is not allowed in %s", mod, ctx)
		}
	}
}

func resetMember(m *schema.Member) {
	m.Offset, m.Bytes = 0, 0
	m.HasOffset, m.HasBit, m.Bit = -1, -1, -1
	m.Default = nil
	m.Index = 0
}

func selfCheck(name string, def []byte, bytes int) {
	if len(def) != bytes {
		panic(errors.Internal(errors.PhaseAnnotate,
			fmt.Sprintf("default blob of %s is %d bytes, layout has %d", name, len(def), bytes)))
	}
}
