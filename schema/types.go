package schema

import "fmt"

// Pos is a source position.
type Pos struct {
	File string
	Line int
	Col  int
}

func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

func (p Pos) IsValid() bool {
	return p.Line > 0
}

// File is the parsed form of one schema document.
type File struct {
	Name      string
	Namespace string
	Imports   []Import
	Decls     []Decl
}

type Import struct {
	Name string
	Pos  Pos
}

// Decl is implemented by *Enum, *Struct, *Table and *Union.
type Decl interface {
	DeclName() string
	DeclPos() Pos
	DeclKind() Kind
	decl()
}

type Enum struct {
	Name      string
	Namespace string
	Doc       []string
	Pos       Pos
	Values    []EnumValue
	Direct    bool
	Removed   bool
}

type EnumValue struct {
	Name string
	Doc  []string
	Pos  Pos
}

// Index returns the declaration index of the named value.
func (e *Enum) Index(name string) (int, bool) {
	for i, v := range e.Values {
		if v.Name == name {
			return i, true
		}
	}
	return 0, false
}

type Struct struct {
	Name      string
	Namespace string
	Doc       []string
	Pos       Pos
	Members   []*Member
	Direct    bool

	// Bytes and Default are filled in by the layout engine.
	Bytes   int
	Default []byte
}

type Table struct {
	Name      string
	Namespace string
	Doc       []string
	Pos       Pos
	Members   []*Member
	Direct    bool

	MagicText string
	MagicPos  Pos
	Magic     uint32

	// Inplace marks tables that only ever exist as inplace payloads.
	Inplace bool

	Bytes   int
	Default []byte
}

type Union struct {
	Name      string
	Namespace string
	Doc       []string
	Pos       Pos
	Members   []*Member
	Direct    bool
	Inplace   bool
}

func (e *Enum) DeclName() string   { return e.Name }
func (s *Struct) DeclName() string { return s.Name }
func (t *Table) DeclName() string  { return t.Name }
func (u *Union) DeclName() string  { return u.Name }

func (e *Enum) DeclPos() Pos   { return e.Pos }
func (s *Struct) DeclPos() Pos { return s.Pos }
func (t *Table) DeclPos() Pos  { return t.Pos }
func (u *Union) DeclPos() Pos  { return u.Pos }

func (e *Enum) DeclKind() Kind   { return KindEnum }
func (s *Struct) DeclKind() Kind { return KindStruct }
func (t *Table) DeclKind() Kind  { return KindTable }
func (u *Union) DeclKind() Kind  { return KindUnion }

func (*Enum) decl()   {}
func (*Struct) decl() {}
func (*Table) decl()  {}
func (*Union) decl()  {}

// Member looks up a live (non-removed) member by name.
func (s *Struct) Member(name string) *Member { return lookup(s.Members, name) }

// Member looks up a live (non-removed) member by name.
func (t *Table) Member(name string) *Member { return lookup(t.Members, name) }

// Member looks up a live (non-removed) member by name.
func (u *Union) Member(name string) *Member { return lookup(u.Members, name) }

// Variant returns the member encoded with the given tag, or nil for tag 0,
// out of range tags and removed members.
func (u *Union) Variant(tag uint16) *Member {
	if tag == 0 || int(tag) > len(u.Members) {
		return nil
	}
	m := u.Members[tag-1]
	if m.Removed {
		return nil
	}
	return m
}

func lookup(members []*Member, name string) *Member {
	for _, m := range members {
		if !m.Removed && m.Name == name {
			return m
		}
	}
	return nil
}

// Modifier is a member modifier keyword.
type Modifier uint8

const (
	ModOptional Modifier = 1 << iota
	ModList
	ModInplace
	ModDirect
)

func (m Modifier) String() string {
	switch m {
	case ModOptional:
		return "optional"
	case ModList:
		return "list"
	case ModInplace:
		return "inplace"
	case ModDirect:
		return "direct"
	}
	return "modifier"
}

// Type is the element type of a member. Named references carry Name until
// the registry binds them and sets Kind.
type Type struct {
	Kind   Kind
	Scalar Scalar
	Name   string
	Pos    Pos

	Enum   *Enum
	Struct *Struct
	Table  *Table
	Union  *Union
}

func (t Type) String() string {
	switch t.Kind {
	case KindScalar:
		return t.Scalar.String()
	case KindBool:
		return "Bool"
	case KindText:
		return "Text"
	case KindBytes:
		return "Bytes"
	case KindEnum:
		if t.Enum != nil {
			return t.Enum.Name
		}
	case KindStruct:
		if t.Struct != nil {
			return t.Struct.Name
		}
	case KindTable:
		if t.Table != nil {
			return t.Table.Name
		}
	case KindUnion:
		if t.Union != nil {
			return t.Union.Name
		}
	}
	if t.Name != "" {
		return t.Name
	}
	return t.Kind.String()
}

// Decl returns the declaration a named or nested type refers to.
func (t Type) Decl() Decl {
	switch {
	case t.Enum != nil:
		return t.Enum
	case t.Struct != nil:
		return t.Struct
	case t.Table != nil:
		return t.Table
	case t.Union != nil:
		return t.Union
	}
	return nil
}

// Nested returns the anonymous declaration written inline for this type, if any.
func (t Type) Nested() Decl {
	if d := t.Decl(); d != nil {
		switch v := d.(type) {
		case *Enum:
			if v.Direct {
				return v
			}
		case *Struct:
			if v.Direct {
				return v
			}
		case *Table:
			if v.Direct {
				return v
			}
		case *Union:
			if v.Direct {
				return v
			}
		}
	}
	return nil
}

type LiteralKind uint8

const (
	LitNumber LiteralKind = iota
	LitIdent
	LitTrue
	LitFalse
)

// Literal is a default value expression.
type Literal struct {
	Text string
	Pos  Pos
	Kind LiteralKind
}

// Member is the layout-bearing unit of structs, tables and unions.
type Member struct {
	Name    string
	Doc     []string
	Pos     Pos
	Type    Type
	Mods    Modifier
	ModPos  map[Modifier]Pos
	Value   *Literal
	Removed bool

	// Computed by the layout engine.
	Offset    int
	Bytes     int
	HasOffset int
	HasBit    int
	Bit       int
	Default   []byte
	Index     int
}

func (m *Member) Optional() bool { return m.Mods&ModOptional != 0 }
func (m *Member) IsList() bool   { return m.Mods&ModList != 0 }
func (m *Member) Inplace() bool  { return m.Mods&ModInplace != 0 }
func (m *Member) Direct() bool   { return m.Mods&ModDirect != 0 }

// Kind returns KindList for list members and the element kind otherwise.
func (m *Member) Kind() Kind {
	if m.IsList() {
		return KindList
	}
	return m.Type.Kind
}

// HasPresenceBit reports whether the member owns a has-bit.
func (m *Member) HasPresenceBit() bool {
	return m.HasBit >= 0
}

// PosOf returns the position of a modifier keyword, falling back to the member.
func (m *Member) PosOf(mod Modifier) Pos {
	if p, ok := m.ModPos[mod]; ok {
		return p
	}
	return m.Pos
}

// ElemBytes is the encoded width of one list element of this member's type.
// Bool lists pack bits and report 0.
func (m *Member) ElemBytes() int {
	switch m.Type.Kind {
	case KindScalar:
		return m.Type.Scalar.Width()
	case KindBool:
		return 0
	case KindEnum:
		return 1
	case KindStruct:
		return m.Type.Struct.Bytes
	case KindTable:
		if m.Direct() {
			return m.Type.Table.Bytes
		}
		return 6
	case KindText, KindBytes:
		return 6
	case KindUnion:
		return 8
	}
	return 0
}

func (m *Member) String() string {
	prefix := ""
	for _, mod := range []Modifier{ModOptional, ModList, ModInplace, ModDirect} {
		if m.Mods&mod != 0 {
			prefix += mod.String() + " "
		}
	}
	return m.Name + ": " + prefix + m.Type.String()
}
