package schema

// Schema is the resolved, schema-wide namespace. After the layout engine has
// run it is read-only and safe for concurrent use.
type Schema struct {
	Files  []*File
	Decls  []Decl
	byName map[string]Decl
	magics map[uint32]*Table
}

func New() *Schema {
	return &Schema{
		byName: make(map[string]Decl),
		magics: make(map[uint32]*Table),
	}
}

// Register adds a declaration under its name. On a duplicate it returns the
// previous declaration and false.
func (s *Schema) Register(d Decl) (Decl, bool) {
	if prev, ok := s.byName[d.DeclName()]; ok {
		return prev, false
	}
	s.byName[d.DeclName()] = d
	s.Decls = append(s.Decls, d)
	return nil, true
}

// ClaimMagic records a table magic; it returns the table already using it, if any.
func (s *Schema) ClaimMagic(t *Table) *Table {
	if prev, ok := s.magics[t.Magic]; ok && prev != t {
		return prev
	}
	s.magics[t.Magic] = t
	return nil
}

func (s *Schema) Lookup(name string) Decl {
	return s.byName[name]
}

func (s *Schema) Table(name string) *Table {
	t, _ := s.byName[name].(*Table)
	return t
}

func (s *Schema) Struct(name string) *Struct {
	st, _ := s.byName[name].(*Struct)
	return st
}

func (s *Schema) Enum(name string) *Enum {
	e, _ := s.byName[name].(*Enum)
	return e
}

func (s *Schema) Union(name string) *Union {
	u, _ := s.byName[name].(*Union)
	return u
}

// TableByMagic finds the table stamped with the given magic.
func (s *Schema) TableByMagic(magic uint32) *Table {
	return s.magics[magic]
}

// Tables returns all tables in registration order.
func (s *Schema) Tables() []*Table {
	var out []*Table
	for _, d := range s.Decls {
		if t, ok := d.(*Table); ok {
			out = append(out, t)
		}
	}
	return out
}
