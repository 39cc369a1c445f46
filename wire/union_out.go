package wire

import (
	"github.com/wippyai/spack/schema"
)

// UnionOut writes a union slot. Setting a variant overwrites the tag; the
// payload of a previously set variant stays in the arena, unreferenced.
type UnionOut struct {
	w       *Writer
	u       *schema.Union
	name    string
	slot    int
	end     int
	owner   int
	inplace bool
}

func (u *UnionOut) Schema() *schema.Union { return u.u }

// Tag returns the tag currently stored.
func (u *UnionOut) Tag() uint16 { return le.Uint16(u.w.buf[u.slot:]) }

// Clear unsets the union.
func (u *UnionOut) Clear() {
	clear(u.w.buf[u.slot : u.slot+UnionSize])
}

func (u *UnionOut) variant(name string, want schema.Kind) *schema.Member {
	m := u.u.Member(name)
	if m == nil {
		misuse([]string{u.name}, "no variant %q", name)
	}
	if m.Kind() != want {
		misuse([]string{u.name, name}, "variant is %s, not %s", m.Kind(), want)
	}
	return m
}

func (u *UnionOut) setTag(m *schema.Member) {
	le.PutUint16(u.w.buf[u.slot:], uint16(m.Index))
}

func (u *UnionOut) SetText(name, s string) {
	m := u.variant(name, schema.KindText)
	if u.inplace {
		u.w.inplaceText(u.slot+2, u.end, s, []string{u.name, name})
	} else {
		ref := u.w.ConstructText(s)
		putU48(u.w.buf[u.slot+2:], uint64(ref))
	}
	u.setTag(m)
}

func (u *UnionOut) SetBytes(name string, b []byte) {
	m := u.variant(name, schema.KindBytes)
	if u.inplace {
		u.w.inplaceBytes(u.slot+2, u.end, b, []string{u.name, name})
	} else {
		ref := u.w.ConstructBytes(b)
		putU48(u.w.buf[u.slot+2:], uint64(ref))
	}
	u.setTag(m)
}

func (u *UnionOut) AddTable(name string) *TableOut {
	m := u.variant(name, schema.KindTable)
	var c *TableOut
	if u.inplace {
		c = u.w.inplaceTable(u.slot+2, u.end, m.Type.Table, []string{u.name, name})
	} else {
		c = u.w.Construct(m.Type.Table)
		putU48(u.w.buf[u.slot+2:], uint64(c.hdr))
	}
	u.setTag(m)
	return c
}

func (u *UnionOut) AddList(name string, n int) *ListOut {
	m := u.variant(name, schema.KindList)
	var l *ListOut
	if u.inplace {
		l = u.w.inplaceList(u.slot+2, u.end, m, n, []string{u.name, name})
	} else {
		l = u.w.ConstructList(m, n)
		putU48(u.w.buf[u.slot+2:], uint64(l.hdr))
	}
	u.setTag(m)
	return l
}

// Link sets a non-inplace union to a previously constructed object.
func (u *UnionOut) Link(name string, ref Ref) {
	m := u.u.Member(name)
	if m == nil {
		misuse([]string{u.name}, "no variant %q", name)
	}
	if u.inplace {
		misuse([]string{u.name, name}, "inplace unions cannot be linked")
	}
	magic, ok := memberMagic(m)
	if !ok {
		misuse([]string{u.name, name}, "%s variants cannot be linked", m.Kind())
	}
	if int(ref) == u.owner {
		misuse([]string{u.name, name}, "a table cannot link to itself")
	}
	u.w.link(u.slot+2, ref, magic, []string{u.name, name})
	u.setTag(m)
}
