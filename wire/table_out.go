package wire

import (
	"math"

	"github.com/wippyai/spack/schema"
)

// TableOut is a write handle for a table under construction. Inplace tables
// have no header and cannot be linked or used as a message root.
type TableOut struct {
	w   *Writer
	t   *schema.Table
	hdr int
	off int
}

func (t *TableOut) Schema() *schema.Table { return t.t }

// Ref returns the header position to store in a parent slot. It panics for
// inplace tables.
func (t *TableOut) Ref() Ref {
	if t.hdr < 0 {
		misuse([]string{t.t.Name}, "inplace table has no header")
	}
	return Ref(t.hdr)
}

// End is the position right after the fixed block, where an inplace payload
// must start.
func (t *TableOut) End() int { return t.off + t.t.Bytes }

func (t *TableOut) path(m string) []string { return []string{t.t.Name, m} }

func (t *TableOut) member(name string, want schema.Kind) *schema.Member {
	m := t.t.Member(name)
	if m == nil {
		misuse([]string{t.t.Name}, "no member %q", name)
	}
	if m.Kind() != want {
		misuse(t.path(name), "member is %s, not %s", m.Kind(), want)
	}
	return m
}

func (t *TableOut) field(m *schema.Member) []byte {
	return t.w.buf[t.off+m.Offset : t.off+m.Offset+m.Bytes]
}

func (t *TableOut) setBit(offset, bit int, v bool) {
	p := &t.w.buf[t.off+offset]
	if v {
		*p |= 1 << uint(bit)
	} else {
		*p &^= 1 << uint(bit)
	}
}

func (t *TableOut) present(m *schema.Member) {
	if m.HasPresenceBit() {
		t.setBit(m.HasOffset, m.HasBit, true)
	}
}

func (t *TableOut) SetInt(name string, v int64) {
	m := t.member(name, schema.KindScalar)
	if !m.Type.Scalar.Signed() {
		misuse(t.path(name), "member is %s, not a signed integer", m.Type)
	}
	checkInt(v, m.Type.Scalar, t.path(name))
	encodeUint(t.field(m), uint64(v))
	t.present(m)
}

func (t *TableOut) SetUint(name string, v uint64) {
	m := t.member(name, schema.KindScalar)
	if !m.Type.Scalar.Unsigned() {
		misuse(t.path(name), "member is %s, not an unsigned integer", m.Type)
	}
	checkUint(v, m.Type.Scalar, t.path(name))
	encodeUint(t.field(m), v)
	t.present(m)
}

// SetFloat stores v. Storing NaN into an optional float clears it.
func (t *TableOut) SetFloat(name string, v float64) {
	m := t.member(name, schema.KindScalar)
	if !m.Type.Scalar.Float() {
		misuse(t.path(name), "member is %s, not a float", m.Type)
	}
	encodeFloat(t.field(m), m.Type.Scalar, v)
}

func (t *TableOut) SetBool(name string, v bool) {
	m := t.member(name, schema.KindBool)
	t.present(m)
	t.setBit(m.Offset, m.Bit, v)
}

// SetEnum stores the value index v, which must be a value of the enum.
func (t *TableOut) SetEnum(name string, v uint8) {
	m := t.member(name, schema.KindEnum)
	if int(v) >= len(m.Type.Enum.Values) {
		misuse(t.path(name), "%d is not a value of %s", v, m.Type)
	}
	t.field(m)[0] = v
}

// Struct marks an optional struct present and returns a handle to it.
func (t *TableOut) Struct(name string) *StructOut {
	m := t.member(name, schema.KindStruct)
	t.present(m)
	return &StructOut{w: t.w, s: m.Type.Struct, off: t.off + m.Offset, name: t.t.Name + "." + name}
}

// Clear resets a member to its default. Optional members and pointer kinds
// become absent; arena space already used by a cleared object is not
// reclaimed.
func (t *TableOut) Clear(name string) {
	m := t.t.Member(name)
	if m == nil {
		misuse([]string{t.t.Name}, "no member %q", name)
	}
	switch {
	case m.Kind() == schema.KindScalar && m.Optional() && m.Type.Scalar.Float():
		encodeFloat(t.field(m), m.Type.Scalar, math.NaN())
	case m.Kind() == schema.KindBool:
		if m.HasPresenceBit() {
			t.setBit(m.HasOffset, m.HasBit, false)
		}
		t.setBit(m.Offset, m.Bit, false)
	case m.HasPresenceBit():
		t.setBit(m.HasOffset, m.HasBit, false)
		copy(t.field(m), m.Default)
	default:
		copy(t.field(m), m.Default)
	}
}

// SetText stores s. Non-inplace text is constructed at the frontier and
// linked; inplace text must directly follow this table.
func (t *TableOut) SetText(name, s string) {
	m := t.member(name, schema.KindText)
	if m.Inplace() {
		t.w.inplaceText(t.off+m.Offset, t.End(), s, t.path(name))
		return
	}
	ref := t.w.ConstructText(s)
	putU48(t.field(m), uint64(ref))
}

func (t *TableOut) SetBytes(name string, b []byte) {
	m := t.member(name, schema.KindBytes)
	if m.Inplace() {
		t.w.inplaceBytes(t.off+m.Offset, t.End(), b, t.path(name))
		return
	}
	ref := t.w.ConstructBytes(b)
	putU48(t.field(m), uint64(ref))
}

// AddTable constructs the nested table and links it.
func (t *TableOut) AddTable(name string) *TableOut {
	m := t.member(name, schema.KindTable)
	if m.Inplace() {
		return t.w.inplaceTable(t.off+m.Offset, t.End(), m.Type.Table, t.path(name))
	}
	c := t.w.Construct(m.Type.Table)
	putU48(t.field(m), uint64(c.hdr))
	return c
}

// AddList constructs an n element list and links it.
func (t *TableOut) AddList(name string, n int) *ListOut {
	m := t.member(name, schema.KindList)
	if m.Inplace() {
		return t.w.inplaceList(t.off+m.Offset, t.End(), m, n, t.path(name))
	}
	l := t.w.ConstructList(m, n)
	putU48(t.field(m), uint64(l.hdr))
	return l
}

// Link stores a previously constructed object in a pointer member. The
// object's header magic must match the member type.
func (t *TableOut) Link(name string, ref Ref) {
	m := t.t.Member(name)
	if m == nil {
		misuse([]string{t.t.Name}, "no member %q", name)
	}
	if m.Inplace() {
		misuse(t.path(name), "inplace members cannot be linked")
	}
	magic, ok := memberMagic(m)
	if !ok {
		misuse(t.path(name), "%s members cannot be linked", m.Kind())
	}
	if t.hdr >= 0 && int(ref) == t.hdr {
		misuse(t.path(name), "a table cannot link to itself")
	}
	t.w.link(t.off+m.Offset, ref, magic, t.path(name))
}

// Union returns a handle for a union member.
func (t *TableOut) Union(name string) *UnionOut {
	m := t.member(name, schema.KindUnion)
	return &UnionOut{
		w:       t.w,
		u:       m.Type.Union,
		slot:    t.off + m.Offset,
		end:     t.End(),
		owner:   t.hdr,
		inplace: m.Inplace(),
		name:    t.t.Name + "." + name,
	}
}

// memberMagic is the header magic a pointer to m's value carries.
func memberMagic(m *schema.Member) (uint32, bool) {
	if m.IsList() {
		if m.Direct() {
			return DirectListMagic, true
		}
		return ListMagic, true
	}
	switch m.Type.Kind {
	case schema.KindText:
		return TextMagic, true
	case schema.KindBytes:
		return BytesMagic, true
	case schema.KindTable:
		return m.Type.Table.Magic, true
	}
	return 0, false
}
