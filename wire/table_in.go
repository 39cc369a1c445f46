package wire

import (
	"math"

	"github.com/wippyai/spack/schema"
)

// TableIn is a read view of one table. Members past the stored size read as
// their schema defaults, so messages written with an older, smaller layout
// decode under a newer one.
type TableIn struct {
	r    *Reader
	t    *schema.Table
	off  int
	size int
}

// Schema returns the table type the view decodes with.
func (t TableIn) Schema() *schema.Table { return t.t }

// Offset is the payload position in the buffer.
func (t TableIn) Offset() int { return t.off }

// Size is the stored payload size, which may differ from the schema's.
func (t TableIn) Size() int { return t.size }

func (t TableIn) end() int { return t.off + t.size }

func (t TableIn) path(m string) []string { return []string{t.t.Name, m} }

func (t TableIn) member(name string) *schema.Member {
	m := t.t.Member(name)
	if m == nil {
		precondition([]string{t.t.Name}, "no member %q", name)
	}
	return m
}

// field returns the member's fixed-block bytes, or its default when the
// stored table is too short to hold them.
func (t TableIn) field(m *schema.Member) []byte {
	if m.Offset+m.Bytes <= t.size {
		return t.r.data[t.off+m.Offset : t.off+m.Offset+m.Bytes]
	}
	return m.Default
}

func (t TableIn) bit(offset, bit int) bool {
	if offset < 0 || offset >= t.size {
		return false
	}
	return t.r.data[t.off+offset]>>uint(bit)&1 != 0
}

func (t TableIn) stored(m *schema.Member) bool {
	return m.Offset+m.Bytes <= t.size
}

// Has reports whether a member holds a value: its presence bit for optional
// integers, Bool and structs, not NaN for optional floats, an in-range byte
// for enums, a non-zero slot for text, bytes, lists and tables and a non-zero
// tag for unions. Required scalars, Bool and structs always have a value.
func (t TableIn) Has(name string) bool {
	return t.has(t.member(name))
}

func (t TableIn) has(m *schema.Member) bool {
	if m.IsList() {
		return t.stored(m) && getU48(t.field(m)) != 0
	}
	switch m.Type.Kind {
	case schema.KindScalar:
		if !m.Optional() {
			return true
		}
		if m.Type.Scalar.Float() {
			return !math.IsNaN(decodeFloat(t.field(m), m.Type.Scalar))
		}
		return t.bit(m.HasOffset, m.HasBit)
	case schema.KindBool, schema.KindStruct:
		if m.HasPresenceBit() {
			return t.bit(m.HasOffset, m.HasBit)
		}
		return true
	case schema.KindEnum:
		return int(t.field(m)[0]) < len(m.Type.Enum.Values)
	case schema.KindText, schema.KindBytes, schema.KindTable:
		return t.stored(m) && getU48(t.field(m)) != 0
	case schema.KindUnion:
		return t.stored(m) && le.Uint16(t.field(m)) != 0
	}
	return false
}

// scalar returns the member's bytes after checking kind and presence.
func (t TableIn) scalar(name string, ok func(schema.Scalar) bool, want string) (*schema.Member, []byte) {
	m := t.member(name)
	if m.Kind() != schema.KindScalar || !ok(m.Type.Scalar) {
		precondition(t.path(name), "member is %s, not %s", m.Type, want)
	}
	if !t.has(m) {
		precondition(t.path(name), "optional member is absent")
	}
	return m, t.field(m)
}

// Int reads a signed integer member. It panics if the member is absent.
func (t TableIn) Int(name string) int64 {
	m, b := t.scalar(name, schema.Scalar.Signed, "a signed integer")
	return decodeInt(b, m.Type.Scalar)
}

// Uint reads an unsigned integer member. It panics if the member is absent.
func (t TableIn) Uint(name string) uint64 {
	m, b := t.scalar(name, schema.Scalar.Unsigned, "an unsigned integer")
	return decodeUint(b, m.Type.Scalar)
}

// Float reads an F32 or F64 member. It panics if the member is absent.
func (t TableIn) Float(name string) float64 {
	m, b := t.scalar(name, schema.Scalar.Float, "a float")
	return decodeFloat(b, m.Type.Scalar)
}

func (t TableIn) Bool(name string) bool {
	m := t.member(name)
	if m.Kind() != schema.KindBool {
		precondition(t.path(name), "member is %s, not Bool", m.Type)
	}
	if !t.has(m) {
		precondition(t.path(name), "optional member is absent")
	}
	return t.bit(m.Offset, m.Bit)
}

// Enum returns the value index. It panics if the stored byte is not a value
// of the enum.
func (t TableIn) Enum(name string) uint8 {
	m := t.member(name)
	if m.Kind() != schema.KindEnum {
		precondition(t.path(name), "member is %s, not an enum", m.Type)
	}
	if !t.has(m) {
		precondition(t.path(name), "enum member is absent")
	}
	return t.field(m)[0]
}

// Struct returns a view of an embedded struct. It panics if an optional
// struct is absent.
func (t TableIn) Struct(name string) StructIn {
	m := t.member(name)
	if m.Kind() != schema.KindStruct {
		precondition(t.path(name), "member is %s, not a struct", m.Type)
	}
	if !t.has(m) {
		precondition(t.path(name), "optional member is absent")
	}
	return StructIn{s: m.Type.Struct, data: t.field(m), name: t.t.Name + "." + name}
}

// require checks the kind and presence of a pointer-kind member.
func (t TableIn) require(m *schema.Member, want schema.Kind) {
	if m.Kind() != want {
		precondition(t.path(m.Name), "member is %s, not %s", m.Kind(), want)
	}
	if !t.has(m) {
		precondition(t.path(m.Name), "member is absent")
	}
}

func (t TableIn) resolve(m *schema.Member, magic uint32) (Window, error) {
	slot := t.off + m.Offset
	if m.Inplace() {
		return t.r.resolveInplace(slot, t.end(), t.path(m.Name))
	}
	return t.r.resolvePointer(slot, magic, t.path(m.Name))
}

// Text returns a text member. It panics if the member is absent.
func (t TableIn) Text(name string) (string, error) {
	m := t.member(name)
	t.require(m, schema.KindText)
	w, err := t.resolve(m, TextMagic)
	if err != nil {
		return "", err
	}
	return t.r.text(w, t.path(name))
}

// Bytes returns a bytes member without copying. It panics if the member is
// absent.
func (t TableIn) Bytes(name string) ([]byte, error) {
	m := t.member(name)
	t.require(m, schema.KindBytes)
	w, err := t.resolve(m, BytesMagic)
	if err != nil {
		return nil, err
	}
	return t.r.blob(w, t.path(name))
}

// Table returns a nested table. It panics if the member is absent.
func (t TableIn) Table(name string) (TableIn, error) {
	m := t.member(name)
	t.require(m, schema.KindTable)
	w, err := t.resolve(m, m.Type.Table.Magic)
	if err != nil {
		return TableIn{}, err
	}
	return t.r.table(m.Type.Table, w, t.path(name))
}

// List returns a list member. It panics if the member is absent.
func (t TableIn) List(name string) (ListIn, error) {
	m := t.member(name)
	t.require(m, schema.KindList)
	magic := ListMagic
	if m.Direct() {
		magic = DirectListMagic
	}
	w, err := t.resolve(m, magic)
	if err != nil {
		return ListIn{}, err
	}
	return t.r.list(m, w, t.path(name))
}

// Union returns a union member. An unset union reads as IsNone.
func (t TableIn) Union(name string) UnionIn {
	m := t.member(name)
	if m.Kind() != schema.KindUnion {
		precondition(t.path(name), "member is %s, not a union", m.Type)
	}
	u := UnionIn{r: t.r, u: m.Type.Union, inplace: m.Inplace(), end: t.end(), name: t.t.Name + "." + name}
	if t.stored(m) {
		u.slot = t.off + m.Offset
		u.tag = le.Uint16(t.r.data[u.slot:])
	}
	return u
}
