package wire

import (
	"strconv"

	"github.com/wippyai/spack/schema"
)

// ListIn is a read view of a list. The element type is the list member's
// type; item is the element width (the stored item size for direct lists).
type ListIn struct {
	r    *Reader
	m    *schema.Member
	off  int
	n    int
	item int
}

func (l ListIn) Len() int { return l.n }

// Offset is the position of the first element.
func (l ListIn) Offset() int { return l.off }

// Member returns the list member describing the element type.
func (l ListIn) Member() *schema.Member { return l.m }

func (l ListIn) path(i int) []string {
	return []string{l.m.Name, strconv.Itoa(i)}
}

func (l ListIn) check(i int, want schema.Kind) {
	if i < 0 || i >= l.n {
		precondition(l.path(i), "index out of range [0, %d)", l.n)
	}
	if l.m.Type.Kind != want {
		precondition(l.path(i), "element is %s, not %s", l.m.Type, want)
	}
}

func (l ListIn) at(i int) []byte {
	o := l.off + i*l.item
	return l.r.data[o : o+l.item]
}

// Has reports whether element i holds a value. Only enum, text, bytes,
// pointer table and union elements can be absent.
func (l ListIn) Has(i int) bool {
	if i < 0 || i >= l.n {
		precondition(l.path(i), "index out of range [0, %d)", l.n)
	}
	switch l.m.Type.Kind {
	case schema.KindEnum:
		return int(l.at(i)[0]) < len(l.m.Type.Enum.Values)
	case schema.KindText, schema.KindBytes:
		return getU48(l.at(i)) != 0
	case schema.KindTable:
		if l.m.Direct() {
			return true
		}
		return getU48(l.at(i)) != 0
	case schema.KindUnion:
		return le.Uint16(l.at(i)) != 0
	}
	return true
}

func (l ListIn) present(i int) {
	if !l.Has(i) {
		precondition(l.path(i), "element is absent")
	}
}

func (l ListIn) Int(i int) int64 {
	l.check(i, schema.KindScalar)
	if !l.m.Type.Scalar.Signed() {
		precondition(l.path(i), "element is %s, not a signed integer", l.m.Type)
	}
	return decodeInt(l.at(i), l.m.Type.Scalar)
}

func (l ListIn) Uint(i int) uint64 {
	l.check(i, schema.KindScalar)
	if !l.m.Type.Scalar.Unsigned() {
		precondition(l.path(i), "element is %s, not an unsigned integer", l.m.Type)
	}
	return decodeUint(l.at(i), l.m.Type.Scalar)
}

func (l ListIn) Float(i int) float64 {
	l.check(i, schema.KindScalar)
	if !l.m.Type.Scalar.Float() {
		precondition(l.path(i), "element is %s, not a float", l.m.Type)
	}
	return decodeFloat(l.at(i), l.m.Type.Scalar)
}

// Bool reads bit i of a packed bool list.
func (l ListIn) Bool(i int) bool {
	l.check(i, schema.KindBool)
	return l.r.data[l.off+i/8]>>uint(i%8)&1 != 0
}

func (l ListIn) Enum(i int) uint8 {
	l.check(i, schema.KindEnum)
	l.present(i)
	return l.at(i)[0]
}

func (l ListIn) Struct(i int) StructIn {
	l.check(i, schema.KindStruct)
	return StructIn{s: l.m.Type.Struct, data: l.at(i), name: l.m.Name + "[" + strconv.Itoa(i) + "]"}
}

func (l ListIn) Text(i int) (string, error) {
	l.check(i, schema.KindText)
	l.present(i)
	w, err := l.r.resolvePointer(l.off+i*l.item, TextMagic, l.path(i))
	if err != nil {
		return "", err
	}
	return l.r.text(w, l.path(i))
}

func (l ListIn) Bytes(i int) ([]byte, error) {
	l.check(i, schema.KindBytes)
	l.present(i)
	w, err := l.r.resolvePointer(l.off+i*l.item, BytesMagic, l.path(i))
	if err != nil {
		return nil, err
	}
	return l.r.blob(w, l.path(i))
}

// Table returns element i of a table list. Direct list items are views into
// the list payload; pointer list items are resolved and magic-checked.
func (l ListIn) Table(i int) (TableIn, error) {
	l.check(i, schema.KindTable)
	t := l.m.Type.Table
	if l.m.Direct() {
		return TableIn{r: l.r, t: t, off: l.off + i*l.item, size: l.item}, nil
	}
	l.present(i)
	w, err := l.r.resolvePointer(l.off+i*l.item, t.Magic, l.path(i))
	if err != nil {
		return TableIn{}, err
	}
	return l.r.table(t, w, l.path(i))
}

func (l ListIn) Union(i int) UnionIn {
	l.check(i, schema.KindUnion)
	slot := l.off + i*l.item
	return UnionIn{
		r:    l.r,
		u:    l.m.Type.Union,
		slot: slot,
		tag:  le.Uint16(l.r.data[slot:]),
		name: l.m.Name + "[" + strconv.Itoa(i) + "]",
	}
}
