package wire

import (
	"strconv"

	"github.com/wippyai/spack/schema"
)

// ListOut writes the elements of a constructed list. Elements start at their
// defaults; pointer elements start absent.
type ListOut struct {
	w    *Writer
	m    *schema.Member
	hdr  int
	off  int
	n    int
	item int
}

func (l *ListOut) Len() int { return l.n }

// Ref returns the header position to store in a parent slot. It panics for
// inplace lists.
func (l *ListOut) Ref() Ref {
	if l.hdr < 0 {
		misuse([]string{l.m.Name}, "inplace list has no header")
	}
	return Ref(l.hdr)
}

func (l *ListOut) path(i int) []string {
	return []string{l.m.Name, strconv.Itoa(i)}
}

func (l *ListOut) at(i int, want schema.Kind) []byte {
	if i < 0 || i >= l.n {
		misuse(l.path(i), "index out of range [0, %d)", l.n)
	}
	if l.m.Type.Kind != want {
		misuse(l.path(i), "element is %s, not %s", l.m.Type, want)
	}
	o := l.off + i*l.item
	return l.w.buf[o : o+l.item]
}

func (l *ListOut) SetInt(i int, v int64) {
	b := l.at(i, schema.KindScalar)
	if !l.m.Type.Scalar.Signed() {
		misuse(l.path(i), "element is %s, not a signed integer", l.m.Type)
	}
	checkInt(v, l.m.Type.Scalar, l.path(i))
	encodeUint(b, uint64(v))
}

func (l *ListOut) SetUint(i int, v uint64) {
	b := l.at(i, schema.KindScalar)
	if !l.m.Type.Scalar.Unsigned() {
		misuse(l.path(i), "element is %s, not an unsigned integer", l.m.Type)
	}
	checkUint(v, l.m.Type.Scalar, l.path(i))
	encodeUint(b, v)
}

func (l *ListOut) SetFloat(i int, v float64) {
	b := l.at(i, schema.KindScalar)
	if !l.m.Type.Scalar.Float() {
		misuse(l.path(i), "element is %s, not a float", l.m.Type)
	}
	encodeFloat(b, l.m.Type.Scalar, v)
}

// SetBool sets bit i of the packed payload, low bit first.
func (l *ListOut) SetBool(i int, v bool) {
	l.at(i, schema.KindBool)
	p := &l.w.buf[l.off+i/8]
	if v {
		*p |= 1 << uint(i%8)
	} else {
		*p &^= 1 << uint(i%8)
	}
}

func (l *ListOut) SetEnum(i int, v uint8) {
	b := l.at(i, schema.KindEnum)
	if int(v) >= len(l.m.Type.Enum.Values) {
		misuse(l.path(i), "%d is not a value of %s", v, l.m.Type)
	}
	b[0] = v
}

func (l *ListOut) Struct(i int) *StructOut {
	l.at(i, schema.KindStruct)
	return &StructOut{
		w:    l.w,
		s:    l.m.Type.Struct,
		off:  l.off + i*l.item,
		name: l.m.Name + "[" + strconv.Itoa(i) + "]",
	}
}

func (l *ListOut) SetText(i int, s string) {
	l.at(i, schema.KindText)
	ref := l.w.ConstructText(s)
	putU48(l.w.buf[l.off+i*l.item:], uint64(ref))
}

func (l *ListOut) SetBytes(i int, b []byte) {
	l.at(i, schema.KindBytes)
	ref := l.w.ConstructBytes(b)
	putU48(l.w.buf[l.off+i*l.item:], uint64(ref))
}

// Table returns element i of a direct table list. The item is already
// constructed inside the list payload.
func (l *ListOut) Table(i int) *TableOut {
	l.at(i, schema.KindTable)
	if !l.m.Direct() {
		misuse(l.path(i), "elements of a pointer list are added with AddTable")
	}
	return &TableOut{w: l.w, t: l.m.Type.Table, hdr: -1, off: l.off + i*l.item}
}

// AddTable constructs a table and stores it as element i of a pointer list.
func (l *ListOut) AddTable(i int) *TableOut {
	l.at(i, schema.KindTable)
	if l.m.Direct() {
		misuse(l.path(i), "elements of a direct list are accessed with Table")
	}
	c := l.w.Construct(l.m.Type.Table)
	putU48(l.w.buf[l.off+i*l.item:], uint64(c.hdr))
	return c
}

// Link stores a previously constructed text, bytes or table as element i.
func (l *ListOut) Link(i int, ref Ref) {
	l.at(i, l.m.Type.Kind)
	var magic uint32
	switch {
	case l.m.Type.Kind == schema.KindText:
		magic = TextMagic
	case l.m.Type.Kind == schema.KindBytes:
		magic = BytesMagic
	case l.m.Type.Kind == schema.KindTable && !l.m.Direct():
		magic = l.m.Type.Table.Magic
	default:
		misuse(l.path(i), "%s elements cannot be linked", l.m.Type)
	}
	l.w.link(l.off+i*l.item, ref, magic, l.path(i))
}

// Union returns a handle for element i of a union list.
func (l *ListOut) Union(i int) *UnionOut {
	l.at(i, schema.KindUnion)
	return &UnionOut{
		w:    l.w,
		u:    l.m.Type.Union,
		slot:  l.off + i*l.item,
		owner: -1,
		name:  l.m.Name + "[" + strconv.Itoa(i) + "]",
	}
}
