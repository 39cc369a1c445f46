package wire

import (
	"github.com/wippyai/spack/errors"
	"github.com/wippyai/spack/schema"
)

// UnionIn is a read view of a union slot: a u16 tag followed by a 48-bit
// pointer, or by the payload size when the union is inplace.
type UnionIn struct {
	r       *Reader
	u       *schema.Union
	name    string
	slot    int
	end     int
	tag     uint16
	inplace bool
}

func (u UnionIn) Schema() *schema.Union { return u.u }

// Tag is the stored tag; 0 means unset.
func (u UnionIn) Tag() uint16 { return u.tag }

// Member returns the variant selected by the tag. Tags this schema does not
// know, including removed variants, return nil.
func (u UnionIn) Member() *schema.Member { return u.u.Variant(u.tag) }

// IsNone reports whether no known variant is set.
func (u UnionIn) IsNone() bool { return u.Member() == nil }

// Is reports whether the named variant is set.
func (u UnionIn) Is(name string) bool {
	m := u.Member()
	return m != nil && m.Name == name
}

func (u UnionIn) path(name string) []string { return []string{u.name, name} }

func (u UnionIn) variant(name string, want schema.Kind) *schema.Member {
	if u.u.Member(name) == nil {
		precondition([]string{u.name}, "no variant %q", name)
	}
	if !u.Is(name) {
		precondition(u.path(name), "variant is not set")
	}
	m := u.Member()
	if m.Kind() != want {
		precondition(u.path(name), "variant is %s, not %s", m.Kind(), want)
	}
	return m
}

// resolve locates the payload of the set variant. A pointer union with a tag
// must point somewhere; only inplace payloads may be empty.
func (u UnionIn) resolve(name string, magic uint32) (Window, error) {
	if u.inplace {
		return u.r.resolveInplace(u.slot+2, u.end, u.path(name))
	}
	w, err := u.r.resolvePointer(u.slot+2, magic, u.path(name))
	if err != nil {
		return Window{}, err
	}
	if !w.Present() {
		return Window{}, errors.InvalidData(errors.PhaseDecode, u.path(name), "variant tag set with a null pointer")
	}
	return w, nil
}

// Text returns the text variant. It panics unless name is the set variant.
func (u UnionIn) Text(name string) (string, error) {
	u.variant(name, schema.KindText)
	w, err := u.resolve(name, TextMagic)
	if err != nil {
		return "", err
	}
	return u.r.text(w, u.path(name))
}

func (u UnionIn) Bytes(name string) ([]byte, error) {
	u.variant(name, schema.KindBytes)
	w, err := u.resolve(name, BytesMagic)
	if err != nil {
		return nil, err
	}
	return u.r.blob(w, u.path(name))
}

func (u UnionIn) Table(name string) (TableIn, error) {
	m := u.variant(name, schema.KindTable)
	w, err := u.resolve(name, m.Type.Table.Magic)
	if err != nil {
		return TableIn{}, err
	}
	return u.r.table(m.Type.Table, w, u.path(name))
}

func (u UnionIn) List(name string) (ListIn, error) {
	m := u.variant(name, schema.KindList)
	magic := ListMagic
	if m.Direct() {
		magic = DirectListMagic
	}
	w, err := u.resolve(name, magic)
	if err != nil {
		return ListIn{}, err
	}
	return u.r.list(m, w, u.path(name))
}
