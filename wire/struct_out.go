package wire

import (
	"github.com/wippyai/spack/schema"
)

// StructOut writes into an embedded struct. Structs are fixed-size so every
// member is written in place.
type StructOut struct {
	w    *Writer
	s    *schema.Struct
	name string
	off  int
}

func (s *StructOut) Schema() *schema.Struct { return s.s }

func (s *StructOut) member(name string, want schema.Kind) []byte {
	m := s.s.Member(name)
	if m == nil {
		misuse([]string{s.name}, "no member %q", name)
	}
	if m.Type.Kind != want {
		misuse([]string{s.name, name}, "member is %s, not %s", m.Type, want)
	}
	return s.w.buf[s.off+m.Offset : s.off+m.Offset+m.Bytes]
}

func (s *StructOut) scalar(name string, ok func(schema.Scalar) bool, want string) (schema.Scalar, []byte) {
	b := s.member(name, schema.KindScalar)
	sc := s.s.Member(name).Type.Scalar
	if !ok(sc) {
		misuse([]string{s.name, name}, "member is %s, not %s", sc, want)
	}
	return sc, b
}

func (s *StructOut) SetInt(name string, v int64) {
	sc, b := s.scalar(name, schema.Scalar.Signed, "a signed integer")
	checkInt(v, sc, []string{s.name, name})
	encodeUint(b, uint64(v))
}

func (s *StructOut) SetUint(name string, v uint64) {
	sc, b := s.scalar(name, schema.Scalar.Unsigned, "an unsigned integer")
	checkUint(v, sc, []string{s.name, name})
	encodeUint(b, v)
}

func (s *StructOut) SetFloat(name string, v float64) {
	sc, b := s.scalar(name, schema.Scalar.Float, "a float")
	encodeFloat(b, sc, v)
}

// SetBool writes a whole byte; struct Bool members are not bit-packed.
func (s *StructOut) SetBool(name string, v bool) {
	b := s.member(name, schema.KindBool)
	if v {
		b[0] = 1
	} else {
		b[0] = 0
	}
}

func (s *StructOut) SetEnum(name string, v uint8) {
	b := s.member(name, schema.KindEnum)
	if e := s.s.Member(name).Type.Enum; int(v) >= len(e.Values) {
		misuse([]string{s.name, name}, "%d is not a value of %s", v, e.Name)
	}
	b[0] = v
}

func (s *StructOut) Struct(name string) *StructOut {
	s.member(name, schema.KindStruct)
	m := s.s.Member(name)
	return &StructOut{w: s.w, s: m.Type.Struct, off: s.off + m.Offset, name: s.name + "." + name}
}
