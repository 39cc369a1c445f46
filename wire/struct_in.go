package wire

import (
	"github.com/wippyai/spack/schema"
)

// StructIn is a read view of an embedded fixed-size struct.
type StructIn struct {
	s    *schema.Struct
	data []byte
	name string
}

func (s StructIn) Schema() *schema.Struct { return s.s }

func (s StructIn) member(name string, want schema.Kind) (*schema.Member, []byte) {
	m := s.s.Member(name)
	if m == nil {
		precondition([]string{s.name}, "no member %q", name)
	}
	if m.Type.Kind != want {
		precondition([]string{s.name, name}, "member is %s, not %s", m.Type, want)
	}
	return m, s.data[m.Offset : m.Offset+m.Bytes]
}

// Has is false only for enum members holding a byte outside the enum.
func (s StructIn) Has(name string) bool {
	m := s.s.Member(name)
	if m == nil {
		precondition([]string{s.name}, "no member %q", name)
	}
	if m.Type.Kind == schema.KindEnum {
		return int(s.data[m.Offset]) < len(m.Type.Enum.Values)
	}
	return true
}

func (s StructIn) Int(name string) int64 {
	m, b := s.member(name, schema.KindScalar)
	if !m.Type.Scalar.Signed() {
		precondition([]string{s.name, name}, "member is %s, not a signed integer", m.Type)
	}
	return decodeInt(b, m.Type.Scalar)
}

func (s StructIn) Uint(name string) uint64 {
	m, b := s.member(name, schema.KindScalar)
	if !m.Type.Scalar.Unsigned() {
		precondition([]string{s.name, name}, "member is %s, not an unsigned integer", m.Type)
	}
	return decodeUint(b, m.Type.Scalar)
}

func (s StructIn) Float(name string) float64 {
	m, b := s.member(name, schema.KindScalar)
	if !m.Type.Scalar.Float() {
		precondition([]string{s.name, name}, "member is %s, not a float", m.Type)
	}
	return decodeFloat(b, m.Type.Scalar)
}

func (s StructIn) Bool(name string) bool {
	_, b := s.member(name, schema.KindBool)
	return b[0] != 0
}

func (s StructIn) Enum(name string) uint8 {
	m, b := s.member(name, schema.KindEnum)
	if int(b[0]) >= len(m.Type.Enum.Values) {
		precondition([]string{s.name, name}, "enum member is absent")
	}
	return b[0]
}

func (s StructIn) Struct(name string) StructIn {
	m, b := s.member(name, schema.KindStruct)
	return StructIn{s: m.Type.Struct, data: b, name: s.name + "." + name}
}
