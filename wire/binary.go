package wire

import (
	"encoding/binary"
	"math"

	"github.com/wippyai/spack/schema"
)

// Object header magics.
const (
	MessageMagic    uint32 = 0xB5C0C4B3
	ListMagic       uint32 = 0x3400BB46
	TextMagic       uint32 = 0xD812C8F5
	BytesMagic      uint32 = 0xDCDBBE10
	DirectListMagic uint32 = 0xE2C6CC05
)

const (
	// MessageHeaderSize is the u32 message magic plus the u48 root offset.
	MessageHeaderSize = 10
	// HeaderSize is the u32 magic plus u32 size or length of every object.
	HeaderSize = 8
	// DirectPrefixSize is the u32 table magic and u32 item size that open a
	// direct table list payload.
	DirectPrefixSize = 8
	PointerSize      = 6
	UnionSize        = 8

	maxU48 = 1<<48 - 1

	// enumAbsent is the byte written for an unset enum.
	enumAbsent = 255
)

var le = binary.LittleEndian

func getU48(b []byte) uint64 {
	_ = b[5]
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 |
		uint64(b[3])<<24 | uint64(b[4])<<32 | uint64(b[5])<<40
}

func putU48(b []byte, v uint64) {
	_ = b[5]
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
	b[4] = byte(v >> 32)
	b[5] = byte(v >> 40)
}

func decodeInt(b []byte, s schema.Scalar) int64 {
	switch s {
	case schema.I8:
		return int64(int8(b[0]))
	case schema.I16:
		return int64(int16(le.Uint16(b)))
	case schema.I32:
		return int64(int32(le.Uint32(b)))
	default:
		return int64(le.Uint64(b))
	}
}

func decodeUint(b []byte, s schema.Scalar) uint64 {
	switch s.Width() {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(le.Uint16(b))
	case 4:
		return uint64(le.Uint32(b))
	default:
		return le.Uint64(b)
	}
}

func decodeFloat(b []byte, s schema.Scalar) float64 {
	if s == schema.F32 {
		return float64(math.Float32frombits(le.Uint32(b)))
	}
	return math.Float64frombits(le.Uint64(b))
}

func encodeUint(b []byte, v uint64) {
	switch len(b) {
	case 1:
		b[0] = byte(v)
	case 2:
		le.PutUint16(b, uint16(v))
	case 4:
		le.PutUint32(b, uint32(v))
	case 8:
		le.PutUint64(b, v)
	}
}

func encodeFloat(b []byte, s schema.Scalar, v float64) {
	if s == schema.F32 {
		le.PutUint32(b, math.Float32bits(float32(v)))
		return
	}
	le.PutUint64(b, math.Float64bits(v))
}

// boolBytes is the payload size of a packed list of n bools.
func boolBytes(n int) int {
	return (n + 7) / 8
}

// listPayload is the payload size in bytes of an n element list of m's type,
// excluding the direct prefix.
func listPayload(m *schema.Member, n int) int {
	if m.Type.Kind == schema.KindBool {
		return boolBytes(n)
	}
	return n * m.ElemBytes()
}
