package schema

import "math"

// Kind is the closed set of field kinds a member can have after resolution.
// Readers, writers and tools switch over it exhaustively.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindScalar
	KindBool
	KindEnum
	KindStruct
	KindTable
	KindUnion
	KindList
	KindText
	KindBytes
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindScalar:  "scalar",
	KindBool:    "bool",
	KindEnum:    "enum",
	KindStruct:  "struct",
	KindTable:   "table",
	KindUnion:   "union",
	KindList:    "list",
	KindText:    "text",
	KindBytes:   "bytes",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsPointer reports whether values of this kind live behind a 48-bit slot
// instead of inline in the fixed block.
func (k Kind) IsPointer() bool {
	switch k {
	case KindTable, KindList, KindText, KindBytes:
		return true
	default:
		return false
	}
}

// Scalar is a fixed-width numeric type.
type Scalar uint8

const (
	ScalarNone Scalar = iota
	I8
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F32
	F64
)

var scalarNames = [...]string{
	ScalarNone: "none",
	I8:         "I8",
	I16:        "I16",
	I32:        "I32",
	I64:        "I64",
	U8:         "U8",
	U16:        "U16",
	U32:        "U32",
	U64:        "U64",
	F32:        "F32",
	F64:        "F64",
}

func (s Scalar) String() string {
	if int(s) < len(scalarNames) {
		return scalarNames[s]
	}
	return "unknown"
}

// Width returns the encoded size in bytes.
func (s Scalar) Width() int {
	switch s {
	case I8, U8:
		return 1
	case I16, U16:
		return 2
	case I32, U32, F32:
		return 4
	case I64, U64, F64:
		return 8
	default:
		return 0
	}
}

func (s Scalar) Signed() bool {
	return s >= I8 && s <= I64
}

func (s Scalar) Unsigned() bool {
	return s >= U8 && s <= U64
}

func (s Scalar) Float() bool {
	return s == F32 || s == F64
}

// IntRange returns the inclusive range of an integer scalar. Unsigned maxima
// are returned through umax since they do not fit an int64.
func (s Scalar) IntRange() (lo int64, hi int64, umax uint64) {
	switch s {
	case I8:
		return math.MinInt8, math.MaxInt8, math.MaxInt8
	case I16:
		return math.MinInt16, math.MaxInt16, math.MaxInt16
	case I32:
		return math.MinInt32, math.MaxInt32, math.MaxInt32
	case I64:
		return math.MinInt64, math.MaxInt64, math.MaxInt64
	case U8:
		return 0, math.MaxUint8, math.MaxUint8
	case U16:
		return 0, math.MaxUint16, math.MaxUint16
	case U32:
		return 0, math.MaxUint32, math.MaxUint32
	case U64:
		return 0, math.MaxInt64, math.MaxUint64
	default:
		return 0, 0, 0
	}
}

// ScalarByName maps the schema keyword (U32, F64, ...) to a Scalar.
func ScalarByName(name string) (Scalar, bool) {
	for i := I8; i <= F64; i++ {
		if scalarNames[i] == name {
			return i, true
		}
	}
	return ScalarNone, false
}
