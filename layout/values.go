package layout

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/wippyai/spack/errors"
	"github.com/wippyai/spack/schema"
)

// enumAbsent is the enum byte meaning "no value".
const enumAbsent = 255

// maxEnumValues keeps every declared index below enumAbsent.
const maxEnumValues = 254

// scalarDefault encodes the default of a scalar member: its literal if it has
// one, NaN for optional floats, zero otherwise.
func (a *Annotator) scalarDefault(m *schema.Member) []byte {
	s := m.Type.Scalar
	out := make([]byte, s.Width())

	if m.Value == nil {
		if m.Optional() && s.Float() {
			putFloat(out, s, math.NaN())
		}
		return out
	}

	lit := m.Value
	if lit.Kind != schema.LitNumber {
		a.diags.Add(lit.Pos, errors.PhaseAnnotate, errors.KindInvalidValue,
			"%s default for %s must be a number", lit.Text, m.Name)
		return out
	}

	if s.Float() {
		v, err := strconv.ParseFloat(lit.Text, 64)
		if err != nil || (s == schema.F32 && math.Abs(v) > math.MaxFloat32) {
			a.diags.Add(lit.Pos, errors.PhaseAnnotate, errors.KindRange,
				"default %s out of range for %s", lit.Text, s)
			return out
		}
		putFloat(out, s, v)
		return out
	}

	if strings.ContainsAny(lit.Text, ".eE") {
		a.diags.Add(lit.Pos, errors.PhaseAnnotate, errors.KindInvalidValue,
			"default %s for %s is not an integer", lit.Text, s)
		return out
	}

	lo, hi, umax := s.IntRange()
	if s.Unsigned() {
		v, err := strconv.ParseUint(strings.TrimPrefix(lit.Text, "+"), 10, 64)
		if err != nil || v > umax {
			a.diags.Add(lit.Pos, errors.PhaseAnnotate, errors.KindRange,
				"default %s out of range for %s", lit.Text, s)
			return out
		}
		putUint(out, v)
		return out
	}

	v, err := strconv.ParseInt(lit.Text, 10, 64)
	if err != nil || v < lo || v > hi {
		a.diags.Add(lit.Pos, errors.PhaseAnnotate, errors.KindRange,
			"default %s out of range for %s", lit.Text, s)
		return out
	}
	putUint(out, uint64(v))
	return out
}

// enumDefault returns the default byte of an enum member.
func (a *Annotator) enumDefault(m *schema.Member) []byte {
	if m.Value == nil || m.Type.Enum == nil {
		return []byte{enumAbsent}
	}
	lit := m.Value
	if lit.Kind != schema.LitIdent {
		a.diags.Add(lit.Pos, errors.PhaseAnnotate, errors.KindInvalidValue,
			"%s default for %s must name a value of %s", lit.Text, m.Name, m.Type.Enum.Name)
		return []byte{enumAbsent}
	}
	idx, ok := m.Type.Enum.Index(lit.Text)
	if !ok {
		a.diags.Add(lit.Pos, errors.PhaseAnnotate, errors.KindInvalidEnum,
			"%q is not a value of %s", lit.Text, m.Type.Enum.Name).
			Note(m.Type.Enum.Pos, "enum declared here")
		return []byte{enumAbsent}
	}
	return []byte{byte(idx)}
}

// checkValue reports default values on members whose kind or modifiers
// cannot carry one. It returns false when the value must be ignored.
func (a *Annotator) checkValue(m *schema.Member, ctx string) bool {
	lit := m.Value
	if lit == nil {
		return true
	}
	var reason string
	switch {
	case ctx != "":
		reason = "default values are not allowed in " + ctx
	case m.Optional():
		reason = "default values are not allowed on optional members"
	case m.IsList():
		reason = "default values are not allowed on lists"
	case m.Type.Kind == schema.KindBool:
		reason = "booleans cannot have default values"
	case m.Type.Kind == schema.KindScalar && lit.Kind == schema.LitIdent:
		reason = "identifier defaults are only allowed for enums"
	case m.Type.Kind == schema.KindScalar:
		return true
	case m.Type.Kind == schema.KindEnum:
		return true
	case lit.Kind == schema.LitNumber:
		reason = "numeric defaults are only allowed for number types"
	default:
		reason = "default values are not allowed on " + m.Type.Kind.String() + " members"
	}
	a.diags.Add(lit.Pos, errors.PhaseAnnotate, errors.KindInvalidValue, "%s", reason)
	return false
}

// parseMagic converts "@HEX" to a magic in [1, 2^32).
func parseMagic(text string) (uint32, bool) {
	v, err := strconv.ParseUint(strings.TrimPrefix(text, "@"), 16, 64)
	if err != nil || v == 0 || v > math.MaxUint32 {
		return 0, false
	}
	return uint32(v), true
}

func putUint(b []byte, v uint64) {
	switch len(b) {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(b, v)
	}
}

func putFloat(b []byte, s schema.Scalar, v float64) {
	if s == schema.F32 {
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
		return
	}
	binary.LittleEndian.PutUint64(b, math.Float64bits(v))
}
