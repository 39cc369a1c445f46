// Package magic generates table magics.
//
// A magic is the 32-bit tag stamped into every table header so that readers
// can reject pointers to the wrong type. Magics must be unique across a
// schema and never zero; random values make accidental collisions unlikely
// even across independently maintained schemas.
package magic

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/spack/errors"
)

// Generate returns n distinct random non-zero magics.
func Generate(n int) ([]uint32, error) {
	if n < 0 {
		return nil, errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("cannot generate %d magics", n))
	}
	out := make([]uint32, 0, n)
	seen := make(map[uint32]struct{}, n)
	var buf [4]byte
	for len(out) < n {
		if _, err := rand.Read(buf[:]); err != nil {
			return nil, errors.Wrap(errors.PhaseConfig, errors.KindInternal, err, "read random bytes")
		}
		v := binary.LittleEndian.Uint32(buf[:])
		if v == 0 {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}

// Format renders v the way schemas spell it.
func Format(v uint32) string {
	return fmt.Sprintf("@%08X", v)
}

// Parse reads a magic written as "@HEX" or "HEX".
func Parse(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "@"), 16, 32)
	if err != nil {
		return 0, errors.Wrap(errors.PhaseParse, errors.KindInvalidValue, err, "magic "+s)
	}
	if v == 0 {
		return 0, errors.New(errors.PhaseParse, errors.KindRange).Detail("magic %s must not be zero", s).Build()
	}
	return uint32(v), nil
}
