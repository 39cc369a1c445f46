package wire

import (
	"github.com/wippyai/spack/errors"
)

// Trail records the objects on the current path of a recursive walk over a
// message, keyed by payload offset. A crafted message can point a table back
// at itself or an ancestor; walkers Enter every table and pointer list they
// descend into and get an error instead of recursing forever. Objects reached
// twice through different parents are not cycles and are walked twice.
//
// The zero Trail is ready to use.
type Trail struct {
	open map[int]struct{}
}

// Enter adds the object whose payload starts at off. It fails with
// KindInvalidData when that object is already on the path. Offset 0 is the
// message header and stands for an empty inplace payload, so it is ignored.
func (t *Trail) Enter(off int, path []string) error {
	if off == 0 {
		return nil
	}
	if _, ok := t.open[off]; ok {
		return errors.InvalidData(errors.PhaseDecode, path, "pointer cycle")
	}
	if t.open == nil {
		t.open = make(map[int]struct{})
	}
	t.open[off] = struct{}{}
	return nil
}

// Leave removes off once its subtree is done.
func (t *Trail) Leave(off int) {
	delete(t.open, off)
}

// Depth is the number of objects currently on the path.
func (t *Trail) Depth() int { return len(t.open) }
