package wire

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/spack/errors"
	"github.com/wippyai/spack/schema"
)

// Copy constructs a t table and copies in into it.
func (w *Writer) Copy(t *schema.Table, in TableIn) (*TableOut, error) {
	out := w.Construct(t)
	if err := CopyIn(out, in); err != nil {
		return nil, err
	}
	return out, nil
}

// CopyIn re-serializes in into out member by member, matching members by
// name so the two tables may come from different schema revisions. Members
// only in the source are dropped, members only in the destination keep their
// defaults and absent values stay absent. Nested tables, lists and unions are
// copied recursively into freshly constructed objects; a source that points
// back at one of its own ancestors fails with KindInvalidData.
//
// When out's table has an inplace member, out must be the most recent
// allocation; that member is copied first so its payload directly follows out.
func CopyIn(out *TableOut, in TableIn) error {
	var c copier
	return c.table(out, in)
}

// copier carries the ancestors of the table or list being copied.
type copier struct {
	trail Trail
}

func (c *copier) table(out *TableOut, in TableIn) error {
	if err := c.trail.Enter(in.off, []string{in.t.Name}); err != nil {
		return err
	}
	defer c.trail.Leave(in.off)

	Logger().Debug("copy table",
		zap.String("from", in.t.Name),
		zap.String("to", out.t.Name),
		zap.Int("size", in.size),
		zap.Int("depth", c.trail.Depth()))

	members := make([]*schema.Member, 0, len(out.t.Members))
	for _, m := range out.t.Members {
		if m.Removed {
			continue
		}
		if m.Inplace() {
			members = append([]*schema.Member{m}, members...)
		} else {
			members = append(members, m)
		}
	}

	for _, m := range members {
		sm := in.t.Member(m.Name)
		if sm == nil {
			continue
		}
		if err := c.member(out, in, m, sm); err != nil {
			return err
		}
	}
	return nil
}

func incompatible(path []string, format string, args ...any) error {
	return errors.Incompatible(errors.PhaseCopy, path, fmt.Sprintf(format, args...))
}

func (c *copier) member(out *TableOut, in TableIn, m, sm *schema.Member) error {
	path := []string{out.t.Name, m.Name}
	if m.Kind() != sm.Kind() {
		return incompatible(path, "kind %s cannot be copied into %s", sm.Kind(), m.Kind())
	}
	if !in.has(sm) {
		return nil
	}

	switch m.Kind() {
	case schema.KindScalar:
		if m.Type.Scalar != sm.Type.Scalar {
			return incompatible(path, "%s cannot be copied into %s", sm.Type.Scalar, m.Type.Scalar)
		}
		switch s := m.Type.Scalar; {
		case s.Signed():
			out.SetInt(m.Name, in.Int(sm.Name))
		case s.Unsigned():
			out.SetUint(m.Name, in.Uint(sm.Name))
		default:
			out.SetFloat(m.Name, in.Float(sm.Name))
		}

	case schema.KindBool:
		out.SetBool(m.Name, in.Bool(sm.Name))

	case schema.KindEnum:
		if v := in.Enum(sm.Name); int(v) < len(m.Type.Enum.Values) {
			out.SetEnum(m.Name, v)
		}

	case schema.KindStruct:
		return copyStruct(out.Struct(m.Name), in.Struct(sm.Name))

	case schema.KindText:
		s, err := in.Text(sm.Name)
		if err != nil {
			return err
		}
		out.SetText(m.Name, s)

	case schema.KindBytes:
		b, err := in.Bytes(sm.Name)
		if err != nil {
			return err
		}
		out.SetBytes(m.Name, b)

	case schema.KindTable:
		child, err := in.Table(sm.Name)
		if err != nil {
			return err
		}
		return c.table(out.AddTable(m.Name), child)

	case schema.KindList:
		if m.Type.Kind != sm.Type.Kind {
			return incompatible(path, "list of %s cannot be copied into list of %s", sm.Type, m.Type)
		}
		l, err := in.List(sm.Name)
		if err != nil {
			return err
		}
		return c.list(out.AddList(m.Name, l.Len()), l)

	case schema.KindUnion:
		return c.union(out.Union(m.Name), in.Union(sm.Name))
	}
	return nil
}

func copyStruct(out *StructOut, in StructIn) error {
	for _, m := range out.s.Members {
		if m.Removed {
			continue
		}
		sm := in.s.Member(m.Name)
		if sm == nil {
			continue
		}
		path := []string{out.name, m.Name}
		if m.Type.Kind != sm.Type.Kind {
			return incompatible(path, "kind %s cannot be copied into %s", sm.Type.Kind, m.Type.Kind)
		}
		switch m.Type.Kind {
		case schema.KindScalar:
			if m.Type.Scalar != sm.Type.Scalar {
				return incompatible(path, "%s cannot be copied into %s", sm.Type.Scalar, m.Type.Scalar)
			}
			switch s := m.Type.Scalar; {
			case s.Signed():
				out.SetInt(m.Name, in.Int(sm.Name))
			case s.Unsigned():
				out.SetUint(m.Name, in.Uint(sm.Name))
			default:
				out.SetFloat(m.Name, in.Float(sm.Name))
			}
		case schema.KindBool:
			out.SetBool(m.Name, in.Bool(sm.Name))
		case schema.KindEnum:
			if in.Has(sm.Name) {
				if v := in.Enum(sm.Name); int(v) < len(m.Type.Enum.Values) {
					out.SetEnum(m.Name, v)
				}
			}
		case schema.KindStruct:
			if err := copyStruct(out.Struct(m.Name), in.Struct(sm.Name)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *copier) list(out *ListOut, in ListIn) error {
	// Items of a direct list share its offset; a cycle through one is
	// caught at the item tables.
	if !in.m.Direct() {
		if err := c.trail.Enter(in.off, []string{in.m.Name}); err != nil {
			return err
		}
		defer c.trail.Leave(in.off)
	}

	for i := 0; i < in.Len(); i++ {
		if !in.Has(i) {
			continue
		}
		switch out.m.Type.Kind {
		case schema.KindScalar:
			if out.m.Type.Scalar != in.m.Type.Scalar {
				return incompatible(out.path(i), "%s cannot be copied into %s", in.m.Type.Scalar, out.m.Type.Scalar)
			}
			switch s := out.m.Type.Scalar; {
			case s.Signed():
				out.SetInt(i, in.Int(i))
			case s.Unsigned():
				out.SetUint(i, in.Uint(i))
			default:
				out.SetFloat(i, in.Float(i))
			}
		case schema.KindBool:
			out.SetBool(i, in.Bool(i))
		case schema.KindEnum:
			if v := in.Enum(i); int(v) < len(out.m.Type.Enum.Values) {
				out.SetEnum(i, v)
			}
		case schema.KindStruct:
			if err := copyStruct(out.Struct(i), in.Struct(i)); err != nil {
				return err
			}
		case schema.KindText:
			s, err := in.Text(i)
			if err != nil {
				return err
			}
			out.SetText(i, s)
		case schema.KindBytes:
			b, err := in.Bytes(i)
			if err != nil {
				return err
			}
			out.SetBytes(i, b)
		case schema.KindTable:
			child, err := in.Table(i)
			if err != nil {
				return err
			}
			var dst *TableOut
			if out.m.Direct() {
				dst = out.Table(i)
			} else {
				dst = out.AddTable(i)
			}
			if err := c.table(dst, child); err != nil {
				return err
			}
		case schema.KindUnion:
			if err := c.union(out.Union(i), in.Union(i)); err != nil {
				return err
			}
		}
	}
	return nil
}

// union sets the destination variant with the source variant's name.
// Variants the destination does not have are dropped.
func (c *copier) union(out *UnionOut, in UnionIn) error {
	sm := in.Member()
	if sm == nil {
		return nil
	}
	m := out.u.Member(sm.Name)
	if m == nil {
		return nil
	}
	path := []string{out.name, m.Name}
	if m.Kind() != sm.Kind() || m.Type.Kind != sm.Type.Kind {
		return incompatible(path, "variant %s cannot be copied into %s", sm, m)
	}

	switch m.Kind() {
	case schema.KindText:
		s, err := in.Text(sm.Name)
		if err != nil {
			return err
		}
		out.SetText(m.Name, s)
	case schema.KindBytes:
		b, err := in.Bytes(sm.Name)
		if err != nil {
			return err
		}
		out.SetBytes(m.Name, b)
	case schema.KindTable:
		child, err := in.Table(sm.Name)
		if err != nil {
			return err
		}
		return c.table(out.AddTable(m.Name), child)
	case schema.KindList:
		l, err := in.List(sm.Name)
		if err != nil {
			return err
		}
		return c.list(out.AddList(m.Name, l.Len()), l)
	}
	return nil
}
