package main

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/spack/schema"
	"github.com/wippyai/spack/wire"
)

// node is one decoded value. Leaves carry value, aggregates carry kids.
type node struct {
	name  string
	value string
	kids  []*node
	list  bool
	// quoted leaves hold text that is shown as a string literal.
	quoted bool
}

func leaf(name, value string) *node { return &node{name: name, value: value} }

func text(name, value string) *node { return &node{name: name, value: value, quoted: true} }

func group(name string) *node { return &node{name: name, kids: []*node{}} }

// dumper walks a decoded message. Its trail turns pointer cycles into
// errors.
type dumper struct {
	trail wire.Trail
}

func (d *dumper) table(name string, in wire.TableIn) (*node, error) {
	if err := d.trail.Enter(in.Offset(), []string{in.Schema().Name}); err != nil {
		return nil, err
	}
	defer d.trail.Leave(in.Offset())

	n := group(name)
	for _, m := range in.Schema().Members {
		if m.Removed || !in.Has(m.Name) {
			continue
		}
		k, err := d.member(m, in)
		if err != nil {
			return nil, err
		}
		n.kids = append(n.kids, k)
	}
	return n, nil
}

func (d *dumper) member(m *schema.Member, in wire.TableIn) (*node, error) {
	if m.IsList() {
		l, err := in.List(m.Name)
		if err != nil {
			return nil, err
		}
		return d.list(m.Name, l)
	}
	switch m.Type.Kind {
	case schema.KindScalar:
		return leaf(m.Name, scalarText(m.Type.Scalar, in.Int, in.Uint, in.Float, m.Name)), nil
	case schema.KindBool:
		return leaf(m.Name, strconv.FormatBool(in.Bool(m.Name))), nil
	case schema.KindEnum:
		return leaf(m.Name, m.Type.Enum.Values[in.Enum(m.Name)].Name), nil
	case schema.KindStruct:
		return dumpStruct(m.Name, in.Struct(m.Name)), nil
	case schema.KindText:
		s, err := in.Text(m.Name)
		if err != nil {
			return nil, err
		}
		return text(m.Name, s), nil
	case schema.KindBytes:
		b, err := in.Bytes(m.Name)
		if err != nil {
			return nil, err
		}
		return leaf(m.Name, hex.EncodeToString(b)), nil
	case schema.KindTable:
		t, err := in.Table(m.Name)
		if err != nil {
			return nil, err
		}
		return d.table(m.Name, t)
	case schema.KindUnion:
		return d.union(m.Name, in.Union(m.Name))
	}
	return leaf(m.Name, "?"), nil
}

// scalarText formats a scalar with whichever accessor fits its type.
func scalarText(s schema.Scalar, i func(string) int64, u func(string) uint64, f func(string) float64, name string) string {
	switch {
	case s.Float():
		return strconv.FormatFloat(f(name), 'g', -1, 64)
	case s.Signed():
		return strconv.FormatInt(i(name), 10)
	default:
		return strconv.FormatUint(u(name), 10)
	}
}

func dumpStruct(name string, in wire.StructIn) *node {
	n := group(name)
	for _, m := range in.Schema().Members {
		switch m.Type.Kind {
		case schema.KindScalar:
			n.kids = append(n.kids, leaf(m.Name, scalarText(m.Type.Scalar, in.Int, in.Uint, in.Float, m.Name)))
		case schema.KindBool:
			n.kids = append(n.kids, leaf(m.Name, strconv.FormatBool(in.Bool(m.Name))))
		case schema.KindEnum:
			if in.Has(m.Name) {
				n.kids = append(n.kids, leaf(m.Name, m.Type.Enum.Values[in.Enum(m.Name)].Name))
			}
		case schema.KindStruct:
			n.kids = append(n.kids, dumpStruct(m.Name, in.Struct(m.Name)))
		}
	}
	return n
}

func (d *dumper) union(name string, u wire.UnionIn) (*node, error) {
	v := u.Member()
	if v == nil {
		if u.Tag() == 0 {
			return leaf(name, "none"), nil
		}
		return leaf(name, fmt.Sprintf("unknown tag %d", u.Tag())), nil
	}
	n := group(name)
	var k *node
	switch v.Kind() {
	case schema.KindText:
		s, err := u.Text(v.Name)
		if err != nil {
			return nil, err
		}
		k = text(v.Name, s)
	case schema.KindBytes:
		b, err := u.Bytes(v.Name)
		if err != nil {
			return nil, err
		}
		k = leaf(v.Name, hex.EncodeToString(b))
	case schema.KindTable:
		t, err := u.Table(v.Name)
		if err != nil {
			return nil, err
		}
		if k, err = d.table(v.Name, t); err != nil {
			return nil, err
		}
	case schema.KindList:
		l, err := u.List(v.Name)
		if err != nil {
			return nil, err
		}
		if k, err = d.list(v.Name, l); err != nil {
			return nil, err
		}
	default:
		k = leaf(v.Name, "?")
	}
	n.kids = append(n.kids, k)
	return n, nil
}

func (d *dumper) list(name string, l wire.ListIn) (*node, error) {
	m := l.Member()
	if !m.Direct() {
		if err := d.trail.Enter(l.Offset(), []string{name}); err != nil {
			return nil, err
		}
		defer d.trail.Leave(l.Offset())
	}

	n := &node{name: name, kids: []*node{}, list: true}
	for i := 0; i < l.Len(); i++ {
		item := strconv.Itoa(i)
		if !l.Has(i) {
			n.kids = append(n.kids, leaf(item, "null"))
			continue
		}
		switch m.Type.Kind {
		case schema.KindScalar:
			n.kids = append(n.kids, leaf(item, scalarText(m.Type.Scalar,
				func(string) int64 { return l.Int(i) },
				func(string) uint64 { return l.Uint(i) },
				func(string) float64 { return l.Float(i) }, item)))
		case schema.KindBool:
			n.kids = append(n.kids, leaf(item, strconv.FormatBool(l.Bool(i))))
		case schema.KindEnum:
			n.kids = append(n.kids, leaf(item, m.Type.Enum.Values[l.Enum(i)].Name))
		case schema.KindStruct:
			n.kids = append(n.kids, dumpStruct(item, l.Struct(i)))
		case schema.KindText:
			s, err := l.Text(i)
			if err != nil {
				return nil, err
			}
			n.kids = append(n.kids, text(item, s))
		case schema.KindBytes:
			b, err := l.Bytes(i)
			if err != nil {
				return nil, err
			}
			n.kids = append(n.kids, leaf(item, hex.EncodeToString(b)))
		case schema.KindTable:
			t, err := l.Table(i)
			if err != nil {
				return nil, err
			}
			k, err := d.table(item, t)
			if err != nil {
				return nil, err
			}
			n.kids = append(n.kids, k)
		case schema.KindUnion:
			k, err := d.union(item, l.Union(i))
			if err != nil {
				return nil, err
			}
			n.kids = append(n.kids, k)
		}
	}
	return n, nil
}

// yamlNode converts the tree into an order-preserving YAML document node.
func (n *node) yamlNode() *yaml.Node {
	if n.kids == nil {
		v := &yaml.Node{Kind: yaml.ScalarNode, Value: n.value}
		if n.quoted {
			v.Style = yaml.DoubleQuotedStyle
		}
		return v
	}
	if n.list {
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, k := range n.kids {
			seq.Content = append(seq.Content, k.yamlNode())
		}
		return seq
	}
	m := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range n.kids {
		m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: k.name}, k.yamlNode())
	}
	return m
}
