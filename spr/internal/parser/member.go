package parser

import (
	"github.com/wippyai/spack/schema"
	"github.com/wippyai/spack/spr/internal/token"
)

var modifiers = map[token.Type]schema.Modifier{
	token.Optional: schema.ModOptional,
	token.List:     schema.ModList,
	token.Inplace:  schema.ModInplace,
	token.Direct:   schema.ModDirect,
}

var scalars = map[token.Type]schema.Scalar{
	token.I8:  schema.I8,
	token.I16: schema.I16,
	token.I32: schema.I32,
	token.I64: schema.I64,
	token.U8:  schema.U8,
	token.U16: schema.U16,
	token.U32: schema.U32,
	token.U64: schema.U64,
	token.F32: schema.F32,
	token.F64: schema.F64,
}

// parseMembers reads a brace-delimited member list of a struct, table or union.
func (p *Parser) parseMembers() ([]*schema.Member, error) {
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	var members []*schema.Member
	for {
		doc := p.takeDoc()
		t := p.next()
		if t == nil {
			return nil, p.errorf(nil, "unexpected end of input")
		}
		switch t.Type {
		case token.RBrace:
			return members, nil
		case token.Ident:
			m, err := p.parseMember(t)
			if err != nil {
				return nil, err
			}
			m.Doc = doc
			members = append(members, m)
			p.skipSeparator()
		default:
			return nil, p.unexpected(t, "member name or '}'")
		}
	}
}

func (p *Parser) parseMember(name *token.Token) (*schema.Member, error) {
	m := &schema.Member{Name: name.Value, Pos: p.posOf(name)}

	// "name { ... }" and "name @M { ... }" declare a direct table.
	if t := p.peek(); t != nil && (t.Type == token.LBrace || t.Type == token.Magic) {
		tbl, err := p.parseNestedTable(t)
		if err != nil {
			return nil, err
		}
		m.Type = schema.Type{Kind: schema.KindTable, Table: tbl, Pos: p.posOf(t)}
		return m, p.parseMemberTail(m)
	}

	if _, err := p.expect(token.Colon); err != nil {
		return nil, err
	}

	for {
		t := p.peek()
		if t == nil {
			break
		}
		mod, ok := modifiers[t.Type]
		if !ok {
			break
		}
		p.next()
		if m.Mods&mod != 0 {
			return nil, p.errorf(t, "duplicate modifier %q", t.Value)
		}
		m.Mods |= mod
		if m.ModPos == nil {
			m.ModPos = make(map[schema.Modifier]schema.Pos)
		}
		m.ModPos[mod] = p.posOf(t)
	}

	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	m.Type = typ
	return m, p.parseMemberTail(m)
}

// parseMemberTail reads the optional Removed marker and default value.
func (p *Parser) parseMemberTail(m *schema.Member) error {
	if p.at(token.Removed) {
		p.next()
		m.Removed = true
	}
	if !p.at(token.Equal) {
		return nil
	}
	p.next()
	t := p.next()
	if t == nil {
		return p.errorf(nil, "unexpected end of input")
	}
	lit := &schema.Literal{Text: t.Value, Pos: p.posOf(t)}
	switch t.Type {
	case token.Number:
		lit.Kind = schema.LitNumber
	case token.Ident:
		lit.Kind = schema.LitIdent
	case token.True:
		lit.Kind = schema.LitTrue
	case token.False:
		lit.Kind = schema.LitFalse
	default:
		return p.unexpected(t, "value")
	}
	m.Value = lit
	return nil
}

func (p *Parser) parseType() (schema.Type, error) {
	t := p.next()
	if t == nil {
		return schema.Type{}, p.errorf(nil, "unexpected end of input")
	}
	pos := p.posOf(t)

	if s, ok := scalars[t.Type]; ok {
		return schema.Type{Kind: schema.KindScalar, Scalar: s, Pos: pos}, nil
	}

	switch t.Type {
	case token.Bool:
		return schema.Type{Kind: schema.KindBool, Pos: pos}, nil
	case token.Text:
		return schema.Type{Kind: schema.KindText, Pos: pos}, nil
	case token.Bytes:
		return schema.Type{Kind: schema.KindBytes, Pos: pos}, nil
	case token.Ident:
		return schema.Type{Name: t.Value, Pos: pos}, nil

	case token.Table:
		tbl, err := p.parseNestedTable(p.peek())
		if err != nil {
			return schema.Type{}, err
		}
		tbl.Pos = pos
		return schema.Type{Kind: schema.KindTable, Table: tbl, Pos: pos}, nil

	case token.Union:
		members, err := p.parseMembers()
		if err != nil {
			return schema.Type{}, err
		}
		u := &schema.Union{Pos: pos, Members: members, Direct: true}
		return schema.Type{Kind: schema.KindUnion, Union: u, Pos: pos}, nil

	case token.Struct:
		members, err := p.parseMembers()
		if err != nil {
			return schema.Type{}, err
		}
		s := &schema.Struct{Pos: pos, Members: members, Direct: true}
		return schema.Type{Kind: schema.KindStruct, Struct: s, Pos: pos}, nil

	case token.Enum:
		values, err := p.parseEnumValues()
		if err != nil {
			return schema.Type{}, err
		}
		e := &schema.Enum{Pos: pos, Values: values, Direct: true}
		return schema.Type{Kind: schema.KindEnum, Enum: e, Pos: pos}, nil
	}

	return schema.Type{}, p.unexpected(t, "type")
}

// parseNestedTable reads "[@MAGIC] { members }"; at is the first token.
func (p *Parser) parseNestedTable(at *token.Token) (*schema.Table, error) {
	tbl := &schema.Table{Pos: p.posOf(at), Direct: true}
	if m := p.peek(); m != nil && m.Type == token.Magic {
		p.next()
		tbl.MagicText, tbl.MagicPos = m.Value, p.posOf(m)
	}
	members, err := p.parseMembers()
	if err != nil {
		return nil, err
	}
	tbl.Members = members
	return tbl, nil
}
