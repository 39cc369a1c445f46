package parser

import (
	"strings"

	"github.com/wippyai/spack/schema"
	"github.com/wippyai/spack/spr/internal/token"
)

func (p *Parser) parseDocument() (*schema.File, error) {
	f := &schema.File{Name: p.file}

	for {
		doc := p.takeDoc()
		t := p.next()
		if t == nil || t.Type == token.EOF {
			return f, nil
		}

		switch t.Type {
		case token.Namespace:
			ns, err := p.parseNamespace()
			if err != nil {
				return nil, err
			}
			f.Namespace = ns

		case token.Import:
			name, err := p.expect(token.Ident)
			if err != nil {
				return nil, err
			}
			f.Imports = append(f.Imports, schema.Import{Name: name.Value, Pos: p.posOf(name)})

		case token.Enum:
			name, err := p.expect(token.Ident)
			if err != nil {
				return nil, err
			}
			e := &schema.Enum{Name: name.Value, Doc: doc, Pos: p.posOf(name)}
			if p.at(token.Removed) {
				p.next()
				e.Removed = true
			} else if e.Values, err = p.parseEnumValues(); err != nil {
				return nil, err
			}
			f.Decls = append(f.Decls, e)

		case token.Struct:
			name, err := p.expect(token.Ident)
			if err != nil {
				return nil, err
			}
			members, err := p.parseMembers()
			if err != nil {
				return nil, err
			}
			f.Decls = append(f.Decls, &schema.Struct{Name: name.Value, Doc: doc, Pos: p.posOf(name), Members: members})

		case token.Table:
			name, err := p.expect(token.Ident)
			if err != nil {
				return nil, err
			}
			tbl := &schema.Table{Name: name.Value, Doc: doc, Pos: p.posOf(name)}
			if m := p.peek(); m != nil && m.Type == token.Magic {
				p.next()
				tbl.MagicText, tbl.MagicPos = m.Value, p.posOf(m)
			}
			if tbl.Members, err = p.parseMembers(); err != nil {
				return nil, err
			}
			f.Decls = append(f.Decls, tbl)

		case token.Union:
			name, err := p.expect(token.Ident)
			if err != nil {
				return nil, err
			}
			members, err := p.parseMembers()
			if err != nil {
				return nil, err
			}
			f.Decls = append(f.Decls, &schema.Union{Name: name.Value, Doc: doc, Pos: p.posOf(name), Members: members})

		default:
			return nil, p.unexpected(t, "declaration")
		}

		p.skipSeparator()
	}
}

// parseNamespace reads "a::b::c;" after the namespace keyword.
func (p *Parser) parseNamespace() (string, error) {
	var parts []string
	for {
		id, err := p.expect(token.Ident)
		if err != nil {
			return "", err
		}
		parts = append(parts, id.Value)
		if !p.at(token.ColonColon) {
			break
		}
		p.next()
	}
	if _, err := p.expect(token.Semicolon); err != nil {
		return "", err
	}
	return strings.Join(parts, "::"), nil
}

func (p *Parser) parseEnumValues() ([]schema.EnumValue, error) {
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	var values []schema.EnumValue
	for {
		doc := p.takeDoc()
		t := p.next()
		if t == nil {
			return nil, p.errorf(nil, "unexpected end of input")
		}
		switch t.Type {
		case token.RBrace:
			return values, nil
		case token.Ident:
			values = append(values, schema.EnumValue{Name: t.Value, Doc: doc, Pos: p.posOf(t)})
			p.skipSeparator()
		default:
			return nil, p.unexpected(t, "enum value or '}'")
		}
	}
}
