package parser

import (
	"fmt"
	"strings"

	"github.com/wippyai/spack/errors"
	"github.com/wippyai/spack/schema"
	"github.com/wippyai/spack/spr/internal/token"
)

type Parser struct {
	file   string
	tokens []token.Token
	doc    []string
	pos    int
}

func New(file string, tokens []token.Token) *Parser {
	return &Parser{file: file, tokens: tokens}
}

func (p *Parser) Parse() (*schema.File, error) {
	return p.parseDocument()
}

// skipDocs moves pending doc comments into p.doc so they attach to the next
// declaration or member.
func (p *Parser) skipDocs() {
	for p.pos < len(p.tokens) && p.tokens[p.pos].Type == token.DocComment {
		p.doc = append(p.doc, normalizeDoc(p.tokens[p.pos].Value)...)
		p.pos++
	}
}

func (p *Parser) takeDoc() []string {
	p.skipDocs()
	d := trimBlank(p.doc)
	p.doc = nil
	return d
}

func (p *Parser) peek() *token.Token {
	p.skipDocs()
	if p.pos >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos]
}

func (p *Parser) next() *token.Token {
	p.skipDocs()
	if p.pos >= len(p.tokens) {
		return nil
	}
	t := &p.tokens[p.pos]
	p.pos++
	return t
}

func (p *Parser) at(typ token.Type) bool {
	t := p.peek()
	return t != nil && t.Type == typ
}

func (p *Parser) expect(typ token.Type) (*token.Token, error) {
	t := p.next()
	if t == nil {
		return nil, p.errorf(nil, "unexpected end of input")
	}
	if t.Type != typ {
		return nil, p.unexpected(t, typ.String())
	}
	return t, nil
}

// skipSeparator consumes an optional ',' or ';'.
func (p *Parser) skipSeparator() {
	if p.at(token.Comma) || p.at(token.Semicolon) {
		p.next()
	}
}

func (p *Parser) posOf(t *token.Token) schema.Pos {
	if t == nil {
		return schema.Pos{File: p.file}
	}
	return schema.Pos{File: p.file, Line: t.Line, Col: t.Col}
}

func (p *Parser) errorf(t *token.Token, format string, args ...any) error {
	return errors.New(errors.PhaseParse, errors.KindInvalidData).
		Detail("%s: %s", p.posOf(t), fmt.Sprintf(format, args...)).
		Build()
}

func (p *Parser) unexpected(t *token.Token, want string) error {
	if t.Type == token.Bad {
		return p.errorf(t, "unexpected character %q", t.Value)
	}
	if t.Type == token.EOF {
		return p.errorf(t, "expected %s, got end of input", want)
	}
	return p.errorf(t, "expected %s, got %q", want, t.Value)
}

func normalizeDoc(raw string) []string {
	var lines []string
	if strings.HasPrefix(raw, "/**") {
		body := strings.TrimSuffix(strings.TrimPrefix(raw, "/**"), "*/")
		for _, l := range strings.Split(body, "\n") {
			l = strings.TrimSpace(l)
			l = strings.TrimPrefix(l, "*")
			lines = append(lines, strings.TrimPrefix(l, " "))
		}
		return lines
	}
	for _, l := range strings.Split(raw, "\n") {
		l = strings.TrimSpace(l)
		switch {
		case strings.HasPrefix(l, "///"):
			l = l[3:]
		case strings.HasPrefix(l, "##"):
			l = l[2:]
		case strings.HasPrefix(l, "//"):
			l = l[2:]
		case strings.HasPrefix(l, "#"):
			l = l[1:]
		}
		lines = append(lines, strings.TrimRight(strings.TrimPrefix(l, " "), " \t"))
	}
	return lines
}

func trimBlank(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil
	}
	return lines
}
