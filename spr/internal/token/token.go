package token

import (
	"unicode"
)

type Type int

const (
	Bad Type = iota
	EOF
	Ident
	Number
	Magic
	DocComment

	Colon
	ColonColon
	Semicolon
	Comma
	Equal
	LBrace
	RBrace

	// keywords
	Bool
	Bytes
	Text
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
	List
	Optional
	Inplace
	Direct
	Enum
	Struct
	Table
	Union
	Namespace
	Import
	True
	False
	Removed
)

var typeNames = map[Type]string{
	Bad:        "bad token",
	EOF:        "end of input",
	Ident:      "identifier",
	Number:     "number",
	Magic:      "magic",
	DocComment: "doc comment",
	Colon:      "':'",
	ColonColon: "'::'",
	Semicolon:  "';'",
	Comma:      "','",
	Equal:      "'='",
	LBrace:     "'{'",
	RBrace:     "'}'",
}

var keywords = map[string]Type{
	"Bool":      Bool,
	"Bytes":     Bytes,
	"Text":      Text,
	"I8":        I8,
	"I16":       I16,
	"I32":       I32,
	"I64":       I64,
	"U8":        U8,
	"U16":       U16,
	"U32":       U32,
	"U64":       U64,
	"F32":       F32,
	"F64":       F64,
	"list":      List,
	"optional":  Optional,
	"inplace":   Inplace,
	"direct":    Direct,
	"enum":      Enum,
	"struct":    Struct,
	"table":     Table,
	"union":     Union,
	"namespace": Namespace,
	"import":    Import,
	"true":      True,
	"false":     False,
	"Removed":   Removed,
}

func init() {
	for k, t := range keywords {
		typeNames[t] = "'" + k + "'"
	}
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "unknown"
}

// IsScalar reports whether t names a fixed-width numeric type.
func (t Type) IsScalar() bool {
	return t >= I8 && t <= F64
}

type Token struct {
	Value string
	Type  Type
	Line  int
	Col   int
}

// Tokenize splits a schema document into tokens. The result always ends with
// an EOF token; unrecognised input yields Bad tokens for the parser to report.
func Tokenize(input string) []Token {
	var tokens []Token
	runes := []rune(input)
	line, lineStart := 1, 0

	emit := func(start, end int, typ Type) {
		tokens = append(tokens, Token{string(runes[start:end]), typ, line, start - lineStart + 1})
	}
	at := func(i int, s string) bool {
		if i+len(s) > len(runes) {
			return false
		}
		for j, c := range s {
			if runes[i+j] != c {
				return false
			}
		}
		return true
	}
	// newlines advances line tracking over runes[from:to].
	newlines := func(from, to int) {
		for j := from; j < to; j++ {
			if runes[j] == '\n' {
				line++
				lineStart = j + 1
			}
		}
	}

	for i := 0; i < len(runes); {
		r := runes[i]

		if r == '\n' {
			line++
			i++
			lineStart = i
			continue
		}
		if unicode.IsSpace(r) {
			i++
			continue
		}

		// Doc comment lines: ## or ///, consecutive comment lines are merged
		if at(i, "##") || at(i, "///") {
			start := i
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			for {
				j := i
				if j < len(runes) && runes[j] == '\n' {
					j++
				}
				for j < len(runes) && (runes[j] == ' ' || runes[j] == '\t') {
					j++
				}
				if j >= len(runes) || !(runes[j] == '#' || at(j, "//")) {
					break
				}
				i = j
				for i < len(runes) && runes[i] != '\n' {
					i++
				}
			}
			emit(start, i, DocComment)
			newlines(start, i)
			continue
		}

		// Doc block /** ... */
		if at(i, "/**") {
			start := i
			i += 2
			for i < len(runes) && !at(i, "*/") {
				i++
			}
			if i >= len(runes) {
				emit(start, len(runes), Bad)
				newlines(start, len(runes))
				i = len(runes)
				continue
			}
			i += 2
			emit(start, i, DocComment)
			newlines(start, i)
			continue
		}

		// Line comment
		if r == '#' || at(i, "//") {
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			continue
		}

		// Block comment, nested
		if at(i, "/*") {
			start := i
			depth := 1
			i += 2
			for i < len(runes) && depth > 0 {
				switch {
				case at(i, "/*"):
					depth++
					i += 2
				case at(i, "*/"):
					depth--
					i += 2
				default:
					i++
				}
			}
			newlines(start, i)
			continue
		}

		if at(i, "::") {
			emit(i, i+2, ColonColon)
			i += 2
			continue
		}

		switch r {
		case ':':
			emit(i, i+1, Colon)
			i++
			continue
		case ';':
			emit(i, i+1, Semicolon)
			i++
			continue
		case ',':
			emit(i, i+1, Comma)
			i++
			continue
		case '=':
			emit(i, i+1, Equal)
			i++
			continue
		case '{':
			emit(i, i+1, LBrace)
			i++
			continue
		case '}':
			emit(i, i+1, RBrace)
			i++
			continue
		}

		// Identifier or keyword
		if unicode.IsLetter(r) || r == '_' {
			start := i
			for i < len(runes) && (runes[i] == '_' || unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i])) {
				i++
			}
			typ := Ident
			if kw, ok := keywords[string(runes[start:i])]; ok {
				typ = kw
			}
			emit(start, i, typ)
			continue
		}

		// Magic @HEX
		if r == '@' {
			start := i
			i++
			for i < len(runes) && isHex(runes[i]) {
				i++
			}
			emit(start, i, Magic)
			continue
		}

		// Number: optional sign, digits, fraction, exponent
		if r == '-' || r == '+' || r == '.' || unicode.IsDigit(r) {
			start := i
			if r == '-' || r == '+' {
				i++
			}
			for i < len(runes) && unicode.IsDigit(runes[i]) {
				i++
			}
			if i < len(runes) && runes[i] == '.' {
				i++
				for i < len(runes) && unicode.IsDigit(runes[i]) {
					i++
				}
			}
			if i < len(runes) && (runes[i] == 'e' || runes[i] == 'E') {
				i++
				if i < len(runes) && (runes[i] == '+' || runes[i] == '-') {
					i++
				}
				for i < len(runes) && unicode.IsDigit(runes[i]) {
					i++
				}
			}
			emit(start, i, Number)
			continue
		}

		emit(i, i+1, Bad)
		i++
	}

	tokens = append(tokens, Token{"", EOF, line, len(runes) - lineStart + 1})
	return tokens
}

func isHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
