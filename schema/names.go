package schema

import (
	"unicode"
	"unicode/utf8"
)

// keywords are reserved across every target language the schema feeds.
var keywords = map[string]struct{}{}

func init() {
	for _, k := range []string{
		"False", "None", "Self", "True", "abstract", "alignas", "alignof", "and",
		"arguments", "as", "asm", "assert", "async", "auto", "await", "become",
		"bitand", "bitor", "bool", "boolean", "boost", "box", "break", "byte",
		"bytes", "case", "catch", "char", "class", "compl", "concept", "const",
		"constexpr", "continue", "crate", "debugger", "decltype", "def", "default",
		"del", "delete", "do", "double", "elif", "else", "enum", "eval", "except",
		"explicit", "export", "extends", "extern", "false", "final", "finally",
		"float", "fn", "for", "friend", "from", "function", "global", "goto", "if",
		"impl", "implements", "import", "in", "inline", "instanceof", "int",
		"interface", "is", "lambda", "let", "long", "loop", "macro", "match", "mod",
		"module", "move", "mut", "mutable", "namespace", "native", "new", "noexcept",
		"nonlocal", "not", "null", "nullptr", "offsetof", "operator", "or",
		"override", "package", "pass", "priv", "private", "proc", "protected", "pub",
		"public", "pure", "raise", "ref", "register", "requires", "return",
		"self", "spack", "short", "signed", "sizeof", "static", "std",
		"strictfp", "struct", "super", "switch", "synchronized", "template", "this",
		"throw", "throws", "trait", "transient", "true", "try", "type", "typedef",
		"typeid", "typename", "typeof", "union", "unsafe", "unsigned", "unsized",
		"use", "using", "var", "virtual", "void", "volatile", "where", "while",
		"with", "xor", "yield",
	} {
		keywords[k] = struct{}{}
	}
}

// IsKeyword reports whether name is reserved in some target language.
func IsKeyword(name string) bool {
	_, ok := keywords[name]
	return ok
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// IsUpperCamel reports whether name is a valid type name: an identifier
// starting with an upper case letter and containing no underscores.
func IsUpperCamel(name string) bool {
	if !isIdentifier(name) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r) && !containsUnderscore(name)
}

// IsLowerCamel reports whether name is a valid member name.
func IsLowerCamel(name string) bool {
	if !isIdentifier(name) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(name)
	return !unicode.IsUpper(r) && !containsUnderscore(name)
}

func containsUnderscore(name string) bool {
	for i := 0; i < len(name); i++ {
		if name[i] == '_' {
			return true
		}
	}
	return false
}

// UCamel upper-cases the first letter.
func UCamel(name string) string {
	if name == "" {
		return name
	}
	r, n := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[n:]
}
