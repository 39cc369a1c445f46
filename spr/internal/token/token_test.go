package token

import (
	"testing"
)

// strip drops the trailing EOF token so cases stay short.
func strip(tokens []Token) []Token {
	if len(tokens) > 0 && tokens[len(tokens)-1].Type == EOF {
		return tokens[:len(tokens)-1]
	}
	return tokens
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			"empty",
			"",
			nil,
		},
		{
			"braces",
			"{}",
			[]Token{{"{", LBrace, 1, 1}, {"}", RBrace, 1, 2}},
		},
		{
			"table",
			"table Foo @DEADBEEF {}",
			[]Token{
				{"table", Table, 1, 1}, {"Foo", Ident, 1, 7}, {"@DEADBEEF", Magic, 1, 11},
				{"{", LBrace, 1, 21}, {"}", RBrace, 1, 22},
			},
		},
		{
			"member",
			"a: optional U32 = 7;",
			[]Token{
				{"a", Ident, 1, 1}, {":", Colon, 1, 2}, {"optional", Optional, 1, 4},
				{"U32", U32, 1, 13}, {"=", Equal, 1, 17}, {"7", Number, 1, 19}, {";", Semicolon, 1, 20},
			},
		},
		{
			"namespace",
			"namespace a::b;",
			[]Token{
				{"namespace", Namespace, 1, 1}, {"a", Ident, 1, 11}, {"::", ColonColon, 1, 12},
				{"b", Ident, 1, 14}, {";", Semicolon, 1, 15},
			},
		},
		{
			"newlines",
			"a\n  b\nc",
			[]Token{{"a", Ident, 1, 1}, {"b", Ident, 2, 3}, {"c", Ident, 3, 1}},
		},
		{
			"negative_number",
			"-42",
			[]Token{{"-42", Number, 1, 1}},
		},
		{
			"float",
			"3.25",
			[]Token{{"3.25", Number, 1, 1}},
		},
		{
			"float_exp",
			"1e-10",
			[]Token{{"1e-10", Number, 1, 1}},
		},
		{
			"line_comments",
			"# hash\n// slash\nx",
			[]Token{{"x", Ident, 3, 1}},
		},
		{
			"nested_block_comment",
			"/* a /* b */ c */ x",
			[]Token{{"x", Ident, 1, 19}},
		},
		{
			"block_comment_lines",
			"/*\n\n*/y",
			[]Token{{"y", Ident, 3, 3}},
		},
		{
			"doc_hash",
			"## doc\nx",
			[]Token{{"## doc", DocComment, 1, 1}, {"x", Ident, 2, 1}},
		},
		{
			"doc_merged",
			"/// one\n/// two\nx",
			[]Token{{"/// one\n/// two", DocComment, 1, 1}, {"x", Ident, 3, 1}},
		},
		{
			"doc_block",
			"/** doc */ x",
			[]Token{{"/** doc */", DocComment, 1, 1}, {"x", Ident, 1, 12}},
		},
		{
			"keywords",
			"Bool Text Bytes list inplace direct Removed",
			[]Token{
				{"Bool", Bool, 1, 1}, {"Text", Text, 1, 6}, {"Bytes", Bytes, 1, 11},
				{"list", List, 1, 17}, {"inplace", Inplace, 1, 22}, {"direct", Direct, 1, 30},
				{"Removed", Removed, 1, 37},
			},
		},
		{
			"bad",
			"a $",
			[]Token{{"a", Ident, 1, 1}, {"$", Bad, 1, 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strip(Tokenize(tt.input))
			if len(got) != len(tt.expected) {
				t.Fatalf("got %d tokens %v, want %d", len(got), got, len(tt.expected))
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("token %d: got %+v, want %+v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestTokenizeEOF(t *testing.T) {
	tokens := Tokenize("a\nb")
	last := tokens[len(tokens)-1]
	if last.Type != EOF {
		t.Fatalf("last token type = %v, want EOF", last.Type)
	}
	if last.Line != 2 {
		t.Errorf("EOF line = %d, want 2", last.Line)
	}
}

func TestTypeString(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{Ident, "identifier"},
		{LBrace, "'{'"},
		{Table, "'table'"},
		{U64, "'U64'"},
		{Type(999), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("%d: got %q, want %q", tt.typ, got, tt.want)
		}
	}
	if !I8.IsScalar() || !F64.IsScalar() || Bool.IsScalar() || Text.IsScalar() {
		t.Error("IsScalar mismatch")
	}
}
