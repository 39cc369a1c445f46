package parser

import (
	"strings"
	"testing"

	"github.com/wippyai/spack/schema"
	"github.com/wippyai/spack/spr/internal/token"
)

func parse(t *testing.T, src string) *schema.File {
	t.Helper()
	f, err := New("test.spr", token.Tokenize(src)).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return f
}

func TestParseEmpty(t *testing.T) {
	f := parse(t, "")
	if len(f.Decls) != 0 {
		t.Errorf("expected 0 decls, got %d", len(f.Decls))
	}
	if f.Name != "test.spr" {
		t.Errorf("name: got %q", f.Name)
	}
}

func TestParseNamespaceImport(t *testing.T) {
	f := parse(t, "namespace a::b::c;\nimport base\nimport other;")
	if f.Namespace != "a::b::c" {
		t.Errorf("namespace: got %q", f.Namespace)
	}
	if len(f.Imports) != 2 || f.Imports[0].Name != "base" || f.Imports[1].Name != "other" {
		t.Fatalf("imports: got %+v", f.Imports)
	}
	if f.Imports[1].Pos.Line != 3 {
		t.Errorf("import line: got %d, want 3", f.Imports[1].Pos.Line)
	}
}

func TestParseDeclarations(t *testing.T) {
	f := parse(t, `
enum Color { red, green; blue }
enum Gone Removed
struct Point { x: F32, y: F32 }
table Shape @1A2B3C4D {
	name: Text;
	color: Color = green;
	center: Point;
	size: optional U16;
}
union Any { shape: Shape; label: Text }
`)
	if len(f.Decls) != 5 {
		t.Fatalf("expected 5 decls, got %d", len(f.Decls))
	}

	e := f.Decls[0].(*schema.Enum)
	if e.Name != "Color" || len(e.Values) != 3 || e.Values[2].Name != "blue" {
		t.Errorf("enum: got %+v", e)
	}
	if !f.Decls[1].(*schema.Enum).Removed {
		t.Error("enum Gone should be removed")
	}

	s := f.Decls[2].(*schema.Struct)
	if len(s.Members) != 2 || s.Members[1].Type.Scalar != schema.F32 {
		t.Errorf("struct members: got %v", s.Members)
	}

	tbl := f.Decls[3].(*schema.Table)
	if tbl.MagicText != "@1A2B3C4D" {
		t.Errorf("magic: got %q", tbl.MagicText)
	}
	if len(tbl.Members) != 4 {
		t.Fatalf("table members: got %d", len(tbl.Members))
	}
	if tbl.Members[0].Type.Kind != schema.KindText {
		t.Errorf("name kind: got %v", tbl.Members[0].Type.Kind)
	}
	color := tbl.Members[1]
	if color.Type.Name != "Color" || color.Value == nil || color.Value.Kind != schema.LitIdent || color.Value.Text != "green" {
		t.Errorf("color: got %+v", color)
	}
	size := tbl.Members[3]
	if !size.Optional() || size.Type.Scalar != schema.U16 {
		t.Errorf("size: got %v", size)
	}
	if p := size.PosOf(schema.ModOptional); p.Line != 9 {
		t.Errorf("optional pos: got %v", p)
	}

	u := f.Decls[4].(*schema.Union)
	if len(u.Members) != 2 || u.Members[0].Type.Name != "Shape" {
		t.Errorf("union: got %v", u.Members)
	}
}

func TestParseModifiers(t *testing.T) {
	f := parse(t, `table T @1 {
	a: list U8
	b: inplace Text
	c: direct list Item
	d: optional list inplace Bytes
	e: U32 Removed
	f: Bool = true
	g: F64 = -1.5e3
}`)
	tbl := f.Decls[0].(*schema.Table)
	tests := []struct {
		name    string
		mods    schema.Modifier
		removed bool
	}{
		{"a", schema.ModList, false},
		{"b", schema.ModInplace, false},
		{"c", schema.ModDirect | schema.ModList, false},
		{"d", schema.ModOptional | schema.ModList | schema.ModInplace, false},
		{"e", 0, true},
		{"f", 0, false},
		{"g", 0, false},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tbl.Members[i]
			if m.Name != tt.name {
				t.Fatalf("name: got %q, want %q", m.Name, tt.name)
			}
			if m.Mods != tt.mods {
				t.Errorf("mods: got %b, want %b", m.Mods, tt.mods)
			}
			if m.Removed != tt.removed {
				t.Errorf("removed: got %v, want %v", m.Removed, tt.removed)
			}
		})
	}
	if v := tbl.Members[5].Value; v == nil || v.Kind != schema.LitTrue {
		t.Errorf("bool default: got %+v", v)
	}
	if v := tbl.Members[6].Value; v == nil || v.Text != "-1.5e3" || v.Kind != schema.LitNumber {
		t.Errorf("float default: got %+v", v)
	}
}

func TestParseNested(t *testing.T) {
	f := parse(t, `table Outer @10 {
	inner: table @20 { v: U32 }
	kind: enum { a, b }
	at: struct { x: I8 }
	choice: inplace union {
		cake { v: U32 }
		text: Text
	}
	items { id: U64 }
}`)
	tbl := f.Decls[0].(*schema.Table)
	if len(tbl.Members) != 5 {
		t.Fatalf("members: got %d", len(tbl.Members))
	}

	inner := tbl.Members[0].Type
	if inner.Kind != schema.KindTable || inner.Table == nil || !inner.Table.Direct || inner.Table.MagicText != "@20" {
		t.Errorf("inner: got %+v", inner)
	}
	if kind := tbl.Members[1].Type; kind.Enum == nil || len(kind.Enum.Values) != 2 {
		t.Errorf("kind: got %+v", kind)
	}
	if at := tbl.Members[2].Type; at.Struct == nil || !at.Struct.Direct {
		t.Errorf("at: got %+v", at)
	}

	choice := tbl.Members[3]
	if !choice.Inplace() || choice.Type.Union == nil {
		t.Fatalf("choice: got %v", choice)
	}
	cake := choice.Type.Union.Members[0]
	if cake.Name != "cake" || cake.Type.Table == nil || cake.Type.Table.MagicText != "" {
		t.Errorf("cake: got %+v", cake)
	}
	if items := tbl.Members[4].Type; items.Table == nil || items.Table.Members[0].Name != "id" {
		t.Errorf("items: got %+v", items)
	}
	if tbl.Members[0].Type.Nested() == nil {
		t.Error("nested table should report Nested")
	}
}

func TestParseDocComments(t *testing.T) {
	f := parse(t, `
## A point.
## Second line.
struct P {
	/// x coordinate
	x: I32
	/**
	 * y coordinate
	 */
	y: I32
}
`)
	s := f.Decls[0].(*schema.Struct)
	if got := strings.Join(s.Doc, "|"); got != "A point.|Second line." {
		t.Errorf("struct doc: got %q", got)
	}
	if got := strings.Join(s.Members[0].Doc, "|"); got != "x coordinate" {
		t.Errorf("x doc: got %q", got)
	}
	if got := strings.Join(s.Members[1].Doc, "|"); got != "y coordinate" {
		t.Errorf("y doc: got %q", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bad_decl", "foo", `test.spr:1:1: expected declaration, got "foo"`},
		{"missing_name", "table {", "expected identifier"},
		{"missing_colon", "struct S { a U8 }", "expected ':'"},
		{"bad_type", "struct S { a: = }", "expected type"},
		{"bad_char", "struct S { a: U8 $ }", `unexpected character "$"`},
		{"duplicate_modifier", "table T @1 { a: list list U8 }", `duplicate modifier "list"`},
		{"unterminated", "struct S { a: U8", "end of input"},
		{"bad_value", "table T @1 { a: U8 = ; }", "expected value"},
		{"namespace_semicolon", "namespace a::b", "expected ';'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("test.spr", token.Tokenize(tt.input)).Parse()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
			if !strings.HasPrefix(err.Error(), "[parse] invalid_data") {
				t.Errorf("error %q is not a parse error", err)
			}
		})
	}
}
