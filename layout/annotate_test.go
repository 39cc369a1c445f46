package layout

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/wippyai/spack/errors"
	"github.com/wippyai/spack/registry"
	"github.com/wippyai/spack/schema"
	"github.com/wippyai/spack/spr"
)

func annotate(t *testing.T, src string) (*schema.Schema, schema.Diagnostics) {
	t.Helper()
	f, err := spr.Parse("test.spr", src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	s, diags := registry.Resolve(f)
	if len(diags) != 0 {
		t.Fatalf("Resolve failed: %v", diags)
	}
	a := New()
	_, n := a.Annotate(s)
	if n != len(a.Diagnostics()) {
		t.Fatalf("count %d does not match %d diagnostics", n, len(a.Diagnostics()))
	}
	return s, a.Diagnostics()
}

func mustAnnotate(t *testing.T, src string) *schema.Schema {
	t.Helper()
	s, diags := annotate(t, src)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics:\n%v", diags)
	}
	return s
}

func TestStructLayout(t *testing.T) {
	s := mustAnnotate(t, `
enum E { a, b }
struct Inner { v: U16 }
struct P { x: F32; y: I64; b: Bool; e: E; inner: Inner }
`)
	p := s.Struct("P")
	if p.Bytes != 4+8+1+1+2 {
		t.Errorf("size: got %d, want 16", p.Bytes)
	}

	tests := []struct {
		member string
		offset int
		size   int
	}{
		{"x", 0, 4},
		{"y", 4, 8},
		{"b", 12, 1},
		{"e", 13, 1},
		{"inner", 14, 2},
	}
	for _, tt := range tests {
		t.Run(tt.member, func(t *testing.T) {
			m := p.Member(tt.member)
			if m.Offset != tt.offset {
				t.Errorf("offset: got %d, want %d", m.Offset, tt.offset)
			}
			if m.Bytes != tt.size {
				t.Errorf("size: got %d, want %d", m.Bytes, tt.size)
			}
		})
	}

	want := make([]byte, 16)
	want[13] = 255
	if !bytes.Equal(p.Default, want) {
		t.Errorf("default: got % x, want % x", p.Default, want)
	}
}

func TestTableSlotSizes(t *testing.T) {
	s := mustAnnotate(t, `
struct S { a: U8; b: U8; c: U8 }
union U { t: Text }
table Child @2 { v: U8 }
table T @1 {
	i8: I8; i16: I16; i32: I32; i64: I64
	f32: F32; f64: F64
	text: Text; blob: Bytes; nums: list U32
	child: Child; u: U; s: S
}`)
	tbl := s.Table("T")
	tests := []struct {
		member string
		size   int
	}{
		{"i8", 1}, {"i16", 2}, {"i32", 4}, {"i64", 8},
		{"f32", 4}, {"f64", 8},
		{"text", 6}, {"blob", 6}, {"nums", 6},
		{"child", 6}, {"u", 8}, {"s", 3},
	}
	offset := 0
	for _, tt := range tests {
		t.Run(tt.member, func(t *testing.T) {
			m := tbl.Member(tt.member)
			if m.Bytes != tt.size {
				t.Errorf("size: got %d, want %d", m.Bytes, tt.size)
			}
			if m.Offset != offset {
				t.Errorf("offset: got %d, want %d", m.Offset, offset)
			}
			if m.HasPresenceBit() {
				t.Error("non-optional member has a presence bit")
			}
		})
		offset += tt.size
	}
	if tbl.Bytes != offset {
		t.Errorf("table size: got %d, want %d", tbl.Bytes, offset)
	}
	if tbl.Magic != 1 {
		t.Errorf("magic: got %d, want 1", tbl.Magic)
	}
}

// TestPresenceInterleaving pins the shared presence cursor: Bool value bits
// and has-bits come from one counter in declaration order, and a presence
// byte opens at the end of the block at the point the first bit is needed.
func TestPresenceInterleaving(t *testing.T) {
	s := mustAnnotate(t, `table T @1 {
	a: Bool
	b: optional U32
	c: U8 = 7
	d: optional Bool
	e: Bool
	f: I16 = -2
	g: optional F32
}`)
	tbl := s.Table("T")

	tests := []struct {
		member    string
		offset    int
		bit       int
		hasOffset int
		hasBit    int
	}{
		{"a", 0, 0, -1, -1},
		{"b", 1, -1, 0, 1},
		{"c", 5, -1, -1, -1},
		{"d", 0, 3, 0, 2},
		{"e", 0, 4, -1, -1},
		{"f", 6, -1, -1, -1},
		{"g", 8, -1, -1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.member, func(t *testing.T) {
			m := tbl.Member(tt.member)
			if m.Offset != tt.offset {
				t.Errorf("offset: got %d, want %d", m.Offset, tt.offset)
			}
			if m.Bit != tt.bit {
				t.Errorf("bit: got %d, want %d", m.Bit, tt.bit)
			}
			if m.HasOffset != tt.hasOffset || m.HasBit != tt.hasBit {
				t.Errorf("has: got (%d, %d), want (%d, %d)", m.HasOffset, m.HasBit, tt.hasOffset, tt.hasBit)
			}
		})
	}

	golden := []byte{
		0x00,                   // a, has b, has d, d, e
		0x00, 0x00, 0x00, 0x00, // b
		0x07,                   // c
		0xFE, 0xFF,             // f
		0x00, 0x00, 0xC0, 0x7F, // g, NaN
	}
	if !bytes.Equal(tbl.Default, golden) {
		t.Errorf("default: got % x, want % x", tbl.Default, golden)
	}
	if tbl.Bytes != len(golden) {
		t.Errorf("size: got %d, want %d", tbl.Bytes, len(golden))
	}
}

func TestPresenceByteOverflow(t *testing.T) {
	s := mustAnnotate(t, `table T @1 {
	b0: Bool; b1: Bool; b2: Bool; b3: Bool; b4: Bool; b5: Bool; b6: Bool; b7: Bool
	x: optional U8
	y: Bool
}`)
	tbl := s.Table("T")
	x := tbl.Member("x")
	if x.HasOffset != 1 || x.HasBit != 0 {
		t.Errorf("x has: got (%d, %d), want (1, 0)", x.HasOffset, x.HasBit)
	}
	if x.Offset != 2 {
		t.Errorf("x offset: got %d, want 2", x.Offset)
	}
	y := tbl.Member("y")
	if y.Offset != 1 || y.Bit != 1 {
		t.Errorf("y: got (%d, %d), want (1, 1)", y.Offset, y.Bit)
	}
	if tbl.Bytes != 3 {
		t.Errorf("size: got %d, want 3", tbl.Bytes)
	}
}

func TestPresenceBytesCeil(t *testing.T) {
	for n := 1; n <= 20; n++ {
		t.Run(fmt.Sprintf("bool_%d", n), func(t *testing.T) {
			var b strings.Builder
			b.WriteString("table T @1 {\n")
			for i := 0; i < n; i++ {
				fmt.Fprintf(&b, "\tf%d: Bool\n", i)
			}
			b.WriteString("}")
			tbl := mustAnnotate(t, b.String()).Table("T")
			want := (n + 7) / 8
			if tbl.Bytes != want || len(tbl.Default) != want {
				t.Errorf("size: got %d, want %d", tbl.Bytes, want)
			}
		})
		t.Run(fmt.Sprintf("optional_%d", n), func(t *testing.T) {
			var b strings.Builder
			b.WriteString("table T @1 {\n")
			for i := 0; i < n; i++ {
				fmt.Fprintf(&b, "\tf%d: optional U8\n", i)
			}
			b.WriteString("}")
			tbl := mustAnnotate(t, b.String()).Table("T")
			presence := make(map[int]bool)
			seen := make(map[[2]int]bool)
			for _, m := range tbl.Members {
				presence[m.HasOffset] = true
				key := [2]int{m.HasOffset, m.HasBit}
				if seen[key] {
					t.Errorf("bit %v assigned twice", key)
				}
				seen[key] = true
			}
			want := (n + 7) / 8
			if len(presence) != want {
				t.Errorf("presence bytes: got %d, want %d", len(presence), want)
			}
			if tbl.Bytes != n+want {
				t.Errorf("size: got %d, want %d", tbl.Bytes, n+want)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	s := mustAnnotate(t, `
enum Color { red, green, blue }
struct Pair { c: Color; v: U8 }
table T @1 {
	u16: U16 = 513
	i32: I32 = -1
	u64: U64 = 18446744073709551615
	f64: F64 = 1.5
	color: Color = blue
	none: Color
	pair: Pair
}`)
	tbl := s.Table("T")
	tests := []struct {
		member string
		want   []byte
	}{
		{"u16", []byte{0x01, 0x02}},
		{"i32", []byte{0xFF, 0xFF, 0xFF, 0xFF}},
		{"u64", bytes.Repeat([]byte{0xFF}, 8)},
		{"f64", []byte{0, 0, 0, 0, 0, 0, 0xF8, 0x3F}},
		{"color", []byte{2}},
		{"none", []byte{255}},
		{"pair", []byte{255, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.member, func(t *testing.T) {
			m := tbl.Member(tt.member)
			if !bytes.Equal(m.Default, tt.want) {
				t.Errorf("default: got % x, want % x", m.Default, tt.want)
			}
			if !bytes.Equal(tbl.Default[m.Offset:m.Offset+m.Bytes], tt.want) {
				t.Errorf("table blob: got % x, want % x", tbl.Default[m.Offset:m.Offset+m.Bytes], tt.want)
			}
		})
	}
}

func TestUnionTags(t *testing.T) {
	s := mustAnnotate(t, `
table A @1 { v: U8 }
union U {
	a: A
	old: Text Removed
	c: Bytes
	d: list U32
}`)
	u := s.Union("U")
	for i, want := range []string{"a", "old", "c", "d"} {
		m := u.Members[i]
		if m.Name != want || m.Index != i+1 {
			t.Errorf("member %d: got %s/%d, want %s/%d", i, m.Name, m.Index, want, i+1)
		}
	}
	if u.Variant(2) != nil {
		t.Error("removed member should not be a live variant")
	}
	if u.Variant(3).Name != "c" {
		t.Error("tags must follow declaration position")
	}
}

func TestInplaceContext(t *testing.T) {
	s := mustAnnotate(t, `
table Outer @10 {
	x: U8
	choice: inplace union {
		cake { v: U32 }
		name: Text
	}
	sub: table @11 { w: U8 }
}
table Holder @12 {
	body: inplace table { v: U16 }
}`)
	choice := s.Union("OuterChoice")
	if !choice.Inplace {
		t.Error("union in inplace member should be inplace")
	}
	cake := s.Table("OuterChoiceCake")
	if !cake.Inplace || cake.Magic != 0 {
		t.Errorf("cake: inplace %v, magic %d", cake.Inplace, cake.Magic)
	}
	if sub := s.Table("OuterSub"); sub.Inplace || sub.Magic != 0x11 {
		t.Errorf("sub: inplace %v, magic %d", sub.Inplace, sub.Magic)
	}
	if !s.Table("HolderBody").Inplace {
		t.Error("inplace table member should be inplace")
	}
}

func TestRemovedMemberKeepsSlot(t *testing.T) {
	s := mustAnnotate(t, "table T @1 { a: U8; Bad_Name: U32 Removed; c: U8 }")
	tbl := s.Table("T")
	if c := tbl.Member("c"); c.Offset != 5 {
		t.Errorf("c offset: got %d, want 5", c.Offset)
	}
	if tbl.Member("Bad_Name") != nil {
		t.Error("removed members are not looked up")
	}
}

func TestDiagnostics(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind errors.Kind
		want string
	}{
		{"missing_magic", "table T { a: U8 }", errors.KindInvalidValue, "table T needs a magic"},
		{"magic_zero", "table T @0 {}", errors.KindRange, "magic @0 out of range"},
		{"magic_too_big", "table T @100000000 {}", errors.KindRange, "out of range"},
		{"magic_duplicate", "table A @1 {}\ntable B @1 {}", errors.KindDuplicate, "duplicate magic @1 on B"},
		{"member_upper", "table T @1 { A: U8 }", errors.KindInvalidName, "lowerCamelCase"},
		{"member_underscore", "table T @1 { a_b: U8 }", errors.KindInvalidName, "lowerCamelCase"},
		{"member_keyword", "table T @1 { class: U8 }", errors.KindInvalidName, "reserved keyword"},
		{"member_duplicate", "table T @1 { a: U8; a: U16 }", errors.KindConflict, `name conflict "a"`},
		{"accessor_conflict", "table T @1 { a: optional U8; hasA: U8 }", errors.KindConflict, `name conflict "hasA"`},
		{"add_conflict", "table T @1 { items: list U8; addItems: U8 }", errors.KindConflict, `name conflict "addItems"`},
		{"optional_struct", "struct S { a: optional U8 }", errors.KindModifier, "optional is not allowed in structs"},
		{"list_struct", "struct S { a: list U8 }", errors.KindModifier, "list is not allowed in structs"},
		{"text_struct", "struct S { a: Text }", errors.KindUnsupported, "text members are not allowed in structs"},
		{"table_struct", "table C @2 {}\nstruct S { c: C }", errors.KindUnsupported, "table members are not allowed in structs"},
		{"inplace_twice", "table T @1 { a: inplace Text; b: inplace Bytes }", errors.KindModifier, "only one inplace member"},
		{"inplace_scalar", "table T @1 { a: inplace U8 }", errors.KindModifier, "scalar members may not be inplace"},
		{"optional_redundant", "table T @1 { a: optional Text }", errors.KindModifier, "optional is redundant on text members"},
		{"optional_list", "table T @1 { a: optional list U8 }", errors.KindModifier, "optional is redundant on list members"},
		{"direct_not_list", "table T @1 { a: direct Text }", errors.KindModifier, "direct is only allowed on lists"},
		{"direct_scalar_list", "table T @1 { a: direct list U8 }", errors.KindModifier, "lists of tables"},
		{"bool_union", "union U { a: Bool }", errors.KindUnsupported, "Bool members are not allowed in unions"},
		{"scalar_union", "union U { a: U8 }", errors.KindUnsupported, "scalar members are not allowed in unions"},
		{"optional_union", "union U { a: optional Text }", errors.KindModifier, "optional is not allowed in unions"},
		{"inplace_union", "union U { a: inplace Text }", errors.KindModifier, "inplace is not allowed in unions"},
		{"u8_range", "table T @1 { a: U8 = 256 }", errors.KindRange, "default 256 out of range for U8"},
		{"u8_negative", "table T @1 { a: U8 = -1 }", errors.KindRange, "out of range"},
		{"i8_range", "table T @1 { a: I8 = -129 }", errors.KindRange, "out of range for I8"},
		{"f32_range", "table T @1 { a: F32 = 1e39 }", errors.KindRange, "out of range for F32"},
		{"not_integer", "table T @1 { a: U32 = 1.5 }", errors.KindInvalidValue, "not an integer"},
		{"bool_default", "table T @1 { a: Bool = true }", errors.KindInvalidValue, "booleans cannot have default values"},
		{"optional_default", "table T @1 { a: optional U8 = 1 }", errors.KindInvalidValue, "optional members"},
		{"list_default", "table T @1 { a: list U8 = 1 }", errors.KindInvalidValue, "lists"},
		{"struct_default", "struct S { a: U8 = 1 }", errors.KindInvalidValue, "not allowed in structs"},
		{"text_default", "table T @1 { a: Text = 1 }", errors.KindInvalidValue, "numeric defaults are only allowed for number types"},
		{"ident_scalar", "table T @1 { a: U8 = foo }", errors.KindInvalidValue, "identifier defaults are only allowed for enums"},
		{"enum_unknown", "enum E { a }\ntable T @1 { e: E = b }", errors.KindInvalidEnum, `"b" is not a value of E`},
		{"enum_number", "enum E { a }\ntable T @1 { e: E = 1 }", errors.KindInvalidValue, "must name a value of E"},
		{"enum_duplicate", "enum E { a, a }", errors.KindDuplicate, `duplicate enum value "a" in E`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, diags := annotate(t, tt.src)
			if diags.Count(tt.kind) == 0 {
				t.Fatalf("expected %s diagnostic, got:\n%v", tt.kind, diags)
			}
			if !strings.Contains(diags.Error(), tt.want) {
				t.Errorf("diagnostics %q do not contain %q", diags.Error(), tt.want)
			}
		})
	}
}

func TestDiagnosticsAccumulate(t *testing.T) {
	_, diags := annotate(t, `
table T {
	A: U8
	b: inplace U8
	c: U8 = 300
}`)
	if len(diags) != 4 {
		t.Fatalf("expected 4 diagnostics, got %d:\n%v", len(diags), diags)
	}
	if diags[0].Pos.Line != 2 {
		t.Errorf("first diagnostic line: got %d, want 2", diags[0].Pos.Line)
	}
}

func TestDiagnosticNotes(t *testing.T) {
	_, diags := annotate(t, "table T @1 {\n\ta: inplace Text\n\tb: inplace Bytes\n}")
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %v", diags)
	}
	d := diags[0]
	if d.Pos.Line != 3 || len(d.Notes) != 1 || d.Notes[0].Pos.Line != 2 {
		t.Errorf("got pos %v notes %+v", d.Pos, d.Notes)
	}
}

func TestEnumLimit(t *testing.T) {
	for _, tt := range []struct {
		n    int
		fail bool
	}{{254, false}, {255, true}} {
		t.Run(fmt.Sprint(tt.n), func(t *testing.T) {
			vals := make([]string, tt.n)
			for i := range vals {
				vals[i] = fmt.Sprintf("v%d", i)
			}
			_, diags := annotate(t, "enum E { "+strings.Join(vals, ", ")+" }")
			if got := diags.Count(errors.KindRange) > 0; got != tt.fail {
				t.Errorf("range error: got %v, want %v", got, tt.fail)
			}
		})
	}
}

func TestSelfCheckPanics(t *testing.T) {
	defer func() {
		r := recover()
		e, ok := r.(*errors.Error)
		if !ok {
			t.Fatalf("expected *errors.Error panic, got %v", r)
		}
		if e.Kind != errors.KindInternal || e.Phase != errors.PhaseAnnotate {
			t.Errorf("got %v", e)
		}
	}()
	selfCheck("X", []byte{1}, 2)
}

func TestAnnotateIdempotent(t *testing.T) {
	s := mustAnnotate(t, "table A @1 { a: optional U8; b: Bool }")
	before := append([]byte(nil), s.Table("A").Default...)
	if _, n := Annotate(s); n != 0 {
		t.Fatalf("second run reported %d errors", n)
	}
	if !bytes.Equal(before, s.Table("A").Default) {
		t.Error("layout changed on second run")
	}
}
