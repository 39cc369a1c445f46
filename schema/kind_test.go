package schema

import "testing"

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindInvalid, "invalid"},
		{KindScalar, "scalar"},
		{KindBool, "bool"},
		{KindEnum, "enum"},
		{KindStruct, "struct"},
		{KindTable, "table"},
		{KindUnion, "union"},
		{KindList, "list"},
		{KindText, "text"},
		{KindBytes, "bytes"},
		{Kind(200), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindIsPointer(t *testing.T) {
	pointers := map[Kind]bool{
		KindTable: true,
		KindList:  true,
		KindText:  true,
		KindBytes: true,
	}
	for k := KindInvalid; k <= KindBytes; k++ {
		if got := k.IsPointer(); got != pointers[k] {
			t.Errorf("%v.IsPointer() = %v, want %v", k, got, pointers[k])
		}
	}
}

func TestScalarWidth(t *testing.T) {
	tests := []struct {
		s     Scalar
		width int
	}{
		{I8, 1}, {U8, 1},
		{I16, 2}, {U16, 2},
		{I32, 4}, {U32, 4}, {F32, 4},
		{I64, 8}, {U64, 8}, {F64, 8},
		{ScalarNone, 0},
	}

	for _, tt := range tests {
		t.Run(tt.s.String(), func(t *testing.T) {
			if got := tt.s.Width(); got != tt.width {
				t.Errorf("width: got %d, want %d", got, tt.width)
			}
		})
	}
}

func TestScalarClassification(t *testing.T) {
	for s := I8; s <= F64; s++ {
		n := 0
		if s.Signed() {
			n++
		}
		if s.Unsigned() {
			n++
		}
		if s.Float() {
			n++
		}
		if n != 1 {
			t.Errorf("%v: expected exactly one class, got %d", s, n)
		}
	}
}

func TestScalarByName(t *testing.T) {
	for s := I8; s <= F64; s++ {
		got, ok := ScalarByName(s.String())
		if !ok || got != s {
			t.Errorf("ScalarByName(%q) = %v, %v", s.String(), got, ok)
		}
	}
	if _, ok := ScalarByName("u32"); ok {
		t.Error("scalar names are case sensitive")
	}
}

func TestScalarIntRange(t *testing.T) {
	lo, hi, _ := I16.IntRange()
	if lo != -32768 || hi != 32767 {
		t.Errorf("I16 range = %d..%d", lo, hi)
	}
	_, _, umax := U64.IntRange()
	if umax != ^uint64(0) {
		t.Errorf("U64 umax = %d", umax)
	}
}
