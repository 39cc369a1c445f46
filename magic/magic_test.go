package magic

import (
	"testing"
)

func TestGenerate(t *testing.T) {
	for _, n := range []int{0, 1, 100} {
		got, err := Generate(n)
		if err != nil {
			t.Fatalf("Generate(%d) failed: %v", n, err)
		}
		if len(got) != n {
			t.Fatalf("Generate(%d) returned %d magics", n, len(got))
		}
		seen := map[uint32]bool{}
		for _, v := range got {
			if v == 0 {
				t.Error("zero magic")
			}
			if seen[v] {
				t.Errorf("duplicate magic %08X", v)
			}
			seen[v] = true
		}
	}

	if _, err := Generate(-1); err == nil {
		t.Error("expected error for negative count")
	}
}

func TestFormatParse(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"@1", 1, false},
		{"@DEADBEEF", 0xDEADBEEF, false},
		{"deadbeef", 0xDEADBEEF, false},
		{"@FFFFFFFF", 0xFFFFFFFF, false},
		{"@0", 0, true},
		{"@100000000", 0, true},
		{"@XYZ", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %08X, want %08X", tt.in, got, tt.want)
			}
		})
	}

	if got := Format(0xAB); got != "@000000AB" {
		t.Errorf("Format = %q", got)
	}
	v, err := Parse(Format(0x1234ABCD))
	if err != nil || v != 0x1234ABCD {
		t.Errorf("Parse(Format) = %08X, %v", v, err)
	}
}
