package schema

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/wippyai/spack/errors"
)

func TestDiagnosticsAdd(t *testing.T) {
	var ds Diagnostics
	ds.Add(Pos{File: "a.spr", Line: 3, Col: 5}, errors.PhaseAnnotate, errors.KindDuplicate, "duplicate name %q", "Foo").
		Note(Pos{File: "a.spr", Line: 1, Col: 7}, "previously defined here")
	ds.Add(Pos{File: "a.spr", Line: 9, Col: 1}, errors.PhaseAnnotate, errors.KindRange, "value out of range")

	if len(ds) != 2 {
		t.Fatalf("len = %d, want 2", len(ds))
	}
	if got := ds.Count(errors.KindDuplicate); got != 1 {
		t.Errorf("Count(duplicate) = %d, want 1", got)
	}
	if got := ds.Count(""); got != 2 {
		t.Errorf("Count() = %d, want 2", got)
	}

	msg := ds[0].Error()
	for _, want := range []string{"a.spr:3:5", `duplicate name "Foo"`, "a.spr:1:7: previously defined here"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestDiagnosticsErr(t *testing.T) {
	var ds Diagnostics
	if ds.Err() != nil {
		t.Error("empty diagnostics should have nil Err")
	}
	ds.Add(Pos{Line: 1, Col: 1}, errors.PhaseResolve, errors.KindUnknownType, "unknown type")
	err := ds.Err()
	if err == nil {
		t.Fatal("expected error")
	}
	var d Diagnostic
	if !stderrors.As(ds[0], &d) {
		t.Error("Diagnostic should satisfy errors.As")
	}
	if !stderrors.Is(ds[0], &errors.Error{Phase: errors.PhaseResolve, Kind: errors.KindUnknownType}) {
		t.Error("Diagnostic should unwrap to its *errors.Error")
	}
}

func TestPosString(t *testing.T) {
	if got := (Pos{Line: 2, Col: 4}).String(); got != "2:4" {
		t.Errorf("got %q", got)
	}
	if got := (Pos{File: "x.spr", Line: 2, Col: 4}).String(); got != "x.spr:2:4" {
		t.Errorf("got %q", got)
	}
}

func TestNames(t *testing.T) {
	tests := []struct {
		name  string
		upper bool
		lower bool
	}{
		{"Person", true, false},
		{"person", false, true},
		{"myField2", false, true},
		{"My_Type", false, false},
		{"my_field", false, false},
		{"2abc", false, false},
		{"", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUpperCamel(tt.name); got != tt.upper {
				t.Errorf("IsUpperCamel = %v, want %v", got, tt.upper)
			}
			if got := IsLowerCamel(tt.name); got != tt.lower {
				t.Errorf("IsLowerCamel = %v, want %v", got, tt.lower)
			}
		})
	}

	if !IsKeyword("class") || IsKeyword("cake") {
		t.Error("keyword table mismatch")
	}
	if UCamel("member") != "Member" || UCamel("") != "" {
		t.Error("UCamel mismatch")
	}
}

func TestUnionVariant(t *testing.T) {
	u := &Union{Members: []*Member{
		{Name: "a", Index: 1},
		{Name: "old", Index: 2, Removed: true},
		{Name: "c", Index: 3},
	}}
	if u.Variant(0) != nil {
		t.Error("tag 0 is none")
	}
	if u.Variant(1).Name != "a" || u.Variant(3).Name != "c" {
		t.Error("variant lookup by tag")
	}
	if u.Variant(2) != nil {
		t.Error("removed members have no variant")
	}
	if u.Variant(4) != nil {
		t.Error("out of range tag")
	}
	if u.Member("old") != nil {
		t.Error("removed members are not looked up by name")
	}
}
