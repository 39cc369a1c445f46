package spack

import (
	"github.com/wippyai/spack/layout"
	"github.com/wippyai/spack/registry"
	"github.com/wippyai/spack/schema"
	"github.com/wippyai/spack/spr"
)

// Compile parses source and returns its annotated schema. Schema errors are
// returned together as schema.Diagnostics; parse errors are returned alone
// since parsing stops at the first one.
func Compile(name, source string) (*schema.Schema, error) {
	f, err := spr.Parse(name, source)
	if err != nil {
		return nil, err
	}
	return CompileFiles(f)
}

// CompileFile loads path and its imports, searching includeDirs after the
// importing file's directory, and compiles them as one schema.
func CompileFile(path string, includeDirs ...string) (*schema.Schema, error) {
	files, err := spr.NewLoader(includeDirs...).Load(path)
	if err != nil {
		return nil, err
	}
	return CompileFiles(files...)
}

// CompileFiles resolves and annotates already parsed files. Layout runs only
// when resolution succeeded, so every reported diagnostic is a root cause.
func CompileFiles(files ...*schema.File) (*schema.Schema, error) {
	s, diags := registry.Resolve(files...)
	if len(diags) > 0 {
		return nil, diags
	}
	a := layout.New()
	if _, n := a.Annotate(s); n > 0 {
		return nil, a.Diagnostics()
	}
	return s, nil
}

// MustCompile is like Compile but panics on error. It is meant for schemas
// embedded in programs and tests.
func MustCompile(name, source string) *schema.Schema {
	s, err := Compile(name, source)
	if err != nil {
		panic(err)
	}
	return s
}
