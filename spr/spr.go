package spr

import (
	"os"
	"path/filepath"

	"github.com/wippyai/spack/errors"
	"github.com/wippyai/spack/schema"
	"github.com/wippyai/spack/spr/internal/parser"
	"github.com/wippyai/spack/spr/internal/token"
)

// Ext is the schema document file extension.
const Ext = ".spr"

func Parse(name, source string) (*schema.File, error) {
	tokens := token.Tokenize(source)
	p := parser.New(name, tokens)
	return p.Parse()
}

// Loader reads schema documents and their imports from disk.
type Loader struct {
	// IncludeDirs are searched, in order, after the importing file's directory.
	IncludeDirs []string

	seen  map[string]bool
	files []*schema.File
}

func NewLoader(includeDirs ...string) *Loader {
	return &Loader{IncludeDirs: includeDirs}
}

// Load parses the file at path and everything it imports. Imported files come
// before their importers in the result.
func (l *Loader) Load(path string) ([]*schema.File, error) {
	l.seen = make(map[string]bool)
	l.files = nil
	if err := l.load(path); err != nil {
		return nil, err
	}
	return l.files, nil
}

func (l *Loader) load(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.PhaseParse, errors.KindInvalidInput, err, "resolve "+path)
	}
	if l.seen[abs] {
		return nil
	}
	l.seen[abs] = true

	src, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.PhaseParse, errors.KindNotFound, err, "read "+path)
	}
	f, err := Parse(path, string(src))
	if err != nil {
		return err
	}

	for _, imp := range f.Imports {
		dep, ok := l.find(filepath.Dir(path), imp.Name)
		if !ok {
			return errors.New(errors.PhaseParse, errors.KindNotFound).
				Detail("%s: import %q not found", imp.Pos, imp.Name).
				Build()
		}
		if err := l.load(dep); err != nil {
			return err
		}
	}

	l.files = append(l.files, f)
	return nil
}

func (l *Loader) find(dir, name string) (string, bool) {
	for _, d := range append([]string{dir}, l.IncludeDirs...) {
		p := filepath.Join(d, name+Ext)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, true
		}
	}
	return "", false
}
