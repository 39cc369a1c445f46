package wire

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wippyai/spack"
	"github.com/wippyai/spack/errors"
	"github.com/wippyai/spack/schema"
)

func compile(t *testing.T, src string) *schema.Schema {
	t.Helper()
	s, err := spack.Compile("test.spr", src)
	require.NoError(t, err)
	return s
}

// catch runs f and returns the *errors.Error it panicked with, or nil.
func catch(f func()) (err *errors.Error) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(*errors.Error)
			if !ok {
				panic(r)
			}
			err = e
		}
	}()
	f()
	return nil
}

func requireKind(t *testing.T, err error, kind errors.Kind) {
	t.Helper()
	require.Error(t, err)
	var e *errors.Error
	require.True(t, stderrors.As(err, &e), "not a structured error: %v", err)
	require.Equal(t, kind, e.Kind, "error: %v", err)
}

func root(t *testing.T, msg []byte, tbl *schema.Table) TableIn {
	t.Helper()
	in, err := NewReader(msg).Root(tbl)
	require.NoError(t, err)
	return in
}

// clone detaches a finalized message from its writer.
func clone(msg []byte) []byte {
	return append([]byte(nil), msg...)
}
