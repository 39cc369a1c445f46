package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/spack/errors"
)

// isolate runs the test in an empty directory with no SPACK_* overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	for _, k := range []string{"SPACK_INCLUDE", "SPACK_LOG_LEVEL", "SPACK_FORMAT", "SPACK_COLOR", "SPACK_STRICT"} {
		t.Setenv(k, "")
	}
	return dir
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func requireConfigErr(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var e *errors.Error
	require.True(t, stderrors.As(err, &e), "not a structured error: %v", err)
	require.Equal(t, errors.PhaseConfig, e.Phase)
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, rest, err := Load("", []string{"validate", "a.spr"})
	require.NoError(t, err)
	require.Equal(t, []string{"validate", "a.spr"}, rest)
	require.Empty(t, cfg.File)
	require.Empty(t, cfg.IncludeDirs)
	require.Equal(t, FormatText, cfg.Format)
	require.Equal(t, ColorAuto, cfg.Color)
	require.False(t, cfg.Strict)
	require.Equal(t, zapcore.WarnLevel, cfg.Level())
}

func TestLoadDefaultFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, DefaultFile), `
include: [schemas, /abs/dir]
log:
  level: info
format: yaml
strict: true
`)

	cfg, _, err := Load("", nil)
	require.NoError(t, err)
	require.Equal(t, DefaultFile, cfg.File)
	require.Equal(t, []string{"schemas", "/abs/dir"}, cfg.IncludeDirs)
	require.Equal(t, zapcore.InfoLevel, cfg.Level())
	require.Equal(t, FormatYAML, cfg.Format)
	require.Equal(t, ColorAuto, cfg.Color)
	require.True(t, cfg.Strict)
}

func TestLoadExplicitFile(t *testing.T) {
	dir := isolate(t)
	sub := filepath.Join(dir, "conf")
	require.NoError(t, os.Mkdir(sub, 0o755))
	path := filepath.Join(sub, "other.yaml")
	writeFile(t, path, "include: [inc]\ncolor: never\n")
	writeFile(t, filepath.Join(dir, DefaultFile), "color: always\n")

	cfg, _, err := Load(path, nil)
	require.NoError(t, err)
	require.Equal(t, ColorNever, cfg.Color)
	require.Equal(t, []string{filepath.Join(sub, "inc")}, cfg.IncludeDirs)

	cfg, _, err = Load("", []string{"-config", path})
	require.NoError(t, err)
	require.Equal(t, path, cfg.File)
	require.Equal(t, ColorNever, cfg.Color)
}

func TestLoadLayering(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, DefaultFile), "format: yaml\ncolor: never\nlog:\n  level: error\n")
	t.Setenv("SPACK_COLOR", "always")
	t.Setenv("SPACK_LOG_LEVEL", "info")
	t.Setenv("SPACK_STRICT", "yes")
	t.Setenv("SPACK_INCLUDE", "a"+string(filepath.ListSeparator)+"b")

	cfg, _, err := Load("", nil)
	require.NoError(t, err)
	require.Equal(t, FormatYAML, cfg.Format, "file value survives")
	require.Equal(t, ColorAlways, cfg.Color, "env beats file")
	require.Equal(t, zapcore.InfoLevel, cfg.Level())
	require.True(t, cfg.Strict)
	require.Equal(t, []string{"a", "b"}, cfg.IncludeDirs)

	cfg, rest, err := Load("", []string{"-color", "never", "-I", "c", "-I", "d", "-v", "-format", "text", "layout", "x.spr"})
	require.NoError(t, err)
	require.Equal(t, ColorNever, cfg.Color, "flag beats env")
	require.Equal(t, FormatText, cfg.Format)
	require.Equal(t, []string{"a", "b", "c", "d"}, cfg.IncludeDirs)
	require.Equal(t, zapcore.DebugLevel, cfg.Level())
	require.True(t, cfg.Log.Development)
	require.Equal(t, []string{"layout", "x.spr"}, rest)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
		args []string
	}{
		{name: "bad format flag", args: []string{"-format", "json"}},
		{name: "bad color env", env: map[string]string{"SPACK_COLOR": "rainbow"}},
		{name: "bad level", args: []string{"-log-level", "loud"}},
		{name: "bad strict env", env: map[string]string{"SPACK_STRICT": "maybe"}},
		{name: "unknown flag", args: []string{"-nope"}},
		{name: "missing file", args: []string{"-config", "missing.yaml"}},
		{name: "malformed yaml", file: "format: [text\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			if tt.file != "" {
				writeFile(t, filepath.Join(dir, DefaultFile), tt.file)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, _, err := Load("", tt.args)
			requireConfigErr(t, err)
		})
	}
}

func TestUsage(t *testing.T) {
	var b strings.Builder
	Usage(&b)
	require.Contains(t, b.String(), "-strict")
	require.Contains(t, b.String(), DefaultFile)
}
