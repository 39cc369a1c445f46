// Package config loads the settings of the spack command.
//
// Values are layered: built-in defaults, then a YAML file, then SPACK_*
// environment variables, then command-line flags. Each layer only overrides
// what it sets.
package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/spack/errors"
)

// DefaultFile is read when no -config flag is given and the file exists in
// the working directory.
const DefaultFile = "spack.yaml"

// Output formats.
const (
	FormatText = "text"
	FormatYAML = "yaml"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

type Config struct {
	// File is the config file that was read, empty if none.
	File string `yaml:"-"`

	IncludeDirs []string `yaml:"include"`
	Log         Log      `yaml:"log"`
	Format      string   `yaml:"format"`
	Color       string   `yaml:"color"`
	// Strict makes evolution warnings fail the check command.
	Strict bool `yaml:"strict"`
}

type Log struct {
	Level string `yaml:"level"`
	// Development selects zap's development encoder.
	Development bool `yaml:"development"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Log:    Log{Level: "warn"},
		Format: FormatText,
		Color:  ColorAuto,
	}
}

// Level parses the configured log level.
func (c Config) Level() zapcore.Level {
	lvl, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return zapcore.WarnLevel
	}
	return lvl
}

// Validate rejects unknown enumerated values.
func (c Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.Config(fmt.Sprintf("log level %q", c.Log.Level), err)
	}
	switch c.Format {
	case FormatText, FormatYAML:
	default:
		return errors.Config(fmt.Sprintf("format %q: want %s or %s", c.Format, FormatText, FormatYAML), nil)
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return errors.Config(fmt.Sprintf("color %q: want %s, %s or %s", c.Color, ColorAuto, ColorAlways, ColorNever), nil)
	}
	return nil
}

// ReadFile merges the YAML file at path over c.
func (c *Config) ReadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return errors.Config("read "+path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return errors.Config("decode "+path, err)
	}
	c.File = path
	base := filepath.Dir(path)
	for i, dir := range c.IncludeDirs {
		if !filepath.IsAbs(dir) {
			c.IncludeDirs[i] = filepath.Join(base, dir)
		}
	}
	return nil
}

func getenv(k string) (string, bool) {
	v, ok := os.LookupEnv(k)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func parseBool(v string) (bool, bool) {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}

// ApplyEnv overrides c from SPACK_* variables. SPACK_INCLUDE is a
// path-list-separated list that is appended to the configured directories.
func (c *Config) ApplyEnv() error {
	if v, ok := getenv("SPACK_INCLUDE"); ok {
		c.IncludeDirs = append(c.IncludeDirs, filepath.SplitList(v)...)
	}
	if v, ok := getenv("SPACK_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := getenv("SPACK_FORMAT"); ok {
		c.Format = v
	}
	if v, ok := getenv("SPACK_COLOR"); ok {
		c.Color = v
	}
	if v, ok := getenv("SPACK_STRICT"); ok {
		b, valid := parseBool(v)
		if !valid {
			return errors.Config(fmt.Sprintf("SPACK_STRICT=%q is not a boolean", v), nil)
		}
		c.Strict = b
	}
	return nil
}

type dirList struct{ dirs *[]string }

func (d dirList) String() string {
	if d.dirs == nil {
		return ""
	}
	return strings.Join(*d.dirs, string(filepath.ListSeparator))
}

func (d dirList) Set(v string) error {
	*d.dirs = append(*d.dirs, v)
	return nil
}

// Load builds the configuration for one invocation. args are the
// command-line arguments without the program name; the arguments left after
// the global flags are returned. path names the config file; when empty,
// DefaultFile is used if it exists. A -config flag in args wins over path.
func Load(path string, args []string) (*Config, []string, error) {
	fs := flag.NewFlagSet("spack", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	// The config file has to be known before the other flags are applied, so
	// flags are parsed twice: once for -config, once over the merged values.
	file := fs.String("config", path, "")
	scratch := Default()
	registerFlags(fs, &scratch)
	if err := fs.Parse(args); err != nil {
		return nil, nil, errors.Config("flags", err)
	}

	cfg := Default()
	switch {
	case *file != "":
		if err := cfg.ReadFile(*file); err != nil {
			return nil, nil, err
		}
	default:
		if st, err := os.Stat(DefaultFile); err == nil && !st.IsDir() {
			if err := cfg.ReadFile(DefaultFile); err != nil {
				return nil, nil, err
			}
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, nil, err
	}

	fs = flag.NewFlagSet("spack", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.String("config", path, "")
	registerFlags(fs, &cfg)
	if err := fs.Parse(args); err != nil {
		return nil, nil, errors.Config("flags", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return &cfg, fs.Args(), nil
}

func registerFlags(fs *flag.FlagSet, c *Config) {
	fs.Var(dirList{&c.IncludeDirs}, "I", "Add an import search directory (repeatable)")
	fs.StringVar(&c.Log.Level, "log-level", c.Log.Level, "Log level (debug, info, warn, error)")
	fs.BoolFunc("v", "Verbose: log at debug level", func(string) error {
		c.Log.Level = "debug"
		c.Log.Development = true
		return nil
	})
	fs.StringVar(&c.Format, "format", c.Format, "Output format (text, yaml)")
	fs.StringVar(&c.Color, "color", c.Color, "Color output (auto, always, never)")
	fs.BoolVar(&c.Strict, "strict", c.Strict, "Treat evolution warnings as errors")
}

// Usage writes the global flag help to w.
func Usage(w io.Writer) {
	fs := flag.NewFlagSet("spack", flag.ContinueOnError)
	fs.SetOutput(w)
	fs.String("config", "", "Path to the YAML config file (default "+DefaultFile+" if present)")
	c := Default()
	registerFlags(fs, &c)
	fs.PrintDefaults()
}
