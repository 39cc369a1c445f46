// Command spack compiles .spr schemas, prints their binary layout, checks
// revisions for compatibility and decodes messages.
package main

import (
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/wippyai/spack/config"
	"github.com/wippyai/spack/layout"
	"github.com/wippyai/spack/registry"
	"github.com/wippyai/spack/wire"
)

const (
	exitOK = iota
	exitFailed
	exitUsage
)

// errFailed reports a failure that was already printed.
var errFailed = stderrors.New("failed")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// env is what every command gets.
type env struct {
	cfg    *config.Config
	log    *zap.Logger
	stdout io.Writer
	stderr io.Writer
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, rest, err := config.Load("", args)
	if err != nil {
		if stderrors.Is(err, flag.ErrHelp) {
			usage(stdout)
			return exitOK
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		usage(stderr)
		return exitUsage
	}
	if len(rest) == 0 {
		usage(stderr)
		return exitUsage
	}

	setupColor(cfg.Color, stdout)
	log, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailed
	}
	defer func() { _ = log.Sync() }()
	registry.SetLogger(log.Named("registry"))
	layout.SetLogger(log.Named("layout"))
	wire.SetLogger(log.Named("wire"))

	cmd := lookup(rest[0])
	if cmd == nil {
		fmt.Fprintf(stderr, "Error: unknown command %q\n", rest[0])
		usage(stderr)
		return exitUsage
	}
	log.Debug("running command",
		zap.String("command", cmd.name),
		zap.Strings("args", rest[1:]),
		zap.String("config", cfg.File),
		zap.Strings("include", cfg.IncludeDirs))

	e := &env{cfg: cfg, log: log, stdout: stdout, stderr: stderr}
	if err := cmd.run(e, rest[1:]); err != nil {
		switch {
		case stderrors.Is(err, errFailed):
		case stderrors.Is(err, flag.ErrHelp):
			return exitOK
		case stderrors.Is(err, errUsage):
			fmt.Fprintf(stderr, "Error: %v\n", err)
			fmt.Fprintf(stderr, "Usage: spack [flags] %s\n", cmd.usage)
			return exitUsage
		default:
			renderError(stderr, err)
		}
		return exitFailed
	}
	return exitOK
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(cfg.Level())
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: spack [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.help)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	config.Usage(w)
}
