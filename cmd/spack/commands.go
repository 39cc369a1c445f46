package main

import (
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/spack"
	"github.com/wippyai/spack/config"
	"github.com/wippyai/spack/errors"
	"github.com/wippyai/spack/evolution"
	"github.com/wippyai/spack/magic"
	"github.com/wippyai/spack/schema"
	"github.com/wippyai/spack/wire"
)

var errUsage = stderrors.New("bad arguments")

type command struct {
	name  string
	usage string
	help  string
	run   func(e *env, args []string) error
}

var commands = []*command{
	{name: "validate", usage: "validate <file.spr>...", help: "Compile schemas and report every diagnostic", run: runValidate},
	{name: "layout", usage: "layout [-type Name] [-i] <file.spr>", help: "Print offsets, sizes, presence bits and defaults", run: runLayout},
	{name: "magic", usage: "magic [-n count]", help: "Generate random table magics", run: runMagic},
	{name: "check", usage: "check <old.spr> <new.spr>", help: "Check that a new revision reads old messages", run: runCheck},
	{name: "inspect", usage: "inspect [-root Table] <file.spr> <message>", help: "Decode a message", run: runInspect},
}

func lookup(name string) *command {
	for _, c := range commands {
		if c.name == name {
			return c
		}
	}
	return nil
}

func usageErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

// flags returns a flag set for a command that reports parse errors through
// the command's usage line.
func (e *env) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if stderrors.Is(err, flag.ErrHelp) {
			return err
		}
		return usageErr("%v", err)
	}
	return nil
}

func (e *env) compile(path string) (*schema.Schema, error) {
	s, err := spack.CompileFile(path, e.cfg.IncludeDirs...)
	if err != nil {
		return nil, err
	}
	e.log.Debug("compiled schema", zap.String("file", path), zap.Int("decls", len(s.Decls)))
	return s, nil
}

func runValidate(e *env, args []string) error {
	if len(args) == 0 {
		return usageErr("no schema files")
	}
	failed := 0
	for _, path := range args {
		s, err := e.compile(path)
		if err != nil {
			failed++
			renderError(e.stderr, err)
			continue
		}
		fmt.Fprintf(e.stdout, "%s %s: %d declarations, %d tables\n",
			okStyle.Render("ok"), path, len(s.Decls), len(s.Tables()))
	}
	if failed > 0 {
		return errFailed
	}
	return nil
}

func runLayout(e *env, args []string) error {
	fs := e.flags("layout")
	typeName := fs.String("type", "", "Only print this declaration")
	interactive := fs.Bool("i", false, "Browse the layout interactively")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usageErr("want one schema file")
	}
	path := fs.Arg(0)
	s, err := e.compile(path)
	if err != nil {
		return err
	}

	if *interactive {
		if !isTerminal(e.stdout) {
			return errors.Unsupported(errors.PhaseConfig, "interactive mode needs a terminal")
		}
		return runInteractive(s, path)
	}

	decls := s.Decls
	if *typeName != "" {
		d := s.Lookup(*typeName)
		if d == nil {
			return errors.NotFound(errors.PhaseResolve, "declaration", *typeName)
		}
		decls = []schema.Decl{d}
	}

	var report layoutReport
	for _, d := range decls {
		report.Decls = append(report.Decls, reportDecl(d))
	}
	if e.cfg.Format == config.FormatYAML {
		return writeYAML(e.stdout, report)
	}
	for i, r := range report.Decls {
		if i > 0 {
			fmt.Fprintln(e.stdout)
		}
		io.WriteString(e.stdout, renderDecl(r))
	}
	return nil
}

func runMagic(e *env, args []string) error {
	fs := e.flags("magic")
	n := fs.Int("n", 1, "Number of magics")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return usageErr("magic takes no arguments")
	}
	ms, err := magic.Generate(*n)
	if err != nil {
		return err
	}
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = magic.Format(m)
	}
	if e.cfg.Format == config.FormatYAML {
		return writeYAML(e.stdout, out)
	}
	for _, m := range out {
		fmt.Fprintln(e.stdout, m)
	}
	return nil
}

type issueReport struct {
	Severity string `yaml:"severity"`
	Decl     string `yaml:"declaration"`
	Member   string `yaml:"member,omitempty"`
	Message  string `yaml:"message"`
}

func runCheck(e *env, args []string) error {
	fs := e.flags("check")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return usageErr("want an old and a new schema file")
	}
	old, err := e.compile(fs.Arg(0))
	if err != nil {
		return err
	}
	next, err := e.compile(fs.Arg(1))
	if err != nil {
		return err
	}

	issues := evolution.Check(old, next)
	e.log.Debug("evolution check",
		zap.Int("breaking", evolution.Count(issues, evolution.Breaking)),
		zap.Int("warnings", evolution.Count(issues, evolution.Warning)),
		zap.Bool("strict", e.cfg.Strict))

	if e.cfg.Format == config.FormatYAML {
		out := make([]issueReport, 0, len(issues))
		for _, i := range issues {
			out = append(out, issueReport{Severity: i.Severity.String(), Decl: i.Decl, Member: i.Member, Message: i.Message})
		}
		if err := writeYAML(e.stdout, out); err != nil {
			return err
		}
	} else {
		for _, i := range issues {
			style := warnStyle
			if i.Severity == evolution.Breaking {
				style = errorStyle
			}
			fmt.Fprintln(e.stdout, style.Render(i.String()))
		}
		if len(issues) == 0 {
			fmt.Fprintln(e.stdout, okStyle.Render("compatible"))
		}
	}
	if evolution.Err(issues, e.cfg.Strict) != nil {
		return errFailed
	}
	return nil
}

func runInspect(e *env, args []string) error {
	fs := e.flags("inspect")
	rootName := fs.String("root", "", "Root table (default: found by the root header magic)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return usageErr("want a schema file and a message file")
	}
	s, err := e.compile(fs.Arg(0))
	if err != nil {
		return err
	}
	data, err := os.ReadFile(fs.Arg(1))
	if err != nil {
		return errors.Wrap(errors.PhaseDecode, errors.KindNotFound, err, "read message")
	}

	r := wire.NewReader(data)
	var t *schema.Table
	if *rootName != "" {
		if t = s.Table(*rootName); t == nil {
			return errors.NotFound(errors.PhaseDecode, "table", *rootName)
		}
	} else {
		m, err := r.RootMagic()
		if err != nil {
			return err
		}
		if t = s.TableByMagic(m); t == nil {
			return errors.NotFound(errors.PhaseDecode, "table with magic", magic.Format(m))
		}
	}

	in, err := r.Root(t)
	if err != nil {
		return err
	}
	tree, err := new(dumper).table(t.Name, in)
	if err != nil {
		return err
	}
	if e.cfg.Format == config.FormatYAML {
		doc := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: t.Name}, tree.yamlNode(),
		}}
		return writeYAML(e.stdout, doc)
	}
	renderTree(e.stdout, tree, 0)
	return nil
}
