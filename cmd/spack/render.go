package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/spack/config"
	"github.com/wippyai/spack/magic"
	"github.com/wippyai/spack/schema"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#90EE90"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD166"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// setupColor picks the lipgloss color profile for out.
func setupColor(mode string, out io.Writer) {
	switch mode {
	case config.ColorNever:
		lipgloss.SetColorProfile(termenv.Ascii)
	case config.ColorAlways:
		lipgloss.SetColorProfile(termenv.ANSI256)
	default:
		if !isTerminal(out) {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type layoutReport struct {
	Decls []declReport `yaml:"declarations"`
}

type declReport struct {
	Name    string         `yaml:"name"`
	Kind    string         `yaml:"kind"`
	Magic   string         `yaml:"magic,omitempty"`
	Bytes   int            `yaml:"bytes,omitempty"`
	Inplace bool           `yaml:"inplace,omitempty"`
	Default string         `yaml:"default,omitempty"`
	Members []memberReport `yaml:"members,omitempty"`
	Values  []string       `yaml:"values,omitempty"`
}

type memberReport struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Offset  int    `yaml:"offset"`
	Bytes   int    `yaml:"bytes"`
	Has     string `yaml:"has,omitempty"`
	Bit     *int   `yaml:"bit,omitempty"`
	Tag     int    `yaml:"tag,omitempty"`
	Default string `yaml:"default,omitempty"`
	Removed bool   `yaml:"removed,omitempty"`
}

func reportDecl(d schema.Decl) declReport {
	r := declReport{Name: d.DeclName(), Kind: d.DeclKind().String()}
	switch v := d.(type) {
	case *schema.Table:
		if v.Magic != 0 {
			r.Magic = magic.Format(v.Magic)
		}
		r.Bytes = v.Bytes
		r.Inplace = v.Inplace
		r.Default = hex.EncodeToString(v.Default)
		r.Members = reportMembers(v.Members, false)
	case *schema.Struct:
		r.Bytes = v.Bytes
		r.Default = hex.EncodeToString(v.Default)
		r.Members = reportMembers(v.Members, false)
	case *schema.Union:
		r.Inplace = v.Inplace
		r.Members = reportMembers(v.Members, true)
	case *schema.Enum:
		for _, ev := range v.Values {
			r.Values = append(r.Values, ev.Name)
		}
	}
	return r
}

func reportMembers(ms []*schema.Member, union bool) []memberReport {
	out := make([]memberReport, 0, len(ms))
	for _, m := range ms {
		r := memberReport{
			Name:    m.Name,
			Type:    strings.TrimPrefix(m.String(), m.Name+": "),
			Offset:  m.Offset,
			Bytes:   m.Bytes,
			Default: hex.EncodeToString(m.Default),
			Removed: m.Removed,
		}
		if m.HasPresenceBit() {
			r.Has = fmt.Sprintf("%d.%d", m.HasOffset, m.HasBit)
		}
		if m.Bit >= 0 {
			bit := m.Bit
			r.Bit = &bit
		}
		if union {
			r.Tag = m.Index
		}
		out = append(out, r)
	}
	return out
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// renderDecl formats one declaration as a heading plus a member table.
func renderDecl(r declReport) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(r.Kind))
	b.WriteString(" ")
	b.WriteString(nameStyle.Render(r.Name))
	if r.Magic != "" {
		b.WriteString(" " + r.Magic)
	}
	switch {
	case r.Kind == "enum":
		b.WriteString(helpStyle.Render(fmt.Sprintf("  %d values", len(r.Values))))
	case r.Kind != "union":
		b.WriteString(helpStyle.Render(fmt.Sprintf("  %d bytes", r.Bytes)))
	}
	if r.Inplace {
		b.WriteString(helpStyle.Render("  inplace"))
	}
	b.WriteString("\n")

	if r.Kind == "enum" {
		for i, v := range r.Values {
			fmt.Fprintf(&b, "  %3d  %s\n", i, v)
		}
		return b.String()
	}
	if len(r.Members) == 0 {
		return b.String()
	}

	union := r.Kind == "union"
	headers := []string{"offset", "bytes", "has", "bit", "name", "type", "default"}
	if union {
		headers = []string{"tag", "name", "type"}
	}
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case headers[col] == "name":
				return nameStyle
			case headers[col] == "type":
				return typeStyle
			}
			return lipgloss.NewStyle()
		})
	for _, m := range r.Members {
		name := m.Name
		if m.Removed {
			name += " (removed)"
		}
		if union {
			t.Row(strconv.Itoa(m.Tag), name, m.Type)
			continue
		}
		bit := ""
		if m.Bit != nil {
			bit = strconv.Itoa(*m.Bit)
		}
		t.Row(strconv.Itoa(m.Offset), strconv.Itoa(m.Bytes), m.Has, bit, name, m.Type, m.Default)
	}
	b.WriteString(t.String())
	b.WriteString("\n")
	return b.String()
}

// renderTree writes a decoded message as an indented outline.
func renderTree(w io.Writer, n *node, depth int) {
	indent := strings.Repeat("  ", depth)
	switch {
	case n.kids == nil && n.quoted:
		fmt.Fprintf(w, "%s%s: %s\n", indent, nameStyle.Render(n.name), strconv.Quote(n.value))
	case n.kids == nil:
		fmt.Fprintf(w, "%s%s: %s\n", indent, nameStyle.Render(n.name), n.value)
	default:
		label := n.name
		if n.list {
			label = fmt.Sprintf("%s [%d]", n.name, len(n.kids))
		}
		fmt.Fprintf(w, "%s%s\n", indent, nameStyle.Render(label))
		for _, k := range n.kids {
			renderTree(w, k, depth+1)
		}
	}
}

// renderError prints err, one diagnostic per line when it carries several.
func renderError(w io.Writer, err error) {
	if ds, ok := err.(schema.Diagnostics); ok {
		for _, d := range ds {
			fmt.Fprintln(w, errorStyle.Render(d.Error()))
		}
		fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("%d errors", len(ds))))
		return
	}
	fmt.Fprintln(w, errorStyle.Render("Error: "+err.Error()))
}
