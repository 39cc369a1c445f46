package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/spack/schema"
)

type browserModel struct {
	schema   *schema.Schema
	filename string
	filter   textinput.Model
	visible  []schema.Decl
	selected int
	state    modelState
}

type modelState int

const (
	stateSelectDecl modelState = iota
	stateShowDecl
)

func newBrowserModel(s *schema.Schema, filename string) *browserModel {
	ti := textinput.New()
	ti.Placeholder = "filter by name"
	ti.Prompt = "/ "
	ti.Width = 40
	ti.Focus()
	m := &browserModel{schema: s, filename: filename, filter: ti}
	m.applyFilter()
	return m
}

func (m *browserModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *browserModel) applyFilter() {
	q := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	for _, d := range m.schema.Decls {
		if q == "" || strings.Contains(strings.ToLower(d.DeclName()), q) {
			m.visible = append(m.visible, d)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "up", "ctrl+p":
			if m.state == stateSelectDecl && m.selected > 0 {
				m.selected--
			}
			return m, nil

		case "down", "ctrl+n":
			if m.state == stateSelectDecl && m.selected < len(m.visible)-1 {
				m.selected++
			}
			return m, nil

		case "enter":
			if m.state == stateSelectDecl && len(m.visible) > 0 {
				m.state = stateShowDecl
				m.filter.Blur()
			}
			return m, nil

		case "esc", "q":
			if m.state == stateShowDecl {
				m.state = stateSelectDecl
				m.filter.Focus()
				return m, nil
			}
			if key.String() == "esc" {
				return m, tea.Quit
			}
		}
	}

	if m.state != stateSelectDecl {
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *browserModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("spack layout"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectDecl:
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
		if len(m.visible) == 0 {
			b.WriteString(helpStyle.Render("no declarations match"))
			b.WriteString("\n")
		}
		for i, d := range m.visible {
			line := fmt.Sprintf("%-8s %s", d.DeclKind(), d.DeclName())
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + typeStyle.Render(fmt.Sprintf("%-8s", d.DeclKind())) + " " + nameStyle.Render(d.DeclName()))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("type to filter • ↑/↓ select • enter show • esc quit"))

	case stateShowDecl:
		b.WriteString(renderDecl(reportDecl(m.visible[m.selected])))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("esc back • ctrl+c quit"))
	}

	return b.String()
}

func runInteractive(s *schema.Schema, filename string) error {
	p := tea.NewProgram(newBrowserModel(s, filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
