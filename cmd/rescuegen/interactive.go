package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/rescue"
	"github.com/wippyai/rescue/errors"
	"github.com/wippyai/rescue/gen"
	"github.com/wippyai/rescue/inspect"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	structStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	writtenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err      error
	dir      string
	patterns []string
	pkgs     []*inspect.Package
	findings []errors.Finding
	entries  []structEntry
	written  []string
	selected int
	preview  viewport.Model
	state    modelState
}

// structEntry is one annotated struct with its owning package, flattened
// for list navigation.
type structEntry struct {
	pkg *inspect.Package
	s   *inspect.Struct
}

type modelState int

const (
	stateSelect modelState = iota
	statePreview
	stateWritten
)

func newInteractiveModel(dir string, patterns []string) *interactiveModel {
	return &interactiveModel{
		dir:      dir,
		patterns: patterns,
		state:    stateSelect,
	}
}

type inspectedMsg struct {
	err      error
	pkgs     []*inspect.Package
	findings []errors.Finding
}

type writtenMsg struct {
	err   error
	files []string
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.inspectPackages
}

func (m *interactiveModel) inspectPackages() tea.Msg {
	pkgs, err := rescue.Inspect(context.Background(), m.dir, m.patterns...)
	if ce, ok := err.(*errors.CheckError); ok {
		return inspectedMsg{pkgs: pkgs, findings: ce.Findings}
	}
	if err != nil {
		return inspectedMsg{err: err}
	}
	return inspectedMsg{pkgs: pkgs}
}

func (m *interactiveModel) generateFiles() tea.Msg {
	var files []string
	for _, p := range m.pkgs {
		path, err := gen.Write(p, gen.Options{})
		if err != nil {
			return writtenMsg{err: err}
		}
		if path != "" {
			files = append(files, path)
		}
	}
	return writtenMsg{files: files}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.preview.Width = msg.Width
		m.preview.Height = msg.Height - 4

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelect && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelect && m.selected < len(m.entries)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelect:
				if len(m.entries) > 0 {
					m.openPreview()
				}
			case stateWritten:
				return m, tea.Quit
			}

		case "g":
			if m.state == stateSelect && len(m.findings) == 0 && len(m.entries) > 0 {
				return m, m.generateFiles
			}

		case "esc":
			if m.state == statePreview {
				m.state = stateSelect
			}
		}

	case inspectedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.pkgs = msg.pkgs
		m.findings = msg.findings
		m.entries = nil
		for _, p := range m.pkgs {
			for _, s := range p.Structs {
				if gen.Eligible(s) {
					m.entries = append(m.entries, structEntry{pkg: p, s: s})
				}
			}
		}

	case writtenMsg:
		m.err = msg.err
		m.written = msg.files
		m.state = stateWritten
	}

	if m.state == statePreview {
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) openPreview() {
	entry := m.entries[m.selected]
	content, err := gen.File(entry.pkg)
	if err != nil {
		m.preview.SetContent(errorStyle.Render(err.Error()))
	} else {
		m.preview.SetContent(string(content))
	}
	m.preview.GotoTop()
	m.state = statePreview
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateWritten {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.pkgs == nil {
		return "Loading packages..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Rescue Generator"))
	b.WriteString(" ")
	b.WriteString(strings.Join(m.patterns, " "))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelect:
		if len(m.entries) == 0 {
			b.WriteString("No annotated structs found.\n\n")
			b.WriteString(helpStyle.Render("q quit"))
			break
		}

		b.WriteString("Annotated structs:\n\n")
		for i, entry := range m.entries {
			line := m.formatEntry(entry)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}

		if len(m.findings) > 0 {
			b.WriteString("\n")
			b.WriteString(errorStyle.Render(fmt.Sprintf("%d definition-time violation(s):", len(m.findings))))
			b.WriteString("\n")
			for _, f := range m.findings {
				b.WriteString(errorStyle.Render("  " + f.Struct + ": " + f.Err.Error()))
				b.WriteString("\n")
			}
			b.WriteString("\n")
			b.WriteString(helpStyle.Render("↑/↓ select • enter preview • q quit (fix violations to generate)"))
			break
		}

		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter preview • g generate • q quit"))

	case statePreview:
		entry := m.entries[m.selected]
		b.WriteString(fmt.Sprintf("Generated source for %s\n\n", structStyle.Render(entry.pkg.Path)))
		b.WriteString(m.preview.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ scroll • esc back • q quit"))

	case stateWritten:
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else if len(m.written) == 0 {
			b.WriteString("Nothing to generate.")
		} else {
			b.WriteString("Written:\n\n")
			for _, path := range m.written {
				b.WriteString(writtenStyle.Render("  " + path))
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter/q quit"))
	}

	return b.String()
}

func (m *interactiveModel) formatEntry(entry structEntry) string {
	var fields []string
	for _, f := range entry.s.Rescuable() {
		fields = append(fields, f.Name+" "+typeStyle.Render(f.TypeStr))
	}
	return structStyle.Render(entry.pkg.Name+"."+entry.s.Name) +
		" {" + strings.Join(fields, ", ") + "} -> " +
		structStyle.Render(entry.s.FuncName)
}

func runInteractive(dir string, patterns []string) error {
	p := tea.NewProgram(newInteractiveModel(dir, patterns), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
