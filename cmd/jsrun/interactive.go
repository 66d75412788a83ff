package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/js-bridge/runtime"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	consoleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// maxEntries bounds the transcript kept on screen.
const maxEntries = 50

// consoleBuffer collects console output between evaluations.
type consoleBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (c *consoleBuffer) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

func (c *consoleBuffer) drain() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.buf.String()
	c.buf.Reset()
	return s
}

type entry struct {
	err     error
	source  string
	console string
	result  string
}

type interactiveModel struct {
	rt      *runtime.Runtime
	console *consoleBuffer
	input   textinput.Model
	entries []entry
	history []string
	histIdx int
	counter int
	busy    bool
}

type evalResultMsg struct {
	entry entry
}

func newInteractiveModel(rt *runtime.Runtime, console *consoleBuffer) *interactiveModel {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render("> ")
	ti.Placeholder = "script"
	ti.Width = 72
	ti.Focus()
	return &interactiveModel{rt: rt, console: console, input: ti}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+d":
			return m, tea.Quit

		case "enter":
			source := strings.TrimSpace(m.input.Value())
			if source == "" || m.busy {
				return m, nil
			}
			m.busy = true
			m.history = append(m.history, source)
			m.histIdx = len(m.history)
			m.input.SetValue("")
			m.counter++
			return m, m.evaluate(source, fmt.Sprintf("<repl:%d>", m.counter))

		case "up":
			if m.histIdx > 0 {
				m.histIdx--
				m.input.SetValue(m.history[m.histIdx])
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if m.histIdx < len(m.history)-1 {
				m.histIdx++
				m.input.SetValue(m.history[m.histIdx])
				m.input.CursorEnd()
			} else {
				m.histIdx = len(m.history)
				m.input.SetValue("")
			}
			return m, nil

		case "esc":
			m.input.SetValue("")
			return m, nil
		}

	case evalResultMsg:
		m.busy = false
		m.entries = append(m.entries, msg.entry)
		if len(m.entries) > maxEntries {
			m.entries = m.entries[len(m.entries)-maxEntries:]
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) evaluate(source, label string) tea.Cmd {
	return func() tea.Msg {
		e := entry{source: source}
		v, err := m.rt.Eval(context.Background(), source, label)
		switch {
		case err != nil:
			e.err = err
		case v.IsUndefined():
			e.result = "undefined"
		default:
			e.result, e.err = v.ToString()
		}
		e.console = strings.TrimRight(m.console.drain(), "\n")
		return evalResultMsg{entry: e}
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("JS Bridge"))
	b.WriteString("\n\n")

	for _, e := range m.entries {
		b.WriteString(promptStyle.Render("> "))
		b.WriteString(e.source)
		b.WriteString("\n")
		if e.console != "" {
			b.WriteString(consoleStyle.Render(e.console))
			b.WriteString("\n")
		}
		if e.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", e.err)))
		} else {
			b.WriteString(resultStyle.Render(e.result))
		}
		b.WriteString("\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	if m.busy {
		b.WriteString(helpStyle.Render("evaluating..."))
	} else {
		b.WriteString(helpStyle.Render("enter eval • ↑/↓ history • esc clear • ctrl+c quit"))
	}

	return b.String()
}

func runInteractive(rt *runtime.Runtime, console *consoleBuffer) error {
	p := tea.NewProgram(newInteractiveModel(rt, console), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
