package wizard

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ConfirmModel is the bubbletea model for a yes/no prompt.
type ConfirmModel struct {
	prompt    ConfirmPrompt
	answer    bool
	done      bool
	cancelled bool
}

// NewConfirmModel creates a confirm model. Enter accepts the default.
func NewConfirmModel(p ConfirmPrompt) ConfirmModel {
	return ConfirmModel{prompt: p}
}

func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "esc":
		m.done = true
		m.cancelled = true
		return m, tea.Quit
	case "y", "Y":
		m.answer = true
	case "n", "N":
		m.answer = false
	case "enter":
		m.answer = m.prompt.Default
	default:
		return m, nil
	}

	m.done = true
	return m, tea.Quit
}

func (m ConfirmModel) View() string {
	var b strings.Builder

	b.WriteString(highlightStyle.Render("? ") + boldStyle.Render(m.prompt.Message) + " ")

	switch {
	case m.cancelled:
		b.WriteString(dimStyle.Render("(cancelled)"))
	case m.done && m.answer:
		b.WriteString(valueStyle.Render("Yes"))
	case m.done:
		b.WriteString(valueStyle.Render("No"))
	case m.prompt.Default:
		b.WriteString(dimStyle.Render("(Y/n)"))
	default:
		b.WriteString(dimStyle.Render("(y/N)"))
	}

	b.WriteString("\n")
	return b.String()
}

// Answer returns the operator's answer.
func (m ConfirmModel) Answer() bool {
	return m.answer
}

// Done returns true if the model has finished.
func (m ConfirmModel) Done() bool {
	return m.done
}

// Cancelled returns true if the operator cancelled.
func (m ConfirmModel) Cancelled() bool {
	return m.cancelled
}
