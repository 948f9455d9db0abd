package wizard

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// SelectModel is the bubbletea model for a single-choice list. Choices are
// numbered and can be picked with the arrow keys or by typing their number.
type SelectModel struct {
	prompt    SelectPrompt
	cursor    int
	typed     string
	chosen    *Choice
	done      bool
	cancelled bool
}

// NewSelectModel creates a select model with the cursor on the first choice.
func NewSelectModel(p SelectPrompt) SelectModel {
	return SelectModel{prompt: p}
}

func (m SelectModel) Init() tea.Cmd {
	return nil
}

func (m SelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "esc":
		m.done = true
		m.cancelled = true
		return m, tea.Quit
	case "up", "k":
		m.typed = ""
		m.moveCursor(-1)
	case "down", "j":
		m.typed = ""
		m.moveCursor(1)
	case "backspace":
		if m.typed != "" {
			m.typed = m.typed[:len(m.typed)-1]
			m.jumpToTyped()
		}
	case "enter":
		if len(m.prompt.Choices) == 0 {
			return m, nil
		}
		c := m.prompt.Choices[m.cursor]
		m.chosen = &c
		m.done = true
		return m, tea.Quit
	default:
		s := key.String()
		if len(s) == 1 && s[0] >= '0' && s[0] <= '9' {
			m.typed += s
			m.jumpToTyped()
		}
	}
	return m, nil
}

func (m *SelectModel) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if last := len(m.prompt.Choices) - 1; m.cursor > last {
		m.cursor = last
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// jumpToTyped moves the cursor to the choice numbered by the typed digits.
// Numbers out of range leave the cursor where it is.
func (m *SelectModel) jumpToTyped() {
	var n int
	if _, err := fmt.Sscanf(m.typed, "%d", &n); err != nil {
		return
	}
	if n >= 1 && n <= len(m.prompt.Choices) {
		m.cursor = n - 1
	}
}

func (m SelectModel) View() string {
	var b strings.Builder

	question := highlightStyle.Render("? ") + boldStyle.Render(m.prompt.Message)
	if m.done {
		switch {
		case m.cancelled:
			b.WriteString(question + " " + dimStyle.Render("(cancelled)") + "\n")
		case m.chosen != nil:
			b.WriteString(question + " " + valueStyle.Render(m.chosen.Label) + "\n")
		}
		return b.String()
	}

	b.WriteString(question + "\n")
	for i, c := range m.prompt.Choices {
		line := fmt.Sprintf("%2d) %s", i+1, c.Label)
		if i == m.cursor {
			b.WriteString(highlightStyle.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	b.WriteString(dimStyle.Render("  ↑/↓ or number to choose • enter to select • esc to cancel") + "\n")

	return b.String()
}

// Selected returns the chosen value, or "" if nothing was chosen.
func (m SelectModel) Selected() string {
	if m.chosen == nil {
		return ""
	}
	return m.chosen.Value
}

// Done returns true if the model has finished.
func (m SelectModel) Done() bool {
	return m.done
}

// Cancelled returns true if the operator cancelled.
func (m SelectModel) Cancelled() bool {
	return m.cancelled
}
