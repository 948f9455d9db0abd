package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// InputModel is the bubbletea model for a free-text prompt. The validator
// runs as a command so the spinner keeps moving during slow checks such as a
// trial connection.
type InputModel struct {
	ctx        context.Context
	prompt     InputPrompt
	input      textinput.Model
	spinner    spinner.Model
	validating bool
	errMsg     string
	value      string
	done       bool
	cancelled  bool
	err        error
}

type validateDoneMsg struct {
	value string
	err   error
}

// NewInputModel creates an input model. An empty answer means the default.
func NewInputModel(ctx context.Context, p InputPrompt) InputModel {
	ti := textinput.New()
	ti.Placeholder = p.Default
	ti.CharLimit = 1024
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return InputModel{ctx: ctx, prompt: p, input: ti, spinner: s}
}

func (m InputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m InputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.done = true
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			if m.validating {
				return m, nil
			}
			return m.submit()
		}
		if m.validating {
			return m, nil // ignore input during validation
		}

	case validateDoneMsg:
		m.validating = false
		var verr *ValidationError
		switch {
		case msg.err == nil:
			m.value = msg.value
			m.done = true
			return m, tea.Quit
		case errors.As(msg.err, &verr):
			m.errMsg = verr.Message
			return m, nil
		default:
			m.err = msg.err
			m.done = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		if m.validating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m InputModel) submit() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	if value == "" {
		value = m.prompt.Default
	}
	m.errMsg = ""

	if m.prompt.Validate == nil {
		if value == "" {
			m.errMsg = "A value is required."
			return m, nil
		}
		m.value = value
		m.done = true
		return m, tea.Quit
	}

	m.validating = true
	validate, ctx := m.prompt.Validate, m.ctx
	return m, tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			return validateDoneMsg{value: value, err: validate(ctx, value)}
		},
	)
}

func (m InputModel) View() string {
	var b strings.Builder

	question := highlightStyle.Render("? ") + boldStyle.Render(m.prompt.Message)
	if m.done {
		switch {
		case m.cancelled:
			b.WriteString(question + " " + dimStyle.Render("(cancelled)") + "\n")
		case m.err != nil:
			b.WriteString(question + " " + errStyle.Render(m.err.Error()) + "\n")
		default:
			b.WriteString(question + " " + valueStyle.Render(m.value) + "\n")
		}
		return b.String()
	}

	b.WriteString(question + "\n")
	b.WriteString("  " + m.input.View() + "\n")

	switch {
	case m.validating:
		b.WriteString(fmt.Sprintf("  %s Checking...\n", m.spinner.View()))
	case m.errMsg != "":
		b.WriteString(errStyle.Render("  > "+m.errMsg) + "\n")
	default:
		b.WriteString(dimStyle.Render("  enter to accept • esc to cancel") + "\n")
	}

	return b.String()
}

// Value returns the accepted answer.
func (m InputModel) Value() string {
	return m.value
}

// Done returns true if the model has finished (answered, cancelled or failed).
func (m InputModel) Done() bool {
	return m.done
}

// Cancelled returns true if the operator cancelled.
func (m InputModel) Cancelled() bool {
	return m.cancelled
}

// Err returns the error that aborted validation, if any.
func (m InputModel) Err() error {
	return m.err
}
