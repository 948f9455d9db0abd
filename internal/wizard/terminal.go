package wizard

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// TerminalPrompter renders each prompt as a short inline bubbletea program,
// so answered questions stay in the terminal scrollback.
type TerminalPrompter struct {
	in  io.Reader
	out io.Writer
}

// NewTerminalPrompter creates a prompter on the given streams. Nil streams
// mean the process's terminal.
func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{in: in, out: out}
}

func (t *TerminalPrompter) run(ctx context.Context, m tea.Model) (tea.Model, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if t.in != nil {
		opts = append(opts, tea.WithInput(t.in))
	}
	if t.out != nil {
		opts = append(opts, tea.WithOutput(t.out))
	}

	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("running prompt: %w", err)
	}
	return final, nil
}

func (t *TerminalPrompter) Input(ctx context.Context, p InputPrompt) (string, error) {
	final, err := t.run(ctx, NewInputModel(ctx, p))
	if err != nil {
		return "", err
	}

	im := final.(InputModel)
	if im.Cancelled() {
		return "", ErrCancelled
	}
	if im.Err() != nil {
		return "", im.Err()
	}
	return im.Value(), nil
}

func (t *TerminalPrompter) Confirm(ctx context.Context, p ConfirmPrompt) (bool, error) {
	final, err := t.run(ctx, NewConfirmModel(p))
	if err != nil {
		return false, err
	}

	cm := final.(ConfirmModel)
	if cm.Cancelled() {
		return false, ErrCancelled
	}
	return cm.Answer(), nil
}

func (t *TerminalPrompter) Select(ctx context.Context, p SelectPrompt) (string, error) {
	if len(p.Choices) == 0 {
		return "", fmt.Errorf("select %q: no choices", p.Message)
	}

	final, err := t.run(ctx, NewSelectModel(p))
	if err != nil {
		return "", err
	}

	sm := final.(SelectModel)
	if sm.Cancelled() {
		return "", ErrCancelled
	}
	return sm.Selected(), nil
}
