package wizard

import (
	"context"
	"errors"
	"fmt"
)

// ErrCancelled is returned by a Prompter when the operator aborts a prompt.
var ErrCancelled = errors.New("cancelled")

// Validator checks a candidate answer. It returns nil to accept, a
// *ValidationError to show a message and ask again, or any other error to
// abort the prompt.
type Validator func(ctx context.Context, value string) error

// ValidationError rejects an answer with a message for the operator.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Invalid builds a *ValidationError.
func Invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// InputPrompt asks for free text.
type InputPrompt struct {
	Message  string
	Default  string
	Validate Validator
}

// ConfirmPrompt asks a yes/no question.
type ConfirmPrompt struct {
	Message string
	Default bool
}

// Choice is one entry of a SelectPrompt.
type Choice struct {
	Label string
	Value string
}

// SelectPrompt asks the operator to pick exactly one choice.
type SelectPrompt struct {
	Message string
	Choices []Choice
}

// Prompter collects operator decisions. The wizard depends only on these
// three shapes, not on how they are rendered.
type Prompter interface {
	Input(ctx context.Context, p InputPrompt) (string, error)
	Confirm(ctx context.Context, p ConfirmPrompt) (bool, error)
	Select(ctx context.Context, p SelectPrompt) (string, error)
}

// choicesOf builds choices whose label and value are the same string.
func choicesOf(values []string) []Choice {
	choices := make([]Choice, len(values))
	for i, v := range values {
		choices[i] = Choice{Label: v, Value: v}
	}
	return choices
}
