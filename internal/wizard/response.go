package wizard

import (
	"errors"
	"fmt"
)

// Status is the outcome tag every step returns.
type Status int

// The zero Status is invalid, so an unset Response is rejected by the sequencer.
const (
	StatusOngoing Status = iota + 1
	StatusCompleted
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOngoing:
		return "ongoing"
	case StatusCompleted:
		return "completed"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// ErrUnsupportedStatus is returned when a step hands back a Response whose
// status is not one of the three known values.
var ErrUnsupportedStatus = errors.New("unsupported status")

// Response is the envelope a step returns. Payload is only meaningful for
// StatusOngoing, where it becomes the input of the next step.
type Response struct {
	Status  Status
	Message string
	Payload string
}

// Ongoing lets the pipeline continue with payload.
func Ongoing(message, payload string) Response {
	return Response{Status: StatusOngoing, Message: message, Payload: payload}
}

// Completed ends the pipeline successfully.
func Completed(message string) Response {
	return Response{Status: StatusCompleted, Message: message}
}

// Failed ends the pipeline with an error.
func Failed(message string) Response {
	return Response{Status: StatusError, Message: message}
}

// Outcome is the terminal result of a wizard run.
type Outcome struct {
	Status  Status
	Message string
	Step    string // step that ended the run
}

// ExitCode maps the outcome to the process exit code.
func (o Outcome) ExitCode() int {
	if o.Status == StatusCompleted {
		return 0
	}
	return 1
}
