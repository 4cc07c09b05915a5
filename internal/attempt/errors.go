package attempt

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of terminal attempt failures. None of these
// are retried: each reflects either a data problem the user must re-record
// or an environment problem that needs operator action.
type ErrorKind string

const (
	FullBodyNotVisible   ErrorKind = "full_body_not_visible"
	InsufficientMovement ErrorKind = "insufficient_movement"
	ExerciseMismatch     ErrorKind = "exercise_mismatch"
	ModelLoadFailure     ErrorKind = "model_load_failure"
	ChannelUnavailable   ErrorKind = "channel_unavailable"
)

// Error is a terminal attempt failure carrying its kind for the API layer
// and an underlying cause when one exists.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// KindOf extracts the ErrorKind from err, or "" when err is not an
// attempt Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
