package analysis

import "errors"

// ErrorKind classifies why a cycle ended without a result
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"
	KindSubmission     ErrorKind = "submission"
	KindPollTransport  ErrorKind = "poll_transport"
	KindAnalysisFailed ErrorKind = "analysis_failed"
	KindTimedOut       ErrorKind = "timed_out"
)

// ErrBusy is returned when a submission is attempted while a cycle is in flight
var ErrBusy = errors.New("an analysis is already in progress")

// Error is the terminal error of a cycle. Message is exactly what the user sees.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an *Error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae != nil && ae.Kind == kind
}
