package analysis

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure.
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindValidation    Kind = "validation"
	KindIngestion     Kind = "ingestion"
	KindTransport     Kind = "transport"
	KindParse         Kind = "parse"
	KindIdentity      Kind = "identity"
)

const (
	ValidationMessage    = "Please provide both a resume and a job description."
	NotConfiguredMessage = "Analysis API key is not configured."
	FailedMessage        = "Analysis failed. Please try again."
)

var (
	ErrValidation    = errors.New("resume and job description are required")
	ErrNotConfigured = errors.New("analysis api key not configured")
	ErrTransport     = errors.New("analysis transport failed")
	ErrParse         = errors.New("analysis output invalid")
)

// Error is a classified analysis failure with a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// AsError returns the classified error, treating anything unknown as a parse failure.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var aerr *Error
	if errors.As(err, &aerr) {
		return aerr
	}
	return newError(KindParse, FailedMessage, err)
}
