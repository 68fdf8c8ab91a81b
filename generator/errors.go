package generator

import (
	"errors"
	"fmt"
)

// ErrorKind classifies generation failures.
type ErrorKind string

const (
	// KindMissingCredential means the service is not configured. Not retryable.
	KindMissingCredential ErrorKind = "missing_credential"
	// KindUpstreamFailure covers transport errors and error responses.
	KindUpstreamFailure ErrorKind = "upstream_failure"
	// KindEmptyResult is a successful call that produced no payload.
	KindEmptyResult ErrorKind = "empty_result"
	// KindInvalidInput is raised before any remote call is made.
	KindInvalidInput ErrorKind = "invalid_input"
)

// ErrMissingCredential is wrapped by every call made without an API key.
var ErrMissingCredential = errors.New("openai api key missing")

// Error is returned by the adapter for every failed call.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the kind of a generation error. Errors that did not come
// from this package are reported as upstream failures.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	if errors.Is(err, ErrMissingCredential) {
		return KindMissingCredential
	}
	return KindUpstreamFailure
}

func newError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}
