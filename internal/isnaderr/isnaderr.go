// Package isnaderr defines the error kinds shared across the workspace
// and signaling components, so CLI and HTTP boundaries can map an error
// to an exit code or status code without string matching.
package isnaderr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the purposes of exit-code/status-code mapping.
type Kind int

const (
	// KindInvalidInput marks validation failures: bad task id, bad enum,
	// bad JSON object, oversized frame. Never retried.
	KindInvalidInput Kind = iota
	// KindNotFound marks a queried session or file that does not exist.
	KindNotFound
	// KindCapacityExceeded marks server-busy/session-full/size/rate caps.
	KindCapacityExceeded
	// KindIoError marks filesystem errors from log operations.
	KindIoError
	// KindTransient marks a broadcast enqueue failure to one subscriber;
	// callers handle this by dropping the subscriber, never by surfacing it.
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindCapacityExceeded:
		return "capacity_exceeded"
	case KindIoError:
		return "io_error"
	case KindTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// Error wraps an underlying error with a Kind.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error with no wrapped cause.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds an *Error around an existing cause.
func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Invalid is a convenience constructor for KindInvalidInput.
func Invalid(format string, args ...any) error {
	return New(KindInvalidInput, fmt.Sprintf(format, args...))
}

// NotFound is a convenience constructor for KindNotFound.
func NotFound(format string, args ...any) error {
	return New(KindNotFound, fmt.Sprintf(format, args...))
}

// CapacityExceeded is a convenience constructor for KindCapacityExceeded.
func CapacityExceeded(format string, args ...any) error {
	return New(KindCapacityExceeded, fmt.Sprintf(format, args...))
}

// IO wraps a filesystem error as KindIoError.
func IO(msg string, err error) error {
	return Wrap(KindIoError, msg, err)
}
