// Package apperr defines the error taxonomy shared by all record-store and
// engine operations. Every operation either succeeds or returns an error
// classified by one of these kinds; the gateway maps kinds to HTTP statuses.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the caller.
type Kind int

const (
	// KindInternal is the zero value: an unclassified failure (store
	// unavailable, decode error). Propagated unchanged, never retried.
	KindInternal Kind = iota

	// KindNotFound means a referenced student, course, or grade record
	// does not exist.
	KindNotFound

	// KindForbidden means the instructor does not teach the referenced
	// course.
	KindForbidden

	// KindValidation means the caller-supplied data is structurally
	// invalid for the operation.
	KindValidation

	// KindInvalidState means preconditions are unmet on otherwise-valid
	// data, e.g. a student with no assigned semester.
	KindInvalidState
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation"
	case KindInvalidState:
		return "invalid_state"
	default:
		return "internal"
	}
}

// Error carries a kind, a caller-visible message, and an optional wrapped
// cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a classified error with a formatted message.
func New(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error without losing it.
func Wrap(kind Kind, err error, message string) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// NotFound is shorthand for New(KindNotFound, ...).
func NotFound(format string, args ...interface{}) error {
	return New(KindNotFound, format, args...)
}

// Forbidden is shorthand for New(KindForbidden, ...).
func Forbidden(format string, args ...interface{}) error {
	return New(KindForbidden, format, args...)
}

// Validation is shorthand for New(KindValidation, ...).
func Validation(format string, args ...interface{}) error {
	return New(KindValidation, format, args...)
}

// InvalidState is shorthand for New(KindInvalidState, ...).
func InvalidState(format string, args ...interface{}) error {
	return New(KindInvalidState, format, args...)
}

// Internal wraps an unexpected failure.
func Internal(err error, message string) error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf extracts the kind from an error chain. Unclassified errors report
// KindInternal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// IsNotFound reports whether err is classified NotFound.
func IsNotFound(err error) bool { return err != nil && KindOf(err) == KindNotFound }

// MessageOf returns the caller-visible message, or the full error text for
// unclassified errors.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
