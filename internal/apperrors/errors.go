// Package apperrors defines the error taxonomy shared by every core
// operation. Callers classify failures with errors.Is against the sentinel
// kinds; only Internal indicates a retryable infrastructure fault.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind sentinels. Error values produced by this package match exactly one of
// these under errors.Is.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrInternal     = errors.New("internal error")
)

// Error carries a kind sentinel plus a human-readable message and an optional
// wrapped cause.
type Error struct {
	kind error
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *Error) Unwrap() error {
	if e.err != nil {
		return e.err
	}
	return e.kind
}

func (e *Error) Is(target error) bool {
	return target == e.kind
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Validation reports malformed or out-of-range input. Not retryable.
func Validation(format string, args ...any) error {
	return newError(ErrValidation, format, args...)
}

// NotFound reports an absent referenced entity.
func NotFound(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

// InvalidState reports an operation that is not valid for the current
// lifecycle or ownership state, including stale trades and double
// initialization.
func InvalidState(format string, args ...any) error {
	return newError(ErrInvalidState, format, args...)
}

// Duplicate reports a uniqueness violation.
func Duplicate(format string, args ...any) error {
	return newError(ErrDuplicate, format, args...)
}

// Internal wraps a persistence or infrastructure failure. Safe to retry.
func Internal(msg string, err error) error {
	return &Error{kind: ErrInternal, msg: msg, err: err}
}

// Retryable reports whether err is eligible for automatic retry by a caller.
func Retryable(err error) bool {
	return errors.Is(err, ErrInternal)
}
