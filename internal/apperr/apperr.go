// Package apperr classifies commission workflow failures and maps them to
// HTTP status codes.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrIntegrityMismatch   = errors.New("integrity mismatch")
	ErrUnresolvableContext = errors.New("unresolvable transaction context")
	ErrPersistence         = errors.New("persistence failure")
	ErrNotFound            = errors.New("not found")
)

// Error is a classified failure carrying the status it should be answered with.
type Error struct {
	kind    error
	status  int
	message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}
	return e.message
}

// Message is the client-facing text.
func (e *Error) Message() string {
	return e.message
}

func (e *Error) Status() int {
	return e.status
}

func (e *Error) Unwrap() []error {
	if e.err != nil {
		return []error{e.kind, e.err}
	}
	return []error{e.kind}
}

// Validation reports caller-supplied data that is missing or malformed.
func Validation(format string, args ...any) *Error {
	return &Error{kind: ErrValidation, status: http.StatusBadRequest, message: fmt.Sprintf(format, args...)}
}

// IntegrityMismatch reports ids that do not line up with the request items.
func IntegrityMismatch(format string, args ...any) *Error {
	return &Error{kind: ErrIntegrityMismatch, status: http.StatusBadRequest, message: fmt.Sprintf(format, args...)}
}

// UnresolvableContext reports a missing upstream result. status is 400 when the
// caller could have caused it and 500 when it can only be a wiring bug.
func UnresolvableContext(status int, message string) *Error {
	return &Error{kind: ErrUnresolvableContext, status: status, message: message}
}

// Persistence wraps a store error. The message exposes the cause.
func Persistence(err error) *Error {
	return &Error{kind: ErrPersistence, status: http.StatusInternalServerError, message: err.Error(), err: err}
}

// NotFound reports a missing upstream entity.
func NotFound(format string, args ...any) *Error {
	return &Error{kind: ErrNotFound, status: http.StatusNotFound, message: fmt.Sprintf(format, args...)}
}

func Kind(err error) string {
	switch {
	case err == nil:
		return ""

	case errors.Is(err, ErrValidation):
		return "validation_error"

	case errors.Is(err, ErrIntegrityMismatch):
		return "integrity_mismatch"

	case errors.Is(err, ErrUnresolvableContext):
		return "unresolvable_context"

	case errors.Is(err, ErrPersistence):
		return "persistence_failure"

	case errors.Is(err, ErrNotFound):
		return "not_found"

	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"

	case errors.Is(err, context.Canceled):
		return "canceled"

	default:
		return "internal"
	}
}

func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.status
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout

	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text to put in an error response body.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.message
	}
	return err.Error()
}
