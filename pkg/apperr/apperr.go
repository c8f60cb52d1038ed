// Package apperr defines the domain error kinds surfaced by the service
// layer. Handlers discriminate with errors.Is instead of matching message
// strings.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind sentinels. Services wrap these with context via the constructors
// below; callers test with errors.Is(err, apperr.ErrInsufficientStock) etc.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("invalid state")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrValidation        = errors.New("validation failed")
	ErrDuplicateRequest  = errors.New("duplicate request")
	ErrUnauthorized      = errors.New("unauthorized")
)

// Error pairs a kind sentinel with a descriptive message.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Unwrap exposes the kind so errors.Is matches the sentinel.
func (e *Error) Unwrap() error { return e.kind }

func newf(kind error, format string, args ...interface{}) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return newf(ErrNotFound, format, args...)
}

func InvalidState(format string, args ...interface{}) *Error {
	return newf(ErrInvalidState, format, args...)
}

func InvalidTransition(format string, args ...interface{}) *Error {
	return newf(ErrInvalidTransition, format, args...)
}

func InsufficientStock(format string, args ...interface{}) *Error {
	return newf(ErrInsufficientStock, format, args...)
}

func Validation(format string, args ...interface{}) *Error {
	return newf(ErrValidation, format, args...)
}

func DuplicateRequest(format string, args ...interface{}) *Error {
	return newf(ErrDuplicateRequest, format, args...)
}

func Unauthorized(format string, args ...interface{}) *Error {
	return newf(ErrUnauthorized, format, args...)
}

// StatusCode maps a domain error to its HTTP status. Unrecognized errors
// are treated as internal.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrDuplicateRequest):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
