package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hanapp-ph/hanapp-backend/internal/storage"
)

// Error is a service failure carrying the HTTP status it maps to
type Error struct {
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(code int, err error, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

func BadRequest(format string, args ...interface{}) *Error {
	return newError(http.StatusBadRequest, nil, format, args...)
}

func Unauthorized(format string, args ...interface{}) *Error {
	return newError(http.StatusUnauthorized, nil, format, args...)
}

func Forbidden(format string, args ...interface{}) *Error {
	return newError(http.StatusForbidden, nil, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return newError(http.StatusNotFound, nil, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return newError(http.StatusConflict, nil, format, args...)
}

func TooManyRequests(format string, args ...interface{}) *Error {
	return newError(http.StatusTooManyRequests, nil, format, args...)
}

// Internal wraps an upstream failure. The cause is logged by the error handler, not returned.
func Internal(err error, format string, args ...interface{}) *Error {
	return newError(http.StatusInternalServerError, err, format, args...)
}

// storeError translates storage sentinels, naming the entity in the message
func storeError(err error, entity string) *Error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return NotFound("%s not found", entity)
	case errors.Is(err, storage.ErrDuplicate):
		return Conflict("%s already exists", entity)
	default:
		return Internal(err, "failed to access %s", entity)
	}
}

// StatusOf returns the HTTP status for err, 500 for anything unrecognized
func StatusOf(err error) int {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return http.StatusInternalServerError
}

// StatusCode lets middleware read the status without importing this package
func (e *Error) StatusCode() int { return e.Code }
