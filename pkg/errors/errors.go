package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// ErrNotFound is returned by repositories when a row does not exist.
var ErrNotFound = stderrors.New("record not found")

// ErrDuplicate is returned by repositories on unique constraint violations.
var ErrDuplicate = stderrors.New("duplicate record")

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error code to an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Common error codes
const (
	CodeNotFound ErrorCode = iota + 1000
	CodeBadRequest
	CodeUnauthorized
	CodeForbidden
	CodeInternal
	CodeConflict
)

// Error constructors
func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    CodeBadRequest,
		Message: message,
		Err:     err,
	}
}

func Conflict(message string, err error) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
		Err:     err,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "internal server error",
		Err:     err,
	}
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

func Forbidden(err error) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: "forbidden",
		Err:     err,
	}
}

// IsNotFound reports whether err is, or wraps, a not-found condition.
func IsNotFound(err error) bool {
	if stderrors.Is(err, ErrNotFound) {
		return true
	}
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Code == CodeNotFound
}

// As is errors.As re-exported so callers importing this package under the
// errors name do not need the standard library alias.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// Is is errors.Is re-exported.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// FromLookup converts a repository read error: a missing row becomes a
// NotFound AppError for resource, anything else is wrapped as-is.
func FromLookup(resource string, err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, ErrNotFound) {
		return NotFound(resource, err)
	}
	return fmt.Errorf("failed to get %s: %w", resource, err)
}

// FromWrite converts a repository write error: unique violations become a
// Conflict, a missing row a NotFound, anything else is wrapped with action.
func FromWrite(resource, action string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case stderrors.Is(err, ErrDuplicate):
		return Conflict(fmt.Sprintf("%s already exists", resource), err)
	case stderrors.Is(err, ErrNotFound):
		return NotFound(resource, err)
	}
	return fmt.Errorf("failed to %s %s: %w", action, resource, err)
}
