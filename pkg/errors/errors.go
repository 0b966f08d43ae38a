package errors

import (
	"fmt"
	"net/http"
	"runtime/debug"
)

// Error codes shared by both services. The taxonomy is deliberately small:
// validation problems, identity/ownership problems, and storage problems.
// Upstream model failures never become errors at all; they are converted to a
// fallback reply before reaching a handler.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeNotFound     = "NOT_FOUND"
	CodeStorage      = "STORAGE_ERROR"
	CodeInternal     = "INTERNAL_ERROR"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	Err        error  `json:"-"`
	Stack      string `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is/As chains
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// NewError creates a new application error
func NewError(statusCode int, code string, message string) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		Stack:      string(debug.Stack()),
	}
}

// NewValidationError creates a 400 Bad Request error for malformed or
// oversized input
func NewValidationError(message string) *AppError {
	return NewError(http.StatusBadRequest, CodeValidation, message)
}

// NewUnauthorizedError creates a 401 Unauthorized error
func NewUnauthorizedError(message string) *AppError {
	return NewError(http.StatusUnauthorized, CodeUnauthorized, message)
}

// NewNotFoundError creates a 404 Not Found error; also used for ownership
// failures so callers cannot probe for other users' pets
func NewNotFoundError(message string) *AppError {
	return NewError(http.StatusNotFound, CodeNotFound, message)
}

// NewStorageError wraps a storage-layer failure as a 500 with a generic
// user-facing message; the underlying error goes to the log, not the client
func NewStorageError(err error, message string) *AppError {
	appErr := NewError(http.StatusInternalServerError, CodeStorage, message)
	appErr.Err = err
	return appErr
}

// NewInternalServerError creates a 500 Internal Server Error
func NewInternalServerError(message string) *AppError {
	return NewError(http.StatusInternalServerError, CodeInternal, message)
}

// FromError converts any error to an AppError
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return &AppError{
		StatusCode: http.StatusInternalServerError,
		Code:       CodeInternal,
		Message:    err.Error(),
	}
}

// Is checks if the target error carries the given code
func Is(err error, code string) bool {
	appErr, ok := err.(*AppError)
	if !ok {
		return false
	}
	return appErr.Code == code
}
