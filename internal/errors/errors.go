// Package errors provides the application error type shared by every layer.
// Infrastructure failures are wrapped into an AppError so the HTTP surface can
// map them to a status code without knowing where they came from.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType defines the category of an error.
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "VALIDATION"
	ErrorTypeNotFound    ErrorType = "NOT_FOUND"
	ErrorTypeConflict    ErrorType = "CONFLICT"
	ErrorTypeInternal    ErrorType = "INTERNAL"
	ErrorTypeExternal    ErrorType = "EXTERNAL"
	ErrorTypeUnavailable ErrorType = "UNAVAILABLE"
)

// AppError is the custom error type for the application.
type AppError struct {
	Type    ErrorType `json:"type"`
	Code    ErrorCode `json:"code,omitempty"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to see the cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode attaches a specific error code.
func (e *AppError) WithCode(code ErrorCode) *AppError {
	e.Code = code
	return e
}

// NewValidation creates a validation error.
func NewValidation(message string) *AppError {
	return &AppError{Type: ErrorTypeValidation, Code: CodeInvalidInput, Message: message}
}

// NewNotFound creates a not found error.
func NewNotFound(message string) *AppError {
	return &AppError{Type: ErrorTypeNotFound, Message: message}
}

// NewConflict creates a conflict error.
func NewConflict(message string) *AppError {
	return &AppError{Type: ErrorTypeConflict, Message: message}
}

// NewInternal creates an internal error.
func NewInternal(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeInternal, Code: CodeInternalError, Message: message, Cause: err}
}

// NewExternal creates an error for a failed call to an external service.
func NewExternal(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeExternal, Code: CodeExternalServiceError, Message: message, Cause: err}
}

// NewUnavailable creates an error for a dependency that refuses work.
func NewUnavailable(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeUnavailable, Code: CodeServiceUnavailable, Message: message, Cause: err}
}

// Wrap adds context to err while preserving the type of an AppError.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Type:    appErr.Type,
			Code:    appErr.Code,
			Message: fmt.Sprintf("%s: %s", message, appErr.Message),
			Cause:   appErr.Cause,
		}
	}
	return NewInternal(message, err)
}

// TypeOf returns the type of the first AppError in err's chain, or INTERNAL.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool { return is(err, ErrorTypeValidation) }

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool { return is(err, ErrorTypeNotFound) }

// IsExternal checks if an error came from an external service.
func IsExternal(err error) bool { return is(err, ErrorTypeExternal) }

// IsUnavailable checks if a dependency refused work.
func IsUnavailable(err error) bool { return is(err, ErrorTypeUnavailable) }

func is(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	switch TypeOf(err) {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeConflict:
		return http.StatusConflict
	case ErrorTypeExternal:
		return http.StatusBadGateway
	case ErrorTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// As is errors.As, re-exported so callers need only this package.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is is errors.Is, re-exported so callers need only this package.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
