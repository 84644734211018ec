// Package errors provides the error taxonomy of the oswald runtime.
// Every failure raised by the container, the dispatcher and the value objects
// is an *AppError carrying a machine-readable code, an HTTP status for the
// transport layer, and structured details.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// HasCode reports whether err, or any error it wraps, is an AppError with code.
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// --- Container errors ---

// NotRegistered creates an error for a key with no registered factory.
func NotRegistered(key string) *AppError {
	return &AppError{
		Code: ErrCodeNotRegistered, Message: fmt.Sprintf("No registration found for %s.", key),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"key": key},
	}
}

// CircularDependency creates an error for a resolution that re-entered key.
// chain is the list of keys being resolved, in acquisition order.
func CircularDependency(chain []string, key string) *AppError {
	path := make([]string, 0, len(chain)+1)
	path = append(path, chain...)
	path = append(path, key)
	return &AppError{
		Code: ErrCodeCircularDependency,
		Message: fmt.Sprintf("Circular dependency detected: %s. Ensure that none of your dependencies are calling each other.",
			strings.Join(path, " -> ")),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"chain": path[:len(chain)], "key": key},
	}
}

// InvalidDescriptor creates an error for a descriptor that cannot be registered.
func InvalidDescriptor(key, reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidDescriptor, Message: fmt.Sprintf("Invalid descriptor %q: %s", key, reason),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"key": key},
	}
}

// ConstructionFailed wraps an error returned by the constructor of key.
func ConstructionFailed(key string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeConstructionFailed, Message: fmt.Sprintf("Failed to construct %s.", key),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"key": key}, Cause: cause,
	}
}

// TypeMismatch creates an error for a value of the wrong Go type.
func TypeMismatch(subject string, got, want any) *AppError {
	return &AppError{
		Code: ErrCodeTypeMismatch, Message: fmt.Sprintf("%s is %T, expected %T", subject, got, want),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"subject": subject},
	}
}

// --- Dispatch errors ---

// HandlerNotFound creates an error for a request type with no registered feature.
func HandlerNotFound(requestType string) *AppError {
	return &AppError{
		Code: ErrCodeHandlerNotFound, Message: fmt.Sprintf("Handler for %s not found", requestType),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"request_type": requestType},
	}
}

// InvalidFeature creates an error for a value that was not declared as a feature.
func InvalidFeature(typeName string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidFeature,
		Message: fmt.Sprintf("Invalid feature. Declare it with feature.Command or feature.Query. %s",
			typeName),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"type": typeName},
	}
}

// --- Input errors ---

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"field": field},
	}
}

// Internal creates a new AppError for an internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}
