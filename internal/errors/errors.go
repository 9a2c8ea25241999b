// Package errors defines the client-side error taxonomy.
//
// Every user action converts its failure into one of these codes so the UI
// layer can decide between inline messages, redirects and generic alerts
// without inspecting transport details.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeValidation indicates local input validation failed.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeUnauthorized indicates the server answered 401.
	ErrCodeUnauthorized ErrorCode = "unauthorized"
	// ErrCodeRejected indicates a semantic rejection (422) with a server-provided detail.
	ErrCodeRejected ErrorCode = "rejected"
	// ErrCodeNetwork indicates the request never produced an HTTP response.
	ErrCodeNetwork ErrorCode = "network"
	// ErrCodeTimeout indicates a deadline elapsed.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeFailed indicates a generic processing failure.
	ErrCodeFailed ErrorCode = "failed"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeBusy indicates another operation is already in flight.
	ErrCodeBusy ErrorCode = "busy"
)

// AppError represents a structured application error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Field is the specific field that caused the error (optional, for validation errors)
	Field string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// ValidationField creates a new Validation error for a specific field.
func ValidationField(field, message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message, Field: field}
}

// Unauthorized creates a new Unauthorized error.
func Unauthorized(message string) *AppError {
	return &AppError{Code: ErrCodeUnauthorized, Message: message}
}

// Rejected creates a new Rejected error carrying the server detail verbatim.
func Rejected(detail string) *AppError {
	return &AppError{Code: ErrCodeRejected, Message: detail}
}

// Failed creates a new Failed error.
func Failed(message string) *AppError {
	return &AppError{Code: ErrCodeFailed, Message: message}
}

// Failedf creates a new Failed error with formatted message.
func Failedf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeFailed, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf creates a new NotFound error with formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Busy creates a new Busy error.
func Busy(message string) *AppError {
	return &AppError{Code: ErrCodeBusy, Message: message}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	if err == nil {
		return nil
	}
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool { return isCode(err, ErrCodeValidation) }

// IsUnauthorized checks if an error is an Unauthorized error.
func IsUnauthorized(err error) bool { return isCode(err, ErrCodeUnauthorized) }

// IsRejected checks if an error is a Rejected error.
func IsRejected(err error) bool { return isCode(err, ErrCodeRejected) }

// IsNetwork checks if an error is a Network error.
func IsNetwork(err error) bool { return isCode(err, ErrCodeNetwork) }

// IsTimeout checks if an error is a Timeout error.
func IsTimeout(err error) bool { return isCode(err, ErrCodeTimeout) }

// IsCanceled checks if an error is a Canceled error.
func IsCanceled(err error) bool { return isCode(err, ErrCodeCanceled) }

// IsBusy checks if an error is a Busy error.
func IsBusy(err error) bool { return isCode(err, ErrCodeBusy) }

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetField returns the Field from an error, or empty string if not an AppError or no field set.
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}

// UserMessage returns the message of the outermost AppError in err's chain,
// falling back to err.Error() for foreign errors.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return err.Error()
}
