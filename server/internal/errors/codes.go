// Package errors defines the coded errors surfaced to chat and HTTP clients.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a specific error type.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeParseFailed indicates a message or time phrase could not be understood.
	ErrCodeParseFailed ErrorCode = "PARSE_FAILED"
	// ErrCodeCalendarUnavailable indicates the calendar backend could not be read.
	ErrCodeCalendarUnavailable ErrorCode = "CALENDAR_UNAVAILABLE"
	// ErrCodeCalendarWriteFailed indicates an event could not be created.
	ErrCodeCalendarWriteFailed ErrorCode = "CALENDAR_WRITE_FAILED"
	// ErrCodeScheduleConflict indicates a batch was aborted because of conflicts.
	ErrCodeScheduleConflict ErrorCode = "SCHEDULE_CONFLICT"
	// ErrCodeRateLimitExceeded indicates rate limit has been exceeded.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeLLMUnavailable indicates the LLM service is not available.
	ErrCodeLLMUnavailable ErrorCode = "LLM_UNAVAILABLE"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// AppError represents a structured error with a code for clients.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithContextMap adds multiple context values to the error.
func (e *AppError) WithContextMap(ctx map[string]interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	for k, v := range ctx {
		e.Context[k] = v
	}
	return e
}

// GetCode returns the error code.
func (e *AppError) GetCode() ErrorCode {
	return e.Code
}

// Convenience constructors for common error types.

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *AppError {
	return &AppError{Code: ErrCodeInvalidArgument, Message: msg}
}

// ParseFailed creates a parse failure error.
func ParseFailed(msg string, cause error) *AppError {
	return &AppError{Code: ErrCodeParseFailed, Message: msg, Cause: cause}
}

// CalendarUnavailable creates a calendar read failure error.
func CalendarUnavailable(cause error) *AppError {
	return &AppError{Code: ErrCodeCalendarUnavailable, Message: "calendar unavailable", Cause: cause}
}

// CalendarWriteFailed creates a calendar write failure error for the given stage.
func CalendarWriteFailed(stage string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeCalendarWriteFailed,
		Message: fmt.Sprintf("failed to %s", stage),
		Cause:   cause,
	}
}

// ScheduleConflict creates a conflict error.
func ScheduleConflict(msg string) *AppError {
	return &AppError{Code: ErrCodeScheduleConflict, Message: msg}
}

// RateLimitExceeded creates a rate limit exceeded error.
func RateLimitExceeded(msg string) *AppError {
	return &AppError{Code: ErrCodeRateLimitExceeded, Message: msg}
}

// LLMUnavailable creates an LLM unavailable error.
func LLMUnavailable(msg string, cause error) *AppError {
	return &AppError{Code: ErrCodeLLMUnavailable, Message: msg, Cause: cause}
}

// Timeout creates a timeout error.
func Timeout(msg string) *AppError {
	return &AppError{Code: ErrCodeTimeout, Message: msg}
}

// Wrap wraps an existing error with additional context.
func Wrap(cause error, code ErrorCode, msg string) *AppError {
	return &AppError{Code: code, Message: msg, Cause: cause}
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error does not wrap an AppError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return defaultCode
}

// HTTPStatus maps a code to the status the API answers with.
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case ErrCodeInvalidArgument, ErrCodeParseFailed:
		return http.StatusBadRequest
	case ErrCodeScheduleConflict:
		return http.StatusConflict
	case ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case ErrCodeCalendarUnavailable, ErrCodeLLMUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeCalendarWriteFailed:
		return http.StatusBadGateway
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
