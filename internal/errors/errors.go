package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents application-specific error codes
type ErrorCode string

const (
	// Client errors
	ErrCodeInvalidRequest  ErrorCode = "INVALID_REQUEST"
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrCodeTooManyRequests ErrorCode = "TOO_MANY_REQUESTS"

	// Sync outcomes
	ErrCodeConfigurationMissing ErrorCode = "CONFIGURATION_MISSING"
	ErrCodeBranchMismatch       ErrorCode = "BRANCH_MISMATCH"
	ErrCodeUpstreamUnavailable  ErrorCode = "UPSTREAM_UNAVAILABLE"
	ErrCodePlanExecutionFailed  ErrorCode = "PLAN_EXECUTION_FAILED"

	// Server errors
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// AppError represents an application error with additional context
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"-"`
	Err        error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// IsRejection reports whether the error is an expected steady-state outcome
// rather than a failure
func (e *AppError) IsRejection() bool {
	return e.Code == ErrCodeBranchMismatch
}

// New creates a new application error
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: getStatusCodeForError(code),
	}
}

// Wrap wraps an existing error with application context
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: getStatusCodeForError(code),
		Err:        err,
	}
}

// Wrapf wraps an existing error with formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:       code,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: getStatusCodeForError(code),
		Err:        err,
	}
}

// As extracts an AppError from an error chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// getStatusCodeForError maps error codes to HTTP status codes
func getStatusCodeForError(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeTooManyRequests:
		return http.StatusTooManyRequests
	case ErrCodeBranchMismatch:
		return http.StatusOK
	case ErrCodeUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodePlanExecutionFailed:
		return http.StatusBadGateway
	case ErrCodeConfigurationMissing, ErrCodeInternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Common error constructors for convenience

// InvalidRequest creates an invalid request error
func InvalidRequest(message string) *AppError {
	return New(ErrCodeInvalidRequest, message)
}

// Unauthorized creates an authentication failure
func Unauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, message)
}

// ConfigurationMissing creates an error naming the missing setting
func ConfigurationMissing(setting string) *AppError {
	return New(ErrCodeConfigurationMissing, fmt.Sprintf("%s not set", setting))
}

// BranchMismatch creates the rejection for a push to a branch that is not synced
func BranchMismatch(author, pushed, expected string) *AppError {
	return New(ErrCodeBranchMismatch, fmt.Sprintf(
		"%s wrong branch! You committed to %s. Only accepting commits to %s branch.", author, pushed, expected))
}

// UpstreamUnavailable creates an error for a failed destination health check
func UpstreamUnavailable(err error) *AppError {
	return Wrap(err, ErrCodeUpstreamUnavailable, "Failed to connect to API")
}

// PlanExecutionFailed creates an error for an aborted sync plan
func PlanExecutionFailed(err error) *AppError {
	return Wrap(err, ErrCodePlanExecutionFailed, "Failed to apply changes to API")
}

// InternalError creates an internal server error
func InternalError(err error) *AppError {
	return Wrap(err, ErrCodeInternalError, "Internal server error")
}
