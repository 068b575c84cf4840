package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("code=%d, message=%s", e.Code, e.Message)
}

// Common errors
var (
	ErrNotFound       = &AppError{Code: http.StatusNotFound, Message: "Resource not found"}
	ErrBadRequest     = &AppError{Code: http.StatusBadRequest, Message: "Bad request"}
	ErrInternalServer = &AppError{Code: http.StatusInternalServerError, Message: "Internal server error"}
)

// New creates a new AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// WithDetails adds details to an error
func WithDetails(err *AppError, details string) *AppError {
	return &AppError{
		Code:    err.Code,
		Message: err.Message,
		Details: details,
	}
}

// GetStatusCode returns the HTTP status code from an error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// ConfigLoadError indicates that one of the engine's working sets (alert
// history, suppression rules, maintenance windows) could not be loaded from
// the store. Evaluation continues with that set treated as empty.
type ConfigLoadError struct {
	Resource string
	Err      error
}

func (e *ConfigLoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Resource, e.Err)
}

func (e *ConfigLoadError) Unwrap() error { return e.Err }

// EvaluationError indicates a failure inside one specific suppression check,
// most commonly a malformed custom rule condition set. The affected check is
// treated as "did not match" and the pipeline continues.
type EvaluationError struct {
	Check string
	Err   error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("suppression check %s failed: %v", e.Check, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// AuditWriteError indicates that a decision could not be persisted to the
// audit sink. It is logged and never changes the returned decision.
type AuditWriteError struct {
	AlertID string
	Err     error
}

func (e *AuditWriteError) Error() string {
	return fmt.Sprintf("failed to write audit record for alert %s: %v", e.AlertID, e.Err)
}

func (e *AuditWriteError) Unwrap() error { return e.Err }
