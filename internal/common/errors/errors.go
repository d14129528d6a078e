// Package errors provides standardized error handling for the matching service.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Lookup errors. Absence of a brand/event at the batch boundary is NOT
	// reported with these: batch endpoints return an empty-matches shape.
	ErrCodeBrandNotFound ErrorCode = "BRAND_NOT_FOUND"
	ErrCodeEventNotFound ErrorCode = "EVENT_NOT_FOUND"
	ErrCodeCityNotFound  ErrorCode = "CITY_NOT_FOUND"

	// Configuration errors, recovered locally by falling back to defaults.
	ErrCodeWeightSetMissing ErrorCode = "WEIGHT_SET_MISSING"
	ErrCodeRuleSetMissing   ErrorCode = "RULE_SET_MISSING"

	// Collaborator failures, retryable.
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeCacheUnavailable         ErrorCode = "CACHE_UNAVAILABLE"

	// Request validation.
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// New creates a StandardError with the given code and message.
func New(code ErrorCode, message string) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// Wrap creates a StandardError carrying an underlying error as details.
func Wrap(code ErrorCode, message string, cause error) *StandardError {
	e := New(code, message)
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// WithRetryable marks the error retryable and returns it.
func (e *StandardError) WithRetryable() *StandardError {
	e.Retryable = true
	return e
}

// WithMetadata attaches a metadata key/value and returns the error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// NewQueryFailedError creates a retryable store-query error.
func NewQueryFailedError(query string, cause error) *StandardError {
	return Wrap(ErrCodeQueryExecutionFailed, "query execution failed", cause).
		WithRetryable().
		WithMetadata("query", query)
}

// NewValidationError creates a non-retryable request validation error.
func NewValidationError(details string) *StandardError {
	e := New(ErrCodeValidationFailed, "request validation failed")
	e.Details = details
	return e
}

// CodeOf extracts the ErrorCode from an error chain, or "" when the chain
// contains no StandardError.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsRetryable reports whether the error chain contains a retryable
// StandardError.
func IsRetryable(err error) bool {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}
