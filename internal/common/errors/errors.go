// Package errors provides standardized error handling for the CSV chat service.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Kind groups error codes into the two families the API surfaces.
type Kind string

const (
	KindLoad   Kind = "LoadError"
	KindEngine Kind = "EngineError"
)

// Data loading errors.
const (
	ErrCodeFileNotFound   ErrorCode = "FILE_NOT_FOUND"
	ErrCodeFileUnreadable ErrorCode = "FILE_UNREADABLE"
	ErrCodeEmptyInput     ErrorCode = "EMPTY_INPUT"
	ErrCodeMalformedCSV   ErrorCode = "MALFORMED_CSV"
)

// Query front-end and engine errors.
const (
	ErrCodeEmptyQuery        ErrorCode = "EMPTY_QUERY"
	ErrCodeInvalidRequest    ErrorCode = "INVALID_REQUEST"
	ErrCodeEngineAuthFailed  ErrorCode = "ENGINE_AUTH_FAILED"
	ErrCodeEngineRateLimited ErrorCode = "ENGINE_RATE_LIMITED"
	ErrCodeEngineUnavailable ErrorCode = "ENGINE_UNAVAILABLE"
	ErrCodeEngineTimeout     ErrorCode = "ENGINE_TIMEOUT"
	ErrCodeEngineBadAnswer   ErrorCode = "ENGINE_BAD_ANSWER"
)

// Session errors.
const (
	ErrCodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeNoDataset       ErrorCode = "NO_DATASET"
	ErrCodeSessionStore    ErrorCode = "SESSION_STORE_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Kind      Kind                   `json:"kind"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("%s[%s]: %s", e.Kind, e.Code, e.Message)
}

// ==========================
// 2. Kind Helpers
// ==========================

// AsStandard extracts a *StandardError from an error chain, or nil.
func AsStandard(err error) *StandardError {
	var se *StandardError
	if errors.As(err, &se) {
		return se
	}
	return nil
}

// IsLoadError reports whether err belongs to the LoadError family.
func IsLoadError(err error) bool {
	se := AsStandard(err)
	return se != nil && se.Kind == KindLoad
}

// IsEngineError reports whether err belongs to the EngineError family.
func IsEngineError(err error) bool {
	se := AsStandard(err)
	return se != nil && se.Kind == KindEngine
}

// CodeOf returns the error code, or empty when err is not a StandardError.
func CodeOf(err error) ErrorCode {
	if se := AsStandard(err); se != nil {
		return se.Code
	}
	return ""
}

// ==========================
// 3. Error Constructors
// ==========================

// NewFileNotFoundError creates a non-retryable load error for a missing file.
func NewFileNotFoundError(path string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFileNotFound,
		Kind:      KindLoad,
		Message:   "Input file not found",
		Details:   fmt.Sprintf("path: %s", path),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFileUnreadableError creates a non-retryable load error for an unreadable file.
func NewFileUnreadableError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFileUnreadable,
		Kind:      KindLoad,
		Message:   "Input file could not be read",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmptyInputError creates a non-retryable load error for empty input.
func NewEmptyInputError(name string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyInput,
		Kind:      KindLoad,
		Message:   "Input contains no data",
		Details:   fmt.Sprintf("source: %s", name),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedCSVError creates a non-retryable load error for unparseable input.
func NewMalformedCSVError(name string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedCSV,
		Kind:      KindLoad,
		Message:   "Input is not parseable as delimited text",
		Details:   fmt.Sprintf("source: %s, error: %s", name, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmptyQueryError creates a non-retryable error for a blank question.
// Raised before the external engine is invoked.
func NewEmptyQueryError() *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyQuery,
		Kind:      KindEngine,
		Message:   "Query must not be empty",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequestError creates a non-retryable error for a request body
// that could not be decoded.
func NewInvalidRequestError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Kind:      KindEngine,
		Message:   "Request body is not valid JSON",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEngineAuthFailedError creates a non-retryable engine authentication error.
func NewEngineAuthFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEngineAuthFailed,
		Kind:      KindEngine,
		Message:   "Engine API authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEngineRateLimitedError creates a retryable engine rate-limit error.
func NewEngineRateLimitedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEngineRateLimited,
		Kind:      KindEngine,
		Message:   "Engine API rate limit exceeded",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEngineUnavailableError creates a retryable engine transport/server error.
func NewEngineUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEngineUnavailable,
		Kind:      KindEngine,
		Message:   "Engine API request failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEngineTimeoutError creates a retryable engine timeout error.
func NewEngineTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeEngineTimeout,
		Kind:      KindEngine,
		Message:   "Engine API call timed out",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEngineBadAnswerError creates a non-retryable error for an answer the
// engine returned but that failed parsing or envelope validation.
func NewEngineBadAnswerError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEngineBadAnswer,
		Kind:      KindEngine,
		Message:   "Engine returned a malformed answer",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionNotFoundError creates a non-retryable session lookup error.
func NewSessionNotFoundError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Kind:      KindEngine,
		Message:   "Session not found",
		Details:   fmt.Sprintf("sessionId: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoDatasetError creates a non-retryable error for querying before a load.
func NewNoDatasetError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoDataset,
		Kind:      KindEngine,
		Message:   "No dataset loaded for session",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionStoreError creates a retryable session persistence error.
func NewSessionStoreError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStore,
		Kind:      KindEngine,
		Message:   "Session store operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
