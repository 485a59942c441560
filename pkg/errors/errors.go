package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Title identification errors
	ErrMissingTitleID ErrorCode = "MISSING_TITLE_ID"

	// Registry errors
	ErrMalformedRegistry ErrorCode = "MALFORMED_REGISTRY"
	ErrRegistryWrite     ErrorCode = "REGISTRY_WRITE"

	// Archive errors
	ErrArchiveParse ErrorCode = "ARCHIVE_PARSE"
	ErrArchiveEmpty ErrorCode = "ARCHIVE_EMPTY"

	// FileSystem errors
	ErrIOFailure ErrorCode = "IO_FAILURE"
	ErrDirCreate ErrorCode = "DIR_CREATE"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
)

// TitlesyncError represents a structured error with code and details
type TitlesyncError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *TitlesyncError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *TitlesyncError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface, matching on the error code
func (e *TitlesyncError) Is(target error) bool {
	var targetErr *TitlesyncError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// WithDetail adds a detail to the error and returns it for chaining
func (e *TitlesyncError) WithDetail(key string, value interface{}) *TitlesyncError {
	e.Details[key] = value
	return e
}

// New creates a new TitlesyncError with the given code and message
func New(code ErrorCode, message string) *TitlesyncError {
	return &TitlesyncError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new TitlesyncError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *TitlesyncError {
	return &TitlesyncError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a TitlesyncError
func Wrap(err error, code ErrorCode, message string) *TitlesyncError {
	if err == nil {
		return nil
	}
	return &TitlesyncError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *TitlesyncError {
	if err == nil {
		return nil
	}
	return &TitlesyncError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// IsCode reports whether err carries the given error code anywhere in its chain
func IsCode(err error, code ErrorCode) bool {
	var tsErr *TitlesyncError
	for errors.As(err, &tsErr) {
		if tsErr.Code == code {
			return true
		}
		err = tsErr.Wrapped
	}
	return false
}
