package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Sift error code.
type ErrorCode string

const (
	ErrInvalidRequest         ErrorCode = "INVALID_REQUEST"          // 400
	ErrInvalidCharacterFilter ErrorCode = "INVALID_CHARACTER_FILTER" // 400
	ErrNotFound               ErrorCode = "NOT_FOUND"                // 404
	ErrAlreadyExists          ErrorCode = "ALREADY_EXISTS"           // 409
	ErrInvalidType            ErrorCode = "INVALID_TYPE"             // 422
	ErrConflictingFilters     ErrorCode = "CONFLICTING_FILTERS"      // 422
	ErrRateLimited            ErrorCode = "RATE_LIMITED"             // 429
	ErrInternal               ErrorCode = "INTERNAL"                 // 500
)

// SiftError represents a structured error with code, status, and details.
type SiftError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *SiftError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsClientError reports whether the error was caused by caller input
// rather than a server-side failure.
func (e *SiftError) IsClientError() bool {
	return e.Status >= 400 && e.Status < 500
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *SiftError {
	return &SiftError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidType creates a 422 error when a field has the wrong data type.
func NewInvalidType(field, want string) *SiftError {
	return &SiftError{
		Code:    ErrInvalidType,
		Status:  422,
		Message: fmt.Sprintf("invalid data type for %q (must be %s)", field, want),
		Details: map[string]any{"field": field, "expected": want},
	}
}

// NewInvalidCharacterFilter creates a 400 error when contains_character
// is not exactly one character.
func NewInvalidCharacterFilter(value string) *SiftError {
	return &SiftError{
		Code:    ErrInvalidCharacterFilter,
		Status:  400,
		Message: "invalid character filter: must be a single character",
		Details: map[string]any{"contains_character": value},
	}
}

// NewConflictingFilters creates a 422 error when min_length exceeds max_length.
func NewConflictingFilters(minLength, maxLength int) *SiftError {
	return &SiftError{
		Code:    ErrConflictingFilters,
		Status:  422,
		Message: fmt.Sprintf("conflicting filters: min_length (%d) cannot be greater than max_length (%d)", minLength, maxLength),
		Details: map[string]any{"min_length": minLength, "max_length": maxLength},
	}
}

// NewNotFound creates a 404 error for when a string cannot be found.
func NewNotFound(value string) *SiftError {
	return &SiftError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "string does not exist in the system",
		Details: map[string]any{"value": value},
	}
}

// NewAlreadyExists creates a 409 error when the canonical text is already stored.
func NewAlreadyExists(fingerprint string) *SiftError {
	return &SiftError{
		Code:    ErrAlreadyExists,
		Status:  409,
		Message: "string already exists in the system",
		Details: map[string]any{"id": fingerprint},
	}
}

// NewRateLimited creates a 429 error when a caller exceeds the request rate.
func NewRateLimited() *SiftError {
	return &SiftError{
		Code:    ErrRateLimited,
		Status:  429,
		Message: "too many requests, retry later",
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The underlying error is kept in Details for logging, never in Message.
func NewInternal(err error) *SiftError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &SiftError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// Is checks if an error (or anything it wraps) is a SiftError with the given code.
func Is(err error, code ErrorCode) bool {
	var sErr *SiftError
	if stderrors.As(err, &sErr) {
		return sErr.Code == code
	}
	return false
}

// As extracts the SiftError from err, converting anything else into an
// internal error.
func As(err error) *SiftError {
	var sErr *SiftError
	if stderrors.As(err, &sErr) {
		return sErr
	}
	return NewInternal(err)
}
