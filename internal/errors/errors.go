package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrNetwork     = "NETWORK"     // request never produced a usable response
	ErrApplication = "APPLICATION" // server answered with an explicit error payload
	ErrDataShape   = "DATA_SHAPE"  // payload missing expected fields
	ErrConfig      = "CONFIG"
	ErrCache       = "CACHE"
	ErrAuth        = "AUTH"
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// Renders as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrNetwork code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrNetwork,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var kErr *Error
	if errors.As(err, &kErr) {
		return kErr.Code == code
	}
	return false
}

// CodeOf returns the code of the first structured Error in err's chain,
// or an empty string if there is none.
func CodeOf(err error) string {
	var kErr *Error
	if errors.As(err, &kErr) {
		return kErr.Code
	}
	return ""
}

// MessageOf returns the short message of a structured error, falling back to
// err.Error() for plain errors. Used where the multi-line format doesn't fit
// (toasts, log lines).
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var kErr *Error
	if errors.As(err, &kErr) {
		return kErr.Message
	}
	return err.Error()
}
