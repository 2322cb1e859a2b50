// Package errors provides structured error types for gluedoc.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the document model and the CLI
//   - Machine-readable error codes for programmatic handling
//   - Diagnostic payloads for failures that must be reproducible
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The codes follow the failure taxonomy of the document model:
//   - PARSE_ERROR: malformed markup or an instantiation failure during load
//   - INCONSISTENT: an internal invariant broke; the operation is fatal
//   - PRECONDITION: an id-merge or self-containment check failed before mutation
//   - UNRESOLVED: a class or asset could not be resolved (reported per item)
//
// Parse and consistency errors abort the whole operation. Precondition and
// resolution errors leave the document valid and continuable.
//
// # Usage
//
//	err := errors.New(errors.ErrCodePrecondition, "object %q is not self-contained", id)
//	if errors.Is(err, errors.ErrCodePrecondition) {
//	    // Ask the user to widen the selection
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeParse, origErr, "load %s", location)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Document model errors
	ErrCodeParse        Code = "PARSE_ERROR"
	ErrCodeInconsistent Code = "INCONSISTENT"
	ErrCodePrecondition Code = "PRECONDITION"
	ErrCodeUnresolved   Code = "UNRESOLVED"

	// Input validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)

	// Dump holds diagnostic data needed to reproduce the failure,
	// typically the markup text that could not be rebuilt.
	Dump []byte
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// WithDump attaches diagnostic data to the error and returns it.
func (e *Error) WithDump(data []byte) *Error {
	e.Dump = data
	return e
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// DumpOf returns the first diagnostic dump found in the error chain.
func DumpOf(err error) []byte {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return nil
		}
		if e.Dump != nil {
			return e.Dump
		}
		err = e.Cause
	}
	return nil
}

// IsFatal reports whether err aborts the operation that produced it.
// Parse and consistency failures are fatal; precondition and
// resolution failures leave the document usable.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case ErrCodePrecondition, ErrCodeUnresolved:
		return false
	}
	return err != nil
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
