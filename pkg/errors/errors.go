// Package errors provides structured error types for the voxelsnap pipeline.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the batch pipeline
//   - Machine-readable error codes recorded in batch summaries
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes identify where in the pipeline an item failed:
//   - Input errors: NOT_FOUND, UNSUPPORTED_FORMAT, LOAD_FAILED
//   - Staging errors: STORE_CREATE, STORE_SAVE
//   - Processing errors: SIZE_EXCEEDED
//   - Render errors: RENDERER_MISSING, RENDER_TIMEOUT, RENDER_PROCESS, OUTPUT_MISSING
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNotFound, "schematic not found: %s", path)
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // Handle missing input
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeLoad, origErr, "failed to parse %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the pipeline error taxonomy.
const (
	// Input errors
	ErrCodeNotFound          Code = "NOT_FOUND"
	ErrCodeUnsupportedFormat Code = "UNSUPPORTED_FORMAT"
	ErrCodeLoad              Code = "LOAD_FAILED"

	// Staging errors
	ErrCodeStoreCreate Code = "STORE_CREATE"
	ErrCodeStoreSave   Code = "STORE_SAVE"

	// Voxel processing errors
	ErrCodeSize Code = "SIZE_EXCEEDED"

	// Render errors
	ErrCodeRendererMissing Code = "RENDERER_MISSING"
	ErrCodeRenderTimeout   Code = "RENDER_TIMEOUT"
	ErrCodeRenderProcess   Code = "RENDER_PROCESS"
	ErrCodeOutputMissing   Code = "OUTPUT_MISSING"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
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
// Returns ErrCodeInternal for plain errors so batch summaries always
// carry a classifiable code.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}
