package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ParseFailed indicates the C# parser did not return a tree
	ParseFailed ErrorCode = "PARSE_FAILED"
	// NotProcessable indicates the input is not a protobuf-generated file
	NotProcessable ErrorCode = "NOT_PROCESSABLE"
	// ReferenceInvalid indicates a reference file could not be decoded
	ReferenceInvalid ErrorCode = "REFERENCE_INVALID"
	// ConfigInvalid indicates a configuration value was rejected
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// IOFailed indicates a file could not be read or written
	IOFailed ErrorCode = "IO_FAILED"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Command     string `json:"command,omitempty"`
	Description string `json:"description"`
}

// Error is a coded pbnrt error carrying the path it concerns
type Error struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Path           string      `json:"path,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error
}

// New creates a new Error with the default fixes for its code
func New(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	prefix := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Path != "" {
		prefix += " (" + e.Path + ")"
	}
	if e.cause != nil {
		return prefix + ": " + e.cause.Error()
	}
	return prefix
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// WithPath records the file the error concerns
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// CodeOf returns the code of the first *Error in err's chain, or
// InternalError when there is none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return InternalError
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	NotProcessable: {
		{Description: "Only files generated by protoc --csharp_out are annotated; pass --require-protobuf=false to annotate anyway"},
	},
	ReferenceInvalid: {
		{Command: "pbnrt explain --references <file> <source.cs>", Description: "Check which types a reference contributes"},
	},
	ConfigInvalid: {
		{Description: "Valid guard modes are \"symbol\" and \"text\"; jobs must be zero (auto) or positive"},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
