// Coded errors for gcode-inspect
//
// Every failure the engine, loaders and outer layers report carries an
// ErrorCode so presentation code can branch on the category without
// matching message text.
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents the category of error
type ErrorCode string

const (
	// Source loading errors
	ErrSourceRead    ErrorCode = "SOURCE_READ"
	ErrSourceTooLong ErrorCode = "SOURCE_TOO_LONG"

	// Configuration errors
	ErrConfigRead       ErrorCode = "CONFIG_READ"
	ErrConfigParse      ErrorCode = "CONFIG_PARSE"
	ErrConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Export errors
	ErrExportFormat ErrorCode = "EXPORT_FORMAT"
	ErrExportEncode ErrorCode = "EXPORT_ENCODE"
)

// AnalysisError is the unified error type for the module
type AnalysisError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Path is the file being read (if any)
	Path string

	// Line is the 1-based line number in Path (if known)
	Line int

	// Err wraps the underlying error
	Err error
}

// Error implements the error interface
func (e *AnalysisError) Error() string {
	loc := e.Path
	if loc != "" && e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, e.Line)
	}
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if loc != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, loc, msg)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

// Unwrap returns the underlying error
func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// SetPath sets the source path
func (e *AnalysisError) SetPath(path string) *AnalysisError {
	e.Path = path
	return e
}

// SetLine sets the line number
func (e *AnalysisError) SetLine(line int) *AnalysisError {
	e.Line = line
	return e
}

// New creates a new AnalysisError
func New(code ErrorCode, message string) *AnalysisError {
	return &AnalysisError{Code: code, Message: message}
}

// Wrap wraps an existing error with a code and message
func Wrap(err error, code ErrorCode, message string) *AnalysisError {
	return &AnalysisError{Code: code, Message: message, Err: err}
}

// SourceReadError reports a G-code source that could not be read
func SourceReadError(path string, err error) *AnalysisError {
	return Wrap(err, ErrSourceRead, "unable to read G-code").SetPath(path)
}

// SourceTooLongError reports a single line exceeding the scanner limit
func SourceTooLongError(path string, line int, limit int) *AnalysisError {
	return New(ErrSourceTooLong, fmt.Sprintf("line longer than %d bytes", limit)).
		SetPath(path).
		SetLine(line)
}

// ExportFormatError reports an unknown export format name
func ExportFormatError(name string) *AnalysisError {
	return New(ErrExportFormat, fmt.Sprintf("unknown export format %q (want json, yaml or cbor)", name))
}

// Is checks if any error in err's chain carries the given code
func Is(err error, code ErrorCode) bool {
	var ae *AnalysisError
	if stderrors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

// CodeOf returns the code of the first AnalysisError in err's chain
func CodeOf(err error) (ErrorCode, bool) {
	var ae *AnalysisError
	if stderrors.As(err, &ae) {
		return ae.Code, true
	}
	return "", false
}

// IsConfig checks if error is a config error
func IsConfig(err error) bool {
	return Is(err, ErrConfigRead) ||
		Is(err, ErrConfigParse) ||
		Is(err, ErrConfigValidation)
}
