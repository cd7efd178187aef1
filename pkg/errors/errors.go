// Package errors provides custom error types for the reconciliation
// pipeline. These errors enable programmatic error checking and keep every
// failure attributable to a specific file, field, or record for audit.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the pipeline.
var (
	// ErrNotFound indicates that a requested resource was not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoFiles indicates that classification found nothing to process.
	// Continuing would silently produce an empty result set, so this is fatal.
	ErrNoFiles = errors.New("no classifiable input files")

	// ErrUnknownGrammar indicates a file whose shape matches neither export grammar.
	ErrUnknownGrammar = errors.New("unknown source grammar")

	// ErrStoreUnavailable indicates the destination store is temporarily unreachable.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = errors.New("operation canceled")
)

// ParseError reports a malformed line or an unparseable file region.
// Malformed lines are skipped and counted, never fatal.
type ParseError struct {
	Grammar string // "grid" or "narrative"
	File    string
	Line    int
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s parse error at %s:%d: %s", e.Grammar, e.File, e.Line, e.Message)
	}
	return fmt.Sprintf("%s parse error in %s: %s", e.Grammar, e.File, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *ParseError) Unwrap() error { return e.Err }

// NewParseError creates a new ParseError.
func NewParseError(grammar, file string, line int, message string) *ParseError {
	return &ParseError{Grammar: grammar, File: file, Line: line, Message: message}
}

// ValidationError reports a record or field that failed validation.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ClassifyError reports a file that could not be classified into an
// organization code and grammar. Any ClassifyError makes the run exit
// non-zero, though processing of classified files continues.
type ClassifyError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e *ClassifyError) Error() string {
	return fmt.Sprintf("cannot classify %s: %s", e.Path, e.Message)
}

// Is implements errors.Is support.
func (e *ClassifyError) Is(target error) bool {
	return target == ErrUnknownGrammar
}

// NewClassifyError creates a new ClassifyError.
func NewClassifyError(path, message string) *ClassifyError {
	return &ClassifyError{Path: path, Message: message}
}

// IOError represents an error during I/O operations.
type IOError struct {
	Operation string // "read", "open", "write"
	Path      string
	Err       error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("IO error during %s of %s: %v", e.Operation, e.Path, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *IOError) Unwrap() error { return e.Err }

// NewIOError creates a new IOError.
func NewIOError(operation, path string, err error) *IOError {
	return &IOError{Operation: operation, Path: path, Err: err}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a new ConfigError.
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// PersistError reports a batch that could not be upserted after retries.
// The run continues with the next batch; the failed keys are reported.
type PersistError struct {
	Batch int
	Keys  []string
	Err   error
}

// Error implements the error interface.
func (e *PersistError) Error() string {
	return fmt.Sprintf("persist batch %d failed for %d records: %v", e.Batch, len(e.Keys), e.Err)
}

// Unwrap implements errors.Unwrap. Whether a PersistError counts as
// transient is decided by what it wraps, so sentinel checks go through
// the wrapped error rather than a blanket Is.
func (e *PersistError) Unwrap() error { return e.Err }

// NewPersistError creates a new PersistError.
func NewPersistError(batch int, keys []string, err error) *PersistError {
	return &PersistError{Batch: batch, Keys: keys, Err: err}
}

// Helper functions for error checking.

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsCanceled checks if an error is a cancellation error.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// IsStoreUnavailable checks if an error indicates a transient store failure.
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// WrapIO wraps an error as an IOError.
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapValidation wraps an error as a ValidationError.
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}
