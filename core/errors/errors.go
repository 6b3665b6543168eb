// Package errors provides the error types shared by the comparison engine,
// its configuration layer and the command-line tool.
//
// Every type unwraps to one of the sentinels below unless it carries an
// underlying error, so callers classify failures with Is:
//
//	if errors.Is(err, errors.ErrUnsupported) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Sentinels for the failure classes.
var (
	// ErrNotFound: a part, relationship or note is missing from a package.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput: malformed documents, settings or arguments.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInternal: an engine invariant was broken.
	ErrInternal = errors.New("internal error")
	// ErrUnsupported: content the engine refuses to compare.
	ErrUnsupported = errors.New("unsupported")
)

// cause returns err, or sentinel when there is no underlying error.
func cause(err, sentinel error) error {
	if err != nil {
		return err
	}
	return sentinel
}

// NotFoundError reports a missing package member.
type NotFoundError struct {
	Resource string // "part", "relationship", "footnote", ...
	ID       string
	Err      error
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return cause(e.Err, ErrNotFound) }

// ValidationError reports a setting or argument that was rejected.
type ValidationError struct {
	Field   string
	Value   string // offending value, when it helps
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return cause(e.Err, ErrInvalidInput) }

// IOError reports a failed file operation on a package.
type IOError struct {
	Operation string // "read", "write", "open", ...
	Path      string
	Err       error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ParseError reports input that could not be decoded: package XML, notation
// or a settings file.
type ParseError struct {
	Format  string // "XML", "notation", "TOML", ...
	Path    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
	}
	return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, e.Path, e.Message)
}

func (e *ParseError) Unwrap() error { return cause(e.Err, ErrInvalidInput) }

// UnsupportedError represents content the engine refuses to compare, such as
// sub-documents or move-range markers. Feature carries the element name.
type UnsupportedError struct {
	Feature string
	Reason  string
	Unid    string // identifier of the offending element, if assigned
	Err     error
}

func (e *UnsupportedError) Error() string {
	if e.Reason == "" {
		return "unsupported " + e.Feature
	}
	return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
}

func (e *UnsupportedError) Unwrap() error { return cause(e.Err, ErrUnsupported) }

// InconsistencyError reports a broken internal invariant of the comparison
// engine: a missing identifier, a footnote reference without a body, mismatched
// ancestor depth. It is raised with panic inside the engine and surfaced as an
// error by the public entry points.
type InconsistencyError struct {
	Phase   string
	Message string
	Err     error
}

func (e *InconsistencyError) Error() string {
	if e.Phase == "" {
		return "internal inconsistency: " + e.Message
	}
	return fmt.Sprintf("internal inconsistency in %s: %s", e.Phase, e.Message)
}

func (e *InconsistencyError) Unwrap() error { return cause(e.Err, ErrInternal) }

func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func NewIO(operation, path string, err error) *IOError {
	return &IOError{Operation: operation, Path: path, Err: err}
}

func NewParse(format, path, message string) *ParseError {
	return &ParseError{Format: format, Path: path, Message: message}
}

func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{Feature: feature, Reason: reason}
}

// NewInconsistency formats the message like fmt.Sprintf.
func NewInconsistency(phase, format string, args ...any) *InconsistencyError {
	return &InconsistencyError{Phase: phase, Message: fmt.Sprintf(format, args...)}
}

// Wrapf prefixes err with a formatted message. A nil err stays nil.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is and As re-export the standard functions so callers need one import.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }
