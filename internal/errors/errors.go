// Package errors provides sentinel errors for the stagehand CLI.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for known conditions.
var (
	// ErrParse indicates a malformed release tag.
	ErrParse = errors.New("parse error")

	// ErrValidation indicates a malformed version or release-candidate input.
	ErrValidation = errors.New("validation error")

	// ErrConsistency indicates the validated version disagrees with the
	// version declared by the project tree.
	ErrConsistency = errors.New("consistency error")

	// ErrBuild indicates a build or smoke-test command failure.
	ErrBuild = errors.New("build error")

	// ErrBundle indicates a bundle store or merge failure.
	ErrBundle = errors.New("bundle error")

	// ErrNotFound indicates a bundle, file, or tool was not found.
	ErrNotFound = errors.New("not found")
)

// DetailError captures structured error information for operator-facing
// diagnostics. Gate failures always carry the offending values in Context.
type DetailError struct {
	Type     string            // error category
	Message  string            // specific description
	Location string            // file path, optional
	Field    string            // offending input field, optional
	Context  map[string]string // extra key-value detail, optional
	Hint     string            // actionable guidance, optional
	Cause    error             // sentinel this error unwraps to
}

// Error implements the error interface.
func (e *DetailError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Error: %s\n", e.Type)
	if e.Location != "" {
		fmt.Fprintf(&b, "  Location: %s\n", e.Location)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, "  Field: %s\n", e.Field)
	}
	for k, v := range e.Context {
		fmt.Fprintf(&b, "  %s: %s\n", k, v)
	}

	fmt.Fprintf(&b, "\n  %s\n", e.Message)

	if e.Hint != "" {
		fmt.Fprintf(&b, "\nHint: %s\n", e.Hint)
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *DetailError) Unwrap() error {
	return e.Cause
}

// NewParseError creates a tag parse error with details.
func NewParseError(message, tag, hint string) error {
	return &DetailError{
		Type:    "tag parse failed",
		Message: message,
		Context: map[string]string{"Tag": tag},
		Hint:    hint,
		Cause:   ErrParse,
	}
}

// NewValidationError creates an input validation error with details.
func NewValidationError(message, field, value, hint string) error {
	return &DetailError{
		Type:    "input validation failed",
		Message: message,
		Field:   field,
		Context: map[string]string{"Value": value},
		Hint:    hint,
		Cause:   ErrValidation,
	}
}

// NewConsistencyError creates a version consistency error naming both the
// declared and the validated version.
func NewConsistencyError(message, declared, validated string) error {
	return &DetailError{
		Type:    "version consistency check failed",
		Message: message,
		Context: map[string]string{
			"Declared":  declared,
			"Validated": validated,
		},
		Hint:  "Bump the project version or retag the release so both agree",
		Cause: ErrConsistency,
	}
}

// NewBuildError creates a build failure error with details.
func NewBuildError(message string, context map[string]string, hint string) error {
	return &DetailError{
		Type:    "build failed",
		Message: message,
		Context: context,
		Hint:    hint,
		Cause:   ErrBuild,
	}
}

// NewBundleError creates a bundle store error with details.
func NewBundleError(message string, context map[string]string, hint string) error {
	return &DetailError{
		Type:    "bundle operation failed",
		Message: message,
		Context: context,
		Hint:    hint,
		Cause:   ErrBundle,
	}
}

// NewNotFoundError creates a not found error with details.
func NewNotFoundError(message, location, hint string) error {
	return &DetailError{
		Type:     "not found",
		Message:  message,
		Location: location,
		Hint:     hint,
		Cause:    ErrNotFound,
	}
}

// Wrap wraps an error with a sentinel error type.
func Wrap(sentinel error, message string) error {
	return fmt.Errorf("%s: %w", message, sentinel)
}
