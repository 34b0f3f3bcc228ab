// Package errors defines error types with source locations for code
// versioning and cache failures.
package errors

import (
	"fmt"
)

// SourceLocation represents a position in source code.
type SourceLocation struct {
	Filename string
	Line     int // 1-based line number; 0 when unknown
	Column   int // 1-based column number; 0 when unknown
}

// String returns a formatted string representation of the source location.
func (s SourceLocation) String() string {
	switch {
	case s.Filename != "" && s.Line > 0:
		return fmt.Sprintf("%s:%d", s.Filename, s.Line)
	case s.Filename != "":
		return s.Filename
	case s.Line > 0:
		return fmt.Sprintf("line %d", s.Line)
	default:
		return "unknown"
	}
}

// IsZero returns true if the location has not been set.
func (s SourceLocation) IsZero() bool {
	return s.Filename == "" && s.Line == 0 && s.Column == 0
}

// FriendlyError is an interface for errors that have a human friendly
// message in addition to the lower level default error message.
type FriendlyError interface {
	Error() string
	FriendlyErrorMessage() string
}

// CodeVersioningError indicates that reference extraction failed while
// versioning a function's code. Extraction must fail loudly: silently
// under-extracting references would produce a weak fingerprint and stale
// cache hits.
type CodeVersioningError struct {
	Location SourceLocation
	Function string
	cause    error
}

// NewCodeVersioningError creates a CodeVersioningError for the named
// function, wrapping the underlying cause.
func NewCodeVersioningError(filename string, line int, function string, cause error) *CodeVersioningError {
	return &CodeVersioningError{
		Location: SourceLocation{Filename: filename, Line: line},
		Function: function,
		cause:    cause,
	}
}

func (e *CodeVersioningError) Error() string {
	name := e.Function
	if name == "" {
		name = "<anonymous>"
	}
	return fmt.Sprintf("code versioning error: unable to version %q (%s): %v",
		name, e.Location.String(), e.cause)
}

// Unwrap returns the underlying cause.
func (e *CodeVersioningError) Unwrap() error {
	return e.cause
}

// FriendlyErrorMessage returns a human friendly error message.
func (e *CodeVersioningError) FriendlyErrorMessage() string {
	name := e.Function
	if name == "" {
		name = "<anonymous>"
	}
	return fmt.Sprintf(
		"Found a code reference in %s that cannot be versioned while "+
			"hashing %q. This should be impossible and is most likely a bug; "+
			"please report it.", e.Location.String(), name)
}
