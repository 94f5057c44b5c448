// Package apperr holds the error taxonomy shared by the command and query layers.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned by repositories when no row matches.
var ErrNotFound = errors.New("record not found")

// ValidationError reports malformed or missing input, keyed by field name.
// It is raised before any store access.
type ValidationError struct {
	Violations map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Violations: map[string]string{}}
}

// Add records a violation for field. The first message for a field wins.
func (e *ValidationError) Add(field, message string) {
	if _, ok := e.Violations[field]; ok {
		return
	}
	e.Violations[field] = message
}

func (e *ValidationError) Empty() bool { return len(e.Violations) == 0 }

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e.Violations))
	for f := range e.Violations {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e.Violations[f])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// QueryError is the single fault type of the read path. Message is safe to show
// to end users; Err keeps the store error for logs.
type QueryError struct {
	Message string
	Err     error
}

func (e *QueryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *QueryError) Unwrap() error { return e.Err }

func NewQueryError(message string, err error) *QueryError {
	return &QueryError{Message: message, Err: err}
}
