// Package apperr defines the error kinds shared by the service layers.
//
// Every domain error wraps exactly one kind so the HTTP layer can map it to a
// status code with errors.Is, without knowing the concrete sentinel.
package apperr

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("validation failed")
	ErrDependency = errors.New("dependency unavailable")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// New returns an error with the given message that matches kind under errors.Is.
func New(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Newf is New with fmt.Sprintf formatting.
func Newf(kind error, format string, args ...any) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Dependency wraps err as a dependency failure unless it already carries a kind.
func Dependency(err error) error {
	if err == nil || HasKind(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrDependency, err)
}

// HasKind reports whether err matches one of the error kinds.
func HasKind(err error) bool {
	for _, kind := range []error{ErrNotFound, ErrConflict, ErrForbidden, ErrValidation, ErrDependency} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
