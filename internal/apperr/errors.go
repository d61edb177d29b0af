// Package apperr defines the sentinel errors shared across the engine.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the target document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists means a create was requested over an existing path.
	ErrAlreadyExists = errors.New("already exists")
	// ErrConflict means an optimistic-concurrency checksum mismatch.
	ErrConflict = errors.New("conflict")
	// ErrLineNotFound means an anchored line could not be located after a full scan.
	ErrLineNotFound = errors.New("line not found")
	// ErrValidation means the request failed validation before any I/O was attempted.
	ErrValidation = errors.New("validation failed")
)

// Validationf wraps a field-level validation failure so callers can match
// it with errors.Is(err, ErrValidation).
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Validation wraps err, typically a validation library's field-error map,
// under ErrValidation. A nil err stays nil.
func Validation(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}
