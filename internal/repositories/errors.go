package repositories

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates the referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates the write would duplicate an existing record or state.
	ErrConflict = errors.New("record conflict")
	// ErrOwnership indicates the requester is not the owning author.
	ErrOwnership = errors.New("requester does not own the record")
	// ErrTransactionAborted indicates a multi-document write was rolled back.
	ErrTransactionAborted = errors.New("transaction aborted")
	// ErrValidation indicates required input was missing or malformed.
	ErrValidation = errors.New("validation failed")
	// ErrPersistence wraps unexpected database failures.
	ErrPersistence = errors.New("persistence failure")
)

// ValidationError lists the offending fields. It matches ErrValidation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: missing or invalid %s", strings.Join(e.Fields, ", "))
}

// Is makes errors.Is(err, ErrValidation) hold.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(fields ...string) error {
	return &ValidationError{Fields: fields}
}

func persistenceError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}
