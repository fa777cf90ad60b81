// Package liberr defines the error taxonomy shared by the catalog store,
// the reservation ledger and the inventory coordinator. Callers classify
// failures with errors.Is against the sentinels below; the HTTP layer maps
// them to status codes.
package liberr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or out-of-range input.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks an absent identifier.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a uniqueness or invariant violation, e.g. a
	// duplicate reservation or a clamped copy-count adjustment.
	ErrConflict = errors.New("conflict")

	// ErrInvalidTransition marks an illegal reservation status change.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUnavailable marks a reservation attempt against a book with no
	// available copies.
	ErrUnavailable = errors.New("no copies available")

	// ErrBackend marks a failed or timed-out call to the backing store.
	ErrBackend = errors.New("backend unavailable")
)

// Validationf wraps ErrValidation with a formatted detail message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// NotFoundf wraps ErrNotFound with a formatted detail message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNotFound}, args...)...)
}

// Conflictf wraps ErrConflict with a formatted detail message.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrConflict}, args...)...)
}

// Transitionf wraps ErrInvalidTransition with a formatted detail message.
func Transitionf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidTransition}, args...)...)
}

// Backendf wraps ErrBackend around an underlying store error, keeping the
// original error in the chain.
func Backendf(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrBackend, op, err)
}
