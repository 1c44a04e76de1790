package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates malformed or rule-violating input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates a reference to a nonexistent resource.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness or idempotency violation.
	ErrConflict = errors.New("conflict")
	// ErrStoreUnavailable indicates the persistence layer failed. The whole
	// operation is safe to retry because writes are all-or-nothing.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Validationf wraps ErrValidation with a formatted detail message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
