// Package errs defines the error taxonomy shared across services and handlers.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a store-level uniqueness violation.
	ErrConflict = errors.New("conflict")

	// ErrInvalidSignature indicates a webhook payload failed signature
	// verification. Nothing downstream may execute on such a payload.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// ValidationError reports an invalid value for a named field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a field-scoped validation error.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
