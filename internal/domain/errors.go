package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the application.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("resource already exists")
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")

	// ErrAuthentication marks a missing or invalid bearer credential.
	ErrAuthentication = errors.New("authentication error")
	// ErrValidation marks a malformed command or request payload.
	ErrValidation = errors.New("validation error")
	// ErrPersistence marks a storage failure.
	ErrPersistence = errors.New("persistence error")
	// ErrDelivery marks a live push failure after the message was persisted.
	ErrDelivery = errors.New("delivery error")
)

// ValidationError returns an error wrapping ErrValidation with a message
// that is safe to show to the client.
func ValidationError(format string, args ...any) error {
	return &validationError{msg: fmt.Sprintf(format, args...)}
}

type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Unwrap() error { return ErrValidation }

// PersistenceError wraps a storage failure for op.
func PersistenceError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}
