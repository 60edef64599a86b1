// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrRegistrationNotFound indicates a trigger registration was not found
	// by the given identifier.
	ErrRegistrationNotFound = errors.New("trigger registration not found")

	// ErrConnectionNotFound indicates a connection was not found by the given
	// identifier.
	ErrConnectionNotFound = errors.New("connection not found")

	// ErrTokenNotFound indicates no active token exists for the requested
	// (org, provider) pair.
	ErrTokenNotFound = errors.New("token not found")
)

// RegistrationError wraps registration-related errors with additional context.
type RegistrationError struct {
	Op             string // Operation being performed (e.g., "GetByID", "Save")
	RegistrationID string
	Err            error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("%s operation failed for trigger registration %s: %v", e.Op, e.RegistrationID, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for registration errors.
func (e *RegistrationError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewRegistrationError creates a new registration error with context.
func NewRegistrationError(op, registrationID string, err error) *RegistrationError {
	return &RegistrationError{
		Op:             op,
		RegistrationID: registrationID,
		Err:            err,
	}
}

// IsRegistrationNotFound checks if the error indicates a missing registration.
func IsRegistrationNotFound(err error) bool {
	return errors.Is(err, ErrRegistrationNotFound)
}

// IsConnectionNotFound checks if the error indicates a missing connection.
func IsConnectionNotFound(err error) bool {
	return errors.Is(err, ErrConnectionNotFound)
}

// IsTokenNotFound checks if the error indicates a missing active token.
func IsTokenNotFound(err error) bool {
	return errors.Is(err, ErrTokenNotFound)
}
