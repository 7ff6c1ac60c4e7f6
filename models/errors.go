package models

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrNotFound            = errors.New("not found")
	ErrWriteFailure        = errors.New("write failure")
	ErrMalformedRecord     = errors.New("malformed record")
	ErrSubscriptionFailure = errors.New("subscription failure")
)

// ValidationError is returned before any write when a caller's input is rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match any *ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds a *ValidationError for field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// WriteFailure wraps a store error so callers can match ErrWriteFailure.
func WriteFailure(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrWriteFailure, err)
}
