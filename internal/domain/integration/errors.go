package integration

import (
	"errors"
	"fmt"
)

var (
	// ErrRecordNotFound means the record behind a sync head no longer exists.
	// It is an expected outcome: callers skip the head.
	ErrRecordNotFound = errors.New("integration: record not found")
	// ErrInvalidSyncHead is returned for heads naming an unknown model or a non-positive id
	ErrInvalidSyncHead = errors.New("integration: invalid sync head")
	// ErrMissingRequiredField is matched by every MissingRequiredFieldError
	ErrMissingRequiredField = errors.New("integration: missing required field")
	// ErrUnsupportedOperation is returned when a builder receives an operation type it does not transform
	ErrUnsupportedOperation = errors.New("integration: unsupported sync operation")
)

// MissingRequiredFieldError reports a mandatory feed field that could not be derived.
type MissingRequiredFieldError struct {
	Field FeedField
}

// NewMissingRequiredFieldError creates a MissingRequiredFieldError for field
func NewMissingRequiredFieldError(field FeedField) *MissingRequiredFieldError {
	return &MissingRequiredFieldError{Field: field}
}

// Error implements the error interface
func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("integration: missing required field %q", string(e.Field))
}

// Is makes errors.Is(err, ErrMissingRequiredField) hold
func (e *MissingRequiredFieldError) Is(target error) bool {
	return target == ErrMissingRequiredField
}
