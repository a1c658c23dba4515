package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an item or user never appeared in the store.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientData marks a known entity without usable signal. The
	// recommender absorbs it through the popularity fallback.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrValidation is returned when input or a constructed directive fails
	// its schema check.
	ErrValidation = errors.New("validation failure")

	// ErrConfiguration is returned when thresholds or the decision table are
	// unusable. It is detected when an engine is built.
	ErrConfiguration = errors.New("configuration error")

	// ErrSnapshotNotReady is returned when no similarity snapshot was built yet.
	ErrSnapshotNotReady = errors.New("similarity snapshot not ready")
)

// ValidationError names the offending field of a failed schema check.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failure: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
