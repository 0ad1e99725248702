package engine

import (
	"fmt"

	"probook/internal/models"
)

// ValidationError carries the first failing validation rule as a single
// human-readable reason.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NotFoundError reports an operation against an id absent from the store.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("booking %s not found", e.ID)
}

// ConflictWarning is an advisory signal, not an error: the candidate
// booking overlaps With an existing one for the same service and date.
// The caller decides whether to proceed.
type ConflictWarning struct {
	With models.Booking
}
