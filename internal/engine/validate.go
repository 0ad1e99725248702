package engine

import (
	"regexp"
	"strings"
	"time"

	"probook/internal/models"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9\s\-]{7,20}$`)
)

// validateDraft applies the validation chain and returns the first
// failing rule. Order is fixed: name, email, phone, service, date, time,
// past-check. The service must exist in the catalog, not merely be
// non-empty.
func (e *Engine) validateDraft(draft *models.Draft, now time.Time) *ValidationError {
	if strings.TrimSpace(draft.Name) == "" {
		return &ValidationError{Reason: "Name is required"}
	}
	if !emailPattern.MatchString(draft.Email) {
		return &ValidationError{Reason: "Enter a valid email"}
	}
	if !phonePattern.MatchString(draft.Phone) {
		return &ValidationError{Reason: "Enter a valid phone"}
	}
	if _, ok := e.catalog.Get(draft.ServiceID); !ok {
		return &ValidationError{Reason: "Select a service"}
	}
	if draft.Date == "" {
		return &ValidationError{Reason: "Choose a date"}
	}
	if draft.Time == "" {
		return &ValidationError{Reason: "Choose a time"}
	}
	if isPast(draft.Date, draft.Time, now) {
		return &ValidationError{Reason: "Date/time must not be in the past"}
	}
	return nil
}

// isPast reports whether the date+time pair is strictly earlier than now.
// Malformed values count as past so they never reach the store.
func isPast(date, timeStr string, now time.Time) bool {
	start, err := time.ParseInLocation("2006-01-02 15:04", date+" "+timeStr, now.Location())
	if err != nil {
		return true
	}
	return start.Before(now)
}
