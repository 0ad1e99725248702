package engine

import "probook/internal/models"

// FindConflict scans existing bookings for one that overlaps the
// candidate. Only bookings sharing the candidate's service and date are
// considered; the candidate's own id is skipped so the check works for
// edits. Intervals are half-open, so touching boundaries never conflict.
// Returns the first colliding booking, or nil.
//
// The scan is O(n) over the collection. Collections here are small; an
// index by (service, date) would be the next step if that changes.
func FindConflict(candidate *models.Booking, existing []models.Booking) *models.Booking {
	for i := range existing {
		b := &existing[i]
		if b.ID == candidate.ID {
			continue
		}
		if candidate.OverlapsWith(b) {
			found := *b
			return &found
		}
	}
	return nil
}

// HasConflict reports whether the candidate collides with any existing
// booking of the same service on the same date.
func HasConflict(candidate *models.Booking, existing []models.Booking) bool {
	return FindConflict(candidate, existing) != nil
}
