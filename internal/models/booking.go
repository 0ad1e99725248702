package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusCancelled Status = "Cancelled"
)

// ParseStatus converts a raw string into a Status, rejecting anything
// outside the closed set.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Booking represents a scheduled appointment for one service and contact.
//
// ServiceName and DurationMinutes are snapshots of the catalog entry at
// the moment the booking was created or last edited. They intentionally
// do not follow later catalog changes; a booking is a historical record.
type Booking struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	ServiceID       string    `json:"serviceId"`
	ServiceName     string    `json:"serviceName"`
	DurationMinutes int       `json:"duration"`
	Date            string    `json:"date"` // "2006-01-02", local calendar date
	Time            string    `json:"time"` // "15:04", local wall clock
	Status          Status    `json:"status"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Draft is an unvalidated candidate booking submitted for create or update.
// ServiceName and DurationMinutes are filled in by the engine from the
// catalog; callers only supply ServiceID.
type Draft struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	ServiceID string `json:"serviceId"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Notes     string `json:"notes,omitempty"`
}

// StartMinutes returns the booking start as minutes since midnight,
// or -1 if the time is malformed.
func (b *Booking) StartMinutes() int {
	return TimeToMinutes(b.Time)
}

// EndMinutes returns the exclusive end of the booking interval.
func (b *Booking) EndMinutes() int {
	start := b.StartMinutes()
	if start < 0 {
		return -1
	}
	return start + b.DurationMinutes
}

// OverlapsWith reports whether two bookings of the same service on the
// same date occupy intersecting time intervals. Intervals are half-open
// [start, end): touching boundaries do not overlap, and an empty
// interval (zero duration) never overlaps anything.
func (b *Booking) OverlapsWith(other *Booking) bool {
	if b.ServiceID != other.ServiceID || b.Date != other.Date {
		return false
	}
	if b.DurationMinutes <= 0 || other.DurationMinutes <= 0 {
		return false
	}
	bs, os := b.StartMinutes(), other.StartMinutes()
	if bs < 0 || os < 0 {
		return false
	}
	be, oe := bs+b.DurationMinutes, os+other.DurationMinutes
	return bs < oe && os < be
}

// SortKey is the composite "date time" key used for chronological
// ordering. Dates are ISO and times zero-padded, so lexicographic
// comparison of the key is chronological comparison.
func (b *Booking) SortKey() string {
	return b.Date + " " + b.Time
}

// StartsAt combines Date and Time into a local time.Time.
func (b *Booking) StartsAt() (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", b.SortKey(), time.Local)
}

// TimeToMinutes parses an "HH:MM" string into minutes since midnight.
// Returns -1 for malformed input.
func TimeToMinutes(t string) int {
	hh, mm, ok := strings.Cut(t, ":")
	if !ok {
		return -1
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return -1
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return -1
	}
	return h*60 + m
}

// MinutesToTime renders minutes since midnight as a zero-padded "HH:MM".
func MinutesToTime(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}
