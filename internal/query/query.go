// Package query filters, searches, and sorts booking collections for
// presentation. Everything here is pure: inputs are never mutated.
package query

import (
	"sort"
	"strings"

	"probook/internal/models"
)

// Sort selects the ordering of query results.
type Sort string

const (
	SortNone     Sort = ""
	SortDateAsc  Sort = "date-asc"
	SortDateDesc Sort = "date-desc"
)

// ParseSort converts a raw sort key. Unrecognized keys map to SortNone,
// which preserves input order.
func ParseSort(s string) Sort {
	switch Sort(s) {
	case SortDateAsc, SortDateDesc:
		return Sort(s)
	}
	return SortNone
}

// Params are the filter and ordering parameters for a query. Zero-value
// fields pass everything through.
type Params struct {
	Search    string
	ServiceID string
	Status    models.Status
	Date      string
	Sort      Sort
}

// Run applies filters and ordering to a snapshot of bookings and returns
// a new slice. Search is a case-insensitive substring match over the
// concatenated name and email; the remaining filters are exact matches.
// Sorting is a stable comparison of the "date time" key, which is
// chronological because dates are ISO and times zero-padded.
func Run(bookings []models.Booking, params Params) []models.Booking {
	search := strings.ToLower(strings.TrimSpace(params.Search))

	out := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if search != "" {
			haystack := strings.ToLower(b.Name + " " + b.Email)
			if !strings.Contains(haystack, search) {
				continue
			}
		}
		if params.ServiceID != "" && b.ServiceID != params.ServiceID {
			continue
		}
		if params.Status != "" && b.Status != params.Status {
			continue
		}
		if params.Date != "" && b.Date != params.Date {
			continue
		}
		out = append(out, b)
	}

	switch params.Sort {
	case SortDateAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].SortKey() < out[j].SortKey()
		})
	case SortDateDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[j].SortKey() < out[i].SortKey()
		})
	}

	return out
}

// CountByStatus tallies bookings per status for presentation stats.
func CountByStatus(bookings []models.Booking) map[models.Status]int {
	counts := make(map[models.Status]int, 3)
	for _, b := range bookings {
		counts[b.Status]++
	}
	return counts
}
