package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "probook",
			Name:      "booking_created_total",
			Help:      "Count of bookings created.",
		},
	)

	bookingDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "probook",
			Name:      "booking_deleted_total",
			Help:      "Count of bookings deleted.",
		},
	)

	statusChanged = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "probook",
			Name:      "booking_status_changed_total",
			Help:      "Count of booking status transitions by target status.",
		},
		[]string{"status"},
	)

	conflictDetected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "probook",
			Name:      "booking_conflict_detected_total",
			Help:      "Count of saves where a scheduling conflict was detected.",
		},
	)

	conflictOverride = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "probook",
			Name:      "booking_conflict_override_total",
			Help:      "Count of saves that proceeded despite a detected conflict.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "probook",
			Name:      "http_requests_total",
			Help:      "Count of HTTP API requests by handler.",
		},
		[]string{"handler"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, bookingDeleted, statusChanged,
			conflictDetected, conflictOverride, httpRequests)
	})
}

func IncBookingCreated() {
	bookingCreated.Inc()
}

func IncBookingDeleted() {
	bookingDeleted.Inc()
}

func IncStatusChanged(status string) {
	statusChanged.WithLabelValues(status).Inc()
}

func IncConflictDetected() {
	conflictDetected.Inc()
}

func IncConflictOverride() {
	conflictOverride.Inc()
}

func IncHTTP(handler string) {
	httpRequests.WithLabelValues(handler).Inc()
}
