// Package seed populates an empty store with demo bookings.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"probook/internal/models"
	"probook/internal/store"
)

// Apply writes demo bookings when the store is empty. A non-empty store
// is left untouched.
func Apply(ctx context.Context, st store.Store, logger *zerolog.Logger) error {
	existing, err := st.Load(ctx)
	if err != nil && !errors.Is(err, store.ErrCorruptState) {
		return fmt.Errorf("load bookings: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	now := time.Now()
	tomorrow := now.AddDate(0, 0, 1).Format("2006-01-02")
	dayAfter := now.AddDate(0, 0, 2).Format("2006-01-02")

	demo := []models.Booking{
		{
			ID: uuid.NewString(), Name: "Arjun Rao", Email: "arjun@example.com",
			Phone: "+91 90000 12345", ServiceID: "svc-doctor",
			ServiceName: "Doctor Consultation", DurationMinutes: 30,
			Date: tomorrow, Time: "10:00", Status: models.StatusConfirmed,
			CreatedAt: now,
		},
		{
			ID: uuid.NewString(), Name: "Sana Mehta", Email: "sana@example.com",
			Phone: "+91 98000 54321", ServiceID: "svc-salon",
			ServiceName: "Salon Haircut", DurationMinutes: 45,
			Date: tomorrow, Time: "11:00", Status: models.StatusPending,
			CreatedAt: now,
		},
		{
			ID: uuid.NewString(), Name: "Ravi Kumar", Email: "ravi@example.com",
			Phone: "+91 91234 56789", ServiceID: "svc-yoga",
			ServiceName: "Yoga Class", DurationMinutes: 60,
			Date: dayAfter, Time: "09:00", Status: models.StatusPending,
			Notes: "Bring mat", CreatedAt: now,
		},
	}

	if err := st.Save(ctx, demo); err != nil {
		return fmt.Errorf("save demo bookings: %w", err)
	}
	logger.Info().Int("count", len(demo)).Msg("seeded demo bookings")
	return nil
}
