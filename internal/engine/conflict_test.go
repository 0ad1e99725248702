package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"probook/internal/models"
)

func TestFindConflict(t *testing.T) {
	existing := []models.Booking{
		{
			ID: "a", ServiceID: "svc-doctor", Date: "2025-06-10",
			Time: "10:00", DurationMinutes: 30,
		},
	}

	t.Run("overlapping candidate", func(t *testing.T) {
		candidate := models.Booking{
			ID: "b", ServiceID: "svc-doctor", Date: "2025-06-10",
			Time: "10:15", DurationMinutes: 30,
		}
		hit := FindConflict(&candidate, existing)
		require.NotNil(t, hit)
		assert.Equal(t, "a", hit.ID)
		assert.True(t, HasConflict(&candidate, existing))
	})

	t.Run("touching boundary does not conflict", func(t *testing.T) {
		candidate := models.Booking{
			ID: "c", ServiceID: "svc-doctor", Date: "2025-06-10",
			Time: "10:30", DurationMinutes: 30,
		}
		assert.Nil(t, FindConflict(&candidate, existing))
	})

	t.Run("other service passes", func(t *testing.T) {
		candidate := models.Booking{
			ID: "d", ServiceID: "svc-yoga", Date: "2025-06-10",
			Time: "10:00", DurationMinutes: 30,
		}
		assert.Nil(t, FindConflict(&candidate, existing))
	})

	t.Run("other date passes", func(t *testing.T) {
		candidate := models.Booking{
			ID: "e", ServiceID: "svc-doctor", Date: "2025-06-11",
			Time: "10:00", DurationMinutes: 30,
		}
		assert.Nil(t, FindConflict(&candidate, existing))
	})

	t.Run("own id is skipped when editing", func(t *testing.T) {
		candidate := existing[0]
		candidate.Time = "10:10"
		assert.Nil(t, FindConflict(&candidate, existing))
	})

	t.Run("first collision wins", func(t *testing.T) {
		many := append([]models.Booking{}, existing...)
		many = append(many, models.Booking{
			ID: "f", ServiceID: "svc-doctor", Date: "2025-06-10",
			Time: "10:20", DurationMinutes: 30,
		})
		candidate := models.Booking{
			ID: "g", ServiceID: "svc-doctor", Date: "2025-06-10",
			Time: "10:15", DurationMinutes: 30,
		}
		hit := FindConflict(&candidate, many)
		require.NotNil(t, hit)
		assert.Equal(t, "a", hit.ID)
	})
}
