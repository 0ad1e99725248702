package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"probook/internal/catalog"
	"probook/internal/engine"
	"probook/internal/models"
	"probook/internal/store"
)

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	logger := zerolog.New(io.Discard)
	eng := engine.New(store.NewMemoryStore(), catalog.Default(), nil, &logger, engine.Options{})
	srv := httptest.NewServer(NewHTTPServer(eng, cfg, &logger).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func futureDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format("2006-01-02")
}

func bookingBody(overrides map[string]any) *bytes.Buffer {
	body := map[string]any{
		"name":      "Ravi Kumar",
		"email":     "ravi@example.com",
		"phone":     "+91 91234 56789",
		"serviceId": "svc-doctor",
		"date":      futureDate(5),
		"time":      "10:00",
	}
	for k, v := range overrides {
		body[k] = v
	}
	buf := new(bytes.Buffer)
	_ = json.NewEncoder(buf).Encode(body)
	return buf
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestCreateBooking(t *testing.T) {
	srv := newTestServer(t, Config{})

	t.Run("valid draft is created", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/api/bookings", "application/json", bookingBody(nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		got := decode[BookingResponse](t, resp)
		assert.NotEmpty(t, got.Booking.ID)
		assert.Equal(t, models.StatusPending, got.Booking.Status)
		assert.Equal(t, "Doctor Consultation", got.Booking.ServiceName)
		assert.Nil(t, got.ConflictsWith)
	})

	t.Run("validation failure returns the first reason", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/api/bookings", "application/json",
			bookingBody(map[string]any{"name": "", "email": "broken"}))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		got := decode[map[string]string](t, resp)
		assert.Equal(t, "Name is required", got["error"])
	})

	t.Run("conflicting draft needs confirmation", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/api/bookings", "application/json",
			bookingBody(map[string]any{"time": "10:15"}))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusConflict, resp.StatusCode)

		conflict := decode[ConflictResponse](t, resp)
		require.NotNil(t, conflict.With)
		assert.Equal(t, "10:00", conflict.With.Time)

		// Confirmed retry persists and reports the collision.
		resp2, err := http.Post(srv.URL+"/api/bookings", "application/json",
			bookingBody(map[string]any{"time": "10:15", "confirmConflict": true}))
		require.NoError(t, err)
		defer resp2.Body.Close()
		require.Equal(t, http.StatusCreated, resp2.StatusCode)

		got := decode[BookingResponse](t, resp2)
		require.NotNil(t, got.ConflictsWith)
		assert.Equal(t, conflict.With.ID, got.ConflictsWith.ID)
	})

	t.Run("adjacent slot needs no confirmation", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/api/bookings", "application/json",
			bookingBody(map[string]any{"time": "09:30"}))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/api/bookings", "application/json",
			bytes.NewBufferString("{broken"))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestUpdateBooking(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp, err := http.Post(srv.URL+"/api/bookings", "application/json", bookingBody(nil))
	require.NoError(t, err)
	created := decode[BookingResponse](t, resp)
	resp.Body.Close()

	t.Run("replaces fields, keeps id", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPut,
			srv.URL+"/api/bookings/"+created.Booking.ID,
			bookingBody(map[string]any{"name": "Sana Mehta", "time": "12:00"}))
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		got := decode[BookingResponse](t, resp)
		assert.Equal(t, created.Booking.ID, got.Booking.ID)
		assert.Equal(t, "Sana Mehta", got.Booking.Name)
		assert.Equal(t, "12:00", got.Booking.Time)
	})

	t.Run("unknown id", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPut,
			srv.URL+"/api/bookings/missing", bookingBody(nil))
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestDeleteBooking(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp, err := http.Post(srv.URL+"/api/bookings", "application/json", bookingBody(nil))
	require.NoError(t, err)
	created := decode[BookingResponse](t, resp)
	resp.Body.Close()

	del := func(id string) int {
		req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/bookings/"+id, nil)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusNoContent, del(created.Booking.ID))
	// Idempotent: a second delete of the same id still succeeds.
	assert.Equal(t, http.StatusNoContent, del(created.Booking.ID))
	assert.Equal(t, http.StatusNoContent, del("never-existed"))
}

func TestSetStatus(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp, err := http.Post(srv.URL+"/api/bookings", "application/json", bookingBody(nil))
	require.NoError(t, err)
	created := decode[BookingResponse](t, resp)
	resp.Body.Close()

	setStatus := func(id, status string) *http.Response {
		body, _ := json.Marshal(StatusRequest{Status: status})
		resp, err := http.Post(srv.URL+"/api/bookings/"+id+"/status",
			"application/json", bytes.NewReader(body))
		require.NoError(t, err)
		return resp
	}

	t.Run("valid transition", func(t *testing.T) {
		resp := setStatus(created.Booking.ID, "Confirmed")
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		got := decode[BookingResponse](t, resp)
		assert.Equal(t, models.StatusConfirmed, got.Booking.Status)
	})

	t.Run("unknown status rejected at the boundary", func(t *testing.T) {
		resp := setStatus(created.Booking.ID, "Done")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown id", func(t *testing.T) {
		resp := setStatus("missing", "Cancelled")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestListBookings(t *testing.T) {
	srv := newTestServer(t, Config{})

	for _, b := range []map[string]any{
		{"name": "Ravi Kumar", "email": "ravi@example.com", "serviceId": "svc-yoga", "time": "09:00"},
		{"name": "Sana Mehta", "email": "sana@example.com", "serviceId": "svc-salon", "time": "11:00"},
	} {
		resp, err := http.Post(srv.URL+"/api/bookings", "application/json", bookingBody(b))
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	list := func(query string) []models.Booking {
		resp, err := http.Get(srv.URL + "/api/bookings" + query)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		got := decode[map[string][]models.Booking](t, resp)
		return got["bookings"]
	}

	t.Run("all", func(t *testing.T) {
		assert.Len(t, list(""), 2)
	})

	t.Run("search", func(t *testing.T) {
		got := list("?q=ravi")
		require.Len(t, got, 1)
		assert.Equal(t, "Ravi Kumar", got[0].Name)
	})

	t.Run("service filter", func(t *testing.T) {
		got := list("?service=svc-salon")
		require.Len(t, got, 1)
		assert.Equal(t, "Sana Mehta", got[0].Name)
	})

	t.Run("descending sort", func(t *testing.T) {
		got := list("?sort=date-desc")
		require.Len(t, got, 2)
		assert.Equal(t, "11:00", got[0].Time)
	})

	t.Run("invalid status filter rejected", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/bookings?status=Done")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestExport(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp, err := http.Post(srv.URL+"/api/bookings", "application/json",
		bookingBody(map[string]any{"notes": `He said "hi"`}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	t.Run("csv", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/bookings/export")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body),
			"id,name,email,phone,serviceId,serviceName,duration,date,time,status,notes,createdAt")
		assert.Contains(t, string(body), `"He said ""hi"""`)
	})

	t.Run("xlsx", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/bookings/export?format=xlsx")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unknown format", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/bookings/export?format=pdf")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestStats(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp, err := http.Post(srv.URL+"/api/bookings", "application/json", bookingBody(nil))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/api/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[map[string]int](t, resp)
	assert.Equal(t, 1, got["total"])
	assert.Equal(t, 1, got["pending"])
	assert.Equal(t, 0, got["confirmed"])
}

func TestServices(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp, err := http.Get(srv.URL + "/api/services")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[map[string][]catalog.Service](t, resp)
	require.Len(t, got["services"], 4)
	assert.Equal(t, "svc-doctor", got["services"][0].ID)
}

func TestAPIKey(t *testing.T) {
	srv := newTestServer(t, Config{APIKey: "valid-key"})

	tests := []struct {
		name       string
		apiKey     string
		wantStatus int
	}{
		{"valid key", "valid-key", http.StatusOK},
		{"missing key", "", http.StatusUnauthorized},
		{"wrong key", "invalid-key", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/bookings", nil)
			if tt.apiKey != "" {
				req.Header.Set("x-api-key", tt.apiKey)
			}
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, Config{RateLimitRPS: 1, RateLimitBurst: 2})

	var limited bool
	for i := 0; i < 5; i++ {
		resp, err := http.Get(fmt.Sprintf("%s/api/bookings", srv.URL))
		require.NoError(t, err)
		resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests {
			limited = true
		}
	}
	assert.True(t, limited, "burst of requests should trip the limiter")
}
