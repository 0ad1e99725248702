package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"probook/internal/engine"
	"probook/internal/export"
	"probook/internal/metrics"
	"probook/internal/models"
	"probook/internal/query"
)

// BookingRequest is the request body for creating or updating a booking.
type BookingRequest struct {
	models.Draft

	// ConfirmConflict acknowledges a previously reported conflict. A
	// conflicting save without it is answered 409 and not persisted.
	ConfirmConflict bool `json:"confirmConflict,omitempty"`
}

// ConflictResponse describes the colliding booking in a 409 answer.
type ConflictResponse struct {
	Error string          `json:"error"`
	With  *models.Booking `json:"conflictsWith"`
}

// BookingResponse wraps a saved booking plus an advisory conflict, when
// the caller chose to save anyway.
type BookingResponse struct {
	Booking       *models.Booking `json:"booking"`
	ConflictsWith *models.Booking `json:"conflictsWith,omitempty"`
}

// StatusRequest is the request body for a status transition.
type StatusRequest struct {
	Status string `json:"status"`
}

// handleServices lists the catalog.
// GET /api/services
func (s *HTTPServer) handleServices(w http.ResponseWriter, _ *http.Request) {
	metrics.IncHTTP("services")
	writeJSON(w, http.StatusOK, map[string]any{"services": s.engine.Services()})
}

// handleListBookings returns the filtered, sorted collection.
// GET /api/bookings?q=&service=&status=&date=&sort=
func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_list")

	params, ok := s.queryParams(w, r)
	if !ok {
		return
	}

	bookings, err := s.engine.Bookings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load bookings")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"bookings": query.Run(bookings, params)})
}

// handleCreateBooking validates and persists a new booking.
// POST /api/bookings
func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_create")

	req, ok := decodeBookingRequest(w, r)
	if !ok {
		return
	}

	if !req.ConfirmConflict {
		warning, err := s.engine.CheckConflict(r.Context(), &req.Draft, "")
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to check conflicts")
			return
		}
		if warning != nil {
			writeJSON(w, http.StatusConflict, ConflictResponse{
				Error: "booking conflicts with an existing booking for the same service",
				With:  &warning.With,
			})
			return
		}
	}

	booking, warning, err := s.engine.Create(r.Context(), &req.Draft)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	resp := BookingResponse{Booking: booking}
	if warning != nil {
		resp.ConflictsWith = &warning.With
	}
	writeJSON(w, http.StatusCreated, resp)
}

// handleUpdateBooking re-validates and replaces an existing booking.
// PUT /api/bookings/{id}
func (s *HTTPServer) handleUpdateBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_update")

	id := r.PathValue("id")
	req, ok := decodeBookingRequest(w, r)
	if !ok {
		return
	}

	if !req.ConfirmConflict {
		warning, err := s.engine.CheckConflict(r.Context(), &req.Draft, id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to check conflicts")
			return
		}
		if warning != nil {
			writeJSON(w, http.StatusConflict, ConflictResponse{
				Error: "booking conflicts with an existing booking for the same service",
				With:  &warning.With,
			})
			return
		}
	}

	booking, warning, err := s.engine.Update(r.Context(), id, &req.Draft)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	resp := BookingResponse{Booking: booking}
	if warning != nil {
		resp.ConflictsWith = &warning.With
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleDeleteBooking removes a booking. Unknown ids succeed; delete is
// idempotent.
// DELETE /api/bookings/{id}
func (s *HTTPServer) handleDeleteBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_delete")

	if err := s.engine.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete booking")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSetStatus transitions a booking's status.
// POST /api/bookings/{id}/status
func (s *HTTPServer) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_set_status")

	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	status, err := models.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, "status must be Pending, Confirmed or Cancelled")
		return
	}

	booking, err := s.engine.SetStatus(r.Context(), r.PathValue("id"), status)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BookingResponse{Booking: booking})
}

// handleExport streams the collection as CSV (default) or XLSX, with the
// same filters as the list endpoint. Row order follows the applied
// filters and sort.
// GET /api/bookings/export?format=csv|xlsx
func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_export")

	params, ok := s.queryParams(w, r)
	if !ok {
		return
	}

	bookings, err := s.engine.Bookings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load bookings")
		return
	}
	filtered := query.Run(bookings, params)

	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition",
			`attachment; filename="`+export.Filename("csv", time.Now())+`"`)
		_, _ = w.Write([]byte(export.CSV(filtered)))
	case "xlsx":
		w.Header().Set("Content-Type",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition",
			`attachment; filename="`+export.Filename("xlsx", time.Now())+`"`)
		if err := export.Excel(w, filtered); err != nil {
			s.logger.Error().Err(err).Msg("xlsx export failed")
		}
	default:
		writeError(w, http.StatusBadRequest, "format must be csv or xlsx")
	}
}

// handleStats returns per-status counts.
// GET /api/stats
func (s *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("stats")

	bookings, err := s.engine.Bookings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load bookings")
		return
	}

	counts := query.CountByStatus(bookings)
	writeJSON(w, http.StatusOK, map[string]int{
		"total":     len(bookings),
		"pending":   counts[models.StatusPending],
		"confirmed": counts[models.StatusConfirmed],
		"cancelled": counts[models.StatusCancelled],
	})
}

// queryParams parses the shared list/export filter parameters, rejecting
// unknown status and leaving unknown sort keys as "no sort".
func (s *HTTPServer) queryParams(w http.ResponseWriter, r *http.Request) (query.Params, bool) {
	q := r.URL.Query()
	params := query.Params{
		Search:    q.Get("q"),
		ServiceID: q.Get("service"),
		Date:      q.Get("date"),
		Sort:      query.ParseSort(q.Get("sort")),
	}
	if raw := q.Get("status"); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "status must be Pending, Confirmed or Cancelled")
			return query.Params{}, false
		}
		params.Status = status
	}
	return params, true
}

func decodeBookingRequest(w http.ResponseWriter, r *http.Request) (*BookingRequest, bool) {
	var req BookingRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	return &req, true
}

func (s *HTTPServer) writeEngineError(w http.ResponseWriter, err error) {
	var verr *engine.ValidationError
	var nferr *engine.NotFoundError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Reason)
	case errors.As(err, &nferr):
		writeError(w, http.StatusNotFound, nferr.Error())
	default:
		s.logger.Error().Err(err).Msg("engine operation failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
