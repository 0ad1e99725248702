// Package engine implements the booking state machine: validation,
// conflict detection, and the mutating operations over the store.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"probook/internal/catalog"
	"probook/internal/events"
	"probook/internal/metrics"
	"probook/internal/models"
	"probook/internal/store"
)

// Publisher publishes domain events. *events.EventBus satisfies it.
type Publisher interface {
	Publish(eventType string, payload interface{})
}

// Options tunes engine behavior.
type Options struct {
	// FlagConflictOverrides records saves that proceeded despite a
	// detected conflict (warn log, counter, event). The save itself is
	// never blocked either way.
	FlagConflictOverrides bool
}

// Engine orchestrates every mutation of the booking collection. It is the
// sole writer to the store; reads go through Bookings. A mutex serializes
// the load-mutate-save cycle so each operation sees and replaces a
// consistent collection.
type Engine struct {
	store   store.Store
	catalog *catalog.Catalog
	bus     Publisher
	logger  *zerolog.Logger
	opts    Options

	mu sync.Mutex

	// Overridable in tests.
	now   func() time.Time
	newID func() string
}

// New constructs an engine. The bus may be nil when no subscribers exist.
func New(st store.Store, cat *catalog.Catalog, bus Publisher, logger *zerolog.Logger, opts Options) *Engine {
	return &Engine{
		store:   st,
		catalog: cat,
		bus:     bus,
		logger:  logger,
		opts:    opts,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Bookings returns the current collection. Corrupt persisted state is
// surfaced as a warning and replaced with an empty collection; any other
// store failure propagates.
func (e *Engine) Bookings(ctx context.Context) ([]models.Booking, error) {
	return e.load(ctx)
}

// Services returns the catalog entries.
func (e *Engine) Services() []catalog.Service {
	return e.catalog.List()
}

// CheckConflict validates nothing; it only reports whether the draft
// would collide with an existing booking. excludeID carries the id of
// the booking being edited, or empty for a new one.
func (e *Engine) CheckConflict(ctx context.Context, draft *models.Draft, excludeID string) (*ConflictWarning, error) {
	existing, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	candidate := e.fromDraft(draft, excludeID)
	if hit := FindConflict(&candidate, existing); hit != nil {
		return &ConflictWarning{With: *hit}, nil
	}
	return nil, nil
}

// Create validates the draft, assigns an id and creation timestamp, and
// appends the booking with status Pending. A detected conflict is
// returned as an advisory warning alongside the saved booking; the save
// is never blocked on conflict.
func (e *Engine) Create(ctx context.Context, draft *models.Draft) (*models.Booking, *ConflictWarning, error) {
	if verr := e.validateDraft(draft, e.now()); verr != nil {
		return nil, nil, verr
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	existing, err := e.load(ctx)
	if err != nil {
		return nil, nil, err
	}

	booking := e.fromDraft(draft, e.newID())
	booking.Status = models.StatusPending
	booking.CreatedAt = e.now()

	warning := e.noteConflict(&booking, existing, "create")

	existing = append(existing, booking)
	if err := e.store.Save(ctx, existing); err != nil {
		return nil, nil, fmt.Errorf("save bookings: %w", err)
	}

	metrics.IncBookingCreated()
	e.publish(events.TypeBookingCreated, booking)
	e.logger.Info().Str("id", booking.ID).Str("service", booking.ServiceID).
		Str("date", booking.Date).Str("time", booking.Time).Msg("booking created")
	return &booking, warning, nil
}

// Update re-validates the draft as if new and replaces the stored record
// in place. ID and CreatedAt are preserved; every other field comes from
// the draft. Conflicts are advisory, as in Create.
func (e *Engine) Update(ctx context.Context, id string, draft *models.Draft) (*models.Booking, *ConflictWarning, error) {
	if verr := e.validateDraft(draft, e.now()); verr != nil {
		return nil, nil, verr
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	existing, err := e.load(ctx)
	if err != nil {
		return nil, nil, err
	}

	idx := indexOf(existing, id)
	if idx < 0 {
		return nil, nil, &NotFoundError{ID: id}
	}

	booking := e.fromDraft(draft, id)
	booking.Status = existing[idx].Status
	booking.CreatedAt = existing[idx].CreatedAt

	warning := e.noteConflict(&booking, existing, "update")

	existing[idx] = booking
	if err := e.store.Save(ctx, existing); err != nil {
		return nil, nil, fmt.Errorf("save bookings: %w", err)
	}

	e.publish(events.TypeBookingUpdated, booking)
	e.logger.Info().Str("id", booking.ID).Msg("booking updated")
	return &booking, warning, nil
}

// Delete removes the booking by id. Deleting an id that does not exist is
// a successful no-op, not an error: delete expresses the desired end
// state ("this booking is gone"), which already holds.
func (e *Engine) Delete(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	existing, err := e.load(ctx)
	if err != nil {
		return err
	}

	idx := indexOf(existing, id)
	if idx < 0 {
		return nil
	}

	existing = append(existing[:idx], existing[idx+1:]...)
	if err := e.store.Save(ctx, existing); err != nil {
		return fmt.Errorf("save bookings: %w", err)
	}

	metrics.IncBookingDeleted()
	e.publish(events.TypeBookingDeleted, id)
	e.logger.Info().Str("id", id).Msg("booking deleted")
	return nil
}

// SetStatus overwrites the status of an existing booking and nothing
// else. Transitions between the three statuses are unconditional; no
// validation is re-run.
func (e *Engine) SetStatus(ctx context.Context, id string, status models.Status) (*models.Booking, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	existing, err := e.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := indexOf(existing, id)
	if idx < 0 {
		return nil, &NotFoundError{ID: id}
	}

	existing[idx].Status = status
	if err := e.store.Save(ctx, existing); err != nil {
		return nil, fmt.Errorf("save bookings: %w", err)
	}

	booking := existing[idx]
	metrics.IncStatusChanged(string(status))
	e.publish(events.TypeStatusChanged, booking)
	e.logger.Info().Str("id", id).Str("status", string(status)).Msg("booking status changed")
	return &booking, nil
}

// load reads the collection, degrading corrupt state to empty with a
// warning rather than failing.
func (e *Engine) load(ctx context.Context) ([]models.Booking, error) {
	bookings, err := e.store.Load(ctx)
	if err != nil {
		if errors.Is(err, store.ErrCorruptState) {
			e.logger.Warn().Err(err).Msg("persisted bookings unreadable, continuing with empty collection")
			return []models.Booking{}, nil
		}
		return nil, fmt.Errorf("load bookings: %w", err)
	}
	return bookings, nil
}

// fromDraft builds a booking from a validated draft, snapshotting the
// catalog's name and duration for the selected service.
func (e *Engine) fromDraft(draft *models.Draft, id string) models.Booking {
	svc, _ := e.catalog.Get(draft.ServiceID)
	return models.Booking{
		ID:              id,
		Name:            strings.TrimSpace(draft.Name),
		Email:           strings.TrimSpace(draft.Email),
		Phone:           strings.TrimSpace(draft.Phone),
		ServiceID:       draft.ServiceID,
		ServiceName:     svc.Name,
		DurationMinutes: svc.DurationMinutes,
		Date:            draft.Date,
		Time:            draft.Time,
		Notes:           strings.TrimSpace(draft.Notes),
	}
}

// noteConflict runs the detector and, when a collision is found, records
// it per configuration. The returned warning is advisory.
func (e *Engine) noteConflict(candidate *models.Booking, existing []models.Booking, op string) *ConflictWarning {
	hit := FindConflict(candidate, existing)
	if hit == nil {
		return nil
	}

	metrics.IncConflictDetected()
	if e.opts.FlagConflictOverrides {
		metrics.IncConflictOverride()
		e.publish(events.TypeConflictOverride, map[string]string{
			"id":   candidate.ID,
			"with": hit.ID,
			"op":   op,
		})
		e.logger.Warn().Str("id", candidate.ID).Str("with", hit.ID).Str("op", op).
			Msg("booking saved despite conflict")
	}
	return &ConflictWarning{With: *hit}
}

func (e *Engine) publish(eventType string, payload interface{}) {
	if e.bus != nil {
		e.bus.Publish(eventType, payload)
	}
}

func indexOf(bookings []models.Booking, id string) int {
	for i := range bookings {
		if bookings[i].ID == id {
			return i
		}
	}
	return -1
}
