// Package store provides durable persistence for the booking collection.
//
// A Store holds the whole collection as one unit: Load returns every
// booking, Save replaces everything. Mutations are read-modify-write
// over the full collection, which keeps the engine's view consistent
// regardless of backend.
package store

import (
	"context"
	"errors"

	"probook/internal/models"
)

// ErrCorruptState marks persisted content that could not be decoded.
// Load recovers by returning an empty collection alongside this error
// (wrapped); callers should warn and continue rather than fail.
var ErrCorruptState = errors.New("stored bookings are corrupt")

// Store is the persistence collaborator for bookings.
type Store interface {
	// Load returns the full persisted collection. A missing backing
	// record yields an empty slice and nil error; undecodable content
	// yields an empty slice and an error wrapping ErrCorruptState.
	Load(ctx context.Context) ([]models.Booking, error)

	// Save replaces the entire persisted collection.
	Save(ctx context.Context, bookings []models.Booking) error
}
