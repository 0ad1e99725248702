package store

import (
	"context"
	"sync"

	"probook/internal/models"
)

// MemoryStore is a volatile in-process store. It backs tests and can be
// selected as a backend when durability is not wanted.
type MemoryStore struct {
	mu       sync.RWMutex
	bookings []models.Booking
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bookings: []models.Booking{}}
}

func (s *MemoryStore) Load(_ context.Context) ([]models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Booking(nil), s.bookings...), nil
}

func (s *MemoryStore) Save(_ context.Context, bookings []models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings = append([]models.Booking{}, bookings...)
	return nil
}
