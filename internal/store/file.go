package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"probook/internal/models"
)

// FileStore persists bookings as a JSON array in a single file.
// Writes go through a temp file and rename so a crash mid-write never
// leaves a half-written collection behind.
type FileStore struct {
	path   string
	logger *zerolog.Logger
}

// NewFileStore creates the parent directory if needed and returns a
// store backed by path.
func NewFileStore(path string, logger *zerolog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileStore{path: path, logger: logger}, nil
}

// Path returns the backing file path (used by the backup service).
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(_ context.Context) ([]models.Booking, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []models.Booking{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read bookings file: %w", err)
	}

	var bookings []models.Booking
	if err := json.Unmarshal(data, &bookings); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("bookings file unreadable, starting empty")
		return []models.Booking{}, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	return bookings, nil
}

func (s *FileStore) Save(_ context.Context, bookings []models.Booking) error {
	if bookings == nil {
		bookings = []models.Booking{}
	}
	data, err := json.MarshalIndent(bookings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode bookings: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write bookings file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace bookings file: %w", err)
	}
	return nil
}
