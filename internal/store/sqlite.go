package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"

	"probook/internal/models"
)

// SQLiteStore persists bookings in a SQLite database. Save replaces the
// whole table inside one transaction, matching the replace-all contract.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *zerolog.Logger
}

// NewSQLiteStore opens (or creates) the database at path and ensures the
// bookings table exists.
func NewSQLiteStore(path string, logger *zerolog.Logger) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS bookings (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL,
		service_id TEXT NOT NULL,
		service_name TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL,
		date TEXT NOT NULL,
		time TEXT NOT NULL,
		status TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create bookings table: %w", err)
	}

	logger.Info().Str("path", path).Msg("sqlite store initialized")
	return &SQLiteStore{db: db, path: path, logger: logger}, nil
}

// Path returns the database file path (used by the backup service).
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context) ([]models.Booking, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, email, phone, service_id,
		service_name, duration_minutes, date, time, status, notes, created_at
		FROM bookings ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	bookings := []models.Booking{}
	for rows.Next() {
		var b models.Booking
		var status string
		var createdAt time.Time
		if err := rows.Scan(&b.ID, &b.Name, &b.Email, &b.Phone, &b.ServiceID,
			&b.ServiceName, &b.DurationMinutes, &b.Date, &b.Time, &status,
			&b.Notes, &createdAt); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		parsed, err := models.ParseStatus(status)
		if err != nil {
			s.logger.Warn().Str("id", b.ID).Str("status", status).Msg("stored booking has unknown status, skipping")
			return []models.Booking{}, fmt.Errorf("%w: %v", ErrCorruptState, err)
		}
		b.Status = parsed
		b.CreatedAt = createdAt
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read bookings: %w", err)
	}
	return bookings, nil
}

func (s *SQLiteStore) Save(ctx context.Context, bookings []models.Booking) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM bookings`); err != nil {
		return fmt.Errorf("clear bookings: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO bookings (id, name, email,
		phone, service_id, service_name, duration_minutes, date, time, status,
		notes, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range bookings {
		if _, err := stmt.ExecContext(ctx, b.ID, b.Name, b.Email, b.Phone,
			b.ServiceID, b.ServiceName, b.DurationMinutes, b.Date, b.Time,
			string(b.Status), b.Notes, b.CreatedAt); err != nil {
			return fmt.Errorf("insert booking %s: %w", b.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}
