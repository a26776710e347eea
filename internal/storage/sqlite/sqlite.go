// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/eventsplit/internal/dbx"
	"github.com/mmynk/eventsplit/internal/models"
	"github.com/mmynk/eventsplit/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Pragmas in the DSN apply to every pooled connection
	dsn := "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single writer connection; callers never nest queries outside a tx.
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateEvent persists a new event with a freshly generated unique code.
func (s *SQLiteStore) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.Code == "" {
		code, err := storage.UniqueEventCode(ctx, s.eventExists)
		if err != nil {
			return err
		}
		event.Code = code
	}
	now := time.Now()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	if event.LastActivity.IsZero() {
		event.LastActivity = event.CreatedAt
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events (code, name, created_at, last_activity) VALUES (?, ?, ?, ?)",
		event.Code, event.Name, event.CreatedAt.UnixMilli(), event.LastActivity.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

func (s *SQLiteStore) eventExists(ctx context.Context, code string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM events WHERE code = ?", code).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetEvent retrieves an event by code.
func (s *SQLiteStore) GetEvent(ctx context.Context, code string) (*models.Event, error) {
	return getEvent(ctx, s.db, code)
}

func getEvent(ctx context.Context, q dbx.DBTX, code string) (*models.Event, error) {
	var created, last int64
	event := &models.Event{}
	err := q.QueryRowContext(ctx,
		"SELECT code, name, created_at, last_activity FROM events WHERE code = ?",
		code,
	).Scan(&event.Code, &event.Name, &created, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %s: %w", code, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	event.CreatedAt = time.UnixMilli(created)
	event.LastActivity = time.UnixMilli(last)
	return event, nil
}

// ListEvents returns all events in the requested order.
func (s *SQLiteStore) ListEvents(ctx context.Context, order models.EventOrder) ([]*models.Event, error) {
	orderBy := "name ASC, code ASC"
	switch order {
	case models.OrderByCreation:
		orderBy = "created_at ASC, code ASC"
	case models.OrderByLastActivity:
		orderBy = "last_activity DESC, code ASC"
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT code, name, created_at, last_activity FROM events ORDER BY "+orderBy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		var created, last int64
		event := &models.Event{}
		if err := rows.Scan(&event.Code, &event.Name, &created, &last); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		event.CreatedAt = time.UnixMilli(created)
		event.LastActivity = time.UnixMilli(last)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}

// RenameEvent changes an event's name and bumps its last activity.
func (s *SQLiteStore) RenameEvent(ctx context.Context, code, name string) (*models.Event, error) {
	var event *models.Event
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE events SET name = ?, last_activity = ? WHERE code = ?",
			name, time.Now().UnixMilli(), code,
		)
		if err := expectOne(res, err, "event "+code); err != nil {
			return err
		}
		event, err = getEvent(ctx, tx, code)
		return err
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// DeleteEvent removes an event; foreign keys cascade to everything inside it.
func (s *SQLiteStore) DeleteEvent(ctx context.Context, code string) (*models.Event, error) {
	var event *models.Event
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		event, err = getEvent(ctx, tx, code)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM events WHERE code = ?", code); err != nil {
			return fmt.Errorf("failed to delete event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// touch bumps the last activity of an event.
func touch(ctx context.Context, tx dbx.DBTX, code string) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE events SET last_activity = ? WHERE code = ?",
		time.Now().UnixMilli(), code,
	)
	return expectOne(res, err, "event "+code)
}

// expectOne turns a zero-row update into models.ErrNotFound.
func expectOne(res sql.Result, err error, what string) error {
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}
	return nil
}
