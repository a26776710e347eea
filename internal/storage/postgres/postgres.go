// Package postgres provides a PostgreSQL-backed implementation of the
// storage.Store interface using the pgx stdlib driver and goose migrations.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mmynk/eventsplit/internal/dbx"
	"github.com/mmynk/eventsplit/internal/models"
	"github.com/mmynk/eventsplit/internal/storage"
	"github.com/mmynk/eventsplit/internal/storage/postgres/migrations"
)

var _ storage.Store = (*PostgresStore)(nil)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// PostgresStore implements storage.Store using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// New opens a connection pool for dsn and applies pending migrations.
func New(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// CreateEvent persists a new event with a freshly generated unique code.
func (s *PostgresStore) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.Code == "" {
		code, err := storage.UniqueEventCode(ctx, s.eventExists)
		if err != nil {
			return err
		}
		event.Code = code
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	if event.LastActivity.IsZero() {
		event.LastActivity = event.CreatedAt
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events (code, name, created_at, last_activity) VALUES ($1, $2, $3, $4)",
		event.Code, event.Name, event.CreatedAt, event.LastActivity,
	)
	if err != nil {
		if pgCode(err) == uniqueViolation {
			return fmt.Errorf("event %s: %w", event.Code, models.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

func (s *PostgresStore) eventExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM events WHERE code = $1)", code,
	).Scan(&exists)
	return exists, err
}

// GetEvent retrieves an event by code.
func (s *PostgresStore) GetEvent(ctx context.Context, code string) (*models.Event, error) {
	return getEvent(ctx, s.db, code)
}

func getEvent(ctx context.Context, q dbx.DBTX, code string) (*models.Event, error) {
	event := &models.Event{}
	err := q.QueryRowContext(ctx,
		"SELECT code, name, created_at, last_activity FROM events WHERE code = $1",
		code,
	).Scan(&event.Code, &event.Name, &event.CreatedAt, &event.LastActivity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %s: %w", code, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// ListEvents returns all events in the requested order.
func (s *PostgresStore) ListEvents(ctx context.Context, order models.EventOrder) ([]*models.Event, error) {
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
		event := &models.Event{}
		if err := rows.Scan(&event.Code, &event.Name, &event.CreatedAt, &event.LastActivity); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// RenameEvent changes an event's name and bumps its last activity.
func (s *PostgresStore) RenameEvent(ctx context.Context, code, name string) (*models.Event, error) {
	event := &models.Event{}
	err := s.db.QueryRowContext(ctx,
		`UPDATE events SET name = $1, last_activity = now() WHERE code = $2
		 RETURNING code, name, created_at, last_activity`,
		name, code,
	).Scan(&event.Code, &event.Name, &event.CreatedAt, &event.LastActivity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %s: %w", code, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to rename event: %w", err)
	}
	return event, nil
}

// DeleteEvent removes an event; foreign keys cascade to everything inside it.
func (s *PostgresStore) DeleteEvent(ctx context.Context, code string) (*models.Event, error) {
	event := &models.Event{}
	err := s.db.QueryRowContext(ctx,
		"DELETE FROM events WHERE code = $1 RETURNING code, name, created_at, last_activity",
		code,
	).Scan(&event.Code, &event.Name, &event.CreatedAt, &event.LastActivity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %s: %w", code, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete event: %w", err)
	}
	return event, nil
}

// touch bumps the last activity of an event.
func touch(ctx context.Context, tx dbx.DBTX, code string) error {
	res, err := tx.ExecContext(ctx, "UPDATE events SET last_activity = now() WHERE code = $1", code)
	if err != nil {
		return fmt.Errorf("failed to touch event: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return fmt.Errorf("event %s: %w", code, models.ErrNotFound)
	}
	return nil
}

// pgCode returns the SQLSTATE of a PostgreSQL error, or "".
func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
