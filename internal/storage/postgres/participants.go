package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/eventsplit/internal/dbx"
	"github.com/mmynk/eventsplit/internal/models"
)

// CreateParticipant adds a participant to an existing event.
func (s *PostgresStore) CreateParticipant(ctx context.Context, p *models.Participant) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := touch(ctx, tx, p.EventCode); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO participants (event_code, name, email, iban, bic) VALUES ($1, $2, $3, $4, $5)",
			p.EventCode, p.Name, p.Email, p.IBAN, p.BIC,
		)
		if pgCode(err) == uniqueViolation {
			return fmt.Errorf("participant %s in event %s: %w", p.Name, p.EventCode, models.ErrAlreadyExists)
		}
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
		return nil
	})
}

// GetParticipant retrieves one participant of an event.
func (s *PostgresStore) GetParticipant(ctx context.Context, eventCode, name string) (*models.Participant, error) {
	p := &models.Participant{}
	err := s.db.QueryRowContext(ctx,
		"SELECT event_code, name, email, iban, bic FROM participants WHERE event_code = $1 AND name = $2",
		eventCode, name,
	).Scan(&p.EventCode, &p.Name, &p.Email, &p.IBAN, &p.BIC)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("participant %s in event %s: %w", name, eventCode, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}

// ListParticipants returns the participants of an event ordered by name.
func (s *PostgresStore) ListParticipants(ctx context.Context, eventCode string) ([]models.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT event_code, name, email, iban, bic FROM participants WHERE event_code = $1 ORDER BY name",
		eventCode,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.EventCode, &p.Name, &p.Email, &p.IBAN, &p.BIC); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// UpdateParticipant overwrites the non-empty metadata fields of p.
func (s *PostgresStore) UpdateParticipant(ctx context.Context, p *models.Participant) (*models.Participant, error) {
	updated := &models.Participant{}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		err := tx.QueryRowContext(ctx,
			`UPDATE participants SET
			     email = COALESCE(NULLIF($3, ''), email),
			     iban = COALESCE(NULLIF($4, ''), iban),
			     bic = COALESCE(NULLIF($5, ''), bic)
			 WHERE event_code = $1 AND name = $2
			 RETURNING event_code, name, email, iban, bic`,
			p.EventCode, p.Name, p.Email, p.IBAN, p.BIC,
		).Scan(&updated.EventCode, &updated.Name, &updated.Email, &updated.IBAN, &updated.BIC)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("participant %s in event %s: %w", p.Name, p.EventCode, models.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to update participant: %w", err)
		}
		return touch(ctx, tx, p.EventCode)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteParticipant removes a participant; expenses they paid and debts they
// are party to cascade.
func (s *PostgresStore) DeleteParticipant(ctx context.Context, eventCode, name string) (*models.Participant, error) {
	found := &models.Participant{}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		err := tx.QueryRowContext(ctx,
			`DELETE FROM participants WHERE event_code = $1 AND name = $2
			 RETURNING event_code, name, email, iban, bic`,
			eventCode, name,
		).Scan(&found.EventCode, &found.Name, &found.Email, &found.IBAN, &found.BIC)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("participant %s in event %s: %w", name, eventCode, models.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to delete participant: %w", err)
		}
		return touch(ctx, tx, eventCode)
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}
