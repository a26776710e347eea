package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mmynk/eventsplit/internal/dbx"
	"github.com/mmynk/eventsplit/internal/models"
)

// CreateParticipant adds a participant to an existing event.
func (s *SQLiteStore) CreateParticipant(ctx context.Context, p *models.Participant) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := touch(ctx, tx, p.EventCode); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO participants (event_code, name, email, iban, bic) VALUES (?, ?, ?, ?, ?)",
			p.EventCode, p.Name, p.Email, p.IBAN, p.BIC,
		)
		if err != nil {
			if isConstraint(err) {
				return fmt.Errorf("participant %s in event %s: %w", p.Name, p.EventCode, models.ErrAlreadyExists)
			}
			return fmt.Errorf("failed to insert participant: %w", err)
		}
		return nil
	})
}

// GetParticipant retrieves one participant of an event.
func (s *SQLiteStore) GetParticipant(ctx context.Context, eventCode, name string) (*models.Participant, error) {
	return getParticipant(ctx, s.db, eventCode, name)
}

func getParticipant(ctx context.Context, q dbx.DBTX, eventCode, name string) (*models.Participant, error) {
	p := &models.Participant{}
	err := q.QueryRowContext(ctx,
		"SELECT event_code, name, email, iban, bic FROM participants WHERE event_code = ? AND name = ?",
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
func (s *SQLiteStore) ListParticipants(ctx context.Context, eventCode string) ([]models.Participant, error) {
	return listParticipants(ctx, s.db, eventCode)
}

func listParticipants(ctx context.Context, q dbx.DBTX, eventCode string) ([]models.Participant, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT event_code, name, email, iban, bic FROM participants WHERE event_code = ? ORDER BY name",
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return participants, nil
}

// UpdateParticipant overwrites the non-empty metadata fields of p.
func (s *SQLiteStore) UpdateParticipant(ctx context.Context, p *models.Participant) (*models.Participant, error) {
	var updated *models.Participant
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		found, err := getParticipant(ctx, tx, p.EventCode, p.Name)
		if err != nil {
			return err
		}
		if p.Email != "" {
			found.Email = p.Email
		}
		if p.IBAN != "" {
			found.IBAN = p.IBAN
		}
		if p.BIC != "" {
			found.BIC = p.BIC
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE participants SET email = ?, iban = ?, bic = ? WHERE event_code = ? AND name = ?",
			found.Email, found.IBAN, found.BIC, found.EventCode, found.Name,
		); err != nil {
			return fmt.Errorf("failed to update participant: %w", err)
		}
		updated = found
		return touch(ctx, tx, p.EventCode)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteParticipant removes a participant; expenses they paid and debts they
// are party to cascade.
func (s *SQLiteStore) DeleteParticipant(ctx context.Context, eventCode, name string) (*models.Participant, error) {
	var found *models.Participant
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		found, err = getParticipant(ctx, tx, eventCode, name)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM participants WHERE event_code = ? AND name = ?",
			eventCode, name,
		); err != nil {
			return fmt.Errorf("failed to delete participant: %w", err)
		}
		return touch(ctx, tx, eventCode)
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func isConstraint(err error) bool {
	return strings.Contains(err.Error(), "constraint failed")
}
