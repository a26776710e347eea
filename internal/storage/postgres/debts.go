package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/eventsplit/internal/dbx"
	"github.com/mmynk/eventsplit/internal/models"
	"github.com/mmynk/eventsplit/internal/storage"
)

// ListDebts returns the debts of an event ordered by (debtor, creditor).
func (s *PostgresStore) ListDebts(ctx context.Context, eventCode string) ([]models.Debt, error) {
	return listDebts(ctx, s.db, eventCode, false)
}

func listDebts(ctx context.Context, q dbx.DBTX, eventCode string, forUpdate bool) ([]models.Debt, error) {
	query := `SELECT debtor, creditor, amount_cents, received FROM debts
		WHERE event_code = $1 ORDER BY debtor, creditor`
	if forUpdate {
		query += " FOR UPDATE"
	}
	rows, err := q.QueryContext(ctx, query, eventCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}
	defer rows.Close()

	debts := []models.Debt{}
	for rows.Next() {
		var (
			d     models.Debt
			cents int64
		)
		if err := rows.Scan(&d.DebtorName, &d.CreditorName, &cents, &d.Received); err != nil {
			return nil, fmt.Errorf("failed to scan debt: %w", err)
		}
		d.Amount = models.Cents(cents)
		debts = append(debts, d)
	}
	return debts, rows.Err()
}

// ToggleReceived flips the received flag of one existing debt.
func (s *PostgresStore) ToggleReceived(ctx context.Context, eventCode, debtor, creditor string, expect *bool) (*models.Debt, error) {
	d := &models.Debt{DebtorName: debtor, CreditorName: creditor}
	var cents int64
	err := s.db.QueryRowContext(ctx,
		`UPDATE debts SET received = NOT received
		 WHERE event_code = $1 AND debtor = $2 AND creditor = $3
		   AND ($4::boolean IS NULL OR received = $4)
		 RETURNING amount_cents, received`,
		eventCode, debtor, creditor, expect,
	).Scan(&cents, &d.Received)
	if errors.Is(err, sql.ErrNoRows) {
		if expect == nil {
			return nil, fmt.Errorf("debt %s->%s in event %s: %w", debtor, creditor, eventCode, models.ErrNotFound)
		}
		// Distinguish a missing pair from a stale expectation.
		var exists bool
		if err := s.db.QueryRowContext(ctx,
			"SELECT EXISTS (SELECT 1 FROM debts WHERE event_code = $1 AND debtor = $2 AND creditor = $3)",
			eventCode, debtor, creditor,
		).Scan(&exists); err != nil {
			return nil, fmt.Errorf("failed to get debt: %w", err)
		}
		if !exists {
			return nil, fmt.Errorf("debt %s->%s in event %s: %w", debtor, creditor, eventCode, models.ErrNotFound)
		}
		return nil, fmt.Errorf("debt %s->%s received=%v, caller expected %v: %w",
			debtor, creditor, !*expect, *expect, models.ErrImproperState)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update debt: %w", err)
	}
	d.Amount = models.Cents(cents)
	return d, nil
}

// ReplaceDebts deletes the event's debts and inserts debts in one transaction.
func (s *PostgresStore) ReplaceDebts(ctx context.Context, eventCode string, debts []models.Debt, preserveReceived bool) ([]models.Debt, error) {
	next := make([]models.Debt, len(debts))
	copy(next, debts)

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if preserveReceived {
			prev, err := listDebts(ctx, tx, eventCode, true)
			if err != nil {
				return err
			}
			storage.CarryReceived(prev, next)
		} else {
			for i := range next {
				next[i].Received = false
			}
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM debts WHERE event_code = $1", eventCode); err != nil {
			return fmt.Errorf("failed to delete debts: %w", err)
		}
		for _, d := range next {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO debts (event_code, debtor, creditor, amount_cents, received) VALUES ($1, $2, $3, $4, $5)",
				eventCode, d.DebtorName, d.CreditorName, d.Amount.Cents(), d.Received,
			); err != nil {
				return fmt.Errorf("failed to insert debt %s->%s: %w", d.DebtorName, d.CreditorName, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}
