package sqlite

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
func (s *SQLiteStore) ListDebts(ctx context.Context, eventCode string) ([]models.Debt, error) {
	return listDebts(ctx, s.db, eventCode)
}

func listDebts(ctx context.Context, q dbx.DBTX, eventCode string) ([]models.Debt, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT debtor, creditor, amount_cents, received FROM debts
		 WHERE event_code = ? ORDER BY debtor, creditor`,
		eventCode,
	)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate debts: %w", err)
	}
	return debts, nil
}

// ToggleReceived flips the received flag of one existing debt.
func (s *SQLiteStore) ToggleReceived(ctx context.Context, eventCode, debtor, creditor string, expect *bool) (*models.Debt, error) {
	var debt *models.Debt
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var (
			d     = models.Debt{DebtorName: debtor, CreditorName: creditor}
			cents int64
		)
		err := tx.QueryRowContext(ctx,
			"SELECT amount_cents, received FROM debts WHERE event_code = ? AND debtor = ? AND creditor = ?",
			eventCode, debtor, creditor,
		).Scan(&cents, &d.Received)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("debt %s->%s in event %s: %w", debtor, creditor, eventCode, models.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to get debt: %w", err)
		}
		if expect != nil && *expect != d.Received {
			return fmt.Errorf("debt %s->%s received=%v, caller expected %v: %w",
				debtor, creditor, d.Received, *expect, models.ErrImproperState)
		}

		d.Amount = models.Cents(cents)
		d.Received = !d.Received
		if _, err := tx.ExecContext(ctx,
			"UPDATE debts SET received = ? WHERE event_code = ? AND debtor = ? AND creditor = ?",
			d.Received, eventCode, debtor, creditor,
		); err != nil {
			return fmt.Errorf("failed to update debt: %w", err)
		}
		debt = &d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return debt, nil
}

// ReplaceDebts deletes the event's debts and inserts debts in one transaction.
func (s *SQLiteStore) ReplaceDebts(ctx context.Context, eventCode string, debts []models.Debt, preserveReceived bool) ([]models.Debt, error) {
	next := make([]models.Debt, len(debts))
	copy(next, debts)

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if preserveReceived {
			prev, err := listDebts(ctx, tx, eventCode)
			if err != nil {
				return err
			}
			storage.CarryReceived(prev, next)
		} else {
			for i := range next {
				next[i].Received = false
			}
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM debts WHERE event_code = ?", eventCode); err != nil {
			return fmt.Errorf("failed to delete debts: %w", err)
		}
		for _, d := range next {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO debts (event_code, debtor, creditor, amount_cents, received) VALUES (?, ?, ?, ?, ?)",
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
