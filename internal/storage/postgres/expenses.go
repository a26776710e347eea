package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/eventsplit/internal/dbx"
	"github.com/mmynk/eventsplit/internal/models"
	"github.com/mmynk/eventsplit/internal/storage"
)

const expenseColumns = "id, event_code, payer, amount_cents, description, date"

// CreateExpense persists a new expense paid by an existing participant.
func (s *PostgresStore) CreateExpense(ctx context.Context, e *models.Expense) error {
	if e.Amount < 0 {
		return fmt.Errorf("%w: %s", models.ErrInvalidAmount, e.Amount)
	}
	if e.Date.IsZero() {
		e.Date = time.Now()
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO expenses (event_code, payer, amount_cents, description, date)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			e.EventCode, e.PayerName, e.Amount.Cents(), e.Description, e.Date,
		).Scan(&e.ID)
		if pgCode(err) == foreignKeyViolation {
			return fmt.Errorf("participant %s in event %s: %w", e.PayerName, e.EventCode, models.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}
		return touch(ctx, tx, e.EventCode)
	})
}

// GetExpense retrieves an expense by (event, payer, id).
func (s *PostgresStore) GetExpense(ctx context.Context, eventCode, payer string, id int64) (*models.Expense, error) {
	return getExpense(ctx, s.db, eventCode, payer, id)
}

func getExpense(ctx context.Context, q dbx.DBTX, eventCode, payer string, id int64) (*models.Expense, error) {
	e, err := scanExpense(q.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE event_code = $1 AND payer = $2 AND id = $3",
		eventCode, payer, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %d paid by %s in event %s: %w", id, payer, eventCode, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return e, nil
}

// ListExpenses returns all expenses of an event ordered by id.
func (s *PostgresStore) ListExpenses(ctx context.Context, eventCode string) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE event_code = $1 ORDER BY id",
		eventCode,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}

// UpdateExpense applies the provided fields of upd.
func (s *PostgresStore) UpdateExpense(ctx context.Context, eventCode, payer string, id int64, upd storage.ExpenseUpdate) (*models.Expense, error) {
	if upd.Amount != nil && *upd.Amount < 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidAmount, *upd.Amount)
	}

	var updated *models.Expense
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		e, err := getExpense(ctx, tx, eventCode, payer, id)
		if err != nil {
			return err
		}
		if upd.Description != nil && *upd.Description != "" {
			e.Description = *upd.Description
		}
		if upd.Amount != nil {
			e.Amount = *upd.Amount
		}
		if upd.Date != nil {
			e.Date = *upd.Date
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE expenses SET amount_cents = $1, description = $2, date = $3 WHERE id = $4",
			e.Amount.Cents(), e.Description, e.Date, e.ID,
		); err != nil {
			return fmt.Errorf("failed to update expense: %w", err)
		}
		updated = e
		return touch(ctx, tx, eventCode)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteExpense removes an expense by (event, payer, id).
func (s *PostgresStore) DeleteExpense(ctx context.Context, eventCode, payer string, id int64) (*models.Expense, error) {
	var found *models.Expense
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		found, err = scanExpense(tx.QueryRowContext(ctx,
			"DELETE FROM expenses WHERE event_code = $1 AND payer = $2 AND id = $3 RETURNING "+expenseColumns,
			eventCode, payer, id,
		))
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("expense %d paid by %s in event %s: %w", id, payer, eventCode, models.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to delete expense: %w", err)
		}
		return touch(ctx, tx, eventCode)
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(row scanner) (*models.Expense, error) {
	var (
		e     models.Expense
		cents int64
	)
	if err := row.Scan(&e.ID, &e.EventCode, &e.PayerName, &cents, &e.Description, &e.Date); err != nil {
		return nil, err
	}
	e.Amount = models.Cents(cents)
	return &e, nil
}
