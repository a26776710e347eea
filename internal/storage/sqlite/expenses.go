package sqlite

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
func (s *SQLiteStore) CreateExpense(ctx context.Context, e *models.Expense) error {
	if e.Amount < 0 {
		return fmt.Errorf("%w: %s", models.ErrInvalidAmount, e.Amount)
	}
	if e.Date.IsZero() {
		e.Date = time.Now()
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := getParticipant(ctx, tx, e.EventCode, e.PayerName); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO expenses (event_code, payer, amount_cents, description, date) VALUES (?, ?, ?, ?, ?)",
			e.EventCode, e.PayerName, e.Amount.Cents(), e.Description, e.Date.Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}
		if e.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("failed to read expense id: %w", err)
		}
		return touch(ctx, tx, e.EventCode)
	})
}

// GetExpense retrieves an expense by (event, payer, id).
func (s *SQLiteStore) GetExpense(ctx context.Context, eventCode, payer string, id int64) (*models.Expense, error) {
	return getExpense(ctx, s.db, eventCode, payer, id)
}

func getExpense(ctx context.Context, q dbx.DBTX, eventCode, payer string, id int64) (*models.Expense, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE event_code = ? AND payer = ? AND id = ?",
		eventCode, payer, id,
	)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %d paid by %s in event %s: %w", id, payer, eventCode, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return e, nil
}

// ListExpenses returns all expenses of an event ordered by id.
func (s *SQLiteStore) ListExpenses(ctx context.Context, eventCode string) ([]models.Expense, error) {
	return listExpenses(ctx, s.db, eventCode)
}

func listExpenses(ctx context.Context, q dbx.DBTX, eventCode string) ([]models.Expense, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE event_code = ? ORDER BY id",
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

// UpdateExpense applies the provided fields of upd.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, eventCode, payer string, id int64, upd storage.ExpenseUpdate) (*models.Expense, error) {
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
			if *upd.Amount < 0 {
				return fmt.Errorf("%w: %s", models.ErrInvalidAmount, *upd.Amount)
			}
			e.Amount = *upd.Amount
		}
		if upd.Date != nil {
			e.Date = *upd.Date
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE expenses SET amount_cents = ?, description = ?, date = ? WHERE id = ?",
			e.Amount.Cents(), e.Description, e.Date.Unix(), e.ID,
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
func (s *SQLiteStore) DeleteExpense(ctx context.Context, eventCode, payer string, id int64) (*models.Expense, error) {
	var found *models.Expense
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		found, err = getExpense(ctx, tx, eventCode, payer, id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id); err != nil {
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
		date  int64
	)
	if err := row.Scan(&e.ID, &e.EventCode, &e.PayerName, &cents, &e.Description, &date); err != nil {
		return nil, err
	}
	e.Amount = models.Cents(cents)
	e.Date = time.Unix(date, 0).UTC()
	return &e, nil
}
