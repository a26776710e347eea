// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"time"

	"github.com/mmynk/eventsplit/internal/models"
)

// EventStore persists events.
type EventStore interface {
	// CreateEvent persists a new event. Code, CreatedAt and LastActivity are
	// populated by the store when empty.
	CreateEvent(ctx context.Context, event *models.Event) error

	// GetEvent returns models.ErrNotFound if the code is unknown.
	GetEvent(ctx context.Context, code string) (*models.Event, error)

	ListEvents(ctx context.Context, order models.EventOrder) ([]*models.Event, error)

	// RenameEvent updates the name and bumps LastActivity.
	RenameEvent(ctx context.Context, code, name string) (*models.Event, error)

	// DeleteEvent removes the event and cascades to all of its participants,
	// expenses and debts.
	DeleteEvent(ctx context.Context, code string) (*models.Event, error)
}

// ParticipantStore persists participants. Every mutation bumps the event's
// LastActivity.
type ParticipantStore interface {
	CreateParticipant(ctx context.Context, p *models.Participant) error
	GetParticipant(ctx context.Context, eventCode, name string) (*models.Participant, error)

	// ListParticipants returns the participants of an event ordered by name.
	ListParticipants(ctx context.Context, eventCode string) ([]models.Participant, error)

	// UpdateParticipant overwrites only the non-empty metadata fields of p.
	UpdateParticipant(ctx context.Context, p *models.Participant) (*models.Participant, error)

	// DeleteParticipant removes the participant, the expenses they paid, and
	// every debt they are party to.
	DeleteParticipant(ctx context.Context, eventCode, name string) (*models.Participant, error)
}

// ExpenseStore persists expenses. Every mutation bumps the event's
// LastActivity.
type ExpenseStore interface {
	// CreateExpense assigns e.ID. The payer must be a participant of the event.
	CreateExpense(ctx context.Context, e *models.Expense) error
	GetExpense(ctx context.Context, eventCode, payer string, id int64) (*models.Expense, error)
	ListExpenses(ctx context.Context, eventCode string) ([]models.Expense, error)

	// UpdateExpense applies the non-nil fields of upd to the expense.
	UpdateExpense(ctx context.Context, eventCode, payer string, id int64, upd ExpenseUpdate) (*models.Expense, error)
	DeleteExpense(ctx context.Context, eventCode, payer string, id int64) (*models.Expense, error)
}

// ExpenseUpdate carries the optional fields of an expense update.
type ExpenseUpdate struct {
	Description *string
	Amount      *models.Money
	Date        *time.Time
}

// DebtStore is the debt ledger. Debts are replaced wholesale by the
// settlement engine; only the received flag is mutated in place.
type DebtStore interface {
	// ListDebts returns the debts of an event ordered by (debtor, creditor).
	ListDebts(ctx context.Context, eventCode string) ([]models.Debt, error)

	// ToggleReceived flips the received flag of one debt. It never creates a
	// debt: a missing pair is models.ErrNotFound. When expect is non-nil and
	// differs from the stored flag, models.ErrImproperState is returned and
	// nothing changes.
	ToggleReceived(ctx context.Context, eventCode, debtor, creditor string, expect *bool) (*models.Debt, error)

	// ReplaceDebts atomically swaps the event's whole debt set for debts.
	// With preserveReceived, a new debt whose pair and amount match a stored
	// debt inherits its received flag. Returns the stored set.
	ReplaceDebts(ctx context.Context, eventCode string, debts []models.Debt, preserveReceived bool) ([]models.Debt, error)
}

// Store defines the interface for all storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	EventStore
	ParticipantStore
	ExpenseStore
	DebtStore

	// Close releases any resources held by the store.
	Close() error
}
