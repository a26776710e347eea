// Package ledger owns the debt ledger of every event: it regenerates debts
// from expenses, flips received flags, and publishes each new ledger state on
// the event's debt topic.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mmynk/eventsplit/internal/calculator"
	"github.com/mmynk/eventsplit/internal/metrics"
	"github.com/mmynk/eventsplit/internal/models"
	"github.com/mmynk/eventsplit/internal/notify"
	"github.com/mmynk/eventsplit/internal/storage"
)

// Engine serializes all debt writes. Generations and toggles commit and
// publish in the same order.
type Engine struct {
	store            storage.Store
	hub              *notify.Hub
	preserveReceived bool

	mu sync.Mutex
}

// NewEngine creates an engine. With preserveReceived, a regenerated debt
// whose debtor, creditor and amount are unchanged keeps its received flag.
func NewEngine(store storage.Store, hub *notify.Hub, preserveReceived bool) *Engine {
	return &Engine{
		store:            store,
		hub:              hub,
		preserveReceived: preserveReceived,
	}
}

// Generate recomputes the event's debts from its expenses and replaces the
// stored set in one transaction.
func (e *Engine) Generate(ctx context.Context, code string) ([]models.Debt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	debts, err := e.generate(ctx, code)
	metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Generations.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.Generations.WithLabelValues("ok").Inc()

	slog.Debug("Debts generated", "event_code", code, "debts", len(debts), "total", models.TotalDebt(debts))
	e.publish(code, notify.ActionGenerated, debts)
	return debts, nil
}

func (e *Engine) generate(ctx context.Context, code string) ([]models.Debt, error) {
	if _, err := e.store.GetEvent(ctx, code); err != nil {
		return nil, err
	}
	participants, err := e.store.ListParticipants(ctx, code)
	if err != nil {
		return nil, err
	}
	expenses, err := e.store.ListExpenses(ctx, code)
	if err != nil {
		return nil, err
	}

	debts, err := calculator.Settle(expenses, participants)
	if err != nil {
		return nil, fmt.Errorf("failed to settle event %s: %w", code, err)
	}
	return e.store.ReplaceDebts(ctx, code, debts, e.preserveReceived)
}

// Debts returns the stored debts of an event.
func (e *Engine) Debts(ctx context.Context, code string) ([]models.Debt, error) {
	if _, err := e.store.GetEvent(ctx, code); err != nil {
		return nil, err
	}
	return e.store.ListDebts(ctx, code)
}

// ToggleReceived flips the received flag of an existing debt.
func (e *Engine) ToggleReceived(ctx context.Context, code, debtor, creditor string) (models.Debt, error) {
	return e.toggle(ctx, code, debtor, creditor, nil)
}

// ToggleReceivedIf flips the flag only if it currently equals expect;
// otherwise it returns models.ErrImproperState.
func (e *Engine) ToggleReceivedIf(ctx context.Context, code, debtor, creditor string, expect bool) (models.Debt, error) {
	return e.toggle(ctx, code, debtor, creditor, &expect)
}

func (e *Engine) toggle(ctx context.Context, code, debtor, creditor string, expect *bool) (models.Debt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	debt, err := e.store.ToggleReceived(ctx, code, debtor, creditor, expect)
	if err != nil {
		return models.Debt{}, err
	}
	debts, err := e.store.ListDebts(ctx, code)
	if err != nil {
		return models.Debt{}, err
	}
	e.publish(code, notify.ActionToggled, debts)
	return *debt, nil
}

func (e *Engine) publish(code string, action notify.Action, debts []models.Debt) {
	if e.hub == nil {
		return
	}
	e.hub.Publish(notify.Message{
		Topic:   notify.DebtTopic(code),
		Action:  action,
		Payload: debts,
	})
}

// AwaitDebtChange blocks until the event's debts are regenerated or toggled
// and returns the fresh list. It returns models.ErrTimeout when nothing
// changes within timeout and models.ErrNotFound if the event is deleted
// while waiting.
func (e *Engine) AwaitDebtChange(ctx context.Context, code string, timeout time.Duration) ([]models.Debt, error) {
	if e.hub == nil {
		return nil, fmt.Errorf("no notification hub configured")
	}
	if _, err := e.store.GetEvent(ctx, code); err != nil {
		return nil, err
	}

	msg, err := e.hub.Await(ctx, notify.DebtTopic(code), timeout)
	if err != nil {
		return nil, err
	}
	if msg.Action == notify.ActionDeleted {
		return nil, fmt.Errorf("event %s deleted: %w", code, models.ErrNotFound)
	}
	if debts, ok := msg.Payload.([]models.Debt); ok {
		return debts, nil
	}
	return e.store.ListDebts(ctx, code)
}
