package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmynk/eventsplit/internal/models"
	"github.com/mmynk/eventsplit/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "eventsplit-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// seedEvent creates an event with the given participants.
func seedEvent(t *testing.T, store *SQLiteStore, names ...string) string {
	t.Helper()
	ctx := context.Background()

	event := &models.Event{Name: "Trip"}
	if err := store.CreateEvent(ctx, event); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	for _, n := range names {
		if err := store.CreateParticipant(ctx, &models.Participant{EventCode: event.Code, Name: n}); err != nil {
			t.Fatalf("CreateParticipant(%s) failed: %v", n, err)
		}
	}
	return event.Code
}

func TestEvents(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateEvent generates code and timestamps", func(t *testing.T) {
		event := &models.Event{Name: "Ski trip"}
		if err := store.CreateEvent(ctx, event); err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}
		if len(event.Code) != 8 {
			t.Errorf("Expected 8-character code, got %q", event.Code)
		}
		if event.CreatedAt.IsZero() || event.LastActivity.IsZero() {
			t.Error("Expected timestamps to be set")
		}

		got, err := store.GetEvent(ctx, event.Code)
		if err != nil {
			t.Fatalf("GetEvent failed: %v", err)
		}
		if got.Name != "Ski trip" {
			t.Errorf("Name mismatch: got %s", got.Name)
		}
	})

	t.Run("GetEvent returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetEvent(ctx, "nope")
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("RenameEvent bumps last activity", func(t *testing.T) {
		event := &models.Event{Name: "Old", CreatedAt: time.Now().Add(-time.Hour)}
		if err := store.CreateEvent(ctx, event); err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}
		renamed, err := store.RenameEvent(ctx, event.Code, "New")
		if err != nil {
			t.Fatalf("RenameEvent failed: %v", err)
		}
		if renamed.Name != "New" {
			t.Errorf("Name not updated: %s", renamed.Name)
		}
		if !renamed.LastActivity.After(event.LastActivity) {
			t.Errorf("LastActivity not bumped: %v <= %v", renamed.LastActivity, event.LastActivity)
		}
	})

	t.Run("RenameEvent on unknown code", func(t *testing.T) {
		if _, err := store.RenameEvent(ctx, "missing1", "x"); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListEvents orders by name", func(t *testing.T) {
		events, err := store.ListEvents(ctx, models.OrderByName)
		if err != nil {
			t.Fatalf("ListEvents failed: %v", err)
		}
		for i := 1; i < len(events); i++ {
			if events[i-1].Name > events[i].Name {
				t.Errorf("Events not sorted by name: %s before %s", events[i-1].Name, events[i].Name)
			}
		}
	})
}

func TestDeleteEventCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	code := seedEvent(t, store, "A", "B")

	if err := store.CreateExpense(ctx, &models.Expense{EventCode: code, PayerName: "A", Amount: 1000, Description: "Taxi"}); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if _, err := store.ReplaceDebts(ctx, code, []models.Debt{{DebtorName: "B", CreditorName: "A", Amount: 500}}, false); err != nil {
		t.Fatalf("ReplaceDebts failed: %v", err)
	}

	if _, err := store.DeleteEvent(ctx, code); err != nil {
		t.Fatalf("DeleteEvent failed: %v", err)
	}

	participants, _ := store.ListParticipants(ctx, code)
	expenses, _ := store.ListExpenses(ctx, code)
	debts, _ := store.ListDebts(ctx, code)
	if len(participants)+len(expenses)+len(debts) != 0 {
		t.Errorf("Expected cascade, got %d participants, %d expenses, %d debts",
			len(participants), len(expenses), len(debts))
	}
}

func TestParticipants(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	code := seedEvent(t, store, "Bob", "Alice")

	t.Run("ListParticipants is ordered by name", func(t *testing.T) {
		ps, err := store.ListParticipants(ctx, code)
		if err != nil {
			t.Fatalf("ListParticipants failed: %v", err)
		}
		if len(ps) != 2 || ps[0].Name != "Alice" || ps[1].Name != "Bob" {
			t.Errorf("Unexpected participants: %+v", ps)
		}
	})

	t.Run("duplicate name is rejected", func(t *testing.T) {
		err := store.CreateParticipant(ctx, &models.Participant{EventCode: code, Name: "Bob"})
		if !errors.Is(err, models.ErrAlreadyExists) {
			t.Errorf("Expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("unknown event is rejected", func(t *testing.T) {
		err := store.CreateParticipant(ctx, &models.Participant{EventCode: "missing1", Name: "Zed"})
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateParticipant keeps fields left empty", func(t *testing.T) {
		if _, err := store.UpdateParticipant(ctx, &models.Participant{EventCode: code, Name: "Bob", Email: "bob@example.com", IBAN: "NL00BANK0123456789"}); err != nil {
			t.Fatalf("UpdateParticipant failed: %v", err)
		}
		updated, err := store.UpdateParticipant(ctx, &models.Participant{EventCode: code, Name: "Bob", BIC: "BANKNL2A"})
		if err != nil {
			t.Fatalf("UpdateParticipant failed: %v", err)
		}
		if updated.Email != "bob@example.com" || updated.IBAN != "NL00BANK0123456789" || updated.BIC != "BANKNL2A" {
			t.Errorf("Unexpected participant after update: %+v", updated)
		}
	})

	t.Run("DeleteParticipant cascades to expenses and debts", func(t *testing.T) {
		if err := store.CreateExpense(ctx, &models.Expense{EventCode: code, PayerName: "Bob", Amount: 800, Description: "Lunch"}); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if _, err := store.ReplaceDebts(ctx, code, []models.Debt{{DebtorName: "Alice", CreditorName: "Bob", Amount: 400}}, false); err != nil {
			t.Fatalf("ReplaceDebts failed: %v", err)
		}

		if _, err := store.DeleteParticipant(ctx, code, "Bob"); err != nil {
			t.Fatalf("DeleteParticipant failed: %v", err)
		}

		expenses, _ := store.ListExpenses(ctx, code)
		debts, _ := store.ListDebts(ctx, code)
		if len(expenses) != 0 || len(debts) != 0 {
			t.Errorf("Expected cascade, got %d expenses and %d debts", len(expenses), len(debts))
		}
	})
}

func TestExpenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	code := seedEvent(t, store, "A", "B")

	e := &models.Expense{EventCode: code, PayerName: "A", Amount: models.MustParseMoney("42.50"), Description: "Groceries"}
	if err := store.CreateExpense(ctx, e); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if e.ID == 0 {
		t.Fatal("Expected expense ID to be assigned")
	}

	t.Run("GetExpense is scoped under the payer", func(t *testing.T) {
		if _, err := store.GetExpense(ctx, code, "A", e.ID); err != nil {
			t.Errorf("GetExpense failed: %v", err)
		}
		if _, err := store.GetExpense(ctx, code, "B", e.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound for wrong payer, got %v", err)
		}
	})

	t.Run("CreateExpense rejects unknown payer", func(t *testing.T) {
		err := store.CreateExpense(ctx, &models.Expense{EventCode: code, PayerName: "Ghost", Amount: 100})
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateExpense applies only provided fields", func(t *testing.T) {
		amount := models.MustParseMoney("50.00")
		updated, err := store.UpdateExpense(ctx, code, "A", e.ID, storage.ExpenseUpdate{Amount: &amount})
		if err != nil {
			t.Fatalf("UpdateExpense failed: %v", err)
		}
		if updated.Amount != amount || updated.Description != "Groceries" {
			t.Errorf("Unexpected expense after update: %+v", updated)
		}
	})

	t.Run("DeleteExpense", func(t *testing.T) {
		if _, err := store.DeleteExpense(ctx, code, "A", e.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		if _, err := store.DeleteExpense(ctx, code, "A", e.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestDebts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	code := seedEvent(t, store, "A", "B", "C")

	generated := []models.Debt{
		{DebtorName: "B", CreditorName: "A", Amount: 3334},
		{DebtorName: "C", CreditorName: "A", Amount: 3333},
	}
	if _, err := store.ReplaceDebts(ctx, code, generated, false); err != nil {
		t.Fatalf("ReplaceDebts failed: %v", err)
	}

	t.Run("ToggleReceived flips the flag", func(t *testing.T) {
		d, err := store.ToggleReceived(ctx, code, "B", "A", nil)
		if err != nil {
			t.Fatalf("ToggleReceived failed: %v", err)
		}
		if !d.Received || d.Amount != 3334 {
			t.Errorf("Unexpected debt: %+v", d)
		}
	})

	t.Run("ToggleReceived with stale expectation", func(t *testing.T) {
		stale := false
		_, err := store.ToggleReceived(ctx, code, "B", "A", &stale)
		if !errors.Is(err, models.ErrImproperState) {
			t.Errorf("Expected ErrImproperState, got %v", err)
		}
	})

	t.Run("ToggleReceived on a missing pair leaves debts unchanged", func(t *testing.T) {
		before, _ := store.ListDebts(ctx, code)
		_, err := store.ToggleReceived(ctx, code, "A", "C", nil)
		if !errors.Is(err, models.ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, got %v", err)
		}
		after, _ := store.ListDebts(ctx, code)
		if len(before) != len(after) {
			t.Fatalf("Debt count changed: %d -> %d", len(before), len(after))
		}
		for i := range before {
			if before[i] != after[i] {
				t.Errorf("Debt changed: %+v -> %+v", before[i], after[i])
			}
		}
	})

	t.Run("ReplaceDebts preserves received for unchanged pairs", func(t *testing.T) {
		next := []models.Debt{
			{DebtorName: "B", CreditorName: "A", Amount: 3334},
			{DebtorName: "C", CreditorName: "A", Amount: 3333},
		}
		stored, err := store.ReplaceDebts(ctx, code, next, true)
		if err != nil {
			t.Fatalf("ReplaceDebts failed: %v", err)
		}
		if !stored[0].Received || stored[1].Received {
			t.Errorf("Unexpected flags: %+v", stored)
		}
	})

	t.Run("ReplaceDebts without preserve resets received", func(t *testing.T) {
		stored, err := store.ReplaceDebts(ctx, code, generated, false)
		if err != nil {
			t.Fatalf("ReplaceDebts failed: %v", err)
		}
		for _, d := range stored {
			if d.Received {
				t.Errorf("Expected received=false, got %+v", d)
			}
		}
	})

	t.Run("ReplaceDebts rolls back on failure", func(t *testing.T) {
		bad := []models.Debt{
			{DebtorName: "B", CreditorName: "A", Amount: 1},
			{DebtorName: "A", CreditorName: "A", Amount: 1}, // violates CHECK
		}
		if _, err := store.ReplaceDebts(ctx, code, bad, false); err == nil {
			t.Fatal("Expected ReplaceDebts to fail")
		}
		debts, err := store.ListDebts(ctx, code)
		if err != nil {
			t.Fatalf("ListDebts failed: %v", err)
		}
		if len(debts) != 2 || debts[0].Amount != 3334 || debts[1].Amount != 3333 {
			t.Errorf("Expected previous generation intact, got %+v", debts)
		}
	})
}

func TestReplaceDebtsRollsBackOnFailure(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	code := seedEvent(t, store, "A", "B", "C")

	if _, err := store.ReplaceDebts(ctx, code, []models.Debt{
		{DebtorName: "B", CreditorName: "A", Amount: 3334},
		{DebtorName: "C", CreditorName: "A", Amount: 3333},
	}, false); err != nil {
		t.Fatalf("ReplaceDebts failed: %v", err)
	}
	if _, err := store.ToggleReceived(ctx, code, "B", "A", nil); err != nil {
		t.Fatalf("ToggleReceived failed: %v", err)
	}
	before, err := store.ListDebts(ctx, code)
	if err != nil {
		t.Fatalf("ListDebts failed: %v", err)
	}

	// The first row is valid; the second names a debtor who is not a participant.
	bad := []models.Debt{
		{DebtorName: "C", CreditorName: "B", Amount: 500},
		{DebtorName: "Ghost", CreditorName: "A", Amount: 100},
	}
	for _, preserve := range []bool{true, false} {
		if _, err := store.ReplaceDebts(ctx, code, bad, preserve); err == nil {
			t.Fatalf("Expected ReplaceDebts(preserve=%v) to fail", preserve)
		}

		after, err := store.ListDebts(ctx, code)
		if err != nil {
			t.Fatalf("ListDebts failed: %v", err)
		}
		if len(after) != len(before) {
			t.Fatalf("Debt count changed: %+v -> %+v", before, after)
		}
		for i := range before {
			if before[i] != after[i] {
				t.Errorf("Debt changed: %+v -> %+v", before[i], after[i])
			}
		}
		if !after[0].Received {
			t.Errorf("Expected received flag of B->A to survive, got %+v", after[0])
		}
	}
}
