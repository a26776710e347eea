package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mmynk/eventsplit/internal/api"
	"github.com/mmynk/eventsplit/internal/config"
	"github.com/mmynk/eventsplit/internal/ledger"
	"github.com/mmynk/eventsplit/internal/models"
	"github.com/mmynk/eventsplit/internal/notify"
	"github.com/mmynk/eventsplit/internal/storage/sqlite"
)

func TestPrintDebts(t *testing.T) {
	var buf bytes.Buffer
	if err := printDebts(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "No debts.\n" {
		t.Errorf("printDebts(nil) = %q", got)
	}

	buf.Reset()
	err := printDebts(&buf, []models.Debt{{DebtorName: "B", CreditorName: "A", Amount: 6667, Received: true}})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"DEBTOR", "B", "A", "66.67", "true"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestOpenStore(t *testing.T) {
	store, err := openStore(context.Background(), config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "cli.db"),
	})
	if err != nil {
		t.Fatalf("openStore(sqlite) error: %v", err)
	}
	store.Close()

	if _, err := openStore(context.Background(), config.DatabaseConfig{Driver: "mysql"}); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestClientCommands(t *testing.T) {
	store, err := sqlite.New(filepath.Join(t.TempDir(), "cli.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	hub := notify.NewHub()
	engine := ledger.NewEngine(store, hub, true)
	srv := httptest.NewServer(api.NewServer(store, hub, engine, api.Options{
		PollTimeout:   100 * time.Millisecond,
		SessionBuffer: 8,
	}).Handler())
	defer srv.Close()

	run := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs(append(args, "--server", srv.URL))
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		return out.String()
	}

	code := strings.TrimSpace(run("event", "create", "Ski trip"))
	if len(code) != 8 {
		t.Fatalf("event create printed %q, want an 8-character code", code)
	}

	if out := run("event", "list"); !strings.Contains(out, "Ski trip") {
		t.Errorf("event list output %q missing event", out)
	}

	ctx := context.Background()
	for _, n := range []string{"A", "B"} {
		if err := store.CreateParticipant(ctx, &models.Participant{EventCode: code, Name: n}); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.CreateExpense(ctx, &models.Expense{EventCode: code, PayerName: "A", Amount: 1000}); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Generate(ctx, code); err != nil {
		t.Fatal(err)
	}

	if out := run("debts", code); !strings.Contains(out, "5.00") {
		t.Errorf("debts output %q missing amount", out)
	}
	if out := run("toggle", code, "B", "A"); !strings.Contains(out, "true") {
		t.Errorf("toggle output %q, want received true", out)
	}
}
