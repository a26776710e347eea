package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/eventsplit/internal/ledger"
	"github.com/mmynk/eventsplit/internal/models"
	"github.com/mmynk/eventsplit/internal/notify"
	"github.com/mmynk/eventsplit/internal/storage/sqlite"
	"github.com/mmynk/eventsplit/pkg/apiv1"
	"github.com/mmynk/eventsplit/pkg/apiv1/apiv1connect"
)

type testClients struct {
	events       apiv1connect.EventServiceClient
	participants apiv1connect.ParticipantServiceClient
	expenses     apiv1connect.ExpenseServiceClient
	debts        apiv1connect.DebtServiceClient
	notify       apiv1connect.NotificationServiceClient
	hub          *notify.Hub
	store        *sqlite.SQLiteStore
	engine       *ledger.Engine
}

// setupTestServer creates a test server with every service mounted.
func setupTestServer(t *testing.T) (*testClients, func()) {
	t.Helper()

	// Create temp database
	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	hub := notify.NewHub()
	engine := ledger.NewEngine(store, hub, true)
	pollTimeout := 200 * time.Millisecond

	mux := http.NewServeMux()
	mux.Handle(apiv1connect.NewEventServiceHandler(NewEventService(store, hub)))
	mux.Handle(apiv1connect.NewParticipantServiceHandler(NewParticipantService(store, hub, engine)))
	mux.Handle(apiv1connect.NewExpenseServiceHandler(NewExpenseService(store, hub, engine)))
	mux.Handle(apiv1connect.NewDebtServiceHandler(NewDebtService(engine, pollTimeout)))
	mux.Handle(apiv1connect.NewNotificationServiceHandler(NewNotificationService(hub, pollTimeout, 16)))

	server := httptest.NewServer(mux)

	clients := &testClients{
		events:       apiv1connect.NewEventServiceClient(http.DefaultClient, server.URL),
		participants: apiv1connect.NewParticipantServiceClient(http.DefaultClient, server.URL),
		expenses:     apiv1connect.NewExpenseServiceClient(http.DefaultClient, server.URL),
		debts:        apiv1connect.NewDebtServiceClient(http.DefaultClient, server.URL),
		notify:       apiv1connect.NewNotificationServiceClient(http.DefaultClient, server.URL),
		hub:          hub,
		store:        store,
		engine:       engine,
	}

	cleanup := func() {
		server.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	}

	return clients, cleanup
}

// createEvent creates an event with the given participants and returns its code.
func createEvent(t *testing.T, c *testClients, names ...string) string {
	t.Helper()
	ctx := context.Background()

	resp, err := c.events.CreateEvent(ctx, connect.NewRequest(&apiv1.CreateEventRequest{Name: "Trip"}))
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	code := resp.Msg.Event.Code
	for _, n := range names {
		if _, err := c.participants.CreateParticipant(ctx, connect.NewRequest(&apiv1.CreateParticipantRequest{
			EventCode: code,
			Name:      n,
		})); err != nil {
			t.Fatalf("CreateParticipant(%s) failed: %v", n, err)
		}
	}
	return code
}

func addExpense(t *testing.T, c *testClients, code, payer, amount string) *models.Expense {
	t.Helper()
	resp, err := c.expenses.CreateExpense(context.Background(), connect.NewRequest(&apiv1.CreateExpenseRequest{
		EventCode:   code,
		PayerName:   payer,
		Amount:      models.MustParseMoney(amount),
		Description: "item",
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	return resp.Msg.Expense
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %v, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Errorf("expected code %v, got %v (%v)", want, got, err)
	}
}

func TestEventLifecycle(t *testing.T) {
	c, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	created, err := c.events.CreateEvent(ctx, connect.NewRequest(&apiv1.CreateEventRequest{Name: "Ski trip"}))
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	code := created.Msg.Event.Code
	if len(code) != 8 {
		t.Errorf("expected 8-character code, got %q", code)
	}

	got, err := c.events.GetEvent(ctx, connect.NewRequest(&apiv1.GetEventRequest{Code: code}))
	if err != nil {
		t.Fatalf("GetEvent failed: %v", err)
	}
	if got.Msg.Event.Name != "Ski trip" {
		t.Errorf("expected name 'Ski trip', got %s", got.Msg.Event.Name)
	}

	renamed, err := c.events.RenameEvent(ctx, connect.NewRequest(&apiv1.RenameEventRequest{Code: code, Name: "Ski week"}))
	if err != nil {
		t.Fatalf("RenameEvent failed: %v", err)
	}
	if renamed.Msg.Event.Name != "Ski week" {
		t.Errorf("expected renamed event, got %s", renamed.Msg.Event.Name)
	}

	list, err := c.events.ListEvents(ctx, connect.NewRequest(&apiv1.ListEventsRequest{OrderBy: apiv1.OrderByLastActivity}))
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	if len(list.Msg.Events) != 1 {
		t.Errorf("expected 1 event, got %d", len(list.Msg.Events))
	}

	if _, err := c.events.DeleteEvent(ctx, connect.NewRequest(&apiv1.DeleteEventRequest{Code: code})); err != nil {
		t.Fatalf("DeleteEvent failed: %v", err)
	}
	_, err = c.events.GetEvent(ctx, connect.NewRequest(&apiv1.GetEventRequest{Code: code}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestCreateEventValidation(t *testing.T) {
	c, cleanup := setupTestServer(t)
	defer cleanup()

	_, err := c.events.CreateEvent(context.Background(), connect.NewRequest(&apiv1.CreateEventRequest{}))
	assertCode(t, err, connect.CodeInvalidArgument)

	_, err = c.events.ListEvents(context.Background(), connect.NewRequest(&apiv1.ListEventsRequest{OrderBy: "size"}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestExpenseRegeneratesDebts(t *testing.T) {
	c, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	code := createEvent(t, c, "A", "B", "C")
	addExpense(t, c, code, "A", "100.00")

	resp, err := c.debts.ListDebts(ctx, connect.NewRequest(&apiv1.ListDebtsRequest{EventCode: code}))
	if err != nil {
		t.Fatalf("ListDebts failed: %v", err)
	}

	tests := []struct {
		debtor string
		amount string
	}{
		{"B", "33.34"},
		{"C", "33.33"},
	}
	if len(resp.Msg.Debts) != len(tests) {
		t.Fatalf("expected %d debts, got %d", len(tests), len(resp.Msg.Debts))
	}
	for i, tt := range tests {
		d := resp.Msg.Debts[i]
		if d.DebtorName != tt.debtor || d.CreditorName != "A" {
			t.Errorf("debt %d: expected %s->A, got %s->%s", i, tt.debtor, d.DebtorName, d.CreditorName)
		}
		if d.Amount.String() != tt.amount {
			t.Errorf("debt %d: expected %s, got %s", i, tt.amount, d.Amount)
		}
	}
}

func TestExpenseUpdateAndDelete(t *testing.T) {
	c, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	code := createEvent(t, c, "A", "B")
	e := addExpense(t, c, code, "A", "10.00")

	amount := models.MustParseMoney("20.00")
	updated, err := c.expenses.UpdateExpense(ctx, connect.NewRequest(&apiv1.UpdateExpenseRequest{
		EventCode: code,
		PayerName: "A",
		ID:        e.ID,
		Amount:    &amount,
	}))
	if err != nil {
		t.Fatalf("UpdateExpense failed: %v", err)
	}
	if updated.Msg.Expense.Description != "item" {
		t.Errorf("description should be kept, got %q", updated.Msg.Expense.Description)
	}

	debts, err := c.debts.ListDebts(ctx, connect.NewRequest(&apiv1.ListDebtsRequest{EventCode: code}))
	if err != nil {
		t.Fatalf("ListDebts failed: %v", err)
	}
	if len(debts.Msg.Debts) != 1 || debts.Msg.Debts[0].Amount.String() != "10.00" {
		t.Errorf("expected B->A 10.00 after update, got %+v", debts.Msg.Debts)
	}

	if _, err := c.expenses.DeleteExpense(ctx, connect.NewRequest(&apiv1.DeleteExpenseRequest{
		EventCode: code, PayerName: "A", ID: e.ID,
	})); err != nil {
		t.Fatalf("DeleteExpense failed: %v", err)
	}
	debts, err = c.debts.ListDebts(ctx, connect.NewRequest(&apiv1.ListDebtsRequest{EventCode: code}))
	if err != nil {
		t.Fatalf("ListDebts failed: %v", err)
	}
	if len(debts.Msg.Debts) != 0 {
		t.Errorf("expected no debts after delete, got %+v", debts.Msg.Debts)
	}
}

func TestCreateExpenseErrors(t *testing.T) {
	c, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()
	code := createEvent(t, c, "A")

	_, err := c.expenses.CreateExpense(ctx, connect.NewRequest(&apiv1.CreateExpenseRequest{
		EventCode: code, PayerName: "Ghost", Amount: models.Cents(100),
	}))
	assertCode(t, err, connect.CodeNotFound)

	_, err = c.expenses.CreateExpense(ctx, connect.NewRequest(&apiv1.CreateExpenseRequest{
		EventCode: code, PayerName: "A", Amount: models.Cents(-1),
	}))
	assertCode(t, err, connect.CodeInvalidArgument)

	_, err = c.participants.CreateParticipant(ctx, connect.NewRequest(&apiv1.CreateParticipantRequest{
		EventCode: code, Name: "A",
	}))
	assertCode(t, err, connect.CodeAlreadyExists)
}

func TestToggleReceived(t *testing.T) {
	c, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	code := createEvent(t, c, "A", "B")
	addExpense(t, c, code, "A", "10.00")

	resp, err := c.debts.ToggleReceived(ctx, connect.NewRequest(&apiv1.ToggleReceivedRequest{
		EventCode: code, DebtorName: "B", CreditorName: "A",
	}))
	if err != nil {
		t.Fatalf("ToggleReceived failed: %v", err)
	}
	if !resp.Msg.Debt.Received {
		t.Error("expected debt to be received")
	}

	stale := false
	_, err = c.debts.ToggleReceived(ctx, connect.NewRequest(&apiv1.ToggleReceivedRequest{
		EventCode: code, DebtorName: "B", CreditorName: "A", Expect: &stale,
	}))
	assertCode(t, err, connect.CodeFailedPrecondition)

	_, err = c.debts.ToggleReceived(ctx, connect.NewRequest(&apiv1.ToggleReceivedRequest{
		EventCode: code, DebtorName: "A", CreditorName: "B",
	}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestAwaitDebtChange(t *testing.T) {
	c, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()
	code := createEvent(t, c, "A", "B")

	t.Run("times out with DeadlineExceeded", func(t *testing.T) {
		_, err := c.debts.AwaitDebtChange(ctx, connect.NewRequest(&apiv1.AwaitDebtChangeRequest{
			EventCode: code, TimeoutMs: 50,
		}))
		assertCode(t, err, connect.CodeDeadlineExceeded)
	})

	t.Run("resolves on expense change", func(t *testing.T) {
		type result struct {
			debts []models.Debt
			err   error
		}
		done := make(chan result, 1)
		go func() {
			resp, err := c.debts.AwaitDebtChange(ctx, connect.NewRequest(&apiv1.AwaitDebtChangeRequest{
				EventCode: code, TimeoutMs: 5000,
			}))
			if err != nil {
				done <- result{err: err}
				return
			}
			done <- result{debts: resp.Msg.Debts}
		}()

		waitFor(t, func() bool { return c.hub.Waiters().Pending(notify.DebtTopic(code)) == 1 })
		addExpense(t, c, code, "B", "4.00")

		select {
		case r := <-done:
			if r.err != nil {
				t.Fatalf("AwaitDebtChange failed: %v", r.err)
			}
			if len(r.debts) != 1 || r.debts[0].DebtorName != "A" || r.debts[0].Amount.String() != "2.00" {
				t.Errorf("unexpected debts: %+v", r.debts)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("long poll was not resolved")
		}
	})

	t.Run("unknown event", func(t *testing.T) {
		_, err := c.debts.AwaitDebtChange(ctx, connect.NewRequest(&apiv1.AwaitDebtChangeRequest{EventCode: "missing1"}))
		assertCode(t, err, connect.CodeNotFound)
	})
}

func TestSubscribeStreamsChanges(t *testing.T) {
	c, cleanup := setupTestServer(t)
	defer cleanup()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	code := createEvent(t, c, "A", "B")

	stream, err := c.notify.Subscribe(ctx, connect.NewRequest(&apiv1.SubscribeRequest{
		Topics: []string{notify.ExpenseTopic(code)},
	}))
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer stream.Close()

	if !stream.Receive() {
		t.Fatalf("expected subscribed frame: %v", stream.Err())
	}
	sessionID := stream.Msg().SessionID
	if sessionID == "" || stream.Msg().Action != apiv1.ActionSubscribed {
		t.Fatalf("unexpected first frame: %+v", stream.Msg())
	}

	if _, err := c.notify.AddTopic(ctx, connect.NewRequest(&apiv1.AddTopicRequest{
		SessionID: sessionID, Topic: notify.DebtTopic(code),
	})); err != nil {
		t.Fatalf("AddTopic failed: %v", err)
	}

	addExpense(t, c, code, "A", "6.00")

	want := []struct {
		topic  string
		action string
	}{
		{notify.ExpenseTopic(code), string(notify.ActionCreated)},
		{notify.DebtTopic(code), string(notify.ActionGenerated)},
	}
	for _, w := range want {
		if !stream.Receive() {
			t.Fatalf("stream ended: %v", stream.Err())
		}
		n := stream.Msg()
		if n.Topic != w.topic || n.Action != w.action {
			t.Fatalf("expected %s/%s, got %s/%s", w.topic, w.action, n.Topic, n.Action)
		}
		if n.Topic == notify.DebtTopic(code) {
			var debts []models.Debt
			if err := json.Unmarshal(n.Payload, &debts); err != nil {
				t.Fatalf("failed to decode debts: %v", err)
			}
			if len(debts) != 1 || debts[0].Amount.String() != "3.00" {
				t.Errorf("unexpected debts: %+v", debts)
			}
		}
	}
}

func TestAddTopicUnknownSession(t *testing.T) {
	c, cleanup := setupTestServer(t)
	defer cleanup()

	_, err := c.notify.AddTopic(context.Background(), connect.NewRequest(&apiv1.AddTopicRequest{
		SessionID: "nope", Topic: "event",
	}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestAwaitTopic(t *testing.T) {
	c, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	done := make(chan *apiv1.Notification, 1)
	go func() {
		resp, err := c.notify.AwaitTopic(ctx, connect.NewRequest(&apiv1.AwaitTopicRequest{
			Topic: notify.GlobalEventTopic, TimeoutMs: 5000,
		}))
		if err != nil {
			t.Errorf("AwaitTopic failed: %v", err)
			done <- nil
			return
		}
		done <- &resp.Msg.Notification
	}()

	waitFor(t, func() bool { return c.hub.Waiters().Pending(notify.GlobalEventTopic) == 1 })
	createEvent(t, c)

	n := <-done
	if n == nil {
		return
	}
	if n.Action != string(notify.ActionCreated) {
		t.Errorf("expected created action, got %s", n.Action)
	}
}

func TestToConnectError(t *testing.T) {
	tests := []struct {
		err  error
		want connect.Code
	}{
		{models.ErrNotFound, connect.CodeNotFound},
		{models.ErrImproperState, connect.CodeFailedPrecondition},
		{models.ErrTimeout, connect.CodeDeadlineExceeded},
		{models.ErrInvalidAmount, connect.CodeInvalidArgument},
		{models.ErrAlreadyExists, connect.CodeAlreadyExists},
		{context.Canceled, connect.CodeCanceled},
		{errors.New("disk on fire"), connect.CodeInternal},
	}
	for _, tt := range tests {
		if got := toConnectError(tt.err).Code(); got != tt.want {
			t.Errorf("toConnectError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestDeleteEventWakesDebtPolls(t *testing.T) {
	c, cleanup := setupTestServer(t)
	defer cleanup()

	code := createEvent(t, c, "A", "B")

	errc := make(chan error, 1)
	go func() {
		_, err := c.debts.AwaitDebtChange(context.Background(), connect.NewRequest(&apiv1.AwaitDebtChangeRequest{
			EventCode: code,
			TimeoutMs: 10000,
		}))
		errc <- err
	}()
	waitFor(t, func() bool { return c.hub.Waiters().Pending(notify.DebtTopic(code)) == 1 })

	start := time.Now()
	if _, err := c.events.DeleteEvent(context.Background(), connect.NewRequest(&apiv1.DeleteEventRequest{Code: code})); err != nil {
		t.Fatalf("DeleteEvent failed: %v", err)
	}

	select {
	case err := <-errc:
		assertCode(t, err, connect.CodeNotFound)
		if elapsed := time.Since(start); elapsed > 2*time.Second {
			t.Errorf("long poll resolved after %v, want immediately", elapsed)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("long poll not resolved by DeleteEvent")
	}
}

func TestRegenerateAfterClientCancel(t *testing.T) {
	c, cleanup := setupTestServer(t)
	defer cleanup()

	ctx := context.Background()
	code := createEvent(t, c, "A", "B")

	// The mutation is committed; the request context is gone by the time
	// debts are regenerated.
	if err := c.store.CreateExpense(ctx, &models.Expense{EventCode: code, PayerName: "A", Amount: 10000}); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	if err := regenerate(cancelled, c.engine, code); err != nil {
		t.Fatalf("regenerate failed: %v", err)
	}

	debts, err := c.engine.Debts(ctx, code)
	if err != nil {
		t.Fatalf("Debts failed: %v", err)
	}
	if len(debts) != 1 || debts[0].DebtorName != "B" || debts[0].Amount != models.MustParseMoney("50.00") {
		t.Errorf("expected B->A 50.00, got %+v", debts)
	}
}

func TestPollTimeout(t *testing.T) {
	if got := pollTimeout(0, 5*time.Second); got != 5*time.Second {
		t.Errorf("expected default, got %v", got)
	}
	if got := pollTimeout(250, 5*time.Second); got != 250*time.Millisecond {
		t.Errorf("expected requested timeout, got %v", got)
	}
	if got := pollTimeout(int64(time.Hour/time.Millisecond), 5*time.Second); got != MaxLongPoll {
		t.Errorf("expected cap, got %v", got)
	}
	for _, ms := range []int64{9223372036854775, math.MaxInt64} {
		if got := pollTimeout(ms, 5*time.Second); got != MaxLongPoll {
			t.Errorf("pollTimeout(%d) = %v, want cap %v", ms, got, MaxLongPoll)
		}
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
