package service

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/eventsplit/internal/ledger"
	"github.com/mmynk/eventsplit/pkg/apiv1"
	"github.com/mmynk/eventsplit/pkg/apiv1/apiv1connect"
)

// MaxLongPoll caps the timeout a client may request for a long poll.
const MaxLongPoll = time.Minute

var _ apiv1connect.DebtServiceHandler = (*DebtService)(nil)

// DebtService implements the Connect DebtService on top of the ledger engine.
type DebtService struct {
	engine      *ledger.Engine
	pollTimeout time.Duration
}

// NewDebtService creates a new DebtService. pollTimeout is used for long
// polls that do not ask for a timeout of their own.
func NewDebtService(engine *ledger.Engine, pollTimeout time.Duration) *DebtService {
	return &DebtService{engine: engine, pollTimeout: pollTimeout}
}

// GenerateDebts recomputes the event's debts on demand.
func (s *DebtService) GenerateDebts(ctx context.Context, req *connect.Request[apiv1.GenerateDebtsRequest]) (*connect.Response[apiv1.GenerateDebtsResponse], error) {
	slog.Info("GenerateDebts request received", "event_code", req.Msg.EventCode)

	debts, err := s.engine.Generate(ctx, req.Msg.EventCode)
	if err != nil {
		slog.Error("GenerateDebts failed", "event_code", req.Msg.EventCode, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("GenerateDebts successful", "event_code", req.Msg.EventCode, "count", len(debts))

	return connect.NewResponse(&apiv1.GenerateDebtsResponse{Debts: debts}), nil
}

// ListDebts returns the stored debts.
func (s *DebtService) ListDebts(ctx context.Context, req *connect.Request[apiv1.ListDebtsRequest]) (*connect.Response[apiv1.ListDebtsResponse], error) {
	slog.Info("ListDebts request received", "event_code", req.Msg.EventCode)

	debts, err := s.engine.Debts(ctx, req.Msg.EventCode)
	if err != nil {
		slog.Error("ListDebts failed", "event_code", req.Msg.EventCode, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&apiv1.ListDebtsResponse{Debts: debts}), nil
}

// ToggleReceived flips a debt's received flag.
func (s *DebtService) ToggleReceived(ctx context.Context, req *connect.Request[apiv1.ToggleReceivedRequest]) (*connect.Response[apiv1.ToggleReceivedResponse], error) {
	msg := req.Msg
	slog.Info("ToggleReceived request received",
		"event_code", msg.EventCode,
		"debtor", msg.DebtorName,
		"creditor", msg.CreditorName,
	)

	var err error
	resp := &apiv1.ToggleReceivedResponse{}
	if msg.Expect != nil {
		resp.Debt, err = s.engine.ToggleReceivedIf(ctx, msg.EventCode, msg.DebtorName, msg.CreditorName, *msg.Expect)
	} else {
		resp.Debt, err = s.engine.ToggleReceived(ctx, msg.EventCode, msg.DebtorName, msg.CreditorName)
	}
	if err != nil {
		// NotFound and FailedPrecondition tell the client to refresh its view.
		slog.Warn("ToggleReceived failed", "event_code", msg.EventCode, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Debt toggled", "event_code", msg.EventCode, "received", resp.Debt.Received)

	return connect.NewResponse(resp), nil
}

// AwaitDebtChange long-polls until the event's debts change.
func (s *DebtService) AwaitDebtChange(ctx context.Context, req *connect.Request[apiv1.AwaitDebtChangeRequest]) (*connect.Response[apiv1.AwaitDebtChangeResponse], error) {
	timeout := pollTimeout(req.Msg.TimeoutMs, s.pollTimeout)
	slog.Debug("AwaitDebtChange request received", "event_code", req.Msg.EventCode, "timeout", timeout)

	debts, err := s.engine.AwaitDebtChange(ctx, req.Msg.EventCode, timeout)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&apiv1.AwaitDebtChangeResponse{Debts: debts}), nil
}

// pollTimeout resolves a requested timeout in milliseconds against the
// server default and MaxLongPoll.
func pollTimeout(requestedMs int64, fallback time.Duration) time.Duration {
	if requestedMs <= 0 {
		return min(fallback, MaxLongPoll)
	}
	// Clamp before converting; large values overflow time.Duration.
	if requestedMs > MaxLongPoll.Milliseconds() {
		return MaxLongPoll
	}
	return time.Duration(requestedMs) * time.Millisecond
}
