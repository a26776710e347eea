package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/eventsplit/internal/ledger"
	"github.com/mmynk/eventsplit/internal/models"
	"github.com/mmynk/eventsplit/internal/notify"
	"github.com/mmynk/eventsplit/internal/storage"
	"github.com/mmynk/eventsplit/pkg/apiv1"
	"github.com/mmynk/eventsplit/pkg/apiv1/apiv1connect"
)

var _ apiv1connect.ExpenseServiceHandler = (*ExpenseService)(nil)

// ExpenseService implements the Connect ExpenseService. Every mutation
// regenerates the event's debts.
type ExpenseService struct {
	store  storage.Store
	hub    *notify.Hub
	engine *ledger.Engine
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(store storage.Store, hub *notify.Hub, engine *ledger.Engine) *ExpenseService {
	return &ExpenseService{store: store, hub: hub, engine: engine}
}

// CreateExpense records a payment by one participant.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[apiv1.CreateExpenseRequest]) (*connect.Response[apiv1.CreateExpenseResponse], error) {
	slog.Info("CreateExpense request received",
		"event_code", req.Msg.EventCode,
		"payer", req.Msg.PayerName,
		"amount", req.Msg.Amount,
	)

	if req.Msg.PayerName == "" {
		return nil, invalidArgument("paidByName required")
	}

	e := &models.Expense{
		EventCode:   req.Msg.EventCode,
		PayerName:   req.Msg.PayerName,
		Amount:      req.Msg.Amount,
		Description: req.Msg.Description,
	}
	if req.Msg.Date != nil {
		e.Date = *req.Msg.Date
	}
	if err := s.store.CreateExpense(ctx, e); err != nil {
		slog.Error("CreateExpense failed", "event_code", e.EventCode, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense created", "event_code", e.EventCode, "expense_id", e.ID)
	if err := s.changed(ctx, e, notify.ActionCreated); err != nil {
		return nil, err
	}

	return connect.NewResponse(&apiv1.CreateExpenseResponse{Expense: e}), nil
}

// ListExpenses lists an event's expenses.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[apiv1.ListExpensesRequest]) (*connect.Response[apiv1.ListExpensesResponse], error) {
	slog.Info("ListExpenses request received", "event_code", req.Msg.EventCode)

	if _, err := s.store.GetEvent(ctx, req.Msg.EventCode); err != nil {
		return nil, toConnectError(err)
	}
	expenses, err := s.store.ListExpenses(ctx, req.Msg.EventCode)
	if err != nil {
		slog.Error("ListExpenses failed", "event_code", req.Msg.EventCode, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&apiv1.ListExpensesResponse{Expenses: expenses}), nil
}

// UpdateExpense overwrites the provided fields of an expense.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[apiv1.UpdateExpenseRequest]) (*connect.Response[apiv1.UpdateExpenseResponse], error) {
	slog.Info("UpdateExpense request received",
		"event_code", req.Msg.EventCode,
		"payer", req.Msg.PayerName,
		"expense_id", req.Msg.ID,
	)

	e, err := s.store.UpdateExpense(ctx, req.Msg.EventCode, req.Msg.PayerName, req.Msg.ID, storage.ExpenseUpdate{
		Description: req.Msg.Description,
		Amount:      req.Msg.Amount,
		Date:        req.Msg.Date,
	})
	if err != nil {
		slog.Error("UpdateExpense failed", "event_code", req.Msg.EventCode, "error", err)
		return nil, toConnectError(err)
	}

	if err := s.changed(ctx, e, notify.ActionModified); err != nil {
		return nil, err
	}

	return connect.NewResponse(&apiv1.UpdateExpenseResponse{Expense: e}), nil
}

// DeleteExpense removes an expense.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[apiv1.DeleteExpenseRequest]) (*connect.Response[apiv1.DeleteExpenseResponse], error) {
	slog.Info("DeleteExpense request received",
		"event_code", req.Msg.EventCode,
		"payer", req.Msg.PayerName,
		"expense_id", req.Msg.ID,
	)

	e, err := s.store.DeleteExpense(ctx, req.Msg.EventCode, req.Msg.PayerName, req.Msg.ID)
	if err != nil {
		slog.Error("DeleteExpense failed", "event_code", req.Msg.EventCode, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense deleted", "event_code", e.EventCode, "expense_id", e.ID)
	if err := s.changed(ctx, e, notify.ActionDeleted); err != nil {
		return nil, err
	}

	return connect.NewResponse(&apiv1.DeleteExpenseResponse{Expense: e}), nil
}

func (s *ExpenseService) changed(ctx context.Context, e *models.Expense, action notify.Action) error {
	s.hub.Publish(notify.Message{Topic: notify.ExpenseTopic(e.EventCode), Action: action, Payload: e})
	return regenerate(ctx, s.engine, e.EventCode)
}
