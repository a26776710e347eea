package apiv1connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/eventsplit/pkg/apiv1"
)

// ExpenseServiceHandler is implemented by the server.
type ExpenseServiceHandler interface {
	CreateExpense(context.Context, *connect.Request[apiv1.CreateExpenseRequest]) (*connect.Response[apiv1.CreateExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[apiv1.ListExpensesRequest]) (*connect.Response[apiv1.ListExpensesResponse], error)
	UpdateExpense(context.Context, *connect.Request[apiv1.UpdateExpenseRequest]) (*connect.Response[apiv1.UpdateExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[apiv1.DeleteExpenseRequest]) (*connect.Response[apiv1.DeleteExpenseResponse], error)
}

// NewExpenseServiceHandler returns the service's path prefix and handler.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + ExpenseServiceName + "/", route(map[string]http.Handler{
		ExpenseServiceCreateExpenseProcedure: connect.NewUnaryHandler(ExpenseServiceCreateExpenseProcedure, svc.CreateExpense, opts...),
		ExpenseServiceListExpensesProcedure:  connect.NewUnaryHandler(ExpenseServiceListExpensesProcedure, svc.ListExpenses, opts...),
		ExpenseServiceUpdateExpenseProcedure: connect.NewUnaryHandler(ExpenseServiceUpdateExpenseProcedure, svc.UpdateExpense, opts...),
		ExpenseServiceDeleteExpenseProcedure: connect.NewUnaryHandler(ExpenseServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...),
	})
}

// ExpenseServiceClient calls ExpenseService.
type ExpenseServiceClient interface {
	CreateExpense(context.Context, *connect.Request[apiv1.CreateExpenseRequest]) (*connect.Response[apiv1.CreateExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[apiv1.ListExpensesRequest]) (*connect.Response[apiv1.ListExpensesResponse], error)
	UpdateExpense(context.Context, *connect.Request[apiv1.UpdateExpenseRequest]) (*connect.Response[apiv1.UpdateExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[apiv1.DeleteExpenseRequest]) (*connect.Response[apiv1.DeleteExpenseResponse], error)
}

type expenseServiceClient struct {
	createExpense *connect.Client[apiv1.CreateExpenseRequest, apiv1.CreateExpenseResponse]
	listExpenses  *connect.Client[apiv1.ListExpensesRequest, apiv1.ListExpensesResponse]
	updateExpense *connect.Client[apiv1.UpdateExpenseRequest, apiv1.UpdateExpenseResponse]
	deleteExpense *connect.Client[apiv1.DeleteExpenseRequest, apiv1.DeleteExpenseResponse]
}

// NewExpenseServiceClient constructs a client for the server at baseURL.
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ExpenseServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &expenseServiceClient{
		createExpense: connect.NewClient[apiv1.CreateExpenseRequest, apiv1.CreateExpenseResponse](httpClient, baseURL+ExpenseServiceCreateExpenseProcedure, opts...),
		listExpenses:  connect.NewClient[apiv1.ListExpensesRequest, apiv1.ListExpensesResponse](httpClient, baseURL+ExpenseServiceListExpensesProcedure, opts...),
		updateExpense: connect.NewClient[apiv1.UpdateExpenseRequest, apiv1.UpdateExpenseResponse](httpClient, baseURL+ExpenseServiceUpdateExpenseProcedure, opts...),
		deleteExpense: connect.NewClient[apiv1.DeleteExpenseRequest, apiv1.DeleteExpenseResponse](httpClient, baseURL+ExpenseServiceDeleteExpenseProcedure, opts...),
	}
}

func (c *expenseServiceClient) CreateExpense(ctx context.Context, req *connect.Request[apiv1.CreateExpenseRequest]) (*connect.Response[apiv1.CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) ListExpenses(ctx context.Context, req *connect.Request[apiv1.ListExpensesRequest]) (*connect.Response[apiv1.ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

func (c *expenseServiceClient) UpdateExpense(ctx context.Context, req *connect.Request[apiv1.UpdateExpenseRequest]) (*connect.Response[apiv1.UpdateExpenseResponse], error) {
	return c.updateExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[apiv1.DeleteExpenseRequest]) (*connect.Response[apiv1.DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}
