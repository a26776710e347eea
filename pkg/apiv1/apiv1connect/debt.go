package apiv1connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/eventsplit/pkg/apiv1"
)

// DebtServiceHandler is implemented by the server.
type DebtServiceHandler interface {
	GenerateDebts(context.Context, *connect.Request[apiv1.GenerateDebtsRequest]) (*connect.Response[apiv1.GenerateDebtsResponse], error)
	ListDebts(context.Context, *connect.Request[apiv1.ListDebtsRequest]) (*connect.Response[apiv1.ListDebtsResponse], error)
	ToggleReceived(context.Context, *connect.Request[apiv1.ToggleReceivedRequest]) (*connect.Response[apiv1.ToggleReceivedResponse], error)
	AwaitDebtChange(context.Context, *connect.Request[apiv1.AwaitDebtChangeRequest]) (*connect.Response[apiv1.AwaitDebtChangeResponse], error)
}

// NewDebtServiceHandler returns the service's path prefix and handler.
func NewDebtServiceHandler(svc DebtServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + DebtServiceName + "/", route(map[string]http.Handler{
		DebtServiceGenerateDebtsProcedure:   connect.NewUnaryHandler(DebtServiceGenerateDebtsProcedure, svc.GenerateDebts, opts...),
		DebtServiceListDebtsProcedure:       connect.NewUnaryHandler(DebtServiceListDebtsProcedure, svc.ListDebts, opts...),
		DebtServiceToggleReceivedProcedure:  connect.NewUnaryHandler(DebtServiceToggleReceivedProcedure, svc.ToggleReceived, opts...),
		DebtServiceAwaitDebtChangeProcedure: connect.NewUnaryHandler(DebtServiceAwaitDebtChangeProcedure, svc.AwaitDebtChange, opts...),
	})
}

// DebtServiceClient calls DebtService.
type DebtServiceClient interface {
	GenerateDebts(context.Context, *connect.Request[apiv1.GenerateDebtsRequest]) (*connect.Response[apiv1.GenerateDebtsResponse], error)
	ListDebts(context.Context, *connect.Request[apiv1.ListDebtsRequest]) (*connect.Response[apiv1.ListDebtsResponse], error)
	ToggleReceived(context.Context, *connect.Request[apiv1.ToggleReceivedRequest]) (*connect.Response[apiv1.ToggleReceivedResponse], error)
	AwaitDebtChange(context.Context, *connect.Request[apiv1.AwaitDebtChangeRequest]) (*connect.Response[apiv1.AwaitDebtChangeResponse], error)
}

type debtServiceClient struct {
	generateDebts   *connect.Client[apiv1.GenerateDebtsRequest, apiv1.GenerateDebtsResponse]
	listDebts       *connect.Client[apiv1.ListDebtsRequest, apiv1.ListDebtsResponse]
	toggleReceived  *connect.Client[apiv1.ToggleReceivedRequest, apiv1.ToggleReceivedResponse]
	awaitDebtChange *connect.Client[apiv1.AwaitDebtChangeRequest, apiv1.AwaitDebtChangeResponse]
}

// NewDebtServiceClient constructs a client for the server at baseURL.
func NewDebtServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) DebtServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &debtServiceClient{
		generateDebts:   connect.NewClient[apiv1.GenerateDebtsRequest, apiv1.GenerateDebtsResponse](httpClient, baseURL+DebtServiceGenerateDebtsProcedure, opts...),
		listDebts:       connect.NewClient[apiv1.ListDebtsRequest, apiv1.ListDebtsResponse](httpClient, baseURL+DebtServiceListDebtsProcedure, opts...),
		toggleReceived:  connect.NewClient[apiv1.ToggleReceivedRequest, apiv1.ToggleReceivedResponse](httpClient, baseURL+DebtServiceToggleReceivedProcedure, opts...),
		awaitDebtChange: connect.NewClient[apiv1.AwaitDebtChangeRequest, apiv1.AwaitDebtChangeResponse](httpClient, baseURL+DebtServiceAwaitDebtChangeProcedure, opts...),
	}
}

func (c *debtServiceClient) GenerateDebts(ctx context.Context, req *connect.Request[apiv1.GenerateDebtsRequest]) (*connect.Response[apiv1.GenerateDebtsResponse], error) {
	return c.generateDebts.CallUnary(ctx, req)
}

func (c *debtServiceClient) ListDebts(ctx context.Context, req *connect.Request[apiv1.ListDebtsRequest]) (*connect.Response[apiv1.ListDebtsResponse], error) {
	return c.listDebts.CallUnary(ctx, req)
}

func (c *debtServiceClient) ToggleReceived(ctx context.Context, req *connect.Request[apiv1.ToggleReceivedRequest]) (*connect.Response[apiv1.ToggleReceivedResponse], error) {
	return c.toggleReceived.CallUnary(ctx, req)
}

func (c *debtServiceClient) AwaitDebtChange(ctx context.Context, req *connect.Request[apiv1.AwaitDebtChangeRequest]) (*connect.Response[apiv1.AwaitDebtChangeResponse], error) {
	return c.awaitDebtChange.CallUnary(ctx, req)
}
