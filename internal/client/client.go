// Package client wraps the eventsplit connect clients and provides a
// long-poll watcher for an event's debts.
package client

import (
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/eventsplit/pkg/apiv1/apiv1connect"
)

// Client bundles the per-service connect clients of one server.
type Client struct {
	Events        apiv1connect.EventServiceClient
	Participants  apiv1connect.ParticipantServiceClient
	Expenses      apiv1connect.ExpenseServiceClient
	Debts         apiv1connect.DebtServiceClient
	Notifications apiv1connect.NotificationServiceClient
}

// New creates clients for the server at baseURL. A nil httpClient uses
// http.DefaultClient.
func New(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		Events:        apiv1connect.NewEventServiceClient(httpClient, baseURL, opts...),
		Participants:  apiv1connect.NewParticipantServiceClient(httpClient, baseURL, opts...),
		Expenses:      apiv1connect.NewExpenseServiceClient(httpClient, baseURL, opts...),
		Debts:         apiv1connect.NewDebtServiceClient(httpClient, baseURL, opts...),
		Notifications: apiv1connect.NewNotificationServiceClient(httpClient, baseURL, opts...),
	}
}
