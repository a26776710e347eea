// Package apiv1connect binds the eventsplit.v1 services to connect handlers
// and clients.
package apiv1connect

import (
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/eventsplit/pkg/apiv1"
)

// PathPrefix is shared by every eventsplit.v1 procedure.
const PathPrefix = "/eventsplit.v1."

const (
	EventServiceName        = "eventsplit.v1.EventService"
	ParticipantServiceName  = "eventsplit.v1.ParticipantService"
	ExpenseServiceName      = "eventsplit.v1.ExpenseService"
	DebtServiceName         = "eventsplit.v1.DebtService"
	NotificationServiceName = "eventsplit.v1.NotificationService"
)

// Fully-qualified procedure names, used as HTTP paths.
const (
	EventServiceCreateEventProcedure = "/eventsplit.v1.EventService/CreateEvent"
	EventServiceGetEventProcedure    = "/eventsplit.v1.EventService/GetEvent"
	EventServiceListEventsProcedure  = "/eventsplit.v1.EventService/ListEvents"
	EventServiceRenameEventProcedure = "/eventsplit.v1.EventService/RenameEvent"
	EventServiceDeleteEventProcedure = "/eventsplit.v1.EventService/DeleteEvent"

	ParticipantServiceCreateParticipantProcedure = "/eventsplit.v1.ParticipantService/CreateParticipant"
	ParticipantServiceListParticipantsProcedure  = "/eventsplit.v1.ParticipantService/ListParticipants"
	ParticipantServiceUpdateParticipantProcedure = "/eventsplit.v1.ParticipantService/UpdateParticipant"
	ParticipantServiceDeleteParticipantProcedure = "/eventsplit.v1.ParticipantService/DeleteParticipant"

	ExpenseServiceCreateExpenseProcedure = "/eventsplit.v1.ExpenseService/CreateExpense"
	ExpenseServiceListExpensesProcedure  = "/eventsplit.v1.ExpenseService/ListExpenses"
	ExpenseServiceUpdateExpenseProcedure = "/eventsplit.v1.ExpenseService/UpdateExpense"
	ExpenseServiceDeleteExpenseProcedure = "/eventsplit.v1.ExpenseService/DeleteExpense"

	DebtServiceGenerateDebtsProcedure   = "/eventsplit.v1.DebtService/GenerateDebts"
	DebtServiceListDebtsProcedure       = "/eventsplit.v1.DebtService/ListDebts"
	DebtServiceToggleReceivedProcedure  = "/eventsplit.v1.DebtService/ToggleReceived"
	DebtServiceAwaitDebtChangeProcedure = "/eventsplit.v1.DebtService/AwaitDebtChange"

	NotificationServiceSubscribeProcedure  = "/eventsplit.v1.NotificationService/Subscribe"
	NotificationServiceAddTopicProcedure   = "/eventsplit.v1.NotificationService/AddTopic"
	NotificationServiceAwaitTopicProcedure = "/eventsplit.v1.NotificationService/AwaitTopic"
)

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(apiv1.Codec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(apiv1.Codec{})}, opts...)
}

// route dispatches on the request path to the handler registered for it.
func route(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}
