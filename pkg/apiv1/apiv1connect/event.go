package apiv1connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/eventsplit/pkg/apiv1"
)

// EventServiceHandler is implemented by the server.
type EventServiceHandler interface {
	CreateEvent(context.Context, *connect.Request[apiv1.CreateEventRequest]) (*connect.Response[apiv1.CreateEventResponse], error)
	GetEvent(context.Context, *connect.Request[apiv1.GetEventRequest]) (*connect.Response[apiv1.GetEventResponse], error)
	ListEvents(context.Context, *connect.Request[apiv1.ListEventsRequest]) (*connect.Response[apiv1.ListEventsResponse], error)
	RenameEvent(context.Context, *connect.Request[apiv1.RenameEventRequest]) (*connect.Response[apiv1.RenameEventResponse], error)
	DeleteEvent(context.Context, *connect.Request[apiv1.DeleteEventRequest]) (*connect.Response[apiv1.DeleteEventResponse], error)
}

// NewEventServiceHandler returns the service's path prefix and handler.
func NewEventServiceHandler(svc EventServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + EventServiceName + "/", route(map[string]http.Handler{
		EventServiceCreateEventProcedure: connect.NewUnaryHandler(EventServiceCreateEventProcedure, svc.CreateEvent, opts...),
		EventServiceGetEventProcedure:    connect.NewUnaryHandler(EventServiceGetEventProcedure, svc.GetEvent, opts...),
		EventServiceListEventsProcedure:  connect.NewUnaryHandler(EventServiceListEventsProcedure, svc.ListEvents, opts...),
		EventServiceRenameEventProcedure: connect.NewUnaryHandler(EventServiceRenameEventProcedure, svc.RenameEvent, opts...),
		EventServiceDeleteEventProcedure: connect.NewUnaryHandler(EventServiceDeleteEventProcedure, svc.DeleteEvent, opts...),
	})
}

// EventServiceClient calls EventService.
type EventServiceClient interface {
	CreateEvent(context.Context, *connect.Request[apiv1.CreateEventRequest]) (*connect.Response[apiv1.CreateEventResponse], error)
	GetEvent(context.Context, *connect.Request[apiv1.GetEventRequest]) (*connect.Response[apiv1.GetEventResponse], error)
	ListEvents(context.Context, *connect.Request[apiv1.ListEventsRequest]) (*connect.Response[apiv1.ListEventsResponse], error)
	RenameEvent(context.Context, *connect.Request[apiv1.RenameEventRequest]) (*connect.Response[apiv1.RenameEventResponse], error)
	DeleteEvent(context.Context, *connect.Request[apiv1.DeleteEventRequest]) (*connect.Response[apiv1.DeleteEventResponse], error)
}

type eventServiceClient struct {
	createEvent *connect.Client[apiv1.CreateEventRequest, apiv1.CreateEventResponse]
	getEvent    *connect.Client[apiv1.GetEventRequest, apiv1.GetEventResponse]
	listEvents  *connect.Client[apiv1.ListEventsRequest, apiv1.ListEventsResponse]
	renameEvent *connect.Client[apiv1.RenameEventRequest, apiv1.RenameEventResponse]
	deleteEvent *connect.Client[apiv1.DeleteEventRequest, apiv1.DeleteEventResponse]
}

// NewEventServiceClient constructs a client for the server at baseURL.
func NewEventServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) EventServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &eventServiceClient{
		createEvent: connect.NewClient[apiv1.CreateEventRequest, apiv1.CreateEventResponse](httpClient, baseURL+EventServiceCreateEventProcedure, opts...),
		getEvent:    connect.NewClient[apiv1.GetEventRequest, apiv1.GetEventResponse](httpClient, baseURL+EventServiceGetEventProcedure, opts...),
		listEvents:  connect.NewClient[apiv1.ListEventsRequest, apiv1.ListEventsResponse](httpClient, baseURL+EventServiceListEventsProcedure, opts...),
		renameEvent: connect.NewClient[apiv1.RenameEventRequest, apiv1.RenameEventResponse](httpClient, baseURL+EventServiceRenameEventProcedure, opts...),
		deleteEvent: connect.NewClient[apiv1.DeleteEventRequest, apiv1.DeleteEventResponse](httpClient, baseURL+EventServiceDeleteEventProcedure, opts...),
	}
}

func (c *eventServiceClient) CreateEvent(ctx context.Context, req *connect.Request[apiv1.CreateEventRequest]) (*connect.Response[apiv1.CreateEventResponse], error) {
	return c.createEvent.CallUnary(ctx, req)
}

func (c *eventServiceClient) GetEvent(ctx context.Context, req *connect.Request[apiv1.GetEventRequest]) (*connect.Response[apiv1.GetEventResponse], error) {
	return c.getEvent.CallUnary(ctx, req)
}

func (c *eventServiceClient) ListEvents(ctx context.Context, req *connect.Request[apiv1.ListEventsRequest]) (*connect.Response[apiv1.ListEventsResponse], error) {
	return c.listEvents.CallUnary(ctx, req)
}

func (c *eventServiceClient) RenameEvent(ctx context.Context, req *connect.Request[apiv1.RenameEventRequest]) (*connect.Response[apiv1.RenameEventResponse], error) {
	return c.renameEvent.CallUnary(ctx, req)
}

func (c *eventServiceClient) DeleteEvent(ctx context.Context, req *connect.Request[apiv1.DeleteEventRequest]) (*connect.Response[apiv1.DeleteEventResponse], error) {
	return c.deleteEvent.CallUnary(ctx, req)
}
