package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/eventsplit/internal/models"
	"github.com/mmynk/eventsplit/internal/notify"
	"github.com/mmynk/eventsplit/internal/storage"
	"github.com/mmynk/eventsplit/pkg/apiv1"
	"github.com/mmynk/eventsplit/pkg/apiv1/apiv1connect"
)

var _ apiv1connect.EventServiceHandler = (*EventService)(nil)

// EventService implements the Connect EventService.
type EventService struct {
	store storage.Store
	hub   *notify.Hub
}

// NewEventService creates a new EventService with the given storage backend.
func NewEventService(store storage.Store, hub *notify.Hub) *EventService {
	return &EventService{store: store, hub: hub}
}

// CreateEvent creates a new event with a generated code.
func (s *EventService) CreateEvent(ctx context.Context, req *connect.Request[apiv1.CreateEventRequest]) (*connect.Response[apiv1.CreateEventResponse], error) {
	slog.Info("CreateEvent request received", "name", req.Msg.Name)

	if req.Msg.Name == "" {
		return nil, invalidArgument("name required")
	}

	event := &models.Event{Name: req.Msg.Name}
	if err := s.store.CreateEvent(ctx, event); err != nil {
		slog.Error("CreateEvent failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Event created", "event_code", event.Code)
	s.hub.Publish(notify.Message{Topic: notify.GlobalEventTopic, Action: notify.ActionCreated, Payload: event})

	return connect.NewResponse(&apiv1.CreateEventResponse{Event: event}), nil
}

// GetEvent retrieves an event by code.
func (s *EventService) GetEvent(ctx context.Context, req *connect.Request[apiv1.GetEventRequest]) (*connect.Response[apiv1.GetEventResponse], error) {
	slog.Info("GetEvent request received", "event_code", req.Msg.Code)

	event, err := s.store.GetEvent(ctx, req.Msg.Code)
	if err != nil {
		slog.Error("GetEvent failed", "event_code", req.Msg.Code, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&apiv1.GetEventResponse{Event: event}), nil
}

// ListEvents retrieves all events in the requested order.
func (s *EventService) ListEvents(ctx context.Context, req *connect.Request[apiv1.ListEventsRequest]) (*connect.Response[apiv1.ListEventsResponse], error) {
	slog.Info("ListEvents request received", "order_by", req.Msg.OrderBy)

	var order models.EventOrder
	switch req.Msg.OrderBy {
	case "", apiv1.OrderByName:
		order = models.OrderByName
	case apiv1.OrderByCreation:
		order = models.OrderByCreation
	case apiv1.OrderByLastActivity:
		order = models.OrderByLastActivity
	default:
		return nil, invalidArgument("unknown order %q", req.Msg.OrderBy)
	}

	events, err := s.store.ListEvents(ctx, order)
	if err != nil {
		slog.Error("ListEvents failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("ListEvents successful", "count", len(events))

	return connect.NewResponse(&apiv1.ListEventsResponse{Events: events}), nil
}

// RenameEvent changes an event's name.
func (s *EventService) RenameEvent(ctx context.Context, req *connect.Request[apiv1.RenameEventRequest]) (*connect.Response[apiv1.RenameEventResponse], error) {
	slog.Info("RenameEvent request received", "event_code", req.Msg.Code, "name", req.Msg.Name)

	if req.Msg.Name == "" {
		return nil, invalidArgument("name required")
	}

	event, err := s.store.RenameEvent(ctx, req.Msg.Code, req.Msg.Name)
	if err != nil {
		slog.Error("RenameEvent failed", "event_code", req.Msg.Code, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Event renamed", "event_code", event.Code)
	s.publishEvent(event, notify.ActionModified)

	return connect.NewResponse(&apiv1.RenameEventResponse{Event: event}), nil
}

// DeleteEvent removes an event and everything inside it.
func (s *EventService) DeleteEvent(ctx context.Context, req *connect.Request[apiv1.DeleteEventRequest]) (*connect.Response[apiv1.DeleteEventResponse], error) {
	slog.Info("DeleteEvent request received", "event_code", req.Msg.Code)

	event, err := s.store.DeleteEvent(ctx, req.Msg.Code)
	if err != nil {
		slog.Error("DeleteEvent failed", "event_code", req.Msg.Code, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Event deleted", "event_code", event.Code)
	s.publishEvent(event, notify.ActionDeleted)
	// Wake debt long-polls parked on the deleted event.
	s.hub.Publish(notify.Message{Topic: notify.DebtTopic(event.Code), Action: notify.ActionDeleted, Payload: event})

	return connect.NewResponse(&apiv1.DeleteEventResponse{Event: event}), nil
}

// publishEvent notifies both the event's own topic and the global one.
func (s *EventService) publishEvent(event *models.Event, action notify.Action) {
	s.hub.Publish(notify.Message{Topic: notify.EventTopic(event.Code), Action: action, Payload: event})
	s.hub.Publish(notify.Message{Topic: notify.GlobalEventTopic, Action: action, Payload: event})
}
