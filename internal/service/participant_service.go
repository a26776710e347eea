package service

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/eventsplit/internal/ledger"
	"github.com/mmynk/eventsplit/internal/models"
	"github.com/mmynk/eventsplit/internal/notify"
	"github.com/mmynk/eventsplit/internal/storage"
	"github.com/mmynk/eventsplit/pkg/apiv1"
	"github.com/mmynk/eventsplit/pkg/apiv1/apiv1connect"
)

var _ apiv1connect.ParticipantServiceHandler = (*ParticipantService)(nil)

// ParticipantService implements the Connect ParticipantService. Every
// mutation regenerates the event's debts.
type ParticipantService struct {
	store  storage.Store
	hub    *notify.Hub
	engine *ledger.Engine
}

// NewParticipantService creates a new ParticipantService.
func NewParticipantService(store storage.Store, hub *notify.Hub, engine *ledger.Engine) *ParticipantService {
	return &ParticipantService{store: store, hub: hub, engine: engine}
}

// CreateParticipant adds a participant to an event.
func (s *ParticipantService) CreateParticipant(ctx context.Context, req *connect.Request[apiv1.CreateParticipantRequest]) (*connect.Response[apiv1.CreateParticipantResponse], error) {
	slog.Info("CreateParticipant request received",
		"event_code", req.Msg.EventCode,
		"name", req.Msg.Name,
	)

	if req.Msg.Name == "" {
		return nil, invalidArgument("name required")
	}

	p := &models.Participant{
		EventCode: req.Msg.EventCode,
		Name:      req.Msg.Name,
		Email:     req.Msg.Email,
		IBAN:      req.Msg.IBAN,
		BIC:       req.Msg.BIC,
	}
	if err := s.store.CreateParticipant(ctx, p); err != nil {
		slog.Error("CreateParticipant failed", "event_code", p.EventCode, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Participant created", "event_code", p.EventCode, "name", p.Name)
	if err := s.changed(ctx, p, notify.ActionCreated); err != nil {
		return nil, err
	}

	return connect.NewResponse(&apiv1.CreateParticipantResponse{Participant: p}), nil
}

// ListParticipants lists an event's participants ordered by name.
func (s *ParticipantService) ListParticipants(ctx context.Context, req *connect.Request[apiv1.ListParticipantsRequest]) (*connect.Response[apiv1.ListParticipantsResponse], error) {
	slog.Info("ListParticipants request received", "event_code", req.Msg.EventCode)

	if _, err := s.store.GetEvent(ctx, req.Msg.EventCode); err != nil {
		return nil, toConnectError(err)
	}
	participants, err := s.store.ListParticipants(ctx, req.Msg.EventCode)
	if err != nil {
		slog.Error("ListParticipants failed", "event_code", req.Msg.EventCode, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&apiv1.ListParticipantsResponse{Participants: participants}), nil
}

// UpdateParticipant overwrites the participant's non-empty metadata.
func (s *ParticipantService) UpdateParticipant(ctx context.Context, req *connect.Request[apiv1.UpdateParticipantRequest]) (*connect.Response[apiv1.UpdateParticipantResponse], error) {
	slog.Info("UpdateParticipant request received",
		"event_code", req.Msg.EventCode,
		"name", req.Msg.Name,
	)

	p, err := s.store.UpdateParticipant(ctx, &models.Participant{
		EventCode: req.Msg.EventCode,
		Name:      req.Msg.Name,
		Email:     req.Msg.Email,
		IBAN:      req.Msg.IBAN,
		BIC:       req.Msg.BIC,
	})
	if err != nil {
		slog.Error("UpdateParticipant failed", "event_code", req.Msg.EventCode, "error", err)
		return nil, toConnectError(err)
	}

	if err := s.changed(ctx, p, notify.ActionModified); err != nil {
		return nil, err
	}

	return connect.NewResponse(&apiv1.UpdateParticipantResponse{Participant: p}), nil
}

// DeleteParticipant removes a participant with their expenses and debts.
func (s *ParticipantService) DeleteParticipant(ctx context.Context, req *connect.Request[apiv1.DeleteParticipantRequest]) (*connect.Response[apiv1.DeleteParticipantResponse], error) {
	slog.Info("DeleteParticipant request received",
		"event_code", req.Msg.EventCode,
		"name", req.Msg.Name,
	)

	p, err := s.store.DeleteParticipant(ctx, req.Msg.EventCode, req.Msg.Name)
	if err != nil {
		slog.Error("DeleteParticipant failed", "event_code", req.Msg.EventCode, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Participant deleted", "event_code", p.EventCode, "name", p.Name)
	if err := s.changed(ctx, p, notify.ActionDeleted); err != nil {
		return nil, err
	}

	return connect.NewResponse(&apiv1.DeleteParticipantResponse{Participant: p}), nil
}

// changed publishes the participant change and regenerates the debts.
func (s *ParticipantService) changed(ctx context.Context, p *models.Participant, action notify.Action) error {
	s.hub.Publish(notify.Message{Topic: notify.ParticipantTopic(p.EventCode), Action: action, Payload: p})
	return regenerate(ctx, s.engine, p.EventCode)
}

// RegenerateTimeout bounds the debt regeneration that follows a mutation.
const RegenerateTimeout = 30 * time.Second

// regenerate recomputes an event's debts after a committed mutation. It runs
// detached from the caller's cancellation, bounded by RegenerateTimeout.
func regenerate(ctx context.Context, engine *ledger.Engine, code string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), RegenerateTimeout)
	defer cancel()

	if _, err := engine.Generate(ctx, code); err != nil {
		slog.Error("Debt regeneration failed", "event_code", code, "error", err)
		return toConnectError(err)
	}
	return nil
}
