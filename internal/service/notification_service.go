package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/eventsplit/internal/notify"
	"github.com/mmynk/eventsplit/pkg/apiv1"
	"github.com/mmynk/eventsplit/pkg/apiv1/apiv1connect"
)

var _ apiv1connect.NotificationServiceHandler = (*NotificationService)(nil)

// NotificationService exposes the hub as a push stream plus a generic
// long-poll.
type NotificationService struct {
	hub         *notify.Hub
	pollTimeout time.Duration
	buffer      int
}

// NewNotificationService creates a new NotificationService. buffer is the
// per-session queue length.
func NewNotificationService(hub *notify.Hub, pollTimeout time.Duration, buffer int) *NotificationService {
	return &NotificationService{hub: hub, pollTimeout: pollTimeout, buffer: buffer}
}

// Subscribe opens a session and streams every message published on its
// topics until the client goes away.
func (s *NotificationService) Subscribe(ctx context.Context, req *connect.Request[apiv1.SubscribeRequest], stream *connect.ServerStream[apiv1.Notification]) error {
	slog.Info("Subscribe request received", "session_id", req.Msg.SessionID, "topics", req.Msg.Topics)

	session, err := s.hub.Open(req.Msg.SessionID, s.buffer)
	if err != nil {
		return toConnectError(err)
	}
	defer s.hub.Close(session.ID())

	for _, topic := range req.Msg.Topics {
		if err := s.hub.Subscribe(session.ID(), topic); err != nil {
			return toConnectError(err)
		}
	}

	if err := stream.Send(&apiv1.Notification{SessionID: session.ID(), Action: apiv1.ActionSubscribed}); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("Subscriber disconnected", "session_id", session.ID())
			return nil
		case msg, ok := <-session.C():
			if !ok {
				return nil
			}
			n, err := toNotification(msg)
			if err != nil {
				slog.Debug("Skipping unencodable message", "topic", msg.Topic, "error", err)
				continue
			}
			n.SessionID = session.ID()
			if err := stream.Send(n); err != nil {
				return err
			}
		}
	}
}

// AddTopic subscribes a live session to one more topic.
func (s *NotificationService) AddTopic(ctx context.Context, req *connect.Request[apiv1.AddTopicRequest]) (*connect.Response[apiv1.AddTopicResponse], error) {
	slog.Info("AddTopic request received", "session_id", req.Msg.SessionID, "topic", req.Msg.Topic)

	if req.Msg.Topic == "" {
		return nil, invalidArgument("topic required")
	}
	if err := s.hub.Subscribe(req.Msg.SessionID, req.Msg.Topic); err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&apiv1.AddTopicResponse{}), nil
}

// AwaitTopic long-polls any topic for its next message.
func (s *NotificationService) AwaitTopic(ctx context.Context, req *connect.Request[apiv1.AwaitTopicRequest]) (*connect.Response[apiv1.AwaitTopicResponse], error) {
	if req.Msg.Topic == "" {
		return nil, invalidArgument("topic required")
	}
	timeout := pollTimeout(req.Msg.TimeoutMs, s.pollTimeout)
	slog.Debug("AwaitTopic request received", "topic", req.Msg.Topic, "timeout", timeout)

	msg, err := s.hub.Await(ctx, req.Msg.Topic, timeout)
	if err != nil {
		return nil, toConnectError(err)
	}
	n, err := toNotification(msg)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&apiv1.AwaitTopicResponse{Notification: *n}), nil
}

func toNotification(msg notify.Message) (*apiv1.Notification, error) {
	n := &apiv1.Notification{Topic: msg.Topic, Action: string(msg.Action)}
	if msg.Payload != nil {
		payload, err := json.Marshal(msg.Payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s payload: %w", msg.Topic, err)
		}
		n.Payload = payload
	}
	return n, nil
}
