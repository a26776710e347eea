package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/eventsplit/internal/metrics"
	"github.com/mmynk/eventsplit/internal/models"
)

// DefaultBuffer is the per-session channel capacity used when Open is given
// a non-positive buffer.
const DefaultBuffer = 64

// Session is one push subscriber. Messages for all of its topics arrive on a
// single channel, which is closed by Hub.Close.
type Session struct {
	id     string
	ch     chan Message
	topics map[string]struct{}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// C returns the delivery channel.
func (s *Session) C() <-chan Message { return s.ch }

// Hub routes published messages to subscribed sessions and to long-poll
// waiters. Publishing is serialized, so every subscriber sees a topic's
// messages in publish order.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]*Session
	topics   map[string]map[string]*Session
	waiters  *Waiters
}

// NewHub creates an empty hub with its own waiter registry.
func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]*Session),
		topics:   make(map[string]map[string]*Session),
		waiters:  NewWaiters(),
	}
}

// Open registers a new session. An empty id is replaced by a random UUID.
func (h *Hub) Open(id string, buffer int) (*Session, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[id]; ok {
		return nil, fmt.Errorf("session %s: %w", id, models.ErrAlreadyExists)
	}
	s := &Session{
		id:     id,
		ch:     make(chan Message, buffer),
		topics: make(map[string]struct{}),
	}
	h.sessions[id] = s
	metrics.HubSessions.Inc()
	slog.Debug("Session opened", "session_id", id)
	return s, nil
}

// Subscribe adds topic to a session. Subscribing twice is a no-op.
func (h *Hub) Subscribe(sessionID, topic string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[sessionID]
	if !ok {
		return fmt.Errorf("session %s: %w", sessionID, models.ErrNotFound)
	}
	if _, ok := s.topics[topic]; ok {
		return nil
	}
	s.topics[topic] = struct{}{}
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[string]*Session)
		h.topics[topic] = subs
	}
	subs[sessionID] = s
	return nil
}

// Unsubscribe removes topic from a session.
func (h *Hub) Unsubscribe(sessionID, topic string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[sessionID]
	if !ok {
		return fmt.Errorf("session %s: %w", sessionID, models.ErrNotFound)
	}
	delete(s.topics, topic)
	h.unlink(sessionID, topic)
	return nil
}

// Close removes the session, all of its subscriptions, and closes its channel.
func (h *Hub) Close(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[sessionID]
	if !ok {
		return
	}
	for topic := range s.topics {
		h.unlink(sessionID, topic)
	}
	delete(h.sessions, sessionID)
	close(s.ch)
	metrics.HubSessions.Dec()
	slog.Debug("Session closed", "session_id", sessionID)
}

func (h *Hub) unlink(sessionID, topic string) {
	subs := h.topics[topic]
	delete(subs, sessionID)
	if len(subs) == 0 {
		delete(h.topics, topic)
	}
}

// Publish delivers msg to every session subscribed to msg.Topic without
// blocking, then resolves the topic's long-poll waiters. A session whose
// buffer is full misses the message. It returns the number of sessions the
// message was delivered to.
func (h *Hub) Publish(msg Message) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	metrics.HubPublishes.WithLabelValues(string(msg.Action)).Inc()

	delivered := 0
	for id, s := range h.topics[msg.Topic] {
		select {
		case s.ch <- msg:
			delivered++
		default:
			metrics.HubDropped.Inc()
			slog.Debug("Dropped message for slow session", "session_id", id, "topic", msg.Topic)
		}
	}
	h.waiters.Resolve(msg.Topic, msg)
	return delivered
}

// Await parks a long-poll on topic. See Waiters.Await.
func (h *Hub) Await(ctx context.Context, topic string, timeout time.Duration) (Message, error) {
	return h.waiters.Await(ctx, topic, timeout)
}

// Waiters exposes the hub's long-poll registry.
func (h *Hub) Waiters() *Waiters {
	return h.waiters
}

// Subscribers reports how many sessions are subscribed to topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics[topic])
}
