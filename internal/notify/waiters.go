package notify

import (
	"context"
	"sync"
	"time"

	"github.com/mmynk/eventsplit/internal/metrics"
	"github.com/mmynk/eventsplit/internal/models"
)

type waiter struct {
	ch chan Message
}

// Waiters is the long-poll registry. Each parked request is resolved exactly
// once: by a change on its topic, by its timeout, or by its context.
type Waiters struct {
	mu      sync.Mutex
	byTopic map[string]map[*waiter]struct{}
}

// NewWaiters returns an empty registry.
func NewWaiters() *Waiters {
	return &Waiters{byTopic: make(map[string]map[*waiter]struct{})}
}

// Await parks until a message is resolved on topic, timeout elapses
// (models.ErrTimeout) or ctx is done (ctx.Err()). A non-positive timeout
// waits on ctx alone.
func (w *Waiters) Await(ctx context.Context, topic string, timeout time.Duration) (Message, error) {
	wt := &waiter{ch: make(chan Message, 1)}

	w.mu.Lock()
	set, ok := w.byTopic[topic]
	if !ok {
		set = make(map[*waiter]struct{})
		w.byTopic[topic] = set
	}
	set[wt] = struct{}{}
	w.mu.Unlock()
	metrics.WaitersPending.Inc()

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case msg := <-wt.ch:
		metrics.WaiterOutcomes.WithLabelValues("change").Inc()
		return msg, nil
	case <-expired:
		if msg, ok := w.abandon(topic, wt); ok {
			return msg, nil
		}
		metrics.WaiterOutcomes.WithLabelValues("timeout").Inc()
		return Message{}, models.ErrTimeout
	case <-ctx.Done():
		if msg, ok := w.abandon(topic, wt); ok {
			return msg, nil
		}
		metrics.WaiterOutcomes.WithLabelValues("cancelled").Inc()
		return Message{}, ctx.Err()
	}
}

// abandon removes wt from the registry. If Resolve got there first the
// message is already buffered and is returned instead.
func (w *Waiters) abandon(topic string, wt *waiter) (Message, bool) {
	w.mu.Lock()
	set := w.byTopic[topic]
	_, pending := set[wt]
	if pending {
		delete(set, wt)
		if len(set) == 0 {
			delete(w.byTopic, topic)
		}
	}
	w.mu.Unlock()

	if pending {
		metrics.WaitersPending.Dec()
		return Message{}, false
	}
	metrics.WaiterOutcomes.WithLabelValues("change").Inc()
	return <-wt.ch, true
}

// Resolve hands msg to every waiter parked on topic and removes them.
// It returns the number of waiters resolved.
func (w *Waiters) Resolve(topic string, msg Message) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	set := w.byTopic[topic]
	for wt := range set {
		wt.ch <- msg
	}
	delete(w.byTopic, topic)
	metrics.WaitersPending.Sub(float64(len(set)))
	return len(set)
}

// Pending reports how many waiters are parked on topic.
func (w *Waiters) Pending(topic string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.byTopic[topic])
}
