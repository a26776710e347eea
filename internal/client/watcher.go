package client

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"github.com/cenkalti/backoff/v5"

	"github.com/mmynk/eventsplit/internal/models"
	"github.com/mmynk/eventsplit/pkg/apiv1"
	"github.com/mmynk/eventsplit/pkg/apiv1/apiv1connect"
)

const minPollFloor = time.Second

// DebtWatcher keeps a long poll open on one event's debts and re-issues it
// whenever it resolves or times out.
type DebtWatcher struct {
	debts       apiv1connect.DebtServiceClient
	code        string
	pollTimeout time.Duration

	initialInterval time.Duration
	maxInterval     time.Duration
}

// WatcherOption configures a DebtWatcher.
type WatcherOption func(*DebtWatcher)

// WithPollTimeout sets the timeout requested for each long poll. Zero lets
// the server pick.
func WithPollTimeout(d time.Duration) WatcherOption {
	return func(w *DebtWatcher) { w.pollTimeout = d }
}

// WithRetryInterval bounds the backoff between failed polls.
func WithRetryInterval(initial, max time.Duration) WatcherOption {
	return func(w *DebtWatcher) {
		w.initialInterval = initial
		w.maxInterval = max
	}
}

// NewDebtWatcher creates a watcher for the event with the given code.
func NewDebtWatcher(debts apiv1connect.DebtServiceClient, code string, opts ...WatcherOption) *DebtWatcher {
	w := &DebtWatcher{
		debts:           debts,
		code:            code,
		initialInterval: 500 * time.Millisecond,
		maxInterval:     30 * time.Second,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run delivers the current debt list and then every changed list to fn until
// ctx is done. After a failed poll the full list is fetched again, so changes
// made while the server was unreachable are delivered. Transport errors and
// timeouts that come back faster than expected are retried with exponential
// backoff. An unknown event ends the watch with an error.
func (w *DebtWatcher) Run(ctx context.Context, fn func([]models.Debt)) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = w.initialInterval
	bo.MaxInterval = w.maxInterval

	resync := true
	for {
		start := time.Now()
		debts, err := w.poll(ctx, resync)
		switch {
		case err == nil:
			resync = false
			bo.Reset()
			fn(debts)
			continue
		case ctx.Err() != nil:
			return ctx.Err()
		case connect.CodeOf(err) == connect.CodeDeadlineExceeded && !resync:
			if time.Since(start) >= w.minPoll() {
				// Normal long-poll expiry.
				bo.Reset()
				continue
			}
		case connect.CodeOf(err) == connect.CodeNotFound,
			connect.CodeOf(err) == connect.CodeInvalidArgument:
			return err
		default:
			resync = true
		}

		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			return err
		}
		slog.Warn("Debt poll failed, retrying", "event_code", w.code, "error", err, "retry_in", wait)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// minPoll is the shortest duration a timed-out poll may take before it is
// treated as a failure.
func (w *DebtWatcher) minPoll() time.Duration {
	if w.pollTimeout > 0 {
		return min(w.pollTimeout/2, minPollFloor)
	}
	return minPollFloor
}

// Watch is Run delivering into a channel. The channel is closed when the
// watch ends; the terminal error, if any, is sent on errc.
func (w *DebtWatcher) Watch(ctx context.Context) (<-chan []models.Debt, <-chan error) {
	out := make(chan []models.Debt)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		err := w.Run(ctx, func(debts []models.Debt) {
			select {
			case out <- debts:
			case <-ctx.Done():
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			errc <- err
		}
		close(errc)
	}()
	return out, errc
}

func (w *DebtWatcher) poll(ctx context.Context, resync bool) ([]models.Debt, error) {
	if resync {
		resp, err := w.debts.ListDebts(ctx, connect.NewRequest(&apiv1.ListDebtsRequest{EventCode: w.code}))
		if err != nil {
			return nil, err
		}
		return resp.Msg.Debts, nil
	}
	resp, err := w.debts.AwaitDebtChange(ctx, connect.NewRequest(&apiv1.AwaitDebtChangeRequest{
		EventCode: w.code,
		TimeoutMs: w.pollTimeout.Milliseconds(),
	}))
	if err != nil {
		return nil, err
	}
	return resp.Msg.Debts, nil
}
