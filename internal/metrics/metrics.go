// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eventsplit"

// ─── RPC ────────────────────────────────────────────────────────────────────

// RPCRequests counts handled RPCs by procedure and connect code.
var RPCRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "rpc",
	Name:      "requests_total",
	Help:      "RPCs handled, by procedure and result code.",
}, []string{"procedure", "code"})

// RPCDuration observes RPC latency by procedure.
var RPCDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "rpc",
	Name:      "duration_seconds",
	Help:      "RPC latency.",
	Buckets:   prometheus.DefBuckets,
}, []string{"procedure"})

// ─── Notification hub ───────────────────────────────────────────────────────

// HubPublishes counts published messages by action.
var HubPublishes = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "hub",
	Name:      "publishes_total",
	Help:      "Messages published to the hub, by action.",
}, []string{"action"})

// HubDropped counts deliveries dropped because a session buffer was full.
var HubDropped = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "hub",
	Name:      "dropped_total",
	Help:      "Deliveries dropped because the session buffer was full.",
})

// HubSessions tracks open push sessions.
var HubSessions = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "hub",
	Name:      "sessions",
	Help:      "Open push sessions.",
})

// ─── Long-poll waiters ──────────────────────────────────────────────────────

// WaitersPending tracks parked long-poll waiters.
var WaitersPending = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "waiters",
	Name:      "pending",
	Help:      "Long-poll waiters currently parked.",
})

// WaiterOutcomes counts waiter resolutions: change, timeout or cancelled.
var WaiterOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "waiters",
	Name:      "resolved_total",
	Help:      "Long-poll waiter resolutions, by outcome.",
}, []string{"outcome"})

// ─── Settlement ─────────────────────────────────────────────────────────────

// Generations counts debt generations by result (ok, error).
var Generations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "ledger",
	Name:      "generations_total",
	Help:      "Debt generations, by result.",
}, []string{"result"})

// GenerationDuration observes how long a full debt regeneration takes.
var GenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "ledger",
	Name:      "generation_duration_seconds",
	Help:      "Time to recompute and replace an event's debts.",
	Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
})
