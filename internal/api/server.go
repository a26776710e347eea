// Package api assembles the HTTP surface: the connect services, the REST
// debt endpoints with their long-poll, health and Prometheus metrics.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/eventsplit/internal/ledger"
	"github.com/mmynk/eventsplit/internal/middleware"
	"github.com/mmynk/eventsplit/internal/models"
	"github.com/mmynk/eventsplit/internal/notify"
	"github.com/mmynk/eventsplit/internal/service"
	"github.com/mmynk/eventsplit/internal/storage"
	"github.com/mmynk/eventsplit/pkg/apiv1/apiv1connect"
)

// Options tunes the long-poll and push endpoints.
type Options struct {
	PollTimeout   time.Duration
	SessionBuffer int
}

// Server is the eventsplit HTTP server.
type Server struct {
	store  storage.Store
	hub    *notify.Hub
	engine *ledger.Engine
	opts   Options
}

// NewServer creates a new API server.
func NewServer(store storage.Store, hub *notify.Hub, engine *ledger.Engine, opts Options) *Server {
	return &Server{store: store, hub: hub, engine: engine, opts: opts}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.HTTPLogger)
	r.Use(middleware.CORS)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/{code}", func(r chi.Router) {
		r.Get("/debt", s.handleDebts)
		r.Get("/debt/updates", s.handleDebtUpdates)
	})

	interceptors := connect.WithInterceptors(middleware.LoggingInterceptor(), middleware.MetricsInterceptor{})
	mount := func(path string, h http.Handler) {
		r.Mount(strings.TrimSuffix(path, "/"), h)
	}
	mount(apiv1connect.NewEventServiceHandler(service.NewEventService(s.store, s.hub), interceptors))
	mount(apiv1connect.NewParticipantServiceHandler(service.NewParticipantService(s.store, s.hub, s.engine), interceptors))
	mount(apiv1connect.NewExpenseServiceHandler(service.NewExpenseService(s.store, s.hub, s.engine), interceptors))
	mount(apiv1connect.NewDebtServiceHandler(service.NewDebtService(s.engine, s.opts.PollTimeout), interceptors))
	mount(apiv1connect.NewNotificationServiceHandler(
		service.NewNotificationService(s.hub, s.opts.PollTimeout, s.opts.SessionBuffer), interceptors))

	return r
}

// handleDebts returns the current debt list of an event.
func (s *Server) handleDebts(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	debts, err := s.engine.Debts(r.Context(), code)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, debts)
}

// handleDebtUpdates parks until the event's debts change. A timeout answers
// 408 so clients can tell it apart from an empty debt list and re-issue.
func (s *Server) handleDebtUpdates(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	timeout := s.opts.PollTimeout
	if v := r.URL.Query().Get("timeout"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			writeError(w, http.StatusBadRequest, "invalid timeout")
			return
		}
		timeout = min(d, service.MaxLongPoll)
	}

	debts, err := s.engine.AwaitDebtChange(r.Context(), code, timeout)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, debts)
	case errors.Is(err, models.ErrTimeout):
		writeJSON(w, http.StatusRequestTimeout, map[string]any{"error": "timeout", "retryable": true})
	case r.Context().Err() != nil:
		// Client went away; nobody is listening for a response.
	default:
		writeDomainError(w, err)
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("Failed to write response", "error", err)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		slog.Error("Request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
