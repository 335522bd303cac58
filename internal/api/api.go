// Package api exposes the pipeline's HTTP surface: the provider webhook
// endpoint, the per-user notification feed, and delivery analytics.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notification"
	"github.com/dmitrymomot/notifykit/pkg/tracking"
)

// Handler bundles the HTTP endpoints over the pipeline services.
type Handler struct {
	ingestor  *tracking.Ingestor
	router    *notification.Router
	analytics *tracking.Analytics
	logger    *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger for the Handler.
func WithLogger(log *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = log
	}
}

// New creates the HTTP handler bundle.
func New(ingestor *tracking.Ingestor, router *notification.Router, analytics *tracking.Analytics, opts ...Option) *Handler {
	h := &Handler{
		ingestor:  ingestor,
		router:    router,
		analytics: analytics,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Routes builds the chi router. Health probes are mounted by the caller so
// readiness checks can reach dependencies this package does not own.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/webhooks/email", h.handleEmailWebhook)

	r.Route("/users/{userID}/notifications", func(r chi.Router) {
		r.Get("/", h.handleListNotifications)
		r.Get("/unread-count", h.handleUnreadCount)
		r.Post("/read", h.handleMarkRead)
		r.Post("/read-all", h.handleMarkAllRead)
	})

	r.Get("/analytics", h.handleAnalytics)

	return r
}

// respondJSON writes v as JSON with the given status. Encoding failures are
// logged, not surfaced - the status line is already on the wire.
func (h *Handler) respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.LogAttrs(r.Context(), slog.LevelError, "failed to encode response",
			logger.Error(err),
		)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.respondJSON(w, r, status, errorResponse{Error: msg})
}
