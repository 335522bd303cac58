package api

import (
	"net/http"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/tracking"
)

// handleAnalytics reports delivery metrics for a window.
// Query params: from, to (RFC 3339; default last 30 days), category.
func (h *Handler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	now := time.Now()
	window := tracking.Range{From: now.AddDate(0, 0, -30), To: now}

	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.respondError(w, r, http.StatusBadRequest, "invalid from timestamp, want RFC 3339")
			return
		}
		window.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.respondError(w, r, http.StatusBadRequest, "invalid to timestamp, want RFC 3339")
			return
		}
		window.To = t
	}
	if !window.From.Before(window.To) {
		h.respondError(w, r, http.StatusBadRequest, "from must be before to")
		return
	}

	report, err := h.analytics.Report(r.Context(), window, q.Get("category"))
	if err != nil {
		h.respondError(w, r, http.StatusInternalServerError, "failed to compute analytics")
		return
	}

	h.respondJSON(w, r, http.StatusOK, report)
}
