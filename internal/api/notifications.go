package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/pkg/notification"
)

// handleListNotifications returns the user's feed, newest first.
// Query params: limit, offset, unread=true, category (repeatable).
func (h *Handler) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	opts := notification.ListOptions{}
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.respondError(w, r, http.StatusBadRequest, "invalid limit")
			return
		}
		opts.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.respondError(w, r, http.StatusBadRequest, "invalid offset")
			return
		}
		opts.Offset = n
	}
	opts.OnlyUnread = q.Get("unread") == "true"
	for _, c := range q["category"] {
		cat := notification.Category(c)
		if !cat.IsValid() {
			h.respondError(w, r, http.StatusBadRequest, "unknown category: "+c)
			return
		}
		opts.Categories = append(opts.Categories, cat)
	}

	notifications, err := h.router.List(r.Context(), userID, opts)
	if err != nil {
		h.respondError(w, r, http.StatusInternalServerError, "failed to list notifications")
		return
	}

	h.respondJSON(w, r, http.StatusOK, map[string]any{
		"notifications": notifications,
	})
}

func (h *Handler) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	count, err := h.router.CountUnread(r.Context(), userID)
	if err != nil {
		h.respondError(w, r, http.StatusInternalServerError, "failed to count unread notifications")
		return
	}

	h.respondJSON(w, r, http.StatusOK, map[string]int{"unread": count})
}

type markReadRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req markReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	if len(req.IDs) == 0 {
		h.respondError(w, r, http.StatusBadRequest, "ids are required")
		return
	}

	if err := h.router.MarkRead(r.Context(), userID, req.IDs...); err != nil {
		if errors.Is(err, notification.ErrNotificationNotFound) {
			h.respondError(w, r, http.StatusNotFound, "notification not found")
			return
		}
		h.respondError(w, r, http.StatusInternalServerError, "failed to mark notifications read")
		return
	}

	h.respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if err := h.router.MarkAllRead(r.Context(), userID); err != nil {
		h.respondError(w, r, http.StatusInternalServerError, "failed to mark notifications read")
		return
	}

	h.respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
