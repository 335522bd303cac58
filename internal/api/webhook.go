package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/clientip"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/tracking"
)

// webhookRequest is the provider callback envelope: an event type plus a data
// object keyed by the provider's message id.
type webhookRequest struct {
	Type string      `json:"type"`
	Data webhookData `json:"data"`
}

type webhookData struct {
	ProviderMessageID string     `json:"providerMessageId"`
	Timestamp         *time.Time `json:"timestamp,omitempty"`
	URL               string     `json:"url,omitempty"`
	Reason            string     `json:"reason,omitempty"`
	UserAgent         string     `json:"userAgent,omitempty"`
	ClientIP          string     `json:"clientIp,omitempty"`
}

const maxWebhookBody = 1 << 20 // 1 MiB

// handleEmailWebhook ingests one provider delivery callback. The provider
// retries on non-2xx, so the endpoint acknowledges everything it can parse -
// unknown event types and unmatched message ids included. Only a store
// failure earns a 500, which is the one case a provider retry can fix.
func (h *Handler) handleEmailWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxWebhookBody)).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "malformed webhook payload")
		return
	}
	if req.Type == "" || req.Data.ProviderMessageID == "" {
		h.respondError(w, r, http.StatusBadRequest, "type and data.providerMessageId are required")
		return
	}

	occurredAt := time.Now()
	if req.Data.Timestamp != nil {
		occurredAt = *req.Data.Timestamp
	}

	// Engagement callbacks carry the recipient's IP and user agent in the
	// payload when the provider proxies them; otherwise fall back to the
	// request itself (some providers replay the original client headers).
	ip := req.Data.ClientIP
	if ip == "" {
		ip = clientip.GetIP(r)
	}
	ua := req.Data.UserAgent
	if ua == "" {
		ua = r.UserAgent()
	}

	event := tracking.Event{
		ProviderMessageID: req.Data.ProviderMessageID,
		OccurredAt:        occurredAt,
		ClientIP:          ip,
		UserAgent:         ua,
		URL:               req.Data.URL,
		Reason:            req.Data.Reason,
	}

	if err := h.ingestor.Ingest(r.Context(), req.Type, event); err != nil {
		h.logger.LogAttrs(r.Context(), slog.LevelError, "webhook ingestion failed",
			logger.EventType(req.Type),
			logger.ProviderMessageID(req.Data.ProviderMessageID),
			logger.Error(err),
		)
		h.respondError(w, r, http.StatusInternalServerError, "failed to apply event")
		return
	}

	h.respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
