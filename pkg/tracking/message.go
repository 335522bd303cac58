package tracking

import (
	"time"

	"github.com/google/uuid"
)

// TrackedMessage is a persisted record of one outbound email with its full
// delivery lifecycle. Rows are created before the provider call and never
// deleted in normal operation - they are the audit trail for every send
// attempt, including ones that failed immediately.
type TrackedMessage struct {
	ID                uuid.UUID         `json:"id"`
	Category          string            `json:"category"`
	Recipient         string            `json:"recipient"`
	Sender            string            `json:"sender"`
	Subject           string            `json:"subject"`
	HTMLBody          string            `json:"html_body"`
	TextBody          string            `json:"text_body"`
	Status            Status            `json:"status"`
	ProviderMessageID string            `json:"provider_message_id,omitempty"`
	RetryCount        int               `json:"retry_count"`
	MaxRetries        int               `json:"max_retries"`
	NextRetryAt       *time.Time        `json:"next_retry_at,omitempty"`
	ErrorMessage      string            `json:"error_message,omitempty"`
	SentAt            *time.Time        `json:"sent_at,omitempty"`
	DeliveredAt       *time.Time        `json:"delivered_at,omitempty"`
	OpenedAt          *time.Time        `json:"opened_at,omitempty"`
	ClickedAt         *time.Time        `json:"clicked_at,omitempty"`
	BouncedAt         *time.Time        `json:"bounced_at,omitempty"`
	BounceReason      string            `json:"bounce_reason,omitempty"`
	ComplaintAt       *time.Time        `json:"complaint_at,omitempty"`
	RelatedUserID     string            `json:"related_user_id,omitempty"`
	RelatedTemplateID string            `json:"related_template_id,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// EventKind identifies the type of a recipient engagement event.
type EventKind string

const (
	EventKindOpened  EventKind = "opened"
	EventKindClicked EventKind = "clicked"
)

// TrackingEvent is an append-only log entry for recipient engagement
// callbacks. It references its TrackedMessage but is never mutated after
// creation; replayed provider callbacks produce additional log entries while
// the message row itself stays idempotent.
type TrackingEvent struct {
	ID         uuid.UUID `json:"id"`
	MessageID  uuid.UUID `json:"message_id"`
	Kind       EventKind `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`
	ClientIP   string    `json:"client_ip,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	URL        string    `json:"url,omitempty"` // clicked events only
	CreatedAt  time.Time `json:"created_at"`
}
