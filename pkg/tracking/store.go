package tracking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StatusUpdate carries the field changes applied together with a status
// transition. Nil pointers leave the column untouched; the Clear flags exist
// because "set to nothing" and "leave alone" are different operations for
// error message and retry schedule.
type StatusUpdate struct {
	ProviderMessageID *string
	ErrorMessage      *string
	ClearErrorMessage bool
	RetryCount        *int
	NextRetryAt       *time.Time
	ClearNextRetryAt  bool
	SentAt            *time.Time
	DeliveredAt       *time.Time
	OpenedAt          *time.Time
	ClickedAt         *time.Time
	BouncedAt         *time.Time
	BounceReason      *string
	ComplaintAt       *time.Time
}

// Stats holds raw counts for an analytics window. A message counts toward a
// stage if its corresponding timestamp is set, so a clicked message also
// counts as sent, delivered and opened when those callbacks arrived.
type Stats struct {
	Total     int64 `json:"total"`
	Sent      int64 `json:"sent"`
	Delivered int64 `json:"delivered"`
	Opened    int64 `json:"opened"`
	Clicked   int64 `json:"clicked"`
	Bounced   int64 `json:"bounced"`
	Complaint int64 `json:"complaint"`
}

// Store handles tracked message persistence.
//
// UpdateStatus is the only mutation for existing rows and is a compare-and-set:
// the update applies only if the row's current status equals from, otherwise
// ErrStaleStatus is returned. This guards against lost updates when webhook
// callbacks for the same message race each other or the retry scheduler.
type Store interface {
	// CreateMessage stores a new tracked message.
	CreateMessage(ctx context.Context, msg *TrackedMessage) error

	// GetMessage retrieves a message by its internal ID.
	// Returns ErrMessageNotFound if no such row exists.
	GetMessage(ctx context.Context, id uuid.UUID) (*TrackedMessage, error)

	// GetByProviderMessageID retrieves a message by the provider-assigned ID
	// carried in webhook callbacks. Returns ErrMessageNotFound on miss.
	GetByProviderMessageID(ctx context.Context, providerMessageID string) (*TrackedMessage, error)

	// UpdateStatus transitions a message from one status to another and
	// applies the accompanying field changes atomically. Returns
	// ErrInvalidTransition when the delivery state graph has no edge from
	// from to to (from == to is allowed and applies the field changes
	// only), ErrStaleStatus when the row's current status no longer equals
	// from, ErrMessageNotFound when the row does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, update StatusUpdate) error

	// SelectRetryable returns up to limit messages eligible for a retry
	// attempt: status=failed, retryCount<maxRetries, nextRetryAt<=now.
	SelectRetryable(ctx context.Context, now time.Time, limit int) ([]TrackedMessage, error)

	// AppendEvent stores an engagement event. Events are append-only.
	AppendEvent(ctx context.Context, event *TrackingEvent) error

	// EventsForMessage returns all engagement events for a message in
	// insertion order.
	EventsForMessage(ctx context.Context, messageID uuid.UUID) ([]TrackingEvent, error)

	// Stats counts messages created within [from, to) by lifecycle stage,
	// optionally filtered by category (empty string matches all).
	Stats(ctx context.Context, from, to time.Time, category string) (*Stats, error)
}
