package tracking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// Event is the normalized payload of a provider delivery webhook.
type Event struct {
	ProviderMessageID string    `json:"provider_message_id"`
	OccurredAt        time.Time `json:"occurred_at"`
	ClientIP          string    `json:"client_ip,omitempty"`
	UserAgent         string    `json:"user_agent,omitempty"`
	URL               string    `json:"url,omitempty"`    // click events
	Reason            string    `json:"reason,omitempty"` // bounce events
}

// Ingestor applies provider delivery callbacks to tracked messages.
//
// Webhooks are inherently unordered relative to the send path: a callback can
// arrive before the local row is committed, and callbacks for one message can
// arrive out of chronological order. The ingestor tolerates both - lookup
// misses get a short bounded retry, and transitions that would move a message
// backward along the state graph are counted and skipped instead of applied.
type Ingestor struct {
	store          Store
	logger         *slog.Logger
	lookupAttempts int
	lookupDelay    time.Duration
	casAttempts    int

	dropped atomic.Int64
	stale   atomic.Int64
	unknown atomic.Int64
}

// IngestorOption configures an Ingestor.
type IngestorOption func(*Ingestor)

// WithIngestorLogger sets the logger for the Ingestor.
func WithIngestorLogger(log *slog.Logger) IngestorOption {
	return func(i *Ingestor) {
		i.logger = log
	}
}

// WithLookupRetry tunes the retry-on-miss behavior for callbacks that arrive
// before the local message row is committed.
func WithLookupRetry(attempts int, delay time.Duration) IngestorOption {
	return func(i *Ingestor) {
		if attempts > 0 {
			i.lookupAttempts = attempts
		}
		if delay > 0 {
			i.lookupDelay = delay
		}
	}
}

// NewIngestor creates a webhook event ingestor.
func NewIngestor(store Store, opts ...IngestorOption) *Ingestor {
	i := &Ingestor{
		store:          store,
		logger:         slog.Default(),
		lookupAttempts: 3,
		lookupDelay:    100 * time.Millisecond,
		casAttempts:    3,
	}

	for _, opt := range opts {
		opt(i)
	}

	return i
}

// DroppedEvents returns how many events referenced no known message.
// Exposed for alerting: silently lost callbacks were a known gap in earlier
// iterations of this pipeline.
func (i *Ingestor) DroppedEvents() int64 { return i.dropped.Load() }

// StaleEvents returns how many events were skipped because applying them
// would have moved a message backward along the state graph.
func (i *Ingestor) StaleEvents() int64 { return i.stale.Load() }

// UnknownEvents returns how many events carried an unrecognized type.
func (i *Ingestor) UnknownEvents() int64 { return i.unknown.Load() }

// Ingest applies one provider callback. Unknown event types and unmatched
// provider message IDs are counted and logged but produce no error - the
// webhook endpoint must acknowledge them so providers don't retry forever.
// Only store failures propagate.
func (i *Ingestor) Ingest(ctx context.Context, eventType string, ev Event) error {
	target, ok := normalizeEventType(eventType)
	if !ok {
		i.unknown.Add(1)
		// Unknown types are expected as providers add new callbacks;
		// dropping them keeps the endpoint forward-compatible.
		i.logger.LogAttrs(ctx, slog.LevelInfo, "ignoring unknown webhook event type",
			logger.EventType(eventType),
			logger.ProviderMessageID(ev.ProviderMessageID),
		)
		return nil
	}

	msg, err := i.lookupMessage(ctx, ev.ProviderMessageID)
	if err != nil {
		if errors.Is(err, ErrMessageNotFound) {
			i.dropped.Add(1)
			i.logger.LogAttrs(ctx, slog.LevelWarn, "webhook event references unknown message",
				logger.EventType(eventType),
				logger.ProviderMessageID(ev.ProviderMessageID),
			)
			return nil
		}
		return fmt.Errorf("failed to look up message for webhook event: %w", err)
	}

	if err := i.applyStatus(ctx, msg, target, ev); err != nil {
		return err
	}

	// Engagement events also land in the append-only audit log, including
	// replays - the log mirrors what the provider reported, the message row
	// stays idempotent.
	switch target {
	case StatusOpened, StatusClicked:
		kind := EventKindOpened
		if target == StatusClicked {
			kind = EventKindClicked
		}
		event := &TrackingEvent{
			ID:         uuid.New(),
			MessageID:  msg.ID,
			Kind:       kind,
			OccurredAt: ev.OccurredAt,
			ClientIP:   ev.ClientIP,
			UserAgent:  ev.UserAgent,
			URL:        ev.URL,
			CreatedAt:  time.Now(),
		}
		if err := i.store.AppendEvent(ctx, event); err != nil {
			return fmt.Errorf("failed to append tracking event: %w", err)
		}
	}

	return nil
}

// lookupMessage finds the message by provider ID with a short bounded retry,
// tolerating the callback-before-commit race.
func (i *Ingestor) lookupMessage(ctx context.Context, providerMessageID string) (*TrackedMessage, error) {
	var lastErr error
	for attempt := 0; attempt < i.lookupAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(i.lookupDelay):
			}
		}

		msg, err := i.store.GetByProviderMessageID(ctx, providerMessageID)
		if err == nil {
			return msg, nil
		}
		lastErr = err
		if !errors.Is(err, ErrMessageNotFound) {
			return nil, err
		}
	}
	return nil, lastErr
}

// applyStatus advances the message status with a CAS loop. Concurrent
// webhooks for the same message race on the status column; losing the race
// triggers a re-read and a fresh decision against the new status.
func (i *Ingestor) applyStatus(ctx context.Context, msg *TrackedMessage, target Status, ev Event) error {
	current := msg.Status

	for attempt := 0; attempt < i.casAttempts; attempt++ {
		switch {
		case current == target:
			// Replay of an already-applied event: nothing to do.
			return nil
		case current.CanTransition(target):
			update := stageUpdate(msg, target, ev)
			err := i.store.UpdateStatus(ctx, msg.ID, current, target, update)
			if err == nil {
				i.logger.LogAttrs(ctx, slog.LevelDebug, "delivery status advanced",
					logger.MessageID(msg.ID),
					logger.Status(string(target)),
					logger.ProviderMessageID(ev.ProviderMessageID),
				)
				return nil
			}
			if !errors.Is(err, ErrStaleStatus) {
				return fmt.Errorf("failed to apply webhook status update: %w", err)
			}
		default:
			// Stale callback: it would move the message backward. Keep the
			// status, but backfill the stage timestamps so analytics still
			// count the stage (an open arriving after a click).
			i.stale.Add(1)
			i.logger.LogAttrs(ctx, slog.LevelDebug, "skipping stale webhook event",
				logger.MessageID(msg.ID),
				logger.Status(string(current)),
				logger.EventType(string(target)),
			)
			return i.backfillTimestamp(ctx, msg, current, target, ev)
		}

		// Lost the CAS race; re-read and decide again.
		fresh, err := i.store.GetMessage(ctx, msg.ID)
		if err != nil {
			return fmt.Errorf("failed to re-read message after stale update: %w", err)
		}
		msg = fresh
		current = fresh.Status
	}

	i.stale.Add(1)
	return nil
}

// backfillTimestamp records the stage timestamps of a stale event, so
// analytics count the stage even though the status itself was not regressed.
// An open arriving after a click, or a bounce arriving after a complaint,
// still leaves its mark on the row.
func (i *Ingestor) backfillTimestamp(ctx context.Context, msg *TrackedMessage, current, target Status, ev Event) error {
	update := stageUpdate(msg, target, ev)
	if update == (StatusUpdate{}) {
		return nil
	}

	err := i.store.UpdateStatus(ctx, msg.ID, current, current, update)
	if err != nil && !errors.Is(err, ErrStaleStatus) {
		return fmt.Errorf("failed to backfill stage timestamp: %w", err)
	}
	// A lost race here means someone else advanced the row; the fresher
	// state wins and the backfill is abandoned.
	return nil
}

// stageUpdate builds the timestamp fields recorded for a reported stage.
// Engagement implies the earlier stages: providers routinely skip the
// delivery callback yet still report opens and clicks, so an open fills
// delivered_at and a click fills opened_at and delivered_at as well. That
// keeps the stage counts monotone (sent >= delivered >= opened >= clicked)
// and the analytics rates within [0, 1]. Per field the earliest reported
// time wins, replacing an implied timestamp when a late callback shows the
// stage actually happened earlier.
func stageUpdate(msg *TrackedMessage, target Status, ev Event) StatusUpdate {
	occurredAt := ev.OccurredAt
	stamp := func(current *time.Time) *time.Time {
		if current == nil || occurredAt.Before(*current) {
			return &occurredAt
		}
		return nil
	}

	var update StatusUpdate
	switch target {
	case StatusDelivered:
		update.DeliveredAt = stamp(msg.DeliveredAt)
	case StatusOpened:
		update.OpenedAt = stamp(msg.OpenedAt)
		update.DeliveredAt = stamp(msg.DeliveredAt)
	case StatusClicked:
		update.ClickedAt = stamp(msg.ClickedAt)
		update.OpenedAt = stamp(msg.OpenedAt)
		update.DeliveredAt = stamp(msg.DeliveredAt)
	case StatusBounced:
		update.BouncedAt = stamp(msg.BouncedAt)
		if update.BouncedAt != nil && ev.Reason != "" {
			reason := ev.Reason
			update.BounceReason = &reason
		}
	case StatusComplaint:
		update.ComplaintAt = stamp(msg.ComplaintAt)
	}
	return update
}

// normalizeEventType maps provider event type spellings to target statuses.
// Postmark sends "Delivery", "Open", "Click", "Bounce" and "SpamComplaint";
// past-tense variants are accepted for internal replays.
func normalizeEventType(eventType string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(eventType)) {
	case "delivery", "delivered":
		return StatusDelivered, true
	case "open", "opened":
		return StatusOpened, true
	case "click", "clicked":
		return StatusClicked, true
	case "bounce", "bounced", "hardbounce":
		return StatusBounced, true
	case "spamcomplaint", "complaint":
		return StatusComplaint, true
	default:
		return "", false
	}
}
