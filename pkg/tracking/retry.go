package tracking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/email"
	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// DefaultRetryBatchSize bounds how many failed messages one pass picks up.
const DefaultRetryBatchSize = 50

// Retrier resends failed messages with exponential backoff. It only defines
// the pass logic; the periodic trigger (a ticker in the service binary, or an
// external scheduler) is the caller's responsibility.
type Retrier struct {
	store     Store
	mailer    email.EmailSender
	backoff   Backoff
	batchSize int
	logger    *slog.Logger
}

// RetrierOption configures a Retrier.
type RetrierOption func(*Retrier)

// WithRetrierLogger sets the logger for the Retrier.
func WithRetrierLogger(log *slog.Logger) RetrierOption {
	return func(r *Retrier) {
		r.logger = log
	}
}

// WithRetryBatchSize overrides how many messages one pass processes.
func WithRetryBatchSize(n int) RetrierOption {
	return func(r *Retrier) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithRetrierBackoff overrides the backoff schedule.
func WithRetrierBackoff(b Backoff) RetrierOption {
	return func(r *Retrier) {
		r.backoff = b
	}
}

// NewRetrier creates a retry scheduler pass runner.
func NewRetrier(store Store, mailer email.EmailSender, opts ...RetrierOption) *Retrier {
	r := &Retrier{
		store:     store,
		mailer:    mailer,
		backoff:   DefaultBackoff(),
		batchSize: DefaultRetryBatchSize,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// RunRetryPass selects due failed messages and re-attempts each one.
// Per-message failures never abort the pass. Returns how many messages were
// processed (attempted), regardless of outcome.
func (r *Retrier) RunRetryPass(ctx context.Context) (int, error) {
	now := time.Now()
	msgs, err := r.store.SelectRetryable(ctx, now, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to select retryable messages: %w", err)
	}

	processed := 0
	for i := range msgs {
		if ctx.Err() != nil {
			return processed, ctx.Err()
		}
		r.retryOne(ctx, &msgs[i])
		processed++
	}

	if processed > 0 {
		r.logger.LogAttrs(ctx, slog.LevelInfo, "retry pass completed",
			slog.Int("processed", processed),
			logger.Component("retrier"),
		)
	}
	return processed, nil
}

func (r *Retrier) retryOne(ctx context.Context, msg *TrackedMessage) {
	result, sendErr := r.mailer.SendEmail(ctx, email.SendEmailParams{
		SendTo:   msg.Recipient,
		Subject:  msg.Subject,
		BodyHTML: msg.HTMLBody,
		BodyText: msg.TextBody,
		Tag:      msg.Category,
	})

	retryCount := msg.RetryCount + 1

	if sendErr == nil {
		now := time.Now()
		update := StatusUpdate{
			ProviderMessageID: &result.MessageID,
			SentAt:            &now,
			RetryCount:        &retryCount,
			ClearErrorMessage: true,
			ClearNextRetryAt:  true,
		}
		if err := r.store.UpdateStatus(ctx, msg.ID, StatusFailed, StatusSent, update); err != nil {
			// A lost CAS means a concurrent pass already handled this row;
			// anything else is worth surfacing.
			if !errors.Is(err, ErrStaleStatus) {
				r.logger.LogAttrs(ctx, slog.LevelError, "failed to record retry success",
					logger.MessageID(msg.ID), logger.Error(err),
				)
			}
			return
		}

		r.logger.LogAttrs(ctx, slog.LevelInfo, "retry succeeded",
			logger.MessageID(msg.ID),
			logger.ProviderMessageID(result.MessageID),
			logger.RetryCount(retryCount),
		)
		return
	}

	errMsg := sendErr.Error()
	update := StatusUpdate{
		ErrorMessage: &errMsg,
		RetryCount:   &retryCount,
	}

	// Retry exhaustion is an explicit terminal state, not an implicit
	// predicate over counters.
	target := StatusFailed
	if retryCount >= msg.MaxRetries {
		target = StatusDeadLettered
		update.ClearNextRetryAt = true
	} else {
		next := time.Now().Add(r.backoff.Delay(retryCount))
		update.NextRetryAt = &next
	}

	if err := r.store.UpdateStatus(ctx, msg.ID, StatusFailed, target, update); err != nil {
		if !errors.Is(err, ErrStaleStatus) {
			r.logger.LogAttrs(ctx, slog.LevelError, "failed to record retry failure",
				logger.MessageID(msg.ID), logger.Error(err),
			)
		}
		return
	}

	if target == StatusDeadLettered {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "message dead-lettered after exhausting retries",
			logger.MessageID(msg.ID),
			logger.Recipient(msg.Recipient),
			logger.RetryCount(retryCount),
			logger.Error(sendErr),
		)
	} else {
		r.logger.LogAttrs(ctx, slog.LevelInfo, "retry failed, rescheduled",
			logger.MessageID(msg.ID),
			logger.RetryCount(retryCount),
			logger.Error(sendErr),
		)
	}
}
