package tracking

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/pkg/email"
	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// DefaultMaxRetries bounds how many failed attempts a message gets before it
// is dead-lettered.
const DefaultMaxRetries = 3

// SendInput describes one tracked email send.
type SendInput struct {
	To                string
	Subject           string
	HTML              string
	Text              string
	Category          string
	RelatedUserID     string
	RelatedTemplateID string
	Metadata          map[string]string
	MaxRetries        int // 0 means DefaultMaxRetries
}

// Sender performs tracked email sends: the message row is created with status
// pending before the provider call, then advanced to sent or failed depending
// on the outcome. The pre-create-then-update ordering makes delivery auditable
// even for sends that fail immediately.
type Sender struct {
	store   Store
	mailer  email.EmailSender
	from    string
	backoff Backoff
	logger  *slog.Logger
}

// SenderOption configures a Sender.
type SenderOption func(*Sender)

// WithSenderLogger sets the logger for the Sender.
func WithSenderLogger(log *slog.Logger) SenderOption {
	return func(s *Sender) {
		s.logger = log
	}
}

// WithSenderBackoff overrides the retry backoff schedule recorded on failures.
func WithSenderBackoff(b Backoff) SenderOption {
	return func(s *Sender) {
		s.backoff = b
	}
}

// NewSender creates a tracked email sender. from is recorded on every message
// row as the sender identity.
func NewSender(store Store, mailer email.EmailSender, from string, opts ...SenderOption) *Sender {
	s := &Sender{
		store:   store,
		mailer:  mailer,
		from:    from,
		backoff: DefaultBackoff(),
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Send creates the tracked message row, attempts the provider call, and
// records the outcome. The returned message reflects the post-attempt state.
// A provider failure is not an error here - it is recorded on the row and
// left for the retry scheduler; only store failures propagate.
func (s *Sender) Send(ctx context.Context, input SendInput) (*TrackedMessage, error) {
	if strings.TrimSpace(input.To) == "" {
		return nil, fmt.Errorf("%w: recipient is required", ErrInvalidInput)
	}

	maxRetries := input.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	msg := &TrackedMessage{
		ID:                uuid.New(),
		Category:          input.Category,
		Recipient:         input.To,
		Sender:            s.from,
		Subject:           input.Subject,
		HTMLBody:          input.HTML,
		TextBody:          input.Text,
		Status:            StatusPending,
		MaxRetries:        maxRetries,
		RelatedUserID:     input.RelatedUserID,
		RelatedTemplateID: input.RelatedTemplateID,
		Metadata:          input.Metadata,
		CreatedAt:         time.Now(),
	}

	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to create tracked message: %w", err)
	}

	result, sendErr := s.mailer.SendEmail(ctx, email.SendEmailParams{
		SendTo:   input.To,
		Subject:  input.Subject,
		BodyHTML: input.HTML,
		BodyText: input.Text,
		Tag:      input.Category,
	})

	if sendErr != nil {
		retryCount := 1
		errMsg := sendErr.Error()
		update := StatusUpdate{
			ErrorMessage: &errMsg,
			RetryCount:   &retryCount,
		}
		exhausted := retryCount >= maxRetries
		if !exhausted {
			next := time.Now().Add(s.backoff.Delay(retryCount))
			update.NextRetryAt = &next
		}

		// A failed attempt always lands on failed first; dead-lettering is a
		// separate step so the row only moves along declared graph edges.
		if err := s.store.UpdateStatus(ctx, msg.ID, StatusPending, StatusFailed, update); err != nil {
			return nil, fmt.Errorf("failed to record send failure: %w", err)
		}

		if exhausted {
			if err := s.store.UpdateStatus(ctx, msg.ID, StatusFailed, StatusDeadLettered, StatusUpdate{}); err != nil {
				return nil, fmt.Errorf("failed to dead-letter message: %w", err)
			}
			s.logger.LogAttrs(ctx, slog.LevelWarn, "tracked send failed with no retry budget, dead-lettered",
				logger.MessageID(msg.ID),
				logger.Recipient(input.To),
				logger.Category(input.Category),
				logger.Error(sendErr),
			)
		} else {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "tracked send failed, scheduled for retry",
				logger.MessageID(msg.ID),
				logger.Recipient(input.To),
				logger.Category(input.Category),
				logger.Error(sendErr),
			)
		}

		return s.store.GetMessage(ctx, msg.ID)
	}

	now := time.Now()
	update := StatusUpdate{
		ProviderMessageID: &result.MessageID,
		SentAt:            &now,
	}
	if err := s.store.UpdateStatus(ctx, msg.ID, StatusPending, StatusSent, update); err != nil {
		return nil, fmt.Errorf("failed to record send success: %w", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelDebug, "tracked message sent",
		logger.MessageID(msg.ID),
		logger.ProviderMessageID(result.MessageID),
		logger.Category(input.Category),
	)

	return s.store.GetMessage(ctx, msg.ID)
}
