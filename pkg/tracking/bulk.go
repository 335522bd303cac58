package tracking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/async"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/template"
)

// DefaultBulkBatchSize is how many recipients one batch fans out to.
const DefaultBulkBatchSize = 50

// DefaultBulkBatchDelay is the pause between batches, respecting provider
// throughput limits.
const DefaultBulkBatchDelay = 2 * time.Second

// BulkRecipient is one destination in a bulk send. Vars are merged into the
// template per recipient.
type BulkRecipient struct {
	Address string
	UserID  string
	Vars    map[string]string
}

// BulkInput describes a campaign-style send. When TemplateName is set the
// subject and bodies are resolved per recipient through the template
// resolver; otherwise the literal Subject/HTML/Text are personalized with
// each recipient's Vars.
type BulkInput struct {
	Recipients   []BulkRecipient
	TemplateName string
	Subject      string
	HTML         string
	Text         string
	Category     string
	BatchSize    int           // 0 means DefaultBulkBatchSize
	BatchDelay   time.Duration // 0 means DefaultBulkBatchDelay
}

// BulkResult is the per-recipient outcome, in input order.
type BulkResult struct {
	Address string
	Message *TrackedMessage
	Err     error
}

// BulkSender batches large recipient lists through the tracked email sender.
// Within a batch sends fan out concurrently; batches themselves run
// sequentially with a pacing delay in between.
type BulkSender struct {
	sender   *Sender
	resolver *template.Resolver
	logger   *slog.Logger
}

// BulkSenderOption configures a BulkSender.
type BulkSenderOption func(*BulkSender)

// WithBulkLogger sets the logger for the BulkSender.
func WithBulkLogger(log *slog.Logger) BulkSenderOption {
	return func(b *BulkSender) {
		b.logger = log
	}
}

// NewBulkSender creates a bulk sender on top of the tracked sender.
// resolver may be nil when callers always pass literal content.
func NewBulkSender(sender *Sender, resolver *template.Resolver, opts ...BulkSenderOption) *BulkSender {
	b := &BulkSender{
		sender:   sender,
		resolver: resolver,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// SendBulk sends to every recipient and returns per-recipient results in
// input order. One recipient's failure never aborts the batch; a non-nil
// error is returned only when the whole operation cannot proceed (bad input
// or context cancellation between batches).
func (b *BulkSender) SendBulk(ctx context.Context, input BulkInput) ([]BulkResult, error) {
	if len(input.Recipients) == 0 {
		return nil, fmt.Errorf("%w: no recipients", ErrInvalidInput)
	}
	if input.TemplateName == "" && input.Subject == "" {
		return nil, fmt.Errorf("%w: template name or subject is required", ErrInvalidInput)
	}
	if input.TemplateName != "" && b.resolver == nil {
		return nil, fmt.Errorf("%w: no template resolver configured", ErrInvalidInput)
	}

	batchSize := input.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBulkBatchSize
	}
	batchDelay := input.BatchDelay
	if batchDelay <= 0 {
		batchDelay = DefaultBulkBatchDelay
	}

	results := make([]BulkResult, 0, len(input.Recipients))

	for start := 0; start < len(input.Recipients); start += batchSize {
		if start > 0 {
			// Inter-batch pacing keeps outbound throughput under provider
			// limits; cancellation between batches stops the campaign.
			select {
			case <-ctx.Done():
				return results, ctx.Err()
			case <-time.After(batchDelay):
			}
		}

		end := min(start+batchSize, len(input.Recipients))
		batch := input.Recipients[start:end]

		futures := make([]*async.Future[BulkResult], len(batch))
		for i, recipient := range batch {
			futures[i] = async.Async(ctx, recipient, func(ctx context.Context, r BulkRecipient) (BulkResult, error) {
				return b.sendOne(ctx, input, r), nil
			})
		}

		// WaitAll preserves order; per-recipient errors live inside each
		// BulkResult, so the future error is always nil here.
		batchResults, _ := async.WaitAll(futures...)
		results = append(results, batchResults...)

		b.logger.LogAttrs(ctx, slog.LevelDebug, "bulk batch dispatched",
			slog.Int("batch_start", start),
			slog.Int("batch_size", len(batch)),
			logger.Category(input.Category),
		)
	}

	return results, nil
}

func (b *BulkSender) sendOne(ctx context.Context, input BulkInput, recipient BulkRecipient) BulkResult {
	subject, html, text, err := b.render(ctx, input, recipient)
	if err != nil {
		return BulkResult{Address: recipient.Address, Err: err}
	}

	msg, err := b.sender.Send(ctx, SendInput{
		To:                recipient.Address,
		Subject:           subject,
		HTML:              html,
		Text:              text,
		Category:          input.Category,
		RelatedUserID:     recipient.UserID,
		RelatedTemplateID: input.TemplateName,
	})
	if err != nil {
		return BulkResult{Address: recipient.Address, Err: err}
	}
	return BulkResult{Address: recipient.Address, Message: msg}
}

// render produces per-recipient content, either through the template resolver
// or by personalizing the literal parts with the recipient's variables.
func (b *BulkSender) render(ctx context.Context, input BulkInput, recipient BulkRecipient) (subject, html, text string, err error) {
	if input.TemplateName != "" {
		rendered, rerr := b.resolver.Resolve(ctx, input.TemplateName, recipient.Vars)
		if rerr != nil {
			return "", "", "", rerr
		}
		return rendered.Subject, rendered.HTML, rendered.Text, nil
	}

	if len(recipient.Vars) == 0 {
		return input.Subject, input.HTML, input.Text, nil
	}

	rendered, rerr := template.Render(template.Template{
		Name:    "bulk_inline",
		Subject: input.Subject,
		HTML:    input.HTML,
		Text:    input.Text,
	}, recipient.Vars)
	if rerr != nil {
		return "", "", "", rerr
	}
	return rendered.Subject, rendered.HTML, rendered.Text, nil
}
