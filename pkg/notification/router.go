package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/pkg/async"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/sms"
	"github.com/dmitrymomot/notifykit/pkg/template"
	"github.com/dmitrymomot/notifykit/pkg/tracking"
)

// Router is the entry point for business events. It persists the notification
// record, decides channels from user preferences, and invokes the dispatchers.
// Delivery is best-effort: the persisted row always succeeds even when every
// channel fails.
type Router struct {
	storage   Storage
	directory UserDirectory
	resolver  *template.Resolver
	emails    *tracking.Sender
	texter    sms.SMSSender
	logger    *slog.Logger
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithRouterLogger sets the logger for the Router.
func WithRouterLogger(log *slog.Logger) RouterOption {
	return func(r *Router) {
		r.logger = log
	}
}

// WithSMSSender enables the SMS channel. Without it every SMS qualification
// is skipped, which is how single-channel deployments run.
func WithSMSSender(texter sms.SMSSender) RouterOption {
	return func(r *Router) {
		r.texter = texter
	}
}

// NewRouter creates a notification router.
func NewRouter(
	storage Storage,
	directory UserDirectory,
	resolver *template.Resolver,
	emails *tracking.Sender,
	opts ...RouterOption,
) *Router {
	r := &Router{
		storage:   storage,
		directory: directory,
		resolver:  resolver,
		emails:    emails,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Create records a business event for a user and attempts delivery on every
// qualifying channel. The notification row is persisted before any dispatch,
// so the returned record exists even when both channels fail; the attempted
// flags reflect whether a send was tried, not whether it was delivered.
//
// A missing user is the one fatal case: without a user record there is nothing
// to route to. Per-channel failures are logged and swallowed.
func (r *Router) Create(ctx context.Context, userID string, category Category, title, message string, payload Payload) (*Notification, error) {
	if !category.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	if err := ValidatePayload(category, payload); err != nil {
		return nil, err
	}
	if title == "" {
		return nil, ErrTitleRequired
	}

	// Persist first: the row records that the event happened, independent of
	// whether any channel delivery works out.
	notif := &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Category:  category,
		Title:     title,
		Message:   message,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
	if err := r.storage.Create(ctx, notif); err != nil {
		return nil, fmt.Errorf("failed to store notification: %w", err)
	}

	user, err := r.directory.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user %q: %w", userID, err)
	}

	emailQualifies := (user.Preferences.EmailAllowed(category) || category.AlwaysEmail()) && user.Email != ""
	smsQualifies := r.texter != nil && user.Preferences.SMSAllowed(category) && user.Phone != ""

	// Channel dispatches are independent, so they run concurrently. Failures
	// stay inside their channel: the email outcome lives on the tracked
	// message row, the SMS outcome only in logs.
	var emailFuture, smsFuture *async.Future[struct{}]
	if emailQualifies {
		emailFuture = async.Async(ctx, notif, func(ctx context.Context, n *Notification) (struct{}, error) {
			return struct{}{}, r.dispatchEmail(ctx, user, n)
		})
	}
	if smsQualifies {
		smsFuture = async.Async(ctx, notif, func(ctx context.Context, n *Notification) (struct{}, error) {
			return struct{}{}, r.dispatchSMS(ctx, user, n)
		})
	}

	if emailFuture != nil {
		if _, err := emailFuture.Await(); err != nil {
			r.logger.LogAttrs(ctx, slog.LevelWarn, "email dispatch failed",
				logger.UserID(userID),
				logger.Category(string(category)),
				logger.Error(err),
			)
		}
	}
	if smsFuture != nil {
		if _, err := smsFuture.Await(); err != nil {
			r.logger.LogAttrs(ctx, slog.LevelWarn, "sms dispatch failed",
				logger.UserID(userID),
				logger.Category(string(category)),
				logger.Error(err),
			)
		}
	}

	notif.EmailAttempted = emailQualifies
	notif.SMSAttempted = smsQualifies
	if err := r.storage.SetAttempted(ctx, notif.ID, emailQualifies, smsQualifies); err != nil {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "failed to record attempted channels",
			logger.UserID(userID),
			logger.Error(err),
		)
	}

	return notif, nil
}

// dispatchEmail resolves the category template and performs a tracked send.
// Provider failures do not surface here - the tracked message row carries
// them; only template and store errors come back.
func (r *Router) dispatchEmail(ctx context.Context, user *User, notif *Notification) error {
	rendered, err := r.resolver.Resolve(ctx, notif.Category.TemplateName(), r.templateVars(user, notif))
	if err != nil {
		return fmt.Errorf("resolve template for %q: %w", notif.Category, err)
	}

	_, err = r.emails.Send(ctx, tracking.SendInput{
		To:            user.Email,
		Subject:       rendered.Subject,
		HTML:          rendered.HTML,
		Text:          rendered.Text,
		Category:      string(notif.Category),
		RelatedUserID: user.ID,
		Metadata:      map[string]string{"notification_id": notif.ID.String()},
	})
	if err != nil {
		return fmt.Errorf("tracked send: %w", err)
	}
	return nil
}

// dispatchSMS sends a short form of the notification. SMS is fire-and-forget:
// no tracked message row, the provider result is only logged.
func (r *Router) dispatchSMS(ctx context.Context, user *User, notif *Notification) error {
	body := notif.Title
	if notif.Message != "" {
		body += ": " + notif.Message
	}

	result, err := r.texter.SendSMS(ctx, sms.SendSMSParams{
		SendTo: user.Phone,
		Body:   body,
	})
	if err != nil {
		return err
	}

	r.logger.LogAttrs(ctx, slog.LevelDebug, "sms sent",
		logger.UserID(user.ID),
		logger.Category(string(notif.Category)),
		logger.ProviderMessageID(result.MessageID),
	)
	return nil
}

// templateVars merges payload variables with the fields every template can use.
func (r *Router) templateVars(user *User, notif *Notification) map[string]string {
	vars := map[string]string{
		"firstName": user.FirstName,
		"title":     notif.Title,
		"message":   notif.Message,
	}
	if notif.Payload != nil {
		for k, v := range notif.Payload.Vars() {
			vars[k] = v
		}
	}
	return vars
}

// Get returns a single notification scoped to its owner.
func (r *Router) Get(ctx context.Context, userID string, id uuid.UUID) (*Notification, error) {
	return r.storage.Get(ctx, userID, id)
}

// List returns notifications for a user, newest first.
func (r *Router) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	return r.storage.List(ctx, userID, opts)
}

// MarkRead marks the given notifications as read.
func (r *Router) MarkRead(ctx context.Context, userID string, ids ...uuid.UUID) error {
	return r.storage.MarkRead(ctx, userID, ids...)
}

// MarkAllRead marks every unread notification for the user as read.
func (r *Router) MarkAllRead(ctx context.Context, userID string) error {
	unread, err := r.storage.List(ctx, userID, ListOptions{OnlyUnread: true})
	if err != nil {
		return err
	}
	ids := make([]uuid.UUID, len(unread))
	for i, n := range unread {
		ids[i] = n.ID
	}
	if len(ids) == 0 {
		return nil
	}
	return r.storage.MarkRead(ctx, userID, ids...)
}

// CountUnread returns the unread count for a user.
func (r *Router) CountUnread(ctx context.Context, userID string) (int, error) {
	return r.storage.CountUnread(ctx, userID)
}

// RetentionPeriod is how long read notifications are kept before cleanup.
const RetentionPeriod = 90 * 24 * time.Hour

// CleanupExpired deletes read notifications older than RetentionPeriod.
// Intended to run from a periodic job.
func (r *Router) CleanupExpired(ctx context.Context) (int, error) {
	deleted, err := r.storage.DeleteExpired(ctx, time.Now().Add(-RetentionPeriod))
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		r.logger.LogAttrs(ctx, slog.LevelInfo, "expired notifications removed",
			slog.Int("count", deleted),
		)
	}
	return deleted, nil
}
