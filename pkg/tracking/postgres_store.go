package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is the production implementation of the Store interface on
// top of a pgx connection pool. Status updates rely on a WHERE status=...
// guard so the compare-and-set contract holds without row locks.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed tracked message store.
// The schema is managed by goose migrations under internal/db/migrations.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const messageColumns = `
	id, category, recipient, sender, subject, html_body, text_body, status,
	provider_message_id, retry_count, max_retries, next_retry_at, error_message,
	sent_at, delivered_at, opened_at, clicked_at, bounced_at, bounce_reason,
	complaint_at, related_user_id, related_template_id, metadata, created_at, updated_at`

func (s *PostgresStore) CreateMessage(ctx context.Context, msg *TrackedMessage) error {
	if msg == nil {
		return ErrNilMessage
	}
	if msg.ID == uuid.Nil {
		return ErrMessageIDRequired
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	msg.UpdatedAt = msg.CreatedAt

	_, err := s.pool.Exec(ctx, `
		INSERT INTO tracked_messages (
			id, category, recipient, sender, subject, html_body, text_body, status,
			provider_message_id, retry_count, max_retries, next_retry_at, error_message,
			related_user_id, related_template_id, metadata, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		msg.ID, msg.Category, msg.Recipient, msg.Sender, msg.Subject, msg.HTMLBody,
		msg.TextBody, msg.Status, nullStr(msg.ProviderMessageID), msg.RetryCount,
		msg.MaxRetries, msg.NextRetryAt, nullStr(msg.ErrorMessage),
		nullStr(msg.RelatedUserID), nullStr(msg.RelatedTemplateID), msg.Metadata,
		msg.CreatedAt, msg.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateMessage
		}
		return fmt.Errorf("insert tracked message: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetMessage(ctx context.Context, id uuid.UUID) (*TrackedMessage, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+messageColumns+` FROM tracked_messages WHERE id = $1`, id)
	return scanMessage(row)
}

func (s *PostgresStore) GetByProviderMessageID(ctx context.Context, providerMessageID string) (*TrackedMessage, error) {
	if providerMessageID == "" {
		return nil, ErrMessageNotFound
	}
	row := s.pool.QueryRow(ctx,
		`SELECT `+messageColumns+` FROM tracked_messages WHERE provider_message_id = $1`,
		providerMessageID)
	return scanMessage(row)
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, update StatusUpdate) error {
	if from != to && !from.CanTransition(to) {
		return ErrInvalidTransition
	}

	// Every optional field uses COALESCE-against-parameter so a single
	// statement covers all transition flavors; the Clear flags override the
	// COALESCE with an explicit NULL.
	tag, err := s.pool.Exec(ctx, `
		UPDATE tracked_messages SET
			status = $3,
			provider_message_id = COALESCE($4, provider_message_id),
			error_message = CASE WHEN $5 THEN NULL ELSE COALESCE($6, error_message) END,
			retry_count = COALESCE($7, retry_count),
			next_retry_at = CASE WHEN $8 THEN NULL ELSE COALESCE($9, next_retry_at) END,
			sent_at = COALESCE($10, sent_at),
			delivered_at = COALESCE($11, delivered_at),
			opened_at = COALESCE($12, opened_at),
			clicked_at = COALESCE($13, clicked_at),
			bounced_at = COALESCE($14, bounced_at),
			bounce_reason = COALESCE($15, bounce_reason),
			complaint_at = COALESCE($16, complaint_at),
			updated_at = now()
		WHERE id = $1 AND status = $2`,
		id, from, to,
		update.ProviderMessageID,
		update.ClearErrorMessage, update.ErrorMessage,
		update.RetryCount,
		update.ClearNextRetryAt, update.NextRetryAt,
		update.SentAt, update.DeliveredAt, update.OpenedAt, update.ClickedAt,
		update.BouncedAt, update.BounceReason, update.ComplaintAt,
	)
	if err != nil {
		return fmt.Errorf("update tracked message status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing row from a lost CAS race.
		var exists bool
		if err := s.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM tracked_messages WHERE id = $1)`, id,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check tracked message existence: %w", err)
		}
		if !exists {
			return ErrMessageNotFound
		}
		return ErrStaleStatus
	}
	return nil
}

func (s *PostgresStore) SelectRetryable(ctx context.Context, now time.Time, limit int) ([]TrackedMessage, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM tracked_messages
		WHERE status = $1 AND retry_count < max_retries AND next_retry_at <= $2
		ORDER BY next_retry_at ASC
		LIMIT $3`,
		StatusFailed, now, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select retryable messages: %w", err)
	}
	defer rows.Close()

	var out []TrackedMessage
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *msg)
	}
	return out, rows.Err()
}

func (s *PostgresStore) AppendEvent(ctx context.Context, event *TrackingEvent) error {
	if event == nil {
		return ErrNilEvent
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO tracking_events (id, message_id, kind, occurred_at, client_ip, user_agent, url, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		event.ID, event.MessageID, event.Kind, event.OccurredAt,
		nullStr(event.ClientIP), nullStr(event.UserAgent), nullStr(event.URL),
		event.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("insert tracking event: %w", err)
	}
	return nil
}

func (s *PostgresStore) EventsForMessage(ctx context.Context, messageID uuid.UUID) ([]TrackingEvent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, message_id, kind, occurred_at,
			COALESCE(client_ip, ''), COALESCE(user_agent, ''), COALESCE(url, ''), created_at
		FROM tracking_events
		WHERE message_id = $1
		ORDER BY created_at ASC`,
		messageID,
	)
	if err != nil {
		return nil, fmt.Errorf("select tracking events: %w", err)
	}
	defer rows.Close()

	var out []TrackingEvent
	for rows.Next() {
		var ev TrackingEvent
		if err := rows.Scan(&ev.ID, &ev.MessageID, &ev.Kind, &ev.OccurredAt,
			&ev.ClientIP, &ev.UserAgent, &ev.URL, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tracking event: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Stats(ctx context.Context, from, to time.Time, category string) (*Stats, error) {
	stats := &Stats{}
	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(sent_at),
			COUNT(delivered_at),
			COUNT(opened_at),
			COUNT(clicked_at),
			COUNT(bounced_at),
			COUNT(complaint_at)
		FROM tracked_messages
		WHERE created_at >= $1 AND created_at < $2
			AND ($3 = '' OR category = $3)`,
		from, to, category,
	).Scan(&stats.Total, &stats.Sent, &stats.Delivered, &stats.Opened,
		&stats.Clicked, &stats.Bounced, &stats.Complaint)
	if err != nil {
		return nil, fmt.Errorf("aggregate tracked message stats: %w", err)
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*TrackedMessage, error) {
	var (
		msg               TrackedMessage
		providerMessageID *string
		errorMessage      *string
		bounceReason      *string
		relatedUserID     *string
		relatedTemplateID *string
	)

	err := row.Scan(
		&msg.ID, &msg.Category, &msg.Recipient, &msg.Sender, &msg.Subject,
		&msg.HTMLBody, &msg.TextBody, &msg.Status, &providerMessageID,
		&msg.RetryCount, &msg.MaxRetries, &msg.NextRetryAt, &errorMessage,
		&msg.SentAt, &msg.DeliveredAt, &msg.OpenedAt, &msg.ClickedAt,
		&msg.BouncedAt, &bounceReason, &msg.ComplaintAt, &relatedUserID,
		&relatedTemplateID, &msg.Metadata, &msg.CreatedAt, &msg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("scan tracked message: %w", err)
	}

	msg.ProviderMessageID = deref(providerMessageID)
	msg.ErrorMessage = deref(errorMessage)
	msg.BounceReason = deref(bounceReason)
	msg.RelatedUserID = deref(relatedUserID)
	msg.RelatedTemplateID = deref(relatedTemplateID)
	return &msg, nil
}

func nullStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return hasSQLState(err, "23505")
}

// isForeignKeyViolation reports whether err is a Postgres foreign key
// violation (SQLSTATE 23503).
func isForeignKeyViolation(err error) bool {
	return hasSQLState(err, "23503")
}

func hasSQLState(err error, code string) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == code
	}
	return false
}
