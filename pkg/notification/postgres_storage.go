package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStorage persists notifications in PostgreSQL via pgx. The payload
// tagged union is stored as its JSON envelope in a JSONB column.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage creates a PostgreSQL-backed notification storage.
// The pool is owned by the caller.
func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{pool: pool}
}

const notificationColumns = `id, user_id, category, title, message, payload,
	email_attempted, sms_attempted, read, read_at, created_at`

func (s *PostgresStorage) Create(ctx context.Context, notif *Notification) error {
	if notif == nil {
		return ErrNilNotification
	}
	if notif.ID == uuid.Nil {
		return ErrNotificationIDRequired
	}
	if notif.UserID == "" {
		return ErrUserIDRequired
	}
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = time.Now()
	}

	payload, err := MarshalPayload(notif.Payload)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		notif.ID, notif.UserID, string(notif.Category), notif.Title, notif.Message,
		payload, notif.EmailAttempted, notif.SMSAttempted, notif.Read, notif.ReadAt,
		notif.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *PostgresStorage) Get(ctx context.Context, userID string, id uuid.UUID) (*Notification, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	notif, err := scanNotification(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return notif, nil
}

func (s *PostgresStorage) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`)
	args := []any{userID}

	if opts.OnlyUnread {
		sb.WriteString(" AND NOT read")
	}
	if len(opts.Categories) > 0 {
		cats := make([]string, len(opts.Categories))
		for i, c := range opts.Categories {
			cats[i] = string(c)
		}
		args = append(args, cats)
		fmt.Fprintf(&sb, " AND category = ANY($%d)", len(args))
	}
	if opts.Since != nil {
		args = append(args, *opts.Since)
		fmt.Fprintf(&sb, " AND created_at >= $%d", len(args))
	}

	sb.WriteString(" ORDER BY created_at DESC")
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []Notification{}
	for rows.Next() {
		notif, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, *notif)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return notifications, nil
}

func (s *PostgresStorage) MarkRead(ctx context.Context, userID string, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE notifications
		SET read = TRUE, read_at = now()
		WHERE user_id = $1 AND id = ANY($2) AND NOT read`,
		userID, ids,
	)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

func (s *PostgresStorage) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT count(*) FROM notifications WHERE user_id = $1 AND NOT read`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

func (s *PostgresStorage) SetAttempted(ctx context.Context, id uuid.UUID, email, sms bool) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE notifications
		SET email_attempted = $2, sms_attempted = $3
		WHERE id = $1`,
		id, email, sms,
	)
	if err != nil {
		return fmt.Errorf("set attempted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *PostgresStorage) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM notifications WHERE read AND created_at < $1`,
		before,
	)
	if err != nil {
		return 0, fmt.Errorf("delete expired: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanNotification(row pgx.Row) (*Notification, error) {
	var (
		notif    Notification
		category string
		payload  []byte
	)
	if err := row.Scan(
		&notif.ID, &notif.UserID, &category, &notif.Title, &notif.Message,
		&payload, &notif.EmailAttempted, &notif.SMSAttempted, &notif.Read,
		&notif.ReadAt, &notif.CreatedAt,
	); err != nil {
		return nil, err
	}
	notif.Category = Category(category)

	p, err := UnmarshalPayload(payload)
	if err != nil {
		return nil, err
	}
	notif.Payload = p
	return &notif, nil
}
