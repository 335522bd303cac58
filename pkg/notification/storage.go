package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Storage handles notification persistence and retrieval.
type Storage interface {
	// Create stores a new notification.
	Create(ctx context.Context, notif *Notification) error

	// Get retrieves a single notification scoped to its owner.
	Get(ctx context.Context, userID string, id uuid.UUID) (*Notification, error)

	// List returns notifications for a user, newest first.
	List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error)

	// MarkRead marks notification(s) as read.
	MarkRead(ctx context.Context, userID string, ids ...uuid.UUID) error

	// CountUnread returns the unread count for a user.
	CountUnread(ctx context.Context, userID string) (int, error)

	// SetAttempted records which channels a send attempt was made on.
	SetAttempted(ctx context.Context, id uuid.UUID, email, sms bool) error

	// DeleteExpired removes read notifications created before the cutoff and
	// returns how many were removed. This is the only deletion path.
	DeleteExpired(ctx context.Context, before time.Time) (int, error)
}

// ListOptions provides filtering and pagination for listing notifications.
type ListOptions struct {
	Limit      int        // Maximum number of notifications to return (0 = no limit)
	Offset     int        // Number of notifications to skip for pagination
	OnlyUnread bool       // When true, only return unread notifications
	Categories []Category // If set, only return notifications of these categories
	Since      *time.Time // If set, only return notifications created after this time
}
