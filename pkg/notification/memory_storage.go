package notification

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage is an in-memory implementation of the Storage interface.
// Suitable for development and testing.
type MemoryStorage struct {
	notifications map[string][]Notification // userID -> notifications
	mu            sync.RWMutex
}

// NewMemoryStorage creates a new in-memory notification storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		notifications: make(map[string][]Notification),
	}
}

func (s *MemoryStorage) Create(ctx context.Context, notif *Notification) error {
	if notif == nil {
		return ErrNilNotification
	}
	if notif.ID == uuid.Nil {
		return ErrNotificationIDRequired
	}
	if notif.UserID == "" {
		return ErrUserIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = time.Now()
	}

	s.notifications[notif.UserID] = append(s.notifications[notif.UserID], *notif)
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, userID string, id uuid.UUID) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.notifications[userID] {
		if n.ID == id {
			// Return a copy to prevent external mutation of stored data
			out := n
			return &out, nil
		}
	}
	return nil, ErrNotificationNotFound
}

func (s *MemoryStorage) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []Notification
	for _, n := range s.notifications[userID] {
		if opts.OnlyUnread && n.Read {
			continue
		}
		if len(opts.Categories) > 0 && !slices.Contains(opts.Categories, n.Category) {
			continue
		}
		if opts.Since != nil && n.CreatedAt.Before(*opts.Since) {
			continue
		}
		filtered = append(filtered, n)
	}

	// Newest first
	slices.SortFunc(filtered, func(a, b Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	start := opts.Offset
	if start > len(filtered) {
		return []Notification{}, nil
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], nil
}

func (s *MemoryStorage) MarkRead(ctx context.Context, userID string, ids ...uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idSet := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}

	notifications := s.notifications[userID]
	for i := range notifications {
		if idSet[notifications[i].ID] && !notifications[i].Read {
			notifications[i].MarkAsRead()
		}
	}
	return nil
}

func (s *MemoryStorage) CountUnread(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notifications[userID] {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStorage) SetAttempted(ctx context.Context, id uuid.UUID, email, sms bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for userID, notifications := range s.notifications {
		for i := range notifications {
			if notifications[i].ID == id {
				notifications[i].EmailAttempted = email
				notifications[i].SMSAttempted = sms
				s.notifications[userID] = notifications
				return nil
			}
		}
	}
	return ErrNotificationNotFound
}

func (s *MemoryStorage) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for userID, notifications := range s.notifications {
		var kept []Notification
		for _, n := range notifications {
			if n.Read && n.CreatedAt.Before(before) {
				deleted++
				continue
			}
			kept = append(kept, n)
		}
		s.notifications[userID] = kept
	}
	return deleted, nil
}
