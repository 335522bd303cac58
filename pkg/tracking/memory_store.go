package tracking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory implementation of the Store interface.
// Suitable for development and testing.
type MemoryStore struct {
	messages   map[uuid.UUID]TrackedMessage
	byProvider map[string]uuid.UUID
	events     []TrackingEvent
	mu         sync.RWMutex
}

// NewMemoryStore creates a new in-memory tracked message store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		messages:   make(map[uuid.UUID]TrackedMessage),
		byProvider: make(map[string]uuid.UUID),
	}
}

func (s *MemoryStore) CreateMessage(ctx context.Context, msg *TrackedMessage) error {
	if msg == nil {
		return ErrNilMessage
	}
	if msg.ID == uuid.Nil {
		return ErrMessageIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.messages[msg.ID]; exists {
		return ErrDuplicateMessage
	}

	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	msg.UpdatedAt = msg.CreatedAt

	s.messages[msg.ID] = *msg
	if msg.ProviderMessageID != "" {
		s.byProvider[msg.ProviderMessageID] = msg.ID
	}
	return nil
}

func (s *MemoryStore) GetMessage(ctx context.Context, id uuid.UUID) (*TrackedMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msg, ok := s.messages[id]
	if !ok {
		return nil, ErrMessageNotFound
	}
	// Return a copy to prevent external mutation of stored data
	out := msg
	return &out, nil
}

func (s *MemoryStore) GetByProviderMessageID(ctx context.Context, providerMessageID string) (*TrackedMessage, error) {
	if providerMessageID == "" {
		return nil, ErrMessageNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byProvider[providerMessageID]
	if !ok {
		return nil, ErrMessageNotFound
	}
	msg := s.messages[id]
	out := msg
	return &out, nil
}

func (s *MemoryStore) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, update StatusUpdate) error {
	if from != to && !from.CanTransition(to) {
		return ErrInvalidTransition
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.messages[id]
	if !ok {
		return ErrMessageNotFound
	}
	if msg.Status != from {
		return ErrStaleStatus
	}

	msg.Status = to
	applyUpdate(&msg, update)
	msg.UpdatedAt = time.Now()

	s.messages[id] = msg
	if msg.ProviderMessageID != "" {
		s.byProvider[msg.ProviderMessageID] = id
	}
	return nil
}

func applyUpdate(msg *TrackedMessage, update StatusUpdate) {
	if update.ProviderMessageID != nil {
		msg.ProviderMessageID = *update.ProviderMessageID
	}
	if update.ErrorMessage != nil {
		msg.ErrorMessage = *update.ErrorMessage
	}
	if update.ClearErrorMessage {
		msg.ErrorMessage = ""
	}
	if update.RetryCount != nil {
		msg.RetryCount = *update.RetryCount
	}
	if update.NextRetryAt != nil {
		msg.NextRetryAt = update.NextRetryAt
	}
	if update.ClearNextRetryAt {
		msg.NextRetryAt = nil
	}
	if update.SentAt != nil {
		msg.SentAt = update.SentAt
	}
	if update.DeliveredAt != nil {
		msg.DeliveredAt = update.DeliveredAt
	}
	if update.OpenedAt != nil {
		msg.OpenedAt = update.OpenedAt
	}
	if update.ClickedAt != nil {
		msg.ClickedAt = update.ClickedAt
	}
	if update.BouncedAt != nil {
		msg.BouncedAt = update.BouncedAt
	}
	if update.BounceReason != nil {
		msg.BounceReason = *update.BounceReason
	}
	if update.ComplaintAt != nil {
		msg.ComplaintAt = update.ComplaintAt
	}
}

func (s *MemoryStore) SelectRetryable(ctx context.Context, now time.Time, limit int) ([]TrackedMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []TrackedMessage
	for _, msg := range s.messages {
		if msg.Status != StatusFailed {
			continue
		}
		if msg.RetryCount >= msg.MaxRetries {
			continue
		}
		if msg.NextRetryAt == nil || msg.NextRetryAt.After(now) {
			continue
		}
		out = append(out, msg)
	}

	// Oldest scheduled first so starved messages are not skipped repeatedly
	// when the batch is full.
	sort.Slice(out, func(i, j int) bool {
		return out[i].NextRetryAt.Before(*out[j].NextRetryAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) AppendEvent(ctx context.Context, event *TrackingEvent) error {
	if event == nil {
		return ErrNilEvent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.messages[event.MessageID]; !ok {
		return ErrMessageNotFound
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	s.events = append(s.events, *event)
	return nil
}

func (s *MemoryStore) EventsForMessage(ctx context.Context, messageID uuid.UUID) ([]TrackingEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []TrackingEvent
	for _, ev := range s.events {
		if ev.MessageID == messageID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (s *MemoryStore) Stats(ctx context.Context, from, to time.Time, category string) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{}
	for _, msg := range s.messages {
		if msg.CreatedAt.Before(from) || !msg.CreatedAt.Before(to) {
			continue
		}
		if category != "" && msg.Category != category {
			continue
		}
		stats.Total++
		if msg.SentAt != nil {
			stats.Sent++
		}
		if msg.DeliveredAt != nil {
			stats.Delivered++
		}
		if msg.OpenedAt != nil {
			stats.Opened++
		}
		if msg.ClickedAt != nil {
			stats.Clicked++
		}
		if msg.BouncedAt != nil {
			stats.Bounced++
		}
		if msg.ComplaintAt != nil {
			stats.Complaint++
		}
	}
	return stats, nil
}
