package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStorage persists notifications in Redis. Each notification lives in its
// own key as JSON; per-user indexes are sorted sets scored by creation time so
// newest-first listing is a reverse range.
type RedisStorage struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStorage creates a Redis-backed notification storage.
func NewRedisStorage(client redis.UniversalClient, opts ...RedisStorageOption) *RedisStorage {
	s := &RedisStorage{
		client: client,
		prefix: "notifications",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RedisStorageOption configures a RedisStorage.
type RedisStorageOption func(*RedisStorage)

// WithKeyPrefix overrides the default key prefix. Useful when several
// applications share one Redis database.
func WithKeyPrefix(prefix string) RedisStorageOption {
	return func(s *RedisStorage) { s.prefix = prefix }
}

// redisNotification is the stored shape. Payload is kept in its envelope form
// so the tagged union survives serialization.
type redisNotification struct {
	ID             uuid.UUID       `json:"id"`
	UserID         string          `json:"user_id"`
	Category       Category        `json:"category"`
	Title          string          `json:"title"`
	Message        string          `json:"message"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	EmailAttempted bool            `json:"email_attempted"`
	SMSAttempted   bool            `json:"sms_attempted"`
	Read           bool            `json:"read"`
	ReadAt         *time.Time      `json:"read_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (s *RedisStorage) itemKey(id uuid.UUID) string {
	return fmt.Sprintf("%s:item:%s", s.prefix, id)
}

func (s *RedisStorage) userKey(userID string) string {
	return fmt.Sprintf("%s:user:%s", s.prefix, userID)
}

func (s *RedisStorage) unreadKey(userID string) string {
	return fmt.Sprintf("%s:unread:%s", s.prefix, userID)
}

func (s *RedisStorage) encode(n *Notification) ([]byte, error) {
	payload, err := MarshalPayload(n.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(redisNotification{
		ID:             n.ID,
		UserID:         n.UserID,
		Category:       n.Category,
		Title:          n.Title,
		Message:        n.Message,
		Payload:        payload,
		EmailAttempted: n.EmailAttempted,
		SMSAttempted:   n.SMSAttempted,
		Read:           n.Read,
		ReadAt:         n.ReadAt,
		CreatedAt:      n.CreatedAt,
	})
}

func (s *RedisStorage) decode(raw []byte) (*Notification, error) {
	var rn redisNotification
	if err := json.Unmarshal(raw, &rn); err != nil {
		return nil, fmt.Errorf("decode notification: %w", err)
	}
	payload, err := UnmarshalPayload(rn.Payload)
	if err != nil {
		return nil, err
	}
	return &Notification{
		ID:             rn.ID,
		UserID:         rn.UserID,
		Category:       rn.Category,
		Title:          rn.Title,
		Message:        rn.Message,
		Payload:        payload,
		EmailAttempted: rn.EmailAttempted,
		SMSAttempted:   rn.SMSAttempted,
		Read:           rn.Read,
		ReadAt:         rn.ReadAt,
		CreatedAt:      rn.CreatedAt,
	}, nil
}

func (s *RedisStorage) Create(ctx context.Context, notif *Notification) error {
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

	raw, err := s.encode(notif)
	if err != nil {
		return err
	}

	score := float64(notif.CreatedAt.UnixMilli())
	member := notif.ID.String()

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.itemKey(notif.ID), raw, 0)
	pipe.ZAdd(ctx, s.userKey(notif.UserID), redis.Z{Score: score, Member: member})
	if !notif.Read {
		pipe.ZAdd(ctx, s.unreadKey(notif.UserID), redis.Z{Score: score, Member: member})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	return nil
}

func (s *RedisStorage) Get(ctx context.Context, userID string, id uuid.UUID) (*Notification, error) {
	raw, err := s.client.Get(ctx, s.itemKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}

	notif, err := s.decode(raw)
	if err != nil {
		return nil, err
	}
	if notif.UserID != userID {
		return nil, ErrNotificationNotFound
	}
	return notif, nil
}

func (s *RedisStorage) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	indexKey := s.userKey(userID)
	if opts.OnlyUnread {
		indexKey = s.unreadKey(userID)
	}

	// Category/Since filtering happens after fetch, so pagination over the
	// index alone would undercount. Fetch everything and slice in memory;
	// per-user feeds are small by construction (expired rows are purged).
	ids, err := s.client.ZRevRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	if len(ids) == 0 {
		return []Notification{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = fmt.Sprintf("%s:item:%s", s.prefix, id)
	}
	rows, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch notifications: %w", err)
	}

	var filtered []Notification
	for _, row := range rows {
		str, ok := row.(string)
		if !ok {
			continue // index entry without a body, skip
		}
		notif, err := s.decode([]byte(str))
		if err != nil {
			return nil, err
		}
		if len(opts.Categories) > 0 && !containsCategory(opts.Categories, notif.Category) {
			continue
		}
		if opts.Since != nil && notif.CreatedAt.Before(*opts.Since) {
			continue
		}
		filtered = append(filtered, *notif)
	}

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

func containsCategory(cats []Category, c Category) bool {
	for _, cat := range cats {
		if cat == c {
			return true
		}
	}
	return false
}

func (s *RedisStorage) MarkRead(ctx context.Context, userID string, ids ...uuid.UUID) error {
	for _, id := range ids {
		notif, err := s.Get(ctx, userID, id)
		if errors.Is(err, ErrNotificationNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if notif.Read {
			continue
		}

		notif.MarkAsRead()
		raw, err := s.encode(notif)
		if err != nil {
			return err
		}

		pipe := s.client.TxPipeline()
		pipe.Set(ctx, s.itemKey(id), raw, 0)
		pipe.ZRem(ctx, s.unreadKey(userID), id.String())
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("mark read: %w", err)
		}
	}
	return nil
}

func (s *RedisStorage) CountUnread(ctx context.Context, userID string) (int, error) {
	n, err := s.client.ZCard(ctx, s.unreadKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return int(n), nil
}

func (s *RedisStorage) SetAttempted(ctx context.Context, id uuid.UUID, email, sms bool) error {
	raw, err := s.client.Get(ctx, s.itemKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotificationNotFound
	}
	if err != nil {
		return fmt.Errorf("get notification: %w", err)
	}

	notif, err := s.decode(raw)
	if err != nil {
		return err
	}
	notif.EmailAttempted = email
	notif.SMSAttempted = sms

	updated, err := s.encode(notif)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.itemKey(id), updated, 0).Err(); err != nil {
		return fmt.Errorf("update notification: %w", err)
	}
	return nil
}

func (s *RedisStorage) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	deleted := 0
	cutoff := fmt.Sprintf("(%d", before.UnixMilli())

	var cursor uint64
	pattern := s.prefix + ":user:*"
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("scan user indexes: %w", err)
		}

		for _, userKey := range keys {
			ids, err := s.client.ZRangeByScore(ctx, userKey, &redis.ZRangeBy{
				Min: "-inf",
				Max: cutoff,
			}).Result()
			if err != nil {
				return deleted, fmt.Errorf("range expired: %w", err)
			}

			for _, idStr := range ids {
				id, err := uuid.Parse(idStr)
				if err != nil {
					continue
				}
				raw, err := s.client.Get(ctx, s.itemKey(id)).Bytes()
				if errors.Is(err, redis.Nil) {
					// Dangling index entry, clean it up.
					_ = s.client.ZRem(ctx, userKey, idStr).Err()
					continue
				}
				if err != nil {
					return deleted, fmt.Errorf("get notification: %w", err)
				}
				notif, err := s.decode(raw)
				if err != nil {
					return deleted, err
				}
				if !notif.Read {
					continue // unread rows survive cleanup
				}

				pipe := s.client.TxPipeline()
				pipe.Del(ctx, s.itemKey(id))
				pipe.ZRem(ctx, userKey, idStr)
				pipe.ZRem(ctx, s.unreadKey(notif.UserID), idStr)
				if _, err := pipe.Exec(ctx); err != nil {
					return deleted, fmt.Errorf("delete expired: %w", err)
				}
				deleted++
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}
	return deleted, nil
}
