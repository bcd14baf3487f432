package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zhangir128/UAV/internal/core/domain"
	"github.com/zhangir128/UAV/internal/core/ports"
)

// Key format: session:<session_id>, a hash with token, role and display_name.
const keyPrefix = "session:"

const (
	fieldToken       = "token"
	fieldRole        = "role"
	fieldDisplayName = "display_name"
)

// SessionStore keeps session records in Redis hashes that expire after ttl of
// inactivity. Every Load slides the expiry forward.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore wraps client. A non-positive ttl disables expiry.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

// Load returns the record stored for id.
func (s *SessionStore) Load(ctx context.Context, id string) (ports.SessionRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	vals, err := s.client.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return ports.SessionRecord{}, fmt.Errorf("session load: %w", err)
	}
	if len(vals) == 0 {
		return ports.SessionRecord{}, domain.ErrSessionNotFound
	}
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, s.key(id), s.ttl).Err(); err != nil {
			return ports.SessionRecord{}, fmt.Errorf("session touch: %w", err)
		}
	}
	return ports.SessionRecord{
		Token:       vals[fieldToken],
		Role:        vals[fieldRole],
		DisplayName: vals[fieldDisplayName],
	}, nil
}

// Save replaces the record for id in one transaction.
func (s *SessionStore) Save(ctx context.Context, id string, rec ports.SessionRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	key := s.key(id)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key,
			fieldToken, rec.Token,
			fieldRole, rec.Role,
			fieldDisplayName, rec.DisplayName,
		)
		if s.ttl > 0 {
			p.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}

// Delete removes the record for id. Deleting a missing record is not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *SessionStore) key(id string) string {
	return keyPrefix + id
}
