package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vytalle/storefront/internal/core/ports"
)

const defaultNamespace = "storefront:session"

// SessionStore keeps session records in Redis. Every key is written with a
// TTL so abandoned sessions age out even if nobody reads them again.
// Key format: <namespace>:<scope>:<key>
type SessionStore struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewSessionStore wraps client. An empty namespace uses the default; ttl <= 0
// stores keys without expiry.
func NewSessionStore(client redis.Cmdable, namespace string, ttl time.Duration) *SessionStore {
	if namespace == "" {
		namespace = defaultNamespace
	}
	return &SessionStore{client: client, prefix: namespace + ":", ttl: ttl}
}

// Scope returns a store whose keys live under id.
func (s *SessionStore) Scope(id string) ports.SessionStore {
	return &SessionStore{client: s.client, prefix: s.prefix + id + ":", ttl: s.ttl}
}

func (s *SessionStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ports.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("session get: %w", err)
	}
	return v, nil
}

func (s *SessionStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("session set: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}
