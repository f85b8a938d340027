// Package memory holds process-local implementations of the core's
// collaborator ports: a key-value session store, the seeded demo accounts
// and the seeded product catalog.
package memory

import (
	"context"
	"sync"

	"github.com/vytalle/storefront/internal/core/ports"
)

// SessionStore is a mutex-guarded map. The zero value is not usable; call
// NewSessionStore.
type SessionStore struct {
	mu     sync.RWMutex
	values map[string]string
	prefix string
}

func NewSessionStore() *SessionStore {
	return &SessionStore{values: make(map[string]string)}
}

// Scope returns a view of the same map whose keys are namespaced by id, so
// each caller gets its own session slot.
func (s *SessionStore) Scope(id string) ports.SessionStore {
	return &scopedStore{parent: s, prefix: id + ":"}
}

func (s *SessionStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return "", ports.ErrKeyNotFound
	}
	return v, nil
}

func (s *SessionStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
	return nil
}

type scopedStore struct {
	parent *SessionStore
	prefix string
}

func (s *scopedStore) Get(ctx context.Context, key string) (string, error) {
	return s.parent.Get(ctx, s.prefix+key)
}

func (s *scopedStore) Set(ctx context.Context, key, value string) error {
	return s.parent.Set(ctx, s.prefix+key, value)
}

func (s *scopedStore) Delete(ctx context.Context, key string) error {
	return s.parent.Delete(ctx, s.prefix+key)
}
