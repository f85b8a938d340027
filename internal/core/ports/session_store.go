package ports

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by SessionStore.Get for a missing key.
var ErrKeyNotFound = errors.New("key not found")

// SessionStore is the minimal durable key-value store sessions are persisted
// in. Implementations must be safe for concurrent use.
type SessionStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Delete is idempotent: deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// SessionScoper hands out per-caller views of one backing store.
type SessionScoper interface {
	Scope(id string) SessionStore
}
