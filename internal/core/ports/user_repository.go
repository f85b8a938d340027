package ports

import (
	"context"

	"github.com/vytalle/storefront/internal/core/domain"
)

// UserRepository looks up provisioned accounts. Provisioning itself happens
// elsewhere; the core only reads.
type UserRepository interface {
	// FindActiveByEmail returns domain.ErrUserNotFound when no active user
	// has the given email.
	FindActiveByEmail(ctx context.Context, email string) (*domain.User, error)
}

// CredentialStore verifies passwords keyed by email.
type CredentialStore interface {
	// CheckPassword reports whether password matches the stored credential.
	// An unknown email is a mismatch, not an error.
	CheckPassword(ctx context.Context, email, password string) (bool, error)
}
