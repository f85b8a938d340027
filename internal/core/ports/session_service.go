package ports

import (
	"context"

	"github.com/vytalle/storefront/internal/core/domain"
)

// SessionReader answers "who is calling". It never fails: a missing,
// malformed or expired session reads as nil.
type SessionReader interface {
	CurrentUser(ctx context.Context) *domain.User
}

// SessionService is the full session authority surface used by transport.
type SessionService interface {
	SessionReader
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	Logout(ctx context.Context) error
	CurrentSession(ctx context.Context) *domain.Session
	IsAdmin(ctx context.Context) bool
	IsVendor(ctx context.Context) bool
	UserCommission(ctx context.Context) float64
	RequireAuth(ctx context.Context) (*domain.User, error)
	RequireAdmin(ctx context.Context) (*domain.User, error)
}
