package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vytalle/storefront/internal/core/domain"
)

// Account is a seeded user together with its plain-text demo password.
type Account struct {
	User     domain.User
	Password string
}

// UserRepository keeps accounts in memory and implements both
// ports.UserRepository and ports.CredentialStore. Passwords are stored as
// bcrypt hashes.
type UserRepository struct {
	mu     sync.RWMutex
	users  map[string]domain.User
	hashes map[string][]byte
}

// NewUserRepository hashes every account password with the given bcrypt
// cost. Tests pass bcrypt.MinCost.
func NewUserRepository(accounts []Account, cost int) (*UserRepository, error) {
	r := &UserRepository{
		users:  make(map[string]domain.User, len(accounts)),
		hashes: make(map[string][]byte, len(accounts)),
	}
	for _, a := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", a.User.Email, err)
		}
		key := normalizeEmail(a.User.Email)
		r.users[key] = a.User
		r.hashes[key] = hash
	}
	return r, nil
}

func (r *UserRepository) FindActiveByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[normalizeEmail(email)]
	if !ok || !u.Active {
		return nil, domain.ErrUserNotFound
	}
	clone := u
	if u.CommissionPercent != nil {
		pct := *u.CommissionPercent
		clone.CommissionPercent = &pct
	}
	return &clone, nil
}

func (r *UserRepository) CheckPassword(_ context.Context, email, password string) (bool, error) {
	r.mu.RLock()
	hash, ok := r.hashes[normalizeEmail(email)]
	r.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func commission(pct float64) *float64 { return &pct }

// DemoAccounts is the illustrative credential set the storefront ships with.
func DemoAccounts() []Account {
	created := time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)
	return []Account{
		{
			User: domain.User{
				ID: "usr-admin-001", Name: "Administrador Vytalle", Email: "admin@vytalle.com.br",
				Role: domain.RoleAdmin, Active: true, CreatedAt: created,
			},
			Password: "admin123",
		},
		{
			User: domain.User{
				ID: "usr-vend-001", Name: "João Silva", Email: "joao@vendedor.com",
				Role: domain.RoleVendor, Active: true, CreatedAt: created, CommissionPercent: commission(5),
			},
			Password: "vendedor123",
		},
		{
			User: domain.User{
				ID: "usr-vend-002", Name: "Maria Santos", Email: "maria@vendedor.com",
				Role: domain.RoleVendor, Active: true, CreatedAt: created, CommissionPercent: commission(7.5),
			},
			Password: "vendedor456",
		},
		{
			User: domain.User{
				ID: "usr-vend-003", Name: "Carlos Lima", Email: "carlos@vendedor.com",
				Role: domain.RoleVendor, Active: false, CreatedAt: created, CommissionPercent: commission(5),
			},
			Password: "vendedor789",
		},
	}
}
