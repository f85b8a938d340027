package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vytalle/storefront/internal/core/domain"
	"github.com/vytalle/storefront/internal/core/ports"
	"github.com/vytalle/storefront/internal/core/resilience"
)

const (
	// SessionKey is the store key the session record lives under.
	SessionKey = "vytalle_session"

	DefaultSessionTTL = 24 * time.Hour
)

var _ ports.SessionService = (*SessionAuthority)(nil)

// SessionConfig carries the SessionAuthority settings that are not
// collaborators.
type SessionConfig struct {
	Secret string
	TTL    time.Duration
	Now    func() time.Time
	// Auditor is optional.
	Auditor ports.SessionAuditor
}

// SessionAuthority implements ports.SessionService on top of a key-value
// store. A value is bound to one store; WithStore gives a copy bound to
// another caller's slot.
type SessionAuthority struct {
	store   ports.SessionStore
	scopeID string

	users   ports.UserRepository
	creds   ports.CredentialStore
	engine  *resilience.Engine
	tokens  tokenIssuer
	ttl     time.Duration
	now     func() time.Time
	auditor ports.SessionAuditor
	log     zerolog.Logger
}

func NewSessionAuthority(
	store ports.SessionStore,
	users ports.UserRepository,
	creds ports.CredentialStore,
	engine *resilience.Engine,
	log zerolog.Logger,
	cfg SessionConfig,
) (*SessionAuthority, error) {
	if cfg.Secret == "" {
		return nil, errEmptySecret
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSessionTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &SessionAuthority{
		store:   store,
		users:   users,
		creds:   creds,
		engine:  engine,
		tokens:  tokenIssuer{secret: []byte(cfg.Secret), now: cfg.Now},
		ttl:     cfg.TTL,
		now:     cfg.Now,
		auditor: cfg.Auditor,
		log:     log,
	}, nil
}

// WithStore returns a copy that reads and writes the session in store.
// scopeID is embedded in tokens minted by the copy.
func (a *SessionAuthority) WithStore(scopeID string, store ports.SessionStore) *SessionAuthority {
	clone := *a
	clone.scopeID = scopeID
	clone.store = store
	return &clone
}

func (a *SessionAuthority) ScopeID() string { return a.scopeID }

// VerifyToken validates a session token minted by any authority sharing the
// same secret.
func (a *SessionAuthority) VerifyToken(token string) (*TokenClaims, error) {
	return a.tokens.verify(token)
}

// Login checks the credentials and persists a fresh session, replacing any
// previous one. Unknown email, inactive account and wrong password all yield
// domain.ErrInvalidCredentials.
func (a *SessionAuthority) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		a.audit(domain.SessionLoginFailed, email, nil)
		return nil, domain.ErrInvalidCredentials
	}

	ec := resilience.ErrorContext{
		Component: "session",
		Action:    "login",
		Metadata:  map[string]any{"email": email},
	}
	opID := "session.login:" + email

	user, err := resilience.WithRetry(ctx, a.engine, func(ctx context.Context) (*domain.User, error) {
		return a.users.FindActiveByEmail(ctx, email)
	}, opID, ec)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			a.audit(domain.SessionLoginFailed, email, nil)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.Active {
		a.audit(domain.SessionLoginFailed, email, nil)
		return nil, domain.ErrInvalidCredentials
	}

	ok, err := resilience.WithRetry(ctx, a.engine, func(ctx context.Context) (bool, error) {
		return a.creds.CheckPassword(ctx, email, password)
	}, opID+":password", ec)
	if err != nil {
		return nil, err
	}
	if !ok {
		a.audit(domain.SessionLoginFailed, email, nil)
		return nil, domain.ErrInvalidCredentials
	}

	// Token exp has second precision; keep the record aligned with it.
	expiresAt := a.now().Add(a.ttl).UTC().Truncate(time.Second)
	token, err := a.tokens.mint(*user, a.scopeID, expiresAt)
	if err != nil {
		return nil, a.engine.CreateError(err, ec)
	}

	session := &domain.Session{User: *user, Token: token, ExpiresAt: expiresAt}
	raw, err := json.Marshal(session)
	if err != nil {
		return nil, a.engine.CreateError(fmt.Errorf("encode session: %w", err), ec)
	}
	if err := a.store.Set(ctx, SessionKey, string(raw)); err != nil {
		return nil, a.engine.CreateError(fmt.Errorf("persist session: %w", err), ec)
	}

	a.audit(domain.SessionLogin, email, user)
	a.log.Info().
		Str("user_id", user.ID).
		Str("role", user.Role.String()).
		Msg("login succeeded")
	return session, nil
}

// Logout removes the session record. It is idempotent.
func (a *SessionAuthority) Logout(ctx context.Context) error {
	current := a.CurrentSession(ctx)
	if err := a.store.Delete(ctx, SessionKey); err != nil {
		return a.engine.CreateError(fmt.Errorf("delete session: %w", err),
			resilience.ErrorContext{Component: "session", Action: "logout"})
	}
	if current != nil {
		a.audit(domain.SessionLogout, current.User.Email, &current.User)
	}
	return nil
}

// CurrentSession returns the persisted session, or nil when it is absent,
// unreadable, expired or carries a token that fails verification. Expired
// and invalid records are deleted.
func (a *SessionAuthority) CurrentSession(ctx context.Context) *domain.Session {
	ec := resilience.ErrorContext{Component: "session", Action: "read"}
	return resilience.SafeFn(a.engine, func() (*domain.Session, error) {
		raw, err := a.store.Get(ctx, SessionKey)
		if errors.Is(err, ports.ErrKeyNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}

		var s domain.Session
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			a.log.Warn().Err(err).Msg("discarding malformed session record")
			return nil, nil
		}

		if s.Expired(a.now()) {
			if err := a.store.Delete(ctx, SessionKey); err != nil {
				return nil, fmt.Errorf("delete expired session: %w", err)
			}
			a.audit(domain.SessionExpired, s.User.Email, &s.User)
			return nil, nil
		}

		if _, err := a.tokens.verify(s.Token); err != nil {
			a.log.Warn().Err(err).Str("user_id", s.User.ID).Msg("discarding session with invalid token")
			if err := a.store.Delete(ctx, SessionKey); err != nil {
				return nil, fmt.Errorf("delete invalid session: %w", err)
			}
			return nil, nil
		}
		return &s, nil
	}, nil, ec)
}

func (a *SessionAuthority) CurrentUser(ctx context.Context) *domain.User {
	s := a.CurrentSession(ctx)
	if s == nil {
		return nil
	}
	return &s.User
}

func (a *SessionAuthority) IsAdmin(ctx context.Context) bool {
	u := a.CurrentUser(ctx)
	return u != nil && u.Role == domain.RoleAdmin
}

func (a *SessionAuthority) IsVendor(ctx context.Context) bool {
	u := a.CurrentUser(ctx)
	return u != nil && u.Role == domain.RoleVendor
}

// UserCommission is the caller's commission percent, 0 unless a vendor.
func (a *SessionAuthority) UserCommission(ctx context.Context) float64 {
	return a.CurrentUser(ctx).Commission()
}

func (a *SessionAuthority) RequireAuth(ctx context.Context) (*domain.User, error) {
	u := a.CurrentUser(ctx)
	if u == nil {
		return nil, domain.ErrLoginRequired
	}
	return u, nil
}

func (a *SessionAuthority) RequireAdmin(ctx context.Context) (*domain.User, error) {
	u, err := a.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if u.Role != domain.RoleAdmin {
		return nil, domain.ErrAdminRequired
	}
	return u, nil
}

func (a *SessionAuthority) audit(kind domain.SessionEventKind, email string, user *domain.User) {
	if a.auditor == nil {
		return
	}
	ev := domain.SessionEvent{Kind: kind, Email: email, OccurredAt: a.now().UTC()}
	if user != nil {
		ev.UserID = user.ID
		ev.Role = user.Role
	}
	a.auditor.Record(ev)
}
