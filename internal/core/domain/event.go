package domain

import "time"

// SessionEventKind labels an entry in the session audit trail.
type SessionEventKind string

const (
	SessionLogin       SessionEventKind = "login"
	SessionLoginFailed SessionEventKind = "login_failed"
	SessionLogout      SessionEventKind = "logout"
	SessionExpired     SessionEventKind = "expired"
)

// SessionEvent records a session state change for auditing.
type SessionEvent struct {
	Kind       SessionEventKind
	Email      string
	UserID     string // empty when the login failed
	Role       Role
	OccurredAt time.Time
}
