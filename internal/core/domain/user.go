package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Role is the caller's authority level. The zero value is RoleAnonymous.
type Role int

const (
	RoleAnonymous Role = iota
	RoleAdmin
	RoleVendor
)

const (
	roleAdminName     = "admin"
	roleVendorName    = "vendedor"
	roleAnonymousName = "anonymous"
)

// ParseRole maps a stored role string to a Role. Unknown values become
// RoleAnonymous so they can only ever reach the public catalog.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case roleAdminName:
		return RoleAdmin
	case roleVendorName, "vendor":
		return RoleVendor
	default:
		return RoleAnonymous
	}
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return roleAdminName
	case RoleVendor:
		return roleVendorName
	default:
		return roleAnonymousName
	}
}

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = ParseRole(s)
	return nil
}

// User models an authenticated actor. CommissionPercent is only meaningful
// for vendors.
type User struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Role              Role      `json:"role"`
	Active            bool      `json:"active"`
	CreatedAt         time.Time `json:"created_at"`
	CommissionPercent *float64  `json:"commission_percent,omitempty"`
}

// Commission returns the vendor commission percentage, or 0 when the user is
// not a vendor or has none configured.
func (u *User) Commission() float64 {
	if u == nil || u.Role != RoleVendor || u.CommissionPercent == nil {
		return 0
	}
	return *u.CommissionPercent
}

// Session is the persisted proof of a successful login.
type Session struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
