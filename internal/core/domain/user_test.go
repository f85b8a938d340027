package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"admin":    RoleAdmin,
		"ADMIN":    RoleAdmin,
		"vendedor": RoleVendor,
		"vendor":   RoleVendor,
		"":         RoleAnonymous,
		"root":     RoleAnonymous,
	}
	for in, want := range cases {
		if got := ParseRole(in); got != want {
			t.Errorf("ParseRole(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRole_JSONRoundTrip(t *testing.T) {
	raw, err := json.Marshal(User{Role: RoleVendor})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if u.Role != RoleVendor {
		t.Fatalf("expected vendor, got %v", u.Role)
	}
}

func TestUser_Commission(t *testing.T) {
	five := 5.0
	if got := (&User{Role: RoleVendor, CommissionPercent: &five}).Commission(); got != 5 {
		t.Fatalf("expected 5, got %v", got)
	}
	if got := (&User{Role: RoleAdmin, CommissionPercent: &five}).Commission(); got != 0 {
		t.Fatalf("admin commission should be 0, got %v", got)
	}
	var nilUser *User
	if got := nilUser.Commission(); got != 0 {
		t.Fatalf("nil user commission should be 0, got %v", got)
	}
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()
	s := Session{ExpiresAt: now}
	if !s.Expired(now) {
		t.Fatalf("session expiring now should be expired")
	}
	if s.Expired(now.Add(-time.Second)) {
		t.Fatalf("session should be active before expiry")
	}
}
