package models

import (
	"testing"
	"time"
)

func TestRefreshTokenUsable(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		tok  RefreshToken
		want bool
	}{
		{"fresh", RefreshToken{ExpiresAt: now.Add(time.Hour)}, true},
		{"expired", RefreshToken{ExpiresAt: now.Add(-time.Second)}, false},
		{"expires now", RefreshToken{ExpiresAt: now}, false},
		{"revoked", RefreshToken{ExpiresAt: now.Add(time.Hour), Revoked: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tok.Usable(now); got != tt.want {
				t.Errorf("Usable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRevokeSessionsWithoutUsersIsNoop(t *testing.T) {
	if err := RevokeSessions(nil); err != nil {
		t.Errorf("err = %v", err)
	}
}

func TestIsAdmin(t *testing.T) {
	if !(&User{Role: RoleAdmin}).IsAdmin() {
		t.Error("admin role should be admin")
	}
	if (&User{Role: RoleCustomer}).IsAdmin() {
		t.Error("customer role should not be admin")
	}
}
