package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input   string
		want    Role
		wantErr bool
	}{
		{"admin", RoleAdmin, false},
		{"professor", RoleProfessor, false},
		{"student", RoleStudent, false},
		{"guest", RoleGuest, false},
		{"  Admin  ", RoleAdmin, false},
		{"PROFESSOR", RoleProfessor, false},
		{"", "", true},
		{"superuser", "", true},
	}

	for _, tt := range tests {
		got, err := ParseRole(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestRole_Valid(t *testing.T) {
	for _, r := range Roles {
		assert.True(t, r.Valid(), "role %q", r)
	}
	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("").Valid())
}

func TestIdentity_Domain(t *testing.T) {
	assert.Equal(t, "utem.cl", Identity{Email: "alice@utem.cl"}.Domain())
	assert.Equal(t, "alumnos.utem.cl", Identity{Email: "bob@ALUMNOS.UTEM.CL"}.Domain())
	assert.Empty(t, Identity{Email: "no-at-sign"}.Domain())
	assert.Empty(t, Identity{Email: "trailing@"}.Domain())
	assert.Empty(t, Identity{}.Domain())
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@utem.cl", NormalizeEmail("  Alice@UTEM.cl  "))
	assert.Empty(t, NormalizeEmail("   "))
}

func TestSession_Expired_InclusiveBoundary(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sess := Session{ExpiresAt: now}

	// A session expiring exactly now is already expired.
	assert.True(t, sess.Expired(now))
	assert.True(t, sess.Expired(now.Add(time.Nanosecond)))
	assert.False(t, sess.Expired(now.Add(-time.Nanosecond)))
}

func TestSession_IsGuest(t *testing.T) {
	assert.True(t, Session{Role: RoleGuest}.IsGuest())
	assert.False(t, Session{Role: RoleStudent}.IsGuest())
}
