package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseConfig(t *testing.T) AppConfig {
	t.Helper()
	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()
	return cfg
}

func TestAppConfig_Defaults(t *testing.T) {
	cfg := parseConfig(t)

	assert.False(t, cfg.IsDev)
	assert.Equal(t, AuthModeGoogle, cfg.Auth.Mode)
	assert.Equal(t, "https://accounts.google.com", cfg.Auth.OAuth.IssuerURL)
	assert.Equal(t, 10*time.Minute, cfg.Auth.StateTTL)
	assert.Equal(t, time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 5, cfg.Auth.MaxLoginAttempts)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "localhost:6379", cfg.Redis.URI)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.True(t, cfg.Postgres.RunMigrationsOnStart)
}

func TestAppConfig_DefaultRoleTable(t *testing.T) {
	cfg := parseConfig(t)

	assert.Equal(t, "student", cfg.Roles.DomainRoles["utem.cl"])
	assert.Equal(t, "student", cfg.Roles.DomainRoles["alumnos.utem.cl"])
	assert.Equal(t, "professor", cfg.Roles.DomainRoles["profesores.utem.cl"])
	assert.Contains(t, cfg.Roles.ProfessorKeywords, "docente")
	assert.Contains(t, cfg.Roles.AdminPermissions, "manage_users")
	assert.Contains(t, cfg.Roles.AdminPermissions, "submit_assignments")
	assert.NotContains(t, cfg.Roles.ProfessorPermissions, "manage_users")
	assert.Equal(t, []string{"view_public_content"}, cfg.Roles.GuestPermissions)
}

func TestAppConfig_EnvOverrides(t *testing.T) {
	t.Setenv("AUTH_MODE", "mock")
	t.Setenv("AUTH_SESSION_TTL", "30m")
	t.Setenv("ROLES_DOMAIN_ROLES", "example.edu:professor")
	t.Setenv("ROLES_ADMIN_EMAILS", "Root@Example.edu, ops@example.edu")
	t.Setenv("HTTP_ADDR", ":9090")

	cfg := parseConfig(t)

	assert.Equal(t, AuthModeMock, cfg.Auth.Mode)
	assert.Equal(t, 30*time.Minute, cfg.Auth.SessionTTL)
	assert.Equal(t, map[string]string{"example.edu": "professor"}, cfg.Roles.DomainRoles)
	assert.Equal(t, []string{"root@example.edu", "ops@example.edu"}, cfg.Roles.AdminEmails)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
}

func TestAppConfig_InvalidAuthMode(t *testing.T) {
	t.Setenv("AUTH_MODE", "saml")

	var cfg AppConfig
	err := env.Parse(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid AuthMode")
}

func TestAuthConfig_SanitizeGuardrails(t *testing.T) {
	a := AuthConfig{
		StateTTL:         -time.Minute,
		SessionTTL:       0,
		MaxLoginAttempts: 0,
		LockoutDuration:  -1,
	}
	a.Sanitize()

	assert.Equal(t, 10*time.Minute, a.StateTTL)
	assert.Equal(t, time.Hour, a.SessionTTL)
	assert.Equal(t, 5, a.MaxLoginAttempts)
	assert.Equal(t, 5*time.Minute, a.LockoutDuration)
}

func TestRolesConfig_SanitizeNormalizes(t *testing.T) {
	r := RolesConfig{
		DomainRoles:       map[string]string{" UTEM.cl ": " Student "},
		AdminEmails:       []string{" Root@UTEM.cl "},
		ProfessorKeywords: []string{" PROF "},
	}
	r.Sanitize()

	assert.Equal(t, map[string]string{"utem.cl": "student"}, r.DomainRoles)
	assert.Equal(t, []string{"root@utem.cl"}, r.AdminEmails)
	assert.Equal(t, []string{"prof"}, r.ProfessorKeywords)
}
