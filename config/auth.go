package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeGoogle uses the Google OAuth 2.0 authorization-code flow.
	AuthModeGoogle AuthMode = "google"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "google", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: google, mock)", v)
	}
}

// OAuthConfig contains the Google OAuth client configuration.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL" envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"        envDefault:"openid email profile"`
	// IssuerURL is the OIDC issuer used for endpoint discovery.
	IssuerURL string `env:"ISSUER_URL" envDefault:"https://accounts.google.com"`
	// HostedDomain restricts the Google account chooser to one workspace
	// domain (the "hd" parameter). Empty allows any account.
	HostedDomain string `env:"HOSTED_DOMAIN"`
	// RequestTimeout bounds the token exchange and profile fetch.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	Email string `env:"EMAIL" envDefault:"dev@utem.cl"`
	Name  string `env:"NAME"  envDefault:"Dev User"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"google"`

	// OAuth configuration (used when Mode=google).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// StateTTL bounds how long a pending login attempt stays valid.
	// Expired states fail closed as a mismatch.
	StateTTL time.Duration `env:"AUTH_STATE_TTL" envDefault:"10m"`

	// SessionTTL is the lifetime of an authenticated session.
	SessionTTL time.Duration `env:"AUTH_SESSION_TTL" envDefault:"1h"`

	// MaxLoginAttempts is the failure count that triggers a lockout.
	MaxLoginAttempts int `env:"AUTH_MAX_LOGIN_ATTEMPTS" envDefault:"5"`

	// LockoutDuration is how long a locked-out email stays blocked.
	LockoutDuration time.Duration `env:"AUTH_LOCKOUT_DURATION" envDefault:"5m"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.StateTTL <= 0 {
		a.StateTTL = 10 * time.Minute
	}
	if a.SessionTTL <= 0 {
		a.SessionTTL = time.Hour
	}
	if a.MaxLoginAttempts < 1 {
		a.MaxLoginAttempts = 5
	}
	if a.LockoutDuration <= 0 {
		a.LockoutDuration = 5 * time.Minute
	}
}
