package auth

import "errors"

// Authentication and authorization failures are checked results, never
// panics: every one of them forces a transition back to the anonymous state
// or a denial view.
var (
	// ErrStateMismatch is returned when a callback carries a state token that
	// was never issued, already consumed, or expired. CSRF or replay suspected.
	ErrStateMismatch = errors.New("oauth state mismatch")

	// ErrInvalidGrant is returned when the authorization code is expired or
	// was already redeemed at the provider.
	ErrInvalidGrant = errors.New("invalid authorization grant")

	// ErrProviderError covers network or provider-side failures during the
	// token exchange or profile fetch.
	ErrProviderError = errors.New("identity provider error")

	// ErrPermissionDenied is returned when an authenticated session lacks the
	// required capability.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrSessionExpired is returned when a session exists but its expiry has
	// passed. Treated identically to logout for authorization purposes.
	ErrSessionExpired = errors.New("session expired")

	// ErrUserInactive is returned when a deactivated user completes the OAuth
	// exchange. No session is created.
	ErrUserInactive = errors.New("user is inactive")

	// ErrLoginLocked is returned when repeated login failures locked the
	// account out for a bounded period.
	ErrLoginLocked = errors.New("login temporarily locked")
)
