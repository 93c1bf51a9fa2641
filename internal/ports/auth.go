package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters and internal/data; orchestration
// in internal/service.

import (
	"context"

	domainauth "github.com/utem-ti/canvas-auth/internal/domain/auth"
)

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	State string
	Nonce string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	Nonce string
}

// AuthProvider initiates and completes an authentication flow against Google.
type AuthProvider interface {
	// AuthCodeURL builds the provider authorization URL embedding the given
	// state and nonce.
	AuthCodeURL(in BeginInput) string

	// Exchange redeems the authorization code for tokens, verifies the
	// identity (including nonce), and returns the authenticated principal.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// StateStore persists pending OAuth states. Consume is atomic: the state is
// checked and discarded in one step, so a token can never be redeemed twice.
type StateStore interface {
	Save(ctx context.Context, state domainauth.OAuthState) error

	// Consume returns the stored state for the token and removes it. A token
	// that was never issued, expired, or already consumed yields
	// domainauth.ErrStateMismatch.
	Consume(ctx context.Context, token string) (domainauth.OAuthState, error)
}

// SessionStore persists and retrieves user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// UserStore is the durable identity-to-role mapping. Implementations must
// serialize writes against concurrent reads: no reader ever observes a
// half-written record. Callers pass normalized emails.
type UserStore interface {
	// Get returns the record for the email. Absence is signalled with an
	// apperrors NotFound error, not a nil record.
	Get(ctx context.Context, email string) (*domainauth.UserRecord, error)
	List(ctx context.Context) ([]domainauth.UserRecord, error)

	// Upsert atomically inserts or replaces the record keyed by email.
	Upsert(ctx context.Context, rec *domainauth.UserRecord) (*domainauth.UserRecord, error)

	// SetRole updates an existing record's role. NotFound when absent.
	SetRole(ctx context.Context, email string, role domainauth.Role) error

	// SetActive flips the active flag. NotFound when absent.
	SetActive(ctx context.Context, email string, active bool) error

	// Delete removes a record. Removal is an explicit administrative action.
	Delete(ctx context.Context, email string) error
}

// RoleRegistry is the static authority on role-to-permission mapping and
// domain-to-default-role inference.
type RoleRegistry interface {
	// PermissionsFor is total over the closed Role enumeration and always
	// returns a non-empty set for a valid role.
	PermissionsFor(role domainauth.Role) []domainauth.Permission

	// InferRole is pure and deterministic. A stored record's role wins;
	// otherwise the configured domain rules apply and unrecognized domains
	// yield guest.
	InferRole(identity domainauth.Identity, existing *domainauth.UserRecord) domainauth.Role

	// Authorize reports whether the role holds the permission.
	Authorize(role domainauth.Role, perm domainauth.Permission) bool
}

// LoginLimiter guards the login path against brute-force attempts.
type LoginLimiter interface {
	// Allow returns domainauth.ErrLoginLocked while the email is locked out.
	Allow(ctx context.Context, email string) error
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}
