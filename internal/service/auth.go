package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/utem-ti/canvas-auth/internal/domain/auth"
	apperrors "github.com/utem-ti/canvas-auth/internal/errors"
	"github.com/utem-ti/canvas-auth/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.AuthProvider
	States   ports.StateStore
	Sessions ports.SessionStore
	Users    ports.UserStore
	Roles    ports.RoleRegistry
	Limiter  ports.LoginLimiter // optional; nil disables rate limiting

	SessionTTL time.Duration // default 1h when zero
	Now        func() time.Time
}

// AuthService orchestrates the authentication flow: it drives the OAuth
// exchange, resolves roles, provisions user records, and owns the session
// lifecycle. Every failure is a checked result that leaves no session
// behind — the caller lands back in the anonymous state.
type AuthService struct {
	provider ports.AuthProvider
	states   ports.StateStore
	sessions ports.SessionStore
	users    ports.UserStore
	roles    ports.RoleRegistry
	limiter  ports.LoginLimiter

	sessionTTL time.Duration
	now        func() time.Time
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		provider:   opts.Provider,
		states:     opts.States,
		sessions:   opts.Sessions,
		users:      opts.Users,
		roles:      opts.Roles,
		limiter:    opts.Limiter,
		sessionTTL: ttl,
		now:        now,
	}
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
}

// BeginLogin issues a fresh state token, records the pending attempt, and
// returns the provider authorization URL embedding the token.
func (s *AuthService) BeginLogin(ctx context.Context, redirectTarget string) (*BeginLoginResult, error) {
	state, err := randomToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	pending := domainauth.OAuthState{
		Token:          state,
		Nonce:          nonce,
		RedirectTarget: redirectTarget,
		CreatedAt:      s.now(),
	}
	if err := s.states.Save(ctx, pending); err != nil {
		return nil, fmt.Errorf("save oauth state: %w", err)
	}

	return &BeginLoginResult{
		AuthURL: s.provider.AuthCodeURL(ports.BeginInput{State: state, Nonce: nonce}),
		State:   state,
	}, nil
}

// CompleteLoginInput groups the callback parameters.
type CompleteLoginInput struct {
	Code  string
	State string
}

// CompleteLoginResult contains the established session and where the user
// originally wanted to go.
type CompleteLoginResult struct {
	Session        domainauth.Session
	RedirectTarget string
}

// CompleteLogin consumes the pending state (exactly once — a replayed or
// unknown token fails as a mismatch), exchanges the code for an identity,
// resolves the role, provisions the user record on first login from an
// authorized domain, and establishes the session.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*CompleteLoginResult, error) {
	if input.Code == "" || input.State == "" {
		return nil, domainauth.ErrStateMismatch
	}

	pending, err := s.states.Consume(ctx, input.State)
	if err != nil {
		return nil, err
	}

	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput{Code: input.Code, Nonce: pending.Nonce})
	if err != nil {
		return nil, err
	}

	email := domainauth.NormalizeEmail(identity.Email)
	if email == "" {
		return nil, errors.Join(domainauth.ErrProviderError, errors.New("provider returned no email"))
	}

	if s.limiter != nil {
		if err := s.limiter.Allow(ctx, email); err != nil {
			return nil, err
		}
	}

	record, err := s.resolveUser(ctx, identity, email)
	if err != nil {
		return nil, err
	}

	role := domainauth.RoleGuest
	name := identity.Name
	if record != nil {
		role = record.Role
		if record.Name != "" {
			name = record.Name
		}
	}

	now := s.now()
	session := domainauth.Session{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		Role:      role,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	if s.limiter != nil {
		// Counter cleanup is best-effort; the window expires on its own.
		_ = s.limiter.Reset(ctx, email)
	}

	return &CompleteLoginResult{
		Session:        session,
		RedirectTarget: pending.RedirectTarget,
	}, nil
}

// resolveUser looks up the record for the identity and provisions one on
// first login from an authorized domain. Guests are not persisted. A nil
// record with a nil error means the identity stays a guest.
func (s *AuthService) resolveUser(ctx context.Context, identity domainauth.Identity, email string) (*domainauth.UserRecord, error) {
	existing, err := s.users.Get(ctx, email)
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if existing != nil {
		if !existing.Active {
			s.recordFailure(ctx, email)
			return nil, domainauth.ErrUserInactive
		}
		if identity.Name != "" && identity.Name != existing.Name {
			refreshed := *existing
			refreshed.Name = identity.Name
			if updated, upsertErr := s.users.Upsert(ctx, &refreshed); upsertErr == nil {
				return updated, nil
			}
			// Name refresh is cosmetic; keep the stored record on failure.
		}
		return existing, nil
	}

	role := s.roles.InferRole(identity, nil)
	if role == domainauth.RoleGuest {
		return nil, nil
	}

	provisioned, err := s.users.Upsert(ctx, &domainauth.UserRecord{
		Email:  email,
		Name:   identity.Name,
		Role:   role,
		Active: true,
	})
	if err != nil {
		return nil, fmt.Errorf("provision user: %w", err)
	}
	return provisioned, nil
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if s.limiter == nil {
		return
	}
	_ = s.limiter.RecordFailure(ctx, email)
}

// GetSession retrieves a session by ID, checking expiry lazily. The expiry
// boundary is inclusive: a session whose ExpiresAt equals now is expired.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, domainauth.ErrSessionExpired
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.Expired(s.now()) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(domainauth.ErrSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, domainauth.ErrSessionExpired
	}

	return &session, nil
}

// Authorize checks the session's role against the required permission.
// A nil or expired session fails closed.
func (s *AuthService) Authorize(session *domainauth.Session, perm domainauth.Permission) error {
	if session == nil || session.Expired(s.now()) {
		return domainauth.ErrPermissionDenied
	}
	if !s.roles.Authorize(session.Role, perm) {
		return domainauth.ErrPermissionDenied
	}
	return nil
}

// Permissions returns the capability set granted to the session's role.
func (s *AuthService) Permissions(session *domainauth.Session) []domainauth.Permission {
	if session == nil {
		return s.roles.PermissionsFor(domainauth.RoleGuest)
	}
	return s.roles.PermissionsFor(session.Role)
}

// Logout removes a session. Logging out twice is not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil // Nothing to logout
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// randomToken creates a cryptographically secure URL-safe token of n chars.
func randomToken(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	b := make([]byte, (n*3+3)/4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) > n {
		s = s[:n]
	}
	return s, nil
}
