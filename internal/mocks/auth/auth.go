package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	domainauth "github.com/utem-ti/canvas-auth/internal/domain/auth"
	apperrors "github.com/utem-ti/canvas-auth/internal/errors"
	"github.com/utem-ti/canvas-auth/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider = (*MockAuthProvider)(nil)
	_ ports.StateStore   = (*MemoryStateStore)(nil)
	_ ports.SessionStore = (*MemorySessionStore)(nil)
	_ ports.UserStore    = (*MemoryUserStore)(nil)
	_ ports.LoginLimiter = (*MemoryLoginLimiter)(nil)
)

// MockAuthProvider simulates the identity provider with a fixed identity.
type MockAuthProvider struct {
	AuthCodeURLFunc func(in ports.BeginInput) string
	ExchangeFunc    func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	AuthURL  string
	Identity domainauth.Identity
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL: "https://mock-idp/auth",
		Identity: domainauth.Identity{
			Email:     "mock.user@utem.cl",
			Name:      "Mock User",
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
}

func (m *MockAuthProvider) AuthCodeURL(in ports.BeginInput) string {
	if m.AuthCodeURLFunc != nil {
		return m.AuthCodeURLFunc(in)
	}
	return m.AuthURL + "?state=" + in.State + "&nonce=" + in.Nonce
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}
	identity := m.Identity
	if identity.ExpiresAt.IsZero() {
		identity.ExpiresAt = time.Now().Add(time.Hour)
	}
	return identity, nil
}

// MemoryStateStore is an in-memory pending-state store for unit tests.
// Consume removes the entry, so a token redeems exactly once.
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string]domainauth.OAuthState
}

// NewMemoryStateStore creates a new in-memory state store.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]domainauth.OAuthState)}
}

func (m *MemoryStateStore) Save(_ context.Context, state domainauth.OAuthState) error {
	if state.Token == "" {
		return errors.New("state token cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.states[state.Token]; exists {
		return errors.New("state token already pending")
	}
	m.states[state.Token] = state
	return nil
}

func (m *MemoryStateStore) Consume(_ context.Context, token string) (domainauth.OAuthState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.states[token]
	if !ok {
		return domainauth.OAuthState{}, domainauth.ErrStateMismatch
	}
	delete(m.states, token)
	return state, nil
}

// Len reports the number of pending states.
func (m *MemoryStateStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.states)
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domainauth.Session)}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, apperrors.NotFound("session not found")
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len reports the number of stored sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// MemoryUserStore is an in-memory user store keyed by normalized email.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[string]domainauth.UserRecord
}

// NewMemoryUserStore creates a new in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]domainauth.UserRecord)}
}

func (m *MemoryUserStore) Get(_ context.Context, email string) (*domainauth.UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.users[domainauth.NormalizeEmail(email)]
	if !ok {
		return nil, apperrors.NotFoundf("user %q not found", email)
	}
	out := rec
	return &out, nil
}

func (m *MemoryUserStore) List(_ context.Context) ([]domainauth.UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domainauth.UserRecord, 0, len(m.users))
	for _, rec := range m.users {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (m *MemoryUserStore) Upsert(_ context.Context, rec *domainauth.UserRecord) (*domainauth.UserRecord, error) {
	if rec == nil {
		return nil, apperrors.Validation("user record is required")
	}
	email := domainauth.NormalizeEmail(rec.Email)
	if email == "" {
		return nil, apperrors.ValidationField("email", "email is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	saved := *rec
	saved.Email = email
	saved.UpdatedAt = now
	if existing, ok := m.users[email]; ok {
		saved.CreatedAt = existing.CreatedAt
	} else {
		saved.CreatedAt = now
	}
	m.users[email] = saved
	out := saved
	return &out, nil
}

func (m *MemoryUserStore) SetRole(_ context.Context, email string, role domainauth.Role) error {
	return m.mutate(email, func(rec *domainauth.UserRecord) { rec.Role = role })
}

func (m *MemoryUserStore) SetActive(_ context.Context, email string, active bool) error {
	return m.mutate(email, func(rec *domainauth.UserRecord) { rec.Active = active })
}

func (m *MemoryUserStore) Delete(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := domainauth.NormalizeEmail(email)
	if _, ok := m.users[key]; !ok {
		return apperrors.NotFoundf("user %q not found", email)
	}
	delete(m.users, key)
	return nil
}

func (m *MemoryUserStore) mutate(email string, fn func(*domainauth.UserRecord)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := domainauth.NormalizeEmail(email)
	rec, ok := m.users[key]
	if !ok {
		return apperrors.NotFoundf("user %q not found", email)
	}
	fn(&rec)
	rec.UpdatedAt = time.Now()
	m.users[key] = rec
	return nil
}

// MemoryLoginLimiter counts failures per email without any time window.
type MemoryLoginLimiter struct {
	mu          sync.Mutex
	failures    map[string]int
	MaxAttempts int
}

// NewMemoryLoginLimiter creates a limiter that locks after maxAttempts failures.
func NewMemoryLoginLimiter(maxAttempts int) *MemoryLoginLimiter {
	if maxAttempts < 1 {
		maxAttempts = 5
	}
	return &MemoryLoginLimiter{
		failures:    make(map[string]int),
		MaxAttempts: maxAttempts,
	}
}

func (m *MemoryLoginLimiter) Allow(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures[domainauth.NormalizeEmail(email)] >= m.MaxAttempts {
		return domainauth.ErrLoginLocked
	}
	return nil
}

func (m *MemoryLoginLimiter) RecordFailure(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[domainauth.NormalizeEmail(email)]++
	return nil
}

func (m *MemoryLoginLimiter) Reset(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.failures, domainauth.NormalizeEmail(email))
	return nil
}

// Failures reports the recorded failure count for an email.
func (m *MemoryLoginLimiter) Failures(email string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures[domainauth.NormalizeEmail(email)]
}
