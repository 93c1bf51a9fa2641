package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/utem-ti/canvas-auth/internal/domain/auth"
	"github.com/utem-ti/canvas-auth/internal/service"
)

// mockAuthService is a test double for service.AuthService.
type mockAuthService struct {
	beginLoginFunc    func(ctx context.Context, redirectTarget string) (*service.BeginLoginResult, error)
	completeLoginFunc func(ctx context.Context, input service.CompleteLoginInput) (*service.CompleteLoginResult, error)
	getSessionFunc    func(ctx context.Context, sessionID string) (*domainauth.Session, error)
	authorizeFunc     func(session *domainauth.Session, perm domainauth.Permission) error
	logoutFunc        func(ctx context.Context, sessionID string) error
}

func (m *mockAuthService) BeginLogin(
	ctx context.Context,
	redirectTarget string,
) (*service.BeginLoginResult, error) {
	if m.beginLoginFunc != nil {
		return m.beginLoginFunc(ctx, redirectTarget)
	}
	return &service.BeginLoginResult{
		AuthURL: "https://accounts.google.com/o/oauth2/auth?state=test-state",
		State:   "test-state",
	}, nil
}

func (m *mockAuthService) CompleteLogin(
	ctx context.Context,
	input service.CompleteLoginInput,
) (*service.CompleteLoginResult, error) {
	if m.completeLoginFunc != nil {
		return m.completeLoginFunc(ctx, input)
	}
	return &service.CompleteLoginResult{
		Session:        testSession("test-session-id", time.Hour),
		RedirectTarget: "/dashboard",
	}, nil
}

func (m *mockAuthService) GetSession(
	ctx context.Context,
	sessionID string,
) (*domainauth.Session, error) {
	if m.getSessionFunc != nil {
		return m.getSessionFunc(ctx, sessionID)
	}
	sess := testSession(sessionID, time.Hour)
	return &sess, nil
}

func (m *mockAuthService) Authorize(session *domainauth.Session, perm domainauth.Permission) error {
	if m.authorizeFunc != nil {
		return m.authorizeFunc(session, perm)
	}
	return nil
}

func (m *mockAuthService) Permissions(session *domainauth.Session) []domainauth.Permission {
	if session == nil || session.IsGuest() {
		return []domainauth.Permission{domainauth.PermViewPublicContent}
	}
	return []domainauth.Permission{domainauth.PermViewCourses, domainauth.PermViewPublicContent}
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFunc != nil {
		return m.logoutFunc(ctx, sessionID)
	}
	return nil
}

func testSession(id string, ttl time.Duration) domainauth.Session {
	now := time.Now()
	return domainauth.Session{
		ID:        id,
		Email:     "test@utem.cl",
		Name:      "Test User",
		Role:      domainauth.RoleStudent,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestAuthHandlers_Login_Success(t *testing.T) {
	handlers := &AuthHandlers{Svc: &mockAuthService{}}

	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	w := httptest.NewRecorder()

	handlers.Login(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "https://accounts.google.com")

	// State lives server-side; no cookies on login.
	resp := w.Result()
	defer resp.Body.Close()
	assert.Empty(t, resp.Cookies())
}

func TestAuthHandlers_Login_PassesSafeRedirect(t *testing.T) {
	var captured string
	mockSvc := &mockAuthService{
		beginLoginFunc: func(_ context.Context, redirectTarget string) (*service.BeginLoginResult, error) {
			captured = redirectTarget
			return &service.BeginLoginResult{AuthURL: "https://idp/auth", State: "s"}, nil
		},
	}
	handlers := &AuthHandlers{Svc: mockSvc}

	req := httptest.NewRequest(http.MethodGet, "/auth/login?redirect_uri=/dashboard", nil)
	handlers.Login(httptest.NewRecorder(), req)
	assert.Equal(t, "/dashboard", captured)

	// Absolute URLs are rejected to prevent open redirects.
	req = httptest.NewRequest(http.MethodGet, "/auth/login?redirect_uri=https://evil.example.com/", nil)
	handlers.Login(httptest.NewRecorder(), req)
	assert.Equal(t, "/", captured)
}

func TestAuthHandlers_Login_ServiceError(t *testing.T) {
	mockSvc := &mockAuthService{
		beginLoginFunc: func(context.Context, string) (*service.BeginLoginResult, error) {
			return nil, errors.New("state store down")
		},
	}
	handlers := &AuthHandlers{Svc: mockSvc}

	w := httptest.NewRecorder()
	handlers.Login(w, httptest.NewRequest(http.MethodGet, "/auth/login", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "login_failed")
}

func TestAuthHandlers_Callback_Success(t *testing.T) {
	handlers := &AuthHandlers{Svc: &mockAuthService{}}

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=auth-code&state=test-state", nil)
	w := httptest.NewRecorder()

	handlers.Callback(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))

	resp := w.Result()
	defer resp.Body.Close()
	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookieName, cookies[0].Name)
	assert.Equal(t, "test-session-id", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestAuthHandlers_Callback_MissingParameters(t *testing.T) {
	handlers := &AuthHandlers{Svc: &mockAuthService{}}

	for _, target := range []string{
		"/auth/callback",
		"/auth/callback?code=x",
		"/auth/callback?state=y",
	} {
		w := httptest.NewRecorder()
		handlers.Callback(w, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, "target %s", target)
		assert.Contains(t, w.Body.String(), "missing_parameters")
	}
}

func TestAuthHandlers_Callback_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"state mismatch", domainauth.ErrStateMismatch, http.StatusBadRequest, "invalid_state"},
		{"invalid grant", domainauth.ErrInvalidGrant, http.StatusBadRequest, "invalid_grant"},
		{"locked out", domainauth.ErrLoginLocked, http.StatusTooManyRequests, "login_locked"},
		{"inactive user", domainauth.ErrUserInactive, http.StatusForbidden, "user_inactive"},
		{"provider failure", domainauth.ErrProviderError, http.StatusBadGateway, "provider_error"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "login_completion_failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := &mockAuthService{
				completeLoginFunc: func(context.Context, service.CompleteLoginInput) (*service.CompleteLoginResult, error) {
					return nil, tt.err
				},
			}
			handlers := &AuthHandlers{Svc: mockSvc}

			w := httptest.NewRecorder()
			handlers.Callback(w, httptest.NewRequest(http.MethodGet, "/auth/callback?code=c&state=s", nil))

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)

			// No session cookie on any failure.
			resp := w.Result()
			defer resp.Body.Close()
			assert.Empty(t, resp.Cookies())
		})
	}
}

func TestAuthHandlers_Logout_ClearsCookieAndRedirects(t *testing.T) {
	var loggedOut string
	mockSvc := &mockAuthService{
		logoutFunc: func(_ context.Context, sessionID string) error {
			loggedOut = sessionID
			return nil
		},
	}
	handlers := &AuthHandlers{Svc: mockSvc}

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-1"})
	w := httptest.NewRecorder()

	handlers.Logout(w, req)

	assert.Equal(t, "sess-1", loggedOut)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	resp := w.Result()
	defer resp.Body.Close()
	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookieName, cookies[0].Name)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestAuthHandlers_Logout_WithoutSessionStillSucceeds(t *testing.T) {
	handlers := &AuthHandlers{Svc: &mockAuthService{}}

	w := httptest.NewRecorder()
	handlers.Logout(w, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	assert.Equal(t, http.StatusFound, w.Code)
}

func TestAuthHandlers_Logout_AJAX(t *testing.T) {
	handlers := &AuthHandlers{Svc: &mockAuthService{}}

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()

	handlers.Logout(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"success"`)
}

func TestAuthHandlers_Status_Authenticated(t *testing.T) {
	handlers := &AuthHandlers{Svc: &mockAuthService{}}

	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-1"})
	w := httptest.NewRecorder()

	handlers.Status(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":true`)
	assert.Contains(t, w.Body.String(), "test@utem.cl")
}

func TestAuthHandlers_Status_Anonymous(t *testing.T) {
	handlers := &AuthHandlers{Svc: &mockAuthService{}}

	w := httptest.NewRecorder()
	handlers.Status(w, httptest.NewRequest(http.MethodGet, "/auth/status", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
}

func TestAuthHandlers_Status_ExpiredSessionClearsCookie(t *testing.T) {
	mockSvc := &mockAuthService{
		getSessionFunc: func(context.Context, string) (*domainauth.Session, error) {
			return nil, domainauth.ErrSessionExpired
		},
	}
	handlers := &AuthHandlers{Svc: mockSvc}

	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "stale"})
	w := httptest.NewRecorder()

	handlers.Status(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)

	resp := w.Result()
	defer resp.Body.Close()
	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestAuthHandlers_Permissions(t *testing.T) {
	handlers := &AuthHandlers{Svc: &mockAuthService{}}

	sess := testSession("sess-1", time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/api/me/permissions", nil)
	req = req.WithContext(SetSessionInContext(req.Context(), &sess))
	w := httptest.NewRecorder()

	handlers.Permissions(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"student"`)
	assert.Contains(t, w.Body.String(), "view_courses")
}

func TestSafeRedirectPath(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "/"},
		{"/dashboard", "/dashboard"},
		{"/courses?tab=grades", "/courses?tab=grades"},
		{"https://evil.example.com/", "/"},
		{"//evil.example.com", "/"},
		{"relative/path", "/"},
		{"%%%", "/"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, safeRedirectPath(tt.input), "input %q", tt.input)
	}
}
