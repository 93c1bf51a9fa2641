package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/utem-ti/canvas-auth/internal/domain/auth"
	"github.com/utem-ti/canvas-auth/internal/service"
)

// RouterServices holds the services needed by the HTTP router.
type RouterServices struct {
	Auth         *service.AuthService
	Users        *service.UserService
	CookieDomain string
	Logger       *slog.Logger
}

// NewRouter creates and configures a new HTTP router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	if services.Auth != nil {
		authHandlers := &AuthHandlers{
			Svc:          services.Auth,
			CookieDomain: services.CookieDomain,
			Logger:       logger,
		}
		registerAuthRoutes(mux, authHandlers)

		if services.Users != nil {
			registerUserRoutes(mux, &UserHandlers{Svc: services.Users}, services.Auth)
		}
	}

	var handler http.Handler = mux
	handler = Recover(logger)(handler)
	handler = Logging(logger)(handler)
	return handler
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.Handle("GET /auth/login", http.HandlerFunc(h.Login))
	mux.Handle("GET /auth/callback", http.HandlerFunc(h.Callback))
	mux.Handle("POST /auth/logout", http.HandlerFunc(h.Logout))
	mux.Handle("GET /auth/status", http.HandlerFunc(h.Status))
	mux.Handle("GET /api/me/permissions", RequireAuth(h.Svc)(http.HandlerFunc(h.Permissions)))
}

func registerUserRoutes(mux *http.ServeMux, h *UserHandlers, authSvc AuthServiceInterface) {
	manageUsers := RequirePermission(authSvc, domainauth.PermManageUsers)
	mux.Handle("GET /api/users", manageUsers(http.HandlerFunc(h.List)))
	mux.Handle("POST /api/users", manageUsers(http.HandlerFunc(h.Create)))
	mux.Handle("GET /api/users/{email}", manageUsers(http.HandlerFunc(h.Get)))
	mux.Handle("DELETE /api/users/{email}", manageUsers(http.HandlerFunc(h.Delete)))
	mux.Handle("PUT /api/users/{email}/role", manageUsers(http.HandlerFunc(h.SetRole)))
	mux.Handle("PUT /api/users/{email}/active", manageUsers(http.HandlerFunc(h.SetActive)))
}
