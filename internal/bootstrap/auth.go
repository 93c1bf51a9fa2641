package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
	"github.com/utem-ti/canvas-auth/config"
	"github.com/utem-ti/canvas-auth/internal/adapters/authroles"
	"github.com/utem-ti/canvas-auth/internal/adapters/devauth"
	"github.com/utem-ti/canvas-auth/internal/adapters/googleoidc"
	redisadapter "github.com/utem-ti/canvas-auth/internal/adapters/redis"
	"github.com/utem-ti/canvas-auth/internal/data"
	"github.com/utem-ti/canvas-auth/internal/ports"
	"github.com/utem-ti/canvas-auth/internal/service"
)

// ServiceContainer holds the constructed application services.
type ServiceContainer struct {
	Auth  *service.AuthService
	Users *service.UserService
}

// ServicesConfig contains the dependencies for BuildServices.
type ServicesConfig struct {
	Config *config.AppConfig
	DB     *sql.DB
	Redis  goredis.UniversalClient
	Logger *slog.Logger
}

// BuildServices wires adapters and services from configuration. The auth
// provider is chosen by AUTH_MODE: "google" runs the real OAuth flow,
// "mock" short-circuits it for local development.
func BuildServices(ctx context.Context, cfg ServicesConfig) (ServiceContainer, error) {
	appCfg := cfg.Config
	if appCfg == nil {
		return ServiceContainer{}, fmt.Errorf("app config is required")
	}

	provider, err := buildAuthProvider(ctx, appCfg)
	if err != nil {
		return ServiceContainer{}, err
	}

	registry, err := authroles.NewRegistry(appCfg.Roles)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build role registry: %w", err)
	}

	users := data.NewUserRepo(cfg.DB)

	authSvc := service.NewAuthService(service.AuthServiceOptions{
		Provider:   provider,
		States:     redisadapter.NewStateStore(cfg.Redis, appCfg.Auth.StateTTL),
		Sessions:   redisadapter.NewSessionStore(cfg.Redis),
		Users:      users,
		Roles:      registry,
		Limiter:    redisadapter.NewLoginLimiter(cfg.Redis, appCfg.Auth.MaxLoginAttempts, appCfg.Auth.LockoutDuration),
		SessionTTL: appCfg.Auth.SessionTTL,
	})

	userSvc := service.NewUserService(service.UserServiceOptions{
		Users:           users,
		Roles:           registry,
		ProtectedEmails: appCfg.Roles.AdminEmails,
	})

	if cfg.Logger != nil {
		cfg.Logger.Info("auth services ready", "mode", string(appCfg.Auth.Mode))
	}

	return ServiceContainer{Auth: authSvc, Users: userSvc}, nil
}

//nolint:ireturn // the provider implementation depends on AUTH_MODE.
func buildAuthProvider(ctx context.Context, appCfg *config.AppConfig) (ports.AuthProvider, error) {
	switch appCfg.Auth.Mode {
	case config.AuthModeMock:
		provider, err := devauth.NewProvider(devauth.Config{
			Email: appCfg.Auth.DevAuth.Email,
			Name:  appCfg.Auth.DevAuth.Name,
		})
		if err != nil {
			return nil, fmt.Errorf("build dev auth provider: %w", err)
		}
		return provider, nil
	case config.AuthModeGoogle:
		provider, err := googleoidc.NewProvider(ctx, googleoidc.ProviderConfig{
			ClientID:     appCfg.Auth.OAuth.ClientID,
			ClientSecret: appCfg.Auth.OAuth.ClientSecret,
			RedirectURL:  appCfg.Auth.OAuth.RedirectURL,
			Scope:        appCfg.Auth.OAuth.Scope,
			IssuerURL:    appCfg.Auth.OAuth.IssuerURL,
			HostedDomain: appCfg.Auth.OAuth.HostedDomain,
			Timeout:      appCfg.Auth.OAuth.RequestTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("build google provider: %w", err)
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", appCfg.Auth.Mode)
	}
}
