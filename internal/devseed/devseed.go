package devseed

// Package devseed provisions deterministic development data so a fresh
// environment is usable immediately: configured admin emails and the mock
// auth identity get active admin records ahead of their first login.

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/utem-ti/canvas-auth/internal/data"
	domainauth "github.com/utem-ti/canvas-auth/internal/domain/auth"
	apperrors "github.com/utem-ti/canvas-auth/internal/errors"
	"github.com/utem-ti/canvas-auth/internal/ports"
)

// Services bundles the dependencies needed for development seeding.
type Services struct {
	Users ports.UserStore
}

// NewServices constructs the seeding dependencies from the provided DB.
func NewServices(db *sql.DB) Services {
	return Services{Users: data.NewUserRepo(db)}
}

// Config lists the identities to seed.
type Config struct {
	// AdminEmails become active admin records when absent.
	AdminEmails []string

	// DevUser is the mock auth identity; seeded as admin so a mock-mode
	// login can exercise the administrative API.
	DevUserEmail string
	DevUserName  string
}

// Run executes the development seeding workflow. Existing records are left
// untouched; seeding failures are logged and skipped.
func Run(ctx context.Context, svcs Services, cfg Config, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	seeds := make([]domainauth.UserRecord, 0, len(cfg.AdminEmails)+1)
	for _, email := range cfg.AdminEmails {
		seeds = append(seeds, domainauth.UserRecord{
			Email:  email,
			Role:   domainauth.RoleAdmin,
			Active: true,
		})
	}
	if cfg.DevUserEmail != "" {
		seeds = append(seeds, domainauth.UserRecord{
			Email:  cfg.DevUserEmail,
			Name:   cfg.DevUserName,
			Role:   domainauth.RoleAdmin,
			Active: true,
		})
	}

	for _, rec := range seeds {
		if err := seedUser(ctx, svcs.Users, rec, logger); err != nil {
			logger.WarnContext(ctx, "dev seed failed", "email", rec.Email, "error", err)
		}
	}

	return nil
}

func seedUser(ctx context.Context, users ports.UserStore, rec domainauth.UserRecord, logger *slog.Logger) error {
	email := domainauth.NormalizeEmail(rec.Email)
	if email == "" {
		return nil
	}

	if _, err := users.Get(ctx, email); err == nil {
		// Already provisioned; never overwrite an administrative assignment.
		return nil
	} else if !apperrors.IsNotFound(err) {
		return err
	}

	rec.Email = email
	if _, err := users.Upsert(ctx, &rec); err != nil {
		return err
	}

	logger.InfoContext(ctx, "seeded dev user", "email", email, "role", string(rec.Role))
	return nil
}
