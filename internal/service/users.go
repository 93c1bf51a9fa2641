package service

import (
	"context"
	"fmt"
	"strings"

	domainauth "github.com/utem-ti/canvas-auth/internal/domain/auth"
	apperrors "github.com/utem-ti/canvas-auth/internal/errors"
	"github.com/utem-ti/canvas-auth/internal/ports"
)

// UserServiceOptions groups dependencies for UserService.
type UserServiceOptions struct {
	Users ports.UserStore
	Roles ports.RoleRegistry

	// ProtectedEmails cannot be deleted, demoted, or deactivated. Seeded
	// from the configured admin emails.
	ProtectedEmails []string
}

// UserService exposes the administrative user operations. Callers are
// expected to have passed a manage_users authorization check already.
type UserService struct {
	users     ports.UserStore
	roles     ports.RoleRegistry
	protected map[string]struct{}
}

// NewUserService constructs a new UserService.
func NewUserService(opts UserServiceOptions) *UserService {
	protected := make(map[string]struct{}, len(opts.ProtectedEmails))
	for _, e := range opts.ProtectedEmails {
		protected[domainauth.NormalizeEmail(e)] = struct{}{}
	}
	return &UserService{
		users:     opts.Users,
		roles:     opts.Roles,
		protected: protected,
	}
}

// List returns every user record.
func (s *UserService) List(ctx context.Context) ([]domainauth.UserRecord, error) {
	return s.users.List(ctx)
}

// Get returns the record for the email. NotFound when absent.
func (s *UserService) Get(ctx context.Context, email string) (*domainauth.UserRecord, error) {
	return s.users.Get(ctx, domainauth.NormalizeEmail(email))
}

// CreateUserInput groups parameters for Create.
type CreateUserInput struct {
	Email string
	Name  string
	Role  domainauth.Role
}

// Create registers a user ahead of their first login. The email domain must
// resolve to a non-guest role under the configured mapping; unknown domains
// are rejected rather than silently provisioned as guests.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*domainauth.UserRecord, error) {
	email := domainauth.NormalizeEmail(input.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.ValidationField("email", "a valid email is required")
	}

	inferred := s.roles.InferRole(domainauth.Identity{Email: email}, nil)
	if inferred == domainauth.RoleGuest {
		return nil, apperrors.ValidationField("email", "email domain is not authorized")
	}

	role := input.Role
	if role == "" {
		role = inferred
	}
	if !role.Valid() {
		return nil, apperrors.ValidationField("role", "invalid role")
	}

	if _, err := s.users.Get(ctx, email); err == nil {
		return nil, apperrors.Conflict("user already exists")
	} else if !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	return s.users.Upsert(ctx, &domainauth.UserRecord{
		Email:  email,
		Name:   strings.TrimSpace(input.Name),
		Role:   role,
		Active: true,
	})
}

// SetRole changes an existing user's role. Protected admins cannot be
// demoted.
func (s *UserService) SetRole(ctx context.Context, email string, role domainauth.Role) error {
	email = domainauth.NormalizeEmail(email)
	if !role.Valid() {
		return apperrors.ValidationField("role", "invalid role")
	}
	if s.isProtected(email) && role != domainauth.RoleAdmin {
		return apperrors.Validation("cannot demote a protected administrator")
	}
	return s.users.SetRole(ctx, email, role)
}

// SetActive flips a user's active flag. Protected admins stay active.
func (s *UserService) SetActive(ctx context.Context, email string, active bool) error {
	email = domainauth.NormalizeEmail(email)
	if s.isProtected(email) && !active {
		return apperrors.Validation("cannot deactivate a protected administrator")
	}
	return s.users.SetActive(ctx, email, active)
}

// Delete removes a user record. Records are only ever removed through this
// explicit administrative action; protected admins cannot be removed.
func (s *UserService) Delete(ctx context.Context, email string) error {
	email = domainauth.NormalizeEmail(email)
	if s.isProtected(email) {
		return apperrors.Validation("cannot delete a protected administrator")
	}
	return s.users.Delete(ctx, email)
}

func (s *UserService) isProtected(email string) bool {
	_, ok := s.protected[email]
	return ok
}
