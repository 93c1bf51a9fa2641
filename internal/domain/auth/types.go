package auth

// Package auth contains domain-level types for authentication, sessions, and
// role-based access control. It is pure and free of framework/adapter concerns.

import (
	"fmt"
	"strings"
	"time"
)

// Role represents an institutional authorization role.
// Keep string form for easy persistence and cookies.
// Valid values are defined as constants below.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleProfessor Role = "professor"
	RoleStudent   Role = "student"
	RoleGuest     Role = "guest"
)

// Roles lists every valid role, highest privilege first.
var Roles = []Role{RoleAdmin, RoleProfessor, RoleStudent, RoleGuest}

// ParseRole converts a stored/user-supplied string into a Role.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleProfessor, RoleStudent, RoleGuest:
		return r, nil
	default:
		return "", fmt.Errorf("invalid role: %q", s)
	}
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProfessor, RoleStudent, RoleGuest:
		return true
	}
	return false
}

// Permission is an atomic capability tag granted to roles.
type Permission string

// Capabilities gating Canvas dashboard views and administrative actions.
const (
	PermManageUsers       Permission = "manage_users"
	PermManageRoles       Permission = "manage_roles"
	PermManageCourses     Permission = "manage_courses"
	PermManageContent     Permission = "manage_content"
	PermGradeAssignments  Permission = "grade_assignments"
	PermViewGrades        Permission = "view_grades"
	PermViewCourses       Permission = "view_courses"
	PermViewAnalytics     Permission = "view_analytics"
	PermExportData        Permission = "export_data"
	PermSubmitAssignments Permission = "submit_assignments"
	PermViewPublicContent Permission = "view_public_content"
)

// Identity represents the authenticated principal returned by Google.
// The adapter maps provider claims into this shape; it is never persisted
// beyond the session unless promoted to a UserRecord.
type Identity struct {
	Email string
	Name  string
	// HostedDomain is the Google Workspace "hd" claim, when present. It names
	// the workspace the account belongs to and is distinct from the email
	// domain suffix used for role inference.
	HostedDomain string
	ExpiresAt    time.Time // absolute expiry from the provider token
}

// Domain returns the part of the identity email after '@', lowercased.
// Empty when the email is malformed.
func (i Identity) Domain() string {
	_, domain, ok := strings.Cut(i.Email, "@")
	if !ok || domain == "" {
		return ""
	}
	return strings.ToLower(domain)
}

// NormalizeEmail lowercases and trims an email address. The normalized form
// is the sole unique key of the user store.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserRecord is the durable identity-to-role mapping owned by the user store.
// Email is the normalized primary key. Records are never silently deleted;
// removal requires an explicit administrative action.
type UserRecord struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OAuthState is a pending login attempt. It is created by BeginLogin,
// consumed exactly once on callback, and expires after a bounded TTL.
type OAuthState struct {
	Token          string    `json:"token"`
	Nonce          string    `json:"nonce"`
	RedirectTarget string    `json:"redirect_target"`
	CreatedAt      time.Time `json:"created_at"`
}

// Session is the server-side record we persist for an authenticated user.
// ID is an opaque session identifier (random URL-safe string).
type Session struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session has expired at the given instant.
// The boundary is inclusive: a session whose ExpiresAt equals now is expired.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// IsGuest returns true if the session role is guest.
func (s Session) IsGuest() bool { return s.Role == RoleGuest }
