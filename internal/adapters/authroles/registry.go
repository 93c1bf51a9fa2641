package authroles

// Package authroles implements the static role registry: the authority on
// which permissions each role grants and which default role a first-time
// login receives. The concrete tables come from configuration.

import (
	"fmt"
	"strings"

	"github.com/utem-ti/canvas-auth/config"
	domainauth "github.com/utem-ti/canvas-auth/internal/domain/auth"
)

// Registry maps roles to permission sets and email domains to default roles.
// It is immutable after construction and safe for concurrent use.
type Registry struct {
	permissions map[domainauth.Role][]domainauth.Permission
	permIndex   map[domainauth.Role]map[domainauth.Permission]struct{}

	domainRoles       map[string]domainauth.Role
	adminEmails       map[string]struct{}
	professorKeywords []string
}

// NewRegistry builds a Registry from configuration. It fails when a role is
// left without permissions or when the admin set does not cover a capability
// granted to professor or student (escalation must stay monotonic).
func NewRegistry(cfg config.RolesConfig) (*Registry, error) {
	perms := map[domainauth.Role][]domainauth.Permission{
		domainauth.RoleAdmin:     toPermissions(cfg.AdminPermissions),
		domainauth.RoleProfessor: toPermissions(cfg.ProfessorPermissions),
		domainauth.RoleStudent:   toPermissions(cfg.StudentPermissions),
		domainauth.RoleGuest:     toPermissions(cfg.GuestPermissions),
	}

	index := make(map[domainauth.Role]map[domainauth.Permission]struct{}, len(perms))
	for role, set := range perms {
		if len(set) == 0 {
			return nil, fmt.Errorf("role %q has an empty permission set", role)
		}
		m := make(map[domainauth.Permission]struct{}, len(set))
		for _, p := range set {
			m[p] = struct{}{}
		}
		index[role] = m
	}

	for _, lower := range []domainauth.Role{domainauth.RoleProfessor, domainauth.RoleStudent} {
		for p := range index[lower] {
			if _, ok := index[domainauth.RoleAdmin][p]; !ok {
				return nil, fmt.Errorf("admin permissions must include %q granted to %q", p, lower)
			}
		}
	}

	domainRoles := make(map[string]domainauth.Role, len(cfg.DomainRoles))
	for domain, roleStr := range cfg.DomainRoles {
		role, err := domainauth.ParseRole(roleStr)
		if err != nil {
			return nil, fmt.Errorf("domain %q: %w", domain, err)
		}
		domainRoles[strings.ToLower(domain)] = role
	}

	admins := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, e := range cfg.AdminEmails {
		admins[domainauth.NormalizeEmail(e)] = struct{}{}
	}

	return &Registry{
		permissions:       perms,
		permIndex:         index,
		domainRoles:       domainRoles,
		adminEmails:       admins,
		professorKeywords: cfg.ProfessorKeywords,
	}, nil
}

// PermissionsFor returns the configured permission set for the role.
// The Role enumeration is closed; an unknown role here is a programming
// error and panics rather than silently granting or denying.
func (r *Registry) PermissionsFor(role domainauth.Role) []domainauth.Permission {
	set, ok := r.permissions[role]
	if !ok {
		panic(fmt.Sprintf("authroles: unknown role %q", role))
	}
	out := make([]domainauth.Permission, len(set))
	copy(out, set)
	return out
}

// Authorize reports whether the role holds the permission.
func (r *Registry) Authorize(role domainauth.Role, perm domainauth.Permission) bool {
	set, ok := r.permIndex[role]
	if !ok {
		return false
	}
	_, ok = set[perm]
	return ok
}

// InferRole resolves the role for an authenticated identity. An existing
// record's stored role is authoritative (explicit administrative assignment
// wins). Otherwise the configured admin emails and domain suffix rules are
// consulted; an unrecognized domain yields guest. Pure: no side effects.
func (r *Registry) InferRole(identity domainauth.Identity, existing *domainauth.UserRecord) domainauth.Role {
	if existing != nil && existing.Role.Valid() {
		return existing.Role
	}

	email := domainauth.NormalizeEmail(identity.Email)
	if _, ok := r.adminEmails[email]; ok {
		return domainauth.RoleAdmin
	}

	role, ok := r.domainRoles[identity.Domain()]
	if !ok {
		return domainauth.RoleGuest
	}

	// Recognized-domain students can be promoted by local-part keywords
	// ("prof", "docente", ...), mirroring institutional account naming.
	if role == domainauth.RoleStudent {
		local, _, _ := strings.Cut(email, "@")
		for _, kw := range r.professorKeywords {
			if kw != "" && strings.Contains(local, kw) {
				return domainauth.RoleProfessor
			}
		}
	}

	return role
}

func toPermissions(raw []string) []domainauth.Permission {
	out := make([]domainauth.Permission, 0, len(raw))
	for _, s := range raw {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		out = append(out, domainauth.Permission(s))
	}
	return out
}
