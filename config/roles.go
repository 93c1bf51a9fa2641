package config

import "strings"

// RolesConfig is the configurable role-to-permission table and the
// domain-to-default-role mapping consulted when provisioning first-time
// logins. The institutional rules are configuration, not code: deployments
// supply their own domain suffixes and overrides.
type RolesConfig struct {
	// DomainRoles maps an email domain suffix to the default role assigned on
	// first login (e.g. "alumnos.utem.cl:student"). Domains not listed here
	// resolve to guest.
	DomainRoles map[string]string `env:"DOMAIN_ROLES" envDefault:"utem.cl:student,alumnos.utem.cl:student,profesores.utem.cl:professor" envSeparator:"," envKeyValSeparator:":"`

	// AdminEmails resolve to admin on first provisioning, ahead of the
	// domain rules.
	AdminEmails []string `env:"ADMIN_EMAILS" envSeparator:","`

	// ProfessorKeywords promote a recognized-domain student default to
	// professor when the email local part contains one of them.
	ProfessorKeywords []string `env:"PROFESSOR_KEYWORDS" envDefault:"prof,docente,academico" envSeparator:","`

	// Per-role permission sets. Defaults mirror the institutional table;
	// overrides must keep admin a superset of professor and student for any
	// overlapping capability.
	AdminPermissions     []string `env:"ADMIN_PERMISSIONS"     envDefault:"manage_users,manage_roles,manage_courses,manage_content,grade_assignments,view_grades,view_courses,view_analytics,export_data,submit_assignments,view_public_content" envSeparator:","`
	ProfessorPermissions []string `env:"PROFESSOR_PERMISSIONS" envDefault:"manage_courses,manage_content,grade_assignments,view_grades,view_courses,view_analytics,export_data,view_public_content"                           envSeparator:","`
	StudentPermissions   []string `env:"STUDENT_PERMISSIONS"   envDefault:"view_courses,view_grades,submit_assignments,view_public_content"                                                                                   envSeparator:","`
	GuestPermissions     []string `env:"GUEST_PERMISSIONS"     envDefault:"view_public_content"                                                                                                                               envSeparator:","`
}

// Sanitize normalizes domains, emails, and keywords to lowercase.
func (r *RolesConfig) Sanitize() {
	normalized := make(map[string]string, len(r.DomainRoles))
	for domain, role := range r.DomainRoles {
		normalized[strings.ToLower(strings.TrimSpace(domain))] = strings.ToLower(strings.TrimSpace(role))
	}
	r.DomainRoles = normalized
	for i, e := range r.AdminEmails {
		r.AdminEmails[i] = strings.ToLower(strings.TrimSpace(e))
	}
	for i, k := range r.ProfessorKeywords {
		r.ProfessorKeywords[i] = strings.ToLower(strings.TrimSpace(k))
	}
}
