package rbac

import "github.com/taskforge-dev/taskforge/internal/models"

// Principal is the authenticated actor on a request. LegacyRole comes from
// the user row's single-string role field; TokenRoles is the role claim
// carried by the verified token. The two are independent fact sources and
// both feed the admin predicate.
type Principal struct {
	ID         uint
	Email      string
	LegacyRole string
	TokenRoles []string
}

// IsAdmin reports whether the principal holds admin status through either
// the legacy role field or an RBAC role named "admin". Admin status bypasses
// ownership checks only; permission checks still apply.
func (p Principal) IsAdmin() bool {
	if p.LegacyRole == models.AdminRoleName {
		return true
	}

	for _, role := range p.TokenRoles {
		if role == models.AdminRoleName {
			return true
		}
	}

	return false
}

// Roles returns the combined, deduplicated role list used by legacy
// role-based checks.
func (p Principal) Roles() []string {
	seen := make(map[string]bool, len(p.TokenRoles)+1)
	roles := make([]string, 0, len(p.TokenRoles)+1)

	if p.LegacyRole != "" && !seen[p.LegacyRole] {
		seen[p.LegacyRole] = true
		roles = append(roles, p.LegacyRole)
	}

	for _, role := range p.TokenRoles {
		if role != "" && !seen[role] {
			seen[role] = true
			roles = append(roles, role)
		}
	}

	return roles
}

// HasAnyRole reports whether the given list intersects the principal's
// combined role list, which widens the token claim with the legacy role
// read fresh from the user row.
func (p Principal) HasAnyRole(names []string) bool {
	for _, role := range p.Roles() {
		for _, name := range names {
			if role == name {
				return true
			}
		}
	}

	return false
}
