package rbac

import "github.com/taskforge-dev/taskforge/internal/apperrors"

// Requirement is the access declaration attached to a protected operation
// at route registration. Empty fields are absent categories. When more than
// one category is declared, every declared category must pass independently.
type Requirement struct {
	// Roles is the legacy role gate: the principal's combined role list
	// (token claim plus the user row's legacy role) must intersect it.
	Roles []string
	// AnyPermissions passes when the principal holds at least one.
	AnyPermissions []string
	// AllPermissions passes only when the principal holds every one.
	AllPermissions []string
}

func (r Requirement) IsZero() bool {
	return len(r.Roles) == 0 && len(r.AnyPermissions) == 0 && len(r.AllPermissions) == 0
}

// Guard evaluates Requirements against a Principal using the Resolver.
type Guard struct {
	resolver *Resolver
}

func NewGuard(resolver *Resolver) *Guard {
	return &Guard{resolver: resolver}
}

// Check returns nil when access is allowed. A missing or non-positive
// principal id fails as Unauthenticated, a policy denial as Forbidden, and
// a resolver failure propagates as Internal so "denied" is never confused
// with "broken".
func (g *Guard) Check(principal Principal, requirement Requirement) error {
	if requirement.IsZero() {
		return nil
	}

	if principal.ID == 0 {
		return apperrors.Unauthenticated("user not authenticated")
	}

	if len(requirement.Roles) > 0 {
		if !principal.HasAnyRole(requirement.Roles) {
			return apperrors.Forbidden("you do not have permission (roles)")
		}
	}

	if len(requirement.AnyPermissions) > 0 {
		allowed, err := g.resolver.HasAnyPermission(principal.ID, requirement.AnyPermissions)
		if err != nil {
			return err
		}
		if !allowed {
			return apperrors.Forbidden("insufficient permissions")
		}
	}

	if len(requirement.AllPermissions) > 0 {
		allowed, err := g.resolver.HasAllPermissions(principal.ID, requirement.AllPermissions)
		if err != nil {
			return err
		}
		if !allowed {
			return apperrors.Forbidden("insufficient permissions")
		}
	}

	return nil
}
