package rbac

import "github.com/taskforge-dev/taskforge/internal/models"

// Ownership policy: per-instance access rules evaluated against the
// resource's current persisted state, independent of and in addition to the
// permission gate. Admin status bypasses these checks.

// MembershipLookup resolves the acting user's membership in the resource's
// scope, returning the per-resource role and whether a membership exists.
// Resources without memberships (tasks) pass nil.
type MembershipLookup func(userID uint) (role string, member bool, err error)

// IsOwnerOrAdmin is the strictest predicate: owner update/delete on tasks
// and project deletion. Project MANAGER members do not pass it.
func IsOwnerOrAdmin(principal Principal, ownerID uint) bool {
	return principal.IsAdmin() || principal.ID == ownerID
}

// CanViewResource allows the admin, the owner, or any member.
func CanViewResource(principal Principal, ownerID uint, lookup MembershipLookup) (bool, error) {
	if IsOwnerOrAdmin(principal, ownerID) {
		return true, nil
	}

	if lookup == nil {
		return false, nil
	}

	_, member, err := lookup(principal.ID)

	if err != nil {
		return false, err
	}

	return member, nil
}

// CanManageResource allows the admin, the owner, or a MANAGER member.
func CanManageResource(principal Principal, ownerID uint, lookup MembershipLookup) (bool, error) {
	if IsOwnerOrAdmin(principal, ownerID) {
		return true, nil
	}

	if lookup == nil {
		return false, nil
	}

	role, member, err := lookup(principal.ID)

	if err != nil {
		return false, err
	}

	return member && role == models.ProjectRoleManager, nil
}
