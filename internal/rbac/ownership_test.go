package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskforge-dev/taskforge/internal/models"
)

func staticMembership(role string, member bool) MembershipLookup {
	return func(userID uint) (string, bool, error) {
		return role, member, nil
	}
}

func TestIsOwnerOrAdmin(t *testing.T) {
	owner := Principal{ID: 1, LegacyRole: "user"}
	other := Principal{ID: 2, LegacyRole: "user"}
	legacyAdmin := Principal{ID: 3, LegacyRole: "admin"}
	rbacAdmin := Principal{ID: 4, LegacyRole: "user", TokenRoles: []string{"admin"}}

	assert.True(t, IsOwnerOrAdmin(owner, 1))
	assert.False(t, IsOwnerOrAdmin(other, 1))

	// Admin status through either fact source bypasses ownership.
	assert.True(t, IsOwnerOrAdmin(legacyAdmin, 1))
	assert.True(t, IsOwnerOrAdmin(rbacAdmin, 1))
}

// Holding the global task:update permission does not substitute for the
// ownership gate; the two are independent and both must pass.
func TestOwnershipIndependentOfPermissions(t *testing.T) {
	testDB := setupTestDB(t)
	resolver := NewResolver(testDB)

	user := createTestUser(t, testDB, "independent@example.com")
	assignRole(t, testDB, user.ID, RoleUser)

	has, err := resolver.HasPermission(user.ID, PermTaskUpdate)
	require.NoError(t, err)
	assert.True(t, has)

	principal := Principal{ID: user.ID, LegacyRole: "user"}
	assert.False(t, IsOwnerOrAdmin(principal, user.ID+1))
}

func TestCanViewResource(t *testing.T) {
	owner := Principal{ID: 1, LegacyRole: "user"}
	member := Principal{ID: 2, LegacyRole: "user"}
	stranger := Principal{ID: 3, LegacyRole: "user"}
	admin := Principal{ID: 4, LegacyRole: "admin"}

	allowed, err := CanViewResource(owner, 1, staticMembership("", false))
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = CanViewResource(member, 1, staticMembership(models.ProjectRoleMember, true))
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = CanViewResource(stranger, 1, staticMembership("", false))
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = CanViewResource(admin, 1, staticMembership("", false))
	require.NoError(t, err)
	assert.True(t, allowed)

	// Resources without memberships (tasks) pass a nil lookup.
	allowed, err = CanViewResource(stranger, 1, nil)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestCanManageResource(t *testing.T) {
	manager := Principal{ID: 2, LegacyRole: "user"}
	member := Principal{ID: 3, LegacyRole: "user"}

	allowed, err := CanManageResource(manager, 1, staticMembership(models.ProjectRoleManager, true))
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = CanManageResource(member, 1, staticMembership(models.ProjectRoleMember, true))
	require.NoError(t, err)
	assert.False(t, allowed)
}

// A MANAGER member can manage the project but not delete it; deletion is
// owner-or-admin only.
func TestManagerCannotDelete(t *testing.T) {
	manager := Principal{ID: 2, LegacyRole: "user"}

	allowed, err := CanManageResource(manager, 1, staticMembership(models.ProjectRoleManager, true))
	require.NoError(t, err)
	assert.True(t, allowed)

	assert.False(t, IsOwnerOrAdmin(manager, 1))
}
