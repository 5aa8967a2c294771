package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskforge-dev/taskforge/internal/models"
	"github.com/taskforge-dev/taskforge/pkg/logger"
)

func TestSeedCatalogGrants(t *testing.T) {
	testDB := setupTestDB(t)
	resolver := NewResolver(testDB)

	manager := createTestUser(t, testDB, "manager@example.com")
	assignRole(t, testDB, manager.ID, RoleManager)

	has, err := resolver.HasPermission(manager.ID, PermProjectManageMembers)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = resolver.HasPermission(manager.ID, PermUserManageRoles)
	require.NoError(t, err)
	assert.False(t, has)

	admin := createTestUser(t, testDB, "admin@example.com")
	assignRole(t, testDB, admin.ID, RoleAdmin)

	permissions, err := resolver.GetUserPermissions(admin.ID)
	require.NoError(t, err)
	assert.Len(t, permissions, len(seedPermissions))
}

func TestSeedIsIdempotent(t *testing.T) {
	testDB := setupTestDB(t)

	var rolesBefore, permissionsBefore, grantsBefore int64
	testDB.Model(&models.Role{}).Count(&rolesBefore)
	testDB.Model(&models.Permission{}).Count(&permissionsBefore)
	testDB.Model(&models.RolePermission{}).Count(&grantsBefore)

	require.NoError(t, Seed(testDB, logger.Nop()))

	var rolesAfter, permissionsAfter, grantsAfter int64
	testDB.Model(&models.Role{}).Count(&rolesAfter)
	testDB.Model(&models.Permission{}).Count(&permissionsAfter)
	testDB.Model(&models.RolePermission{}).Count(&grantsAfter)

	assert.Equal(t, rolesBefore, rolesAfter)
	assert.Equal(t, permissionsBefore, permissionsAfter)
	assert.Equal(t, grantsBefore, grantsAfter)
}
