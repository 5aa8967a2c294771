package rbac

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/taskforge-dev/taskforge/internal/models"
	"github.com/taskforge-dev/taskforge/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	err = testDB.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.UserRole{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.AuditLog{},
	)
	require.NoError(t, err)

	require.NoError(t, Seed(testDB, logger.Nop()))

	return testDB
}

func createTestUser(t *testing.T, testDB *gorm.DB, email string) models.User {
	t.Helper()

	user := models.User{
		Name:         email,
		Email:        email,
		PasswordHash: "x",
		Role:         models.DefaultUserRole,
	}
	require.NoError(t, testDB.Create(&user).Error)

	return user
}

func roleByName(t *testing.T, testDB *gorm.DB, name string) models.Role {
	t.Helper()

	var role models.Role
	require.NoError(t, testDB.Where("name = ?", name).First(&role).Error)

	return role
}

func assignRole(t *testing.T, testDB *gorm.DB, userID uint, roleName string) {
	t.Helper()

	role := roleByName(t, testDB, roleName)
	service := NewService(testDB, logger.Nop())
	require.NoError(t, service.AssignRoleToUser(userID, userID, role.ID))
}
