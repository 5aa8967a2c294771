package rbac

import (
	"errors"

	"github.com/taskforge-dev/taskforge/internal/models"
	"github.com/taskforge-dev/taskforge/pkg/logger"
	"gorm.io/gorm"
)

// Seed creates the default roles, permissions and grants. It is idempotent
// and safe to run on every startup; rows created by a concurrent instance
// are treated as already present.
func Seed(db *gorm.DB, log logger.Logger) error {
	permissionIDs := make(map[string]uint, len(seedPermissions))

	for _, seed := range seedPermissions {
		permission := models.Permission{
			Name:        seed.Name,
			Resource:    seed.Resource,
			Action:      seed.Action,
			Description: seed.Description,
		}

		err := db.Where(models.Permission{Name: seed.Name}).
			Attrs(permission).
			FirstOrCreate(&permission).Error

		if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}

		if permission.ID == 0 {
			if err := db.Where("name = ?", seed.Name).First(&permission).Error; err != nil {
				return err
			}
		}

		permissionIDs[seed.Name] = permission.ID
	}

	for roleName, grants := range seedRoleGrants {
		role := models.Role{
			Name:        roleName,
			Description: seedRoleDescriptions[roleName],
		}

		err := db.Where(models.Role{Name: roleName}).
			Attrs(role).
			FirstOrCreate(&role).Error

		if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}

		if role.ID == 0 {
			if err := db.Where("name = ?", roleName).First(&role).Error; err != nil {
				return err
			}
		}

		for _, permissionName := range grants {
			grant := models.RolePermission{
				RoleID:       role.ID,
				PermissionID: permissionIDs[permissionName],
			}

			err := db.Where(models.RolePermission{RoleID: grant.RoleID, PermissionID: grant.PermissionID}).
				FirstOrCreate(&grant).Error

			if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
				return err
			}
		}

		log.Info("seeded role", "role", roleName, "permissions", len(grants))
	}

	return nil
}
