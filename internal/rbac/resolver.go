package rbac

import (
	"github.com/taskforge-dev/taskforge/internal/apperrors"
	"github.com/taskforge-dev/taskforge/internal/models"
	"gorm.io/gorm"
)

// Resolver computes effective permissions from the user/role/permission
// associations. Every call performs a fresh read; there is no cache.
type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// GetUserPermissions returns the union of permission names granted by all
// roles assigned to the user. Duplicates across roles collapse to one entry.
func (r *Resolver) GetUserPermissions(userID uint) (map[string]bool, error) {
	if userID == 0 {
		return nil, apperrors.Validation("user id must be a positive integer")
	}

	var userRoles []models.UserRole

	err := r.db.
		Preload("Role.RolePermissions.Permission").
		Where("user_id = ?", userID).
		Find(&userRoles).Error

	if err != nil {
		return nil, apperrors.Internal("failed to resolve user permissions", err)
	}

	permissions := make(map[string]bool)

	for _, userRole := range userRoles {
		for _, rolePermission := range userRole.Role.RolePermissions {
			permissions[rolePermission.Permission.Name] = true
		}
	}

	return permissions, nil
}

func (r *Resolver) HasPermission(userID uint, name string) (bool, error) {
	if name == "" {
		return false, apperrors.Validation("permission name must not be empty")
	}

	permissions, err := r.GetUserPermissions(userID)

	if err != nil {
		return false, err
	}

	return permissions[name], nil
}

// HasAnyPermission reports whether the user holds at least one of the named
// permissions. An empty list is a caller error, never vacuously true or false.
func (r *Resolver) HasAnyPermission(userID uint, names []string) (bool, error) {
	if len(names) == 0 {
		return false, apperrors.Validation("permission list must not be empty")
	}

	permissions, err := r.GetUserPermissions(userID)

	if err != nil {
		return false, err
	}

	for _, name := range names {
		if permissions[name] {
			return true, nil
		}
	}

	return false, nil
}

// HasAllPermissions reports whether the user holds every named permission.
// An empty list is rejected the same way as in HasAnyPermission.
func (r *Resolver) HasAllPermissions(userID uint, names []string) (bool, error) {
	if len(names) == 0 {
		return false, apperrors.Validation("permission list must not be empty")
	}

	permissions, err := r.GetUserPermissions(userID)

	if err != nil {
		return false, err
	}

	for _, name := range names {
		if !permissions[name] {
			return false, nil
		}
	}

	return true, nil
}

// GetUserRoles returns the names of the RBAC roles assigned to the user.
func (r *Resolver) GetUserRoles(userID uint) ([]string, error) {
	if userID == 0 {
		return nil, apperrors.Validation("user id must be a positive integer")
	}

	var userRoles []models.UserRole

	err := r.db.
		Preload("Role").
		Where("user_id = ?", userID).
		Find(&userRoles).Error

	if err != nil {
		return nil, apperrors.Internal("failed to resolve user roles", err)
	}

	names := make([]string, 0, len(userRoles))

	for _, userRole := range userRoles {
		names = append(names, userRole.Role.Name)
	}

	return names, nil
}

func (r *Resolver) HasRole(userID uint, name string) (bool, error) {
	if name == "" {
		return false, apperrors.Validation("role name must not be empty")
	}

	roles, err := r.GetUserRoles(userID)

	if err != nil {
		return false, err
	}

	for _, role := range roles {
		if role == name {
			return true, nil
		}
	}

	return false, nil
}

func (r *Resolver) HasAnyRole(userID uint, names []string) (bool, error) {
	if len(names) == 0 {
		return false, apperrors.Validation("role list must not be empty")
	}

	roles, err := r.GetUserRoles(userID)

	if err != nil {
		return false, err
	}

	for _, role := range roles {
		for _, name := range names {
			if role == name {
				return true, nil
			}
		}
	}

	return false, nil
}
