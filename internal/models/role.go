package models

import "gorm.io/gorm"

// AdminRoleName is the reserved role name that bypasses ownership checks
// on tasks and projects. It does not bypass permission checks.
const AdminRoleName = "admin"

type Role struct {
	gorm.Model

	Name        string `gorm:"uniqueIndex;not null"`
	Description string

	// Relationships
	RolePermissions []RolePermission `gorm:"foreignKey:RoleID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	UserRoles       []UserRole       `gorm:"foreignKey:RoleID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
