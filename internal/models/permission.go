package models

import "gorm.io/gorm"

// Permission names follow the "<resource>:<action>" convention, e.g.
// "task:create" or "project:manage_members". The name, not the numeric id,
// is what authorization checks compare against.
type Permission struct {
	gorm.Model

	Name        string `gorm:"uniqueIndex;not null"`
	Resource    string `gorm:"not null"`
	Action      string `gorm:"not null"`
	Description string

	// Relationships
	RolePermissions []RolePermission `gorm:"foreignKey:PermissionID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
