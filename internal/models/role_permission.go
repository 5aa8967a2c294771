package models

import "time"

// No soft delete: the unique (role_id, permission_id) pair must be
// reusable after a grant is revoked.
type RolePermission struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	RoleID       uint `gorm:"not null;uniqueIndex:idx_role_permission"`
	PermissionID uint `gorm:"not null;uniqueIndex:idx_role_permission"`

	// Relationships
	Role       Role       `gorm:"foreignKey:RoleID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Permission Permission `gorm:"foreignKey:PermissionID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
