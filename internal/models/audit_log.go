package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit actions recorded for RBAC and membership changes.
const (
	AuditRoleAssigned    = "role.assigned"
	AuditRoleRemoved     = "role.removed"
	AuditMemberAdded     = "project.member_added"
	AuditMemberRemoved   = "project.member_removed"
	AuditUserRoleChanged = "user.role_changed"
)

type AuditLog struct {
	gorm.Model

	ActorID    uint           `gorm:"not null;index"`
	Action     string         `gorm:"not null;index"`
	TargetType string         `gorm:"not null"`
	TargetID   uint           `gorm:"not null"`
	Details    datatypes.JSON `gorm:"type:jsonb"`
}
