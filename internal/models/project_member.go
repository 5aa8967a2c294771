package models

import "time"

// Per-project membership roles. A MANAGER member has elevated control over
// that one project, independent of the global RBAC "manager" role.
const (
	ProjectRoleMember  = "MEMBER"
	ProjectRoleManager = "MANAGER"
)

// No soft delete: a removed member must be re-addable without tripping the
// unique (project_id, user_id) pair.
type ProjectMember struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ProjectID uint   `gorm:"not null;uniqueIndex:idx_project_member"`
	UserID    uint   `gorm:"not null;uniqueIndex:idx_project_member"`
	Role      string `gorm:"not null;default:MEMBER"`

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
