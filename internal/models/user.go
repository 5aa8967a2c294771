package models

import "gorm.io/gorm"

const DefaultUserRole = "user"

type User struct {
	gorm.Model

	Name         string
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	AvatarURL    string
	// Legacy single-role field, kept alongside the RBAC user_roles
	// association. Authorization consults both.
	Role string `gorm:"not null;default:user"`

	// Relationships
	Tasks          []Task          `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	OwnedProjects  []Project       `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	ProjectMembers []ProjectMember `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	UserRoles      []UserRole      `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
