package models

import "time"

// No soft delete on association rows: a removed assignment must free the
// unique (user_id, role_id) pair for re-assignment.
type UserRole struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	UserID uint `gorm:"not null;uniqueIndex:idx_user_role"`
	RoleID uint `gorm:"not null;uniqueIndex:idx_user_role"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Role Role `gorm:"foreignKey:RoleID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
