package rbac

import (
	"errors"

	"github.com/taskforge-dev/taskforge/internal/apperrors"
	"github.com/taskforge-dev/taskforge/internal/models"
	"github.com/taskforge-dev/taskforge/pkg/logger"
	"gorm.io/gorm"
)

// Service carries the role-administration operations: assigning and removing
// RBAC roles on users. Assignment is an idempotent upsert; removal of an
// assignment that was never made is NotFound. The asymmetry is deliberate.
type Service struct {
	db  *gorm.DB
	log logger.Logger
}

func NewService(db *gorm.DB, log logger.Logger) *Service {
	return &Service{db: db, log: log}
}

func (s *Service) AssignRoleToUser(actorID, userID, roleID uint) error {
	if userID == 0 || roleID == 0 {
		return apperrors.Validation("user id and role id must be positive integers")
	}

	var user models.User

	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("user not found")
		}
		return apperrors.Internal("failed to load user", err)
	}

	var role models.Role

	if err := s.db.First(&role, roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("role not found")
		}
		return apperrors.Internal("failed to load role", err)
	}

	assignment := models.UserRole{UserID: userID, RoleID: roleID}

	err := s.db.Where(models.UserRole{UserID: userID, RoleID: roleID}).
		FirstOrCreate(&assignment).Error

	if err != nil {
		// A concurrent duplicate attempt hits the unique pair index; the
		// assignment exists, which is the state we wanted.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return apperrors.Internal("failed to assign role", err)
	}

	RecordAudit(s.db, s.log, actorID, models.AuditRoleAssigned, "user", userID, map[string]interface{}{
		"role_id":   roleID,
		"role_name": role.Name,
	})

	return nil
}

func (s *Service) RemoveRoleFromUser(actorID, userID, roleID uint) error {
	if userID == 0 || roleID == 0 {
		return apperrors.Validation("user id and role id must be positive integers")
	}

	var user models.User

	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("user not found")
		}
		return apperrors.Internal("failed to load user", err)
	}

	var role models.Role

	if err := s.db.First(&role, roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("role not found")
		}
		return apperrors.Internal("failed to load role", err)
	}

	result := s.db.Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&models.UserRole{})

	if result.Error != nil {
		return apperrors.Internal("failed to remove role", result.Error)
	}

	if result.RowsAffected == 0 {
		return apperrors.NotFound("role assignment not found")
	}

	RecordAudit(s.db, s.log, actorID, models.AuditRoleRemoved, "user", userID, map[string]interface{}{
		"role_id":   roleID,
		"role_name": role.Name,
	})

	return nil
}
