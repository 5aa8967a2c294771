package rbac

import (
	"encoding/json"

	"github.com/taskforge-dev/taskforge/internal/models"
	"github.com/taskforge-dev/taskforge/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RecordAudit writes an audit row for an RBAC or membership change. Audit
// failures are logged but never fail the operation they describe.
func RecordAudit(db *gorm.DB, log logger.Logger, actorID uint, action, targetType string, targetID uint, details map[string]interface{}) {
	var payload datatypes.JSON

	if details != nil {
		encoded, err := json.Marshal(details)
		if err != nil {
			log.Warn("failed to encode audit details", "action", action, "error", err)
		} else {
			payload = datatypes.JSON(encoded)
		}
	}

	entry := models.AuditLog{
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    payload,
	}

	if err := db.Create(&entry).Error; err != nil {
		log.Warn("failed to write audit log", "action", action, "target_id", targetID, "error", err)
	}
}
