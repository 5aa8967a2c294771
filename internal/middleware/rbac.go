package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskforge-dev/taskforge/internal/apperrors"
	"github.com/taskforge-dev/taskforge/internal/rbac"
	"github.com/taskforge-dev/taskforge/internal/types"
	"github.com/taskforge-dev/taskforge/pkg/logger"
)

// Require returns a middleware enforcing the given Requirement before the
// handler runs. Denials are 403, a missing principal is 401, and a resolver
// failure is 500; the three are never collapsed into each other.
func Require(guard *rbac.Guard, log logger.Logger, requirement rbac.Requirement) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		value, exists := ctx.Get(types.ContextUserKey)

		if !exists {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		user, ok := value.(AuthenticatedUser)

		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		if err := guard.Check(user.Principal(), requirement); err != nil {
			status := apperrors.HTTPStatus(err)

			if status == http.StatusInternalServerError {
				log.Error("authorization check failed",
					"user_id", user.ID,
					"path", ctx.Request.URL.Path,
					"error", err,
				)
				ctx.AbortWithStatusJSON(status, gin.H{"error": "Internal server error"})
				return
			}

			log.Warn("access denied",
				"user_id", user.ID,
				"path", ctx.Request.URL.Path,
				"reason", err.Error(),
			)
			ctx.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
			return
		}

		ctx.Next()
	}
}
