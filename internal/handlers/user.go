package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskforge-dev/taskforge/db"
	"github.com/taskforge-dev/taskforge/internal/models"
	"github.com/taskforge-dev/taskforge/internal/rbac"
	"github.com/taskforge-dev/taskforge/internal/types"
	"github.com/taskforge-dev/taskforge/internal/utils"
	"gorm.io/gorm"
)

type UpdateUserRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func userResponse(user models.User) types.UserResponse {
	return types.UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
		Role:      user.Role,
	}
}

func ListUsers(ctx *gin.Context) {
	var users []models.User

	if err := db.DB.Order("id").Find(&users).Error; err != nil {
		log.Error("failed to list users", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	response := make([]types.UserResponse, 0, len(users))

	for _, user := range users {
		response = append(response, userResponse(user))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetUser(ctx *gin.Context) {
	userID, err := utils.GetIDParam(ctx, "user_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			log.Error("failed to fetch user", "user_id", userID, "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	resolver := rbac.NewResolver(db.DB)

	roles, err := resolver.GetUserRoles(user.ID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user":  userResponse(user),
		"roles": roles,
	})
}

// UpdateUserRole reassigns the legacy single-string role field.
func UpdateUserRole(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	userID, err := utils.GetIDParam(ctx, "user_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body UpdateUserRoleRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			log.Error("failed to fetch user", "user_id", userID, "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	previousRole := user.Role

	if err := db.DB.Model(&user).Update("role", body.Role).Error; err != nil {
		log.Error("failed to update user role", "user_id", user.ID, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	rbac.RecordAudit(db.DB, log, currentUser.ID, models.AuditUserRoleChanged, "user", user.ID, map[string]interface{}{
		"previous_role": previousRole,
		"new_role":      body.Role,
	})

	user.Role = body.Role

	ctx.JSON(http.StatusOK, gin.H{"user": userResponse(user)})
}

func AssignRole(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	userID, err := utils.GetIDParam(ctx, "user_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	roleID, err := utils.GetIDParam(ctx, "role_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	service := rbac.NewService(db.DB, log)

	if err := service.AssignRoleToUser(currentUser.ID, userID, roleID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Role assigned"})
}

func RemoveRole(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	userID, err := utils.GetIDParam(ctx, "user_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	roleID, err := utils.GetIDParam(ctx, "role_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	service := rbac.NewService(db.DB, log)

	if err := service.RemoveRoleFromUser(currentUser.ID, userID, roleID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Role removed"})
}

func ListRoles(ctx *gin.Context) {
	var roles []models.Role

	if err := db.DB.Order("id").Find(&roles).Error; err != nil {
		log.Error("failed to list roles", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	response := make([]types.RoleResponse, 0, len(roles))

	for _, role := range roles {
		response = append(response, types.RoleResponse{
			ID:          role.ID,
			Name:        role.Name,
			Description: role.Description,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func ListPermissions(ctx *gin.Context) {
	var permissions []models.Permission

	if err := db.DB.Order("id").Find(&permissions).Error; err != nil {
		log.Error("failed to list permissions", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	response := make([]types.PermissionResponse, 0, len(permissions))

	for _, permission := range permissions {
		response = append(response, types.PermissionResponse{
			ID:          permission.ID,
			Name:        permission.Name,
			Resource:    permission.Resource,
			Action:      permission.Action,
			Description: permission.Description,
		})
	}

	ctx.JSON(http.StatusOK, response)
}
