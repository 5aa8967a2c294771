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

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type AddMemberRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	Role   string `json:"role"`
}

func validProjectStatus(status string) bool {
	switch status {
	case models.ProjectStatusActive, models.ProjectStatusCompleted, models.ProjectStatusArchived:
		return true
	}
	return false
}

func validMemberRole(role string) bool {
	return role == models.ProjectRoleMember || role == models.ProjectRoleManager
}

func projectResponse(project models.Project) types.ProjectResponse {
	return types.ProjectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Status:      project.Status,
		OwnerID:     project.OwnerID,
	}
}

func fetchProject(ctx *gin.Context, projectID uint) (models.Project, bool) {
	var project models.Project

	if err := db.DB.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			log.Error("failed to fetch project", "project_id", projectID, "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return models.Project{}, false
	}

	return project, true
}

func CreateProject(ctx *gin.Context) {
	var body CreateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	project := models.Project{
		Name:        body.Name,
		Description: body.Description,
		Status:      models.ProjectStatusActive,
		OwnerID:     userID,
	}

	if err := db.DB.Create(&project).Error; err != nil {
		log.Error("failed to create project", "user_id", userID, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusCreated, projectResponse(project))
}

// ListProjects spans every project for an admin; everyone else sees the
// union of projects they own and projects they are a member of.
func ListProjects(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var projects []models.Project

	query := db.DB

	if !currentUser.Principal().IsAdmin() {
		query = query.
			Joins("LEFT JOIN project_members ON project_members.project_id = projects.id AND project_members.user_id = ?", currentUser.ID).
			Where("projects.owner_id = ? OR project_members.id IS NOT NULL", currentUser.ID).
			Distinct("projects.*")
	}

	if err := query.Order("projects.created_at DESC").Find(&projects).Error; err != nil {
		log.Error("failed to list projects", "user_id", currentUser.ID, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	response := make([]types.ProjectResponse, 0, len(projects))

	for _, project := range projects {
		response = append(response, projectResponse(project))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetProject(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.GetIDParam(ctx, "project_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, ok := fetchProject(ctx, projectID)

	if !ok {
		return
	}

	allowed, err := rbac.CanViewResource(currentUser.Principal(), project.OwnerID, projectMembership(project.ID))

	if err != nil {
		log.Error("failed to check project access", "project_id", project.ID, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if !allowed {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this project"})
		return
	}

	ctx.JSON(http.StatusOK, projectResponse(project))
}

// UpdateProject is open to the owner, a MANAGER member, or an admin.
func UpdateProject(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.GetIDParam(ctx, "project_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body UpdateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	project, ok := fetchProject(ctx, projectID)

	if !ok {
		return
	}

	allowed, err := rbac.CanManageResource(currentUser.Principal(), project.OwnerID, projectMembership(project.ID))

	if err != nil {
		log.Error("failed to check project access", "project_id", project.ID, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if !allowed {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the project owner or a manager can update this project"})
		return
	}

	if body.Name != "" {
		project.Name = body.Name
	}

	if body.Description != "" {
		project.Description = body.Description
	}

	if body.Status != "" {
		if !validProjectStatus(body.Status) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project status"})
			return
		}
		project.Status = body.Status
	}

	if err := db.DB.Save(&project).Error; err != nil {
		log.Error("failed to update project", "project_id", project.ID, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, projectResponse(project))
}

// DeleteProject is stricter than update: only the owner or an admin.
// MANAGER members may not delete the project.
func DeleteProject(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.GetIDParam(ctx, "project_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, ok := fetchProject(ctx, projectID)

	if !ok {
		return
	}

	if !rbac.IsOwnerOrAdmin(currentUser.Principal(), project.OwnerID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the project owner can delete this project"})
		return
	}

	// Membership rows go with the project; project-scoped tasks survive
	// with their project reference cleared.
	if err := db.DB.Select("Members").Delete(&project).Error; err != nil {
		log.Error("failed to delete project", "project_id", project.ID, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

func ListProjectMembers(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.GetIDParam(ctx, "project_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, ok := fetchProject(ctx, projectID)

	if !ok {
		return
	}

	allowed, err := rbac.CanViewResource(currentUser.Principal(), project.OwnerID, projectMembership(project.ID))

	if err != nil {
		log.Error("failed to check project access", "project_id", project.ID, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if !allowed {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this project"})
		return
	}

	var members []models.ProjectMember

	if err := db.DB.Preload("User").Where("project_id = ?", project.ID).Find(&members).Error; err != nil {
		log.Error("failed to list project members", "project_id", project.ID, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	response := make([]types.ProjectMemberResponse, 0, len(members))

	for _, member := range members {
		response = append(response, types.ProjectMemberResponse{
			ID:        member.ID,
			ProjectID: member.ProjectID,
			UserID:    member.UserID,
			Role:      member.Role,
			Name:      member.User.Name,
			Email:     member.User.Email,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

// AddProjectMember validates the target user exists and is not already a
// member before applying the actor's permission check result.
func AddProjectMember(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.GetIDParam(ctx, "project_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body AddMemberRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	role := body.Role

	if role == "" {
		role = models.ProjectRoleMember
	}

	if !validMemberRole(role) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid member role"})
		return
	}

	project, ok := fetchProject(ctx, projectID)

	if !ok {
		return
	}

	// Target validation comes before the actor's access check: a missing
	// target is NotFound and an existing member is Conflict even when the
	// actor would be denied.
	var targetUser models.User

	if err := db.DB.First(&targetUser, body.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			log.Error("failed to fetch user", "user_id", body.UserID, "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	var existing models.ProjectMember

	err = db.DB.Where("project_id = ? AND user_id = ?", project.ID, body.UserID).First(&existing).Error

	if err == nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": "User is already a member of this project"})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error("failed to check existing membership", "project_id", project.ID, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	allowed, err := rbac.CanManageResource(currentUser.Principal(), project.OwnerID, projectMembership(project.ID))

	if err != nil {
		log.Error("failed to check project access", "project_id", project.ID, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if !allowed {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the project owner or a manager can manage members"})
		return
	}

	member := models.ProjectMember{
		ProjectID: project.ID,
		UserID:    body.UserID,
		Role:      role,
	}

	if err := db.DB.Create(&member).Error; err != nil {
		// The unique pair index catches a concurrent duplicate add.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "User is already a member of this project"})
			return
		}
		log.Error("failed to add project member", "project_id", project.ID, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	rbac.RecordAudit(db.DB, log, currentUser.ID, models.AuditMemberAdded, "project", project.ID, map[string]interface{}{
		"member_user_id": body.UserID,
		"member_role":    role,
	})

	ctx.JSON(http.StatusCreated, types.ProjectMemberResponse{
		ID:        member.ID,
		ProjectID: member.ProjectID,
		UserID:    member.UserID,
		Role:      member.Role,
		Name:      targetUser.Name,
		Email:     targetUser.Email,
	})
}

// RemoveProjectMember requires the membership row to belong to the named
// project; a member id from another project is NotFound, never a cross-
// project removal.
func RemoveProjectMember(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.GetIDParam(ctx, "project_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	memberID, err := utils.GetIDParam(ctx, "member_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, ok := fetchProject(ctx, projectID)

	if !ok {
		return
	}

	allowed, err := rbac.CanManageResource(currentUser.Principal(), project.OwnerID, projectMembership(project.ID))

	if err != nil {
		log.Error("failed to check project access", "project_id", project.ID, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if !allowed {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the project owner or a manager can manage members"})
		return
	}

	var member models.ProjectMember

	if err := db.DB.Where("id = ? AND project_id = ?", memberID, project.ID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Member not found in this project"})
		} else {
			log.Error("failed to fetch project member", "member_id", memberID, "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	if err := db.DB.Delete(&member).Error; err != nil {
		log.Error("failed to remove project member", "member_id", member.ID, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	rbac.RecordAudit(db.DB, log, currentUser.ID, models.AuditMemberRemoved, "project", project.ID, map[string]interface{}{
		"member_user_id": member.UserID,
		"member_id":      member.ID,
	})

	ctx.Status(http.StatusNoContent)
}
