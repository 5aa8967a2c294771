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

type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status"`
	ProjectID   *uint  `json:"project_id"`
}

type UpdateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

func validTaskStatus(status string) bool {
	switch status {
	case models.TaskStatusPending, models.TaskStatusInProgress, models.TaskStatusCompleted:
		return true
	}
	return false
}

func taskResponse(task models.Task) types.TaskResponse {
	return types.TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		UserID:      task.UserID,
		ProjectID:   task.ProjectID,
	}
}

// projectMembership looks up the user's membership row in a project. Used
// as the ownership policy's MembershipLookup.
func projectMembership(projectID uint) rbac.MembershipLookup {
	return func(userID uint) (string, bool, error) {
		var member models.ProjectMember

		err := db.DB.Where("project_id = ? AND user_id = ?", projectID, userID).First(&member).Error

		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", false, nil
			}
			return "", false, err
		}

		return member.Role, true, nil
	}
}

func CreateTask(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body CreateTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	status := body.Status

	if status == "" {
		status = models.TaskStatusPending
	}

	if !validTaskStatus(status) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task status"})
		return
	}

	if body.ProjectID != nil {
		var project models.Project

		if err := db.DB.First(&project, *body.ProjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			} else {
				log.Error("failed to fetch project", "project_id", *body.ProjectID, "error", err)
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			return
		}

		allowed, err := rbac.CanViewResource(currentUser.Principal(), project.OwnerID, projectMembership(project.ID))

		if err != nil {
			log.Error("failed to check project membership", "project_id", project.ID, "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		if !allowed {
			ctx.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this project"})
			return
		}
	}

	task := models.Task{
		Title:       body.Title,
		Description: body.Description,
		Status:      status,
		UserID:      currentUser.ID,
		ProjectID:   body.ProjectID,
	}

	if err := db.DB.Create(&task).Error; err != nil {
		log.Error("failed to create task", "user_id", currentUser.ID, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusCreated, taskResponse(task))
}

// ListTasks spans all tasks for an admin; everyone else sees only their own.
func ListTasks(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	query := db.DB

	if !currentUser.Principal().IsAdmin() {
		query = query.Where("user_id = ?", currentUser.ID)
	}

	if projectID := ctx.Query("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	var tasks []models.Task

	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		log.Error("failed to list tasks", "user_id", currentUser.ID, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	response := make([]types.TaskResponse, 0, len(tasks))

	for _, task := range tasks {
		response = append(response, taskResponse(task))
	}

	ctx.JSON(http.StatusOK, response)
}

// GetTask enforces only the coarse task:read permission; there is no
// per-task ownership restriction on single-item reads.
func GetTask(ctx *gin.Context) {
	taskID, err := utils.GetIDParam(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var task models.Task

	if err := db.DB.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			log.Error("failed to fetch task", "task_id", taskID, "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	ctx.JSON(http.StatusOK, taskResponse(task))
}

func UpdateTask(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, err := utils.GetIDParam(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body UpdateTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var task models.Task

	if err := db.DB.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			log.Error("failed to fetch task", "task_id", taskID, "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	if !rbac.IsOwnerOrAdmin(currentUser.Principal(), task.UserID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "You can only update your own tasks"})
		return
	}

	if body.Title != "" {
		task.Title = body.Title
	}

	if body.Description != "" {
		task.Description = body.Description
	}

	if body.Status != "" {
		if !validTaskStatus(body.Status) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task status"})
			return
		}
		task.Status = body.Status
	}

	if err := db.DB.Save(&task).Error; err != nil {
		log.Error("failed to update task", "task_id", task.ID, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, taskResponse(task))
}

func DeleteTask(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, err := utils.GetIDParam(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var task models.Task

	if err := db.DB.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			log.Error("failed to fetch task", "task_id", taskID, "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	if !rbac.IsOwnerOrAdmin(currentUser.Principal(), task.UserID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own tasks"})
		return
	}

	if err := db.DB.Delete(&task).Error; err != nil {
		log.Error("failed to delete task", "task_id", task.ID, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
