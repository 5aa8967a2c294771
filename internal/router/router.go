package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/taskforge-dev/taskforge/db"
	"github.com/taskforge-dev/taskforge/internal/handlers"
	"github.com/taskforge-dev/taskforge/internal/middleware"
	"github.com/taskforge-dev/taskforge/internal/rbac"
	"github.com/taskforge-dev/taskforge/internal/types"
	"github.com/taskforge-dev/taskforge/pkg/logger"
)

func NewRouter(log logger.Logger) *gin.Engine {
	r := gin.Default()

	handlers.UseLogger(log)

	guard := rbac.NewGuard(rbac.NewResolver(db.DB))

	// require declares the operation's access requirement once, at
	// registration, for the guard to inspect at dispatch time.
	require := func(requirement rbac.Requirement) gin.HandlerFunc {
		return middleware.Require(guard, log, requirement)
	}

	r.Use(middleware.RequestID())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.POST("/refresh", handlers.Refresh)
			auth.POST("/logout", handlers.Logout)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
			auth.PATCH("/me", middleware.AuthMiddleware(), handlers.UpdateProfile)
			auth.DELETE("/me", middleware.AuthMiddleware(), handlers.DeleteAccount)
		}

		tasks := api.Group("/tasks", middleware.AuthMiddleware())
		{
			tasks.POST("", require(rbac.Requirement{AnyPermissions: []string{rbac.PermTaskCreate}}), handlers.CreateTask)
			tasks.GET("", require(rbac.Requirement{AnyPermissions: []string{rbac.PermTaskRead, rbac.PermTaskReadAll}}), handlers.ListTasks)
			tasks.GET("/:task_id", require(rbac.Requirement{AnyPermissions: []string{rbac.PermTaskRead}}), handlers.GetTask)
			tasks.PATCH("/:task_id", require(rbac.Requirement{AnyPermissions: []string{rbac.PermTaskUpdate}}), handlers.UpdateTask)
			tasks.DELETE("/:task_id", require(rbac.Requirement{AnyPermissions: []string{rbac.PermTaskDelete}}), handlers.DeleteTask)
		}

		projects := api.Group("/projects", middleware.AuthMiddleware())
		{
			projects.POST("", require(rbac.Requirement{AnyPermissions: []string{rbac.PermProjectCreate}}), handlers.CreateProject)
			projects.GET("", require(rbac.Requirement{AnyPermissions: []string{rbac.PermProjectRead, rbac.PermProjectReadAll}}), handlers.ListProjects)
			projects.GET("/:project_id", require(rbac.Requirement{AnyPermissions: []string{rbac.PermProjectRead}}), handlers.GetProject)
			projects.PATCH("/:project_id", require(rbac.Requirement{AnyPermissions: []string{rbac.PermProjectUpdate}}), handlers.UpdateProject)
			projects.DELETE("/:project_id", require(rbac.Requirement{AnyPermissions: []string{rbac.PermProjectDelete}}), handlers.DeleteProject)

			projects.GET("/:project_id/members", require(rbac.Requirement{AnyPermissions: []string{rbac.PermProjectRead}}), handlers.ListProjectMembers)
			projects.POST("/:project_id/members", require(rbac.Requirement{AnyPermissions: []string{rbac.PermProjectManageMembers}}), handlers.AddProjectMember)
			projects.DELETE("/:project_id/members/:member_id", require(rbac.Requirement{AnyPermissions: []string{rbac.PermProjectManageMembers}}), handlers.RemoveProjectMember)
		}

		users := api.Group("/users", middleware.AuthMiddleware())
		{
			users.GET("", require(rbac.Requirement{AnyPermissions: []string{rbac.PermUserReadAll}}), handlers.ListUsers)
			users.GET("/:user_id", require(rbac.Requirement{AnyPermissions: []string{rbac.PermUserRead}}), handlers.GetUser)
			users.PATCH("/:user_id/role", require(rbac.Requirement{
				Roles:          []string{rbac.RoleAdmin},
				AnyPermissions: []string{rbac.PermUserManageRoles},
			}), handlers.UpdateUserRole)
			users.POST("/:user_id/roles/:role_id", require(rbac.Requirement{AnyPermissions: []string{rbac.PermUserManageRoles}}), handlers.AssignRole)
			users.DELETE("/:user_id/roles/:role_id", require(rbac.Requirement{AnyPermissions: []string{rbac.PermUserManageRoles}}), handlers.RemoveRole)
		}

		catalog := api.Group("/roles", middleware.AuthMiddleware())
		{
			catalog.GET("", require(rbac.Requirement{AnyPermissions: []string{rbac.PermUserManageRoles}}), handlers.ListRoles)
			catalog.GET("/permissions", require(rbac.Requirement{AnyPermissions: []string{rbac.PermUserManageRoles}}), handlers.ListPermissions)
		}
	}

	return r
}
