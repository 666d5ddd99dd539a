package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/ozpm/task-tracker-api/internal/clients"
	"github.com/ozpm/task-tracker-api/internal/config"
	"github.com/ozpm/task-tracker-api/internal/database"
	"github.com/ozpm/task-tracker-api/internal/handlers"
	"github.com/ozpm/task-tracker-api/internal/middleware"
	"github.com/ozpm/task-tracker-api/internal/policy"
	"github.com/ozpm/task-tracker-api/internal/repository"
	"github.com/ozpm/task-tracker-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Directory clients for the external collaborators
	projectsClient := clients.NewProjectsClient(cfg.ProjectsServiceURL, cfg.DirectoryTimeout)
	usersClient := clients.NewUsersClient(cfg.UsersServiceURL, cfg.DirectoryTimeout)
	identityClient := clients.NewIdentityClient(cfg.IdentityServiceURL, cfg.DirectoryTimeout)

	// Wire the lifecycle service
	taskRepo := repository.NewTaskRepository(database.GetDB())
	taskService := services.NewTaskService(taskRepo, projectsClient, usersClient, policy.NewEngine())
	taskHandler := handlers.NewTaskHandler(taskService)

	// Initialize Gin router
	r := gin.Default()

	// Session middleware caches resolved identities between requests
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   3600, // cached identities expire after an hour
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("task_session", store))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Task Tracker API is running",
		})
	})

	// API routes
	api := r.Group("/api/v1")
	{
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireActor(identityClient))
		{
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:code", taskHandler.GetTask)
			tasks.PUT("/:code", taskHandler.UpdateTask)
			tasks.PUT("/:code/status", taskHandler.UpdateTaskStatus)
			tasks.DELETE("/:code", taskHandler.DeleteTask)

			tasks.GET("/project/:projectCode", taskHandler.ListTasksByProject)
			tasks.GET("/project/:projectCode/counts", taskHandler.GetProjectCounts)
			tasks.PUT("/project/:projectCode/complete", taskHandler.CompleteProjectTasks)
			tasks.DELETE("/project/:projectCode", taskHandler.DeleteProjectTasks)

			tasks.GET("/status/:status", taskHandler.ListTasksByStatus)
			tasks.GET("/employee/:username/non-completed/count", taskHandler.CountNonCompletedByEmployee)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
