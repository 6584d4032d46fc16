package routes

import (
	"github.com/atelierworks/atelier-backend/controllers"
	"github.com/atelierworks/atelier-backend/metrics"
	"github.com/atelierworks/atelier-backend/middleware"
	"github.com/atelierworks/atelier-backend/models"
	"github.com/atelierworks/atelier-backend/repositories"
	"github.com/atelierworks/atelier-backend/services"
	"github.com/atelierworks/atelier-backend/storage"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Dependencies carries the constructed services into route registration
type Dependencies struct {
	DB        *gorm.DB
	Auth      *services.AuthService
	Verifier  services.TokenVerifier
	Profiles  *repositories.ProfileRepository
	Gateway   *services.QueryGateway
	Allocator *services.SequenceAllocator
	Lifecycle *services.LifecycleService
	Projects  *repositories.ProjectRepository
	Stats     *services.StatsService
	Blobs     storage.BlobStore
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	health := controllers.NewHealthController(deps.DB)
	auth := controllers.NewAuthController(deps.Auth)
	query := controllers.NewQueryController(deps.Gateway)
	projects := controllers.NewProjectController(deps.Lifecycle, deps.Projects)
	files := controllers.NewFileController(deps.Gateway, deps.Blobs)
	stats := controllers.NewStatsController(deps.Stats)

	// Public endpoints
	router.GET("/", health.Check)
	router.GET("/metrics", metrics.Handler())

	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/register", auth.Register)
		authGroup.POST("/login", auth.Login)
	}

	// Everything below requires an authenticated principal
	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(deps.Verifier, deps.Profiles))
	{
		api.GET("/auth/me", auth.Me)
		api.POST("/query", query.Execute)

		writers := middleware.RequireRole(models.RoleAdmin, models.RoleManager)

		projectGroup := api.Group("/projects")
		{
			projectGroup.GET("", projects.List)
			projectGroup.GET("/:id", projects.Get)
			projectGroup.POST("", writers, projects.Create)
			projectGroup.POST("/:id/convert", writers, projects.Convert)
			projectGroup.POST("/:id/archive", writers, projects.Archive)
			projectGroup.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), projects.Delete)
			projectGroup.POST("/:id/files", writers, files.Upload)
		}

		fileGroup := api.Group("/files")
		{
			fileGroup.GET("/:id", files.Download)
			fileGroup.GET("/:id/url", files.SignURL)
			fileGroup.DELETE("/:id", writers, files.Delete)
		}

		registerEntityRoutes(api, "clients", controllers.NewEntityController(
			"clients", "name", deps.Gateway, deps.Allocator, services.SequenceClient), writers)
		registerEntityRoutes(api, "suppliers", controllers.NewEntityController(
			"suppliers", "name", deps.Gateway, deps.Allocator, ""), writers)
		registerEntityRoutes(api, "employees", controllers.NewEntityController(
			"employees", "name", deps.Gateway, deps.Allocator, services.SequenceEmployee), writers)
		registerEntityRoutes(api, "stock_items", controllers.NewEntityController(
			"stock_items", "name", deps.Gateway, deps.Allocator, ""), writers)

		api.GET("/archives", projects.ListArchives)
		api.GET("/stats", stats.Dashboard)
	}
}

func registerEntityRoutes(api *gin.RouterGroup, path string, ctl *controllers.EntityController, writers gin.HandlerFunc) {
	group := api.Group("/" + path)
	{
		group.GET("", ctl.List)
		group.GET("/:id", ctl.Get)
		group.POST("", writers, ctl.Create)
		group.PUT("/:id", writers, ctl.Update)
		group.DELETE("/:id", writers, ctl.Delete)
	}
}
