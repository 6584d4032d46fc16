package main

import (
	"time"

	"github.com/atelierworks/atelier-backend/config"
	"github.com/atelierworks/atelier-backend/database"
	"github.com/atelierworks/atelier-backend/logger"
	"github.com/atelierworks/atelier-backend/metrics"
	"github.com/atelierworks/atelier-backend/repositories"
	"github.com/atelierworks/atelier-backend/routes"
	"github.com/atelierworks/atelier-backend/services"
	"github.com/atelierworks/atelier-backend/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	config.LoadEnv()
	log := logger.Get()
	defer logger.Sync()

	db, err := database.Connect(config.GetEnv("DATABASE_URL", "postgres://localhost:5432/atelier?sslmode=disable"))
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	blobs, err := storage.NewLocalStore(config.GetEnv("STORAGE_DIR", "./data/blobs"))
	if err != nil {
		log.Fatal("failed to initialize blob store", zap.Error(err))
	}

	secret := config.GetEnv("JWT_SECRET", "")
	if secret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	tokenTTL := time.Duration(config.GetEnvInt("TOKEN_TTL_HOURS", 24)) * time.Hour

	allocator := services.NewSequenceAllocator(db)

	gin.SetMode(config.GetEnv("GIN_MODE", gin.ReleaseMode))
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(metrics.Middleware())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	}))

	routes.SetupRoutes(router, routes.Dependencies{
		DB:        db,
		Auth:      services.NewAuthService(db, secret, tokenTTL),
		Verifier:  services.NewJWTVerifier(secret),
		Profiles:  repositories.NewProfileRepository(db),
		Gateway:   services.NewQueryGateway(db),
		Allocator: allocator,
		Lifecycle: services.NewLifecycleService(db, allocator),
		Projects:  repositories.NewProjectRepository(db),
		Stats:     services.NewStatsService(db),
		Blobs:     blobs,
	})

	port := config.GetEnv("PORT", "8080")
	log.Info("atelier backend starting", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}
