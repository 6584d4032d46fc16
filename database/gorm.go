package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/atelierworks/atelier-backend/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the Postgres connection and configures the pool. The handle
// is passed into repositories and services at construction; nothing reads it
// from package state.
func Connect(dbURL string) (*gorm.DB, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("database URL cannot be empty")
	}

	// Configure GORM logger
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{
		Logger: newLogger,
		// Surfaces uniqueness violations as gorm.ErrDuplicatedKey, which the
		// sequence allocator's retry loop depends on.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// Migrate runs AutoMigrate over every model in dependency order.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}

// AllModels lists every persisted model. Shared with tests that migrate an
// in-memory database.
func AllModels() []interface{} {
	return []interface{}{
		&models.Tenant{},
		&models.User{},
		&models.Profile{},
		&models.Client{},
		&models.Supplier{},
		&models.Employee{},
		&models.StockItem{},
		&models.Project{},
		&models.Phase{},
		&models.CustomPhase{},
		&models.Material{},
		&models.ProjectFile{},
		&models.Element{},
		&models.SprayItem{},
		&models.SpraySetting{},
		&models.Blocker{},
		&models.Alert{},
		&models.ArchivedProject{},
		&models.ArchivedPhase{},
		&models.ArchivedMaterial{},
		&models.ArchivedFile{},
	}
}
