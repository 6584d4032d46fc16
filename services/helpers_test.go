package services

import (
	"testing"

	"github.com/atelierworks/atelier-backend/database"
	"github.com/atelierworks/atelier-backend/dto"
	"github.com/atelierworks/atelier-backend/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a second connection would see its own empty :memory: database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(database.AllModels()...))
	return db
}

// newTestPrincipal creates a tenant row and an admin principal bound to it
func newTestPrincipal(t *testing.T, db *gorm.DB) dto.Principal {
	t.Helper()

	tenant := models.Tenant{Name: "test workshop"}
	require.NoError(t, db.Create(&tenant).Error)

	return dto.Principal{
		UserID:   uuid.New(),
		TenantID: tenant.ID,
		Role:     models.RoleAdmin,
	}
}
