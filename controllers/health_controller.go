package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthController reports service liveness and store reachability
type HealthController struct {
	db *gorm.DB
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{db: db}
}

// Check handles GET /
func (ctl *HealthController) Check(c *gin.Context) {
	dbStatus := "ok"
	if sqlDB, err := ctl.db.DB(); err != nil || sqlDB.Ping() != nil {
		dbStatus = "unreachable"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "atelier-backend",
		"version":  "1.0.0",
		"database": dbStatus,
	})
}
