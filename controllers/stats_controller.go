package controllers

import (
	"net/http"

	"github.com/atelierworks/atelier-backend/services"
	"github.com/gin-gonic/gin"
)

// StatsController serves the tenant dashboard summary
type StatsController struct {
	stats *services.StatsService
}

func NewStatsController(stats *services.StatsService) *StatsController {
	return &StatsController{stats: stats}
}

// Dashboard handles GET /api/stats
func (ctl *StatsController) Dashboard(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	stats, err := ctl.stats.TenantStats(p)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": stats})
}
