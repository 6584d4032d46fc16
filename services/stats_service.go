package services

import (
	"github.com/atelierworks/atelier-backend/apperr"
	"github.com/atelierworks/atelier-backend/dto"
	"github.com/atelierworks/atelier-backend/models"
	"gorm.io/gorm"
)

// StatsService aggregates the per-tenant dashboard counters. Reads only;
// every count is tenant-scoped.
type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

// TenantStats returns the dashboard summary for the principal's tenant
func (s *StatsService) TenantStats(p dto.Principal) (dto.TenantStatsResponse, error) {
	var stats dto.TenantStatsResponse

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.Pipeline, s.db.Model(&models.Project{}).Where("tenant_id = ? AND state = ?", p.TenantID, models.StatePipeline)},
		{&stats.Production, s.db.Model(&models.Project{}).Where("tenant_id = ? AND state = ?", p.TenantID, models.StateProduction)},
		{&stats.Archived, s.db.Model(&models.ArchivedProject{}).Where("tenant_id = ?", p.TenantID)},
		{&stats.OpenBlockers, s.db.Model(&models.Blocker{}).Where("tenant_id = ? AND resolved = ?", p.TenantID, false)},
		{&stats.UnreadAlerts, s.db.Model(&models.Alert{}).Where("tenant_id = ? AND read_at IS NULL", p.TenantID)},
		{&stats.Clients, s.db.Model(&models.Client{}).Where("tenant_id = ?", p.TenantID)},
		{&stats.Employees, s.db.Model(&models.Employee{}).Where("tenant_id = ? AND active = ?", p.TenantID, true)},
		{&stats.LowStockItems, s.db.Model(&models.StockItem{}).Where("tenant_id = ? AND quantity < min_level", p.TenantID)},
	}

	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return stats, apperr.Wrap(apperr.CodeUpstream, "could not compute tenant stats", err)
		}
	}
	return stats, nil
}
