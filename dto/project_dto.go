package dto

import (
	"time"

	"github.com/atelierworks/atelier-backend/models"
	"github.com/google/uuid"
)

// ProjectCreateRequest creates a pipeline or production project
type ProjectCreateRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	State       string     `json:"state" binding:"required,oneof=pipeline production"`
	ClientID    *uuid.UUID `json:"clientId"`
	DueDate     *time.Time `json:"dueDate"`
}

// ArchiveRequest tags the archive operation
type ArchiveRequest struct {
	ArchiveType string `json:"archiveType" binding:"required,oneof=completed failed"`
}

// Warning records a failed best-effort step of a lifecycle operation. The
// primary operation still succeeded; callers can inspect what was skipped.
type Warning struct {
	Step    string `json:"step"`
	Message string `json:"message"`
}

// LifecycleResult is the response shape for create/convert operations
type LifecycleResult struct {
	Project  models.Project `json:"project"`
	Warnings []Warning      `json:"warnings,omitempty"`
}

// ArchiveResult is the response shape for archive operations
type ArchiveResult struct {
	Archive  models.ArchivedProject `json:"archive"`
	Warnings []Warning              `json:"warnings,omitempty"`
}

// ProjectListResponse represents a paginated project list
type ProjectListResponse struct {
	Projects   []models.Project `json:"projects"`
	TotalCount int64            `json:"totalCount"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalPages int              `json:"totalPages"`
}

// TenantStatsResponse is the dashboard summary for one tenant
type TenantStatsResponse struct {
	Pipeline      int64 `json:"pipeline"`
	Production    int64 `json:"production"`
	Archived      int64 `json:"archived"`
	OpenBlockers  int64 `json:"openBlockers"`
	UnreadAlerts  int64 `json:"unreadAlerts"`
	Clients       int64 `json:"clients"`
	Employees     int64 `json:"employees"`
	LowStockItems int64 `json:"lowStockItems"`
}
