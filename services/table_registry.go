package services

import (
	"github.com/atelierworks/atelier-backend/models"
	"github.com/google/uuid"
)

// tenantRow is implemented by every model the gateway may write. SetTenantID
// lets the gateway pin inserted rows to the caller's tenant without
// reflection.
type tenantRow interface {
	SetTenantID(id uuid.UUID)
}

// tableEntry binds an allow-listed table name to its typed row schema
type tableEntry struct {
	model func() tenantRow
	slice func() interface{}
}

// tableRegistry is the fixed allow-list of tables reachable through the
// generic query gateway. Unknown tables are rejected with forbidden before
// any store call. The registry is read-only after initialization.
var tableRegistry = map[string]tableEntry{
	"clients": {
		model: func() tenantRow { return &models.Client{} },
		slice: func() interface{} { return &[]models.Client{} },
	},
	"suppliers": {
		model: func() tenantRow { return &models.Supplier{} },
		slice: func() interface{} { return &[]models.Supplier{} },
	},
	"employees": {
		model: func() tenantRow { return &models.Employee{} },
		slice: func() interface{} { return &[]models.Employee{} },
	},
	"stock_items": {
		model: func() tenantRow { return &models.StockItem{} },
		slice: func() interface{} { return &[]models.StockItem{} },
	},
	"projects": {
		model: func() tenantRow { return &models.Project{} },
		slice: func() interface{} { return &[]models.Project{} },
	},
	"phases": {
		model: func() tenantRow { return &models.Phase{} },
		slice: func() interface{} { return &[]models.Phase{} },
	},
	"custom_phases": {
		model: func() tenantRow { return &models.CustomPhase{} },
		slice: func() interface{} { return &[]models.CustomPhase{} },
	},
	"materials": {
		model: func() tenantRow { return &models.Material{} },
		slice: func() interface{} { return &[]models.Material{} },
	},
	"project_files": {
		model: func() tenantRow { return &models.ProjectFile{} },
		slice: func() interface{} { return &[]models.ProjectFile{} },
	},
	"elements": {
		model: func() tenantRow { return &models.Element{} },
		slice: func() interface{} { return &[]models.Element{} },
	},
	"spray_items": {
		model: func() tenantRow { return &models.SprayItem{} },
		slice: func() interface{} { return &[]models.SprayItem{} },
	},
	"spray_settings": {
		model: func() tenantRow { return &models.SpraySetting{} },
		slice: func() interface{} { return &[]models.SpraySetting{} },
	},
	"blockers": {
		model: func() tenantRow { return &models.Blocker{} },
		slice: func() interface{} { return &[]models.Blocker{} },
	},
	"alerts": {
		model: func() tenantRow { return &models.Alert{} },
		slice: func() interface{} { return &[]models.Alert{} },
	},
}
