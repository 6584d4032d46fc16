package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectState represents where a project sits in its lifecycle.
// pipeline → production happens exactly once (conversion creates a new row);
// production → archived is terminal.
type ProjectState string

const (
	StatePipeline   ProjectState = "pipeline"
	StateProduction ProjectState = "production"
)

// Project is the root record for both pipeline offers and production orders.
// Number carries the human-readable identifier (PL001/2025, PR001/2025) and is
// unique per tenant.
type Project struct {
	ID          uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid"`
	TenantID    uuid.UUID      `json:"tenantId" gorm:"type:uuid;not null;index;uniqueIndex:idx_projects_tenant_number"`
	Number      string         `json:"number" gorm:"not null;uniqueIndex:idx_projects_tenant_number"`
	Name        string         `json:"name" gorm:"not null"`
	Description string         `json:"description"`
	State       ProjectState   `json:"state" gorm:"type:varchar(12);not null;index"`
	ClientID    *uuid.UUID     `json:"clientId" gorm:"type:uuid;index"`
	PipelineID  *uuid.UUID     `json:"pipelineId" gorm:"type:uuid"` // original pipeline row after conversion
	DueDate     *time.Time     `json:"dueDate"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	Client *Client `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Phases []Phase `json:"phases,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *Project) SetTenantID(id uuid.UUID) { p.TenantID = id }
