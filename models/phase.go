package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PhaseStatus represents progress of a single project phase
type PhaseStatus string

const (
	PhaseNotStarted PhaseStatus = "notStarted"
	PhaseInProgress PhaseStatus = "inProgress"
	PhaseDone       PhaseStatus = "done"
)

// Phase is one step of a project's workflow, scaffolded from the tenant's
// CustomPhase template at creation and at conversion.
type Phase struct {
	ID        uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid"`
	TenantID  uuid.UUID      `json:"tenantId" gorm:"type:uuid;not null;index"`
	ProjectID uuid.UUID      `json:"projectId" gorm:"type:uuid;not null;index"`
	PhaseKey  string         `json:"phaseKey" gorm:"not null"`
	Status    PhaseStatus    `json:"status" gorm:"type:varchar(12);default:'notStarted'"`
	Position  int            `json:"position" gorm:"default:0"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (p *Phase) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *Phase) SetTenantID(id uuid.UUID) { p.TenantID = id }

// CustomPhase is a tenant-level template entry. PhaseType selects which
// project state the entry scaffolds onto; the template is copied by value.
type CustomPhase struct {
	ID        uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid"`
	TenantID  uuid.UUID      `json:"tenantId" gorm:"type:uuid;not null;index"`
	PhaseKey  string         `json:"phaseKey" gorm:"not null"`
	PhaseType ProjectState   `json:"phaseType" gorm:"type:varchar(12);not null"`
	Position  int            `json:"position" gorm:"default:0"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (c *CustomPhase) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *CustomPhase) SetTenantID(id uuid.UUID) { c.TenantID = id }
