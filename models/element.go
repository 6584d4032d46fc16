package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Element is a physical piece being produced within a project (a door, a
// front, a panel). Spray items reference elements.
type Element struct {
	ID        uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid"`
	TenantID  uuid.UUID      `json:"tenantId" gorm:"type:uuid;not null;index"`
	ProjectID uuid.UUID      `json:"projectId" gorm:"type:uuid;not null;index"`
	Name      string         `json:"name" gorm:"not null"`
	Quantity  int            `json:"quantity" gorm:"default:1"`
	Width     float64        `json:"width"`
	Height    float64        `json:"height"`
	Notes     string         `json:"notes"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (e *Element) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (e *Element) SetTenantID(id uuid.UUID) { e.TenantID = id }

// SprayItem is one spray job for an element within a project.
type SprayItem struct {
	ID        uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid"`
	TenantID  uuid.UUID      `json:"tenantId" gorm:"type:uuid;not null;index"`
	ProjectID uuid.UUID      `json:"projectId" gorm:"type:uuid;not null;index"`
	ElementID *uuid.UUID     `json:"elementId" gorm:"type:uuid;index"`
	Color     string         `json:"color"`
	Coats     int            `json:"coats" gorm:"default:1"`
	Done      bool           `json:"done" gorm:"default:false"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (s *SprayItem) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *SprayItem) SetTenantID(id uuid.UUID) { s.TenantID = id }

// SpraySetting stores the booth configuration used for a project's spray run.
type SpraySetting struct {
	ID        uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid"`
	TenantID  uuid.UUID      `json:"tenantId" gorm:"type:uuid;not null;index"`
	ProjectID uuid.UUID      `json:"projectId" gorm:"type:uuid;not null;index"`
	Lacquer   string         `json:"lacquer"`
	Hardener  string         `json:"hardener"`
	Ratio     string         `json:"ratio"`
	Notes     string         `json:"notes"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (s *SpraySetting) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *SpraySetting) SetTenantID(id uuid.UUID) { s.TenantID = id }
