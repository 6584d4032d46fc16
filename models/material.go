package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Material is a material requirement attached to a project, optionally
// linked back to a stock item.
type Material struct {
	ID          uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid"`
	TenantID    uuid.UUID      `json:"tenantId" gorm:"type:uuid;not null;index"`
	ProjectID   uuid.UUID      `json:"projectId" gorm:"type:uuid;not null;index"`
	StockItemID *uuid.UUID     `json:"stockItemId" gorm:"type:uuid"`
	Name        string         `json:"name" gorm:"not null"`
	Quantity    float64        `json:"quantity" gorm:"default:0"`
	Unit        string         `json:"unit"`
	Ordered     bool           `json:"ordered" gorm:"default:false"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

func (m *Material) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (m *Material) SetTenantID(id uuid.UUID) { m.TenantID = id }
