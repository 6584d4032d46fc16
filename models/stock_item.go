package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockItem represents a stocked material or consumable
type StockItem struct {
	ID         uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid"`
	TenantID   uuid.UUID      `json:"tenantId" gorm:"type:uuid;not null;index"`
	Name       string         `json:"name" gorm:"not null"`
	SupplierID *uuid.UUID     `json:"supplierId" gorm:"type:uuid;index"`
	Quantity   float64        `json:"quantity" gorm:"default:0"`
	Unit       string         `json:"unit"`
	MinLevel   float64        `json:"minLevel" gorm:"default:0"`
	Location   string         `json:"location"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

func (s *StockItem) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *StockItem) SetTenantID(id uuid.UUID) { s.TenantID = id }
