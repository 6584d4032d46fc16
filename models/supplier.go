package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Supplier represents a material supplier of the tenant
type Supplier struct {
	ID        uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid"`
	TenantID  uuid.UUID      `json:"tenantId" gorm:"type:uuid;not null;index"`
	Name      string         `json:"name" gorm:"not null"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone"`
	Address   string         `json:"address"`
	Notes     string         `json:"notes"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (s *Supplier) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *Supplier) SetTenantID(id uuid.UUID) { s.TenantID = id }
