package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Employee represents a team member of the tenant's workshop
type Employee struct {
	ID         uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid"`
	TenantID   uuid.UUID      `json:"tenantId" gorm:"type:uuid;not null;index;uniqueIndex:idx_employees_tenant_number"`
	Number     string         `json:"number" gorm:"not null;uniqueIndex:idx_employees_tenant_number"`
	Name       string         `json:"name" gorm:"not null"`
	Email      string         `json:"email"`
	Phone      string         `json:"phone"`
	Department string         `json:"department"`
	Position   string         `json:"position"`
	Active     bool           `json:"active" gorm:"default:true"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (e *Employee) SetTenantID(id uuid.UUID) { e.TenantID = id }
