package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client represents a customer of the tenant's workshop
type Client struct {
	ID        uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid"`
	TenantID  uuid.UUID      `json:"tenantId" gorm:"type:uuid;not null;index;uniqueIndex:idx_clients_tenant_number"`
	Number    string         `json:"number" gorm:"not null;uniqueIndex:idx_clients_tenant_number"`
	Name      string         `json:"name" gorm:"not null"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone"`
	Address   string         `json:"address"`
	Notes     string         `json:"notes"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// SetTenantID pins the row to the caller's tenant on insert
func (c *Client) SetTenantID(id uuid.UUID) { c.TenantID = id }
