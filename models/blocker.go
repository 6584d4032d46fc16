package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Blocker flags a project as held up (missing material, client decision).
type Blocker struct {
	ID        uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid"`
	TenantID  uuid.UUID      `json:"tenantId" gorm:"type:uuid;not null;index"`
	ProjectID uuid.UUID      `json:"projectId" gorm:"type:uuid;not null;index"`
	Reason    string         `json:"reason" gorm:"not null"`
	Resolved  bool           `json:"resolved" gorm:"default:false"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (b *Blocker) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

func (b *Blocker) SetTenantID(id uuid.UUID) { b.TenantID = id }

// Alert is a notification raised for a project (deadline, stock level).
type Alert struct {
	ID        uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid"`
	TenantID  uuid.UUID      `json:"tenantId" gorm:"type:uuid;not null;index"`
	ProjectID uuid.UUID      `json:"projectId" gorm:"type:uuid;not null;index"`
	Message   string         `json:"message" gorm:"not null"`
	Level     string         `json:"level" gorm:"type:varchar(10);default:'info'"`
	ReadAt    *time.Time     `json:"readAt"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (a *Alert) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (a *Alert) SetTenantID(id uuid.UUID) { a.TenantID = id }
