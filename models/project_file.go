package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectFile records a blob stored for a project. Path is always prefixed
// with the owning tenant's id; the storage layer rejects anything else.
type ProjectFile struct {
	ID          uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid"`
	TenantID    uuid.UUID      `json:"tenantId" gorm:"type:uuid;not null;index"`
	ProjectID   uuid.UUID      `json:"projectId" gorm:"type:uuid;not null;index"`
	Name        string         `json:"name" gorm:"not null"`
	Path        string         `json:"path" gorm:"not null"`
	Size        int64          `json:"size"`
	ContentType string         `json:"contentType"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

func (f *ProjectFile) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

func (f *ProjectFile) SetTenantID(id uuid.UUID) { f.TenantID = id }
