package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ArchiveType tags why a project was archived
type ArchiveType string

const (
	ArchiveCompleted ArchiveType = "completed"
	ArchiveFailed    ArchiveType = "failed"
)

// ArchivedProject is a point-in-time denormalized copy of a production
// project. Immutable once written; the live graph is deleted only after the
// copy succeeds.
type ArchivedProject struct {
	ID          uuid.UUID   `json:"id" gorm:"primaryKey;type:uuid"`
	TenantID    uuid.UUID   `json:"tenantId" gorm:"type:uuid;not null;index"`
	OriginalID  uuid.UUID   `json:"originalId" gorm:"type:uuid;not null;index"`
	Number      string      `json:"number" gorm:"not null"`
	Name        string      `json:"name" gorm:"not null"`
	Description string      `json:"description"`
	ClientID    *uuid.UUID  `json:"clientId" gorm:"type:uuid"`
	ArchiveType ArchiveType `json:"archiveType" gorm:"type:varchar(12);not null"`
	ArchivedAt  time.Time   `json:"archivedAt"`
	CreatedAt   time.Time   `json:"createdAt"`
}

func (a *ArchivedProject) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ArchivedPhase is the archived counterpart of a Phase row.
type ArchivedPhase struct {
	ID        uuid.UUID   `json:"id" gorm:"primaryKey;type:uuid"`
	ArchiveID uuid.UUID   `json:"archiveId" gorm:"type:uuid;not null;index"`
	TenantID  uuid.UUID   `json:"tenantId" gorm:"type:uuid;not null;index"`
	PhaseKey  string      `json:"phaseKey" gorm:"not null"`
	Status    PhaseStatus `json:"status"`
	Position  int         `json:"position"`
	CreatedAt time.Time   `json:"createdAt"`
}

func (a *ArchivedPhase) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ArchivedMaterial is the archived counterpart of a Material row.
type ArchivedMaterial struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	ArchiveID uuid.UUID `json:"archiveId" gorm:"type:uuid;not null;index"`
	TenantID  uuid.UUID `json:"tenantId" gorm:"type:uuid;not null;index"`
	Name      string    `json:"name" gorm:"not null"`
	Quantity  float64   `json:"quantity"`
	Unit      string    `json:"unit"`
	CreatedAt time.Time `json:"createdAt"`
}

func (a *ArchivedMaterial) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ArchivedFile is the archived counterpart of a ProjectFile row. The blob
// itself stays where it is; only the reference moves.
type ArchivedFile struct {
	ID          uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	ArchiveID   uuid.UUID `json:"archiveId" gorm:"type:uuid;not null;index"`
	TenantID    uuid.UUID `json:"tenantId" gorm:"type:uuid;not null;index"`
	Name        string    `json:"name" gorm:"not null"`
	Path        string    `json:"path" gorm:"not null"`
	Size        int64     `json:"size"`
	ContentType string    `json:"contentType"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (a *ArchivedFile) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
