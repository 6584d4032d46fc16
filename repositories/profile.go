package repositories

import (
	"github.com/atelierworks/atelier-backend/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileRepository handles database operations for tenant profiles
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository instance
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// FindByUserID retrieves the profile completing a principal
func (r *ProfileRepository) FindByUserID(userID uuid.UUID) (models.Profile, error) {
	var profile models.Profile
	result := r.db.Where("user_id = ?", userID).First(&profile)
	return profile, result.Error
}
