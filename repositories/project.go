package repositories

import (
	"github.com/atelierworks/atelier-backend/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectRepository handles tenant-scoped database reads for projects. Every
// query carries the tenant predicate; there is no unscoped variant.
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository instance
func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// FindByID retrieves a project with its phases
func (r *ProjectRepository) FindByID(tenantID, id uuid.UUID) (models.Project, error) {
	var project models.Project
	result := r.db.Preload("Phases", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("tenant_id = ? AND id = ?", tenantID, id).First(&project)
	return project, result.Error
}

// FindWithPagination retrieves projects with pagination, filtering and sorting
func (r *ProjectRepository) FindWithPagination(
	tenantID uuid.UUID,
	state models.ProjectState,
	page, pageSize int,
	sortBy, sortOrder string,
	search string) ([]models.Project, int64, error) {

	var projects []models.Project
	var totalCount int64

	db := r.db.Model(&models.Project{}).Where("tenant_id = ?", tenantID)

	if state != "" {
		db = db.Where("state = ?", state)
	}

	if search != "" {
		searchPattern := "%" + search + "%"
		db = db.Where("(LOWER(name) LIKE LOWER(?) OR LOWER(number) LIKE LOWER(?))", searchPattern, searchPattern)
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	orderString := sortBy + " " + sortOrder
	if err := db.Order(orderString).Limit(pageSize).Offset(offset).Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	return projects, totalCount, nil
}

// FindArchive retrieves one archive record with its copies preloaded lazily
// by the caller when needed
func (r *ProjectRepository) FindArchive(tenantID, id uuid.UUID) (models.ArchivedProject, error) {
	var archive models.ArchivedProject
	result := r.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&archive)
	return archive, result.Error
}

// ListArchives retrieves archive records for a tenant, newest first
func (r *ProjectRepository) ListArchives(tenantID uuid.UUID) ([]models.ArchivedProject, error) {
	var archives []models.ArchivedProject
	result := r.db.Where("tenant_id = ?", tenantID).Order("archived_at DESC").Find(&archives)
	return archives, result.Error
}
