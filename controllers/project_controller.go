package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/atelierworks/atelier-backend/apperr"
	"github.com/atelierworks/atelier-backend/dto"
	"github.com/atelierworks/atelier-backend/models"
	"github.com/atelierworks/atelier-backend/repositories"
	"github.com/atelierworks/atelier-backend/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectController exposes project listing and the lifecycle transitions
type ProjectController struct {
	lifecycle *services.LifecycleService
	projects  *repositories.ProjectRepository
}

func NewProjectController(lifecycle *services.LifecycleService, projects *repositories.ProjectRepository) *ProjectController {
	return &ProjectController{lifecycle: lifecycle, projects: projects}
}

// List handles GET /api/projects
func (ctl *ProjectController) List(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("pageSize", "10"))
	if err != nil || pageSize < 1 {
		pageSize = 10
	}

	sortBy := c.DefaultQuery("sortBy", "created_at")
	sortOrder := c.DefaultQuery("sortOrder", "desc")
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	// Valid sort columns (whitelist approach for security)
	validSortColumns := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"name":       true,
		"number":     true,
		"due_date":   true,
	}
	if !validSortColumns[sortBy] {
		sortBy = "created_at"
	}

	state := models.ProjectState(c.Query("state"))
	if state != "" && state != models.StatePipeline && state != models.StateProduction {
		respondError(c, apperr.Newf(apperr.CodeInvalid, "unknown state filter %q", state))
		return
	}

	projects, totalCount, err := ctl.projects.FindWithPagination(
		p.TenantID, state, page, pageSize, sortBy, sortOrder, c.Query("search"))
	if err != nil {
		respondError(c, apperr.Wrap(apperr.CodeUpstream, "failed to retrieve projects", err))
		return
	}

	totalPages := int(totalCount) / pageSize
	if int(totalCount)%pageSize > 0 {
		totalPages++
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": dto.ProjectListResponse{
		Projects:   projects,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}})
}

// Get handles GET /api/projects/:id
func (ctl *ProjectController) Get(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.New(apperr.CodeInvalid, "invalid project id"))
		return
	}

	project, err := ctl.projects.FindByID(p.TenantID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, apperr.New(apperr.CodeNotFound, "project not found"))
		return
	}
	if err != nil {
		respondError(c, apperr.Wrap(apperr.CodeUpstream, "failed to retrieve project", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": project})
}

// Create handles POST /api/projects
func (ctl *ProjectController) Create(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var req dto.ProjectCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	result, err := ctl.lifecycle.Create(p, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": result})
}

// Convert handles POST /api/projects/:id/convert
func (ctl *ProjectController) Convert(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.New(apperr.CodeInvalid, "invalid project id"))
		return
	}

	result, err := ctl.lifecycle.Convert(p, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": result})
}

// Archive handles POST /api/projects/:id/archive
func (ctl *ProjectController) Archive(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.New(apperr.CodeInvalid, "invalid project id"))
		return
	}

	var req dto.ArchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	result, err := ctl.lifecycle.Archive(p, id, models.ArchiveType(req.ArchiveType))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": result})
}

// Delete handles DELETE /api/projects/:id
func (ctl *ProjectController) Delete(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.New(apperr.CodeInvalid, "invalid project id"))
		return
	}

	if err := ctl.lifecycle.Delete(p, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "project deleted"})
}

// ListArchives handles GET /api/archives
func (ctl *ProjectController) ListArchives(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	archives, err := ctl.projects.ListArchives(p.TenantID)
	if err != nil {
		respondError(c, apperr.Wrap(apperr.CodeUpstream, "failed to retrieve archives", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": archives})
}
