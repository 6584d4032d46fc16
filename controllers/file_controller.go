package controllers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/atelierworks/atelier-backend/apperr"
	"github.com/atelierworks/atelier-backend/dto"
	"github.com/atelierworks/atelier-backend/logger"
	"github.com/atelierworks/atelier-backend/models"
	"github.com/atelierworks/atelier-backend/services"
	"github.com/atelierworks/atelier-backend/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const signURLExpiry = 15 * time.Minute

// FileController uploads and serves project files. Blobs are written through
// the tenant-scoped store wrapper; the file record itself is written through
// the gateway like any other row.
type FileController struct {
	gateway *services.QueryGateway
	blobs   storage.BlobStore
}

func NewFileController(gateway *services.QueryGateway, blobs storage.BlobStore) *FileController {
	return &FileController{gateway: gateway, blobs: blobs}
}

// Upload handles POST /api/projects/:id/files
func (ctl *FileController) Upload(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.New(apperr.CodeInvalid, "invalid project id"))
		return
	}

	// the target project must exist in the caller's tenant before anything
	// is written
	if _, err := ctl.gateway.Execute(p, dto.QueryRequest{
		Operation: "select",
		Table:     "projects",
		Filters:   []dto.Filter{{Type: "eq", Column: "id", Value: projectID.String()}},
		Single:    dto.ReturnSingle,
	}); err != nil {
		respondError(c, err)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		respondError(c, apperr.Wrap(apperr.CodeInvalid, "file form field is required", err))
		return
	}

	f, err := header.Open()
	if err != nil {
		respondError(c, apperr.Wrap(apperr.CodeInvalid, "could not open uploaded file", err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		respondError(c, apperr.Wrap(apperr.CodeUpstream, "could not read uploaded file", err))
		return
	}

	contentType := header.Header.Get("Content-Type")
	ts := storage.ForTenant(ctl.blobs, p.TenantID)
	rel := fmt.Sprintf("projects/%s/%s", projectID, header.Filename)

	fullPath, err := ts.Put(c.Request.Context(), rel, data, contentType)
	if err != nil {
		respondError(c, err)
		return
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"projectId":   projectID,
		"name":        header.Filename,
		"path":        fullPath,
		"size":        header.Size,
		"contentType": contentType,
	})
	result, err := ctl.gateway.Execute(p, dto.QueryRequest{
		Operation: "insert",
		Table:     "project_files",
		Payload:   payload,
	})
	if err != nil {
		// the record is the source of truth; remove the orphaned blob
		if derr := ts.Delete(c.Request.Context(), fullPath); derr != nil {
			logger.Get().Warn("orphaned blob cleanup failed",
				zap.String("path", fullPath), zap.Error(derr))
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": result.Data})
}

// Download handles GET /api/files/:id
func (ctl *FileController) Download(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	record, err := ctl.findRecord(c, p)
	if err != nil {
		respondError(c, err)
		return
	}

	ts := storage.ForTenant(ctl.blobs, p.TenantID)
	data, err := ts.Get(c.Request.Context(), record.Path)
	if err != nil {
		respondError(c, err)
		return
	}

	contentType := record.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.Name))
	c.Data(http.StatusOK, contentType, data)
}

// SignURL handles GET /api/files/:id/url
func (ctl *FileController) SignURL(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	record, err := ctl.findRecord(c, p)
	if err != nil {
		respondError(c, err)
		return
	}

	ts := storage.ForTenant(ctl.blobs, p.TenantID)
	url, err := ts.SignURL(c.Request.Context(), record.Path, signURLExpiry)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"url": url}})
}

// Delete handles DELETE /api/files/:id
func (ctl *FileController) Delete(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	record, err := ctl.findRecord(c, p)
	if err != nil {
		respondError(c, err)
		return
	}

	if _, err := ctl.gateway.Execute(p, dto.QueryRequest{
		Operation: "delete",
		Table:     "project_files",
		Filters:   []dto.Filter{{Type: "eq", Column: "id", Value: record.ID.String()}},
	}); err != nil {
		respondError(c, err)
		return
	}

	ts := storage.ForTenant(ctl.blobs, p.TenantID)
	if err := ts.Delete(c.Request.Context(), record.Path); err != nil {
		logger.Get().Warn("blob delete failed after record delete",
			zap.String("path", record.Path), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "file deleted"})
}

// findRecord loads the tenant-scoped file row for the :id param
func (ctl *FileController) findRecord(c *gin.Context, p dto.Principal) (models.ProjectFile, error) {
	result, err := ctl.gateway.Execute(p, dto.QueryRequest{
		Operation: "select",
		Table:     "project_files",
		Filters:   []dto.Filter{{Type: "eq", Column: "id", Value: c.Param("id")}},
		Single:    dto.ReturnSingle,
	})
	if err != nil {
		return models.ProjectFile{}, err
	}
	record, ok := result.Data.(models.ProjectFile)
	if !ok {
		return models.ProjectFile{}, apperr.New(apperr.CodeUpstream, "unexpected row type for file record")
	}
	return record, nil
}
