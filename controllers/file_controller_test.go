package controllers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atelierworks/atelier-backend/database"
	"github.com/atelierworks/atelier-backend/dto"
	"github.com/atelierworks/atelier-backend/models"
	"github.com/atelierworks/atelier-backend/services"
	"github.com/atelierworks/atelier-backend/storage"
	"github.com/glebarez/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newControllerDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(database.AllModels()...))
	return db
}

func newFileRouter(t *testing.T, db *gorm.DB, p dto.Principal) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	blobs, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ctl := NewFileController(services.NewQueryGateway(db), blobs)
	router := gin.New()
	setPrincipal := func(c *gin.Context) { c.Set("principal", p) }
	router.POST("/projects/:id/files", setPrincipal, ctl.Upload)
	return router
}

func uploadRequest(t *testing.T, path string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", "plan.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("drawing"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUploadAttachesToOwnedProject(t *testing.T) {
	db := newControllerDB(t)

	tenant := models.Tenant{Name: "workshop"}
	require.NoError(t, db.Create(&tenant).Error)
	p := dto.Principal{UserID: uuid.New(), TenantID: tenant.ID, Role: models.RoleManager}

	project := models.Project{TenantID: tenant.ID, Number: "PR001/2025", Name: "Order", State: models.StateProduction}
	require.NoError(t, db.Create(&project).Error)

	router := newFileRouter(t, db, p)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/projects/"+project.ID.String()+"/files"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var record models.ProjectFile
	require.NoError(t, db.First(&record, "project_id = ?", project.ID).Error)
	assert.Equal(t, tenant.ID, record.TenantID)
	assert.Equal(t, "plan.pdf", record.Name)
	assert.Contains(t, record.Path, tenant.ID.String()+"/")
}

func TestUploadRejectsUnknownProject(t *testing.T) {
	db := newControllerDB(t)

	tenant := models.Tenant{Name: "workshop"}
	require.NoError(t, db.Create(&tenant).Error)
	p := dto.Principal{UserID: uuid.New(), TenantID: tenant.ID, Role: models.RoleManager}

	router := newFileRouter(t, db, p)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/projects/"+uuid.NewString()+"/files"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	var n int64
	require.NoError(t, db.Model(&models.ProjectFile{}).Count(&n).Error)
	assert.EqualValues(t, 0, n)
}

func TestUploadRejectsForeignProject(t *testing.T) {
	db := newControllerDB(t)

	mine := models.Tenant{Name: "mine"}
	theirs := models.Tenant{Name: "theirs"}
	require.NoError(t, db.Create(&mine).Error)
	require.NoError(t, db.Create(&theirs).Error)
	p := dto.Principal{UserID: uuid.New(), TenantID: mine.ID, Role: models.RoleManager}

	foreign := models.Project{TenantID: theirs.ID, Number: "PR001/2025", Name: "Theirs", State: models.StateProduction}
	require.NoError(t, db.Create(&foreign).Error)

	router := newFileRouter(t, db, p)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/projects/"+foreign.ID.String()+"/files"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	var n int64
	require.NoError(t, db.Model(&models.ProjectFile{}).Count(&n).Error)
	assert.EqualValues(t, 0, n)
}
