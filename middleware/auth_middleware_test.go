package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atelierworks/atelier-backend/apperr"
	"github.com/atelierworks/atelier-backend/database"
	"github.com/atelierworks/atelier-backend/dto"
	"github.com/atelierworks/atelier-backend/models"
	"github.com/atelierworks/atelier-backend/repositories"
	"github.com/atelierworks/atelier-backend/services"
	"github.com/glebarez/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// stubVerifier accepts exactly one token string
type stubVerifier struct {
	token  string
	claims services.TokenClaims
}

func (s stubVerifier) Verify(token string) (services.TokenClaims, error) {
	if token != s.token {
		return services.TokenClaims{}, apperr.New(apperr.CodeUnauthenticated, "invalid or expired token")
	}
	return s.claims, nil
}

func newMiddlewareDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(database.AllModels()...))
	return db
}

func newAuthRouter(t *testing.T, db *gorm.DB, verifier services.TokenVerifier, extra ...gin.HandlerFunc) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()

	handlers := append([]gin.HandlerFunc{AuthMiddleware(verifier, repositories.NewProfileRepository(db))}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, p)
	})
	router.GET("/protected", handlers...)
	return router
}

func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareResolvesPrincipal(t *testing.T) {
	db := newMiddlewareDB(t)

	userID := uuid.New()
	tenant := models.Tenant{Name: "workshop"}
	require.NoError(t, db.Create(&tenant).Error)
	user := models.User{ID: userID, Email: "w@x.test", Password: "hash"}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&models.Profile{
		UserID: userID, TenantID: tenant.ID, Role: models.RoleManager,
	}).Error)

	verifier := stubVerifier{token: "good", claims: services.TokenClaims{UserID: userID, Email: "w@x.test"}}
	router := newAuthRouter(t, db, verifier)

	w := doRequest(router, "Bearer good")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), tenant.ID.String())
	assert.Contains(t, w.Body.String(), string(models.RoleManager))
}

func TestAuthMiddlewareRejectsBadCredentials(t *testing.T) {
	db := newMiddlewareDB(t)
	verifier := stubVerifier{token: "good", claims: services.TokenClaims{UserID: uuid.New()}}
	router := newAuthRouter(t, db, verifier)

	for _, header := range []string{
		"",
		"good",
		"Basic good",
		"Bearer wrong",
	} {
		w := doRequest(router, header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestAuthMiddlewareRejectsTokenWithoutProfile(t *testing.T) {
	db := newMiddlewareDB(t)

	// valid identity, but no tenant membership
	verifier := stubVerifier{token: "good", claims: services.TokenClaims{UserID: uuid.New()}}
	router := newAuthRouter(t, db, verifier)

	w := doRequest(router, "Bearer good")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "no tenant profile")
}

func TestRequireRole(t *testing.T) {
	db := newMiddlewareDB(t)

	userID := uuid.New()
	tenant := models.Tenant{Name: "workshop"}
	require.NoError(t, db.Create(&tenant).Error)
	require.NoError(t, db.Create(&models.User{ID: userID, Email: "v@x.test", Password: "hash"}).Error)
	require.NoError(t, db.Create(&models.Profile{
		UserID: userID, TenantID: tenant.ID, Role: models.RoleViewer,
	}).Error)

	verifier := stubVerifier{token: "good", claims: services.TokenClaims{UserID: userID}}

	viewerOK := newAuthRouter(t, db, verifier, RequireRole(models.RoleViewer, models.RoleAdmin))
	assert.Equal(t, http.StatusOK, doRequest(viewerOK, "Bearer good").Code)

	adminOnly := newAuthRouter(t, db, verifier, RequireRole(models.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, doRequest(adminOnly, "Bearer good").Code)
}

func TestGetPrincipalMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetPrincipal(c)
	assert.False(t, ok)

	c.Set("principal", "not a principal")
	_, ok = GetPrincipal(c)
	assert.False(t, ok)

	c.Set("principal", dto.Principal{UserID: uuid.New()})
	p, ok := GetPrincipal(c)
	assert.True(t, ok)
	assert.NotEqual(t, uuid.Nil, p.UserID)
}
