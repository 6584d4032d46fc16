package middleware

import (
	"errors"
	"strings"

	"github.com/atelierworks/atelier-backend/apperr"
	"github.com/atelierworks/atelier-backend/dto"
	"github.com/atelierworks/atelier-backend/repositories"
	"github.com/atelierworks/atelier-backend/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const principalKey = "principal"

// AuthMiddleware resolves the request principal: bearer token → identity,
// profile lookup → tenant and role. Core handlers receive the principal as
// input and never resolve it themselves.
func AuthMiddleware(verifier services.TokenVerifier, profiles *repositories.ProfileRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, apperr.New(apperr.CodeUnauthenticated, "missing authorization token"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortWithError(c, apperr.New(apperr.CodeUnauthenticated, "invalid authorization format, expected Bearer token"))
			return
		}

		claims, err := verifier.Verify(parts[1])
		if err != nil {
			abortWithError(c, err)
			return
		}

		profile, err := profiles.FindByUserID(claims.UserID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			abortWithError(c, apperr.New(apperr.CodeUnauthenticated, "no tenant profile for user"))
			return
		}
		if err != nil {
			abortWithError(c, apperr.Wrap(apperr.CodeUpstream, "profile lookup failed", err))
			return
		}

		c.Set(principalKey, dto.Principal{
			UserID:   claims.UserID,
			TenantID: profile.TenantID,
			Role:     profile.Role,
		})
		c.Next()
	}
}

// GetPrincipal retrieves the resolved principal from the request context
func GetPrincipal(c *gin.Context) (dto.Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return dto.Principal{}, false
	}
	p, ok := v.(dto.Principal)
	return p, ok
}

func abortWithError(c *gin.Context, err error) {
	code := apperr.CodeOf(err)
	c.AbortWithStatusJSON(apperr.HTTPStatus(code), gin.H{
		"status":  "error",
		"code":    string(code),
		"message": apperr.MessageOf(err),
	})
}
