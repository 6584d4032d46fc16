package middleware

import (
	"github.com/atelierworks/atelier-backend/apperr"
	"github.com/atelierworks/atelier-backend/models"
	"github.com/gin-gonic/gin"
)

// RequireRole gates a route to the given roles. Must run after
// AuthMiddleware.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			abortWithError(c, apperr.New(apperr.CodeUnauthenticated, "authentication required"))
			return
		}
		if !allowed[p.Role] {
			abortWithError(c, apperr.New(apperr.CodeForbidden, "insufficient role"))
			return
		}
		c.Next()
	}
}
