package controllers

import (
	"net/http"

	"github.com/atelierworks/atelier-backend/apperr"
	"github.com/atelierworks/atelier-backend/dto"
	"github.com/atelierworks/atelier-backend/middleware"
	"github.com/gin-gonic/gin"
)

// respondError writes the error envelope with its stable code. Store detail
// never leaks for auth failures; apperr already strips it.
func respondError(c *gin.Context, err error) {
	code := apperr.CodeOf(err)
	c.JSON(apperr.HTTPStatus(code), gin.H{
		"status":  "error",
		"code":    string(code),
		"message": apperr.MessageOf(err),
	})
}

// respondInvalid wraps gin binding failures into the envelope
func respondInvalid(c *gin.Context, err error) {
	respondError(c, apperr.Wrap(apperr.CodeInvalid, "invalid request body", err))
}

// requirePrincipal fetches the resolved principal or writes a 401
func requirePrincipal(c *gin.Context) (dto.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  "error",
			"code":    string(apperr.CodeUnauthenticated),
			"message": "user not authenticated",
		})
	}
	return p, ok
}
