package controllers

import (
	"net/http"

	"github.com/atelierworks/atelier-backend/dto"
	"github.com/atelierworks/atelier-backend/services"
	"github.com/gin-gonic/gin"
)

// QueryController exposes the generic query gateway over one endpoint.
// Everything dangerous (table allow-list, tenant scoping, payload pinning)
// happens inside the gateway; this layer only parses and shapes.
type QueryController struct {
	gateway *services.QueryGateway
}

func NewQueryController(gateway *services.QueryGateway) *QueryController {
	return &QueryController{gateway: gateway}
}

// Execute handles POST /api/query
func (ctl *QueryController) Execute(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var req dto.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	result, err := ctl.gateway.Execute(p, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   result.Data,
		"count":  result.Count,
	})
}
