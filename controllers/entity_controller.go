package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/atelierworks/atelier-backend/apperr"
	"github.com/atelierworks/atelier-backend/dto"
	"github.com/atelierworks/atelier-backend/services"
	"github.com/gin-gonic/gin"
)

// EntityController serves the uniform CRUD surface for a single allow-listed
// table (clients, suppliers, employees, stock items). It is a thin consumer
// of the two core contracts: every read/write goes through the query gateway
// and numbered entities allocate through the sequence allocator.
type EntityController struct {
	table        string
	searchColumn string
	gateway      *services.QueryGateway
	alloc        *services.SequenceAllocator
	sequenceKind services.SequenceKind
}

// NewEntityController creates the CRUD surface for one table. kind is empty
// for tables without generated numbers.
func NewEntityController(table, searchColumn string, gateway *services.QueryGateway, alloc *services.SequenceAllocator, kind services.SequenceKind) *EntityController {
	return &EntityController{
		table:        table,
		searchColumn: searchColumn,
		gateway:      gateway,
		alloc:        alloc,
		sequenceKind: kind,
	}
}

// List handles GET /api/<table>
func (ctl *EntityController) List(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	var filters []dto.Filter
	if search := c.Query("search"); search != "" {
		filters = append(filters, dto.Filter{
			Type:   "ilike",
			Column: ctl.searchColumn,
			Value:  "%" + search + "%",
		})
	}

	result, err := ctl.gateway.Execute(p, dto.QueryRequest{
		Operation: "select",
		Table:     ctl.table,
		Filters:   filters,
		Order:     []dto.OrderSpec{{Column: "created_at", Desc: true}},
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": result.Data, "count": result.Count})
}

// Get handles GET /api/<table>/:id
func (ctl *EntityController) Get(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	result, err := ctl.gateway.Execute(p, dto.QueryRequest{
		Operation: "select",
		Table:     ctl.table,
		Filters:   []dto.Filter{{Type: "eq", Column: "id", Value: c.Param("id")}},
		Single:    dto.ReturnSingle,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": result.Data})
}

// Create handles POST /api/<table>
func (ctl *EntityController) Create(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondInvalid(c, err)
		return
	}

	var result dto.QueryResult
	insert := func(body map[string]interface{}) error {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperr.Wrap(apperr.CodeInvalid, "malformed payload", err)
		}
		result, err = ctl.gateway.Execute(p, dto.QueryRequest{
			Operation: "insert",
			Table:     ctl.table,
			Payload:   payload,
		})
		return err
	}

	var err error
	if ctl.sequenceKind != "" {
		// numbered entities allocate under the conflict retry loop
		_, err = ctl.alloc.Allocate(p.TenantID, ctl.sequenceKind, func(number string) error {
			body["number"] = number
			return insert(body)
		})
	} else {
		err = insert(body)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": result.Data})
}

// Update handles PUT /api/<table>/:id
func (ctl *EntityController) Update(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var body json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		respondInvalid(c, err)
		return
	}

	result, err := ctl.gateway.Execute(p, dto.QueryRequest{
		Operation: "update",
		Table:     ctl.table,
		Filters:   []dto.Filter{{Type: "eq", Column: "id", Value: c.Param("id")}},
		Payload:   body,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if result.Count == 0 {
		respondError(c, apperr.New(apperr.CodeNotFound, "row not found"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "count": result.Count})
}

// Delete handles DELETE /api/<table>/:id
func (ctl *EntityController) Delete(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	result, err := ctl.gateway.Execute(p, dto.QueryRequest{
		Operation: "delete",
		Table:     ctl.table,
		Filters:   []dto.Filter{{Type: "eq", Column: "id", Value: c.Param("id")}},
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if result.Count == 0 {
		respondError(c, apperr.New(apperr.CodeNotFound, "row not found"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "count": result.Count})
}
