package services

import (
	"encoding/json"
	"testing"

	"github.com/atelierworks/atelier-backend/apperr"
	"github.com/atelierworks/atelier-backend/dto"
	"github.com/atelierworks/atelier-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayRejectsUnknownOperationAndTable(t *testing.T) {
	db := newTestDB(t)
	g := NewQueryGateway(db)
	p := newTestPrincipal(t, db)

	_, err := g.Execute(p, dto.QueryRequest{Operation: "drop", Table: "clients"})
	assert.Equal(t, apperr.CodeInvalid, apperr.CodeOf(err))

	_, err = g.Execute(p, dto.QueryRequest{Operation: "select", Table: "users"})
	assert.Equal(t, apperr.CodeForbidden, apperr.CodeOf(err))

	_, err = g.Execute(p, dto.QueryRequest{Operation: "select", Table: "tenants"})
	assert.Equal(t, apperr.CodeForbidden, apperr.CodeOf(err))
}

func TestGatewayInsertPinsTenant(t *testing.T) {
	db := newTestDB(t)
	g := NewQueryGateway(db)
	p := newTestPrincipal(t, db)
	other := newTestPrincipal(t, db)

	// payload tries to smuggle a foreign tenant id
	payload, _ := json.Marshal(map[string]interface{}{
		"tenantId": other.TenantID,
		"number":   "CL0001",
		"name":     "Nordic Interiors",
	})
	result, err := g.Execute(p, dto.QueryRequest{
		Operation: "insert",
		Table:     "clients",
		Payload:   payload,
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, result.Count)

	row, ok := result.Data.(tenantRow)
	require.True(t, ok)
	client := row.(*models.Client)
	assert.Equal(t, p.TenantID, client.TenantID)

	var stored models.Client
	require.NoError(t, db.First(&stored, "number = ?", "CL0001").Error)
	assert.Equal(t, p.TenantID, stored.TenantID)
}

func TestGatewayInsertArrayPayload(t *testing.T) {
	db := newTestDB(t)
	g := NewQueryGateway(db)
	p := newTestPrincipal(t, db)

	payload := []byte(`[{"number":"CL0001","name":"A"},{"number":"CL0002","name":"B"}]`)
	result, err := g.Execute(p, dto.QueryRequest{
		Operation: "insert",
		Table:     "clients",
		Payload:   payload,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.Count)

	var n int64
	require.NoError(t, db.Model(&models.Client{}).Where("tenant_id = ?", p.TenantID).Count(&n).Error)
	assert.EqualValues(t, 2, n)
}

func TestGatewayInsertDuplicateNumberConflicts(t *testing.T) {
	db := newTestDB(t)
	g := NewQueryGateway(db)
	p := newTestPrincipal(t, db)

	payload := []byte(`{"number":"CL0001","name":"A"}`)
	_, err := g.Execute(p, dto.QueryRequest{Operation: "insert", Table: "clients", Payload: payload})
	require.NoError(t, err)

	_, err = g.Execute(p, dto.QueryRequest{Operation: "insert", Table: "clients", Payload: payload})
	assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(err))
}

func TestGatewaySelectIsTenantScoped(t *testing.T) {
	db := newTestDB(t)
	g := NewQueryGateway(db)
	p := newTestPrincipal(t, db)
	other := newTestPrincipal(t, db)

	require.NoError(t, db.Create(&models.Client{TenantID: p.TenantID, Number: "CL0001", Name: "Mine"}).Error)
	require.NoError(t, db.Create(&models.Client{TenantID: other.TenantID, Number: "CL0001", Name: "Theirs"}).Error)

	result, err := g.Execute(p, dto.QueryRequest{Operation: "select", Table: "clients"})
	require.NoError(t, err)
	require.EqualValues(t, 1, result.Count)

	rows := result.Data.([]models.Client)
	assert.Equal(t, "Mine", rows[0].Name)

	// an explicit filter for the foreign row still returns nothing
	result, err = g.Execute(p, dto.QueryRequest{
		Operation: "select",
		Table:     "clients",
		Filters:   []dto.Filter{{Type: "eq", Column: "name", Value: "Theirs"}},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 0, result.Count)
}

func TestGatewaySelectSingleSemantics(t *testing.T) {
	db := newTestDB(t)
	g := NewQueryGateway(db)
	p := newTestPrincipal(t, db)

	require.NoError(t, db.Create(&models.Client{TenantID: p.TenantID, Number: "CL0001", Name: "Oak"}).Error)
	require.NoError(t, db.Create(&models.Client{TenantID: p.TenantID, Number: "CL0002", Name: "Oak"}).Error)

	// exactly one match
	result, err := g.Execute(p, dto.QueryRequest{
		Operation: "select",
		Table:     "clients",
		Filters:   []dto.Filter{{Type: "eq", Column: "number", Value: "CL0001"}},
		Single:    dto.ReturnSingle,
	})
	require.NoError(t, err)
	assert.Equal(t, "CL0001", result.Data.(models.Client).Number)

	// zero matches
	_, err = g.Execute(p, dto.QueryRequest{
		Operation: "select",
		Table:     "clients",
		Filters:   []dto.Filter{{Type: "eq", Column: "number", Value: "CL9999"}},
		Single:    dto.ReturnSingle,
	})
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))

	// more than one match is ambiguous, not first-wins
	_, err = g.Execute(p, dto.QueryRequest{
		Operation: "select",
		Table:     "clients",
		Filters:   []dto.Filter{{Type: "eq", Column: "name", Value: "Oak"}},
		Single:    dto.ReturnSingle,
	})
	assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(err))
}

func TestGatewaySelectMaybeSingle(t *testing.T) {
	db := newTestDB(t)
	g := NewQueryGateway(db)
	p := newTestPrincipal(t, db)

	result, err := g.Execute(p, dto.QueryRequest{
		Operation: "select",
		Table:     "clients",
		Filters:   []dto.Filter{{Type: "eq", Column: "number", Value: "CL0001"}},
		Single:    dto.ReturnMaybeSingle,
	})
	require.NoError(t, err)
	assert.Nil(t, result.Data)
	assert.EqualValues(t, 0, result.Count)

	require.NoError(t, db.Create(&models.Client{TenantID: p.TenantID, Number: "CL0001", Name: "Oak"}).Error)
	require.NoError(t, db.Create(&models.Client{TenantID: p.TenantID, Number: "CL0002", Name: "Oak"}).Error)

	_, err = g.Execute(p, dto.QueryRequest{
		Operation: "select",
		Table:     "clients",
		Filters:   []dto.Filter{{Type: "eq", Column: "name", Value: "Oak"}},
		Single:    dto.ReturnMaybeSingle,
	})
	assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(err))
}

func TestGatewaySelectValidatesColumns(t *testing.T) {
	db := newTestDB(t)
	g := NewQueryGateway(db)
	p := newTestPrincipal(t, db)

	_, err := g.Execute(p, dto.QueryRequest{
		Operation: "select",
		Table:     "clients",
		Select:    []string{"name; DROP TABLE clients"},
	})
	assert.Equal(t, apperr.CodeInvalid, apperr.CodeOf(err))

	_, err = g.Execute(p, dto.QueryRequest{
		Operation: "select",
		Table:     "clients",
		Order:     []dto.OrderSpec{{Column: "name DESC; --"}},
	})
	assert.Equal(t, apperr.CodeInvalid, apperr.CodeOf(err))
}

func TestGatewayUpdateCannotCrossTenants(t *testing.T) {
	db := newTestDB(t)
	g := NewQueryGateway(db)
	p := newTestPrincipal(t, db)
	other := newTestPrincipal(t, db)

	foreign := models.Client{TenantID: other.TenantID, Number: "CL0001", Name: "Theirs"}
	require.NoError(t, db.Create(&foreign).Error)

	result, err := g.Execute(p, dto.QueryRequest{
		Operation: "update",
		Table:     "clients",
		Filters:   []dto.Filter{{Type: "eq", Column: "id", Value: foreign.ID.String()}},
		Payload:   []byte(`{"name":"Hijacked"}`),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 0, result.Count)

	var stored models.Client
	require.NoError(t, db.First(&stored, "id = ?", foreign.ID).Error)
	assert.Equal(t, "Theirs", stored.Name)
}

func TestGatewayUpdateStripsProtectedColumns(t *testing.T) {
	db := newTestDB(t)
	g := NewQueryGateway(db)
	p := newTestPrincipal(t, db)
	other := newTestPrincipal(t, db)

	mine := models.Client{TenantID: p.TenantID, Number: "CL0001", Name: "Mine"}
	require.NoError(t, db.Create(&mine).Error)

	payload, _ := json.Marshal(map[string]interface{}{
		"tenant_id": other.TenantID,
		"name":      "Renamed",
	})
	result, err := g.Execute(p, dto.QueryRequest{
		Operation: "update",
		Table:     "clients",
		Filters:   []dto.Filter{{Type: "eq", Column: "id", Value: mine.ID.String()}},
		Payload:   payload,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.Count)

	var stored models.Client
	require.NoError(t, db.First(&stored, "id = ?", mine.ID).Error)
	assert.Equal(t, "Renamed", stored.Name)
	assert.Equal(t, p.TenantID, stored.TenantID)

	// a payload that is nothing but protected columns has no effect to apply
	_, err = g.Execute(p, dto.QueryRequest{
		Operation: "update",
		Table:     "clients",
		Filters:   []dto.Filter{{Type: "eq", Column: "id", Value: mine.ID.String()}},
		Payload:   []byte(`{"tenant_id":"x","id":"y"}`),
	})
	assert.Equal(t, apperr.CodeInvalid, apperr.CodeOf(err))
}

func TestGatewayDeleteIsTenantScoped(t *testing.T) {
	db := newTestDB(t)
	g := NewQueryGateway(db)
	p := newTestPrincipal(t, db)
	other := newTestPrincipal(t, db)

	foreign := models.Client{TenantID: other.TenantID, Number: "CL0001", Name: "Theirs"}
	require.NoError(t, db.Create(&foreign).Error)
	mine := models.Client{TenantID: p.TenantID, Number: "CL0001", Name: "Mine"}
	require.NoError(t, db.Create(&mine).Error)

	result, err := g.Execute(p, dto.QueryRequest{
		Operation: "delete",
		Table:     "clients",
		Filters:   []dto.Filter{{Type: "eq", Column: "number", Value: "CL0001"}},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.Count)

	var n int64
	require.NoError(t, db.Model(&models.Client{}).Where("tenant_id = ?", other.TenantID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestGatewayUpsertUpdatesExistingRow(t *testing.T) {
	db := newTestDB(t)
	g := NewQueryGateway(db)
	p := newTestPrincipal(t, db)

	original := models.Client{TenantID: p.TenantID, Number: "CL0001", Name: "Before"}
	require.NoError(t, db.Create(&original).Error)

	payload, _ := json.Marshal(map[string]interface{}{
		"id":     original.ID,
		"number": "CL0001",
		"name":   "After",
	})
	result, err := g.Execute(p, dto.QueryRequest{
		Operation: "upsert",
		Table:     "clients",
		Payload:   payload,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.Count)

	var stored models.Client
	require.NoError(t, db.First(&stored, "id = ?", original.ID).Error)
	assert.Equal(t, "After", stored.Name)
}

func TestGatewayUpsertCannotHijackForeignRow(t *testing.T) {
	db := newTestDB(t)
	g := NewQueryGateway(db)
	p := newTestPrincipal(t, db)
	other := newTestPrincipal(t, db)

	victim := models.Client{TenantID: other.TenantID, Number: "CL0001", Name: "Victim"}
	require.NoError(t, db.Create(&victim).Error)

	// payload carries the foreign row's primary key
	payload, _ := json.Marshal(map[string]interface{}{
		"id":     victim.ID,
		"number": "CL9999",
		"name":   "hijacked",
	})
	_, err := g.Execute(p, dto.QueryRequest{
		Operation: "upsert",
		Table:     "clients",
		Payload:   payload,
	})
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))

	// the foreign row is untouched: same tenant, same data
	var stored models.Client
	require.NoError(t, db.First(&stored, "id = ?", victim.ID).Error)
	assert.Equal(t, other.TenantID, stored.TenantID)
	assert.Equal(t, "Victim", stored.Name)
	assert.Equal(t, "CL0001", stored.Number)

	// and nothing leaked into the caller's tenant
	var n int64
	require.NoError(t, db.Model(&models.Client{}).Where("tenant_id = ?", p.TenantID).Count(&n).Error)
	assert.EqualValues(t, 0, n)
}

func TestGatewayUpsertWithFreshIDInserts(t *testing.T) {
	db := newTestDB(t)
	g := NewQueryGateway(db)
	p := newTestPrincipal(t, db)

	payload := []byte(`{"number":"CL0001","name":"New"}`)
	result, err := g.Execute(p, dto.QueryRequest{
		Operation: "upsert",
		Table:     "clients",
		Payload:   payload,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.Count)

	var stored models.Client
	require.NoError(t, db.First(&stored, "number = ?", "CL0001").Error)
	assert.Equal(t, p.TenantID, stored.TenantID)
}

func TestGatewayInsertRequiresPayload(t *testing.T) {
	db := newTestDB(t)
	g := NewQueryGateway(db)
	p := newTestPrincipal(t, db)

	_, err := g.Execute(p, dto.QueryRequest{Operation: "insert", Table: "clients"})
	assert.Equal(t, apperr.CodeInvalid, apperr.CodeOf(err))

	_, err = g.Execute(p, dto.QueryRequest{Operation: "insert", Table: "clients", Payload: []byte(`[]`)})
	assert.Equal(t, apperr.CodeInvalid, apperr.CodeOf(err))
}
