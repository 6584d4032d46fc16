package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"

	"github.com/atelierworks/atelier-backend/apperr"
	"github.com/atelierworks/atelier-backend/dto"
	"github.com/atelierworks/atelier-backend/metrics"
	"github.com/atelierworks/atelier-backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Operation is the closed set of gateway operations. Operation strings from
// the wire are parsed at the boundary; nothing downstream matches on strings.
type Operation int

const (
	OpSelect Operation = iota
	OpInsert
	OpUpdate
	OpDelete
	OpUpsert
)

var operationNames = map[string]Operation{
	"select": OpSelect,
	"insert": OpInsert,
	"update": OpUpdate,
	"delete": OpDelete,
	"upsert": OpUpsert,
}

// ParseOperation validates an operation string from the wire
func ParseOperation(s string) (Operation, error) {
	op, ok := operationNames[s]
	if !ok {
		return 0, apperr.Newf(apperr.CodeInvalid, "unknown operation %q", s)
	}
	return op, nil
}

func (op Operation) String() string {
	for name, o := range operationNames {
		if o == op {
			return name
		}
	}
	return "unknown"
}

// QueryGateway performs filtered CRUD against the allow-listed tables while
// forcing tenant scope on every branch. Reads AND the tenant predicate ahead
// of caller filters; writes pin tenant_id to the principal's tenant, so a
// caller can neither read nor write outside its own tenant.
type QueryGateway struct {
	db *gorm.DB
}

// NewQueryGateway creates a gateway over an injected store handle
func NewQueryGateway(db *gorm.DB) *QueryGateway {
	return &QueryGateway{db: db}
}

// Execute runs one gateway operation for the given principal.
func (g *QueryGateway) Execute(p dto.Principal, req dto.QueryRequest) (dto.QueryResult, error) {
	op, err := ParseOperation(req.Operation)
	if err != nil {
		return dto.QueryResult{}, err
	}

	entry, ok := tableRegistry[req.Table]
	if !ok {
		metrics.GatewayOperationsTotal.WithLabelValues(req.Operation, req.Table, "forbidden").Inc()
		return dto.QueryResult{}, apperr.Newf(apperr.CodeForbidden, "table %q is not accessible", req.Table)
	}

	var result dto.QueryResult
	switch op {
	case OpSelect:
		result, err = g.execSelect(p, entry, req)
	case OpInsert:
		result, err = g.execInsert(p, entry, req, false)
	case OpUpsert:
		result, err = g.execInsert(p, entry, req, true)
	case OpUpdate:
		result, err = g.execUpdate(p, entry, req)
	case OpDelete:
		result, err = g.execDelete(p, entry, req)
	}

	outcome := "ok"
	if err != nil {
		outcome = string(apperr.CodeOf(err))
	}
	metrics.GatewayOperationsTotal.WithLabelValues(req.Operation, req.Table, outcome).Inc()
	return result, err
}

// scoped starts a query pinned to the principal's tenant and applies the
// caller's filters on top. The tenant predicate comes first and cannot be
// removed by any filter.
func (g *QueryGateway) scoped(p dto.Principal, entry tableEntry, filters []dto.Filter) (*gorm.DB, error) {
	db := g.db.Model(entry.model()).Where("tenant_id = ?", p.TenantID)
	return utils.ApplyFilters(db, filters)
}

func (g *QueryGateway) execSelect(p dto.Principal, entry tableEntry, req dto.QueryRequest) (dto.QueryResult, error) {
	db, err := g.scoped(p, entry, req.Filters)
	if err != nil {
		return dto.QueryResult{}, err
	}

	for _, col := range req.Select {
		if !utils.ValidColumn(col) {
			return dto.QueryResult{}, apperr.Newf(apperr.CodeInvalid, "invalid select column %q", col)
		}
	}
	if len(req.Select) > 0 {
		db = db.Select(req.Select)
	}

	for _, o := range req.Order {
		if !utils.ValidColumn(o.Column) {
			return dto.QueryResult{}, apperr.Newf(apperr.CodeInvalid, "invalid order column %q", o.Column)
		}
		dir := " ASC"
		if o.Desc {
			dir = " DESC"
		}
		db = db.Order(o.Column + dir)
	}

	if req.Single != dto.ReturnAll {
		// fetch one extra row so the ambiguous case is detected, not masked
		db = db.Limit(2)
	} else {
		if req.Limit > 0 {
			db = db.Limit(req.Limit)
		}
		if req.Offset > 0 {
			db = db.Offset(req.Offset)
		}
	}

	rows := entry.slice()
	if err := db.Find(rows).Error; err != nil {
		return dto.QueryResult{}, storeError(err)
	}

	v := reflect.ValueOf(rows).Elem()
	n := v.Len()

	switch req.Single {
	case dto.ReturnSingle:
		if n == 0 {
			return dto.QueryResult{}, apperr.New(apperr.CodeNotFound, "row not found")
		}
		if n > 1 {
			return dto.QueryResult{}, apperr.New(apperr.CodeConflict, "query matched more than one row")
		}
		return dto.QueryResult{Data: v.Index(0).Interface(), Count: 1}, nil
	case dto.ReturnMaybeSingle:
		if n > 1 {
			return dto.QueryResult{}, apperr.New(apperr.CodeConflict, "query matched more than one row")
		}
		if n == 0 {
			return dto.QueryResult{Data: nil, Count: 0}, nil
		}
		return dto.QueryResult{Data: v.Index(0).Interface(), Count: 1}, nil
	default:
		return dto.QueryResult{Data: v.Interface(), Count: int64(n)}, nil
	}
}

func (g *QueryGateway) execInsert(p dto.Principal, entry tableEntry, req dto.QueryRequest, upsert bool) (dto.QueryResult, error) {
	rows, single, err := decodePayload(entry, req.Payload, p)
	if err != nil {
		return dto.QueryResult{}, err
	}

	err = g.db.Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			stmt := tx
			if upsert {
				if err := checkUpsertTarget(tx, p, entry, row); err != nil {
					return err
				}
				stmt = tx.Clauses(clause.OnConflict{UpdateAll: true})
			}
			if err := stmt.Create(row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return dto.QueryResult{}, storeError(err)
	}

	if single {
		return dto.QueryResult{Data: rows[0], Count: 1}, nil
	}
	return dto.QueryResult{Data: rows, Count: int64(len(rows))}, nil
}

func (g *QueryGateway) execUpdate(p dto.Principal, entry tableEntry, req dto.QueryRequest) (dto.QueryResult, error) {
	changes, err := decodeChanges(req.Payload)
	if err != nil {
		return dto.QueryResult{}, err
	}

	db, err := g.scoped(p, entry, req.Filters)
	if err != nil {
		return dto.QueryResult{}, err
	}

	res := db.Updates(changes)
	if res.Error != nil {
		return dto.QueryResult{}, storeError(res.Error)
	}
	return dto.QueryResult{Count: res.RowsAffected}, nil
}

func (g *QueryGateway) execDelete(p dto.Principal, entry tableEntry, req dto.QueryRequest) (dto.QueryResult, error) {
	db, err := g.scoped(p, entry, req.Filters)
	if err != nil {
		return dto.QueryResult{}, err
	}

	res := db.Delete(entry.model())
	if res.Error != nil {
		return dto.QueryResult{}, storeError(res.Error)
	}
	return dto.QueryResult{Count: res.RowsAffected}, nil
}

// checkUpsertTarget rejects an upsert whose primary key resolves to a row
// outside the caller's tenant. The conflict clause fires on the primary key,
// so without this check an upsert carrying a foreign id would overwrite the
// foreign row and pull it into the caller's tenant.
func checkUpsertTarget(tx *gorm.DB, p dto.Principal, entry tableEntry, row tenantRow) error {
	id := rowID(row)
	if id == uuid.Nil {
		return nil
	}

	var n int64
	err := tx.Model(entry.model()).Unscoped().
		Where("id = ? AND tenant_id <> ?", id, p.TenantID).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n > 0 {
		// foreign targets look absent, same as reads
		return apperr.New(apperr.CodeNotFound, "row not found")
	}
	return nil
}

// rowID reads the primary key of a typed row
func rowID(row tenantRow) uuid.UUID {
	f := reflect.ValueOf(row).Elem().FieldByName("ID")
	if !f.IsValid() {
		return uuid.Nil
	}
	id, _ := f.Interface().(uuid.UUID)
	return id
}

// decodePayload unmarshals an insert/upsert payload into typed rows and pins
// every row to the principal's tenant, overriding any tenant_id the caller
// may have smuggled into the payload.
func decodePayload(entry tableEntry, payload json.RawMessage, p dto.Principal) ([]tenantRow, bool, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, false, apperr.New(apperr.CodeInvalid, "payload is required")
	}

	var elements []json.RawMessage
	single := trimmed[0] != '['
	if single {
		elements = []json.RawMessage{trimmed}
	} else if err := json.Unmarshal(trimmed, &elements); err != nil {
		return nil, false, apperr.Wrap(apperr.CodeInvalid, "malformed payload array", err)
	}
	if len(elements) == 0 {
		return nil, false, apperr.New(apperr.CodeInvalid, "payload array is empty")
	}

	rows := make([]tenantRow, 0, len(elements))
	for _, el := range elements {
		row := entry.model()
		if err := json.Unmarshal(el, row); err != nil {
			return nil, false, apperr.Wrap(apperr.CodeInvalid, "malformed payload record", err)
		}
		row.SetTenantID(p.TenantID)
		rows = append(rows, row)
	}
	return rows, single, nil
}

// decodeChanges unmarshals an update payload, dropping the columns a caller
// must never move a row across: tenant and primary key.
func decodeChanges(payload json.RawMessage) (map[string]interface{}, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, apperr.New(apperr.CodeInvalid, "payload is required")
	}

	var changes map[string]interface{}
	if err := json.Unmarshal(payload, &changes); err != nil {
		return nil, apperr.Wrap(apperr.CodeInvalid, "malformed update payload", err)
	}
	delete(changes, "tenant_id")
	delete(changes, "tenantId")
	delete(changes, "id")

	if len(changes) == 0 {
		return nil, apperr.New(apperr.CodeInvalid, "update payload has no columns")
	}
	for col := range changes {
		if !utils.ValidColumn(col) {
			return nil, apperr.Newf(apperr.CodeInvalid, "invalid update column %q", col)
		}
	}
	return changes, nil
}

// storeError normalizes backing-store errors into the coded taxonomy without
// swallowing their classification.
func storeError(err error) error {
	var coded *apperr.Error
	switch {
	case errors.As(err, &coded):
		// already classified; do not rewrap
		return err
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Wrap(apperr.CodeConflict, "uniqueness violation", err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.New(apperr.CodeNotFound, "row not found")
	default:
		return apperr.Wrap(apperr.CodeUpstream, "store operation failed", err)
	}
}
