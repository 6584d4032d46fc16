package dto

import "encoding/json"

// Filter is one declarative predicate descriptor. Filters compose
// conjunctively in the order supplied. For type "or", Or holds the
// disjunctive sub-descriptors and Column/Value are unused. For types "not"
// and "filter", Operator names the comparison.
type Filter struct {
	Type     string      `json:"type"`
	Column   string      `json:"column"`
	Value    interface{} `json:"value"`
	Operator string      `json:"operator,omitempty"`
	Or       []Filter    `json:"or,omitempty"`
}

// OrderSpec orders results by a column
type OrderSpec struct {
	Column string `json:"column"`
	Desc   bool   `json:"desc"`
}

// ReturnMode controls row-count expectations on select
type ReturnMode string

const (
	ReturnAll         ReturnMode = ""
	ReturnSingle      ReturnMode = "single"      // exactly one row: 0 → not_found, >1 → conflict
	ReturnMaybeSingle ReturnMode = "maybeSingle" // at most one row: 0 → null data
)

// QueryRequest is the wire shape accepted by the generic query endpoint.
// Operation and Table are validated against closed sets before any store
// call; tenant scope is injected by the gateway, never by the caller.
type QueryRequest struct {
	Operation string          `json:"operation"`
	Table     string          `json:"table"`
	Select    []string        `json:"select,omitempty"`
	Filters   []Filter        `json:"filters,omitempty"`
	Order     []OrderSpec     `json:"order,omitempty"`
	Limit     int             `json:"limit,omitempty"`
	Offset    int             `json:"offset,omitempty"`
	Single    ReturnMode      `json:"single,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// QueryResult is the normalized gateway result: rows (or a row) for selects,
// affected count for mutations.
type QueryResult struct {
	Data  interface{} `json:"data"`
	Count int64       `json:"count"`
}
