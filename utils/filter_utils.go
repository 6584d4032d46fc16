package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/atelierworks/atelier-backend/apperr"
	"github.com/atelierworks/atelier-backend/dto"
	"gorm.io/gorm"
)

// columnPattern whitelists identifiers so column names can never carry SQL.
var columnPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// rawOperators whitelists operators accepted by the "not" and "filter" types
var rawOperators = map[string]string{
	"=":    "=",
	"eq":   "=",
	"<>":   "<>",
	"!=":   "<>",
	"neq":  "<>",
	">":    ">",
	"gt":   ">",
	">=":   ">=",
	"gte":  ">=",
	"<":    "<",
	"lt":   "<",
	"<=":   "<=",
	"lte":  "<=",
	"like": "LIKE",
	"in":   "IN",
}

// ValidColumn reports whether name is a safe column identifier
func ValidColumn(name string) bool {
	return columnPattern.MatchString(name)
}

// ApplyFilters compiles declarative filter descriptors onto a query,
// conjunctively and in the order supplied. The caller has already scoped the
// query to a tenant; nothing here can widen or replace that predicate.
// Unknown filter types fail closed with an invalid error rather than being
// dropped: a silently ignored predicate widens a result set.
func ApplyFilters(db *gorm.DB, filters []dto.Filter) (*gorm.DB, error) {
	for _, f := range filters {
		expr, args, err := compileFilter(f)
		if err != nil {
			return nil, err
		}
		db = db.Where(expr, args...)
	}
	return db, nil
}

// compileFilter turns one descriptor into a condition expression plus args.
func compileFilter(f dto.Filter) (string, []interface{}, error) {
	if f.Type == "or" {
		return compileOr(f)
	}

	if !ValidColumn(f.Column) {
		return "", nil, apperr.Newf(apperr.CodeInvalid, "invalid filter column %q", f.Column)
	}

	switch f.Type {
	case "eq":
		return f.Column + " = ?", []interface{}{f.Value}, nil
	case "neq":
		return f.Column + " <> ?", []interface{}{f.Value}, nil
	case "gt":
		return f.Column + " > ?", []interface{}{f.Value}, nil
	case "gte":
		return f.Column + " >= ?", []interface{}{f.Value}, nil
	case "lt":
		return f.Column + " < ?", []interface{}{f.Value}, nil
	case "lte":
		return f.Column + " <= ?", []interface{}{f.Value}, nil
	case "like":
		return f.Column + " LIKE ?", []interface{}{f.Value}, nil
	case "ilike":
		// LOWER on both sides keeps this portable across Postgres and the
		// sqlite used in tests.
		return "LOWER(" + f.Column + ") LIKE LOWER(?)", []interface{}{f.Value}, nil
	case "is":
		return compileIs(f)
	case "in":
		return f.Column + " IN ?", []interface{}{f.Value}, nil
	case "contains":
		return f.Column + " LIKE ?", []interface{}{"%" + fmt.Sprintf("%v", f.Value) + "%"}, nil
	case "not":
		op, ok := rawOperators[strings.ToLower(f.Operator)]
		if !ok {
			return "", nil, apperr.Newf(apperr.CodeInvalid, "invalid operator %q for not filter", f.Operator)
		}
		return "NOT (" + f.Column + " " + op + " ?)", []interface{}{f.Value}, nil
	case "filter":
		op, ok := rawOperators[strings.ToLower(f.Operator)]
		if !ok {
			return "", nil, apperr.Newf(apperr.CodeInvalid, "invalid operator %q for filter", f.Operator)
		}
		return f.Column + " " + op + " ?", []interface{}{f.Value}, nil
	default:
		return "", nil, apperr.Newf(apperr.CodeInvalid, "unknown filter type %q", f.Type)
	}
}

// compileIs handles null and boolean tests
func compileIs(f dto.Filter) (string, []interface{}, error) {
	switch v := f.Value.(type) {
	case nil:
		return f.Column + " IS NULL", nil, nil
	case bool:
		if v {
			return f.Column + " IS TRUE", nil, nil
		}
		return f.Column + " IS FALSE", nil, nil
	default:
		return "", nil, apperr.Newf(apperr.CodeInvalid, "is filter accepts null or boolean, got %T", f.Value)
	}
}

// compileOr builds a parenthesized disjunction from the sub-descriptors
func compileOr(f dto.Filter) (string, []interface{}, error) {
	if len(f.Or) == 0 {
		return "", nil, apperr.New(apperr.CodeInvalid, "or filter requires at least one sub-filter")
	}

	exprs := make([]string, 0, len(f.Or))
	var args []interface{}
	for _, sub := range f.Or {
		expr, subArgs, err := compileFilter(sub)
		if err != nil {
			return "", nil, err
		}
		exprs = append(exprs, expr)
		args = append(args, subArgs...)
	}
	return "(" + strings.Join(exprs, " OR ") + ")", args, nil
}
