// Package database builds parameterized SELECT statements with sanitized identifiers.
package database

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

type ConditionType string

const (
	Equal  ConditionType = "="
	ILike  ConditionType = "ILIKE"
	Any    ConditionType = "ANY"
	Custom ConditionType = "CUSTOM"

	unset = -1
)

// Condition is one AND-ed predicate of a WHERE clause.
type Condition struct {
	Field    string
	Type     ConditionType
	Value    any
	rawQuery string
}

// WhereCond compares a column with a value.
func WhereCond(field string, condType ConditionType, value any) Condition {
	if condType == Custom {
		//nolint:forbidigo // custom conditions must provide raw SQL via WhereRawCond.
		panic("Use WhereRawCond for Custom type")
	}
	return Condition{Field: field, Type: condType, Value: value}
}

// WhereRawCond adds raw SQL numbered from $1. Placeholders are renumbered
// when the query is built, and a repeated placeholder binds one argument.
func WhereRawCond(rawQuery string, params ...any) Condition {
	return Condition{Type: Custom, rawQuery: rawQuery, Value: params}
}

type ListQueryOptions struct {
	Table      string
	Columns    []string
	Conditions []Condition
	OrderBy    string
	OrderDir   string
	Limit      int
	Offset     int
}

type ListQueryOption func(*ListQueryOptions)

func NewListQueryOptions(table string, opts ...ListQueryOption) *ListQueryOptions {
	options := &ListQueryOptions{Table: table, Limit: unset, Offset: unset}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// WithColumns sets the columns to select.
func WithColumns(cols ...string) ListQueryOption {
	return func(o *ListQueryOptions) { o.Columns = cols }
}

// WithConditions sets the entire list of conditions.
func WithConditions(conds ...Condition) ListQueryOption {
	return func(o *ListQueryOptions) { o.Conditions = conds }
}

// WithOrderBy sets the ordering column and direction.
func WithOrderBy(column, direction string) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.OrderBy = column
		o.OrderDir = direction
	}
}

// WithLimit sets the limit. Accepts 0.
func WithLimit(limit int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if limit >= 0 {
			o.Limit = limit
		}
	}
}

// WithOffset sets the offset. Accepts 0.
func WithOffset(offset int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if offset >= 0 {
			o.Offset = offset
		}
	}
}

// sanitizeIdentifier quotes a possibly qualified identifier such as "table.column".
func sanitizeIdentifier(ident string) string {
	return pgx.Identifier(strings.Split(ident, ".")).Sanitize()
}

var placeholderRe = regexp.MustCompile(`\$(\d+)`) //nolint:gochecknoglobals // compiled once

// BuildListQuery constructs a SQL query string and arguments from options.
//
//	query, args := BuildListQuery(NewListQueryOptions("documents",
//		WithColumns("id", "title"),
//		WithConditions(WhereRawCond("(title ILIKE $1 OR case_id ILIKE $1)", "%will%")),
//		WithOrderBy("doc_date", "DESC"),
//		WithLimit(10),
//	))
func BuildListQuery(options *ListQueryOptions) (string, []any) {
	if options == nil {
		return "", nil
	}

	var q strings.Builder
	q.WriteString("SELECT ")
	if len(options.Columns) == 0 {
		q.WriteString("*")
	} else {
		cols := make([]string, len(options.Columns))
		for i, c := range options.Columns {
			cols[i] = sanitizeIdentifier(c)
		}
		q.WriteString(strings.Join(cols, ", "))
	}
	q.WriteString(" FROM ")
	q.WriteString(sanitizeIdentifier(options.Table))

	var args []any
	next := 1
	var where []string
	for _, cond := range options.Conditions {
		sql, condArgs, n := buildCondition(cond, next)
		if sql == "" {
			continue
		}
		where = append(where, sql)
		args = append(args, condArgs...)
		next = n
	}
	if len(where) > 0 {
		q.WriteString(" WHERE ")
		q.WriteString(strings.Join(where, " AND "))
	}

	if options.OrderBy != "" {
		q.WriteString(" ORDER BY ")
		q.WriteString(sanitizeIdentifier(options.OrderBy))
		if dir := strings.ToUpper(options.OrderDir); dir == "ASC" || dir == "DESC" {
			q.WriteString(" " + dir)
		}
	}
	if options.Limit != unset {
		fmt.Fprintf(&q, " LIMIT $%d", next)
		args = append(args, options.Limit)
		next++
	}
	if options.Offset != unset {
		fmt.Fprintf(&q, " OFFSET $%d", next)
		args = append(args, options.Offset)
	}
	if args == nil {
		args = []any{}
	}
	return q.String(), args
}

func buildCondition(cond Condition, next int) (string, []any, int) {
	switch cond.Type {
	case Custom:
		return buildRawCondition(cond, next)
	case Any:
		rv := reflect.ValueOf(cond.Value)
		if cond.Field == "" || rv.Kind() != reflect.Slice || rv.Len() == 0 {
			return "", nil, next
		}
		ph := make([]string, rv.Len())
		args := make([]any, rv.Len())
		for i := range rv.Len() {
			ph[i] = "$" + strconv.Itoa(next+i)
			args[i] = rv.Index(i).Interface()
		}
		return fmt.Sprintf("%s = ANY (ARRAY[%s])", sanitizeIdentifier(cond.Field), strings.Join(ph, ", ")),
			args, next + rv.Len()
	case Equal, ILike:
		if cond.Field == "" {
			return "", nil, next
		}
		return fmt.Sprintf("%s %s $%d", sanitizeIdentifier(cond.Field), cond.Type, next), []any{cond.Value}, next + 1
	}
	return "", nil, next
}

// buildRawCondition renumbers $n placeholders starting at next. The raw SQL itself is not sanitized.
func buildRawCondition(cond Condition, next int) (string, []any, int) {
	if cond.rawQuery == "" {
		return "", nil, next
	}
	params, _ := cond.Value.([]any)
	var args []any
	mapped := map[int]int{}
	sql := placeholderRe.ReplaceAllStringFunc(cond.rawQuery, func(m string) string {
		n, err := strconv.Atoi(m[1:])
		if err != nil || n < 1 || n > len(params) {
			return m
		}
		if _, ok := mapped[n]; !ok {
			mapped[n] = next
			args = append(args, params[n-1])
			next++
		}
		return "$" + strconv.Itoa(mapped[n])
	})
	return sql, args, next
}
