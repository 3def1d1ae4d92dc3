package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/inkpost/inkpost-backend/internal/db/interfaces"
)

// Columns returns the schema's column names in a stable order.
func (b *Builder) Columns() []string {
	cols := make([]string, 0, len(b.schema.Fields))
	for name := range b.schema.Fields {
		cols = append(cols, name)
	}
	sort.Strings(cols)
	return cols
}

// WhereSQL renders filters as a SQL WHERE clause body with $n placeholders
// starting at argOffset+1. An empty clause means no filtering.
func (b *Builder) WhereSQL(filters *interfaces.Filters, argOffset int) (string, []interface{}) {
	if filters == nil {
		return "", nil
	}

	var parts []string
	var args []interface{}

	appendGroup := func(clause string, groupArgs []interface{}) {
		if clause == "" {
			return
		}
		parts = append(parts, "("+clause+")")
		args = append(args, groupArgs...)
	}

	for _, and := range filters.AND {
		clause, groupArgs := b.WhereSQL(and, argOffset+len(args))
		appendGroup(clause, groupArgs)
	}

	if len(filters.OR) > 0 {
		var orParts []string
		var orArgs []interface{}
		for _, or := range filters.OR {
			clause, groupArgs := b.WhereSQL(or, argOffset+len(args)+len(orArgs))
			if clause == "" {
				continue
			}
			orParts = append(orParts, "("+clause+")")
			orArgs = append(orArgs, groupArgs...)
		}
		if len(orParts) > 0 {
			parts = append(parts, "("+strings.Join(orParts, " OR ")+")")
			args = append(args, orArgs...)
		}
	}

	for _, cond := range filters.Conditions {
		clause, condArgs := b.conditionSQL(cond, argOffset+len(args))
		if clause == "" {
			continue
		}
		parts = append(parts, clause)
		args = append(args, condArgs...)
	}

	return strings.Join(parts, " AND "), args
}

func (b *Builder) conditionSQL(cond interfaces.Filter, argOffset int) (string, []interface{}) {
	col := cond.Field

	if cond.Operator == nil {
		if cond.Value == nil {
			return col + " IS NULL", nil
		}
		return fmt.Sprintf("%s = $%d", col, argOffset+1), []interface{}{cond.Value}
	}

	op := cond.Operator

	switch {
	case op.IsNull:
		return col + " IS NULL", nil
	case op.IsNotNull:
		return col + " IS NOT NULL", nil
	case op.Eq != nil:
		return fmt.Sprintf("%s = $%d", col, argOffset+1), []interface{}{op.Eq}
	case op.Ne != nil:
		return fmt.Sprintf("%s <> $%d", col, argOffset+1), []interface{}{op.Ne}
	case op.Gt != nil:
		return fmt.Sprintf("%s > $%d", col, argOffset+1), []interface{}{op.Gt}
	case op.Gte != nil:
		return fmt.Sprintf("%s >= $%d", col, argOffset+1), []interface{}{op.Gte}
	case op.Lt != nil:
		return fmt.Sprintf("%s < $%d", col, argOffset+1), []interface{}{op.Lt}
	case op.Lte != nil:
		return fmt.Sprintf("%s <= $%d", col, argOffset+1), []interface{}{op.Lte}
	case len(op.In) > 0:
		return inClause(col, "IN", op.In, argOffset)
	case len(op.NotIn) > 0:
		return inClause(col, "NOT IN", op.NotIn, argOffset)
	case op.Like != "":
		return likeClause(col, "LIKE", op.Like, op.CaseSensitive, argOffset)
	case op.NotLike != "":
		return likeClause(col, "NOT LIKE", op.NotLike, op.CaseSensitive, argOffset)
	}

	return "", nil
}

func inClause(col, keyword string, values []interface{}, argOffset int) (string, []interface{}) {
	placeholders := make([]string, len(values))
	for i := range values {
		placeholders[i] = fmt.Sprintf("$%d", argOffset+i+1)
	}
	return fmt.Sprintf("%s %s (%s)", col, keyword, strings.Join(placeholders, ", ")), values
}

func likeClause(col, keyword, pattern string, caseSensitive *bool, argOffset int) (string, []interface{}) {
	if !strings.Contains(pattern, "%") {
		pattern = "%" + pattern + "%"
	}
	if caseSensitive == nil || !*caseSensitive {
		if keyword == "LIKE" {
			keyword = "ILIKE"
		} else {
			keyword = "NOT ILIKE"
		}
	}
	return fmt.Sprintf("%s %s $%d", col, keyword, argOffset+1), []interface{}{pattern}
}

// OrderSQL renders OrderBy directives as an ORDER BY clause body.
func (b *Builder) OrderSQL(orderBy []interfaces.OrderBy) string {
	if len(orderBy) == 0 {
		return ""
	}
	parts := make([]string, 0, len(orderBy))
	for _, order := range orderBy {
		dir := "ASC"
		if order.Direction == "desc" {
			dir = "DESC"
		}
		parts = append(parts, order.Field+" "+dir)
	}
	return strings.Join(parts, ", ")
}
