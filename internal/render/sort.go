package render

import (
	"fmt"
	"strings"

	"github.com/zoobzio/sqlfrag/internal/types"
)

// ConstantSortSQL renders a constant sort field: an ORDER BY item that imposes
// no ordering. An integer literal would be read as a column position, so
// NULL is used; SQL Server rejects constants in ORDER BY entirely and gets
// an uncorrelated scalar subquery instead.
func (e *Engine) ConstantSortSQL() string {
	if !e.caps.ConstantOrderBy {
		return "(SELECT NULL)"
	}
	return "NULL"
}

// renderOrderItems renders a list of ORDER BY items without the keyword.
func (e *Engine) renderOrderItems(ordering []types.OrderBy) string {
	parts := make([]string, 0, len(ordering))
	for i := range ordering {
		order := &ordering[i]
		if order.Constant {
			parts = append(parts, e.ConstantSortSQL())
			continue
		}

		field := e.renderField(order.Field)
		direction := order.Direction
		if direction == "" {
			direction = types.ASC
		}

		if order.Nulls != "" && !e.caps.NullsOrdering {
			// Emulate NULLS FIRST/LAST with a leading sort key.
			first, rest := "0", "1"
			if order.Nulls == types.NullsLast {
				first, rest = "1", "0"
			}
			parts = append(parts, fmt.Sprintf("CASE WHEN %s IS NULL THEN %s ELSE %s END", field, first, rest))
			parts = append(parts, fmt.Sprintf("%s %s", field, direction))
			continue
		}

		part := fmt.Sprintf("%s %s", field, direction)
		if order.Nulls != "" {
			part += " " + string(order.Nulls)
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}

// renderOrderingAndPagination renders ORDER BY, LIMIT and OFFSET.
func (e *Engine) renderOrderingAndPagination(ast *types.AST, sql *strings.Builder) error {
	ordering := ast.Ordering
	paginated := ast.Limit != nil || ast.Offset != nil

	// OFFSET ... FETCH requires ORDER BY on SQL Server.
	if e.dialect == MSSQL && paginated && len(ordering) == 0 {
		ordering = []types.OrderBy{{Constant: true}}
	}

	if len(ordering) > 0 {
		sql.WriteString(" ORDER BY ")
		sql.WriteString(e.renderOrderItems(ordering))
	}

	if !paginated {
		return nil
	}

	if e.dialect == MSSQL {
		offset := 0
		if ast.Offset != nil {
			offset = *ast.Offset
		}
		fmt.Fprintf(sql, " OFFSET %d ROWS", offset)
		if ast.Limit != nil {
			fmt.Fprintf(sql, " FETCH NEXT %d ROWS ONLY", *ast.Limit)
		}
		return nil
	}

	switch {
	case ast.Limit != nil:
		fmt.Fprintf(sql, " LIMIT %d", *ast.Limit)
	case MySQLFamily.Contains(e.dialect):
		sql.WriteString(" LIMIT " + mysqlMaxLimit)
	case e.dialect == SQLite:
		sql.WriteString(" LIMIT " + sqliteNoLimit)
	}

	if ast.Offset != nil {
		fmt.Fprintf(sql, " OFFSET %d", *ast.Offset)
	}
	return nil
}
