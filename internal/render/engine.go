// Package render holds the dialect-aware SQL rendering engine shared by the
// dialect packages. Each dialect package configures an Engine with its
// Dialect and Capabilities; fragments that a dialect lacks are either
// emulated here or rejected with an UnsupportedFeatureError.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zoobzio/sqlfrag/internal/types"
)

// countStarSQL is the SQL for COUNT(*) aggregate.
const countStarSQL = "COUNT(*)"

// Offset-only pagination needs an explicit "no limit" in these dialects.
const (
	mysqlMaxLimit = "18446744073709551615"
	sqliteNoLimit = "-1"
)

// Engine renders ASTs for a single dialect.
type Engine struct {
	dialect Dialect
	caps    Capabilities
}

// NewEngine creates an engine for the dialect with the given capabilities.
func NewEngine(dialect Dialect, caps Capabilities) *Engine {
	return &Engine{dialect: dialect, caps: caps}
}

// Dialect returns the engine's dialect.
func (e *Engine) Dialect() Dialect {
	return e.dialect
}

// Capabilities returns the engine's capabilities.
func (e *Engine) Capabilities() Capabilities {
	return e.caps
}

func (e *Engine) unsupported(feature string, hint ...string) error {
	return NewUnsupportedFeatureError(e.dialect.String(), feature, hint...)
}

// Render converts an AST to a QueryResult with dialect-specific SQL.
func (e *Engine) Render(ast *types.AST) (*types.QueryResult, error) {
	if ast == nil {
		return nil, fmt.Errorf("invalid AST: nil")
	}
	if err := ast.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AST: %w", err)
	}

	var sql strings.Builder
	params := newParamCollector()
	ctx := newRenderContext(params.add)

	if ast.Comment != nil {
		comment, err := e.renderStatementComment(*ast.Comment)
		if err != nil {
			return nil, err
		}
		sql.WriteString(comment)
	}

	var err error
	switch ast.Operation {
	case types.OpSelect:
		err = e.renderSelect(ast, &sql, ctx)
	case types.OpInsert:
		err = e.renderInsert(ast, &sql, ctx)
	case types.OpUpdate:
		err = e.renderUpdate(ast, &sql, ctx)
	case types.OpDelete:
		err = e.renderDelete(ast, &sql, ctx)
	case types.OpCount:
		err = e.renderCount(ast, &sql, ctx)
	case types.OpCommentOn:
		err = e.renderCommentOn(ast, &sql)
	case types.OpCreateUser, types.OpDropUser, types.OpGrant, types.OpRevoke:
		err = e.renderUserStatement(ast, &sql)
	default:
		err = fmt.Errorf("unsupported operation: %s", ast.Operation)
	}
	if err != nil {
		return nil, err
	}

	return &types.QueryResult{
		SQL:            sql.String(),
		RequiredParams: params.names,
		Dialect:        e.dialect.String(),
		ReturnsRows:    ast.Operation == types.OpSelect || ast.Operation == types.OpCount || len(ast.Returning) > 0,
	}, nil
}

func (e *Engine) renderSelect(ast *types.AST, sql *strings.Builder, ctx *renderContext) error {
	sql.WriteString("SELECT ")

	if ast.Distinct {
		sql.WriteString("DISTINCT ")
	}

	// SQL Server: a bare LIMIT without ordering or offset is a TOP clause.
	useTop := e.dialect == MSSQL && ast.Limit != nil && ast.Offset == nil && len(ast.Ordering) == 0
	if useTop {
		fmt.Fprintf(sql, "TOP (%d) ", *ast.Limit)
	}

	if len(ast.Fields) == 0 && len(ast.FieldExpressions) == 0 {
		sql.WriteString("*")
	} else {
		selections := make([]string, 0, len(ast.Fields)+len(ast.FieldExpressions))
		for _, field := range ast.Fields {
			selections = append(selections, e.renderField(field))
		}
		for i := range ast.FieldExpressions {
			exprStr, err := e.renderFieldExpression(&ast.FieldExpressions[i], ctx)
			if err != nil {
				return err
			}
			selections = append(selections, exprStr)
		}
		sql.WriteString(strings.Join(selections, ", "))
	}

	sql.WriteString(" FROM ")
	sql.WriteString(e.renderTable(ast.Target))

	if err := e.renderJoins(ast.Joins, sql, ctx); err != nil {
		return err
	}

	if ast.WhereClause != nil {
		sql.WriteString(" WHERE ")
		if err := e.renderCondition(ast.WhereClause, sql, ctx); err != nil {
			return err
		}
	}

	if len(ast.GroupBy) > 0 {
		sql.WriteString(" GROUP BY ")
		groupFields := make([]string, 0, len(ast.GroupBy))
		for _, field := range ast.GroupBy {
			groupFields = append(groupFields, e.renderField(field))
		}
		sql.WriteString(strings.Join(groupFields, ", "))
	}

	if len(ast.Having) > 0 {
		sql.WriteString(" HAVING ")
		for i, cond := range ast.Having {
			if i > 0 {
				sql.WriteString(" AND ")
			}
			if err := e.renderCondition(cond, sql, ctx); err != nil {
				return err
			}
		}
	}

	if useTop {
		return nil
	}
	return e.renderOrderingAndPagination(ast, sql)
}

func (e *Engine) renderJoins(joins []types.Join, sql *strings.Builder, ctx *renderContext) error {
	for _, join := range joins {
		if join.Type == types.RightJoin && e.dialect == SQLite {
			// SQLite gained RIGHT JOIN in 3.39; older engines are still common.
			return e.unsupported("RIGHT JOIN", "swap the tables and use LEFT JOIN")
		}
		sql.WriteString(" ")
		sql.WriteString(string(join.Type))
		sql.WriteString(" ")
		sql.WriteString(e.renderTable(join.Table))
		if join.Type != types.CrossJoin {
			sql.WriteString(" ON ")
			if err := e.renderCondition(join.On, sql, ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) renderInsert(ast *types.AST, sql *strings.Builder, ctx *renderContext) error {
	if ast.OnConflict != nil && !e.caps.Upsert {
		return e.unsupported("ON CONFLICT / upsert",
			"use MERGE statement or separate INSERT/UPDATE with EXISTS check")
	}
	if len(ast.Returning) > 0 && !e.caps.ReturningOnInsert {
		return e.unsupported("RETURNING on INSERT", "use a separate SELECT query")
	}

	mysqlIgnore := MySQLFamily.Contains(e.dialect) && ast.OnConflict != nil && ast.OnConflict.Action == types.DoNothing
	if mysqlIgnore {
		sql.WriteString("INSERT IGNORE INTO ")
	} else {
		sql.WriteString("INSERT INTO ")
	}
	sql.WriteString(e.renderTable(ast.Target))

	fieldObjs := sortedFields(ast.Values[0])
	fields := make([]string, 0, len(fieldObjs))
	for _, field := range fieldObjs {
		fields = append(fields, e.QuoteIdentifier(field.Name))
	}

	sql.WriteString(" (")
	sql.WriteString(strings.Join(fields, ", "))
	sql.WriteString(")")

	// SQL Server: OUTPUT sits between the column list and VALUES.
	if e.dialect == MSSQL && len(ast.Returning) > 0 {
		sql.WriteString(" OUTPUT ")
		sql.WriteString(e.renderOutput("INSERTED", ast.Returning))
	}

	sql.WriteString(" VALUES ")
	valueSets := make([]string, 0, len(ast.Values))
	for _, valueSet := range ast.Values {
		values := make([]string, 0, len(fieldObjs))
		for _, field := range fieldObjs {
			values = append(values, ctx.addParam(valueSet[field]))
		}
		valueSets = append(valueSets, "("+strings.Join(values, ", ")+")")
	}
	sql.WriteString(strings.Join(valueSets, ", "))

	if ast.OnConflict != nil && !mysqlIgnore {
		e.renderConflict(ast.OnConflict, sql, ctx)
	}

	if e.dialect != MSSQL && len(ast.Returning) > 0 {
		e.renderReturning(ast.Returning, sql)
	}
	return nil
}

func (e *Engine) renderConflict(conflict *types.ConflictClause, sql *strings.Builder, ctx *renderContext) {
	updateFields := sortedFields(conflict.Updates)
	updates := make([]string, 0, len(updateFields))
	for _, field := range updateFields {
		updates = append(updates, fmt.Sprintf("%s = %s", e.QuoteIdentifier(field.Name), ctx.addParam(conflict.Updates[field])))
	}

	// MySQL and MariaDB resolve conflicts against any unique key, so the
	// conflict target columns are not rendered.
	if MySQLFamily.Contains(e.dialect) {
		sql.WriteString(" ON DUPLICATE KEY UPDATE ")
		sql.WriteString(strings.Join(updates, ", "))
		return
	}

	sql.WriteString(" ON CONFLICT (")
	conflictFields := make([]string, 0, len(conflict.Columns))
	for _, field := range conflict.Columns {
		conflictFields = append(conflictFields, e.QuoteIdentifier(field.Name))
	}
	sql.WriteString(strings.Join(conflictFields, ", "))
	sql.WriteString(") ")

	switch conflict.Action {
	case types.DoNothing:
		sql.WriteString("DO NOTHING")
	case types.DoUpdate:
		sql.WriteString("DO UPDATE SET ")
		sql.WriteString(strings.Join(updates, ", "))
	}
}

func (e *Engine) renderUpdate(ast *types.AST, sql *strings.Builder, ctx *renderContext) error {
	if len(ast.Returning) > 0 && !e.caps.ReturningOnUpdate {
		return e.unsupported("RETURNING on UPDATE", "use a separate SELECT query")
	}

	sql.WriteString("UPDATE ")
	sql.WriteString(e.renderTable(ast.Target))
	sql.WriteString(" SET ")

	updateFields := sortedFields(ast.Updates)
	updates := make([]string, 0, len(updateFields))
	for _, field := range updateFields {
		updates = append(updates, fmt.Sprintf("%s = %s", e.QuoteIdentifier(field.Name), ctx.addParam(ast.Updates[field])))
	}
	sql.WriteString(strings.Join(updates, ", "))

	if e.dialect == MSSQL && len(ast.Returning) > 0 {
		sql.WriteString(" OUTPUT ")
		sql.WriteString(e.renderOutput("INSERTED", ast.Returning))
	}

	if ast.WhereClause != nil {
		sql.WriteString(" WHERE ")
		if err := e.renderCondition(ast.WhereClause, sql, ctx); err != nil {
			return err
		}
	}

	if e.dialect != MSSQL && len(ast.Returning) > 0 {
		e.renderReturning(ast.Returning, sql)
	}
	return nil
}

func (e *Engine) renderDelete(ast *types.AST, sql *strings.Builder, ctx *renderContext) error {
	if len(ast.Returning) > 0 && !e.caps.ReturningOnDelete {
		return e.unsupported("RETURNING on DELETE", "use a separate SELECT query")
	}

	sql.WriteString("DELETE FROM ")
	sql.WriteString(e.renderTable(ast.Target))

	if e.dialect == MSSQL && len(ast.Returning) > 0 {
		sql.WriteString(" OUTPUT ")
		sql.WriteString(e.renderOutput("DELETED", ast.Returning))
	}

	if ast.WhereClause != nil {
		sql.WriteString(" WHERE ")
		if err := e.renderCondition(ast.WhereClause, sql, ctx); err != nil {
			return err
		}
	}

	if e.dialect != MSSQL && len(ast.Returning) > 0 {
		e.renderReturning(ast.Returning, sql)
	}
	return nil
}

func (e *Engine) renderCount(ast *types.AST, sql *strings.Builder, ctx *renderContext) error {
	sql.WriteString("SELECT " + countStarSQL + " FROM ")
	sql.WriteString(e.renderTable(ast.Target))

	if err := e.renderJoins(ast.Joins, sql, ctx); err != nil {
		return err
	}

	if ast.WhereClause != nil {
		sql.WriteString(" WHERE ")
		if err := e.renderCondition(ast.WhereClause, sql, ctx); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) renderReturning(fields []types.Field, sql *strings.Builder) {
	sql.WriteString(" RETURNING ")
	rendered := make([]string, 0, len(fields))
	for _, field := range fields {
		rendered = append(rendered, e.renderField(field))
	}
	sql.WriteString(strings.Join(rendered, ", "))
}

// renderOutput renders a SQL Server OUTPUT column list against the
// INSERTED or DELETED pseudo-table.
func (e *Engine) renderOutput(pseudo string, fields []types.Field) string {
	rendered := make([]string, 0, len(fields))
	for _, field := range fields {
		if field.Name == "*" {
			rendered = append(rendered, pseudo+".*")
			continue
		}
		rendered = append(rendered, pseudo+"."+e.QuoteIdentifier(field.Name))
	}
	return strings.Join(rendered, ", ")
}

// sortedFields returns the map keys sorted by name for deterministic output.
func sortedFields(m map[types.Field]types.Param) []types.Field {
	fields := make([]types.Field, 0, len(m))
	for field := range m {
		fields = append(fields, field)
	}
	sort.Slice(fields, func(i, j int) bool {
		return fields[i].Name < fields[j].Name
	})
	return fields
}
