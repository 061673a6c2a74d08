// Package mssql provides the SQL Server dialect renderer for sqlfrag.
package mssql

import (
	"github.com/zoobzio/sqlfrag/internal/render"
	"github.com/zoobzio/sqlfrag/internal/types"
)

// Renderer implements the SQL Server dialect renderer.
type Renderer struct {
	engine *render.Engine
}

// New creates a new SQL Server renderer.
func New() *Renderer {
	r := &Renderer{}
	r.engine = render.NewEngine(render.MSSQL, r.Capabilities())
	return r
}

// Render converts an AST to a QueryResult with SQL Server SQL.
func (r *Renderer) Render(ast *types.AST) (*types.QueryResult, error) {
	return r.engine.Render(ast)
}

// Dialect returns the dialect name.
func (r *Renderer) Dialect() string {
	return render.MSSQL.String()
}

// Capabilities returns the SQL features supported by SQL Server.
func (r *Renderer) Capabilities() render.Capabilities {
	return render.Capabilities{
		Upsert:               false, // MERGE only
		ReturningOnInsert:    true,  // OUTPUT INSERTED
		ReturningOnUpdate:    true,  // OUTPUT INSERTED
		ReturningOnDelete:    true,  // OUTPUT DELETED
		InArray:              false,
		NullsOrdering:        false,
		ConstantOrderBy:      false, // ORDER BY (SELECT NULL)
		AggregateFilter:      false,
		OrderedSetAggregates: false,
		BooleanAggregates:    false,
		NativeXML:            false, // FOR XML is a clause, not an aggregate
		TableComments:        true,  // MS_Description extended property
		ColumnComments:       true,
		Users:                true,
	}
}
