// Package postgres provides the PostgreSQL dialect renderer for sqlfrag.
package postgres

import (
	"github.com/zoobzio/sqlfrag/internal/render"
	"github.com/zoobzio/sqlfrag/internal/types"
)

// Renderer implements the PostgreSQL dialect renderer.
type Renderer struct {
	engine *render.Engine
}

// New creates a new PostgreSQL renderer.
func New() *Renderer {
	r := &Renderer{}
	r.engine = render.NewEngine(render.Postgres, r.Capabilities())
	return r
}

// Render converts an AST to a QueryResult with PostgreSQL SQL.
func (r *Renderer) Render(ast *types.AST) (*types.QueryResult, error) {
	return r.engine.Render(ast)
}

// Dialect returns the dialect name.
func (r *Renderer) Dialect() string {
	return render.Postgres.String()
}

// Capabilities returns the SQL features supported by PostgreSQL.
func (r *Renderer) Capabilities() render.Capabilities {
	return render.Capabilities{
		Upsert:               true,
		ReturningOnInsert:    true,
		ReturningOnUpdate:    true,
		ReturningOnDelete:    true,
		InArray:              true,
		NullsOrdering:        true,
		ConstantOrderBy:      true,
		AggregateFilter:      true,
		OrderedSetAggregates: true,
		BooleanAggregates:    true,
		NativeXML:            true,
		TableComments:        true,
		ColumnComments:       true,
		Users:                true,
	}
}
