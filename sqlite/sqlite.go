// Package sqlite provides the SQLite dialect renderer for sqlfrag.
package sqlite

import (
	"github.com/zoobzio/sqlfrag/internal/render"
	"github.com/zoobzio/sqlfrag/internal/types"
)

// Renderer implements the SQLite dialect renderer.
type Renderer struct {
	engine *render.Engine
}

// New creates a new SQLite renderer.
func New() *Renderer {
	r := &Renderer{}
	r.engine = render.NewEngine(render.SQLite, r.Capabilities())
	return r
}

// Render converts an AST to a QueryResult with SQLite SQL.
func (r *Renderer) Render(ast *types.AST) (*types.QueryResult, error) {
	return r.engine.Render(ast)
}

// Dialect returns the dialect name.
func (r *Renderer) Dialect() string {
	return render.SQLite.String()
}

// Capabilities returns the SQL features supported by SQLite.
func (r *Renderer) Capabilities() render.Capabilities {
	return render.Capabilities{
		Upsert:               true, // 3.24+
		ReturningOnInsert:    true, // 3.35+
		ReturningOnUpdate:    true,
		ReturningOnDelete:    true,
		InArray:              false,
		NullsOrdering:        true, // 3.30+
		ConstantOrderBy:      true,
		AggregateFilter:      true, // 3.30+
		OrderedSetAggregates: false,
		BooleanAggregates:    false,
		NativeXML:            false,
		TableComments:        false,
		ColumnComments:       false,
		Users:                false,
	}
}
