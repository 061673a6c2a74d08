// Package mysql provides the MySQL dialect renderer for sqlfrag.
package mysql

import (
	"github.com/zoobzio/sqlfrag/internal/render"
	"github.com/zoobzio/sqlfrag/internal/types"
)

// Renderer implements the MySQL dialect renderer.
type Renderer struct {
	engine *render.Engine
}

// New creates a new MySQL renderer.
func New() *Renderer {
	r := &Renderer{}
	r.engine = render.NewEngine(render.MySQL, r.Capabilities())
	return r
}

// Render converts an AST to a QueryResult with MySQL SQL.
func (r *Renderer) Render(ast *types.AST) (*types.QueryResult, error) {
	return r.engine.Render(ast)
}

// Dialect returns the dialect name.
func (r *Renderer) Dialect() string {
	return render.MySQL.String()
}

// Capabilities returns the SQL features supported by MySQL.
func (r *Renderer) Capabilities() render.Capabilities {
	return render.Capabilities{
		Upsert:               true, // ON DUPLICATE KEY UPDATE
		ReturningOnInsert:    false,
		ReturningOnUpdate:    false,
		ReturningOnDelete:    false,
		InArray:              false,
		NullsOrdering:        false, // emulated with a leading CASE sort key
		ConstantOrderBy:      true,
		AggregateFilter:      false, // emulated with CASE in the argument
		OrderedSetAggregates: false,
		BooleanAggregates:    false, // emulated with MIN/MAX over CASE
		NativeXML:            false, // emulated with CONCAT and GROUP_CONCAT
		TableComments:        true,
		ColumnComments:       false,
		Users:                true,
	}
}
