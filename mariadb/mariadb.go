// Package mariadb provides the MariaDB dialect renderer for sqlfrag.
package mariadb

import (
	"github.com/zoobzio/sqlfrag/internal/render"
	"github.com/zoobzio/sqlfrag/internal/types"
)

// Renderer implements the MariaDB dialect renderer.
type Renderer struct {
	engine *render.Engine
}

// New creates a new MariaDB renderer.
func New() *Renderer {
	r := &Renderer{}
	r.engine = render.NewEngine(render.MariaDB, r.Capabilities())
	return r
}

// Render converts an AST to a QueryResult with MariaDB SQL.
func (r *Renderer) Render(ast *types.AST) (*types.QueryResult, error) {
	return r.engine.Render(ast)
}

// Dialect returns the dialect name.
func (r *Renderer) Dialect() string {
	return render.MariaDB.String()
}

// Capabilities returns the SQL features supported by MariaDB.
func (r *Renderer) Capabilities() render.Capabilities {
	return render.Capabilities{
		Upsert:               true, // ON DUPLICATE KEY UPDATE
		ReturningOnInsert:    true, // 10.5+
		ReturningOnUpdate:    false,
		ReturningOnDelete:    true, // 10.0+
		InArray:              false,
		NullsOrdering:        false,
		ConstantOrderBy:      true,
		AggregateFilter:      false,
		OrderedSetAggregates: false, // PERCENTILE_* exist only as window functions
		BooleanAggregates:    false,
		NativeXML:            false,
		TableComments:        true,
		ColumnComments:       false,
		Users:                true,
	}
}
