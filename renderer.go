package sqlfrag

import (
	"github.com/zoobzio/sqlfrag/internal/render"
	"github.com/zoobzio/sqlfrag/internal/types"
)

// Renderer defines the interface for SQL dialect-specific rendering.
// Implementations convert an AST to dialect-specific SQL with named parameters.
type Renderer interface {
	// Render converts an AST to a QueryResult with dialect-specific SQL.
	Render(ast *types.AST) (*types.QueryResult, error)

	// Dialect returns the dialect name, e.g. "postgres".
	Dialect() string

	// Capabilities reports which fragments render natively.
	Capabilities() render.Capabilities
}
