package render

import (
	"fmt"

	"github.com/zoobzio/sqlfrag/internal/types"
)

// renderContext tracks rendering state for parameter namespacing and depth limiting.
type renderContext struct {
	paramCallback func(types.Param) string
	paramPrefix   string
	depth         int
}

func newRenderContext(paramCallback func(types.Param) string) *renderContext {
	return &renderContext{paramCallback: paramCallback}
}

// withSubquery creates a child context for rendering a subquery.
func (ctx *renderContext) withSubquery() (*renderContext, error) {
	if ctx.depth >= types.MaxSubqueryDepth {
		return nil, fmt.Errorf("maximum subquery depth (%d) exceeded", types.MaxSubqueryDepth)
	}

	return &renderContext{
		depth:         ctx.depth + 1,
		paramPrefix:   fmt.Sprintf("sq%d_", ctx.depth+1),
		paramCallback: ctx.paramCallback,
	}, nil
}

// addParam adds a parameter with proper namespacing.
func (ctx *renderContext) addParam(param types.Param) string {
	if ctx.paramPrefix != "" {
		param = types.Param{Name: ctx.paramPrefix + param.Name}
	}
	return ctx.paramCallback(param)
}

// paramCollector records parameter names in first-use order.
type paramCollector struct {
	used  map[string]bool
	names []string
}

func newParamCollector() *paramCollector {
	return &paramCollector{used: make(map[string]bool)}
}

// add registers a parameter and returns its named placeholder.
func (pc *paramCollector) add(param types.Param) string {
	if !pc.used[param.Name] {
		pc.names = append(pc.names, param.Name)
		pc.used[param.Name] = true
	}
	return ":" + param.Name
}
