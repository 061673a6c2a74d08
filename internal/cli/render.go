package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zoobzio/sqlfrag"
	"github.com/zoobzio/sqlfrag/internal/config"
	"github.com/zoobzio/sqlfrag/internal/document"
)

// rendered is the outcome of rendering one document for one dialect.
type rendered struct {
	Dialect     string   `json:"dialect"`
	SQL         string   `json:"sql,omitempty"`
	Params      []string `json:"params,omitempty"`
	Unsupported string   `json:"unsupported,omitempty"`
}

func newRenderCommand(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a query document",
		Long: `Renders a YAML query document for the configured dialects.

Dialects that cannot express the statement are reported as unsupported
rather than failing the whole run.`,
		Example: `  sqlfrag render report.yaml -d postgres -d mssql
  sqlfrag render report.yaml --all -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := document.Load(args[0])
			if err != nil {
				return err
			}
			builder, err := doc.Build(sqlfrag.New())
			if err != nil {
				return err
			}

			renderers, err := a.renderers(all)
			if err != nil {
				return err
			}

			results, err := renderAll(builder, renderers)
			if err != nil {
				return err
			}
			for _, out := range results {
				a.logger.Debug("rendered",
					zap.String("dialect", out.Dialect),
					zap.String("sql", out.SQL),
					zap.Strings("params", out.Params),
					zap.Bool("unsupported", out.Unsupported != ""),
				)
			}

			if a.cfg.Format == config.FormatJSON {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			writeRenderedText(cmd.OutOrStdout(), results)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "render for every dialect")
	return cmd
}

func (a *app) renderers(all bool) ([]sqlfrag.Renderer, error) {
	if all {
		return allRenderers(), nil
	}
	out := make([]sqlfrag.Renderer, 0, len(a.cfg.Dialects))
	for _, name := range a.cfg.Dialects {
		r, err := rendererFor(name)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// renderAll renders b for every renderer concurrently. Results keep the
// order of renderers.
func renderAll(b *sqlfrag.Builder, renderers []sqlfrag.Renderer) ([]rendered, error) {
	results := make([]rendered, len(renderers))
	var g errgroup.Group
	for i, r := range renderers {
		g.Go(func() error {
			out, err := renderOne(b, r)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func renderOne(b *sqlfrag.Builder, r sqlfrag.Renderer) (rendered, error) {
	result, err := b.Render(r)
	if err != nil {
		if sqlfrag.IsUnsupported(err) {
			return rendered{Dialect: r.Dialect(), Unsupported: err.Error()}, nil
		}
		return rendered{}, fmt.Errorf("%s: %w", r.Dialect(), err)
	}
	return rendered{Dialect: r.Dialect(), SQL: result.SQL, Params: result.RequiredParams}, nil
}

func writeRenderedText(w io.Writer, results []rendered) {
	for i, res := range results {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprintf(w, "-- %s\n", res.Dialect)
		if res.Unsupported != "" {
			_, _ = fmt.Fprintf(w, "-- unsupported: %s\n", res.Unsupported)
			continue
		}
		_, _ = fmt.Fprintln(w, res.SQL)
		if len(res.Params) > 0 {
			_, _ = fmt.Fprintf(w, "-- params: %s\n", strings.Join(res.Params, ", "))
		}
	}
}
