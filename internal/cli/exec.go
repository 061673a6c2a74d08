package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zoobzio/sqlfrag"
	"github.com/zoobzio/sqlfrag/internal/config"
	"github.com/zoobzio/sqlfrag/internal/document"
	"github.com/zoobzio/sqlfrag/runner"
)

func newExecCommand(a *app) *cobra.Command {
	var params []string

	cmd := &cobra.Command{
		Use:   "exec <file>",
		Short: "Render a query document and run it against a database",
		Long: `Renders a query document for a single dialect, binds its parameters and
runs it against --dsn. Parameter values come from the document's params
block, overridden by --param name=value.`,
		Example: `  sqlfrag exec report.yaml -d sqlite --dsn ./app.db --param status=paid
  sqlfrag exec cleanup.yaml -d postgres --dsn "postgres://app@localhost/app"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(a.cfg.Dialects) != 1 {
				return fmt.Errorf("exec needs exactly one dialect, got %d", len(a.cfg.Dialects))
			}
			if a.cfg.DSN == "" {
				return fmt.Errorf("exec needs a connection string (--dsn or SQLFRAG_DSN)")
			}

			doc, err := document.Load(args[0])
			if err != nil {
				return err
			}
			builder, err := doc.Build(sqlfrag.New())
			if err != nil {
				return err
			}
			r, err := rendererFor(a.cfg.Dialects[0])
			if err != nil {
				return err
			}
			result, err := builder.Render(r)
			if err != nil {
				return err
			}

			values, err := mergeParams(doc.Params, params)
			if err != nil {
				return err
			}

			run, err := runner.Open(cmd.Context(), r.Dialect(), a.cfg.DSN, a.logger)
			if err != nil {
				return err
			}
			defer func() { _ = run.Close() }()

			out, err := run.Run(cmd.Context(), result, values)
			if err != nil {
				return err
			}
			a.logger.Debug("exec finished",
				zap.String("dialect", r.Dialect()),
				zap.Int("rows", len(out.Rows)),
				zap.Int64("affected", out.RowsAffected),
			)

			if a.cfg.Format == config.FormatJSON {
				if result.ReturnsRows {
					return writeJSON(cmd.OutOrStdout(), out.Rows)
				}
				return writeJSON(cmd.OutOrStdout(), map[string]int64{"rows_affected": out.RowsAffected})
			}
			if result.ReturnsRows {
				writeRowsTable(cmd.OutOrStdout(), out)
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d rows affected\n", out.RowsAffected)
			return nil
		},
	}

	cmd.Flags().String("dsn", "", "database connection string")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "parameter value as name=value (repeatable)")
	return cmd
}

// mergeParams overlays name=value flags on the document's params.
func mergeParams(base map[string]any, flags []string) (map[string]any, error) {
	values := make(map[string]any, len(base)+len(flags))
	for k, v := range base {
		values[k] = v
	}
	for _, kv := range flags {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --param %q (want name=value)", kv)
		}
		values[name] = value
	}
	return values, nil
}

func writeRowsTable(w io.Writer, out *runner.Result) {
	if len(out.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(out.Columns))
	for i, col := range out.Columns {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, row := range out.Rows {
		r := make(table.Row, len(out.Columns))
		for i, col := range out.Columns {
			r[i] = row[col]
		}
		t.AppendRow(r)
	}
	t.Render()

	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(out.Rows))
}
