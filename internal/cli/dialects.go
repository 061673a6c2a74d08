package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/zoobzio/sqlfrag"
	"github.com/zoobzio/sqlfrag/internal/config"
	"github.com/zoobzio/sqlfrag/internal/render"
	"github.com/zoobzio/sqlfrag/mariadb"
	"github.com/zoobzio/sqlfrag/mssql"
	"github.com/zoobzio/sqlfrag/mysql"
	"github.com/zoobzio/sqlfrag/postgres"
	"github.com/zoobzio/sqlfrag/sqlite"
)

var registry = map[render.Dialect]func() sqlfrag.Renderer{
	render.Postgres: func() sqlfrag.Renderer { return postgres.New() },
	render.MySQL:    func() sqlfrag.Renderer { return mysql.New() },
	render.MariaDB:  func() sqlfrag.Renderer { return mariadb.New() },
	render.SQLite:   func() sqlfrag.Renderer { return sqlite.New() },
	render.MSSQL:    func() sqlfrag.Renderer { return mssql.New() },
}

// rendererFor resolves a dialect name or alias.
func rendererFor(name string) (sqlfrag.Renderer, error) {
	d, err := render.ParseDialect(name)
	if err != nil {
		return nil, err
	}
	return registry[d](), nil
}

func allRenderers() []sqlfrag.Renderer {
	out := make([]sqlfrag.Renderer, 0, len(registry))
	for _, d := range render.Dialects() {
		out = append(out, registry[d]())
	}
	return out
}

type capability struct {
	name string
	has  func(render.Capabilities) bool
}

var capabilities = []capability{
	{"upsert", func(c render.Capabilities) bool { return c.Upsert }},
	{"returning on insert", func(c render.Capabilities) bool { return c.ReturningOnInsert }},
	{"returning on update", func(c render.Capabilities) bool { return c.ReturningOnUpdate }},
	{"returning on delete", func(c render.Capabilities) bool { return c.ReturningOnDelete }},
	{"in array", func(c render.Capabilities) bool { return c.InArray }},
	{"nulls ordering", func(c render.Capabilities) bool { return c.NullsOrdering }},
	{"constant order by", func(c render.Capabilities) bool { return c.ConstantOrderBy }},
	{"aggregate filter", func(c render.Capabilities) bool { return c.AggregateFilter }},
	{"ordered-set aggregates", func(c render.Capabilities) bool { return c.OrderedSetAggregates }},
	{"boolean aggregates", func(c render.Capabilities) bool { return c.BooleanAggregates }},
	{"native xml", func(c render.Capabilities) bool { return c.NativeXML }},
	{"table comments", func(c render.Capabilities) bool { return c.TableComments }},
	{"column comments", func(c render.Capabilities) bool { return c.ColumnComments }},
	{"users", func(c render.Capabilities) bool { return c.Users }},
}

func newDialectsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List dialects and their native capabilities",
		Long: `Lists every supported dialect with the SQL features it handles natively.
Features marked "-" are emulated where possible and rejected otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			renderers := allRenderers()
			if a.cfg.Format == config.FormatJSON {
				return writeCapabilitiesJSON(cmd.OutOrStdout(), renderers)
			}
			writeCapabilitiesTable(cmd.OutOrStdout(), renderers)
			return nil
		},
	}
}

func writeCapabilitiesTable(w io.Writer, renderers []sqlfrag.Renderer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := table.Row{"feature"}
	for _, r := range renderers {
		header = append(header, r.Dialect())
	}
	t.AppendHeader(header)

	for _, c := range capabilities {
		row := table.Row{c.name}
		for _, r := range renderers {
			mark := "-"
			if c.has(r.Capabilities()) {
				mark = "yes"
			}
			row = append(row, mark)
		}
		t.AppendRow(row)
	}
	t.Render()
}

func writeCapabilitiesJSON(w io.Writer, renderers []sqlfrag.Renderer) error {
	out := make(map[string]map[string]bool, len(renderers))
	for _, r := range renderers {
		caps := make(map[string]bool, len(capabilities))
		for _, c := range capabilities {
			caps[c.name] = c.has(r.Capabilities())
		}
		out[r.Dialect()] = caps
	}
	return writeJSON(w, out)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
