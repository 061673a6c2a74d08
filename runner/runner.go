// Package runner executes rendered statements against a live database.
package runner

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/zoobzio/sqlfrag/bind"
	"github.com/zoobzio/sqlfrag/internal/render"
	"github.com/zoobzio/sqlfrag/internal/types"

	// Database drivers, one per dialect.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"
)

var driverNames = map[render.Dialect]string{
	render.Postgres: "pgx",
	render.MySQL:    "mysql",
	render.MariaDB:  "mysql",
	render.SQLite:   "sqlite",
	render.MSSQL:    "sqlserver",
}

// DriverName returns the database/sql driver registered for a dialect.
func DriverName(dialect string) (string, error) {
	d, err := render.ParseDialect(dialect)
	if err != nil {
		return "", err
	}
	return driverNames[d], nil
}

// Runner executes rendered statements on a single connection pool.
type Runner struct {
	db      *sql.DB
	dialect string
	logger  *zap.Logger
}

// New wraps an open database. A nil logger discards output.
func New(db *sql.DB, dialect string, logger *zap.Logger) (*Runner, error) {
	d, err := render.ParseDialect(dialect)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{db: db, dialect: d.String(), logger: logger}, nil
}

// Open connects to dsn with the dialect's driver and verifies the connection.
func Open(ctx context.Context, dialect, dsn string, logger *zap.Logger) (*Runner, error) {
	driver, err := DriverName(dialect)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", dialect, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", dialect, err)
	}
	return New(db, dialect, logger)
}

// DB returns the underlying connection pool.
func (r *Runner) DB() *sql.DB {
	return r.db
}

// Close closes the connection pool.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Result is the outcome of a run. Rows is set for statements that return
// rows; RowsAffected for the rest.
type Result struct {
	Columns      []string
	Rows         []map[string]any
	RowsAffected int64
}

// Run rebinds result for the runner's dialect, fills its parameters from
// values and executes it.
func (r *Runner) Run(ctx context.Context, result *types.QueryResult, values map[string]any) (*Result, error) {
	if r.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	if result == nil {
		return nil, fmt.Errorf("nil query result")
	}
	if result.Dialect != "" && result.Dialect != r.dialect {
		return nil, fmt.Errorf("query rendered for %s, runner is %s", result.Dialect, r.dialect)
	}

	query, names, err := bind.Rebind(r.dialect, result.SQL)
	if err != nil {
		return nil, err
	}
	args, err := bind.Args(names, values)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("executing statement",
		zap.String("dialect", r.dialect),
		zap.String("sql", query),
		zap.Strings("params", names),
	)

	if !result.ReturnsRows {
		res, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("exec failed: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			affected = -1
		}
		r.logger.Info("statement executed", zap.String("dialect", r.dialect), zap.Int64("rows", affected))
		return &Result{RowsAffected: affected}, nil
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	out, err := scanRows(rows)
	if err != nil {
		return nil, err
	}
	r.logger.Info("query executed", zap.String("dialect", r.dialect), zap.Int("rows", len(out.Rows)))
	return out, nil
}

func scanRows(rows *sql.Rows) (*Result, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	out := &Result{Columns: columns, Rows: []map[string]any{}}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		out.Rows = append(out.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}
	return out, nil
}
