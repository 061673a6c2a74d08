// Package integration runs rendered sqlfrag fragments against real databases.
package integration

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mariadb"
	"github.com/testcontainers/testcontainers-go/modules/mssql"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/zoobzio/dbml"

	"github.com/zoobzio/sqlfrag"
	"github.com/zoobzio/sqlfrag/runner"
)

// Shared containers - lazily initialized
var (
	sharedPg      *sharedContainer
	sharedMariaDB *sharedContainer
	sharedMSSQL   *sharedContainer

	pgOnce      sync.Once
	mariadbOnce sync.Once
	mssqlOnce   sync.Once
)

type sharedContainer struct {
	container testcontainers.Container
	dsn       string
}

// TestMain terminates any container a test started.
func TestMain(m *testing.M) {
	code := m.Run()

	ctx := context.Background()
	for _, c := range []*sharedContainer{sharedPg, sharedMariaDB, sharedMSSQL} {
		if c != nil && c.container != nil {
			_ = c.container.Terminate(ctx)
		}
	}

	os.Exit(code)
}

func skipShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
}

func postgresDSN() string {
	pgOnce.Do(func() {
		ctx := context.Background()

		container, err := postgres.Run(ctx,
			"docker.io/postgres:16-alpine",
			postgres.WithDatabase("sqlfrag_test"),
			postgres.WithUsername("test"),
			postgres.WithPassword("test"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second),
			),
		)
		if err != nil {
			log.Fatalf("Failed to start postgres container: %v", err)
		}

		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			log.Fatalf("Failed to get connection string: %v", err)
		}
		sharedPg = &sharedContainer{container: container, dsn: dsn}
	})
	return sharedPg.dsn
}

func mariadbDSN() string {
	mariadbOnce.Do(func() {
		ctx := context.Background()

		container, err := mariadb.Run(ctx,
			"docker.io/mariadb:11",
			mariadb.WithDatabase("sqlfrag_test"),
			mariadb.WithUsername("root"),
			mariadb.WithPassword("test"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("mariadbd: ready for connections").
					WithStartupTimeout(60*time.Second),
			),
		)
		if err != nil {
			log.Fatalf("Failed to start mariadb container: %v", err)
		}

		dsn, err := container.ConnectionString(ctx)
		if err != nil {
			log.Fatalf("Failed to get connection string: %v", err)
		}
		sharedMariaDB = &sharedContainer{container: container, dsn: dsn}
	})
	return sharedMariaDB.dsn
}

func mssqlDSN() string {
	mssqlOnce.Do(func() {
		ctx := context.Background()

		container, err := mssql.Run(ctx,
			"mcr.microsoft.com/mssql/server:2022-latest",
			mssql.WithAcceptEULA(),
			mssql.WithPassword("Test@12345"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("SQL Server is now ready for client connections").
					WithStartupTimeout(120*time.Second),
			),
		)
		if err != nil {
			log.Fatalf("Failed to start mssql container: %v", err)
		}

		dsn, err := container.ConnectionString(ctx)
		if err != nil {
			log.Fatalf("Failed to get connection string: %v", err)
		}
		sharedMSSQL = &sharedContainer{container: container, dsn: dsn}
	})
	return sharedMSSQL.dsn
}

// target is one database reached through the runner with its renderer.
type target struct {
	name     string
	renderer sqlfrag.Renderer
	runner   *runner.Runner
}

// openTarget connects to dsn, retrying while the server finishes starting.
func openTarget(t *testing.T, r sqlfrag.Renderer, dsn string) *target {
	t.Helper()
	ctx := context.Background()

	var (
		run *runner.Runner
		err error
	)
	for i := 0; i < 60; i++ {
		run, err = runner.Open(ctx, r.Dialect(), dsn, nil)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		t.Fatalf("Failed to connect to %s: %v", r.Dialect(), err)
	}
	t.Cleanup(func() { _ = run.Close() })

	return &target{name: r.Dialect(), renderer: r, runner: run}
}

// exec runs raw SQL used for fixtures.
func (tg *target) exec(t *testing.T, query string) {
	t.Helper()
	if _, err := tg.runner.DB().ExecContext(context.Background(), query); err != nil {
		t.Fatalf("Failed to execute SQL: %v\nSQL: %s", err, query)
	}
}

// run renders b for the target and executes it.
func (tg *target) run(t *testing.T, b *sqlfrag.Builder, values map[string]any) *runner.Result {
	t.Helper()
	result, err := b.Render(tg.renderer)
	if err != nil {
		t.Fatalf("Failed to render: %v", err)
	}
	out, err := tg.runner.Run(context.Background(), result, values)
	if err != nil {
		t.Fatalf("Failed to run: %v\nSQL: %s", err, result.SQL)
	}
	return out
}

// createTestInstance creates an instance matching the fixture schema.
func createTestInstance(t *testing.T) *sqlfrag.Instance {
	t.Helper()

	project := dbml.NewProject("test")

	users := dbml.NewTable("users")
	users.AddColumn(dbml.NewColumn("id", "bigint"))
	users.AddColumn(dbml.NewColumn("username", "varchar"))
	users.AddColumn(dbml.NewColumn("email", "varchar"))
	project.AddTable(users)

	orders := dbml.NewTable("orders")
	orders.AddColumn(dbml.NewColumn("id", "bigint"))
	orders.AddColumn(dbml.NewColumn("user_id", "bigint"))
	orders.AddColumn(dbml.NewColumn("total", "int"))
	orders.AddColumn(dbml.NewColumn("status", "varchar"))
	orders.AddColumn(dbml.NewColumn("paid", "boolean"))
	project.AddTable(orders)

	instance, err := sqlfrag.NewFromDBML(project)
	if err != nil {
		t.Fatalf("Failed to create instance: %v", err)
	}
	return instance
}

// schemas holds the fixture DDL for each dialect.
var schemas = map[string][]string{
	"postgres": {
		`DROP TABLE IF EXISTS orders`,
		`DROP TABLE IF EXISTS users`,
		`CREATE TABLE users (id BIGINT PRIMARY KEY, username VARCHAR(255) NOT NULL, email VARCHAR(255) UNIQUE)`,
		`CREATE TABLE orders (id BIGINT PRIMARY KEY, user_id BIGINT NOT NULL, total INT NOT NULL, status VARCHAR(50) NOT NULL, paid BOOLEAN NOT NULL)`,
	},
	"mariadb": {
		`DROP TABLE IF EXISTS orders`,
		`DROP TABLE IF EXISTS users`,
		`CREATE TABLE users (id BIGINT PRIMARY KEY, username VARCHAR(255) NOT NULL, email VARCHAR(255) UNIQUE)`,
		`CREATE TABLE orders (id BIGINT PRIMARY KEY, user_id BIGINT NOT NULL, total INT NOT NULL, status VARCHAR(50) NOT NULL, paid BOOLEAN NOT NULL)`,
	},
	"sqlite": {
		`DROP TABLE IF EXISTS orders`,
		`DROP TABLE IF EXISTS users`,
		`CREATE TABLE users (id INTEGER PRIMARY KEY, username TEXT NOT NULL, email TEXT UNIQUE)`,
		`CREATE TABLE orders (id INTEGER PRIMARY KEY, user_id INTEGER NOT NULL, total INTEGER NOT NULL, status TEXT NOT NULL, paid INTEGER NOT NULL)`,
	},
	"mssql": {
		`IF OBJECT_ID('dbo.orders', 'U') IS NOT NULL DROP TABLE dbo.orders`,
		`IF OBJECT_ID('dbo.users', 'U') IS NOT NULL DROP TABLE dbo.users`,
		`CREATE TABLE users (id BIGINT PRIMARY KEY, username NVARCHAR(255) NOT NULL, email NVARCHAR(255) NULL)`,
		`CREATE TABLE orders (id BIGINT PRIMARY KEY, user_id BIGINT NOT NULL, total INT NOT NULL, status NVARCHAR(50) NOT NULL, paid BIT NOT NULL)`,
	},
}

// setupFixtures recreates and seeds the fixture tables.
func setupFixtures(t *testing.T, tg *target) {
	t.Helper()

	for _, stmt := range schemas[tg.name] {
		tg.exec(t, stmt)
	}

	yes, no := "true", "false"
	if tg.name == "sqlite" || tg.name == "mssql" {
		yes, no = "1", "0"
	}

	tg.exec(t, `INSERT INTO users (id, username, email) VALUES
		(1, 'alice', 'alice@example.com'),
		(2, 'bob & co', 'bob@example.com'),
		(3, 'carol', 'carol@example.com')`)
	tg.exec(t, fmt.Sprintf(`INSERT INTO orders (id, user_id, total, status, paid) VALUES
		(1, 1, 10, 'shipped', %[1]s),
		(2, 1, 6, 'open', %[2]s),
		(3, 1, 4, 'shipped', %[1]s),
		(4, 2, 8, 'open', %[1]s),
		(5, 2, 2, 'open', %[2]s)`, yes, no))
}

// num converts a scanned numeric value to float64.
func num(t *testing.T, v any) float64 {
	t.Helper()
	switch n := v.(type) {
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case int:
		return float64(n)
	case float64:
		return n
	case float32:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			t.Fatalf("not a number: %q", n)
		}
		return f
	}
	t.Fatalf("unexpected numeric type %T (%v)", v, v)
	return 0
}

// truthy converts a scanned boolean or 0/1 flag to bool.
func truthy(t *testing.T, v any) bool {
	t.Helper()
	if b, ok := v.(bool); ok {
		return b
	}
	return num(t, v) != 0
}
