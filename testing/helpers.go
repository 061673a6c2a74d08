// Package testing provides test utilities for sqlfrag.
package testing

import (
	"strings"
	"testing"

	"github.com/zoobzio/dbml"

	"github.com/zoobzio/sqlfrag"
	"github.com/zoobzio/sqlfrag/mariadb"
	"github.com/zoobzio/sqlfrag/mssql"
	"github.com/zoobzio/sqlfrag/mysql"
	"github.com/zoobzio/sqlfrag/postgres"
	"github.com/zoobzio/sqlfrag/sqlite"
)

// TestInstance creates a schema-validated instance for testing.
// Includes users, orders, order_items, scores and sessions tables.
func TestInstance(t *testing.T) *sqlfrag.Instance {
	t.Helper()

	project := dbml.NewProject("test")

	users := dbml.NewTable("users")
	users.AddColumn(dbml.NewColumn("id", "bigint"))
	users.AddColumn(dbml.NewColumn("username", "varchar"))
	users.AddColumn(dbml.NewColumn("email", "varchar"))
	users.AddColumn(dbml.NewColumn("age", "int"))
	users.AddColumn(dbml.NewColumn("active", "boolean"))
	users.AddColumn(dbml.NewColumn("created_at", "timestamp"))
	project.AddTable(users)

	orders := dbml.NewTable("orders")
	orders.AddColumn(dbml.NewColumn("id", "bigint"))
	orders.AddColumn(dbml.NewColumn("user_id", "bigint"))
	orders.AddColumn(dbml.NewColumn("total", "numeric"))
	orders.AddColumn(dbml.NewColumn("status", "varchar"))
	orders.AddColumn(dbml.NewColumn("paid", "boolean"))
	orders.AddColumn(dbml.NewColumn("created_at", "timestamp"))
	project.AddTable(orders)

	items := dbml.NewTable("order_items")
	items.AddColumn(dbml.NewColumn("id", "bigint"))
	items.AddColumn(dbml.NewColumn("order_id", "bigint"))
	items.AddColumn(dbml.NewColumn("sku", "varchar"))
	items.AddColumn(dbml.NewColumn("quantity", "int"))
	items.AddColumn(dbml.NewColumn("price", "numeric"))
	project.AddTable(items)

	scores := dbml.NewTable("scores")
	scores.AddColumn(dbml.NewColumn("id", "bigint"))
	scores.AddColumn(dbml.NewColumn("user_id", "bigint"))
	scores.AddColumn(dbml.NewColumn("score", "numeric"))
	scores.AddColumn(dbml.NewColumn("passed", "boolean"))
	project.AddTable(scores)

	sessions := dbml.NewTable("sessions")
	sessions.AddColumn(dbml.NewColumn("id", "bigint"))
	sessions.AddColumn(dbml.NewColumn("user_id", "bigint"))
	sessions.AddColumn(dbml.NewColumn("expires_at", "timestamp"))
	project.AddTable(sessions)

	instance, err := sqlfrag.NewFromDBML(project)
	if err != nil {
		t.Fatalf("Failed to create test instance: %v", err)
	}
	return instance
}

// Renderers returns one renderer per supported dialect.
func Renderers() []sqlfrag.Renderer {
	return []sqlfrag.Renderer{postgres.New(), mysql.New(), mariadb.New(), sqlite.New(), mssql.New()}
}

// RenderAll renders b on every dialect, keyed by dialect name. Dialects
// that reject the statement as unsupported map to "".
func RenderAll(t testing.TB, b *sqlfrag.Builder) map[string]string {
	t.Helper()
	out := make(map[string]string)
	for _, r := range Renderers() {
		result, err := b.Render(r)
		if err != nil {
			if !sqlfrag.IsUnsupported(err) {
				t.Fatalf("%s: Render() error = %v", r.Dialect(), err)
			}
			out[r.Dialect()] = ""
			continue
		}
		out[r.Dialect()] = result.SQL
	}
	return out
}

// AssertSQL compares expected and actual SQL, reporting detailed differences.
func AssertSQL(t *testing.T, expected, actual string) {
	t.Helper()
	if expected != actual {
		t.Errorf("SQL mismatch:\nExpected: %s\nActual:   %s", expected, actual)
	}
}

// AssertParams checks that the required params match expected, in order.
func AssertParams(t *testing.T, expected, actual []string) {
	t.Helper()
	if len(expected) != len(actual) {
		t.Errorf("Param count mismatch: expected %d, got %d\nExpected: %v\nActual: %v",
			len(expected), len(actual), expected, actual)
		return
	}
	for i := range expected {
		if expected[i] != actual[i] {
			t.Errorf("Param %d mismatch: expected %q, got %q\nExpected: %v\nActual: %v",
				i, expected[i], actual[i], expected, actual)
		}
	}
}

// AssertUnsupported fails the test unless err is an UnsupportedFeatureError.
func AssertUnsupported(t *testing.T, err error) {
	t.Helper()
	if !sqlfrag.IsUnsupported(err) {
		t.Errorf("Expected UnsupportedFeatureError, got: %v", err)
	}
}

// AssertErrorContains checks that error message contains substring.
func AssertErrorContains(t *testing.T, err error, substr string) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected error containing %q but got nil", substr)
	}
	if !strings.Contains(err.Error(), substr) {
		t.Errorf("Expected error containing %q, got: %v", substr, err)
	}
}

// AssertPanics verifies that a function panics.
func AssertPanics(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic but function completed normally")
		}
	}()
	fn()
}
