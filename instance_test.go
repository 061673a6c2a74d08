package sqlfrag_test

import (
	"errors"
	"testing"

	"github.com/zoobzio/dbml"
	"github.com/zoobzio/sqlfrag"
	"github.com/zoobzio/sqlfrag/internal/types"
)

func createTestInstance(t *testing.T) *sqlfrag.Instance {
	t.Helper()

	project := dbml.NewProject("test_db")

	users := dbml.NewTable("users")
	users.AddColumn(dbml.NewColumn("id", "bigint"))
	users.AddColumn(dbml.NewColumn("username", "varchar"))
	users.AddColumn(dbml.NewColumn("email", "varchar"))
	users.AddColumn(dbml.NewColumn("age", "int"))
	users.AddColumn(dbml.NewColumn("active", "boolean"))
	project.AddTable(users)

	orders := dbml.NewTable("orders")
	orders.AddColumn(dbml.NewColumn("id", "bigint"))
	orders.AddColumn(dbml.NewColumn("user_id", "bigint"))
	orders.AddColumn(dbml.NewColumn("total", "numeric"))
	orders.AddColumn(dbml.NewColumn("status", "varchar"))
	orders.AddColumn(dbml.NewColumn("paid", "boolean"))
	orders.AddColumn(dbml.NewColumn("note", "text"))
	project.AddTable(orders)

	instance, err := sqlfrag.NewFromDBML(project)
	if err != nil {
		t.Fatalf("Failed to create test instance: %v", err)
	}

	return instance
}

func TestNewFromDBML(t *testing.T) {
	instance := createTestInstance(t)
	if !instance.Schema() {
		t.Error("Expected instance to validate against a schema")
	}
	tables := instance.Tables()
	if len(tables) != 2 || tables[0] != "orders" || tables[1] != "users" {
		t.Errorf("Tables() = %v, want [orders users]", tables)
	}
}

func TestNewFromDBML_NilProject(t *testing.T) {
	_, err := sqlfrag.NewFromDBML(nil)
	if err == nil {
		t.Fatal("Expected error for nil project")
	}
}

func TestNew_Schemaless(t *testing.T) {
	s := sqlfrag.New()
	if s.Schema() {
		t.Error("Expected schemaless instance")
	}
	if _, err := s.TryT("anything"); err != nil {
		t.Errorf("Expected any valid identifier to be accepted, got: %v", err)
	}
	if _, err := s.TryF("users; DROP TABLE users"); err == nil {
		t.Error("Expected malformed identifier to be rejected")
	}
}

func TestTryT(t *testing.T) {
	instance := createTestInstance(t)

	table, err := instance.TryT("users", "u")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if table.Name != "users" || table.Alias != "u" {
		t.Errorf("Expected users AS u, got %+v", table)
	}

	if _, err := instance.TryT("missing"); err == nil {
		t.Error("Expected error for unknown table")
	}
	if _, err := instance.TryT("users", "usr"); err == nil {
		t.Error("Expected error for multi-letter alias")
	}
	if _, err := instance.TryT("users", "u", "v"); err == nil {
		t.Error("Expected error for two aliases")
	}
}

func TestT_Panics(t *testing.T) {
	instance := createTestInstance(t)
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected T to panic for unknown table")
		}
	}()
	instance.T("missing")
}

func TestTryF(t *testing.T) {
	instance := createTestInstance(t)

	if _, err := instance.TryF("email"); err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if _, err := instance.TryF("*"); err != nil {
		t.Errorf("Expected * to be accepted, got: %v", err)
	}
	if _, err := instance.TryF("password"); err == nil {
		t.Error("Expected error for unknown field")
	}
}

func TestTryP(t *testing.T) {
	instance := createTestInstance(t)

	tests := []struct {
		name  string
		valid bool
	}{
		{"user_id", true},
		{"_private", true},
		{"1abc", false},
		{"a-b", false},
		{"x'; --", false},
		{"select", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := instance.TryP(tt.name)
			if (err == nil) != tt.valid {
				t.Errorf("TryP(%q) error = %v, valid = %v", tt.name, err, tt.valid)
			}
		})
	}
}

func TestTryU(t *testing.T) {
	instance := createTestInstance(t)

	u, err := instance.TryU("reporting")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if u.Name != "reporting" || u.Host != "" {
		t.Errorf("Expected bare user, got %+v", u)
	}
	if scoped := u.At("10.0.%"); scoped.Host != "10.0.%" || u.Host != "" {
		t.Errorf("At() should return a scoped copy, got %+v / %+v", scoped, u)
	}

	_, err = instance.TryU("bad user")
	if !errors.Is(err, sqlfrag.ErrInvalidIdentifier) {
		t.Errorf("Expected ErrInvalidIdentifier, got %v", err)
	}
}

func TestTryC(t *testing.T) {
	instance := createTestInstance(t)

	cond, err := instance.TryC(instance.F("age"), sqlfrag.GT, instance.P("min_age"))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cond.Operator != types.GT || cond.Value.Name != "min_age" {
		t.Errorf("Unexpected condition: %+v", cond)
	}

	if _, err := instance.TryC(types.Field{Name: "password"}, sqlfrag.EQ, instance.P("p")); err == nil {
		t.Error("Expected error for unknown field")
	}
	if _, err := instance.TryC(instance.F("age"), sqlfrag.IsNull, instance.P("p")); err == nil {
		t.Error("Expected error for IS NULL with a parameter")
	}
}

func TestNullConditions(t *testing.T) {
	instance := createTestInstance(t)

	if c := instance.Null(instance.F("email")); c.Operator != types.IsNull {
		t.Errorf("Null() operator = %s", c.Operator)
	}
	if c := instance.NotNull(instance.F("email")); c.Operator != types.IsNotNull {
		t.Errorf("NotNull() operator = %s", c.Operator)
	}
}

func TestConditionGroups(t *testing.T) {
	instance := createTestInstance(t)
	a := instance.C(instance.F("age"), sqlfrag.GT, instance.P("a"))
	b := instance.C(instance.F("age"), sqlfrag.LT, instance.P("b"))

	if g := instance.And(a, b); g.Logic != types.AND || len(g.Conditions) != 2 {
		t.Errorf("And() = %+v", g)
	}
	if g := instance.Or(a, b); g.Logic != types.OR || len(g.Conditions) != 2 {
		t.Errorf("Or() = %+v", g)
	}
	if _, err := instance.TryAnd(); err == nil {
		t.Error("Expected error for empty AND")
	}
	if _, err := instance.TryOr(); err == nil {
		t.Error("Expected error for empty OR")
	}
}

func TestWithTable(t *testing.T) {
	instance := createTestInstance(t)

	f := instance.WithTable(instance.F("id"), "u")
	if f.Table != "u" {
		t.Errorf("Expected alias u, got %q", f.Table)
	}
	if f := instance.WithTable(instance.F("id"), "orders"); f.Table != "orders" {
		t.Errorf("Expected table orders, got %q", f.Table)
	}
	if _, err := instance.TryWithTable(instance.F("id"), "missing"); err == nil {
		t.Error("Expected error for unknown qualifier")
	}
}

func TestFieldWithTable_Validator(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected Field.WithTable to panic for a malformed qualifier")
		}
	}()
	types.Field{Name: "id"}.WithTable("u; --")
}
