package sqlfrag_test

import (
	"errors"
	"testing"

	"github.com/zoobzio/sqlfrag"
	"github.com/zoobzio/sqlfrag/internal/types"
	"github.com/zoobzio/sqlfrag/mssql"
	"github.com/zoobzio/sqlfrag/mysql"
	"github.com/zoobzio/sqlfrag/postgres"
	"github.com/zoobzio/sqlfrag/sqlite"
)

func TestSelect(t *testing.T) {
	instance := createTestInstance(t)

	ast, err := sqlfrag.Select(instance.T("users")).Build()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if ast.Operation != types.OpSelect {
		t.Errorf("Expected SELECT operation, got %v", ast.Operation)
	}
	if ast.Target.Name != "users" {
		t.Errorf("Expected table 'users', got '%s'", ast.Target.Name)
	}
}

func TestSelect_Render(t *testing.T) {
	s := createTestInstance(t)

	result, err := sqlfrag.Select(s.T("users")).
		Fields(s.F("id"), s.F("email")).
		Where(s.C(s.F("active"), sqlfrag.EQ, s.P("active"))).
		WhereField(s.F("age"), sqlfrag.GE, s.P("min_age")).
		OrderBy(s.F("email"), sqlfrag.ASC).
		Limit(10).
		Render(postgres.New())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	expected := `SELECT "id", "email" FROM "users" WHERE ("active" = :active AND "age" >= :min_age) ORDER BY "email" ASC LIMIT 10`
	if result.SQL != expected {
		t.Errorf("SQL = %q, want %q", result.SQL, expected)
	}
	if len(result.RequiredParams) != 2 || result.RequiredParams[0] != "active" || result.RequiredParams[1] != "min_age" {
		t.Errorf("RequiredParams = %v, want [active min_age]", result.RequiredParams)
	}
}

func TestInsert_MultiRow(t *testing.T) {
	s := createTestInstance(t)

	result, err := sqlfrag.Insert(s.T("users")).
		Value(s.F("email"), s.P("email1")).
		NextRow().
		Value(s.F("email"), s.P("email2")).
		Render(sqlite.New())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	expected := `INSERT INTO "users" ("email") VALUES (:email1), (:email2)`
	if result.SQL != expected {
		t.Errorf("SQL = %q, want %q", result.SQL, expected)
	}
}

func TestInsert_OnConflictDoUpdate(t *testing.T) {
	s := createTestInstance(t)

	result, err := sqlfrag.Insert(s.T("users")).
		Value(s.F("email"), s.P("email")).
		Value(s.F("username"), s.P("username")).
		OnConflict(s.F("email")).
		DoUpdate().
		Set(s.F("username"), s.P("username")).
		Build().
		Returning(s.F("id")).
		Render(postgres.New())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	expected := `INSERT INTO "users" ("email", "username") VALUES (:email, :username) ` +
		`ON CONFLICT ("email") DO UPDATE SET "username" = :username RETURNING "id"`
	if result.SQL != expected {
		t.Errorf("SQL = %q, want %q", result.SQL, expected)
	}
}

func TestUpdate(t *testing.T) {
	s := createTestInstance(t)

	result, err := sqlfrag.Update(s.T("users")).
		Set(s.F("email"), s.P("email")).
		Where(s.C(s.F("id"), sqlfrag.EQ, s.P("id"))).
		Render(mssql.New())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	expected := "UPDATE [users] SET [email] = :email WHERE [id] = :id"
	if result.SQL != expected {
		t.Errorf("SQL = %q, want %q", result.SQL, expected)
	}
}

func TestDelete_WithComment(t *testing.T) {
	s := createTestInstance(t)

	result, err := sqlfrag.Delete(s.T("orders")).
		Comment("nightly cleanup").
		Where(s.Null(s.F("user_id"))).
		Render(mysql.New())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	expected := "/* nightly cleanup */ DELETE FROM `orders` WHERE `user_id` IS NULL"
	if result.SQL != expected {
		t.Errorf("SQL = %q, want %q", result.SQL, expected)
	}
}

func TestComment_Rejected(t *testing.T) {
	s := createTestInstance(t)

	tests := []string{"", "close */ early", "nested /* open", "nul\x00byte"}
	for _, text := range tests {
		_, err := sqlfrag.Select(s.T("users")).Comment(text).Build()
		if !errors.Is(err, sqlfrag.ErrInvalidComment) {
			t.Errorf("Comment(%q) error = %v, want ErrInvalidComment", text, err)
		}
	}
}

func TestOrderByConstant(t *testing.T) {
	s := createTestInstance(t)
	query := sqlfrag.Select(s.T("users")).Fields(s.F("id")).OrderByConstant().Limit(5).Offset(10)

	tests := []struct {
		renderer sqlfrag.Renderer
		expected string
	}{
		{postgres.New(), `SELECT "id" FROM "users" ORDER BY NULL LIMIT 5 OFFSET 10`},
		{mssql.New(), "SELECT [id] FROM [users] ORDER BY (SELECT NULL) OFFSET 10 ROWS FETCH NEXT 5 ROWS ONLY"},
	}
	for _, tt := range tests {
		t.Run(tt.renderer.Dialect(), func(t *testing.T) {
			result, err := query.Render(tt.renderer)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if result.SQL != tt.expected {
				t.Errorf("SQL = %q, want %q", result.SQL, tt.expected)
			}
		})
	}
}

func TestOrderByNulls(t *testing.T) {
	s := createTestInstance(t)

	result, err := sqlfrag.Select(s.T("users")).
		Fields(s.F("id")).
		OrderByNulls(s.F("age"), sqlfrag.DESC, sqlfrag.NullsFirst).
		Render(mssql.New())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	expected := "SELECT [id] FROM [users] ORDER BY CASE WHEN [age] IS NULL THEN 0 ELSE 1 END, [age] DESC"
	if result.SQL != expected {
		t.Errorf("SQL = %q, want %q", result.SQL, expected)
	}

	_, err = sqlfrag.Select(s.T("users")).OrderByNulls(s.F("age"), sqlfrag.ASC, "NULLS SOMEWHERE").Build()
	if err == nil {
		t.Error("Expected error for invalid NULLS ordering")
	}
}

func TestJoin(t *testing.T) {
	s := createTestInstance(t)

	result, err := sqlfrag.Select(s.T("users", "u")).
		Fields(s.WithTable(s.F("email"), "u")).
		InnerJoin(s.T("orders", "o"), sqlfrag.CF(s.WithTable(s.F("id"), "u"), sqlfrag.EQ, s.WithTable(s.F("user_id"), "o"))).
		Render(postgres.New())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	expected := `SELECT u."email" FROM "users" u INNER JOIN "orders" o ON u."id" = o."user_id"`
	if result.SQL != expected {
		t.Errorf("SQL = %q, want %q", result.SQL, expected)
	}
}

func TestSubqueryParamsNamespaced(t *testing.T) {
	s := createTestInstance(t)

	sub := sqlfrag.Sub(sqlfrag.Select(s.T("orders")).
		Fields(s.F("user_id")).
		Where(s.C(s.F("status"), sqlfrag.EQ, s.P("status"))))

	result, err := sqlfrag.Select(s.T("users")).
		Fields(s.F("id")).
		Where(sqlfrag.CSub(s.F("id"), sqlfrag.IN, sub)).
		Where(s.C(s.F("active"), sqlfrag.EQ, s.P("active"))).
		Render(postgres.New())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	expected := `SELECT "id" FROM "users" WHERE ("id" IN (SELECT "user_id" FROM "orders" WHERE "status" = :sq1_status) AND "active" = :active)`
	if result.SQL != expected {
		t.Errorf("SQL = %q, want %q", result.SQL, expected)
	}
}

func TestBuilderErrors(t *testing.T) {
	s := createTestInstance(t)

	tests := []struct {
		name    string
		builder *sqlfrag.Builder
	}{
		{"fields on insert", sqlfrag.Insert(s.T("users")).Fields(s.F("id"))},
		{"set on select", sqlfrag.Select(s.T("users")).Set(s.F("id"), s.P("id"))},
		{"value on update", sqlfrag.Update(s.T("users")).Value(s.F("id"), s.P("id"))},
		{"having without group by", sqlfrag.Select(s.T("users")).Having(s.C(s.F("age"), sqlfrag.GT, s.P("a")))},
		{"join on delete", sqlfrag.Delete(s.T("users")).Join(s.T("orders"), s.C(s.F("id"), sqlfrag.EQ, s.P("id")))},
		{"join without on", sqlfrag.Select(s.T("users")).Join(s.T("orders"), nil)},
		{"returning on select", sqlfrag.Select(s.T("users")).Returning(s.F("id"))},
		{"on conflict on update", sqlfrag.Update(s.T("users")).Set(s.F("id"), s.P("id")).OnConflict(s.F("id")).DoNothing()},
		{"order by on update", sqlfrag.Update(s.T("users")).Set(s.F("id"), s.P("id")).OrderBy(s.F("id"), sqlfrag.ASC)},
		{"bad direction", sqlfrag.Select(s.T("users")).OrderBy(s.F("id"), "SIDEWAYS")},
		{"where on create user", sqlfrag.CreateUser(s.U("app")).Where(s.C(s.F("id"), sqlfrag.EQ, s.P("id")))},
		{"empty update", sqlfrag.Update(s.T("users"))},
		{"empty insert", sqlfrag.Insert(s.T("users"))},
		{"limit on count", sqlfrag.Count(s.T("users")).Limit(3)},
		{"offset on count", sqlfrag.Count(s.T("users")).Offset(3)},
		{"limit on update", sqlfrag.Update(s.T("users")).Set(s.F("id"), s.P("id")).Limit(1)},
		{"limit on delete", sqlfrag.Delete(s.T("users")).Limit(1)},
		{"do update without set", sqlfrag.Insert(s.T("users")).Value(s.F("id"), s.P("id")).OnConflict(s.F("id")).DoUpdate().Build()},
		{"having agg is null", sqlfrag.Select(s.T("users")).GroupBy(s.F("age")).HavingAgg(sqlfrag.CountAll(), sqlfrag.IsNull, s.P("n"))},
		{"having agg in", sqlfrag.Select(s.T("users")).GroupBy(s.F("age")).HavingAgg(sqlfrag.CountAll(), sqlfrag.IN, s.P("n"))},
		{"having agg exists", sqlfrag.Select(s.T("users")).GroupBy(s.F("age")).HavingAgg(sqlfrag.CountAll(), sqlfrag.EXISTS, s.P("n"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.builder.Build(); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestMustRender_Panics(t *testing.T) {
	s := createTestInstance(t)
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected MustRender to panic for unsupported RETURNING")
		}
	}()
	sqlfrag.Insert(s.T("users")).Value(s.F("email"), s.P("email")).Returning(s.F("id")).MustRender(mysql.New())
}

func TestRender_UnsupportedFeature(t *testing.T) {
	s := createTestInstance(t)

	_, err := sqlfrag.Insert(s.T("users")).
		Value(s.F("email"), s.P("email")).
		OnConflict(s.F("email")).DoNothing().
		Render(mssql.New())

	if !sqlfrag.IsUnsupported(err) {
		t.Fatalf("expected UnsupportedFeatureError, got %v", err)
	}
	var ufErr sqlfrag.UnsupportedFeatureError
	if !errors.As(err, &ufErr) || ufErr.Dialect != "mssql" {
		t.Errorf("expected mssql UnsupportedFeatureError, got %+v", ufErr)
	}
}
