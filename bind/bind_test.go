package bind

import (
	"errors"
	"reflect"
	"testing"
)

func TestRebind(t *testing.T) {
	tests := []struct {
		name    string
		dialect string
		query   string
		want    string
		names   []string
	}{
		{
			name:    "postgres numbers reuse",
			dialect: "postgres",
			query:   `SELECT "id" FROM "users" WHERE "a" = :a OR "b" = :b OR "c" = :a`,
			want:    `SELECT "id" FROM "users" WHERE "a" = $1 OR "b" = $2 OR "c" = $1`,
			names:   []string{"a", "b"},
		},
		{
			name:    "mysql question marks repeat",
			dialect: "mysql",
			query:   "SELECT `id` FROM `users` WHERE `a` = :a OR `c` = :a",
			want:    "SELECT `id` FROM `users` WHERE `a` = ? OR `c` = ?",
			names:   []string{"a", "a"},
		},
		{
			name:    "sqlite",
			dialect: "sqlite3",
			query:   `INSERT INTO "users" ("email") VALUES (:email1), (:email2)`,
			want:    `INSERT INTO "users" ("email") VALUES (?), (?)`,
			names:   []string{"email1", "email2"},
		},
		{
			name:    "mssql named positions",
			dialect: "mssql",
			query:   "UPDATE [users] SET [email] = :email WHERE [id] = :id",
			want:    "UPDATE [users] SET [email] = @p1 WHERE [id] = @p2",
			names:   []string{"email", "id"},
		},
		{
			name:    "casts and literals",
			dialect: "postgres",
			query:   `SELECT '12:30'::time, ":not" FROM "t" WHERE "x" = :x::int`,
			want:    `SELECT '12:30'::time, ":not" FROM "t" WHERE "x" = $1::int`,
			names:   []string{"x"},
		},
		{
			name:    "comments untouched",
			dialect: "postgres",
			query:   "/* :skip */ SELECT 1 -- :also\nWHERE \"x\" = :x",
			want:    "/* :skip */ SELECT 1 -- :also\nWHERE \"x\" = $1",
			names:   []string{"x"},
		},
		{
			name:    "doubled quote escape",
			dialect: "mssql",
			query:   "SELECT N'it''s :x', [a]]b] FROM [t] WHERE [y] = :y",
			want:    "SELECT N'it''s :x', [a]]b] FROM [t] WHERE [y] = @p1",
			names:   []string{"y"},
		},
		{
			name:    "mysql backslash escape",
			dialect: "mariadb",
			query:   `SELECT 'a\' :x' FROM ` + "`t`" + ` WHERE ` + "`y`" + ` = :y`,
			want:    `SELECT 'a\' :x' FROM ` + "`t`" + ` WHERE ` + "`y`" + ` = ?`,
			names:   []string{"y"},
		},
		{
			name:    "subquery prefix",
			dialect: "postgres",
			query:   `SELECT 1 WHERE "a" IN (SELECT "b" FROM "c" WHERE "d" = :sq1_d)`,
			want:    `SELECT 1 WHERE "a" IN (SELECT "b" FROM "c" WHERE "d" = $1)`,
			names:   []string{"sq1_d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, names, err := Rebind(tt.dialect, tt.query)
			if err != nil {
				t.Fatalf("Rebind() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("SQL = %q, want %q", got, tt.want)
			}
			if !reflect.DeepEqual(names, tt.names) {
				t.Errorf("names = %v, want %v", names, tt.names)
			}
		})
	}
}

func TestRebind_Errors(t *testing.T) {
	tests := []struct {
		dialect string
		query   string
	}{
		{"oracle", "SELECT 1"},
		{"postgres", "SELECT 'open"},
		{"postgres", `SELECT "open`},
		{"mssql", "SELECT [open"},
		{"postgres", "SELECT /* open"},
	}
	for _, tt := range tests {
		if _, _, err := Rebind(tt.dialect, tt.query); err == nil {
			t.Errorf("Rebind(%q, %q) expected error", tt.dialect, tt.query)
		}
	}
}

func TestArgs(t *testing.T) {
	args, err := Args([]string{"b", "a", "b"}, map[string]any{"a": 1, "b": "two", "unused": true})
	if err != nil {
		t.Fatalf("Args() error = %v", err)
	}
	want := []any{"two", 1, "two"}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("args = %v, want %v", args, want)
	}

	_, err = Args([]string{"missing"}, nil)
	if !errors.Is(err, ErrMissingParam) {
		t.Errorf("error = %v, want ErrMissingParam", err)
	}
}
