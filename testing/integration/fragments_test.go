package integration

import (
	"math"
	"testing"

	"github.com/zoobzio/sqlfrag"
)

// runFragments exercises the fragments every dialect renders, natively or
// emulated, against the seeded fixtures.
func runFragments(t *testing.T, tg *target) {
	t.Helper()
	setupFixtures(t, tg)
	s := createTestInstance(t)

	t.Run("filtered aggregates", func(t *testing.T) {
		q := sqlfrag.Select(s.T("orders")).
			Fields(s.F("user_id")).
			Expr(sqlfrag.Sum(s.F("total")).Filter(s.C(s.F("paid"), sqlfrag.EQ, s.P("paid"))).As("paid_total")).
			Expr(sqlfrag.CountAll().Filter(s.C(s.F("status"), sqlfrag.EQ, s.P("status"))).As("open_orders")).
			GroupBy(s.F("user_id")).
			OrderBy(s.F("user_id"), sqlfrag.ASC)

		out := tg.run(t, q, map[string]any{"paid": true, "status": "open"})
		if len(out.Rows) != 2 {
			t.Fatalf("rows = %d, want 2", len(out.Rows))
		}
		want := []struct{ paid, open float64 }{{14, 1}, {8, 2}}
		for i, w := range want {
			if got := num(t, out.Rows[i]["paid_total"]); got != w.paid {
				t.Errorf("row %d paid_total = %v, want %v", i, got, w.paid)
			}
			if got := num(t, out.Rows[i]["open_orders"]); got != w.open {
				t.Errorf("row %d open_orders = %v, want %v", i, got, w.open)
			}
		}
	})

	t.Run("string aggregation", func(t *testing.T) {
		q := sqlfrag.Select(s.T("orders")).
			Fields(s.F("user_id")).
			Expr(sqlfrag.StringAgg(s.F("status"), ",").OrderBy(s.F("id"), sqlfrag.ASC).As("statuses")).
			GroupBy(s.F("user_id")).
			OrderBy(s.F("user_id"), sqlfrag.ASC)

		out := tg.run(t, q, nil)
		want := []string{"shipped,open,shipped", "open,open"}
		if len(out.Rows) != len(want) {
			t.Fatalf("rows = %d, want %d", len(out.Rows), len(want))
		}
		for i, w := range want {
			if got := out.Rows[i]["statuses"]; got != w {
				t.Errorf("row %d statuses = %v, want %q", i, got, w)
			}
		}
	})

	t.Run("boolean aggregates", func(t *testing.T) {
		q := sqlfrag.Select(s.T("orders")).
			Fields(s.F("user_id")).
			Expr(sqlfrag.BoolAnd(s.C(s.F("total"), sqlfrag.GT, s.P("min"))).As("all_large")).
			Expr(sqlfrag.BoolOr(s.C(s.F("status"), sqlfrag.EQ, s.P("shipped"))).As("any_shipped")).
			GroupBy(s.F("user_id")).
			OrderBy(s.F("user_id"), sqlfrag.ASC)

		out := tg.run(t, q, map[string]any{"min": 3, "shipped": "shipped"})
		if len(out.Rows) != 2 {
			t.Fatalf("rows = %d, want 2", len(out.Rows))
		}
		if !truthy(t, out.Rows[0]["all_large"]) || truthy(t, out.Rows[1]["all_large"]) {
			t.Errorf("all_large = %v, %v; want true, false", out.Rows[0]["all_large"], out.Rows[1]["all_large"])
		}
		if !truthy(t, out.Rows[0]["any_shipped"]) || truthy(t, out.Rows[1]["any_shipped"]) {
			t.Errorf("any_shipped = %v, %v; want true, false", out.Rows[0]["any_shipped"], out.Rows[1]["any_shipped"])
		}
	})

	t.Run("statistics", func(t *testing.T) {
		q := sqlfrag.Select(s.T("orders")).
			Expr(sqlfrag.VarPop(s.F("total")).As("variance")).
			Expr(sqlfrag.Product(s.F("total")).As("product")).
			Where(s.C(s.F("user_id"), sqlfrag.EQ, s.P("user_id")))

		out := tg.run(t, q, map[string]any{"user_id": 1})
		if len(out.Rows) != 1 {
			t.Fatalf("rows = %d, want 1", len(out.Rows))
		}
		// totals 10, 6, 4
		if got := num(t, out.Rows[0]["variance"]); math.Abs(got-56.0/9.0) > 0.01 {
			t.Errorf("variance = %v, want %v", got, 56.0/9.0)
		}
		if got := num(t, out.Rows[0]["product"]); math.Abs(got-240) > 0.01 {
			t.Errorf("product = %v, want 240", got)
		}
	})

	t.Run("xml aggregation", func(t *testing.T) {
		q := sqlfrag.Select(s.T("users")).
			Expr(sqlfrag.XMLAgg(sqlfrag.XMLElement("user", s.F("username"))).OrderBy(s.F("id"), sqlfrag.ASC).As("doc"))

		out := tg.run(t, q, nil)
		want := "<user>alice</user><user>bob &amp; co</user><user>carol</user>"
		if got := out.Rows[0]["doc"]; got != want {
			t.Errorf("doc = %v, want %q", got, want)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		q := sqlfrag.Select(s.T("users")).
			Fields(s.F("username")).
			OrderBy(s.F("id"), sqlfrag.ASC).
			Limit(2).
			Offset(1)

		out := tg.run(t, q, nil)
		if len(out.Rows) != 2 || out.Rows[0]["username"] != "bob & co" || out.Rows[1]["username"] != "carol" {
			t.Errorf("rows = %v, want bob & co then carol", out.Rows)
		}

		q = sqlfrag.Select(s.T("users")).
			Fields(s.F("id")).
			OrderByConstant().
			Limit(1)

		out = tg.run(t, q, nil)
		if len(out.Rows) != 1 {
			t.Errorf("rows = %d, want 1", len(out.Rows))
		}
	})

	t.Run("statement comment", func(t *testing.T) {
		q := sqlfrag.Count(s.T("users")).Comment("nightly report")

		out := tg.run(t, q, nil)
		if len(out.Rows) != 1 || num(t, out.Rows[0][out.Columns[0]]) != 3 {
			t.Errorf("count rows = %v, want 3", out.Rows)
		}
	})

	t.Run("update and delete", func(t *testing.T) {
		out := tg.run(t, sqlfrag.Update(s.T("orders")).
			Set(s.F("status"), s.P("status")).
			Where(s.C(s.F("user_id"), sqlfrag.EQ, s.P("user_id"))),
			map[string]any{"status": "archived", "user_id": 2})
		if out.RowsAffected != 2 {
			t.Errorf("updated = %d, want 2", out.RowsAffected)
		}

		out = tg.run(t, sqlfrag.Delete(s.T("orders")).
			Where(s.C(s.F("status"), sqlfrag.EQ, s.P("status"))),
			map[string]any{"status": "archived"})
		if out.RowsAffected != 2 {
			t.Errorf("deleted = %d, want 2", out.RowsAffected)
		}
	})
}
