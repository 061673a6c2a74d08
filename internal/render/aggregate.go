package render

import (
	"fmt"

	"github.com/zoobzio/sqlfrag/internal/types"
)

// Native names of the statistical aggregates on SQL Server.
var mssqlStatistical = map[types.AggregateFunc]string{
	types.AggStddevPop:  "STDEVP",
	types.AggStddevSamp: "STDEV",
	types.AggVarPop:     "VARP",
	types.AggVarSamp:    "VAR",
}

// renderAggregate renders an aggregate call, emulating it where the dialect
// lacks a native form.
func (e *Engine) renderAggregate(agg *types.AggregateExpression, ctx *renderContext) (string, error) {
	if err := agg.Validate(); err != nil {
		return "", err
	}

	// FILTER can only trail a single aggregate call. Emulations built from
	// several calls move the predicate into each argument instead.
	nativeFilter := agg.Filter != nil && e.caps.AggregateFilter && e.isSingleCall(agg.Func)

	var inline string
	if agg.Filter != nil && !nativeFilter {
		cond, err := e.conditionString(agg.Filter, ctx)
		if err != nil {
			return "", err
		}
		inline = cond
	}

	var (
		sql string
		err error
	)
	switch {
	case agg.Func.IsBoolean():
		sql, err = e.renderBooleanAggregate(agg, inline, ctx)
	case agg.Func.IsOrderedSet():
		sql, err = e.renderOrderedSetAggregate(agg, inline, ctx)
	case agg.Func.IsStatistical():
		sql = e.renderStatisticalAggregate(agg, inline)
	case agg.Func == types.AggStringAgg:
		sql, err = e.renderStringAgg(agg, inline)
	case agg.Func == types.AggArrayAgg:
		sql, err = e.renderArrayAgg(agg, inline)
	case agg.Func == types.AggProduct:
		sql = e.renderProduct(agg, inline)
	default:
		sql = e.renderSimpleAggregate(agg, inline)
	}
	if err != nil {
		return "", err
	}

	if nativeFilter {
		cond, err := e.conditionString(agg.Filter, ctx)
		if err != nil {
			return "", err
		}
		sql += " FILTER (WHERE " + cond + ")"
	}
	return sql, nil
}

// isSingleCall reports whether f renders as one aggregate call in this dialect.
func (e *Engine) isSingleCall(f types.AggregateFunc) bool {
	switch {
	case f == types.AggProduct:
		return false
	case f.IsBoolean():
		return e.caps.BooleanAggregates
	case f.IsStatistical():
		return e.dialect != SQLite
	}
	return true
}

// filtered wraps an aggregate argument so rows failing cond become NULL,
// which every aggregate ignores.
func filtered(arg, cond string) string {
	if cond == "" {
		return arg
	}
	return "CASE WHEN " + cond + " THEN " + arg + " END"
}

func distinct(arg string, on bool) string {
	if on {
		return "DISTINCT " + arg
	}
	return arg
}

// aggregateArg renders the field argument of agg with any inline filter applied.
func (e *Engine) aggregateArg(agg *types.AggregateExpression, inline string) string {
	if agg.Field.IsStar() {
		if inline != "" {
			return filtered("1", inline)
		}
		return "*"
	}
	return filtered(e.renderField(agg.Field), inline)
}

func (e *Engine) renderSimpleAggregate(agg *types.AggregateExpression, inline string) string {
	arg := e.aggregateArg(agg, inline)
	return fmt.Sprintf("%s(%s)", agg.Func, distinct(arg, agg.Distinct))
}

func (e *Engine) renderProduct(agg *types.AggregateExpression, inline string) string {
	ln := "LN"
	if e.dialect == MSSQL {
		// LOG is the natural logarithm on SQL Server.
		ln = "LOG"
	}
	field := e.renderField(agg.Field)
	// LN is one-to-one on positive input, so DISTINCT moves inside SUM.
	arg := fmt.Sprintf("%s(%s)", ln, filtered(field, inline))
	return fmt.Sprintf("EXP(SUM(%s))", distinct(arg, agg.Distinct))
}

func (e *Engine) renderBooleanAggregate(agg *types.AggregateExpression, inline string, ctx *renderContext) (string, error) {
	cond, err := e.conditionString(agg.Condition, ctx)
	if err != nil {
		return "", err
	}

	if e.caps.BooleanAggregates {
		fn := "BOOL_AND"
		if agg.Func == types.AggBoolOr {
			fn = "BOOL_OR"
		}
		return fmt.Sprintf("%s(%s)", fn, cond), nil
	}

	// all rows true <=> MIN(flag) = 1; any row true <=> MAX(flag) = 1
	fn := "MIN"
	if agg.Func == types.AggBoolOr {
		fn = "MAX"
	}
	flag := filtered("CASE WHEN "+cond+" THEN 1 ELSE 0 END", inline)
	call := fmt.Sprintf("%s(%s)", fn, flag)
	if e.dialect == MSSQL {
		return call, nil
	}
	return "(" + call + " = 1)", nil
}

func (e *Engine) renderOrderedSetAggregate(agg *types.AggregateExpression, inline string, ctx *renderContext) (string, error) {
	if !e.caps.OrderedSetAggregates {
		return "", e.unsupported(string(agg.Func), "compute it in the application or with a window function")
	}

	within := " WITHIN GROUP (ORDER BY " + filtered(e.renderField(agg.Field), inline) + ")"
	switch agg.Func {
	case types.AggMode:
		return "MODE()" + within, nil
	case types.AggMedian:
		return "PERCENTILE_CONT(0.5)" + within, nil
	default:
		return fmt.Sprintf("%s(%s)%s", agg.Func, ctx.addParam(*agg.Fraction), within), nil
	}
}

func (e *Engine) renderStatisticalAggregate(agg *types.AggregateExpression, inline string) string {
	arg := filtered(e.renderField(agg.Field), inline)

	switch {
	case e.dialect == MSSQL:
		return fmt.Sprintf("%s(%s)", mssqlStatistical[agg.Func], arg)
	case e.dialect != SQLite:
		return fmt.Sprintf("%s(%s)", agg.Func, arg)
	}

	var variance string
	switch agg.Func {
	case types.AggVarPop, types.AggStddevPop:
		variance = fmt.Sprintf("(AVG(%[1]s * %[1]s) - AVG(%[1]s) * AVG(%[1]s))", arg)
	default:
		variance = fmt.Sprintf("((SUM(%[1]s * %[1]s) - SUM(%[1]s) * SUM(%[1]s) / (1.0 * COUNT(%[1]s))) / (COUNT(%[1]s) - 1))", arg)
	}
	if agg.Func == types.AggStddevPop || agg.Func == types.AggStddevSamp {
		return "SQRT" + variance
	}
	return variance
}

func (e *Engine) renderStringAgg(agg *types.AggregateExpression, inline string) (string, error) {
	arg := distinct(filtered(e.renderField(agg.Field), inline), agg.Distinct)
	sep := e.QuoteString(agg.Separator)

	switch {
	case MySQLFamily.Contains(e.dialect):
		return fmt.Sprintf("GROUP_CONCAT(%s%s SEPARATOR %s)", arg, e.inlineOrderBy(agg.OrderBy), sep), nil
	case e.dialect == SQLite:
		if agg.Distinct {
			// SQLite's DISTINCT aggregates take exactly one argument.
			if agg.Separator != "," {
				return "", e.unsupported("STRING_AGG DISTINCT with a custom separator", `use the default "," separator`)
			}
			return fmt.Sprintf("GROUP_CONCAT(%s%s)", arg, e.inlineOrderBy(agg.OrderBy)), nil
		}
		return fmt.Sprintf("GROUP_CONCAT(%s, %s%s)", arg, sep, e.inlineOrderBy(agg.OrderBy)), nil
	case e.dialect == MSSQL:
		if agg.Distinct {
			return "", e.unsupported("STRING_AGG DISTINCT", "deduplicate in a derived table first")
		}
		sql := fmt.Sprintf("STRING_AGG(%s, %s)", arg, sep)
		if len(agg.OrderBy) > 0 {
			sql += " WITHIN GROUP (ORDER BY " + e.renderOrderItems(agg.OrderBy) + ")"
		}
		return sql, nil
	default:
		return fmt.Sprintf("STRING_AGG(%s, %s%s)", arg, sep, e.inlineOrderBy(agg.OrderBy)), nil
	}
}

func (e *Engine) renderArrayAgg(agg *types.AggregateExpression, inline string) (string, error) {
	arg := distinct(filtered(e.renderField(agg.Field), inline), agg.Distinct)

	switch e.dialect {
	case Postgres:
		return fmt.Sprintf("ARRAY_AGG(%s%s)", arg, e.inlineOrderBy(agg.OrderBy)), nil
	case MariaDB:
		return fmt.Sprintf("JSON_ARRAYAGG(%s%s)", arg, e.inlineOrderBy(agg.OrderBy)), nil
	case MySQL:
		if agg.Distinct {
			return "", e.unsupported("ARRAY_AGG DISTINCT", "deduplicate in a derived table first")
		}
		if len(agg.OrderBy) > 0 {
			return "", e.unsupported("ARRAY_AGG ORDER BY", "JSON_ARRAYAGG has no in-aggregate ordering")
		}
		return fmt.Sprintf("JSON_ARRAYAGG(%s)", arg), nil
	case SQLite:
		return fmt.Sprintf("JSON_GROUP_ARRAY(%s%s)", arg, e.inlineOrderBy(agg.OrderBy)), nil
	default:
		return "", e.unsupported("ARRAY_AGG", "use STRING_AGG or FOR JSON")
	}
}

// inlineOrderBy renders an in-aggregate ORDER BY with a leading space, or
// nothing when there is no ordering.
func (e *Engine) inlineOrderBy(ordering []types.OrderBy) string {
	if len(ordering) == 0 {
		return ""
	}
	return " ORDER BY " + e.renderOrderItems(ordering)
}
