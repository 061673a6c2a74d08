package render

import (
	"fmt"
	"strings"

	"github.com/zoobzio/sqlfrag/internal/types"
)

func (e *Engine) renderCondition(cond types.ConditionItem, sql *strings.Builder, ctx *renderContext) error {
	switch c := cond.(type) {
	case types.Condition:
		sql.WriteString(e.renderSimpleCondition(c, ctx))
	case types.ConditionGroup:
		if len(c.Conditions) == 0 {
			return fmt.Errorf("empty condition group")
		}
		sql.WriteString("(")
		for i, subCond := range c.Conditions {
			if i > 0 {
				fmt.Fprintf(sql, " %s ", c.Logic)
			}
			if err := e.renderCondition(subCond, sql, ctx); err != nil {
				return err
			}
		}
		sql.WriteString(")")
	case types.FieldComparison:
		fmt.Fprintf(sql, "%s %s %s",
			e.renderField(c.LeftField),
			e.renderOperator(c.Operator),
			e.renderField(c.RightField))
	case types.SubqueryCondition:
		return e.renderSubqueryCondition(c, sql, ctx)
	case types.AggregateCondition:
		agg, err := e.renderAggregate(&c.Aggregate, ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(sql, "%s %s %s", agg, e.renderOperator(c.Operator), ctx.addParam(c.Value))
	case nil:
		return fmt.Errorf("missing condition")
	default:
		return fmt.Errorf("unknown condition type: %T", c)
	}
	return nil
}

// conditionString renders a condition into a standalone string.
func (e *Engine) conditionString(cond types.ConditionItem, ctx *renderContext) (string, error) {
	var sql strings.Builder
	if err := e.renderCondition(cond, &sql, ctx); err != nil {
		return "", err
	}
	return sql.String(), nil
}

func (e *Engine) renderSimpleCondition(cond types.Condition, ctx *renderContext) string {
	field := e.renderField(cond.Field)

	switch cond.Operator {
	case types.IsNull:
		return fmt.Sprintf("%s IS NULL", field)
	case types.IsNotNull:
		return fmt.Sprintf("%s IS NOT NULL", field)
	case types.IN:
		if e.caps.InArray {
			// field = ANY(:param) binds a single array parameter
			return fmt.Sprintf("%s = ANY(%s)", field, ctx.addParam(cond.Value))
		}
		return fmt.Sprintf("%s IN (%s)", field, ctx.addParam(cond.Value))
	case types.NotIn:
		if e.caps.InArray {
			return fmt.Sprintf("%s != ALL(%s)", field, ctx.addParam(cond.Value))
		}
		return fmt.Sprintf("%s NOT IN (%s)", field, ctx.addParam(cond.Value))
	default:
		return fmt.Sprintf("%s %s %s", field, e.renderOperator(cond.Operator), ctx.addParam(cond.Value))
	}
}

func (e *Engine) renderSubqueryCondition(cond types.SubqueryCondition, sql *strings.Builder, ctx *renderContext) error {
	switch cond.Operator {
	case types.EXISTS, types.NotExists:
		sql.WriteString(string(cond.Operator))
		sql.WriteString(" ")
	case types.IN, types.NotIn:
		if cond.Field == nil {
			return fmt.Errorf("operator %s requires a field", cond.Operator)
		}
		sql.WriteString(e.renderField(*cond.Field))
		sql.WriteString(" ")
		sql.WriteString(string(cond.Operator))
		sql.WriteString(" ")
	default:
		return fmt.Errorf("operator %s cannot be used with a subquery", cond.Operator)
	}

	if cond.Subquery.AST == nil {
		return fmt.Errorf("subquery is empty")
	}
	subCtx, err := ctx.withSubquery()
	if err != nil {
		return err
	}

	sql.WriteString("(")
	if err := e.renderSelect(cond.Subquery.AST, sql, subCtx); err != nil {
		return err
	}
	sql.WriteString(")")
	return nil
}
