package render

import (
	"fmt"
	"strings"

	"github.com/zoobzio/sqlfrag/internal/types"
)

func (e *Engine) renderFieldExpression(expr *types.FieldExpression, ctx *renderContext) (string, error) {
	var (
		result string
		err    error
	)

	switch {
	case expr.Aggregate != nil:
		result, err = e.renderAggregate(expr.Aggregate, ctx)
	case expr.XMLAgg != nil:
		result, err = e.renderXMLAgg(expr.XMLAgg)
	case expr.XMLElement != nil:
		result, err = e.renderXMLElement(expr.XMLElement)
	case expr.Case != nil:
		result, err = e.renderCaseExpression(expr.Case, ctx)
	case expr.Coalesce != nil:
		result, err = e.renderCoalesceExpression(expr.Coalesce, ctx)
	case expr.NullIf != nil:
		result = fmt.Sprintf("NULLIF(%s, %s)", ctx.addParam(expr.NullIf.Value1), ctx.addParam(expr.NullIf.Value2))
	case expr.Math != nil:
		result, err = e.renderMathExpression(expr.Math, ctx)
	default:
		result = e.renderField(expr.Field)
	}
	if err != nil {
		return "", err
	}

	if expr.Alias != "" {
		result += " AS " + e.QuoteIdentifier(expr.Alias)
	}
	return result, nil
}

func (e *Engine) renderCaseExpression(expr *types.CaseExpression, ctx *renderContext) (string, error) {
	if len(expr.WhenClauses) == 0 {
		return "", fmt.Errorf("CASE requires at least one WHEN clause")
	}

	var sql strings.Builder
	sql.WriteString("CASE")
	for _, when := range expr.WhenClauses {
		sql.WriteString(" WHEN ")
		if err := e.renderCondition(when.Condition, &sql, ctx); err != nil {
			return "", err
		}
		sql.WriteString(" THEN ")
		sql.WriteString(ctx.addParam(when.Result))
	}
	if expr.ElseValue != nil {
		sql.WriteString(" ELSE ")
		sql.WriteString(ctx.addParam(*expr.ElseValue))
	}
	sql.WriteString(" END")
	return sql.String(), nil
}

func (e *Engine) renderCoalesceExpression(expr *types.CoalesceExpression, ctx *renderContext) (string, error) {
	if len(expr.Values) < 2 {
		return "", fmt.Errorf("COALESCE requires at least 2 values")
	}
	params := make([]string, 0, len(expr.Values))
	for _, value := range expr.Values {
		params = append(params, ctx.addParam(value))
	}
	return "COALESCE(" + strings.Join(params, ", ") + ")", nil
}

func (e *Engine) renderMathExpression(expr *types.MathExpression, ctx *renderContext) (string, error) {
	field := e.renderField(expr.Field)

	switch expr.Function {
	case types.MathRound:
		switch {
		case expr.Precision != nil:
			return fmt.Sprintf("ROUND(%s, %s)", field, ctx.addParam(*expr.Precision)), nil
		case e.dialect == MSSQL:
			// SQL Server requires the length argument.
			return fmt.Sprintf("ROUND(%s, 0)", field), nil
		default:
			return fmt.Sprintf("ROUND(%s)", field), nil
		}
	case types.MathCeil:
		if e.dialect == MSSQL {
			return fmt.Sprintf("CEILING(%s)", field), nil
		}
		return fmt.Sprintf("CEIL(%s)", field), nil
	case types.MathFloor, types.MathAbs, types.MathSqrt:
		return fmt.Sprintf("%s(%s)", expr.Function, field), nil
	case types.MathPower:
		if expr.Exponent == nil {
			return "", fmt.Errorf("POWER requires an exponent parameter")
		}
		return fmt.Sprintf("POWER(%s, %s)", field, ctx.addParam(*expr.Exponent)), nil
	default:
		return "", fmt.Errorf("unsupported math function: %s", expr.Function)
	}
}
