package sqlfrag

import (
	"fmt"

	"github.com/zoobzio/sqlfrag/internal/types"
)

// AggregateBuilder builds an aggregate function call.
type AggregateBuilder struct {
	expr  types.AggregateExpression
	alias string
	err   error
}

func aggregate(fn types.AggregateFunc, field types.Field) *AggregateBuilder {
	return &AggregateBuilder{expr: types.AggregateExpression{Func: fn, Field: field}}
}

func distinctAggregate(fn types.AggregateFunc, field types.Field) *AggregateBuilder {
	ab := aggregate(fn, field)
	ab.expr.Distinct = true
	return ab
}

// Sum creates a SUM aggregate.
func Sum(field types.Field) *AggregateBuilder { return aggregate(types.AggSum, field) }

// SumDistinct creates a SUM(DISTINCT ...) aggregate.
func SumDistinct(field types.Field) *AggregateBuilder {
	return distinctAggregate(types.AggSum, field)
}

// Avg creates an AVG aggregate.
func Avg(field types.Field) *AggregateBuilder { return aggregate(types.AggAvg, field) }

// AvgDistinct creates an AVG(DISTINCT ...) aggregate.
func AvgDistinct(field types.Field) *AggregateBuilder {
	return distinctAggregate(types.AggAvg, field)
}

// Min creates a MIN aggregate.
func Min(field types.Field) *AggregateBuilder { return aggregate(types.AggMin, field) }

// Max creates a MAX aggregate.
func Max(field types.Field) *AggregateBuilder { return aggregate(types.AggMax, field) }

// CountAll creates a COUNT(*) aggregate.
func CountAll() *AggregateBuilder { return aggregate(types.AggCount, types.Field{}) }

// CountField creates a COUNT aggregate for a specific field.
func CountField(field types.Field) *AggregateBuilder { return aggregate(types.AggCount, field) }

// CountDistinct creates a COUNT(DISTINCT ...) aggregate.
func CountDistinct(field types.Field) *AggregateBuilder {
	return distinctAggregate(types.AggCount, field)
}

// Product multiplies the values of a group. No dialect has a native
// PRODUCT, so it renders as EXP(SUM(LN(x))) and only suits positive values.
func Product(field types.Field) *AggregateBuilder { return aggregate(types.AggProduct, field) }

// Mode returns the most frequent value (postgres only).
func Mode(field types.Field) *AggregateBuilder { return aggregate(types.AggMode, field) }

// Median returns the interpolated median (postgres only).
func Median(field types.Field) *AggregateBuilder { return aggregate(types.AggMedian, field) }

// PercentileCont returns the interpolated value at fraction (postgres only).
func PercentileCont(fraction types.Param, field types.Field) *AggregateBuilder {
	ab := aggregate(types.AggPercentileCont, field)
	ab.expr.Fraction = &fraction
	return ab
}

// PercentileDisc returns the first value at or above fraction (postgres only).
func PercentileDisc(fraction types.Param, field types.Field) *AggregateBuilder {
	ab := aggregate(types.AggPercentileDisc, field)
	ab.expr.Fraction = &fraction
	return ab
}

// StddevPop creates a population standard deviation.
func StddevPop(field types.Field) *AggregateBuilder { return aggregate(types.AggStddevPop, field) }

// StddevSamp creates a sample standard deviation.
func StddevSamp(field types.Field) *AggregateBuilder { return aggregate(types.AggStddevSamp, field) }

// VarPop creates a population variance.
func VarPop(field types.Field) *AggregateBuilder { return aggregate(types.AggVarPop, field) }

// VarSamp creates a sample variance.
func VarSamp(field types.Field) *AggregateBuilder { return aggregate(types.AggVarSamp, field) }

func booleanAggregate(fn types.AggregateFunc, cond types.ConditionItem) *AggregateBuilder {
	return &AggregateBuilder{expr: types.AggregateExpression{Func: fn, Condition: cond}}
}

// BoolAnd is true when cond holds for every row of the group.
func BoolAnd(cond types.ConditionItem) *AggregateBuilder {
	return booleanAggregate(types.AggBoolAnd, cond)
}

// BoolOr is true when cond holds for any row of the group.
func BoolOr(cond types.ConditionItem) *AggregateBuilder {
	return booleanAggregate(types.AggBoolOr, cond)
}

// Every is the SQL standard spelling of BoolAnd.
func Every(cond types.ConditionItem) *AggregateBuilder {
	return booleanAggregate(types.AggEvery, cond)
}

// StringAgg concatenates values with separator.
func StringAgg(field types.Field, separator string) *AggregateBuilder {
	ab := aggregate(types.AggStringAgg, field)
	ab.expr.Separator = separator
	return ab
}

// ArrayAgg collects values into an array (a JSON array outside postgres).
func ArrayAgg(field types.Field) *AggregateBuilder { return aggregate(types.AggArrayAgg, field) }

// Distinct aggregates distinct values only.
func (ab *AggregateBuilder) Distinct() *AggregateBuilder {
	ab.expr.Distinct = true
	return ab
}

// Filter restricts the rows fed to the aggregate. Dialects without
// FILTER (WHERE ...) move the condition into the argument.
func (ab *AggregateBuilder) Filter(cond types.ConditionItem) *AggregateBuilder {
	if ab.err != nil {
		return ab
	}
	if cond == nil {
		ab.err = fmt.Errorf("%s: FILTER requires a condition", ab.expr.Func)
		return ab
	}
	if ab.expr.Filter != nil {
		ab.expr.Filter = and(ab.expr.Filter, cond)
		return ab
	}
	ab.expr.Filter = cond
	return ab
}

// OrderBy orders the values inside STRING_AGG and ARRAY_AGG.
func (ab *AggregateBuilder) OrderBy(field types.Field, direction types.Direction) *AggregateBuilder {
	if ab.err != nil {
		return ab
	}
	if direction != types.ASC && direction != types.DESC {
		ab.err = fmt.Errorf("invalid sort direction: %q", direction)
		return ab
	}
	ab.expr.OrderBy = append(ab.expr.OrderBy, types.OrderBy{Field: field, Direction: direction})
	return ab
}

// As sets the column alias.
func (ab *AggregateBuilder) As(alias string) *AggregateBuilder {
	if ab.err != nil {
		return ab
	}
	if !isValidSQLIdentifier(alias) {
		ab.err = fmt.Errorf("invalid alias '%s': must be alphanumeric/underscore, start with letter/underscore, and contain no SQL keywords", alias)
		return ab
	}
	ab.alias = alias
	return ab
}

// Build returns the aggregate as a select-list item.
func (ab *AggregateBuilder) Build() (types.FieldExpression, error) {
	if ab.err != nil {
		return types.FieldExpression{}, ab.err
	}
	expr := ab.expr
	if err := expr.Validate(); err != nil {
		return types.FieldExpression{}, err
	}
	return types.FieldExpression{Aggregate: &expr, Alias: ab.alias}, nil
}

// MustBuild returns the aggregate or panics on error.
func (ab *AggregateBuilder) MustBuild() types.FieldExpression {
	fe, err := ab.Build()
	if err != nil {
		panic(err)
	}
	return fe
}

// CF creates a field comparison condition.
func CF(left types.Field, op types.Operator, right types.Field) types.FieldComparison {
	return types.FieldComparison{
		LeftField:  left,
		Operator:   op,
		RightField: right,
	}
}

// CSub creates a subquery condition with a field.
func CSub(field types.Field, op types.Operator, subquery types.Subquery) types.SubqueryCondition {
	switch op {
	case types.IN, types.NotIn:
	default:
		panic(fmt.Errorf("operator %s cannot be used with CSub - use CSubExists for EXISTS/NOT EXISTS", op))
	}

	return types.SubqueryCondition{
		Field:    &field,
		Operator: op,
		Subquery: subquery,
	}
}

// CSubExists creates an EXISTS/NOT EXISTS subquery condition.
func CSubExists(op types.Operator, subquery types.Subquery) types.SubqueryCondition {
	switch op {
	case types.EXISTS, types.NotExists:
	default:
		panic(fmt.Errorf("CSubExists only accepts EXISTS or NOT EXISTS, got %s", op))
	}

	return types.SubqueryCondition{
		Operator: op,
		Subquery: subquery,
	}
}

// Sub creates a subquery from a builder.
func Sub(builder *Builder) types.Subquery {
	ast, err := builder.Build()
	if err != nil {
		panic(fmt.Errorf("failed to build subquery: %w", err))
	}
	return types.Subquery{AST: ast}
}

// Case creates a new CASE expression builder.
func Case() *CaseBuilder {
	return &CaseBuilder{
		expr: &types.CaseExpression{},
	}
}

// CaseBuilder provides fluent API for building CASE expressions.
type CaseBuilder struct {
	expr  *types.CaseExpression
	alias string
	err   error
}

// When adds a WHEN...THEN clause.
func (cb *CaseBuilder) When(condition types.ConditionItem, result types.Param) *CaseBuilder {
	cb.expr.WhenClauses = append(cb.expr.WhenClauses, types.WhenClause{
		Condition: condition,
		Result:    result,
	})
	return cb
}

// Else sets the ELSE clause.
func (cb *CaseBuilder) Else(result types.Param) *CaseBuilder {
	cb.expr.ElseValue = &result
	return cb
}

// As adds an alias to the CASE expression.
func (cb *CaseBuilder) As(alias string) *CaseBuilder {
	if !isValidSQLIdentifier(alias) {
		cb.err = fmt.Errorf("invalid alias '%s': must be alphanumeric/underscore, start with letter/underscore, and contain no SQL keywords", alias)
		return cb
	}
	cb.alias = alias
	return cb
}

// Build returns the CaseExpression wrapped in a FieldExpression.
func (cb *CaseBuilder) Build() (types.FieldExpression, error) {
	if cb.err != nil {
		return types.FieldExpression{}, cb.err
	}
	if len(cb.expr.WhenClauses) == 0 {
		return types.FieldExpression{}, fmt.Errorf("CASE requires at least one WHEN clause")
	}
	return types.FieldExpression{
		Case:  cb.expr,
		Alias: cb.alias,
	}, nil
}

// Coalesce creates a COALESCE expression that returns the first non-null value.
func Coalesce(values ...types.Param) types.FieldExpression {
	if len(values) < 2 {
		panic("COALESCE requires at least 2 values")
	}
	return types.FieldExpression{
		Coalesce: &types.CoalesceExpression{Values: values},
	}
}

// NullIf creates a NULLIF expression that returns NULL if two values are equal.
func NullIf(value1, value2 types.Param) types.FieldExpression {
	return types.FieldExpression{
		NullIf: &types.NullIfExpression{
			Value1: value1,
			Value2: value2,
		},
	}
}

func math(fn types.MathFunc, field types.Field) types.FieldExpression {
	return types.FieldExpression{
		Math: &types.MathExpression{
			Function: fn,
			Field:    field,
		},
	}
}

// Round creates a ROUND math expression.
func Round(field types.Field, precision ...types.Param) types.FieldExpression {
	fe := math(types.MathRound, field)
	if len(precision) > 0 {
		fe.Math.Precision = &precision[0]
	}
	return fe
}

// Floor creates a FLOOR math expression.
func Floor(field types.Field) types.FieldExpression { return math(types.MathFloor, field) }

// Ceil creates a CEIL math expression.
func Ceil(field types.Field) types.FieldExpression { return math(types.MathCeil, field) }

// Abs creates an ABS math expression.
func Abs(field types.Field) types.FieldExpression { return math(types.MathAbs, field) }

// Sqrt creates a SQRT math expression.
func Sqrt(field types.Field) types.FieldExpression { return math(types.MathSqrt, field) }

// Power creates a POWER math expression.
func Power(field types.Field, exponent types.Param) types.FieldExpression {
	fe := math(types.MathPower, field)
	fe.Math.Exponent = &exponent
	return fe
}

// As adds an alias to a field expression.
func As(expr types.FieldExpression, alias string) types.FieldExpression {
	if !isValidSQLIdentifier(alias) {
		panic(fmt.Errorf("invalid alias '%s': must be alphanumeric/underscore, start with letter/underscore, and contain no SQL keywords", alias))
	}
	expr.Alias = alias
	return expr
}
