package types

// FieldExpression is a select-list item: a field, an aggregate, or one of the
// scalar expressions below. Exactly one variant is set; a bare Field is the
// fallback.
type FieldExpression struct {
	Field      Field
	Aggregate  *AggregateExpression
	Case       *CaseExpression
	Coalesce   *CoalesceExpression
	NullIf     *NullIfExpression
	Math       *MathExpression
	XMLAgg     *XMLAggExpression
	XMLElement *XMLElement
	Alias      string
}

// CaseExpression represents a SQL CASE expression.
type CaseExpression struct {
	ElseValue   *Param
	WhenClauses []WhenClause
}

// WhenClause represents a single WHEN...THEN clause.
type WhenClause struct {
	Condition ConditionItem
	Result    Param
}

// CoalesceExpression represents a COALESCE function call.
type CoalesceExpression struct {
	Values []Param
}

// NullIfExpression represents a NULLIF function call.
type NullIfExpression struct {
	Value1 Param
	Value2 Param
}

// MathFunc represents SQL math functions.
type MathFunc string

const (
	MathRound MathFunc = "ROUND"
	MathFloor MathFunc = "FLOOR"
	MathCeil  MathFunc = "CEIL"
	MathAbs   MathFunc = "ABS"
	MathPower MathFunc = "POWER"
	MathSqrt  MathFunc = "SQRT"
)

// MathExpression represents a math function call.
type MathExpression struct {
	Function  MathFunc
	Field     Field
	Precision *Param // ROUND
	Exponent  *Param // POWER
}

// XMLElement wraps a field value in an XML element.
type XMLElement struct {
	Name  string
	Field Field
}

// XMLAggExpression concatenates XML values across a group.
// Element, when set, wraps each value before aggregation.
type XMLAggExpression struct {
	Field   Field
	Element *XMLElement
	OrderBy []OrderBy
}
