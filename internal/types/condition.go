package types

// Operator represents query comparison operators.
type Operator string

const (
	EQ Operator = "="
	NE Operator = "!="
	GT Operator = ">"
	GE Operator = ">="
	LT Operator = "<"
	LE Operator = "<="

	IN        Operator = "IN"
	NotIn     Operator = "NOT IN"
	LIKE      Operator = "LIKE"
	NotLike   Operator = "NOT LIKE"
	IsNull    Operator = "IS NULL"
	IsNotNull Operator = "IS NOT NULL"
	EXISTS    Operator = "EXISTS"
	NotExists Operator = "NOT EXISTS"
)

// IsComparison reports whether op compares two scalar values.
func (op Operator) IsComparison() bool {
	switch op {
	case EQ, NE, GT, GE, LT, LE:
		return true
	}
	return false
}

// ConditionItem represents either a single condition or a group of conditions.
type ConditionItem interface {
	IsConditionItem()
}

// Condition compares a field with a parameter.
type Condition struct {
	Field    Field
	Operator Operator
	Value    Param
}

// LogicOperator represents how conditions are combined.
type LogicOperator string

const (
	AND LogicOperator = "AND"
	OR  LogicOperator = "OR"
)

// ConditionGroup represents grouped conditions with AND/OR logic.
type ConditionGroup struct {
	Logic      LogicOperator
	Conditions []ConditionItem
}

// FieldComparison represents a comparison between two fields.
type FieldComparison struct {
	LeftField  Field
	Operator   Operator
	RightField Field
}

// SubqueryCondition represents a condition that uses a subquery.
// Field is nil for EXISTS / NOT EXISTS.
type SubqueryCondition struct {
	Subquery Subquery
	Field    *Field
	Operator Operator
}

// Subquery represents a nested SELECT.
type Subquery struct {
	AST *AST
}

// AggregateCondition compares an aggregate with a parameter, for HAVING.
type AggregateCondition struct {
	Aggregate AggregateExpression
	Operator  Operator
	Value     Param
}

// MaxSubqueryDepth bounds subquery nesting.
const MaxSubqueryDepth = 3

func (Condition) IsConditionItem()          {}
func (ConditionGroup) IsConditionItem()     {}
func (FieldComparison) IsConditionItem()    {}
func (SubqueryCondition) IsConditionItem()  {}
func (AggregateCondition) IsConditionItem() {}
