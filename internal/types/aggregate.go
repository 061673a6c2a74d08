package types

import "fmt"

// AggregateFunc names an aggregate function.
type AggregateFunc string

const (
	AggCount   AggregateFunc = "COUNT"
	AggSum     AggregateFunc = "SUM"
	AggAvg     AggregateFunc = "AVG"
	AggMin     AggregateFunc = "MIN"
	AggMax     AggregateFunc = "MAX"
	AggProduct AggregateFunc = "PRODUCT"

	// Ordered-set aggregates.
	AggMode           AggregateFunc = "MODE"
	AggMedian         AggregateFunc = "MEDIAN"
	AggPercentileCont AggregateFunc = "PERCENTILE_CONT"
	AggPercentileDisc AggregateFunc = "PERCENTILE_DISC"

	// Statistical aggregates.
	AggStddevPop  AggregateFunc = "STDDEV_POP"
	AggStddevSamp AggregateFunc = "STDDEV_SAMP"
	AggVarPop     AggregateFunc = "VAR_POP"
	AggVarSamp    AggregateFunc = "VAR_SAMP"

	// Boolean aggregates take a condition instead of a field.
	AggBoolAnd AggregateFunc = "BOOL_AND"
	AggBoolOr  AggregateFunc = "BOOL_OR"
	AggEvery   AggregateFunc = "EVERY"

	// Collection aggregates.
	AggStringAgg AggregateFunc = "STRING_AGG"
	AggArrayAgg  AggregateFunc = "ARRAY_AGG"
)

// AggregateExpression is an aggregate function call.
//
//nolint:govet // fieldalignment: Logical grouping is preferred over memory optimization
type AggregateExpression struct {
	Func      AggregateFunc
	Field     Field         // Argument; empty for COUNT(*)
	Condition ConditionItem // Argument of BOOL_AND / BOOL_OR / EVERY
	Distinct  bool
	Filter    ConditionItem // FILTER (WHERE ...)
	OrderBy   []OrderBy     // In-aggregate ordering (STRING_AGG, ARRAY_AGG)
	Separator string        // STRING_AGG separator literal
	Fraction  *Param        // PERCENTILE_CONT / PERCENTILE_DISC argument
}

// IsOrderedSet reports whether f uses the WITHIN GROUP (ORDER BY ...) form.
func (f AggregateFunc) IsOrderedSet() bool {
	switch f {
	case AggMode, AggMedian, AggPercentileCont, AggPercentileDisc:
		return true
	}
	return false
}

// IsBoolean reports whether f aggregates a condition.
func (f AggregateFunc) IsBoolean() bool {
	return f == AggBoolAnd || f == AggBoolOr || f == AggEvery
}

// IsStatistical reports whether f is a variance or standard deviation.
func (f AggregateFunc) IsStatistical() bool {
	switch f {
	case AggStddevPop, AggStddevSamp, AggVarPop, AggVarSamp:
		return true
	}
	return false
}

// Validate checks the argument shape of the aggregate.
func (a *AggregateExpression) Validate() error {
	switch {
	case a.Func == "":
		return fmt.Errorf("aggregate function is required")
	case a.Func.IsBoolean():
		if a.Condition == nil {
			return fmt.Errorf("%s requires a condition", a.Func)
		}
		if a.Distinct {
			return fmt.Errorf("%s cannot be DISTINCT", a.Func)
		}
	case a.Func == AggCount:
		if a.Field.IsStar() && a.Distinct {
			return fmt.Errorf("COUNT(DISTINCT *) is not valid")
		}
	default:
		if a.Field.IsStar() {
			return fmt.Errorf("%s requires a field", a.Func)
		}
	}

	if a.Func.IsStatistical() && a.Distinct {
		return fmt.Errorf("%s cannot be DISTINCT", a.Func)
	}
	if a.Func.IsOrderedSet() {
		if a.Distinct {
			return fmt.Errorf("%s cannot be DISTINCT", a.Func)
		}
		if len(a.OrderBy) > 0 {
			return fmt.Errorf("%s orders by its argument; ORDER BY is not allowed", a.Func)
		}
	}
	if (a.Func == AggPercentileCont || a.Func == AggPercentileDisc) && a.Fraction == nil {
		return fmt.Errorf("%s requires a fraction parameter", a.Func)
	}
	if len(a.OrderBy) > 0 && a.Func != AggStringAgg && a.Func != AggArrayAgg {
		return fmt.Errorf("%s does not accept ORDER BY", a.Func)
	}
	return nil
}
