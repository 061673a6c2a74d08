package types

import "fmt"

// Operation represents the type of statement.
type Operation string

const (
	OpSelect     Operation = "SELECT"
	OpInsert     Operation = "INSERT"
	OpUpdate     Operation = "UPDATE"
	OpDelete     Operation = "DELETE"
	OpCount      Operation = "COUNT"
	OpCommentOn  Operation = "COMMENT ON"
	OpCreateUser Operation = "CREATE USER"
	OpDropUser   Operation = "DROP USER"
	OpGrant      Operation = "GRANT"
	OpRevoke     Operation = "REVOKE"
)

// IsUserStatement reports whether op manages a database principal.
func (op Operation) IsUserStatement() bool {
	switch op {
	case OpCreateUser, OpDropUser, OpGrant, OpRevoke:
		return true
	}
	return false
}

// Direction represents sort direction.
type Direction string

const (
	ASC  Direction = "ASC"
	DESC Direction = "DESC"
)

// NullsOrdering places NULLs first or last.
type NullsOrdering string

const (
	NullsFirst NullsOrdering = "NULLS FIRST"
	NullsLast  NullsOrdering = "NULLS LAST"
)

// OrderBy represents an ORDER BY item.
// A Constant item sorts by a constant and ignores Field, Direction and Nulls.
type OrderBy struct {
	Field     Field
	Direction Direction
	Nulls     NullsOrdering
	Constant  bool
}

// JoinType represents the type of SQL join.
type JoinType string

const (
	InnerJoin JoinType = "INNER JOIN"
	LeftJoin  JoinType = "LEFT JOIN"
	RightJoin JoinType = "RIGHT JOIN"
	CrossJoin JoinType = "CROSS JOIN"
)

// Join represents a SQL JOIN clause.
type Join struct {
	On    ConditionItem
	Table Table
	Type  JoinType
}

// ConflictAction represents what to do on conflict.
type ConflictAction string

const (
	DoNothing ConflictAction = "DO NOTHING"
	DoUpdate  ConflictAction = "DO UPDATE"
)

// ConflictClause represents an upsert clause.
type ConflictClause struct {
	Updates map[Field]Param
	Action  ConflictAction
	Columns []Field
}

// AST represents the abstract syntax tree of a single statement.
// This is exported from the internal package so dialect renderers can use it,
// but external users cannot import this package.
//
//nolint:govet // fieldalignment: Logical grouping is preferred over memory optimization
type AST struct {
	Operation        Operation
	Target           Table
	Comment          *Comment
	Fields           []Field
	FieldExpressions []FieldExpression
	Distinct         bool
	Joins            []Join
	WhereClause      ConditionItem
	GroupBy          []Field
	Having           []ConditionItem
	Ordering         []OrderBy
	Limit            *int
	Offset           *int
	Updates          map[Field]Param   // UPDATE
	Values           []map[Field]Param // INSERT
	OnConflict       *ConflictClause   // INSERT upsert
	Returning        []Field           // INSERT/UPDATE/DELETE
	CommentOn        *CommentOn        // COMMENT ON
	User             *UserStatement    // CREATE/DROP USER, GRANT, REVOKE
}

// Validate performs dialect-independent structural validation.
func (ast *AST) Validate() error {
	if ast.Target.Name == "" && !(ast.Operation == OpCreateUser || ast.Operation == OpDropUser) {
		return fmt.Errorf("target table is required")
	}

	switch ast.Operation {
	case OpSelect:
		// Fields are optional (defaults to *)
	case OpInsert:
		if err := ast.validateInsert(); err != nil {
			return err
		}
	case OpUpdate:
		if len(ast.Updates) == 0 {
			return fmt.Errorf("UPDATE requires at least one field to update")
		}
		if ast.Distinct || len(ast.Joins) > 0 || len(ast.GroupBy) > 0 {
			return fmt.Errorf("UPDATE cannot have SELECT features like DISTINCT, JOIN, or GROUP BY")
		}
	case OpDelete:
		if ast.Distinct || len(ast.Joins) > 0 || len(ast.GroupBy) > 0 {
			return fmt.Errorf("DELETE cannot have SELECT features like DISTINCT, JOIN, or GROUP BY")
		}
	case OpCount:
		// COUNT can have JOINs and WHERE but no fields
	case OpCommentOn:
		if ast.CommentOn == nil {
			return fmt.Errorf("COMMENT ON requires a comment")
		}
	case OpCreateUser, OpDropUser, OpGrant, OpRevoke:
		if err := ast.validateUser(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported operation: %s", ast.Operation)
	}

	if len(ast.Having) > 0 && len(ast.GroupBy) == 0 {
		return fmt.Errorf("HAVING requires GROUP BY")
	}
	if (ast.Limit != nil || ast.Offset != nil) && ast.Operation != OpSelect {
		return fmt.Errorf("LIMIT and OFFSET can only be used with SELECT queries")
	}
	if ast.Limit != nil && *ast.Limit < 0 {
		return fmt.Errorf("LIMIT must not be negative")
	}
	if ast.Offset != nil && *ast.Offset < 0 {
		return fmt.Errorf("OFFSET must not be negative")
	}

	for i := range ast.FieldExpressions {
		if agg := ast.FieldExpressions[i].Aggregate; agg != nil {
			if err := agg.Validate(); err != nil {
				return err
			}
		}
	}
	for _, h := range ast.Having {
		if err := validateHaving(h); err != nil {
			return err
		}
	}

	return nil
}

func validateHaving(item ConditionItem) error {
	switch c := item.(type) {
	case AggregateCondition:
		if !c.Operator.IsComparison() {
			return fmt.Errorf("aggregate condition requires a comparison operator, got %q", c.Operator)
		}
		return c.Aggregate.Validate()
	case ConditionGroup:
		for _, sub := range c.Conditions {
			if err := validateHaving(sub); err != nil {
				return err
			}
		}
	}
	return nil
}

func (ast *AST) validateInsert() error {
	if len(ast.Values) == 0 {
		return fmt.Errorf("INSERT requires at least one value set")
	}
	if len(ast.Values) > 1 {
		firstKeys := make(map[Field]bool)
		for k := range ast.Values[0] {
			firstKeys[k] = true
		}
		for i, valueSet := range ast.Values[1:] {
			if len(valueSet) != len(firstKeys) {
				return fmt.Errorf("value set %d has different number of fields", i+1)
			}
			for k := range valueSet {
				if !firstKeys[k] {
					return fmt.Errorf("value set %d has different fields", i+1)
				}
			}
		}
	}
	if ast.OnConflict != nil && len(ast.OnConflict.Columns) == 0 {
		return fmt.Errorf("ON CONFLICT requires at least one column")
	}
	if ast.OnConflict != nil && ast.OnConflict.Action == DoUpdate && len(ast.OnConflict.Updates) == 0 {
		return fmt.Errorf("ON CONFLICT DO UPDATE requires at least one field to update")
	}
	return nil
}

func (ast *AST) validateUser() error {
	if ast.User == nil || ast.User.User.Name == "" {
		return fmt.Errorf("%s requires a user", ast.Operation)
	}
	if ast.Operation != OpGrant && ast.Operation != OpRevoke {
		return nil
	}
	if len(ast.User.Privileges) == 0 {
		return fmt.Errorf("%s requires at least one privilege", ast.Operation)
	}
	for _, p := range ast.User.Privileges {
		if !p.Valid() {
			return fmt.Errorf("unknown privilege: %s", p)
		}
	}
	return nil
}
