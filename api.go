// Package sqlfrag provides typed SQL fragments that render themselves as
// dialect-specific SQL.
//
// The package builds an Abstract Syntax Tree (AST) from fluent builder calls,
// then renders it with a dialect renderer. Every dialect emits named
// parameters (`:param_name`); the bind package rewrites them into the
// driver's positional form. Fragments a dialect lacks are either emulated
// (FILTER, NULLS ordering, BOOL_AND, XMLAGG, ...) or rejected with an
// UnsupportedFeatureError.
//
// # Basic Usage
//
//	import "github.com/zoobzio/sqlfrag/postgres"
//
//	s := sqlfrag.New()
//	query := sqlfrag.Select(s.T("orders")).
//		Fields(s.F("user_id")).
//		Expr(sqlfrag.Sum(s.F("total")).Filter(s.C(s.F("paid"), sqlfrag.EQ, s.P("paid"))).As("paid_total")).
//		GroupBy(s.F("user_id"))
//
//	result, err := query.Render(postgres.New())
//	// result.SQL: SELECT "user_id", SUM("total") FILTER (WHERE "paid" = :paid) AS "paid_total" FROM "orders" GROUP BY "user_id"
//	// result.RequiredParams: []string{"paid"}
//
// # Dialects
//
// Renderers live in the postgres, mysql, mariadb, sqlite and mssql packages.
// The same AST renders on each of them:
//
//	result, err := query.Render(mysql.New())
//	// SELECT `user_id`, SUM(CASE WHEN `paid` = :paid THEN `total` END) AS `paid_total` ...
//
// # Schema-Validated Usage
//
// An instance built from a DBML schema rejects unknown tables and fields:
//
//	s, err := sqlfrag.NewFromDBML(project)
//	if err != nil {
//		return err
//	}
//
//	// These panic if the field/table doesn't exist in the schema
//	users := s.T("users")
//	email := s.F("email")
//
// # Fragments
//
// Besides SELECT, INSERT, UPDATE, DELETE and COUNT the package renders
// aggregate functions, statement comments, COMMENT ON, constant sort fields,
// user management (CREATE USER, DROP USER, GRANT, REVOKE) and XML aggregation.
package sqlfrag

import (
	"github.com/zoobzio/sqlfrag/internal/render"
	"github.com/zoobzio/sqlfrag/internal/types"
)

// AST represents the abstract syntax tree for a statement.
// This is re-exported from internal/types for use by consumers.
type AST = types.AST

// QueryResult contains the rendered SQL and required parameters.
type QueryResult = types.QueryResult

// Table, Field, Param and User are validated references.
type (
	Table = types.Table
	Field = types.Field
	Param = types.Param
	User  = types.User
)

// FieldExpression is a select-list item.
type FieldExpression = types.FieldExpression

// Operation represents the type of statement.
type Operation = types.Operation

// Re-export operation constants for public API.
const (
	OpSelect     = types.OpSelect
	OpInsert     = types.OpInsert
	OpUpdate     = types.OpUpdate
	OpDelete     = types.OpDelete
	OpCount      = types.OpCount
	OpCommentOn  = types.OpCommentOn
	OpCreateUser = types.OpCreateUser
	OpDropUser   = types.OpDropUser
	OpGrant      = types.OpGrant
	OpRevoke     = types.OpRevoke
)

// Direction represents sort direction.
type Direction = types.Direction

// Re-export direction constants for public API.
const (
	ASC  = types.ASC
	DESC = types.DESC
)

// NullsOrdering represents NULL ordering in ORDER BY.
type NullsOrdering = types.NullsOrdering

// Re-export nulls ordering constants for public API.
const (
	NullsFirst = types.NullsFirst
	NullsLast  = types.NullsLast
)

// Operator represents SQL comparison operators.
type Operator = types.Operator

// Re-export operator constants for public API.
const (
	EQ = types.EQ
	NE = types.NE
	GT = types.GT
	GE = types.GE
	LT = types.LT
	LE = types.LE

	IN        = types.IN
	NotIn     = types.NotIn
	LIKE      = types.LIKE
	NotLike   = types.NotLike
	IsNull    = types.IsNull
	IsNotNull = types.IsNotNull
	EXISTS    = types.EXISTS
	NotExists = types.NotExists
)

// ConditionItem represents either a single condition or a group of conditions.
type ConditionItem = types.ConditionItem

// AggregateCondition represents a HAVING condition on an aggregate function.
// Use with Builder.HavingAgg() for conditions like COUNT(*) > :min.
type AggregateCondition = types.AggregateCondition

// AggregateFunc represents SQL aggregate functions.
type AggregateFunc = types.AggregateFunc

// Re-export aggregate function constants for public API.
const (
	AggCount          = types.AggCount
	AggSum            = types.AggSum
	AggAvg            = types.AggAvg
	AggMin            = types.AggMin
	AggMax            = types.AggMax
	AggProduct        = types.AggProduct
	AggMode           = types.AggMode
	AggMedian         = types.AggMedian
	AggPercentileCont = types.AggPercentileCont
	AggPercentileDisc = types.AggPercentileDisc
	AggStddevPop      = types.AggStddevPop
	AggStddevSamp     = types.AggStddevSamp
	AggVarPop         = types.AggVarPop
	AggVarSamp        = types.AggVarSamp
	AggBoolAnd        = types.AggBoolAnd
	AggBoolOr         = types.AggBoolOr
	AggEvery          = types.AggEvery
	AggStringAgg      = types.AggStringAgg
	AggArrayAgg       = types.AggArrayAgg
)

// Privilege is a grantable table privilege.
type Privilege = types.Privilege

// Re-export privilege constants for public API.
const (
	PrivSelect = types.PrivSelect
	PrivInsert = types.PrivInsert
	PrivUpdate = types.PrivUpdate
	PrivDelete = types.PrivDelete
	PrivAll    = types.PrivAll
)

// Capabilities describes what a dialect supports natively.
type Capabilities = render.Capabilities

// UnsupportedFeatureError is returned when a dialect can neither render nor
// emulate a fragment.
type UnsupportedFeatureError = render.UnsupportedFeatureError

// Sentinel errors for fragments that fail validation.
var (
	ErrInvalidComment    = render.ErrInvalidComment
	ErrInvalidIdentifier = render.ErrInvalidIdentifier
)

// IsUnsupported reports whether err is, or wraps, an UnsupportedFeatureError.
func IsUnsupported(err error) bool {
	return render.IsUnsupported(err)
}
