package sqlfrag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zoobzio/dbml"
	"github.com/zoobzio/sqlfrag/internal/types"
)

func init() {
	types.SetTableValidator(validateQualifier)
}

// Instance creates validated references. Without a schema it only checks
// identifier syntax; with a DBML schema tables and fields must exist.
type Instance struct {
	project *dbml.Project
	// Internal indexes for fast validation
	tables map[string]*dbml.Table
	fields map[string]map[string]*dbml.Column // table -> field -> column
}

// New creates an instance that validates identifier syntax only.
func New() *Instance {
	return &Instance{}
}

// NewFromDBML creates a new instance from a DBML project.
func NewFromDBML(project *dbml.Project) (*Instance, error) {
	if project == nil {
		return nil, fmt.Errorf("project cannot be nil")
	}

	s := &Instance{
		project: project,
		tables:  make(map[string]*dbml.Table),
		fields:  make(map[string]map[string]*dbml.Column),
	}

	for _, table := range project.Tables {
		if !isValidSQLIdentifier(table.Name) {
			return nil, fmt.Errorf("schema table '%s' is not a valid identifier", table.Name)
		}
		s.tables[table.Name] = table
		s.fields[table.Name] = make(map[string]*dbml.Column)
		for _, col := range table.Columns {
			s.fields[table.Name][col.Name] = col
		}
	}

	return s, nil
}

// Schema reports whether the instance validates against a schema.
func (s *Instance) Schema() bool {
	return s.project != nil
}

// Tables returns the schema's table names in sorted order.
func (s *Instance) Tables() []string {
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Instance) validateTable(name string) error {
	if !isValidSQLIdentifier(name) {
		return fmt.Errorf("invalid table name '%s'", name)
	}
	if s.project == nil {
		return nil
	}
	if _, ok := s.tables[name]; !ok {
		return fmt.Errorf("table '%s' not found in schema", name)
	}
	return nil
}

func (s *Instance) validateField(name string) error {
	if name == "*" {
		return nil
	}
	if !isValidSQLIdentifier(name) {
		return fmt.Errorf("invalid field name '%s'", name)
	}
	if s.project == nil {
		return nil
	}
	for _, tableFields := range s.fields {
		if _, ok := tableFields[name]; ok {
			return nil
		}
	}
	return fmt.Errorf("field '%s' not found in schema", name)
}

func (s *Instance) validateTableOrAlias(tableOrAlias string) error {
	if isValidTableAlias(tableOrAlias) {
		return nil
	}
	if err := s.validateTable(tableOrAlias); err == nil {
		return nil
	}
	return fmt.Errorf("WithTable requires single-letter alias (a-z) or valid table name, got: %s", tableOrAlias)
}

// validateQualifier is the schema-less check behind types.Field.WithTable.
func validateQualifier(tableOrAlias string) error {
	if isValidTableAlias(tableOrAlias) || isValidSQLIdentifier(tableOrAlias) {
		return nil
	}
	return fmt.Errorf("invalid table qualifier: %s", tableOrAlias)
}

// isValidTableAlias checks if a string is a valid single-letter table alias.
func isValidTableAlias(alias string) bool {
	return len(alias) == 1 && alias[0] >= 'a' && alias[0] <= 'z'
}

// isValidSQLIdentifier checks if a string is a valid SQL identifier.
func isValidSQLIdentifier(s string) bool {
	if s == "" || len(s) > 128 {
		return false
	}

	first := s[0]
	if !((first >= 'a' && first <= 'z') ||
		(first >= 'A' && first <= 'Z') ||
		first == '_') {
		return false
	}

	for i := 1; i < len(s); i++ {
		ch := s[i]
		if !((ch >= 'a' && ch <= 'z') ||
			(ch >= 'A' && ch <= 'Z') ||
			(ch >= '0' && ch <= '9') ||
			ch == '_') {
			return false
		}
	}

	// Identifiers are quoted when rendered; these still read as injection attempts.
	lower := strings.ToLower(s)
	for _, keyword := range []string{"select", "insert", "update", "delete", "drop", "union"} {
		if lower == keyword {
			return false
		}
	}

	return true
}

// TryF creates a validated field reference, returning an error if invalid.
func (s *Instance) TryF(name string) (types.Field, error) {
	if err := s.validateField(name); err != nil {
		return types.Field{}, fmt.Errorf("invalid field: %w", err)
	}
	return types.Field{Name: name}, nil
}

// F creates a validated field reference.
func (s *Instance) F(name string) types.Field {
	f, err := s.TryF(name)
	if err != nil {
		panic(err)
	}
	return f
}

// TryT creates a validated table reference, returning an error if invalid.
func (s *Instance) TryT(name string, alias ...string) (types.Table, error) {
	if err := s.validateTable(name); err != nil {
		return types.Table{}, fmt.Errorf("invalid table: %w", err)
	}

	var tableAlias string
	if len(alias) > 0 {
		if len(alias) > 1 {
			return types.Table{}, fmt.Errorf("only one alias allowed")
		}
		tableAlias = alias[0]
		if !isValidTableAlias(tableAlias) {
			return types.Table{}, fmt.Errorf("alias must be single lowercase letter (a-z), got: %s", tableAlias)
		}
	}

	return types.Table{Name: name, Alias: tableAlias}, nil
}

// T creates a validated table reference.
func (s *Instance) T(name string, alias ...string) types.Table {
	t, err := s.TryT(name, alias...)
	if err != nil {
		panic(err)
	}
	return t
}

// TryP creates a validated parameter reference, returning an error if invalid.
func (*Instance) TryP(name string) (types.Param, error) {
	if !isValidSQLIdentifier(name) {
		return types.Param{}, fmt.Errorf("invalid parameter name: %s", name)
	}
	return types.Param{Name: name}, nil
}

// P creates a validated parameter reference.
func (s *Instance) P(name string) types.Param {
	p, err := s.TryP(name)
	if err != nil {
		panic(err)
	}
	return p
}

// TryU creates a validated user reference. Scope it to a MySQL host with
// User.At.
func (*Instance) TryU(name string) (types.User, error) {
	if !isValidSQLIdentifier(name) {
		return types.User{}, fmt.Errorf("%w: invalid user name: %s", ErrInvalidIdentifier, name)
	}
	return types.User{Name: name}, nil
}

// U creates a validated user reference.
func (s *Instance) U(name string) types.User {
	u, err := s.TryU(name)
	if err != nil {
		panic(err)
	}
	return u
}

// TryC creates a validated condition, returning an error if invalid.
func (s *Instance) TryC(field types.Field, op types.Operator, param types.Param) (types.Condition, error) {
	if err := s.validateField(field.Name); err != nil {
		return types.Condition{}, err
	}
	switch op {
	case types.IsNull, types.IsNotNull, types.EXISTS, types.NotExists:
		return types.Condition{}, fmt.Errorf("operator %s takes no parameter", op)
	}
	return types.Condition{
		Field:    field,
		Operator: op,
		Value:    param,
	}, nil
}

// C creates a validated condition.
func (s *Instance) C(field types.Field, op types.Operator, param types.Param) types.Condition {
	cond, err := s.TryC(field, op, param)
	if err != nil {
		panic(err)
	}
	return cond
}

// TryNull creates a NULL condition, returning an error if invalid.
func (s *Instance) TryNull(field types.Field) (types.Condition, error) {
	if err := s.validateField(field.Name); err != nil {
		return types.Condition{}, err
	}
	return types.Condition{
		Field:    field,
		Operator: types.IsNull,
	}, nil
}

// Null creates a NULL condition.
func (s *Instance) Null(field types.Field) types.Condition {
	cond, err := s.TryNull(field)
	if err != nil {
		panic(err)
	}
	return cond
}

// TryNotNull creates a NOT NULL condition, returning an error if invalid.
func (s *Instance) TryNotNull(field types.Field) (types.Condition, error) {
	if err := s.validateField(field.Name); err != nil {
		return types.Condition{}, err
	}
	return types.Condition{
		Field:    field,
		Operator: types.IsNotNull,
	}, nil
}

// NotNull creates a NOT NULL condition.
func (s *Instance) NotNull(field types.Field) types.Condition {
	cond, err := s.TryNotNull(field)
	if err != nil {
		panic(err)
	}
	return cond
}

// TryAnd creates an AND condition group, returning an error if invalid.
func (*Instance) TryAnd(conditions ...types.ConditionItem) (types.ConditionGroup, error) {
	if len(conditions) == 0 {
		return types.ConditionGroup{}, fmt.Errorf("AND requires at least one condition")
	}
	return and(conditions...), nil
}

// And creates an AND condition group.
func (s *Instance) And(conditions ...types.ConditionItem) types.ConditionGroup {
	g, err := s.TryAnd(conditions...)
	if err != nil {
		panic(err)
	}
	return g
}

// TryOr creates an OR condition group, returning an error if invalid.
func (*Instance) TryOr(conditions ...types.ConditionItem) (types.ConditionGroup, error) {
	if len(conditions) == 0 {
		return types.ConditionGroup{}, fmt.Errorf("OR requires at least one condition")
	}
	return types.ConditionGroup{
		Logic:      types.OR,
		Conditions: conditions,
	}, nil
}

// Or creates an OR condition group.
func (s *Instance) Or(conditions ...types.ConditionItem) types.ConditionGroup {
	g, err := s.TryOr(conditions...)
	if err != nil {
		panic(err)
	}
	return g
}

// TryWithTable creates a new Field with a table/alias prefix, returning an error if invalid.
func (s *Instance) TryWithTable(field types.Field, tableOrAlias string) (types.Field, error) {
	if err := s.validateTableOrAlias(tableOrAlias); err != nil {
		return types.Field{}, err
	}
	return types.Field{
		Name:  field.Name,
		Table: tableOrAlias,
	}, nil
}

// WithTable creates a new Field with a table/alias prefix, validated against the schema.
func (s *Instance) WithTable(field types.Field, tableOrAlias string) types.Field {
	f, err := s.TryWithTable(field, tableOrAlias)
	if err != nil {
		panic(err)
	}
	return f
}
