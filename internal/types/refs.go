package types

// Table represents a validated table reference.
// This is exported from the internal package so dialect renderers can use it,
// but external users cannot import this package.
type Table struct {
	Name  string
	Alias string
}

// Field represents a validated field reference.
type Field struct {
	Name  string // The field name (required)
	Table string // Optional table/alias prefix
}

// Param represents a named parameter reference.
// Values never appear inline in rendered SQL.
type Param struct {
	Name string
}

// TableValidator validates table names and aliases for Field.WithTable.
type TableValidator func(string) error

var validateTable TableValidator

// SetTableValidator sets the global table validator function.
// This is called by the root package during initialization.
func SetTableValidator(validator TableValidator) {
	validateTable = validator
}

// WithTable returns a copy of the field qualified by a table name or alias.
// It panics when the installed validator rejects the qualifier.
func (f Field) WithTable(tableOrAlias string) Field {
	if validateTable != nil {
		if err := validateTable(tableOrAlias); err != nil {
			panic(err)
		}
	}
	f.Table = tableOrAlias
	return f
}

// IsStar reports whether the field stands for "all columns".
func (f Field) IsStar() bool {
	return f.Name == "" || f.Name == "*"
}

// User identifies a database principal.
// Host is only meaningful for MySQL-family dialects, where accounts are
// scoped to the connecting host.
type User struct {
	Name string
	Host string
}

// At returns a copy of the user scoped to host.
func (u User) At(host string) User {
	u.Host = host
	return u
}

// Privilege is a grantable table privilege.
type Privilege string

const (
	PrivSelect Privilege = "SELECT"
	PrivInsert Privilege = "INSERT"
	PrivUpdate Privilege = "UPDATE"
	PrivDelete Privilege = "DELETE"
	PrivAll    Privilege = "ALL"
)

// TablePrivileges lists the concrete privileges that ALL stands for.
var TablePrivileges = []Privilege{PrivSelect, PrivInsert, PrivUpdate, PrivDelete}

// Valid reports whether p is a known privilege.
func (p Privilege) Valid() bool {
	switch p {
	case PrivSelect, PrivInsert, PrivUpdate, PrivDelete, PrivAll:
		return true
	}
	return false
}
