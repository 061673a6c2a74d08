package render

import (
	"fmt"
	"strings"
)

// Dialect identifies a SQL dialect family.
type Dialect int

const (
	Postgres Dialect = iota + 1
	MySQL
	MariaDB
	SQLite
	MSSQL
)

var dialectNames = map[Dialect]string{
	Postgres: "postgres",
	MySQL:    "mysql",
	MariaDB:  "mariadb",
	SQLite:   "sqlite",
	MSSQL:    "mssql",
}

var dialectAliases = map[string]Dialect{
	"postgres":   Postgres,
	"postgresql": Postgres,
	"pg":         Postgres,
	"mysql":      MySQL,
	"mariadb":    MariaDB,
	"sqlite":     SQLite,
	"sqlite3":    SQLite,
	"mssql":      MSSQL,
	"sqlserver":  MSSQL,
}

func (d Dialect) String() string {
	if name, ok := dialectNames[d]; ok {
		return name
	}
	return fmt.Sprintf("dialect(%d)", int(d))
}

// ParseDialect resolves a dialect name or common alias.
func ParseDialect(name string) (Dialect, error) {
	if d, ok := dialectAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("unknown dialect: %q", name)
}

// Dialects returns every supported dialect in declaration order.
func Dialects() []Dialect {
	return []Dialect{Postgres, MySQL, MariaDB, SQLite, MSSQL}
}

// Set is an immutable set of dialects.
type Set uint32

// SetOf builds a Set from the given dialects.
func SetOf(dialects ...Dialect) Set {
	var s Set
	for _, d := range dialects {
		s |= 1 << uint(d)
	}
	return s
}

// Contains reports whether d is in the set.
func (s Set) Contains(d Dialect) bool {
	return s&(1<<uint(d)) != 0
}

// Frequently used dialect sets.
var (
	MySQLFamily = SetOf(MySQL, MariaDB)
	// ANSIQuoted dialects quote identifiers with double quotes.
	ANSIQuoted = SetOf(Postgres, SQLite)
)
