package render

import (
	"fmt"
	"strings"

	"github.com/zoobzio/sqlfrag/internal/types"
)

// QuoteIdentifier quotes an identifier for the engine's dialect, escaping
// embedded quote characters by doubling them.
func (e *Engine) QuoteIdentifier(name string) string {
	switch {
	case ANSIQuoted.Contains(e.dialect):
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	case e.dialect == MSSQL:
		return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
	default:
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
}

// QuoteString renders s as a string literal.
// MySQL and MariaDB treat backslash as an escape character by default, so
// backslashes are doubled there. SQL Server literals are Unicode (N'').
func (e *Engine) QuoteString(s string) string {
	escaped := strings.ReplaceAll(s, "'", "''")
	switch {
	case MySQLFamily.Contains(e.dialect):
		escaped = strings.ReplaceAll(escaped, `\`, `\\`)
		return "'" + escaped + "'"
	case e.dialect == MSSQL:
		return "N'" + escaped + "'"
	default:
		return "'" + escaped + "'"
	}
}

func (e *Engine) renderTable(table types.Table) string {
	quotedName := e.QuoteIdentifier(table.Name)
	if table.Alias != "" {
		// Aliases don't need quoting since they're restricted to single lowercase letters
		return fmt.Sprintf("%s %s", quotedName, table.Alias)
	}
	return quotedName
}

func (e *Engine) renderField(field types.Field) string {
	if field.Name == "*" {
		if field.Table != "" {
			return e.renderQualifier(field.Table) + ".*"
		}
		return "*"
	}
	quotedName := e.QuoteIdentifier(field.Name)
	if field.Table != "" {
		return e.renderQualifier(field.Table) + "." + quotedName
	}
	return quotedName
}

// renderQualifier leaves single-letter aliases bare and quotes table names.
func (e *Engine) renderQualifier(tableOrAlias string) string {
	if len(tableOrAlias) == 1 && tableOrAlias[0] >= 'a' && tableOrAlias[0] <= 'z' {
		return tableOrAlias
	}
	return e.QuoteIdentifier(tableOrAlias)
}

func (e *Engine) renderOperator(op types.Operator) string {
	if op == types.NE && e.dialect == MSSQL {
		return "<>"
	}
	return string(op)
}
