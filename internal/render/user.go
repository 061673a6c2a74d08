package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/zoobzio/sqlfrag/internal/types"
)

// MySQL account hosts: names, addresses and % / _ wildcards.
var hostPattern = regexp.MustCompile(`^[A-Za-z0-9.%_:-]+$`)

// ValidateHost checks a MySQL account host.
func ValidateHost(host string) error {
	if !hostPattern.MatchString(host) {
		return fmt.Errorf("%w: invalid host %q", ErrInvalidIdentifier, host)
	}
	return nil
}

// RenderUser renders a user identifier for the engine's dialect.
func (e *Engine) RenderUser(user types.User) (string, error) {
	if user.Name == "" {
		return "", fmt.Errorf("%w: user name is required", ErrInvalidIdentifier)
	}
	if !e.caps.Users {
		return "", e.unsupported("users", "manage access outside the database")
	}

	if MySQLFamily.Contains(e.dialect) {
		host := user.Host
		if host == "" {
			host = "%"
		}
		if err := ValidateHost(host); err != nil {
			return "", err
		}
		return e.QuoteString(user.Name) + "@" + e.QuoteString(host), nil
	}

	if user.Host != "" {
		return "", e.unsupported("user host", "hosts only scope MySQL and MariaDB accounts")
	}
	return e.QuoteIdentifier(user.Name), nil
}

func (e *Engine) renderUserStatement(ast *types.AST, sql *strings.Builder) error {
	stmt := ast.User
	if stmt == nil {
		return fmt.Errorf("%s requires a user", ast.Operation)
	}

	user, err := e.RenderUser(stmt.User)
	if err != nil {
		return err
	}

	switch ast.Operation {
	case types.OpCreateUser:
		sql.WriteString("CREATE USER ")
		sql.WriteString(user)
		if e.dialect == MSSQL {
			// A database user without a server login.
			sql.WriteString(" WITHOUT LOGIN")
		}
	case types.OpDropUser:
		sql.WriteString("DROP USER ")
		if stmt.IfExists {
			sql.WriteString("IF EXISTS ")
		}
		sql.WriteString(user)
	case types.OpGrant:
		fmt.Fprintf(sql, "GRANT %s ON %s TO %s",
			e.renderPrivileges(stmt.Privileges), e.QuoteIdentifier(ast.Target.Name), user)
	case types.OpRevoke:
		fmt.Fprintf(sql, "REVOKE %s ON %s FROM %s",
			e.renderPrivileges(stmt.Privileges), e.QuoteIdentifier(ast.Target.Name), user)
	default:
		return fmt.Errorf("unsupported user operation: %s", ast.Operation)
	}
	return nil
}

// renderPrivileges renders a deduplicated privilege list. ALL absorbs the
// rest; SQL Server deprecated ALL so it is expanded there.
func (e *Engine) renderPrivileges(privileges []types.Privilege) string {
	for _, p := range privileges {
		if p != types.PrivAll {
			continue
		}
		if e.dialect == MSSQL {
			privileges = types.TablePrivileges
			break
		}
		return "ALL PRIVILEGES"
	}

	seen := make(map[types.Privilege]bool, len(privileges))
	names := make([]string, 0, len(privileges))
	for _, p := range privileges {
		if seen[p] {
			continue
		}
		seen[p] = true
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}
