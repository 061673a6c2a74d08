package render

import (
	"fmt"
	"strings"

	"github.com/zoobzio/sqlfrag/internal/types"
)

// ValidateComment checks that text can sit inside a /* ... */ block comment.
// PostgreSQL nests block comments, so an opening token is as dangerous as a
// closing one.
func ValidateComment(text string) error {
	switch {
	case text == "":
		return fmt.Errorf("%w: comment text is empty", ErrInvalidComment)
	case strings.Contains(text, "/*"), strings.Contains(text, "*/"):
		return fmt.Errorf("%w: comment text cannot contain comment delimiters", ErrInvalidComment)
	case strings.ContainsRune(text, 0):
		return fmt.Errorf("%w: comment text cannot contain NUL", ErrInvalidComment)
	}
	return nil
}

// renderStatementComment renders the leading block comment of a statement.
// The space after the opening token keeps MySQL from reading the comment as
// an executable comment (/*!) or optimizer hint (/*+).
func (e *Engine) renderStatementComment(c types.Comment) (string, error) {
	if err := ValidateComment(c.Text); err != nil {
		return "", err
	}
	return "/* " + c.Text + " */ ", nil
}

func (e *Engine) renderCommentOn(ast *types.AST, sql *strings.Builder) error {
	on := ast.CommentOn
	if on == nil {
		return fmt.Errorf("COMMENT ON requires a comment")
	}
	if strings.ContainsRune(on.Text, 0) {
		return fmt.Errorf("%w: comment text cannot contain NUL", ErrInvalidComment)
	}

	if !e.caps.TableComments {
		return e.unsupported("COMMENT ON", "keep schema documentation outside the database")
	}
	if on.Column != nil && !e.caps.ColumnComments {
		return e.unsupported("column comments", "use ALTER TABLE ... MODIFY COLUMN with the full column definition")
	}

	table := ast.Target.Name

	switch {
	case e.dialect == MSSQL:
		e.renderExtendedProperty(table, on, sql)
	case MySQLFamily.Contains(e.dialect):
		// An empty comment clears it.
		fmt.Fprintf(sql, "ALTER TABLE %s COMMENT = %s", e.QuoteIdentifier(table), e.QuoteString(on.Text))
	default:
		value := "NULL"
		if on.Text != "" {
			value = e.QuoteString(on.Text)
		}
		if on.Column != nil {
			fmt.Fprintf(sql, "COMMENT ON COLUMN %s.%s IS %s",
				e.QuoteIdentifier(table), e.QuoteIdentifier(on.Column.Name), value)
		} else {
			fmt.Fprintf(sql, "COMMENT ON TABLE %s IS %s", e.QuoteIdentifier(table), value)
		}
	}
	return nil
}

// renderExtendedProperty renders the SQL Server MS_Description property call.
func (e *Engine) renderExtendedProperty(table string, on *types.CommentOn, sql *strings.Builder) {
	if on.Text == "" {
		sql.WriteString("EXEC sp_dropextendedproperty @name = N'MS_Description'")
	} else {
		sql.WriteString("EXEC sp_addextendedproperty @name = N'MS_Description', @value = ")
		sql.WriteString(e.QuoteString(on.Text))
	}
	sql.WriteString(", @level0type = N'SCHEMA', @level0name = N'dbo'")
	fmt.Fprintf(sql, ", @level1type = N'TABLE', @level1name = %s", e.QuoteString(table))
	if on.Column != nil {
		fmt.Fprintf(sql, ", @level2type = N'COLUMN', @level2name = %s", e.QuoteString(on.Column.Name))
	}
}
