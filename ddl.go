package sqlfrag

import (
	"fmt"
	"strings"

	"github.com/zoobzio/sqlfrag/internal/types"
)

// CommentOnTable sets the descriptive comment of a table.
// An empty text removes the comment.
func CommentOnTable(t types.Table, text string) *Builder {
	b := newBuilder(types.OpCommentOn, types.Table{Name: t.Name})
	b.ast.CommentOn = &types.CommentOn{Text: text}
	b.checkCommentText(text)
	return b
}

// CommentOnColumn sets the descriptive comment of a column.
// An empty text removes the comment.
func CommentOnColumn(t types.Table, f types.Field, text string) *Builder {
	b := newBuilder(types.OpCommentOn, types.Table{Name: t.Name})
	column := types.Field{Name: f.Name}
	b.ast.CommentOn = &types.CommentOn{Column: &column, Text: text}
	if f.IsStar() {
		b.err = fmt.Errorf("COMMENT ON COLUMN requires a column")
	}
	b.checkCommentText(text)
	return b
}

func (b *Builder) checkCommentText(text string) {
	if b.err == nil && strings.ContainsRune(text, 0) {
		b.err = fmt.Errorf("%w: comment text cannot contain NUL", ErrInvalidComment)
	}
}

func userBuilder(op types.Operation, u types.User, t types.Table, privileges []types.Privilege) *Builder {
	b := newBuilder(op, types.Table{Name: t.Name})
	b.ast.User = &types.UserStatement{User: u, Privileges: privileges}
	return b
}

// CreateUser creates a database user.
func CreateUser(u types.User) *Builder {
	return userBuilder(types.OpCreateUser, u, types.Table{}, nil)
}

// DropUser drops a database user.
func DropUser(u types.User) *Builder {
	return userBuilder(types.OpDropUser, u, types.Table{}, nil)
}

// IfExists makes DROP USER a no-op for a missing user.
func (b *Builder) IfExists() *Builder {
	if b.err != nil {
		return b
	}
	if b.ast.Operation != types.OpDropUser {
		b.err = fmt.Errorf("IF EXISTS can only be used with DROP USER")
		return b
	}
	b.ast.User.IfExists = true
	return b
}

// Grant grants table privileges to a user.
func Grant(u types.User, t types.Table, privileges ...types.Privilege) *Builder {
	return userBuilder(types.OpGrant, u, t, privileges)
}

// Revoke revokes table privileges from a user.
func Revoke(u types.User, t types.Table, privileges ...types.Privilege) *Builder {
	return userBuilder(types.OpRevoke, u, t, privileges)
}
