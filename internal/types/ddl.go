package types

// Comment is a block comment emitted ahead of a statement.
type Comment struct {
	Text string
}

// CommentOn attaches a descriptive comment to a table or column.
// An empty Text removes the comment.
type CommentOn struct {
	Column *Field
	Text   string
}

// UserStatement carries the payload of CREATE USER, DROP USER, GRANT and REVOKE.
// GRANT and REVOKE use AST.Target as the object.
type UserStatement struct {
	User       User
	Privileges []Privilege
	IfExists   bool
}
