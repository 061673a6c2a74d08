package types

// QueryResult contains the rendered SQL and the named parameters it expects,
// in first-use order.
type QueryResult struct {
	SQL            string
	RequiredParams []string
	Dialect        string
	// ReturnsRows is set for SELECT, COUNT and statements with RETURNING.
	ReturnsRows bool
}
