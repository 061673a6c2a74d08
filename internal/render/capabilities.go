package render

// Capabilities describes the SQL features a dialect supports natively.
// A false entry means the feature is either emulated or rejected with an
// UnsupportedFeatureError.
type Capabilities struct {
	Upsert               bool // ON CONFLICT / ON DUPLICATE KEY
	ReturningOnInsert    bool // INSERT ... RETURNING (or OUTPUT)
	ReturningOnUpdate    bool // UPDATE ... RETURNING (or OUTPUT)
	ReturningOnDelete    bool // DELETE ... RETURNING (or OUTPUT)
	InArray              bool // = ANY(:array_param)
	NullsOrdering        bool // NULLS FIRST / NULLS LAST
	ConstantOrderBy      bool // ORDER BY <constant>
	AggregateFilter      bool // AGG(...) FILTER (WHERE ...)
	OrderedSetAggregates bool // AGG() WITHIN GROUP (ORDER BY ...)
	BooleanAggregates    bool // BOOL_AND / BOOL_OR
	NativeXML            bool // XMLAGG / XMLELEMENT
	TableComments        bool // COMMENT ON TABLE or equivalent
	ColumnComments       bool // COMMENT ON COLUMN or equivalent
	Users                bool // CREATE USER, GRANT, REVOKE
}
