package core

// ---------- Table Reference Types ----------

// TableRef is a FROM-clause item.
type TableRef interface {
	Node
	tableRefNode()
}

// TableName represents a table name reference.
type TableName struct {
	NodeInfo
	Schema string
	Name   string
	Alias  string
}

func (*TableName) tableRefNode() {}

// RefName returns the name the table is visible under: the alias if given,
// otherwise the table name.
func (t *TableName) RefName() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Name
}

// FromClause represents the FROM clause.
type FromClause struct {
	NodeInfo
	Source TableRef
	Joins  []*Join
}

// Join represents a JOIN clause.
type Join struct {
	NodeInfo
	Type      JoinType
	Natural   bool // NATURAL JOIN modifier
	Right     TableRef
	Condition Expr     // ON clause (mutually exclusive with Using)
	Using     []*Ident // USING (col1, col2) columns
}

// JoinType represents the type of join.
// The value is the SQL keyword (e.g., "LEFT", "INNER").
type JoinType string

// Standard join type values.
const (
	JoinInner JoinType = "INNER"
	JoinLeft  JoinType = "LEFT"
	JoinRight JoinType = "RIGHT"
	JoinFull  JoinType = "FULL"
	JoinCross JoinType = "CROSS"
	// JoinComma represents an implicit cross join using comma syntax.
	JoinComma JoinType = ","
)
