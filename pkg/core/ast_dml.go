package core

// ---------- DML Statement Types ----------

// InsertStmt represents INSERT INTO.
type InsertStmt struct {
	NodeInfo
	Table         *TableName
	Columns       []*Ident
	Values        [][]Expr    // VALUES rows
	Select        *SelectStmt // INSERT ... SELECT
	DefaultValues bool
	OnConflict    *OnConflict
	Returning     []SelectItem
}

func (*InsertStmt) stmtNode() {}

// OnConflict is the ON CONFLICT clause of an upsert.
type OnConflict struct {
	NodeInfo
	Target    []*Ident
	DoNothing bool
	Set       []*Assignment
	Where     Expr
}

// Assignment is a single column = value pair in SET.
type Assignment struct {
	NodeInfo
	Column *Ident
	Value  Expr
}

// UpdateStmt represents UPDATE.
type UpdateStmt struct {
	NodeInfo
	Table *TableName
	Set   []*Assignment
	From  *FromClause
	Where Expr
}

func (*UpdateStmt) stmtNode() {}

// DeleteStmt represents DELETE FROM.
type DeleteStmt struct {
	NodeInfo
	Table *TableName
	Using *FromClause
	Where Expr
}

func (*DeleteStmt) stmtNode() {}

// MergeStmt represents MERGE INTO.
type MergeStmt struct {
	NodeInfo
	Target  *TableName
	Source  *TableName
	On      Expr
	Clauses []*MergeClause
}

func (*MergeStmt) stmtNode() {}

// MergeAction is the action of a WHEN clause in MERGE.
type MergeAction int

// Merge actions.
const (
	MergeUpdate MergeAction = iota
	MergeDelete
	MergeInsert
	MergeDoNothing
)

// String returns the SQL keyword for the action.
func (a MergeAction) String() string {
	switch a {
	case MergeUpdate:
		return "UPDATE"
	case MergeDelete:
		return "DELETE"
	case MergeInsert:
		return "INSERT"
	default:
		return "DO NOTHING"
	}
}

// MergeClause is WHEN [NOT] MATCHED [AND cond] THEN action.
type MergeClause struct {
	NodeInfo
	Matched   bool
	Condition Expr
	Action    MergeAction
	Set       []*Assignment // MergeUpdate
	Columns   []*Ident      // MergeInsert
	Values    []Expr        // MergeInsert
}

// StatementKind returns a short, stable name for the statement type.
func StatementKind(s Stmt) string {
	switch s.(type) {
	case *SelectStmt:
		return "SELECT"
	case *InsertStmt:
		return "INSERT"
	case *UpdateStmt:
		return "UPDATE"
	case *DeleteStmt:
		return "DELETE"
	case *MergeStmt:
		return "MERGE"
	case *CreateTableStmt:
		return "CREATE TABLE"
	case *AlterTableStmt:
		return "ALTER TABLE"
	case *DropTableStmt:
		return "DROP TABLE"
	default:
		return "UNKNOWN"
	}
}
