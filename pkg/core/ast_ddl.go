package core

// ---------- DDL Statement Types ----------

// CreateTableStmt represents CREATE TABLE.
type CreateTableStmt struct {
	NodeInfo
	IfNotExists bool
	Name        *TableName
	Columns     []*ColumnDef
	Constraints []*TableConstraint
}

func (*CreateTableStmt) stmtNode() {}

// ColumnDef is a column definition inside CREATE TABLE or ALTER TABLE ADD COLUMN.
type ColumnDef struct {
	NodeInfo
	Name        string
	TypeName    string // empty for untyped columns (SQLite)
	Constraints []*ColumnConstraint
}

// ConstraintKind identifies a column or table constraint.
type ConstraintKind int

// Constraint kinds.
const (
	ConstraintNotNull ConstraintKind = iota
	ConstraintNull
	ConstraintPrimaryKey
	ConstraintUnique
	ConstraintDefault
	ConstraintForeignKey
	ConstraintCheck
)

// String returns the SQL spelling of the constraint kind.
func (k ConstraintKind) String() string {
	switch k {
	case ConstraintNotNull:
		return "NOT NULL"
	case ConstraintNull:
		return "NULL"
	case ConstraintPrimaryKey:
		return "PRIMARY KEY"
	case ConstraintUnique:
		return "UNIQUE"
	case ConstraintDefault:
		return "DEFAULT"
	case ConstraintForeignKey:
		return "FOREIGN KEY"
	case ConstraintCheck:
		return "CHECK"
	default:
		return "UNKNOWN"
	}
}

// ColumnConstraint is a constraint attached to a single column.
type ColumnConstraint struct {
	NodeInfo
	Name    string // CONSTRAINT name (optional)
	Kind    ConstraintKind
	Default Expr           // ConstraintDefault; nil for GENERATED columns
	Ref     *ForeignKeyRef // ConstraintForeignKey (REFERENCES ...)
	Check   Expr           // ConstraintCheck
}

// TableConstraint is a table-level constraint.
type TableConstraint struct {
	NodeInfo
	Name    string
	Kind    ConstraintKind // PrimaryKey, Unique, ForeignKey or Check
	Columns []*Ident
	Ref     *ForeignKeyRef
	Check   Expr
}

// RefAction is an ON DELETE / ON UPDATE referential action.
type RefAction int

// Referential actions.
const (
	RefNoAction RefAction = iota
	RefRestrict
	RefCascade
	RefSetNull
	RefSetDefault
)

// String returns the SQL spelling of the action.
func (a RefAction) String() string {
	switch a {
	case RefRestrict:
		return "RESTRICT"
	case RefCascade:
		return "CASCADE"
	case RefSetNull:
		return "SET NULL"
	case RefSetDefault:
		return "SET DEFAULT"
	default:
		return "NO ACTION"
	}
}

// ForeignKeyRef is the REFERENCES part of a foreign key.
type ForeignKeyRef struct {
	NodeInfo
	Table    *TableName
	Columns  []*Ident // empty means the referenced table's primary key
	OnDelete RefAction
	OnUpdate RefAction
}

// AlterTableStmt represents ALTER TABLE with one or more actions.
type AlterTableStmt struct {
	NodeInfo
	Name    *TableName
	Actions []AlterAction
}

func (*AlterTableStmt) stmtNode() {}

// AlterAction is one sub-operation of ALTER TABLE.
type AlterAction interface {
	Node
	alterNode()
}

// AddColumnAction is ADD [COLUMN] column_def.
type AddColumnAction struct {
	NodeInfo
	Column      *ColumnDef
	IfNotExists bool
}

func (*AddColumnAction) alterNode() {}

// DropColumnAction is DROP [COLUMN] [IF EXISTS] name.
type DropColumnAction struct {
	NodeInfo
	Column   *Ident
	IfExists bool
}

func (*DropColumnAction) alterNode() {}

// RenameColumnAction is RENAME [COLUMN] old TO new.
type RenameColumnAction struct {
	NodeInfo
	Column *Ident
	To     *Ident
}

func (*RenameColumnAction) alterNode() {}

// RenameTableAction is RENAME TO new.
type RenameTableAction struct {
	NodeInfo
	To *Ident
}

func (*RenameTableAction) alterNode() {}

// AlterColumnTypeAction is ALTER [COLUMN] name [SET DATA] TYPE type.
type AlterColumnTypeAction struct {
	NodeInfo
	Column   *Ident
	TypeName string
}

func (*AlterColumnTypeAction) alterNode() {}

// AlterColumnNullAction is ALTER [COLUMN] name SET|DROP NOT NULL.
type AlterColumnNullAction struct {
	NodeInfo
	Column  *Ident
	NotNull bool // true for SET NOT NULL
}

func (*AlterColumnNullAction) alterNode() {}

// AlterColumnDefaultAction is ALTER [COLUMN] name SET DEFAULT expr | DROP DEFAULT.
type AlterColumnDefaultAction struct {
	NodeInfo
	Column  *Ident
	Default Expr // nil for DROP DEFAULT
}

func (*AlterColumnDefaultAction) alterNode() {}

// AddConstraintAction is ADD table_constraint.
type AddConstraintAction struct {
	NodeInfo
	Constraint *TableConstraint
}

func (*AddConstraintAction) alterNode() {}

// DropTableStmt represents DROP TABLE.
type DropTableStmt struct {
	NodeInfo
	IfExists bool
	Names    []*TableName
}

func (*DropTableStmt) stmtNode() {}
