package core

import "github.com/truffle-sql/truffle/pkg/token"

// ---------- Expression Types ----------

// ColumnRef represents a column reference (possibly qualified).
type ColumnRef struct {
	NodeInfo
	Table  string // optional table/alias qualifier
	Column string
}

func (*ColumnRef) exprNode() {}

// Literal represents a literal value.
type Literal struct {
	NodeInfo
	Type  LiteralType
	Value string
}

func (*Literal) exprNode() {}

// LiteralType represents the type of a literal.
type LiteralType int

// LiteralType constants for SQL literal value types.
const (
	LiteralNumber LiteralType = iota
	LiteralString
	LiteralBool
	LiteralNull
	LiteralBlob
)

// String returns the literal type name.
func (t LiteralType) String() string {
	switch t {
	case LiteralNumber:
		return "number"
	case LiteralString:
		return "string"
	case LiteralBool:
		return "boolean"
	case LiteralNull:
		return "null"
	case LiteralBlob:
		return "blob"
	default:
		return "unknown"
	}
}

// Param represents a query placeholder: ? or $n.
type Param struct {
	NodeInfo
	Index int    // 1-based; positional for ?, explicit for $n
	Text  string // source text
}

func (*Param) exprNode() {}

// BinaryExpr represents a binary expression.
type BinaryExpr struct {
	NodeInfo
	Left  Expr
	Op    token.TokenType
	Right Expr
}

func (*BinaryExpr) exprNode() {}

// UnaryExpr represents a unary expression.
type UnaryExpr struct {
	NodeInfo
	Op   token.TokenType
	Expr Expr
}

func (*UnaryExpr) exprNode() {}

// FuncCall represents a function call.
type FuncCall struct {
	NodeInfo
	Name     string
	Distinct bool
	Args     []Expr
	Star     bool // COUNT(*)
	NoParens bool // CURRENT_DATE and friends
}

func (*FuncCall) exprNode() {}

// CaseExpr represents a CASE expression.
type CaseExpr struct {
	NodeInfo
	Operand Expr // CASE operand WHEN... (optional)
	Whens   []WhenClause
	Else    Expr
}

func (*CaseExpr) exprNode() {}

// WhenClause represents a WHEN clause in CASE expression.
type WhenClause struct {
	Condition Expr
	Result    Expr
}

// CastExpr represents CAST(expr AS type) or expr::type.
type CastExpr struct {
	NodeInfo
	Expr     Expr
	TypeName string
}

func (*CastExpr) exprNode() {}

// InExpr represents an IN expression.
type InExpr struct {
	NodeInfo
	Expr   Expr
	Not    bool
	Values []Expr      // IN (1, 2, 3)
	Query  *SelectStmt // IN (SELECT ...)
}

func (*InExpr) exprNode() {}

// BetweenExpr represents a BETWEEN expression.
type BetweenExpr struct {
	NodeInfo
	Expr Expr
	Not  bool
	Low  Expr
	High Expr
}

func (*BetweenExpr) exprNode() {}

// IsNullExpr represents an IS NULL expression.
type IsNullExpr struct {
	NodeInfo
	Expr Expr
	Not  bool
}

func (*IsNullExpr) exprNode() {}

// Truth is the right-hand side of an IS [NOT] TRUE/FALSE/UNKNOWN test.
type Truth int

// Truth values.
const (
	TruthTrue Truth = iota
	TruthFalse
	TruthUnknown
)

// String returns the SQL keyword for the truth value.
func (t Truth) String() string {
	switch t {
	case TruthTrue:
		return "TRUE"
	case TruthFalse:
		return "FALSE"
	default:
		return "UNKNOWN"
	}
}

// IsBoolExpr represents an IS [NOT] TRUE/FALSE/UNKNOWN expression.
type IsBoolExpr struct {
	NodeInfo
	Expr  Expr
	Not   bool
	Value Truth
}

func (*IsBoolExpr) exprNode() {}

// IsDistinctExpr represents IS [NOT] DISTINCT FROM.
type IsDistinctExpr struct {
	NodeInfo
	Left  Expr
	Right Expr
	Not   bool
}

func (*IsDistinctExpr) exprNode() {}

// LikeExpr represents a LIKE expression.
type LikeExpr struct {
	NodeInfo
	Expr    Expr
	Not     bool
	Pattern Expr
	Escape  Expr // optional ESCAPE expression
}

func (*LikeExpr) exprNode() {}

// ParenExpr represents a parenthesized expression.
type ParenExpr struct {
	NodeInfo
	Expr Expr
}

func (*ParenExpr) exprNode() {}

// TupleExpr represents a row value: (a, b, c).
type TupleExpr struct {
	NodeInfo
	Elems []Expr
}

func (*TupleExpr) exprNode() {}

// SubqueryExpr represents a scalar subquery used as an expression.
type SubqueryExpr struct {
	NodeInfo
	Select *SelectStmt
}

func (*SubqueryExpr) exprNode() {}

// ExistsExpr represents an EXISTS expression.
type ExistsExpr struct {
	NodeInfo
	Not    bool
	Select *SelectStmt
}

func (*ExistsExpr) exprNode() {}

// DefaultExpr is the DEFAULT keyword used as a value in VALUES or SET.
type DefaultExpr struct {
	NodeInfo
}

func (*DefaultExpr) exprNode() {}

// Unparen strips any number of enclosing parentheses.
func Unparen(e Expr) Expr {
	for {
		p, ok := e.(*ParenExpr)
		if !ok {
			return e
		}
		e = p.Expr
	}
}
