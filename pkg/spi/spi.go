// Package spi is the narrow surface the parser hands to dialect code.
// Clause and operator handlers live in dialect packages, which cannot import
// the parser, so they drive it through ParserOps instead.
package spi

import (
	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/token"
)

// ParserOps is implemented by *parser.Parser.
type ParserOps interface {
	Token() token.Token
	Peek() token.Token
	Check(t token.TokenType) bool
	Match(t token.TokenType) bool
	Expect(t token.TokenType) error
	NextToken()

	ParseExpression() (core.Expr, error)
	ParseExpressionList() ([]core.Expr, error)
	ParseOrderByList() ([]core.OrderByItem, error)
	// ParseTypeName reads a type such as VARCHAR(20) or DOUBLE PRECISION
	// and returns it as written.
	ParseTypeName() (string, error)

	// AddError records a syntax error at the current token.
	AddError(msg string)
	Position() token.Position
	// SpanFrom returns the span from start to the end of the last consumed token.
	SpanFrom(start token.Position) token.Span
}

// ClauseHandler parses the body of a SELECT clause. The clause keyword has
// already been consumed.
type ClauseHandler func(p ParserOps) (any, error)

// InfixHandler parses the right side of a dialect operator such as the
// postgres :: cast. The operator has already been consumed.
type InfixHandler func(p ParserOps, left core.Expr) (core.Expr, error)

// Binding powers, lowest first. An operator at PrecedenceNone does not
// continue an expression.
const (
	PrecedenceNone = iota
	PrecedenceOr
	PrecedenceAnd
	PrecedenceNot
	PrecedenceComparison // = <> < > <= >= LIKE IN BETWEEN IS
	PrecedenceBitwise    // & | ^ << >>
	PrecedenceAddition   // + - ||
	PrecedenceMultiply   // * / %
	PrecedenceUnary
	PrecedencePostfix // ::
)

// ClauseSlot names the SelectCore field a clause result is stored in.
type ClauseSlot int

const (
	SlotWhere ClauseSlot = iota
	SlotGroupBy
	SlotHaving
	SlotOrderBy
	SlotLimit
	SlotOffset
)

var slotNames = [...]string{
	SlotWhere:   "WHERE",
	SlotGroupBy: "GROUP BY",
	SlotHaving:  "HAVING",
	SlotOrderBy: "ORDER BY",
	SlotLimit:   "LIMIT",
	SlotOffset:  "OFFSET",
}

func (s ClauseSlot) String() string {
	if s < 0 || int(s) >= len(slotNames) {
		return "UNKNOWN"
	}
	return slotNames[s]
}
