package dialect

// This file contains the "toolbox" of reusable clause, operator and join
// definitions that dialects compose from.

import (
	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/spi"
	"github.com/truffle-sql/truffle/pkg/token"
)

// --- Standard Clause Definitions ---

var (
	// StandardWhere is the standard WHERE clause definition.
	StandardWhere = ClauseDef{Token: token.WHERE, Handler: ParseWhere, Slot: spi.SlotWhere}

	// StandardGroupBy is the standard GROUP BY clause definition.
	StandardGroupBy = ClauseDef{Token: token.GROUP, Handler: ParseGroupBy, Slot: spi.SlotGroupBy}

	// StandardHaving is the standard HAVING clause definition.
	StandardHaving = ClauseDef{Token: token.HAVING, Handler: ParseHaving, Slot: spi.SlotHaving}

	// StandardOrderBy is the standard ORDER BY clause definition.
	StandardOrderBy = ClauseDef{Token: token.ORDER, Handler: ParseOrderBy, Slot: spi.SlotOrderBy}

	// StandardLimit is the standard LIMIT clause definition.
	StandardLimit = ClauseDef{Token: token.LIMIT, Handler: ParseLimit, Slot: spi.SlotLimit}

	// StandardOffset is the standard OFFSET clause definition.
	StandardOffset = ClauseDef{Token: token.OFFSET, Handler: ParseOffset, Slot: spi.SlotOffset}
)

// StandardSelectClauses is the typical ANSI SELECT clause sequence.
var StandardSelectClauses = []ClauseDef{
	StandardWhere,
	StandardGroupBy,
	StandardHaving,
	StandardOrderBy,
	StandardLimit,
	StandardOffset,
}

// ParseWhere handles the WHERE clause.
// The WHERE keyword has already been consumed.
func ParseWhere(p spi.ParserOps) (any, error) {
	return p.ParseExpression()
}

// ParseGroupBy handles the GROUP BY clause.
// The GROUP keyword has already been consumed.
func ParseGroupBy(p spi.ParserOps) (any, error) {
	if err := p.Expect(token.BY); err != nil {
		return nil, err
	}
	return p.ParseExpressionList()
}

// ParseHaving handles the HAVING clause.
func ParseHaving(p spi.ParserOps) (any, error) {
	return p.ParseExpression()
}

// ParseOrderBy handles the ORDER BY clause.
func ParseOrderBy(p spi.ParserOps) (any, error) {
	if err := p.Expect(token.BY); err != nil {
		return nil, err
	}
	return p.ParseOrderByList()
}

// ParseLimit handles the LIMIT clause.
func ParseLimit(p spi.ParserOps) (any, error) {
	return p.ParseExpression()
}

// ParseOffset handles the OFFSET clause.
func ParseOffset(p spi.ParserOps) (any, error) {
	return p.ParseExpression()
}

// ANSIOperators contains standard SQL operators with their precedence.
var ANSIOperators = []OperatorDef{
	// Logical operators (lowest precedence)
	{Token: token.OR, Precedence: spi.PrecedenceOr},
	{Token: token.AND, Precedence: spi.PrecedenceAnd},

	// Comparison operators
	{Token: token.EQ, Precedence: spi.PrecedenceComparison},
	{Token: token.NE, Precedence: spi.PrecedenceComparison},
	{Token: token.LT, Precedence: spi.PrecedenceComparison},
	{Token: token.GT, Precedence: spi.PrecedenceComparison},
	{Token: token.LE, Precedence: spi.PrecedenceComparison},
	{Token: token.GE, Precedence: spi.PrecedenceComparison},
	{Token: token.LIKE, Precedence: spi.PrecedenceComparison},
	{Token: token.IN, Precedence: spi.PrecedenceComparison},
	{Token: token.BETWEEN, Precedence: spi.PrecedenceComparison},
	{Token: token.IS, Precedence: spi.PrecedenceComparison},
	{Token: token.NOT, Precedence: spi.PrecedenceComparison}, // NOT IN / NOT LIKE / NOT BETWEEN

	// Arithmetic operators
	{Token: token.PLUS, Precedence: spi.PrecedenceAddition},
	{Token: token.MINUS, Precedence: spi.PrecedenceAddition},
	{Token: token.DPIPE, Precedence: spi.PrecedenceAddition},

	// Multiplicative operators (highest precedence for binary ops)
	{Token: token.STAR, Precedence: spi.PrecedenceMultiply},
	{Token: token.SLASH, Precedence: spi.PrecedenceMultiply},
	{Token: token.PERCENT, Precedence: spi.PrecedenceMultiply},
}

// BitwiseOperators contains the integer bit operators.
var BitwiseOperators = []OperatorDef{
	{Token: token.AMP, Precedence: spi.PrecedenceBitwise},
	{Token: token.PIPE, Precedence: spi.PrecedenceBitwise},
	{Token: token.CARET, Precedence: spi.PrecedenceBitwise},
	{Token: token.SHL, Precedence: spi.PrecedenceBitwise},
	{Token: token.SHR, Precedence: spi.PrecedenceBitwise},
}

// ANSIJoinTypes contains standard SQL join types.
var ANSIJoinTypes = []JoinTypeDef{
	{Token: token.INNER, Type: core.JoinInner},
	{Token: token.LEFT, Type: core.JoinLeft, OptionalToken: token.OUTER},
	{Token: token.RIGHT, Type: core.JoinRight, OptionalToken: token.OUTER},
	{Token: token.FULL, Type: core.JoinFull, OptionalToken: token.OUTER},
	{Token: token.CROSS, Type: core.JoinCross, NoCondition: true},
}

// StandardAggregates are the aggregate functions every dialect knows.
var StandardAggregates = []string{"count", "sum", "avg", "min", "max"}
