package parser

import (
	"fmt"

	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/spi"
	"github.com/truffle-sql/truffle/pkg/token"
)

// Expression precedence parsing using Pratt parser with dialect-aware precedence.
//
// Precedence levels (from spi package):
//
//	PrecedenceNone       = 0
//	PrecedenceOr         = 1
//	PrecedenceAnd        = 2
//	PrecedenceNot        = 3
//	PrecedenceComparison = 4  (=, !=, <, >, <=, >=, IS, IN, BETWEEN, LIKE)
//	PrecedenceBitwise    = 5  (&, |, ^, <<, >>)
//	PrecedenceAddition   = 6  (+, -, ||)
//	PrecedenceMultiply   = 7  (*, /, %)
//	PrecedenceUnary      = 8  (-, +, ~)
//	PrecedencePostfix    = 9  (::)
//
// The parser uses dialect.Precedence() to look up operator precedence, so an
// operator the dialect does not declare (bitwise ops in ANSI, :: outside
// Postgres) ends the expression and surfaces as a syntax error upstream.

// parseExpression parses an expression using precedence climbing.
func (p *Parser) parseExpression() core.Expr {
	return p.parseExpressionWithPrecedence(spi.PrecedenceNone + 1)
}

// parseExpressionWithPrecedence implements Pratt parsing with dialect-aware precedence.
func (p *Parser) parseExpressionWithPrecedence(minPrecedence int) core.Expr {
	// Parse prefix (unary operators and primary expressions)
	left := p.parsePrefixExpr()
	if left == nil {
		return nil
	}

	// Parse infix operators while their precedence is >= minPrecedence
	for !p.failed() {
		prec := p.dialect.Precedence(p.token.Type)
		if prec == spi.PrecedenceNone || prec < minPrecedence {
			break
		}

		left = p.parseInfixExpr(left, prec)
		if left == nil {
			break
		}
	}

	return left
}

// parsePrefixExpr parses prefix expressions (unary operators and primary expressions).
func (p *Parser) parsePrefixExpr() core.Expr {
	start := p.token.Pos
	switch p.token.Type {
	case token.NOT:
		if p.checkPeek(token.EXISTS) {
			p.nextToken() // consume NOT
			return p.parseExistsExpr(start, true)
		}
		p.nextToken()
		expr := p.parseExpressionWithPrecedence(spi.PrecedenceNot)
		return &core.UnaryExpr{NodeInfo: core.NodeInfo{Span: p.spanFrom(start)}, Op: token.NOT, Expr: expr}

	case token.MINUS, token.PLUS, token.TILDE:
		op := p.token.Type
		p.nextToken()
		expr := p.parseExpressionWithPrecedence(spi.PrecedenceUnary)
		return &core.UnaryExpr{NodeInfo: core.NodeInfo{Span: p.spanFrom(start)}, Op: op, Expr: expr}

	default:
		return p.parsePrimary()
	}
}

// parseInfixExpr parses an infix expression given the left operand and current precedence.
func (p *Parser) parseInfixExpr(left core.Expr, prec int) core.Expr {
	// Handle special infix operators first
	switch p.token.Type {
	case token.NOT:
		// NOT IN, NOT BETWEEN, NOT LIKE
		return p.parseNotInfixExpr(left)

	case token.IS:
		return p.parseIsExpr(left)

	case token.IN:
		p.nextToken()
		return p.parseInExpr(left, false)

	case token.BETWEEN:
		p.nextToken()
		return p.parseBetweenExpr(left, false)

	case token.LIKE:
		p.nextToken()
		return p.parseLikeExpr(left, false)
	}

	// Check for custom infix handler (dialect-specific operators like ::)
	if handler := p.dialect.InfixHandler(p.token.Type); handler != nil {
		p.nextToken()
		result, err := handler(p, left)
		if err != nil {
			p.addErr(err)
			return nil
		}
		if result == nil {
			p.addError(fmt.Sprintf(ErrUnexpectedInExpr, describe(p.token)))
		}
		return result
	}

	// Standard binary operators
	op := p.token.Type
	p.nextToken()

	// Parse right operand with higher precedence (left-associative)
	right := p.parseExpressionWithPrecedence(prec + 1)
	if right == nil {
		return nil
	}

	return &core.BinaryExpr{
		NodeInfo: core.NodeInfo{Span: p.spanFrom(startOf(left))},
		Left:     left,
		Op:       op,
		Right:    right,
	}
}

// parseNotInfixExpr handles NOT as an infix modifier (NOT IN, NOT BETWEEN, NOT LIKE).
func (p *Parser) parseNotInfixExpr(left core.Expr) core.Expr {
	p.nextToken() // consume NOT

	switch p.token.Type {
	case token.IN:
		p.nextToken()
		return p.parseInExpr(left, true)

	case token.BETWEEN:
		p.nextToken()
		return p.parseBetweenExpr(left, true)

	case token.LIKE:
		p.nextToken()
		return p.parseLikeExpr(left, true)

	default:
		// NOT without a recognized following keyword - treat as error
		p.addError("expected IN, BETWEEN or LIKE after NOT")
		return nil
	}
}

// parseIsExpr parses:
//
//	IS [NOT] NULL
//	IS [NOT] TRUE | FALSE | UNKNOWN
//	IS [NOT] DISTINCT FROM expr
func (p *Parser) parseIsExpr(left core.Expr) core.Expr {
	start := startOf(left)
	p.nextToken() // consume IS

	isNot := p.match(token.NOT)

	switch {
	case p.match(token.NULL):
		return &core.IsNullExpr{NodeInfo: core.NodeInfo{Span: p.spanFrom(start)}, Expr: left, Not: isNot}

	case p.match(token.TRUE):
		return &core.IsBoolExpr{NodeInfo: core.NodeInfo{Span: p.spanFrom(start)}, Expr: left, Not: isNot, Value: core.TruthTrue}

	case p.match(token.FALSE):
		return &core.IsBoolExpr{NodeInfo: core.NodeInfo{Span: p.spanFrom(start)}, Expr: left, Not: isNot, Value: core.TruthFalse}

	case p.matchWord("unknown"):
		return &core.IsBoolExpr{NodeInfo: core.NodeInfo{Span: p.spanFrom(start)}, Expr: left, Not: isNot, Value: core.TruthUnknown}

	case p.match(token.DISTINCT):
		if !p.expect(token.FROM) {
			return nil
		}
		right := p.parseExpressionWithPrecedence(spi.PrecedenceComparison + 1)
		if right == nil {
			return nil
		}
		return &core.IsDistinctExpr{NodeInfo: core.NodeInfo{Span: p.spanFrom(start)}, Left: left, Right: right, Not: isNot}

	default:
		p.addError("expected NULL, TRUE, FALSE, UNKNOWN or DISTINCT FROM after IS")
		return nil
	}
}

// parseInExpr parses an IN expression. IN has already been consumed.
//
//	in_expr → expr [NOT] IN "(" (expr_list | select_stmt) ")"
func (p *Parser) parseInExpr(left core.Expr, not bool) core.Expr {
	if !p.expect(token.LPAREN) {
		return nil
	}
	in := &core.InExpr{Expr: left, Not: not}

	if p.check(token.SELECT) {
		in.Query = p.parseSelectStmt()
	} else {
		in.Values = p.parseExpressionList()
	}

	if !p.expect(token.RPAREN) {
		return nil
	}
	in.Span = p.spanFrom(startOf(left))
	return in
}

// parseBetweenExpr parses a BETWEEN expression.
func (p *Parser) parseBetweenExpr(left core.Expr, not bool) core.Expr {
	between := &core.BetweenExpr{Expr: left, Not: not}
	// Parse bounds above AND so the separator is not captured
	between.Low = p.parseExpressionWithPrecedence(spi.PrecedenceComparison + 1)
	if !p.expect(token.AND) {
		return nil
	}
	between.High = p.parseExpressionWithPrecedence(spi.PrecedenceComparison + 1)
	if between.Low == nil || between.High == nil {
		return nil
	}
	between.Span = p.spanFrom(startOf(left))
	return between
}

// parseLikeExpr parses a LIKE expression.
//
//	like_expr → expr [NOT] LIKE expr [ESCAPE expr]
func (p *Parser) parseLikeExpr(left core.Expr, not bool) core.Expr {
	like := &core.LikeExpr{Expr: left, Not: not}
	like.Pattern = p.parseExpressionWithPrecedence(spi.PrecedenceComparison + 1)
	if like.Pattern == nil {
		return nil
	}
	if p.matchWord("escape") {
		like.Escape = p.parseExpressionWithPrecedence(spi.PrecedenceComparison + 1)
		if like.Escape == nil {
			return nil
		}
	}
	like.Span = p.spanFrom(startOf(left))
	return like
}

// parseExpressionList parses a comma-separated list of expressions.
func (p *Parser) parseExpressionList() []core.Expr {
	var exprs []core.Expr

	for !p.failed() {
		expr := p.parseExpression()
		if expr == nil {
			break
		}
		exprs = append(exprs, expr)

		if !p.match(token.COMMA) {
			break
		}
	}

	return exprs
}
