package parser

import (
	"strings"

	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/token"
)

// Special expression parsing: CASE, CAST, EXISTS, parenthesized expressions,
// subqueries, type names.
//
// Grammar:
//
//	case_expr     → CASE [expr] (WHEN expr THEN expr)+ [ELSE expr] END
//	cast_expr     → CAST "(" expr AS type_name ")"
//	exists_expr   → [NOT] EXISTS "(" select_stmt ")"
//	paren_expr    → "(" expr ")" | "(" expr ("," expr)+ ")" | "(" select_stmt ")"
//	type_name     → identifier+ ["(" number ["," number] ")"] [WITH|WITHOUT TIME ZONE]

// typeWords are the words that may continue a type name outside column
// definitions ("double precision", "character varying").
var typeWords = map[string]bool{
	"precision": true,
	"varying":   true,
	"unsigned":  true,
}

// typeNameStop ends a multi-word column type.
var typeNameStop = map[string]bool{
	"collate":       true,
	"autoincrement": true,
	"generated":     true,
	"without":       true,
}

// parseCaseExpr parses a CASE expression.
func (p *Parser) parseCaseExpr() core.Expr {
	start := p.token.Pos
	p.expect(token.CASE)
	caseExpr := &core.CaseExpr{}

	// Simple CASE: CASE expr WHEN ...
	if !p.check(token.WHEN) {
		caseExpr.Operand = p.parseExpression()
	}

	// WHEN clauses
	for !p.failed() && p.match(token.WHEN) {
		when := core.WhenClause{}
		when.Condition = p.parseExpression()
		p.expect(token.THEN)
		when.Result = p.parseExpression()
		caseExpr.Whens = append(caseExpr.Whens, when)
	}
	if len(caseExpr.Whens) == 0 && !p.failed() {
		p.addError("CASE requires at least one WHEN clause")
	}

	// ELSE clause
	if p.match(token.ELSE) {
		caseExpr.Else = p.parseExpression()
	}

	if !p.expect(token.END) {
		return nil
	}
	caseExpr.Span = p.spanFrom(start)
	return caseExpr
}

// parseCastExpr parses a CAST expression.
func (p *Parser) parseCastExpr() core.Expr {
	start := p.token.Pos
	p.expect(token.CAST)
	p.expect(token.LPAREN)

	cast := &core.CastExpr{}
	cast.Expr = p.parseExpression()

	p.expect(token.AS)

	// Parse type name (can be qualified with parameters like VARCHAR(255))
	cast.TypeName = p.parseTypeName(false)

	if !p.expect(token.RPAREN) {
		return nil
	}
	cast.Span = p.spanFrom(start)
	return cast
}

// parseTypeName parses a type name with optional parameters. In column
// definitions any run of words forms the name (SQLite's "UNSIGNED BIG INT");
// elsewhere only the known continuation words are taken.
func (p *Parser) parseTypeName(column bool) string {
	if !p.check(token.IDENT) {
		p.addError("expected type name, got " + describe(p.token))
		return ""
	}

	words := []string{p.token.Literal}
	p.nextToken()

	for p.check(token.IDENT) && !p.token.Quoted {
		word := strings.ToLower(p.token.Literal)
		if (column && typeNameStop[word]) || (!column && !typeWords[word]) {
			break
		}
		words = append(words, p.token.Literal)
		p.nextToken()
	}
	typeName := strings.Join(words, " ")

	// Type parameters like VARCHAR(255) or DECIMAL(10, 2)
	if p.match(token.LPAREN) {
		var args []string
		for !p.failed() {
			neg := p.match(token.MINUS)
			if !p.check(token.NUMBER) && !p.check(token.IDENT) {
				p.addError("expected type parameter, got " + describe(p.token))
				return ""
			}
			arg := p.token.Literal
			if neg {
				arg = "-" + arg
			}
			args = append(args, arg)
			p.nextToken()

			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.RPAREN)
		typeName += "(" + strings.Join(args, ", ") + ")"
	}

	// WITH TIME ZONE / WITHOUT TIME ZONE
	if (p.check(token.WITH) || p.checkWord("without")) && p.checkPeekWord("time") {
		suffix := "with time zone"
		if p.checkWord("without") {
			suffix = "without time zone"
		}
		p.nextToken()
		p.nextToken()
		p.expectWord("zone")
		typeName += " " + suffix
	}

	return typeName
}

// parseParenExpr parses a parenthesized expression, row value, or subquery.
func (p *Parser) parseParenExpr() core.Expr {
	start := p.token.Pos
	p.expect(token.LPAREN)

	// Check if this is a subquery
	if p.check(token.SELECT) {
		subquery := &core.SubqueryExpr{Select: p.parseSelectStmt()}
		if !p.expect(token.RPAREN) {
			return nil
		}
		subquery.Span = p.spanFrom(start)
		return subquery
	}

	expr := p.parseExpression()
	if expr == nil {
		return nil
	}

	// Row value: (a, b, c)
	if p.check(token.COMMA) {
		tuple := &core.TupleExpr{Elems: []core.Expr{expr}}
		for !p.failed() && p.match(token.COMMA) {
			elem := p.parseExpression()
			if elem == nil {
				return nil
			}
			tuple.Elems = append(tuple.Elems, elem)
		}
		if !p.expect(token.RPAREN) {
			return nil
		}
		tuple.Span = p.spanFrom(start)
		return tuple
	}

	if !p.expect(token.RPAREN) {
		return nil
	}
	return &core.ParenExpr{NodeInfo: core.NodeInfo{Span: p.spanFrom(start)}, Expr: expr}
}

// parseExistsExpr parses an EXISTS expression. Any leading NOT has been
// consumed; start is where the expression began.
func (p *Parser) parseExistsExpr(start token.Position, not bool) core.Expr {
	p.expect(token.EXISTS)

	if !p.expect(token.LPAREN) {
		return nil
	}
	if !p.check(token.SELECT) {
		p.addError("expected SELECT after EXISTS (, got " + describe(p.token))
		return nil
	}
	exists := &core.ExistsExpr{Not: not, Select: p.parseSelectStmt()}
	if !p.expect(token.RPAREN) {
		return nil
	}
	exists.Span = p.spanFrom(start)
	return exists
}
