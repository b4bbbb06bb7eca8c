package parser

import (
	"fmt"
	"strings"

	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/token"
)

// Primary expression parsing: literals, column refs, function calls.
//
// Grammar:
//
//	primary       → literal | param | column_ref | func_call | paren_expr
//	              | case_expr | cast_expr | exists_expr | DEFAULT
//	literal       → NUMBER | STRING | BLOB | TRUE | FALSE | NULL
//	param         → "?" | "?" NUMBER | "$" NUMBER
//	column_ref    → [table "."] column | [schema "." table "."] column
//	func_call     → identifier "(" [DISTINCT] [expr_list | "*"] ")"
//	              | CURRENT_DATE | CURRENT_TIME | CURRENT_TIMESTAMP

// niladicFuncs are the functions that are called without parentheses.
var niladicFuncs = map[string]bool{
	"CURRENT_DATE":      true,
	"CURRENT_TIME":      true,
	"CURRENT_TIMESTAMP": true,
}

// parsePrimary parses primary expressions.
func (p *Parser) parsePrimary() core.Expr {
	tok := p.token
	span := token.Span{Start: tok.Pos, End: tok.End}

	switch tok.Type {
	case token.NUMBER:
		p.nextToken()
		return &core.Literal{NodeInfo: core.NodeInfo{Span: span}, Type: core.LiteralNumber, Value: tok.Literal}

	case token.STRING:
		p.nextToken()
		return &core.Literal{NodeInfo: core.NodeInfo{Span: span}, Type: core.LiteralString, Value: tok.Literal}

	case token.BLOB:
		p.nextToken()
		return &core.Literal{NodeInfo: core.NodeInfo{Span: span}, Type: core.LiteralBlob, Value: tok.Literal}

	case token.TRUE:
		p.nextToken()
		return &core.Literal{NodeInfo: core.NodeInfo{Span: span}, Type: core.LiteralBool, Value: "true"}

	case token.FALSE:
		p.nextToken()
		return &core.Literal{NodeInfo: core.NodeInfo{Span: span}, Type: core.LiteralBool, Value: "false"}

	case token.NULL:
		p.nextToken()
		return &core.Literal{NodeInfo: core.NodeInfo{Span: span}, Type: core.LiteralNull, Value: "null"}

	case token.DEFAULT:
		p.nextToken()
		return &core.DefaultExpr{NodeInfo: core.NodeInfo{Span: span}}

	case token.PARAM:
		return p.parseParam()

	case token.CASE:
		return p.parseCaseExpr()

	case token.CAST:
		return p.parseCastExpr()

	case token.EXISTS:
		return p.parseExistsExpr(tok.Pos, false)

	case token.IDENT:
		return p.parseIdentifierExpr()

	case token.LEFT, token.RIGHT:
		// LEFT(s, n) and RIGHT(s, n) string functions
		if p.checkPeek(token.LPAREN) {
			p.nextToken()
			return p.parseFuncCall(tok)
		}

	case token.LPAREN:
		return p.parseParenExpr()
	}

	p.addError(fmt.Sprintf(ErrUnexpectedInExpr, describe(tok)))
	return nil
}

// parseIdentifierExpr parses an identifier which could be a column ref or function call.
func (p *Parser) parseIdentifierExpr() core.Expr {
	first := p.token
	p.nextToken()

	// Check if it's a function call
	if p.check(token.LPAREN) && !first.Quoted {
		return p.parseFuncCall(first)
	}

	// Qualified column reference: table.column or schema.table.column
	if p.check(token.DOT) {
		return p.parseQualifiedColumnRef(first)
	}

	upper := strings.ToUpper(first.Literal)
	if !first.Quoted && niladicFuncs[upper] {
		return &core.FuncCall{
			NodeInfo: core.NodeInfo{Span: token.Span{Start: first.Pos, End: first.End}},
			Name:     upper,
			NoParens: true,
		}
	}

	// Simple column reference
	return &core.ColumnRef{
		NodeInfo: core.NodeInfo{Span: token.Span{Start: first.Pos, End: first.End}},
		Column:   first.Literal,
	}
}

// parseQualifiedColumnRef parses a qualified column reference.
func (p *Parser) parseQualifiedColumnRef(first token.Token) core.Expr {
	parts := []string{first.Literal}

	for p.match(token.DOT) {
		if !p.check(token.IDENT) {
			p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), "column name"))
			return nil
		}
		parts = append(parts, p.token.Literal)
		p.nextToken()
	}

	ref := &core.ColumnRef{NodeInfo: core.NodeInfo{Span: p.spanFrom(first.Pos)}}
	switch len(parts) {
	case 2:
		ref.Table = parts[0]
		ref.Column = parts[1]
	case 3:
		// schema.table.column resolves through the table
		ref.Table = parts[1]
		ref.Column = parts[2]
	default:
		p.addError(fmt.Sprintf("too many name parts in %s", strings.Join(parts, ".")))
		return nil
	}

	return ref
}

// parseFuncCall parses a function call. The current token is "(".
func (p *Parser) parseFuncCall(name token.Token) core.Expr {
	fn := &core.FuncCall{Name: strings.ToUpper(name.Literal)}

	p.expect(token.LPAREN)

	// Handle COUNT(*) or other aggregate(*)
	if p.check(token.STAR) {
		fn.Star = true
		p.nextToken()
	} else if !p.check(token.RPAREN) {
		if p.match(token.DISTINCT) {
			fn.Distinct = true
		} else {
			p.match(token.ALL)
		}

		fn.Args = p.parseExpressionList()
	}

	if !p.expect(token.RPAREN) {
		return nil
	}
	fn.Span = p.spanFrom(name.Pos)
	return fn
}
