package parser

import (
	"fmt"

	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/spi"
	"github.com/truffle-sql/truffle/pkg/token"
)

// SELECT statement parsing: set operations, SELECT list, clauses, ORDER BY.
//
// Grammar:
//
//	select_stmt   → select_body
//	select_body   → select_core [(UNION|INTERSECT|EXCEPT) [ALL|DISTINCT] select_body]
//	select_core   → SELECT [DISTINCT|ALL] select_list
//	                [FROM from_clause]
//	                [clauses based on dialect sequence]
//	select_list   → select_item ("," select_item)*
//	select_item   → "*" | table "." "*" | expr [[AS] identifier]
//	order_list    → order_item ("," order_item)*
//	order_item    → expr [ASC|DESC] [NULLS FIRST|LAST]
//
// The parser uses dialect.ClauseSequence() and dialect.ClauseDef() to parse
// clauses in the order the dialect declares and to reject a clause that
// appears out of order or twice.

// parseSelectStmt parses a complete SELECT statement.
func (p *Parser) parseSelectStmt() *core.SelectStmt {
	start := p.token.Pos
	stmt := &core.SelectStmt{}
	stmt.Body = p.parseSelectBody()
	stmt.Span = p.spanFrom(start)
	return stmt
}

// parseSelectBody parses a SELECT body with possible set operations.
func (p *Parser) parseSelectBody() *core.SelectBody {
	start := p.token.Pos
	body := &core.SelectBody{}
	body.Left = p.parseSelectCore()

	if !p.failed() {
		switch p.token.Type {
		case token.UNION:
			body.Op = core.SetOpUnion
		case token.INTERSECT:
			body.Op = core.SetOpIntersect
		case token.EXCEPT:
			body.Op = core.SetOpExcept
		}
	}
	if body.Op != core.SetOpNone {
		p.nextToken()
		if p.match(token.ALL) {
			body.All = true
		} else {
			p.match(token.DISTINCT) // optional
		}

		// Parse the right side (recursively for chained operations)
		body.Right = p.parseSelectBody()
	}

	body.Span = p.spanFrom(start)
	return body
}

// parseSelectCore parses a single SELECT clause.
func (p *Parser) parseSelectCore() *core.SelectCore {
	start := p.token.Pos
	p.expect(token.SELECT)
	sc := &core.SelectCore{}

	// DISTINCT / ALL
	if p.match(token.DISTINCT) {
		sc.Distinct = true
	} else {
		p.match(token.ALL) // optional, consume if present
	}

	sc.Columns = p.parseSelectList()

	if p.match(token.FROM) {
		sc.From = p.parseFromClause()
	}

	p.parseClauses(sc)

	sc.Span = p.spanFrom(start)
	return sc
}

// parseClauses parses optional clauses using the dialect's clause sequence
// and handlers. Each clause may appear once, in sequence order.
func (p *Parser) parseClauses(sc *core.SelectCore) {
	for _, clauseType := range p.dialect.ClauseSequence() {
		if p.failed() {
			return
		}
		if !p.check(clauseType) {
			continue
		}
		def, ok := p.dialect.ClauseDef(clauseType)
		if !ok {
			p.addError(fmt.Sprintf("no definition for clause %s in dialect %s", clauseType, p.dialect.Name))
			return
		}

		p.nextToken() // consume clause keyword

		result, err := def.Handler(p)
		if err != nil {
			p.addErr(err)
			return
		}
		p.assignToSlot(sc, def.Slot, result)
	}

	// A clause keyword still pending is out of order or repeated
	if !p.failed() && p.dialect.IsClauseToken(p.token.Type) {
		p.addError(fmt.Sprintf(ErrClauseOrder, p.token.Type))
	}
}

// assignToSlot stores the parsed clause result in the appropriate SelectCore field.
// This uses the declarative ClauseSlot enum to determine where to store data.
func (p *Parser) assignToSlot(sc *core.SelectCore, slot spi.ClauseSlot, result any) {
	if result == nil {
		return
	}

	switch slot {
	case spi.SlotWhere:
		if expr, ok := result.(core.Expr); ok {
			sc.Where = expr
		}

	case spi.SlotGroupBy:
		if exprs, ok := result.([]core.Expr); ok {
			sc.GroupBy = exprs
		}

	case spi.SlotHaving:
		if expr, ok := result.(core.Expr); ok {
			sc.Having = expr
		}

	case spi.SlotOrderBy:
		if items, ok := result.([]core.OrderByItem); ok {
			sc.OrderBy = items
		}

	case spi.SlotLimit:
		if expr, ok := result.(core.Expr); ok {
			sc.Limit = expr
		}

	case spi.SlotOffset:
		if expr, ok := result.(core.Expr); ok {
			sc.Offset = expr
		}
	}
}

// parseSelectList parses the list of SELECT items.
func (p *Parser) parseSelectList() []core.SelectItem {
	var items []core.SelectItem

	for !p.failed() {
		item := p.parseSelectItem()
		items = append(items, item)

		if !p.match(token.COMMA) {
			break
		}
	}

	return items
}

// parseSelectItem parses a single SELECT or RETURNING item.
func (p *Parser) parseSelectItem() core.SelectItem {
	start := p.token.Pos
	item := core.SelectItem{}

	// Check for * or table.*
	if p.check(token.STAR) {
		item.Star = true
		p.nextToken()
		item.Span = p.spanFrom(start)
		return item
	}

	// Check for table.* pattern using 3-token lookahead (no rollback needed)
	if p.check(token.IDENT) && p.checkPeek(token.DOT) && p.checkPeek2(token.STAR) {
		item.TableStar = p.token.Literal
		p.nextToken() // consume identifier
		p.nextToken() // consume DOT
		p.nextToken() // consume STAR
		item.Span = p.spanFrom(start)
		return item
	}

	item.Expr = p.parseExpression()
	item.Alias = p.parseOptionalAlias()
	item.Span = p.spanFrom(start)
	return item
}

// parseOrderByList parses a list of ORDER BY items.
func (p *Parser) parseOrderByList() []core.OrderByItem {
	var items []core.OrderByItem

	for !p.failed() {
		item := p.parseOrderByItem()
		items = append(items, item)

		if !p.match(token.COMMA) {
			break
		}
	}

	return items
}

// parseOrderByItem parses a single ORDER BY item.
func (p *Parser) parseOrderByItem() core.OrderByItem {
	item := core.OrderByItem{}
	item.Expr = p.parseExpression()

	// ASC / DESC
	if p.match(token.ASC) {
		item.Desc = false
	} else if p.match(token.DESC) {
		item.Desc = true
	}

	// NULLS FIRST / LAST
	if p.matchWord("nulls") {
		switch {
		case p.matchWord("first"):
			b := true
			item.NullsFirst = &b
		case p.matchWord("last"):
			b := false
			item.NullsFirst = &b
		default:
			p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), "FIRST or LAST"))
		}
	}

	return item
}
