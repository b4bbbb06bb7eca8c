package parser

import (
	"fmt"

	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/token"
)

// DML parsing: INSERT (with upsert), UPDATE, DELETE, MERGE.
//
// Grammar:
//
//	insert_stmt   → INSERT [OR identifier] INTO table_name [AS identifier] [ident_list]
//	                (VALUES row ("," row)* | select_stmt | DEFAULT VALUES)
//	                [on_conflict] [RETURNING select_list]
//	row           → "(" expr_list ")"
//	on_conflict   → ON CONFLICT [ident_list] DO (NOTHING | UPDATE SET assignments [WHERE expr])
//	update_stmt   → UPDATE table_ref SET assignments [FROM from_clause] [WHERE expr]
//	delete_stmt   → DELETE FROM table_ref [USING from_clause] [WHERE expr]
//	merge_stmt    → MERGE INTO table_ref USING table_ref ON expr merge_when+
//	merge_when    → WHEN [NOT] MATCHED [AND expr] THEN merge_action
//	merge_action  → UPDATE SET assignments | DELETE | DO NOTHING
//	              | INSERT [ident_list] VALUES row
//	assignments   → identifier "=" expr ("," identifier "=" expr)*
//
// RETURNING is accepted on INSERT only.

// parseInsert parses INSERT.
func (p *Parser) parseInsert() core.Stmt {
	start := p.token.Pos
	p.expect(token.INSERT)

	// SQLite conflict resolution: INSERT OR REPLACE / IGNORE / ...
	if p.match(token.OR) {
		p.parseIdent()
	}
	if !p.expect(token.INTO) {
		return nil
	}

	stmt := &core.InsertStmt{}
	stmt.Table = p.parseTableName()
	if p.match(token.AS) {
		stmt.Table.Alias = p.parseIdent().Name
	}

	if p.check(token.LPAREN) {
		stmt.Columns = p.parseIdentList()
	}

	switch {
	case p.match(token.VALUES):
		for !p.failed() {
			stmt.Values = append(stmt.Values, p.parseValuesRow())
			if !p.match(token.COMMA) {
				break
			}
		}
	case p.check(token.SELECT):
		stmt.Select = p.parseSelectStmt()
	case p.match(token.DEFAULT):
		p.expect(token.VALUES)
		stmt.DefaultValues = true
	default:
		p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), "VALUES, SELECT or DEFAULT VALUES"))
		return nil
	}

	if !p.failed() && p.check(token.ON) && p.checkPeekWord("conflict") {
		stmt.OnConflict = p.parseOnConflict()
	}

	if !p.failed() && p.match(token.RETURNING) {
		stmt.Returning = p.parseSelectList()
	}

	stmt.Span = p.spanFrom(start)
	return stmt
}

// parseValuesRow parses "(" expr_list ")".
func (p *Parser) parseValuesRow() []core.Expr {
	if !p.expect(token.LPAREN) {
		return nil
	}
	row := p.parseExpressionList()
	p.expect(token.RPAREN)
	return row
}

// parseOnConflict parses the upsert clause.
func (p *Parser) parseOnConflict() *core.OnConflict {
	start := p.token.Pos
	p.expect(token.ON)
	p.expectWord("conflict")

	oc := &core.OnConflict{}
	if p.check(token.LPAREN) {
		oc.Target = p.parseIdentList()
	}

	p.expectWord("do")
	switch {
	case p.matchWord("nothing"):
		oc.DoNothing = true
	case p.match(token.UPDATE):
		p.expect(token.SET)
		oc.Set = p.parseAssignments()
		if p.match(token.WHERE) {
			oc.Where = p.parseExpression()
		}
	default:
		p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), "NOTHING or UPDATE"))
	}

	oc.Span = p.spanFrom(start)
	return oc
}

// parseAssignments parses a SET list.
func (p *Parser) parseAssignments() []*core.Assignment {
	var out []*core.Assignment
	for !p.failed() {
		start := p.token.Pos
		a := &core.Assignment{}
		a.Column = p.parseIdent()
		if p.check(token.DOT) {
			p.addError("qualified column names are not allowed in SET")
			return out
		}
		p.expect(token.EQ)
		a.Value = p.parseExpression()
		a.Span = p.spanFrom(start)
		out = append(out, a)
		if !p.match(token.COMMA) {
			break
		}
	}
	return out
}

// rejectReturning reports RETURNING outside INSERT.
func (p *Parser) rejectReturning() {
	if !p.failed() && p.check(token.RETURNING) {
		p.addError(ErrReturningNotAllowed)
	}
}

// parseUpdate parses UPDATE.
func (p *Parser) parseUpdate() core.Stmt {
	start := p.token.Pos
	p.expect(token.UPDATE)

	stmt := &core.UpdateStmt{}
	stmt.Table = p.parseAliasedTableName()
	if !p.expect(token.SET) {
		return nil
	}
	stmt.Set = p.parseAssignments()

	if !p.failed() && p.match(token.FROM) {
		stmt.From = p.parseFromClause()
	}
	if !p.failed() && p.match(token.WHERE) {
		stmt.Where = p.parseExpression()
	}
	p.rejectReturning()

	stmt.Span = p.spanFrom(start)
	return stmt
}

// parseDelete parses DELETE.
func (p *Parser) parseDelete() core.Stmt {
	start := p.token.Pos
	p.expect(token.DELETE)
	if !p.expect(token.FROM) {
		return nil
	}

	stmt := &core.DeleteStmt{}
	stmt.Table = p.parseAliasedTableName()

	if !p.failed() && p.match(token.USING) {
		stmt.Using = p.parseFromClause()
	}
	if !p.failed() && p.match(token.WHERE) {
		stmt.Where = p.parseExpression()
	}
	p.rejectReturning()

	stmt.Span = p.spanFrom(start)
	return stmt
}

// parseMerge parses MERGE.
func (p *Parser) parseMerge() core.Stmt {
	start := p.token.Pos
	p.expect(token.MERGE)
	if !p.expect(token.INTO) {
		return nil
	}

	stmt := &core.MergeStmt{}
	stmt.Target = p.parseAliasedTableName()
	if !p.expect(token.USING) {
		return nil
	}
	if p.check(token.LPAREN) {
		p.addError(ErrDerivedTable)
		return nil
	}
	stmt.Source = p.parseAliasedTableName()
	if !p.expect(token.ON) {
		return nil
	}
	stmt.On = p.parseExpression()

	for !p.failed() && p.check(token.WHEN) {
		stmt.Clauses = append(stmt.Clauses, p.parseMergeClause())
	}
	if len(stmt.Clauses) == 0 && !p.failed() {
		p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), "WHEN"))
	}

	stmt.Span = p.spanFrom(start)
	return stmt
}

// parseMergeClause parses WHEN [NOT] MATCHED [AND cond] THEN action.
func (p *Parser) parseMergeClause() *core.MergeClause {
	start := p.token.Pos
	p.expect(token.WHEN)

	mc := &core.MergeClause{Matched: !p.match(token.NOT)}
	p.expectWord("matched")
	if p.match(token.AND) {
		mc.Condition = p.parseExpression()
	}
	p.expect(token.THEN)

	switch {
	case p.match(token.UPDATE):
		mc.Action = core.MergeUpdate
		p.expect(token.SET)
		mc.Set = p.parseAssignments()
	case p.match(token.DELETE):
		mc.Action = core.MergeDelete
	case p.matchWord("do"):
		mc.Action = core.MergeDoNothing
		p.expectWord("nothing")
	case p.match(token.INSERT):
		mc.Action = core.MergeInsert
		if p.check(token.LPAREN) {
			mc.Columns = p.parseIdentList()
		}
		p.expect(token.VALUES)
		mc.Values = p.parseValuesRow()
	default:
		p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), "UPDATE, DELETE, INSERT or DO NOTHING"))
	}

	mc.Span = p.spanFrom(start)
	return mc
}
