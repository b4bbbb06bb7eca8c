package parser

import (
	"fmt"

	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/token"
)

// FROM clause parsing: table references and JOINs.
//
// Grammar:
//
//	from_clause   → table_ref (join)*
//	table_ref     → [schema "."] identifier [[AS] identifier]
//	join          → [NATURAL] join_type JOIN table_ref [ON expr | USING "(" ident_list ")"]
//	              | "," table_ref
//	join_type     → [INNER] | LEFT [OUTER] | RIGHT [OUTER] | FULL [OUTER] | CROSS

// parseFromClause parses the FROM clause.
func (p *Parser) parseFromClause() *core.FromClause {
	start := p.token.Pos
	from := &core.FromClause{}
	from.Source = p.parseTableRef()

	// Parse JOINs
	for !p.failed() {
		join := p.parseJoin()
		if join == nil {
			break
		}
		from.Joins = append(from.Joins, join)
	}

	from.Span = p.spanFrom(start)
	return from
}

// parseTableRef parses a table reference.
func (p *Parser) parseTableRef() core.TableRef {
	// Derived table (subquery)
	if p.check(token.LPAREN) {
		p.addError(ErrDerivedTable)
		return nil
	}

	return p.parseAliasedTableName()
}

// parseAliasedTableName parses a table name with an optional alias.
func (p *Parser) parseAliasedTableName() *core.TableName {
	table := p.parseTableName()
	table.Alias = p.parseOptionalAlias()
	table.Span = p.spanFrom(table.Pos())
	return table
}

// parseJoin parses a JOIN clause. Returns nil when no join follows.
func (p *Parser) parseJoin() *core.Join {
	start := p.token.Pos
	join := &core.Join{}

	// Comma join (implicit cross join)
	if p.match(token.COMMA) {
		join.Type = core.JoinComma
		join.Right = p.parseTableRef()
		join.Span = p.spanFrom(start)
		return join
	}

	// Check for NATURAL modifier first
	if p.match(token.NATURAL) {
		join.Natural = true
	}

	noCondition := false
	if def, ok := p.dialect.JoinTypeDef(p.token.Type); ok {
		join.Type = def.Type
		noCondition = def.NoCondition
		p.nextToken()

		// Handle optional modifier (OUTER for LEFT/RIGHT/FULL)
		if def.OptionalToken != 0 {
			p.match(def.OptionalToken)
		}
	} else {
		// Plain JOIN (no type keyword) = INNER JOIN
		if !p.check(token.JOIN) {
			if join.Natural {
				p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), "JOIN"))
			}
			return nil
		}
		join.Type = core.JoinInner
	}

	if !p.expect(token.JOIN) {
		return nil
	}

	join.Right = p.parseTableRef()
	if join.Right == nil {
		return nil
	}
	p.parseJoinCondition(join, noCondition)
	join.Span = p.spanFrom(start)
	return join
}

// parseJoinCondition handles ON/USING/NATURAL validation.
func (p *Parser) parseJoinCondition(join *core.Join, noCondition bool) {
	hasCondition := p.check(token.ON) || p.check(token.USING)
	switch {
	case join.Natural:
		if hasCondition {
			p.addError(fmt.Sprintf(ErrNaturalWithCondition, p.token.Type))
		}
	case noCondition:
		if hasCondition {
			p.addError(fmt.Sprintf(ErrCrossWithCondition, p.token.Type))
		}
	case p.match(token.ON):
		join.Condition = p.parseExpression()
	case p.match(token.USING):
		join.Using = p.parseIdentList()
	}
}
