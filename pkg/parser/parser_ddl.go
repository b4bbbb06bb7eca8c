package parser

import (
	"fmt"
	"strings"

	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/spi"
	"github.com/truffle-sql/truffle/pkg/token"
)

// DDL parsing: CREATE TABLE, ALTER TABLE, DROP TABLE.
//
// Grammar:
//
//	create_table  → CREATE [TEMP|TEMPORARY] TABLE [IF NOT EXISTS] table_name
//	                "(" table_element ("," table_element)* ")" [table_options]
//	table_element → column_def | table_constraint
//	column_def    → identifier [type_name] column_constraint*
//	column_constraint
//	              → [CONSTRAINT identifier]
//	                ( NOT NULL | NULL | PRIMARY KEY [ASC|DESC] [AUTOINCREMENT]
//	                | UNIQUE | DEFAULT default_expr | CHECK "(" expr ")"
//	                | REFERENCES fk_target | COLLATE identifier
//	                | GENERATED ... AS (IDENTITY | "(" expr ")") )
//	table_constraint
//	              → [CONSTRAINT identifier]
//	                ( PRIMARY KEY ident_list | UNIQUE ident_list
//	                | FOREIGN KEY ident_list REFERENCES fk_target
//	                | CHECK "(" expr ")" )
//	fk_target     → table_name [ident_list] (ON (DELETE|UPDATE) ref_action)*
//	ref_action    → SET NULL | SET DEFAULT | CASCADE | RESTRICT | NO ACTION
//	alter_table   → ALTER TABLE table_name alter_action ("," alter_action)*
//	alter_action  → ADD [COLUMN] [IF NOT EXISTS] column_def | ADD table_constraint
//	              | DROP [COLUMN] [IF EXISTS] identifier [CASCADE|RESTRICT]
//	              | RENAME [COLUMN] identifier TO identifier | RENAME TO identifier
//	              | ALTER [COLUMN] identifier alter_column
//	alter_column  → [SET DATA] TYPE type_name [USING expr]
//	              | SET NOT NULL | DROP NOT NULL | SET DEFAULT default_expr | DROP DEFAULT
//	drop_table    → DROP TABLE [IF EXISTS] table_name ("," table_name)* [CASCADE|RESTRICT]

// parseCreate parses CREATE TABLE.
func (p *Parser) parseCreate() core.Stmt {
	start := p.token.Pos
	p.expect(token.CREATE)

	if !p.matchWord("temp") {
		p.matchWord("temporary")
	}
	if !p.check(token.TABLE) {
		what := strings.ToUpper(p.token.Literal)
		if p.check(token.UNIQUE) && p.checkPeekWord("index") {
			what = "UNIQUE INDEX"
		}
		p.addError(fmt.Sprintf(ErrUnsupportedStatement, "CREATE "+what))
		return nil
	}
	p.nextToken()

	stmt := &core.CreateTableStmt{}
	stmt.IfNotExists = p.parseIfNotExists()
	stmt.Name = p.parseTableName()

	if p.check(token.AS) {
		p.addError(fmt.Sprintf(ErrUnsupportedStatement, "CREATE TABLE ... AS"))
		return nil
	}
	if !p.expect(token.LPAREN) {
		return nil
	}
	for !p.failed() {
		if p.isTableConstraintStart() {
			stmt.Constraints = append(stmt.Constraints, p.parseTableConstraint())
		} else {
			stmt.Columns = append(stmt.Columns, p.parseColumnDef())
		}
		if !p.match(token.COMMA) {
			break
		}
	}
	if !p.expect(token.RPAREN) {
		return nil
	}

	// SQLite table options
	for !p.failed() {
		if p.matchWord("without") {
			p.expectWord("rowid")
		} else if !p.matchWord("strict") {
			break
		}
		if !p.match(token.COMMA) {
			break
		}
	}

	stmt.Span = p.spanFrom(start)
	return stmt
}

// parseIfNotExists parses an optional IF NOT EXISTS.
func (p *Parser) parseIfNotExists() bool {
	if !p.checkWord("if") {
		return false
	}
	p.nextToken()
	p.expect(token.NOT)
	p.expect(token.EXISTS)
	return true
}

// parseIfExists parses an optional IF EXISTS.
func (p *Parser) parseIfExists() bool {
	if !p.checkWord("if") {
		return false
	}
	p.nextToken()
	p.expect(token.EXISTS)
	return true
}

func (p *Parser) isTableConstraintStart() bool {
	switch p.token.Type {
	case token.CONSTRAINT, token.PRIMARY, token.UNIQUE, token.FOREIGN, token.CHECK:
		return true
	}
	return false
}

// parseColumnDef parses a column definition.
func (p *Parser) parseColumnDef() *core.ColumnDef {
	start := p.token.Pos
	col := &core.ColumnDef{}
	col.Name = p.parseIdent().Name

	if p.check(token.IDENT) && !p.checkWord("collate") {
		col.TypeName = p.parseTypeName(true)
	} else if !p.failed() && !p.dialect.AllowsUntypedColumns() {
		p.addError(fmt.Sprintf(ErrMissingColumnType, col.Name, p.dialect.Name))
		return col
	}

	for !p.failed() {
		c := p.parseColumnConstraint()
		if c == nil {
			break
		}
		col.Constraints = append(col.Constraints, c)
	}

	col.Span = p.spanFrom(start)
	return col
}

// parseColumnConstraint parses one column constraint, or returns nil when
// none follows.
func (p *Parser) parseColumnConstraint() *core.ColumnConstraint {
	start := p.token.Pos
	c := &core.ColumnConstraint{}
	if p.match(token.CONSTRAINT) {
		c.Name = p.parseIdent().Name
	}

	switch {
	case p.match(token.NOT):
		p.expect(token.NULL)
		c.Kind = core.ConstraintNotNull

	case p.match(token.NULL):
		c.Kind = core.ConstraintNull

	case p.match(token.PRIMARY):
		p.expectWord("key")
		c.Kind = core.ConstraintPrimaryKey
		if !p.match(token.ASC) {
			p.match(token.DESC)
		}
		p.matchWord("autoincrement")

	case p.match(token.UNIQUE):
		c.Kind = core.ConstraintUnique

	case p.match(token.DEFAULT):
		c.Kind = core.ConstraintDefault
		c.Default = p.parseDefaultExpr()

	case p.match(token.CHECK):
		c.Kind = core.ConstraintCheck
		c.Check = p.parseParenthesizedExpr()

	case p.match(token.REFERENCES):
		c.Kind = core.ConstraintForeignKey
		c.Ref = p.parseForeignKeyRef(start)

	case p.matchWord("generated"):
		// GENERATED {ALWAYS | BY DEFAULT} AS {IDENTITY | (expr) [STORED | VIRTUAL]}
		c.Kind = core.ConstraintDefault
		if !p.matchWord("always") {
			p.expect(token.BY)
			p.expect(token.DEFAULT)
		}
		p.expect(token.AS)
		if p.matchWord("identity") {
			if p.check(token.LPAREN) {
				p.skipParens()
			}
		} else {
			p.parseParenthesizedExpr()
			if !p.matchWord("stored") {
				p.matchWord("virtual")
			}
		}

	case p.matchWord("collate"):
		// Collation does not affect analysis; consume it and look further.
		p.parseIdent()
		if c.Name != "" {
			p.addError("expected constraint after CONSTRAINT name")
			return nil
		}
		return p.parseColumnConstraint()

	default:
		if c.Name != "" {
			p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), "constraint"))
		}
		return nil
	}

	c.Span = p.spanFrom(start)
	return c
}

// parseDefaultExpr parses a DEFAULT value. The operand is parsed above
// comparison precedence so a following NOT NULL is not taken as NOT IN.
func (p *Parser) parseDefaultExpr() core.Expr {
	return p.parseExpressionWithPrecedence(spi.PrecedenceBitwise)
}

// skipParens consumes a balanced parenthesized token run.
func (p *Parser) skipParens() {
	depth := 0
	for !p.check(token.EOF) {
		switch p.token.Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
		}
		p.nextToken()
		if depth == 0 {
			return
		}
	}
	p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), ")"))
}

// parseParenthesizedExpr parses "(" expr ")".
func (p *Parser) parseParenthesizedExpr() core.Expr {
	if !p.expect(token.LPAREN) {
		return nil
	}
	expr := p.parseExpression()
	p.expect(token.RPAREN)
	return expr
}

// parseTableConstraint parses a table-level constraint.
func (p *Parser) parseTableConstraint() *core.TableConstraint {
	start := p.token.Pos
	tc := &core.TableConstraint{}
	if p.match(token.CONSTRAINT) {
		tc.Name = p.parseIdent().Name
	}

	switch {
	case p.match(token.PRIMARY):
		p.expectWord("key")
		tc.Kind = core.ConstraintPrimaryKey
		tc.Columns = p.parseIdentList()

	case p.match(token.UNIQUE):
		tc.Kind = core.ConstraintUnique
		tc.Columns = p.parseIdentList()

	case p.match(token.FOREIGN):
		p.expectWord("key")
		tc.Kind = core.ConstraintForeignKey
		tc.Columns = p.parseIdentList()
		refStart := p.token.Pos
		if p.expect(token.REFERENCES) {
			tc.Ref = p.parseForeignKeyRef(refStart)
		}

	case p.match(token.CHECK):
		tc.Kind = core.ConstraintCheck
		tc.Check = p.parseParenthesizedExpr()

	default:
		p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), "PRIMARY KEY, UNIQUE, FOREIGN KEY or CHECK"))
	}

	tc.Span = p.spanFrom(start)
	return tc
}

// parseForeignKeyRef parses the target of REFERENCES. REFERENCES has been consumed.
func (p *Parser) parseForeignKeyRef(start token.Position) *core.ForeignKeyRef {
	ref := &core.ForeignKeyRef{}
	ref.Table = p.parseTableName()
	if p.check(token.LPAREN) {
		ref.Columns = p.parseIdentList()
	}

	for !p.failed() {
		switch {
		case p.check(token.ON) && p.checkPeek(token.DELETE):
			p.nextToken()
			p.nextToken()
			ref.OnDelete = p.parseRefAction()
		case p.check(token.ON) && p.checkPeek(token.UPDATE):
			p.nextToken()
			p.nextToken()
			ref.OnUpdate = p.parseRefAction()
		case p.matchWord("match"):
			p.parseIdent()
		case p.check(token.NOT) && p.checkPeekWord("deferrable"), p.checkWord("deferrable"):
			p.match(token.NOT)
			p.nextToken()
			if p.matchWord("initially") {
				if !p.matchWord("deferred") {
					p.expectWord("immediate")
				}
			}
		default:
			ref.Span = p.spanFrom(start)
			return ref
		}
	}
	return ref
}

// parseRefAction parses a referential action.
func (p *Parser) parseRefAction() core.RefAction {
	switch {
	case p.match(token.SET):
		if p.match(token.NULL) {
			return core.RefSetNull
		}
		if p.match(token.DEFAULT) {
			return core.RefSetDefault
		}
		p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), "NULL or DEFAULT"))
	case p.matchWord("cascade"):
		return core.RefCascade
	case p.matchWord("restrict"):
		return core.RefRestrict
	case p.matchWord("no"):
		p.expectWord("action")
		return core.RefNoAction
	default:
		p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), "referential action"))
	}
	return core.RefNoAction
}

// parseAlter parses ALTER TABLE.
func (p *Parser) parseAlter() core.Stmt {
	start := p.token.Pos
	p.expect(token.ALTER)
	if !p.check(token.TABLE) {
		p.addError(fmt.Sprintf(ErrUnsupportedStatement, "ALTER "+strings.ToUpper(p.token.Literal)))
		return nil
	}
	p.nextToken()
	p.matchWord("only")

	stmt := &core.AlterTableStmt{}
	stmt.Name = p.parseTableName()

	for !p.failed() {
		action := p.parseAlterAction()
		if action == nil {
			break
		}
		stmt.Actions = append(stmt.Actions, action)
		if !p.match(token.COMMA) {
			break
		}
	}

	stmt.Span = p.spanFrom(start)
	return stmt
}

// parseAlterAction parses one ALTER TABLE sub-operation.
func (p *Parser) parseAlterAction() core.AlterAction {
	start := p.token.Pos

	switch {
	case p.matchWord("add"):
		if p.isTableConstraintStart() {
			tc := p.parseTableConstraint()
			return &core.AddConstraintAction{NodeInfo: core.NodeInfo{Span: p.spanFrom(start)}, Constraint: tc}
		}
		p.matchWord("column")
		action := &core.AddColumnAction{}
		action.IfNotExists = p.parseIfNotExists()
		action.Column = p.parseColumnDef()
		action.Span = p.spanFrom(start)
		return action

	case p.match(token.DROP):
		if p.check(token.CONSTRAINT) {
			p.addError(fmt.Sprintf(ErrUnsupportedStatement, "ALTER TABLE ... DROP CONSTRAINT"))
			return nil
		}
		p.matchWord("column")
		action := &core.DropColumnAction{}
		action.IfExists = p.parseIfExists()
		action.Column = p.parseIdent()
		if !p.matchWord("cascade") {
			p.matchWord("restrict")
		}
		action.Span = p.spanFrom(start)
		return action

	case p.matchWord("rename"):
		if p.matchWord("to") {
			return &core.RenameTableAction{To: p.parseIdent(), NodeInfo: core.NodeInfo{Span: p.spanFrom(start)}}
		}
		p.matchWord("column")
		action := &core.RenameColumnAction{}
		action.Column = p.parseIdent()
		p.expectWord("to")
		action.To = p.parseIdent()
		action.Span = p.spanFrom(start)
		return action

	case p.match(token.ALTER):
		p.matchWord("column")
		return p.parseAlterColumn(start, p.parseIdent())

	default:
		p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), "ADD, DROP, RENAME or ALTER"))
		return nil
	}
}

// parseAlterColumn parses the body of ALTER COLUMN name.
func (p *Parser) parseAlterColumn(start token.Position, col *core.Ident) core.AlterAction {
	switch {
	case p.checkWord("type"), p.check(token.SET) && p.checkPeekWord("data"):
		if p.match(token.SET) {
			p.nextToken() // DATA
		}
		p.expectWord("type")
		action := &core.AlterColumnTypeAction{Column: col}
		action.TypeName = p.parseTypeName(true)
		if p.match(token.USING) {
			p.parseExpression()
		}
		action.Span = p.spanFrom(start)
		return action

	case p.match(token.SET):
		if p.match(token.NOT) {
			p.expect(token.NULL)
			return &core.AlterColumnNullAction{NodeInfo: core.NodeInfo{Span: p.spanFrom(start)}, Column: col, NotNull: true}
		}
		if p.expect(token.DEFAULT) {
			def := p.parseDefaultExpr()
			return &core.AlterColumnDefaultAction{NodeInfo: core.NodeInfo{Span: p.spanFrom(start)}, Column: col, Default: def}
		}
		return nil

	case p.match(token.DROP):
		if p.match(token.NOT) {
			p.expect(token.NULL)
			return &core.AlterColumnNullAction{NodeInfo: core.NodeInfo{Span: p.spanFrom(start)}, Column: col, NotNull: false}
		}
		if p.expect(token.DEFAULT) {
			return &core.AlterColumnDefaultAction{NodeInfo: core.NodeInfo{Span: p.spanFrom(start)}, Column: col}
		}
		return nil

	default:
		p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), "TYPE, SET or DROP"))
		return nil
	}
}

// parseDrop parses DROP TABLE.
func (p *Parser) parseDrop() core.Stmt {
	start := p.token.Pos
	p.expect(token.DROP)
	if !p.check(token.TABLE) {
		p.addError(fmt.Sprintf(ErrUnsupportedStatement, "DROP "+strings.ToUpper(p.token.Literal)))
		return nil
	}
	p.nextToken()

	stmt := &core.DropTableStmt{}
	stmt.IfExists = p.parseIfExists()
	for !p.failed() {
		stmt.Names = append(stmt.Names, p.parseTableName())
		if !p.match(token.COMMA) {
			break
		}
	}
	if !p.matchWord("cascade") {
		p.matchWord("restrict")
	}

	stmt.Span = p.spanFrom(start)
	return stmt
}
