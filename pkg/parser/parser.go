// Package parser provides SQL parsing with dialect-aware syntax validation.
//
// # Usage
//
//	stmts, err := parser.Parse("CREATE TABLE t (id INTEGER); SELECT id FROM t", d)
//	if err != nil {
//	    // stmts holds everything parsed before the failure
//	}
//
// The parser requires a dialect. Use the dialect registry to get one by name:
//
//	d, err := dialect.Lookup("sqlite")
//	stmts, err := parser.Parse(sql, d)
//
// # Grammar Overview
//
//	script        → [statement] (";" [statement])*
//	statement     → select_stmt | insert_stmt | update_stmt | delete_stmt
//	              | merge_stmt | create_table | alter_table | drop_table
//	select_stmt   → select_core [(UNION|INTERSECT|EXCEPT) [ALL] select_stmt]
//
// See each file for detailed grammar rules for that section.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/dialect"
	"github.com/truffle-sql/truffle/pkg/token"
)

// Parser parses SQL into an AST.
type Parser struct {
	lexer   *Lexer
	token   token.Token // current token
	peek    token.Token // lookahead token
	peek2   token.Token // second lookahead token
	prevEnd token.Position
	errors  []error
	dialect *dialect.Dialect // required

	maxParam int // highest placeholder index in the current statement
}

// New creates a new parser for the given SQL input. The dialect must not be nil.
func New(sql string, d *dialect.Dialect) *Parser {
	p := &Parser{
		lexer:   NewLexer(sql, d),
		dialect: d,
	}
	// Read three tokens to initialize current, peek, and peek2
	p.nextToken()
	p.nextToken()
	p.nextToken()
	p.prevEnd = p.token.Pos
	return p
}

// Parse parses a script of semicolon-separated statements. On a syntax error
// it returns the statements parsed before the failing one together with a
// *ParseError.
func Parse(sql string, d *dialect.Dialect) ([]core.Stmt, error) {
	if d == nil {
		return nil, dialect.ErrDialectRequired
	}
	p := New(sql, d)
	var stmts []core.Stmt
	for {
		stmt, err := p.Next()
		if err != nil {
			return stmts, err
		}
		if stmt == nil {
			return stmts, nil
		}
		stmts = append(stmts, stmt)
	}
}

// ParseStatement parses exactly one statement. A trailing ";" is allowed.
func ParseStatement(sql string, d *dialect.Dialect) (core.Stmt, error) {
	if d == nil {
		return nil, dialect.ErrDialectRequired
	}
	p := New(sql, d)
	stmt, err := p.Next()
	if err != nil {
		return nil, err
	}
	if stmt == nil {
		return nil, &ParseError{Pos: p.token.Pos, End: p.token.End, Message: "empty statement"}
	}
	for p.match(token.SEMI) {
	}
	if !p.check(token.EOF) {
		p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), "end of input"))
		return nil, p.errors[0]
	}
	return stmt, nil
}

// Next parses the next statement of the script. It returns (nil, nil) once
// the input is exhausted.
func (p *Parser) Next() (core.Stmt, error) {
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	for p.match(token.SEMI) {
	}
	if p.check(token.EOF) {
		return nil, nil
	}

	p.maxParam = 0
	stmt := p.parseStatement()
	if len(p.errors) == 0 && !p.check(token.SEMI) && !p.check(token.EOF) {
		p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), "; or end of input"))
	}
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	return stmt, nil
}

// Dialect returns the parser's dialect.
func (p *Parser) Dialect() *dialect.Dialect {
	return p.dialect
}

// parseStatement dispatches on the leading keyword.
func (p *Parser) parseStatement() core.Stmt {
	switch p.token.Type {
	case token.SELECT:
		return p.parseSelectStmt()
	case token.INSERT:
		return p.parseInsert()
	case token.UPDATE:
		return p.parseUpdate()
	case token.DELETE:
		return p.parseDelete()
	case token.MERGE:
		return p.parseMerge()
	case token.CREATE:
		return p.parseCreate()
	case token.ALTER:
		return p.parseAlter()
	case token.DROP:
		return p.parseDrop()
	case token.WITH:
		p.addError(fmt.Sprintf(ErrUnsupportedStatement, "WITH (common table expressions)"))
		return nil
	case token.LPAREN:
		if p.checkPeek(token.SELECT) {
			p.addError("parenthesized SELECT statements are not supported")
			return nil
		}
	}
	p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), "statement"))
	return nil
}

// ---------- Token Helpers ----------

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.prevEnd = p.token.End
	p.token = p.peek
	p.peek = p.peek2
	p.peek2 = p.lexer.NextToken()
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t token.TokenType) bool {
	return p.token.Type == t
}

// checkPeek returns true if the peek token is of the given type.
func (p *Parser) checkPeek(t token.TokenType) bool {
	return p.peek.Type == t
}

// checkPeek2 returns true if the peek2 token is of the given type.
func (p *Parser) checkPeek2(t token.TokenType) bool {
	return p.peek2.Type == t
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t token.TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise adds an error.
func (p *Parser) expect(t token.TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), t))
	return false
}

// checkWord reports whether the current token is the unreserved keyword
// word (compared case-insensitively). Soft keywords stay IDENT so they
// remain usable as column names.
func (p *Parser) checkWord(word string) bool {
	return p.token.Type == token.IDENT && !p.token.Quoted && strings.EqualFold(p.token.Literal, word)
}

func (p *Parser) checkPeekWord(word string) bool {
	return p.peek.Type == token.IDENT && !p.peek.Quoted && strings.EqualFold(p.peek.Literal, word)
}

// matchWord consumes the current token if it is the soft keyword word.
func (p *Parser) matchWord(word string) bool {
	if p.checkWord(word) {
		p.nextToken()
		return true
	}
	return false
}

// expectWord consumes the soft keyword word or adds an error.
func (p *Parser) expectWord(word string) bool {
	if p.matchWord(word) {
		return true
	}
	p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), strings.ToUpper(word)))
	return false
}

// failed reports whether an error has been recorded. Loops check it to stop
// early instead of cascading.
func (p *Parser) failed() bool {
	return len(p.errors) > 0
}

// addError adds a parse error at the current token. An error at an illegal
// token reports the lexical problem instead.
func (p *Parser) addError(msg string) {
	if p.token.Type == token.ILLEGAL {
		msg = illegalMessage(p.token)
	}
	p.errors = append(p.errors, &ParseError{
		Pos:     p.token.Pos,
		End:     p.token.End,
		Message: msg,
	})
}

// addErr records an error returned by a dialect handler, keeping its position.
func (p *Parser) addErr(err error) {
	var pe *ParseError
	if errors.As(err, &pe) {
		p.errors = append(p.errors, pe)
		return
	}
	p.addError(err.Error())
}

// spanFrom returns the span from start to the end of the last consumed token.
func (p *Parser) spanFrom(start token.Position) token.Span {
	return token.Span{Start: start, End: p.prevEnd}
}

// startOf returns the start position of a possibly nil node.
func startOf(n core.Node) token.Position {
	return core.SpanOf(n).Start
}

// ---------- Identifier Helpers ----------

// parseIdent parses a bare or quoted identifier.
func (p *Parser) parseIdent() *core.Ident {
	if !p.check(token.IDENT) {
		p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), "identifier"))
		return &core.Ident{NodeInfo: core.NodeInfo{Span: token.Span{Start: p.token.Pos, End: p.token.Pos}}}
	}
	id := &core.Ident{
		NodeInfo: core.NodeInfo{Span: token.Span{Start: p.token.Pos, End: p.token.End}},
		Name:     p.token.Literal,
	}
	p.nextToken()
	return id
}

// parseIdentList parses "(" ident ("," ident)* ")".
func (p *Parser) parseIdentList() []*core.Ident {
	if !p.expect(token.LPAREN) {
		return nil
	}
	var ids []*core.Ident
	for !p.failed() {
		ids = append(ids, p.parseIdent())
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN)
	return ids
}

// parseTableName parses [schema "."] name without an alias.
func (p *Parser) parseTableName() *core.TableName {
	start := p.token.Pos
	tn := &core.TableName{}
	tn.Name = p.parseIdent().Name
	if p.match(token.DOT) {
		tn.Schema = tn.Name
		tn.Name = p.parseIdent().Name
	}
	tn.Span = p.spanFrom(start)
	return tn
}

// parseOptionalAlias parses [AS] identifier. Only identifiers qualify for an
// implicit alias; reserved keywords are never taken.
func (p *Parser) parseOptionalAlias() string {
	if p.match(token.AS) {
		return p.parseIdent().Name
	}
	if p.check(token.IDENT) {
		name := p.token.Literal
		p.nextToken()
		return name
	}
	return ""
}

// parseParam parses a ? or $n placeholder and numbers it. A bare ? takes
// the next index after the highest one seen in the statement.
func (p *Parser) parseParam() core.Expr {
	tok := p.token
	if !p.dialect.AcceptsPlaceholder(tok.Literal) {
		p.addError(fmt.Sprintf(ErrPlaceholderStyle, tok.Literal, p.dialect.Name, p.dialect.Placeholder))
		return nil
	}
	p.nextToken()

	index := p.maxParam + 1
	if len(tok.Literal) > 1 {
		n, err := strconv.Atoi(tok.Literal[1:])
		if err != nil || n < 1 {
			p.errors = append(p.errors, &ParseError{Pos: tok.Pos, End: tok.End, Message: fmt.Sprintf("invalid placeholder %s", tok.Literal)})
			return nil
		}
		index = n
	}
	p.maxParam = max(p.maxParam, index)
	return &core.Param{
		NodeInfo: core.NodeInfo{Span: token.Span{Start: tok.Pos, End: tok.End}},
		Index:    index,
		Text:     tok.Literal,
	}
}

// ---------- spi.ParserOps Implementation ----------
// These methods implement the spi.ParserOps interface for dialect clause handlers.

// Token returns the current token (implements spi.ParserOps).
func (p *Parser) Token() token.Token {
	return p.token
}

// Peek returns the lookahead token (implements spi.ParserOps).
func (p *Parser) Peek() token.Token {
	return p.peek
}

// Match consumes the current token if it matches (implements spi.ParserOps).
func (p *Parser) Match(t token.TokenType) bool {
	return p.match(t)
}

// Expect consumes the current token if it matches, otherwise returns an error (implements spi.ParserOps).
func (p *Parser) Expect(t token.TokenType) error {
	if p.check(t) {
		p.nextToken()
		return nil
	}
	return &ParseError{
		Pos:     p.token.Pos,
		End:     p.token.End,
		Message: fmt.Sprintf(ErrUnexpectedToken, describe(p.token), t),
	}
}

// NextToken advances to the next token (implements spi.ParserOps).
func (p *Parser) NextToken() {
	p.nextToken()
}

// Check returns true if the current token is of the given type (implements spi.ParserOps).
func (p *Parser) Check(t token.TokenType) bool {
	return p.check(t)
}

// ParseExpression parses an expression (implements spi.ParserOps).
func (p *Parser) ParseExpression() (core.Expr, error) {
	n := len(p.errors)
	expr := p.parseExpression()
	if len(p.errors) > n {
		return nil, p.takeErrors(n)
	}
	return expr, nil
}

// ParseExpressionList parses a comma-separated list of expressions (implements spi.ParserOps).
func (p *Parser) ParseExpressionList() ([]core.Expr, error) {
	n := len(p.errors)
	exprs := p.parseExpressionList()
	if len(p.errors) > n {
		return nil, p.takeErrors(n)
	}
	return exprs, nil
}

// ParseOrderByList parses an ORDER BY list (implements spi.ParserOps).
func (p *Parser) ParseOrderByList() ([]core.OrderByItem, error) {
	n := len(p.errors)
	items := p.parseOrderByList()
	if len(p.errors) > n {
		return nil, p.takeErrors(n)
	}
	return items, nil
}

// ParseTypeName parses a type name such as VARCHAR(20) (implements spi.ParserOps).
func (p *Parser) ParseTypeName() (string, error) {
	n := len(p.errors)
	name := p.parseTypeName(false)
	if len(p.errors) > n {
		return "", p.takeErrors(n)
	}
	return name, nil
}

// AddError adds a parse error (implements spi.ParserOps).
func (p *Parser) AddError(msg string) {
	p.addError(msg)
}

// Position returns the current token's position (implements spi.ParserOps).
func (p *Parser) Position() token.Position {
	return p.token.Pos
}

// SpanFrom returns the span from start to the end of the last consumed
// token (implements spi.ParserOps).
func (p *Parser) SpanFrom(start token.Position) token.Span {
	return p.spanFrom(start)
}

// takeErrors removes the errors recorded since mark and returns the first.
// Handler errors are re-added by the caller with addErr.
func (p *Parser) takeErrors(mark int) error {
	err := p.errors[mark]
	p.errors = p.errors[:mark]
	return err
}
