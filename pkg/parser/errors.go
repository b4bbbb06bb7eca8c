package parser

import (
	"fmt"
	"strings"

	"github.com/truffle-sql/truffle/pkg/token"
)

// ParseError represents a parsing error with position information.
type ParseError struct {
	Pos     token.Position
	End     token.Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Span returns the source range of the offending token.
func (e *ParseError) Span() token.Span {
	end := e.End
	if !end.IsValid() {
		end = e.Pos
	}
	return token.Span{Start: e.Pos, End: end}
}

// Common error messages
const (
	ErrUnexpectedToken      = "unexpected token %s, expected %s"
	ErrUnexpectedInExpr     = "unexpected token in expression: %s"
	ErrUnterminatedString   = "unterminated string literal"
	ErrUnterminatedIdent    = "unterminated quoted identifier"
	ErrIllegalCharacter     = "illegal character %q"
	ErrUnsupportedStatement = "%s is not supported"
	ErrUnsupportedClause    = "%s is not supported in %s dialect"
	ErrClauseOrder          = "unexpected %s clause"
	ErrPlaceholderStyle     = "placeholder %s is not supported in %s dialect (use %s)"
	ErrMissingColumnType    = "column %q requires a type in %s dialect"
	ErrReturningNotAllowed  = "RETURNING is only supported on INSERT"
	ErrDerivedTable         = "derived tables in FROM are not supported"
	ErrNaturalWithCondition = "NATURAL JOIN cannot have %s clause"
	ErrCrossWithCondition   = "CROSS JOIN cannot have %s clause"
)

// illegalMessage describes a lexically invalid token.
func illegalMessage(tok token.Token) string {
	switch {
	case strings.HasPrefix(tok.Literal, "'"), strings.HasPrefix(strings.ToLower(tok.Literal), "x'"):
		return ErrUnterminatedString
	case strings.HasPrefix(tok.Literal, `"`):
		return ErrUnterminatedIdent
	default:
		return fmt.Sprintf(ErrIllegalCharacter, tok.Literal)
	}
}

// describe renders a token for error messages.
func describe(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of input"
	case token.IDENT, token.NUMBER, token.PARAM:
		return fmt.Sprintf("%s %q", tok.Type, tok.Literal)
	case token.STRING:
		return "string literal"
	default:
		return tok.Type.String()
	}
}
