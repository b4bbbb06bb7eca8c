// Package token defines the token types for SQL parsing.
//
// Core tokens are defined as constants (IDs 0-999) for switch performance.
// Dialect-specific tokens are registered dynamically via Register().
package token

import "fmt"

// TokenType represents the type of a lexical token.
//
//nolint:revive // Accept stutter as token.TokenType is clear and widely used
type TokenType int32

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Literals
	IDENT  // identifier
	NUMBER // 123, 45.67, 1e10
	STRING // 'hello'
	BLOB   // X'0AFF'
	PARAM  // ? or $1

	// Operators
	PLUS     // +
	MINUS    // -
	STAR     // *
	SLASH    // /
	PERCENT  // %
	DPIPE    // ||
	EQ       // =
	NE       // != or <>
	LT       // <
	GT       // >
	LE       // <=
	GE       // >=
	AMP      // &
	PIPE     // |
	CARET    // ^
	TILDE    // ~
	SHL      // <<
	SHR      // >>
	DOT      // .
	COMMA    // ,
	SEMI     // ;
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]

	// Reserved keywords (alphabetical)
	ALL
	ALTER
	AND
	AS
	ASC
	BETWEEN
	BY
	CASE
	CAST
	CHECK
	CONSTRAINT
	CREATE
	CROSS
	DEFAULT
	DELETE
	DESC
	DISTINCT
	DROP
	ELSE
	END
	EXCEPT
	EXISTS
	FALSE
	FOREIGN
	FROM
	FULL
	GROUP
	HAVING
	IN
	INNER
	INSERT
	INTERSECT
	INTO
	IS
	JOIN
	LEFT
	LIKE
	LIMIT
	MERGE
	NATURAL
	NOT
	NULL
	OFFSET
	ON
	OR
	ORDER
	OUTER
	PRIMARY
	REFERENCES
	RETURNING
	RIGHT
	SELECT
	SET
	TABLE
	THEN
	TRUE
	UNION
	UNIQUE
	UPDATE
	USING
	VALUES
	WHEN
	WHERE
	WITH

	// Sentinel - dynamic tokens start after this
	maxBuiltin TokenType = 999
)

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := dynamicName(t); ok {
		return name
	}
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

// tokenNames maps builtin token types to their string representations.
var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",
	STRING: "STRING",
	BLOB:   "BLOB",
	PARAM:  "PARAM",

	PLUS:     "+",
	MINUS:    "-",
	STAR:     "*",
	SLASH:    "/",
	PERCENT:  "%",
	DPIPE:    "||",
	EQ:       "=",
	NE:       "!=",
	LT:       "<",
	GT:       ">",
	LE:       "<=",
	GE:       ">=",
	AMP:      "&",
	PIPE:     "|",
	CARET:    "^",
	TILDE:    "~",
	SHL:      "<<",
	SHR:      ">>",
	DOT:      ".",
	COMMA:    ",",
	SEMI:     ";",
	LPAREN:   "(",
	RPAREN:   ")",
	LBRACKET: "[",
	RBRACKET: "]",

	ALL:        "ALL",
	ALTER:      "ALTER",
	AND:        "AND",
	AS:         "AS",
	ASC:        "ASC",
	BETWEEN:    "BETWEEN",
	BY:         "BY",
	CASE:       "CASE",
	CAST:       "CAST",
	CHECK:      "CHECK",
	CONSTRAINT: "CONSTRAINT",
	CREATE:     "CREATE",
	CROSS:      "CROSS",
	DEFAULT:    "DEFAULT",
	DELETE:     "DELETE",
	DESC:       "DESC",
	DISTINCT:   "DISTINCT",
	DROP:       "DROP",
	ELSE:       "ELSE",
	END:        "END",
	EXCEPT:     "EXCEPT",
	EXISTS:     "EXISTS",
	FALSE:      "FALSE",
	FOREIGN:    "FOREIGN",
	FROM:       "FROM",
	FULL:       "FULL",
	GROUP:      "GROUP",
	HAVING:     "HAVING",
	IN:         "IN",
	INNER:      "INNER",
	INSERT:     "INSERT",
	INTERSECT:  "INTERSECT",
	INTO:       "INTO",
	IS:         "IS",
	JOIN:       "JOIN",
	LEFT:       "LEFT",
	LIKE:       "LIKE",
	LIMIT:      "LIMIT",
	MERGE:      "MERGE",
	NATURAL:    "NATURAL",
	NOT:        "NOT",
	NULL:       "NULL",
	OFFSET:     "OFFSET",
	ON:         "ON",
	OR:         "OR",
	ORDER:      "ORDER",
	OUTER:      "OUTER",
	PRIMARY:    "PRIMARY",
	REFERENCES: "REFERENCES",
	RETURNING:  "RETURNING",
	RIGHT:      "RIGHT",
	SELECT:     "SELECT",
	SET:        "SET",
	TABLE:      "TABLE",
	THEN:       "THEN",
	TRUE:       "TRUE",
	UNION:      "UNION",
	UNIQUE:     "UNIQUE",
	UPDATE:     "UPDATE",
	USING:      "USING",
	VALUES:     "VALUES",
	WHEN:       "WHEN",
	WHERE:      "WHERE",
	WITH:       "WITH",
}

// keywords maps lowercase keyword strings to their token types.
var keywords = map[string]TokenType{
	"all":        ALL,
	"alter":      ALTER,
	"and":        AND,
	"as":         AS,
	"asc":        ASC,
	"between":    BETWEEN,
	"by":         BY,
	"case":       CASE,
	"cast":       CAST,
	"check":      CHECK,
	"constraint": CONSTRAINT,
	"create":     CREATE,
	"cross":      CROSS,
	"default":    DEFAULT,
	"delete":     DELETE,
	"desc":       DESC,
	"distinct":   DISTINCT,
	"drop":       DROP,
	"else":       ELSE,
	"end":        END,
	"except":     EXCEPT,
	"exists":     EXISTS,
	"false":      FALSE,
	"foreign":    FOREIGN,
	"from":       FROM,
	"full":       FULL,
	"group":      GROUP,
	"having":     HAVING,
	"in":         IN,
	"inner":      INNER,
	"insert":     INSERT,
	"intersect":  INTERSECT,
	"into":       INTO,
	"is":         IS,
	"join":       JOIN,
	"left":       LEFT,
	"like":       LIKE,
	"limit":      LIMIT,
	"merge":      MERGE,
	"natural":    NATURAL,
	"not":        NOT,
	"null":       NULL,
	"offset":     OFFSET,
	"on":         ON,
	"or":         OR,
	"order":      ORDER,
	"outer":      OUTER,
	"primary":    PRIMARY,
	"references": REFERENCES,
	"returning":  RETURNING,
	"right":      RIGHT,
	"select":     SELECT,
	"set":        SET,
	"table":      TABLE,
	"then":       THEN,
	"true":       TRUE,
	"union":      UNION,
	"unique":     UNIQUE,
	"update":     UPDATE,
	"using":      USING,
	"values":     VALUES,
	"when":       WHEN,
	"where":      WHERE,
	"with":       WITH,
}

// LookupIdent returns the token type for the given identifier.
// If the identifier is a reserved keyword, the keyword token type is returned.
// Otherwise, IDENT is returned.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword returns true if the token type is a reserved keyword.
func IsKeyword(t TokenType) bool {
	return t >= ALL && t <= WITH
}

// IsOperator returns true if the token type is an operator.
func IsOperator(t TokenType) bool {
	return t >= PLUS && t <= RBRACKET
}

// Token represents a lexical token with position information.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
	End     Position // position just after the last character
	// Quoted is set for double-quoted identifiers.
	Quoted bool
}
