package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truffle-sql/truffle/pkg/dialect"
	"github.com/truffle-sql/truffle/pkg/token"
)

func tokenTypes(tokens []token.Token) []token.TokenType {
	out := make([]token.TokenType, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Type
	}
	return out
}

func TestLexerTokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []token.TokenType
	}{
		{
			name:  "select",
			input: "SELECT a, b FROM t;",
			want:  []token.TokenType{token.SELECT, token.IDENT, token.COMMA, token.IDENT, token.FROM, token.IDENT, token.SEMI, token.EOF},
		},
		{
			name:  "comparison operators",
			input: "= == != <> < <= > >=",
			want:  []token.TokenType{token.EQ, token.EQ, token.NE, token.NE, token.LT, token.LE, token.GT, token.GE, token.EOF},
		},
		{
			name:  "bitwise operators",
			input: "& | ^ ~ << >> ||",
			want:  []token.TokenType{token.AMP, token.PIPE, token.CARET, token.TILDE, token.SHL, token.SHR, token.DPIPE, token.EOF},
		},
		{
			name:  "parameters",
			input: "? ?2 $1",
			want:  []token.TokenType{token.PARAM, token.PARAM, token.PARAM, token.EOF},
		},
		{
			name:  "comments are skipped",
			input: "-- leading\nSELECT /* inline */ 1",
			want:  []token.TokenType{token.SELECT, token.NUMBER, token.EOF},
		},
		{
			name:  "blob literal",
			input: "X'0AFF' x'00'",
			want:  []token.TokenType{token.BLOB, token.BLOB, token.EOF},
		},
		{
			name:  "soft keywords stay identifiers",
			input: "conflict nothing key",
			want:  []token.TokenType{token.IDENT, token.IDENT, token.IDENT, token.EOF},
		},
		{
			name:  "unterminated string",
			input: "'abc",
			want:  []token.TokenType{token.ILLEGAL, token.EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenTypes(Tokenize(tt.input, nil)))
		})
	}
}

func TestLexerLiterals(t *testing.T) {
	tokens := Tokenize(`'it''s' "col""name" 1.5e3 .5 X'0aff'`, nil)
	require.Len(t, tokens, 6)

	assert.Equal(t, "it's", tokens[0].Literal)
	assert.Equal(t, token.IDENT, tokens[1].Type)
	assert.Equal(t, `col"name`, tokens[1].Literal)
	assert.True(t, tokens[1].Quoted)
	assert.Equal(t, "1.5e3", tokens[2].Literal)
	assert.Equal(t, ".5", tokens[3].Literal)
	assert.Equal(t, "0aff", tokens[4].Literal)
}

func TestLexerPositions(t *testing.T) {
	tokens := Tokenize("SELECT a\n  FROM t", nil)
	require.Len(t, tokens, 5)

	sel := tokens[0]
	assert.Equal(t, token.Position{Line: 1, Column: 1, Offset: 0}, sel.Pos)
	assert.Equal(t, token.Position{Line: 1, Column: 7, Offset: 6}, sel.End)

	from := tokens[2]
	assert.Equal(t, token.FROM, from.Type)
	assert.Equal(t, token.Position{Line: 2, Column: 3, Offset: 11}, from.Pos)
	assert.Equal(t, token.Position{Line: 2, Column: 7, Offset: 15}, from.End)
}

func TestLexerDialectSymbols(t *testing.T) {
	dcolon := token.Register("LEXTEST_DCOLON")
	d := dialect.NewDialect("lexer_test").
		AddOperator("::", dcolon).
		AddOperator("==", token.EQ).
		Build()

	tokens := Tokenize("a::int == 1", d)
	assert.Equal(t,
		[]token.TokenType{token.IDENT, dcolon, token.IDENT, token.EQ, token.NUMBER, token.EOF},
		tokenTypes(tokens))
	assert.Equal(t, "::", tokens[1].Literal)
}

func TestLexerUnicodeIdentifier(t *testing.T) {
	tokens := Tokenize("SELECT größe FROM maße", nil)
	require.Len(t, tokens, 5)
	assert.Equal(t, "größe", tokens[1].Literal)
	assert.Equal(t, "maße", tokens[3].Literal)
}
