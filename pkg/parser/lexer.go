package parser

import (
	"slices"
	"strings"
	"unicode"

	"github.com/truffle-sql/truffle/pkg/dialect"
	"github.com/truffle-sql/truffle/pkg/token"
)

// Lexer tokenizes SQL input.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)

	// Dialect symbols, longest first (optional)
	symbols []string
	dialect *dialect.Dialect
}

// NewLexer creates a new Lexer for the given input. The dialect may be nil,
// in which case only the built-in operators are recognized.
func NewLexer(input string, d *dialect.Dialect) *Lexer {
	l := &Lexer{
		input:   input,
		line:    1,
		dialect: d,
	}
	if d != nil {
		for sym := range d.Symbols() {
			l.symbols = append(l.symbols, sym)
		}
		slices.SortFunc(l.symbols, func(a, b string) int {
			if len(a) != len(b) {
				return len(b) - len(a)
			}
			return strings.Compare(a, b)
		})
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.col++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// currentPos returns the position of the current character.
func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: min(l.pos, len(l.input)),
	}
}

// eof reports whether the input is exhausted. A literal NUL byte inside the
// input is not EOF.
func (l *Lexer) eof() bool {
	return l.pos >= len(l.input)
}

// NextToken returns the next token.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	pos := l.currentPos()
	tok := l.scan(pos)
	tok.Pos = pos
	tok.End = l.currentPos()
	return tok
}

func (l *Lexer) scan(pos token.Position) token.Token {
	if l.eof() {
		return token.Token{Type: token.EOF}
	}

	// Check dialect-specific symbols first (longest match)
	if tok, ok := l.matchDialectSymbol(); ok {
		return tok
	}

	switch l.ch {
	case '+':
		return l.single(token.PLUS)
	case '-':
		return l.single(token.MINUS)
	case '*':
		return l.single(token.STAR)
	case '/':
		return l.single(token.SLASH)
	case '%':
		return l.single(token.PERCENT)
	case '=':
		if l.peekChar() == '=' {
			return l.double(token.EQ)
		}
		return l.single(token.EQ)
	case '<':
		switch l.peekChar() {
		case '=':
			return l.double(token.LE)
		case '>':
			return l.double(token.NE)
		case '<':
			return l.double(token.SHL)
		default:
			return l.single(token.LT)
		}
	case '>':
		switch l.peekChar() {
		case '=':
			return l.double(token.GE)
		case '>':
			return l.double(token.SHR)
		default:
			return l.single(token.GT)
		}
	case '!':
		if l.peekChar() == '=' {
			return l.double(token.NE)
		}
		return l.single(token.ILLEGAL)
	case '|':
		if l.peekChar() == '|' {
			return l.double(token.DPIPE)
		}
		return l.single(token.PIPE)
	case '&':
		return l.single(token.AMP)
	case '^':
		return l.single(token.CARET)
	case '~':
		return l.single(token.TILDE)
	case '.':
		if isDigit(l.peekChar()) {
			return token.Token{Type: token.NUMBER, Literal: l.readNumber()}
		}
		return l.single(token.DOT)
	case ',':
		return l.single(token.COMMA)
	case ';':
		return l.single(token.SEMI)
	case '(':
		return l.single(token.LPAREN)
	case ')':
		return l.single(token.RPAREN)
	case '[':
		return l.single(token.LBRACKET)
	case ']':
		return l.single(token.RBRACKET)
	case '?':
		return token.Token{Type: token.PARAM, Literal: l.readParam()}
	case '$':
		if isDigit(l.peekChar()) {
			return token.Token{Type: token.PARAM, Literal: l.readParam()}
		}
		return l.single(token.ILLEGAL)
	case '\'':
		lit, ok := l.readString()
		if !ok {
			return token.Token{Type: token.ILLEGAL, Literal: l.input[pos.Offset:l.pos]}
		}
		return token.Token{Type: token.STRING, Literal: lit}
	case '"':
		lit, ok := l.readQuotedIdentifier()
		if !ok {
			return token.Token{Type: token.ILLEGAL, Literal: l.input[pos.Offset:l.pos]}
		}
		return token.Token{Type: token.IDENT, Literal: lit, Quoted: true}
	}

	switch {
	case (l.ch == 'x' || l.ch == 'X') && l.peekChar() == '\'':
		l.readChar() // skip x
		lit, ok := l.readString()
		if !ok {
			return token.Token{Type: token.ILLEGAL, Literal: l.input[pos.Offset:l.pos]}
		}
		return token.Token{Type: token.BLOB, Literal: lit}
	case isLetter(l.ch) || l.ch == '_' || l.ch >= 0x80:
		lit := l.readIdentifier()
		lower := strings.ToLower(lit)
		typ := token.LookupIdent(lower)
		// Fallback to dynamically registered keywords (from dialect packages)
		if typ == token.IDENT {
			if dynTok, ok := token.LookupDynamicKeyword(lower); ok {
				typ = dynTok
			}
		}
		return token.Token{Type: typ, Literal: lit}
	case isDigit(l.ch):
		return token.Token{Type: token.NUMBER, Literal: l.readNumber()}
	default:
		return l.single(token.ILLEGAL)
	}
}

// single consumes one character as a token of type t.
func (l *Lexer) single(t token.TokenType) token.Token {
	lit := string(l.ch)
	l.readChar()
	return token.Token{Type: t, Literal: lit}
}

// double consumes two characters as a token of type t.
func (l *Lexer) double(t token.TokenType) token.Token {
	lit := l.input[l.pos : l.pos+2]
	l.readChar()
	l.readChar()
	return token.Token{Type: t, Literal: lit}
}

// matchDialectSymbol checks if the current position matches a dialect-specific symbol.
// Returns the longest matching symbol (e.g., "::" before ":").
func (l *Lexer) matchDialectSymbol() (token.Token, bool) {
	if len(l.symbols) == 0 {
		return token.Token{}, false
	}

	remaining := l.input[l.pos:]
	for _, sym := range l.symbols {
		if !strings.HasPrefix(remaining, sym) {
			continue
		}
		for range len(sym) {
			l.readChar()
		}
		return token.Token{Type: l.dialect.Symbols()[sym], Literal: sym}, true
	}
	return token.Token{}, false
}

// skipWhitespaceAndComments skips whitespace, line comments and block comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' || l.ch == '\f' {
			l.readChar()
		}

		// Line comment (-- ...)
		if l.ch == '-' && l.peekChar() == '-' {
			for l.ch != '\n' && !l.eof() {
				l.readChar()
			}
			continue
		}

		// Block comment (/* ... */)
		if l.ch == '/' && l.peekChar() == '*' {
			l.readChar() // skip '/'
			l.readChar() // skip '*'
			for !l.eof() {
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar() // skip '*'
					l.readChar() // skip '/'
					break
				}
				l.readChar()
			}
			continue
		}

		break
	}
}

// readString reads a single-quoted string literal.
// Handles doubled single quotes as escape: 'it''s' -> it's
// Reports false if the input ends before the closing quote.
func (l *Lexer) readString() (string, bool) {
	return l.readQuoted('\'')
}

// readQuotedIdentifier reads a double-quoted identifier.
// Handles doubled double quotes as escape: "col""name" -> col"name
func (l *Lexer) readQuotedIdentifier() (string, bool) {
	return l.readQuoted('"')
}

func (l *Lexer) readQuoted(quote byte) (string, bool) {
	l.readChar() // skip opening quote

	var result strings.Builder
	for !l.eof() {
		if l.ch == quote {
			if l.peekChar() == quote {
				// Doubled quote escape
				result.WriteByte(quote)
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar() // skip closing quote
			return result.String(), true
		}
		result.WriteByte(l.ch)
		l.readChar()
	}
	return result.String(), false
}

// readIdentifier reads an unquoted identifier. Non-ASCII bytes are taken
// as identifier characters so UTF-8 names survive intact.
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' || l.ch == '$' || l.ch >= 0x80 {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readParam reads ?, ?NNN or $NNN.
func (l *Lexer) readParam() string {
	start := l.pos
	l.readChar() // skip ? or $
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readNumber reads a numeric literal (integer, decimal, or scientific).
func (l *Lexer) readNumber() string {
	start := l.pos

	// Read integer part
	for isDigit(l.ch) {
		l.readChar()
	}

	// Read decimal part
	if l.ch == '.' {
		l.readChar() // skip '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	// Read exponent part (e.g., 1e10, 1E-5)
	if (l.ch == 'e' || l.ch == 'E') && (isDigit(l.peekChar()) || l.peekChar() == '+' || l.peekChar() == '-') {
		l.readChar() // skip 'e' or 'E'
		if l.ch == '+' || l.ch == '-' {
			l.readChar() // skip sign
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return l.input[start:l.pos]
}

// isLetter returns true if ch is an ASCII letter.
func isLetter(ch byte) bool {
	return ch < 0x80 && unicode.IsLetter(rune(ch))
}

// isDigit returns true if ch is a digit.
func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// Tokenize returns all tokens from the input, ending with EOF.
func Tokenize(input string, d *dialect.Dialect) []token.Token {
	l := NewLexer(input, d)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return tokens
}
