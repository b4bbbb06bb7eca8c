// Package dialect provides SQL dialect configuration: identifier folding,
// placeholder style, operators, clause sequence, aggregate classification
// and type aliases.
//
// This package contains the public contract for dialect definitions used by
// the parser and the analyzer. Concrete dialect implementations are
// registered from pkg/dialects/*/ packages.
package dialect

import (
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/spi"
	"github.com/truffle-sql/truffle/pkg/token"
)

// JoinTypeDef defines a join type keyword.
type JoinTypeDef struct {
	Token         token.TokenType // The trigger token for this join type
	Type          core.JoinType   // JoinType value (e.g., "LEFT")
	OptionalToken token.TokenType // Optional modifier token (OUTER) - 0 means none
	NoCondition   bool            // true for CROSS JOIN (no ON/USING)
}

// ClauseDef bundles clause parsing logic with storage destination.
type ClauseDef struct {
	Token   token.TokenType   // The trigger token for this clause (e.g., token.WHERE)
	Handler spi.ClauseHandler // Handler function to parse the clause
	Slot    spi.ClauseSlot    // Where to store the parsed result
}

// OperatorDef describes an infix operator.
type OperatorDef struct {
	Token      token.TokenType
	Precedence int
	Symbol     string           // optional lexer symbol ("==", "::")
	Handler    spi.InfixHandler // optional custom parser
}

// Dialect represents a SQL dialect configuration.
type Dialect struct {
	Name        string
	Identifiers core.IdentifierConfig
	Placeholder core.PlaceholderStyle

	aggregates     map[string]struct{}
	typeAliases    map[string]core.TypeAlias
	untypedColumns bool
	dataTypes      []string

	clauseSequence []token.TokenType
	clauseDefs     map[token.TokenType]ClauseDef
	symbols        map[string]token.TokenType
	precedence     map[token.TokenType]int
	infixHandlers  map[token.TokenType]spi.InfixHandler
	joinTypes      map[token.TokenType]JoinTypeDef
}

// Config returns the pure data configuration for this dialect.
func (d *Dialect) Config() *core.DialectConfig {
	aggregates := slices.Sorted(maps.Keys(d.aggregates))
	return &core.DialectConfig{
		Name:           d.Name,
		Identifiers:    d.Identifiers,
		Placeholder:    d.Placeholder,
		Aggregates:     aggregates,
		UntypedColumns: d.untypedColumns,
		TypeAliases:    maps.Clone(d.typeAliases),
	}
}

// NormalizeName folds an identifier according to dialect rules. The same
// rule applies to quoted and unquoted names.
func (d *Dialect) NormalizeName(name string) string {
	ascii := isASCII(name)
	switch d.Identifiers.Normalization {
	case core.NormUppercase:
		if ascii {
			return strings.ToUpper(name)
		}
		return cases.Upper(language.Und).String(name)
	case core.NormLowercase:
		if ascii {
			return strings.ToLower(name)
		}
		return cases.Lower(language.Und).String(name)
	case core.NormCaseInsensitive:
		if ascii {
			return strings.ToLower(name)
		}
		return cases.Fold().String(name)
	default: // NormCaseSensitive
		return name
	}
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// IsAggregate returns true if the function is an aggregate function.
func (d *Dialect) IsAggregate(name string) bool {
	_, ok := d.aggregates[strings.ToLower(name)]
	return ok
}

// Aggregates returns all aggregate function names (sorted).
func (d *Dialect) Aggregates() []string {
	return slices.Sorted(maps.Keys(d.aggregates))
}

// GetName returns the dialect name.
func (d *Dialect) GetName() string {
	return d.Name
}

// TypeAlias resolves a dialect-specific type name. The lookup is
// case-insensitive and ignores any type parameters: "VARCHAR(20)" matches
// an alias registered as "varchar".
func (d *Dialect) TypeAlias(typeName string) (core.TypeAlias, bool) {
	base := strings.ToLower(strings.TrimSpace(typeName))
	if i := strings.IndexByte(base, '('); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}
	alias, ok := d.typeAliases[base]
	return alias, ok
}

// AllowsUntypedColumns reports whether column definitions may omit the type.
func (d *Dialect) AllowsUntypedColumns() bool {
	return d.untypedColumns
}

// DataTypes returns the type names advertised by the dialect.
func (d *Dialect) DataTypes() []string {
	return d.dataTypes
}

// FormatPlaceholder returns a placeholder for the given parameter index (1-based).
// Returns "?" for PlaceholderQuestion style, "$1", "$2" etc. for PlaceholderDollar style.
func (d *Dialect) FormatPlaceholder(index int) string {
	switch d.Placeholder {
	case core.PlaceholderDollar:
		return "$" + strconv.Itoa(index)
	default:
		return "?"
	}
}

// AcceptsPlaceholder reports whether the placeholder text is valid in this dialect.
func (d *Dialect) AcceptsPlaceholder(text string) bool {
	dollar := strings.HasPrefix(text, "$")
	switch d.Placeholder {
	case core.PlaceholderQuestion:
		return !dollar
	case core.PlaceholderDollar:
		return dollar
	default:
		return true
	}
}

// QuoteIdentifier quotes an identifier using the dialect's quote characters.
func (d *Dialect) QuoteIdentifier(name string) string {
	escaped := strings.ReplaceAll(name, d.Identifiers.QuoteEnd, d.Identifiers.Escape)
	return d.Identifiers.Quote + escaped + d.Identifiers.QuoteEnd
}

// ---------- Parsing Behavior Methods ----------

// ClauseSequence returns the ordered list of SELECT clause tokens for this dialect.
func (d *Dialect) ClauseSequence() []token.TokenType {
	return d.clauseSequence
}

// ClauseDef returns the definition (handler + slot) for a clause token type.
func (d *Dialect) ClauseDef(t token.TokenType) (ClauseDef, bool) {
	def, ok := d.clauseDefs[t]
	return def, ok
}

// IsClauseToken returns true if this dialect supports the given clause token.
func (d *Dialect) IsClauseToken(t token.TokenType) bool {
	_, ok := d.clauseDefs[t]
	return ok
}

// Symbols returns the custom operators map for lexer symbol matching.
func (d *Dialect) Symbols() map[string]token.TokenType {
	return d.symbols
}

// Precedence returns the precedence level for an operator token.
// Returns 0 (PrecedenceNone) if the operator is not recognized.
func (d *Dialect) Precedence(t token.TokenType) int {
	if p, ok := d.precedence[t]; ok {
		return p
	}
	return spi.PrecedenceNone
}

// InfixHandler returns the custom infix handler for an operator token.
func (d *Dialect) InfixHandler(t token.TokenType) spi.InfixHandler {
	return d.infixHandlers[t]
}

// JoinTypeDef returns the definition for a join type keyword.
func (d *Dialect) JoinTypeDef(t token.TokenType) (JoinTypeDef, bool) {
	def, ok := d.joinTypes[t]
	return def, ok
}

// IsJoinTypeToken returns true if the token starts a typed join.
func (d *Dialect) IsJoinTypeToken(t token.TokenType) bool {
	_, ok := d.joinTypes[t]
	return ok
}

// Builder provides a fluent API for constructing dialects.
type Builder struct {
	dialect *Dialect
}

func newDialect(name string) *Dialect {
	return &Dialect{
		Name: name,
		Identifiers: core.IdentifierConfig{
			Quote:         `"`,
			QuoteEnd:      `"`,
			Escape:        `""`,
			Normalization: core.NormLowercase,
		},
		aggregates:    make(map[string]struct{}),
		typeAliases:   make(map[string]core.TypeAlias),
		clauseDefs:    make(map[token.TokenType]ClauseDef),
		symbols:       make(map[string]token.TokenType),
		precedence:    make(map[token.TokenType]int),
		infixHandlers: make(map[token.TokenType]spi.InfixHandler),
		joinTypes:     make(map[token.TokenType]JoinTypeDef),
	}
}

// NewDialect creates a new dialect builder with the given name.
func NewDialect(name string) *Builder {
	return &Builder{dialect: newDialect(name)}
}

// New creates a dialect builder from a DialectConfig.
func New(cfg *core.DialectConfig) *Builder {
	b := NewDialect(cfg.Name)
	b.dialect.Identifiers = cfg.Identifiers
	b.dialect.Placeholder = cfg.Placeholder
	b.dialect.untypedColumns = cfg.UntypedColumns
	b.Aggregates(cfg.Aggregates...)
	b.TypeAliases(cfg.TypeAliases)
	return b
}

// Extend creates a builder for a new dialect that starts as a copy of base.
func Extend(base *Dialect, name string) *Builder {
	d := newDialect(name)
	d.Identifiers = base.Identifiers
	d.Placeholder = base.Placeholder
	d.untypedColumns = base.untypedColumns
	d.dataTypes = slices.Clone(base.dataTypes)
	d.clauseSequence = slices.Clone(base.clauseSequence)
	maps.Copy(d.aggregates, base.aggregates)
	maps.Copy(d.typeAliases, base.typeAliases)
	maps.Copy(d.clauseDefs, base.clauseDefs)
	maps.Copy(d.symbols, base.symbols)
	maps.Copy(d.precedence, base.precedence)
	maps.Copy(d.infixHandlers, base.infixHandlers)
	maps.Copy(d.joinTypes, base.joinTypes)
	return &Builder{dialect: d}
}

// Identifiers configures identifier quoting and normalization.
func (b *Builder) Identifiers(quote, quoteEnd, escape string, norm core.NormalizationStrategy) *Builder {
	b.dialect.Identifiers = core.IdentifierConfig{
		Quote:         quote,
		QuoteEnd:      quoteEnd,
		Escape:        escape,
		Normalization: norm,
	}
	return b
}

// Aggregates adds aggregate functions to the dialect.
func (b *Builder) Aggregates(funcs ...string) *Builder {
	for _, f := range funcs {
		b.dialect.aggregates[strings.ToLower(f)] = struct{}{}
	}
	return b
}

// PlaceholderStyle sets how query parameters are written.
func (b *Builder) PlaceholderStyle(style core.PlaceholderStyle) *Builder {
	b.dialect.Placeholder = style
	return b
}

// TypeAliases registers dialect type names.
func (b *Builder) TypeAliases(aliases map[string]core.TypeAlias) *Builder {
	for name, alias := range aliases {
		b.dialect.typeAliases[strings.ToLower(name)] = alias
	}
	return b
}

// UntypedColumns allows column definitions without a type name.
func (b *Builder) UntypedColumns(allow bool) *Builder {
	b.dialect.untypedColumns = allow
	return b
}

// WithDataTypes registers advertised data types (for completion).
func (b *Builder) WithDataTypes(types ...string) *Builder {
	b.dialect.dataTypes = append(b.dialect.dataTypes, types...)
	return b
}

// Build returns the constructed dialect.
func (b *Builder) Build() *Dialect {
	return b.dialect
}

// ---------- Parsing Behavior Builder Methods ----------

// AddOperator registers a custom operator symbol for the lexer.
func (b *Builder) AddOperator(symbol string, t token.TokenType) *Builder {
	b.dialect.symbols[symbol] = t
	return b
}

// AddInfix registers an infix operator with precedence.
func (b *Builder) AddInfix(t token.TokenType, precedence int) *Builder {
	b.dialect.precedence[t] = precedence
	return b
}

// AddInfixWithHandler registers an infix operator with custom handler.
func (b *Builder) AddInfixWithHandler(t token.TokenType, precedence int, handler spi.InfixHandler) *Builder {
	b.dialect.precedence[t] = precedence
	b.dialect.infixHandlers[t] = handler
	return b
}

// Clauses sets the clause sequence from a list of ClauseDefs.
func (b *Builder) Clauses(defs ...ClauseDef) *Builder {
	b.dialect.clauseSequence = make([]token.TokenType, len(defs))
	for i, def := range defs {
		b.dialect.clauseSequence[i] = def.Token
		b.dialect.clauseDefs[def.Token] = def
	}
	return b
}

// RemoveClause removes a clause from the sequence.
func (b *Builder) RemoveClause(t token.TokenType) *Builder {
	b.dialect.clauseSequence = slices.DeleteFunc(b.dialect.clauseSequence, func(tok token.TokenType) bool {
		return tok == t
	})
	delete(b.dialect.clauseDefs, t)
	return b
}

// Operators adds operator definitions in bulk.
// If Symbol is provided, it's registered with the lexer.
func (b *Builder) Operators(sets ...[]OperatorDef) *Builder {
	for _, set := range sets {
		for _, op := range set {
			b.dialect.precedence[op.Token] = op.Precedence
			if op.Handler != nil {
				b.dialect.infixHandlers[op.Token] = op.Handler
			}
			if op.Symbol != "" {
				b.dialect.symbols[op.Symbol] = op.Token
			}
		}
	}
	return b
}

// JoinTypes adds join type definitions in bulk.
func (b *Builder) JoinTypes(sets ...[]JoinTypeDef) *Builder {
	for _, set := range sets {
		for _, jt := range set {
			b.dialect.joinTypes[jt.Token] = jt
		}
	}
	return b
}
