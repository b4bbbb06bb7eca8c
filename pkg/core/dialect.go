package core

// NormalizationStrategy defines how identifiers are normalized for comparison.
type NormalizationStrategy int

const (
	// NormLowercase normalizes identifiers to lowercase (default SQL behavior).
	NormLowercase NormalizationStrategy = iota
	// NormUppercase normalizes identifiers to uppercase (Snowflake, Oracle).
	NormUppercase
	// NormCaseSensitive preserves identifier case exactly.
	NormCaseSensitive
	// NormCaseInsensitive compares identifiers by Unicode case folding (SQLite).
	NormCaseInsensitive
)

// String returns the strategy name.
func (n NormalizationStrategy) String() string {
	switch n {
	case NormLowercase:
		return "lowercase"
	case NormUppercase:
		return "uppercase"
	case NormCaseSensitive:
		return "case-sensitive"
	case NormCaseInsensitive:
		return "case-insensitive"
	default:
		return "unknown"
	}
}

// PlaceholderStyle defines how query parameters are written.
type PlaceholderStyle int

const (
	// PlaceholderQuestion uses ? for all parameters (MySQL, SQLite).
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar uses $1, $2, etc. for parameters (PostgreSQL).
	PlaceholderDollar
	// PlaceholderAny accepts both styles.
	PlaceholderAny
)

// String returns the style name.
func (p PlaceholderStyle) String() string {
	switch p {
	case PlaceholderQuestion:
		return "?"
	case PlaceholderDollar:
		return "$n"
	default:
		return "any"
	}
}

// IdentifierConfig defines how identifiers are quoted and normalized.
type IdentifierConfig struct {
	Quote         string                // Quote character: ", `, [
	QuoteEnd      string                // End quote character (usually same as Quote, ] for [)
	Escape        string                // Escape sequence: "", ``, ]]
	Normalization NormalizationStrategy // How to normalize identifiers
}

// DialectConfig holds the static configuration for a SQL dialect.
// This is pure data; the runtime behavior lives in pkg/dialect.Dialect.
type DialectConfig struct {
	Name        string
	Identifiers IdentifierConfig
	Placeholder PlaceholderStyle

	// Aggregates lists the aggregate function names known to the dialect.
	Aggregates []string

	// UntypedColumns allows column definitions without a type name.
	UntypedColumns bool

	// TypeAliases maps dialect type names to canonical names understood by
	// the type system (e.g. "int8" -> "bigint").
	TypeAliases map[string]TypeAlias
}

// TypeAlias is a dialect type name rewritten to a canonical type.
type TypeAlias struct {
	Target string
	// Generated marks types that imply a generated default (SERIAL).
	Generated bool
}
