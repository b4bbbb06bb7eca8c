// Package ansi provides the base ANSI SQL dialect with standard clause
// sequences, operator precedence and join types.
//
// This dialect serves as the foundation for the other SQL dialects, which
// extend it via dialect.Extend and add or override specific behaviors.
package ansi

import (
	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/dialect"
)

func init() {
	dialect.Register(ANSI)
}

// ANSI is the base ANSI SQL dialect.
var ANSI = dialect.NewDialect("ansi").
	Clauses(dialect.StandardSelectClauses...).
	Operators(dialect.ANSIOperators).
	JoinTypes(dialect.ANSIJoinTypes).
	Aggregates(dialect.StandardAggregates...).
	Aggregates("every", "bool_and", "bool_or").
	Identifiers(`"`, `"`, `""`, core.NormLowercase).
	PlaceholderStyle(core.PlaceholderQuestion).
	TypeAliases(map[string]core.TypeAlias{
		"character varying": {Target: "text"},
		"varchar":           {Target: "text"},
		"char":              {Target: "text"},
		"character":         {Target: "text"},
		"double precision":  {Target: "double"},
	}).
	WithDataTypes(
		"SMALLINT", "INTEGER", "BIGINT", "REAL", "DOUBLE PRECISION",
		"NUMERIC", "DECIMAL", "VARCHAR", "TEXT", "BOOLEAN",
		"DATE", "TIME", "TIMESTAMP", "BLOB",
	).
	Build()
