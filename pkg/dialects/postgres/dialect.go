// Package postgres provides the PostgreSQL SQL dialect definition.
// This package is pure Go with no database driver dependencies.
package postgres

import (
	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/dialect"
	"github.com/truffle-sql/truffle/pkg/dialects/ansi"
	"github.com/truffle-sql/truffle/pkg/spi"
	"github.com/truffle-sql/truffle/pkg/token"
)

func init() {
	dialect.Register(Postgres)
}

// DCOLON is the :: cast operator token, registered dynamically.
var DCOLON = token.Register("DCOLON")

// Postgres is the PostgreSQL dialect.
//   - expr::type casts
//   - $n parameters
//   - SERIAL, INT8, BYTEA and friends as type aliases
var Postgres = dialect.Extend(ansi.ANSI, "postgres").
	Operators(dialect.BitwiseOperators, []dialect.OperatorDef{
		{Token: DCOLON, Precedence: spi.PrecedencePostfix, Symbol: "::", Handler: parseCast},
	}).
	PlaceholderStyle(core.PlaceholderDollar).
	Aggregates("string_agg", "array_agg", "json_agg", "jsonb_agg").
	TypeAliases(map[string]core.TypeAlias{
		"serial":      {Target: "integer", Generated: true},
		"serial4":     {Target: "integer", Generated: true},
		"bigserial":   {Target: "bigint", Generated: true},
		"serial8":     {Target: "bigint", Generated: true},
		"smallserial": {Target: "smallint", Generated: true},
		"int2":        {Target: "smallint"},
		"int4":        {Target: "integer"},
		"int8":        {Target: "bigint"},
		"float4":      {Target: "real"},
		"float8":      {Target: "double"},
		"bool":        {Target: "boolean"},
		"bytea":       {Target: "blob"},
		"timestamptz": {Target: "timestamptz"},

		"timestamp with time zone": {Target: "timestamptz"},
	}).
	Build()

// parseCast handles expr::type. The :: has already been consumed.
func parseCast(p spi.ParserOps, left core.Expr) (core.Expr, error) {
	typeName, err := p.ParseTypeName()
	if err != nil {
		return nil, err
	}
	return &core.CastExpr{
		NodeInfo: core.NodeInfo{Span: p.SpanFrom(left.Pos())},
		Expr:     left,
		TypeName: typeName,
	}, nil
}
