// Package sqlite provides the SQLite dialect definition.
// This package is pure Go with no database driver dependencies.
package sqlite

import (
	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/dialect"
	"github.com/truffle-sql/truffle/pkg/dialects/ansi"
	"github.com/truffle-sql/truffle/pkg/spi"
	"github.com/truffle-sql/truffle/pkg/token"
)

func init() {
	dialect.Register(SQLite)
}

// SQLite is the SQLite dialect.
//   - "==" is an alias for "="
//   - columns may be declared without a type (kind unknown)
//   - identifiers compare case-insensitively
//   - parameters use ?
var SQLite = dialect.Extend(ansi.ANSI, "sqlite").
	Operators(dialect.BitwiseOperators, []dialect.OperatorDef{
		{Token: token.EQ, Precedence: spi.PrecedenceComparison, Symbol: "=="},
	}).
	Identifiers(`"`, `"`, `""`, core.NormCaseInsensitive).
	PlaceholderStyle(core.PlaceholderQuestion).
	Aggregates("group_concat", "total").
	UntypedColumns(true).
	TypeAliases(map[string]core.TypeAlias{
		"int":      {Target: "integer"},
		"tinyint":  {Target: "smallint"},
		"datetime": {Target: "timestamp"},
		"clob":     {Target: "text"},
		"nvarchar": {Target: "text"},
	}).
	Build()
