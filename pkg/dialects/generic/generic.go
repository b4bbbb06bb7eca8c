// Package generic provides the permissive default dialect: ANSI syntax plus
// bitwise operators, both placeholder styles and the common aggregate
// extensions of SQLite and PostgreSQL.
package generic

import (
	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/dialect"
	"github.com/truffle-sql/truffle/pkg/dialects/ansi"
)

func init() {
	dialect.Register(Generic)
}

// Name is the registry name of the generic dialect.
const Name = "generic"

// Generic is the default dialect used when none is configured.
var Generic = dialect.Extend(ansi.ANSI, Name).
	Operators(dialect.BitwiseOperators).
	Aggregates("group_concat", "string_agg", "total").
	PlaceholderStyle(core.PlaceholderAny).
	Build()
