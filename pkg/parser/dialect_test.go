package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/dialect"
	"github.com/truffle-sql/truffle/pkg/dialects/ansi"
	"github.com/truffle-sql/truffle/pkg/dialects/generic"
	"github.com/truffle-sql/truffle/pkg/dialects/postgres"
	"github.com/truffle-sql/truffle/pkg/dialects/sqlite"
	"github.com/truffle-sql/truffle/pkg/parser"
	"github.com/truffle-sql/truffle/pkg/token"
)

func firstColumn(t *testing.T, sql string, d *dialect.Dialect) core.Expr {
	t.Helper()
	stmt, err := parser.ParseStatement(sql, d)
	require.NoError(t, err)
	sel, ok := stmt.(*core.SelectStmt)
	require.True(t, ok)
	require.NotEmpty(t, sel.Body.Left.Columns)
	return sel.Body.Left.Columns[0].Expr
}

func TestPostgresCast(t *testing.T) {
	expr := firstColumn(t, "SELECT a::varchar(10) FROM t", postgres.Postgres)
	cast, ok := expr.(*core.CastExpr)
	require.True(t, ok, "expected CastExpr, got %T", expr)
	assert.Equal(t, "varchar(10)", cast.TypeName)
	assert.IsType(t, &core.ColumnRef{}, cast.Expr)

	// :: binds tighter than arithmetic.
	expr = firstColumn(t, "SELECT 1 + b::int FROM t", postgres.Postgres)
	bin, ok := expr.(*core.BinaryExpr)
	require.True(t, ok)
	assert.IsType(t, &core.CastExpr{}, bin.Right)
}

func TestSQLiteDoubleEquals(t *testing.T) {
	expr := firstColumn(t, "SELECT a == 1 FROM t", sqlite.SQLite)
	bin, ok := expr.(*core.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.EQ, bin.Op)
}

func TestPlaceholderStyles(t *testing.T) {
	tests := []struct {
		name    string
		dialect *dialect.Dialect
		sql     string
		wantErr string
	}{
		{"postgres dollar", postgres.Postgres, "SELECT $1, $2", ""},
		{"postgres question", postgres.Postgres, "SELECT ?", "placeholder ? is not supported in postgres dialect (use $n)"},
		{"sqlite question", sqlite.SQLite, "SELECT ?, ?2", ""},
		{"sqlite dollar", sqlite.SQLite, "SELECT $1", "placeholder $1 is not supported in sqlite dialect (use ?)"},
		{"ansi dollar", ansi.ANSI, "SELECT $1", "placeholder $1 is not supported in ansi dialect"},
		{"generic mixed", generic.Generic, "SELECT ?, $3", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.ParseStatement(tt.sql, tt.dialect)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBitwiseOperatorsByDialect(t *testing.T) {
	for _, d := range []*dialect.Dialect{generic.Generic, sqlite.SQLite, postgres.Postgres} {
		t.Run(d.Name, func(t *testing.T) {
			expr := firstColumn(t, "SELECT a & 1 FROM t", d)
			bin, ok := expr.(*core.BinaryExpr)
			require.True(t, ok)
			assert.Equal(t, token.AMP, bin.Op)
		})
	}

	t.Run("ansi", func(t *testing.T) {
		_, err := parser.ParseStatement("SELECT a & 1 FROM t", ansi.ANSI)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected token &")
	})
}

func TestUntypedColumnsByDialect(t *testing.T) {
	tests := []struct {
		dialect *dialect.Dialect
		allowed bool
	}{
		{sqlite.SQLite, true},
		{generic.Generic, false},
		{postgres.Postgres, false},
		{ansi.ANSI, false},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.Name, func(t *testing.T) {
			_, err := parser.ParseStatement("CREATE TABLE t (a)", tt.dialect)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
