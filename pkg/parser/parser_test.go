package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/dialects/generic"
	"github.com/truffle-sql/truffle/pkg/parser"
	"github.com/truffle-sql/truffle/pkg/token"
)

func parseSelect(t *testing.T, sql string) *core.SelectCore {
	t.Helper()
	stmt, err := parser.ParseStatement(sql, generic.Generic)
	require.NoError(t, err)
	sel, ok := stmt.(*core.SelectStmt)
	require.True(t, ok, "expected SELECT, got %T", stmt)
	require.NotNil(t, sel.Body)
	require.NotNil(t, sel.Body.Left)
	return sel.Body.Left
}

func parseExpr(t *testing.T, expr string) core.Expr {
	t.Helper()
	sc := parseSelect(t, "SELECT "+expr)
	require.Len(t, sc.Columns, 1)
	return sc.Columns[0].Expr
}

// ---------- Script Tests ----------

func TestParseScript(t *testing.T) {
	stmts, err := parser.Parse(`
		CREATE TABLE t (id INTEGER);
		;
		INSERT INTO t VALUES (1);
		SELECT id FROM t
	`, generic.Generic)
	require.NoError(t, err)
	require.Len(t, stmts, 3)
	assert.Equal(t, "CREATE TABLE", core.StatementKind(stmts[0]))
	assert.Equal(t, "INSERT", core.StatementKind(stmts[1]))
	assert.Equal(t, "SELECT", core.StatementKind(stmts[2]))
}

func TestParseScriptStopsAtFirstError(t *testing.T) {
	stmts, err := parser.Parse("CREATE TABLE t (id INTEGER); SELEC id FROM t; SELECT 1", generic.Generic)
	require.Error(t, err)
	require.Len(t, stmts, 1)

	var pe *parser.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, pe.Pos.Line)
	assert.Equal(t, 30, pe.Pos.Column)
}

func TestParseEmptyInput(t *testing.T) {
	stmts, err := parser.Parse("  -- nothing here\n", generic.Generic)
	require.NoError(t, err)
	assert.Empty(t, stmts)

	_, err = parser.ParseStatement("", generic.Generic)
	assert.Error(t, err)
}

func TestParseRequiresDialect(t *testing.T) {
	_, err := parser.Parse("SELECT 1", nil)
	assert.Error(t, err)
}

func TestParseStatementRejectsTrailingInput(t *testing.T) {
	_, err := parser.ParseStatement("SELECT 1; SELECT 2", generic.Generic)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "end of input")
}

func TestUnsupportedStatements(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{"cte", "WITH x AS (SELECT 1) SELECT * FROM x", "WITH"},
		{"create index", "CREATE INDEX i ON t (a)", "CREATE INDEX"},
		{"create view", "CREATE VIEW v AS SELECT 1", "CREATE VIEW"},
		{"drop index", "DROP INDEX i", "DROP INDEX"},
		{"derived table", "SELECT * FROM (SELECT 1) AS x", "derived tables"},
		{"garbage", "FOO BAR", "expected statement"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.ParseStatement(tt.sql, generic.Generic)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLexicalErrors(t *testing.T) {
	_, err := parser.ParseStatement("SELECT 'abc", generic.Generic)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated string literal")

	_, err = parser.ParseStatement("SELECT a # b", generic.Generic)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `illegal character "#"`)
}

// ---------- SELECT Tests ----------

func TestSelectList(t *testing.T) {
	sc := parseSelect(t, "SELECT *, t.*, a, b AS x, c y FROM t")
	require.Len(t, sc.Columns, 5)

	assert.True(t, sc.Columns[0].Star)
	assert.Equal(t, "t", sc.Columns[1].TableStar)
	assert.Equal(t, "", sc.Columns[2].Alias)
	assert.Equal(t, "x", sc.Columns[3].Alias)
	assert.Equal(t, "y", sc.Columns[4].Alias)

	ref, ok := sc.Columns[2].Expr.(*core.ColumnRef)
	require.True(t, ok)
	assert.Equal(t, "a", ref.Column)
}

func TestSelectClauses(t *testing.T) {
	sc := parseSelect(t, `SELECT DISTINCT a, count(*) FROM t
		WHERE b > 1 GROUP BY a HAVING count(*) > 2
		ORDER BY a DESC NULLS LAST LIMIT 10 OFFSET 5`)

	assert.True(t, sc.Distinct)
	assert.NotNil(t, sc.Where)
	require.Len(t, sc.GroupBy, 1)
	assert.NotNil(t, sc.Having)
	require.Len(t, sc.OrderBy, 1)
	assert.True(t, sc.OrderBy[0].Desc)
	require.NotNil(t, sc.OrderBy[0].NullsFirst)
	assert.False(t, *sc.OrderBy[0].NullsFirst)
	assert.NotNil(t, sc.Limit)
	assert.NotNil(t, sc.Offset)
}

func TestSelectClauseOrder(t *testing.T) {
	tests := []struct {
		name string
		sql  string
	}{
		{"where after group by", "SELECT a FROM t GROUP BY a WHERE a > 1"},
		{"duplicate where", "SELECT a FROM t WHERE a > 1 WHERE a < 2"},
		{"limit before order", "SELECT a FROM t LIMIT 1 ORDER BY a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.ParseStatement(tt.sql, generic.Generic)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "clause")
		})
	}
}

func TestSetOperations(t *testing.T) {
	stmt, err := parser.ParseStatement("SELECT a FROM t UNION ALL SELECT b FROM u EXCEPT SELECT c FROM v", generic.Generic)
	require.NoError(t, err)
	sel := stmt.(*core.SelectStmt)

	assert.Equal(t, core.SetOpUnion, sel.Body.Op)
	assert.True(t, sel.Body.All)
	require.NotNil(t, sel.Body.Right)
	assert.Equal(t, core.SetOpExcept, sel.Body.Right.Op)
	assert.False(t, sel.Body.Right.All)
	require.NotNil(t, sel.Body.Right.Right)
}

// ---------- Expression Tests ----------

func TestOperatorPrecedence(t *testing.T) {
	// a OR b AND c = 1 + 2 * 3 parses as a OR (b AND (c = (1 + (2 * 3))))
	expr := parseExpr(t, "a OR b AND c = 1 + 2 * 3")

	or, ok := expr.(*core.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.OR, or.Op)

	and, ok := or.Right.(*core.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.AND, and.Op)

	eq, ok := and.Right.(*core.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.EQ, eq.Op)

	plus, ok := eq.Right.(*core.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.PLUS, plus.Op)

	mul, ok := plus.Right.(*core.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.STAR, mul.Op)
}

func TestNotPrecedence(t *testing.T) {
	// NOT binds looser than comparison: NOT (a = 1)
	expr := parseExpr(t, "NOT a = 1")
	not, ok := expr.(*core.UnaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.NOT, not.Op)
	_, ok = not.Expr.(*core.BinaryExpr)
	assert.True(t, ok)
}

func TestUnaryMinus(t *testing.T) {
	expr := parseExpr(t, "-a * 2")
	mul, ok := expr.(*core.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.STAR, mul.Op)
	neg, ok := mul.Left.(*core.UnaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.MINUS, neg.Op)
}

func TestSpecialExpressions(t *testing.T) {
	tests := []struct {
		name  string
		expr  string
		check func(t *testing.T, e core.Expr)
	}{
		{
			name: "is not null",
			expr: "a IS NOT NULL",
			check: func(t *testing.T, e core.Expr) {
				n, ok := e.(*core.IsNullExpr)
				require.True(t, ok)
				assert.True(t, n.Not)
			},
		},
		{
			name: "is unknown",
			expr: "a IS UNKNOWN",
			check: func(t *testing.T, e core.Expr) {
				n, ok := e.(*core.IsBoolExpr)
				require.True(t, ok)
				assert.Equal(t, core.TruthUnknown, n.Value)
			},
		},
		{
			name: "is not distinct from",
			expr: "a IS NOT DISTINCT FROM b",
			check: func(t *testing.T, e core.Expr) {
				n, ok := e.(*core.IsDistinctExpr)
				require.True(t, ok)
				assert.True(t, n.Not)
			},
		},
		{
			name: "not in list",
			expr: "a NOT IN (1, 2, 3)",
			check: func(t *testing.T, e core.Expr) {
				n, ok := e.(*core.InExpr)
				require.True(t, ok)
				assert.True(t, n.Not)
				assert.Len(t, n.Values, 3)
			},
		},
		{
			name: "in subquery",
			expr: "a IN (SELECT b FROM u)",
			check: func(t *testing.T, e core.Expr) {
				n, ok := e.(*core.InExpr)
				require.True(t, ok)
				assert.NotNil(t, n.Query)
			},
		},
		{
			name: "between",
			expr: "a BETWEEN 1 AND 2 + 3",
			check: func(t *testing.T, e core.Expr) {
				n, ok := e.(*core.BetweenExpr)
				require.True(t, ok)
				_, ok = n.High.(*core.BinaryExpr)
				assert.True(t, ok)
			},
		},
		{
			name: "like escape",
			expr: `a NOT LIKE 'x\%%' ESCAPE '\'`,
			check: func(t *testing.T, e core.Expr) {
				n, ok := e.(*core.LikeExpr)
				require.True(t, ok)
				assert.True(t, n.Not)
				assert.NotNil(t, n.Escape)
			},
		},
		{
			name: "searched case",
			expr: "CASE WHEN a > 1 THEN 'big' ELSE 'small' END",
			check: func(t *testing.T, e core.Expr) {
				n, ok := e.(*core.CaseExpr)
				require.True(t, ok)
				assert.Nil(t, n.Operand)
				assert.Len(t, n.Whens, 1)
				assert.NotNil(t, n.Else)
			},
		},
		{
			name: "cast",
			expr: "CAST(a AS VARCHAR(20))",
			check: func(t *testing.T, e core.Expr) {
				n, ok := e.(*core.CastExpr)
				require.True(t, ok)
				assert.Equal(t, "VARCHAR(20)", n.TypeName)
			},
		},
		{
			name: "cast multi-word type",
			expr: "CAST(a AS double precision)",
			check: func(t *testing.T, e core.Expr) {
				n, ok := e.(*core.CastExpr)
				require.True(t, ok)
				assert.Equal(t, "double precision", n.TypeName)
			},
		},
		{
			name: "not exists",
			expr: "NOT EXISTS (SELECT 1 FROM u)",
			check: func(t *testing.T, e core.Expr) {
				n, ok := e.(*core.ExistsExpr)
				require.True(t, ok)
				assert.True(t, n.Not)
			},
		},
		{
			name: "scalar subquery",
			expr: "(SELECT max(b) FROM u)",
			check: func(t *testing.T, e core.Expr) {
				_, ok := e.(*core.SubqueryExpr)
				assert.True(t, ok)
			},
		},
		{
			name: "tuple",
			expr: "(a, b) IN (SELECT x, y FROM u)",
			check: func(t *testing.T, e core.Expr) {
				n, ok := e.(*core.InExpr)
				require.True(t, ok)
				tuple, ok := n.Expr.(*core.TupleExpr)
				require.True(t, ok)
				assert.Len(t, tuple.Elems, 2)
			},
		},
		{
			name: "count star",
			expr: "count(*)",
			check: func(t *testing.T, e core.Expr) {
				n, ok := e.(*core.FuncCall)
				require.True(t, ok)
				assert.Equal(t, "COUNT", n.Name)
				assert.True(t, n.Star)
			},
		},
		{
			name: "count distinct",
			expr: "COUNT(DISTINCT a)",
			check: func(t *testing.T, e core.Expr) {
				n, ok := e.(*core.FuncCall)
				require.True(t, ok)
				assert.True(t, n.Distinct)
				assert.Len(t, n.Args, 1)
			},
		},
		{
			name: "niladic function",
			expr: "current_timestamp",
			check: func(t *testing.T, e core.Expr) {
				n, ok := e.(*core.FuncCall)
				require.True(t, ok)
				assert.Equal(t, "CURRENT_TIMESTAMP", n.Name)
				assert.True(t, n.NoParens)
			},
		},
		{
			name: "qualified column",
			expr: "s.t.c",
			check: func(t *testing.T, e core.Expr) {
				n, ok := e.(*core.ColumnRef)
				require.True(t, ok)
				assert.Equal(t, "t", n.Table)
				assert.Equal(t, "c", n.Column)
			},
		},
		{
			name: "bitwise",
			expr: "a & 1 | b << 2",
			check: func(t *testing.T, e core.Expr) {
				n, ok := e.(*core.BinaryExpr)
				require.True(t, ok)
				assert.Equal(t, token.SHL, n.Op)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, parseExpr(t, tt.expr))
		})
	}
}

func TestParameters(t *testing.T) {
	sc := parseSelect(t, "SELECT ?, ?5, ?, $2")
	require.Len(t, sc.Columns, 4)

	var indexes []int
	for _, item := range sc.Columns {
		p, ok := item.Expr.(*core.Param)
		require.True(t, ok)
		indexes = append(indexes, p.Index)
	}
	assert.Equal(t, []int{1, 5, 6, 2}, indexes)
}

func TestExpressionSpans(t *testing.T) {
	sc := parseSelect(t, "SELECT a + 10 FROM t")
	expr := sc.Columns[0].Expr
	span := core.SpanOf(expr)

	assert.Equal(t, 7, span.Start.Offset)
	assert.Equal(t, 13, span.End.Offset)
	assert.Equal(t, token.Position{Line: 1, Column: 8, Offset: 7}, expr.Pos())
}
