package format_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/dialects/generic"
	"github.com/truffle-sql/truffle/pkg/format"
	"github.com/truffle-sql/truffle/pkg/parser"
)

func TestStatement(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"select a, b from t", "SELECT a, b FROM t"},
		{"select distinct a as x from t where x = 1", "SELECT DISTINCT a AS x FROM t WHERE x = 1"},
		{"select * from a join b using (id) left join c on c.id = a.id", "SELECT * FROM a INNER JOIN b USING (id) LEFT JOIN c ON c.id = a.id"},
		{"select t.* from t, u", "SELECT t.* FROM t, u"},
		{"select a, count(*) from t group by a having count(*) > 1 order by a desc limit 10 offset 5",
			"SELECT a, COUNT(*) FROM t GROUP BY a HAVING COUNT(*) > 1 ORDER BY a DESC LIMIT 10 OFFSET 5"},
		{"select a from t union all select b from u", "SELECT a FROM t UNION ALL SELECT b FROM u"},
		{"insert into t (a, b) values (1, 'x'), (?, null)", "INSERT INTO t (a, b) VALUES (1, 'x'), (?, NULL)"},
		{"insert into t default values", "INSERT INTO t DEFAULT VALUES"},
		{"insert into t (id) values (1) on conflict (id) do update set n = excluded.n returning *",
			"INSERT INTO t (id) VALUES (1) ON CONFLICT (id) DO UPDATE SET n = excluded.n RETURNING *"},
		{"update t set a = 1 where b is not null", "UPDATE t SET a = 1 WHERE b IS NOT NULL"},
		{"delete from t where a in (1, 2)", "DELETE FROM t WHERE a IN (1, 2)"},
		{"create table if not exists t (id int primary key, name text not null default 'x')",
			"CREATE TABLE IF NOT EXISTS t (id INT PRIMARY KEY, name TEXT NOT NULL DEFAULT 'x')"},
		{"drop table if exists a, b", "DROP TABLE IF EXISTS a, b"},
		{"alter table t add column c int, drop column d", "ALTER TABLE t ADD COLUMN c INT, DROP COLUMN d"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			stmt, err := parser.ParseStatement(tt.input, generic.Generic)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, format.Statement(stmt))
		})
	}
}

func TestExpr(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"a + b * 2", "a + b * 2"},
		{"(a + b) * 2", "(a + b) * 2"},
		{"not a", "NOT a"},
		{"-x", "-x"},
		{"case when a then 1 else 2 end", "CASE WHEN a THEN 1 ELSE 2 END"},
		{"cast(a as varchar(10))", "CAST(a AS VARCHAR(10))"},
		{"a not between 1 and 2", "a NOT BETWEEN 1 AND 2"},
		{"name like 'a%'", "name LIKE 'a%'"},
		{"a is distinct from b", "a IS DISTINCT FROM b"},
		{"exists (select 1 from t)", "EXISTS (SELECT 1 FROM t)"},
		{"'it''s'", "'it''s'"},
		{"current_date", "CURRENT_DATE"},
		{"count(distinct a)", "COUNT(DISTINCT a)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			stmt, err := parser.ParseStatement("SELECT "+tt.input, generic.Generic)
			require.NoError(t, err)
			sel := stmt.(*core.SelectStmt)
			assert.Equal(t, tt.expected, format.Expr(sel.Body.Left.Columns[0].Expr))
		})
	}
}

func TestKey(t *testing.T) {
	parse := func(s string) core.Expr {
		stmt, err := parser.ParseStatement("SELECT "+s, generic.Generic)
		require.NoError(t, err)
		return stmt.(*core.SelectStmt).Body.Left.Columns[0].Expr
	}

	assert.Equal(t, format.Key(parse("Lower(T.Name)"), generic.Generic), format.Key(parse("lower(t.name)"), generic.Generic))
	assert.Equal(t, format.Key(parse("((a + 1))"), generic.Generic), format.Key(parse("a + 1"), generic.Generic))
	assert.NotEqual(t, format.Key(parse("a + 1"), generic.Generic), format.Key(parse("a + 2"), generic.Generic))
}
