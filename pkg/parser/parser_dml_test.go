package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/dialects/generic"
	"github.com/truffle-sql/truffle/pkg/parser"
)

func parseStmt[T core.Stmt](t *testing.T, sql string) T {
	t.Helper()
	stmt, err := parser.ParseStatement(sql, generic.Generic)
	require.NoError(t, err)
	out, ok := stmt.(T)
	require.True(t, ok, "unexpected statement type %T", stmt)
	return out
}

// ---------- INSERT Tests ----------

func TestInsertValues(t *testing.T) {
	ins := parseStmt[*core.InsertStmt](t, "INSERT INTO users (id, name) VALUES (1, 'a'), (2, DEFAULT)")

	assert.Equal(t, "users", ins.Table.Name)
	require.Len(t, ins.Columns, 2)
	assert.Equal(t, "name", ins.Columns[1].Name)
	require.Len(t, ins.Values, 2)
	require.Len(t, ins.Values[1], 2)
	assert.IsType(t, &core.DefaultExpr{}, ins.Values[1][1])
	assert.Nil(t, ins.Select)
	assert.False(t, ins.DefaultValues)
}

func TestInsertForms(t *testing.T) {
	t.Run("select", func(t *testing.T) {
		ins := parseStmt[*core.InsertStmt](t, "INSERT INTO t (a, b) SELECT x, y FROM u WHERE x > 0")
		require.NotNil(t, ins.Select)
		assert.Empty(t, ins.Values)
	})

	t.Run("default values", func(t *testing.T) {
		ins := parseStmt[*core.InsertStmt](t, "INSERT INTO t DEFAULT VALUES")
		assert.True(t, ins.DefaultValues)
		assert.Empty(t, ins.Columns)
	})

	t.Run("conflict resolution and alias", func(t *testing.T) {
		ins := parseStmt[*core.InsertStmt](t, "INSERT OR REPLACE INTO main.t AS x VALUES (1)")
		assert.Equal(t, "main", ins.Table.Schema)
		assert.Equal(t, "x", ins.Table.Alias)
	})
}

func TestInsertOnConflict(t *testing.T) {
	ins := parseStmt[*core.InsertStmt](t, `INSERT INTO counters (id, n) VALUES (1, 1)
		ON CONFLICT (id) DO UPDATE SET n = counters.n + excluded.n WHERE counters.n < 10
		RETURNING id, n AS new_n`)

	oc := ins.OnConflict
	require.NotNil(t, oc)
	require.Len(t, oc.Target, 1)
	assert.Equal(t, "id", oc.Target[0].Name)
	assert.False(t, oc.DoNothing)
	require.Len(t, oc.Set, 1)
	assert.Equal(t, "n", oc.Set[0].Column.Name)
	assert.NotNil(t, oc.Where)

	require.Len(t, ins.Returning, 2)
	assert.Equal(t, "new_n", ins.Returning[1].Alias)

	nothing := parseStmt[*core.InsertStmt](t, "INSERT INTO t VALUES (1) ON CONFLICT DO NOTHING")
	require.NotNil(t, nothing.OnConflict)
	assert.True(t, nothing.OnConflict.DoNothing)
	assert.Empty(t, nothing.OnConflict.Target)
}

// ---------- UPDATE / DELETE Tests ----------

func TestUpdate(t *testing.T) {
	upd := parseStmt[*core.UpdateStmt](t, `UPDATE accounts AS a
		SET balance = a.balance - t.amount, updated = CURRENT_TIMESTAMP
		FROM transfers t
		WHERE t.account_id = a.id`)

	assert.Equal(t, "accounts", upd.Table.Name)
	assert.Equal(t, "a", upd.Table.Alias)
	require.Len(t, upd.Set, 2)
	assert.Equal(t, "balance", upd.Set[0].Column.Name)
	assert.Equal(t, "updated", upd.Set[1].Column.Name)
	require.NotNil(t, upd.From)
	assert.Equal(t, "t", upd.From.Source.(*core.TableName).Alias)
	assert.NotNil(t, upd.Where)
}

func TestDelete(t *testing.T) {
	del := parseStmt[*core.DeleteStmt](t, "DELETE FROM orders o USING users u WHERE o.user_id = u.id AND u.banned")
	assert.Equal(t, "o", del.Table.Alias)
	require.NotNil(t, del.Using)
	assert.Equal(t, "users", del.Using.Source.(*core.TableName).Name)
	assert.NotNil(t, del.Where)

	bare := parseStmt[*core.DeleteStmt](t, "DELETE FROM orders")
	assert.Nil(t, bare.Where)
	assert.Nil(t, bare.Using)
}

// ---------- MERGE Tests ----------

func TestMerge(t *testing.T) {
	m := parseStmt[*core.MergeStmt](t, `MERGE INTO inventory i
		USING shipments s ON i.sku = s.sku
		WHEN MATCHED AND s.qty = 0 THEN DELETE
		WHEN MATCHED THEN UPDATE SET qty = i.qty + s.qty
		WHEN NOT MATCHED THEN INSERT (sku, qty) VALUES (s.sku, s.qty)
		WHEN NOT MATCHED THEN DO NOTHING`)

	assert.Equal(t, "i", m.Target.Alias)
	assert.Equal(t, "shipments", m.Source.Name)
	assert.NotNil(t, m.On)
	require.Len(t, m.Clauses, 4)

	tests := []struct {
		matched  bool
		action   core.MergeAction
		hasCond  bool
		setCount int
		valCount int
	}{
		{true, core.MergeDelete, true, 0, 0},
		{true, core.MergeUpdate, false, 1, 0},
		{false, core.MergeInsert, false, 0, 2},
		{false, core.MergeDoNothing, false, 0, 0},
	}
	for i, tt := range tests {
		t.Run(tt.action.String(), func(t *testing.T) {
			c := m.Clauses[i]
			assert.Equal(t, tt.matched, c.Matched)
			assert.Equal(t, tt.action, c.Action)
			assert.Equal(t, tt.hasCond, c.Condition != nil)
			assert.Len(t, c.Set, tt.setCount)
			assert.Len(t, c.Values, tt.valCount)
		})
	}
	assert.Len(t, m.Clauses[2].Columns, 2)
}

// ---------- DML Error Tests ----------

func TestDMLErrors(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{"insert without source", "INSERT INTO t", "VALUES, SELECT or DEFAULT VALUES"},
		{"insert missing into", "INSERT t VALUES (1)", "expected INTO"},
		{"update returning", "UPDATE t SET a = 1 RETURNING a", "RETURNING is only supported on INSERT"},
		{"delete returning", "DELETE FROM t RETURNING *", "RETURNING is only supported on INSERT"},
		{"qualified set column", "UPDATE t SET t.a = 1", "qualified column names are not allowed in SET"},
		{"update without set", "UPDATE t WHERE a = 1", "expected SET"},
		{"bad conflict action", "INSERT INTO t VALUES (1) ON CONFLICT DO EXPLODE", "NOTHING or UPDATE"},
		{"merge derived source", "MERGE INTO t USING (SELECT 1) s ON t.id = s.id WHEN MATCHED THEN DELETE", "derived tables"},
		{"merge without when", "MERGE INTO t USING s ON t.id = s.id", "expected WHEN"},
		{"merge bad action", "MERGE INTO t USING s ON t.id = s.id WHEN MATCHED THEN EXPLODE", "UPDATE, DELETE, INSERT or DO NOTHING"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.ParseStatement(tt.sql, generic.Generic)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
