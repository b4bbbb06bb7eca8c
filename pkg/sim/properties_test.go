package sim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truffle-sql/truffle/internal/testutil"
	"github.com/truffle-sql/truffle/pkg/diag"
	"github.com/truffle-sql/truffle/pkg/sim"
)

func newSim(t *testing.T) *sim.Simulator {
	t.Helper()
	return sim.New(sim.WithLogger(testutil.NewTestLogger(t)))
}

func TestWellFormedQueryIsAccepted(t *testing.T) {
	s := newSim(t)
	rep := s.ExecuteSQL(`CREATE TABLE t (id INT PRIMARY KEY, name TEXT NOT NULL); SELECT id, name FROM t;`)
	require.Len(t, rep.Results, 2)
	assert.Empty(t, rep.Diagnostics())
	assert.True(t, rep.OK())
}

func TestUnknownColumnIsOneResolutionError(t *testing.T) {
	s := newSim(t)
	rep := s.ExecuteSQL(`CREATE TABLE t (id INT); SELECT bogus FROM t;`)
	diags := rep.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, diag.ResolutionError, diags[0].Kind)
	assert.Equal(t, diag.CodeUnresolved, diags[0].Code)
	assert.Contains(t, diags[0].Message, "bogus")
}

func TestUnqualifiedColumnInBothSourcesIsAmbiguous(t *testing.T) {
	s := newSim(t)
	require.True(t, s.ExecuteSQL(`CREATE TABLE a (id INT); CREATE TABLE b (id INT);`).OK())

	rep := s.ExecuteSQL(`SELECT id FROM a JOIN b ON a.id = b.id;`)
	diags := rep.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, diag.ResolutionError, diags[0].Kind)
	assert.Equal(t, diag.CodeAmbiguousColumn, diags[0].Code)
	assert.Contains(t, diags[0].Message, "id")

	assert.True(t, s.ExecuteSQL(`SELECT a.id FROM a JOIN b ON a.id = b.id;`).OK())
}

func TestUngroupedColumnIsScopeError(t *testing.T) {
	s := newSim(t)
	require.True(t, s.ExecuteSQL(`CREATE TABLE person (name TEXT, age INT);`).OK())

	diags := s.ExecuteSQL(`SELECT name, age FROM person GROUP BY name;`).Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, diag.ScopeError, diags[0].Kind)
	assert.Equal(t, diag.CodeNotInGroupBy, diags[0].Code)
	assert.Contains(t, diags[0].Message, "age")

	assert.Empty(t, s.ExecuteSQL(`SELECT name, COUNT(*) FROM person GROUP BY name;`).Diagnostics())

	require.True(t, s.ExecuteSQL(`CREATE TABLE o (n INT);`).OK())
	correlated := s.ExecuteSQL(`SELECT name, (SELECT o.n FROM o WHERE o.n = age) FROM person GROUP BY name;`).Diagnostics()
	require.Len(t, correlated, 1)
	assert.Equal(t, diag.CodeNotInGroupBy, correlated[0].Code)
}

func TestLeftJoinMakesRightSideNullable(t *testing.T) {
	s := newSim(t)
	rep := s.ExecuteSQL(`
		CREATE TABLE a (id INT);
		CREATE TABLE b (id INT, x TEXT NOT NULL);
		SELECT b.x FROM a LEFT JOIN b ON a.id = b.id;
	`)
	require.True(t, rep.OK(), rep.Diagnostics().Error())

	outputs := rep.Last().Outputs
	require.Len(t, outputs, 1)
	assert.Equal(t, "x", outputs[0].Name)
	assert.True(t, outputs[0].Type.Nullable)

	inner := s.ExecuteSQL(`SELECT b.x FROM a JOIN b ON a.id = b.id;`).Last()
	require.Len(t, inner.Outputs, 1)
	assert.False(t, inner.Outputs[0].Type.Nullable)
}

func TestCreateTableIdempotence(t *testing.T) {
	s := newSim(t)
	for range 2 {
		assert.Empty(t, s.ExecuteSQL(`CREATE TABLE IF NOT EXISTS t (id INT);`).Diagnostics())
	}

	s.Reset()
	require.True(t, s.ExecuteSQL(`CREATE TABLE t (id INT);`).OK())
	before := s.Snapshot()

	diags := s.ExecuteSQL(`CREATE TABLE t (id INT);`).Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, diag.CatalogError, diags[0].Kind)
	assert.Equal(t, diag.CodeDuplicateTable, diags[0].Code)
	assert.True(t, before.Equal(s.Catalog()))
}

func TestAcceptedStatementIsDeterministic(t *testing.T) {
	s := newSim(t)
	require.True(t, s.ExecuteSQL(`
		CREATE TABLE users (id INT PRIMARY KEY, name TEXT NOT NULL, age INT);
		CREATE TABLE orders (id INT PRIMARY KEY, user_id INT REFERENCES users(id), total DOUBLE);
	`).OK())

	statements := []string{
		`SELECT u.name, SUM(o.total) AS spent FROM users u JOIN orders o ON o.user_id = u.id GROUP BY u.name HAVING SUM(o.total) > 10 ORDER BY spent DESC LIMIT 5`,
		`SELECT name FROM users WHERE age > $1 AND name LIKE $2`,
		`INSERT INTO orders (id, user_id, total) VALUES (1, 1, 9.5)`,
		`UPDATE users SET age = age + 1 WHERE id = 1`,
		`DELETE FROM orders WHERE total < 1`,
	}
	for _, sql := range statements {
		t.Run(sql, func(t *testing.T) {
			before := s.Snapshot()
			first := s.ExecuteSQL(sql)
			require.True(t, first.OK(), first.Diagnostics().Error())
			second := s.ExecuteSQL(sql)
			assert.Empty(t, second.Diagnostics())
			assert.Equal(t, first.Last().Inputs, second.Last().Inputs)
			assert.Equal(t, first.Last().Outputs, second.Last().Outputs)
			assert.True(t, before.Equal(s.Catalog()))
		})
	}
}
