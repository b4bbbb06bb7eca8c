package dag_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truffle-sql/truffle/internal/dag"
	"github.com/truffle-sql/truffle/pkg/catalog"
	"github.com/truffle-sql/truffle/pkg/dialects/generic"
	"github.com/truffle-sql/truffle/pkg/sim"
)

func build(t *testing.T, sql string) catalog.Reader {
	t.Helper()
	s := sim.New()
	rep := s.ExecuteSQL(sql)
	require.True(t, rep.OK(), rep.Diagnostics().Error())
	return s.Catalog()
}

const shop = `
CREATE TABLE users (id INT PRIMARY KEY, manager_id INT REFERENCES users (id));
CREATE TABLE products (id INT PRIMARY KEY);
CREATE TABLE orders (id INT PRIMARY KEY, user_id INT REFERENCES Users (id));
CREATE TABLE items (
	order_id INT REFERENCES orders (id),
	product_id INT REFERENCES products (id),
	gift_for INT REFERENCES users (id)
);
`

func TestFromCatalog(t *testing.T) {
	g := dag.FromCatalog(build(t, shop))

	assert.Equal(t, 4, g.Len())
	// users->orders, orders->items, products->items, users->items; the
	// self-reference on users is ignored.
	assert.Equal(t, 4, g.EdgeCount())
	assert.Equal(t, []string{"orders", "products", "users"}, g.References("items"))
	assert.Equal(t, []string{"items", "orders"}, g.ReferencedBy("users"))
	assert.Empty(t, g.References("users"))
}

func TestTransitiveLookups(t *testing.T) {
	g := dag.FromCatalog(build(t, shop))

	tests := []struct {
		table        string
		dependencies []string
		dependents   []string
	}{
		{"users", []string{}, []string{"items", "orders"}},
		{"orders", []string{"users"}, []string{"items"}},
		{"items", []string{"orders", "products", "users"}, []string{}},
		{"missing", []string{}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			assert.Equal(t, tt.dependencies, g.Dependencies(tt.table))
			assert.Equal(t, tt.dependents, g.Dependents(tt.table))
		})
	}
}

func TestLevels(t *testing.T) {
	levels, err := dag.FromCatalog(build(t, shop)).Levels()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"users", "products"},
		{"orders"},
		{"items"},
	}, levels)
}

func TestLevelsEmpty(t *testing.T) {
	levels, err := dag.FromCatalog(catalog.New(generic.Generic)).Levels()
	require.NoError(t, err)
	assert.Empty(t, levels)
}

func TestCycle(t *testing.T) {
	g := dag.FromCatalog(build(t, `
		CREATE TABLE a (id INT PRIMARY KEY, b_id INT);
		CREATE TABLE b (id INT PRIMARY KEY, a_id INT REFERENCES a (id));
		ALTER TABLE a ADD CONSTRAINT fk_b FOREIGN KEY (b_id) REFERENCES b (id);
	`))

	cycle := g.Cycle()
	require.Len(t, cycle, 3)
	assert.Equal(t, cycle[0], cycle[2])

	_, err := g.Levels()
	require.Error(t, err)
	assert.True(t, errors.Is(err, dag.ErrCycle))
	assert.Contains(t, err.Error(), "a -> b -> a")
}
