package catalog_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/truffle-sql/truffle/pkg/catalog"
	"github.com/truffle-sql/truffle/pkg/dialects/generic"
	"github.com/truffle-sql/truffle/pkg/dialects/sqlite"
	"github.com/truffle-sql/truffle/pkg/types"
)

func users(c *catalog.Catalog) *catalog.Table {
	t := catalog.NewTable("users", c.Folder())
	t.Columns = []*catalog.Column{
		{Name: "id", Kind: types.Integer},
		{Name: "email", Kind: types.Text},
		{Name: "name", Kind: types.Text, Nullable: true},
	}
	t.Keys = []*catalog.Key{
		{Primary: true, Columns: []string{"id"}},
		{Columns: []string{"email"}},
	}
	return t
}

func orders(c *catalog.Catalog) *catalog.Table {
	t := catalog.NewTable("orders", c.Folder())
	t.Columns = []*catalog.Column{
		{Name: "id", Kind: types.Integer},
		{Name: "user_id", Kind: types.Integer, Nullable: true},
	}
	t.Keys = []*catalog.Key{{Primary: true, Columns: []string{"id"}}}
	t.ForeignKeys = []*catalog.ForeignKey{
		{Columns: []string{"user_id"}, RefTable: "users", RefColumns: []string{"id"}, OnDelete: "CASCADE"},
	}
	return t
}

func requireCode(t *testing.T, err error, code catalog.Code) {
	t.Helper()
	var ce *catalog.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, code, ce.Code)
}

func TestNewPanicsWithoutFolder(t *testing.T) {
	assert.Panics(t, func() { catalog.New(nil) })
}

func TestDefineTable(t *testing.T) {
	c := catalog.New(generic.Generic)
	require.NoError(t, c.DefineTable(users(c), false))

	got, ok := c.LookupTable("USERS")
	require.True(t, ok)
	assert.Equal(t, []string{"id", "email", "name"}, got.ColumnNames())

	err := c.DefineTable(users(c), false)
	requireCode(t, err, catalog.CodeDuplicateTable)
	assert.Equal(t, `table "users" already exists`, err.Error())

	require.NoError(t, c.DefineTable(users(c), true), "IF NOT EXISTS is a no-op")
	assert.Equal(t, 1, c.Len())
}

func TestDefineTableDuplicateColumn(t *testing.T) {
	c := catalog.New(generic.Generic)
	tbl := catalog.NewTable("t", c.Folder())
	tbl.Columns = []*catalog.Column{{Name: "a", Kind: types.Integer}, {Name: "A", Kind: types.Text}}

	err := c.DefineTable(tbl, false)
	requireCode(t, err, catalog.CodeDuplicateColumn)
	assert.Equal(t, 0, c.Len())
}

func TestDefineTableCopiesInput(t *testing.T) {
	c := catalog.New(generic.Generic)
	tbl := users(c)
	require.NoError(t, c.DefineTable(tbl, false))

	tbl.Columns[0].Name = "changed"
	got, _ := c.LookupTable("users")
	assert.Equal(t, "id", got.Columns[0].Name)
}

func TestTablesInDefinitionOrder(t *testing.T) {
	c := catalog.New(generic.Generic)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		tbl := catalog.NewTable(name, c.Folder())
		tbl.Columns = []*catalog.Column{{Name: "id", Kind: types.Integer}}
		require.NoError(t, c.DefineTable(tbl, false))
	}

	var names []string
	for _, tbl := range c.Tables() {
		names = append(names, tbl.Name)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, names)
}

func TestDropTable(t *testing.T) {
	c := catalog.New(generic.Generic)
	require.NoError(t, c.DefineTable(users(c), false))
	require.NoError(t, c.DefineTable(orders(c), false))

	err := c.DropTable("users", false)
	requireCode(t, err, catalog.CodeForeignKeyReference)
	assert.Contains(t, err.Error(), `referenced by a foreign key on table "orders"`)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"orders"}, c.Referencing("users"))

	requireCode(t, c.DropTable("missing", false), catalog.CodeUnknownTable)
	require.NoError(t, c.DropTable("missing", true))

	require.NoError(t, c.DropTables([]string{"users", "orders"}, false), "dropping both sides together is allowed")
	assert.Equal(t, 0, c.Len())
}

func TestDropTablesIsAtomic(t *testing.T) {
	c := catalog.New(generic.Generic)
	require.NoError(t, c.DefineTable(users(c), false))

	err := c.DropTables([]string{"users", "missing"}, false)
	requireCode(t, err, catalog.CodeUnknownTable)
	_, ok := c.LookupTable("users")
	assert.True(t, ok)
}

func TestAlterTable(t *testing.T) {
	tests := []struct {
		name  string
		ops   []catalog.AlterOp
		check func(t *testing.T, c *catalog.Catalog)
	}{
		{
			name: "add column",
			ops:  []catalog.AlterOp{catalog.AddColumn{Column: &catalog.Column{Name: "age", Kind: types.Integer, Nullable: true}}},
			check: func(t *testing.T, c *catalog.Catalog) {
				tbl, _ := c.LookupTable("users")
				assert.Equal(t, []string{"id", "email", "name", "age"}, tbl.ColumnNames())
			},
		},
		{
			name: "drop column removes its key",
			ops:  []catalog.AlterOp{catalog.DropColumn{Name: "email"}},
			check: func(t *testing.T, c *catalog.Catalog) {
				tbl, _ := c.LookupTable("users")
				assert.Equal(t, []string{"id", "name"}, tbl.ColumnNames())
				assert.False(t, tbl.IsUnique([]string{"email"}))
				assert.Len(t, tbl.Keys, 1)
			},
		},
		{
			name: "rename column follows foreign keys",
			ops:  []catalog.AlterOp{catalog.RenameColumn{From: "id", To: "user_id"}},
			check: func(t *testing.T, c *catalog.Catalog) {
				tbl, _ := c.LookupTable("users")
				assert.True(t, tbl.IsPrimaryKey([]string{"user_id"}))
				o, _ := c.LookupTable("orders")
				assert.Equal(t, []string{"user_id"}, o.ForeignKeys[0].RefColumns)
			},
		},
		{
			name: "rename table follows foreign keys",
			ops:  []catalog.AlterOp{catalog.RenameTable{To: "people"}, catalog.SetNotNull{Name: "name", NotNull: true}},
			check: func(t *testing.T, c *catalog.Catalog) {
				_, ok := c.LookupTable("users")
				assert.False(t, ok)
				p, ok := c.LookupTable("people")
				require.True(t, ok)
				col, _ := p.Column("name")
				assert.False(t, col.Nullable)
				o, _ := c.LookupTable("orders")
				assert.Equal(t, "people", o.ForeignKeys[0].RefTable)
				assert.Equal(t, "people", c.Tables()[0].Name)
			},
		},
		{
			name: "retype and default",
			ops: []catalog.AlterOp{
				catalog.SetColumnType{Name: "id", Kind: types.BigInt, DeclaredType: "BIGINT"},
				catalog.SetDefault{Name: "name", HasDefault: true, Default: "'anon'"},
			},
			check: func(t *testing.T, c *catalog.Catalog) {
				tbl, _ := c.LookupTable("users")
				assert.Equal(t, types.BigInt, tbl.Columns[0].Kind)
				assert.True(t, tbl.Columns[2].HasDefault)
			},
		},
		{
			name: "add unique key",
			ops:  []catalog.AlterOp{catalog.AddKey{Key: &catalog.Key{Columns: []string{"name", "email"}}}},
			check: func(t *testing.T, c *catalog.Catalog) {
				tbl, _ := c.LookupTable("users")
				assert.True(t, tbl.IsUnique([]string{"email", "name"}))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := catalog.New(generic.Generic)
			require.NoError(t, c.DefineTable(users(c), false))
			require.NoError(t, c.DefineTable(orders(c), false))

			require.NoError(t, c.AlterTable("users", tt.ops...))
			tt.check(t, c)
		})
	}
}

func TestAlterTableIsAllOrNothing(t *testing.T) {
	c := catalog.New(generic.Generic)
	require.NoError(t, c.DefineTable(users(c), false))
	require.NoError(t, c.DefineTable(orders(c), false))
	before := c.Snapshot()

	err := c.AlterTable("users",
		catalog.AddColumn{Column: &catalog.Column{Name: "age", Kind: types.Integer}},
		catalog.DropColumn{Name: "nope"},
		catalog.RenameColumn{From: "name", To: "email"},
		catalog.DropColumn{Name: "id"},
	)
	require.Error(t, err)

	var codes []catalog.Code
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var ce *catalog.Error
		require.True(t, errors.As(e, &ce))
		codes = append(codes, ce.Code)
	}
	assert.Equal(t, []catalog.Code{
		catalog.CodeUnknownColumn,
		catalog.CodeDuplicateColumn,
		catalog.CodeForeignKeyReference,
	}, codes)
	assert.True(t, c.Equal(before), "a rejected ALTER leaves the schema untouched")

	requireCode(t, c.AlterTable("missing", catalog.DropColumn{Name: "x"}), catalog.CodeUnknownTable)
}

func TestSnapshotIsIndependent(t *testing.T) {
	c := catalog.New(generic.Generic)
	require.NoError(t, c.DefineTable(users(c), false))
	snap := c.Snapshot()

	require.NoError(t, c.AlterTable("users", catalog.DropColumn{Name: "name"}))
	assert.False(t, c.Equal(snap))

	tbl, _ := snap.LookupTable("users")
	assert.Len(t, tbl.Columns, 3)
}

func TestCaseFolding(t *testing.T) {
	c := catalog.New(sqlite.SQLite)
	tbl := catalog.NewTable("Ärzte", c.Folder())
	tbl.Columns = []*catalog.Column{{Name: "ID", Kind: types.Integer}}
	require.NoError(t, c.DefineTable(tbl, false))

	got, ok := c.LookupTable("äRZTE")
	require.True(t, ok, "sqlite folds with Unicode case folding")
	_, ok = got.Column("id")
	assert.True(t, ok)
}

func TestKeys(t *testing.T) {
	c := catalog.New(generic.Generic)
	tbl := users(c)
	tbl.Keys = append(tbl.Keys, &catalog.Key{Columns: []string{"name", "email"}})

	assert.True(t, tbl.IsPrimaryKey([]string{"ID"}))
	assert.False(t, tbl.IsPrimaryKey([]string{"email"}))
	assert.True(t, tbl.IsUnique([]string{"id"}))
	assert.True(t, tbl.IsUnique([]string{"email", "name"}))
	assert.False(t, tbl.IsUnique([]string{"name"}))
	assert.False(t, tbl.IsUnique(nil))
}

func TestDiff(t *testing.T) {
	from := catalog.New(generic.Generic)
	require.NoError(t, from.DefineTable(users(from), false))
	legacy := catalog.NewTable("legacy", from.Folder())
	legacy.Columns = []*catalog.Column{{Name: "x", Kind: types.Text, Nullable: true}}
	require.NoError(t, from.DefineTable(legacy, false))

	to := from.Snapshot()
	require.NoError(t, to.DropTable("legacy", false))
	require.NoError(t, to.AlterTable("users",
		catalog.AddColumn{Column: &catalog.Column{Name: "age", Kind: types.Integer, Nullable: true}},
		catalog.DropColumn{Name: "name"},
		catalog.SetColumnType{Name: "id", Kind: types.BigInt},
	))
	require.NoError(t, to.DefineTable(orders(to), false))

	var lines []string
	for _, ch := range catalog.Diff(from, to) {
		lines = append(lines, ch.String())
	}
	assert.Equal(t, []string{
		"~ column users.id: integer NOT NULL -> bigint NOT NULL",
		"+ column users.age integer",
		"- column users.name",
		"+ table orders",
		"- table legacy",
	}, lines)

	assert.Empty(t, catalog.Diff(to, to.Snapshot()))
}

func TestMarshal(t *testing.T) {
	c := catalog.New(generic.Generic)
	require.NoError(t, c.DefineTable(users(c), false))

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tables":[{"name":"users","columns":[
		{"name":"id","kind":"integer","nullable":false},
		{"name":"email","kind":"text","nullable":false},
		{"name":"name","kind":"text","nullable":true}],
		"keys":[{"primary":true,"columns":["id"]},{"columns":["email"]}]}]}`, string(data))

	out, err := yaml.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(out), "tables:\n    - name: users\n")
	assert.Contains(t, string(out), "kind: integer")
}
