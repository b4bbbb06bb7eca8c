package scope_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truffle-sql/truffle/pkg/catalog"
	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/diag"
	"github.com/truffle-sql/truffle/pkg/dialects/generic"
	"github.com/truffle-sql/truffle/pkg/scope"
	"github.com/truffle-sql/truffle/pkg/types"
)

func table(name string, cols ...*catalog.Column) *catalog.Table {
	t := catalog.NewTable(name, generic.Generic)
	t.Columns = cols
	return t
}

func col(name string, k types.Kind, nullable bool) *catalog.Column {
	return &catalog.Column{Name: name, Kind: k, Nullable: nullable}
}

func newManager() *scope.Manager {
	return scope.NewManager(generic.Generic, types.DefaultSystem())
}

func requireDiag(t *testing.T, err error, kind diag.Kind, code diag.Code) {
	t.Helper()
	var de *diag.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, kind, de.Kind)
	assert.Equal(t, code, de.Code)
}

var (
	people = table("people", col("id", types.Integer, false), col("name", types.Text, false))
	pets   = table("pets", col("id", types.Integer, false), col("owner", types.Integer, true), col("name", types.Text, false))
	tags   = table("tags", col("id", types.Text, false), col("label", types.Text, true))
)

func TestResolve(t *testing.T) {
	m := newManager()
	sc := m.NewTable("p", people)

	b, depth, err := sc.Resolve("NAME")
	require.NoError(t, err)
	assert.Equal(t, 0, depth)
	assert.Equal(t, "p", b.Qualifier)
	assert.Equal(t, "people", b.Table)
	assert.Equal(t, types.NotNull(types.Text), b.Type)
	assert.Equal(t, "p.name", b.Key())

	_, _, err = sc.Resolve("bogus")
	requireDiag(t, err, diag.ResolutionError, diag.CodeUnresolved)
	assert.Equal(t, `column "bogus" does not exist`, err.Error())
}

func TestResolveQualified(t *testing.T) {
	m := newManager()
	sc := m.NewTable("", people)

	b, _, err := sc.ResolveQualified("PEOPLE", "id")
	require.NoError(t, err)
	assert.Equal(t, "people", b.Qualifier)

	_, _, err = sc.ResolveQualified("people", "age")
	requireDiag(t, err, diag.ResolutionError, diag.CodeUnresolved)
	assert.Equal(t, "column people.age does not exist", err.Error())

	_, _, err = sc.ResolveQualified("x", "id")
	requireDiag(t, err, diag.ResolutionError, diag.CodeUnknownQualifier)
}

func TestJoinNullability(t *testing.T) {
	tests := []struct {
		kind      core.JoinType
		leftNull  bool
		rightNull bool
	}{
		{core.JoinInner, false, false},
		{core.JoinCross, false, false},
		{core.JoinComma, false, false},
		{core.JoinLeft, false, true},
		{core.JoinRight, true, false},
		{core.JoinFull, true, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			m := newManager()
			sc, err := m.Join(m.NewTable("p", people), m.NewTable("q", pets), tt.kind, false, nil)
			require.NoError(t, err)

			l, _, err := sc.ResolveQualified("p", "name")
			require.NoError(t, err)
			r, _, err := sc.ResolveQualified("q", "name")
			require.NoError(t, err)
			assert.Equal(t, tt.leftNull, l.Type.Nullable)
			assert.Equal(t, tt.rightNull, r.Type.Nullable)

			owner, _, err := sc.Resolve("owner")
			require.NoError(t, err)
			assert.True(t, owner.Type.Nullable, "declared nullable stays nullable")
		})
	}
}

func TestJoinDoesNotModifyInputs(t *testing.T) {
	m := newManager()
	right := m.NewTable("", pets)
	_, err := m.Join(m.NewTable("", people), right, core.JoinLeft, false, nil)
	require.NoError(t, err)

	b, _, err := right.ResolveQualified("pets", "name")
	require.NoError(t, err)
	assert.False(t, b.Type.Nullable)
}

func TestAmbiguousColumn(t *testing.T) {
	m := newManager()
	sc, err := m.Join(m.NewTable("", people), m.NewTable("", pets), core.JoinInner, false, nil)
	require.NoError(t, err)

	_, _, err = sc.Resolve("id")
	requireDiag(t, err, diag.ResolutionError, diag.CodeAmbiguousColumn)
	assert.Contains(t, err.Error(), `"people", "pets"`)

	_, _, err = sc.ResolveQualified("people", "id")
	assert.NoError(t, err)
}

func TestJoinUsing(t *testing.T) {
	m := newManager()
	sc, err := m.Join(m.NewTable("", people), m.NewTable("", pets), core.JoinLeft, false, []string{"id", "name"})
	require.NoError(t, err)

	id, _, err := sc.Resolve("id")
	require.NoError(t, err, "merged columns are not ambiguous")
	assert.Empty(t, id.Qualifier)
	assert.Equal(t, types.NotNull(types.Integer), id.Type, "LEFT keeps the left side's nullability")

	q, _, err := sc.ResolveQualified("pets", "id")
	require.NoError(t, err)
	assert.True(t, q.Type.Nullable)

	all, err := sc.Expand("")
	require.NoError(t, err)
	var names []string
	for _, b := range all {
		names = append(names, b.Qualifier+"."+b.Name)
	}
	assert.Equal(t, []string{".id", ".name", "pets.owner"}, names)

	petsCols, err := sc.Expand("pets")
	require.NoError(t, err)
	assert.Len(t, petsCols, 3)
}

func TestJoinUsingErrors(t *testing.T) {
	tests := []struct {
		name  string
		right *catalog.Table
		using []string
		kind  diag.Kind
		code  diag.Code
	}{
		{"missing on left", pets, []string{"owner"}, diag.ResolutionError, diag.CodeUnknownColumn},
		{"missing on right", tags, []string{"name"}, diag.ResolutionError, diag.CodeUnknownColumn},
		{"type mismatch", tags, []string{"id"}, diag.TypeError, diag.CodeTypeMismatch},
		{"duplicate name", pets, []string{"id", "ID"}, diag.ResolutionError, diag.CodeAmbiguousColumn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newManager()
			_, err := m.Join(m.NewTable("", people), m.NewTable("", tt.right), core.JoinInner, false, tt.using)
			requireDiag(t, err, tt.kind, tt.code)
		})
	}
}

func TestNaturalJoin(t *testing.T) {
	m := newManager()
	sc, err := m.Join(m.NewTable("", people), m.NewTable("", pets), core.JoinFull, true, nil)
	require.NoError(t, err)

	name, _, err := sc.Resolve("name")
	require.NoError(t, err)
	assert.False(t, name.Type.Nullable, "FULL merge is null only when both sides are")

	other := table("other", col("x", types.Integer, false))
	_, err = m.Join(m.NewTable("", people), m.NewTable("", other), core.JoinInner, true, nil)
	requireDiag(t, err, diag.ResolutionError, diag.CodeNoCommonColumn)
}

func TestJoinAliasConflict(t *testing.T) {
	m := newManager()
	_, err := m.Join(m.NewTable("x", people), m.NewTable("X", pets), core.JoinInner, false, nil)
	requireDiag(t, err, diag.ResolutionError, diag.CodeAliasConflict)
}

func TestThreeWayJoin(t *testing.T) {
	m := newManager()
	ab, err := m.Join(m.NewTable("", people), m.NewTable("", pets), core.JoinInner, false, []string{"id"})
	require.NoError(t, err)
	abc, err := m.Join(ab, m.NewTable("", tags), core.JoinLeft, false, nil)
	require.NoError(t, err)

	_, _, err = abc.Resolve("id")
	requireDiag(t, err, diag.ResolutionError, diag.CodeAmbiguousColumn)

	label, _, err := abc.Resolve("label")
	require.NoError(t, err)
	assert.True(t, label.Type.Nullable)
	assert.Equal(t, []string{"people", "pets", "tags"}, abc.Aliases())
}

func TestExpandUnknownQualifier(t *testing.T) {
	m := newManager()
	_, err := m.NewTable("", people).Expand("nope")
	requireDiag(t, err, diag.ResolutionError, diag.CodeUnknownQualifier)
}

func TestChildScope(t *testing.T) {
	m := newManager()
	outer := m.NewTable("o", people)
	inner := m.NewTable("i", pets).WithParent(outer)

	b, depth, err := inner.Resolve("name")
	require.NoError(t, err)
	assert.Equal(t, 0, depth, "inner bindings win")
	assert.Equal(t, "i", b.Qualifier)

	b, depth, err = inner.ResolveQualified("o", "id")
	require.NoError(t, err)
	assert.Equal(t, 1, depth)
	assert.Equal(t, "o", b.Qualifier)

	empty := outer.Child()
	_, depth, err = empty.Resolve("id")
	require.NoError(t, err)
	assert.Equal(t, 1, depth)
	assert.Same(t, outer, empty.Parent())
}

func TestGroupState(t *testing.T) {
	sc := newManager().NewTable("", people)
	assert.Equal(t, scope.RowScope, sc.State())

	sc.EnterGroup([]string{"people.name"})
	assert.Equal(t, scope.GroupScope, sc.State())
	assert.True(t, sc.IsGrouped("people.name"))
	assert.False(t, sc.IsGrouped("people.id"))
	assert.Equal(t, "group", sc.State().String())

	implicit := newManager().NewTable("", people)
	implicit.EnterGroup(nil)
	assert.Equal(t, scope.GroupScope, implicit.State())
	assert.False(t, implicit.IsGrouped("people.name"))
}

func TestRowViewAndAncestor(t *testing.T) {
	outer := newManager().NewTable("", people)
	outer.EnterGroup([]string{"people.name"})
	inner := newManager().Empty().WithParent(outer)

	assert.Same(t, inner, inner.Ancestor(0))
	assert.Same(t, outer, inner.Ancestor(1))
	assert.Nil(t, inner.Ancestor(2))

	view := outer.RowView()
	assert.Equal(t, scope.RowScope, view.State())
	assert.False(t, view.IsGrouped("people.name"))
	assert.Equal(t, scope.GroupScope, outer.State())
	assert.True(t, outer.IsGrouped("people.name"))

	b, depth, err := newManager().Empty().WithParent(view).Resolve("name")
	require.NoError(t, err)
	assert.Equal(t, 1, depth)
	assert.Equal(t, "name", b.Name)

	var none *scope.Scope
	assert.Nil(t, none.RowView())
}
