package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/dialects/generic"
	"github.com/truffle-sql/truffle/pkg/parser"
)

// ---------- Table Reference Tests ----------

func TestTableAliases(t *testing.T) {
	sc := parseSelect(t, "SELECT * FROM main.users AS u, orders o, items")
	require.NotNil(t, sc.From)

	src, ok := sc.From.Source.(*core.TableName)
	require.True(t, ok)
	assert.Equal(t, "main", src.Schema)
	assert.Equal(t, "users", src.Name)
	assert.Equal(t, "u", src.RefName())

	require.Len(t, sc.From.Joins, 2)
	assert.Equal(t, core.JoinComma, sc.From.Joins[0].Type)
	assert.Equal(t, "o", sc.From.Joins[0].Right.(*core.TableName).Alias)
	assert.Equal(t, "items", sc.From.Joins[1].Right.(*core.TableName).RefName())
}

// ---------- JOIN Tests ----------

func TestJoinTypes(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		wantType core.JoinType
		natural  bool
	}{
		{"plain join", "SELECT * FROM t1 JOIN t2 ON t1.id = t2.id", core.JoinInner, false},
		{"inner join", "SELECT * FROM t1 INNER JOIN t2 ON t1.id = t2.id", core.JoinInner, false},
		{"left join", "SELECT * FROM t1 LEFT JOIN t2 ON t1.id = t2.id", core.JoinLeft, false},
		{"left outer join", "SELECT * FROM t1 LEFT OUTER JOIN t2 ON t1.id = t2.id", core.JoinLeft, false},
		{"right join", "SELECT * FROM t1 RIGHT JOIN t2 ON t1.id = t2.id", core.JoinRight, false},
		{"full outer join", "SELECT * FROM t1 FULL OUTER JOIN t2 ON t1.id = t2.id", core.JoinFull, false},
		{"cross join", "SELECT * FROM t1 CROSS JOIN t2", core.JoinCross, false},
		{"natural join", "SELECT * FROM t1 NATURAL JOIN t2", core.JoinInner, true},
		{"natural left join", "SELECT * FROM t1 NATURAL LEFT JOIN t2", core.JoinLeft, true},
		{"natural full outer join", "SELECT * FROM t1 NATURAL FULL OUTER JOIN t2", core.JoinFull, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := parseSelect(t, tt.sql)
			require.NotNil(t, sc.From)
			require.Len(t, sc.From.Joins, 1)

			join := sc.From.Joins[0]
			assert.Equal(t, tt.wantType, join.Type)
			assert.Equal(t, tt.natural, join.Natural)
			if tt.natural || tt.wantType == core.JoinCross {
				assert.Nil(t, join.Condition)
				assert.Empty(t, join.Using)
			} else {
				assert.NotNil(t, join.Condition)
			}
		})
	}
}

func TestJoinUsing(t *testing.T) {
	sc := parseSelect(t, "SELECT * FROM t1 LEFT JOIN t2 USING (id, region)")
	require.Len(t, sc.From.Joins, 1)

	join := sc.From.Joins[0]
	require.Len(t, join.Using, 2)
	assert.Equal(t, "id", join.Using[0].Name)
	assert.Equal(t, "region", join.Using[1].Name)
	assert.Nil(t, join.Condition)
}

func TestJoinConditionErrors(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{"natural with on", "SELECT * FROM t1 NATURAL JOIN t2 ON t1.id = t2.id", "NATURAL JOIN cannot have ON"},
		{"natural with using", "SELECT * FROM t1 NATURAL JOIN t2 USING (id)", "NATURAL JOIN cannot have USING"},
		{"cross with on", "SELECT * FROM t1 CROSS JOIN t2 ON t1.id = t2.id", "CROSS JOIN cannot have ON"},
		{"natural without join", "SELECT * FROM t1 NATURAL t2", "expected JOIN"},
		{"empty using", "SELECT * FROM t1 JOIN t2 USING ()", "expected identifier"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.ParseStatement(tt.sql, generic.Generic)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMultipleJoins(t *testing.T) {
	sc := parseSelect(t, `SELECT * FROM a
		JOIN b ON a.id = b.a_id
		LEFT JOIN c USING (id)
		CROSS JOIN d`)
	require.Len(t, sc.From.Joins, 3)
	assert.Equal(t, core.JoinInner, sc.From.Joins[0].Type)
	assert.Equal(t, core.JoinLeft, sc.From.Joins[1].Type)
	assert.Equal(t, core.JoinCross, sc.From.Joins[2].Type)
	assert.Nil(t, sc.Where)
}
