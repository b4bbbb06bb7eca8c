package diag_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truffle-sql/truffle/pkg/catalog"
	"github.com/truffle-sql/truffle/pkg/diag"
	"github.com/truffle-sql/truffle/pkg/parser"
	"github.com/truffle-sql/truffle/pkg/token"
	"github.com/truffle-sql/truffle/pkg/types"
)

var span = token.Span{
	Start: token.Position{Line: 2, Column: 5, Offset: 10},
	End:   token.Position{Line: 2, Column: 9, Offset: 14},
}

func TestFromError(t *testing.T) {
	sys := types.DefaultSystem()
	_, typeErr := sys.CheckOperator(types.OpAnd, types.NotNull(types.Integer), types.NotNull(types.Boolean))
	require.Error(t, typeErr)

	tests := []struct {
		name string
		err  error
		kind diag.Kind
		code diag.Code
	}{
		{"diag error", diag.Errorf(diag.ScopeError, diag.CodeNotInGroupBy, "x"), diag.ScopeError, diag.CodeNotInGroupBy},
		{"wrapped diag error", fmt.Errorf("binding: %w", diag.Errorf(diag.ResolutionError, diag.CodeUnresolved, "x")), diag.ResolutionError, diag.CodeUnresolved},
		{"type error", typeErr, diag.TypeError, diag.CodeNotBoolean},
		{"catalog error", &catalog.Error{Code: catalog.CodeUnknownTable, Table: "t"}, diag.CatalogError, diag.CodeUnknownTable},
		{"foreign key reference", &catalog.Error{Code: catalog.CodeForeignKeyReference, Table: "t", Referrer: "u"}, diag.ConstraintError, diag.CodeForeignKeyReference},
		{"parse error", &parser.ParseError{Pos: token.Position{Line: 1, Column: 3}, Message: "unexpected"}, diag.SyntaxError, diag.CodeSyntax},
		{"anything else", errors.New("boom"), diag.SyntaxError, diag.CodeSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := diag.FromError(tt.err, span)
			assert.Equal(t, tt.kind, d.Kind)
			assert.Equal(t, tt.code, d.Code)
			assert.NotEmpty(t, d.Message)
		})
	}
}

func TestFromErrorKeepsParseSpan(t *testing.T) {
	d := diag.FromError(&parser.ParseError{Pos: token.Position{Line: 3, Column: 7}, Message: "unexpected"}, span)
	assert.Equal(t, 3, d.Span.Start.Line)
	assert.Equal(t, "unexpected", d.Message)
}

func TestCollector(t *testing.T) {
	c := diag.NewCollector()
	c.Report(diag.TypeError, diag.CodeTypeMismatch, span, "cannot compare %s and %s", "text", "integer")
	c.AddError(nil, span)
	c.AddError(errors.Join(
		&catalog.Error{Code: catalog.CodeUnknownColumn, Table: "t", Column: "a"},
		&catalog.Error{Code: catalog.CodeDuplicateColumn, Table: "t", Column: "b"},
	), span)

	require.Equal(t, 3, c.Len())
	list := c.List()
	assert.Equal(t, []diag.Code{diag.CodeTypeMismatch, diag.CodeUnknownColumn, diag.CodeDuplicateColumn}, list.Codes())
	assert.Equal(t, "cannot compare text and integer", list[0].Message)
	assert.True(t, list.HasErrors())
	assert.Len(t, list.ByKind(diag.CatalogError), 2)

	// The list is a copy.
	c.Report(diag.TypeError, diag.CodeNotNumeric, span, "late")
	assert.Len(t, list, 3)
}

func TestListError(t *testing.T) {
	var empty diag.List
	assert.NoError(t, empty.Err())
	assert.False(t, empty.HasErrors())

	c := diag.NewCollector()
	c.Report(diag.ConstraintError, diag.CodeNullIntoNotNull, span, "null value in column %q", "name")
	c.Report(diag.CatalogError, diag.CodeUnknownTable, token.Span{}, "table %q does not exist", "t")
	err := c.List().Err()
	require.Error(t, err)
	assert.Equal(t,
		"2:5: ConstraintError/NullIntoNotNull: null value in column \"name\"\nCatalogError/UnknownTable: table \"t\" does not exist",
		err.Error())
}

func TestMarshalJSON(t *testing.T) {
	c := diag.NewCollector()
	c.Report(diag.TypeError, diag.CodeNotBoolean, span, "argument of WHERE must be type boolean")
	data, err := json.Marshal(c.List())
	require.NoError(t, err)
	assert.JSONEq(t, `[{
		"kind": "TypeError",
		"code": "NotBoolean",
		"message": "argument of WHERE must be type boolean",
		"severity": "error",
		"line": 2,
		"column": 5,
		"end_line": 2,
		"end_column": 9
	}]`, string(data))
}
