package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truffle-sql/truffle/pkg/token"
)

func TestLookupKind(t *testing.T) {
	base := NewSystem()
	full := DefaultSystem()

	tests := []struct {
		typeName string
		base     Kind
		full     Kind
	}{
		{"INT", Integer, Integer},
		{"integer", Integer, Integer},
		{"SMALLINT", SmallInt, SmallInt},
		{"BIGINT", BigInt, BigInt},
		{"VARCHAR(20)", Text, Text},
		{"character varying(5)", Text, Text},
		{"DOUBLE PRECISION", Double, Double},
		{"NUMERIC(10, 2)", Double, Double},
		{"BOOLEAN", Boolean, Boolean},
		{"TIMESTAMP", Timestamp, Timestamp},
		{"TIMESTAMP with time zone", Timestamp, TimestampTZ},
		{"timestamptz", Unknown, TimestampTZ},
		{"UUID", Unknown, UUID},
		{"jsonb", Unknown, JSONB},
		{"interval", Unknown, Interval},
		{"", Unknown, Unknown},
		{"GEOMETRY", Unknown, Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.typeName, func(t *testing.T) {
			assert.Equal(t, tt.base, base.LookupKind(tt.typeName), "base system")
			assert.Equal(t, tt.full, full.LookupKind(tt.typeName), "all features")
		})
	}
}

func TestCompatibleAndCommonKind(t *testing.T) {
	s := DefaultSystem()

	tests := []struct {
		a, b       Kind
		compatible bool
		common     Kind
	}{
		{Integer, Integer, true, Integer},
		{SmallInt, BigInt, true, BigInt},
		{Integer, Double, true, Double},
		{Real, Integer, true, Real},
		{Integer, Text, false, Unknown},
		{Unknown, Text, true, Text},
		{Boolean, Unknown, true, Boolean},
		{TimestampTZ, Timestamp, true, TimestampTZ},
		{JSONB, JSON, true, JSONB},
		{UUID, Text, false, Unknown},
	}

	for _, tt := range tests {
		t.Run(string(tt.a)+"/"+string(tt.b), func(t *testing.T) {
			assert.Equal(t, tt.compatible, s.Compatible(tt.a, tt.b))
			common, ok := s.CommonKind(tt.a, tt.b)
			assert.Equal(t, tt.compatible, ok)
			assert.Equal(t, tt.common, common)
		})
	}
}

func TestCheckOperator(t *testing.T) {
	s := DefaultSystem()

	tests := []struct {
		name     string
		op       Op
		operands []Type
		want     Type
		code     Code
	}{
		{"int plus int", OpAdd, []Type{NotNull(Integer), NotNull(Integer)}, NotNull(Integer), ""},
		{"widening", OpMul, []Type{NotNull(SmallInt), Null(Double)}, Null(Double), ""},
		{"text plus int", OpAdd, []Type{NotNull(Text), NotNull(Integer)}, NotNull(Unknown), CodeNotNumeric},
		{"timestamp plus interval", OpAdd, []Type{NotNull(Timestamp), NotNull(Interval)}, NotNull(Timestamp), ""},
		{"timestamp minus timestamp", OpSub, []Type{NotNull(Timestamp), Null(Timestamp)}, Null(Interval), ""},
		{"timestamp plus integer", OpAdd, []Type{NotNull(Timestamp), NotNull(Integer)}, NotNull(Unknown), CodeTypeMismatch},
		{"compare numerics", OpLt, []Type{NotNull(Integer), NotNull(Real)}, NotNull(Boolean), ""},
		{"compare mismatch", OpEq, []Type{NotNull(Integer), NotNull(Text)}, NotNull(Boolean), CodeTypeMismatch},
		{"json equality", OpEq, []Type{NotNull(JSON), NotNull(JSON)}, NotNull(Boolean), CodeUnsupportedOperator},
		{"jsonb equality", OpEq, []Type{NotNull(JSONB), NotNull(JSONB)}, NotNull(Boolean), ""},
		{"and", OpAnd, []Type{NotNull(Boolean), Null(Boolean)}, Null(Boolean), ""},
		{"and on integer", OpAnd, []Type{NotNull(Integer), NotNull(Boolean)}, NotNull(Boolean), CodeNotBoolean},
		{"not", OpNot, []Type{NotNull(Boolean)}, NotNull(Boolean), ""},
		{"bitwise", OpBitAnd, []Type{NotNull(Integer), NotNull(BigInt)}, NotNull(BigInt), ""},
		{"bitwise on real", OpShl, []Type{NotNull(Real), NotNull(Integer)}, NotNull(Unknown), CodeNotInteger},
		{"concat", OpConcat, []Type{NotNull(Text), Null(Text)}, Null(Text), ""},
		{"concat integer", OpConcat, []Type{NotNull(Text), NotNull(Integer)}, NotNull(Text), CodeNotText},
		{"concat nullable integer", OpConcat, []Type{NotNull(Text), Null(Integer)}, Null(Text), CodeNotText},
		{"negate", OpNeg, []Type{Null(Integer)}, Null(Integer), ""},
		{"negate text", OpNeg, []Type{NotNull(Text)}, NotNull(Unknown), CodeNotNumeric},
		{"like on nullable integer", OpLike, []Type{Null(Integer), NotNull(Text)}, Null(Boolean), CodeNotText},
		{"like", OpLike, []Type{NotNull(Text), NotNull(Text)}, NotNull(Boolean), ""},
		{"is null is null-safe", OpIsNull, []Type{Null(Integer)}, NotNull(Boolean), ""},
		{"is true needs boolean", OpIsBool, []Type{Null(Integer)}, NotNull(Boolean), CodeNotBoolean},
		{"is distinct", OpIsDistinct, []Type{Null(Integer), Null(BigInt)}, NotNull(Boolean), ""},
		{"unknown operand", OpAdd, []Type{UnknownType, NotNull(Integer)}, Null(Integer), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.CheckOperator(tt.op, tt.operands...)
			assert.Equal(t, tt.want, got)
			if tt.code == "" {
				require.NoError(t, err)
				return
			}
			var te *Error
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.code, te.Code)
		})
	}
}

func TestOpFromToken(t *testing.T) {
	assert.Equal(t, OpSub, OpFromToken(token.MINUS, false))
	assert.Equal(t, OpNeg, OpFromToken(token.MINUS, true))
	assert.Equal(t, OpNe, OpFromToken(token.NE, false))
	assert.Equal(t, OpInvalid, OpFromToken(token.COMMA, false))
}

func TestCheckFunction(t *testing.T) {
	s := DefaultSystem()

	tests := []struct {
		name string
		fn   string
		args []Type
		star bool
		want Type
		code Code
	}{
		{"count star", "COUNT", nil, true, NotNull(Integer), ""},
		{"count column", "count", []Type{Null(Text)}, false, NotNull(Integer), ""},
		{"sum keeps kind", "sum", []Type{NotNull(Integer)}, false, Null(Integer), ""},
		{"avg keeps kind", "avg", []Type{NotNull(Integer)}, false, Null(Integer), ""},
		{"sum of text", "sum", []Type{NotNull(Text)}, false, UnknownType, CodeNotNumeric},
		{"avg star", "avg", nil, true, UnknownType, CodeArgumentCount},
		{"max of text", "max", []Type{NotNull(Text)}, false, Null(Text), ""},
		{"max of json", "max", []Type{NotNull(JSON)}, false, UnknownType, CodeTypeMismatch},
		{"coalesce non-null wins", "coalesce", []Type{Null(Integer), NotNull(BigInt)}, false, NotNull(BigInt), ""},
		{"coalesce all nullable", "coalesce", []Type{Null(Text), Null(Text)}, false, Null(Text), ""},
		{"coalesce mismatch", "coalesce", []Type{Null(Text), NotNull(Integer)}, false, UnknownType, CodeTypeMismatch},
		{"nullif", "nullif", []Type{NotNull(Integer), NotNull(Integer)}, false, Null(Integer), ""},
		{"abs propagates", "abs", []Type{Null(Real)}, false, Null(Real), ""},
		{"length", "length", []Type{NotNull(Text)}, false, NotNull(Integer), ""},
		{"lower of int", "lower", []Type{NotNull(Integer)}, false, UnknownType, CodeNotText},
		{"substr", "substr", []Type{NotNull(Text), NotNull(Integer), NotNull(Integer)}, false, NotNull(Text), ""},
		{"substr bad start", "substring", []Type{NotNull(Text), NotNull(Text)}, false, UnknownType, CodeNotInteger},
		{"too many args", "upper", []Type{NotNull(Text), NotNull(Text)}, false, UnknownType, CodeArgumentCount},
		{"too few args", "substr", []Type{NotNull(Text)}, false, UnknownType, CodeArgumentCount},
		{"now with temporal", "now", nil, false, NotNull(TimestampTZ), ""},
		{"current_date", "CURRENT_DATE", nil, false, NotNull(Date), ""},
		{"uuid function", "gen_random_uuid", nil, false, NotNull(UUID), ""},
		{"json_extract", "json_extract", []Type{NotNull(JSON), NotNull(Text)}, false, Null(JSON), ""},
		{"json_array_length on int", "json_array_length", []Type{NotNull(Integer)}, false, UnknownType, CodeTypeMismatch},
		{"unknown function", "frobnicate", nil, false, UnknownType, CodeUnknownFunction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.CheckFunction(tt.fn, tt.args, tt.star)
			assert.Equal(t, tt.want, got)
			if tt.code == "" {
				require.NoError(t, err)
				return
			}
			var te *Error
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.code, te.Code)
		})
	}
}

func TestFeatureFunctionsRequireFeature(t *testing.T) {
	s := NewSystem()

	got, err := s.CheckFunction("now", nil, false)
	require.NoError(t, err)
	assert.Equal(t, NotNull(Timestamp), got)

	_, err = s.CheckFunction("gen_random_uuid", nil, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown function GEN_RANDOM_UUID")
}

func TestArgumentCountMessage(t *testing.T) {
	s := NewSystem()
	_, err := s.CheckFunction("coalesce", nil, false)
	require.Error(t, err)
	assert.Equal(t, "function COALESCE expects at least 1 argument, got 0", err.Error())

	_, err = s.CheckFunction("round", []Type{NotNull(Real), NotNull(Integer), NotNull(Integer)}, false)
	require.Error(t, err)
	assert.Equal(t, "function ROUND expects 1 to 2 arguments, got 3", err.Error())
}

func TestArgHint(t *testing.T) {
	s := DefaultSystem()
	assert.Equal(t, Integer, s.ArgHint("coalesce", 1, []Type{Null(Integer), UnknownType}))
	assert.Equal(t, Integer, s.ArgHint("substr", 1, []Type{NotNull(Text), UnknownType}))
	assert.Equal(t, Text, s.ArgHint("lower", 0, []Type{UnknownType}))
	assert.Equal(t, Unknown, s.ArgHint("count", 0, []Type{UnknownType}))
	assert.Equal(t, Unknown, s.ArgHint("no_such_function", 0, nil))
}

func TestValidateLiteral(t *testing.T) {
	s := DefaultSystem()

	tests := []struct {
		kind  Kind
		text  string
		valid bool
	}{
		{Text, "anything", true},
		{Date, "2024-02-29", true},
		{Date, "2024-13-01", false},
		{Time, "12:30:00", true},
		{Time, "25:00:00", false},
		{Timestamp, "2024-01-01 10:00:00", true},
		{Timestamp, "2024-01-01T10:00:00.123", true},
		{Timestamp, "yesterday", false},
		{TimestampTZ, "2024-01-01T10:00:00Z", true},
		{TimestampTZ, "2024-01-01 10:00:00+02:00", true},
		{TimestampTZ, "2024-01-01 10:00:00-07", true},
		{TimestampTZ, "10:00", false},
		{Interval, "1 day", true},
		{Interval, "2 hours 30 minutes", true},
		{Interval, "1 day 02:00:00", true},
		{Interval, "P1DT2H", true},
		{Interval, "P", false},
		{Interval, "3 fortnights", false},
		{UUID, "1b4e28ba-2fa1-11d2-883f-0016d3cca427", true},
		{UUID, "not-a-uuid", false},
		{JSON, `{"a": [1, 2]}`, true},
		{JSONB, `{"a": `, false},
		{Integer, "42", true},
		{SmallInt, "70000", false},
		{Boolean, "yes", true},
		{Boolean, "maybe", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+" "+tt.text, func(t *testing.T) {
			err := s.ValidateLiteral(tt.kind, tt.text)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			var te *Error
			require.ErrorAs(t, err, &te)
			assert.Equal(t, CodeInvalidLiteral, te.Code)
		})
	}
}

func TestNumericLiteralKind(t *testing.T) {
	tests := []struct {
		text string
		want Kind
	}{
		{"1", SmallInt},
		{"32767", SmallInt},
		{"32768", Integer},
		{"2147483648", BigInt},
		{"99999999999999999999", Double},
		{"1.5", Double},
		{"1e3", Double},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, NumericLiteralKind(tt.text))
		})
	}
}

func TestLookupFeatures(t *testing.T) {
	fs, err := LookupFeatures("UUID", " json ", "uuid")
	require.NoError(t, err)
	require.Len(t, fs, 2)
	assert.Equal(t, "uuid", fs[0].Name)
	assert.Equal(t, "json", fs[1].Name)

	_, err = LookupFeatures("geo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown feature "geo"`)

	assert.Equal(t, []string{"json", "temporal", "uuid"}, FeatureNames())
}

func TestNewSystemFeatures(t *testing.T) {
	s := NewSystem(FeatureJSON, FeatureJSON)
	assert.Equal(t, []string{"json"}, s.Features())
	assert.True(t, s.HasKind(JSON))
	assert.False(t, s.HasKind(UUID))

	clash := Feature{Name: "clash", Kinds: []KindDef{{Kind: Integer}}}
	assert.Panics(t, func() { NewSystem(clash) })
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "integer NOT NULL", NotNull(Integer).String())
	assert.Equal(t, "text", Null(Text).String())
}
