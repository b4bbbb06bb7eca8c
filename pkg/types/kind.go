// Package types implements the scalar type system used by the analyzer:
// the base kinds, optional feature kinds, compatibility rules and operator
// and function checks.
//
// A System is built once with NewSystem and is read-only afterwards, so it
// can be shared by any number of simulators.
package types

import "strings"

// Kind identifies a scalar type.
type Kind string

// Base kinds, always present.
const (
	Unknown   Kind = "unknown"
	SmallInt  Kind = "smallint"
	Integer   Kind = "integer"
	BigInt    Kind = "bigint"
	Real      Kind = "real"
	Double    Kind = "double"
	Text      Kind = "text"
	Boolean   Kind = "boolean"
	Date      Kind = "date"
	Time      Kind = "time"
	Timestamp Kind = "timestamp"
	Blob      Kind = "blob"
)

// Feature kinds, present only when the owning feature is enabled.
const (
	UUID        Kind = "uuid"
	JSON        Kind = "json"
	JSONB       Kind = "jsonb"
	TimestampTZ Kind = "timestamptz"
	Interval    Kind = "interval"
)

// Family groups kinds that share operator behavior.
type Family int

// Kind families.
const (
	FamilyNone Family = iota
	FamilyInteger
	FamilyFloat
	FamilyText
	FamilyBoolean
	FamilyTemporal
	FamilyBlob
	FamilyOther
)

// IsNumeric reports whether the family is integer or float.
func (f Family) IsNumeric() bool {
	return f == FamilyInteger || f == FamilyFloat
}

// KindDef describes a registered kind.
type KindDef struct {
	Kind   Kind
	Family Family
	// Rank orders numeric kinds by width; the wider kind wins in arithmetic.
	Rank int
	// Equality and Ordered gate the comparison operators.
	Equality bool
	Ordered  bool
	// CompatibleWith lists other kinds that compare and assign implicitly.
	CompatibleWith []Kind
	// Validate checks a string literal used where this kind is expected.
	// Nil accepts any text.
	Validate func(text string) error
}

var baseKinds = []KindDef{
	{Kind: Unknown, Family: FamilyNone, Equality: true, Ordered: true},
	{Kind: SmallInt, Family: FamilyInteger, Rank: 1, Equality: true, Ordered: true, Validate: validateInteger(16)},
	{Kind: Integer, Family: FamilyInteger, Rank: 2, Equality: true, Ordered: true, Validate: validateInteger(32)},
	{Kind: BigInt, Family: FamilyInteger, Rank: 3, Equality: true, Ordered: true, Validate: validateInteger(64)},
	{Kind: Real, Family: FamilyFloat, Rank: 4, Equality: true, Ordered: true, Validate: validateFloat},
	{Kind: Double, Family: FamilyFloat, Rank: 5, Equality: true, Ordered: true, Validate: validateFloat},
	{Kind: Text, Family: FamilyText, Equality: true, Ordered: true},
	{Kind: Boolean, Family: FamilyBoolean, Equality: true, Ordered: true, Validate: validateBoolean},
	{Kind: Date, Family: FamilyTemporal, Equality: true, Ordered: true, Validate: validateLayouts("date", dateLayouts)},
	{Kind: Time, Family: FamilyTemporal, Equality: true, Ordered: true, Validate: validateLayouts("time", timeLayouts)},
	{Kind: Timestamp, Family: FamilyTemporal, Equality: true, Ordered: true, Validate: validateLayouts("timestamp", timestampLayouts)},
	{Kind: Blob, Family: FamilyBlob, Equality: true, Ordered: true},
}

// baseTypeNames maps normalized declared type names to base kinds.
var baseTypeNames = map[string]Kind{
	"smallint":                    SmallInt,
	"int2":                        SmallInt,
	"tinyint":                     SmallInt,
	"integer":                     Integer,
	"int":                         Integer,
	"int4":                        Integer,
	"mediumint":                   Integer,
	"bigint":                      BigInt,
	"int8":                        BigInt,
	"unsigned big int":            BigInt,
	"real":                        Real,
	"float":                       Real,
	"float4":                      Real,
	"double":                      Double,
	"double precision":            Double,
	"float8":                      Double,
	"numeric":                     Double,
	"decimal":                     Double,
	"text":                        Text,
	"varchar":                     Text,
	"char":                        Text,
	"character":                   Text,
	"character varying":           Text,
	"nvarchar":                    Text,
	"nchar":                       Text,
	"clob":                        Text,
	"string":                      Text,
	"boolean":                     Boolean,
	"bool":                        Boolean,
	"date":                        Date,
	"time":                        Time,
	"time without time zone":      Time,
	"timestamp":                   Timestamp,
	"datetime":                    Timestamp,
	"timestamp without time zone": Timestamp,
	"timestamp with time zone":    Timestamp,
	"blob":                        Blob,
	"bytea":                       Blob,
	"binary":                      Blob,
	"varbinary":                   Blob,
}

// normalizeTypeName lowercases a declared type, drops its parameters and
// collapses whitespace: "VARCHAR(20)" becomes "varchar".
func normalizeTypeName(name string) string {
	name = strings.ToLower(name)
	if i := strings.IndexByte(name, '('); i >= 0 {
		rest := ""
		if j := strings.IndexByte(name[i:], ')'); j >= 0 {
			rest = name[i+j+1:]
		}
		name = name[:i] + " " + rest
	}
	return strings.Join(strings.Fields(name), " ")
}
