package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Feature is an optional capability set registered into a System: extra
// kinds with their declared names, functions and arithmetic rules.
type Feature struct {
	Name       string
	Kinds      []KindDef
	TypeNames  map[string]Kind
	Functions  []Signature
	Arithmetic []ArithRule
}

// ArithRule types an arithmetic operator over specific kinds, ahead of the
// numeric rules: timestamp + interval is timestamp.
type ArithRule struct {
	Op     Op
	Left   Kind
	Right  Kind
	Result Kind
}

// FeatureUUID adds the uuid kind and gen_random_uuid().
var FeatureUUID = Feature{
	Name: "uuid",
	Kinds: []KindDef{
		{Kind: UUID, Family: FamilyOther, Equality: true, Ordered: true, Validate: validateUUID},
	},
	TypeNames: map[string]Kind{"uuid": UUID},
	Functions: []Signature{
		{Name: "gen_random_uuid", Returns: UUID, Nulls: NullNever},
	},
}

// FeatureJSON adds the json and jsonb kinds. Only jsonb supports equality.
var FeatureJSON = Feature{
	Name: "json",
	Kinds: []KindDef{
		{Kind: JSON, Family: FamilyOther, Validate: validateJSON},
		{Kind: JSONB, Family: FamilyOther, Equality: true, CompatibleWith: []Kind{JSON}, Validate: validateJSON},
	},
	TypeNames: map[string]Kind{"json": JSON, "jsonb": JSONB},
	Functions: []Signature{
		{Name: "json_extract", MinArgs: 2, MaxArgs: 2, Args: []ArgClass{ArgJSON, ArgText}, Returns: JSON, Nulls: NullAlways},
		{Name: "json_array_length", MinArgs: 1, MaxArgs: 1, Args: []ArgClass{ArgJSON}, Returns: Integer},
		{Name: "json_agg", Aggregate: true, MinArgs: 1, MaxArgs: 1, Returns: JSON, Nulls: NullAlways},
		{Name: "jsonb_agg", Aggregate: true, MinArgs: 1, MaxArgs: 1, Returns: JSONB, Nulls: NullAlways},
	},
}

// FeatureTemporal adds timestamptz and interval with temporal arithmetic.
var FeatureTemporal = Feature{
	Name: "temporal",
	Kinds: []KindDef{
		{
			Kind: TimestampTZ, Family: FamilyTemporal, Equality: true, Ordered: true,
			CompatibleWith: []Kind{Timestamp},
			Validate:       validateLayouts("timestamptz", timestampTZLayouts),
		},
		{Kind: Interval, Family: FamilyTemporal, Equality: true, Ordered: true, Validate: validateInterval},
	},
	TypeNames: map[string]Kind{
		"timestamptz":              TimestampTZ,
		"timestamp with time zone": TimestampTZ,
		"interval":                 Interval,
	},
	Functions: []Signature{
		{Name: "now", Returns: TimestampTZ, Nulls: NullNever},
	},
	Arithmetic: []ArithRule{
		{OpAdd, Timestamp, Interval, Timestamp},
		{OpAdd, Interval, Timestamp, Timestamp},
		{OpSub, Timestamp, Interval, Timestamp},
		{OpAdd, TimestampTZ, Interval, TimestampTZ},
		{OpAdd, Interval, TimestampTZ, TimestampTZ},
		{OpSub, TimestampTZ, Interval, TimestampTZ},
		{OpAdd, Date, Interval, Timestamp},
		{OpSub, Date, Interval, Timestamp},
		{OpSub, Timestamp, Timestamp, Interval},
		{OpSub, TimestampTZ, TimestampTZ, Interval},
		{OpAdd, Interval, Interval, Interval},
		{OpSub, Interval, Interval, Interval},
	},
}

var knownFeatures = map[string]Feature{
	FeatureUUID.Name:     FeatureUUID,
	FeatureJSON.Name:     FeatureJSON,
	FeatureTemporal.Name: FeatureTemporal,
}

// FeatureNames returns the names of all known features (sorted).
func FeatureNames() []string {
	names := make([]string, 0, len(knownFeatures))
	for name := range knownFeatures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupFeatures resolves feature names, case-insensitively.
func LookupFeatures(names ...string) ([]Feature, error) {
	out := make([]Feature, 0, len(names))
	for _, name := range names {
		f, ok := knownFeatures[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown feature %q (available: %s)", name, strings.Join(FeatureNames(), ", "))
		}
		if !slices.ContainsFunc(out, func(g Feature) bool { return g.Name == f.Name }) {
			out = append(out, f)
		}
	}
	return out, nil
}

// DefaultSystem returns a System with every known feature enabled.
func DefaultSystem() *System {
	return NewSystem(FeatureUUID, FeatureJSON, FeatureTemporal)
}

func validateUUID(text string) error {
	_, err := uuid.Parse(text)
	return err
}

func validateJSON(text string) error {
	if !json.Valid([]byte(text)) {
		return errors.New("malformed JSON")
	}
	return nil
}
