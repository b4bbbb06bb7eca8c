package types

import "fmt"

// Type is a kind plus nullability.
type Type struct {
	Kind     Kind `json:"kind" yaml:"kind"`
	Nullable bool `json:"nullable" yaml:"nullable"`
}

// NotNull returns a non-nullable type of kind k.
func NotNull(k Kind) Type {
	return Type{Kind: k}
}

// Null returns a nullable type of kind k.
func Null(k Kind) Type {
	return Type{Kind: k, Nullable: true}
}

// UnknownType is the type of expressions that failed to bind. It is
// compatible with everything so one error does not cascade.
var UnknownType = Type{Kind: Unknown, Nullable: true}

// IsUnknown reports whether the kind is unknown.
func (t Type) IsUnknown() bool {
	return t.Kind == Unknown || t.Kind == ""
}

// WithNullable returns a copy with the nullable flag set.
func (t Type) WithNullable(nullable bool) Type {
	t.Nullable = nullable
	return t
}

// String returns "integer" or "integer NOT NULL".
func (t Type) String() string {
	if t.Nullable {
		return string(t.Kind)
	}
	return fmt.Sprintf("%s NOT NULL", t.Kind)
}

// anyNullable reports whether any operand is nullable.
func anyNullable(ts []Type) bool {
	for _, t := range ts {
		if t.Nullable {
			return true
		}
	}
	return false
}
