package types

import (
	"fmt"
	"strings"
)

// ArgClass constrains one function argument.
type ArgClass int

// Argument classes.
const (
	ArgAny ArgClass = iota
	ArgNumeric
	ArgInteger
	ArgText
	ArgBoolean
	ArgTextOrBlob
	ArgOrdered
	ArgJSON // json, jsonb or text
)

// NullMode says how a function result's nullability is derived.
type NullMode int

// Null modes.
const (
	NullPropagate NullMode = iota // nullable if any argument is nullable
	NullAlways                    // aggregates over possibly empty input
	NullNever
	NullIfAll // COALESCE: nullable only if every argument is nullable
)

// Signature describes a function.
type Signature struct {
	Name      string
	Aggregate bool
	MinArgs   int
	MaxArgs   int // negative means variadic
	Star      bool
	// Args holds the class per position; the last class repeats.
	Args []ArgClass
	// Unify makes all arguments share one common kind.
	Unify bool
	// Returns is the fixed result kind; empty means the argument kind.
	Returns Kind
	Nulls   NullMode
}

var baseFunctions = []Signature{
	// Aggregates
	{Name: "count", Aggregate: true, MaxArgs: 1, Star: true, Returns: Integer, Nulls: NullNever},
	{Name: "sum", Aggregate: true, MinArgs: 1, MaxArgs: 1, Args: []ArgClass{ArgNumeric}, Nulls: NullAlways},
	{Name: "avg", Aggregate: true, MinArgs: 1, MaxArgs: 1, Args: []ArgClass{ArgNumeric}, Nulls: NullAlways},
	{Name: "min", Aggregate: true, MinArgs: 1, MaxArgs: 1, Args: []ArgClass{ArgOrdered}, Nulls: NullAlways},
	{Name: "max", Aggregate: true, MinArgs: 1, MaxArgs: 1, Args: []ArgClass{ArgOrdered}, Nulls: NullAlways},
	{Name: "total", Aggregate: true, MinArgs: 1, MaxArgs: 1, Args: []ArgClass{ArgNumeric}, Returns: Double, Nulls: NullNever},
	{Name: "group_concat", Aggregate: true, MinArgs: 1, MaxArgs: 2, Args: []ArgClass{ArgAny, ArgText}, Returns: Text, Nulls: NullAlways},
	{Name: "string_agg", Aggregate: true, MinArgs: 2, MaxArgs: 2, Args: []ArgClass{ArgAny, ArgText}, Returns: Text, Nulls: NullAlways},
	{Name: "array_agg", Aggregate: true, MinArgs: 1, MaxArgs: 1, Returns: Unknown, Nulls: NullAlways},
	{Name: "every", Aggregate: true, MinArgs: 1, MaxArgs: 1, Args: []ArgClass{ArgBoolean}, Returns: Boolean, Nulls: NullAlways},
	{Name: "bool_and", Aggregate: true, MinArgs: 1, MaxArgs: 1, Args: []ArgClass{ArgBoolean}, Returns: Boolean, Nulls: NullAlways},
	{Name: "bool_or", Aggregate: true, MinArgs: 1, MaxArgs: 1, Args: []ArgClass{ArgBoolean}, Returns: Boolean, Nulls: NullAlways},

	// Scalars
	{Name: "coalesce", MinArgs: 1, MaxArgs: -1, Unify: true, Nulls: NullIfAll},
	{Name: "ifnull", MinArgs: 2, MaxArgs: 2, Unify: true, Nulls: NullIfAll},
	{Name: "nullif", MinArgs: 2, MaxArgs: 2, Unify: true, Nulls: NullAlways},
	{Name: "abs", MinArgs: 1, MaxArgs: 1, Args: []ArgClass{ArgNumeric}},
	{Name: "round", MinArgs: 1, MaxArgs: 2, Args: []ArgClass{ArgNumeric, ArgInteger}},
	{Name: "length", MinArgs: 1, MaxArgs: 1, Args: []ArgClass{ArgTextOrBlob}, Returns: Integer},
	{Name: "lower", MinArgs: 1, MaxArgs: 1, Args: []ArgClass{ArgText}, Returns: Text},
	{Name: "upper", MinArgs: 1, MaxArgs: 1, Args: []ArgClass{ArgText}, Returns: Text},
	{Name: "trim", MinArgs: 1, MaxArgs: 2, Args: []ArgClass{ArgText}, Returns: Text},
	{Name: "substr", MinArgs: 2, MaxArgs: 3, Args: []ArgClass{ArgText, ArgInteger}, Returns: Text},
	{Name: "substring", MinArgs: 2, MaxArgs: 3, Args: []ArgClass{ArgText, ArgInteger}, Returns: Text},
	{Name: "now", Returns: Timestamp, Nulls: NullNever},
	{Name: "current_date", Returns: Date, Nulls: NullNever},
	{Name: "current_time", Returns: Time, Nulls: NullNever},
	{Name: "current_timestamp", Returns: Timestamp, Nulls: NullNever},
}

// LookupFunction returns the signature registered under name
// (case-insensitive).
func (s *System) LookupFunction(name string) (*Signature, bool) {
	sig, ok := s.funcs[strings.ToLower(name)]
	return sig, ok
}

// IsAggregateFunction reports whether name is a registered aggregate.
func (s *System) IsAggregateFunction(name string) bool {
	sig, ok := s.LookupFunction(name)
	return ok && sig.Aggregate
}

// classAt returns the class of argument i.
func (sig *Signature) classAt(i int) ArgClass {
	if len(sig.Args) == 0 {
		return ArgAny
	}
	if i >= len(sig.Args) {
		return sig.Args[len(sig.Args)-1]
	}
	return sig.Args[i]
}

// ArgHint returns the kind a placeholder in argument position i should take,
// given the kinds of the other arguments bound so far. Unknown means no hint.
func (s *System) ArgHint(name string, i int, args []Type) Kind {
	sig, ok := s.LookupFunction(name)
	if !ok {
		return Unknown
	}
	switch sig.classAt(i) {
	case ArgInteger:
		return Integer
	case ArgText, ArgTextOrBlob:
		return Text
	case ArgBoolean:
		return Boolean
	}
	if sig.Unify || sig.classAt(i) == ArgNumeric {
		for j, t := range args {
			if j != i && !t.IsUnknown() {
				return t.Kind
			}
		}
	}
	return Unknown
}

// CheckFunction type-checks a call. star is set for f(*).
func (s *System) CheckFunction(name string, args []Type, star bool) (Type, error) {
	sig, ok := s.LookupFunction(name)
	display := strings.ToUpper(name)
	if !ok {
		return UnknownType, newError(CodeUnknownFunction, ErrUnknownFunction, display)
	}

	if star {
		if !sig.Star {
			return UnknownType, newError(CodeArgumentCount, "function %s does not accept *", display)
		}
	} else if len(args) < sig.MinArgs || (sig.MaxArgs >= 0 && len(args) > sig.MaxArgs) {
		return UnknownType, newError(CodeArgumentCount, ErrArgumentCount, display, describeArity(sig.MinArgs, sig.MaxArgs), len(args))
	}

	for i, arg := range args {
		if err := s.checkArgClass(display, i, arg.Kind, sig.classAt(i)); err != nil {
			return UnknownType, err
		}
	}

	kind := sig.Returns
	if kind == "" {
		kind = Unknown
		if sig.Unify {
			for _, arg := range args {
				common, ok := s.CommonKind(kind, arg.Kind)
				if !ok {
					return UnknownType, newError(CodeTypeMismatch, ErrArgumentMismatch, display, kind, arg.Kind)
				}
				kind = common
			}
		} else if len(args) > 0 {
			kind = args[0].Kind
		}
	}

	result := Type{Kind: kind}
	switch sig.Nulls {
	case NullAlways:
		result.Nullable = true
	case NullNever:
		result.Nullable = false
	case NullIfAll:
		result.Nullable = len(args) > 0
		for _, arg := range args {
			if !arg.Nullable {
				result.Nullable = false
				break
			}
		}
	default:
		result.Nullable = anyNullable(args)
	}
	return result, nil
}

func (s *System) checkArgClass(fn string, i int, k Kind, class ArgClass) error {
	if isUnknownKind(k) {
		return nil
	}
	def := s.Def(k)
	var (
		ok   bool
		code = CodeTypeMismatch
		want string
	)
	switch class {
	case ArgAny:
		return nil
	case ArgNumeric:
		ok, code, want = def.Family.IsNumeric(), CodeNotNumeric, "numeric"
	case ArgInteger:
		ok, code, want = def.Family == FamilyInteger, CodeNotInteger, "an integer"
	case ArgText:
		ok, code, want = def.Family == FamilyText, CodeNotText, "text"
	case ArgBoolean:
		ok, code, want = def.Family == FamilyBoolean, CodeNotBoolean, "boolean"
	case ArgTextOrBlob:
		ok, want = def.Family == FamilyText || def.Family == FamilyBlob, "text or blob"
	case ArgOrdered:
		ok, want = def.Ordered, "orderable"
	case ArgJSON:
		ok, want = k == JSON || k == JSONB || def.Family == FamilyText, "json or text"
	}
	if ok {
		return nil
	}
	return newError(code, ErrArgumentKind, i+1, fn, want, k)
}

func describeArity(lo, hi int) string {
	plural := func(n int) string {
		if n == 1 {
			return "1 argument"
		}
		return fmt.Sprintf("%d arguments", n)
	}
	switch {
	case hi < 0:
		return "at least " + plural(lo)
	case lo == hi && lo == 0:
		return "no arguments"
	case lo == hi:
		return plural(lo)
	default:
		return fmt.Sprintf("%d to %d arguments", lo, hi)
	}
}
