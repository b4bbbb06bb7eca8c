package types

import (
	"fmt"
	"slices"
	"strings"
)

// System is a registry of kinds and function signatures.
type System struct {
	kinds    map[Kind]*KindDef
	names    map[string]Kind
	funcs    map[string]*Signature
	arith    []ArithRule
	features []string
}

// NewSystem returns a System with the base kinds plus the given features.
// It panics if a feature redefines a kind that is already registered.
func NewSystem(features ...Feature) *System {
	s := &System{
		kinds: make(map[Kind]*KindDef),
		names: make(map[string]Kind, len(baseTypeNames)),
		funcs: make(map[string]*Signature),
	}
	for i := range baseKinds {
		s.addKind(baseKinds[i])
	}
	for name, k := range baseTypeNames {
		s.names[name] = k
	}
	for _, sig := range baseFunctions {
		s.addFunction(sig)
	}

	for _, f := range features {
		if slices.Contains(s.features, f.Name) {
			continue
		}
		for _, def := range f.Kinds {
			s.addKind(def)
		}
		for name, k := range f.TypeNames {
			s.names[name] = k
		}
		for _, sig := range f.Functions {
			s.addFunction(sig)
		}
		s.arith = append(s.arith, f.Arithmetic...)
		s.features = append(s.features, f.Name)
	}
	return s
}

func (s *System) addKind(def KindDef) {
	if _, exists := s.kinds[def.Kind]; exists {
		panic(fmt.Sprintf("types: kind %s registered twice", def.Kind))
	}
	d := def
	s.kinds[def.Kind] = &d
}

func (s *System) addFunction(sig Signature) {
	fn := sig
	s.funcs[strings.ToLower(sig.Name)] = &fn
}

// Features returns the names of the enabled features in registration order.
func (s *System) Features() []string {
	return slices.Clone(s.features)
}

// HasKind reports whether k is registered.
func (s *System) HasKind(k Kind) bool {
	_, ok := s.kinds[k]
	return ok
}

// Def returns the definition of k. Unregistered kinds resolve to unknown.
func (s *System) Def(k Kind) *KindDef {
	if def, ok := s.kinds[k]; ok {
		return def
	}
	return s.kinds[Unknown]
}

// Family returns the family of k.
func (s *System) Family(k Kind) Family {
	return s.Def(k).Family
}

// IsNumeric reports whether k is an integer or float kind.
func (s *System) IsNumeric(k Kind) bool {
	return s.Family(k).IsNumeric()
}

// LookupKind maps a declared SQL type name to a kind. Parameters are
// ignored ("VARCHAR(20)" is text). Unrecognized and empty names map to
// unknown. Dialect aliases are resolved by the caller first.
func (s *System) LookupKind(typeName string) Kind {
	name := normalizeTypeName(typeName)
	if name == "" {
		return Unknown
	}
	if k, ok := s.names[name]; ok {
		return k
	}
	if k := Kind(name); s.HasKind(k) {
		return k
	}
	return Unknown
}

// Compatible reports whether values of kinds a and b can be compared or
// combined without an explicit cast: identical kinds, both numeric, or
// declared compatible. Unknown is compatible with everything.
func (s *System) Compatible(a, b Kind) bool {
	if a == b || isUnknownKind(a) || isUnknownKind(b) {
		return true
	}
	da, db := s.Def(a), s.Def(b)
	if da.Family.IsNumeric() && db.Family.IsNumeric() {
		return true
	}
	return slices.Contains(da.CompatibleWith, b) || slices.Contains(db.CompatibleWith, a)
}

// CommonKind returns the kind two compatible operands unify to: the known
// side when one is unknown, otherwise the wider numeric kind.
func (s *System) CommonKind(a, b Kind) (Kind, bool) {
	switch {
	case isUnknownKind(a):
		return b, true
	case isUnknownKind(b), a == b:
		return a, true
	case !s.Compatible(a, b):
		return Unknown, false
	}
	da, db := s.Def(a), s.Def(b)
	if da.Rank >= db.Rank {
		return a, true
	}
	return b, true
}

// Assignable reports whether a value of kind value may be stored in a
// column of kind target.
func (s *System) Assignable(target, value Kind) bool {
	return s.Compatible(target, value)
}

// CheckAssign returns an error when value cannot be stored as target.
func (s *System) CheckAssign(target, value Kind) error {
	if s.Assignable(target, value) {
		return nil
	}
	return newError(CodeTypeMismatch, ErrNotAssignable, value, target)
}

func isUnknownKind(k Kind) bool {
	return k == Unknown || k == ""
}
