package types

import "github.com/truffle-sql/truffle/pkg/token"

// Op is an operator understood by CheckOperator.
type Op int

// Operators.
const (
	OpInvalid Op = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpConcat
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpNot
	OpNeg
	OpPos
	OpBitAnd
	OpBitOr
	OpBitXor
	OpBitNot
	OpShl
	OpShr
	OpLike
	OpIsNull
	OpIsBool
	OpIsDistinct
)

var opSymbols = map[Op]string{
	OpAdd:        "+",
	OpSub:        "-",
	OpMul:        "*",
	OpDiv:        "/",
	OpMod:        "%",
	OpConcat:     "||",
	OpEq:         "=",
	OpNe:         "<>",
	OpLt:         "<",
	OpLe:         "<=",
	OpGt:         ">",
	OpGe:         ">=",
	OpAnd:        "AND",
	OpOr:         "OR",
	OpNot:        "NOT",
	OpNeg:        "-",
	OpPos:        "+",
	OpBitAnd:     "&",
	OpBitOr:      "|",
	OpBitXor:     "^",
	OpBitNot:     "~",
	OpShl:        "<<",
	OpShr:        ">>",
	OpLike:       "LIKE",
	OpIsNull:     "IS NULL",
	OpIsBool:     "IS",
	OpIsDistinct: "IS DISTINCT FROM",
}

func (op Op) String() string {
	if s, ok := opSymbols[op]; ok {
		return s
	}
	return "?"
}

var binaryOps = map[token.TokenType]Op{
	token.PLUS:    OpAdd,
	token.MINUS:   OpSub,
	token.STAR:    OpMul,
	token.SLASH:   OpDiv,
	token.PERCENT: OpMod,
	token.DPIPE:   OpConcat,
	token.EQ:      OpEq,
	token.NE:      OpNe,
	token.LT:      OpLt,
	token.LE:      OpLe,
	token.GT:      OpGt,
	token.GE:      OpGe,
	token.AND:     OpAnd,
	token.OR:      OpOr,
	token.AMP:     OpBitAnd,
	token.PIPE:    OpBitOr,
	token.CARET:   OpBitXor,
	token.SHL:     OpShl,
	token.SHR:     OpShr,
}

var unaryOps = map[token.TokenType]Op{
	token.MINUS: OpNeg,
	token.PLUS:  OpPos,
	token.NOT:   OpNot,
	token.TILDE: OpBitNot,
}

// OpFromToken maps a parser operator token to an Op.
func OpFromToken(t token.TokenType, unary bool) Op {
	if unary {
		return unaryOps[t]
	}
	return binaryOps[t]
}

// IsComparison reports whether op is one of = <> < <= > >=.
func (op Op) IsComparison() bool {
	return op >= OpEq && op <= OpGe
}

func (op Op) isArithmetic() bool {
	return op >= OpAdd && op <= OpMod
}

func (op Op) isBitwise() bool {
	switch op {
	case OpBitAnd, OpBitOr, OpBitXor, OpShl, OpShr:
		return true
	}
	return false
}

// CheckOperator types op applied to operands. Operators other than the IS
// family propagate nullability, and so does the fallback type returned
// with an error.
func (s *System) CheckOperator(op Op, operands ...Type) (Type, error) {
	nullable := anyNullable(operands)

	switch {
	case op == OpIsNull:
		return NotNull(Boolean), nil

	case op == OpIsBool:
		if err := s.requireFamily(op, operands[0], FamilyBoolean); err != nil {
			return NotNull(Boolean), err
		}
		return NotNull(Boolean), nil

	case op == OpIsDistinct:
		if !s.Compatible(operands[0].Kind, operands[1].Kind) {
			return NotNull(Boolean), newError(CodeTypeMismatch, ErrCannotCompare, operands[0].Kind, operands[1].Kind)
		}
		return NotNull(Boolean), nil

	case op.isArithmetic():
		return s.checkArithmetic(op, operands[0], operands[1])

	case op == OpConcat:
		for _, t := range operands {
			if err := s.requireFamily(op, t, FamilyText); err != nil {
				return Type{Kind: Text, Nullable: nullable}, err
			}
		}
		return Type{Kind: Text, Nullable: nullable}, nil

	case op.IsComparison():
		return s.checkComparison(op, operands[0], operands[1])

	case op == OpAnd, op == OpOr, op == OpNot:
		for _, t := range operands {
			if err := s.requireFamily(op, t, FamilyBoolean); err != nil {
				return Type{Kind: Boolean, Nullable: nullable}, err
			}
		}
		return Type{Kind: Boolean, Nullable: nullable}, nil

	case op == OpNeg, op == OpPos:
		t := operands[0]
		if !t.IsUnknown() && !s.IsNumeric(t.Kind) && t.Kind != Interval {
			return Type{Kind: Unknown, Nullable: t.Nullable}, newError(CodeNotNumeric, ErrOperandNumeric, op, t.Kind)
		}
		return t, nil

	case op.isBitwise(), op == OpBitNot:
		kind := Unknown
		for _, t := range operands {
			if err := s.requireFamily(op, t, FamilyInteger); err != nil {
				return Type{Kind: Unknown, Nullable: nullable}, err
			}
			kind, _ = s.CommonKind(kind, t.Kind)
		}
		return Type{Kind: kind, Nullable: nullable}, nil

	case op == OpLike:
		for _, t := range operands {
			if err := s.requireFamily(op, t, FamilyText); err != nil {
				return Type{Kind: Boolean, Nullable: nullable}, err
			}
		}
		return Type{Kind: Boolean, Nullable: nullable}, nil
	}

	return UnknownType, newError(CodeUnsupportedOperator, "unsupported operator %s", op)
}

func (s *System) checkArithmetic(op Op, left, right Type) (Type, error) {
	nullable := left.Nullable || right.Nullable
	for _, rule := range s.arith {
		if rule.Op == op && rule.Left == left.Kind && rule.Right == right.Kind {
			return Type{Kind: rule.Result, Nullable: nullable}, nil
		}
	}

	for _, t := range []Type{left, right} {
		if !t.IsUnknown() && !s.IsNumeric(t.Kind) {
			if s.Family(t.Kind) == FamilyTemporal && s.hasArithFor(t.Kind) {
				return Type{Kind: Unknown, Nullable: nullable}, newError(CodeTypeMismatch, "operator %s is not defined for %s and %s", op, left.Kind, right.Kind)
			}
			return Type{Kind: Unknown, Nullable: nullable}, newError(CodeNotNumeric, ErrOperandNumeric, op, t.Kind)
		}
	}
	kind, _ := s.CommonKind(left.Kind, right.Kind)
	return Type{Kind: kind, Nullable: nullable}, nil
}

func (s *System) hasArithFor(k Kind) bool {
	for _, rule := range s.arith {
		if rule.Left == k || rule.Right == k {
			return true
		}
	}
	return false
}

func (s *System) checkComparison(op Op, left, right Type) (Type, error) {
	result := Type{Kind: Boolean, Nullable: left.Nullable || right.Nullable}
	if !s.Compatible(left.Kind, right.Kind) {
		return result, newError(CodeTypeMismatch, ErrCannotCompare, left.Kind, right.Kind)
	}
	equality := op == OpEq || op == OpNe
	for _, t := range []Type{left, right} {
		def := s.Def(t.Kind)
		if (equality && !def.Equality) || (!equality && !def.Ordered) {
			return result, newError(CodeUnsupportedOperator, ErrNoEquality, op, t.Kind)
		}
	}
	return result, nil
}

// requireFamily checks one operand against a family. Unknown passes.
func (s *System) requireFamily(op Op, t Type, fam Family) error {
	if t.IsUnknown() || s.Family(t.Kind) == fam {
		return nil
	}
	switch fam {
	case FamilyBoolean:
		return newError(CodeNotBoolean, ErrOperandBoolean, op, t.Kind)
	case FamilyInteger:
		return newError(CodeNotInteger, ErrOperandInteger, op, t.Kind)
	case FamilyText:
		return newError(CodeNotText, ErrOperandText, op, t.Kind)
	default:
		return newError(CodeTypeMismatch, "operator %s cannot be applied to %s", op, t.Kind)
	}
}
