package types

import "fmt"

// Code classifies a type error.
type Code string

// Type error codes.
const (
	CodeTypeMismatch        Code = "TypeMismatch"
	CodeNotNumeric          Code = "NotNumeric"
	CodeNotBoolean          Code = "NotBoolean"
	CodeNotInteger          Code = "NotInteger"
	CodeNotText             Code = "NotText"
	CodeUnsupportedOperator Code = "UnsupportedOperator"
	CodeUnknownFunction     Code = "UnknownFunction"
	CodeArgumentCount       Code = "ArgumentCount"
	CodeInvalidLiteral      Code = "InvalidLiteral"
)

// Error messages
const (
	ErrCannotCompare    = "cannot compare %s with %s"
	ErrOperandNumeric   = "operator %s requires numeric operands, got %s"
	ErrOperandBoolean   = "operator %s requires boolean operands, got %s"
	ErrOperandInteger   = "operator %s requires integer operands, got %s"
	ErrOperandText      = "operator %s requires text operands, got %s"
	ErrNoEquality       = "operator %s is not supported for %s"
	ErrUnknownFunction  = "unknown function %s"
	ErrArgumentCount    = "function %s expects %s, got %d"
	ErrArgumentKind     = "argument %d of %s must be %s, got %s"
	ErrArgumentMismatch = "arguments of %s have incompatible types %s and %s"
	ErrInvalidLiteral   = "invalid %s literal %q"
	ErrNotAssignable    = "cannot assign %s to %s"
)

// Error is a type-checking failure.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}
