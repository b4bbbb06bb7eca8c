// Package diag defines the structured diagnostics produced by the analyzer
// and the collector that accumulates them while a statement is processed.
//
// Diagnostics are values: once added to a Collector they are never changed,
// and a List handed out by a Collector is an independent copy.
package diag

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/token"
)

// Kind is the top-level classification of a diagnostic.
type Kind string

// Diagnostic kinds.
const (
	SyntaxError     Kind = "SyntaxError"
	CatalogError    Kind = "CatalogError"
	ResolutionError Kind = "ResolutionError"
	TypeError       Kind = "TypeError"
	ScopeError      Kind = "ScopeError"
	ConstraintError Kind = "ConstraintError"
)

// Kinds lists every diagnostic kind in taxonomy order.
var Kinds = []Kind{SyntaxError, CatalogError, ResolutionError, TypeError, ScopeError, ConstraintError}

// Code is a stable machine-readable identifier within a kind.
type Code string

// Syntax codes.
const (
	CodeSyntax Code = "Syntax"
)

// Catalog codes.
const (
	CodeDuplicateTable  Code = "DuplicateTable"
	CodeUnknownTable    Code = "UnknownTable"
	CodeUnknownColumn   Code = "UnknownColumn"
	CodeDuplicateColumn Code = "DuplicateColumn"
)

// Resolution codes.
const (
	CodeUnresolved       Code = "Unresolved"
	CodeUnknownQualifier Code = "UnknownQualifier"
	CodeAmbiguousColumn  Code = "AmbiguousColumn"
	CodeAmbiguousAlias   Code = "AmbiguousAlias"
	CodeAliasConflict    Code = "AliasConflict"
	CodeAliasIsTableName Code = "AliasIsTableName"
	CodeNoCommonColumn   Code = "NoCommonColumn"
)

// Type codes. The operator and function codes mirror types.Code.
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
	CodeSubqueryColumns     Code = "SubqueryColumns"
	CodeSetOpColumns        Code = "SetOpColumns"
	CodeDefaultNotAllowed   Code = "DefaultNotAllowed"
	CodeInvalidLimit        Code = "InvalidLimit"
)

// Scope codes.
const (
	CodeNotInGroupBy         Code = "NotInGroupBy"
	CodeAggregateInWhere     Code = "AggregateInWhere"
	CodeNestedAggregate      Code = "NestedAggregate"
	CodeAggregateNotAllowed  Code = "AggregateNotAllowed"
	CodeInvalidOrderPosition Code = "InvalidOrderPosition"
)

// Constraint codes.
const (
	CodeColumnCount           Code = "ColumnCount"
	CodeNullIntoNotNull       Code = "NullIntoNotNull"
	CodeMissingRequiredColumn Code = "MissingRequiredColumn"
	CodeNoUniqueConstraint    Code = "NoUniqueConstraint"
	CodeForeignKeyReference   Code = "ForeignKeyReference"
	CodeForeignKeyTarget      Code = "ForeignKeyTarget"
	CodeForeignKeyAction      Code = "ForeignKeyAction"
	CodeInvalidDefault        Code = "InvalidDefault"
	CodeMultiplePrimaryKeys   Code = "MultiplePrimaryKeys"
	CodeDuplicateTarget       Code = "DuplicateTarget"
)

// Diagnostic is one analysis finding.
type Diagnostic struct {
	Kind     Kind          `json:"kind" yaml:"kind"`
	Code     Code          `json:"code" yaml:"code"`
	Message  string        `json:"message" yaml:"message"`
	Span     token.Span    `json:"-" yaml:"-"`
	Severity core.Severity `json:"-" yaml:"-"`
}

// String renders "line:col: kind/code: message".
func (d Diagnostic) String() string {
	if d.Span.Start.IsValid() {
		return fmt.Sprintf("%s: %s/%s: %s", d.Span.Start, d.Kind, d.Code, d.Message)
	}
	return fmt.Sprintf("%s/%s: %s", d.Kind, d.Code, d.Message)
}

type jsonDiagnostic struct {
	Kind     Kind   `json:"kind"`
	Code     Code   `json:"code"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
	EndLine  int    `json:"end_line,omitempty"`
	EndCol   int    `json:"end_column,omitempty"`
}

// MarshalJSON flattens the span into line/column fields.
func (d Diagnostic) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonDiagnostic{
		Kind:     d.Kind,
		Code:     d.Code,
		Message:  d.Message,
		Severity: d.Severity.String(),
		Line:     d.Span.Start.Line,
		Column:   d.Span.Start.Column,
		EndLine:  d.Span.End.Line,
		EndCol:   d.Span.End.Column,
	})
}

// Error is a classified failure raised by the scope manager and the binder
// before it is attached to a source span.
type Error struct {
	Kind    Kind
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Errorf builds an *Error.
func Errorf(kind Kind, code Code, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// ---------- List ----------

// List is an ordered, read-only sequence of diagnostics.
type List []Diagnostic

// HasErrors reports whether any diagnostic has error severity.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity.Rejects() {
			return true
		}
	}
	return false
}

// ByKind returns the diagnostics of one kind, in order.
func (l List) ByKind(kind Kind) List {
	var out List
	for _, d := range l {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// Codes returns the codes in order. Useful in tests.
func (l List) Codes() []Code {
	out := make([]Code, len(l))
	for i, d := range l {
		out[i] = d.Code
	}
	return out
}

// Error joins the diagnostics one per line, so a non-empty List can be
// returned as an error.
func (l List) Error() string {
	lines := make([]string, len(l))
	for i, d := range l {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}

// Err returns the list as an error, or nil when it is empty.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}
