package diag

import (
	"errors"
	"fmt"
	"slices"

	"github.com/truffle-sql/truffle/pkg/catalog"
	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/parser"
	"github.com/truffle-sql/truffle/pkg/token"
	"github.com/truffle-sql/truffle/pkg/types"
)

// Collector accumulates diagnostics in the order they are reported.
// The zero value is ready to use.
type Collector struct {
	items []Diagnostic
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Add appends a diagnostic.
func (c *Collector) Add(d Diagnostic) {
	c.items = append(c.items, d)
}

// Report appends an error-severity diagnostic.
func (c *Collector) Report(kind Kind, code Code, span token.Span, format string, args ...any) {
	c.Add(Diagnostic{
		Kind:     kind,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Span:     span,
		Severity: core.SeverityError,
	})
}

// AddError classifies err and appends it at span. Joined errors (errors.Join)
// are added one by one. A nil err is ignored.
func (c *Collector) AddError(err error, span token.Span) {
	if err == nil {
		return
	}
	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range multi.Unwrap() {
			c.AddError(e, span)
		}
		return
	}
	c.Add(FromError(err, span))
}

// Len returns the number of diagnostics collected so far.
func (c *Collector) Len() int {
	return len(c.items)
}

// List returns a copy of the collected diagnostics.
func (c *Collector) List() List {
	return slices.Clone(List(c.items))
}

// FromError converts a typed error from the analyzer packages into a
// diagnostic located at span. Parse errors carry their own span.
func FromError(err error, span token.Span) Diagnostic {
	d := Diagnostic{Message: err.Error(), Span: span, Severity: core.SeverityError}

	var (
		de *Error
		te *types.Error
		ce *catalog.Error
		pe *parser.ParseError
	)
	switch {
	case errors.As(err, &de):
		d.Kind, d.Code, d.Message = de.Kind, de.Code, de.Message
	case errors.As(err, &te):
		d.Kind, d.Code, d.Message = TypeError, Code(te.Code), te.Message
	case errors.As(err, &ce):
		d.Kind, d.Code = CatalogError, Code(ce.Code)
		if ce.Code == catalog.CodeForeignKeyReference {
			d.Kind = ConstraintError
		}
	case errors.As(err, &pe):
		d.Kind, d.Code, d.Message = SyntaxError, CodeSyntax, pe.Message
		d.Span = pe.Span()
	default:
		d.Kind, d.Code = SyntaxError, CodeSyntax
	}
	return d
}
