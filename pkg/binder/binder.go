// Package binder resolves the names in a statement against a catalog and
// a scope, types every expression and validates the statement's clauses.
//
// A Binder never stops at the first problem. Every finding is pushed into
// the diag.Collector it was built with, and a sub-expression that fails to
// bind is typed unknown so the error does not cascade.
package binder

import (
	"cmp"
	"slices"

	"github.com/truffle-sql/truffle/pkg/catalog"
	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/diag"
	"github.com/truffle-sql/truffle/pkg/dialect"
	"github.com/truffle-sql/truffle/pkg/scope"
	"github.com/truffle-sql/truffle/pkg/token"
	"github.com/truffle-sql/truffle/pkg/types"
)

// Level is the aggregation level of an expression.
type Level int

// Expression levels. A constant combines with either of the other two.
const (
	LevelLiteral Level = iota
	LevelRow
	LevelGroup
)

func (l Level) String() string {
	switch l {
	case LevelRow:
		return "row"
	case LevelGroup:
		return "group"
	default:
		return "literal"
	}
}

// Expr is an expression annotated with its resolved type and level.
type Expr struct {
	Node  core.Expr
	Type  types.Type
	Level Level
	Args  []*Expr
}

// Param is a placeholder input of a statement.
type Param struct {
	Index int        `json:"index" yaml:"index"`
	Text  string     `json:"text" yaml:"text"`
	Type  types.Type `json:"type" yaml:"type"`
	Span  token.Span `json:"-" yaml:"-"`
}

// Output is one column produced by a query or RETURNING clause.
type Output struct {
	Qualifier string     `json:"qualifier,omitempty" yaml:"qualifier,omitempty"`
	Name      string     `json:"name" yaml:"name"`
	Type      types.Type `json:"type" yaml:"type"`
}

// Result holds the inputs and outputs of a bound statement.
type Result struct {
	Inputs  []Param
	Outputs []Output
}

// Binder binds the statements of one analysis run. It is not safe for
// concurrent use.
type Binder struct {
	cat    catalog.Reader
	sys    *types.System
	d      *dialect.Dialect
	scopes *scope.Manager
	diags  *diag.Collector

	params map[int]*Param
}

// New returns a binder over cat. It panics when cat, sys or d is nil. A nil
// diags gets a fresh collector.
func New(cat catalog.Reader, sys *types.System, d *dialect.Dialect, diags *diag.Collector) *Binder {
	if cat == nil || sys == nil || d == nil {
		panic("binder: catalog, type system and dialect are required")
	}
	if !sys.HasKind(types.Integer) {
		panic("binder: type system has no base kinds")
	}
	if diags == nil {
		diags = diag.NewCollector()
	}
	return &Binder{
		cat:    cat,
		sys:    sys,
		d:      d,
		scopes: scope.NewManager(d, sys),
		diags:  diags,
		params: make(map[int]*Param),
	}
}

// Diagnostics returns the collector the binder reports to.
func (b *Binder) Diagnostics() *diag.Collector {
	return b.diags
}

// Bind binds a query or DML statement. DDL goes through BindCreateTable and
// BindAlterTable instead; other statements yield an empty result.
func (b *Binder) Bind(stmt core.Stmt) *Result {
	clear(b.params)
	var outputs []Output
	switch s := stmt.(type) {
	case *core.SelectStmt:
		outputs = b.bindSelect(s, nil)
	case *core.InsertStmt:
		outputs = b.bindInsert(s)
	case *core.UpdateStmt:
		b.bindUpdate(s)
	case *core.DeleteStmt:
		b.bindDelete(s)
	case *core.MergeStmt:
		b.bindMerge(s)
	}
	return &Result{Inputs: b.inputs(), Outputs: outputs}
}

// ResolveIdentifier resolves a column reference in sc, innermost scope
// first. depth counts the enclosing scopes walked.
func (b *Binder) ResolveIdentifier(sc *scope.Scope, ref *core.ColumnRef) (*scope.Binding, int, error) {
	if ref.Table != "" {
		return sc.ResolveQualified(ref.Table, ref.Column)
	}
	return sc.Resolve(ref.Column)
}

// ResolveTableRef looks name up in the catalog and returns a scope holding
// it under its alias.
func (b *Binder) ResolveTableRef(name *core.TableName) (*scope.Scope, *catalog.Table, error) {
	t, ok := b.cat.LookupTable(name.Name)
	if !ok {
		return nil, nil, diag.Errorf(diag.CatalogError, diag.CodeUnknownTable, "table %q does not exist", name.Name)
	}
	if name.Alias != "" && b.d.NormalizeName(name.Alias) != b.d.NormalizeName(name.Name) {
		if other, ok := b.cat.LookupTable(name.Alias); ok {
			return b.scopes.NewTable(name.Alias, t), t, diag.Errorf(diag.ResolutionError, diag.CodeAliasIsTableName,
				"alias %q of table %q is also the name of table %q", name.Alias, t.Name, other.Name)
		}
	}
	return b.scopes.NewTable(name.Alias, t), t, nil
}

// ---------- Reporting ----------

func (b *Binder) report(kind diag.Kind, code diag.Code, n core.Node, format string, args ...any) {
	b.diags.Report(kind, code, core.SpanOf(n), format, args...)
}

func (b *Binder) fail(err error, n core.Node) {
	b.diags.AddError(err, core.SpanOf(n))
}

// lookupTable resolves a statement target, reporting an unknown table.
func (b *Binder) lookupTable(name *core.TableName) (*catalog.Table, bool) {
	t, ok := b.cat.LookupTable(name.Name)
	if !ok {
		b.report(diag.CatalogError, diag.CodeUnknownTable, name, "table %q does not exist", name.Name)
	}
	return t, ok
}

// ---------- Parameters ----------

// recordParam registers a placeholder. The first known type wins when the
// same $n appears more than once.
func (b *Binder) recordParam(p *core.Param, t types.Type) {
	if prev, ok := b.params[p.Index]; ok {
		if prev.Type.IsUnknown() && !t.IsUnknown() {
			prev.Type = t
		}
		return
	}
	b.params[p.Index] = &Param{Index: p.Index, Text: p.Text, Type: t, Span: p.Span}
}

func (b *Binder) inputs() []Param {
	out := make([]Param, 0, len(b.params))
	for _, p := range b.params {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(x, y Param) int { return cmp.Compare(x.Index, y.Index) })
	return out
}

// ---------- Types ----------

// ResolveType maps a declared type name to a kind through the dialect's
// aliases. generated is set for types that imply a default (SERIAL).
func (b *Binder) ResolveType(typeName string) (kind types.Kind, generated bool) {
	if alias, ok := b.d.TypeAlias(typeName); ok {
		if k := b.sys.LookupKind(alias.Target); k != types.Unknown {
			return k, alias.Generated
		}
		return b.sys.LookupKind(typeName), alias.Generated
	}
	return b.sys.LookupKind(typeName), false
}
