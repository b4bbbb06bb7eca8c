// Package sim runs SQL statements against an in-memory catalog without
// executing them. DDL changes the catalog; queries and DML are bound and
// type-checked against it.
//
// A Simulator treats its input as an ordered log: each statement sees the
// catalog exactly as the statements before it left it.
package sim

import (
	"log/slog"

	"github.com/truffle-sql/truffle/pkg/binder"
	"github.com/truffle-sql/truffle/pkg/catalog"
	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/diag"
	"github.com/truffle-sql/truffle/pkg/dialect"
	"github.com/truffle-sql/truffle/pkg/dialects/generic"
	"github.com/truffle-sql/truffle/pkg/format"
	"github.com/truffle-sql/truffle/pkg/parser"
	"github.com/truffle-sql/truffle/pkg/token"
	"github.com/truffle-sql/truffle/pkg/types"
)

// Option configures a Simulator.
type Option func(*Simulator)

// WithDialect sets the SQL dialect. The default is the generic dialect.
func WithDialect(d *dialect.Dialect) Option {
	return func(s *Simulator) {
		if d != nil {
			s.d = d
		}
	}
}

// WithTypes sets the type system. The default is types.DefaultSystem().
func WithTypes(sys *types.System) Option {
	return func(s *Simulator) {
		if sys != nil {
			s.sys = sys
		}
	}
}

// WithLogger sets the debug logger. Nothing is logged by default.
func WithLogger(l *slog.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}

// Simulator owns a catalog and analyzes one statement at a time. It is not
// safe for concurrent use; independent Simulators may run in parallel.
type Simulator struct {
	d      *dialect.Dialect
	sys    *types.System
	logger *slog.Logger
	cat    *catalog.Catalog
}

// New returns a Simulator with an empty catalog. It panics if the type
// system has no base kinds.
func New(opts ...Option) *Simulator {
	s := &Simulator{
		d:      generic.Generic,
		sys:    types.DefaultSystem(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	if !s.sys.HasKind(types.Integer) {
		panic("sim: type system has no base kinds")
	}
	s.cat = catalog.New(s.d)
	return s
}

// Dialect returns the active dialect.
func (s *Simulator) Dialect() *dialect.Dialect {
	return s.d
}

// Types returns the active type system.
func (s *Simulator) Types() *types.System {
	return s.sys
}

// Catalog returns a read-only view of the live catalog.
func (s *Simulator) Catalog() catalog.Reader {
	return s.cat
}

// Snapshot returns an independent copy of the catalog.
func (s *Simulator) Snapshot() *catalog.Catalog {
	return s.cat.Snapshot()
}

// Reset discards every table.
func (s *Simulator) Reset() {
	s.logger.Debug("catalog reset", slog.Int("tables", s.cat.Len()))
	s.cat = catalog.New(s.d)
}

// Execute analyzes one parsed statement. DDL that is accepted is applied to
// the catalog; rejected DDL leaves the catalog unchanged.
func (s *Simulator) Execute(stmt core.Stmt) *Result {
	diags := diag.NewCollector()
	res := &Result{Statement: stmt, Kind: core.StatementKind(stmt)}
	if stmt == nil {
		diags.Report(diag.SyntaxError, diag.CodeSyntax, token.Span{}, "empty statement")
		res.Diagnostics = diags.List()
		return res
	}

	s.logger.Debug("executing statement",
		slog.String("kind", res.Kind),
		slog.Int("line", stmt.Pos().Line),
		slog.Any("sql", statementValue{stmt}))

	b := binder.New(s.cat, s.sys, s.d, diags)
	switch x := stmt.(type) {
	case *core.CreateTableStmt:
		s.createTable(b, x)
	case *core.AlterTableStmt:
		s.alterTable(b, x)
	case *core.DropTableStmt:
		s.dropTables(diags, x)
	default:
		bound := b.Bind(stmt)
		res.Inputs, res.Outputs = bound.Inputs, bound.Outputs
	}

	res.Diagnostics = diags.List()
	s.logger.Debug("statement analyzed",
		slog.String("kind", res.Kind),
		slog.Int("diagnostics", len(res.Diagnostics)))
	return res
}

func (s *Simulator) createTable(b *binder.Binder, x *core.CreateTableStmt) {
	t, ok := b.BindCreateTable(x)
	if !ok {
		return
	}
	if t == nil {
		s.logger.Debug("table exists, skipped", slog.String("table", x.Name.Name))
		return
	}
	if err := s.cat.DefineTable(t, x.IfNotExists); err != nil {
		b.Diagnostics().AddError(err, core.SpanOf(x.Name))
		return
	}
	s.logger.Debug("table defined", slog.String("table", t.Name), slog.Int("columns", len(t.Columns)))
}

func (s *Simulator) alterTable(b *binder.Binder, x *core.AlterTableStmt) {
	ops, ok := b.BindAlterTable(x)
	if !ok {
		return
	}
	if err := s.cat.AlterTable(x.Name.Name, ops...); err != nil {
		b.Diagnostics().AddError(err, core.SpanOf(x))
		return
	}
	s.logger.Debug("table altered", slog.String("table", x.Name.Name), slog.Int("ops", len(ops)))
}

func (s *Simulator) dropTables(diags *diag.Collector, x *core.DropTableStmt) {
	names := make([]string, len(x.Names))
	for i, n := range x.Names {
		names[i] = n.Name
	}
	if err := s.cat.DropTables(names, x.IfExists); err != nil {
		diags.AddError(err, core.SpanOf(x))
		return
	}
	s.logger.Debug("tables dropped", slog.Any("tables", names))
}

// ExecuteSQL parses text and executes its statements in order. A syntax
// error is reported once and ends the run; statements before it have
// already been executed.
func (s *Simulator) ExecuteSQL(text string) *Report {
	rep := &Report{}
	p := parser.New(text, s.d)
	for {
		stmt, err := p.Next()
		if err != nil {
			d := diag.FromError(err, token.Span{})
			rep.Syntax = &d
			s.logger.Debug("parse failed", slog.String("error", d.String()))
			return rep
		}
		if stmt == nil {
			return rep
		}
		rep.Results = append(rep.Results, s.Execute(stmt))
	}
}

// CheckQuery analyzes a single statement against a copy of the catalog and
// returns its inputs and outputs. The Simulator's own catalog is never
// changed. On any diagnostic the info is nil.
func (s *Simulator) CheckQuery(query string) (*QueryInfo, diag.List) {
	stmt, err := parser.ParseStatement(query, s.d)
	if err != nil {
		return nil, diag.List{diag.FromError(err, token.Span{})}
	}
	probe := &Simulator{d: s.d, sys: s.sys, logger: s.logger, cat: s.cat.Snapshot()}
	res := probe.Execute(stmt)
	if !res.OK() {
		return nil, res.Diagnostics
	}
	return &QueryInfo{Kind: res.Kind, Inputs: res.Inputs, Outputs: res.Outputs}, res.Diagnostics
}

// CheckQuery loads migrations into a fresh Simulator and checks query
// against the resulting catalog. Migration diagnostics are returned as-is
// and the query is not analyzed.
func CheckQuery(query string, migrations ...string) (*QueryInfo, diag.List) {
	s := New()
	for _, m := range migrations {
		if rep := s.ExecuteSQL(m); !rep.OK() {
			return nil, rep.Diagnostics()
		}
	}
	return s.CheckQuery(query)
}

// statementValue renders a statement lazily, only when the record is
// actually logged.
type statementValue struct {
	stmt core.Stmt
}

func (v statementValue) LogValue() slog.Value {
	return slog.StringValue(format.Statement(v.stmt))
}
