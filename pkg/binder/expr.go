package binder

import (
	"errors"
	"strings"

	"github.com/truffle-sql/truffle/pkg/catalog"
	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/diag"
	"github.com/truffle-sql/truffle/pkg/format"
	"github.com/truffle-sql/truffle/pkg/scope"
	"github.com/truffle-sql/truffle/pkg/types"
)

// clause names the part of a statement an expression appears in.
type clause int

const (
	clauseWhere clause = iota
	clauseSelect
	clauseGroupBy
	clauseHaving
	clauseOrderBy
	clauseJoin
	clauseSet
	clauseValues
	clauseDefault
	clauseLimit
	clauseCheck
	clauseReturning
	clauseMerge
)

var clauseNames = map[clause]string{
	clauseWhere:     "WHERE",
	clauseSelect:    "SELECT",
	clauseGroupBy:   "GROUP BY",
	clauseHaving:    "HAVING",
	clauseOrderBy:   "ORDER BY",
	clauseJoin:      "JOIN conditions",
	clauseSet:       "UPDATE SET",
	clauseValues:    "VALUES",
	clauseDefault:   "DEFAULT expressions",
	clauseLimit:     "LIMIT",
	clauseCheck:     "CHECK constraints",
	clauseReturning: "RETURNING",
	clauseMerge:     "MERGE",
}

func (c clause) String() string {
	return clauseNames[c]
}

func (c clause) allowsAggregates() bool {
	return c == clauseSelect || c == clauseHaving || c == clauseOrderBy
}

// exprCtx is the environment an expression is bound in.
type exprCtx struct {
	sc     *scope.Scope
	clause clause
	// inAgg is set inside the arguments of an aggregate call.
	inAgg bool
	// grouped enables the GROUP BY visibility rule.
	grouped bool
	// lenient drops unresolved-name errors once a FROM item has failed.
	lenient bool
}

// Error messages
const (
	ErrNotInGroupBy       = "column %q must appear in the GROUP BY clause or be used in an aggregate function"
	ErrAggregateInWhere   = "aggregate functions are not allowed in WHERE"
	ErrNestedAggregate    = "aggregate function calls cannot be nested"
	ErrAggregateNotAllow  = "aggregate functions are not allowed in %s"
	ErrNotBooleanClause   = "argument of %s must be type boolean, not type %s"
	ErrCaseTypes          = "CASE types %s and %s cannot be matched"
	ErrSubqueryOneColumn  = "subquery must return only one column"
	ErrSubqueryArity      = "subquery has %d columns, expected %d"
	ErrRowArity           = "row comparison has %d and %d elements"
	ErrRowNotAllowed      = "row value is not allowed here"
	ErrDefaultNotAllowed  = "DEFAULT is not allowed in this context"
	ErrUnsupportedOp      = "operator %s is not supported"
	ErrDialectNoAggregate = "unknown function %s"
)

var boolHint = types.Null(types.Boolean)

// bindExpr binds e. hint is the type the surrounding context expects; it
// types literals and placeholders that have no type of their own.
func (b *Binder) bindExpr(ctx exprCtx, e core.Expr, hint types.Type) *Expr {
	if e == nil {
		return &Expr{Type: types.UnknownType}
	}
	if ctx.grouped && !ctx.inAgg {
		if x, ok := b.bindGroupedExpr(ctx, e, hint); ok {
			return x
		}
	}

	switch x := e.(type) {
	case *core.ColumnRef:
		return b.bindColumn(ctx, x)
	case *core.Literal:
		return b.bindLiteral(x, hint)
	case *core.Param:
		t := hint
		if t.Kind == "" {
			t = types.UnknownType
		}
		b.recordParam(x, t)
		return &Expr{Node: x, Type: t, Level: LevelLiteral}
	case *core.BinaryExpr:
		return b.bindBinary(ctx, x, hint)
	case *core.UnaryExpr:
		return b.bindUnary(ctx, x, hint)
	case *core.FuncCall:
		return b.bindFunc(ctx, x, hint)
	case *core.CaseExpr:
		return b.bindCase(ctx, x, hint)
	case *core.CastExpr:
		return b.bindCast(ctx, x)
	case *core.InExpr:
		return b.bindIn(ctx, x)
	case *core.BetweenExpr:
		return b.bindBetween(ctx, x)
	case *core.IsNullExpr:
		inner := b.bindExpr(ctx, x.Expr, types.Type{})
		return &Expr{Node: x, Type: types.NotNull(types.Boolean), Level: inner.Level, Args: []*Expr{inner}}
	case *core.IsBoolExpr:
		inner := b.bindExpr(ctx, x.Expr, boolHint)
		t, err := b.sys.CheckOperator(types.OpIsBool, inner.Type)
		if err != nil {
			b.fail(err, x)
		}
		return &Expr{Node: x, Type: t, Level: inner.Level, Args: []*Expr{inner}}
	case *core.IsDistinctExpr:
		l, r := b.bindPair(ctx, x.Left, x.Right, types.Type{}, nil)
		t, err := b.sys.CheckOperator(types.OpIsDistinct, l.Type, r.Type)
		if err != nil {
			b.fail(err, x)
		}
		return &Expr{Node: x, Type: t, Level: maxLevel(l, r), Args: []*Expr{l, r}}
	case *core.LikeExpr:
		return b.bindLike(ctx, x)
	case *core.ParenExpr:
		inner := b.bindExpr(ctx, x.Expr, hint)
		return &Expr{Node: x, Type: inner.Type, Level: inner.Level, Args: []*Expr{inner}}
	case *core.TupleExpr:
		b.report(diag.TypeError, diag.CodeTypeMismatch, x, ErrRowNotAllowed)
		args := make([]*Expr, len(x.Elems))
		for i, el := range x.Elems {
			args[i] = b.bindExpr(ctx, el, types.Type{})
		}
		return &Expr{Node: x, Type: types.UnknownType, Level: maxLevel(args...), Args: args}
	case *core.SubqueryExpr:
		outs := b.bindSubquery(ctx, x.Select)
		t := types.UnknownType
		if len(outs) != 1 {
			b.report(diag.TypeError, diag.CodeSubqueryColumns, x, ErrSubqueryOneColumn)
		} else {
			t = outs[0].Type.WithNullable(true)
		}
		return &Expr{Node: x, Type: t, Level: LevelLiteral}
	case *core.ExistsExpr:
		b.bindSubquery(ctx, x.Select)
		return &Expr{Node: x, Type: types.NotNull(types.Boolean), Level: LevelLiteral}
	case *core.DefaultExpr:
		b.report(diag.TypeError, diag.CodeDefaultNotAllowed, x, ErrDefaultNotAllowed)
		return &Expr{Node: x, Type: types.UnknownType}
	}
	return &Expr{Node: e, Type: types.UnknownType}
}

// bindGroupedExpr handles an expression that matches a GROUP BY expression
// as a whole. Its columns are then visible without aggregation.
func (b *Binder) bindGroupedExpr(ctx exprCtx, e core.Expr, hint types.Type) (*Expr, bool) {
	switch e.(type) {
	case *core.ColumnRef, *core.Literal, *core.Param, *core.SubqueryExpr, *core.ExistsExpr:
		return nil, false
	}
	if b.isAggregateCall(e) || !ctx.sc.IsGrouped(exprKey(e, b.d)) {
		return nil, false
	}
	inner := ctx
	inner.grouped = false
	x := b.bindExpr(inner, e, hint)
	x.Level = LevelGroup
	return x, true
}

func exprKey(e core.Expr, f catalog.Folder) string {
	return "expr:" + format.Key(e, f)
}

func (b *Binder) bindColumn(ctx exprCtx, x *core.ColumnRef) *Expr {
	bnd, depth, err := b.ResolveIdentifier(ctx.sc, x)
	if err != nil {
		if !ctx.lenient || !isUnresolved(err) {
			b.fail(err, x)
		}
		return &Expr{Node: x, Type: types.UnknownType, Level: LevelRow}
	}
	level := LevelRow
	if depth > 0 {
		// An outer reference is constant for each evaluation of the subquery.
		// Inside an aggregate it is the outer query's aggregate argument.
		level = LevelLiteral
		if owner := ctx.sc.Ancestor(depth); !ctx.inAgg && owner != nil &&
			owner.State() == scope.GroupScope && !owner.IsGrouped(bnd.Key()) {
			b.report(diag.ScopeError, diag.CodeNotInGroupBy, x, ErrNotInGroupBy, refName(x))
		}
	} else if ctx.grouped && !ctx.inAgg {
		if ctx.sc.IsGrouped(bnd.Key()) {
			level = LevelGroup
		} else {
			b.report(diag.ScopeError, diag.CodeNotInGroupBy, x, ErrNotInGroupBy, refName(x))
		}
	}
	return &Expr{Node: x, Type: bnd.Type, Level: level}
}

func refName(x *core.ColumnRef) string {
	if x.Table != "" {
		return x.Table + "." + x.Column
	}
	return x.Column
}

func isUnresolved(err error) bool {
	var de *diag.Error
	return errors.As(err, &de) && (de.Code == diag.CodeUnresolved || de.Code == diag.CodeUnknownQualifier)
}

func (b *Binder) bindLiteral(x *core.Literal, hint types.Type) *Expr {
	out := &Expr{Node: x, Level: LevelLiteral}
	switch x.Type {
	case core.LiteralNumber:
		k := types.NumericLiteralKind(x.Value)
		if b.sys.IsNumeric(hint.Kind) && (b.sys.Family(hint.Kind) == types.FamilyFloat || b.sys.Family(k) == types.FamilyInteger) {
			if err := b.sys.ValidateLiteral(hint.Kind, x.Value); err != nil {
				b.fail(err, x)
			}
			k = hint.Kind
		}
		out.Type = types.NotNull(k)
	case core.LiteralString:
		out.Type = types.NotNull(types.Text)
		if b.coercesString(hint.Kind) {
			if err := b.sys.ValidateLiteral(hint.Kind, x.Value); err != nil {
				b.fail(err, x)
			}
			out.Type = types.NotNull(hint.Kind)
		}
	case core.LiteralBool:
		out.Type = types.NotNull(types.Boolean)
	case core.LiteralBlob:
		out.Type = types.NotNull(types.Blob)
	default:
		k := hint.Kind
		if k == "" {
			k = types.Unknown
		}
		out.Type = types.Null(k)
	}
	return out
}

// coercesString reports whether a string literal expected as k is read as
// a k value: temporal kinds and feature kinds such as uuid and json.
func (b *Binder) coercesString(k types.Kind) bool {
	if !b.sys.HasKind(k) {
		return false
	}
	fam := b.sys.Family(k)
	return fam == types.FamilyTemporal || fam == types.FamilyOther
}

// bindPair binds two operands. When exactly one is contextual it is bound
// second, with the other's type (mapped through derive) as its hint.
func (b *Binder) bindPair(ctx exprCtx, lhs, rhs core.Expr, hint types.Type, derive func(types.Type) types.Type) (*Expr, *Expr) {
	sibling := func(t types.Type) types.Type {
		if t.IsUnknown() {
			return hint
		}
		if derive != nil {
			return derive(t)
		}
		return t
	}
	if isContextual(lhs) && !isContextual(rhs) {
		r := b.bindExpr(ctx, rhs, hint)
		return b.bindExpr(ctx, lhs, sibling(r.Type)), r
	}
	l := b.bindExpr(ctx, lhs, hint)
	return l, b.bindExpr(ctx, rhs, sibling(l.Type))
}

func (b *Binder) bindBinary(ctx exprCtx, x *core.BinaryExpr, hint types.Type) *Expr {
	op := types.OpFromToken(x.Op, false)
	var l, r *Expr
	switch {
	case op == types.OpInvalid:
		l, r = b.bindPair(ctx, x.Left, x.Right, types.Type{}, nil)
		b.report(diag.TypeError, diag.CodeUnsupportedOperator, x, ErrUnsupportedOp, x.Op)
		return &Expr{Node: x, Type: types.UnknownType, Level: maxLevel(l, r), Args: []*Expr{l, r}}
	case op.IsComparison() && (isRow(x.Left) || isRow(x.Right)):
		return b.bindRowComparison(ctx, x, op)
	case op == types.OpAnd || op == types.OpOr:
		l, r = b.bindExpr(ctx, x.Left, boolHint), b.bindExpr(ctx, x.Right, boolHint)
	case op == types.OpConcat:
		text := types.Null(types.Text)
		l, r = b.bindExpr(ctx, x.Left, text), b.bindExpr(ctx, x.Right, text)
	case op.IsComparison():
		l, r = b.bindPair(ctx, x.Left, x.Right, types.Type{}, nil)
	default:
		l, r = b.bindPair(ctx, x.Left, x.Right, hint, b.arithHint)
	}
	t, err := b.sys.CheckOperator(op, l.Type, r.Type)
	if err != nil {
		b.fail(err, x)
	}
	return &Expr{Node: x, Type: t, Level: maxLevel(l, r), Args: []*Expr{l, r}}
}

// arithHint is the hint for the untyped operand of an arithmetic
// operator: an interval next to a point in time, else the sibling's type.
func (b *Binder) arithHint(sibling types.Type) types.Type {
	if b.sys.Family(sibling.Kind) == types.FamilyTemporal && sibling.Kind != types.Interval && b.sys.HasKind(types.Interval) {
		return types.Type{Kind: types.Interval, Nullable: sibling.Nullable}
	}
	return sibling
}

func (b *Binder) bindUnary(ctx exprCtx, x *core.UnaryExpr, hint types.Type) *Expr {
	op := types.OpFromToken(x.Op, true)
	if op == types.OpNot {
		hint = boolHint
	}
	inner := b.bindExpr(ctx, x.Expr, hint)
	if op == types.OpInvalid {
		b.report(diag.TypeError, diag.CodeUnsupportedOperator, x, ErrUnsupportedOp, x.Op)
		return &Expr{Node: x, Type: types.UnknownType, Level: inner.Level, Args: []*Expr{inner}}
	}
	t, err := b.sys.CheckOperator(op, inner.Type)
	if err != nil {
		b.fail(err, x)
	}
	return &Expr{Node: x, Type: t, Level: inner.Level, Args: []*Expr{inner}}
}

func (b *Binder) bindFunc(ctx exprCtx, x *core.FuncCall, hint types.Type) *Expr {
	agg := b.d.IsAggregate(x.Name)
	argCtx := ctx
	if agg {
		switch {
		case ctx.inAgg:
			b.report(diag.ScopeError, diag.CodeNestedAggregate, x, ErrNestedAggregate)
		case ctx.clause == clauseWhere:
			b.report(diag.ScopeError, diag.CodeAggregateInWhere, x, ErrAggregateInWhere)
		case !ctx.clause.allowsAggregates():
			b.report(diag.ScopeError, diag.CodeAggregateNotAllowed, x, ErrAggregateNotAllow, ctx.clause)
		}
		argCtx.inAgg = true
		argCtx.grouped = false
	}

	args := make([]*Expr, len(x.Args))
	argTypes := make([]types.Type, len(x.Args))
	for i, a := range x.Args {
		argTypes[i] = types.UnknownType
		if !isContextual(a) {
			args[i] = b.bindExpr(argCtx, a, types.Type{})
			argTypes[i] = args[i].Type
		}
	}
	for i, a := range x.Args {
		if args[i] != nil {
			continue
		}
		h := hint
		if k := b.sys.ArgHint(x.Name, i, argTypes); k != types.Unknown {
			h = types.Null(k)
		}
		args[i] = b.bindExpr(argCtx, a, h)
		argTypes[i] = args[i].Type
	}

	level := maxLevel(args...)
	if agg {
		level = LevelGroup
	}
	if sig, ok := b.sys.LookupFunction(x.Name); ok && sig.Aggregate && !agg {
		b.report(diag.TypeError, diag.CodeUnknownFunction, x, ErrDialectNoAggregate, strings.ToUpper(x.Name))
		return &Expr{Node: x, Type: types.UnknownType, Level: level, Args: args}
	}
	t, err := b.sys.CheckFunction(x.Name, argTypes, x.Star)
	if err != nil {
		b.fail(err, x)
	}
	return &Expr{Node: x, Type: t, Level: level, Args: args}
}

func (b *Binder) bindCase(ctx exprCtx, x *core.CaseExpr, hint types.Type) *Expr {
	var args []*Expr
	var operand *Expr
	if x.Operand != nil {
		operand = b.bindExpr(ctx, x.Operand, types.Type{})
		args = append(args, operand)
	}
	for _, w := range x.Whens {
		if operand != nil {
			c := b.bindExpr(ctx, w.Condition, operand.Type)
			if _, err := b.sys.CheckOperator(types.OpEq, operand.Type, c.Type); err != nil {
				b.fail(err, w.Condition)
			}
			args = append(args, c)
			continue
		}
		c := b.bindExpr(ctx, w.Condition, boolHint)
		b.requireBoolean(c, "CASE/WHEN")
		args = append(args, c)
	}

	results := make([]core.Expr, 0, len(x.Whens)+1)
	for _, w := range x.Whens {
		results = append(results, w.Result)
	}
	if x.Else != nil {
		results = append(results, x.Else)
	}
	bound := make([]*Expr, len(results))
	kind := types.Unknown
	unify := func(r *Expr) {
		k, ok := b.sys.CommonKind(kind, r.Type.Kind)
		if !ok {
			b.report(diag.TypeError, diag.CodeTypeMismatch, r.Node, ErrCaseTypes, kind, r.Type.Kind)
			return
		}
		kind = k
	}
	for i, r := range results {
		if !isContextual(r) {
			bound[i] = b.bindExpr(ctx, r, hint)
			unify(bound[i])
		}
	}
	if kind == types.Unknown && hint.Kind != "" {
		kind = hint.Kind
	}
	for i, r := range results {
		if bound[i] == nil {
			bound[i] = b.bindExpr(ctx, r, types.Null(kind))
			unify(bound[i])
		}
	}

	nullable := x.Else == nil
	for _, r := range bound {
		nullable = nullable || r.Type.Nullable
	}
	args = append(args, bound...)
	return &Expr{Node: x, Type: types.Type{Kind: kind, Nullable: nullable}, Level: maxLevel(args...), Args: args}
}

func (b *Binder) bindCast(ctx exprCtx, x *core.CastExpr) *Expr {
	k, _ := b.ResolveType(x.TypeName)
	if lit, ok := core.Unparen(x.Expr).(*core.Literal); ok && lit.Type == core.LiteralString {
		if k != types.Unknown {
			if err := b.sys.ValidateLiteral(k, lit.Value); err != nil {
				b.fail(err, lit)
			}
		}
		return &Expr{Node: x, Type: types.NotNull(k), Level: LevelLiteral}
	}
	inner := b.bindExpr(ctx, x.Expr, types.Null(k))
	return &Expr{Node: x, Type: types.Type{Kind: k, Nullable: inner.Type.Nullable}, Level: inner.Level, Args: []*Expr{inner}}
}

func (b *Binder) bindIn(ctx exprCtx, x *core.InExpr) *Expr {
	if x.Query != nil {
		left := b.bindRow(ctx, x.Expr, nil)
		right := b.subqueryRow(ctx, x.Query)
		b.compareRows(x, types.OpEq, left, right, true)
		return &Expr{Node: x, Type: rowResult(left, right), Level: maxLevel(left...), Args: left}
	}

	if isRow(x.Expr) {
		left := b.bindRow(ctx, x.Expr, nil)
		nullable := false
		for _, v := range x.Values {
			right := b.bindRow(ctx, v, typesOf(left))
			b.compareRows(v, types.OpEq, left, right, false)
			nullable = nullable || rowResult(left, right).Nullable
		}
		return &Expr{Node: x, Type: types.Type{Kind: types.Boolean, Nullable: nullable}, Level: maxLevel(left...), Args: left}
	}

	left := b.bindExpr(ctx, x.Expr, types.Type{})
	args := []*Expr{left}
	nullable := left.Type.Nullable
	for _, v := range x.Values {
		ve := b.bindExpr(ctx, v, left.Type)
		if _, err := b.sys.CheckOperator(types.OpEq, left.Type, ve.Type); err != nil {
			b.fail(err, v)
		}
		nullable = nullable || ve.Type.Nullable
		args = append(args, ve)
	}
	return &Expr{Node: x, Type: types.Type{Kind: types.Boolean, Nullable: nullable}, Level: maxLevel(args...), Args: args}
}

func (b *Binder) bindBetween(ctx exprCtx, x *core.BetweenExpr) *Expr {
	var e, low, high *Expr
	if isContextual(x.Expr) {
		low = b.bindExpr(ctx, x.Low, types.Type{})
		high = b.bindExpr(ctx, x.High, low.Type)
		e = b.bindExpr(ctx, x.Expr, low.Type)
	} else {
		e = b.bindExpr(ctx, x.Expr, types.Type{})
		low = b.bindExpr(ctx, x.Low, e.Type)
		high = b.bindExpr(ctx, x.High, e.Type)
	}
	if _, err := b.sys.CheckOperator(types.OpGe, e.Type, low.Type); err != nil {
		b.fail(err, x.Low)
	} else if _, err := b.sys.CheckOperator(types.OpLe, e.Type, high.Type); err != nil {
		b.fail(err, x.High)
	}
	nullable := e.Type.Nullable || low.Type.Nullable || high.Type.Nullable
	return &Expr{Node: x, Type: types.Type{Kind: types.Boolean, Nullable: nullable}, Level: maxLevel(e, low, high), Args: []*Expr{e, low, high}}
}

func (b *Binder) bindLike(ctx exprCtx, x *core.LikeExpr) *Expr {
	text := types.Null(types.Text)
	args := []*Expr{b.bindExpr(ctx, x.Expr, text), b.bindExpr(ctx, x.Pattern, text)}
	if x.Escape != nil {
		args = append(args, b.bindExpr(ctx, x.Escape, text))
	}
	t, err := b.sys.CheckOperator(types.OpLike, typesOf(args)...)
	if err != nil {
		b.fail(err, x)
	}
	return &Expr{Node: x, Type: t, Level: maxLevel(args...), Args: args}
}

// ---------- Row values ----------

func isRow(e core.Expr) bool {
	_, ok := core.Unparen(e).(*core.TupleExpr)
	return ok
}

// bindRow binds a row value: the elements of a tuple, or a single
// expression. hints type contextual elements by position.
func (b *Binder) bindRow(ctx exprCtx, e core.Expr, hints []types.Type) []*Expr {
	hintAt := func(i int) types.Type {
		if i < len(hints) {
			return hints[i]
		}
		return types.Type{}
	}
	switch x := core.Unparen(e).(type) {
	case *core.TupleExpr:
		out := make([]*Expr, len(x.Elems))
		for i, el := range x.Elems {
			out[i] = b.bindExpr(ctx, el, hintAt(i))
		}
		return out
	case *core.SubqueryExpr:
		return b.subqueryRow(ctx, x.Select)
	}
	return []*Expr{b.bindExpr(ctx, e, hintAt(0))}
}

// subqueryRow binds a subquery and returns its columns as row elements.
// Every element is nullable since the subquery may return no rows.
func (b *Binder) subqueryRow(ctx exprCtx, sel *core.SelectStmt) []*Expr {
	outs := b.bindSubquery(ctx, sel)
	row := make([]*Expr, len(outs))
	for i, o := range outs {
		row[i] = &Expr{Type: o.Type.WithNullable(true), Level: LevelLiteral}
	}
	return row
}

func (b *Binder) bindRowComparison(ctx exprCtx, x *core.BinaryExpr, op types.Op) *Expr {
	left := b.bindRow(ctx, x.Left, nil)
	right := b.bindRow(ctx, x.Right, typesOf(left))
	_, leftSub := core.Unparen(x.Left).(*core.SubqueryExpr)
	_, rightSub := core.Unparen(x.Right).(*core.SubqueryExpr)
	b.compareRows(x, op, left, right, leftSub || rightSub)
	args := append(left, right...)
	return &Expr{Node: x, Type: rowResult(left, right), Level: maxLevel(args...), Args: args}
}

// compareRows checks two rows element by element.
func (b *Binder) compareRows(n core.Node, op types.Op, left, right []*Expr, subquery bool) {
	if len(left) != len(right) {
		if subquery {
			b.report(diag.TypeError, diag.CodeSubqueryColumns, n, ErrSubqueryArity, len(right), len(left))
		} else {
			b.report(diag.TypeError, diag.CodeTypeMismatch, n, ErrRowArity, len(left), len(right))
		}
		return
	}
	for i := range left {
		if _, err := b.sys.CheckOperator(op, left[i].Type, right[i].Type); err != nil {
			b.fail(err, n)
			return
		}
	}
}

func rowResult(left, right []*Expr) types.Type {
	nullable := false
	for _, e := range append(left, right...) {
		nullable = nullable || e.Type.Nullable
	}
	return types.Type{Kind: types.Boolean, Nullable: nullable}
}

// ---------- Helpers ----------

func (b *Binder) bindSubquery(ctx exprCtx, sel *core.SelectStmt) []Output {
	outer := ctx.sc
	if !ctx.grouped || ctx.inAgg {
		outer = outer.RowView()
	}
	return b.bindQuery(sel, outer, ctx.lenient)
}

// requireBoolean reports a non-boolean condition.
func (b *Binder) requireBoolean(e *Expr, what string) {
	if e.Type.IsUnknown() || b.sys.Family(e.Type.Kind) == types.FamilyBoolean {
		return
	}
	b.report(diag.TypeError, diag.CodeNotBoolean, e.Node, ErrNotBooleanClause, what, e.Type.Kind)
}

func maxLevel(es ...*Expr) Level {
	level := LevelLiteral
	for _, e := range es {
		if e != nil && e.Level > level {
			level = e.Level
		}
	}
	return level
}

func typesOf(es []*Expr) []types.Type {
	out := make([]types.Type, len(es))
	for i, e := range es {
		out[i] = e.Type
	}
	return out
}
