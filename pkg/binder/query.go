package binder

import (
	"slices"
	"strconv"
	"strings"

	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/diag"
	"github.com/truffle-sql/truffle/pkg/scope"
	"github.com/truffle-sql/truffle/pkg/types"
)

// Error messages
const (
	ErrSetOpColumns     = "each %s query must have the same number of columns"
	ErrSetOpTypes       = "%s types %s and %s cannot be matched"
	ErrStarWithoutFrom  = "SELECT * with no tables specified is not valid"
	ErrAmbiguousStar    = "column %q appears more than once in the result of *"
	ErrAmbiguousAlias   = "output name %q is used more than once"
	ErrOrderPosition    = "%s position %d is not in select list"
	ErrInvalidLimit     = "argument of %s must be an integer constant or placeholder"
	anonymousColumnName = "?column?"
)

// selectItem is one output column of a SELECT list.
type selectItem struct {
	out   Output
	node  core.Node
	expr  core.Expr
	star  bool
	alias bool
}

func (b *Binder) bindSelect(s *core.SelectStmt, outer *scope.Scope) []Output {
	return b.bindQuery(s, outer, false)
}

func (b *Binder) bindQuery(s *core.SelectStmt, outer *scope.Scope, lenient bool) []Output {
	if s == nil || s.Body == nil {
		return nil
	}
	return b.bindBody(s.Body, outer, lenient)
}

func (b *Binder) bindBody(body *core.SelectBody, outer *scope.Scope, lenient bool) []Output {
	left := b.bindCore(body.Left, outer, lenient)
	if body.Op == core.SetOpNone || body.Right == nil {
		return left
	}
	right := b.bindBody(body.Right, outer, lenient)
	return b.combineSetOp(body, left, right)
}

// combineSetOp checks the branches of UNION, INTERSECT and EXCEPT. Names
// come from the left branch; a column is nullable when either side is.
func (b *Binder) combineSetOp(body *core.SelectBody, left, right []Output) []Output {
	op := string(body.Op)
	if len(left) != len(right) {
		b.report(diag.TypeError, diag.CodeSetOpColumns, body.Right, ErrSetOpColumns, op)
		return left
	}
	out := make([]Output, len(left))
	for i, l := range left {
		r := right[i]
		k, ok := b.sys.CommonKind(l.Type.Kind, r.Type.Kind)
		if !ok {
			b.report(diag.TypeError, diag.CodeTypeMismatch, body.Right, ErrSetOpTypes, op, l.Type.Kind, r.Type.Kind)
			k = l.Type.Kind
		}
		out[i] = Output{
			Qualifier: l.Qualifier,
			Name:      l.Name,
			Type:      types.Type{Kind: k, Nullable: l.Type.Nullable || r.Type.Nullable},
		}
	}
	return out
}

func (b *Binder) bindCore(sel *core.SelectCore, outer *scope.Scope, lenient bool) []Output {
	if sel == nil {
		return nil
	}
	sc, complete := b.bindFrom(sel.From, outer, lenient)
	ctx := exprCtx{sc: sc, lenient: lenient || !complete}

	if sel.Where != nil {
		w := ctx
		w.clause = clauseWhere
		b.requireBoolean(b.bindExpr(w, sel.Where, boolHint), "WHERE")
	}

	grouped := len(sel.GroupBy) > 0 || sel.Having != nil ||
		slices.ContainsFunc(sel.Columns, func(it core.SelectItem) bool {
			return it.Expr != nil && b.hasAggregate(it.Expr)
		})
	var groupDiags diag.List
	if grouped {
		var keys []string
		keys, groupDiags = b.groupKeys(ctx, sel)
		sc.EnterGroup(keys)
	}

	c := ctx
	c.clause = clauseSelect
	c.grouped = grouped
	items := b.bindSelectItems(c, sel.Columns)
	for _, d := range groupDiags {
		b.diags.Add(d)
	}

	if sel.Having != nil {
		h := ctx
		h.clause = clauseHaving
		h.grouped = true
		b.requireBoolean(b.bindExpr(h, sel.Having, boolHint), "HAVING")
	}

	b.bindOrderBy(ctx, grouped, sel.OrderBy, items)
	b.bindLimit(sel.Limit, "LIMIT")
	b.bindLimit(sel.Offset, "OFFSET")

	outs := make([]Output, len(items))
	for i, it := range items {
		outs[i] = it.out
	}
	return outs
}

// ---------- FROM ----------

// bindFrom builds the scope of a FROM clause. complete is false when a
// table could not be resolved, in which case later name errors are noise.
func (b *Binder) bindFrom(from *core.FromClause, outer *scope.Scope, lenient bool) (sc *scope.Scope, complete bool) {
	if from == nil {
		return b.scopes.Empty().WithParent(outer), true
	}
	complete = true
	left := b.bindTableRef(from.Source, &complete)
	for _, j := range from.Joins {
		right := b.bindTableRef(j.Right, &complete)
		using := make([]string, len(j.Using))
		for i, id := range j.Using {
			using[i] = id.Name
		}
		joined, err := b.scopes.Join(left, right, j.Type, j.Natural, using)
		if err != nil {
			b.fail(err, j)
			if joined, err = b.scopes.Join(left, right, j.Type, false, nil); err != nil {
				joined = left
			}
		}
		left = joined
		if j.Condition != nil {
			on := exprCtx{sc: left.WithParent(outer), clause: clauseJoin, lenient: lenient || !complete}
			b.requireBoolean(b.bindExpr(on, j.Condition, boolHint), "JOIN/ON")
		}
	}
	return left.WithParent(outer), complete
}

func (b *Binder) bindTableRef(ref core.TableRef, complete *bool) *scope.Scope {
	name, ok := ref.(*core.TableName)
	if !ok {
		*complete = false
		return b.scopes.Empty()
	}
	sc, _, err := b.ResolveTableRef(name)
	if err != nil {
		b.fail(err, name)
		if sc == nil {
			*complete = false
			return b.scopes.Empty()
		}
	}
	return sc
}

// ---------- GROUP BY ----------

// groupKeys binds the GROUP BY list. Its diagnostics are returned rather
// than reported so they follow those of the SELECT list.
func (b *Binder) groupKeys(ctx exprCtx, sel *core.SelectCore) ([]string, diag.List) {
	saved := b.diags
	b.diags = diag.NewCollector()
	g := ctx
	g.clause = clauseGroupBy

	var keys []string
	for _, e := range sel.GroupBy {
		if n, ok := ordinal(e); ok {
			if n < 1 || n > len(sel.Columns) || sel.Columns[n-1].Expr == nil {
				b.report(diag.ScopeError, diag.CodeInvalidOrderPosition, e, ErrOrderPosition, "GROUP BY", n)
				continue
			}
			keys = append(keys, b.groupKey(g.sc, sel.Columns[n-1].Expr))
			continue
		}
		if target := b.outputAlias(g.sc, e, sel.Columns); target != nil {
			keys = append(keys, b.groupKey(g.sc, target))
			continue
		}
		b.bindExpr(g, e, types.Type{})
		keys = append(keys, b.groupKey(g.sc, e))
	}

	list := b.diags.List()
	b.diags = saved
	return keys, list
}

// groupKey identifies a grouping expression: the binding of a column, or
// the folded rendering of anything else.
func (b *Binder) groupKey(sc *scope.Scope, e core.Expr) string {
	e = core.Unparen(e)
	if ref, ok := e.(*core.ColumnRef); ok {
		if bnd, _, err := b.ResolveIdentifier(sc, ref); err == nil {
			return bnd.Key()
		}
	}
	return exprKey(e, b.d)
}

// outputAlias returns the expression of the select item aliased by a bare
// name that does not resolve to an input column.
func (b *Binder) outputAlias(sc *scope.Scope, e core.Expr, items []core.SelectItem) core.Expr {
	ref, ok := core.Unparen(e).(*core.ColumnRef)
	if !ok || ref.Table != "" {
		return nil
	}
	if _, _, err := sc.Resolve(ref.Column); err == nil {
		return nil
	}
	name := b.d.NormalizeName(ref.Column)
	for _, it := range items {
		if it.Alias != "" && it.Expr != nil && b.d.NormalizeName(it.Alias) == name {
			return it.Expr
		}
	}
	return nil
}

func ordinal(e core.Expr) (int, bool) {
	lit, ok := e.(*core.Literal)
	if !ok || lit.Type != core.LiteralNumber {
		return 0, false
	}
	n, err := strconv.Atoi(lit.Value)
	return n, err == nil
}

// ---------- SELECT list ----------

func (b *Binder) bindSelectItems(ctx exprCtx, items []core.SelectItem) []selectItem {
	var out []selectItem
	for i := range items {
		it := &items[i]
		switch {
		case it.Star:
			bindings, _ := ctx.sc.Expand("")
			if len(bindings) == 0 && !ctx.lenient {
				b.report(diag.ResolutionError, diag.CodeUnresolved, it, ErrStarWithoutFrom)
			}
			for _, bnd := range bindings {
				b.checkGroupedBinding(ctx, it, bnd)
				out = append(out, selectItem{out: Output{Name: bnd.Name, Type: bnd.Type}, node: it, star: true})
			}
		case it.TableStar != "":
			bindings, err := ctx.sc.Expand(it.TableStar)
			if err != nil {
				if !ctx.lenient {
					b.fail(err, it)
				}
				continue
			}
			for _, bnd := range bindings {
				b.checkGroupedBinding(ctx, it, bnd)
				out = append(out, selectItem{out: Output{Qualifier: bnd.Qualifier, Name: bnd.Name, Type: bnd.Type}, node: it})
			}
		default:
			e := b.bindExpr(ctx, it.Expr, types.Type{})
			o := Output{Name: it.Alias, Type: e.Type}
			if it.Alias == "" {
				o.Qualifier, o.Name = b.outputName(ctx.sc, it.Expr)
			}
			out = append(out, selectItem{out: o, node: it, expr: it.Expr, alias: it.Alias != ""})
		}
	}
	b.checkOutputNames(out)
	return out
}

func (b *Binder) checkGroupedBinding(ctx exprCtx, n core.Node, bnd *scope.Binding) {
	if !ctx.grouped || ctx.sc.IsGrouped(bnd.Key()) {
		return
	}
	name := bnd.Name
	if bnd.Qualifier != "" {
		name = bnd.Qualifier + "." + bnd.Name
	}
	b.report(diag.ScopeError, diag.CodeNotInGroupBy, n, ErrNotInGroupBy, name)
}

// outputName derives the name of an unaliased select item.
func (b *Binder) outputName(sc *scope.Scope, e core.Expr) (qualifier, name string) {
	switch x := core.Unparen(e).(type) {
	case *core.ColumnRef:
		if bnd, _, err := b.ResolveIdentifier(sc, x); err == nil {
			return bnd.Qualifier, bnd.Name
		}
		return x.Table, x.Column
	case *core.FuncCall:
		return "", strings.ToLower(x.Name)
	case *core.CastExpr:
		return b.outputName(sc, x.Expr)
	}
	return "", anonymousColumnName
}

// checkOutputNames reports a column that * produces twice and an alias
// that collides with any other output name.
func (b *Binder) checkOutputNames(items []selectItem) {
	count := make(map[string]int, len(items))
	for _, it := range items {
		count[b.d.NormalizeName(it.out.Name)]++
	}

	stars := make(map[string]int)
	reported := make(map[string]bool)
	for _, it := range items {
		name := b.d.NormalizeName(it.out.Name)
		switch {
		case it.star:
			stars[name]++
			if stars[name] == 2 {
				b.report(diag.ResolutionError, diag.CodeAmbiguousColumn, it.node, ErrAmbiguousStar, it.out.Name)
			}
		case it.alias && count[name] > 1 && !reported[name]:
			reported[name] = true
			b.report(diag.ResolutionError, diag.CodeAmbiguousAlias, it.node, ErrAmbiguousAlias, it.out.Name)
		}
	}
}

// ---------- ORDER BY, LIMIT ----------

func (b *Binder) bindOrderBy(ctx exprCtx, grouped bool, order []core.OrderByItem, items []selectItem) {
	o := ctx
	o.clause = clauseOrderBy
	o.grouped = grouped
	for _, it := range order {
		if n, ok := ordinal(it.Expr); ok {
			if n < 1 || n > len(items) {
				b.report(diag.ScopeError, diag.CodeInvalidOrderPosition, it.Expr, ErrOrderPosition, "ORDER BY", n)
			}
			continue
		}
		if ref, ok := core.Unparen(it.Expr).(*core.ColumnRef); ok && ref.Table == "" && b.isOutputName(ref.Column, items) {
			continue
		}
		b.bindExpr(o, it.Expr, types.Type{})
	}
}

func (b *Binder) isOutputName(name string, items []selectItem) bool {
	name = b.d.NormalizeName(name)
	for _, it := range items {
		if b.d.NormalizeName(it.out.Name) == name {
			return true
		}
	}
	return false
}

// bindLimit accepts an integer literal or a placeholder.
func (b *Binder) bindLimit(e core.Expr, what string) {
	if e == nil {
		return
	}
	switch x := core.Unparen(e).(type) {
	case *core.Param:
		b.recordParam(x, types.NotNull(types.BigInt))
		return
	case *core.Literal:
		if x.Type == core.LiteralNumber && b.sys.Family(types.NumericLiteralKind(x.Value)) == types.FamilyInteger {
			return
		}
	}
	b.report(diag.TypeError, diag.CodeInvalidLimit, e, ErrInvalidLimit, what)
}
