package binder

import (
	"slices"

	"github.com/truffle-sql/truffle/pkg/catalog"
	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/diag"
	"github.com/truffle-sql/truffle/pkg/scope"
	"github.com/truffle-sql/truffle/pkg/types"
)

// Error messages
const (
	ErrColumnNotInTable  = "column %q does not exist in table %q"
	ErrDuplicateTarget   = "column %q specified more than once"
	ErrTooManyValues     = "INSERT has more expressions than target columns"
	ErrTooFewValues      = "INSERT has more target columns than expressions"
	ErrNullIntoNotNull   = "null value in column %q violates not-null constraint"
	ErrDefaultIntoNotNul = "column %q is NOT NULL and has no default"
	ErrMissingRequired   = "column %q of table %q is NOT NULL and has no default, but no value is given"
	ErrAssignType        = "column %q is of type %s but expression is of type %s"
	ErrNoConflictTarget  = "ON CONFLICT DO UPDATE requires a conflict target"
	ErrNoUniqueMatch     = "there is no unique or primary key constraint matching the ON CONFLICT specification"
)

// excludedAlias names the proposed row in ON CONFLICT DO UPDATE.
const excludedAlias = "excluded"

var emptyCtx = exprCtx{clause: clauseValues, lenient: true}

// ---------- INSERT ----------

func (b *Binder) bindInsert(s *core.InsertStmt) []Output {
	t, ok := b.lookupTable(s.Table)
	if !ok {
		// Bind the values anyway so their placeholders are still recorded.
		ctx := emptyCtx
		ctx.sc = b.scopes.Empty()
		for _, row := range s.Values {
			for _, e := range row {
				b.bindExpr(ctx, e, types.Type{})
			}
		}
		if s.Select != nil {
			b.bindQuery(s.Select, nil, false)
		}
		return nil
	}

	ctx := exprCtx{sc: b.scopes.Empty(), clause: clauseValues}
	switch {
	case s.DefaultValues:
		b.checkRequired(t, s.Table, nil)
	case s.Select != nil:
		b.bindInsertSelect(t, s)
	default:
		b.bindRows(ctx, t, s.Table, s.Columns, s.Values)
	}

	if s.OnConflict != nil {
		b.bindOnConflict(t, s.Table.Alias, s.OnConflict)
	}
	if len(s.Returning) > 0 {
		return b.bindReturning(t, s.Table.Alias, s.Returning)
	}
	return nil
}

// insertTargets resolves an INSERT column list. An empty list means every
// column in order. Unknown columns yield nil entries.
func (b *Binder) insertTargets(t *catalog.Table, cols []*core.Ident) []*catalog.Column {
	if len(cols) == 0 {
		return slices.Clone(t.Columns)
	}
	out := make([]*catalog.Column, len(cols))
	seen := make(map[string]bool, len(cols))
	for i, id := range cols {
		col, ok := t.Column(id.Name)
		if !ok {
			b.report(diag.CatalogError, diag.CodeUnknownColumn, id, ErrColumnNotInTable, id.Name, t.Name)
			continue
		}
		key := b.d.NormalizeName(col.Name)
		if seen[key] {
			b.report(diag.ConstraintError, diag.CodeDuplicateTarget, id, ErrDuplicateTarget, id.Name)
			continue
		}
		seen[key] = true
		out[i] = col
	}
	return out
}

// bindRows checks VALUES rows against the target columns. Without a column
// list a short row fills the leading columns and leaves the rest to their
// defaults.
func (b *Binder) bindRows(ctx exprCtx, t *catalog.Table, at core.Node, cols []*core.Ident, rows [][]core.Expr) {
	targets := b.insertTargets(t, cols)
	implicit := len(cols) == 0
	covered := len(targets)
	for _, row := range rows {
		n := len(row)
		switch {
		case n > len(targets):
			b.report(diag.ConstraintError, diag.CodeColumnCount, row[len(targets)], ErrTooManyValues)
		case n < len(targets) && !implicit:
			var last core.Node = at
			if n > 0 {
				last = row[n-1]
			}
			b.report(diag.ConstraintError, diag.CodeColumnCount, last, ErrTooFewValues)
		}
		if implicit && n < covered {
			covered = n
		}
		for i := 0; i < min(n, len(targets)); i++ {
			b.bindValue(ctx, targets[i], row[i])
		}
	}
	b.checkRequired(t, at, targets[:covered])
}

// bindInsertSelect checks the projection of INSERT ... SELECT. Nullable
// source columns are accepted; only a literal NULL into a NOT NULL column
// is reported.
func (b *Binder) bindInsertSelect(t *catalog.Table, s *core.InsertStmt) {
	targets := b.insertTargets(t, s.Columns)
	outs := b.bindQuery(s.Select, nil, false)
	if len(outs) > len(targets) {
		b.report(diag.ConstraintError, diag.CodeColumnCount, s.Select, ErrTooManyValues)
	} else if len(outs) < len(targets) && len(s.Columns) > 0 {
		b.report(diag.ConstraintError, diag.CodeColumnCount, s.Select, ErrTooFewValues)
	}

	var items []core.SelectItem
	if body := s.Select.Body; body != nil && body.Op == core.SetOpNone && body.Left != nil {
		items = body.Left.Columns
	}
	n := min(len(outs), len(targets))
	for i := 0; i < n; i++ {
		col := targets[i]
		if col == nil {
			continue
		}
		if i < len(items) && items[i].Expr != nil && isNullLiteral(items[i].Expr) && !col.Nullable {
			b.report(diag.ConstraintError, diag.CodeNullIntoNotNull, &items[i], ErrNullIntoNotNull, col.Name)
			continue
		}
		if !b.sys.Assignable(col.Kind, outs[i].Type.Kind) {
			b.report(diag.TypeError, diag.CodeTypeMismatch, s.Select, ErrAssignType, col.Name, col.Kind, outs[i].Type.Kind)
		}
	}

	covered := targets
	if len(s.Columns) == 0 {
		covered = targets[:n]
	}
	b.checkRequired(t, s.Table, covered)
}

// bindValue binds a value stored into col.
func (b *Binder) bindValue(ctx exprCtx, col *catalog.Column, e core.Expr) *Expr {
	if col == nil {
		return b.bindExpr(ctx, e, types.Type{})
	}
	if _, ok := core.Unparen(e).(*core.DefaultExpr); ok {
		if col.Required() {
			b.report(diag.ConstraintError, diag.CodeNullIntoNotNull, e, ErrDefaultIntoNotNul, col.Name)
		}
		return &Expr{Node: e, Type: col.Type(), Level: LevelLiteral}
	}
	if isNullLiteral(e) && !col.Nullable {
		b.report(diag.ConstraintError, diag.CodeNullIntoNotNull, e, ErrNullIntoNotNull, col.Name)
		return &Expr{Node: e, Type: types.Null(col.Kind), Level: LevelLiteral}
	}
	x := b.bindExpr(ctx, e, col.Type())
	if !b.sys.Assignable(col.Kind, x.Type.Kind) {
		b.report(diag.TypeError, diag.CodeTypeMismatch, e, ErrAssignType, col.Name, col.Kind, x.Type.Kind)
	}
	return x
}

// checkRequired reports every NOT NULL column without a default that is
// missing from provided.
func (b *Binder) checkRequired(t *catalog.Table, at core.Node, provided []*catalog.Column) {
	for _, c := range t.Columns {
		if c.Required() && !slices.Contains(provided, c) {
			b.report(diag.ConstraintError, diag.CodeMissingRequiredColumn, at, ErrMissingRequired, c.Name, t.Name)
		}
	}
}

func (b *Binder) bindOnConflict(t *catalog.Table, alias string, oc *core.OnConflict) {
	if len(oc.Target) == 0 {
		if !oc.DoNothing {
			b.report(diag.ConstraintError, diag.CodeNoUniqueConstraint, oc, ErrNoConflictTarget)
		}
	} else {
		names := make([]string, 0, len(oc.Target))
		for _, id := range oc.Target {
			if _, ok := t.Column(id.Name); !ok {
				b.report(diag.CatalogError, diag.CodeUnknownColumn, id, ErrColumnNotInTable, id.Name, t.Name)
				continue
			}
			names = append(names, id.Name)
		}
		if len(names) == len(oc.Target) && !t.IsUnique(names) {
			b.report(diag.ConstraintError, diag.CodeNoUniqueConstraint, oc, ErrNoUniqueMatch)
		}
	}
	if oc.DoNothing {
		return
	}

	target := b.scopes.NewTable(alias, t)
	sc, err := b.scopes.Join(target, b.scopes.NewTable(excludedAlias, t), core.JoinComma, false, nil)
	if err != nil {
		b.fail(err, oc)
		sc = target
	}
	ctx := exprCtx{sc: sc, clause: clauseSet}
	b.bindAssignments(ctx, t, oc.Set)
	if oc.Where != nil {
		w := ctx
		w.clause = clauseWhere
		b.requireBoolean(b.bindExpr(w, oc.Where, boolHint), "WHERE")
	}
}

// bindReturning binds RETURNING against the inserted row.
func (b *Binder) bindReturning(t *catalog.Table, alias string, items []core.SelectItem) []Output {
	ctx := exprCtx{sc: b.scopes.NewTable(alias, t), clause: clauseReturning}
	bound := b.bindSelectItems(ctx, items)
	outs := make([]Output, len(bound))
	for i, it := range bound {
		outs[i] = it.out
	}
	return outs
}

// bindAssignments checks SET col = value pairs against t.
func (b *Binder) bindAssignments(ctx exprCtx, t *catalog.Table, set []*core.Assignment) {
	seen := make(map[string]bool, len(set))
	for _, a := range set {
		col, ok := t.Column(a.Column.Name)
		if !ok {
			b.report(diag.CatalogError, diag.CodeUnknownColumn, a.Column, ErrColumnNotInTable, a.Column.Name, t.Name)
			b.bindExpr(ctx, a.Value, types.Type{})
			continue
		}
		key := b.d.NormalizeName(col.Name)
		if seen[key] {
			b.report(diag.ConstraintError, diag.CodeDuplicateTarget, a.Column, ErrDuplicateTarget, a.Column.Name)
		}
		seen[key] = true
		b.bindValue(ctx, col, a.Value)
	}
}

// ---------- UPDATE, DELETE ----------

// targetScope resolves the table a DML statement writes to. A failed
// lookup yields an empty scope and lenient binding.
func (b *Binder) targetScope(name *core.TableName) (*scope.Scope, *catalog.Table, bool) {
	sc, t, err := b.ResolveTableRef(name)
	if err != nil {
		b.fail(err, name)
	}
	if sc == nil {
		return b.scopes.Empty(), nil, true
	}
	return sc, t, false
}

// withFrom cross-joins an extra FROM list into the target scope.
func (b *Binder) withFrom(sc *scope.Scope, from *core.FromClause, lenient bool) (*scope.Scope, bool) {
	if from == nil {
		return sc, lenient
	}
	extra, complete := b.bindFrom(from, nil, lenient)
	joined, err := b.scopes.Join(sc, extra, core.JoinComma, false, nil)
	if err != nil {
		b.fail(err, from)
		return sc, lenient || !complete
	}
	return joined, lenient || !complete
}

func (b *Binder) bindUpdate(s *core.UpdateStmt) {
	sc, t, lenient := b.targetScope(s.Table)
	sc, lenient = b.withFrom(sc, s.From, lenient)

	ctx := exprCtx{sc: sc, clause: clauseSet, lenient: lenient}
	if t != nil {
		b.bindAssignments(ctx, t, s.Set)
	} else {
		for _, a := range s.Set {
			b.bindExpr(ctx, a.Value, types.Type{})
		}
	}
	if s.Where != nil {
		w := ctx
		w.clause = clauseWhere
		b.requireBoolean(b.bindExpr(w, s.Where, boolHint), "WHERE")
	}
}

func (b *Binder) bindDelete(s *core.DeleteStmt) {
	sc, _, lenient := b.targetScope(s.Table)
	sc, lenient = b.withFrom(sc, s.Using, lenient)
	if s.Where != nil {
		ctx := exprCtx{sc: sc, clause: clauseWhere, lenient: lenient}
		b.requireBoolean(b.bindExpr(ctx, s.Where, boolHint), "WHERE")
	}
}

// ---------- MERGE ----------

func (b *Binder) bindMerge(s *core.MergeStmt) {
	target, t, targetFailed := b.targetScope(s.Target)
	source, _, sourceFailed := b.targetScope(s.Source)
	lenient := targetFailed || sourceFailed

	both, err := b.scopes.Join(target, source, core.JoinInner, false, nil)
	if err != nil {
		b.fail(err, s.Source)
		both = target
	}
	on := exprCtx{sc: both, clause: clauseMerge, lenient: lenient}
	b.requireBoolean(b.bindExpr(on, s.On, boolHint), "MERGE/ON")

	for _, mc := range s.Clauses {
		// A NOT MATCHED row exists only in the source.
		ctx := on
		if !mc.Matched {
			ctx.sc = source
		}
		if mc.Condition != nil {
			b.requireBoolean(b.bindExpr(ctx, mc.Condition, boolHint), "MERGE/WHEN")
		}
		if t == nil {
			continue
		}
		switch mc.Action {
		case core.MergeUpdate:
			set := ctx
			set.clause = clauseSet
			b.bindAssignments(set, t, mc.Set)
		case core.MergeInsert:
			values := ctx
			values.clause = clauseValues
			b.bindRows(values, t, mc, mc.Columns, [][]core.Expr{mc.Values})
		}
	}
}
