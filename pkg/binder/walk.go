package binder

import "github.com/truffle-sql/truffle/pkg/core"

// inspect calls f for e and its sub-expressions in depth-first order,
// stopping at subqueries. Returning false from f skips the children.
func inspect(e core.Expr, f func(core.Expr) bool) {
	if e == nil || !f(e) {
		return
	}
	each := func(es ...core.Expr) {
		for _, c := range es {
			inspect(c, f)
		}
	}
	switch x := e.(type) {
	case *core.BinaryExpr:
		each(x.Left, x.Right)
	case *core.UnaryExpr:
		each(x.Expr)
	case *core.FuncCall:
		each(x.Args...)
	case *core.CaseExpr:
		each(x.Operand)
		for _, w := range x.Whens {
			each(w.Condition, w.Result)
		}
		each(x.Else)
	case *core.CastExpr:
		each(x.Expr)
	case *core.InExpr:
		each(x.Expr)
		each(x.Values...)
	case *core.BetweenExpr:
		each(x.Expr, x.Low, x.High)
	case *core.IsNullExpr:
		each(x.Expr)
	case *core.IsBoolExpr:
		each(x.Expr)
	case *core.IsDistinctExpr:
		each(x.Left, x.Right)
	case *core.LikeExpr:
		each(x.Expr, x.Pattern, x.Escape)
	case *core.ParenExpr:
		each(x.Expr)
	case *core.TupleExpr:
		each(x.Elems...)
	}
}

// find returns the first node of e for which match holds, or nil.
func find(e core.Expr, match func(core.Expr) bool) core.Expr {
	var found core.Expr
	inspect(e, func(n core.Expr) bool {
		if found != nil {
			return false
		}
		if match(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// isAggregateCall reports whether e is a call the dialect classifies as an
// aggregate.
func (b *Binder) isAggregateCall(e core.Expr) bool {
	fn, ok := e.(*core.FuncCall)
	return ok && b.d.IsAggregate(fn.Name)
}

// hasAggregate reports whether e contains an aggregate outside subqueries.
func (b *Binder) hasAggregate(e core.Expr) bool {
	return find(e, b.isAggregateCall) != nil
}

// isNullLiteral reports whether e is NULL, possibly parenthesized.
func isNullLiteral(e core.Expr) bool {
	lit, ok := core.Unparen(e).(*core.Literal)
	return ok && lit.Type == core.LiteralNull
}

// isContextual reports whether e takes its type from its surroundings:
// untyped literals and placeholders.
func isContextual(e core.Expr) bool {
	switch x := core.Unparen(e).(type) {
	case *core.Param:
		return true
	case *core.Literal:
		return x.Type == core.LiteralNumber || x.Type == core.LiteralString || x.Type == core.LiteralNull
	case *core.UnaryExpr:
		return isContextual(x.Expr)
	}
	return false
}
