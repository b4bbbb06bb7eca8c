package format

import (
	"github.com/truffle-sql/truffle/pkg/catalog"
	"github.com/truffle-sql/truffle/pkg/core"
)

// Statement renders a statement on one line.
func Statement(stmt core.Stmt) string {
	p := newPrinter(nil)
	p.formatStmt(stmt)
	return p.String()
}

// Expr renders an expression on one line.
func Expr(e core.Expr) string {
	p := newPrinter(nil)
	p.formatExpr(e)
	return p.String()
}

// Key renders an expression with every identifier folded by f, so that
// expressions differing only in identifier case compare equal.
func Key(e core.Expr, f catalog.Folder) string {
	p := newPrinter(f.NormalizeName)
	p.formatExpr(core.Unparen(e))
	return p.String()
}
