package format

import (
	"strings"

	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/token"
)

func (p *Printer) formatExpr(e core.Expr) {
	if e == nil {
		return
	}

	switch expr := e.(type) {
	case *core.Literal:
		p.formatLiteral(expr)
	case *core.ColumnRef:
		p.formatColumnRef(expr)
	case *core.Param:
		p.write(expr.Text)
	case *core.BinaryExpr:
		p.formatExpr(expr.Left)
		p.space()
		p.kw(expr.Op)
		p.space()
		p.formatExpr(expr.Right)
	case *core.UnaryExpr:
		p.kw(expr.Op)
		if expr.Op == token.NOT {
			p.space()
		}
		p.formatExpr(expr.Expr)
	case *core.FuncCall:
		p.formatFuncCall(expr)
	case *core.CaseExpr:
		p.formatCaseExpr(expr)
	case *core.CastExpr:
		p.kw(token.CAST)
		p.write("(")
		p.formatExpr(expr.Expr)
		p.space()
		p.kw(token.AS)
		p.space()
		p.write(strings.ToUpper(expr.TypeName))
		p.write(")")
	case *core.InExpr:
		p.formatInExpr(expr)
	case *core.BetweenExpr:
		p.formatExpr(expr.Expr)
		p.not(expr.Not)
		p.space()
		p.kw(token.BETWEEN)
		p.space()
		p.formatExpr(expr.Low)
		p.space()
		p.kw(token.AND)
		p.space()
		p.formatExpr(expr.High)
	case *core.IsNullExpr:
		p.formatExpr(expr.Expr)
		p.space()
		p.kw(token.IS)
		p.not(expr.Not)
		p.space()
		p.kw(token.NULL)
	case *core.IsBoolExpr:
		p.formatExpr(expr.Expr)
		p.space()
		p.kw(token.IS)
		p.not(expr.Not)
		p.space()
		p.write(expr.Value.String())
	case *core.IsDistinctExpr:
		p.formatExpr(expr.Left)
		p.space()
		p.kw(token.IS)
		p.not(expr.Not)
		p.space()
		p.kw(token.DISTINCT, token.FROM)
		p.space()
		p.formatExpr(expr.Right)
	case *core.LikeExpr:
		p.formatExpr(expr.Expr)
		p.not(expr.Not)
		p.space()
		p.kw(token.LIKE)
		p.space()
		p.formatExpr(expr.Pattern)
		if expr.Escape != nil {
			p.write(" ESCAPE ")
			p.formatExpr(expr.Escape)
		}
	case *core.ParenExpr:
		p.write("(")
		p.formatExpr(expr.Expr)
		p.write(")")
	case *core.TupleExpr:
		p.write("(")
		p.formatList(len(expr.Elems), func(i int) { p.formatExpr(expr.Elems[i]) }, ", ")
		p.write(")")
	case *core.SubqueryExpr:
		p.write("(")
		p.formatSelectStmt(expr.Select)
		p.write(")")
	case *core.ExistsExpr:
		if expr.Not {
			p.kw(token.NOT)
			p.space()
		}
		p.kw(token.EXISTS)
		p.write(" (")
		p.formatSelectStmt(expr.Select)
		p.write(")")
	case *core.DefaultExpr:
		p.kw(token.DEFAULT)
	}
}

// not writes " NOT" when set.
func (p *Printer) not(set bool) {
	if set {
		p.space()
		p.kw(token.NOT)
	}
}

func (p *Printer) formatLiteral(lit *core.Literal) {
	switch lit.Type {
	case core.LiteralString:
		p.write("'")
		p.write(strings.ReplaceAll(lit.Value, "'", "''"))
		p.write("'")
	case core.LiteralBool:
		if strings.EqualFold(lit.Value, "true") {
			p.kw(token.TRUE)
		} else {
			p.kw(token.FALSE)
		}
	case core.LiteralNull:
		p.kw(token.NULL)
	case core.LiteralBlob:
		p.write("X'")
		p.write(lit.Value)
		p.write("'")
	default:
		p.write(lit.Value)
	}
}

func (p *Printer) formatColumnRef(col *core.ColumnRef) {
	if col.Table != "" {
		p.ident(col.Table)
		p.write(".")
	}
	p.ident(col.Column)
}

func (p *Printer) formatFuncCall(fn *core.FuncCall) {
	p.write(strings.ToUpper(fn.Name))
	if fn.NoParens {
		return
	}
	p.write("(")
	if fn.Distinct {
		p.kw(token.DISTINCT)
		p.space()
	}
	if fn.Star {
		p.write("*")
	} else {
		p.formatList(len(fn.Args), func(i int) { p.formatExpr(fn.Args[i]) }, ", ")
	}
	p.write(")")
}

func (p *Printer) formatCaseExpr(c *core.CaseExpr) {
	p.kw(token.CASE)
	if c.Operand != nil {
		p.space()
		p.formatExpr(c.Operand)
	}
	for _, w := range c.Whens {
		p.space()
		p.kw(token.WHEN)
		p.space()
		p.formatExpr(w.Condition)
		p.space()
		p.kw(token.THEN)
		p.space()
		p.formatExpr(w.Result)
	}
	if c.Else != nil {
		p.space()
		p.kw(token.ELSE)
		p.space()
		p.formatExpr(c.Else)
	}
	p.space()
	p.kw(token.END)
}

func (p *Printer) formatInExpr(in *core.InExpr) {
	p.formatExpr(in.Expr)
	p.not(in.Not)
	p.space()
	p.kw(token.IN)
	p.write(" (")
	if in.Query != nil {
		p.formatSelectStmt(in.Query)
	} else {
		p.formatList(len(in.Values), func(i int) { p.formatExpr(in.Values[i]) }, ", ")
	}
	p.write(")")
}
