package format

import (
	"strings"

	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/token"
)

func (p *Printer) formatStmt(s core.Stmt) {
	switch stmt := s.(type) {
	case *core.SelectStmt:
		p.formatSelectStmt(stmt)
	case *core.InsertStmt:
		p.formatInsert(stmt)
	case *core.UpdateStmt:
		p.formatUpdate(stmt)
	case *core.DeleteStmt:
		p.formatDelete(stmt)
	case *core.MergeStmt:
		p.formatMerge(stmt)
	case *core.CreateTableStmt:
		p.formatCreateTable(stmt)
	case *core.AlterTableStmt:
		p.formatAlterTable(stmt)
	case *core.DropTableStmt:
		p.kw(token.DROP, token.TABLE)
		if stmt.IfExists {
			p.write(" IF EXISTS")
		}
		p.space()
		p.formatList(len(stmt.Names), func(i int) { p.formatTableName(stmt.Names[i]) }, ", ")
	}
}

// ---------- Queries ----------

func (p *Printer) formatSelectStmt(stmt *core.SelectStmt) {
	if stmt == nil || stmt.Body == nil {
		return
	}
	p.formatSelectBody(stmt.Body)
}

func (p *Printer) formatSelectBody(body *core.SelectBody) {
	p.formatSelectCore(body.Left)
	if body.Op == core.SetOpNone || body.Right == nil {
		return
	}
	p.space()
	p.write(string(body.Op))
	if body.All {
		p.space()
		p.kw(token.ALL)
	}
	p.space()
	p.formatSelectBody(body.Right)
}

func (p *Printer) formatSelectCore(sc *core.SelectCore) {
	if sc == nil {
		return
	}
	p.kw(token.SELECT)
	if sc.Distinct {
		p.space()
		p.kw(token.DISTINCT)
	}
	p.space()
	p.formatSelectList(sc.Columns)

	if sc.From != nil {
		p.space()
		p.kw(token.FROM)
		p.space()
		p.formatFromClause(sc.From)
	}
	if sc.Where != nil {
		p.space()
		p.kw(token.WHERE)
		p.space()
		p.formatExpr(sc.Where)
	}
	if len(sc.GroupBy) > 0 {
		p.space()
		p.kw(token.GROUP, token.BY)
		p.space()
		p.formatList(len(sc.GroupBy), func(i int) { p.formatExpr(sc.GroupBy[i]) }, ", ")
	}
	if sc.Having != nil {
		p.space()
		p.kw(token.HAVING)
		p.space()
		p.formatExpr(sc.Having)
	}
	if len(sc.OrderBy) > 0 {
		p.space()
		p.kw(token.ORDER, token.BY)
		p.space()
		p.formatList(len(sc.OrderBy), func(i int) { p.formatOrderByItem(sc.OrderBy[i]) }, ", ")
	}
	if sc.Limit != nil {
		p.space()
		p.kw(token.LIMIT)
		p.space()
		p.formatExpr(sc.Limit)
	}
	if sc.Offset != nil {
		p.space()
		p.kw(token.OFFSET)
		p.space()
		p.formatExpr(sc.Offset)
	}
}

func (p *Printer) formatSelectList(items []core.SelectItem) {
	p.formatList(len(items), func(i int) { p.formatSelectItem(items[i]) }, ", ")
}

func (p *Printer) formatSelectItem(item core.SelectItem) {
	switch {
	case item.Star:
		p.write("*")
	case item.TableStar != "":
		p.ident(item.TableStar)
		p.write(".*")
	default:
		p.formatExpr(item.Expr)
		if item.Alias != "" {
			p.space()
			p.kw(token.AS)
			p.space()
			p.ident(item.Alias)
		}
	}
}

func (p *Printer) formatOrderByItem(item core.OrderByItem) {
	p.formatExpr(item.Expr)
	if item.Desc {
		p.space()
		p.kw(token.DESC)
	}
	if item.NullsFirst != nil {
		if *item.NullsFirst {
			p.write(" NULLS FIRST")
		} else {
			p.write(" NULLS LAST")
		}
	}
}

func (p *Printer) formatFromClause(from *core.FromClause) {
	p.formatTableRef(from.Source)
	for _, j := range from.Joins {
		p.formatJoin(j)
	}
}

func (p *Printer) formatTableRef(ref core.TableRef) {
	if t, ok := ref.(*core.TableName); ok {
		p.formatTableName(t)
	}
}

func (p *Printer) formatTableName(t *core.TableName) {
	if t.Schema != "" {
		p.ident(t.Schema)
		p.write(".")
	}
	p.ident(t.Name)
	if t.Alias != "" {
		p.space()
		p.kw(token.AS)
		p.space()
		p.ident(t.Alias)
	}
}

func (p *Printer) formatJoin(j *core.Join) {
	if j.Type == core.JoinComma {
		p.write(", ")
		p.formatTableRef(j.Right)
		return
	}
	p.space()
	if j.Natural {
		p.kw(token.NATURAL)
		p.space()
	}
	p.write(string(j.Type))
	p.space()
	p.kw(token.JOIN)
	p.space()
	p.formatTableRef(j.Right)
	switch {
	case j.Condition != nil:
		p.space()
		p.kw(token.ON)
		p.space()
		p.formatExpr(j.Condition)
	case len(j.Using) > 0:
		p.space()
		p.kw(token.USING)
		p.write(" (")
		p.formatIdents(j.Using)
		p.write(")")
	}
}

func (p *Printer) formatIdents(ids []*core.Ident) {
	p.formatList(len(ids), func(i int) { p.ident(ids[i].Name) }, ", ")
}

// ---------- DML ----------

func (p *Printer) formatInsert(stmt *core.InsertStmt) {
	p.kw(token.INSERT, token.INTO)
	p.space()
	p.formatTableName(stmt.Table)
	if len(stmt.Columns) > 0 {
		p.write(" (")
		p.formatIdents(stmt.Columns)
		p.write(")")
	}
	switch {
	case stmt.DefaultValues:
		p.space()
		p.kw(token.DEFAULT, token.VALUES)
	case stmt.Select != nil:
		p.space()
		p.formatSelectStmt(stmt.Select)
	default:
		p.space()
		p.kw(token.VALUES)
		p.space()
		p.formatList(len(stmt.Values), func(i int) {
			row := stmt.Values[i]
			p.write("(")
			p.formatList(len(row), func(j int) { p.formatExpr(row[j]) }, ", ")
			p.write(")")
		}, ", ")
	}
	if oc := stmt.OnConflict; oc != nil {
		p.write(" ON CONFLICT")
		if len(oc.Target) > 0 {
			p.write(" (")
			p.formatIdents(oc.Target)
			p.write(")")
		}
		if oc.DoNothing {
			p.write(" DO NOTHING")
		} else {
			p.write(" DO UPDATE SET ")
			p.formatAssignments(oc.Set)
			if oc.Where != nil {
				p.space()
				p.kw(token.WHERE)
				p.space()
				p.formatExpr(oc.Where)
			}
		}
	}
	if len(stmt.Returning) > 0 {
		p.space()
		p.kw(token.RETURNING)
		p.space()
		p.formatSelectList(stmt.Returning)
	}
}

func (p *Printer) formatAssignments(set []*core.Assignment) {
	p.formatList(len(set), func(i int) {
		p.ident(set[i].Column.Name)
		p.write(" = ")
		p.formatExpr(set[i].Value)
	}, ", ")
}

func (p *Printer) formatUpdate(stmt *core.UpdateStmt) {
	p.kw(token.UPDATE)
	p.space()
	p.formatTableName(stmt.Table)
	p.space()
	p.kw(token.SET)
	p.space()
	p.formatAssignments(stmt.Set)
	if stmt.From != nil {
		p.space()
		p.kw(token.FROM)
		p.space()
		p.formatFromClause(stmt.From)
	}
	p.formatWhere(stmt.Where)
}

func (p *Printer) formatDelete(stmt *core.DeleteStmt) {
	p.kw(token.DELETE, token.FROM)
	p.space()
	p.formatTableName(stmt.Table)
	if stmt.Using != nil {
		p.space()
		p.kw(token.USING)
		p.space()
		p.formatFromClause(stmt.Using)
	}
	p.formatWhere(stmt.Where)
}

func (p *Printer) formatWhere(where core.Expr) {
	if where == nil {
		return
	}
	p.space()
	p.kw(token.WHERE)
	p.space()
	p.formatExpr(where)
}

func (p *Printer) formatMerge(stmt *core.MergeStmt) {
	p.kw(token.MERGE, token.INTO)
	p.space()
	p.formatTableName(stmt.Target)
	p.space()
	p.kw(token.USING)
	p.space()
	p.formatTableName(stmt.Source)
	p.space()
	p.kw(token.ON)
	p.space()
	p.formatExpr(stmt.On)
	for _, c := range stmt.Clauses {
		p.space()
		p.kw(token.WHEN)
		if !c.Matched {
			p.space()
			p.kw(token.NOT)
		}
		p.write(" MATCHED")
		if c.Condition != nil {
			p.space()
			p.kw(token.AND)
			p.space()
			p.formatExpr(c.Condition)
		}
		p.space()
		p.kw(token.THEN)
		p.space()
		switch c.Action {
		case core.MergeUpdate:
			p.kw(token.UPDATE, token.SET)
			p.space()
			p.formatAssignments(c.Set)
		case core.MergeInsert:
			p.kw(token.INSERT)
			if len(c.Columns) > 0 {
				p.write(" (")
				p.formatIdents(c.Columns)
				p.write(")")
			}
			p.space()
			p.kw(token.VALUES)
			p.write(" (")
			p.formatList(len(c.Values), func(i int) { p.formatExpr(c.Values[i]) }, ", ")
			p.write(")")
		default:
			p.write(c.Action.String())
		}
	}
}

// ---------- DDL ----------

func (p *Printer) formatCreateTable(stmt *core.CreateTableStmt) {
	p.kw(token.CREATE, token.TABLE)
	if stmt.IfNotExists {
		p.write(" IF NOT EXISTS")
	}
	p.space()
	p.formatTableName(stmt.Name)
	p.write(" (")
	n := len(stmt.Columns)
	p.formatList(n+len(stmt.Constraints), func(i int) {
		if i < n {
			p.formatColumnDef(stmt.Columns[i])
		} else {
			p.formatTableConstraint(stmt.Constraints[i-n])
		}
	}, ", ")
	p.write(")")
}

func (p *Printer) formatColumnDef(col *core.ColumnDef) {
	p.ident(col.Name)
	if col.TypeName != "" {
		p.space()
		p.write(strings.ToUpper(col.TypeName))
	}
	for _, c := range col.Constraints {
		p.space()
		p.constraintName(c.Name)
		switch c.Kind {
		case core.ConstraintDefault:
			p.kw(token.DEFAULT)
			if c.Default != nil {
				p.space()
				p.formatExpr(c.Default)
			}
		case core.ConstraintForeignKey:
			p.formatReference(c.Ref)
		case core.ConstraintCheck:
			p.formatCheck(c.Check)
		default:
			p.write(c.Kind.String())
		}
	}
}

func (p *Printer) formatTableConstraint(c *core.TableConstraint) {
	p.constraintName(c.Name)
	if c.Kind == core.ConstraintCheck {
		p.formatCheck(c.Check)
		return
	}
	p.write(c.Kind.String())
	p.write(" (")
	p.formatIdents(c.Columns)
	p.write(")")
	if c.Kind == core.ConstraintForeignKey {
		p.space()
		p.formatReference(c.Ref)
	}
}

func (p *Printer) constraintName(name string) {
	if name == "" {
		return
	}
	p.kw(token.CONSTRAINT)
	p.space()
	p.ident(name)
	p.space()
}

func (p *Printer) formatCheck(e core.Expr) {
	p.kw(token.CHECK)
	p.write(" (")
	p.formatExpr(e)
	p.write(")")
}

func (p *Printer) formatReference(ref *core.ForeignKeyRef) {
	if ref == nil {
		return
	}
	p.kw(token.REFERENCES)
	p.space()
	p.formatTableName(ref.Table)
	if len(ref.Columns) > 0 {
		p.write(" (")
		p.formatIdents(ref.Columns)
		p.write(")")
	}
	if ref.OnDelete != core.RefNoAction {
		p.write(" ON DELETE ")
		p.write(ref.OnDelete.String())
	}
	if ref.OnUpdate != core.RefNoAction {
		p.write(" ON UPDATE ")
		p.write(ref.OnUpdate.String())
	}
}

func (p *Printer) formatAlterTable(stmt *core.AlterTableStmt) {
	p.kw(token.ALTER, token.TABLE)
	p.space()
	p.formatTableName(stmt.Name)
	p.space()
	p.formatList(len(stmt.Actions), func(i int) { p.formatAlterAction(stmt.Actions[i]) }, ", ")
}

func (p *Printer) formatAlterAction(a core.AlterAction) {
	switch act := a.(type) {
	case *core.AddColumnAction:
		p.write("ADD COLUMN ")
		if act.IfNotExists {
			p.write("IF NOT EXISTS ")
		}
		p.formatColumnDef(act.Column)
	case *core.DropColumnAction:
		p.write("DROP COLUMN ")
		if act.IfExists {
			p.write("IF EXISTS ")
		}
		p.ident(act.Column.Name)
	case *core.RenameColumnAction:
		p.write("RENAME COLUMN ")
		p.ident(act.Column.Name)
		p.write(" TO ")
		p.ident(act.To.Name)
	case *core.RenameTableAction:
		p.write("RENAME TO ")
		p.ident(act.To.Name)
	case *core.AlterColumnTypeAction:
		p.write("ALTER COLUMN ")
		p.ident(act.Column.Name)
		p.write(" TYPE ")
		p.write(strings.ToUpper(act.TypeName))
	case *core.AlterColumnNullAction:
		p.write("ALTER COLUMN ")
		p.ident(act.Column.Name)
		if act.NotNull {
			p.write(" SET NOT NULL")
		} else {
			p.write(" DROP NOT NULL")
		}
	case *core.AlterColumnDefaultAction:
		p.write("ALTER COLUMN ")
		p.ident(act.Column.Name)
		if act.Default == nil {
			p.write(" DROP DEFAULT")
		} else {
			p.write(" SET DEFAULT ")
			p.formatExpr(act.Default)
		}
	case *core.AddConstraintAction:
		p.write("ADD ")
		p.formatTableConstraint(act.Constraint)
	}
}
