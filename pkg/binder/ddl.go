package binder

import (
	"slices"

	"github.com/truffle-sql/truffle/pkg/catalog"
	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/diag"
	"github.com/truffle-sql/truffle/pkg/format"
)

// Error messages
const (
	ErrTableExists       = "table %q already exists"
	ErrColumnRepeated    = "column %q specified more than once"
	ErrMultiplePK        = "multiple primary keys for table %q are not allowed"
	ErrDefaultNotConst   = "default value of column %q must be a constant"
	ErrDefaultType       = "default for column %q is of type %s but column is of type %s"
	ErrRefTableMissing   = "referenced table %q does not exist"
	ErrRefNoPrimaryKey   = "table %q has no primary key to reference"
	ErrRefArity          = "foreign key has %d columns but references %d"
	ErrRefNotUnique      = "there is no unique constraint matching the referenced columns of table %q"
	ErrRefType           = "foreign key column %q of type %s cannot reference column %q of type %s"
	ErrSetNullNotNull    = "%s SET NULL requires column %q to be nullable"
	ErrSetDefaultMissing = "%s SET DEFAULT requires column %q to have a default"
)

// tableDef accumulates the constraints of a table being defined or altered.
type tableDef struct {
	t      *catalog.Table
	hasPK  bool
	keys   []*catalog.Key
	fks    []pendingFK
	checks []core.Expr
}

// pendingFK is a foreign key whose target is checked once all columns of
// the table are known.
type pendingFK struct {
	node core.Node
	name string
	cols []string
	ref  *core.ForeignKeyRef
}

func (def *tableDef) addKey(b *Binder, n core.Node, k *catalog.Key) {
	if k.Primary {
		if def.hasPK {
			b.report(diag.ConstraintError, diag.CodeMultiplePrimaryKeys, n, ErrMultiplePK, def.t.Name)
			return
		}
		def.hasPK = true
		for _, name := range k.Columns {
			if col, ok := def.t.Column(name); ok {
				col.Nullable = false
			}
		}
	}
	def.t.Keys = append(def.t.Keys, k)
	def.keys = append(def.keys, k)
}

// BindCreateTable validates CREATE TABLE and returns the table to define.
// ok is false when any diagnostic was reported. An existing table with IF
// NOT EXISTS yields (nil, true).
func (b *Binder) BindCreateTable(s *core.CreateTableStmt) (t *catalog.Table, ok bool) {
	start := b.diags.Len()
	if _, exists := b.cat.LookupTable(s.Name.Name); exists {
		if s.IfNotExists {
			return nil, true
		}
		b.report(diag.CatalogError, diag.CodeDuplicateTable, s.Name, ErrTableExists, s.Name.Name)
		return nil, false
	}

	def := &tableDef{t: catalog.NewTable(s.Name.Name, b.d)}
	for _, cd := range s.Columns {
		if def.t.ColumnIndex(cd.Name) >= 0 {
			b.report(diag.CatalogError, diag.CodeDuplicateColumn, cd, ErrColumnRepeated, cd.Name)
			continue
		}
		col := b.columnFromDef(cd)
		def.t.Columns = append(def.t.Columns, col)
		b.columnConstraints(def, col, cd)
	}
	for _, tc := range s.Constraints {
		b.tableConstraint(def, tc)
	}

	for _, p := range def.fks {
		if fk, ok := b.foreignKey(def.t, p); ok {
			def.t.ForeignKeys = append(def.t.ForeignKeys, fk)
		}
	}
	b.bindChecks(def)
	return def.t, b.diags.Len() == start
}

// columnFromDef types a column definition. Columns are nullable until a
// constraint says otherwise.
func (b *Binder) columnFromDef(cd *core.ColumnDef) *catalog.Column {
	kind, generated := b.ResolveType(cd.TypeName)
	return &catalog.Column{
		Name:         cd.Name,
		Kind:         kind,
		DeclaredType: cd.TypeName,
		Nullable:     true,
		HasDefault:   generated,
	}
}

func (b *Binder) columnConstraints(def *tableDef, col *catalog.Column, cd *core.ColumnDef) {
	for _, cc := range cd.Constraints {
		switch cc.Kind {
		case core.ConstraintNotNull:
			col.Nullable = false
		case core.ConstraintNull:
			col.Nullable = true
		case core.ConstraintPrimaryKey:
			def.addKey(b, cc, &catalog.Key{Name: cc.Name, Primary: true, Columns: []string{col.Name}})
		case core.ConstraintUnique:
			def.addKey(b, cc, &catalog.Key{Name: cc.Name, Columns: []string{col.Name}})
		case core.ConstraintDefault:
			b.bindDefault(col, cc.Default)
		case core.ConstraintForeignKey:
			def.fks = append(def.fks, pendingFK{node: cc, name: cc.Name, cols: []string{col.Name}, ref: cc.Ref})
		case core.ConstraintCheck:
			def.checks = append(def.checks, cc.Check)
		}
	}
}

func (b *Binder) tableConstraint(def *tableDef, tc *core.TableConstraint) {
	if tc.Kind == core.ConstraintCheck {
		def.checks = append(def.checks, tc.Check)
		return
	}
	cols := make([]string, 0, len(tc.Columns))
	for _, id := range tc.Columns {
		col, ok := def.t.Column(id.Name)
		if !ok {
			b.report(diag.CatalogError, diag.CodeUnknownColumn, id, ErrColumnNotInTable, id.Name, def.t.Name)
			continue
		}
		cols = append(cols, col.Name)
	}
	if len(cols) != len(tc.Columns) {
		return
	}
	switch tc.Kind {
	case core.ConstraintPrimaryKey:
		def.addKey(b, tc, &catalog.Key{Name: tc.Name, Primary: true, Columns: cols})
	case core.ConstraintUnique:
		def.addKey(b, tc, &catalog.Key{Name: tc.Name, Columns: cols})
	case core.ConstraintForeignKey:
		def.fks = append(def.fks, pendingFK{node: tc, name: tc.Name, cols: cols, ref: tc.Ref})
	}
}

// bindDefault validates a default expression and records it on col. A nil
// expression marks a generated column.
func (b *Binder) bindDefault(col *catalog.Column, e core.Expr) {
	col.HasDefault = true
	if e == nil {
		return
	}
	nonConst := find(e, func(x core.Expr) bool {
		switch x.(type) {
		case *core.ColumnRef, *core.Param, *core.SubqueryExpr, *core.ExistsExpr:
			return true
		}
		return false
	})
	if nonConst != nil {
		b.report(diag.ConstraintError, diag.CodeInvalidDefault, nonConst, ErrDefaultNotConst, col.Name)
		return
	}
	ctx := exprCtx{sc: b.scopes.Empty(), clause: clauseDefault}
	x := b.bindExpr(ctx, e, col.Type())
	if !b.sys.Assignable(col.Kind, x.Type.Kind) {
		b.report(diag.TypeError, diag.CodeTypeMismatch, e, ErrDefaultType, col.Name, x.Type.Kind, col.Kind)
	}
	col.Default = format.Expr(e)
}

// foreignKey checks a foreign key of t against its referenced table, which
// may be t itself.
func (b *Binder) foreignKey(t *catalog.Table, p pendingFK) (*catalog.ForeignKey, bool) {
	ref := t
	if b.d.NormalizeName(p.ref.Table.Name) != b.d.NormalizeName(t.Name) {
		rt, ok := b.cat.LookupTable(p.ref.Table.Name)
		if !ok {
			b.report(diag.CatalogError, diag.CodeUnknownTable, p.ref.Table, ErrRefTableMissing, p.ref.Table.Name)
			return nil, false
		}
		ref = rt
	}

	refCols := make([]string, len(p.ref.Columns))
	for i, id := range p.ref.Columns {
		refCols[i] = id.Name
	}
	if len(refCols) == 0 {
		pk, ok := ref.PrimaryKey()
		if !ok {
			b.report(diag.ConstraintError, diag.CodeForeignKeyTarget, p.ref, ErrRefNoPrimaryKey, ref.Name)
			return nil, false
		}
		refCols = slices.Clone(pk.Columns)
	}
	for _, name := range refCols {
		if ref.ColumnIndex(name) < 0 {
			b.report(diag.CatalogError, diag.CodeUnknownColumn, p.ref, ErrColumnNotInTable, name, ref.Name)
			return nil, false
		}
	}
	if len(refCols) != len(p.cols) {
		b.report(diag.ConstraintError, diag.CodeForeignKeyTarget, p.ref, ErrRefArity, len(p.cols), len(refCols))
		return nil, false
	}
	if !ref.IsUnique(refCols) {
		b.report(diag.ConstraintError, diag.CodeForeignKeyTarget, p.ref, ErrRefNotUnique, ref.Name)
		return nil, false
	}

	ok := true
	for i, name := range p.cols {
		col, _ := t.Column(name)
		rc, _ := ref.Column(refCols[i])
		if !b.sys.Compatible(col.Kind, rc.Kind) {
			b.report(diag.TypeError, diag.CodeTypeMismatch, p.node, ErrRefType, col.Name, col.Kind, rc.Name, rc.Kind)
			ok = false
		}
	}
	ok = b.checkRefAction(t, p, "ON DELETE", p.ref.OnDelete) && ok
	ok = b.checkRefAction(t, p, "ON UPDATE", p.ref.OnUpdate) && ok
	if !ok {
		return nil, false
	}
	return &catalog.ForeignKey{
		Name:       p.name,
		Columns:    p.cols,
		RefTable:   ref.Name,
		RefColumns: refCols,
		OnDelete:   refActionName(p.ref.OnDelete),
		OnUpdate:   refActionName(p.ref.OnUpdate),
	}, true
}

func (b *Binder) checkRefAction(t *catalog.Table, p pendingFK, event string, action core.RefAction) bool {
	ok := true
	for _, name := range p.cols {
		col, _ := t.Column(name)
		switch {
		case action == core.RefSetNull && !col.Nullable:
			b.report(diag.ConstraintError, diag.CodeForeignKeyAction, p.ref, ErrSetNullNotNull, event, col.Name)
			ok = false
		case action == core.RefSetDefault && !col.HasDefault:
			b.report(diag.ConstraintError, diag.CodeForeignKeyAction, p.ref, ErrSetDefaultMissing, event, col.Name)
			ok = false
		}
	}
	return ok
}

func refActionName(a core.RefAction) string {
	if a == core.RefNoAction {
		return ""
	}
	return a.String()
}

func (b *Binder) bindChecks(def *tableDef) {
	if len(def.checks) == 0 {
		return
	}
	ctx := exprCtx{sc: b.scopes.NewTable("", def.t), clause: clauseCheck}
	for _, chk := range def.checks {
		b.requireBoolean(b.bindExpr(ctx, chk, boolHint), "CHECK")
	}
}

// BindAlterTable validates ALTER TABLE and translates its actions into
// catalog operations. Actions are checked against the table as changed by
// the earlier actions of the same statement.
func (b *Binder) BindAlterTable(s *core.AlterTableStmt) ([]catalog.AlterOp, bool) {
	start := b.diags.Len()
	t, ok := b.lookupTable(s.Name)
	if !ok {
		return nil, false
	}

	// work is a private copy; the catalog applies the ops itself.
	work := *t
	work.Columns = make([]*catalog.Column, len(t.Columns))
	for i, c := range t.Columns {
		cp := *c
		work.Columns[i] = &cp
	}
	work.Keys = slices.Clone(t.Keys)
	_, hasPK := t.PrimaryKey()

	var ops []catalog.AlterOp
	for _, a := range s.Actions {
		switch x := a.(type) {
		case *core.AddColumnAction:
			ops = append(ops, b.addColumnOps(&work, &hasPK, x)...)
		case *core.DropColumnAction:
			ops = append(ops, catalog.DropColumn{Name: x.Column.Name, IfExists: x.IfExists})
		case *core.RenameColumnAction:
			ops = append(ops, catalog.RenameColumn{From: x.Column.Name, To: x.To.Name})
		case *core.RenameTableAction:
			ops = append(ops, catalog.RenameTable{To: x.To.Name})
		case *core.AlterColumnTypeAction:
			kind, _ := b.ResolveType(x.TypeName)
			ops = append(ops, catalog.SetColumnType{Name: x.Column.Name, Kind: kind, DeclaredType: x.TypeName})
		case *core.AlterColumnNullAction:
			ops = append(ops, catalog.SetNotNull{Name: x.Column.Name, NotNull: x.NotNull})
		case *core.AlterColumnDefaultAction:
			op := catalog.SetDefault{Name: x.Column.Name}
			if x.Default != nil {
				op.HasDefault = true
				if col, ok := work.Column(x.Column.Name); ok {
					scratch := *col
					b.bindDefault(&scratch, x.Default)
					op.Default = scratch.Default
				}
			}
			ops = append(ops, op)
		case *core.AddConstraintAction:
			def := &tableDef{t: &work, hasPK: hasPK}
			b.tableConstraint(def, x.Constraint)
			hasPK = def.hasPK
			ops = append(ops, b.constraintOps(def)...)
		}
	}
	return ops, b.diags.Len() == start
}

func (b *Binder) addColumnOps(work *catalog.Table, hasPK *bool, x *core.AddColumnAction) []catalog.AlterOp {
	col := b.columnFromDef(x.Column)
	ops := []catalog.AlterOp{catalog.AddColumn{Column: col, IfNotExists: x.IfNotExists}}
	if work.ColumnIndex(col.Name) >= 0 {
		// The catalog reports the duplicate, or skips it for IF NOT EXISTS.
		return ops
	}
	work.Columns = append(work.Columns, col)

	def := &tableDef{t: work, hasPK: *hasPK}
	b.columnConstraints(def, col, x.Column)
	*hasPK = def.hasPK
	return append(ops, b.constraintOps(def)...)
}

// constraintOps validates the pending parts of def and turns them into
// catalog operations.
func (b *Binder) constraintOps(def *tableDef) []catalog.AlterOp {
	var ops []catalog.AlterOp
	for _, k := range def.keys {
		ops = append(ops, catalog.AddKey{Key: k})
	}
	for _, p := range def.fks {
		if fk, ok := b.foreignKey(def.t, p); ok {
			ops = append(ops, catalog.AddForeignKey{ForeignKey: fk})
		}
	}
	b.bindChecks(def)
	return ops
}
