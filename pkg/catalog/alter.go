package catalog

import (
	"slices"

	"github.com/truffle-sql/truffle/pkg/types"
)

// AlterOp is one ALTER TABLE sub-operation.
type AlterOp interface {
	apply(c *Catalog, t *Table) error
}

// AddColumn appends a column.
type AddColumn struct {
	Column      *Column
	IfNotExists bool
}

// DropColumn removes a column together with the keys and foreign keys that
// use it. A column referenced by another table's foreign key cannot be
// dropped.
type DropColumn struct {
	Name     string
	IfExists bool
}

// RenameColumn renames a column and every reference to it.
type RenameColumn struct {
	From, To string
}

// RenameTable renames the table and every foreign key pointing at it.
type RenameTable struct {
	To string
}

// SetColumnType changes a column's kind.
type SetColumnType struct {
	Name         string
	Kind         types.Kind
	DeclaredType string
}

// SetNotNull sets or drops NOT NULL.
type SetNotNull struct {
	Name    string
	NotNull bool
}

// SetDefault sets or drops a column default.
type SetDefault struct {
	Name       string
	HasDefault bool
	Default    string
}

// AddKey adds a primary key or unique constraint.
type AddKey struct {
	Key *Key
}

// AddForeignKey adds a foreign key.
type AddForeignKey struct {
	ForeignKey *ForeignKey
}

func (op AddColumn) apply(c *Catalog, t *Table) error {
	if t.ColumnIndex(op.Column.Name) >= 0 {
		if op.IfNotExists {
			return nil
		}
		return &Error{Code: CodeDuplicateColumn, Table: t.Name, Column: op.Column.Name}
	}
	col := *op.Column
	t.Columns = append(t.Columns, &col)
	return nil
}

func (op DropColumn) apply(c *Catalog, t *Table) error {
	i := t.ColumnIndex(op.Name)
	if i < 0 {
		if op.IfExists {
			return nil
		}
		return &Error{Code: CodeUnknownColumn, Table: t.Name, Column: op.Name}
	}

	self := c.Fold(t.Name)
	col := c.Fold(op.Name)
	for _, other := range c.Tables() {
		if c.Fold(other.Name) == self {
			continue
		}
		for _, fk := range other.ForeignKeys {
			if c.Fold(fk.RefTable) == self && slices.Contains(other.normAll(fk.RefColumns), col) {
				return &Error{Code: CodeForeignKeyReference, Table: t.Name, Column: t.Columns[i].Name, Referrer: other.Name}
			}
		}
	}

	t.Columns = slices.Delete(t.Columns, i, i+1)
	t.Keys = slices.DeleteFunc(t.Keys, func(k *Key) bool {
		return slices.Contains(t.normAll(k.Columns), col)
	})
	t.ForeignKeys = slices.DeleteFunc(t.ForeignKeys, func(fk *ForeignKey) bool {
		return slices.Contains(t.normAll(fk.Columns), col) ||
			(c.Fold(fk.RefTable) == self && slices.Contains(t.normAll(fk.RefColumns), col))
	})
	return nil
}

func (op RenameColumn) apply(c *Catalog, t *Table) error {
	i := t.ColumnIndex(op.From)
	if i < 0 {
		return &Error{Code: CodeUnknownColumn, Table: t.Name, Column: op.From}
	}
	if j := t.ColumnIndex(op.To); j >= 0 && j != i {
		return &Error{Code: CodeDuplicateColumn, Table: t.Name, Column: op.To}
	}

	from := c.Fold(op.From)
	rename := func(names []string) {
		for k, n := range names {
			if c.Fold(n) == from {
				names[k] = op.To
			}
		}
	}
	t.Columns[i].Name = op.To
	for _, k := range t.Keys {
		rename(k.Columns)
	}
	for _, fk := range t.ForeignKeys {
		rename(fk.Columns)
	}
	self := c.Fold(t.Name)
	for _, other := range c.Tables() {
		for _, fk := range other.ForeignKeys {
			if c.Fold(fk.RefTable) == self {
				rename(fk.RefColumns)
			}
		}
	}
	return nil
}

func (op RenameTable) apply(c *Catalog, t *Table) error {
	from := c.Fold(t.Name)
	to := c.Fold(op.To)
	if to == from {
		t.Name = op.To
		return nil
	}
	if _, exists := c.tables[to]; exists {
		return &Error{Code: CodeDuplicateTable, Table: op.To}
	}
	for _, other := range c.Tables() {
		for _, fk := range other.ForeignKeys {
			if c.Fold(fk.RefTable) == from {
				fk.RefTable = op.To
			}
		}
	}
	c.rename(t.Name, op.To)
	return nil
}

func (op SetColumnType) apply(c *Catalog, t *Table) error {
	col, ok := t.Column(op.Name)
	if !ok {
		return &Error{Code: CodeUnknownColumn, Table: t.Name, Column: op.Name}
	}
	col.Kind = op.Kind
	col.DeclaredType = op.DeclaredType
	return nil
}

func (op SetNotNull) apply(c *Catalog, t *Table) error {
	col, ok := t.Column(op.Name)
	if !ok {
		return &Error{Code: CodeUnknownColumn, Table: t.Name, Column: op.Name}
	}
	col.Nullable = !op.NotNull
	return nil
}

func (op SetDefault) apply(c *Catalog, t *Table) error {
	col, ok := t.Column(op.Name)
	if !ok {
		return &Error{Code: CodeUnknownColumn, Table: t.Name, Column: op.Name}
	}
	col.HasDefault = op.HasDefault
	col.Default = op.Default
	return nil
}

func (op AddKey) apply(c *Catalog, t *Table) error {
	for _, name := range op.Key.Columns {
		if t.ColumnIndex(name) < 0 {
			return &Error{Code: CodeUnknownColumn, Table: t.Name, Column: name}
		}
	}
	k := *op.Key
	k.Columns = slices.Clone(op.Key.Columns)
	t.Keys = append(t.Keys, &k)
	if k.Primary {
		for _, name := range k.Columns {
			col, _ := t.Column(name)
			col.Nullable = false
		}
	}
	return nil
}

func (op AddForeignKey) apply(c *Catalog, t *Table) error {
	for _, name := range op.ForeignKey.Columns {
		if t.ColumnIndex(name) < 0 {
			return &Error{Code: CodeUnknownColumn, Table: t.Name, Column: name}
		}
	}
	ref, ok := c.LookupTable(op.ForeignKey.RefTable)
	if !ok {
		return &Error{Code: CodeUnknownTable, Table: op.ForeignKey.RefTable}
	}
	for _, name := range op.ForeignKey.RefColumns {
		if ref.ColumnIndex(name) < 0 {
			return &Error{Code: CodeUnknownColumn, Table: ref.Name, Column: name}
		}
	}
	fk := *op.ForeignKey
	fk.Columns = slices.Clone(op.ForeignKey.Columns)
	fk.RefColumns = slices.Clone(op.ForeignKey.RefColumns)
	t.ForeignKeys = append(t.ForeignKeys, &fk)
	return nil
}
