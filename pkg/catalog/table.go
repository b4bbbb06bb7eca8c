package catalog

import (
	"slices"

	"github.com/truffle-sql/truffle/pkg/types"
)

// Column is one column of a table.
type Column struct {
	Name string `json:"name" yaml:"name"`
	// Kind is the resolved scalar kind; DeclaredType is the type as written.
	Kind         types.Kind `json:"kind" yaml:"kind"`
	DeclaredType string     `json:"declared_type,omitempty" yaml:"declared_type,omitempty"`
	Nullable     bool       `json:"nullable" yaml:"nullable"`
	HasDefault   bool       `json:"has_default,omitempty" yaml:"has_default,omitempty"`
	// Default is the default expression as written, for display only.
	Default string `json:"default,omitempty" yaml:"default,omitempty"`
}

// Type returns the column's kind and declared nullability.
func (c *Column) Type() types.Type {
	return types.Type{Kind: c.Kind, Nullable: c.Nullable}
}

// Required reports whether an INSERT must supply a value for the column.
func (c *Column) Required() bool {
	return !c.Nullable && !c.HasDefault
}

// Key is a primary key or unique constraint.
type Key struct {
	Name    string   `json:"name,omitempty" yaml:"name,omitempty"`
	Primary bool     `json:"primary,omitempty" yaml:"primary,omitempty"`
	Columns []string `json:"columns" yaml:"columns"`
}

// ForeignKey references a key of another (or the same) table.
type ForeignKey struct {
	Name       string   `json:"name,omitempty" yaml:"name,omitempty"`
	Columns    []string `json:"columns" yaml:"columns"`
	RefTable   string   `json:"ref_table" yaml:"ref_table"`
	RefColumns []string `json:"ref_columns" yaml:"ref_columns"`
	OnDelete   string   `json:"on_delete,omitempty" yaml:"on_delete,omitempty"`
	OnUpdate   string   `json:"on_update,omitempty" yaml:"on_update,omitempty"`
}

// Table is the schema of one table.
type Table struct {
	Name        string        `json:"name" yaml:"name"`
	Columns     []*Column     `json:"columns" yaml:"columns"`
	Keys        []*Key        `json:"keys,omitempty" yaml:"keys,omitempty"`
	ForeignKeys []*ForeignKey `json:"foreign_keys,omitempty" yaml:"foreign_keys,omitempty"`

	fold Folder
}

// NewTable returns a table whose column lookups use fold.
func NewTable(name string, fold Folder) *Table {
	return &Table{Name: name, fold: fold}
}

func (t *Table) norm(name string) string {
	if t.fold == nil {
		return name
	}
	return t.fold.NormalizeName(name)
}

// Column returns the column named name.
func (t *Table) Column(name string) (*Column, bool) {
	if i := t.ColumnIndex(name); i >= 0 {
		return t.Columns[i], true
	}
	return nil, false
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	want := t.norm(name)
	for i, c := range t.Columns {
		if t.norm(c.Name) == want {
			return i
		}
	}
	return -1
}

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// PrimaryKey returns the primary key, if any.
func (t *Table) PrimaryKey() (*Key, bool) {
	for _, k := range t.Keys {
		if k.Primary {
			return k, true
		}
	}
	return nil, false
}

// IsPrimaryKey reports whether cols, in any order, are exactly the
// primary key.
func (t *Table) IsPrimaryKey(cols []string) bool {
	pk, ok := t.PrimaryKey()
	return ok && t.sameColumns(pk.Columns, cols)
}

// IsUnique reports whether cols, in any order, are exactly the columns of
// the primary key or of a unique constraint.
func (t *Table) IsUnique(cols []string) bool {
	for _, k := range t.Keys {
		if t.sameColumns(k.Columns, cols) {
			return true
		}
	}
	return false
}

func (t *Table) sameColumns(a, b []string) bool {
	if len(a) != len(b) || len(a) == 0 {
		return false
	}
	na := make([]string, len(a))
	nb := make([]string, len(b))
	for i := range a {
		na[i], nb[i] = t.norm(a[i]), t.norm(b[i])
	}
	slices.Sort(na)
	slices.Sort(nb)
	return slices.Equal(na, nb)
}

// references reports whether a foreign key of t targets the folded table
// name.
func (t *Table) references(folded string) bool {
	for _, fk := range t.ForeignKeys {
		if t.norm(fk.RefTable) == folded {
			return true
		}
	}
	return false
}

// clone returns a deep copy.
func (t *Table) clone() *Table {
	out := &Table{Name: t.Name, fold: t.fold}
	out.Columns = make([]*Column, len(t.Columns))
	for i, c := range t.Columns {
		cc := *c
		out.Columns[i] = &cc
	}
	for _, k := range t.Keys {
		kk := *k
		kk.Columns = slices.Clone(k.Columns)
		out.Keys = append(out.Keys, &kk)
	}
	for _, fk := range t.ForeignKeys {
		f := *fk
		f.Columns = slices.Clone(fk.Columns)
		f.RefColumns = slices.Clone(fk.RefColumns)
		out.ForeignKeys = append(out.ForeignKeys, &f)
	}
	return out
}

// equal compares two tables structurally, ignoring column-name case
// differences the folder erases.
func (t *Table) equal(o *Table) bool {
	if t.norm(t.Name) != t.norm(o.Name) || len(t.Columns) != len(o.Columns) {
		return false
	}
	for i, c := range t.Columns {
		oc := o.Columns[i]
		if t.norm(c.Name) != t.norm(oc.Name) || c.Kind != oc.Kind || c.Nullable != oc.Nullable || c.HasDefault != oc.HasDefault {
			return false
		}
	}
	if len(t.Keys) != len(o.Keys) || len(t.ForeignKeys) != len(o.ForeignKeys) {
		return false
	}
	for i, k := range t.Keys {
		if k.Primary != o.Keys[i].Primary || !t.sameColumns(k.Columns, o.Keys[i].Columns) {
			return false
		}
	}
	for i, fk := range t.ForeignKeys {
		of := o.ForeignKeys[i]
		if t.norm(fk.RefTable) != t.norm(of.RefTable) || !slices.Equal(t.normAll(fk.Columns), t.normAll(of.Columns)) ||
			!slices.Equal(t.normAll(fk.RefColumns), t.normAll(of.RefColumns)) || fk.OnDelete != of.OnDelete || fk.OnUpdate != of.OnUpdate {
			return false
		}
	}
	return true
}

func (t *Table) normAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = t.norm(n)
	}
	return out
}
