// Package catalog holds the in-memory schema model built from DDL.
//
// A Catalog is an owned value: it is created by New, mutated only through
// DefineTable, AlterTable and DropTable, and never shared implicitly. Every
// mutation is all-or-nothing. Table and column names are compared after
// folding with the Folder given to New, usually the active dialect.
package catalog

import (
	"encoding/json"
	"errors"
	"slices"
)

// Folder normalizes identifiers for comparison. *dialect.Dialect
// implements it.
type Folder interface {
	NormalizeName(name string) string
}

// Reader is the read-only view of a catalog.
type Reader interface {
	LookupTable(name string) (*Table, bool)
	Tables() []*Table
	Fold(name string) string
	Referencing(name string) []string
}

// Catalog maps folded table names to schemas and remembers definition
// order.
type Catalog struct {
	fold   Folder
	tables map[string]*Table
	order  []string
}

var _ Reader = (*Catalog)(nil)

// New returns an empty catalog. It panics if fold is nil.
func New(fold Folder) *Catalog {
	if fold == nil {
		panic("catalog: nil Folder")
	}
	return &Catalog{fold: fold, tables: make(map[string]*Table)}
}

// Folder returns the folding rule fixed at construction.
func (c *Catalog) Folder() Folder {
	return c.fold
}

// Fold normalizes a table or column name.
func (c *Catalog) Fold(name string) string {
	return c.fold.NormalizeName(name)
}

// Len returns the number of tables.
func (c *Catalog) Len() int {
	return len(c.order)
}

// LookupTable returns the table named name.
func (c *Catalog) LookupTable(name string) (*Table, bool) {
	t, ok := c.tables[c.Fold(name)]
	return t, ok
}

// Tables returns the tables in definition order.
func (c *Catalog) Tables() []*Table {
	out := make([]*Table, len(c.order))
	for i, name := range c.order {
		out[i] = c.tables[name]
	}
	return out
}

// DefineTable adds t. With ifNotExists set, an existing table of the same
// name makes this a no-op. Column names must be unique after folding.
func (c *Catalog) DefineTable(t *Table, ifNotExists bool) error {
	key := c.Fold(t.Name)
	if _, exists := c.tables[key]; exists {
		if ifNotExists {
			return nil
		}
		return &Error{Code: CodeDuplicateTable, Table: t.Name}
	}
	seen := make(map[string]bool, len(t.Columns))
	for _, col := range t.Columns {
		n := c.Fold(col.Name)
		if seen[n] {
			return &Error{Code: CodeDuplicateColumn, Table: t.Name, Column: col.Name}
		}
		seen[n] = true
	}

	stored := t.clone()
	stored.fold = c.fold
	c.tables[key] = stored
	c.order = append(c.order, key)
	return nil
}

// DropTable removes the named table. It fails while another table's
// foreign key references it.
func (c *Catalog) DropTable(name string, ifExists bool) error {
	return c.DropTables([]string{name}, ifExists)
}

// DropTables removes several tables at once. Foreign keys between the
// dropped tables do not block the drop. Nothing is removed if any name
// fails.
func (c *Catalog) DropTables(names []string, ifExists bool) error {
	drop := make(map[string]bool, len(names))
	var errs []error
	for _, name := range names {
		key := c.Fold(name)
		if _, ok := c.tables[key]; !ok {
			if !ifExists {
				errs = append(errs, &Error{Code: CodeUnknownTable, Table: name})
			}
			continue
		}
		drop[key] = true
	}
	for _, name := range names {
		key := c.Fold(name)
		if !drop[key] {
			continue
		}
		for _, other := range c.order {
			if !drop[other] && c.tables[other].references(key) {
				errs = append(errs, &Error{Code: CodeForeignKeyReference, Table: c.tables[key].Name, Referrer: c.tables[other].Name})
				break
			}
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	for key := range drop {
		delete(c.tables, key)
	}
	c.order = slices.DeleteFunc(c.order, func(key string) bool { return drop[key] })
	return nil
}

// AlterTable applies ops to the named table. Every op is attempted against
// a private copy of the catalog; the copy replaces the catalog only if all
// ops succeed. Otherwise the failures are returned joined and nothing
// changes.
func (c *Catalog) AlterTable(name string, ops ...AlterOp) error {
	if _, ok := c.LookupTable(name); !ok {
		return &Error{Code: CodeUnknownTable, Table: name}
	}

	work := c.Snapshot()
	current := name
	var errs []error
	for _, op := range ops {
		t, _ := work.LookupTable(current)
		if err := op.apply(work, t); err != nil {
			errs = append(errs, err)
			continue
		}
		if rt, ok := op.(RenameTable); ok {
			current = rt.To
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	c.tables, c.order = work.tables, work.order
	return nil
}

// Snapshot returns an independent deep copy.
func (c *Catalog) Snapshot() *Catalog {
	out := &Catalog{
		fold:   c.fold,
		tables: make(map[string]*Table, len(c.tables)),
		order:  slices.Clone(c.order),
	}
	for key, t := range c.tables {
		out.tables[key] = t.clone()
	}
	return out
}

// Equal reports whether both catalogs hold the same tables in the same
// definition order.
func (c *Catalog) Equal(o Reader) bool {
	a, b := c.Tables(), o.Tables()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].equal(b[i]) {
			return false
		}
	}
	return true
}

// Referencing returns the names of tables whose foreign keys point at the
// named table, in definition order.
func (c *Catalog) Referencing(name string) []string {
	key := c.Fold(name)
	var out []string
	for _, k := range c.order {
		if c.tables[k].references(key) {
			out = append(out, c.tables[k].Name)
		}
	}
	return out
}

type document struct {
	Tables []*Table `json:"tables" yaml:"tables"`
}

// MarshalJSON renders the tables in definition order.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(document{Tables: c.Tables()})
}

// MarshalYAML implements yaml.Marshaler.
func (c *Catalog) MarshalYAML() (any, error) {
	return document{Tables: c.Tables()}, nil
}

// rename moves a table to a new key, keeping its definition position.
func (c *Catalog) rename(from, to string) {
	fromKey, toKey := c.Fold(from), c.Fold(to)
	t := c.tables[fromKey]
	delete(c.tables, fromKey)
	t.Name = to
	c.tables[toKey] = t
	if i := slices.Index(c.order, fromKey); i >= 0 {
		c.order[i] = toKey
	}
}
