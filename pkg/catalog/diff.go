package catalog

import (
	"fmt"
	"strings"
)

// ChangeKind classifies one schema change.
type ChangeKind string

// Change kinds.
const (
	TableAdded         ChangeKind = "table_added"
	TableDropped       ChangeKind = "table_dropped"
	ColumnAdded        ChangeKind = "column_added"
	ColumnDropped      ChangeKind = "column_dropped"
	ColumnChanged      ChangeKind = "column_changed"
	ConstraintsChanged ChangeKind = "constraints_changed"
)

// Change is one difference between two catalogs.
type Change struct {
	Kind   ChangeKind `json:"kind" yaml:"kind"`
	Table  string     `json:"table" yaml:"table"`
	Column string     `json:"column,omitempty" yaml:"column,omitempty"`
	From   string     `json:"from,omitempty" yaml:"from,omitempty"`
	To     string     `json:"to,omitempty" yaml:"to,omitempty"`
}

func (c Change) String() string {
	switch c.Kind {
	case TableAdded:
		return "+ table " + c.Table
	case TableDropped:
		return "- table " + c.Table
	case ColumnAdded:
		return fmt.Sprintf("+ column %s.%s %s", c.Table, c.Column, c.To)
	case ColumnDropped:
		return fmt.Sprintf("- column %s.%s", c.Table, c.Column)
	case ColumnChanged:
		return fmt.Sprintf("~ column %s.%s: %s -> %s", c.Table, c.Column, c.From, c.To)
	default:
		return fmt.Sprintf("~ constraints %s: %s -> %s", c.Table, c.From, c.To)
	}
}

// Diff lists the changes that turn from into to. Tables of to come first
// in its definition order, then the tables dropped from from.
func Diff(from, to Reader) []Change {
	var changes []Change
	for _, t := range to.Tables() {
		old, ok := from.LookupTable(t.Name)
		if !ok {
			changes = append(changes, Change{Kind: TableAdded, Table: t.Name})
			continue
		}
		changes = append(changes, diffTable(old, t)...)
	}
	for _, t := range from.Tables() {
		if _, ok := to.LookupTable(t.Name); !ok {
			changes = append(changes, Change{Kind: TableDropped, Table: t.Name})
		}
	}
	return changes
}

func diffTable(old, cur *Table) []Change {
	var changes []Change
	for _, col := range cur.Columns {
		prev, ok := old.Column(col.Name)
		if !ok {
			changes = append(changes, Change{Kind: ColumnAdded, Table: cur.Name, Column: col.Name, To: describeColumn(col)})
			continue
		}
		if a, b := describeColumn(prev), describeColumn(col); a != b {
			changes = append(changes, Change{Kind: ColumnChanged, Table: cur.Name, Column: col.Name, From: a, To: b})
		}
	}
	for _, col := range old.Columns {
		if cur.ColumnIndex(col.Name) < 0 {
			changes = append(changes, Change{Kind: ColumnDropped, Table: cur.Name, Column: col.Name})
		}
	}
	if a, b := DescribeConstraints(old), DescribeConstraints(cur); a != b {
		changes = append(changes, Change{Kind: ConstraintsChanged, Table: cur.Name, From: a, To: b})
	}
	return changes
}

func describeColumn(c *Column) string {
	s := c.Type().String()
	if c.HasDefault {
		s += " DEFAULT"
	}
	return s
}

// DescribeConstraints renders the keys and foreign keys of t on one line.
func DescribeConstraints(t *Table) string {
	var parts []string
	for _, k := range t.Keys {
		kind := "UNIQUE"
		if k.Primary {
			kind = "PRIMARY KEY"
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", kind, strings.Join(t.normAll(k.Columns), ", ")))
	}
	for _, fk := range t.ForeignKeys {
		parts = append(parts, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
			strings.Join(t.normAll(fk.Columns), ", "), t.norm(fk.RefTable), strings.Join(t.normAll(fk.RefColumns), ", ")))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "; ")
}
