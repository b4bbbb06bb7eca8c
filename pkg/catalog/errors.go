package catalog

import "fmt"

// Code classifies a catalog failure.
type Code string

// Catalog error codes.
const (
	CodeDuplicateTable      Code = "DuplicateTable"
	CodeUnknownTable        Code = "UnknownTable"
	CodeUnknownColumn       Code = "UnknownColumn"
	CodeDuplicateColumn     Code = "DuplicateColumn"
	CodeForeignKeyReference Code = "ForeignKeyReference"
)

// Error is returned by catalog mutations.
type Error struct {
	Code  Code
	Table string
	// Column is set for column-level failures.
	Column string
	// Referrer is the table whose foreign key blocks a drop.
	Referrer string
}

func (e *Error) Error() string {
	switch e.Code {
	case CodeDuplicateTable:
		return fmt.Sprintf("table %q already exists", e.Table)
	case CodeUnknownTable:
		return fmt.Sprintf("table %q does not exist", e.Table)
	case CodeUnknownColumn:
		return fmt.Sprintf("column %q does not exist in table %q", e.Column, e.Table)
	case CodeDuplicateColumn:
		return fmt.Sprintf("column %q already exists in table %q", e.Column, e.Table)
	case CodeForeignKeyReference:
		if e.Column != "" {
			return fmt.Sprintf("cannot drop %s.%s: referenced by a foreign key on table %q", e.Table, e.Column, e.Referrer)
		}
		return fmt.Sprintf("cannot drop table %q: referenced by a foreign key on table %q", e.Table, e.Referrer)
	default:
		return fmt.Sprintf("catalog error %s on %q", e.Code, e.Table)
	}
}
