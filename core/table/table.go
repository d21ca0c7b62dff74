// Package table defines the contract that predicates consult to read row data,
// along with the errors a table reports when a column or row cannot be found.
package table

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by the typed errors below through errors.Is.
var (
	ErrColumnNotFound = errors.New("column not found")
	ErrRowNotFound    = errors.New("row not found")
)

// ColumnRef is a table-scoped handle for a column. It is obtained once from
// ColumnByName and reused for every cell lookup on that column.
type ColumnRef int

// Schema resolves column names. Predicates only need a Schema at construction time.
type Schema interface {
	// ColumnByName returns the reference for name, or a *LookupError if the
	// table has no such column.
	ColumnByName(name string) (ColumnRef, error)
}

// Table is the row/column data source consulted by leaf predicates.
type Table interface {
	Schema

	// CellValue returns the string value stored at (row, column). It returns a
	// *RowError when the row or column reference is invalid for this table.
	CellValue(row int, column ColumnRef) (string, error)
}

// Sheet is a Table that can also report its shape, which is what callers need
// to iterate over every row.
type Sheet interface {
	Table
	NumRows() (int, error)
	ColumnNames() ([]string, error)
}

// LookupError reports a column name that does not exist in a table's schema.
type LookupError struct {
	Column string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("column '%s' not found", e.Column)
}

// Is reports whether target is ErrColumnNotFound.
func (e *LookupError) Is(target error) bool {
	return target == ErrColumnNotFound
}

// RowError reports a cell that cannot be read, either because the row index is
// out of range or because the column reference does not belong to the table.
type RowError struct {
	Row    int
	Column ColumnRef
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("cell (row %d, column %d): %s", e.Row, e.Column, e.Reason)
}

// Is reports whether target is ErrRowNotFound.
func (e *RowError) Is(target error) bool {
	return target == ErrRowNotFound
}
