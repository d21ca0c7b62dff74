package table

import (
	"fmt"
	"sync"

	"github.com/asaidimu/go-rowsel/utils"
)

// Spreadsheet is an in-memory Sheet holding every cell as a string.
// It is safe for concurrent use.
type Spreadsheet struct {
	mu      sync.RWMutex
	columns []string
	index   map[string]ColumnRef
	rows    [][]string
}

// Ensure Spreadsheet implements the Sheet interface.
var _ Sheet = (*Spreadsheet)(nil)

// NewSpreadsheet creates an empty spreadsheet with the given column names.
func NewSpreadsheet(columns ...string) *Spreadsheet {
	s := &Spreadsheet{}
	s.SetColumnNames(columns...)
	return s
}

// SetColumnNames replaces the column names and discards all rows, since the
// existing rows no longer line up with the new schema.
func (s *Spreadsheet) SetColumnNames(columns ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.columns = append([]string(nil), columns...)
	s.index = make(map[string]ColumnRef, len(columns))
	for i, name := range columns {
		// Duplicate names resolve to the first occurrence.
		if _, exists := s.index[name]; !exists {
			s.index[name] = ColumnRef(i)
		}
	}
	s.rows = nil
}

// AddRow appends a row. The number of values must match the number of columns.
func (s *Spreadsheet) AddRow(values ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(values) != len(s.columns) {
		return fmt.Errorf("row has %d values, spreadsheet has %d columns", len(values), len(s.columns))
	}
	s.rows = append(s.rows, append([]string(nil), values...))
	return nil
}

// AddRecord appends a row built from a struct. Each column takes the value of
// the struct field with the same JSON name; columns without a matching field
// are left empty.
func (s *Spreadsheet) AddRecord(record any) error {
	m, err := utils.StructToMap(record)
	if err != nil {
		return fmt.Errorf("failed to convert record: %w", err)
	}

	columns, _ := s.ColumnNames()
	values := make([]string, len(columns))
	for i, name := range columns {
		v, err := utils.Stringify(m[name])
		if err != nil {
			return fmt.Errorf("failed to convert field '%s': %w", name, err)
		}
		values[i] = v
	}
	return s.AddRow(values...)
}

// NumRows returns the number of rows.
func (s *Spreadsheet) NumRows() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows), nil
}

// ColumnNames returns a copy of the column names in order.
func (s *Spreadsheet) ColumnNames() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.columns...), nil
}

// ColumnByName resolves a column name to its position.
func (s *Spreadsheet) ColumnByName(name string) (ColumnRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ref, ok := s.index[name]
	if !ok {
		return 0, &LookupError{Column: name}
	}
	return ref, nil
}

// CellValue returns the value at (row, column).
func (s *Spreadsheet) CellValue(row int, column ColumnRef) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if row < 0 || row >= len(s.rows) {
		return "", &RowError{Row: row, Column: column, Reason: fmt.Sprintf("row out of range [0, %d)", len(s.rows))}
	}
	if column < 0 || int(column) >= len(s.columns) {
		return "", &RowError{Row: row, Column: column, Reason: fmt.Sprintf("column out of range [0, %d)", len(s.columns))}
	}
	return s.rows[row][column], nil
}
