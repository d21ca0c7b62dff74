// Package sqlite provides a table.Sheet backed by a SQLite table. Rows are
// addressed in rowid order and every cell is read as TEXT, so predicates see
// the same string values they would see in an in-memory spreadsheet.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/asaidimu/go-rowsel/core/table"
	"go.uber.org/zap"
)

// Options configures how a Table is opened.
type Options struct {
	// Columns, when set, creates the table with these TEXT columns before it
	// is opened.
	Columns      []string
	IfNotExists  bool          // Use CREATE TABLE IF NOT EXISTS when creating.
	TablePrefix  string        // Prepended to the table name.
	QueryTimeout time.Duration // Per-statement timeout. Zero means none.
}

// DefaultOptions returns the options used when NewTable is given nil.
func DefaultOptions() *Options {
	return &Options{
		IfNotExists:  true,
		QueryTimeout: 5 * time.Second,
	}
}

// Table is a table.Sheet stored in SQLite. The column layout is read once
// when the table is opened; cell values are read on demand.
type Table struct {
	db      *sql.DB
	name    string
	columns []string
	index   map[string]table.ColumnRef
	logger  *zap.Logger
	options *Options
}

// Ensure Table implements the table.Sheet interface.
var _ table.Sheet = (*Table)(nil)

// NewTable opens the SQLite table called name, creating it first when
// options.Columns is set.
func NewTable(ctx context.Context, db *sql.DB, name string, logger *zap.Logger, options *Options) (*Table, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if name == "" {
		return nil, fmt.Errorf("table name cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if options == nil {
		options = DefaultOptions()
	}

	t := &Table{
		db:      db,
		name:    options.TablePrefix + name,
		logger:  logger,
		options: options,
	}

	if len(options.Columns) > 0 {
		if err := t.create(ctx, options.Columns); err != nil {
			return nil, err
		}
	}
	if err := t.loadColumns(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// quoteIdentifier quotes a table or column name for use in SQL text.
func quoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func (t *Table) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.options.QueryTimeout > 0 {
		return context.WithTimeout(ctx, t.options.QueryTimeout)
	}
	return context.WithCancel(ctx)
}

// CreateTableSQL returns the DDL that create would execute.
func (t *Table) CreateTableSQL(columns []string) (string, error) {
	if len(columns) == 0 {
		return "", fmt.Errorf("table %s must define at least one column", t.name)
	}
	defs := make([]string, len(columns))
	for i, c := range columns {
		if c == "" {
			return "", fmt.Errorf("column %d of table %s has an empty name", i, t.name)
		}
		defs[i] = quoteIdentifier(c) + " TEXT"
	}

	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	if t.options.IfNotExists {
		sb.WriteString("IF NOT EXISTS ")
	}
	sb.WriteString(quoteIdentifier(t.name))
	sb.WriteString(" (")
	sb.WriteString(strings.Join(defs, ", "))
	sb.WriteString(")")
	return sb.String(), nil
}

func (t *Table) create(ctx context.Context, columns []string) error {
	stmt, err := t.CreateTableSQL(columns)
	if err != nil {
		return err
	}

	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	t.logger.Debug("Executing SQL CREATE", zap.String("sql", stmt))
	if _, err := t.db.ExecContext(ctx, stmt); err != nil {
		t.logger.Error("Failed to create table", zap.Error(err), zap.String("sql", stmt))
		return fmt.Errorf("failed to create table %s: %w", t.name, err)
	}
	return nil
}

func (t *Table) loadColumns(ctx context.Context) error {
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	const stmt = "SELECT name FROM pragma_table_info(?) ORDER BY cid"
	t.logger.Debug("Reading table columns", zap.String("sql", stmt), zap.String("table", t.name))

	rows, err := t.db.QueryContext(ctx, stmt, t.name)
	if err != nil {
		return fmt.Errorf("failed to read columns of %s: %w", t.name, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("failed to scan column name: %w", err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error after scanning columns: %w", err)
	}
	if len(columns) == 0 {
		return fmt.Errorf("table %s does not exist or has no columns", t.name)
	}

	t.columns = columns
	t.index = make(map[string]table.ColumnRef, len(columns))
	for i, c := range columns {
		t.index[c] = table.ColumnRef(i)
	}
	return nil
}

// Name returns the table name, including any configured prefix.
func (t *Table) Name() string {
	return t.name
}

// AddRow inserts one row. The number of values must match the number of columns.
func (t *Table) AddRow(ctx context.Context, values ...string) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("row has %d values, table %s has %d columns", len(values), t.name, len(t.columns))
	}

	quoted := make([]string, len(t.columns))
	placeholders := make([]string, len(t.columns))
	args := make([]any, len(values))
	for i, c := range t.columns {
		quoted[i] = quoteIdentifier(c)
		placeholders[i] = "?"
		args[i] = values[i]
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdentifier(t.name), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))

	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	t.logger.Debug("Executing SQL INSERT", zap.String("sql", stmt), zap.Strings("values", values))
	if _, err := t.db.ExecContext(ctx, stmt, args...); err != nil {
		t.logger.Error("Failed to execute INSERT", zap.Error(err), zap.String("sql", stmt))
		return fmt.Errorf("failed to insert row into %s: %w", t.name, err)
	}
	return nil
}

// NumRows returns the number of rows in the table.
func (t *Table) NumRows() (int, error) {
	ctx, cancel := t.withTimeout(context.Background())
	defer cancel()

	stmt := "SELECT COUNT(*) FROM " + quoteIdentifier(t.name)
	t.logger.Debug("Executing SQL COUNT", zap.String("sql", stmt))

	var n int
	if err := t.db.QueryRowContext(ctx, stmt).Scan(&n); err != nil {
		t.logger.Error("Failed to count rows", zap.Error(err), zap.String("sql", stmt))
		return 0, fmt.Errorf("failed to count rows of %s: %w", t.name, err)
	}
	return n, nil
}

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() ([]string, error) {
	return append([]string(nil), t.columns...), nil
}

// ColumnByName resolves a column name to its declaration position.
func (t *Table) ColumnByName(name string) (table.ColumnRef, error) {
	ref, ok := t.index[name]
	if !ok {
		return 0, &table.LookupError{Column: name}
	}
	return ref, nil
}

// CellValue reads the value at (row, column) as TEXT. NULL reads as "".
func (t *Table) CellValue(row int, column table.ColumnRef) (string, error) {
	if column < 0 || int(column) >= len(t.columns) {
		return "", &table.RowError{Row: row, Column: column, Reason: fmt.Sprintf("column out of range [0, %d)", len(t.columns))}
	}
	if row < 0 {
		return "", &table.RowError{Row: row, Column: column, Reason: "negative row index"}
	}

	stmt := fmt.Sprintf("SELECT CAST(%s AS TEXT) FROM %s ORDER BY rowid LIMIT 1 OFFSET ?",
		quoteIdentifier(t.columns[column]), quoteIdentifier(t.name))

	ctx, cancel := t.withTimeout(context.Background())
	defer cancel()

	t.logger.Debug("Executing SQL SELECT", zap.String("sql", stmt), zap.Int("row", row))

	var value sql.NullString
	err := t.db.QueryRowContext(ctx, stmt, row).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", &table.RowError{Row: row, Column: column, Reason: "row out of range"}
	}
	if err != nil {
		t.logger.Error("Failed to read cell", zap.Error(err), zap.String("sql", stmt), zap.Int("row", row))
		return "", fmt.Errorf("failed to read cell (row %d, column %s) of %s: %w", row, t.columns[column], t.name, err)
	}
	return value.String, nil
}
