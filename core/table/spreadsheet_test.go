package table

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSpreadsheet(t *testing.T) {
	s := NewSpreadsheet("First", "Last", "Age")

	columns, err := s.ColumnNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"First", "Last", "Age"}, columns)

	n, err := s.NumRows()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSpreadsheet_ColumnByName(t *testing.T) {
	s := NewSpreadsheet("First", "Last", "First")

	t.Run("known column", func(t *testing.T) {
		ref, err := s.ColumnByName("Last")
		require.NoError(t, err)
		assert.Equal(t, ColumnRef(1), ref)
	})

	t.Run("duplicate resolves to first", func(t *testing.T) {
		ref, err := s.ColumnByName("First")
		require.NoError(t, err)
		assert.Equal(t, ColumnRef(0), ref)
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := s.ColumnByName("Middle")
		require.Error(t, err)

		var lookupErr *LookupError
		require.True(t, errors.As(err, &lookupErr))
		assert.Equal(t, "Middle", lookupErr.Column)
		assert.True(t, errors.Is(err, ErrColumnNotFound))
		assert.False(t, errors.Is(err, ErrRowNotFound))
		assert.Equal(t, "column 'Middle' not found", err.Error())
	})

	t.Run("lookup is case-sensitive", func(t *testing.T) {
		_, err := s.ColumnByName("last")
		assert.ErrorIs(t, err, ErrColumnNotFound)
	})
}

func TestSpreadsheet_AddRow(t *testing.T) {
	s := NewSpreadsheet("First", "Last")

	require.NoError(t, s.AddRow("Amanda", "Andrews"))
	assert.Error(t, s.AddRow("too", "many", "values"))
	assert.Error(t, s.AddRow("few"))

	n, _ := s.NumRows()
	assert.Equal(t, 1, n)
}

func TestSpreadsheet_AddRowCopiesValues(t *testing.T) {
	s := NewSpreadsheet("Last")
	values := []string{"Dole"}
	require.NoError(t, s.AddRow(values...))

	values[0] = "Smith"
	v, err := s.CellValue(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "Dole", v)
}

func TestSpreadsheet_AddRecord(t *testing.T) {
	type person struct {
		First string `json:"First"`
		Age   int    `json:"Age"`
		Note  string `json:"Note"`
	}
	s := NewSpreadsheet("First", "Last", "Age")

	require.NoError(t, s.AddRecord(person{First: "Amanda", Age: 29, Note: "ignored"}))

	first, _ := s.ColumnByName("First")
	last, _ := s.ColumnByName("Last")
	age, _ := s.ColumnByName("Age")

	v, err := s.CellValue(0, first)
	require.NoError(t, err)
	assert.Equal(t, "Amanda", v)

	v, err = s.CellValue(0, last)
	require.NoError(t, err)
	assert.Equal(t, "", v)

	v, err = s.CellValue(0, age)
	require.NoError(t, err)
	assert.Equal(t, "29", v)

	assert.Error(t, s.AddRecord("not a struct"))
}

func TestSpreadsheet_AddRecordKeepsFieldValues(t *testing.T) {
	type label string
	type rec struct {
		ID    int64   `json:"ID"`
		Score float64 `json:"Score"`
		Blob  []byte  `json:"Blob"`
		Code  label   `json:"Code"`
	}

	tests := []struct {
		name     string
		record   rec
		expected []string
	}{
		{"int64 above 2^53", rec{ID: 9007199254740993}, []string{"9007199254740993", "0", "", ""}},
		{"negative int64", rec{ID: -9223372036854775808}, []string{"-9223372036854775808", "0", "", ""}},
		{"fraction", rec{Score: 1.25}, []string{"0", "1.25", "", ""}},
		{"bytes stored raw", rec{Blob: []byte("Dole")}, []string{"0", "0", "Dole", ""}},
		{"named string", rec{Code: "CS"}, []string{"0", "0", "", "CS"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSpreadsheet("ID", "Score", "Blob", "Code")
			require.NoError(t, s.AddRecord(tt.record))

			for i, want := range tt.expected {
				v, err := s.CellValue(0, ColumnRef(i))
				require.NoError(t, err)
				assert.Equal(t, want, v, "column %d", i)
			}
		})
	}
}

func TestSpreadsheet_CellValue(t *testing.T) {
	s := NewSpreadsheet("First", "Last")
	require.NoError(t, s.AddRow("Amanda", "Andrews"))
	require.NoError(t, s.AddRow("Carol", "Conners"))

	v, err := s.CellValue(1, 1)
	require.NoError(t, err)
	assert.Equal(t, "Conners", v)

	tests := []struct {
		name   string
		row    int
		column ColumnRef
	}{
		{"negative row", -1, 0},
		{"row past end", 2, 0},
		{"negative column", 0, -1},
		{"column past end", 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CellValue(tt.row, tt.column)
			require.Error(t, err)

			var rowErr *RowError
			require.True(t, errors.As(err, &rowErr))
			assert.Equal(t, tt.row, rowErr.Row)
			assert.Equal(t, tt.column, rowErr.Column)
			assert.ErrorIs(t, err, ErrRowNotFound)
		})
	}
}

func TestSpreadsheet_SetColumnNamesClearsRows(t *testing.T) {
	s := NewSpreadsheet("A")
	require.NoError(t, s.AddRow("x"))

	s.SetColumnNames("B", "C")
	n, _ := s.NumRows()
	assert.Equal(t, 0, n)

	_, err := s.ColumnByName("A")
	assert.ErrorIs(t, err, ErrColumnNotFound)

	ref, err := s.ColumnByName("C")
	require.NoError(t, err)
	assert.Equal(t, ColumnRef(1), ref)
}
