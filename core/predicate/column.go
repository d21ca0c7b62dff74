package predicate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/asaidimu/go-rowsel/core/table"
)

// ValueMatcher is the string-level check behind a column predicate.
type ValueMatcher interface {
	MatchValue(value string) bool
}

// ValueMatcherFunc adapts an ordinary function to the ValueMatcher interface.
type ValueMatcherFunc func(value string) bool

// MatchValue calls f(value).
func (f ValueMatcherFunc) MatchValue(value string) bool {
	return f(value)
}

// ColumnPredicate selects rows by testing the value of a single column.
// The column name is resolved once, when the predicate is built.
type ColumnPredicate struct {
	column  string
	ref     table.ColumnRef
	matcher ValueMatcher
}

// NewColumnPredicate resolves column against s and returns a predicate that
// applies m to that column's value. It fails with the table's
// *table.LookupError if the column does not exist.
func NewColumnPredicate(s table.Schema, column string, m ValueMatcher) (*ColumnPredicate, error) {
	if m == nil {
		return nil, fmt.Errorf("column predicate on '%s': matcher cannot be nil", column)
	}
	ref, err := s.ColumnByName(column)
	if err != nil {
		return nil, fmt.Errorf("column predicate on '%s': %w", column, err)
	}
	return &ColumnPredicate{column: column, ref: ref, matcher: m}, nil
}

// Evaluate reads the cell at (row, column) and applies the matcher to it.
// A nil *ColumnPredicate, as left behind by a failed constructor, returns
// ErrNilPredicate.
func (p *ColumnPredicate) Evaluate(t table.Table, row int) (bool, error) {
	if p == nil {
		return false, ErrNilPredicate
	}
	value, err := t.CellValue(row, p.ref)
	if err != nil {
		return false, err
	}
	return p.MatchValue(value), nil
}

// MatchValue applies the matcher to a value directly, without a table.
func (p *ColumnPredicate) MatchValue(value string) bool {
	return p.matcher.MatchValue(value)
}

// Column returns the column name the predicate was built with.
func (p *ColumnPredicate) Column() string {
	return p.column
}

// Ref returns the resolved column reference.
func (p *ColumnPredicate) Ref() table.ColumnRef {
	return p.ref
}

// Matcher returns the value matcher.
func (p *ColumnPredicate) Matcher() ValueMatcher {
	return p.matcher
}

func (p *ColumnPredicate) String() string {
	if p == nil {
		return "<nil>"
	}
	if s, ok := p.matcher.(fmt.Stringer); ok {
		return p.column + " " + s.String()
	}
	return p.column + " matches"
}

// Substring matches values that contain the term as a contiguous substring.
// Matching is case-sensitive and byte-exact. The empty term matches every value.
type Substring string

// MatchValue reports whether value contains s.
func (s Substring) MatchValue(value string) bool {
	return strings.Contains(value, string(s))
}

func (s Substring) String() string {
	return "contains " + strconv.Quote(string(s))
}

// Exact matches values equal to the term.
type Exact string

// MatchValue reports whether value equals e.
func (e Exact) MatchValue(value string) bool {
	return value == string(e)
}

func (e Exact) String() string {
	return "equals " + strconv.Quote(string(e))
}

// Prefix matches values that begin with the term. The empty term matches every value.
type Prefix string

// MatchValue reports whether value begins with p.
func (p Prefix) MatchValue(value string) bool {
	return strings.HasPrefix(value, string(p))
}

func (p Prefix) String() string {
	return "startswith " + strconv.Quote(string(p))
}

// Suffix matches values that end with the term. The empty term matches every value.
type Suffix string

// MatchValue reports whether value ends with s.
func (s Suffix) MatchValue(value string) bool {
	return strings.HasSuffix(value, string(s))
}

func (s Suffix) String() string {
	return "endswith " + strconv.Quote(string(s))
}

// NewContains returns a predicate selecting rows whose column value contains
// term. An empty term selects every row.
func NewContains(s table.Schema, column, term string) (*ColumnPredicate, error) {
	return NewColumnPredicate(s, column, Substring(term))
}

// NewEquals returns a predicate selecting rows whose column value equals term.
func NewEquals(s table.Schema, column, term string) (*ColumnPredicate, error) {
	return NewColumnPredicate(s, column, Exact(term))
}

// NewStartsWith returns a predicate selecting rows whose column value begins with term.
func NewStartsWith(s table.Schema, column, term string) (*ColumnPredicate, error) {
	return NewColumnPredicate(s, column, Prefix(term))
}

// NewEndsWith returns a predicate selecting rows whose column value ends with term.
func NewEndsWith(s table.Schema, column, term string) (*ColumnPredicate, error) {
	return NewColumnPredicate(s, column, Suffix(term))
}
