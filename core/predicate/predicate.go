// Package predicate provides composable row-selection criteria. A predicate
// decides whether one row of a table.Table satisfies a condition. Leaf
// predicates read a single column; And, Or and Not combine other predicates.
//
// Predicates are immutable once built. A tree can be evaluated against any
// table whose column layout matches the one it was built from, and from
// several goroutines at once as long as the table allows concurrent reads.
package predicate

import (
	"errors"
	"fmt"

	"github.com/asaidimu/go-rowsel/core/table"
)

// ErrNilPredicate is returned when a composite is evaluated with a nil child.
var ErrNilPredicate = errors.New("predicate: nil child predicate")

// Predicate decides whether a row should be selected.
type Predicate interface {
	// Evaluate returns true if row of t satisfies the predicate. Errors from
	// the table are returned as-is.
	Evaluate(t table.Table, row int) (bool, error)
}

// Func adapts an ordinary function to the Predicate interface.
type Func func(t table.Table, row int) (bool, error)

// Evaluate calls f(t, row).
func (f Func) Evaluate(t table.Table, row int) (bool, error) {
	return f(t, row)
}

func (f Func) String() string {
	return "func"
}

// describe renders p for String methods of composites.
func describe(p Predicate) string {
	if p == nil {
		return "<nil>"
	}
	if s, ok := p.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", p)
}
