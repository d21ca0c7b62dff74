package predicate

import (
	"github.com/asaidimu/go-rowsel/core/table"
)

// And selects rows selected by both of its children.
type And struct {
	left, right Predicate
}

// NewAnd combines two predicates with logical AND.
func NewAnd(left, right Predicate) *And {
	return &And{left: left, right: right}
}

// Evaluate returns true if both children are true. The right child is not
// evaluated when the left one is false or fails.
func (p *And) Evaluate(t table.Table, row int) (bool, error) {
	if p.left == nil || p.right == nil {
		return false, ErrNilPredicate
	}
	ok, err := p.left.Evaluate(t, row)
	if err != nil || !ok {
		return false, err
	}
	return p.right.Evaluate(t, row)
}

// Children returns the left and right operands.
func (p *And) Children() (Predicate, Predicate) {
	return p.left, p.right
}

func (p *And) String() string {
	return "(" + describe(p.left) + " AND " + describe(p.right) + ")"
}

// Or selects rows selected by at least one of its children.
type Or struct {
	left, right Predicate
}

// NewOr combines two predicates with logical OR.
func NewOr(left, right Predicate) *Or {
	return &Or{left: left, right: right}
}

// Evaluate returns true if either child is true. The right child is not
// evaluated when the left one is true or fails.
func (p *Or) Evaluate(t table.Table, row int) (bool, error) {
	if p.left == nil || p.right == nil {
		return false, ErrNilPredicate
	}
	ok, err := p.left.Evaluate(t, row)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	return p.right.Evaluate(t, row)
}

// Children returns the left and right operands.
func (p *Or) Children() (Predicate, Predicate) {
	return p.left, p.right
}

func (p *Or) String() string {
	return "(" + describe(p.left) + " OR " + describe(p.right) + ")"
}

// Not selects rows its child does not select.
type Not struct {
	child Predicate
}

// NewNot negates a predicate.
func NewNot(child Predicate) *Not {
	return &Not{child: child}
}

// Evaluate returns the negation of the child's result.
func (p *Not) Evaluate(t table.Table, row int) (bool, error) {
	if p.child == nil {
		return false, ErrNilPredicate
	}
	ok, err := p.child.Evaluate(t, row)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

// Child returns the negated operand.
func (p *Not) Child() Predicate {
	return p.child
}

func (p *Not) String() string {
	return "NOT " + describe(p.child)
}
