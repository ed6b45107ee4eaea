package mutagens

import (
	"fmt"

	m "gooze.dev/pkg/evomut/internal/model"
)

// Composite aggregates operators into one enumeration pass. Results are
// concatenated in registration order without deduplication.
type Composite struct {
	operators []Operator
}

// DefaultOperators returns the built-in operators in registration order.
func DefaultOperators() []Operator {
	return []Operator{
		ArithmeticOperator{},
		ComparisonOperator{},
		BooleanLiteral{},
		LogicalOperator{},
	}
}

// NewComposite builds a Composite over operators, or over DefaultOperators
// when none are given.
func NewComposite(operators ...Operator) *Composite {
	if len(operators) == 0 {
		operators = DefaultOperators()
	}

	return &Composite{operators: operators}
}

// Name implements Operator.
func (c *Composite) Name() string {
	return "composite"
}

// Operators returns the registered operators.
func (c *Composite) Operators() []Operator {
	out := make([]Operator, len(c.operators))
	copy(out, c.operators)

	return out
}

// Mutate implements Operator. The first operator error aborts the whole
// enumeration and no partial result is returned.
func (c *Composite) Mutate(code string, path m.Path) ([]m.Mutation, error) {
	all := make([]m.Mutation, 0)

	for _, op := range c.operators {
		mutations, err := op.Mutate(code, path)
		if err != nil {
			return nil, fmt.Errorf("%s operator: %w", op.Name(), err)
		}

		all = append(all, mutations...)
	}

	return all, nil
}
