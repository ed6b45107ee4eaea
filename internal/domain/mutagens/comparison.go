package mutagens

import (
	m "gooze.dev/pkg/evomut/internal/model"
)

// Patterns are searched in this order; "<" also matches inside "<=".
var comparisonTable = []replacement{
	{op: "==", replacements: []string{"!=", "<", ">", "<=", ">="}},
	{op: "!=", replacements: []string{"==", "<", ">", "<=", ">="}},
	{op: "<=", replacements: []string{"<", ">=", ">", "==", "!="}},
	{op: ">=", replacements: []string{">", "<=", "<", "==", "!="}},
	{op: "<", replacements: []string{"<=", ">", ">=", "==", "!="}},
	{op: ">", replacements: []string{">=", "<", "<=", "==", "!="}},
}

// ComparisonOperator rewrites each comparison operator to the remaining ones.
type ComparisonOperator struct{}

// Name implements Operator.
func (ComparisonOperator) Name() string {
	return string(m.MutationComparison)
}

// Mutate implements Operator.
func (ComparisonOperator) Mutate(code string, path m.Path) ([]m.Mutation, error) {
	return firstMatchMutations(code, path, m.MutationComparison, comparisonTable), nil
}
