package mutagens

import (
	"strings"

	m "gooze.dev/pkg/evomut/internal/model"
)

var logicalTable = []replacement{
	{op: "&&", replacements: []string{"||"}},
	{op: "||", replacements: []string{"&&"}},
}

// LogicalOperator swaps && and ||. Unlike the other operators it reports every
// occurrence on a line, not only the first.
type LogicalOperator struct{}

// Name implements Operator.
func (LogicalOperator) Name() string {
	return string(m.MutationLogical)
}

// Mutate implements Operator.
func (LogicalOperator) Mutate(code string, path m.Path) ([]m.Mutation, error) {
	var mutations []m.Mutation

	for idx, line := range SplitLines(code) {
		for _, entry := range logicalTable {
			start := 0

			for {
				col := strings.Index(line[start:], entry.op)
				if col < 0 {
					break
				}

				actual := start + col
				for _, mutated := range entry.replacements {
					mutations = append(mutations, newMutation(path, idx+1, actual+1, m.MutationLogical, entry.op, mutated))
				}

				start = actual + len(entry.op)
			}
		}
	}

	return mutations, nil
}
