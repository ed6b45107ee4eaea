package domain

import (
	"slices"
	"strings"

	m "gooze.dev/pkg/evomut/internal/model"
)

// mutationPriority orders mutation types by how likely tests are to catch
// them; lower values are evaluated first.
var mutationPriority = map[m.MutationType]int{
	m.MutationBoolean:         1,
	m.MutationComparison:      2,
	m.MutationLogical:         3,
	m.MutationArithmetic:      4,
	m.MutationReturnValue:     5,
	m.MutationConditional:     6,
	m.MutationNumericConstant: 7,
	m.MutationFunctionCall:    8,
}

// unknownPriority sorts unrecognized types last.
const unknownPriority = 9

// MutationFilter post-processes generated mutation lists. It holds no state.
type MutationFilter struct{}

// FilterEquivalent drops mutations predicted to be behaviorally equivalent to
// the original source.
func (MutationFilter) FilterEquivalent(mutations []m.Mutation) []m.Mutation {
	kept := make([]m.Mutation, 0, len(mutations))

	for _, mutation := range mutations {
		if isLikelyEquivalent(mutation) {
			continue
		}

		kept = append(kept, mutation)
	}

	return kept
}

// Prioritize returns a copy of mutations stable-sorted by type priority.
func (MutationFilter) Prioritize(mutations []m.Mutation) []m.Mutation {
	sorted := slices.Clone(mutations)
	slices.SortStableFunc(sorted, func(a, b m.Mutation) int {
		return Priority(a.Type) - Priority(b.Type)
	})

	return sorted
}

// Priority returns the evaluation priority of a mutation type.
func Priority(mutationType m.MutationType) int {
	if p, ok := mutationPriority[mutationType]; ok {
		return p
	}

	return unknownPriority
}

// isLikelyEquivalent is intentionally narrow: only a "*" to "/" rewrite whose
// original text carries a zero is considered, and every other mutation is kept.
func isLikelyEquivalent(mutation m.Mutation) bool {
	if mutation.Type == m.MutationArithmetic {
		return mutation.Original == "*" && mutation.Mutated == "/" && strings.Contains(mutation.Original, "0")
	}

	return false
}
