package domain

import (
	m "gooze.dev/pkg/evomut/internal/model"
	pkg "gooze.dev/pkg/evomut/pkg"
)

// MutationScore returns killed / (killed + survived) over the distinct
// mutations in results. A mutation evaluated more than once counts with its
// last outcome. With nothing evaluated the score is 1.
func MutationScore(results []m.MutationResult) float64 {
	outcomes := make(map[string]bool, len(results))

	for _, result := range results {
		outcomes[result.Mutation.ID] = result.Killed
	}

	return scoreFromOutcomes(outcomes)
}

func mutationScoreFromSpill(results pkg.FileSpill[m.MutationResult]) (float64, error) {
	outcomes := make(map[string]bool)

	err := results.Range(func(_ uint64, result m.MutationResult) error {
		outcomes[result.Mutation.ID] = result.Killed
		return nil
	})
	if err != nil {
		return 0, err
	}

	return scoreFromOutcomes(outcomes), nil
}

func scoreFromOutcomes(outcomes map[string]bool) float64 {
	if len(outcomes) == 0 {
		return 1
	}

	killed := 0

	for _, k := range outcomes {
		if k {
			killed++
		}
	}

	return float64(killed) / float64(len(outcomes))
}
