package model

import "time"

// GenerationSummary describes one evaluated generation.
type GenerationSummary struct {
	Generation  int     `json:"generation"`
	BestFitness float64 `json:"best_fitness"`
	MeanFitness float64 `json:"mean_fitness"`
	Killed      int     `json:"killed"`
	Survived    int     `json:"survived"`
	Skipped     int     `json:"skipped"`
}

// Report is the persisted record of one evolutionary run. Results are kept in
// generation order, duplicates across generations included.
type Report struct {
	Config        MutationConfig      `json:"config"`
	Seed          int64               `json:"seed"`
	StartedAt     time.Time           `json:"started_at"`
	FinishedAt    time.Time           `json:"finished_at"`
	Generations   []GenerationSummary `json:"generations"`
	Results       []MutationResult    `json:"results"`
	MutationScore float64             `json:"mutation_score"`
}

// Survivors returns the results of mutants that no test detected, one per
// mutation ID, in first-seen order.
func (r Report) Survivors() []MutationResult {
	seen := make(map[string]struct{})
	survivors := make([]MutationResult, 0)

	for _, result := range r.Results {
		if result.Killed {
			continue
		}

		if _, ok := seen[result.Mutation.ID]; ok {
			continue
		}

		seen[result.Mutation.ID] = struct{}{}
		survivors = append(survivors, result)
	}

	return survivors
}
