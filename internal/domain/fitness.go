package domain

import m "gooze.dev/pkg/evomut/internal/model"

// FitnessEvaluator scores a completed mutation result. The evolutionary
// engine ranks individuals with it.
type FitnessEvaluator interface {
	CalculateFitness(result m.MutationResult) float64
}

// DefaultFitnessEvaluator rewards killed mutants, more so when they are
// detected quickly and by many tests. Surviving mutants get a flat 0.2.
type DefaultFitnessEvaluator struct{}

// NewDefaultFitnessEvaluator returns the default fitness function.
func NewDefaultFitnessEvaluator() FitnessEvaluator {
	return DefaultFitnessEvaluator{}
}

// CalculateFitness implements FitnessEvaluator.
func (DefaultFitnessEvaluator) CalculateFitness(result m.MutationResult) float64 {
	if !result.Killed {
		return 0.2
	}

	var timeBonus float64

	switch {
	case result.ExecutionTimeMs < 1000:
		timeBonus = 0.2
	case result.ExecutionTimeMs < 5000:
		timeBonus = 0.1
	}

	return min(0.7+timeBonus+0.1*result.FailureRate(), 1.0)
}

// mutationFitness is the score the evaluator attaches to each result.
func mutationFitness(tests []m.TestResult, killed bool) float64 {
	if len(tests) == 0 {
		return 0
	}

	if !killed {
		return 0.3 * min(float64(len(tests))/100, 1)
	}

	var total float64
	for _, tr := range tests {
		total += float64(tr.DurationMs)
	}

	durationScore := 1 - min(total/float64(len(tests))/1000, 1)
	failed := 0

	for _, tr := range tests {
		if !tr.Passed {
			failed++
		}
	}

	return 0.5 + 0.3*durationScore + 0.2*float64(failed)/float64(len(tests))
}
