package model

// TestResult is the outcome of one test case. DurationMs is 0 when the test
// tool did not report a duration.
type TestResult struct {
	Name       string `json:"name"`
	Passed     bool   `json:"passed"`
	Error      string `json:"error,omitempty"`
	DurationMs uint64 `json:"duration_ms"`
}

// MutationResult records running the whole suite against one mutated file.
type MutationResult struct {
	Mutation        Mutation     `json:"mutation"`
	Killed          bool         `json:"killed"`
	TestResults     []TestResult `json:"test_results"`
	Fitness         float64      `json:"fitness"`
	ExecutionTimeMs uint64       `json:"execution_time_ms"`
	Diff            string       `json:"diff,omitempty"`
}

// FailedTests returns how many test results did not pass.
func (r MutationResult) FailedTests() int {
	failed := 0

	for _, tr := range r.TestResults {
		if !tr.Passed {
			failed++
		}
	}

	return failed
}

// FailureRate returns the fraction of failed tests, 0 when there are none.
func (r MutationResult) FailureRate() float64 {
	if len(r.TestResults) == 0 {
		return 0
	}

	return float64(r.FailedTests()) / float64(len(r.TestResults))
}

// Individual is one candidate mutation combination in the evolutionary
// population. Fitness is the mean score of its members, each evaluated in
// isolation against the original source.
type Individual struct {
	Mutations []Mutation
	Fitness   float64
	Results   []MutationResult
}

// Clone returns a deep copy of the individual's mutation list with fitness and
// results reset.
func (in Individual) Clone() Individual {
	mutations := make([]Mutation, len(in.Mutations))
	copy(mutations, in.Mutations)

	return Individual{Mutations: mutations}
}

// Contains reports whether the individual already holds a mutation with id.
func (in Individual) Contains(id string) bool {
	for _, mu := range in.Mutations {
		if mu.ID == id {
			return true
		}
	}

	return false
}
