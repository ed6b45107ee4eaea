package adapter

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	m "gooze.dev/pkg/evomut/internal/model"
)

const metricsNamespace = "evomut"

// MetricsRecorder exports run progress as Prometheus metrics on a private
// registry. It satisfies the domain observer contract and can be dumped to a
// node_exporter textfile once the run finishes.
type MetricsRecorder struct {
	registry *prometheus.Registry

	generations    prometheus.Counter
	evaluations    *prometheus.CounterVec
	failures       prometheus.Counter
	fitness        prometheus.Histogram
	duration       prometheus.Histogram
	bestFitness    prometheus.Gauge
	meanFitness    prometheus.Gauge
	populationSize prometheus.Gauge
}

// NewMetricsRecorder registers the run metrics on a fresh registry.
func NewMetricsRecorder() *MetricsRecorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &MetricsRecorder{
		registry: reg,
		generations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "generations_total",
			Help:      "Number of completed generations.",
		}),
		evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "mutations_evaluated_total",
			Help:      "Mutations evaluated against the test suite, by outcome.",
		}, []string{"outcome", "type"}),
		failures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "mutation_evaluation_failures_total",
			Help:      "Mutations skipped because evaluation failed or timed out.",
		}),
		fitness: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "mutation_fitness",
			Help:      "Fitness assigned to evaluated mutations.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "test_run_duration_seconds",
			Help:      "Wall time of one test suite run against a mutant.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		bestFitness: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "generation_best_fitness",
			Help:      "Best individual fitness of the last completed generation.",
		}),
		meanFitness: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "generation_mean_fitness",
			Help:      "Mean individual fitness of the last completed generation.",
		}),
		populationSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "population_size",
			Help:      "Individuals in the current generation.",
		}),
	}
}

// Registry returns the registry holding the run metrics.
func (r *MetricsRecorder) Registry() *prometheus.Registry {
	return r.registry
}

// GenerationStarted records the population size of a new generation.
func (r *MetricsRecorder) GenerationStarted(_ int, population int) {
	r.populationSize.Set(float64(population))
}

// MutationEvaluated records one evaluated mutant.
func (r *MetricsRecorder) MutationEvaluated(result m.MutationResult) {
	outcome := "survived"
	if result.Killed {
		outcome = "killed"
	}

	r.evaluations.WithLabelValues(outcome, string(result.Mutation.Type)).Inc()
	r.fitness.Observe(result.Fitness)
	r.duration.Observe(float64(result.ExecutionTimeMs) / 1000)
}

// MutationFailed records a mutant that could not be evaluated.
func (r *MetricsRecorder) MutationFailed(_ m.Mutation, _ error) {
	r.failures.Inc()
}

// GenerationCompleted records the fitness summary of a generation.
func (r *MetricsRecorder) GenerationCompleted(summary m.GenerationSummary) {
	r.generations.Inc()
	r.bestFitness.Set(summary.BestFitness)
	r.meanFitness.Set(summary.MeanFitness)
}

// WriteTextfile writes the current metric values in the Prometheus text
// exposition format.
func (r *MetricsRecorder) WriteTextfile(path m.Path) error {
	if err := prometheus.WriteToTextfile(string(path), r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}

	return nil
}
