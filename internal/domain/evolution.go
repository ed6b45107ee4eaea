package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"gooze.dev/pkg/evomut/internal/adapter"
	m "gooze.dev/pkg/evomut/internal/model"
)

const (
	tournamentSize      = 3
	maxInitialMutations = 5
	eliteDivisor        = 5
	poolConcurrency     = 4
)

// Engine evolves populations of mutation combinations, scoring each
// individual by running the test suite against its mutations.
type Engine interface {
	// Run executes up to MaxGenerations generations and returns every
	// MutationResult produced, in generation order, unless WithStreamedResults
	// is set. Cancellation is checked between generations; the results
	// gathered so far are returned with the context error.
	Run(ctx context.Context) ([]m.MutationResult, error)
	// Summaries returns one summary per completed generation.
	Summaries() []m.GenerationSummary
	// Seed returns the seed of the engine's random source.
	Seed() int64
}

// EngineOption customizes an Engine.
type EngineOption func(*engine)

// WithSeed makes the run reproducible.
func WithSeed(seed int64) EngineOption {
	return func(e *engine) {
		e.seed = seed
	}
}

// WithFitnessEvaluator replaces the fitness function used to rank individuals.
func WithFitnessEvaluator(fitness FitnessEvaluator) EngineOption {
	return func(e *engine) {
		if fitness != nil {
			e.fitness = fitness
		}
	}
}

// WithStreamedResults stops Run from accumulating results. Callers collect
// them from Observer.MutationEvaluated instead.
func WithStreamedResults() EngineOption {
	return func(e *engine) {
		e.streamed = true
	}
}

// WithObserver registers an observer for progress notifications.
func WithObserver(observer Observer) EngineOption {
	return func(e *engine) {
		if observer != nil {
			e.observers = append(e.observers, observer)
		}
	}
}

type engine struct {
	config    m.MutationConfig
	fsAdapter adapter.SourceFSAdapter
	mutator   Mutator
	evaluator Evaluator
	fitness   FitnessEvaluator
	observers []Observer
	observer  Observer
	seed      int64
	rng       *rand.Rand
	streamed  bool

	targets   []m.Path
	sources   map[m.Path]string
	pools     map[m.Path][]m.Mutation
	all       []m.Mutation
	summaries []m.GenerationSummary
}

// NewEngine validates config and builds an Engine that owns mutator and
// evaluator for the duration of its runs.
func NewEngine(
	config m.MutationConfig,
	fsAdapter adapter.SourceFSAdapter,
	mutator Mutator,
	evaluator Evaluator,
	opts ...EngineOption,
) (Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	if fsAdapter == nil || mutator == nil || evaluator == nil {
		return nil, validationError("engine requires a filesystem adapter, a mutator and an evaluator")
	}

	e := &engine{
		config:    config,
		fsAdapter: fsAdapter,
		mutator:   mutator,
		evaluator: evaluator,
		fitness:   NewDefaultFitnessEvaluator(),
		seed:      time.Now().UnixNano(),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.rng = rand.New(rand.NewSource(e.seed))
	e.observer = Observers(e.observers...)

	return e, nil
}

func (e *engine) Seed() int64 {
	return e.seed
}

func (e *engine) Summaries() []m.GenerationSummary {
	out := make([]m.GenerationSummary, len(e.summaries))
	copy(out, e.summaries)

	return out
}

func (e *engine) Run(ctx context.Context) ([]m.MutationResult, error) {
	e.summaries = nil

	if err := e.loadPools(ctx); err != nil {
		return nil, err
	}

	population := e.initialPopulation()
	results := make([]m.MutationResult, 0)

	slog.Info("Starting evolutionary run",
		"targets", len(e.targets),
		"mutations", len(e.all),
		"population", len(population),
		"generations", e.config.MaxGenerations,
		"seed", e.seed,
	)

	for generation := 0; generation < e.config.MaxGenerations; generation++ {
		if err := ctx.Err(); err != nil {
			slog.Warn("Run canceled", "generation", generation, "error", err)
			return results, err
		}

		e.observer.GenerationStarted(generation, len(population))

		summary, err := e.evaluatePopulation(ctx, population)
		summary.Generation = generation

		if !e.streamed {
			for _, individual := range population {
				results = append(results, individual.Results...)
			}
		}

		if err != nil {
			return results, err
		}

		e.summaries = append(e.summaries, summary)
		e.observer.GenerationCompleted(summary)

		slog.Info("Generation completed",
			"generation", generation,
			"best", summary.BestFitness,
			"mean", summary.MeanFitness,
			"killed", summary.Killed,
			"survived", summary.Survived,
		)

		population = e.nextGeneration(population)
	}

	return results, nil
}

// loadPools reads every target file once and enumerates its mutations.
func (e *engine) loadPools(ctx context.Context) error {
	e.targets = uniquePaths(e.config.TargetFiles)
	e.sources = make(map[m.Path]string, len(e.targets))
	e.pools = make(map[m.Path][]m.Mutation, len(e.targets))
	e.all = nil

	sources := make([]string, len(e.targets))
	pools := make([][]m.Mutation, len(e.targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(poolConcurrency)

	for i, path := range e.targets {
		i, path := i, path

		g.Go(func() error {
			content, err := e.fsAdapter.ReadFile(gctx, path)
			if err != nil {
				slog.Error("Failed to read target file", "path", path, "error", err)
				return ioError(fmt.Sprintf("read %s", path), err)
			}

			mutations, err := e.mutator.GenerateSourceMutations(string(content), path)
			if err != nil {
				return err
			}

			sources[i] = string(content)
			pools[i] = mutations

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for i, path := range e.targets {
		e.sources[path] = sources[i]
		e.pools[path] = pools[i]
		e.all = append(e.all, pools[i]...)
	}

	if len(e.all) == 0 {
		slog.Error("No mutations generated", "targets", e.targets)
		return ErrNoMutations
	}

	return nil
}

// initialPopulation samples between 1 and min(5, pool size) distinct
// mutations per individual.
func (e *engine) initialPopulation() []m.Individual {
	population := make([]m.Individual, e.config.PopulationSize)
	limit := min(maxInitialMutations, len(e.all))

	for i := range population {
		count := 1 + e.rng.Intn(limit)
		mutations := make([]m.Mutation, 0, count)

		for _, idx := range e.rng.Perm(len(e.all))[:count] {
			mutations = append(mutations, e.all[idx])
		}

		population[i] = m.Individual{Mutations: mutations}
	}

	return population
}

// evaluatePopulation scores every individual in population order. Timeouts
// and validation failures skip the mutation; any other failure aborts.
func (e *engine) evaluatePopulation(ctx context.Context, population []m.Individual) (m.GenerationSummary, error) {
	var summary m.GenerationSummary

	for i := range population {
		individual := &population[i]
		individual.Results = nil
		individual.Fitness = 0

		var total float64

		for _, mutation := range individual.Mutations {
			result, err := e.evaluateOne(ctx, mutation)
			if err != nil {
				if skippable(err) {
					summary.Skipped++

					e.observer.MutationFailed(mutation, err)
					slog.Warn("Skipping mutation", "mutation", mutation.String(), "error", err)

					continue
				}

				return summary, err
			}

			if result.Killed {
				summary.Killed++
			} else {
				summary.Survived++
			}

			total += e.fitness.CalculateFitness(result)
			individual.Results = append(individual.Results, result)

			e.observer.MutationEvaluated(result)
		}

		if len(individual.Mutations) > 0 {
			individual.Fitness = total / float64(len(individual.Mutations))
		}

		summary.MeanFitness += individual.Fitness
		if i == 0 || individual.Fitness > summary.BestFitness {
			summary.BestFitness = individual.Fitness
		}
	}

	if len(population) > 0 {
		summary.MeanFitness /= float64(len(population))
	}

	return summary, nil
}

func (e *engine) evaluateOne(ctx context.Context, mutation m.Mutation) (m.MutationResult, error) {
	source, ok := e.sources[mutation.FilePath]
	if !ok {
		return m.MutationResult{}, validationError("mutation targets unknown file %s", mutation.FilePath)
	}

	mutated, err := e.mutator.ApplyMutation(source, mutation)
	if err != nil {
		return m.MutationResult{}, err
	}

	return e.evaluator.EvaluateMutation(ctx, mutation, mutated)
}

// nextGeneration ranks population and breeds a new one of the same size.
func (e *engine) nextGeneration(population []m.Individual) []m.Individual {
	ranked := make([]m.Individual, len(population))
	copy(ranked, population)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Fitness > ranked[j].Fitness
	})

	next := make([]m.Individual, 0, len(ranked))

	for _, elite := range ranked[:len(ranked)/eliteDivisor] {
		kept := elite.Clone()
		kept.Fitness = elite.Fitness
		next = append(next, kept)
	}

	for len(next) < len(ranked) {
		var child m.Individual

		if e.rng.Float64() < e.config.CrossoverRate {
			child = e.crossover(e.tournament(ranked), e.tournament(ranked))
		} else {
			child = e.mutate(e.tournament(ranked))
		}

		next = append(next, child)
	}

	return next
}

// tournament returns the fittest of three uniformly drawn individuals.
func (e *engine) tournament(population []m.Individual) m.Individual {
	best := population[e.rng.Intn(len(population))]

	for i := 1; i < tournamentSize; i++ {
		candidate := population[e.rng.Intn(len(population))]
		if candidate.Fitness > best.Fitness {
			best = candidate
		}
	}

	return best
}

// crossover draws each parent mutation with probability 1/2, keeping one
// copy per mutation ID.
func (e *engine) crossover(parent1, parent2 m.Individual) m.Individual {
	child := m.Individual{}

	for _, mutation := range parent1.Mutations {
		if e.rng.Float64() < 0.5 && !child.Contains(mutation.ID) {
			child.Mutations = append(child.Mutations, mutation)
		}
	}

	for _, mutation := range parent2.Mutations {
		if e.rng.Float64() < 0.5 && !child.Contains(mutation.ID) {
			child.Mutations = append(child.Mutations, mutation)
		}
	}

	if len(child.Mutations) == 0 && len(parent1.Mutations) > 0 {
		child.Mutations = append(child.Mutations, parent1.Mutations[0])
	}

	return child
}

// mutate may add a mutation drawn from a random target file's pool and may
// drop one of the parent's mutations.
func (e *engine) mutate(parent m.Individual) m.Individual {
	child := parent.Clone()

	if e.rng.Float64() < e.config.MutationRate {
		pool := e.pools[e.targets[e.rng.Intn(len(e.targets))]]
		if len(pool) > 0 {
			candidate := pool[e.rng.Intn(len(pool))]
			if !child.Contains(candidate.ID) {
				child.Mutations = append(child.Mutations, candidate)
			}
		}
	}

	if len(child.Mutations) > 1 && e.rng.Float64() < e.config.MutationRate {
		idx := e.rng.Intn(len(child.Mutations))
		child.Mutations = append(child.Mutations[:idx], child.Mutations[idx+1:]...)
	}

	return child
}

// skippable reports whether a failed evaluation only skips its mutation.
// Anything touching file integrity stays fatal.
func skippable(err error) bool {
	if errors.Is(err, ErrIO) {
		return false
	}

	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrValidation)
}

func uniquePaths(paths []m.Path) []m.Path {
	seen := make(map[m.Path]struct{}, len(paths))
	out := make([]m.Path, 0, len(paths))

	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}

		seen[p] = struct{}{}
		out = append(out, p)
	}

	return out
}
