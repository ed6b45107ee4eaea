package controller

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	m "gooze.dev/pkg/evomut/internal/model"
)

// SimpleUI implements UI by writing plain text to the command output.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, _ ...StartOption) error {
	return ctx.Err()
}

// Close finalizes the UI.
func (s *SimpleUI) Close(_ context.Context) {}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(_ context.Context) {}

// DisplayMutations prints per-file mutation counts.
func (s *SimpleUI) DisplayMutations(ctx context.Context, mutations []m.Mutation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderMutationTable(mutations))

	return nil
}

// DisplayPreview prints each mutation followed by its diff.
func (s *SimpleUI) DisplayPreview(ctx context.Context, previews []Preview) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, p := range previews {
		s.printf("%s [%s]\n%s\n", p.Mutation.String(), p.Mutation.Type, p.Diff)
	}

	s.printf("%d mutation(s)\n", len(previews))

	return nil
}

// DisplayRunInfo prints the run parameters.
func (s *SimpleUI) DisplayRunInfo(ctx context.Context, config m.MutationConfig, seed int64) {
	if ctx.Err() != nil {
		return
	}

	s.printf("Evolving %d individual(s) over %d generation(s) for %d file(s) (seed %d)\n",
		config.PopulationSize, config.MaxGenerations, len(config.TargetFiles), seed)
}

// DisplayReport prints generation summaries, surviving mutants and the score.
func (s *SimpleUI) DisplayReport(ctx context.Context, report m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderGenerationTable(report.Generations))

	survivors := report.Survivors()
	if len(survivors) > 0 {
		s.printf("\nSurviving mutants:\n%s", renderSurvivorTable(survivors))
		s.printf("\n%s", renderDiffs(survivors))
	}

	s.printf("Mutation score: %s\n", formatScore(report.MutationScore))

	return nil
}

// GenerationStarted implements UI.
func (s *SimpleUI) GenerationStarted(generation int, population int) {
	s.printf("Generation %d: evaluating %d individual(s)\n", generation, population)
}

// MutationEvaluated implements UI.
func (s *SimpleUI) MutationEvaluated(result m.MutationResult) {
	status := "survived"
	if result.Killed {
		status = "killed"
	}

	s.printf("  %s (%s) -> %s\n", result.Mutation.ShortID(), result.Mutation.Type, status)
}

// MutationFailed implements UI.
func (s *SimpleUI) MutationFailed(mutation m.Mutation, err error) {
	s.printf("  %s (%s) -> skipped: %v\n", mutation.ShortID(), mutation.Type, err)
}

// GenerationCompleted implements UI.
func (s *SimpleUI) GenerationCompleted(summary m.GenerationSummary) {
	s.printf("Generation %d done: best %.3f, mean %.3f\n", summary.Generation, summary.BestFitness, summary.MeanFitness)
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
