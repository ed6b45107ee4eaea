// Package controller provides output adapters for displaying mutation testing results.
package controller

import (
	"context"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	m "gooze.dev/pkg/evomut/internal/model"
)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	generations int
}

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// WithGenerations sets the number of generations the run will go through, used
// to size progress displays.
func WithGenerations(n int) StartOption {
	return func(c *StartConfig) {
		c.generations = n
	}
}

// Preview pairs a mutation with the unified diff of its mutant.
type Preview struct {
	Mutation m.Mutation
	Diff     string
}

// UI defines how mutation listings, previews, run progress and reports are
// presented. The progress methods match the engine observer contract, so a UI
// can be registered directly as an observer.
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish
	DisplayMutations(ctx context.Context, mutations []m.Mutation) error
	DisplayPreview(ctx context.Context, previews []Preview) error
	DisplayRunInfo(ctx context.Context, config m.MutationConfig, seed int64)
	DisplayReport(ctx context.Context, report m.Report) error

	GenerationStarted(generation int, population int)
	MutationEvaluated(result m.MutationResult)
	MutationFailed(mutation m.Mutation, err error)
	GenerationCompleted(summary m.GenerationSummary)
}

// NewUI returns the interactive UI when useTTY is set, the plain one otherwise.
func NewUI(cmd *cobra.Command, useTTY bool) UI {
	if useTTY {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	if f == nil {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
