package controller

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "gooze.dev/pkg/evomut/internal/model"
)

func newTestSimpleUI() (*SimpleUI, *bytes.Buffer) {
	var out bytes.Buffer

	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	return NewSimpleUI(cmd), &out
}

func sampleMutations() []m.Mutation {
	return []m.Mutation{
		{ID: "11111111-aaaa", FilePath: "b.go", Line: 1, Column: 3, Type: m.MutationArithmetic, Original: "+", Mutated: "-"},
		{ID: "22222222-bbbb", FilePath: "a.go", Line: 2, Column: 5, Type: m.MutationBoolean, Original: "true", Mutated: "false"},
		{ID: "33333333-cccc", FilePath: "a.go", Line: 4, Column: 1, Type: m.MutationBoolean, Original: "false", Mutated: "true"},
	}
}

func TestBuildFileStats(t *testing.T) {
	stats := buildFileStats(sampleMutations())

	require.Len(t, stats, 2)
	assert.Equal(t, "a.go", stats[0].path)
	assert.Equal(t, 2, stats[0].counts[m.MutationBoolean])
	assert.Equal(t, 2, stats[0].total)
	assert.Equal(t, "b.go", stats[1].path)
	assert.Equal(t, 1, stats[1].counts[m.MutationArithmetic])
}

func TestSimpleUI_DisplayMutations(t *testing.T) {
	ui, out := newTestSimpleUI()

	require.NoError(t, ui.DisplayMutations(context.Background(), sampleMutations()))

	text := out.String()
	assert.Contains(t, text, "a.go")
	assert.Contains(t, text, "b.go")
	assert.Contains(t, text, "TOTAL FILES 2")
}

func TestSimpleUI_CanceledContext(t *testing.T) {
	ui, out := newTestSimpleUI()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, ui.Start(ctx))
	require.Error(t, ui.DisplayMutations(ctx, sampleMutations()))
	require.Error(t, ui.DisplayReport(ctx, m.Report{}))
	assert.Empty(t, out.String())
}

func TestSimpleUI_DisplayPreview(t *testing.T) {
	ui, out := newTestSimpleUI()

	previews := []Preview{{Mutation: sampleMutations()[0], Diff: "--- b.go\n+++ b.go\n"}}
	require.NoError(t, ui.DisplayPreview(context.Background(), previews))

	assert.Contains(t, out.String(), "b.go:1:3 + -> -")
	assert.Contains(t, out.String(), "1 mutation(s)")
}

func TestSimpleUI_Progress(t *testing.T) {
	ui, out := newTestSimpleUI()
	mutation := sampleMutations()[0]

	ui.GenerationStarted(0, 4)
	ui.MutationEvaluated(m.MutationResult{Mutation: mutation, Killed: true})
	ui.MutationEvaluated(m.MutationResult{Mutation: mutation})
	ui.MutationFailed(mutation, errors.New("timed out"))
	ui.GenerationCompleted(m.GenerationSummary{Generation: 0, BestFitness: 0.9, MeanFitness: 0.5})

	text := out.String()
	assert.Contains(t, text, "Generation 0: evaluating 4 individual(s)")
	assert.Contains(t, text, "11111111 (arithmetic) -> killed")
	assert.Contains(t, text, "11111111 (arithmetic) -> survived")
	assert.Contains(t, text, "skipped: timed out")
	assert.Contains(t, text, "best 0.900, mean 0.500")
}

func TestSimpleUI_DisplayReport(t *testing.T) {
	ui, out := newTestSimpleUI()
	mutations := sampleMutations()

	report := m.Report{
		Generations: []m.GenerationSummary{{Generation: 0, BestFitness: 0.9, MeanFitness: 0.4, Killed: 1, Survived: 1}},
		Results: []m.MutationResult{
			{Mutation: mutations[0], Killed: true},
			{Mutation: mutations[1], Diff: "@@ -2 +2 @@\n-true\n+false\n"},
			{Mutation: mutations[1]},
		},
		MutationScore: 0.5,
	}

	require.NoError(t, ui.DisplayReport(context.Background(), report))

	text := out.String()
	assert.Contains(t, text, "Surviving mutants")
	assert.Contains(t, text, "a.go:2:5")
	assert.Contains(t, text, "+false")
	assert.Contains(t, text, "Mutation score: 50.00%")
}

func TestNewUI(t *testing.T) {
	cmd := &cobra.Command{}

	assert.IsType(t, &SimpleUI{}, NewUI(cmd, false))
	assert.IsType(t, &TUI{}, NewUI(cmd, true))
	assert.False(t, IsTTY(nil))
}
