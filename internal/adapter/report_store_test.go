package adapter

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "gooze.dev/pkg/evomut/internal/model"
)

func sampleReport(finished time.Time) m.Report {
	mutation := m.Mutation{
		ID:       "a1",
		FilePath: "main.go",
		Line:     3,
		Column:   9,
		Type:     m.MutationArithmetic,
		Original: "+",
		Mutated:  "-",
	}

	return m.Report{
		Config:     m.DefaultMutationConfig(),
		Seed:       42,
		StartedAt:  finished.Add(-time.Minute),
		FinishedAt: finished,
		Generations: []m.GenerationSummary{
			{Generation: 0, BestFitness: 0.9, MeanFitness: 0.5, Killed: 3, Survived: 1},
		},
		Results: []m.MutationResult{
			{Mutation: mutation, Killed: true, Fitness: 0.9, TestResults: []m.TestResult{{Name: "TestAdd", Passed: false}}},
		},
		MutationScore: 0.75,
	}
}

func TestJSONReportStore_SaveAndLoad(t *testing.T) {
	store := NewJSONReportStore()
	dir := m.Path(filepath.Join(t.TempDir(), "reports"))

	report := sampleReport(time.Unix(1700000000, 0).UTC())

	path, err := store.SaveReport(dir, report)
	require.NoError(t, err)
	assert.Equal(t, "report-1700000000.json", filepath.Base(string(path)))

	loaded, err := store.LoadReport(path)
	require.NoError(t, err)
	assert.Equal(t, report.Seed, loaded.Seed)
	assert.Equal(t, report.Results, loaded.Results)
	assert.Equal(t, report.Generations, loaded.Generations)
	assert.True(t, report.FinishedAt.Equal(loaded.FinishedAt))

	second, err := store.SaveReport(dir, report)
	require.NoError(t, err)
	assert.Equal(t, "report-1700000000-1.json", filepath.Base(string(second)))

	listed, err := store.ListReports(dir)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestJSONReportStore_LoadLatest(t *testing.T) {
	store := NewJSONReportStore()
	dir := m.Path(t.TempDir())

	t.Run("empty directory", func(t *testing.T) {
		_, _, err := store.LoadLatest(dir)
		assert.True(t, errors.Is(err, ErrNoReports))
	})

	t.Run("missing directory", func(t *testing.T) {
		_, _, err := store.LoadLatest(m.Path(filepath.Join(string(dir), "missing")))
		assert.True(t, errors.Is(err, ErrNoReports))
	})

	t.Run("newest by modification time", func(t *testing.T) {
		oldPath, err := store.SaveReport(dir, sampleReport(time.Unix(1000, 0)))
		require.NoError(t, err)

		newer := sampleReport(time.Unix(2000, 0))
		newer.Seed = 7
		newPath, err := store.SaveReport(dir, newer)
		require.NoError(t, err)

		past := time.Now().Add(-time.Hour)
		require.NoError(t, os.Chtimes(string(oldPath), past, past))

		latest, path, err := store.LoadLatest(dir)
		require.NoError(t, err)
		assert.Equal(t, newPath, path)
		assert.Equal(t, int64(7), latest.Seed)
	})

	t.Run("corrupt report", func(t *testing.T) {
		corrupt := filepath.Join(string(dir), "report-9999999999.json")
		require.NoError(t, os.WriteFile(corrupt, []byte("{not json"), 0o600))

		future := time.Now().Add(time.Hour)
		require.NoError(t, os.Chtimes(corrupt, future, future))

		_, _, err := store.LoadLatest(dir)
		assert.Error(t, err)
	})
}
