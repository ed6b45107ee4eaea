package cmd

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	m "gooze.dev/pkg/evomut/internal/model"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "evomut", configBaseName)
	assert.Equal(t, "evomut.yaml", configFileName)
	assert.Equal(t, ".", configFolderPath)
	assert.Equal(t, "output", outputFlagName)
	assert.Equal(t, ".evomut-reports", defaultReportsDir)
	assert.Equal(t, "EVOMUT", envPrefix)
	assert.Equal(t, ".evomut.log", defaultLogFilename)
}

func TestConfigVersionConstants(t *testing.T) {
	assert.Equal(t, "version", configVersionKey)
	assert.Equal(t, 1, currentConfigVersion)
}

func TestEvolutionConfig_Defaults(t *testing.T) {
	cfg := evolutionConfig()

	assert.Equal(t, m.DefaultMaxGenerations, cfg.MaxGenerations)
	assert.Equal(t, m.DefaultPopulationSize, cfg.PopulationSize)
	assert.InDelta(t, m.DefaultMutationRate, cfg.MutationRate, 1e-9)
	assert.InDelta(t, m.DefaultCrossoverRate, cfg.CrossoverRate, 1e-9)
	assert.Equal(t, m.DefaultTestTimeout, cfg.TestTimeout)
	assert.Empty(t, cfg.TargetFiles)
	assert.NoError(t, cfg.Validate())
}

func TestTestCommand(t *testing.T) {
	assert.Equal(t, []string{"go", "test", "-v", "./..."}, testCommand())

	t.Run("string value is split on whitespace", func(t *testing.T) {
		t.Setenv("EVOMUT_RUN_COMMAND", "cargo test --quiet")

		assert.Equal(t, []string{"cargo", "test", "--quiet"}, testCommand())
	})
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{"", slog.LevelWarn},
		{"debug", slog.LevelDebug},
		{" INFO ", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"-4", slog.LevelDebug},
		{"loud", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSlogLevel(tt.value, slog.LevelWarn))
		})
	}
}
