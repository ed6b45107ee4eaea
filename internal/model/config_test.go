package model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutationConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*MutationConfig)
		wantErr bool
	}{
		{"defaults", func(*MutationConfig) {}, false},
		{"zero generations", func(c *MutationConfig) { c.MaxGenerations = 0 }, false},
		{"rates at the bounds", func(c *MutationConfig) { c.MutationRate, c.CrossoverRate = 0, 1 }, false},
		{"negative generations", func(c *MutationConfig) { c.MaxGenerations = -1 }, true},
		{"empty population", func(c *MutationConfig) { c.PopulationSize = 0 }, true},
		{"mutation rate above one", func(c *MutationConfig) { c.MutationRate = 1.01 }, true},
		{"negative crossover rate", func(c *MutationConfig) { c.CrossoverRate = -0.5 }, true},
		{"zero timeout", func(c *MutationConfig) { c.TestTimeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultMutationConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
}

func TestMutationConfig_Timeout(t *testing.T) {
	cfg := DefaultMutationConfig()
	assert.Equal(t, 30*time.Second, cfg.Timeout())
}

func TestConfigRoundTrip(t *testing.T) {
	cfg := MutationConfig{
		TargetFiles:    []Path{"calc.go", "internal/sub/extra.go"},
		MaxGenerations: 7,
		PopulationSize: 12,
		MutationRate:   0.25,
		CrossoverRate:  0.6,
		TestTimeout:    45,
	}

	data, err := EncodeConfig(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "population_size: 12")

	decoded, err := DecodeConfig(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, decoded)
}

func TestDecodeConfig_MissingFieldsKeepDefaults(t *testing.T) {
	cfg, err := DecodeConfig([]byte("population_size: 4\n"))
	require.NoError(t, err)

	want := DefaultMutationConfig()
	want.PopulationSize = 4
	assert.Equal(t, want, cfg)

	_, err = DecodeConfig([]byte("population_size: [1\n"))
	require.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	path := Path(filepath.Join(t.TempDir(), "run.yaml"))

	cfg := DefaultMutationConfig()
	cfg.TargetFiles = []Path{"calc.go"}
	require.NoError(t, SaveConfigFile(path, cfg))

	loaded, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	t.Run("invalid values are rejected", func(t *testing.T) {
		bad := Path(filepath.Join(t.TempDir(), "bad.yaml"))
		require.NoError(t, os.WriteFile(string(bad), []byte("population_size: 0\n"), 0o600))

		_, err := LoadConfigFile(bad)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidConfig))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfigFile(Path(filepath.Join(t.TempDir(), "none.yaml")))
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})
}
