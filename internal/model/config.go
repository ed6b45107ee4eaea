package model

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied by DefaultMutationConfig.
const (
	DefaultMaxGenerations = 10
	DefaultPopulationSize = 20
	DefaultMutationRate   = 0.1
	DefaultCrossoverRate  = 0.7
	DefaultTestTimeout    = 30
)

// ErrInvalidConfig is returned by MutationConfig.Validate.
var ErrInvalidConfig = errors.New("invalid mutation config")

// MutationConfig holds the parameters of one evolutionary run. It is also the
// serialization boundary used to persist and replay a run.
type MutationConfig struct {
	TargetFiles    []Path  `yaml:"target_files" json:"target_files"`
	MaxGenerations int     `yaml:"max_generations" json:"max_generations"`
	PopulationSize int     `yaml:"population_size" json:"population_size"`
	MutationRate   float64 `yaml:"mutation_rate" json:"mutation_rate"`
	CrossoverRate  float64 `yaml:"crossover_rate" json:"crossover_rate"`
	// TestTimeout is the per-evaluation budget in seconds.
	TestTimeout int `yaml:"test_timeout" json:"test_timeout"`
}

// DefaultMutationConfig returns a configuration with the default parameters and
// no target files.
func DefaultMutationConfig() MutationConfig {
	return MutationConfig{
		TargetFiles:    []Path{},
		MaxGenerations: DefaultMaxGenerations,
		PopulationSize: DefaultPopulationSize,
		MutationRate:   DefaultMutationRate,
		CrossoverRate:  DefaultCrossoverRate,
		TestTimeout:    DefaultTestTimeout,
	}
}

// Timeout returns TestTimeout as a duration.
func (c MutationConfig) Timeout() time.Duration {
	return time.Duration(c.TestTimeout) * time.Second
}

// Validate checks the ranges of every parameter.
func (c MutationConfig) Validate() error {
	switch {
	case c.MaxGenerations < 0:
		return fmt.Errorf("%w: max_generations must be >= 0, got %d", ErrInvalidConfig, c.MaxGenerations)
	case c.PopulationSize < 1:
		return fmt.Errorf("%w: population_size must be >= 1, got %d", ErrInvalidConfig, c.PopulationSize)
	case c.MutationRate < 0 || c.MutationRate > 1:
		return fmt.Errorf("%w: mutation_rate must be in [0,1], got %v", ErrInvalidConfig, c.MutationRate)
	case c.CrossoverRate < 0 || c.CrossoverRate > 1:
		return fmt.Errorf("%w: crossover_rate must be in [0,1], got %v", ErrInvalidConfig, c.CrossoverRate)
	case c.TestTimeout < 1:
		return fmt.Errorf("%w: test_timeout must be >= 1 second, got %d", ErrInvalidConfig, c.TestTimeout)
	}

	return nil
}

// EncodeConfig serializes cfg as YAML.
func EncodeConfig(cfg MutationConfig) ([]byte, error) {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}

	return buf.Bytes(), nil
}

// DecodeConfig parses YAML produced by EncodeConfig. Fields missing from data
// keep their default values.
func DecodeConfig(data []byte) (MutationConfig, error) {
	cfg := DefaultMutationConfig()

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return MutationConfig{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

// LoadConfigFile reads and validates a YAML run configuration.
func LoadConfigFile(path Path) (MutationConfig, error) {
	// #nosec G304 - path is supplied by the operator on the command line
	data, err := os.ReadFile(string(path))
	if err != nil {
		return MutationConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg, err := DecodeConfig(data)
	if err != nil {
		return MutationConfig{}, err
	}

	if err := cfg.Validate(); err != nil {
		return MutationConfig{}, err
	}

	return cfg, nil
}

// SaveConfigFile writes cfg as YAML to path.
func SaveConfigFile(path Path, cfg MutationConfig) error {
	data, err := EncodeConfig(cfg)
	if err != nil {
		return err
	}

	if err := os.WriteFile(string(path), data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}

	return nil
}
