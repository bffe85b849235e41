package neat

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDataKeepsDefaults(t *testing.T) {
	cfg, err := LoadConfigData([]byte(`
[Trainer]
participants     = 20
session_duration = 250ms

[Mutation]
add_neuron_rate = 0.3

[Network]
input_names  = left  right bias
output_names = steer

[Storage]
backend = MEMORY ; comment
`))
	require.NoError(t, err)

	defaults := DefaultConfig()
	assert.Equal(t, 20, cfg.Trainer.Participants)
	assert.Equal(t, 250*time.Millisecond, cfg.Trainer.SessionDuration)
	assert.Equal(t, defaults.Trainer.ChildMutationRate, cfg.Trainer.ChildMutationRate)
	assert.Equal(t, defaults.Trainer.CrossoverSwapRate, cfg.Trainer.CrossoverSwapRate)
	assert.True(t, cfg.Trainer.PadPopulation)

	assert.Equal(t, 0.3, cfg.Mutation.AddNeuronRate)
	assert.Equal(t, defaults.Mutation.WeightMutatePower, cfg.Mutation.WeightMutatePower)

	assert.Equal(t, []string{"left", "right", "bias"}, cfg.Network.InputNames)
	assert.Equal(t, []string{"steer"}, cfg.Network.OutputNames)
	assert.Equal(t, "memory", cfg.Storage.Backend)
}

func TestLoadConfigFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "examples", "xor", "configs", "xor-config"))
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Trainer.Participants)
	assert.Equal(t, 150, cfg.Trainer.MaxGenerations)
	assert.Equal(t, []string{"a", "b", "bias"}, cfg.Network.InputNames)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "./out/xor.db", cfg.Storage.SQLitePath)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorContains(t, err, "failed to load config file")

	path := filepath.Join(t.TempDir(), "bad-config")
	require.NoError(t, os.WriteFile(path, []byte("[Trainer]\nparticipants = 1\n"), 0o644))
	_, err = LoadConfig(path)
	assert.ErrorContains(t, err, "participants must be at least 2")
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"participants", func(c *Config) { c.Trainer.Participants = 1 }, "participants"},
		{"negative duration", func(c *Config) { c.Trainer.SessionDuration = -time.Second }, "session_duration"},
		{"negative generations", func(c *Config) { c.Trainer.MaxGenerations = -1 }, "max_generations"},
		{"child rate", func(c *Config) { c.Trainer.ChildMutationRate = 1.5 }, "child_mutation_rate"},
		{"swap rate", func(c *Config) { c.Trainer.CrossoverSwapRate = -0.1 }, "crossover_swap_rate"},
		{"mutation rate", func(c *Config) { c.Mutation.AddNeuronRate = 2 }, "add_neuron_rate"},
		{"mutation power", func(c *Config) { c.Mutation.WeightMutatePower = -1 }, "weight_mutate_power"},
		{"backend", func(c *Config) { c.Storage.Backend = "mongo" }, "invalid backend"},
		{"sqlite path", func(c *Config) { c.Storage.Backend = "sqlite" }, "sqlite_path"},
	}

	require.NoError(t, DefaultConfig().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config error")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
