package neat

import (
	"fmt"
	"math"
	"strings"
	"time"

	"gopkg.in/ini.v1"
)

// Config stores the configuration parameters for training.
type Config struct {
	Trainer  TrainerConfig
	Mutation MutationConfig
	Network  NetworkConfig
	Storage  StorageConfig
}

// TrainerConfig holds parameters of the generation loop.
type TrainerConfig struct {
	Participants      int           `ini:"participants"`        // Agents per generation
	SessionDuration   time.Duration `ini:"session_duration"`    // Length of one episode, e.g. 30s
	MaxGenerations    int           `ini:"max_generations"`     // 0 runs until stopped
	ChildMutationRate float64       `ini:"child_mutation_rate"` // Probability a crossover child is mutated
	CrossoverSwapRate float64       `ini:"crossover_swap_rate"` // Probability a shared link takes the recessive values
	PadPopulation     bool          `ini:"pad_population"`      // Refill to Participants when breeding shrinks an odd population
	Seed              int64         `ini:"seed"`                // 0 seeds from the clock
}

// MutationConfig holds the per-call mutation probabilities and magnitudes.
type MutationConfig struct {
	BiasMutateRate    float64 `ini:"bias_mutate_rate"`    // Per neuron
	BiasMutatePower   float64 `ini:"bias_mutate_power"`   // Bias drift is uniform in [-power, power)
	WeightMutateRate  float64 `ini:"weight_mutate_rate"`  // Per link
	WeightMutatePower float64 `ini:"weight_mutate_power"` // Weight drift is uniform in [-power, power)
	EnableRate        float64 `ini:"enable_rate"`         // Per inactive link
	DisableRate       float64 `ini:"disable_rate"`        // Per active link
	AddNeuronRate     float64 `ini:"add_neuron_rate"`     // Once per call
}

// NetworkConfig names the senses and decisions of the trained unit.
type NetworkConfig struct {
	InputNames  []string `ini:"input_names" delim:" "`  // Space-separated list
	OutputNames []string `ini:"output_names" delim:" "` // Space-separated list
}

// StorageConfig locates persisted artifacts of a run.
type StorageConfig struct {
	Backend        string `ini:"backend"` // "memory" or "sqlite"
	SQLitePath     string `ini:"sqlite_path"`
	SnapshotPath   string `ini:"snapshot_path"`   // YAML champion snapshot
	CheckpointPath string `ini:"checkpoint_path"` // gzip'd population checkpoint
	StatsCSV       string `ini:"stats_csv"`       // Per-generation statistics
}

// DefaultConfig returns the defaults every loaded file starts from.
func DefaultConfig() *Config {
	return &Config{
		Trainer: TrainerConfig{
			Participants:      50,
			SessionDuration:   30 * time.Second,
			ChildMutationRate: 0.75,
			CrossoverSwapRate: 0.5,
			PadPopulation:     true,
		},
		Mutation: DefaultMutationConfig(),
		Storage: StorageConfig{
			Backend: "memory",
		},
	}
}

// DefaultMutationConfig returns the stock mutation probabilities.
func DefaultMutationConfig() MutationConfig {
	return MutationConfig{
		BiasMutateRate:    0.01,
		BiasMutatePower:   0.25,
		WeightMutateRate:  0.15,
		WeightMutatePower: 5,
		EnableRate:        0.001,
		DisableRate:       0.001,
		AddNeuronRate:     0.1,
	}
}

// LoadConfig loads configuration parameters from an INI file.
func LoadConfig(filePath string) (*Config, error) {
	config, err := loadConfig(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}
	return config, nil
}

// LoadConfigData parses configuration parameters from INI content.
func LoadConfigData(data []byte) (*Config, error) {
	return loadConfig(data)
}

func loadConfig(source interface{}) (*Config, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, source)
	if err != nil {
		return nil, err
	}

	// Keys absent from the file keep their defaults.
	config := DefaultConfig()
	if err := cfg.Section("Trainer").MapTo(&config.Trainer); err != nil {
		return nil, fmt.Errorf("failed to map [Trainer] section: %w", err)
	}
	if err := cfg.Section("Mutation").MapTo(&config.Mutation); err != nil {
		return nil, fmt.Errorf("failed to map [Mutation] section: %w", err)
	}
	if err := cfg.Section("Network").MapTo(&config.Network); err != nil {
		return nil, fmt.Errorf("failed to map [Network] section: %w", err)
	}
	if err := cfg.Section("Storage").MapTo(&config.Storage); err != nil {
		return nil, fmt.Errorf("failed to map [Storage] section: %w", err)
	}

	config.Storage.Backend = strings.ToLower(cleanIniString(config.Storage.Backend))
	config.Network.InputNames = cleanIniList(config.Network.InputNames)
	config.Network.OutputNames = cleanIniList(config.Network.OutputNames)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks value ranges. Errors are prefixed with "config error".
func (c *Config) Validate() error {
	t := c.Trainer
	if t.Participants < 2 {
		return fmt.Errorf("config error: participants must be at least 2")
	}
	if t.SessionDuration < 0 {
		return fmt.Errorf("config error: session_duration cannot be negative")
	}
	if t.MaxGenerations < 0 {
		return fmt.Errorf("config error: max_generations cannot be negative")
	}
	if !isProbability(t.ChildMutationRate) {
		return fmt.Errorf("config error: child_mutation_rate must be between 0 and 1")
	}
	if !isProbability(t.CrossoverSwapRate) {
		return fmt.Errorf("config error: crossover_swap_rate must be between 0 and 1")
	}

	if err := c.Mutation.Validate(); err != nil {
		return err
	}

	switch c.Storage.Backend {
	case "", "memory":
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("config error: sqlite_path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("config error: invalid backend '%s', must be one of 'memory', 'sqlite'", c.Storage.Backend)
	}
	return nil
}

// Validate checks that rates are probabilities and powers are non-negative.
func (m MutationConfig) Validate() error {
	rates := []struct {
		name  string
		value float64
	}{
		{"bias_mutate_rate", m.BiasMutateRate},
		{"weight_mutate_rate", m.WeightMutateRate},
		{"enable_rate", m.EnableRate},
		{"disable_rate", m.DisableRate},
		{"add_neuron_rate", m.AddNeuronRate},
	}
	for _, r := range rates {
		if !isProbability(r.value) {
			return fmt.Errorf("config error: %s must be between 0 and 1", r.name)
		}
	}
	if m.BiasMutatePower < 0 || math.IsInf(m.BiasMutatePower, 0) {
		return fmt.Errorf("config error: bias_mutate_power must be a non-negative number")
	}
	if m.WeightMutatePower < 0 || math.IsInf(m.WeightMutatePower, 0) {
		return fmt.Errorf("config error: weight_mutate_power must be a non-negative number")
	}
	return nil
}

// cleanIniString removes inline comments and trims whitespace from a string read from INI.
func cleanIniString(s string) string {
	if idx := strings.IndexAny(s, "#;"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

func cleanIniList(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = cleanIniString(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
