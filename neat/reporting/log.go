package reporting

import (
	"context"
	"log/slog"

	"github.com/baldhumanity/approachable-neat/neat/trainer"
)

// LogReporter logs one structured line per generation.
type LogReporter struct {
	Logger *slog.Logger
}

// NewLogReporter creates a LogReporter. A nil logger uses slog.Default().
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{Logger: logger}
}

// GenerationEnded logs the generation statistics.
func (r *LogReporter) GenerationEnded(ctx context.Context, report trainer.GenerationReport) error {
	s := report.Stats
	level := slog.LevelInfo
	if s.Stagnated {
		level = slog.LevelWarn
	}
	r.Logger.Log(ctx, level, "generation summary",
		"run_id", report.RunID,
		"generation", s.Generation,
		"population", s.PopulationSize,
		"champion_fitness", s.ChampionFitness,
		"champion_links", s.ChampionComplexity,
		"highest_fitness", s.HighestFitness,
		"top_average", s.LastTopAverage,
		"improvement", s.LastImprovement,
		"stagnated", s.Stagnated,
		"duration", report.Duration,
	)
	return nil
}
