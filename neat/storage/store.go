package storage

import (
	"context"

	"github.com/baldhumanity/approachable-neat/neat"
	"github.com/baldhumanity/approachable-neat/neat/trainer"
)

// VersionedRecord tags every persisted payload with the layout it was written in.
type VersionedRecord struct {
	SchemaVersion int `json:"schemaVersion"`
	CodecVersion  int `json:"codecVersion"`
}

// ChampionRecord is the best genome of a run as of a generation.
type ChampionRecord struct {
	VersionedRecord
	RunID      string         `json:"runId"`
	Generation int            `json:"generation"`
	Snapshot   *neat.Snapshot `json:"snapshot"`
}

// StatsRecord is the statistics of one generation of a run.
type StatsRecord struct {
	VersionedRecord
	RunID string                  `json:"runId"`
	Stats trainer.GenerationStats `json:"stats"`
}

// Store persists champions and generation statistics per run.
type Store interface {
	Init(ctx context.Context) error
	SaveChampion(ctx context.Context, record ChampionRecord) error
	GetChampion(ctx context.Context, runID string) (ChampionRecord, bool, error)
	SaveGenerationStats(ctx context.Context, record StatsRecord) error
	GetGenerationStats(ctx context.Context, runID string) ([]StatsRecord, bool, error)
}

// NewChampionRecord stamps a champion snapshot with the current versions.
func NewChampionRecord(runID string, generation int, snapshot *neat.Snapshot) ChampionRecord {
	return ChampionRecord{
		VersionedRecord: currentVersion(),
		RunID:           runID,
		Generation:      generation,
		Snapshot:        snapshot,
	}
}

// NewStatsRecord stamps generation statistics with the current versions.
func NewStatsRecord(runID string, stats trainer.GenerationStats) StatsRecord {
	return StatsRecord{
		VersionedRecord: currentVersion(),
		RunID:           runID,
		Stats:           stats,
	}
}

func currentVersion() VersionedRecord {
	return VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}
