package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/baldhumanity/approachable-neat/neat"
	"github.com/baldhumanity/approachable-neat/neat/storage"
	"github.com/baldhumanity/approachable-neat/neat/trainer"
)

// DescribeFunc fills the sense and decision names of a snapshot.
type DescribeFunc func(*neat.Snapshot)

// StoreReporter archives every generation's statistics and champion.
type StoreReporter struct {
	Store    storage.Store
	Describe DescribeFunc
	Now      func() time.Time
}

// GenerationEnded saves the generation statistics and the champion to the store.
func (r *StoreReporter) GenerationEnded(ctx context.Context, report trainer.GenerationReport) error {
	if err := r.Store.SaveGenerationStats(ctx, storage.NewStatsRecord(report.RunID, report.Stats)); err != nil {
		return fmt.Errorf("save generation stats: %w", err)
	}
	if report.Champion == nil {
		return nil
	}
	snapshot := championSnapshot(report, r.Describe, r.Now)
	if err := r.Store.SaveChampion(ctx, storage.NewChampionRecord(report.RunID, report.Stats.Generation, snapshot)); err != nil {
		return fmt.Errorf("save champion: %w", err)
	}
	return nil
}

// SnapshotReporter writes the champion to a YAML snapshot file whenever it
// matches or beats the best champion fitness written so far.
type SnapshotReporter struct {
	Path     string
	Describe DescribeFunc
	Now      func() time.Time

	best    float64
	written bool
}

// GenerationEnded writes the champion snapshot when it is at least as fit as the best written so far.
func (r *SnapshotReporter) GenerationEnded(_ context.Context, report trainer.GenerationReport) error {
	if report.Champion == nil {
		return nil
	}
	if r.written && report.Stats.ChampionFitness < r.best {
		return nil
	}
	if err := neat.SaveSnapshot(r.Path, championSnapshot(report, r.Describe, r.Now)); err != nil {
		return err
	}
	r.best = report.Stats.ChampionFitness
	r.written = true
	return nil
}

func championSnapshot(report trainer.GenerationReport, describe DescribeFunc, now func() time.Time) *neat.Snapshot {
	if now == nil {
		now = time.Now
	}
	s := neat.NewSnapshot(report.Champion, report.Stats.ChampionFitness, now())
	if describe != nil {
		describe(s)
	}
	return s
}
