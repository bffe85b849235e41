package reporting

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baldhumanity/approachable-neat/neat"
	"github.com/baldhumanity/approachable-neat/neat/storage"
	"github.com/baldhumanity/approachable-neat/neat/trainer"
)

func testReport(generation int, championFitness float64, stagnated bool) trainer.GenerationReport {
	ids := neat.NewIDAllocator()
	return trainer.GenerationReport{
		RunID: "run-1",
		Stats: trainer.GenerationStats{
			Generation:         generation,
			HighestFitness:     12,
			LastTopAverage:     8,
			LastImprovement:    1.5,
			Stagnated:          stagnated,
			PopulationSize:     10,
			ChampionFitness:    championFitness,
			ChampionComplexity: 2,
		},
		Champion: neat.NewMinimalGenome(ids, 2, 1),
		Duration: 1500 * time.Millisecond,
	}
}

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewLogReporter(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, r.GenerationEnded(context.Background(), testReport(3, 12, false)))
	require.NoError(t, r.GenerationEnded(context.Background(), testReport(4, 12, true)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "level=INFO")
	assert.Contains(t, lines[0], "generation=3")
	assert.Contains(t, lines[0], "run_id=run-1")
	assert.Contains(t, lines[1], "level=WARN")
	assert.Contains(t, lines[1], "stagnated=true")

	assert.NotNil(t, NewLogReporter(nil).Logger)
}

func TestCSVReporterWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "stats.csv")
	r, err := NewCSVReporter(path)
	require.NoError(t, err)

	require.NoError(t, r.GenerationEnded(context.Background(), testReport(1, 10, false)))
	require.NoError(t, r.GenerationEnded(context.Background(), testReport(2, 11, true)))
	require.NoError(t, r.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "run_id,generation,"))

	var rows []*StatsRow
	require.NoError(t, gocsv.UnmarshalBytes(data, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "run-1", rows[0].RunID)
	assert.Equal(t, 1, rows[0].Generation)
	assert.Equal(t, 11.0, rows[1].ChampionFitness)
	assert.True(t, rows[1].Stagnated)
	assert.Equal(t, int64(1500), rows[1].DurationMS)
}

func TestMetricsReporter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetricsReporter(reg)
	require.NoError(t, err)

	require.NoError(t, m.GenerationEnded(context.Background(), testReport(1, 10, false)))
	require.NoError(t, m.GenerationEnded(context.Background(), testReport(2, 11, true)))

	run := prometheus.Labels{"run_id": "run-1"}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.generations.With(run)))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.highestFitness.With(run)))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.topAverage.With(run)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.championLinks.With(run)))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.population.With(run)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stagnated.With(run)))

	_, err = NewMetricsReporter(reg)
	assert.Error(t, err, "registering twice must fail")
}

func TestStoreReporterArchivesChampion(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Init(ctx))

	savedAt := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	r := &StoreReporter{
		Store: store,
		Describe: func(s *neat.Snapshot) {
			s.OutputNames = []string{"xor"}
		},
		Now: func() time.Time { return savedAt },
	}
	require.NoError(t, r.GenerationEnded(ctx, testReport(1, 10, false)))

	record, ok, err := store.GetChampion(ctx, "run-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, record.Generation)
	assert.Equal(t, 10.0, record.Snapshot.Fitness)
	assert.Equal(t, savedAt, record.Snapshot.SavedAt)
	assert.Equal(t, []string{"xor"}, record.Snapshot.OutputNames)

	stats, ok, err := store.GetGenerationStats(ctx, "run-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, stats, 1)
}

func TestSnapshotReporterKeepsBestChampion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "champion.yaml")
	r := &SnapshotReporter{Path: path}

	require.NoError(t, r.GenerationEnded(context.Background(), testReport(1, 10, false)))
	require.NoError(t, r.GenerationEnded(context.Background(), testReport(2, 4, false)))

	s, err := neat.LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, 10.0, s.Fitness, "a weaker champion does not overwrite the snapshot")

	require.NoError(t, r.GenerationEnded(context.Background(), testReport(3, 10.5, false)))
	s, err = neat.LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, 10.5, s.Fitness)
}
