package reporting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gocarina/gocsv"

	"github.com/baldhumanity/approachable-neat/neat/trainer"
)

// StatsRow is one line of the statistics CSV.
type StatsRow struct {
	RunID string `csv:"run_id"`
	trainer.GenerationStats
	DurationMS int64 `csv:"duration_ms"`
}

// CSVReporter appends generation statistics to a CSV file.
type CSVReporter struct {
	mu            sync.Mutex
	file          *os.File
	headerWritten bool
}

// NewCSVReporter creates or truncates the file at path.
func NewCSVReporter(path string) (*CSVReporter, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating stats directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	return &CSVReporter{file: f}, nil
}

// GenerationEnded appends one row, writing the header before the first.
func (r *CSVReporter) GenerationEnded(_ context.Context, report trainer.GenerationReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := []StatsRow{{
		RunID:           report.RunID,
		GenerationStats: report.Stats,
		DurationMS:      report.Duration.Milliseconds(),
	}}

	if !r.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, r.file); err != nil {
			return fmt.Errorf("writing stats: %w", err)
		}
		r.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, r.file); err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (r *CSVReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file.Close()
}
