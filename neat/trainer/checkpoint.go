package trainer

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/baldhumanity/approachable-neat/neat"
)

// Checkpoint holds what is needed to resume a run: the genomes of the live
// generation, the statistics so far and the id counters.
type Checkpoint struct {
	RunID       string
	Genomes     []*neat.Genome
	Fitness     []float64 // Fitness so far, restored into the agents; empty for a generation not yet evaluated
	Stats       GenerationStats
	IDs         neat.IDState
	NextAgentID int
	SavedAt     time.Time
}

// Checkpoint captures the live generation with the statistics of the
// generations before it. ok is false when the trainer is idle.
func (t *Trainer) Checkpoint() (cp *Checkpoint, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.population == nil {
		return nil, false
	}
	cp = &Checkpoint{
		RunID:       t.runID,
		Genomes:     make([]*neat.Genome, 0, t.population.Len()),
		Fitness:     make([]float64, 0, t.population.Len()),
		Stats:       t.stats,
		IDs:         t.ids.State(),
		NextAgentID: t.nextAgentID,
		SavedAt:     time.Now(),
	}
	for _, a := range t.population.Agents {
		cp.Genomes = append(cp.Genomes, a.genomeCopy())
		cp.Fitness = append(cp.Fitness, a.Fitness())
	}
	return cp, true
}

// nextCheckpoint records a bred generation that has not been evaluated yet.
func (t *Trainer) nextCheckpoint(runID string, stats GenerationStats, genomes []*neat.Genome) *Checkpoint {
	t.mu.RLock()
	nextAgentID := t.nextAgentID
	t.mu.RUnlock()

	cp := &Checkpoint{
		RunID:       runID,
		Genomes:     make([]*neat.Genome, len(genomes)),
		Stats:       stats,
		IDs:         t.ids.State(),
		NextAgentID: nextAgentID,
		SavedAt:     time.Now(),
	}
	for i, g := range genomes {
		cp.Genomes[i] = g.Copy()
	}
	return cp
}

// Restore makes the next Train resume from cp instead of a fresh population.
// The id counters are advanced to cover every genome in cp. When cp carries
// one fitness per genome, the resumed agents start their episode with it.
func (t *Trainer) Restore(cp *Checkpoint) error {
	if cp == nil || len(cp.Genomes) == 0 {
		return fmt.Errorf("restore: %w", ErrPopulationExhausted)
	}
	for i, g := range cp.Genomes {
		if err := g.Validate(); err != nil {
			return fmt.Errorf("restore: genome %d: %w", i, err)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateIdle {
		return ErrAlreadyTraining
	}
	t.ids.Restore(cp.IDs)
	for _, g := range cp.Genomes {
		t.ids.Observe(g)
	}
	if cp.NextAgentID > t.nextAgentID {
		t.nextAgentID = cp.NextAgentID
	}
	t.restored = cp
	return nil
}

// SaveCheckpoint writes cp to filePath as gzip-compressed gob.
func SaveCheckpoint(filePath string, cp *Checkpoint) (err error) {
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create checkpoint directory '%s': %w", dir, err)
		}
	}
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file '%s': %w", filePath, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close checkpoint file '%s': %w", filePath, cerr)
		}
	}()

	gzWriter := gzip.NewWriter(file)
	if err := gob.NewEncoder(gzWriter).Encode(cp); err != nil {
		gzWriter.Close()
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint reads a checkpoint written by SaveCheckpoint.
func LoadCheckpoint(filePath string) (*Checkpoint, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint file '%s': %w", filePath, err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for checkpoint: %w", err)
	}
	defer gzReader.Close()

	cp := &Checkpoint{}
	if err := gob.NewDecoder(gzReader).Decode(cp); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint: %w", err)
	}
	return cp, nil
}
