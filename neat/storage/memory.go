package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var errNotInitialized = errors.New("store is not initialized")

// MemoryStore keeps records in process memory. It is safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	champions   map[string]ChampionRecord
	stats       map[string]map[int]StatsRecord
}

// NewMemoryStore creates a store that must be initialized with Init.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Init clears the store and makes it ready for use.
func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.champions = make(map[string]ChampionRecord)
	s.stats = make(map[string]map[int]StatsRecord)
	return nil
}

// SaveChampion keeps the record unless the run already has a champion from a
// later generation.
func (s *MemoryStore) SaveChampion(_ context.Context, record ChampionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	if existing, ok := s.champions[record.RunID]; ok && existing.Generation > record.Generation {
		return nil
	}
	s.champions[record.RunID] = record
	return nil
}

// GetChampion returns the champion of a run, if one was saved.
func (s *MemoryStore) GetChampion(_ context.Context, runID string) (ChampionRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.champions[runID]
	return record, ok, nil
}

// SaveGenerationStats replaces any earlier record of the same generation.
func (s *MemoryStore) SaveGenerationStats(_ context.Context, record StatsRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	run, ok := s.stats[record.RunID]
	if !ok {
		run = make(map[int]StatsRecord)
		s.stats[record.RunID] = run
	}
	run[record.Stats.Generation] = record
	return nil
}

// GetGenerationStats returns the run's records ordered by generation.
func (s *MemoryStore) GetGenerationStats(_ context.Context, runID string) ([]StatsRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.stats[runID]
	if !ok {
		return nil, false, nil
	}
	records := make([]StatsRecord, 0, len(run))
	for _, r := range run {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Stats.Generation < records[j].Stats.Generation
	})
	return records, true, nil
}
