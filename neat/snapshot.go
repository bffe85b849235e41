package neat

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Snapshot is the persisted form of a trained genome together with the names
// of the senses and decisions it was trained on. Loading a snapshot yields a
// genome identical in ids, biases, weights and active flags.
type Snapshot struct {
	InputNeurons  []Neuron  `yaml:"inputNeurons" json:"inputNeurons"`
	OutputNeurons []Neuron  `yaml:"outputNeurons" json:"outputNeurons"`
	Neurons       []Neuron  `yaml:"neurons" json:"neurons"`
	Links         []Link    `yaml:"links" json:"links"`
	Fitness       float64   `yaml:"fitness" json:"fitness"`
	SavedAt       time.Time `yaml:"savedAt" json:"savedAt"`
	InputNames    []string  `yaml:"inputNames" json:"inputNames"`
	InputTypes    []string  `yaml:"inputTypes" json:"inputTypes"`
	OutputNames   []string  `yaml:"outputNames" json:"outputNames"`
}

// NewSnapshot records g with the given fitness. Names are left to the caller.
func NewSnapshot(g *Genome, fitness float64, savedAt time.Time) *Snapshot {
	return &Snapshot{
		InputNeurons:  g.InputNeurons(),
		OutputNeurons: g.OutputNeurons(),
		Neurons:       append([]Neuron(nil), g.Neurons...),
		Links:         append([]Link(nil), g.Links...),
		Fitness:       fitness,
		SavedAt:       savedAt,
	}
}

// Genome reconstructs the saved genome and reconciles ids with the allocator.
func (s *Snapshot) Genome(ids *IDAllocator) (*Genome, error) {
	g := NewGenome()
	for _, n := range s.Neurons {
		if err := g.AddNeuron(n); err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
	}
	// Layer neurons carry their own copy in the record; it wins over the
	// generic neuron list, and is added if the list omitted it.
	for _, layer := range [][]Neuron{s.InputNeurons, s.OutputNeurons} {
		for _, n := range layer {
			if existing, ok := g.Neuron(n.ID); ok {
				*existing = n
				continue
			}
			g.addNeuron(n)
		}
	}
	for _, n := range s.InputNeurons {
		g.InputIDs = append(g.InputIDs, n.ID)
	}
	for _, n := range s.OutputNeurons {
		g.OutputIDs = append(g.OutputIDs, n.ID)
	}
	for _, l := range s.Links {
		if err := g.AddLink(l); err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	if ids != nil {
		ids.Observe(g)
	}
	return g, nil
}

// EncodeYAML encodes the snapshot as a YAML document.
func (s *Snapshot) EncodeYAML() ([]byte, error) {
	return yaml.Marshal(s)
}

// DecodeSnapshotYAML parses a YAML snapshot.
func DecodeSnapshotYAML(data []byte) (*Snapshot, error) {
	s := &Snapshot{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}

// EncodeJSON encodes the snapshot as JSON.
func (s *Snapshot) EncodeJSON() ([]byte, error) {
	return json.Marshal(s)
}

// DecodeSnapshotJSON parses a JSON snapshot.
func DecodeSnapshotJSON(data []byte) (*Snapshot, error) {
	s := &Snapshot{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}

// SaveSnapshot writes the snapshot to filePath as YAML, creating parent directories.
func SaveSnapshot(filePath string, s *Snapshot) error {
	data, err := s.EncodeYAML()
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create snapshot directory '%s': %w", dir, err)
		}
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot file '%s': %w", filePath, err)
	}
	return nil
}

// LoadSnapshot reads a YAML snapshot from filePath.
func LoadSnapshot(filePath string) (*Snapshot, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file '%s': %w", filePath, err)
	}
	return DecodeSnapshotYAML(data)
}
