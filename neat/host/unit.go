package host

import (
	"errors"
	"fmt"
	"time"

	"github.com/baldhumanity/approachable-neat/neat"
)

var (
	// ErrNoDecisions is returned for a unit without decisions.
	ErrNoDecisions = errors.New("no decisions registered")
	// ErrNilSense is returned for a sense slot without a sense.
	ErrNilSense = errors.New("sense is nil")
	// ErrDecisionMismatch is returned when a network's outputs do not match the decisions.
	ErrDecisionMismatch = errors.New("network outputs do not match decisions")
)

// NamedSense binds a sense to the name of the input it feeds.
type NamedSense struct {
	Name  string
	Sense Sense
}

// Decider evaluates an agent on sense values. *trainer.Trainer implements it.
type Decider interface {
	Tick(agentID int, inputs []float64) ([]float64, error)
}

// Unit is the host's view of a trainable actor: what it can sense, in input
// order, and what it can decide, in output order.
type Unit struct {
	Senses    []NamedSense
	Decisions []string
}

// BindUnit creates a unit from configured names. Input names without a sense
// in senses keep a nil sense, which Validate reports.
func BindUnit(cfg neat.NetworkConfig, senses map[string]Sense) *Unit {
	u := &Unit{Decisions: append([]string(nil), cfg.OutputNames...)}
	for _, name := range cfg.InputNames {
		u.Senses = append(u.Senses, NamedSense{Name: name, Sense: senses[name]})
	}
	return u
}

// Validate reports configuration errors before training starts.
func (u *Unit) Validate() error {
	if len(u.Decisions) == 0 {
		return ErrNoDecisions
	}
	for i, s := range u.Senses {
		if s.Sense == nil {
			return fmt.Errorf("sense %d (%q): %w", i, s.Name, ErrNilSense)
		}
	}
	return nil
}

// Template returns a minimal genome with one input per sense and one output
// per decision.
func (u *Unit) Template(ids *neat.IDAllocator) (*neat.Genome, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return neat.NewMinimalGenome(ids, len(u.Senses), len(u.Decisions)), nil
}

// Inputs reads every sense in input order.
func (u *Unit) Inputs() []float64 {
	values := make([]float64, len(u.Senses))
	for i, s := range u.Senses {
		if s.Sense != nil {
			values[i] = s.Sense.Value()
		}
	}
	return values
}

// Decide reads the senses, evaluates the agent and names its outputs.
func (u *Unit) Decide(d Decider, agentID int) (map[string]float64, error) {
	outputs, err := d.Tick(agentID, u.Inputs())
	if err != nil {
		return nil, err
	}
	if len(outputs) != len(u.Decisions) {
		return nil, fmt.Errorf("%w: %d outputs, %d decisions", ErrDecisionMismatch, len(outputs), len(u.Decisions))
	}
	decided := make(map[string]float64, len(outputs))
	for i, v := range outputs {
		decided[u.Decisions[i]] = v
	}
	return decided, nil
}

// Describe records the unit's sense names, sense types and decision names
// in s.
func (u *Unit) Describe(s *neat.Snapshot) {
	s.InputNames = make([]string, len(u.Senses))
	s.InputTypes = make([]string, len(u.Senses))
	for i, sense := range u.Senses {
		s.InputNames[i] = sense.Name
		s.InputTypes[i] = TypeName(sense.Sense)
	}
	s.OutputNames = append([]string(nil), u.Decisions...)
}

// Snapshot saves g as trained by this unit with the given high score.
func (u *Unit) Snapshot(g *neat.Genome, highScore float64, now time.Time) *neat.Snapshot {
	s := neat.NewSnapshot(g, highScore, now)
	u.Describe(s)
	return s
}

// Adopt loads a saved brain into the unit. Senses whose type differs from
// the one recorded in the snapshot are cleared, and the decisions are taken
// from the snapshot. The returned genome can seed a trainer.
func (u *Unit) Adopt(s *neat.Snapshot, ids *neat.IDAllocator) (*neat.Genome, error) {
	g, err := s.Genome(ids)
	if err != nil {
		return nil, err
	}
	for i := 0; i < len(u.Senses) && i < len(s.InputTypes); i++ {
		if u.Senses[i].Sense != nil && TypeName(u.Senses[i].Sense) != s.InputTypes[i] {
			u.Senses[i].Sense = nil
		}
	}
	u.Decisions = append([]string(nil), s.OutputNames...)
	return g, nil
}
