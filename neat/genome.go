package neat

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateNeuron is returned when a neuron id appears twice in a genome.
	ErrDuplicateNeuron = errors.New("duplicate neuron id")
	// ErrDuplicateLink is returned when a link id appears twice in a genome.
	ErrDuplicateLink = errors.New("duplicate link id")
	// ErrDanglingLink is returned when a link references a neuron the genome does not have.
	ErrDanglingLink = errors.New("link references unknown neuron")
	// ErrMissingNeuron is returned when an input or output id has no neuron.
	ErrMissingNeuron = errors.New("layer references unknown neuron")
)

// Genome is the neuron and link structure of one candidate network.
//
// Neurons and links are stored densely; the private index tables map ids to
// slice positions. InputIDs and OutputIDs keep the creation order of the
// input and output layers, which is the order of sense values and decisions.
type Genome struct {
	InputIDs  []int
	OutputIDs []int
	Neurons   []Neuron // inputs, outputs and hidden neurons
	Links     []Link

	neuronIndex map[int]int
	linkIndex   map[int]int
}

// NewGenome creates an empty genome.
func NewGenome() *Genome {
	return &Genome{
		neuronIndex: make(map[int]int),
		linkIndex:   make(map[int]int),
	}
}

// NewMinimalGenome creates inputs input neurons and outputs output neurons with
// fresh ids, and connects every input to every output with an active link of weight 1.
func NewMinimalGenome(ids *IDAllocator, inputs, outputs int) *Genome {
	g := NewGenome()
	for i := 0; i < inputs; i++ {
		n := NewNeuron(ids)
		g.addNeuron(n)
		g.InputIDs = append(g.InputIDs, n.ID)
	}
	for i := 0; i < outputs; i++ {
		n := NewNeuron(ids)
		g.addNeuron(n)
		g.OutputIDs = append(g.OutputIDs, n.ID)
	}
	for _, in := range g.InputIDs {
		for _, out := range g.OutputIDs {
			g.addLink(NewLink(ids, in, out, 1.0))
		}
	}
	return g
}

// Copy creates a deep copy of the genome. Ids are preserved.
func (g *Genome) Copy() *Genome {
	c := &Genome{
		InputIDs:    append([]int(nil), g.InputIDs...),
		OutputIDs:   append([]int(nil), g.OutputIDs...),
		Neurons:     append([]Neuron(nil), g.Neurons...),
		Links:       append([]Link(nil), g.Links...),
		neuronIndex: make(map[int]int, len(g.Neurons)),
		linkIndex:   make(map[int]int, len(g.Links)),
	}
	for i, n := range c.Neurons {
		c.neuronIndex[n.ID] = i
	}
	for i, l := range c.Links {
		c.linkIndex[l.ID] = i
	}
	return c
}

// String returns a short summary of the genome.
func (g *Genome) String() string {
	return fmt.Sprintf("Genome(Inputs: %d, Outputs: %d, Neurons: %d, Links: %d/%d active)",
		len(g.InputIDs), len(g.OutputIDs), len(g.Neurons), g.ActiveLinkCount(), len(g.Links))
}

// Neuron returns a pointer to the neuron with the given id.
// The pointer is invalidated by any structural change to the genome.
func (g *Genome) Neuron(id int) (*Neuron, bool) {
	g.ensureIndex()
	i, ok := g.neuronIndex[id]
	if !ok {
		return nil, false
	}
	return &g.Neurons[i], true
}

// Link returns a pointer to the link with the given id.
// The pointer is invalidated by any structural change to the genome.
func (g *Genome) Link(id int) (*Link, bool) {
	g.ensureIndex()
	i, ok := g.linkIndex[id]
	if !ok {
		return nil, false
	}
	return &g.Links[i], true
}

// HasNeuron reports whether the genome contains a neuron with the given id.
func (g *Genome) HasNeuron(id int) bool {
	_, ok := g.Neuron(id)
	return ok
}

// NeuronIndex returns the slice position of the neuron with the given id.
func (g *Genome) NeuronIndex(id int) (int, bool) {
	g.ensureIndex()
	i, ok := g.neuronIndex[id]
	return i, ok
}

// AddNeuron appends a neuron. It fails if the id is already present.
func (g *Genome) AddNeuron(n Neuron) error {
	g.ensureIndex()
	if _, exists := g.neuronIndex[n.ID]; exists {
		return fmt.Errorf("add neuron %d: %w", n.ID, ErrDuplicateNeuron)
	}
	g.addNeuron(n)
	return nil
}

// AddLink appends a link. It fails if the id is already present.
func (g *Genome) AddLink(l Link) error {
	g.ensureIndex()
	if _, exists := g.linkIndex[l.ID]; exists {
		return fmt.Errorf("add link %d: %w", l.ID, ErrDuplicateLink)
	}
	g.addLink(l)
	return nil
}

// InputNeurons returns copies of the input neurons in creation order.
func (g *Genome) InputNeurons() []Neuron {
	return g.layer(g.InputIDs)
}

// OutputNeurons returns copies of the output neurons in creation order.
func (g *Genome) OutputNeurons() []Neuron {
	return g.layer(g.OutputIDs)
}

// ActiveLinkCount returns the number of active links, used as the complexity
// measure when ranking.
func (g *Genome) ActiveLinkCount() int {
	count := 0
	for _, l := range g.Links {
		if l.Active {
			count++
		}
	}
	return count
}

// Validate checks the structural invariants: unique ids, and that every layer id
// and link endpoint refers to a neuron of the genome. Acyclicity is checked by
// the evaluator.
func (g *Genome) Validate() error {
	neurons := make(map[int]bool, len(g.Neurons))
	for _, n := range g.Neurons {
		if neurons[n.ID] {
			return fmt.Errorf("neuron %d: %w", n.ID, ErrDuplicateNeuron)
		}
		neurons[n.ID] = true
	}
	for _, id := range g.InputIDs {
		if !neurons[id] {
			return fmt.Errorf("input %d: %w", id, ErrMissingNeuron)
		}
	}
	for _, id := range g.OutputIDs {
		if !neurons[id] {
			return fmt.Errorf("output %d: %w", id, ErrMissingNeuron)
		}
	}
	links := make(map[int]bool, len(g.Links))
	for _, l := range g.Links {
		if links[l.ID] {
			return fmt.Errorf("link %d: %w", l.ID, ErrDuplicateLink)
		}
		links[l.ID] = true
		if !neurons[l.FromID] {
			return fmt.Errorf("link %d from %d: %w", l.ID, l.FromID, ErrDanglingLink)
		}
		if !neurons[l.ToID] {
			return fmt.Errorf("link %d to %d: %w", l.ID, l.ToID, ErrDanglingLink)
		}
	}
	return nil
}

func (g *Genome) layer(ids []int) []Neuron {
	out := make([]Neuron, 0, len(ids))
	for _, id := range ids {
		if n, ok := g.Neuron(id); ok {
			out = append(out, *n)
		}
	}
	return out
}

func (g *Genome) addNeuron(n Neuron) {
	g.neuronIndex[n.ID] = len(g.Neurons)
	g.Neurons = append(g.Neurons, n)
}

func (g *Genome) addLink(l Link) {
	g.linkIndex[l.ID] = len(g.Links)
	g.Links = append(g.Links, l)
}

// ensureIndex rebuilds the id tables after the genome was decoded (gob or a
// struct literal) without them.
func (g *Genome) ensureIndex() {
	if g.neuronIndex != nil && len(g.neuronIndex) == len(g.Neurons) &&
		g.linkIndex != nil && len(g.linkIndex) == len(g.Links) {
		return
	}
	g.neuronIndex = make(map[int]int, len(g.Neurons))
	for i, n := range g.Neurons {
		g.neuronIndex[n.ID] = i
	}
	g.linkIndex = make(map[int]int, len(g.Links))
	for i, l := range g.Links {
		g.linkIndex[l.ID] = i
	}
}
