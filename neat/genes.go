package neat

import (
	"fmt"
	"math/rand"
)

// --------------------------- Neuron ---------------------------

// Neuron is a node of the network.
// For input neurons Bias doubles as the injected sense value during evaluation.
type Neuron struct {
	ID   int     `yaml:"id" json:"id"`
	Bias float64 `yaml:"bias" json:"bias"`
}

// NewNeuron creates a neuron with a fresh id and zero bias.
func NewNeuron(ids *IDAllocator) Neuron {
	return Neuron{ID: ids.NextNeuronID()}
}

// String returns a string representation of the Neuron.
func (n Neuron) String() string {
	return fmt.Sprintf("Neuron(ID: %d, Bias: %.3f)", n.ID, n.Bias)
}

// MutateBias shifts the bias by a uniform value in [-power, power).
func (n *Neuron) MutateBias(rng *rand.Rand, power float64) {
	n.Bias += uniform(rng, -power, power)
}

// --------------------------- Link ---------------------------

// Link is a weighted connection from one neuron to another.
type Link struct {
	ID     int     `yaml:"id" json:"id"`
	FromID int     `yaml:"fromID" json:"fromID"`
	ToID   int     `yaml:"toID" json:"toID"`
	Weight float64 `yaml:"weight" json:"weight"`
	Active bool    `yaml:"active" json:"active"`
}

// NewLink creates an active link with a fresh id.
func NewLink(ids *IDAllocator, fromID, toID int, weight float64) Link {
	return Link{
		ID:     ids.NextLinkID(),
		FromID: fromID,
		ToID:   toID,
		Weight: weight,
		Active: true,
	}
}

// String returns a string representation of the Link.
func (l Link) String() string {
	return fmt.Sprintf("Link(ID: %d, %d->%d, Weight: %.3f, Active: %t)",
		l.ID, l.FromID, l.ToID, l.Weight, l.Active)
}

// MutateWeight shifts the weight by a uniform value in [-power, power).
func (l *Link) MutateWeight(rng *rand.Rand, power float64) {
	l.Weight += uniform(rng, -power, power)
}
