package neat

import (
	"fmt"
	"math/rand"
)

// Crossover builds a child genome from two parents aligned by gene id.
//
// The child takes its input layer from dominant and its output layer from
// recessive. Every dominant link is inherited under the same id; when recessive
// carries a link with that id, its values replace dominant's with probability
// swapRate. Links that only recessive has are never inherited, so the child's
// link ids are a subset of dominant's. Neurons referenced by inherited links are
// copied from whichever parent has them, picked at random when both do.
//
// An endpoint found in neither parent yields ErrDanglingLink.
func Crossover(ids *IDAllocator, rng *rand.Rand, swapRate float64, dominant, recessive *Genome) (*Genome, error) {
	child := NewGenome()

	for _, n := range dominant.InputNeurons() {
		if err := child.AddNeuron(n); err != nil {
			return nil, fmt.Errorf("crossover inputs: %w", err)
		}
		child.InputIDs = append(child.InputIDs, n.ID)
	}
	for _, n := range recessive.OutputNeurons() {
		if err := child.AddNeuron(n); err != nil {
			return nil, fmt.Errorf("crossover outputs: %w", err)
		}
		child.OutputIDs = append(child.OutputIDs, n.ID)
	}

	for _, link := range dominant.Links {
		selected := link
		// The draw happens for every link so the random stream does not depend
		// on which links the parents share.
		if rng.Float64() < swapRate {
			if other, ok := recessive.Link(link.ID); ok {
				selected = *other
			}
		}
		child.addLink(selected)
	}

	for _, link := range child.Links {
		for _, id := range [2]int{link.FromID, link.ToID} {
			if child.HasNeuron(id) {
				continue
			}
			candidates := make([]Neuron, 0, 2)
			if n, ok := dominant.Neuron(id); ok {
				candidates = append(candidates, *n)
			}
			if n, ok := recessive.Neuron(id); ok {
				candidates = append(candidates, *n)
			}
			if len(candidates) == 0 {
				return nil, fmt.Errorf("crossover link %d endpoint %d: %w", link.ID, id, ErrDanglingLink)
			}
			child.addNeuron(candidates[rng.Intn(len(candidates))])
		}
	}

	ids.Observe(child)
	return child, nil
}
