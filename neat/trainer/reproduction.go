package trainer

import (
	"fmt"
	"math/rand"

	"github.com/baldhumanity/approachable-neat/neat"
)

// Reproduction creates genomes, either from a template or by breeding a ranked
// generation. It shares the mutator's allocator and random source.
type Reproduction struct {
	Mutator           *neat.Mutator
	ChildMutationRate float64 // Probability a crossover child is mutated
	CrossoverSwapRate float64 // Passed to neat.Crossover
}

// NewReproduction creates a reproduction manager.
func NewReproduction(config neat.TrainerConfig, mutator *neat.Mutator) *Reproduction {
	return &Reproduction{
		Mutator:           mutator,
		ChildMutationRate: config.ChildMutationRate,
		CrossoverSwapRate: config.CrossoverSwapRate,
	}
}

func (r *Reproduction) ids() *neat.IDAllocator { return r.Mutator.IDs }
func (r *Reproduction) rng() *rand.Rand        { return r.Mutator.Rand }

// CreatePopulation creates size genomes. When seed is non-nil an unmutated
// copy of it takes slot 0; every other slot is a mutated copy of template.
func (r *Reproduction) CreatePopulation(template, seed *neat.Genome, size int) []*neat.Genome {
	r.ids().Observe(template)
	genomes := make([]*neat.Genome, 0, size)
	if seed != nil && size > 0 {
		r.ids().Observe(seed)
		genomes = append(genomes, seed.Copy())
	}
	for len(genomes) < size {
		g := template.Copy()
		r.Mutator.Mutate(g)
		genomes = append(genomes, g)
	}
	return genomes
}

// Breed produces the next generation from agents ranked best first.
//
// Pairing is adjacent and overlapping: for i in [0, N/2) it appends a copy of
// rank i followed by the crossover of rank i (dominant) with rank i+1, which is
// mutated with probability ChildMutationRate. The result has 2*floor(N/2)
// genomes and its first genome is the champion.
func (r *Reproduction) Breed(ranked []*Agent) ([]*neat.Genome, error) {
	half := len(ranked) / 2
	next := make([]*neat.Genome, 0, 2*half)
	for i := 0; i < half; i++ {
		dominant := ranked[i].genomeCopy()
		recessive := ranked[i+1].genomeCopy()

		next = append(next, dominant.Copy())

		child, err := neat.Crossover(r.ids(), r.rng(), r.CrossoverSwapRate, dominant, recessive)
		if err != nil {
			return nil, fmt.Errorf("failed to breed agents %d and %d: %w", ranked[i].ID, ranked[i+1].ID, err)
		}
		if r.rng().Float64() < r.ChildMutationRate {
			r.Mutator.Mutate(child)
		}
		next = append(next, child)
	}
	return next, nil
}

// Pad appends mutated copies of champion until genomes has size entries.
func (r *Reproduction) Pad(genomes []*neat.Genome, champion *neat.Genome, size int) []*neat.Genome {
	for len(genomes) < size {
		g := champion.Copy()
		r.Mutator.Mutate(g)
		genomes = append(genomes, g)
	}
	return genomes
}
