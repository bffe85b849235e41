package neat

import "math/rand"

// Mutator applies in-place stochastic mutations to genomes.
// It draws every random number from Rand and every new id from IDs; it is not
// safe for concurrent use because *rand.Rand is not.
type Mutator struct {
	Config MutationConfig
	IDs    *IDAllocator
	Rand   *rand.Rand
}

// NewMutator creates a mutator.
func NewMutator(config MutationConfig, ids *IDAllocator, rng *rand.Rand) *Mutator {
	return &Mutator{Config: config, IDs: ids, Rand: rng}
}

// Mutate runs one independent trial per entity for each operator, in this order:
// bias drift per neuron, weight drift per link, enabling inactive links,
// disabling active links, and at most one structural split.
func (m *Mutator) Mutate(g *Genome) {
	cfg := m.Config

	for i := range g.Neurons {
		if chance(m.Rand, cfg.BiasMutateRate) {
			g.Neurons[i].MutateBias(m.Rand, cfg.BiasMutatePower)
		}
	}

	for i := range g.Links {
		if chance(m.Rand, cfg.WeightMutateRate) {
			g.Links[i].MutateWeight(m.Rand, cfg.WeightMutatePower)
		}
	}

	for i := range g.Links {
		if g.Links[i].Active {
			continue
		}
		if chance(m.Rand, cfg.EnableRate) {
			g.Links[i].Active = true
		}
	}

	for i := range g.Links {
		if !g.Links[i].Active {
			continue
		}
		if chance(m.Rand, cfg.DisableRate) {
			g.Links[i].Active = false
		}
	}

	if chance(m.Rand, cfg.AddNeuronRate) {
		m.SplitLink(g)
	}
}

// SplitLink picks a random active link A->C, disables it and routes it through
// a new neuron B with links A->B and B->C of weight 1. It reports false when the
// genome has no active link.
//
// A split only inserts a relay node, so an acyclic genome stays acyclic.
func (m *Mutator) SplitLink(g *Genome) bool {
	active := make([]int, 0, len(g.Links))
	for i, l := range g.Links {
		if l.Active {
			active = append(active, i)
		}
	}
	if len(active) == 0 {
		return false
	}

	idx := active[m.Rand.Intn(len(active))]
	g.Links[idx].Active = false
	from, to := g.Links[idx].FromID, g.Links[idx].ToID

	g.ensureIndex()
	b := NewNeuron(m.IDs)
	g.addNeuron(b)
	g.addLink(NewLink(m.IDs, from, b.ID, 1.0))
	g.addLink(NewLink(m.IDs, b.ID, to, 1.0))
	return true
}
