package trainer

import "sort"

// Population holds the agents of the current generation, in slot order.
// Slot 0 is the champion carried over from the previous generation.
type Population struct {
	Agents []*Agent

	byID map[int]*Agent
}

// NewPopulation indexes agents by id. The slice order is kept as slot order.
func NewPopulation(agents []*Agent) *Population {
	p := &Population{
		Agents: agents,
		byID:   make(map[int]*Agent, len(agents)),
	}
	for _, a := range agents {
		p.byID[a.ID] = a
	}
	return p
}

// Agent looks up an agent by id.
func (p *Population) Agent(id int) (*Agent, bool) {
	a, ok := p.byID[id]
	return a, ok
}

// Len returns the number of agents.
func (p *Population) Len() int {
	return len(p.Agents)
}

// Champion returns the agent in slot 0, or nil for an empty population.
func (p *Population) Champion() *Agent {
	if len(p.Agents) == 0 {
		return nil
	}
	return p.Agents[0]
}

// Rank returns the agents ordered by descending fitness. Ties go to the agent
// with fewer active links, then to the lower slot.
func (p *Population) Rank() []*Agent {
	return Rank(p.Agents)
}

// Rank orders agents by descending fitness, breaking ties by ascending
// complexity. The sort is stable, so equal agents keep their input order.
// The input slice is not modified.
func Rank(agents []*Agent) []*Agent {
	type entry struct {
		agent      *Agent
		fitness    float64
		complexity int
	}
	entries := make([]entry, len(agents))
	for i, a := range agents {
		entries[i] = entry{agent: a, fitness: a.Fitness(), complexity: a.Complexity()}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].fitness != entries[j].fitness {
			return entries[i].fitness > entries[j].fitness
		}
		return entries[i].complexity < entries[j].complexity
	})

	ranked := make([]*Agent, len(entries))
	for i, e := range entries {
		ranked[i] = e.agent
	}
	return ranked
}
