package trainer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baldhumanity/approachable-neat/neat"
)

func newTestAgent(t *testing.T, id int, g *neat.Genome, fitness float64) *Agent {
	t.Helper()
	a, err := NewAgent(id, g)
	require.NoError(t, err)
	a.setFitness(fitness)
	return a
}

func linkIDs(g *neat.Genome) []int {
	ids := make([]int, len(g.Links))
	for i, l := range g.Links {
		ids[i] = l.ID
	}
	return ids
}

func TestRankBreaksTiesBySimplerNetwork(t *testing.T) {
	ids := neat.NewIDAllocator()
	complex4 := newTestAgent(t, 1, neat.NewMinimalGenome(ids, 2, 2), 10)
	simple2 := newTestAgent(t, 2, neat.NewMinimalGenome(ids, 2, 1), 10)
	tiny1 := newTestAgent(t, 3, neat.NewMinimalGenome(ids, 1, 1), 5)

	require.Equal(t, 4, complex4.Complexity())
	require.Equal(t, 2, simple2.Complexity())
	require.Equal(t, 1, tiny1.Complexity())

	ranked := Rank([]*Agent{complex4, simple2, tiny1})
	assert.Equal(t, []*Agent{simple2, complex4, tiny1}, ranked)
}

func TestRankIsStableForEqualAgents(t *testing.T) {
	ids := neat.NewIDAllocator()
	template := neat.NewMinimalGenome(ids, 2, 1)

	agents := make([]*Agent, 5)
	for i := range agents {
		agents[i] = newTestAgent(t, i+1, template.Copy(), 3)
	}
	input := append([]*Agent(nil), agents...)

	ranked := Rank(agents)
	assert.Equal(t, input, ranked)
	assert.Equal(t, input, agents, "input slice must not be reordered")
}

func TestPopulationLookup(t *testing.T) {
	ids := neat.NewIDAllocator()
	template := neat.NewMinimalGenome(ids, 2, 1)
	a := newTestAgent(t, 7, template.Copy(), 1)
	b := newTestAgent(t, 9, template.Copy(), 2)

	pop := NewPopulation([]*Agent{a, b})
	assert.Equal(t, 2, pop.Len())
	assert.Same(t, a, pop.Champion())

	got, ok := pop.Agent(9)
	require.True(t, ok)
	assert.Same(t, b, got)

	_, ok = pop.Agent(8)
	assert.False(t, ok)

	assert.Equal(t, []*Agent{b, a}, pop.Rank())
	assert.Nil(t, NewPopulation(nil).Champion())
}

func TestRewardAndPunishIgnoreNonPositiveAmounts(t *testing.T) {
	ids := neat.NewIDAllocator()
	a := newTestAgent(t, 1, neat.NewMinimalGenome(ids, 2, 1), 4)

	a.Reward(-5)
	a.Punish(0)
	a.Reward(0)
	a.Punish(-1)
	assert.Equal(t, 4.0, a.Fitness())

	a.Reward(1.5)
	a.Punish(0.5)
	assert.Equal(t, 5.0, a.Fitness())
}

func TestNewAgentRejectsCycles(t *testing.T) {
	ids := neat.NewIDAllocator()
	g := neat.NewMinimalGenome(ids, 1, 1)
	out := g.OutputIDs[0]
	hidden := neat.NewNeuron(ids)
	require.NoError(t, g.AddNeuron(hidden))
	require.NoError(t, g.AddLink(neat.NewLink(ids, out, hidden.ID, 1)))
	require.NoError(t, g.AddLink(neat.NewLink(ids, hidden.ID, out, 1)))

	_, err := NewAgent(1, g)
	require.Error(t, err)
}

func newTestReproduction(seed int64, childMutationRate float64) *Reproduction {
	ids := neat.NewIDAllocator()
	cfg := neat.DefaultConfig().Trainer
	cfg.ChildMutationRate = childMutationRate
	mutator := neat.NewMutator(neat.DefaultMutationConfig(), ids, rand.New(rand.NewSource(seed)))
	return NewReproduction(cfg, mutator)
}

func TestCreatePopulationPlacesSeedFirst(t *testing.T) {
	r := newTestReproduction(1, 0.75)
	template := neat.NewMinimalGenome(r.Mutator.IDs, 3, 2)
	seed := template.Copy()
	seed.Links[0].Weight = 42

	genomes := r.CreatePopulation(template, seed, 6)
	require.Len(t, genomes, 6)
	assert.Equal(t, seed.Links, genomes[0].Links)
	assert.Equal(t, seed.Neurons, genomes[0].Neurons)
	assert.NotSame(t, seed, genomes[0])

	genomes[0].Links[0].Weight = 0
	assert.Equal(t, 42.0, seed.Links[0].Weight)

	unseeded := r.CreatePopulation(template, nil, 4)
	assert.Len(t, unseeded, 4)
	for _, g := range unseeded {
		require.NoError(t, g.Validate())
	}
}

func TestBreedPairsAdjacentRanks(t *testing.T) {
	r := newTestReproduction(3, 0)
	ids := r.Mutator.IDs
	template := neat.NewMinimalGenome(ids, 2, 1)

	agents := make([]*Agent, 4)
	for i := range agents {
		g := template.Copy()
		for j := range g.Links {
			g.Links[j].Weight = float64(10*i + j)
		}
		r.Mutator.SplitLink(g)
		agents[i] = newTestAgent(t, i+1, g, float64(4-i))
	}
	ranked := Rank(agents)
	require.Equal(t, agents, ranked)

	next, err := r.Breed(ranked)
	require.NoError(t, err)
	require.Len(t, next, 4)

	assert.Equal(t, agents[0].Genome.Links, next[0].Links, "rank 0 is carried over unchanged")
	assert.Equal(t, agents[1].Genome.Links, next[2].Links, "rank 1 is carried over unchanged")
	assert.Subset(t, linkIDs(agents[0].Genome), linkIDs(next[1]))
	assert.Subset(t, linkIDs(agents[1].Genome), linkIDs(next[3]))
	assert.Equal(t, agents[0].Genome.InputIDs, next[1].InputIDs)
	assert.Equal(t, agents[1].Genome.OutputIDs, next[1].OutputIDs)
	for _, g := range next {
		require.NoError(t, g.Validate())
	}
}

func TestBreedShrinksOddPopulations(t *testing.T) {
	r := newTestReproduction(5, 0.75)
	template := neat.NewMinimalGenome(r.Mutator.IDs, 2, 2)

	agents := make([]*Agent, 5)
	for i := range agents {
		agents[i] = newTestAgent(t, i+1, template.Copy(), float64(i))
	}
	next, err := r.Breed(Rank(agents))
	require.NoError(t, err)
	assert.Len(t, next, 4)

	padded := r.Pad(next, next[0], 5)
	assert.Len(t, padded, 5)
	require.NoError(t, padded[4].Validate())

	none, err := r.Breed(agents[:1])
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCrossoverChildIsMutatedAtFullRate(t *testing.T) {
	r := newTestReproduction(11, 1)
	r.Mutator.Config.AddNeuronRate = 1

	template := neat.NewMinimalGenome(r.Mutator.IDs, 2, 1)
	agents := []*Agent{
		newTestAgent(t, 1, template.Copy(), 2),
		newTestAgent(t, 2, template.Copy(), 1),
	}
	next, err := r.Breed(agents)
	require.NoError(t, err)
	require.Len(t, next, 2)
	assert.Len(t, next[1].Neurons, len(template.Neurons)+1)
	assert.Len(t, next[0].Neurons, len(template.Neurons))
}
