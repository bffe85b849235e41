package neat

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertUniqueIDs(t *testing.T, g *Genome) {
	t.Helper()
	neurons := map[int]bool{}
	for _, n := range g.Neurons {
		assert.False(t, neurons[n.ID], "duplicate neuron id %d", n.ID)
		neurons[n.ID] = true
	}
	links := map[int]bool{}
	for _, l := range g.Links {
		assert.False(t, links[l.ID], "duplicate link id %d", l.ID)
		links[l.ID] = true
	}
	require.NoError(t, g.Validate())
}

func TestNewMinimalGenome(t *testing.T) {
	g := NewMinimalGenome(NewIDAllocator(), 3, 2)

	assert.Len(t, g.InputIDs, 3)
	assert.Len(t, g.OutputIDs, 2)
	assert.Len(t, g.Neurons, 5)
	require.Len(t, g.Links, 6)
	for _, l := range g.Links {
		assert.True(t, l.Active)
		assert.Equal(t, 1.0, l.Weight)
		assert.Contains(t, g.InputIDs, l.FromID)
		assert.Contains(t, g.OutputIDs, l.ToID)
	}
	for _, n := range g.Neurons {
		assert.Equal(t, 0.0, n.Bias)
	}
	assert.Equal(t, 6, g.ActiveLinkCount())
	assertUniqueIDs(t, g)
	assert.Equal(t, "Genome(Inputs: 3, Outputs: 2, Neurons: 5, Links: 6/6 active)", g.String())
}

func TestGenomeCopyIsIndependent(t *testing.T) {
	ids := NewIDAllocator()
	g := NewMinimalGenome(ids, 2, 2)
	c := g.Copy()
	require.Equal(t, g.Neurons, c.Neurons)
	require.Equal(t, g.Links, c.Links)

	m := NewMutator(MutationConfig{
		BiasMutateRate: 1, BiasMutatePower: 1,
		WeightMutateRate: 1, WeightMutatePower: 1,
		DisableRate: 1, AddNeuronRate: 0,
	}, ids, rand.New(rand.NewSource(1)))
	m.Mutate(c)
	c.Links[0].Active = true
	require.True(t, m.SplitLink(c))

	assert.Len(t, g.Neurons, 4)
	assert.Len(t, g.Links, 4)
	for _, n := range g.Neurons {
		assert.Equal(t, 0.0, n.Bias)
	}
	for _, l := range g.Links {
		assert.Equal(t, 1.0, l.Weight)
		assert.True(t, l.Active)
	}
}

func TestGenomeAddAndLookup(t *testing.T) {
	ids := NewIDAllocator()
	g := NewMinimalGenome(ids, 1, 1)

	n, ok := g.Neuron(g.OutputIDs[0])
	require.True(t, ok)
	n.Bias = 0.5
	assert.Equal(t, 0.5, g.OutputNeurons()[0].Bias)

	assert.ErrorIs(t, g.AddNeuron(Neuron{ID: g.InputIDs[0]}), ErrDuplicateNeuron)
	assert.ErrorIs(t, g.AddLink(g.Links[0]), ErrDuplicateLink)

	hidden := NewNeuron(ids)
	require.NoError(t, g.AddNeuron(hidden))
	require.NoError(t, g.AddLink(NewLink(ids, g.InputIDs[0], hidden.ID, 2)))
	assert.True(t, g.HasNeuron(hidden.ID))
	idx, ok := g.NeuronIndex(hidden.ID)
	require.True(t, ok)
	assert.Equal(t, 2, idx)

	_, ok = g.Link(999)
	assert.False(t, ok)
	require.NoError(t, g.Validate())
}

func TestGenomeValidate(t *testing.T) {
	g := &Genome{
		InputIDs:  []int{1},
		OutputIDs: []int{2},
		Neurons:   []Neuron{{ID: 1}, {ID: 2}},
		Links:     []Link{{ID: 1, FromID: 1, ToID: 2, Active: true}},
	}
	require.NoError(t, g.Validate())

	// Decoded genomes have no index tables until first use.
	n, ok := g.Neuron(2)
	require.True(t, ok)
	assert.Equal(t, 2, n.ID)

	dangling := g.Copy()
	dangling.Links = append(dangling.Links, Link{ID: 2, FromID: 1, ToID: 9})
	assert.ErrorIs(t, dangling.Validate(), ErrDanglingLink)

	missing := g.Copy()
	missing.OutputIDs = []int{5}
	assert.ErrorIs(t, missing.Validate(), ErrMissingNeuron)

	dupNeuron := g.Copy()
	dupNeuron.Neurons = append(dupNeuron.Neurons, Neuron{ID: 1})
	assert.ErrorIs(t, dupNeuron.Validate(), ErrDuplicateNeuron)

	dupLink := g.Copy()
	dupLink.Links = append(dupLink.Links, Link{ID: 1, FromID: 2, ToID: 1})
	assert.ErrorIs(t, dupLink.Validate(), ErrDuplicateLink)
}
