package neat

import "sync/atomic"

// IDAllocator hands out neuron and link ids. Ids are never reused: the counters
// only grow, and copying an entity with an existing id pushes the counter past it.
// Identical ids in two genomes therefore denote the same historical gene.
//
// An allocator is safe for concurrent use.
type IDAllocator struct {
	nextNeuron atomic.Int64
	nextLink   atomic.Int64
}

// IDState is a serializable view of the allocator counters.
type IDState struct {
	NextNeuronID int
	NextLinkID   int
}

// NewIDAllocator creates an allocator whose first neuron and link ids are 1.
func NewIDAllocator() *IDAllocator {
	a := &IDAllocator{}
	a.nextNeuron.Store(1)
	a.nextLink.Store(1)
	return a
}

// NextNeuronID returns a fresh neuron id.
func (a *IDAllocator) NextNeuronID() int {
	return int(a.nextNeuron.Add(1) - 1)
}

// NextLinkID returns a fresh link id.
func (a *IDAllocator) NextLinkID() int {
	return int(a.nextLink.Add(1) - 1)
}

// ObserveNeuronID records that a neuron with the given id exists somewhere,
// so the counter becomes max(counter, id+1).
func (a *IDAllocator) ObserveNeuronID(id int) {
	advance(&a.nextNeuron, int64(id)+1)
}

// ObserveLinkID is the link counterpart of ObserveNeuronID.
func (a *IDAllocator) ObserveLinkID(id int) {
	advance(&a.nextLink, int64(id)+1)
}

// Observe reconciles the counters with every neuron and link id in g.
func (a *IDAllocator) Observe(g *Genome) {
	for _, n := range g.Neurons {
		a.ObserveNeuronID(n.ID)
	}
	for _, l := range g.Links {
		a.ObserveLinkID(l.ID)
	}
}

// State returns the current counters.
func (a *IDAllocator) State() IDState {
	return IDState{
		NextNeuronID: int(a.nextNeuron.Load()),
		NextLinkID:   int(a.nextLink.Load()),
	}
}

// Restore moves the counters forward to at least the given state.
// Counters are never moved backwards.
func (a *IDAllocator) Restore(s IDState) {
	advance(&a.nextNeuron, int64(s.NextNeuronID))
	advance(&a.nextLink, int64(s.NextLinkID))
}

func advance(counter *atomic.Int64, atLeast int64) {
	for {
		cur := counter.Load()
		if cur >= atLeast {
			return
		}
		if counter.CompareAndSwap(cur, atLeast) {
			return
		}
	}
}
