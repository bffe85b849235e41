package nn

import (
	"errors"
	"fmt"
	"math"

	"github.com/baldhumanity/approachable-neat/neat"
)

var (
	// ErrCycle is returned when the active links feeding an output form a cycle.
	ErrCycle = errors.New("cycle detected in active links")
	// ErrDanglingLink is returned when an active link references an unknown neuron.
	ErrDanglingLink = neat.ErrDanglingLink
	// ErrInputMismatch is returned when the input count differs from the input layer size.
	ErrInputMismatch = errors.New("input count does not match input neurons")
	// ErrNonFiniteInput is returned for NaN or infinite sense values.
	ErrNonFiniteInput = errors.New("non-finite input value")
)

// incoming is an active link feeding a neuron, resolved to slice positions.
type incoming struct {
	from   int // index into Genome.Neurons
	weight float64
}

// FeedForwardNetwork is a compiled view of a genome that can be activated.
//
// Biases are read from the genome on every activation, so the genome's input
// neurons receive the injected values. Any structural change to the genome
// (mutation, new links) requires compiling a new network.
type FeedForwardNetwork struct {
	genome    *neat.Genome
	inputs    []int        // Neuron indexes of the input layer
	outputs   []int        // Neuron indexes of the output layer
	evalOrder []int        // Neuron indexes, every neuron after all its sources
	incoming  [][]incoming // Indexed like Genome.Neurons

	raw []float64 // Scratch buffer of raw weighted sums
}

// CreateFeedForwardNetwork builds a runnable network from a genome.
//
// Only neurons upstream of an output are visited. The traversal marks each
// neuron in progress while its sources are resolved; reaching an in-progress
// neuron again means the active links contain a cycle.
func CreateFeedForwardNetwork(g *neat.Genome) (*FeedForwardNetwork, error) {
	net := &FeedForwardNetwork{
		genome:   g,
		inputs:   make([]int, len(g.InputIDs)),
		outputs:  make([]int, len(g.OutputIDs)),
		incoming: make([][]incoming, len(g.Neurons)),
		raw:      make([]float64, len(g.Neurons)),
	}

	for i, id := range g.InputIDs {
		idx, ok := g.NeuronIndex(id)
		if !ok {
			return nil, fmt.Errorf("input neuron %d: %w", id, neat.ErrMissingNeuron)
		}
		net.inputs[i] = idx
	}
	for i, id := range g.OutputIDs {
		idx, ok := g.NeuronIndex(id)
		if !ok {
			return nil, fmt.Errorf("output neuron %d: %w", id, neat.ErrMissingNeuron)
		}
		net.outputs[i] = idx
	}

	for _, l := range g.Links {
		if !l.Active {
			continue
		}
		from, ok := g.NeuronIndex(l.FromID)
		if !ok {
			return nil, fmt.Errorf("link %d from %d: %w", l.ID, l.FromID, ErrDanglingLink)
		}
		to, ok := g.NeuronIndex(l.ToID)
		if !ok {
			return nil, fmt.Errorf("link %d to %d: %w", l.ID, l.ToID, ErrDanglingLink)
		}
		net.incoming[to] = append(net.incoming[to], incoming{from: from, weight: l.Weight})
	}

	const (
		unvisited = iota
		inProgress
		done
	)
	state := make([]uint8, len(g.Neurons))

	var visit func(idx int) error
	visit = func(idx int) error {
		switch state[idx] {
		case done:
			return nil
		case inProgress:
			return fmt.Errorf("neuron %d: %w", g.Neurons[idx].ID, ErrCycle)
		}
		state[idx] = inProgress
		for _, in := range net.incoming[idx] {
			if err := visit(in.from); err != nil {
				return err
			}
		}
		state[idx] = done
		net.evalOrder = append(net.evalOrder, idx)
		return nil
	}

	for _, idx := range net.outputs {
		if err := visit(idx); err != nil {
			return nil, err
		}
	}
	return net, nil
}

// Activate normalizes inputs, writes them into the input neurons' biases and
// returns sigmoid(raw sum) for every output neuron, in output order.
//
// The raw sum of a neuron is its bias plus the weighted raw sums of its active
// sources. Only the outputs are squashed; hidden neurons propagate raw sums.
func (net *FeedForwardNetwork) Activate(inputs []float64) ([]float64, error) {
	if len(inputs) != len(net.inputs) {
		return nil, fmt.Errorf("%w: got %d, network has %d", ErrInputMismatch, len(inputs), len(net.inputs))
	}
	normalized, err := Normalize(inputs)
	if err != nil {
		return nil, err
	}

	neurons := net.genome.Neurons
	for i, idx := range net.inputs {
		neurons[idx].Bias = normalized[i]
	}

	for _, idx := range net.evalOrder {
		sum := 0.0
		for _, in := range net.incoming[idx] {
			sum += in.weight * net.raw[in.from]
		}
		net.raw[idx] = sum + neurons[idx].Bias
	}

	outputs := make([]float64, len(net.outputs))
	for i, idx := range net.outputs {
		outputs[i] = neat.Sigmoid(net.raw[idx])
	}
	return outputs, nil
}

// FeedForward compiles g and activates it once.
func FeedForward(g *neat.Genome, inputs []float64) ([]float64, error) {
	net, err := CreateFeedForwardNetwork(g)
	if err != nil {
		return nil, err
	}
	return net.Activate(inputs)
}

// Normalize divides every value by the sum of all values. A zero sum yields a
// zero vector instead of non-finite values. Inputs whose sum overflows are
// scaled down by their largest magnitude first.
func Normalize(inputs []float64) ([]float64, error) {
	sum, scale := 0.0, 0.0
	for i, v := range inputs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("input %d: %w", i, ErrNonFiniteInput)
		}
		sum += v
		scale = math.Max(scale, math.Abs(v))
	}

	out := make([]float64, len(inputs))
	if math.IsInf(sum, 0) {
		sum = 0
		for i, v := range inputs {
			out[i] = v / scale
			sum += out[i]
		}
	} else {
		copy(out, inputs)
	}
	if sum == 0 {
		clear(out)
		return out, nil
	}
	for i, v := range out {
		out[i] = v / sum
		if math.IsInf(out[i], 0) || math.IsNaN(out[i]) {
			return nil, fmt.Errorf("input %d normalized by %g: %w", i, sum, ErrNonFiniteInput)
		}
	}
	return out, nil
}
