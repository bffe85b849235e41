package trainer

import (
	"fmt"
	"sync"

	"github.com/baldhumanity/approachable-neat/neat"
	"github.com/baldhumanity/approachable-neat/neat/nn"
)

// Agent wraps one genome for the duration of a generation and accumulates its
// fitness. All methods are safe for concurrent use.
type Agent struct {
	ID     int
	Genome *neat.Genome

	mu      sync.Mutex
	fitness float64
	network *nn.FeedForwardNetwork
}

// NewAgent compiles g into a network. It fails if g violates the evaluator's
// invariants (dangling links, cycles).
func NewAgent(id int, g *neat.Genome) (*Agent, error) {
	net, err := nn.CreateFeedForwardNetwork(g)
	if err != nil {
		return nil, fmt.Errorf("agent %d: %w", id, err)
	}
	return &Agent{ID: id, Genome: g, network: net}, nil
}

// FeedForward evaluates the agent's network on raw sense values.
func (a *Agent) FeedForward(inputs []float64) ([]float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.network.Activate(inputs)
}

// Reward adds amount to the fitness. Non-positive amounts are ignored.
func (a *Agent) Reward(amount float64) {
	if amount <= 0 {
		return
	}
	a.mu.Lock()
	a.fitness += amount
	a.mu.Unlock()
}

// Punish subtracts amount from the fitness. Non-positive amounts are ignored.
func (a *Agent) Punish(amount float64) {
	if amount <= 0 {
		return
	}
	a.mu.Lock()
	a.fitness -= amount
	a.mu.Unlock()
}

// Fitness returns the accumulated fitness.
func (a *Agent) Fitness() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fitness
}

// Complexity is the number of active links; simpler agents win fitness ties.
func (a *Agent) Complexity() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Genome.ActiveLinkCount()
}

func (a *Agent) setFitness(f float64) {
	a.mu.Lock()
	a.fitness = f
	a.mu.Unlock()
}

// genomeCopy copies the genome under the agent lock, since activation writes
// the input neurons' biases.
func (a *Agent) genomeCopy() *neat.Genome {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Genome.Copy()
}
