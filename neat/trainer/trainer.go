package trainer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/baldhumanity/approachable-neat/neat"
)

var (
	// ErrAlreadyTraining is returned by Train and Restore while a run is active.
	ErrAlreadyTraining = errors.New("trainer is already training")
	// ErrUnknownAgent is returned for agent ids not in the live population.
	ErrUnknownAgent = errors.New("unknown agent")
	// ErrPopulationExhausted is returned when breeding leaves no agents.
	ErrPopulationExhausted = errors.New("population has no agents left")
)

// State is the phase of the generation loop.
type State int

// Phases in loop order. Stop returns to StateIdle from any of them.
const (
	StateIdle State = iota
	StatePopulating
	StateEvaluating
	StateRanking
	StateBreeding
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePopulating:
		return "populating"
	case StateEvaluating:
		return "evaluating"
	case StateRanking:
		return "ranking"
	case StateBreeding:
		return "breeding"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// EpisodeRunner lets the host evaluate a generation. RunEpisode returns when
// the episode has ended; agents accumulate fitness through Reward and Punish
// while it runs. A cancelled ctx means the trainer was stopped.
type EpisodeRunner interface {
	RunEpisode(ctx context.Context, generation int, agents []*Agent) error
}

// EpisodeFunc adapts a function to EpisodeRunner.
type EpisodeFunc func(ctx context.Context, generation int, agents []*Agent) error

// RunEpisode calls f.
func (f EpisodeFunc) RunEpisode(ctx context.Context, generation int, agents []*Agent) error {
	return f(ctx, generation, agents)
}

// GenerationReport describes a ranked generation.
type GenerationReport struct {
	RunID    string
	Stats    GenerationStats
	Ranked   []*Agent
	Champion *neat.Genome // Copy of the rank 0 genome
	Duration time.Duration
}

// Reporter receives a report after every ranked generation. Reporter errors
// are logged and do not stop training.
type Reporter interface {
	GenerationEnded(ctx context.Context, report GenerationReport) error
}

// Option configures a Trainer.
type Option func(*Trainer)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(t *Trainer) { t.logger = logger }
}

// WithRand sets the random source of mutation, crossover and breeding.
func WithRand(rng *rand.Rand) Option {
	return func(t *Trainer) { t.rng = rng }
}

// WithIDs shares an existing id allocator.
func WithIDs(ids *neat.IDAllocator) Option {
	return func(t *Trainer) { t.ids = ids }
}

// WithSeed places an unmutated copy of g in slot 0 of every fresh population,
// for example a champion loaded from a snapshot.
func WithSeed(g *neat.Genome) Option {
	return func(t *Trainer) { t.seed = g }
}

// WithCheckpointPath saves a checkpoint of every bred generation to path.
func WithCheckpointPath(path string) Option {
	return func(t *Trainer) { t.checkpointPath = path }
}

// WithReporters appends generation reporters.
func WithReporters(reporters ...Reporter) Option {
	return func(t *Trainer) { t.reporters = append(t.reporters, reporters...) }
}

// Trainer drives the generation loop: populate, let the host evaluate, rank,
// breed. One goroutine runs Train; Tick, Reward, Punish and Stop may be
// called from any goroutine.
type Trainer struct {
	config         *neat.Config
	template       *neat.Genome
	seed           *neat.Genome
	ids            *neat.IDAllocator
	rng            *rand.Rand
	logger         *slog.Logger
	reporters      []Reporter
	reproduction   *Reproduction
	checkpointPath string

	// runMu is held by the goroutine running the generation loop. A stopped
	// run keeps it until it has wound down, so runs never share rng.
	runMu sync.Mutex

	mu              sync.RWMutex
	state           State
	session         int
	runID           string
	cancel          context.CancelFunc
	population      *Population
	stats           GenerationStats
	champion        *neat.Genome
	championFitness float64
	nextAgentID     int
	restored        *Checkpoint
}

// NewTrainer creates an idle trainer that breeds genomes shaped like template.
func NewTrainer(config *neat.Config, template *neat.Genome, opts ...Option) (*Trainer, error) {
	if config == nil {
		config = neat.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if template == nil {
		return nil, fmt.Errorf("trainer: template genome is required")
	}
	if err := template.Validate(); err != nil {
		return nil, fmt.Errorf("trainer: invalid template: %w", err)
	}

	t := &Trainer{
		config:      config,
		template:    template,
		logger:      slog.Default(),
		nextAgentID: 1,
		stats:       NewGenerationStats(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.ids == nil {
		t.ids = neat.NewIDAllocator()
	}
	if t.rng == nil {
		seed := config.Trainer.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		t.rng = rand.New(rand.NewSource(seed))
	}
	t.ids.Observe(template)
	if t.seed != nil {
		t.ids.Observe(t.seed)
	}

	mutator := neat.NewMutator(config.Mutation, t.ids, t.rng)
	t.reproduction = NewReproduction(config.Trainer, mutator)
	return t, nil
}

// Train runs generations until ctx is cancelled, Stop is called or
// max_generations is reached. It returns nil after Stop, ctx.Err() after
// cancellation and the runner's error if an episode fails. Every call starts
// from a fresh population unless a checkpoint was restored.
//
// A Train called right after Stop waits until the stopped run has returned
// from its episode runner and left the generation loop.
func (t *Trainer) Train(ctx context.Context, runner EpisodeRunner) error {
	t.mu.Lock()
	if t.state != StateIdle {
		t.mu.Unlock()
		return ErrAlreadyTraining
	}
	t.session++
	session := t.session
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.runID = uuid.NewString()
	t.stats = NewGenerationStats()
	t.champion = nil
	t.championFitness = 0
	t.state = StatePopulating
	restored := t.restored
	t.restored = nil
	runID := t.runID
	t.mu.Unlock()
	defer cancel()

	t.runMu.Lock()
	defer t.runMu.Unlock()
	if !t.current(session) {
		return nil
	}

	var (
		genomes []*neat.Genome
		fitness []float64
	)
	if restored != nil {
		genomes = restored.Genomes
		fitness = restored.Fitness
		t.mu.Lock()
		if t.session == session {
			t.stats = restored.Stats
		}
		t.mu.Unlock()
		t.logger.Info("resuming run from checkpoint",
			"run_id", runID, "generation", restored.Stats.Generation, "population", len(genomes))
	} else {
		genomes = t.reproduction.CreatePopulation(t.template, t.seed, t.config.Trainer.Participants)
		t.logger.Info("starting run", "run_id", runID, "population", len(genomes))
	}

	for {
		if limit := t.config.Trainer.MaxGenerations; limit > 0 && t.Stats().Generation >= limit {
			t.logger.Info("reached max generations", "run_id", runID, "generation", limit)
			t.finish(session)
			return nil
		}

		next, err := t.runGeneration(ctx, session, runner, genomes, fitness)
		fitness = nil
		if err != nil {
			if t.finish(session) {
				if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
					t.logger.Info("run cancelled", "run_id", runID)
				} else {
					t.logger.Error("run failed", "run_id", runID, "error", err)
				}
				return err
			}
			return nil
		}
		if next == nil {
			// Stopped.
			return nil
		}
		genomes = next
	}
}

// runGeneration evaluates, ranks and breeds one generation. It returns nil
// genomes without error when the session was stopped. fitness, when it
// matches genomes, is the score the agents start the episode with.
func (t *Trainer) runGeneration(ctx context.Context, session int, runner EpisodeRunner, genomes []*neat.Genome, fitness []float64) ([]*neat.Genome, error) {
	start := time.Now()

	pop, err := t.populate(genomes, fitness)
	if err != nil {
		return nil, err
	}
	generation := t.Stats().Generation + 1

	if !t.enter(session, StateEvaluating, pop) {
		return nil, nil
	}
	t.logger.Debug("evaluating generation", "run_id", t.RunID(), "generation", generation, "population", pop.Len())
	if err := runner.RunEpisode(ctx, generation, pop.Agents); err != nil {
		if !t.current(session) {
			return nil, nil
		}
		return nil, fmt.Errorf("episode of generation %d failed: %w", generation, err)
	}
	if err := ctx.Err(); err != nil {
		if !t.current(session) {
			return nil, nil
		}
		return nil, err
	}

	if !t.enter(session, StateRanking, pop) {
		return nil, nil
	}
	ranked := pop.Rank()
	champion := ranked[0].genomeCopy()

	t.mu.Lock()
	if t.session != session {
		t.mu.Unlock()
		return nil, nil
	}
	t.stats.Update(ranked)
	stats := t.stats
	t.champion = champion
	t.championFitness = ranked[0].Fitness()
	runID := t.runID
	t.mu.Unlock()

	t.logger.Info("generation ranked",
		"run_id", runID,
		"generation", stats.Generation,
		"highest_fitness", stats.HighestFitness,
		"top_average", stats.LastTopAverage,
		"improvement", stats.LastImprovement,
		"stagnated", stats.Stagnated,
	)
	report := GenerationReport{
		RunID:    runID,
		Stats:    stats,
		Ranked:   ranked,
		Champion: champion,
		Duration: time.Since(start),
	}
	for _, r := range t.reporters {
		if !t.current(session) {
			return nil, nil
		}
		if err := r.GenerationEnded(ctx, report); err != nil {
			t.logger.Warn("reporter failed", "run_id", runID, "generation", stats.Generation, "error", err)
		}
	}

	if !t.enter(session, StateBreeding, pop) {
		return nil, nil
	}
	next, err := t.reproduction.Breed(ranked)
	if err != nil {
		return nil, err
	}
	if t.config.Trainer.PadPopulation {
		next = t.reproduction.Pad(next, champion, t.config.Trainer.Participants)
	}
	if len(next) == 0 {
		return nil, ErrPopulationExhausted
	}
	if t.checkpointPath != "" && t.current(session) {
		if err := SaveCheckpoint(t.checkpointPath, t.nextCheckpoint(runID, stats, next)); err != nil {
			t.logger.Warn("checkpoint failed", "run_id", runID, "generation", stats.Generation, "error", err)
		}
	}

	if !t.enter(session, StatePopulating, nil) {
		return nil, nil
	}
	return next, nil
}

// populate wraps genomes in agents. A genome the evaluator rejects is
// replaced by a copy of the first genome, which is the carried-over champion,
// and starts from zero fitness.
func (t *Trainer) populate(genomes []*neat.Genome, fitness []float64) (*Population, error) {
	if len(genomes) == 0 {
		return nil, ErrPopulationExhausted
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	agents := make([]*Agent, 0, len(genomes))
	for i, g := range genomes {
		a, err := NewAgent(t.nextAgentID, g)
		if err != nil {
			if i == 0 {
				return nil, fmt.Errorf("failed to create population: %w", err)
			}
			t.logger.Warn("replacing invalid genome with champion copy", "slot", i, "error", err)
			a, err = NewAgent(t.nextAgentID, genomes[0].Copy())
			if err != nil {
				return nil, fmt.Errorf("failed to create population: %w", err)
			}
		} else if len(fitness) == len(genomes) {
			a.setFitness(fitness[i])
		}
		t.nextAgentID++
		agents = append(agents, a)
	}
	return NewPopulation(agents), nil
}

// enter moves to state if session is still current. pop replaces the live
// population unless it is nil.
func (t *Trainer) enter(session int, state State, pop *Population) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session != session {
		return false
	}
	t.state = state
	if pop != nil {
		t.population = pop
	}
	return true
}

func (t *Trainer) current(session int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.session == session
}

// finish returns the trainer to idle if session is still current.
func (t *Trainer) finish(session int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session != session {
		return false
	}
	t.state = StateIdle
	t.population = nil
	t.cancel = nil
	return true
}

// Stop ends the current run immediately. The live population and the run's
// statistics are discarded; the last champion stays available.
func (t *Trainer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateIdle {
		return
	}
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.session++
	t.state = StateIdle
	t.population = nil
	t.stats = NewGenerationStats()
	t.logger.Info("run stopped", "run_id", t.runID)
}

// Tick feeds raw sense values to an agent and returns its decisions.
func (t *Trainer) Tick(agentID int, inputs []float64) ([]float64, error) {
	a, err := t.Agent(agentID)
	if err != nil {
		return nil, err
	}
	return a.FeedForward(inputs)
}

// Reward adds amount to an agent's fitness. Non-positive amounts are ignored.
func (t *Trainer) Reward(agentID int, amount float64) error {
	a, err := t.Agent(agentID)
	if err != nil {
		return err
	}
	a.Reward(amount)
	return nil
}

// Punish subtracts amount from an agent's fitness. Non-positive amounts are ignored.
func (t *Trainer) Punish(agentID int, amount float64) error {
	a, err := t.Agent(agentID)
	if err != nil {
		return err
	}
	a.Punish(amount)
	return nil
}

// Agent returns a live agent by id.
func (t *Trainer) Agent(agentID int) (*Agent, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.population != nil {
		if a, ok := t.population.Agent(agentID); ok {
			return a, nil
		}
	}
	return nil, fmt.Errorf("agent %d: %w", agentID, ErrUnknownAgent)
}

// Agents returns the live agents in slot order, or nil when idle.
func (t *Trainer) Agents() []*Agent {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.population == nil {
		return nil
	}
	return append([]*Agent(nil), t.population.Agents...)
}

// State returns the current phase.
func (t *Trainer) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Stats returns the statistics of the current run.
func (t *Trainer) Stats() GenerationStats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stats
}

// RunID identifies the current or last run.
func (t *Trainer) RunID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.runID
}

// Champion returns a copy of the best genome of the last ranked generation
// and its fitness. ok is false before the first generation was ranked.
func (t *Trainer) Champion() (g *neat.Genome, fitness float64, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.champion == nil {
		return nil, 0, false
	}
	return t.champion.Copy(), t.championFitness, true
}

// IDs returns the allocator shared by every genome of this trainer.
func (t *Trainer) IDs() *neat.IDAllocator {
	return t.ids
}
