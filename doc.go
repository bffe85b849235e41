// Package neat is an approachable take on NeuroEvolution of Augmenting Topologies (NEAT).
//
// A population of small feed-forward networks is evolved by a host that
// decides how good each network is. The engine never runs a simulation
// itself: it hands the host a generation of agents, waits for the episode to
// end, ranks the agents by the fitness the host rewarded or punished them
// with, and breeds the next generation by elitism, crossover and mutation.
// There is no speciation; genes are aligned across parents by id.
//
// Networks normalize their inputs by their sum, propagate raw weighted sums
// through hidden neurons and squash only the outputs with a sigmoid.
//
// Packages:
//
//	neat            genomes, id allocation, mutation, crossover, config, snapshots
//	neat/nn         compiles a genome into a runnable feed-forward network
//	neat/trainer    agents, ranking, breeding, the generation loop, checkpoints
//	neat/host       senses, named decisions and a timed episode clock
//	neat/storage    champion and statistics archive (memory or SQLite)
//	neat/reporting  per-generation log, CSV, Prometheus and archive reporters
//
// Basic usage:
//
//	// Load configuration
//	cfg, err := neat.LoadConfig("path/to/config")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	// Describe what the unit senses and decides
//	unit := host.BindUnit(cfg.Network, senses)
//	ids := neat.NewIDAllocator()
//	template, err := unit.Template(ids)
//	if err != nil {
//		log.Fatalf("Invalid unit: %v", err)
//	}
//
//	// Train until max_generations, evaluating every agent in each episode
//	tr, err := trainer.NewTrainer(cfg, template, trainer.WithIDs(ids))
//	if err != nil {
//		log.Fatalf("Error creating trainer: %v", err)
//	}
//	episode := host.NewTimedEpisode(cfg.Trainer, func(ctx context.Context, gen int, agents []*trainer.Agent) error {
//		for _, a := range agents {
//			decided, _ := unit.Decide(tr, a.ID)
//			tr.Reward(a.ID, score(decided))
//		}
//		return nil
//	})
//	if err := tr.Train(ctx, episode); err != nil {
//		log.Fatalf("Training failed: %v", err)
//	}
package neat
