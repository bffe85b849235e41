package trainer

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// GenerationStats summarizes the run after each ranked generation.
type GenerationStats struct {
	Generation         int     `csv:"generation" json:"generation" yaml:"generation"`
	HighestFitness     float64 `csv:"highest_fitness" json:"highestFitness" yaml:"highestFitness"`        // Max fitness ever observed in this run
	LastTopAverage     float64 `csv:"top_average" json:"lastTopAverage" yaml:"lastTopAverage"`            // Mean fitness of the top half
	LastImprovement    float64 `csv:"improvement" json:"lastImprovement" yaml:"lastImprovement"`          // Signed change of LastTopAverage
	Stagnated          bool    `csv:"stagnated" json:"stagnated" yaml:"stagnated"`                        // Rounded top average equals HighestFitness
	PopulationSize     int     `csv:"population" json:"populationSize" yaml:"populationSize"`             // Agents ranked this generation
	ChampionFitness    float64 `csv:"champion_fitness" json:"championFitness" yaml:"championFitness"`     // Fitness of rank 0
	ChampionComplexity int     `csv:"champion_links" json:"championComplexity" yaml:"championComplexity"` // Active links of rank 0
}

// NewGenerationStats returns the statistics of a run before its first generation.
func NewGenerationStats() GenerationStats {
	return GenerationStats{HighestFitness: math.Inf(-1)}
}

// Update folds a ranked generation into the statistics.
//
// The top half is the first len(ranked)/2 agents, or every agent when fewer
// than two were ranked. Stagnation is a plateau heuristic: the rounded top
// average has caught up with the best fitness ever seen.
func (s *GenerationStats) Update(ranked []*Agent) {
	s.Generation++
	s.PopulationSize = len(ranked)
	if len(ranked) == 0 {
		return
	}

	fitnesses := make([]float64, len(ranked))
	for i, a := range ranked {
		fitnesses[i] = a.Fitness()
	}

	top := len(ranked) / 2
	if top == 0 {
		top = len(ranked)
	}
	topAverage := stat.Mean(fitnesses[:top], nil)

	s.HighestFitness = math.Max(s.HighestFitness, floats.Max(fitnesses))
	s.LastImprovement = topAverage - s.LastTopAverage
	s.LastTopAverage = topAverage
	s.Stagnated = math.Round(topAverage) == s.HighestFitness
	s.ChampionFitness = fitnesses[0]
	s.ChampionComplexity = ranked[0].Complexity()
}
