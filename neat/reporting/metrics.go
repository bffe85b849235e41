package reporting

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/baldhumanity/approachable-neat/neat/trainer"
)

// MetricsReporter exports generation statistics as Prometheus metrics
// labelled by run id.
type MetricsReporter struct {
	generations    *prometheus.CounterVec
	highestFitness *prometheus.GaugeVec
	topAverage     *prometheus.GaugeVec
	championLinks  *prometheus.GaugeVec
	population     *prometheus.GaugeVec
	stagnated      *prometheus.GaugeVec
	duration       prometheus.Histogram
}

// NewMetricsReporter creates the metrics and registers them with reg.
func NewMetricsReporter(reg prometheus.Registerer) (*MetricsReporter, error) {
	labels := []string{"run_id"}
	m := &MetricsReporter{
		generations:    prometheus.NewCounterVec(prometheus.CounterOpts{Name: "neat_generations_total", Help: "Ranked generations."}, labels),
		highestFitness: prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "neat_highest_fitness", Help: "Highest fitness observed in the run."}, labels),
		topAverage:     prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "neat_top_average_fitness", Help: "Mean fitness of the top half of the last generation."}, labels),
		championLinks:  prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "neat_champion_active_links", Help: "Active links of the last champion."}, labels),
		population:     prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "neat_population_size", Help: "Agents in the last generation."}, labels),
		stagnated:      prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "neat_stagnated", Help: "1 when the last generation plateaued."}, labels),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "neat_generation_duration_seconds",
			Help:    "Wall time of a generation including the episode.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
	}
	for _, c := range []prometheus.Collector{m.generations, m.highestFitness, m.topAverage, m.championLinks, m.population, m.stagnated, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// GenerationEnded updates the metrics of the run.
func (m *MetricsReporter) GenerationEnded(_ context.Context, report trainer.GenerationReport) error {
	s := report.Stats
	run := prometheus.Labels{"run_id": report.RunID}

	m.generations.With(run).Inc()
	m.highestFitness.With(run).Set(s.HighestFitness)
	m.topAverage.With(run).Set(s.LastTopAverage)
	m.championLinks.With(run).Set(float64(s.ChampionComplexity))
	m.population.With(run).Set(float64(s.PopulationSize))
	stagnated := 0.0
	if s.Stagnated {
		stagnated = 1
	}
	m.stagnated.With(run).Set(stagnated)
	m.duration.Observe(report.Duration.Seconds())
	return nil
}
