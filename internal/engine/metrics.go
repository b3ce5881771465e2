package engine

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type runnerMetrics struct {
	steps        prometheus.Counter
	episodes     *prometheus.CounterVec
	episodeSteps prometheus.Histogram
}

func newRunnerMetrics(reg prometheus.Registerer) (*runnerMetrics, error) {
	m := &runnerMetrics{
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "windy_steps_total",
			Help: "Total number of environment transitions",
		}),
		episodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "windy_episodes_total",
			Help: "Total number of finished episodes by outcome",
		}, []string{"outcome"}),
		episodeSteps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "windy_episode_steps",
			Help:    "Number of steps taken per episode",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
	var err error
	if m.steps, err = register(reg, m.steps); err != nil {
		return nil, err
	}
	if m.episodes, err = register(reg, m.episodes); err != nil {
		return nil, err
	}
	if m.episodeSteps, err = register(reg, m.episodeSteps); err != nil {
		return nil, err
	}
	return m, nil
}

// register returns the collector already registered under the same
// descriptor, if any, so several runners can share one registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *runnerMetrics) observeEpisode(outcome string, steps int) {
	m.episodes.WithLabelValues(outcome).Inc()
	m.episodeSteps.Observe(float64(steps))
}
