// Package metrics exposes training telemetry as Prometheus series.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/pearll/pearll/callbacks"
)

// Collector holds every training metric of the process. It implements
// callbacks.Recorder so it can be attached to an agent as a callback.
type Collector struct {
	envStepsTotal  *prometheus.CounterVec
	episodesTotal  *prometheus.CounterVec
	episodeReward  *prometheus.GaugeVec
	smoothedReward *prometheus.GaugeVec
	trainLoss      *prometheus.GaugeVec
	bufferSize     *prometheus.GaugeVec
	fitDuration    *prometheus.HistogramVec

	logger *zap.Logger
}

// NewCollector registers the pearll metric set on reg. A nil reg uses
// the default registerer; tests pass their own registry.
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.envStepsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "env_steps_total",
			Help:      "Total number of environment steps taken",
		},
		[]string{"agent", "env"},
	)

	c.episodesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "episodes_total",
			Help:      "Total number of completed episodes",
		},
		[]string{"agent", "env"},
	)

	c.episodeReward = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "episode_reward",
			Help:      "Reward of the most recently completed episode",
		},
		[]string{"agent", "env"},
	)

	c.smoothedReward = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "smoothed_reward",
			Help:      "Exponentially smoothed episode reward",
		},
		[]string{"agent", "env"},
	)

	c.trainLoss = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "train_loss",
			Help:      "Loss of the most recent update, by network",
		},
		[]string{"agent", "env", "network"},
	)

	c.bufferSize = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "buffer_size",
			Help:      "Number of transitions currently buffered",
		},
		[]string{"agent", "env"},
	)

	c.fitDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fit_duration_seconds",
			Help:      "Wall time of one fit call",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"agent"},
	)

	return c
}

// RecordStep implements callbacks.Recorder.
func (c *Collector) RecordStep(state *callbacks.TrainState) {
	labels := prometheus.Labels{"agent": state.Agent, "env": state.Env}
	c.envStepsTotal.With(labels).Inc()
	c.smoothedReward.With(labels).Set(state.SmoothedReward)
	c.trainLoss.With(prometheus.Labels{
		"agent": state.Agent, "env": state.Env, "network": "actor",
	}).Set(state.LastTrain.ActorLoss)
	c.trainLoss.With(prometheus.Labels{
		"agent": state.Agent, "env": state.Env, "network": "critic",
	}).Set(state.LastTrain.CriticLoss)
}

// RecordEpisode marks one finished episode.
func (c *Collector) RecordEpisode(agent, env string, reward float64) {
	labels := prometheus.Labels{"agent": agent, "env": env}
	c.episodesTotal.With(labels).Inc()
	c.episodeReward.With(labels).Set(reward)
}

// RecordBufferSize tracks the buffer fill level.
func (c *Collector) RecordBufferSize(agent, env string, size int) {
	c.bufferSize.With(prometheus.Labels{"agent": agent, "env": env}).Set(float64(size))
}

// ObserveFitDuration records the wall time of one fit.
func (c *Collector) ObserveFitDuration(agent string, d time.Duration) {
	c.fitDuration.With(prometheus.Labels{"agent": agent}).Observe(d.Seconds())
}
