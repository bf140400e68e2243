// Package metrics exports engine events as Prometheus metrics.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"gitlab.com/equivcheck-2025.net/internal/core/ports/secondary"
	"gitlab.com/equivcheck-2025.net/internal/domain"
)

var _ secondary.MetricsRecorder = (*PrometheusRecorder)(nil)

// PrometheusRecorder implements the MetricsRecorder interface.
type PrometheusRecorder struct {
	invocations    *prometheus.CounterVec
	invocationTime *prometheus.HistogramVec
	runs           *prometheus.CounterVec
	runIterations  *prometheus.HistogramVec
	runDuration    *prometheus.HistogramVec
}

// NewPrometheusRecorder registers the engine metrics on reg. A nil reg uses
// the default registerer.
func NewPrometheusRecorder(namespace string, reg prometheus.Registerer) (*PrometheusRecorder, error) {
	if namespace == "" {
		return nil, errors.New("metrics namespace is required")
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	r := &PrometheusRecorder{
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "invocations_total",
			Help:      "Entry point invocations by contract, unit and observed behavior.",
		}, []string{"contract", "unit", "behavior"}),
		invocationTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "invocation_duration_seconds",
			Help:      "Wall time of one invocation.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		}, []string{"contract", "unit"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "runs_total",
			Help:      "Finished test runs by contract and final status.",
		}, []string{"contract", "status"}),
		runIterations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "run_iterations",
			Help:      "Iterations executed per run.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"contract"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "run_duration_seconds",
			Help:      "Wall time of one test run.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"contract"}),
	}

	for _, c := range []prometheus.Collector{r.invocations, r.invocationTime, r.runs, r.runIterations, r.runDuration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return r, nil
}

func (r *PrometheusRecorder) ObserveInvocation(contract, unit string, behavior domain.Behavior, elapsed time.Duration) {
	r.invocations.WithLabelValues(contract, unit, string(behavior)).Inc()
	r.invocationTime.WithLabelValues(contract, unit).Observe(elapsed.Seconds())
}

func (r *PrometheusRecorder) ObserveRun(contract string, status domain.RunStatus, iterations int, elapsed time.Duration) {
	r.runs.WithLabelValues(contract, string(status)).Inc()
	r.runIterations.WithLabelValues(contract).Observe(float64(iterations))
	r.runDuration.WithLabelValues(contract).Observe(elapsed.Seconds())
}
