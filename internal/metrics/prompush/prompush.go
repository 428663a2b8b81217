// Package prompush adapts the metrics.Backend interface to a Prometheus
// Pushgateway. Counters and stage durations are collected in a private
// registry and pushed as one group on Flush, which suits a batch pipeline
// better than a scrape endpoint that disappears when the process exits.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/ElGTahur/pokemon-tcg-analysis/internal/metrics"
)

// Backend pushes pipeline metrics to a Prometheus Pushgateway.
type Backend struct {
	gatewayURL string
	jobName    string
	reg        *prometheus.Registry

	stageCounter  *prometheus.CounterVec // tcg_stage_total
	stageDuration *prometheus.SummaryVec // tcg_stage_duration_seconds
	cardCounter   *prometheus.CounterVec // tcg_cards_total
	runCounter    *prometheus.CounterVec // tcg_runs_total
}

// NewBackend constructs a Pushgateway backend. jobName doubles as the
// Pushgateway grouping key; gatewayURL is the base URL of the server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "tcg-etl"
	}

	reg := prometheus.NewRegistry()

	stageCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tcg_stage_total",
			Help: "Pipeline stage executions, partitioned by stage and status.",
		},
		[]string{"stage", "status"},
	)
	stageDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "tcg_stage_duration_seconds",
			Help:       "Pipeline stage duration in seconds, partitioned by stage and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"stage", "status"},
	)
	cardCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tcg_cards_total",
			Help: "Card-level counts per kind (read, rejected, duplicates, loaded, ...).",
		},
		[]string{"kind"},
	)
	runCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tcg_runs_total",
			Help: "Completed pipeline runs by outcome status.",
		},
		[]string{"status"},
	)

	for _, c := range []prometheus.Collector{stageCounter, stageDuration, cardCounter, runCounter} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register collector: %w", err)
		}
	}

	return &Backend{
		gatewayURL:    gatewayURL,
		jobName:       jobName,
		reg:           reg,
		stageCounter:  stageCounter,
		stageDuration: stageDuration,
		cardCounter:   cardCounter,
		runCounter:    runCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "tcg_stage_total":
		b.stageCounter.WithLabelValues(labels["stage"], labels["status"]).Add(delta)
	case "tcg_cards_total":
		b.cardCounter.WithLabelValues(labels["kind"]).Add(delta)
	case "tcg_runs_total":
		b.runCounter.WithLabelValues(labels["status"]).Add(delta)
	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveDuration(name string, value float64, labels metrics.Labels) {
	if name != "tcg_stage_duration_seconds" {
		return
	}
	b.stageDuration.WithLabelValues(labels["stage"], labels["status"]).Observe(value)
}

// Flush pushes the registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
