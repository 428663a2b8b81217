// Package metrics is a small backend-agnostic layer for recording
// operational metrics from the card pipeline.
//
// It mirrors the storage abstraction: a narrow Backend interface, a global
// pluggable implementation that defaults to a no-op, and concrete systems
// (Prometheus Pushgateway) isolated in subpackages. Pipeline code calls the
// package-level helpers unconditionally; without a configured backend they
// cost nothing.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface a metrics system must satisfy.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveDuration records a duration-style observation.
	ObserveDuration(name string, value float64, labels Labels)
	// Flush pushes buffered metrics if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)      {}
func (nopBackend) ObserveDuration(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                              { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the current one.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStage records one pipeline stage execution: latency plus a
// success/failure counter. Stages are "extract", "transform", "load".
func RecordStage(job, stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"stage":  stage,
		"status": status,
	}

	backend.IncCounter("tcg_stage_total", 1, lbls)
	backend.ObserveDuration("tcg_stage_duration_seconds", d.Seconds(), lbls)
}

// RecordCards increments a card-level counter for the given job and kind.
//
// Kinds mirror the run report fields:
//   - "read"
//   - "rejected"
//   - "price_warnings"
//   - "duplicates"
//   - "loaded"
func RecordCards(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("tcg_cards_total", float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordRuns counts completed pipeline runs by outcome status.
func RecordRuns(job, status string) {
	backend.IncCounter("tcg_runs_total", 1, Labels{
		"job":    job,
		"status": status,
	})
}
