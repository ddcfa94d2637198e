// Package metrics exports extraction telemetry as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DIVT313/forensic-agent/internal/core/domain"
	"github.com/DIVT313/forensic-agent/internal/core/ports/driven"
)

// Ensure Observer implements the interface.
var _ driven.RunObserver = (*Observer)(nil)

const namespace = "forensic_agent"

// Observer records outcomes and runs on its own registry.
type Observer struct {
	registry *prometheus.Registry

	outcomes    *prometheus.CounterVec
	records     *prometheus.CounterVec
	dropped     *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	runs        prometheus.Counter
	lastRunTime prometheus.Gauge
}

// NewObserver creates an observer with the Go and process collectors
// registered alongside the extraction metrics.
func NewObserver() *Observer {
	o := &Observer{
		registry: prometheus.NewRegistry(),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_outcomes_total",
			Help:      "Terminal source outcomes by source and status.",
		}, []string{"source", "status"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_extracted_total",
			Help:      "Records written to artifacts.",
		}, []string{"source"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_dropped_total",
			Help:      "Rows skipped because they could not be decoded.",
		}, []string{"source"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_duration_seconds",
			Help:      "Time spent extracting one source.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
		}, []string{"source"}),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed extraction runs.",
		}),
		lastRunTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Completion time of the latest run.",
		}),
	}
	o.registry.MustRegister(
		o.outcomes, o.records, o.dropped, o.duration, o.runs, o.lastRunTime,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return o
}

// ObserveOutcome implements driven.RunObserver.
func (o *Observer) ObserveOutcome(outcome domain.Outcome) {
	source := outcome.Source.String()
	o.outcomes.WithLabelValues(source, outcome.Status.String()).Inc()
	o.records.WithLabelValues(source).Add(float64(outcome.Count))
	o.dropped.WithLabelValues(source).Add(float64(outcome.Dropped))
	if outcome.Status != domain.OutcomeSkipped {
		o.duration.WithLabelValues(source).Observe(outcome.Duration().Seconds())
	}
}

// ObserveRun implements driven.RunObserver.
func (o *Observer) ObserveRun(result *domain.RunResult) {
	if result == nil {
		return
	}
	o.runs.Inc()
	o.lastRunTime.Set(float64(result.FinishedAt.UnixNano()) / 1e9)
}

// Registry exposes the underlying registry.
func (o *Observer) Registry() *prometheus.Registry {
	return o.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (o *Observer) Handler() http.Handler {
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})
}
