// Package metrics exposes Prometheus collectors for validation runs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/mrovalidate/internal/core"
)

const namespace = "mro"

// Recorder owns the validation collectors and the registry they are
// registered with.
type Recorder struct {
	registry *prometheus.Registry

	runs       *prometheus.CounterVec
	violations *prometheus.CounterVec
	duration   prometheus.Histogram
	tableRows  *prometheus.GaugeVec
	faults     *prometheus.CounterVec
}

// NewRecorder returns a recorder with its own registry, which also carries
// the Go runtime and process collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "runs_total",
			Help:      "Completed validation runs by outcome.",
		}, []string{"outcome"}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "violations_total",
			Help:      "Rule violations reported, by table and rule.",
		}, []string{"table", "rule"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a validation run.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		tableRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "table_rows",
			Help:      "Data rows in each table at the last run.",
		}, []string{"table"}),
		faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "faults_total",
			Help:      "Runs that stopped before producing a report, by fault code.",
		}, []string{"code"}),
	}

	r.registry.MustRegister(
		r.runs,
		r.violations,
		r.duration,
		r.tableRows,
		r.faults,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Observe records a finished run.
func (r *Recorder) Observe(rep *core.Report) {
	if rep == nil {
		return
	}
	r.runs.WithLabelValues(rep.Outcome()).Inc()
	r.duration.Observe(rep.Duration.Seconds())
	for _, t := range rep.Tables {
		r.tableRows.WithLabelValues(t.Key).Set(float64(t.Rows))
	}
	for _, v := range rep.Violations {
		r.violations.WithLabelValues(v.Table, v.RuleID).Inc()
	}
}

// ObserveFault records a run that failed with err.
func (r *Recorder) ObserveFault(err error) {
	if err == nil {
		return
	}
	r.faults.WithLabelValues(core.MapError(err).Code).Inc()
}

// Registry returns the registry the collectors are registered with.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
