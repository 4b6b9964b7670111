// Package metrics exposes report generation counters for Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of one process. Each instance owns its
// registry so tests can create several without collector conflicts.
type Metrics struct {
	registry      *prometheus.Registry
	Runs          *prometheus.CounterVec
	StoriesBuilt  prometheus.Counter
	IssuesSkipped prometheus.Counter
	SprintCharge  prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pld_runs_total",
			Help: "Report generations by result.",
		}, []string{"result"}),
		StoriesBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pld_stories_built_total",
			Help: "Stories built from milestone issues.",
		}),
		IssuesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pld_issues_skipped_total",
			Help: "Issues dropped because their body could not be parsed.",
		}),
		SprintCharge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pld_sprint_charge",
			Help: "Sprint charge of the last generated report.",
		}),
	}
	m.registry.MustRegister(m.Runs, m.StoriesBuilt, m.IssuesSkipped, m.SprintCharge)
	return m
}

// ObserveRun records the outcome of one generation. A nil Metrics is a no-op.
func (m *Metrics) ObserveRun(ok bool, stories, skipped int, charge float64) {
	if m == nil {
		return
	}
	if !ok {
		m.Runs.WithLabelValues("error").Inc()
		return
	}
	m.Runs.WithLabelValues("ok").Inc()
	m.StoriesBuilt.Add(float64(stories))
	m.IssuesSkipped.Add(float64(skipped))
	m.SprintCharge.Set(charge)
}

// Handler serves the /metrics scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
