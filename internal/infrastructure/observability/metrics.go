package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Sweep outcomes recorded by SweepsTotal.
const (
	SweepCompleted = "completed"
	SweepCancelled = "cancelled"
	SweepStale     = "stale"
)

// Collector holds all Prometheus metrics for the application. Every collector
// owns its registry so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Layout metrics
	Relayouts      *prometheus.CounterVec
	LayoutDuration *prometheus.HistogramVec
	NodesDisplayed prometheus.Gauge

	// Connection loading metrics
	Sweeps            *prometheus.CounterVec
	SuggestFailures   prometheus.Counter
	SuggestDuration   prometheus.Histogram
	ConnectionsLoaded prometheus.Gauge

	// Note source metrics
	NoteReads *prometheus.CounterVec
}

// NewCollector creates a new metrics collector with the given namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Relayouts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "relayouts_total",
				Help:      "Total number of layout computations by view mode",
			},
			[]string{"mode"},
		),
		LayoutDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "layout_duration_seconds",
				Help:      "Layout computation time in seconds",
				Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
			},
			[]string{"mode"},
		),
		NodesDisplayed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "nodes_displayed",
			Help:      "Number of concept nodes in the current layout",
		}),
		Sweeps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "connection_sweeps_total",
				Help:      "Connection sweeps by outcome",
			},
			[]string{"outcome"},
		),
		SuggestFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggest_failures_total",
			Help:      "Groups whose connection suggestion failed",
		}),
		SuggestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "suggest_duration_seconds",
			Help:      "Connection suggestion latency per group",
			Buckets:   prometheus.DefBuckets,
		}),
		ConnectionsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_loaded",
			Help:      "Connections accepted from the latest sweep",
		}),
		NoteReads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "note_reads_total",
				Help:      "Note source reads by source and status",
			},
			[]string{"source", "status"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Relayouts,
		c.LayoutDuration,
		c.NodesDisplayed,
		c.Sweeps,
		c.SuggestFailures,
		c.SuggestDuration,
		c.ConnectionsLoaded,
		c.NoteReads,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// RecordLayout records one layout computation.
func (c *Collector) RecordLayout(mode string, nodes int, d time.Duration) {
	if c == nil {
		return
	}
	c.Relayouts.WithLabelValues(mode).Inc()
	c.LayoutDuration.WithLabelValues(mode).Observe(d.Seconds())
	c.NodesDisplayed.Set(float64(nodes))
}

// RecordSweep records the outcome of a connection sweep.
func (c *Collector) RecordSweep(outcome string, connections int) {
	if c == nil {
		return
	}
	c.Sweeps.WithLabelValues(outcome).Inc()
	if outcome == SweepCompleted {
		c.ConnectionsLoaded.Set(float64(connections))
	}
}

// RecordSuggest records one suggester call.
func (c *Collector) RecordSuggest(d time.Duration, err error) {
	if c == nil {
		return
	}
	c.SuggestDuration.Observe(d.Seconds())
	if err != nil {
		c.SuggestFailures.Inc()
	}
}

// RecordNoteRead records one read from a note source.
func (c *Collector) RecordNoteRead(source string, err error) {
	if c == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	c.NoteReads.WithLabelValues(source, status).Inc()
}

// Registry returns the Prometheus registry for this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's metrics in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
