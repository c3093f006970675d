// Package metrics exposes prometheus instruments for trace records and SQL
// statements.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a registry and the instruments registered on it.
type Collector struct {
	registry *prometheus.Registry

	tracesTotal   *prometheus.CounterVec
	traceDuration *prometheus.HistogramVec
	emitFailures  prometheus.Counter
	sqlDuration   prometheus.Histogram
	sqlSlowTotal  *prometheus.CounterVec
}

// NewCollector registers all instruments under namespace on a fresh
// registry, together with the go and process collectors.
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		tracesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "traces_total",
			Help:      "Total number of written trace records by type",
		}, []string{"type"}),
		traceDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "trace_duration_seconds",
			Help:      "Duration of traced calls in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"type"}),
		emitFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emit_failures_total",
			Help:      "Total number of trace records dropped because they could not be written",
		}),
		sqlDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sql_duration_seconds",
			Help:      "SQL statement duration in seconds",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		}),
		sqlSlowTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sql_slow_total",
			Help:      "Total number of slow SQL statements by bucket",
		}, []string{"bucket"}),
	}
}

// Registry returns the registry the instruments are registered on.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveTrace counts a written record and its call duration.
func (c *Collector) ObserveTrace(recordType string, d time.Duration) {
	c.tracesTotal.WithLabelValues(recordType).Inc()
	c.traceDuration.WithLabelValues(recordType).Observe(d.Seconds())
}

// ObserveEmitFailure counts a dropped record.
func (c *Collector) ObserveEmitFailure() {
	c.emitFailures.Inc()
}

// ObserveStatement records an SQL statement duration. Slow statements are
// also counted under their bucket label.
func (c *Collector) ObserveStatement(d time.Duration, slow bool, bucket string) {
	c.sqlDuration.Observe(d.Seconds())
	if slow {
		c.sqlSlowTotal.WithLabelValues(bucket).Inc()
	}
}
