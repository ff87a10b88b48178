// Package metrics exposes Prometheus metrics for pipeline runs and the HTTP
// API on a private registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rssdaily"

// Collector records pipeline and HTTP metrics.
type Collector struct {
	registry *prometheus.Registry

	recordsWritten  *prometheus.CounterVec
	writeFailures   *prometheus.CounterVec
	enrichmentCalls *prometheus.CounterVec
	tokensUsed      *prometheus.CounterVec
	runs            *prometheus.CounterVec
	indexSize       prometheus.Gauge
	runDuration     prometheus.Histogram

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

// NewCollector registers every metric on a fresh registry.
func NewCollector() (*Collector, error) {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		recordsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_written_total",
			Help:      "Records successfully written to the store.",
		}, []string{"source"}),
		writeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "write_failures_total",
			Help:      "Record writes the store rejected.",
		}, []string{"source"}),
		enrichmentCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrichment_calls_total",
			Help:      "Calls made to the analysis service.",
		}, []string{"source"}),
		tokensUsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_used_total",
			Help:      "Tokens reported by the analysis service.",
		}, []string{"source"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		indexSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "duplicate_index_size",
			Help:      "Links in the duplicate index at the start of the last run.",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of pipeline runs.",
			Buckets:   []float64{1, 10, 30, 60, 120, 300, 600, 1200},
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution for inbound HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of inbound HTTP requests.",
		}, []string{"method", "status"}),
	}

	for _, m := range []prometheus.Collector{
		c.recordsWritten, c.writeFailures, c.enrichmentCalls, c.tokensUsed,
		c.runs, c.indexSize, c.runDuration, c.requestDuration, c.requestTotal,
	} {
		if err := c.registry.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RecordWritten counts one successful write for source.
func (c *Collector) RecordWritten(source string) {
	c.recordsWritten.WithLabelValues(source).Inc()
}

// WriteFailed counts one rejected write for source.
func (c *Collector) WriteFailed(source string) {
	c.writeFailures.WithLabelValues(source).Inc()
}

// EnrichmentCall counts one analysis call and the tokens it used.
func (c *Collector) EnrichmentCall(source string, tokens int) {
	c.enrichmentCalls.WithLabelValues(source).Inc()
	if tokens > 0 {
		c.tokensUsed.WithLabelValues(source).Add(float64(tokens))
	}
}

// RunFinished records the outcome of a run.
func (c *Collector) RunFinished(outcome string, d time.Duration, indexSize int) {
	c.runs.WithLabelValues(outcome).Inc()
	c.runDuration.Observe(d.Seconds())
	c.indexSize.Set(float64(indexSize))
}

// Handler returns an HTTP handler for exposing Prometheus metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps next to record request counts and latency.
// Paths are left out of the labels to keep cardinality bounded.
func (c *Collector) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		status := strconv.Itoa(rw.status)
		c.requestTotal.WithLabelValues(r.Method, status).Inc()
		c.requestDuration.WithLabelValues(r.Method, status).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
