// Package metrics provides Prometheus metrics export for the generation pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter exports generation metrics in Prometheus format.
type Exporter struct {
	registry *prometheus.Registry

	generationRequests *prometheus.CounterVec
	stageLatency       *prometheus.HistogramVec
	tokensUsed         *prometheus.CounterVec
	documentsStored    prometheus.Counter
}

// Config configures the Prometheus exporter.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns default Prometheus configuration.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
	}
}

// NewExporter creates a new Prometheus metrics exporter.
func NewExporter(cfg Config) *Exporter {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &Exporter{registry: registry}

	e.generationRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inkwell",
			Subsystem: "pipeline",
			Name:      "generation_requests_total",
			Help:      "Document generation requests by pipeline mode and outcome",
		},
		[]string{"mode", "status"},
	)

	e.stageLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "inkwell",
			Subsystem: "pipeline",
			Name:      "stage_latency_seconds",
			Help:      "Pipeline stage latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"stage"},
	)

	e.tokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inkwell",
			Subsystem: "llm",
			Name:      "tokens_total",
			Help:      "LLM tokens consumed by kind (prompt, completion)",
		},
		[]string{"kind"},
	)

	e.documentsStored = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "inkwell",
			Subsystem: "store",
			Name:      "documents_created_total",
			Help:      "Documents persisted to the store",
		},
	)

	registry.MustRegister(e.generationRequests, e.stageLatency, e.tokensUsed, e.documentsStored)
	return e
}

// ObserveGeneration records one finished generation request.
func (e *Exporter) ObserveGeneration(mode, status string) {
	e.generationRequests.WithLabelValues(mode, status).Inc()
}

// ObserveStage records the latency of one pipeline stage.
func (e *Exporter) ObserveStage(stage string, d time.Duration) {
	e.stageLatency.WithLabelValues(stage).Observe(d.Seconds())
}

// AddTokens records LLM token consumption.
func (e *Exporter) AddTokens(promptTokens, completionTokens int) {
	e.tokensUsed.WithLabelValues("prompt").Add(float64(promptTokens))
	e.tokensUsed.WithLabelValues("completion").Add(float64(completionTokens))
}

// DocumentStored increments the persisted-documents counter.
func (e *Exporter) DocumentStored() {
	e.documentsStored.Inc()
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
