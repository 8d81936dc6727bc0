// Package metrics exposes Prometheus instrumentation for analysis runs,
// preprocessing steps and HTTP requests. Each Recorder owns its registry so
// tests and embedded servers never collide on global state.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder wraps the collectors used across dataprep. A nil *Recorder is
// valid and records nothing.
type Recorder struct {
	registry        *prometheus.Registry
	analyses        prometheus.Counter
	analysisLatency prometheus.Histogram
	steps           *prometheus.CounterVec
	stepLatency     *prometheus.HistogramVec
	valuesChanged   *prometheus.CounterVec
	requests        *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
}

var latencyBuckets = []float64{
	0.001, // 1ms - tiny tables
	0.01,
	0.1,
	1, // 1s - large tables
	10,
}

// New creates a Recorder with its own registry, including the Go runtime
// and process collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		analyses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dataprep_analyses_total",
			Help: "Total number of dataset analyses",
		}),
		analysisLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dataprep_analysis_duration_seconds",
			Help:    "Analysis duration in seconds",
			Buckets: latencyBuckets,
		}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dataprep_preprocess_steps_total",
			Help: "Preprocessing steps applied",
		}, []string{"step", "method"}),
		stepLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dataprep_preprocess_step_duration_seconds",
			Help:    "Preprocessing step duration in seconds, including re-analysis",
			Buckets: latencyBuckets,
		}, []string{"step"}),
		valuesChanged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dataprep_values_changed_total",
			Help: "Cells replaced, filled, encoded or normalized",
		}, []string{"step"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dataprep_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "code"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dataprep_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: latencyBuckets,
		}, []string{"route"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.analyses, r.analysisLatency,
		r.steps, r.stepLatency, r.valuesChanged,
		r.requests, r.requestLatency,
	)
	return r
}

// Registry exposes the underlying registry for gathering in tests.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ObserveAnalysis records one Analyze call.
func (r *Recorder) ObserveAnalysis(d time.Duration) {
	if r == nil {
		return
	}
	r.analyses.Inc()
	r.analysisLatency.Observe(d.Seconds())
}

// ObserveStep records one preprocessing step and the number of cells it changed.
func (r *Recorder) ObserveStep(step, method string, changed int, d time.Duration) {
	if r == nil {
		return
	}
	r.steps.WithLabelValues(step, method).Inc()
	r.stepLatency.WithLabelValues(step).Observe(d.Seconds())
	if changed > 0 {
		r.valuesChanged.WithLabelValues(step).Add(float64(changed))
	}
}

// ObserveRequest records one HTTP request.
func (r *Recorder) ObserveRequest(route, code string, d time.Duration) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(route, code).Inc()
	r.requestLatency.WithLabelValues(route).Observe(d.Seconds())
}
