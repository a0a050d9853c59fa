package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Valuation metrics
	analysesTotal      *prometheus.CounterVec
	analysisDuration   prometheus.Histogram
	metricsUnavailable *prometheus.CounterVec
	collectorRequests  *prometheus.CounterVec
	archiveWrites      *prometheus.CounterVec
	jobsActive         prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	r.analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "valuator_analyses_total",
			Help: "Total number of ticker analyses",
		},
		[]string{"status"},
	)
	r.analysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "valuator_analysis_duration_seconds",
			Help:    "Ticker analysis duration in seconds, including data acquisition",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)
	r.metricsUnavailable = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "valuator_metrics_unavailable_total",
			Help: "Metrics reported unavailable, by metric and reason code",
		},
		[]string{"metric", "reason"},
	)
	r.collectorRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "valuator_collector_requests_total",
			Help: "Provider requests by collector, function and outcome",
		},
		[]string{"collector", "function", "status"},
	)
	r.archiveWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "valuator_archive_writes_total",
			Help: "Archive writes by record kind and outcome",
		},
		[]string{"kind", "status"},
	)
	r.jobsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "valuator_batch_jobs_active",
			Help: "Number of batch jobs pending or running",
		},
	)

	reg.MustRegister(r.analysesTotal)
	reg.MustRegister(r.analysisDuration)
	reg.MustRegister(r.metricsUnavailable)
	reg.MustRegister(r.collectorRequests)
	reg.MustRegister(r.archiveWrites)
	reg.MustRegister(r.jobsActive)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordAnalysis records a finished ticker analysis.
func (r *Registry) RecordAnalysis(status string, duration float64) {
	r.analysesTotal.WithLabelValues(status).Inc()
	r.analysisDuration.Observe(duration)
}

// RecordUnavailable counts a metric that could not be computed.
func (r *Registry) RecordUnavailable(metric, reason string) {
	r.metricsUnavailable.WithLabelValues(metric, reason).Inc()
}

// RecordCollectorRequest records one provider call.
func (r *Registry) RecordCollectorRequest(collector, function, status string) {
	r.collectorRequests.WithLabelValues(collector, function, status).Inc()
}

// RecordArchiveWrite records one archive write.
func (r *Registry) RecordArchiveWrite(kind string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.archiveWrites.WithLabelValues(kind, status).Inc()
}

// SetJobsActive sets the number of pending or running batch jobs.
func (r *Registry) SetJobsActive(count int) {
	r.jobsActive.Set(float64(count))
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
