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

	// Screening metrics
	scansTotal      *prometheus.CounterVec
	scanDuration    prometheus.Histogram
	scanRows        prometheus.Histogram
	skipsTotal      *prometheus.CounterVec
	gatewayRequests *prometheus.CounterVec
	jobsActive      *prometheus.GaugeVec
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

	// Screening metrics
	r.scansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "premia_scans_total",
			Help: "Total number of scans completed",
		},
		[]string{"strategy"},
	)
	r.scanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "premia_scan_duration_seconds",
			Help:    "Scan duration in seconds",
			Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120},
		},
	)
	r.scanRows = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "premia_scan_rows",
			Help:    "Result rows produced per scan",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
	)
	r.skipsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "premia_skips_total",
			Help: "Tickers or expirations skipped during screening",
		},
		[]string{"reason"},
	)
	r.gatewayRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "premia_gateway_requests_total",
			Help: "Total market data gateway requests",
		},
		[]string{"gateway", "kind", "status"},
	)
	r.jobsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "premia_jobs_active",
			Help: "Number of active jobs",
		},
		[]string{"type"},
	)

	reg.MustRegister(r.scansTotal)
	reg.MustRegister(r.scanDuration)
	reg.MustRegister(r.scanRows)
	reg.MustRegister(r.skipsTotal)
	reg.MustRegister(r.gatewayRequests)
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

// RecordScan records a completed scan.
func (r *Registry) RecordScan(strategy string, duration float64, rows int) {
	r.scansTotal.WithLabelValues(strategy).Inc()
	r.scanDuration.Observe(duration)
	r.scanRows.Observe(float64(rows))
}

// RecordSkip records a skipped ticker or expiration by reason code.
func (r *Registry) RecordSkip(reason string) {
	r.skipsTotal.WithLabelValues(reason).Inc()
}

// RecordGatewayRequest records one gateway call outcome.
func (r *Registry) RecordGatewayRequest(gateway, kind, status string) {
	r.gatewayRequests.WithLabelValues(gateway, kind, status).Inc()
}

// SetJobsActive sets the number of active jobs of a type.
func (r *Registry) SetJobsActive(jobType string, count int) {
	r.jobsActive.WithLabelValues(jobType).Set(float64(count))
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
