package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "uptime_dashboard"

var (
	registry = prometheus.NewRegistry()

	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests handled by this app.",
	}, []string{"method", "path", "status"})

	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds by method/path.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "http_in_flight_requests",
		Help:      "Requests currently being served.",
	})

	dbQueryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "db_query_duration_seconds",
		Help:      "Event database query duration in seconds by backend/operation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"backend", "operation"})

	dbQueryErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "db_query_errors_total",
		Help:      "Event database query errors by backend/operation.",
	}, []string{"backend", "operation"})

	upstreamDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Uptime backend request duration in seconds by operation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	upstreamErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "upstream_request_errors_total",
		Help:      "Uptime backend request errors by operation.",
	}, []string{"operation"})

	ongoingOutages = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "ongoing_outages",
		Help:      "Outages without an up time at the last dashboard render.",
	})
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequestsTotal,
		httpRequestDuration,
		httpInFlight,
		dbQueryDuration,
		dbQueryErrors,
		upstreamDuration,
		upstreamErrors,
		ongoingOutages,
	)
}

func metricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func observabilityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := normalizeMetricPath(r.URL.Path)
		recordHTTPMetric(r.Method, route, rec.status, time.Since(start).Seconds())
	})
}

// normalizeMetricPath keeps per-host pages from becoming one series per host.
func normalizeMetricPath(path string) string {
	switch {
	case path == "/":
		return "/"
	case strings.HasPrefix(path, "/host/"):
		return "/host/{id}/"
	case strings.HasPrefix(path, "/static/"):
		return "/static/{file}"
	case path == "/monthview" || path == "/monthview/":
		return "/monthview/"
	case path == "/metrics", path == "/health", path == "/ready",
		path == "/favicon.ico", path == "/api/v1/calendar/view",
		path == "/api/v1/events/summary":
		return path
	default:
		return "other"
	}
}

func recordHTTPMetric(method, path string, status int, durationSeconds float64) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(durationSeconds)
}

func recordDBQuery(backend, operation string, durationSeconds float64, err error) {
	if backend == "" || operation == "" {
		return
	}
	dbQueryDuration.WithLabelValues(backend, operation).Observe(durationSeconds)
	if err != nil {
		dbQueryErrors.WithLabelValues(backend, operation).Inc()
	}
}

func recordExternalProbe(operation string, durationSeconds float64, err error) {
	if operation == "" {
		return
	}
	upstreamDuration.WithLabelValues(operation).Observe(durationSeconds)
	if err != nil {
		upstreamErrors.WithLabelValues(operation).Inc()
	}
}
