package bot

import (
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Prometheus metrics
var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guildassistant_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "guildassistant_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	interactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guildassistant_interactions_total",
			Help: "Total number of verified interactions by type and command",
		},
		[]string{"type", "command"},
	)

	signatureFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "guildassistant_signature_failures_total",
			Help: "Total number of interaction requests with an invalid signature",
		},
	)

	deliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guildassistant_webhook_deliveries_total",
			Help: "Total number of webhook deliveries by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	rateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "guildassistant_webhook_rate_limited_total",
			Help: "Total number of 429 responses from the webhook API",
		},
	)

	loadingAcksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "guildassistant_loading_acks_total",
			Help: "Total number of interactions answered with a loading message",
		},
	)

	panicsRecovered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "guildassistant_panics_recovered_total",
			Help: "Total number of panics recovered",
		},
	)

	backgroundTasks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "guildassistant_background_tasks",
			Help: "Current number of running background tasks",
		},
	)
)

func observeDelivery(kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	deliveriesTotal.WithLabelValues(kind, outcome).Inc()
}

// panicRecoveryMiddleware catches panics in HTTP handlers and logs them.
func panicRecoveryMiddleware(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				panicsRecovered.Inc()
				logger.Error("panic recovered in HTTP handler",
					zap.Any("error", err),
					zap.String("path", r.URL.Path),
					zap.String("method", r.Method),
					zap.String("stack", string(debug.Stack())),
				)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// metricsMiddleware wraps HTTP handlers with request metrics
func metricsMiddleware(endpoint string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		httpRequestsTotal.WithLabelValues(endpoint, r.Method, strconv.Itoa(rw.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(endpoint, r.Method).Observe(time.Since(start).Seconds())
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
