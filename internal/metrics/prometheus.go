package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks total HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "endpoint", "status"},
	)

	// RequestDuration tracks HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "endpoint"},
	)

	// GatewayCallsTotal tracks outgoing gateway calls by endpoint and outcome
	GatewayCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_calls_total",
			Help: "Total number of payment gateway calls",
		},
		[]string{"endpoint", "outcome"},
	)

	// GatewayCallDuration tracks outgoing gateway call duration
	GatewayCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_call_duration_seconds",
			Help:    "Payment gateway call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// CheckoutSubmissionsTotal tracks checkout submissions by stage (order, payment) and outcome
	CheckoutSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_submissions_total",
			Help: "Total number of checkout form submissions",
		},
		[]string{"stage", "outcome"},
	)

	// CheckoutSessions tracks live checkout sessions
	CheckoutSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "checkout_sessions",
			Help: "Number of live checkout sessions",
		},
	)

	// CircuitBreakerState tracks circuit breaker state (0=closed, 1=open, 2=half-open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"service", "circuit_name"},
	)

	// CircuitBreakerFailures tracks circuit breaker failures
	CircuitBreakerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of circuit breaker failures",
		},
		[]string{"service", "circuit_name"},
	)

	// InFlightSubmissions tracks submissions currently holding a single-flight gate
	InFlightSubmissions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "checkout_inflight_submissions",
			Help: "Number of checkout submissions waiting on the gateway",
		},
		[]string{"gate"},
	)

	// RejectedSubmissions tracks submissions rejected because one was already in flight
	RejectedSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_rejected_submissions_total",
			Help: "Total number of submissions rejected while another was in flight",
		},
		[]string{"gate"},
	)

	// StubOrdersTotal tracks orders created by the gateway stub
	StubOrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stub_orders_total",
			Help: "Total number of orders created by the gateway stub",
		},
		[]string{"currency"},
	)

	// StubPaymentsTotal tracks payments handled by the gateway stub
	StubPaymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stub_payments_total",
			Help: "Total number of payments handled by the gateway stub",
		},
		[]string{"method", "status"},
	)

	// PaymentAmount tracks payment amounts
	PaymentAmount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "payment_amount",
			Help:    "Payment amounts in order currency",
			Buckets: []float64{10, 50, 100, 500, 1000, 5000},
		},
	)

	// ChaosFailureRate tracks chaos engineering failure simulations
	ChaosFailureRate = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chaos_failure_enabled",
			Help: "Whether chaos failure mode is enabled (1=enabled, 0=disabled)",
		},
		[]string{"service"},
	)

	// ChaosSlowMode tracks slow response simulation
	ChaosSlowMode = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chaos_slow_mode_enabled",
			Help: "Whether chaos slow mode is enabled (1=enabled, 0=disabled)",
		},
		[]string{"service"},
	)
)

// PrometheusMiddleware creates a Gin middleware for automatic metrics collection
func PrometheusMiddleware(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		RequestsTotal.WithLabelValues(
			serviceName,
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()

		RequestDuration.WithLabelValues(
			serviceName,
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}
