package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "atelier_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "atelier_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	// Gateway operation metrics
	GatewayOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "atelier_gateway_operations_total",
		Help: "Generic query gateway operations by table and outcome",
	}, []string{"operation", "table", "outcome"})

	// Sequence allocator metrics
	SequenceRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "atelier_sequence_retries_total",
		Help: "Number allocation retries caused by uniqueness conflicts",
	}, []string{"kind"})

	// Lifecycle metrics
	LifecycleTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "atelier_lifecycle_transitions_total",
		Help: "Project lifecycle transitions by kind and outcome",
	}, []string{"transition", "outcome"})
)

// Middleware records request count and duration for every route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration)
	}
}

// Handler exposes the prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
