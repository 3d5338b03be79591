// internal/metrics/metrics.go
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Availability outcomes
const (
	OutcomeAvailable         = "available"
	OutcomeConflict          = "conflict"
	OutcomeExclusiveConflict = "exclusive_conflict"
	OutcomeError             = "error"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	availabilityChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "availability_checks_total",
			Help: "Rights availability checks by outcome.",
		},
		[]string{"outcome"},
	)

	contractsReconciled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "contracts_reconciled_total",
		Help: "Contracts whose stored status was moved to Expired.",
	})

	registerOnce sync.Once
)

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpInFlight,
			httpRequestsTotal,
			httpRequestDuration,
			availabilityChecks,
			contractsReconciled,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request count, latency and in-flight requests.
// Paths are the matched route templates so ids don't explode cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		httpInFlight.Inc()
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		httpRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpInFlight.Dec()
	}
}

func ObserveAvailability(outcome string) {
	availabilityChecks.WithLabelValues(outcome).Inc()
}

func AddReconciled(n int64) {
	if n > 0 {
		contractsReconciled.Add(float64(n))
	}
}
