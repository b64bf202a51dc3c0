package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector this process exposes on /metrics.
var Registry = prometheus.NewRegistry()

var (
	recordAdmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "record_admissions_total",
		Help: "Record admission attempts by call shape and result",
	}, []string{"shape", "result"})

	recordQueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "record_queries_total",
		Help: "Record queries by kind",
	}, []string{"kind"})

	storeDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "record_store_duration_seconds",
		Help:    "Record store call latency",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"op"})

	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRateLimitedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	}, []string{"group"})

	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

func init() {
	Registry.MustRegister(
		recordAdmissionsTotal,
		recordQueriesTotal,
		storeDuration,
		httpRequestsTotal,
		httpRateLimitedTotal,
		httpRequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// ObserveRateLimited counts one request rejected with 429.
func ObserveRateLimited(group string) {
	httpRateLimitedTotal.WithLabelValues(group).Inc()
}

// ObserveAdmission counts one admission attempt.
func ObserveAdmission(shape, result string) {
	recordAdmissionsTotal.WithLabelValues(shape, result).Inc()
}

// ObserveQuery counts one query of the given kind.
func ObserveQuery(kind string) {
	recordQueriesTotal.WithLabelValues(kind).Inc()
}

// ObserveStoreDuration records how long a store call took.
func ObserveStoreDuration(op string, d time.Duration) {
	storeDuration.WithLabelValues(op).Observe(d.Seconds())
}

// Middleware counts requests and their latency by route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}
