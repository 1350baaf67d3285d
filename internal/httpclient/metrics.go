package httpclient

import (
	"strconv" // Number formatting
	"strings" // String helpers
	"time"    // Timeouts and clocks

	"github.com/prometheus/client_golang/prometheus"          // Prometheus metrics
	"github.com/prometheus/client_golang/prometheus/promauto" // Auto-registered collectors
)

var (
	requestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payportal",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Total number of backend requests made by the client",
		},
		[]string{"method", "route", "status"},
	)
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "payportal",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Backend request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func observe(method, path string, status int, start time.Time) {
	route := routeLabel(path)
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	requestCounter.WithLabelValues(method, route, code).Inc()
	requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
}

// routeLabel keeps the first path segment so resource IDs don't explode
// label cardinality: /payments/abc/refund -> /payments
func routeLabel(path string) string {
	p := strings.Trim(path, "/")
	if p == "" {
		return "/"
	}
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	return "/" + p
}
