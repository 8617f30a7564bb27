// Package metrics exposes Prometheus collectors for authentication,
// access control and account provisioning.
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
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campus_login_attempts_total",
		Help: "Login attempts by surface and outcome.",
	}, []string{"surface", "outcome"})

	AccessDenied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campus_access_denied_total",
		Help: "Requests rejected by the role guard.",
	}, []string{"required_role", "reason"})

	Provisioning = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campus_provisioning_total",
		Help: "Account provisioning operations by outcome.",
	}, []string{"operation", "outcome"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "campus_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// ObserveProvisioning records the outcome of a provisioning operation:
// success, rejected (invalid input or target) or error.
func ObserveProvisioning(operation, outcome string) {
	Provisioning.WithLabelValues(operation, outcome).Inc()
}

// Middleware observes request latency labelled by the matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
