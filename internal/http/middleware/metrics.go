// Package middleware contains shared Gin middleware used by the gateway.
//
// This file exposes Prometheus instrumentation for gateway traffic. Labels
// use the registered Gin route (not the raw URL) to keep cardinality
// bounded.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// gatewayReqs counts requests by method, route path, and status code.
	gatewayReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kootbot_gateway_requests_total",
			Help: "Total number of gateway HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// gatewayLat records request duration in seconds by method and route.
	// Status is omitted to keep histogram cardinality low.
	gatewayLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kootbot_gateway_request_duration_seconds",
			Help:    "Duration of gateway HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// gatewayInflight gauges requests currently being processed.
	gatewayInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "kootbot_gateway_requests_inflight",
			Help: "Current number of in-flight gateway HTTP requests.",
		},
	)
)

func init() {
	prometheus.MustRegister(gatewayReqs, gatewayLat, gatewayInflight)
}

// Metrics returns a Gin middleware that instruments requests with the
// collectors above. Mount promhttp.Handler() on /metrics to expose them.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		gatewayInflight.Inc()
		defer gatewayInflight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		gatewayReqs.WithLabelValues(method, path, status).Inc()
		gatewayLat.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
