// Package metrics exposes the Prometheus collectors of the service. They
// are registered on the default registry and served by /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmorate_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filmorate_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filmorate_rate_limited_total",
			Help: "Requests rejected by the token bucket limiter",
		},
	)

	// Feed
	FeedEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmorate_feed_events_total",
			Help: "Feed entries recorded, by event type and operation",
		},
		[]string{"event_type", "operation"},
	)

	FeedPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmorate_feed_published_total",
			Help: "Feed events handed to the broker, by result",
		},
		[]string{"result"}, // "ok", "error", "breaker_open", "dropped"
	)

	FeedConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmorate_feed_consumed_total",
			Help: "Feed events read back from the broker, by result",
		},
		[]string{"result"},
	)

	// Recommendations
	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmorate_recommendations_total",
			Help: "Recommendation requests, by whether a similar user was found",
		},
		[]string{"matched"},
	)
)

// ObserveHTTP records one finished request.
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
