// internal/app/system/metrics/metrics.go
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "venuehub_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "venuehub_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	authEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "venuehub_auth_events_total",
		Help: "Authentication events by kind and result",
	}, []string{"event", "result"})

	reservationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "venuehub_reservations_created_total",
		Help: "Reservations persisted",
	})

	emailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "venuehub_emails_total",
		Help: "Transactional emails by kind and result",
	}, []string{"kind", "result"})

	rateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "venuehub_rate_limited_total",
		Help: "Requests rejected by a rate limiter",
	}, []string{"scope"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "venuehub_cache_lookups_total",
		Help: "Cache lookups by result",
	}, []string{"result"})
)

// Handler serves the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest records an HTTP request metric.
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveAuth counts an authentication event, e.g. ("login", "success").
func ObserveAuth(event, result string) {
	authEvents.WithLabelValues(event, result).Inc()
}

// ObserveReservation counts a persisted reservation.
func ObserveReservation() {
	reservationsCreated.Inc()
}

// ObserveEmail counts a delivery attempt of the given kind.
func ObserveEmail(kind string, err error) {
	result := "sent"
	if err != nil {
		result = "failed"
	}
	emailsSent.WithLabelValues(kind, result).Inc()
}

// ObserveRateLimited counts a throttled request.
func ObserveRateLimited(scope string) {
	rateLimited.WithLabelValues(scope).Inc()
}

// ObserveCache counts a cache hit or miss.
func ObserveCache(hit bool) {
	if hit {
		cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	cacheLookups.WithLabelValues("miss").Inc()
}
