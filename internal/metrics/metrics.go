package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// TokensBlacklistedTotal counts refresh tokens blacklisted via logout.
	TokensBlacklistedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tokens_blacklisted_total",
			Help: "Total number of refresh tokens blacklisted",
		},
	)

	// BlacklistPurgedTotal counts expired blacklist rows removed by the purger.
	BlacklistPurgedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "token_blacklist_purged_total",
			Help: "Total number of expired blacklist entries purged",
		},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, TokensBlacklistedTotal, BlacklistPurgedTotal)
	})
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
// E.g. /pois/123 -> /pois/{id}.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// IncTokensBlacklisted increments the blacklist counter (call on logout).
func IncTokensBlacklisted() {
	TokensBlacklistedTotal.Inc()
}

// AddBlacklistPurged adds n to the purge counter (call from the scheduler).
func AddBlacklistPurged(n int64) {
	BlacklistPurgedTotal.Add(float64(n))
}
