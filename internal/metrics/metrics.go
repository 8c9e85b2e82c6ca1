package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"movies-backend/internal/shared/apperror"
)

var (
	// Storage
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movies_db_query_duration_seconds",
			Help:    "Duration of movie/rating storage operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movies_db_query_errors_total",
			Help: "Total number of failed storage operations",
		},
		[]string{"operation", "error_type"},
	)

	// Output cache
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movies_output_cache_hits_total",
			Help: "Output cache hits by tag",
		},
		[]string{"tag"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movies_output_cache_misses_total",
			Help: "Output cache misses by tag",
		},
		[]string{"tag"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movies_output_cache_evictions_total",
			Help: "Tag evictions triggered by writes",
		},
		[]string{"tag"},
	)

	// HTTP
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movies_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "movies_http_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)

// RecordQuery observes one storage operation that started at start and finished with err.
func RecordQuery(operation string, start time.Time, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, errorType(err)).Inc()
	}
}

func errorType(err error) string {
	switch {
	case errors.Is(err, apperror.ErrCanceled):
		return "canceled"
	case apperror.IsStorage(err):
		return "storage"
	default:
		return "other"
	}
}

// RecordRequest observes one HTTP request.
func RecordRequest(method, route string, status int, elapsed time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
