package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APICallsTotal tracks upstream content API calls per operation
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkwell_api_calls_total",
			Help: "Total number of content API calls",
		},
		[]string{"operation"},
	)

	// APIErrorsTotal tracks classified upstream errors per operation and code
	APIErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkwell_api_errors_total",
			Help: "Total number of classified content API errors",
		},
		[]string{"operation", "code"},
	)

	// APILatency tracks upstream call latency
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inkwell_api_latency_seconds",
			Help:    "Content API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// RetriesTotal tracks backoff retries triggered by rate limiting
	RetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inkwell_retries_total",
			Help: "Total number of rate-limited retries",
		},
	)

	// QueueDepth tracks pending operations in the rate limiter queue
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "inkwell_rate_limiter_queue_depth",
			Help: "Pending operations waiting in the rate limiter queue",
		},
	)

	// TransformFailuresTotal tracks pages dropped during batch transform
	TransformFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inkwell_transform_failures_total",
			Help: "Total number of pages dropped by the transformer",
		},
	)

	// CacheHitsTotal and CacheMissesTotal track response cache effectiveness
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkwell_cache_hits_total",
			Help: "Total number of response cache hits",
		},
		[]string{"operation"},
	)

	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkwell_cache_misses_total",
			Help: "Total number of response cache misses",
		},
		[]string{"operation"},
	)
)
