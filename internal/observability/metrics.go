// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Fetch metrics
	FetchesTotal      *prometheus.CounterVec
	FetchErrors       *prometheus.CounterVec
	FallbackQueries   prometheus.Counter
	FeeLookupFailures prometheus.Counter
	QueryLatency      *prometheus.HistogramVec

	// Cache metrics
	CacheHits      *prometheus.CounterVec
	CacheMisses    *prometheus.CounterVec
	CachedEntities *prometheus.GaugeVec
	CacheResets    prometheus.Counter

	// Refresh metrics
	RefreshCycles       *prometheus.CounterVec
	RefreshDuration     prometheus.Histogram
	LastRefresh         prometheus.Gauge
	CoalescedKeys       prometheus.Counter
	SyncedHeadBlock     prometheus.Gauge
	BlockResolutions    prometheus.Counter
	UnresolvedTimestamp prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "dexboard"
	}

	return &Metrics{
		FetchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "requests_total",
			Help:      "Total number of bulk fetches by entity kind",
		}, []string{"kind"}),
		FetchErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "errors_total",
			Help:      "Total number of failed bulk fetches by entity kind",
		}, []string{"kind"}),
		FallbackQueries: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "fallback_queries_total",
			Help:      "Total number of per-entity historical fallback queries",
		}),
		FeeLookupFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "fee_lookup_failures_total",
			Help:      "Total number of multicall fee lookups degraded to the default fee",
		}),
		QueryLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "query_latency_seconds",
			Help:      "Upstream query latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"upstream"}),

		CacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of cache hits by namespace",
		}, []string{"namespace"}),
		CacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of cache misses by namespace",
		}, []string{"namespace"}),
		CachedEntities: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "entities",
			Help:      "Number of cached entities by namespace",
		}, []string{"namespace"}),
		CacheResets: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "resets_total",
			Help:      "Total number of cache resets",
		}),

		RefreshCycles: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "cycles_total",
			Help:      "Total number of refresh cycles by status",
		}, []string{"status"}),
		RefreshDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "duration_seconds",
			Help:      "Refresh cycle duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}),
		LastRefresh: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "last_success_timestamp",
			Help:      "Unix timestamp of last successful refresh cycle",
		}),
		CoalescedKeys: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "coalesced_keys_total",
			Help:      "Total number of stale keys drained by the coalescing refresher",
		}),
		SyncedHeadBlock: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "synced_head_block",
			Help:      "Latest chain head block seen by the watcher",
		}),
		BlockResolutions: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "block_resolutions_total",
			Help:      "Total number of timestamps resolved to blocks",
		}),
		UnresolvedTimestamp: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "unresolved_timestamps_total",
			Help:      "Total number of timestamps the block index could not resolve",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
