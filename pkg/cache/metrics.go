package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by backend (memory, redis)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studentstore_cache_hits_total",
			Help: "Total number of StudentStore cache hits",
		},
		[]string{"backend"},
	)

	// CacheMisses tracks cache misses (absent or expired)
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "studentstore_cache_misses_total",
			Help: "Total number of StudentStore cache misses",
		},
	)

	// CacheSize tracks bytes written to the cache by backend
	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "studentstore_cache_size_bytes",
			Help: "Bytes written to the StudentStore cache",
		},
		[]string{"backend"},
	)

	// SweepEvictions tracks entries removed by namespace sweeps
	SweepEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "studentstore_cache_sweep_evictions_total",
			Help: "Total number of cache entries evicted by sweeps",
		},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studentstore_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "invalidate", "sweep"
	)
)
