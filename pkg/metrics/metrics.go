// Package metrics provides the centralized Prometheus metrics registry for
// the StudentStore client. All metrics are defined in their respective
// packages (api, cache, reaction, events) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the StudentStore client.
// All metrics are automatically registered via promauto in their respective
// packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - studentstore_cache_hits_total{backend} (Counter): Cache hits by backend
//   - studentstore_cache_misses_total (Counter): Cache misses
//   - studentstore_cache_size_bytes{backend} (Gauge): Bytes written by backend
//   - studentstore_cache_sweep_evictions_total (Counter): Entries evicted by sweeps
//   - studentstore_cache_errors_total{operation} (Counter): Cache operation errors
//
// Request Metrics (pkg/api):
//   - studentstore_api_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//   - studentstore_api_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - studentstore_api_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Retry Metrics (pkg/api):
//   - studentstore_api_retries_total{error_class} (Counter): Retry attempts by error class
//   - studentstore_api_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Reaction Metrics (pkg/reaction):
//   - studentstore_reactions_total{kind, outcome} (Counter): Reactions by kind and server outcome
//   - studentstore_reaction_rollbacks_total (Counter): Optimistic updates rolled back
//   - studentstore_reaction_cooldown_rejects_total (Counter): Reactions rejected by the cooldown
//
// Event Metrics (pkg/events):
//   - studentstore_events_published_total{topic} (Counter): Events published by topic
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(studentstore_cache_hits_total[5m])) /
//   (sum(rate(studentstore_cache_hits_total[5m])) + sum(rate(studentstore_cache_misses_total[5m])))
//
//   # Request Error Rate
//   rate(studentstore_api_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(studentstore_api_request_duration_seconds_bucket[5m]))
//
//   # Rollback Rate
//   rate(studentstore_reaction_rollbacks_total[5m]) / rate(studentstore_reactions_total[5m])
