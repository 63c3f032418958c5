// Package cache provides client-side caching for StudentStore API payloads.
//
// The cache manager implements the storefront caching contract:
//
// - Namespaced, deterministic keys (studentstore:namespace:param=value)
// - Entry-level TTL expiry (get misses once StoredAt+TTL is reached)
// - Lazy eviction: expired entries stay until a Sweep bounds the namespace
// - Prefix invalidation for admin-update events
// - Advisory semantics: backend write failures never fail the caller
// - Pluggable Store backend (in-memory for library use, Redis for the proxy)
//
// # Basic Usage
//
//	manager := cache.NewManager(cache.NewMemoryStore())
//
//	key := cache.PageKey("posts", 1, "hot")
//
//	var page PostPage
//	err := manager.Get(ctx, key, &page)
//	if err == cache.ErrCacheMiss {
//		// fetch from the API, then:
//		_ = manager.Set(ctx, key, page, 5*time.Minute)
//	}
//
// # Invalidation and Sweeping
//
//	// Admin changed products: drop everything under the namespace
//	_ = manager.Invalidate(ctx, "category:42")
//
//	// Bound the namespace to its 20 most recent entries
//	removed, _ := manager.Sweep(ctx, "posts", 20)
//
// # Metrics
//
// The cache exports Prometheus metrics:
//
//   - studentstore_cache_hits_total{backend} - Cache hits
//   - studentstore_cache_misses_total - Cache misses
//   - studentstore_cache_size_bytes{backend} - Bytes written
//   - studentstore_cache_sweep_evictions_total - Entries evicted by sweeps
//   - studentstore_cache_errors_total{operation} - Cache operation errors
package cache
