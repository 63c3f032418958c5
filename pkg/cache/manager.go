package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// DefaultSweepLimit is the per-namespace entry bound applied by Sweep when
// the caller passes a non-positive limit.
const DefaultSweepLimit = 20

// Manager handles caching operations on top of a Store backend.
//
// The cache is advisory: storage write failures are absorbed (counted and
// logged by the metrics layer) so callers never fail because the cache is
// unavailable.
type Manager struct {
	store   Store
	backend string
	now     func() time.Time
}

// NewManager creates a cache manager over the given store backend.
func NewManager(store Store) *Manager {
	if store == nil {
		panic("cache store cannot be nil")
	}
	backend := "memory"
	if _, ok := store.(*RedisStore); ok {
		backend = "redis"
	}
	return &Manager{
		store:   store,
		backend: backend,
		now:     time.Now,
	}
}

// Get retrieves a cached value by key and unmarshals it into dest.
// Returns ErrCacheMiss if the key is absent or the entry has expired.
// Expired entries are not deleted on miss; Sweep removes them.
func (m *Manager) Get(ctx context.Context, key Key, dest any) error {
	raw, ok, err := m.store.Get(ctx, key.String())
	if err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return fmt.Errorf("cache get: %w", err)
	}
	if !ok {
		CacheMisses.Inc()
		return ErrCacheMiss
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	if entry.IsExpiredAt(m.now()) {
		CacheMisses.Inc()
		return ErrCacheMiss
	}

	if dest != nil {
		if err := json.Unmarshal(entry.Data, dest); err != nil {
			CacheErrors.WithLabelValues("get").Inc()
			return fmt.Errorf("%w: %v", ErrInvalidEntry, err)
		}
	}

	CacheHits.WithLabelValues(m.backend).Inc()
	return nil
}

// Set stores a value under key with the given TTL.
// Backend write failures are swallowed: the cache is never required for
// correctness, so a full or unreachable store must not fail the caller.
func (m *Manager) Set(ctx context.Context, key Key, value any, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache value: %w", err)
	}

	entry := Entry{
		Data:     data,
		StoredAt: m.now(),
		TTL:      ttl,
	}

	raw, err := json.Marshal(&entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := m.store.Set(ctx, key.String(), raw, ttl); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return nil
	}

	CacheSize.WithLabelValues(m.backend).Add(float64(len(raw)))
	return nil
}

// Invalidate removes every entry under the namespace prefix.
// Triggered by admin-update style events when server data changed.
func (m *Manager) Invalidate(ctx context.Context, namespace string) error {
	prefix := NamespacePrefix(namespace)

	keys, err := m.store.Keys(ctx, prefix)
	if err != nil {
		CacheErrors.WithLabelValues("invalidate").Inc()
		return fmt.Errorf("cache keys: %w", err)
	}

	// A key without params lacks the trailing separator the prefix carries.
	keys = append(keys, Key{Namespace: namespace}.String())

	if err := m.store.Delete(ctx, keys...); err != nil {
		CacheErrors.WithLabelValues("invalidate").Inc()
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// InvalidateKey removes a single entry.
func (m *Manager) InvalidateKey(ctx context.Context, key Key) error {
	if err := m.store.Delete(ctx, key.String()); err != nil {
		CacheErrors.WithLabelValues("invalidate").Inc()
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// Sweep bounds a namespace to maxEntries, keeping the most recently stored
// entries and removing the rest along with anything expired or unreadable.
// Returns the number of entries removed.
func (m *Manager) Sweep(ctx context.Context, namespace string, maxEntries int) (int, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultSweepLimit
	}

	keys, err := m.store.Keys(ctx, NamespacePrefix(namespace))
	if err != nil {
		CacheErrors.WithLabelValues("sweep").Inc()
		return 0, fmt.Errorf("cache keys: %w", err)
	}

	type keyedEntry struct {
		key      string
		storedAt time.Time
	}

	now := m.now()
	var live []keyedEntry
	var remove []string

	for _, key := range keys {
		raw, ok, err := m.store.Get(ctx, key)
		if err != nil || !ok {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(raw, &entry); err != nil || entry.IsExpiredAt(now) {
			remove = append(remove, key)
			continue
		}
		live = append(live, keyedEntry{key: key, storedAt: entry.StoredAt})
	}

	// Most recent first; everything beyond maxEntries goes
	sort.Slice(live, func(i, j int) bool {
		return live[i].storedAt.After(live[j].storedAt)
	})
	for i := maxEntries; i < len(live); i++ {
		remove = append(remove, live[i].key)
	}

	if len(remove) == 0 {
		return 0, nil
	}

	if err := m.store.Delete(ctx, remove...); err != nil {
		CacheErrors.WithLabelValues("sweep").Inc()
		return 0, fmt.Errorf("cache delete: %w", err)
	}

	SweepEvictions.Add(float64(len(remove)))
	return len(remove), nil
}
