// Package cache provides the StudentStore client-side cache with namespaced
// keys, TTL expiry, and size-bounded sweeping.
package cache

import (
	"encoding/json"
	"time"
)

// Entry represents a cached API payload.
type Entry struct {
	// Data is the cached payload as raw JSON
	Data json.RawMessage `json:"data"`

	// StoredAt is when the entry was written
	StoredAt time.Time `json:"stored_at"`

	// TTL is how long the entry stays valid after StoredAt
	TTL time.Duration `json:"ttl"`
}

// ExpiresAt returns the instant the entry becomes stale.
func (e *Entry) ExpiresAt() time.Time {
	return e.StoredAt.Add(e.TTL)
}

// IsExpiredAt reports whether the entry is stale at the given instant.
// An entry is valid strictly before StoredAt+TTL and stale at or after it.
func (e *Entry) IsExpiredAt(now time.Time) bool {
	return !now.Before(e.ExpiresAt())
}

// IsExpired reports whether the entry is stale now.
func (e *Entry) IsExpired() bool {
	return e.IsExpiredAt(time.Now())
}

// Remaining returns the time until expiration.
// Returns 0 if already expired.
func (e *Entry) Remaining() time.Duration {
	remaining := time.Until(e.ExpiresAt())
	if remaining < 0 {
		return 0
	}
	return remaining
}
