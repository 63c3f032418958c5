// Package pagination provides the paginated list fetcher used by the posts
// feed and category browser.
package pagination

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/studentstore/storefront-client/pkg/cache"
	"github.com/studentstore/storefront-client/pkg/logging"
)

// ErrFetchInFlight is returned when a fetch is requested while another one
// for the same list is still pending. The call is a no-op: held items and
// position are untouched, and callers may ignore the error.
var ErrFetchInFlight = errors.New("fetch already in flight")

// Identifiable is implemented by list items that carry a unique id,
// used for merge deduplication.
type Identifiable interface {
	ItemID() string
}

// Page is one page of a server-side listing.
type Page[T Identifiable] struct {
	Items       []T `json:"items"`
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	TotalCount  int `json:"total_count"`
}

// PageFunc fetches one page from the backing API.
type PageFunc[T Identifiable] func(ctx context.Context, page int, sort string) (Page[T], error)

// Config holds fetcher configuration.
type Config struct {
	// Cache is an optional read-through cache for fetched pages.
	Cache *cache.Manager

	// Namespace is the cache namespace for this list (e.g. "category:42").
	// Required when Cache is set.
	Namespace string

	// CacheTTL is how long cached pages stay valid.
	CacheTTL time.Duration

	// SweepLimit bounds the cache namespace after each write.
	SweepLimit int
}

// Fetcher accumulates a paginated listing one page at a time.
//
// Page 1 replaces all held items (supporting sort and filter changes);
// later pages append with id-based deduplication. A fetch issued while
// another is pending is rejected with ErrFetchInFlight, so two responses
// can never interleave writes to the same list.
type Fetcher[T Identifiable] struct {
	source PageFunc[T]
	config Config
	logger zerolog.Logger

	mu          sync.Mutex
	inFlight    bool
	items       []T
	seen        map[string]struct{}
	sort        string
	currentPage int
	totalPages  int
	totalCount  int
}

// NewFetcher creates a fetcher over the given page source.
func NewFetcher[T Identifiable](source PageFunc[T], config Config) *Fetcher[T] {
	if source == nil {
		panic("page source cannot be nil")
	}
	return &Fetcher[T]{
		source: source,
		config: config,
		logger: logging.NewLogger("fetcher"),
		seen:   make(map[string]struct{}),
	}
}

// FetchPage fetches one page and merges it into the held list.
// Errors leave held items untouched.
func (f *Fetcher[T]) FetchPage(ctx context.Context, page int, sort string) error {
	if page < 1 {
		return fmt.Errorf("page must be >= 1, got %d", page)
	}

	f.mu.Lock()
	if f.inFlight {
		f.mu.Unlock()
		return ErrFetchInFlight
	}
	f.inFlight = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight = false
		f.mu.Unlock()
	}()

	result, err := f.loadPage(ctx, page, sort)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if page == 1 {
		// Fresh listing: sort or filters may have changed
		f.items = nil
		f.seen = make(map[string]struct{})
		f.sort = sort
	}

	appended := 0
	for _, item := range result.Items {
		if _, dup := f.seen[item.ItemID()]; dup {
			continue
		}
		f.seen[item.ItemID()] = struct{}{}
		f.items = append(f.items, item)
		appended++
	}

	f.currentPage = result.CurrentPage
	f.totalPages = result.TotalPages
	f.totalCount = result.TotalCount

	f.logger.Debug().
		Int("page", page).
		Str("sort", sort).
		Int("received", len(result.Items)).
		Int("appended", appended).
		Int("held", len(f.items)).
		Msg("Page merged")

	return nil
}

// loadPage reads a page through the cache when one is configured.
func (f *Fetcher[T]) loadPage(ctx context.Context, page int, sort string) (Page[T], error) {
	useCache := f.config.Cache != nil && f.config.Namespace != "" && f.config.CacheTTL > 0
	key := cache.PageKey(f.config.Namespace, page, sort)

	if useCache {
		var cached Page[T]
		err := f.config.Cache.Get(ctx, key, &cached)
		if err == nil {
			f.logger.Debug().Int("page", page).Msg("Page served from cache")
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			f.logger.Warn().Err(err).Int("page", page).Msg("Cache read error")
		}
	}

	result, err := f.source(ctx, page, sort)
	if err != nil {
		return Page[T]{}, err
	}

	if useCache {
		// Cache is advisory; Set absorbs backend failures
		_ = f.config.Cache.Set(ctx, key, result, f.config.CacheTTL)
		if f.config.SweepLimit > 0 {
			if _, err := f.config.Cache.Sweep(ctx, f.config.Namespace, f.config.SweepLimit); err != nil {
				f.logger.Warn().Err(err).Msg("Cache sweep error")
			}
		}
	}

	return result, nil
}

// Items returns a copy of the held items in display order.
func (f *Fetcher[T]) Items() []T {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := make([]T, len(f.items))
	copy(items, f.items)
	return items
}

// HasMore reports whether more pages remain.
func (f *Fetcher[T]) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.currentPage < f.totalPages
}

// CurrentPage returns the last merged page number (0 before any fetch).
func (f *Fetcher[T]) CurrentPage() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.currentPage
}

// TotalPages returns the server-reported page count.
func (f *Fetcher[T]) TotalPages() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totalPages
}

// TotalCount returns the server-reported item count.
func (f *Fetcher[T]) TotalCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totalCount
}

// Sort returns the sort order of the held listing.
func (f *Fetcher[T]) Sort() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sort
}

// Reset drops all held items and position.
func (f *Fetcher[T]) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = nil
	f.seen = make(map[string]struct{})
	f.currentPage = 0
	f.totalPages = 0
	f.totalCount = 0
	f.sort = ""
}

// RemoveItem drops one held item by id, returning true if it was present.
// Used by optimistic delete flows; the caller keeps its own snapshot for
// rollback.
func (f *Fetcher[T]) RemoveItem(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, item := range f.items {
		if item.ItemID() == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			delete(f.seen, id)
			return true
		}
	}
	return false
}

// Restore replaces the held items with a prior snapshot.
func (f *Fetcher[T]) Restore(items []T) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.items = make([]T, len(items))
	copy(f.items, items)
	f.seen = make(map[string]struct{}, len(items))
	for _, item := range items {
		f.seen[item.ItemID()] = struct{}{}
	}
}
