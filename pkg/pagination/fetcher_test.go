package pagination

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/studentstore/storefront-client/pkg/cache"
)

type testPost struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func (p testPost) ItemID() string { return p.ID }

// makePages builds a deterministic paged source: total items split into
// pages of pageSize, ids "p1".."pN".
func makePages(total, pageSize int) PageFunc[testPost] {
	totalPages := (total + pageSize - 1) / pageSize
	return func(_ context.Context, page int, sort string) (Page[testPost], error) {
		start := (page - 1) * pageSize
		end := start + pageSize
		if end > total {
			end = total
		}
		var items []testPost
		for i := start; i < end; i++ {
			items = append(items, testPost{ID: fmt.Sprintf("p%d", i+1)})
		}
		return Page[testPost]{
			Items:       items,
			CurrentPage: page,
			TotalPages:  totalPages,
			TotalCount:  total,
		}, nil
	}
}

func TestFetcher_FirstPage(t *testing.T) {
	fetcher := NewFetcher(makePages(100, 20), Config{})

	if err := fetcher.FetchPage(context.Background(), 1, "hot"); err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}

	if got := len(fetcher.Items()); got != 20 {
		t.Errorf("held %d items, want 20", got)
	}
	if !fetcher.HasMore() {
		t.Error("HasMore = false, want true")
	}
	if fetcher.CurrentPage() != 1 || fetcher.TotalPages() != 5 {
		t.Errorf("position = %d/%d, want 1/5", fetcher.CurrentPage(), fetcher.TotalPages())
	}
}

func TestFetcher_MergeDeduplicates(t *testing.T) {
	// Source returns overlapping pages: page 2 repeats the last 5 ids of page 1
	source := func(_ context.Context, page int, sort string) (Page[testPost], error) {
		var items []testPost
		start := (page-1)*20 - (page-1)*5 // 5-item overlap per page
		for i := start; i < start+20; i++ {
			items = append(items, testPost{ID: fmt.Sprintf("p%d", i+1)})
		}
		return Page[testPost]{Items: items, CurrentPage: page, TotalPages: 3}, nil
	}
	fetcher := NewFetcher(source, Config{})
	ctx := context.Background()

	if err := fetcher.FetchPage(ctx, 1, ""); err != nil {
		t.Fatalf("FetchPage(1) failed: %v", err)
	}
	if err := fetcher.FetchPage(ctx, 2, ""); err != nil {
		t.Fatalf("FetchPage(2) failed: %v", err)
	}

	items := fetcher.Items()
	ids := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, dup := ids[item.ID]; dup {
			t.Errorf("duplicate id %q after merge", item.ID)
		}
		ids[item.ID] = struct{}{}
	}
	if len(items) != 35 {
		t.Errorf("held %d items, want 35 (40 received, 5 duplicates)", len(items))
	}
}

func TestFetcher_TwoPagesNoDuplicates(t *testing.T) {
	fetcher := NewFetcher(makePages(100, 20), Config{})
	ctx := context.Background()

	if err := fetcher.FetchPage(ctx, 1, "hot"); err != nil {
		t.Fatalf("FetchPage(1) failed: %v", err)
	}
	if err := fetcher.FetchPage(ctx, 2, "hot"); err != nil {
		t.Fatalf("FetchPage(2) failed: %v", err)
	}

	if got := len(fetcher.Items()); got != 40 {
		t.Errorf("held %d items, want 40", got)
	}
	if !fetcher.HasMore() {
		t.Error("HasMore = false at page 2 of 5")
	}
}

func TestFetcher_PageOneReplacesOnSortChange(t *testing.T) {
	calls := 0
	source := func(_ context.Context, page int, sort string) (Page[testPost], error) {
		calls++
		return Page[testPost]{
			Items:       []testPost{{ID: sort + "-1"}, {ID: sort + "-2"}},
			CurrentPage: page,
			TotalPages:  4,
		}, nil
	}
	fetcher := NewFetcher(source, Config{})
	ctx := context.Background()

	if err := fetcher.FetchPage(ctx, 1, "hot"); err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if err := fetcher.FetchPage(ctx, 1, "new"); err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}

	items := fetcher.Items()
	if len(items) != 2 {
		t.Fatalf("held %d items after sort change, want 2", len(items))
	}
	if items[0].ID != "new-1" {
		t.Errorf("items[0] = %q, want items from the new sort", items[0].ID)
	}
	if fetcher.Sort() != "new" {
		t.Errorf("Sort() = %q, want %q", fetcher.Sort(), "new")
	}
}

func TestFetcher_ErrorLeavesItemsUntouched(t *testing.T) {
	fail := false
	source := func(ctx context.Context, page int, sort string) (Page[testPost], error) {
		if fail {
			return Page[testPost]{}, errors.New("backend down")
		}
		return makePages(40, 20)(ctx, page, sort)
	}
	fetcher := NewFetcher(source, Config{})
	ctx := context.Background()

	if err := fetcher.FetchPage(ctx, 1, ""); err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	held := len(fetcher.Items())

	fail = true
	if err := fetcher.FetchPage(ctx, 2, ""); err == nil {
		t.Fatal("expected error from failing source")
	}
	if got := len(fetcher.Items()); got != held {
		t.Errorf("held items changed on error: %d -> %d", held, got)
	}
	if fetcher.CurrentPage() != 1 {
		t.Errorf("CurrentPage changed on error: %d", fetcher.CurrentPage())
	}
}

func TestFetcher_InFlightGuard(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var startOnce sync.Once
	source := func(_ context.Context, page int, sort string) (Page[testPost], error) {
		startOnce.Do(func() { close(started) })
		<-release
		return Page[testPost]{Items: []testPost{{ID: "p1"}}, CurrentPage: 1, TotalPages: 1}, nil
	}
	fetcher := NewFetcher(source, Config{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := fetcher.FetchPage(context.Background(), 1, ""); err != nil {
			t.Errorf("first fetch failed: %v", err)
		}
	}()

	<-started
	err := fetcher.FetchPage(context.Background(), 1, "")
	if !errors.Is(err, ErrFetchInFlight) {
		t.Errorf("expected ErrFetchInFlight, got %v", err)
	}

	close(release)
	wg.Wait()

	// Guard clears once the fetch resolves
	if err := fetcher.FetchPage(context.Background(), 1, ""); err != nil {
		t.Errorf("fetch after completion failed: %v", err)
	}
}

func TestFetcher_ReadThroughCache(t *testing.T) {
	calls := 0
	source := func(ctx context.Context, page int, sort string) (Page[testPost], error) {
		calls++
		return makePages(40, 20)(ctx, page, sort)
	}
	manager := cache.NewManager(cache.NewMemoryStore())
	fetcher := NewFetcher(source, Config{
		Cache:     manager,
		Namespace: "category:42",
		CacheTTL:  time.Minute,
	})
	ctx := context.Background()

	if err := fetcher.FetchPage(ctx, 1, "hot"); err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if calls != 1 {
		t.Fatalf("source calls = %d, want 1", calls)
	}

	// Same page on a fresh fetcher: served from cache, no source call
	fetcher2 := NewFetcher(source, Config{
		Cache:     manager,
		Namespace: "category:42",
		CacheTTL:  time.Minute,
	})
	if err := fetcher2.FetchPage(ctx, 1, "hot"); err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("source calls = %d, want 1 (cache hit expected)", calls)
	}
	if len(fetcher2.Items()) != 20 {
		t.Errorf("held %d items from cache, want 20", len(fetcher2.Items()))
	}
}

func TestFetcher_RemoveAndRestore(t *testing.T) {
	fetcher := NewFetcher(makePages(3, 3), Config{})
	ctx := context.Background()

	if err := fetcher.FetchPage(ctx, 1, ""); err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	snapshot := fetcher.Items()

	if !fetcher.RemoveItem("p2") {
		t.Fatal("RemoveItem(p2) = false, want true")
	}
	if len(fetcher.Items()) != 2 {
		t.Errorf("held %d items after remove, want 2", len(fetcher.Items()))
	}
	if fetcher.RemoveItem("p2") {
		t.Error("RemoveItem(p2) succeeded twice")
	}

	fetcher.Restore(snapshot)
	if len(fetcher.Items()) != 3 {
		t.Errorf("held %d items after restore, want 3", len(fetcher.Items()))
	}
}
