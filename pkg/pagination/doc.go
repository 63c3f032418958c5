// Package pagination provides the paginated list fetcher shared by the
// posts feed and the category product browser.
//
// The fetcher accumulates a server-side listing page by page:
//
//   - Page 1 replaces all held items, so sort or filter changes start clean
//   - Pages > 1 append, deduplicated against already-held ids
//   - HasMore is true while current_page < total_pages
//   - A fetch issued while one is pending is a no-op (ErrFetchInFlight)
//   - Fetch errors leave held items untouched
//
// Example usage:
//
//	fetcher := pagination.NewFetcher(func(ctx context.Context, page int, sort string) (pagination.Page[api.Post], error) {
//		result, err := client.ListPosts(ctx, page, 20, sort)
//		if err != nil {
//			return pagination.Page[api.Post]{}, err
//		}
//		return pagination.Page[api.Post]{
//			Items:       result.Posts,
//			CurrentPage: result.Pagination.CurrentPage,
//			TotalPages:  result.Pagination.TotalPages,
//			TotalCount:  result.Pagination.TotalCount,
//		}, nil
//	}, pagination.Config{})
//
//	if err := fetcher.FetchPage(ctx, 1, "hot"); err != nil { ... }
//	for fetcher.HasMore() {
//		_ = fetcher.FetchPage(ctx, fetcher.CurrentPage()+1, "hot")
//	}
//
// With a cache.Manager in Config, fetched pages are served read-through
// from the cache and the namespace is swept to a bounded size after each
// write.
package pagination
