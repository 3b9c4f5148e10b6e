package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lorrc/service-desk-console/internal/core/domain"
)

// DefaultSearchSettle is the quiet window for free-text search input before
// a fetch is issued.
const DefaultSearchSettle = 500 * time.Millisecond

// Fetcher issues one paginated list query against the desk API.
type Fetcher[T any] func(ctx context.Context, query domain.ListQuery) (*domain.Page[T], error)

// ListControllerOptions tunes one controller instance.
type ListControllerOptions struct {
	PageSize     int
	SearchSettle time.Duration
}

// ListController owns the filter and page state for one resource's paginated
// list and keeps the displayed page consistent with server truth. Discrete
// filter changes fetch immediately; search text is debounced. Every filter
// change resets the page to 1. Responses are applied only if no newer fetch
// has been issued since (last-request-wins), so a slow stale response can
// never clobber a fresh one.
type ListController[T any] struct {
	name   string
	fetch  Fetcher[T]
	settle time.Duration
	logger *slog.Logger

	mu      sync.Mutex
	query   domain.ListQuery
	page    *domain.Page[T]
	err     error
	loading bool
	seq     uint64
	timer   *time.Timer
}

// NewListController creates a controller positioned on page 1 with no
// filters applied.
func NewListController[T any](name string, fetch Fetcher[T], opts ListControllerOptions, logger *slog.Logger) *ListController[T] {
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	if opts.SearchSettle <= 0 {
		opts.SearchSettle = DefaultSearchSettle
	}
	return &ListController[T]{
		name:   name,
		fetch:  fetch,
		settle: opts.SearchSettle,
		logger: logger.With("component", "list_controller", "resource", name),
		query:  domain.NewListQuery(opts.PageSize),
	}
}

// SetFilter updates one discrete filter, resets the page to 1 and fetches
// immediately. An unchanged value is a no-op. An empty value removes the
// filter entirely so it is omitted from the query string.
func (c *ListController[T]) SetFilter(ctx context.Context, key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.query.Filter(key) == value {
		return
	}
	c.query.SetFilter(key, value)
	c.query.Page = 1
	c.fetchLocked(ctx)
}

// SetSearch updates the free-text search, resets the page to 1 and arms the
// debounce timer; the fetch fires once input has settled. Another call
// before the settle window elapses re-arms the timer.
func (c *ListController[T]) SetSearch(ctx context.Context, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.query.Search == text {
		return
	}
	c.query.Search = text
	c.query.Page = 1

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.settle, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.timer = nil
		c.fetchLocked(ctx)
	})
}

// SetPage fetches the given page under the current filters.
func (c *ListController[T]) SetPage(ctx context.Context, page int) {
	if page < 1 {
		page = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query.Page = page
	c.fetchLocked(ctx)
}

// Refresh refetches the current page under the current filters.
func (c *ListController[T]) Refresh(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetchLocked(ctx)
}

// FirstPage refetches page 1 under the current filters. Used after a create
// mutation, when the new record may not belong on the viewed page and the
// totals have changed.
func (c *ListController[T]) FirstPage(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query.Page = 1
	c.fetchLocked(ctx)
}

// Patch replaces the first displayed row matched by match and reports
// whether a row was found. The totals are untouched; an in-place field
// update does not change them.
func (c *ListController[T]) Patch(match func(T) bool, item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.page == nil {
		return false
	}
	for i, existing := range c.page.Items {
		if match(existing) {
			c.page.Items[i] = item
			return true
		}
	}
	return false
}

// ClearError drops a previously surfaced fetch or mutation error so it never
// lingers beside a fresh result.
func (c *ListController[T]) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = nil
}

// Query returns a copy of the current filter and page state.
func (c *ListController[T]) Query() domain.ListQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query.Clone()
}

// Page returns the last successfully fetched page, or nil before the first
// response. A failed refresh leaves the previous page in place.
func (c *ListController[T]) Page() *domain.Page[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.page == nil {
		return nil
	}
	out := *c.page
	out.Items = make([]T, len(c.page.Items))
	copy(out.Items, c.page.Items)
	return &out
}

// Err returns the current resource-scoped error state, if any.
func (c *ListController[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Loading reports whether a fetch is in flight. It toggles independently of
// the error state.
func (c *ListController[T]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Stop cancels a pending debounced fetch.
func (c *ListController[T]) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// fetchLocked issues a fetch tagged with the next sequence number. Caller
// holds c.mu. The response is applied only when its sequence is still the
// latest issued.
func (c *ListController[T]) fetchLocked(ctx context.Context) {
	c.seq++
	seq := c.seq
	query := c.query.Clone()
	c.loading = true

	go func() {
		page, err := c.fetch(ctx, query)

		c.mu.Lock()
		defer c.mu.Unlock()

		if seq != c.seq {
			c.logger.Debug("discarding stale list response",
				"stale_seq", seq,
				"latest_seq", c.seq,
			)
			return
		}

		c.loading = false
		if err != nil {
			// Keep the last good page visible; never blank the table on a
			// failed refresh.
			c.err = err
			c.logger.Warn("list fetch failed", "page", query.Page, "error", err)
			return
		}
		c.page = page
		c.err = nil
	}()
}
