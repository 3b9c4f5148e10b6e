package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/service-desk-console/internal/core/domain"
	"github.com/lorrc/service-desk-console/internal/core/services"
)

// Polling bounds for asynchronous fetch completion.
const (
	waitFor = time.Second
	tick    = 5 * time.Millisecond
)

// capturingFetcher records every query it serves and returns a page echoing
// the requested page number.
type capturingFetcher struct {
	mu      sync.Mutex
	queries []domain.ListQuery
	err     error
}

func (f *capturingFetcher) fetch(ctx context.Context, query domain.ListQuery) (*domain.Page[domain.Ticket], error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	err := f.err
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return &domain.Page[domain.Ticket]{
		Items:        []domain.Ticket{{ID: "t1", Name: "echo"}},
		TotalRecords: 1,
		TotalPages:   1,
		CurrentPage:  query.Page,
	}, nil
}

func (f *capturingFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func (f *capturingFetcher) last() domain.ListQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

func newTicketController(fetch services.Fetcher[domain.Ticket], settle time.Duration) *services.ListController[domain.Ticket] {
	return services.NewListController("tickets", fetch, services.ListControllerOptions{
		PageSize:     10,
		SearchSettle: settle,
	}, testLogger())
}

func waitSettled(t *testing.T, c *services.ListController[domain.Ticket]) {
	t.Helper()
	require.Eventually(t, func() bool {
		return !c.Loading()
	}, waitFor, tick)
}

func TestListController_SetFilter(t *testing.T) {
	ctx := context.Background()

	t.Run("filter change resets to page 1 and fetches immediately", func(t *testing.T) {
		fetcher := &capturingFetcher{}
		c := newTicketController(fetcher.fetch, time.Minute)
		defer c.Stop()

		c.SetPage(ctx, 3)
		waitSettled(t, c)

		c.SetFilter(ctx, "status", "open")
		waitSettled(t, c)

		query := fetcher.last()
		assert.Equal(t, 1, query.Page)
		assert.Equal(t, "open", query.Filter("status"))
		assert.Equal(t, 1, c.Page().CurrentPage)
	})

	t.Run("unchanged value is a no-op", func(t *testing.T) {
		fetcher := &capturingFetcher{}
		c := newTicketController(fetcher.fetch, time.Minute)
		defer c.Stop()

		c.SetFilter(ctx, "status", "open")
		waitSettled(t, c)
		before := fetcher.count()

		c.SetFilter(ctx, "status", "open")

		assert.Equal(t, before, fetcher.count())
	})

	t.Run("clearing a filter removes it from the query", func(t *testing.T) {
		fetcher := &capturingFetcher{}
		c := newTicketController(fetcher.fetch, time.Minute)
		defer c.Stop()

		c.SetFilter(ctx, "priority", "high")
		waitSettled(t, c)
		c.SetFilter(ctx, "priority", "")
		waitSettled(t, c)

		query := fetcher.last()
		assert.NotContains(t, query.Filters, "priority")
		assert.False(t, query.Values().Has("priority"))
	})
}

func TestListController_SetSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("rapid input collapses into one trailing fetch", func(t *testing.T) {
		fetcher := &capturingFetcher{}
		c := newTicketController(fetcher.fetch, 30*time.Millisecond)
		defer c.Stop()

		c.SetSearch(ctx, "p")
		c.SetSearch(ctx, "pr")
		c.SetSearch(ctx, "printer")

		require.Eventually(t, func() bool {
			return fetcher.count() == 1
		}, time.Second, 5*time.Millisecond)

		query := fetcher.last()
		assert.Equal(t, "printer", query.Search)
		assert.Equal(t, 1, query.Page)

		// No extra fetch fires after the settle window.
		time.Sleep(60 * time.Millisecond)
		assert.Equal(t, 1, fetcher.count())
	})

	t.Run("unchanged text does not re-arm the timer", func(t *testing.T) {
		fetcher := &capturingFetcher{}
		c := newTicketController(fetcher.fetch, 30*time.Millisecond)
		defer c.Stop()

		c.SetSearch(ctx, "printer")
		require.Eventually(t, func() bool {
			return fetcher.count() == 1
		}, time.Second, 5*time.Millisecond)

		c.SetSearch(ctx, "printer")
		time.Sleep(60 * time.Millisecond)
		assert.Equal(t, 1, fetcher.count())
	})
}

func TestListController_LastRequestWins(t *testing.T) {
	ctx := context.Background()

	slowDone := make(chan struct{})
	calls := 0
	var mu sync.Mutex
	fetch := func(ctx context.Context, query domain.ListQuery) (*domain.Page[domain.Ticket], error) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()
		if first {
			<-slowDone
			return &domain.Page[domain.Ticket]{
				Items:       []domain.Ticket{{ID: "stale"}},
				CurrentPage: query.Page,
			}, nil
		}
		return &domain.Page[domain.Ticket]{
			Items:       []domain.Ticket{{ID: "fresh"}},
			CurrentPage: query.Page,
		}, nil
	}

	c := newTicketController(fetch, time.Minute)
	defer c.Stop()

	c.SetPage(ctx, 2)
	c.SetFilter(ctx, "status", "open")
	waitSettled(t, c)
	require.Equal(t, "fresh", c.Page().Items[0].ID)

	// The slow first response lands after the fresh one and must be dropped.
	close(slowDone)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, "fresh", c.Page().Items[0].ID)
}

func TestListController_FetchFailure(t *testing.T) {
	ctx := context.Background()

	fetcher := &capturingFetcher{}
	c := newTicketController(fetcher.fetch, time.Minute)
	defer c.Stop()

	c.Refresh(ctx)
	waitSettled(t, c)
	require.NotNil(t, c.Page())

	fetcher.mu.Lock()
	fetcher.err = errors.New("desk unreachable")
	fetcher.mu.Unlock()

	c.Refresh(ctx)
	waitSettled(t, c)

	// The last good page stays visible beside the surfaced error.
	assert.Error(t, c.Err())
	require.NotNil(t, c.Page())
	assert.Equal(t, "t1", c.Page().Items[0].ID)

	c.ClearError()
	assert.NoError(t, c.Err())
}

func TestListController_Patch(t *testing.T) {
	ctx := context.Background()

	fetcher := &capturingFetcher{}
	c := newTicketController(fetcher.fetch, time.Minute)
	defer c.Stop()

	c.Refresh(ctx)
	waitSettled(t, c)

	t.Run("replaces a displayed row", func(t *testing.T) {
		updated := domain.Ticket{ID: "t1", Name: "renamed"}
		ok := c.Patch(func(row domain.Ticket) bool { return row.ID == "t1" }, updated)

		assert.True(t, ok)
		assert.Equal(t, "renamed", c.Page().Items[0].Name)
	})

	t.Run("reports a miss for an off-page row", func(t *testing.T) {
		ok := c.Patch(func(row domain.Ticket) bool { return row.ID == "absent" }, domain.Ticket{ID: "absent"})
		assert.False(t, ok)
	})
}
