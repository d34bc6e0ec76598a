package feedtree

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/fnndsc/chrisctl/pkg/loop"
)

// ErrFetchInFlight is returned when a page is requested while another is being fetched.
var ErrFetchInFlight = errors.New("another page is being fetched")

// Fetcher lists records in [offset, offset+limit) of a collection.
type Fetcher func(ctx context.Context, offset int, limit int) (Page, error)

// ChunkSize returns the page size for a collection having total records.
//
// It is 20 for an empty collection, 100 for more than 100 records,
// and otherwise total capped at 20.
func ChunkSize(total int) int {
	switch {
	case total <= 0:
		return 20
	case 100 < total:
		return 100
	default:
		return min(total, 20)
	}
}

// Query lists a collection page by page and feeds the pages to an Assembler.
//
// The first request asks just one record to learn the total count.
// Following requests fetch ChunkSize(total) records from increasing offsets
// until offset + chunkSize reaches the total count.
type Query struct {
	mu sync.Mutex

	fetch     Fetcher
	assembler *Assembler

	started    bool
	total      int
	pages      []Page
	nextOffset int
	fetching   bool
}

func NewQuery(fetch Fetcher, assembler *Assembler) *Query {
	return &Query{fetch: fetch, assembler: assembler}
}

// Assembler returns the Assembler which this Query feeds.
func (q *Query) Assembler() *Assembler {
	return q.assembler
}

// Start learns the total count of the collection.
//
// FetchNextPage calls this when it has not been called.
func (q *Query) Start(ctx context.Context) error {
	return q.RefreshCount(ctx)
}

// RefreshCount reads the total count of the collection again.
func (q *Query) RefreshCount(ctx context.Context) error {
	page, err := q.fetch(ctx, 0, 1)
	if err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.total = page.TotalCount
	q.started = true
	return nil
}

// FetchNextPage fetches the next page and integrates pages fetched so far.
//
// If there are no more pages, it does nothing.
// Errors from the Fetcher are returned as they are.
//
// If another call is fetching, it returns ErrFetchInFlight.
func (q *Query) FetchNextPage(ctx context.Context) error {
	q.mu.Lock()
	if q.fetching {
		q.mu.Unlock()
		return ErrFetchInFlight
	}
	q.fetching = true
	started := q.started
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		q.fetching = false
	}()

	if !started {
		if err := q.Start(ctx); err != nil {
			return err
		}
	}

	q.mu.Lock()
	if !q.hasNextPage() {
		q.mu.Unlock()
		return nil
	}
	offset, limit := q.nextOffset, ChunkSize(q.total)
	q.mu.Unlock()

	page, err := q.fetch(ctx, offset, limit)
	if err != nil {
		return err
	}

	q.mu.Lock()
	q.pages = append(q.pages, page)
	q.total = page.TotalCount
	q.nextOffset = offset + limit
	pages := slices.Clone(q.pages)
	hasNext := q.hasNextPage()
	q.mu.Unlock()

	q.assembler.Integrate(pages, hasNext)
	return nil
}

// FetchAll keeps fetching pages until no pages are left.
//
// It stops when ctx is done between pages, or when a fetch fails.
func (q *Query) FetchAll(ctx context.Context) error {
	_, err := loop.Start(
		ctx, q,
		func(ctx context.Context, q *Query) (*Query, loop.Next) {
			if err := q.FetchNextPage(ctx); err != nil {
				return q, loop.Break(err)
			}
			if !q.HasNextPage() {
				return q, loop.Break(nil)
			}
			return q, loop.Continue(0)
		},
	)
	return err
}

func (q *Query) hasNextPage() bool {
	if !q.started {
		return true
	}
	if len(q.pages) == 0 {
		return true
	}
	return q.nextOffset < q.total
}

// HasNextPage reports whether more pages are left to be fetched.
func (q *Query) HasNextPage() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.hasNextPage()
}

// IsFetchingNextPage reports whether a page is being fetched.
func (q *Query) IsFetchingNextPage() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.fetching
}

// TotalCount returns the total count of the collection last seen.
func (q *Query) TotalCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.total
}

// ChunkSize returns the page size for the total count last seen.
func (q *Query) ChunkSize() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return ChunkSize(q.total)
}

// Pages returns the number of pages fetched.
func (q *Query) Pages() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pages)
}
