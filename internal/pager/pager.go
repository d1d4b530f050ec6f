// Package pager coordinates search text, page index and page size
// against a paged data source, keeping the local page state consistent
// with server-reported totals and guarding against out-of-order
// network completion.
package pager

import (
	"context"
	"errors"
	"sync"

	"github.com/clinrec/console/internal/model"
)

// ErrStale marks a response that was superseded by a newer query for
// the same logical list. Callers drop it; the newer result is
// authoritative.
var ErrStale = errors.New("query result superseded by a newer query")

// FetchFunc loads one page from the data source and reports the
// server-side total item count.
type FetchFunc[T any] func(ctx context.Context, search string, page, pageSize int) (items []T, total int, err error)

// Result is one applied page.
type Result[T any] struct {
	Items []T             `json:"items"`
	State model.PageState `json:"pagination"`
}

// Pager drives one logical list. Queries may overlap; each gets a
// sequence number and only the newest is ever applied.
type Pager[T any] struct {
	fetch    FetchFunc[T]
	pageSize int

	mu     sync.Mutex
	search string
	latest uint64
	state  model.PageState
}

func New[T any](fetch FetchFunc[T], pageSize int) *Pager[T] {
	if pageSize < 1 {
		pageSize = 10
	}
	return &Pager[T]{fetch: fetch, pageSize: pageSize}
}

// Query fetches a page. Changing the search text starts a new result
// set, so the page resets to 1. When the server-reported total shrank
// underneath the requested page, the pager clamps to the new last page
// and re-issues the fetch rather than returning an out-of-range page.
func (p *Pager[T]) Query(ctx context.Context, search string, page int) (*Result[T], error) {
	p.mu.Lock()
	if search != p.search {
		p.search = search
		page = 1
	}
	if page < 1 {
		page = 1
	}
	p.latest++
	seq := p.latest
	p.mu.Unlock()

	// One re-query on clamp covers a shrinking set; bound the loop in
	// case the set keeps shrinking between fetches.
	for attempt := 0; attempt < 3; attempt++ {
		items, total, err := p.fetch(ctx, search, page, p.pageSize)
		if stale := p.superseded(seq); stale {
			return nil, ErrStale
		}
		if err != nil {
			return nil, err
		}

		state := model.NewPageState(page, p.pageSize, total)
		if state.Clamped(page) && attempt < 2 {
			page = state.Page
			continue
		}

		p.mu.Lock()
		if seq < p.latest {
			p.mu.Unlock()
			return nil, ErrStale
		}
		p.state = state
		p.mu.Unlock()

		return &Result[T]{Items: items, State: state}, nil
	}

	// Unreachable: the loop always returns by the bounded attempt.
	return nil, context.Canceled
}

// State returns the most recently applied page state.
func (p *Pager[T]) State() model.PageState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pager[T]) superseded(seq uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return seq < p.latest
}
