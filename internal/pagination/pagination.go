// Package pagination implements the cursor convention shared by every list
// endpoint: a page reports whether another page exists, and the id of its last
// item is the cursor for the next request.
package pagination

import (
	"context"
	"errors"
	"fmt"
)

const (
	DefaultSize = 10
	MaxSize     = 50
)

// ErrDone is returned by Pager.Next once pagination has terminated
var ErrDone = errors.New("no more pages")

// Request describes one page request. A nil Cursor requests the first page.
type Request struct {
	Cursor *int64
	Size   int
}

// Page is one page of a server-paginated collection
type Page[T any] struct {
	Items   []T
	HasNext bool
}

// FetchFunc loads a single page
type FetchFunc[T any] func(ctx context.Context, req Request) (Page[T], error)

// IDFunc returns the identifier used as cursor for an item
type IDFunc[T any] func(item T) int64

// NextCursor derives the cursor for the page following p. It reports false when
// the server says there is nothing more or when the page carries no item to
// advance from.
func NextCursor[T any](p Page[T], idOf IDFunc[T]) (int64, bool) {
	if !p.HasNext || len(p.Items) == 0 {
		return 0, false
	}
	return idOf(p.Items[len(p.Items)-1]), true
}

// NormalizeSize clamps a requested page size to [1, MaxSize], using
// DefaultSize for non-positive values.
func NormalizeSize(size int) int {
	if size <= 0 {
		return DefaultSize
	}
	if size > MaxSize {
		return MaxSize
	}
	return size
}

// Pager walks a paginated collection one page at a time. Items accumulate in
// server order; nothing is re-sorted across page boundaries. A Pager belongs to
// a single caller and is not safe for concurrent use.
type Pager[T any] struct {
	fetch FetchFunc[T]
	idOf  IDFunc[T]
	size  int

	cursor    *int64
	items     []T
	pages     int
	done      bool
	malformed bool
}

// NewPager creates a pager starting at the first page
func NewPager[T any](fetch FetchFunc[T], idOf IDFunc[T], size int) *Pager[T] {
	return &Pager[T]{
		fetch: fetch,
		idOf:  idOf,
		size:  NormalizeSize(size),
	}
}

// Next fetches the next page and returns its items. The cursor only advances
// after a successful fetch, so a failed call can simply be retried.
func (p *Pager[T]) Next(ctx context.Context) ([]T, error) {
	if p.done {
		return nil, ErrDone
	}

	req := Request{Size: p.size}
	if p.cursor != nil {
		c := *p.cursor
		req.Cursor = &c
	}

	page, err := p.fetch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page %d: %w", p.pages+1, err)
	}

	p.pages++
	p.items = append(p.items, page.Items...)

	next, ok := NextCursor(page, p.idOf)
	if !ok {
		// hasNext without items leaves nothing to advance from
		p.malformed = page.HasNext && len(page.Items) == 0
		p.done = true
		return page.Items, nil
	}
	p.cursor = &next

	return page.Items, nil
}

// Done reports whether pagination has terminated
func (p *Pager[T]) Done() bool {
	return p.done
}

// Malformed reports whether pagination stopped because the server claimed more
// pages but sent an empty one
func (p *Pager[T]) Malformed() bool {
	return p.malformed
}

// Items returns everything fetched so far, in order
func (p *Pager[T]) Items() []T {
	return p.items
}

// Pages returns the number of successfully fetched pages
func (p *Pager[T]) Pages() int {
	return p.pages
}

// Cursor returns the cursor the next request will use, or nil before the first
// page has been fetched
func (p *Pager[T]) Cursor() *int64 {
	return p.cursor
}

// Collect drains a collection, fetching at most maxPages pages (0 means no
// limit). It returns the pager so callers can inspect its final state.
func Collect[T any](ctx context.Context, fetch FetchFunc[T], idOf IDFunc[T], size, maxPages int) (*Pager[T], error) {
	p := NewPager(fetch, idOf, size)
	for !p.Done() {
		if maxPages > 0 && p.Pages() >= maxPages {
			break
		}
		if _, err := p.Next(ctx); err != nil {
			return p, err
		}
	}
	return p, nil
}
