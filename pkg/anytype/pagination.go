package anytype

import (
	"context"
	"errors"
	"iter"
)

// PageFetcher fetches the page described by req. The HTTP executor
// implements it; PagedResult calls it when the held page is exhausted.
type PageFetcher[T any] interface {
	FetchPage(ctx context.Context, req Request) (*Page[T], error)
}

// PagedResult streams every item of a collection, fetching further pages
// lazily and strictly in order. A PagedResult without a fetcher is complete
// and never performs I/O.
//
// A PagedResult is not safe for concurrent use.
type PagedResult[T any] struct {
	items      []T
	pos        int
	pagination Pagination
	offset     int
	limit      int
	fetcher    PageFetcher[T]
	request    Request
	done       bool
}

// NewPagedResult seeds a stream with the first page returned for req.
// A nil fetcher makes the first page terminal.
func NewPagedResult[T any](page *Page[T], fetcher PageFetcher[T], req Request) *PagedResult[T] {
	if page == nil {
		page = &Page[T]{}
	}

	return &PagedResult[T]{
		items:      page.Items,
		pagination: page.Pagination,
		offset:     page.Pagination.Offset,
		limit:      page.Pagination.Limit,
		fetcher:    fetcher,
		request:    req,
	}
}

// FromItems wraps an already materialized list, e.g. one served from cache.
func FromItems[T any](items []T) *PagedResult[T] {
	return NewPagedResult(&Page[T]{
		Items: items,
		Pagination: Pagination{
			HasMore: false,
			Limit:   len(items),
			Offset:  0,
			Total:   len(items),
		},
	}, nil, Request{})
}

// Items returns the items of the page currently held.
func (p *PagedResult[T]) Items() []T {
	return p.items
}

// Pagination returns the metadata of the page currently held.
func (p *PagedResult[T]) Pagination() Pagination {
	return p.pagination
}

// HasMore reports whether another page may be fetched.
func (p *PagedResult[T]) HasMore() bool {
	return !p.done && p.pagination.HasMore && p.fetcher != nil
}

// Next returns the next item. It returns ErrNoMoreItems once the collection
// is exhausted. A failed page fetch is returned once; every later call
// returns ErrNoMoreItems.
func (p *PagedResult[T]) Next(ctx context.Context) (T, error) {
	var zero T

	for {
		if p.done {
			return zero, ErrNoMoreItems
		}

		if p.pos < len(p.items) {
			item := p.items[p.pos]
			p.pos++

			return item, nil
		}

		if !p.pagination.HasMore || p.fetcher == nil {
			p.done = true

			return zero, ErrNoMoreItems
		}

		// A page that reports no limit advances by the items it held.
		if p.limit <= 0 {
			p.limit = len(p.items)
		}

		if p.limit <= 0 {
			p.done = true

			return zero, ErrNoMoreItems
		}

		next := p.request.WithPagination(max(p.offset, p.pagination.Offset)+p.limit, p.limit)

		page, err := p.fetcher.FetchPage(ctx, next)
		if err != nil {
			p.done = true

			return zero, err
		}

		p.request = next
		p.items = page.Items
		p.pos = 0
		p.pagination = page.Pagination
		p.offset = max(p.offset+p.limit, page.Pagination.Offset)

		if len(page.Items) == 0 {
			p.done = true

			return zero, ErrNoMoreItems
		}
	}
}

// CollectAll drains the stream. On a fetch failure it returns the items
// gathered so far together with the error.
func (p *PagedResult[T]) CollectAll(ctx context.Context) ([]T, error) {
	items := make([]T, 0, len(p.items)-p.pos)

	for {
		item, err := p.Next(ctx)
		if errors.Is(err, ErrNoMoreItems) {
			return items, nil
		}

		if err != nil {
			return items, err
		}

		items = append(items, item)
	}
}

// ForEach calls fn for every remaining item, stopping at the first error.
func (p *PagedResult[T]) ForEach(ctx context.Context, fn func(T) error) error {
	for {
		item, err := p.Next(ctx)
		if errors.Is(err, ErrNoMoreItems) {
			return nil
		}

		if err != nil {
			return err
		}

		err = fn(item)
		if err != nil {
			return err
		}
	}
}

// All returns a range-over-func sequence. A fetch failure is yielded once
// with a zero item, after which the sequence ends.
func (p *PagedResult[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			item, err := p.Next(ctx)
			if errors.Is(err, ErrNoMoreItems) {
				return
			}

			if !yield(item, err) || err != nil {
				return
			}
		}
	}
}
