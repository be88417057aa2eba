package anytype_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/fivetwenty-io/anytype-client/pkg/anytype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errPageFailed = errors.New("page failed")

// scriptedFetcher serves pages in order and records the offsets it was asked for.
type scriptedFetcher struct {
	pages   []*anytype.Page[string]
	failAt  int
	offsets []string
}

func (f *scriptedFetcher) FetchPage(_ context.Context, req anytype.Request) (*anytype.Page[string], error) {
	offset, _ := req.QueryValue("offset")
	f.offsets = append(f.offsets, offset)

	call := len(f.offsets)
	if f.failAt > 0 && call == f.failAt {
		return nil, errPageFailed
	}

	if call >= len(f.pages) {
		return &anytype.Page[string]{}, nil
	}

	return f.pages[call], nil
}

func page(offset, total int, items ...string) *anytype.Page[string] {
	return &anytype.Page[string]{
		Items: items,
		Pagination: anytype.Pagination{
			HasMore: offset+len(items) < total,
			Limit:   2,
			Offset:  offset,
			Total:   total,
		},
	}
}

func newStream(fetcher *scriptedFetcher) *anytype.PagedResult[string] {
	req := anytype.Get("/v1/spaces").WithPagination(0, 2)

	return anytype.NewPagedResult(fetcher.pages[0], fetcher, req)
}

func TestPagedResult_CollectAll(t *testing.T) {
	t.Parallel()

	t.Run("fetches pages in order until an empty page", func(t *testing.T) {
		t.Parallel()

		fetcher := &scriptedFetcher{pages: []*anytype.Page[string]{
			page(0, 6, "A", "B"),
			page(2, 6, "C", "D"),
			{Pagination: anytype.Pagination{HasMore: true, Limit: 2, Offset: 4, Total: 6}},
		}}

		items, err := newStream(fetcher).CollectAll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B", "C", "D"}, items)
		assert.Equal(t, []string{"2", "4"}, fetcher.offsets)
	})

	t.Run("stops when has_more is false", func(t *testing.T) {
		t.Parallel()

		fetcher := &scriptedFetcher{pages: []*anytype.Page[string]{
			page(0, 3, "A", "B"),
			page(2, 3, "C"),
		}}

		items, err := newStream(fetcher).CollectAll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B", "C"}, items)
		assert.Equal(t, []string{"2"}, fetcher.offsets)
	})

	t.Run("a page without a limit advances by its items", func(t *testing.T) {
		t.Parallel()

		fetcher := &scriptedFetcher{pages: []*anytype.Page[string]{
			{Items: []string{"A", "B"}, Pagination: anytype.Pagination{HasMore: true, Total: 3}},
			page(2, 3, "C"),
		}}

		items, err := newStream(fetcher).CollectAll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B", "C"}, items)
		assert.Equal(t, []string{"2"}, fetcher.offsets)
	})

	t.Run("returns the prefix with the error", func(t *testing.T) {
		t.Parallel()

		fetcher := &scriptedFetcher{
			pages:  []*anytype.Page[string]{page(0, 6, "A", "B")},
			failAt: 1,
		}

		stream := newStream(fetcher)

		items, err := stream.CollectAll(context.Background())
		require.ErrorIs(t, err, errPageFailed)
		assert.Equal(t, []string{"A", "B"}, items)

		_, err = stream.Next(context.Background())
		require.ErrorIs(t, err, anytype.ErrNoMoreItems)
	})

	t.Run("keeps other query parameters", func(t *testing.T) {
		t.Parallel()

		var seen []anytype.Request

		fetcher := fetcherFunc(func(_ context.Context, req anytype.Request) (*anytype.Page[string], error) {
			seen = append(seen, req)

			return &anytype.Page[string]{}, nil
		})

		req := anytype.Get("/v1/search").WithQuery("type", "task").WithPagination(0, 2)
		stream := anytype.NewPagedResult(page(0, 10, "A", "B"), fetcher, req)

		_, err := stream.CollectAll(context.Background())
		require.NoError(t, err)
		require.Len(t, seen, 1)
		assert.Equal(t, "type=task&limit=2&offset=2", seen[0].EncodeQuery())
	})
}

type fetcherFunc func(context.Context, anytype.Request) (*anytype.Page[string], error)

func (f fetcherFunc) FetchPage(ctx context.Context, req anytype.Request) (*anytype.Page[string], error) {
	return f(ctx, req)
}

func TestFromItems(t *testing.T) {
	t.Parallel()

	stream := anytype.FromItems([]string{"x", "y"})

	assert.False(t, stream.HasMore())
	assert.Equal(t, []string{"x", "y"}, stream.Items())
	assert.Equal(t, 2, stream.Pagination().Total)

	items, err := stream.CollectAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, items)

	_, err = stream.Next(context.Background())
	require.ErrorIs(t, err, anytype.ErrNoMoreItems)
}

func TestPagedResult_ForEach(t *testing.T) {
	t.Parallel()

	fetcher := &scriptedFetcher{pages: []*anytype.Page[string]{
		page(0, 4, "A", "B"),
		page(2, 4, "C", "D"),
	}}

	var got []string

	err := newStream(fetcher).ForEach(context.Background(), func(item string) error {
		got = append(got, item)

		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "D"}, got)

	stop := errors.New("stop")
	calls := 0

	err = anytype.FromItems([]string{"1", "2", "3"}).ForEach(context.Background(), func(string) error {
		calls++

		return stop
	})
	require.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestPagedResult_All(t *testing.T) {
	t.Parallel()

	t.Run("yields every item", func(t *testing.T) {
		t.Parallel()

		var got []string

		for item, err := range anytype.FromItems([]string{"a", "b"}).All(context.Background()) {
			require.NoError(t, err)

			got = append(got, item)
		}

		assert.Equal(t, []string{"a", "b"}, got)
	})

	t.Run("yields a fetch error once", func(t *testing.T) {
		t.Parallel()

		fetcher := &scriptedFetcher{
			pages:  []*anytype.Page[string]{page(0, 4, "A", "B")},
			failAt: 1,
		}

		var (
			got  []string
			errs []error
		)

		for item, err := range newStream(fetcher).All(context.Background()) {
			if err != nil {
				errs = append(errs, err)

				continue
			}

			got = append(got, item)
		}

		assert.Equal(t, []string{"A", "B"}, got)
		require.Len(t, errs, 1)
		require.ErrorIs(t, errs[0], errPageFailed)
	})

	t.Run("break stops fetching", func(t *testing.T) {
		t.Parallel()

		fetcher := &scriptedFetcher{pages: []*anytype.Page[string]{
			page(0, 4, "A", "B"),
			page(2, 4, "C", "D"),
		}}

		for item := range newStream(fetcher).All(context.Background()) {
			if item == "A" {
				break
			}
		}

		assert.Empty(t, fetcher.offsets)
	})
}

func TestPagedResult_LargeCollection(t *testing.T) {
	t.Parallel()

	const total = 25

	fetcher := fetcherFunc(func(_ context.Context, req anytype.Request) (*anytype.Page[string], error) {
		offsetValue, _ := req.QueryValue("offset")
		limitValue, _ := req.QueryValue("limit")

		offset, err := strconv.Atoi(offsetValue)
		if err != nil {
			return nil, err
		}

		limit, err := strconv.Atoi(limitValue)
		if err != nil {
			return nil, err
		}

		var items []string
		for i := offset; i < min(offset+limit, total); i++ {
			items = append(items, strconv.Itoa(i))
		}

		return &anytype.Page[string]{
			Items:      items,
			Pagination: anytype.Pagination{HasMore: offset+limit < total, Limit: limit, Offset: offset, Total: total},
		}, nil
	})

	req := anytype.Get("/v1/spaces").WithPagination(0, 10)

	first, err := fetcher.FetchPage(context.Background(), req)
	require.NoError(t, err)

	items, err := anytype.NewPagedResult(first, fetcher, req).CollectAll(context.Background())
	require.NoError(t, err)
	require.Len(t, items, total)
	assert.Equal(t, "0", items[0])
	assert.Equal(t, "24", items[total-1])
}
