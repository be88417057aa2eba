package http

import (
	"context"

	"github.com/fivetwenty-io/anytype-client/pkg/anytype"
	"github.com/goccy/go-json"
)

// Send executes req and decodes the 2xx body into T. A body that does not
// decode counts as an error, not a success.
func Send[T any](ctx context.Context, c *Client, req anytype.Request) (T, error) {
	var result T

	resp, err := c.execute(ctx, req)
	if err != nil {
		return result, err
	}

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		var zero T

		return zero, c.fail(req, &anytype.Error{
			Kind:       anytype.KindDeserialization,
			StatusCode: resp.StatusCode,
			Message:    "decoding response",
			Err:        err,
		})
	}

	c.metrics.RecordSuccess(len(resp.Body))

	return result, nil
}

// SendPaginated fetches the first page for req and returns a stream that
// fetches the rest on demand through c.
func SendPaginated[T any](ctx context.Context, c *Client, req anytype.Request) (*anytype.PagedResult[T], error) {
	fetcher := pageFetcher[T]{client: c}

	page, err := fetcher.FetchPage(ctx, req)
	if err != nil {
		return nil, err
	}

	return anytype.NewPagedResult(page, fetcher, req), nil
}

type pageFetcher[T any] struct {
	client *Client
}

func (f pageFetcher[T]) FetchPage(ctx context.Context, req anytype.Request) (*anytype.Page[T], error) {
	page, err := Send[anytype.Page[T]](ctx, f.client, req)
	if err != nil {
		return nil, err
	}

	return &page, nil
}
