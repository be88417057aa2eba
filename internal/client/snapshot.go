package client

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/fivetwenty-io/anytype-client/internal/constants"
	"github.com/fivetwenty-io/anytype-client/internal/http"
	"github.com/fivetwenty-io/anytype-client/pkg/anytype"
	"github.com/goccy/go-json"
)

// collect fetches every page of the list at path.
func collect[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	req := anytype.Get(path).WithPagination(0, constants.MaxPageLimit)

	result, err := http.SendPaginated[T](ctx, c.httpClient, req)
	if err != nil {
		return nil, err
	}

	return result.CollectAll(ctx)
}

// snapshotKey scopes base to the current credential, so a key change or a
// process using another key never reads snapshots filled for a different key.
func (c *Client) snapshotKey(ctx context.Context, base string) string {
	key, _ := c.credentials.Get(ctx)

	return anytype.ScopedSnapshotKey(anytype.SnapshotScope(key), base)
}

// load returns the list stored under key from the snapshot backend, or
// fetches it and stores it there. Concurrent loads of one key share a single
// backend read and fetch; the caller populates the metadata cache.
func load[T any](ctx context.Context, c *Client, key string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	value, err, _ := c.fills.Do(key, func() (interface{}, error) {
		var items []T
		if c.readSnapshot(ctx, key, &items) {
			return items, nil
		}

		items, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		c.writeSnapshot(ctx, key, items)

		return items, nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := value.([]T)

	return slices.Clone(items), nil
}

func (c *Client) readSnapshot(ctx context.Context, key string, dst interface{}) bool {
	snapshot, err := c.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, anytype.ErrSnapshotMiss) && !errors.Is(err, anytype.ErrSnapshotExpired) {
			c.logger.Warn("reading snapshot", map[string]interface{}{"key": key, "error": err.Error()})
		}

		return false
	}

	if snapshot.Expired(c.now()) {
		return false
	}

	err = json.Unmarshal(snapshot.Data, dst)
	if err != nil {
		c.logger.Warn("decoding snapshot", map[string]interface{}{"key": key, "error": err.Error()})

		return false
	}

	c.logger.Debug("snapshot hit", map[string]interface{}{"key": key})

	return true
}

func (c *Client) writeSnapshot(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("encoding snapshot", map[string]interface{}{"key": key, "error": err.Error()})

		return
	}

	now := c.now()

	err = c.backend.Set(ctx, key, &anytype.Snapshot{
		Data:      data,
		StoredAt:  now,
		ExpiresAt: now.Add(c.backendTTL),
	})
	if err != nil {
		c.logger.Warn("writing snapshot", map[string]interface{}{"key": key, "error": err.Error()})
	}
}

// warmSpaces fills the space list from the backend only; it never touches
// the network.
func (c *Client) warmSpaces(ctx context.Context) {
	if !c.cache.IsEnabled() || c.cache.HasSpaces() {
		return
	}

	var spaces []anytype.Space
	if c.readSnapshot(ctx, c.snapshotKey(ctx, anytype.SpacesSnapshotKey()), &spaces) {
		c.cache.SetSpaces(spaces)
	}
}

func notFound(sentinel error, format string, args ...interface{}) error {
	return &anytype.Error{
		Kind:    anytype.KindNotFound,
		Message: fmt.Sprintf(format, args...),
		Err:     sentinel,
	}
}
