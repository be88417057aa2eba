package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/anytype-client/internal/http"
	"github.com/fivetwenty-io/anytype-client/pkg/anytype"
)

// TypesClient implements anytype.TypesClient.
type TypesClient struct {
	client *Client
}

// NewTypesClient creates a new types client.
func NewTypesClient(client *Client) *TypesClient {
	return &TypesClient{
		client: client,
	}
}

func typesPath(spaceID string) string {
	return spacesPath + "/" + spaceID + "/types"
}

// List implements anytype.TypesClient.List.
func (t *TypesClient) List(ctx context.Context, spaceID string, opts *anytype.ListOptions) (*anytype.PagedResult[anytype.Type], error) {
	err := t.client.limits.ValidateID(spaceID, "space id")
	if err != nil {
		return nil, err
	}

	if opts.IsDefault() && t.client.cache.IsEnabled() {
		types, err := t.all(ctx, spaceID)
		if err != nil {
			return nil, fmt.Errorf("listing types: %w", err)
		}

		return anytype.FromItems(types), nil
	}

	req := opts.Apply(anytype.Get(typesPath(spaceID)))

	result, err := http.SendPaginated[anytype.Type](ctx, t.client.httpClient, req)
	if err != nil {
		return nil, fmt.Errorf("listing types: %w", err)
	}

	return result, nil
}

// Get implements anytype.TypesClient.Get. idOrKey may be the type
// id or its key; keys resolve only through the cache.
func (t *TypesClient) Get(ctx context.Context, spaceID, idOrKey string) (*anytype.Type, error) {
	err := t.validate(spaceID, idOrKey)
	if err != nil {
		return nil, err
	}

	cache := t.client.cache

	if cache.IsEnabled() {
		if !cache.HasTypes(spaceID) {
			_, err = t.all(ctx, spaceID)
			if err != nil {
				return nil, fmt.Errorf("getting type: %w", err)
			}
		}

		if typ, ok := cache.GetType(spaceID, idOrKey); ok {
			return &typ, nil
		}
	}

	resp, err := http.Send[anytype.TypeResponse](ctx, t.client.httpClient,
		anytype.Get(typesPath(spaceID)+"/"+idOrKey))
	if err != nil {
		return nil, fmt.Errorf("getting type: %w", err)
	}

	cache.SetType(spaceID, resp.Type)

	return &resp.Type, nil
}

// Lookup implements anytype.TypesClient.Lookup. It returns every
// type whose id, key or name equals text, ignoring case.
func (t *TypesClient) Lookup(ctx context.Context, spaceID, text string) ([]anytype.Type, error) {
	index, types, err := t.index(ctx, spaceID)
	if err != nil {
		return nil, fmt.Errorf("looking up type: %w", err)
	}

	matches, ok := index.LookupTypes(spaceID, text)
	if !ok {
		matches, _ = scratchTypes(spaceID, types).LookupTypes(spaceID, text)
	}

	return matches, nil
}

// LookupByKey implements anytype.TypesClient.LookupByKey.
func (t *TypesClient) LookupByKey(ctx context.Context, spaceID, key string) (*anytype.Type, error) {
	index, types, err := t.index(ctx, spaceID)
	if err != nil {
		return nil, fmt.Errorf("looking up type: %w", err)
	}

	typ, ok := index.LookupTypeByKey(spaceID, key)
	if !ok && !index.HasTypes(spaceID) {
		typ, ok = scratchTypes(spaceID, types).LookupTypeByKey(spaceID, key)
	}

	if !ok {
		return nil, notFound(anytype.ErrTypeNotFound, "no type with key %q in space %s", key, spaceID)
	}

	return &typ, nil
}

func (t *TypesClient) validate(spaceID, idOrKey string) error {
	err := t.client.limits.ValidateID(spaceID, "space id")
	if err != nil {
		return err
	}

	return t.client.limits.ValidateID(idOrKey, "type id")
}

// index returns a cache holding the types of spaceID along with the
// types themselves: the client's own cache when enabled, otherwise a
// throwaway one filled from the network. A concurrent clear can empty the
// client's cache before the caller reads it; callers then fall back to
// scratchTypes.
func (t *TypesClient) index(ctx context.Context, spaceID string) (*anytype.MetadataCache, []anytype.Type, error) {
	err := t.client.limits.ValidateID(spaceID, "space id")
	if err != nil {
		return nil, nil, err
	}

	types, err := t.all(ctx, spaceID)
	if err != nil {
		return nil, nil, err
	}

	if t.client.cache.IsEnabled() {
		return t.client.cache, types, nil
	}

	return scratchTypes(spaceID, types), types, nil
}

func scratchTypes(spaceID string, types []anytype.Type) *anytype.MetadataCache {
	scratch := anytype.NewMetadataCache()
	scratch.SetTypes(spaceID, types)

	return scratch
}

// all returns every type of spaceID, through the cache when it is enabled.
func (t *TypesClient) all(ctx context.Context, spaceID string) ([]anytype.Type, error) {
	c := t.client

	if types, ok := c.cache.TypesForSpace(spaceID); ok {
		return types, nil
	}

	fetch := func(ctx context.Context) ([]anytype.Type, error) {
		return collect[anytype.Type](ctx, c, typesPath(spaceID))
	}

	if !c.cache.IsEnabled() {
		return fetch(ctx)
	}

	types, err := load(ctx, c, c.snapshotKey(ctx, anytype.TypesSnapshotKey(spaceID)), fetch)
	if err != nil {
		return nil, err
	}

	c.cache.SetTypes(spaceID, types)

	if cached, ok := c.cache.TypesForSpace(spaceID); ok {
		return cached, nil
	}

	return types, nil
}
