package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/anytype-client/internal/http"
	"github.com/fivetwenty-io/anytype-client/pkg/anytype"
)

// PropertiesClient implements anytype.PropertiesClient.
type PropertiesClient struct {
	client *Client
}

// NewPropertiesClient creates a new properties client.
func NewPropertiesClient(client *Client) *PropertiesClient {
	return &PropertiesClient{
		client: client,
	}
}

func propertiesPath(spaceID string) string {
	return spacesPath + "/" + spaceID + "/properties"
}

// List implements anytype.PropertiesClient.List.
func (p *PropertiesClient) List(ctx context.Context, spaceID string, opts *anytype.ListOptions) (*anytype.PagedResult[anytype.Property], error) {
	err := p.client.limits.ValidateID(spaceID, "space id")
	if err != nil {
		return nil, err
	}

	if opts.IsDefault() && p.client.cache.IsEnabled() {
		properties, err := p.all(ctx, spaceID)
		if err != nil {
			return nil, fmt.Errorf("listing properties: %w", err)
		}

		return anytype.FromItems(properties), nil
	}

	req := opts.Apply(anytype.Get(propertiesPath(spaceID)))

	result, err := http.SendPaginated[anytype.Property](ctx, p.client.httpClient, req)
	if err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}

	return result, nil
}

// Get implements anytype.PropertiesClient.Get. idOrKey may be the property
// id or its key; keys resolve only through the cache.
func (p *PropertiesClient) Get(ctx context.Context, spaceID, idOrKey string) (*anytype.Property, error) {
	err := p.validate(spaceID, idOrKey)
	if err != nil {
		return nil, err
	}

	cache := p.client.cache

	if cache.IsEnabled() {
		if !cache.HasProperties(spaceID) {
			_, err = p.all(ctx, spaceID)
			if err != nil {
				return nil, fmt.Errorf("getting property: %w", err)
			}
		}

		if property, ok := cache.GetProperty(spaceID, idOrKey); ok {
			return &property, nil
		}
	}

	resp, err := http.Send[anytype.PropertyResponse](ctx, p.client.httpClient,
		anytype.Get(propertiesPath(spaceID)+"/"+idOrKey))
	if err != nil {
		return nil, fmt.Errorf("getting property: %w", err)
	}

	cache.SetProperty(spaceID, resp.Property)

	return &resp.Property, nil
}

// Lookup implements anytype.PropertiesClient.Lookup. It returns every
// property whose id, key or name equals text, ignoring case.
func (p *PropertiesClient) Lookup(ctx context.Context, spaceID, text string) ([]anytype.Property, error) {
	index, properties, err := p.index(ctx, spaceID)
	if err != nil {
		return nil, fmt.Errorf("looking up property: %w", err)
	}

	matches, ok := index.LookupProperty(spaceID, text)
	if !ok {
		matches, _ = scratchProperties(spaceID, properties).LookupProperty(spaceID, text)
	}

	return matches, nil
}

// LookupByKey implements anytype.PropertiesClient.LookupByKey.
func (p *PropertiesClient) LookupByKey(ctx context.Context, spaceID, key string) (*anytype.Property, error) {
	index, properties, err := p.index(ctx, spaceID)
	if err != nil {
		return nil, fmt.Errorf("looking up property: %w", err)
	}

	property, ok := index.LookupPropertyByKey(spaceID, key)
	if !ok && !index.HasProperties(spaceID) {
		property, ok = scratchProperties(spaceID, properties).LookupPropertyByKey(spaceID, key)
	}

	if !ok {
		return nil, notFound(anytype.ErrPropertyNotFound, "no property with key %q in space %s", key, spaceID)
	}

	return &property, nil
}

func (p *PropertiesClient) validate(spaceID, idOrKey string) error {
	err := p.client.limits.ValidateID(spaceID, "space id")
	if err != nil {
		return err
	}

	return p.client.limits.ValidateID(idOrKey, "property id")
}

// index returns a cache holding the properties of spaceID along with the
// properties themselves: the client's own cache when enabled, otherwise a
// throwaway one filled from the network. A concurrent clear can empty the
// client's cache before the caller reads it; callers then fall back to
// scratchProperties.
func (p *PropertiesClient) index(ctx context.Context, spaceID string) (*anytype.MetadataCache, []anytype.Property, error) {
	err := p.client.limits.ValidateID(spaceID, "space id")
	if err != nil {
		return nil, nil, err
	}

	properties, err := p.all(ctx, spaceID)
	if err != nil {
		return nil, nil, err
	}

	if p.client.cache.IsEnabled() {
		return p.client.cache, properties, nil
	}

	return scratchProperties(spaceID, properties), properties, nil
}

func scratchProperties(spaceID string, properties []anytype.Property) *anytype.MetadataCache {
	scratch := anytype.NewMetadataCache()
	scratch.SetProperties(spaceID, properties)

	return scratch
}

// all returns every property of spaceID, through the cache when it is enabled.
func (p *PropertiesClient) all(ctx context.Context, spaceID string) ([]anytype.Property, error) {
	c := p.client

	if properties, ok := c.cache.PropertiesForSpace(spaceID); ok {
		return properties, nil
	}

	fetch := func(ctx context.Context) ([]anytype.Property, error) {
		return collect[anytype.Property](ctx, c, propertiesPath(spaceID))
	}

	if !c.cache.IsEnabled() {
		return fetch(ctx)
	}

	properties, err := load(ctx, c, c.snapshotKey(ctx, anytype.PropertiesSnapshotKey(spaceID)), fetch)
	if err != nil {
		return nil, err
	}

	c.cache.SetProperties(spaceID, properties)

	if cached, ok := c.cache.PropertiesForSpace(spaceID); ok {
		return cached, nil
	}

	return properties, nil
}
