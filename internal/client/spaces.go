package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/anytype-client/internal/http"
	"github.com/fivetwenty-io/anytype-client/pkg/anytype"
)

const spacesPath = "/v1/spaces"

// SpacesClient implements anytype.SpacesClient.
type SpacesClient struct {
	client *Client
}

// NewSpacesClient creates a new spaces client.
func NewSpacesClient(client *Client) *SpacesClient {
	return &SpacesClient{
		client: client,
	}
}

// List implements anytype.SpacesClient.List. Unfiltered lists are served
// from the metadata cache when it is enabled.
func (s *SpacesClient) List(ctx context.Context, opts *anytype.ListOptions) (*anytype.PagedResult[anytype.Space], error) {
	if opts.IsDefault() && s.client.cache.IsEnabled() {
		spaces, err := s.all(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing spaces: %w", err)
		}

		return anytype.FromItems(spaces), nil
	}

	result, err := http.SendPaginated[anytype.Space](ctx, s.client.httpClient, opts.Apply(anytype.Get(spacesPath)))
	if err != nil {
		return nil, fmt.Errorf("listing spaces: %w", err)
	}

	return result, nil
}

// Get implements anytype.SpacesClient.Get.
func (s *SpacesClient) Get(ctx context.Context, spaceID string) (*anytype.Space, error) {
	err := s.client.limits.ValidateID(spaceID, "space id")
	if err != nil {
		return nil, err
	}

	if s.client.cache.IsEnabled() {
		if !s.client.cache.HasSpaces() {
			_, err = s.all(ctx)
			if err != nil {
				return nil, fmt.Errorf("getting space: %w", err)
			}
		}

		if space, ok := s.client.cache.GetSpace(spaceID); ok {
			return &space, nil
		}
	}

	resp, err := http.Send[anytype.SpaceResponse](ctx, s.client.httpClient, anytype.Get(spacesPath+"/"+spaceID))
	if err != nil {
		return nil, fmt.Errorf("getting space: %w", err)
	}

	return &resp.Space, nil
}

// LookupByName implements anytype.SpacesClient.LookupByName. Names are
// compared without regard to case; the first match wins.
func (s *SpacesClient) LookupByName(ctx context.Context, name string) (*anytype.Space, error) {
	err := s.client.limits.ValidateName(name, "space name")
	if err != nil {
		return nil, err
	}

	spaces, err := s.all(ctx)
	if err != nil {
		return nil, fmt.Errorf("looking up space: %w", err)
	}

	check := strings.ToLower(strings.TrimSpace(name))

	for _, space := range spaces {
		if strings.ToLower(space.Name) == check {
			return &space, nil
		}
	}

	return nil, notFound(anytype.ErrSpaceNotFound, "no space named %q", name)
}

// all returns every space, through the cache when it is enabled.
func (s *SpacesClient) all(ctx context.Context) ([]anytype.Space, error) {
	c := s.client

	if spaces, ok := c.cache.Spaces(); ok {
		return spaces, nil
	}

	if !c.cache.IsEnabled() {
		return collect[anytype.Space](ctx, c, spacesPath)
	}

	spaces, err := load(ctx, c, c.snapshotKey(ctx, anytype.SpacesSnapshotKey()), func(ctx context.Context) ([]anytype.Space, error) {
		return collect[anytype.Space](ctx, c, spacesPath)
	})
	if err != nil {
		return nil, err
	}

	c.cache.SetSpaces(spaces)

	return spaces, nil
}
