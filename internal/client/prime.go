package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/anytype-client/internal/constants"
	"github.com/fivetwenty-io/anytype-client/pkg/anytype"
	"golang.org/x/sync/errgroup"
)

// Prime loads the space list and then the properties and types of every
// space, at most DefaultConcurrencyLimit fetches at a time. Sets that are
// already cached are not fetched again.
func (c *Client) Prime(ctx context.Context) error {
	if !c.cache.IsEnabled() {
		return anytype.ErrCacheDisabled
	}

	spaces, err := c.spaces.all(ctx)
	if err != nil {
		return fmt.Errorf("priming spaces: %w", err)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(constants.DefaultConcurrencyLimit)

	for _, space := range spaces {
		group.Go(func() error {
			_, err := c.properties.all(groupCtx, space.ID)
			if err != nil {
				return fmt.Errorf("priming properties of %s: %w", space.ID, err)
			}

			return nil
		})

		group.Go(func() error {
			_, err := c.types.all(groupCtx, space.ID)
			if err != nil {
				return fmt.Errorf("priming types of %s: %w", space.ID, err)
			}

			return nil
		})
	}

	err = group.Wait()
	if err != nil {
		return err
	}

	c.logger.Info("metadata cache primed", map[string]interface{}{
		"spaces":     c.cache.NumSpaces(),
		"properties": c.cache.NumProperties(),
		"types":      c.cache.NumTypes(),
	})

	return nil
}
