package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/anytype-client/pkg/anytype"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewSpacesCommand creates the spaces command group.
func NewSpacesCommand() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:     "spaces",
		Aliases: []string{"space"},
		Short:   "List spaces",
		Long:    "List the spaces visible to the configured API key",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := requireKey()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			client, err := newClient(ctx)
			if err != nil {
				return err
			}

			result, err := client.Spaces().List(ctx, listOptions(limit, offset))
			if err != nil {
				return fmt.Errorf("failed to list spaces: %w", err)
			}

			spaces, err := collectPage(ctx, result, limit)
			if err != nil {
				return fmt.Errorf("failed to list spaces: %w", err)
			}

			return renderSpaces(cmd, spaces)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "page size (0 lists every space)")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of spaces to skip")

	cmd.AddCommand(newSpacesGetCommand())

	return cmd
}

func newSpacesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get SPACE_ID_OR_NAME",
		Short: "Get space details",
		Long:  "Display a single space, found by id or, failing that, by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := requireKey()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			client, err := newClient(ctx)
			if err != nil {
				return err
			}

			space, err := resolveSpace(ctx, client, args[0])
			if err != nil {
				return err
			}

			return renderSpaces(cmd, []anytype.Space{*space})
		},
	}
}

// resolveSpace accepts either a space id or a space name.
func resolveSpace(ctx context.Context, client anytype.Client, idOrName string) (*anytype.Space, error) {
	space, err := client.Spaces().Get(ctx, idOrName)
	if err == nil {
		return space, nil
	}

	if !anytype.IsNotFound(err) && !anytype.IsValidation(err) {
		return nil, fmt.Errorf("failed to get space: %w", err)
	}

	space, err = client.Spaces().LookupByName(ctx, idOrName)
	if err != nil {
		return nil, fmt.Errorf("space '%s': %w", idOrName, err)
	}

	return space, nil
}

func renderSpaces(cmd *cobra.Command, spaces []anytype.Space) error {
	return render(cmd.OutOrStdout(), spaces, func(table *tablewriter.Table) {
		table.Header("ID", "Name", "Model", "Description")

		for _, space := range spaces {
			_ = table.Append(space.ID, space.Name, string(space.Object), orNA(space.Description))
		}
	})
}

// listOptions returns nil, which lets the client serve from its cache, when
// neither flag is set.
func listOptions(limit, offset int) *anytype.ListOptions {
	if limit <= 0 && offset <= 0 {
		return nil
	}

	return &anytype.ListOptions{Limit: limit, Offset: offset}
}

// collectPage drains the stream, or returns just the first page when an
// explicit limit was given.
func collectPage[T any](ctx context.Context, result *anytype.PagedResult[T], limit int) ([]T, error) {
	if limit > 0 {
		return result.Items(), nil
	}

	return result.CollectAll(ctx)
}
