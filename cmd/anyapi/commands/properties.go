package commands

import (
	"fmt"
	"strconv"

	"github.com/fivetwenty-io/anytype-client/pkg/anytype"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewPropertiesCommand creates the properties command.
func NewPropertiesCommand() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:     "properties SPACE [PROPERTY_ID_OR_KEY]",
		Aliases: []string{"property", "props"},
		Short:   "List or get properties of a space",
		Long: `List the property definitions of a space, or show one property by id or key.

SPACE may be a space id or a space name.`,
		Args: cobra.RangeArgs(1, 2),
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

			if len(args) == 2 {
				property, err := client.Properties().Get(ctx, space.ID, args[1])
				if err != nil {
					return fmt.Errorf("failed to get property: %w", err)
				}

				return renderProperties(cmd, []anytype.Property{*property})
			}

			result, err := client.Properties().List(ctx, space.ID, listOptions(limit, offset))
			if err != nil {
				return fmt.Errorf("failed to list properties: %w", err)
			}

			properties, err := collectPage(ctx, result, limit)
			if err != nil {
				return fmt.Errorf("failed to list properties: %w", err)
			}

			return renderProperties(cmd, properties)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "page size (0 lists every property)")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of properties to skip")

	return cmd
}

func renderProperties(cmd *cobra.Command, properties []anytype.Property) error {
	return render(cmd.OutOrStdout(), properties, func(table *tablewriter.Table) {
		table.Header("ID", "Key", "Name", "Format", "Tags")

		for _, property := range properties {
			_ = table.Append(property.ID, property.Key, property.Name, title(string(property.Format)), strconv.Itoa(len(property.Tags)))
		}
	})
}
