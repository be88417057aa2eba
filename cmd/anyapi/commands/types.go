package commands

import (
	"fmt"
	"strconv"

	"github.com/fivetwenty-io/anytype-client/pkg/anytype"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewTypesCommand creates the types command.
func NewTypesCommand() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:     "types SPACE [TYPE_ID_OR_KEY]",
		Aliases: []string{"type"},
		Short:   "List or get object types of a space",
		Long: `List the object types of a space, or show one type by id or key.

Archived types are hidden when the list is served from the cache.
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
				typ, err := client.Types().Get(ctx, space.ID, args[1])
				if err != nil {
					return fmt.Errorf("failed to get type: %w", err)
				}

				return renderTypes(cmd, []anytype.Type{*typ})
			}

			result, err := client.Types().List(ctx, space.ID, listOptions(limit, offset))
			if err != nil {
				return fmt.Errorf("failed to list types: %w", err)
			}

			types, err := collectPage(ctx, result, limit)
			if err != nil {
				return fmt.Errorf("failed to list types: %w", err)
			}

			return renderTypes(cmd, types)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "page size (0 lists every type)")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of types to skip")

	return cmd
}

func renderTypes(cmd *cobra.Command, types []anytype.Type) error {
	return render(cmd.OutOrStdout(), types, func(table *tablewriter.Table) {
		table.Header("ID", "Key", "Name", "Plural", "Layout", "Properties")

		for _, typ := range types {
			_ = table.Append(typ.ID, typ.Key, typ.DisplayName(), orNA(typ.PluralName), title(typ.Layout),
				strconv.Itoa(len(typ.Properties)))
		}
	})
}
