package commands

import (
	"fmt"

	"github.com/fivetwenty-io/anytype-client/internal/constants"
	"github.com/fivetwenty-io/anytype-client/pkg/anytype"
	"github.com/spf13/cobra"
)

// NewLookupCommand creates the lookup command.
func NewLookupCommand() *cobra.Command {
	var byKey bool

	cmd := &cobra.Command{
		Use:   "lookup property|type SPACE TEXT",
		Short: "Find properties or types by id, key or name",
		Long: `Find the properties or types of a space whose id, key or name matches TEXT,
ignoring case. With --exact-key only an exact key match is returned.`,
		Args:      cobra.ExactArgs(3),
		ValidArgs: []string{"property", "type"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, spaceArg, text := args[0], args[1], args[2]

			if kind != "property" && kind != "type" {
				return fmt.Errorf("%w: %s", constants.ErrUnknownLookupKind, kind)
			}

			err := requireKey()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			client, err := newClient(ctx)
			if err != nil {
				return err
			}

			space, err := resolveSpace(ctx, client, spaceArg)
			if err != nil {
				return err
			}

			if kind == "property" {
				if byKey {
					property, err := client.Properties().LookupByKey(ctx, space.ID, text)
					if err != nil {
						return fmt.Errorf("failed to look up property: %w", err)
					}

					return renderProperties(cmd, []anytype.Property{*property})
				}

				properties, err := client.Properties().Lookup(ctx, space.ID, text)
				if err != nil {
					return fmt.Errorf("failed to look up property: %w", err)
				}

				return renderProperties(cmd, properties)
			}

			if byKey {
				typ, err := client.Types().LookupByKey(ctx, space.ID, text)
				if err != nil {
					return fmt.Errorf("failed to look up type: %w", err)
				}

				return renderTypes(cmd, []anytype.Type{*typ})
			}

			types, err := client.Types().Lookup(ctx, space.ID, text)
			if err != nil {
				return fmt.Errorf("failed to look up type: %w", err)
			}

			return renderTypes(cmd, types)
		},
	}

	cmd.Flags().BoolVar(&byKey, "exact-key", false, "match the key exactly instead of id, key or name")

	return cmd
}
