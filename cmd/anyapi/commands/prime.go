package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// PrimeResult summarizes a cache prime.
type PrimeResult struct {
	Spaces     int    `json:"spaces"     yaml:"spaces"`
	Properties int    `json:"properties" yaml:"properties"`
	Types      int    `json:"types"      yaml:"types"`
	Requests   uint64 `json:"requests"   yaml:"requests"`
	Duration   string `json:"duration"   yaml:"duration"`
}

// NewPrimeCommand creates the prime command.
func NewPrimeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prime",
		Short: "Load every space, property and type into the cache",
		Long: `Fetch the space list and the properties and types of every space.

With a snapshot backend configured (backend.type: redis or nats), the lists
are stored there and later invocations start warm.`,
		Args: cobra.NoArgs,
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

			start := time.Now()

			err = client.Prime(ctx)
			if err != nil {
				return fmt.Errorf("failed to prime cache: %w", err)
			}

			cache := client.Cache()
			result := PrimeResult{
				Spaces:     cache.NumSpaces(),
				Properties: cache.NumProperties(),
				Types:      cache.NumTypes(),
				Requests:   client.Snapshot().TotalRequests,
				Duration:   time.Since(start).Round(time.Millisecond).String(),
			}

			return render(cmd.OutOrStdout(), result, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("Spaces", strconv.Itoa(result.Spaces))
				_ = table.Append("Properties", strconv.Itoa(result.Properties))
				_ = table.Append("Types", strconv.Itoa(result.Types))
				_ = table.Append("Requests", strconv.FormatUint(result.Requests, 10))
				_ = table.Append("Duration", result.Duration)
			})
		},
	}
}
