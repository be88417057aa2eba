package commands

import (
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// PingResult is the output of the ping command.
type PingResult struct {
	URL       string `json:"url"        yaml:"url"`
	Reachable bool   `json:"reachable"  yaml:"reachable"`
	LatencyMS int64  `json:"latency_ms" yaml:"latency_ms"`
}

// NewPingCommand creates the ping command. It works without an API key.
func NewPingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the API answers",
		Long:  "Send a minimal request and report whether the API is reachable and how long it took",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			config, err := buildConfig()
			if err != nil {
				return err
			}

			client, err := connect(ctx, config)
			if err != nil {
				return err
			}

			latency, err := client.Ping(ctx)
			if err != nil {
				return fmt.Errorf("failed to reach %s: %w", config.BaseURL, err)
			}

			result := PingResult{
				URL:       config.BaseURL,
				Reachable: true,
				LatencyMS: latency.Milliseconds(),
			}

			return render(cmd.OutOrStdout(), result, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("URL", result.URL)
				_ = table.Append("Reachable", "yes")
				_ = table.Append("Latency", latency.Round(time.Millisecond).String())
			})
		},
	}
}
