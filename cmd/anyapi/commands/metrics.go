package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/fivetwenty-io/anytype-client/internal/constants"
	"github.com/fivetwenty-io/anytype-client/pkg/anytype"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const (
	metricsPath       = "/metrics"
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// NewMetricsCommand creates the metrics command.
func NewMetricsCommand() *cobra.Command {
	var (
		skipPrime bool
		serve     string
	)

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show client request metrics",
		Long: `Prime the cache and print the client's request counters.

With --serve ADDR the counters are exported in prometheus format on
ADDR/metrics until interrupted.`,
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

			if !skipPrime {
				err = client.Prime(ctx)
				if err != nil {
					return fmt.Errorf("failed to prime cache: %w", err)
				}
			}

			if serve != "" {
				return serveMetrics(ctx, cmd, serve, client)
			}

			return renderMetrics(cmd, client.Snapshot())
		},
	}

	cmd.Flags().BoolVar(&skipPrime, "no-prime", false, "report counters without priming first")
	cmd.Flags().StringVar(&serve, "serve", "", "serve prometheus metrics on this address, e.g. :9090")

	return cmd
}

func renderMetrics(cmd *cobra.Command, snapshot anytype.MetricsSnapshot) error {
	return render(cmd.OutOrStdout(), snapshot, func(table *tablewriter.Table) {
		table.Header("Metric", "Value")
		_ = table.Append("Requests", strconv.FormatUint(snapshot.TotalRequests, 10))
		_ = table.Append("Successful", strconv.FormatUint(snapshot.SuccessfulResponses, 10))
		_ = table.Append("Errors", strconv.FormatUint(snapshot.Errors, 10))
		_ = table.Append("Retries", strconv.FormatUint(snapshot.Retries, 10))
		_ = table.Append("Rate limited", strconv.FormatUint(snapshot.RateLimitErrors, 10))
		_ = table.Append("Rate limit delay", strconv.FormatUint(snapshot.RateLimitDelaySecs, 10)+"s")
		_ = table.Append("Sent", anytype.FormatBytes(snapshot.BytesSent))
		_ = table.Append("Received", anytype.FormatBytes(snapshot.BytesReceived))
	})
}

// newMetricsHandler exposes source on a private registry.
func newMetricsHandler(source anytype.MetricsSource) http.Handler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(anytype.NewMetricsCollector(constants.MetricsNamespace, source))

	mux := http.NewServeMux()
	mux.Handle(metricsPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return mux
}

func serveMetrics(ctx context.Context, cmd *cobra.Command, addr string, source anytype.MetricsSource) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              addr,
		Handler:           newMetricsHandler(source),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- server.ListenAndServe()
	}()

	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Serving metrics on %s%s\n", addr, metricsPath)

	select {
	case err := <-errCh:
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := server.Shutdown(shutdownCtx)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("stopping metrics server: %w", err)
	}

	return nil
}
