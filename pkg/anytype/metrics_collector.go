package anytype

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsSource provides counter snapshots. *Metrics and Client implement it.
type MetricsSource interface {
	Snapshot() MetricsSnapshot
}

// MetricsCollector exports a MetricsSource as prometheus counters. Values
// are read from a snapshot at scrape time, so registering the collector adds
// no work to the request path.
type MetricsCollector struct {
	source MetricsSource

	totalRequests       *prometheus.Desc
	successfulResponses *prometheus.Desc
	errors              *prometheus.Desc
	retries             *prometheus.Desc
	bytesSent           *prometheus.Desc
	bytesReceived       *prometheus.Desc
	rateLimitErrors     *prometheus.Desc
	rateLimitDelay      *prometheus.Desc
}

// NewMetricsCollector creates a collector for source. Metric names are
// prefixed with namespace, e.g. "anytype_client_requests_total".
func NewMetricsCollector(namespace string, source MetricsSource) *MetricsCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "client", name), help, nil, nil)
	}

	return &MetricsCollector{
		source:              source,
		totalRequests:       desc("requests_total", "Outbound HTTP attempts, including retries."),
		successfulResponses: desc("successful_responses_total", "Decoded 2xx responses."),
		errors:              desc("errors_total", "Requests that ended in a terminal error."),
		retries:             desc("retries_total", "Attempts repeated after a transient failure or rate limit."),
		bytesSent:           desc("sent_bytes_total", "Request body bytes sent."),
		bytesReceived:       desc("received_bytes_total", "Response body bytes received."),
		rateLimitErrors:     desc("rate_limited_total", "Responses with status 429."),
		rateLimitDelay:      desc("rate_limit_delay_seconds_total", "Seconds spent waiting on server rate limits."),
	}
}

// Describe implements prometheus.Collector.
func (c *MetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalRequests
	ch <- c.successfulResponses
	ch <- c.errors
	ch <- c.retries
	ch <- c.bytesSent
	ch <- c.bytesReceived
	ch <- c.rateLimitErrors
	ch <- c.rateLimitDelay
}

// Collect implements prometheus.Collector.
func (c *MetricsCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.Snapshot()

	counter := func(desc *prometheus.Desc, v uint64) {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(v))
	}

	counter(c.totalRequests, s.TotalRequests)
	counter(c.successfulResponses, s.SuccessfulResponses)
	counter(c.errors, s.Errors)
	counter(c.retries, s.Retries)
	counter(c.bytesSent, s.BytesSent)
	counter(c.bytesReceived, s.BytesReceived)
	counter(c.rateLimitErrors, s.RateLimitErrors)
	counter(c.rateLimitDelay, s.RateLimitDelaySecs)
}
