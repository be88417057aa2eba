package anytype

import (
	"fmt"
	"sync/atomic"

	"github.com/fivetwenty-io/anytype-client/internal/constants"
)

// Metrics holds cumulative request counters for the lifetime of a client.
// All updates are atomic; counters are never reset.
type Metrics struct {
	totalRequests       atomic.Uint64
	successfulResponses atomic.Uint64
	errors              atomic.Uint64
	retries             atomic.Uint64
	bytesSent           atomic.Uint64
	bytesReceived       atomic.Uint64
	rateLimitErrors     atomic.Uint64
	rateLimitDelaySecs  atomic.Uint64
}

// NewMetrics creates a zeroed counter set.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordAttempt counts one outbound attempt carrying bodyLen bytes.
func (m *Metrics) RecordAttempt(bodyLen int) {
	m.totalRequests.Add(1)
	m.bytesSent.Add(uint64(bodyLen))
}

// RecordSuccess counts a decoded 2xx response of bodyLen bytes.
func (m *Metrics) RecordSuccess(bodyLen int) {
	m.successfulResponses.Add(1)
	m.bytesReceived.Add(uint64(bodyLen))
}

// RecordError counts a terminal failure.
func (m *Metrics) RecordError() {
	m.errors.Add(1)
}

// RecordRetry counts a retried attempt.
func (m *Metrics) RecordRetry() {
	m.retries.Add(1)
}

// RecordRateLimited counts a 429 response.
func (m *Metrics) RecordRateLimited() {
	m.rateLimitErrors.Add(1)
}

// RecordRateLimitDelay adds a server-requested wait.
func (m *Metrics) RecordRateLimitDelay(secs uint64) {
	m.rateLimitDelaySecs.Add(secs)
}

// Snapshot reads every counter without blocking writers. Counters are read
// one at a time, so a snapshot taken during traffic is not a single instant.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		TotalRequests:       m.totalRequests.Load(),
		SuccessfulResponses: m.successfulResponses.Load(),
		Errors:              m.errors.Load(),
		Retries:             m.retries.Load(),
		BytesSent:           m.bytesSent.Load(),
		BytesReceived:       m.bytesReceived.Load(),
		RateLimitErrors:     m.rateLimitErrors.Load(),
		RateLimitDelaySecs:  m.rateLimitDelaySecs.Load(),
	}
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	TotalRequests       uint64 `json:"total_requests"        yaml:"total_requests"`
	SuccessfulResponses uint64 `json:"successful_responses"  yaml:"successful_responses"`
	Errors              uint64 `json:"errors"                yaml:"errors"`
	Retries             uint64 `json:"retries"               yaml:"retries"`
	BytesSent           uint64 `json:"bytes_sent"            yaml:"bytes_sent"`
	BytesReceived       uint64 `json:"bytes_received"        yaml:"bytes_received"`
	RateLimitErrors     uint64 `json:"rate_limit_errors"     yaml:"rate_limit_errors"`
	RateLimitDelaySecs  uint64 `json:"rate_limit_delay_secs" yaml:"rate_limit_delay_secs"`
}

// String renders a single-line summary.
func (s MetricsSnapshot) String() string {
	return fmt.Sprintf("requests=%d success=%d errors=%d retries=%d rate_limit=%d/%ds sent=%s recv=%s",
		s.TotalRequests,
		s.SuccessfulResponses,
		s.Errors,
		s.Retries,
		s.RateLimitErrors,
		s.RateLimitDelaySecs,
		FormatBytes(s.BytesSent),
		FormatBytes(s.BytesReceived),
	)
}

// FormatBytes renders n as B, KB or MB.
func FormatBytes(n uint64) string {
	switch {
	case n < constants.KiB:
		return fmt.Sprintf("%dB", n)
	case n < constants.MiB:
		return fmt.Sprintf("%.1fKB", float64(n)/constants.KiB)
	default:
		return fmt.Sprintf("%.1fMB", float64(n)/constants.MiB)
	}
}
