package http

import (
	"context"
	"errors"
	"io"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fivetwenty-io/anytype-client/internal/constants"
	"github.com/fivetwenty-io/anytype-client/pkg/anytype"
)

// parseRetryAfter reads the server-requested wait from a 429 response. It
// returns the raw header value alongside the parsed duration.
func parseRetryAfter(header http.Header) (string, time.Duration, error) {
	var seen []string

	for _, name := range []string{constants.RateLimitResetHeader, constants.RateLimitDurationHeader} {
		raw := strings.TrimSpace(header.Get(name))
		if raw == "" {
			continue
		}

		secs, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			seen = append(seen, name+"="+raw)

			continue
		}

		return raw, time.Duration(secs) * time.Second, nil
	}

	msg := "missing " + constants.RateLimitResetHeader + " and " + constants.RateLimitDurationHeader + " headers"
	if len(seen) > 0 {
		msg = "unparseable wait header " + strings.Join(seen, ", ")
	}

	return "", 0, &anytype.Error{
		Kind:       anytype.KindRateLimitExceeded,
		StatusCode: http.StatusTooManyRequests,
		Message:    msg,
	}
}

// isRetryableStatus reports whether status is worth another attempt.
func isRetryableStatus(status int) bool {
	return status == http.StatusRequestTimeout || (status >= 500 && status <= 599)
}

// isTransient reports whether a transport error may clear on its own. Once
// the caller's context is done nothing is transient.
func isTransient(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}

	if errors.Is(err, context.Canceled) {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && (opErr.Op == "dial" || opErr.Op == "read") {
		return true
	}

	return false
}

// backoffDelay returns ExponentialBackoffBase^attempt seconds scaled by a
// jitter factor in [JitterMin, JitterMin+JitterSpan), rounded to whole
// seconds and clamped to the configured bounds.
func (c *Client) backoffDelay(attempt int) time.Duration {
	factor := constants.JitterMin + c.jitter()*constants.JitterSpan
	secs := math.Round(math.Pow(constants.ExponentialBackoffBase, float64(attempt)) * factor)

	delay := time.Duration(secs) * time.Second
	if delay < c.retryWaitMin {
		delay = c.retryWaitMin
	}

	if c.retryWaitMax > 0 && delay > c.retryWaitMax {
		delay = c.retryWaitMax
	}

	return delay
}

// backoff records a retry and waits before the next attempt.
func (c *Client) backoff(ctx context.Context, req anytype.Request, attempt int, reason string) error {
	delay := c.backoffDelay(attempt)

	c.logger.Warn("retrying request", c.fields(req, map[string]interface{}{
		"attempt": attempt + 1,
		"max":     c.retryMax,
		"delay":   delay.String(),
		"reason":  reason,
	}))

	c.metrics.RecordRetry()

	return c.sleep(ctx, delay)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func defaultJitter() float64 {
	return rand.Float64() //nolint:gosec // jitter only
}
