// Package http executes requests against the anytype API: validation,
// authentication headers, retries, rate-limit waits, error classification
// and request metrics.
package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/fivetwenty-io/anytype-client/internal/auth"
	"github.com/fivetwenty-io/anytype-client/internal/constants"
	"github.com/fivetwenty-io/anytype-client/pkg/anytype"
	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const tracerName = "github.com/fivetwenty-io/anytype-client/internal/http"

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Client is the request executor. It is safe for concurrent use; retry and
// rate-limit counters are local to each call.
type Client struct {
	baseURL     string
	credentials auth.CredentialHolder
	httpClient  *retryablehttp.Client
	logger      anytype.Logger
	debug       bool
	userAgent   string
	limits      anytype.ValidationLimits
	metrics     *anytype.Metrics
	tracer      trace.Tracer
	limiter     *rate.Limiter
	sleep       SleepFunc
	jitter      func() float64

	retryMax            int
	retryWaitMin        time.Duration
	retryWaitMax        time.Duration
	rateLimitMaxRetries int
	rateLimitWaitMax    time.Duration
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger anytype.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response trace logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig sets the transport retry budget and the bounds applied to
// the exponential backoff between attempts.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retryMax = retryMax
		c.retryWaitMin = waitMin
		c.retryWaitMax = waitMax
	}
}

// WithRateLimitMaxRetries sets how many 429 responses one call tolerates.
// Zero means no ceiling; the absolute wait ceiling still applies.
func WithRateLimitMaxRetries(n int) Option {
	return func(c *Client) {
		c.rateLimitMaxRetries = n
	}
}

// WithLimits sets the local request ceilings.
func WithLimits(limits anytype.ValidationLimits) Option {
	return func(c *Client) {
		c.limits = limits
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient.HTTPClient = httpClient
		}
	}
}

// WithMetrics shares an existing counter set.
func WithMetrics(metrics *anytype.Metrics) Option {
	return func(c *Client) {
		if metrics != nil {
			c.metrics = metrics
		}
	}
}

// WithTracerProvider sets the otel provider used for request spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithThrottle paces outbound attempts to rps with the given burst.
func WithThrottle(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil

			return
		}

		c.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
}

// WithSleepFunc replaces the wait used for backoff and rate limits.
func WithSleepFunc(sleep SleepFunc) Option {
	return func(c *Client) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// WithJitterFunc replaces the backoff jitter source. fn must return values in [0, 1).
func WithJitterFunc(fn func() float64) Option {
	return func(c *Client) {
		if fn != nil {
			c.jitter = fn
		}
	}
}

// NewClient creates an executor for baseURL. credentials may be nil, in
// which case only unauthenticated requests succeed.
func NewClient(baseURL string, credentials auth.CredentialHolder, opts ...Option) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 0
	httpClient.CheckRetry = func(context.Context, *http.Response, error) (bool, error) {
		return false, nil
	}
	httpClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	httpClient.Logger = nil
	httpClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout

	if credentials == nil {
		credentials = auth.NewCredentialStore("")
	}

	client := &Client{
		baseURL:             strings.TrimSuffix(baseURL, "/"),
		credentials:         credentials,
		httpClient:          httpClient,
		logger:              anytype.NoopLogger{},
		userAgent:           constants.DefaultUserAgent,
		limits:              anytype.DefaultValidationLimits(),
		metrics:             anytype.NewMetrics(),
		tracer:              otel.Tracer(tracerName),
		sleep:               sleepContext,
		jitter:              defaultJitter,
		retryMax:            constants.MaxRetries,
		retryWaitMin:        constants.MinBackoff,
		retryWaitMax:        constants.RateLimitWaitMax,
		rateLimitMaxRetries: constants.DefaultRateLimitMaxRetries,
		rateLimitWaitMax:    constants.RateLimitWaitMax,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.debug {
		client.httpClient.Logger = &leveledLogger{logger: client.logger}
		client.httpClient.RequestLogHook = client.logRequestHook
		client.httpClient.ResponseLogHook = client.logResponseHook
	}

	return client
}

// BaseURL returns the service endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Metrics returns the live counter set.
func (c *Client) Metrics() *anytype.Metrics {
	return c.metrics
}

// Snapshot returns the current counter values.
func (c *Client) Snapshot() anytype.MetricsSnapshot {
	return c.metrics.Snapshot()
}

// Credentials returns the credential holder.
func (c *Client) Credentials() auth.CredentialHolder {
	return c.credentials
}

// Limits returns the local request ceilings.
func (c *Client) Limits() anytype.ValidationLimits {
	return c.limits
}

// Response is a completed 2xx exchange.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}
