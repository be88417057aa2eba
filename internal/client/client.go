package client

import (
	"context"
	"fmt"
	"time"

	"github.com/fivetwenty-io/anytype-client/internal/auth"
	"github.com/fivetwenty-io/anytype-client/internal/constants"
	"github.com/fivetwenty-io/anytype-client/internal/http"
	"github.com/fivetwenty-io/anytype-client/pkg/anytype"
	"golang.org/x/sync/singleflight"
)

// Client implements the anytype.Client interface.
type Client struct {
	httpClient  *http.Client
	credentials auth.CredentialHolder
	baseURL     string
	logger      anytype.Logger
	limits      anytype.ValidationLimits

	cache      *anytype.MetadataCache
	backend    anytype.Backend
	backendTTL time.Duration
	fills      singleflight.Group
	now        func() time.Time

	// Resource clients
	spaces     *SpacesClient
	properties *PropertiesClient
	types      *TypesClient
}

var _ anytype.Client = (*Client)(nil)

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *anytype.Config, limits anytype.ValidationLimits) []http.Option {
	httpOpts := []http.Option{http.WithLimits(limits)}

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	userAgent := config.UserAgent
	if userAgent == "" && config.AppName != "" {
		userAgent = constants.DefaultUserAgent + " (" + config.AppName + ")"
	}

	if userAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(userAgent))
	}

	switch {
	case config.RateLimitUnlimited:
		httpOpts = append(httpOpts, http.WithRateLimitMaxRetries(0))
	case config.RateLimitMaxRetries > 0:
		httpOpts = append(httpOpts, http.WithRateLimitMaxRetries(config.RateLimitMaxRetries))
	}

	if config.HTTPClient != nil {
		httpOpts = append(httpOpts, http.WithHTTPClient(config.HTTPClient))
	}

	if config.TracerProvider != nil {
		httpOpts = append(httpOpts, http.WithTracerProvider(config.TracerProvider))
	}

	if config.ThrottleRPS > 0 {
		httpOpts = append(httpOpts, http.WithThrottle(config.ThrottleRPS, config.ThrottleBurst))
	}

	return httpOpts
}

// New creates a new anytype API client. When a snapshot backend is
// configured, the space list is warmed from it before New returns.
func New(ctx context.Context, config *anytype.Config, opts ...http.Option) (*Client, error) {
	if config == nil {
		return nil, anytype.ErrConfigRequired
	}

	if config.BaseURL == "" {
		return nil, anytype.ErrBaseURLRequired
	}

	limits := anytype.DefaultValidationLimits()
	if config.Limits != nil {
		limits = *config.Limits
	}

	credentials := auth.NewCredentialStore(config.APIKey)

	httpOpts := append(createHTTPClientOptions(config, limits), opts...)
	httpClient := http.NewClient(config.BaseURL, credentials, httpOpts...)

	backend := config.Backend
	if backend == nil {
		backend = anytype.NewNoOpBackend()
	}

	backendTTL := config.BackendTTL
	if backendTTL <= 0 {
		backendTTL = constants.DefaultSnapshotTTL
	}

	logger := config.Logger
	if logger == nil {
		logger = anytype.NoopLogger{}
	}

	client := &Client{
		httpClient:  httpClient,
		credentials: credentials,
		baseURL:     httpClient.BaseURL(),
		logger:      logger,
		limits:      limits,
		cache:       anytype.NewMetadataCache(),
		backend:     backend,
		backendTTL:  backendTTL,
		now:         time.Now,
	}

	if config.DisableCache {
		client.cache.Disable()
	}

	client.spaces = NewSpacesClient(client)
	client.properties = NewPropertiesClient(client)
	client.types = NewTypesClient(client)

	client.warmSpaces(ctx)

	return client, nil
}

// Spaces implements anytype.Client.Spaces.
func (c *Client) Spaces() anytype.SpacesClient {
	return c.spaces
}

// Properties implements anytype.Client.Properties.
func (c *Client) Properties() anytype.PropertiesClient {
	return c.properties
}

// Types implements anytype.Client.Types.
func (c *Client) Types() anytype.TypesClient {
	return c.types
}

// Cache implements anytype.Client.Cache.
func (c *Client) Cache() *anytype.MetadataCache {
	return c.cache
}

// EnableCache clears and enables the metadata cache, then warms the space
// list from the snapshot backend.
func (c *Client) EnableCache(ctx context.Context) {
	c.cache.Enable()
	c.warmSpaces(ctx)
}

// DisableCache disables the metadata cache and drops the stored snapshots.
func (c *Client) DisableCache(ctx context.Context) {
	c.cache.Disable()

	err := c.backend.Clear(ctx)
	if err != nil {
		c.logger.Warn("clearing snapshot backend", map[string]interface{}{"error": err.Error()})
	}
}

// Snapshot implements anytype.Client.Snapshot.
func (c *Client) Snapshot() anytype.MetricsSnapshot {
	return c.httpClient.Snapshot()
}

// Metrics returns the live counters.
func (c *Client) Metrics() *anytype.Metrics {
	return c.httpClient.Metrics()
}

// SetAPIKey replaces the credential. Cached metadata belongs to the previous
// key and is dropped; backend snapshots are keyed per credential.
func (c *Client) SetAPIKey(key string) {
	c.credentials.Set(key)
	c.cache.Clear()
}

// ClearAPIKey removes the credential and the cached metadata.
func (c *Client) ClearAPIKey() {
	c.credentials.Clear()
	c.cache.Clear()
}

// Ping checks that the service answers. Without a key the request is sent
// unauthenticated and a 401 still counts as an answer.
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.ShortHTTPTimeout)
	defer cancel()

	_, hasKey := c.credentials.Get(ctx)

	req := anytype.Get(spacesPath).WithQuery("limit", "1")
	req.Unauthenticated = !hasKey

	start := c.now()

	_, err := c.httpClient.Do(ctx, req)

	elapsed := c.now().Sub(start)

	if err != nil && !(req.Unauthenticated && anytype.IsUnauthorized(err)) {
		return elapsed, fmt.Errorf("pinging service: %w", err)
	}

	return elapsed, nil
}

// BaseURL returns the service endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}
