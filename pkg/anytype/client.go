package anytype

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/anytype-client/internal/constants"
	"go.opentelemetry.io/otel/trace"
)

// SpacesClient reads spaces.
type SpacesClient interface {
	List(ctx context.Context, opts *ListOptions) (*PagedResult[Space], error)
	Get(ctx context.Context, spaceID string) (*Space, error)
	LookupByName(ctx context.Context, name string) (*Space, error)
}

// PropertiesClient reads the property definitions of a space.
type PropertiesClient interface {
	List(ctx context.Context, spaceID string, opts *ListOptions) (*PagedResult[Property], error)
	Get(ctx context.Context, spaceID, idOrKey string) (*Property, error)
	Lookup(ctx context.Context, spaceID, text string) ([]Property, error)
	LookupByKey(ctx context.Context, spaceID, key string) (*Property, error)
}

// TypesClient reads the object types of a space.
type TypesClient interface {
	List(ctx context.Context, spaceID string, opts *ListOptions) (*PagedResult[Type], error)
	Get(ctx context.Context, spaceID, idOrKey string) (*Type, error)
	Lookup(ctx context.Context, spaceID, text string) ([]Type, error)
	LookupByKey(ctx context.Context, spaceID, key string) (*Type, error)
}

// ResourceClients provides access to the metadata clients.
type ResourceClients interface {
	Spaces() SpacesClient
	Properties() PropertiesClient
	Types() TypesClient
}

// CacheControl manages the metadata cache.
type CacheControl interface {
	Cache() *MetadataCache
	EnableCache(ctx context.Context)
	DisableCache(ctx context.Context)
	Prime(ctx context.Context) error
}

// Client is the anytype API client.
type Client interface {
	ResourceClients
	CacheControl

	// Ping checks that the service answers and returns the round-trip time.
	Ping(ctx context.Context) (time.Duration, error)

	// Snapshot returns the cumulative request counters.
	Snapshot() MetricsSnapshot

	// SetAPIKey replaces the credential used for authenticated calls.
	SetAPIKey(key string)

	// ClearAPIKey removes the credential; later authenticated calls fail with an Auth error.
	ClearAPIKey()
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building an anytype Client.
//
// # Defaults
//
// anyclient.New fills zero values: BaseURL falls back to DefaultURL, Limits
// to DefaultValidationLimits and RateLimitMaxRetries to 5 unless
// RateLimitUnlimited is set. ConfigFromEnv reads the ANYTYPE_* variables first.
//
// # Cache
//
// The metadata cache is on unless DisableCache is set. Backend adds a shared
// second tier (memory, redis or NATS KV) consulted on a cache miss before the
// network.
type Config struct {
	// BaseURL: service endpoint (e.g., "http://127.0.0.1:31009").
	BaseURL string
	// APIKey: bearer credential. May be empty and set later with SetAPIKey.
	APIKey string
	// AppName: reported in the User-Agent.
	AppName string
	// UserAgent: overrides the default User-Agent header.
	UserAgent string

	// Limits: local request ceilings. Zero value uses DefaultValidationLimits.
	Limits *ValidationLimits
	// RateLimitMaxRetries: ceiling on 429 retries within one call.
	RateLimitMaxRetries int
	// RateLimitUnlimited: when true, 429 responses are retried without a count ceiling.
	RateLimitUnlimited bool

	// DisableCache: start with the metadata cache disabled.
	DisableCache bool
	// Backend: optional second-tier snapshot store.
	Backend Backend
	// BackendTTL: lifetime of snapshots written to Backend.
	BackendTTL time.Duration

	// Debug: enables request/response trace logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger.
	Logger Logger
	// HTTPClient: optional transport; its Timeout bounds each attempt.
	HTTPClient *http.Client
	// TracerProvider: optional otel provider for per-request spans.
	TracerProvider trace.TracerProvider
	// ThrottleRPS and ThrottleBurst pace outbound attempts when ThrottleRPS > 0.
	ThrottleRPS   float64
	ThrottleBurst int
}

// ConfigFromEnv builds a Config from ANYTYPE_URL, ANYTYPE_KEY,
// ANYTYPE_RATE_LIMIT_MAX_RETRIES and ANYTYPE_DISABLE_CACHE.
func ConfigFromEnv() (*Config, error) {
	config := &Config{
		BaseURL: os.Getenv(constants.EnvURL),
		APIKey:  os.Getenv(constants.EnvKey),
	}

	if raw := strings.TrimSpace(os.Getenv(constants.EnvRateLimitMaxRetries)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: %s=%q", constants.ErrInvalidRateLimit, constants.EnvRateLimitMaxRetries, raw)
		}

		config.RateLimitMaxRetries = n
		config.RateLimitUnlimited = n == 0
	}

	switch strings.ToLower(os.Getenv(constants.EnvDisableCache)) {
	case "1", "true", "yes":
		config.DisableCache = true
	}

	return config, nil
}
