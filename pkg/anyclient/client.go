package anyclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/anytype-client/internal/client"
	"github.com/fivetwenty-io/anytype-client/internal/constants"
	"github.com/fivetwenty-io/anytype-client/pkg/anytype"
)

// New creates a new anytype API client. A zero BaseURL targets the local
// desktop application; a URL without a scheme is assumed to be plain http.
func New(ctx context.Context, config *anytype.Config) (anytype.Client, error) {
	if config == nil {
		return nil, anytype.ErrConfigRequired
	}

	config.BaseURL = normalizeURL(config.BaseURL)

	if config.RateLimitMaxRetries == 0 && !config.RateLimitUnlimited {
		config.RateLimitMaxRetries = constants.DefaultRateLimitMaxRetries
	}

	// Use the internal client implementation
	c, err := client.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NewWithKey creates a client for baseURL authenticated with an API key.
func NewWithKey(ctx context.Context, baseURL, key string) (anytype.Client, error) {
	return New(ctx, &anytype.Config{
		BaseURL: baseURL,
		APIKey:  key,
	})
}

// NewFromEnv creates a client configured from the ANYTYPE_* environment variables.
func NewFromEnv(ctx context.Context) (anytype.Client, error) {
	config, err := anytype.ConfigFromEnv()
	if err != nil {
		return nil, err
	}

	return New(ctx, config)
}

// NewWithBackend creates a client whose metadata cache is backed by the
// snapshot store described by backendConfig.
func NewWithBackend(ctx context.Context, config *anytype.Config, backendConfig *anytype.BackendConfig) (anytype.Client, error) {
	if config == nil {
		return nil, anytype.ErrConfigRequired
	}

	backend, err := anytype.NewBackendFromConfig(ctx, backendConfig)
	if err != nil {
		return nil, fmt.Errorf("creating snapshot backend: %w", err)
	}

	config.Backend = backend
	config.BackendTTL = backendConfig.SnapshotTTL()

	return New(ctx, config)
}

func normalizeURL(baseURL string) string {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return constants.DefaultURL
	}

	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	return baseURL
}
