package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fivetwenty-io/anytype-client/internal/constants"
	"github.com/fivetwenty-io/anytype-client/pkg/anyclient"
	"github.com/fivetwenty-io/anytype-client/pkg/anytype"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Viper keys. Flags, ANYAPI_* variables and the config file all land here.
const (
	keyURL              = "url"
	keyAPIKey           = "key"
	keyOutput           = "output"
	keyDebug            = "debug"
	keyNoCache          = "no_cache"
	keyRateLimitRetries = "rate_limit_retries"
	keyBackendType      = "backend.type"
	keyBackendTTL       = "backend.ttl"
	keyRedisAddr        = "backend.redis.addr"
	keyRedisPassword    = "backend.redis.password"
	keyRedisDB          = "backend.redis.db"
	keyNATSURL          = "backend.nats.url"
	keyNATSBucket       = "backend.nats.bucket"
)

// newLogger returns a stderr logrus logger; debug lowers the level so the
// HTTP trace hooks are visible.
func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	if viper.GetBool(keyDebug) {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}

	return logger
}

// buildConfig layers viper settings over the ANYTYPE_* environment.
func buildConfig() (*anytype.Config, error) {
	config, err := anytype.ConfigFromEnv()
	if err != nil {
		return nil, err
	}

	if url := viper.GetString(keyURL); url != "" {
		config.BaseURL = url
	}

	if key := viper.GetString(keyAPIKey); key != "" {
		config.APIKey = key
	}

	if viper.GetBool(keyNoCache) {
		config.DisableCache = true
	}

	if retries := viper.GetInt(keyRateLimitRetries); retries > 0 {
		config.RateLimitMaxRetries = retries
		config.RateLimitUnlimited = false
	}

	config.AppName = constants.DefaultAppName
	config.Debug = viper.GetBool(keyDebug)
	config.Logger = anytype.NewLogrusLogger(newLogger()).WithField("app", constants.DefaultAppName)

	return config, nil
}

// buildBackendConfig returns nil when no snapshot backend is configured.
func buildBackendConfig() *anytype.BackendConfig {
	backendType := anytype.BackendType(strings.ToLower(viper.GetString(keyBackendType)))
	if backendType == "" || backendType == anytype.BackendTypeNone {
		return nil
	}

	config := &anytype.BackendConfig{
		Type: backendType,
		TTL:  viper.GetDuration(keyBackendTTL),
	}

	if addr := viper.GetString(keyRedisAddr); addr != "" {
		config.Redis = &anytype.RedisBackendConfig{
			Addr:     addr,
			Password: viper.GetString(keyRedisPassword),
			DB:       viper.GetInt(keyRedisDB),
		}
	}

	if url := viper.GetString(keyNATSURL); url != "" {
		config.NATS = &anytype.NATSKVConfig{
			URL:    url,
			Bucket: viper.GetString(keyNATSBucket),
			TTL:    config.SnapshotTTL(),
		}
	}

	return config
}

// newClient creates a client from the CLI configuration.
func newClient(ctx context.Context) (anytype.Client, error) {
	config, err := buildConfig()
	if err != nil {
		return nil, err
	}

	return connect(ctx, config)
}

// connect creates a client for config. anyclient fills config's defaults in
// place, so config.BaseURL is the effective endpoint afterwards.
func connect(ctx context.Context, config *anytype.Config) (anytype.Client, error) {
	var (
		client anytype.Client
		err    error
	)

	backendConfig := buildBackendConfig()
	if backendConfig == nil {
		client, err = anyclient.New(ctx, config)
	} else {
		client, err = anyclient.NewWithBackend(ctx, config, backendConfig)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// requireKey fails early with a hint when no key is configured anywhere.
func requireKey() error {
	if viper.GetString(keyAPIKey) == "" && os.Getenv(constants.EnvKey) == "" {
		return constants.ErrNoAPIKey
	}

	return nil
}
