package anytype

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fivetwenty-io/anytype-client/internal/constants"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// RedisBackendConfig configures RedisBackend.
type RedisBackendConfig struct {
	// Addr is host:port of the redis server. Ignored when Client is set.
	Addr     string
	Password string
	DB       int

	// Client is an existing client to use instead of dialing Addr.
	Client redis.UniversalClient

	// Prefix namespaces every key. Empty uses DefaultSnapshotPrefix.
	Prefix string
}

// RedisBackend stores snapshots as JSON strings with a redis TTL.
type RedisBackend struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisBackend creates a redis-backed snapshot store.
func NewRedisBackend(config *RedisBackendConfig) (*RedisBackend, error) {
	if config == nil {
		return nil, ErrRedisConfigRequired
	}

	client := config.Client
	if client == nil {
		if config.Addr == "" {
			return nil, ErrRedisConfigRequired
		}

		client = redis.NewClient(&redis.Options{
			Addr:     config.Addr,
			Password: config.Password,
			DB:       config.DB,
		})
	}

	prefix := config.Prefix
	if prefix == "" {
		prefix = constants.DefaultSnapshotPrefix
	}

	return &RedisBackend{client: client, prefix: prefix}, nil
}

// Get returns the snapshot stored under key.
func (b *RedisBackend) Get(ctx context.Context, key string) (*Snapshot, error) {
	raw, err := b.client.Get(ctx, b.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSnapshotMiss
	}

	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	var snapshot Snapshot

	err = json.Unmarshal(raw, &snapshot)
	if err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", key, err)
	}

	if snapshot.Expired(time.Now()) {
		return nil, ErrSnapshotExpired
	}

	return &snapshot, nil
}

// Set stores snapshot under key. The redis TTL follows ExpiresAt.
func (b *RedisBackend) Set(ctx context.Context, key string, snapshot *Snapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encoding snapshot %s: %w", key, err)
	}

	var ttl time.Duration
	if !snapshot.ExpiresAt.IsZero() {
		ttl = time.Until(snapshot.ExpiresAt)
		if ttl <= 0 {
			return nil
		}
	}

	err = b.client.Set(ctx, b.prefix+key, raw, ttl).Err()
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	return nil
}

// Delete removes key.
func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	err := b.client.Del(ctx, b.prefix+key).Err()
	if err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}

	return nil
}

// Clear removes every key under the prefix.
func (b *RedisBackend) Clear(ctx context.Context) error {
	var cursor uint64

	for {
		keys, next, err := b.client.Scan(ctx, cursor, b.prefix+"*", constants.RedisScanCount).Result()
		if err != nil {
			return fmt.Errorf("redis scan: %w", err)
		}

		if len(keys) > 0 {
			err = b.client.Del(ctx, keys...).Err()
			if err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
		}

		if next == 0 {
			return nil
		}

		cursor = next
	}
}

// Close closes the underlying client.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
