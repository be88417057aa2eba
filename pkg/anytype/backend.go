package anytype

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/fivetwenty-io/anytype-client/internal/constants"
)

// Snapshot is a serialized metadata list held by a Backend.
type Snapshot struct {
	Data      []byte    `json:"data"`
	StoredAt  time.Time `json:"stored_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the snapshot is past its expiry. A zero ExpiresAt never expires.
func (s *Snapshot) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Backend is a second-tier store for metadata snapshots. It lets several
// processes share one warm copy of the spaces, properties and types lists.
// Get returns ErrSnapshotMiss when nothing usable is stored.
type Backend interface {
	Get(ctx context.Context, key string) (*Snapshot, error)
	Set(ctx context.Context, key string, snapshot *Snapshot) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// BackendType selects a Backend implementation.
type BackendType string

const (
	// BackendTypeMemory keeps snapshots in process memory.
	BackendTypeMemory BackendType = "memory"

	// BackendTypeRedis stores snapshots in redis.
	BackendTypeRedis BackendType = "redis"

	// BackendTypeNATS stores snapshots in a NATS JetStream KV bucket.
	BackendTypeNATS BackendType = "nats"

	// BackendTypeNone disables the second tier.
	BackendTypeNone BackendType = "none"
)

// BackendConfig configures a snapshot backend.
type BackendConfig struct {
	// Type is the backend type
	Type BackendType

	// TTL bounds how long a snapshot is served. Zero uses DefaultSnapshotTTL.
	TTL time.Duration

	// Redis backend configuration
	Redis *RedisBackendConfig

	// NATS KV backend configuration
	NATS *NATSKVConfig
}

// SnapshotTTL returns the configured TTL or the default.
func (c *BackendConfig) SnapshotTTL() time.Duration {
	if c == nil || c.TTL <= 0 {
		return constants.DefaultSnapshotTTL
	}

	return c.TTL
}

// NewBackendFromConfig creates a snapshot backend from configuration.
// A nil config yields a NoOpBackend.
func NewBackendFromConfig(ctx context.Context, config *BackendConfig) (Backend, error) {
	if config == nil {
		return NewNoOpBackend(), nil
	}

	switch config.Type {
	case BackendTypeMemory:
		return NewMemoryBackend(), nil

	case BackendTypeRedis:
		if config.Redis == nil {
			return nil, ErrRedisConfigRequired
		}

		return NewRedisBackend(config.Redis)

	case BackendTypeNATS:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		return NewNATSKVBackend(ctx, config.NATS)

	case BackendTypeNone, "":
		return NewNoOpBackend(), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBackend, config.Type)
	}
}

// MemoryBackend keeps snapshots in a map.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]*Snapshot
	now     func() time.Time
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		entries: make(map[string]*Snapshot),
		now:     time.Now,
	}
}

// Get returns a stored, unexpired snapshot.
func (b *MemoryBackend) Get(ctx context.Context, key string) (*Snapshot, error) {
	b.mu.RLock()
	snapshot, ok := b.entries[key]
	b.mu.RUnlock()

	if !ok {
		return nil, ErrSnapshotMiss
	}

	if snapshot.Expired(b.now()) {
		return nil, ErrSnapshotExpired
	}

	return snapshot, nil
}

// Set stores snapshot under key.
func (b *MemoryBackend) Set(ctx context.Context, key string, snapshot *Snapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[key] = snapshot

	return nil
}

// Delete removes key.
func (b *MemoryBackend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.entries, key)

	return nil
}

// Clear removes every snapshot.
func (b *MemoryBackend) Clear(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = make(map[string]*Snapshot)

	return nil
}

// NoOpBackend stores nothing.
type NoOpBackend struct{}

// NewNoOpBackend creates a new no-op backend.
func NewNoOpBackend() *NoOpBackend {
	return &NoOpBackend{}
}

// Get always misses.
func (b *NoOpBackend) Get(ctx context.Context, key string) (*Snapshot, error) {
	return nil, ErrSnapshotMiss
}

// Set does nothing.
func (b *NoOpBackend) Set(ctx context.Context, key string, snapshot *Snapshot) error {
	return nil
}

// Delete does nothing.
func (b *NoOpBackend) Delete(ctx context.Context, key string) error {
	return nil
}

// Clear does nothing.
func (b *NoOpBackend) Clear(ctx context.Context) error {
	return nil
}

// BackendChain consults backends in order (L1, L2, ...).
type BackendChain struct {
	backends []Backend
}

// NewBackendChain creates a new backend chain.
func NewBackendChain(backends ...Backend) *BackendChain {
	return &BackendChain{
		backends: backends,
	}
}

// Get returns the first hit and copies it into the earlier backends.
func (c *BackendChain) Get(ctx context.Context, key string) (*Snapshot, error) {
	for i, backend := range c.backends {
		snapshot, err := backend.Get(ctx, key)
		if err == nil {
			for j := range i {
				_ = c.backends[j].Set(ctx, key, snapshot)
			}

			return snapshot, nil
		}
	}

	return nil, ErrSnapshotMiss
}

// Set stores snapshot in every backend.
func (c *BackendChain) Set(ctx context.Context, key string, snapshot *Snapshot) error {
	var lastErr error

	for _, backend := range c.backends {
		err := backend.Set(ctx, key, snapshot)
		if err != nil {
			lastErr = err
		}
	}

	return lastErr
}

// Delete removes key from every backend.
func (c *BackendChain) Delete(ctx context.Context, key string) error {
	var lastErr error

	for _, backend := range c.backends {
		err := backend.Delete(ctx, key)
		if err != nil {
			lastErr = err
		}
	}

	return lastErr
}

// Clear empties every backend.
func (c *BackendChain) Clear(ctx context.Context) error {
	var lastErr error

	for _, backend := range c.backends {
		err := backend.Clear(ctx)
		if err != nil {
			lastErr = err
		}
	}

	return lastErr
}

// Snapshot keys.

// SpacesSnapshotKey is the key of the space list.
func SpacesSnapshotKey() string {
	return "spaces"
}

// PropertiesSnapshotKey is the key of a space's property list.
func PropertiesSnapshotKey(spaceID string) string {
	return "properties." + spaceID
}

// TypesSnapshotKey is the key of a space's type list.
func TypesSnapshotKey(spaceID string) string {
	return "types." + spaceID
}

// SnapshotScope derives the key prefix for snapshots filled with credential:
// a short sha256 fingerprint, or "anonymous" when there is no credential.
// The credential itself never reaches the backend.
func SnapshotScope(credential string) string {
	if credential == "" {
		return "anonymous"
	}

	sum := sha256.Sum256([]byte(credential))

	return hex.EncodeToString(sum[:constants.SnapshotScopeBytes])
}

// ScopedSnapshotKey prefixes key with a scope from SnapshotScope.
func ScopedSnapshotKey(scope, key string) string {
	return scope + "." + key
}
