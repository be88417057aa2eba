package anytype

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fivetwenty-io/anytype-client/internal/constants"
	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSKVConfig configures NATSKVBackend.
type NATSKVConfig struct {
	// URL of the NATS server. Ignored when Conn is set.
	URL string

	// Conn is an existing connection to use instead of dialing URL.
	Conn *nats.Conn

	// Bucket is the KV bucket name. Empty uses DefaultNATSBucket.
	Bucket string

	// TTL is applied to the bucket when it is created.
	TTL time.Duration
}

// KeyValueStore is the subset of jetstream.KeyValue used by NATSKVBackend.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
	Put(ctx context.Context, key string, value []byte) (uint64, error)
	Delete(ctx context.Context, key string, opts ...jetstream.KVDeleteOpt) error
	Keys(ctx context.Context, opts ...jetstream.WatchOpt) ([]string, error)
}

// NATSKVBackend stores snapshots in a JetStream key-value bucket.
type NATSKVBackend struct {
	kv   KeyValueStore
	conn *nats.Conn
}

// NewNATSKVBackend connects to NATS and opens, or creates, the bucket.
func NewNATSKVBackend(ctx context.Context, config *NATSKVConfig) (*NATSKVBackend, error) {
	if config == nil {
		return nil, ErrNATSConfigRequired
	}

	conn := config.Conn
	owned := false

	if conn == nil {
		if config.URL == "" {
			return nil, ErrNATSConfigRequired
		}

		var err error

		conn, err = nats.Connect(config.URL)
		if err != nil {
			return nil, fmt.Errorf("connecting to NATS: %w", err)
		}

		owned = true
	}

	js, err := jetstream.New(conn)
	if err != nil {
		return nil, fmt.Errorf("creating JetStream context: %w", err)
	}

	bucket := config.Bucket
	if bucket == "" {
		bucket = constants.DefaultNATSBucket
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "anytype metadata snapshots",
		TTL:         config.TTL,
	})
	if err != nil {
		return nil, fmt.Errorf("opening KV bucket %s: %w", bucket, err)
	}

	backend := NewNATSKVBackendFromStore(kv)
	if owned {
		backend.conn = conn
	}

	return backend, nil
}

// NewNATSKVBackendFromStore wraps an already opened bucket.
func NewNATSKVBackendFromStore(kv KeyValueStore) *NATSKVBackend {
	return &NATSKVBackend{kv: kv}
}

// Get returns the snapshot stored under key.
func (b *NATSKVBackend) Get(ctx context.Context, key string) (*Snapshot, error) {
	entry, err := b.kv.Get(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted) {
		return nil, ErrSnapshotMiss
	}

	if err != nil {
		return nil, fmt.Errorf("nats kv get %s: %w", key, err)
	}

	var snapshot Snapshot

	err = json.Unmarshal(entry.Value(), &snapshot)
	if err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", key, err)
	}

	if snapshot.Expired(time.Now()) {
		return nil, ErrSnapshotExpired
	}

	return &snapshot, nil
}

// Set stores snapshot under key.
func (b *NATSKVBackend) Set(ctx context.Context, key string, snapshot *Snapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encoding snapshot %s: %w", key, err)
	}

	_, err = b.kv.Put(ctx, key, raw)
	if err != nil {
		return fmt.Errorf("nats kv put %s: %w", key, err)
	}

	return nil
}

// Delete removes key.
func (b *NATSKVBackend) Delete(ctx context.Context, key string) error {
	err := b.kv.Delete(ctx, key)
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("nats kv delete %s: %w", key, err)
	}

	return nil
}

// Clear deletes every key in the bucket.
func (b *NATSKVBackend) Clear(ctx context.Context) error {
	keys, err := b.kv.Keys(ctx)
	if errors.Is(err, jetstream.ErrNoKeysFound) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("nats kv keys: %w", err)
	}

	for _, key := range keys {
		err = b.Delete(ctx, key)
		if err != nil {
			return err
		}
	}

	return nil
}

// Close drains the connection if the backend dialed it.
func (b *NATSKVBackend) Close() error {
	if b.conn == nil {
		return nil
	}

	return b.conn.Drain()
}
