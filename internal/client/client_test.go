package client_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/fivetwenty-io/anytype-client/internal/client"
	"github.com/fivetwenty-io/anytype-client/pkg/anytype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), nil)
		require.ErrorIs(t, err, anytype.ErrConfigRequired)
	})

	t.Run("requires base URL", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), &anytype.Config{})
		require.ErrorIs(t, err, anytype.ErrBaseURLRequired)
	})

	t.Run("disabled cache", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), &anytype.Config{BaseURL: "http://127.0.0.1:1", DisableCache: true})
		require.NoError(t, err)
		assert.False(t, client.Cache().IsEnabled())
		assert.Equal(t, "http://127.0.0.1:1", client.BaseURL())
	})
}

func TestClient_Ping(t *testing.T) {
	t.Parallel()

	t.Run("with key", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		client := newClient(t, api)

		_, err := client.Ping(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, api.Hits("/v1/spaces"))
	})

	t.Run("without key a 401 is an answer", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		client := newClient(t, api, func(config *anytype.Config) { config.APIKey = "" })

		_, err := client.Ping(context.Background())
		require.NoError(t, err)
	})

	t.Run("wrong key fails", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		client := newClient(t, api, func(config *anytype.Config) { config.APIKey = "wrong" })

		_, err := client.Ping(context.Background())
		require.Error(t, err)
		assert.True(t, anytype.IsUnauthorized(err))
	})
}

func TestClient_APIKey(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	client := newClient(t, api)

	_, err := client.Spaces().List(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, client.Cache().HasSpaces())

	client.SetAPIKey(testKey)
	assert.False(t, client.Cache().HasSpaces())

	client.ClearAPIKey()

	_, err = client.Spaces().List(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, anytype.IsAuth(err))
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestSpacesClient(t *testing.T) {
	t.Parallel()

	t.Run("list is served from cache", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		client := newClient(t, api)

		for range 2 {
			result, err := client.Spaces().List(context.Background(), nil)
			require.NoError(t, err)

			spaces, err := result.CollectAll(context.Background())
			require.NoError(t, err)
			require.Len(t, spaces, 2)
			assert.Equal(t, "Work", spaces[0].Name)
		}

		assert.Equal(t, 1, api.Hits("/v1/spaces"))
	})

	t.Run("list with options bypasses cache", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		client := newClient(t, api)

		result, err := client.Spaces().List(context.Background(), &anytype.ListOptions{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, result.Items(), 1)
		assert.True(t, result.HasMore())

		spaces, err := result.CollectAll(context.Background())
		require.NoError(t, err)
		assert.Len(t, spaces, 2)
		assert.Equal(t, 2, api.Hits("/v1/spaces"))
		assert.False(t, client.Cache().HasSpaces())
	})

	t.Run("get resolves from the cached list", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		client := newClient(t, api)

		space, err := client.Spaces().Get(context.Background(), "s2")
		require.NoError(t, err)
		assert.Equal(t, "Personal", space.Name)
		assert.Equal(t, 0, api.Hits("/v1/spaces/s2"))

		_, err = client.Spaces().Get(context.Background(), "missing")
		require.Error(t, err)
		assert.True(t, anytype.IsNotFound(err))
		assert.Equal(t, 1, api.Hits("/v1/spaces/missing"))
	})

	t.Run("get without cache", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		client := newClient(t, api, func(config *anytype.Config) { config.DisableCache = true })

		space, err := client.Spaces().Get(context.Background(), "s1")
		require.NoError(t, err)
		assert.Equal(t, "Work", space.Name)
		assert.Equal(t, 1, api.Hits("/v1/spaces/s1"))
		assert.Equal(t, 0, api.Hits("/v1/spaces"))
	})

	t.Run("get rejects bad ids locally", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		client := newClient(t, api)

		_, err := client.Spaces().Get(context.Background(), "a/b")
		require.Error(t, err)
		assert.True(t, anytype.IsValidation(err))
		assert.Equal(t, 0, api.TotalHits())
	})

	t.Run("lookup by name ignores case", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		client := newClient(t, api)

		space, err := client.Spaces().LookupByName(context.Background(), " personal ")
		require.NoError(t, err)
		assert.Equal(t, "s2", space.ID)

		_, err = client.Spaces().LookupByName(context.Background(), "Archive")
		require.Error(t, err)
		assert.True(t, anytype.IsNotFound(err))
		require.ErrorIs(t, err, anytype.ErrSpaceNotFound)
		assert.Equal(t, 1, api.Hits("/v1/spaces"))
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestPropertiesClient(t *testing.T) {
	t.Parallel()

	t.Run("get by id or key", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		client := newClient(t, api)

		property, err := client.Properties().Get(context.Background(), "s1", "p1")
		require.NoError(t, err)
		assert.Equal(t, "status", property.Key)

		property, err = client.Properties().Get(context.Background(), "s1", "STATUS")
		require.NoError(t, err)
		assert.Equal(t, "p1", property.ID)

		assert.Equal(t, 1, api.Hits("/v1/spaces/s1/properties"))
		assert.Equal(t, 0, api.Hits("/v1/spaces/s1/properties/p1"))
	})

	t.Run("get outside the cached set goes to the network", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		client := newClient(t, api)

		_, err := client.Properties().List(context.Background(), "s1", nil)
		require.NoError(t, err)

		api.mu.Lock()
		api.properties["s1"] = append(api.properties["s1"], anytype.Property{ID: "p9", Key: "estimate", Name: "Estimate"})
		api.mu.Unlock()

		property, err := client.Properties().Get(context.Background(), "s1", "p9")
		require.NoError(t, err)
		assert.Equal(t, "Estimate", property.Name)

		cached, ok := client.Cache().LookupPropertyByKey("s1", "ESTIMATE")
		require.True(t, ok)
		assert.Equal(t, "p9", cached.ID)
	})

	t.Run("lookup matches id, key or name", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		client := newClient(t, api)

		matches, err := client.Properties().Lookup(context.Background(), "s1", "due date")
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "p2", matches[0].ID)

		matches, err = client.Properties().Lookup(context.Background(), "s1", "nothing")
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("lookup by key", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		client := newClient(t, api)

		property, err := client.Properties().LookupByKey(context.Background(), "s2", "Status")
		require.NoError(t, err)
		assert.Equal(t, "p3", property.ID)

		_, err = client.Properties().LookupByKey(context.Background(), "s2", "due_date")
		require.ErrorIs(t, err, anytype.ErrPropertyNotFound)
	})

	t.Run("lookup without cache", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		client := newClient(t, api, func(config *anytype.Config) { config.DisableCache = true })

		for range 2 {
			property, err := client.Properties().LookupByKey(context.Background(), "s1", "status")
			require.NoError(t, err)
			assert.Equal(t, "p1", property.ID)
		}

		assert.Equal(t, 2, api.Hits("/v1/spaces/s1/properties"))
		assert.False(t, client.Cache().HasProperties("s1"))
	})

	t.Run("lookup survives a concurrent clear", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		client := newClient(t, api)

		stop := clearContinuously(func() { client.Cache().ClearProperties("s1") })
		defer stop()

		for range 50 {
			matches, err := client.Properties().Lookup(context.Background(), "s1", "status")
			require.NoError(t, err)
			require.Len(t, matches, 1)
			assert.Equal(t, "p1", matches[0].ID)

			property, err := client.Properties().LookupByKey(context.Background(), "s1", "due_date")
			require.NoError(t, err)
			assert.Equal(t, "p2", property.ID)
		}
	})

	t.Run("concurrent fills share one request", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		api.gate = make(chan struct{})
		client := newClient(t, api)

		var wg sync.WaitGroup

		errs := make(chan error, 8)

		for range 8 {
			wg.Add(1)

			go func() {
				defer wg.Done()

				_, err := client.Properties().List(context.Background(), "s1", nil)
				errs <- err
			}()
		}

		time.Sleep(100 * time.Millisecond)
		close(api.gate)
		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}

		assert.Equal(t, 1, api.Hits("/v1/spaces/s1/properties"))
	})
}

func TestTypesClient(t *testing.T) {
	t.Parallel()

	t.Run("archived types are hidden", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		client := newClient(t, api)

		result, err := client.Types().List(context.Background(), "s1", nil)
		require.NoError(t, err)

		types, err := result.CollectAll(context.Background())
		require.NoError(t, err)
		assert.Len(t, types, 2)

		for _, typ := range types {
			assert.False(t, typ.Archived)
		}

		matches, err := client.Types().Lookup(context.Background(), "s1", "old")
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("lookup survives a concurrent clear", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		client := newClient(t, api)

		stop := clearContinuously(func() { client.Cache().ClearTypes("s1") })
		defer stop()

		for range 50 {
			matches, err := client.Types().Lookup(context.Background(), "s1", "tasks")
			require.NoError(t, err)
			require.Len(t, matches, 1)
			assert.Equal(t, "t2", matches[0].ID)

			typ, err := client.Types().LookupByKey(context.Background(), "s1", "page")
			require.NoError(t, err)
			assert.Equal(t, "t1", typ.ID)
		}
	})

	t.Run("lookup matches plural name", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		client := newClient(t, api)

		matches, err := client.Types().Lookup(context.Background(), "s1", "tasks")
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "t2", matches[0].ID)
	})

	t.Run("archived type by id comes from the network", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		client := newClient(t, api)

		typ, err := client.Types().Get(context.Background(), "s1", "t3")
		require.NoError(t, err)
		assert.True(t, typ.Archived)
		assert.Equal(t, 1, api.Hits("/v1/spaces/s1/types/t3"))

		_, ok := client.Cache().GetType("s1", "t3")
		assert.False(t, ok)
	})

	t.Run("lookup by key", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		client := newClient(t, api)

		typ, err := client.Types().LookupByKey(context.Background(), "s2", "NOTE")
		require.NoError(t, err)
		assert.Equal(t, "t4", typ.ID)

		_, err = client.Types().LookupByKey(context.Background(), "s2", "page")
		require.ErrorIs(t, err, anytype.ErrTypeNotFound)
	})
}

func TestClient_Prime(t *testing.T) {
	t.Parallel()

	t.Run("loads every space", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		client := newClient(t, api)

		require.NoError(t, client.Prime(context.Background()))

		cache := client.Cache()
		assert.Equal(t, 2, cache.NumSpaces())
		assert.Equal(t, 3, cache.NumProperties())
		assert.Equal(t, 3, cache.NumTypes())

		hits := api.TotalHits()
		assert.Equal(t, 5, hits)

		require.NoError(t, client.Prime(context.Background()))
		assert.Equal(t, hits, api.TotalHits())
	})

	t.Run("disabled cache", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		client := newClient(t, api, func(config *anytype.Config) { config.DisableCache = true })

		err := client.Prime(context.Background())
		require.ErrorIs(t, err, anytype.ErrCacheDisabled)
		assert.Equal(t, 0, api.TotalHits())
	})

	t.Run("failure is reported", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		client := newClient(t, api, func(config *anytype.Config) { config.APIKey = "wrong" })

		err := client.Prime(context.Background())
		require.Error(t, err)
		assert.True(t, anytype.IsUnauthorized(err))
	})
}

func TestClient_Backend(t *testing.T) {
	t.Parallel()

	t.Run("snapshots are shared between clients", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		backend := anytype.NewMemoryBackend()
		withBackend := func(config *anytype.Config) { config.Backend = backend }

		first := newClient(t, api, withBackend)
		require.NoError(t, first.Prime(context.Background()))

		hits := api.TotalHits()

		second := newClient(t, api, withBackend)
		assert.True(t, second.Cache().HasSpaces())

		require.NoError(t, second.Prime(context.Background()))
		assert.Equal(t, hits, api.TotalHits())
		assert.Equal(t, 3, second.Cache().NumProperties())
	})

	t.Run("disable clears the backend", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		backend := anytype.NewMemoryBackend()
		client := newClient(t, api, func(config *anytype.Config) { config.Backend = backend })

		_, err := client.Spaces().List(context.Background(), nil)
		require.NoError(t, err)

		spacesKey := anytype.ScopedSnapshotKey(anytype.SnapshotScope(testKey), anytype.SpacesSnapshotKey())

		_, err = backend.Get(context.Background(), spacesKey)
		require.NoError(t, err)

		client.DisableCache(context.Background())
		assert.False(t, client.Cache().IsEnabled())

		_, err = backend.Get(context.Background(), spacesKey)
		assert.True(t, errors.Is(err, anytype.ErrSnapshotMiss))

		client.EnableCache(context.Background())
		assert.True(t, client.Cache().IsEnabled())
		assert.False(t, client.Cache().HasSpaces())
	})

	t.Run("snapshots are scoped to the key", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		backend := anytype.NewMemoryBackend()
		client := newClient(t, api, func(config *anytype.Config) { config.Backend = backend })

		_, err := client.Spaces().List(context.Background(), nil)
		require.NoError(t, err)

		hits := api.Hits("/v1/spaces")

		client.SetAPIKey("another-key")

		_, err = client.Spaces().List(context.Background(), nil)
		require.Error(t, err)
		assert.True(t, anytype.IsUnauthorized(err))
		assert.Equal(t, hits+1, api.Hits("/v1/spaces"))

		client.SetAPIKey(testKey)

		result, err := client.Spaces().List(context.Background(), nil)
		require.NoError(t, err)
		assert.Len(t, result.Items(), 2)
		assert.Equal(t, hits+1, api.Hits("/v1/spaces"))
	})

	t.Run("another key does not see shared snapshots", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		backend := anytype.NewMemoryBackend()

		first := newClient(t, api, func(config *anytype.Config) { config.Backend = backend })
		require.NoError(t, first.Prime(context.Background()))

		second := newClient(t, api, func(config *anytype.Config) {
			config.Backend = backend
			config.APIKey = "another-key"
		})
		assert.False(t, second.Cache().HasSpaces())

		_, err := second.Properties().Lookup(context.Background(), "s1", "status")
		require.Error(t, err)
		assert.True(t, anytype.IsUnauthorized(err))
	})
}

func TestClient_Metrics(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	client := newClient(t, api)

	_, err := client.Spaces().List(context.Background(), nil)
	require.NoError(t, err)

	snapshot := client.Snapshot()
	assert.Equal(t, uint64(1), snapshot.TotalRequests)
	assert.Equal(t, uint64(1), snapshot.SuccessfulResponses)
	assert.Equal(t, snapshot, client.Metrics().Snapshot())
}

// clearContinuously runs fn in a loop until the returned stop is called.
func clearContinuously(fn func()) (stop func()) {
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)

		for {
			select {
			case <-done:
				return
			default:
				fn()
			}
		}
	}()

	return func() {
		close(done)
		<-finished
	}
}
