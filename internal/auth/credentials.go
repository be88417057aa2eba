package auth

import (
	"context"
	"sync"
)

// CredentialHolder supplies the bearer key for authenticated requests.
type CredentialHolder interface {
	// Get returns the current key and whether one is set.
	Get(ctx context.Context) (string, bool)
	Set(key string)
	Clear()
}

// CredentialStore is a thread-safe in-memory CredentialHolder.
type CredentialStore struct {
	mutex sync.RWMutex
	key   string
}

// NewCredentialStore creates a store holding key. An empty key means unset.
func NewCredentialStore(key string) *CredentialStore {
	return &CredentialStore{key: key}
}

// Get returns the current key.
func (s *CredentialStore) Get(ctx context.Context) (string, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.key, s.key != ""
}

// Set replaces the key.
func (s *CredentialStore) Set(key string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.key = key
}

// Clear removes the key.
func (s *CredentialStore) Clear() {
	s.Set("")
}
