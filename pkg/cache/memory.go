// Package cache provides the in-memory TTL store backing the console's
// lookup caches (school groups, available staff). Entries never outlive the
// process; school-context switches invalidate by key pattern.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sync"
	"time"

	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

type entry struct {
	payload   []byte
	expiresAt time.Time
}

// Store is a process-local TTL cache holding JSON-encoded payloads.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewStore builds an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[string]entry)}
}

// Get retrieves and unmarshals the cached value into dest. Expired or
// absent keys return ErrCacheMiss.
func (s *Store) Get(ctx context.Context, key string, dest interface{}) error {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return appErrors.ErrCacheMiss
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return appErrors.ErrCacheMiss
	}
	if err := json.Unmarshal(e.payload, dest); err != nil {
		return fmt.Errorf("unmarshal cached value for key %s: %w", key, err)
	}
	return nil
}

// Set marshals the value and stores it under the key. A non-positive TTL
// keeps the entry until it is invalidated.
func (s *Store) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value for key %s: %w", key, err)
	}
	e := entry{payload: payload}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
	return nil
}

// Delete removes one key.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// DeleteByPattern removes every entry whose key matches the glob pattern.
func (s *Store) DeleteByPattern(ctx context.Context, pattern string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.entries {
		matched, err := path.Match(pattern, key)
		if err != nil {
			return fmt.Errorf("invalid cache pattern %s: %w", pattern, err)
		}
		if matched {
			delete(s.entries, key)
		}
	}
	return nil
}

// Len reports the number of stored entries, expired ones included until the
// next read touches them.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
